package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Rooms = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trentuno",
		Name: "rooms",
		Help: "live rooms",
	})
	Peers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trentuno",
		Name: "peers",
		Help: "connected websocket peers",
	})
	// result is "ok" or the rejection kind
	Actions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trentuno",
		Name: "actions_total",
		Help: "game actions by type and result",
	},
		[]string{"action", "result"},
	)
	RoundsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trentuno",
		Name: "rounds_started_total",
		Help: "rounds dealt",
	})
	RoundsEnded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trentuno",
		Name: "rounds_ended_total",
		Help: "rounds finished by reason",
	},
		[]string{"reason"},
	)
	GamesOver = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trentuno",
		Name: "games_over_total",
		Help: "games that ran the pot dry or lost their players",
	})
)

func init() {
	prometheus.MustRegister(Rooms, Peers, Actions, RoundsStarted, RoundsEnded, GamesOver)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
