package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli"
	"go.uber.org/zap"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/common/mongo"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/log"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/trentuno"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/trentuno/history"
)

const (
	PortFName = "port"
	PotLevelFName = "pot_level"
	MaxRoomsFName = "max_rooms"
	LogModeFName = "log_mode"
	MongoHostsFName = "mongo_hosts"
	MongoDBFName = "mongo_db"
	MongoUserFName = "mongo_user"
	MongoPwdFName = "mongo_pwd"
)

func main() {
	app := cli.NewApp()
	app.Name = "trentuno_room"
	app.Usage = "room server for the 31 card game"
	app.Flags = []cli.Flag {
		cli.IntFlag{ Name: PortFName, Value: 3030 },
		cli.IntFlag{ Name: PotLevelFName, Value: 1, Usage: "coins each player puts in the pot, level 1:3 2:5 3:10" },
		cli.IntFlag{ Name: MaxRoomsFName, Value: 500, Usage: "0 means unlimited" },
		cli.StringFlag{ Name: LogModeFName, Value: "debug", Usage: "debug or prod" },
		cli.StringFlag{ Name: MongoHostsFName, Usage: "comma separated, history is not archived when empty" },
		cli.StringFlag{ Name: MongoDBFName, Value: "trentuno" },
		cli.StringFlag{ Name: MongoUserFName, EnvVar: "TRENTUNO_MONGO_USER" },
		cli.StringFlag{ Name: MongoPwdFName, EnvVar: "TRENTUNO_MONGO_PWD" },
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		panic(err)
	}
}

func run(c *cli.Context) error {
	log.InitLogByMode(c.String(LogModeFName))

	recorder, err := newRecorder(c)
	if err != nil {
		return err
	}
	room, err := trentuno.NewRoomServer(trentuno.Config{
		Port: c.Int(PortFName),
		PotLevel: c.Int(PotLevelFName),
		MaxRooms: c.Int(MaxRoomsFName),
	}, recorder)
	if err != nil {
		return err
	}
	if err := room.Start(); err != nil {
		return err
	}
	log.L.Info("listening", zap.Int("port", c.Int(PortFName)))
	signalListen(func() {
		if err := room.Stop(); err != nil {
			log.L.Error("stop room server failed", zap.Error(err))
		}
		mongo.CloseDb()
	})
	return nil
}

func newRecorder(c *cli.Context) (history.Recorder, error) {
	hosts := c.String(MongoHostsFName)
	if hosts == "" {
		log.L.Info("no mongo hosts, history disabled")
		return history.NopRecorder{}, nil
	}
	conf := mongo.NewDbConfig(strings.Split(hosts, ","), c.String(MongoDBFName), c.String(MongoUserFName), c.String(MongoPwdFName))
	return history.NewHistoryDBByMongo(conf, c.String(MongoDBFName))
}

// listen stop signal
func signalListen(stopFunc func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c

	stopFunc()
}
