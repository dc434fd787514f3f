package g_error

import "errors"

// Kind groups rejections so the boundary can decide how to surface them.
type Kind string

const (
	KindTurn       Kind = "turn"
	KindPhase      Kind = "phase"
	KindResource   Kind = "resource"
	KindSelector   Kind = "selector"
	KindRule       Kind = "rule"
	KindMembership Kind = "membership"
	KindLifecycle  Kind = "lifecycle"
)

// GameErr is a tagged rejection. Values are compared by pointer, use errors.Is.
type GameErr struct {
	kind Kind
	info string
}

func newErr(kind Kind, info string) *GameErr {
	return &GameErr{ kind: kind, info: info }
}

func (e *GameErr) Error() string { return e.info }

func (e *GameErr) Kind() Kind { return e.kind }

// KindOf returns the kind of a game rejection, or "" for any other error.
func KindOf(err error) Kind {
	var ge *GameErr
	if errors.As(err, &ge) {
		return ge.kind
	}
	return ""
}

var (
	// turn
	ErrRoundNotActive = newErr(KindTurn, "no round in progress")
	ErrNotYourTurn    = newErr(KindTurn, "not your turn")

	// phase
	ErrAlreadyDrawn = newErr(KindPhase, "already drawn this turn")
	ErrMustDraw     = newErr(KindPhase, "must draw before discarding")
	ErrMustNotDraw  = newErr(KindPhase, "only allowed before drawing")

	// resource
	ErrDiscardEmpty = newErr(KindResource, "discard pile is empty")
	ErrDeckEmpty    = newErr(KindResource, "deck is empty")
	ErrTooManyRooms = newErr(KindResource, "too many rooms")

	// selector
	ErrInvalidCardIndex = newErr(KindSelector, "card index out of range")
	ErrInvalidSource    = newErr(KindSelector, "unknown draw source")
	ErrInvalidAction    = newErr(KindSelector, "unknown game action")

	// rule
	ErrAlreadyKnocked = newErr(KindRule, "someone already knocked")
	ErrNot31          = newErr(KindRule, "hand does not score 31")

	// membership
	ErrPlayerExists   = newErr(KindMembership, "player already in room")
	ErrPlayerNotFound = newErr(KindMembership, "player not in room")
	ErrRoomFull       = newErr(KindMembership, "room full")
	ErrRoomNotFound   = newErr(KindMembership, "room not found")
	ErrNotInRoom      = newErr(KindMembership, "user not in any room")
	ErrAlreadyInRoom  = newErr(KindMembership, "user already in a room")

	// lifecycle
	ErrGameStarted       = newErr(KindLifecycle, "game already started")
	ErrGameNotStarted    = newErr(KindLifecycle, "game not started")
	ErrNotEnoughPlayers  = newErr(KindLifecycle, "not enough players")
	ErrRoundActive       = newErr(KindLifecycle, "round still in progress")
	ErrPotEmpty          = newErr(KindLifecycle, "pot is empty")
	ErrGameOver          = newErr(KindLifecycle, "game is over")
	ErrTableStopped        = newErr(KindLifecycle, "room closed")
	ErrTableAlreadyStarted = newErr(KindLifecycle, "room already running")
)
