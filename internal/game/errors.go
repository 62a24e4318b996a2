package game

import (
	"errors"
	"fmt"
)

// Reason classifies why a player action was rejected.
type Reason string

const (
	ReasonBadAmount   Reason = "bad_amount"
	ReasonOutOfTurn   Reason = "out_of_turn"
	ReasonWrongPhase  Reason = "wrong_phase"
	ReasonNotEligible Reason = "not_eligible"
	ReasonNotSeated   Reason = "not_seated"
	ReasonTableFull   Reason = "table_full"
	ReasonBlacklisted Reason = "blacklisted"
)

// Rejection is a user-input error: the action is refused with a reason,
// no state changes, and the turn does not advance. The transport relays
// it to the actor alone.
type Rejection struct {
	Reason Reason
	Msg    string
}

// Error implements the error interface.
func (r *Rejection) Error() string {
	return r.Msg
}

// Rejectf builds a Rejection with a formatted message.
func Rejectf(reason Reason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Msg: fmt.Sprintf(format, args...)}
}

// IsRejection reports whether err is a player-input rejection, as
// opposed to an internal failure.
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}
