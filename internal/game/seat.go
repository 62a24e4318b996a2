package game

// Seat is the game-agnostic part of a seated player: identity, stack and
// the persisted record behind it. Game-specific per-round state (hands,
// fold/all-in flags) lives in the blackjack and poker packages.
type Seat struct {
	Nick   string
	Stack  int
	Record *PlayerRecord
}

// NewSeat seats a player with the stack from their record.
func NewSeat(rec *PlayerRecord) *Seat {
	return &Seat{
		Nick:   rec.Nick,
		Stack:  rec.Cash,
		Record: rec,
	}
}

// SyncRecord writes the live stack back into the persisted record.
func (s *Seat) SyncRecord() {
	s.Record.Cash = s.Stack
}

// Broke returns true when the seat has no chips left.
func (s *Seat) Broke() bool {
	return s.Stack <= 0
}
