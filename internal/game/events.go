package game

import (
	"time"

	"github.com/pgray/cardroom/internal/deck"
)

// EventType represents a game event type with type safety
type EventType string

// Event types for observable table transitions. The transport decides
// how each is rendered; private events go to the named player alone.
const (
	EventTypePlayerJoined  EventType = "player_joined"
	EventTypePlayerLeft    EventType = "player_left"
	EventTypeRoundStarting EventType = "round_starting"
	EventTypeTurnChange    EventType = "turn_change"
	EventTypeBetAccepted   EventType = "bet_accepted"
	EventTypeCardsDealt    EventType = "cards_dealt"
	EventTypeAction        EventType = "action"
	EventTypeStreetDealt   EventType = "street_dealt"
	EventTypeReveal        EventType = "reveal"
	EventTypeOdds          EventType = "odds"
	EventTypePayout        EventType = "payout"
	EventTypeIdleWarning   EventType = "idle_warning"
	EventTypeIdleTimeout   EventType = "idle_timeout"
	EventTypeBankrupt      EventType = "bankrupt"
	EventTypeRespawn       EventType = "respawn"
	EventTypeRoundEnded    EventType = "round_ended"
)

// Event is any observable table transition.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// Announcer receives every observable transition. Text formatting is the
// transport's concern, not the core's.
type Announcer interface {
	Announce(e Event)
}

type stamped struct {
	at time.Time
}

func stamp() stamped                   { return stamped{at: time.Now()} }
func (s stamped) Timestamp() time.Time { return s.at }

// PlayerJoinedEvent is published when a player takes a seat.
type PlayerJoinedEvent struct {
	stamped
	Nick  string
	Stack int
}

func (PlayerJoinedEvent) EventType() EventType { return EventTypePlayerJoined }

// NewPlayerJoinedEvent creates a new player joined event
func NewPlayerJoinedEvent(nick string, stack int) PlayerJoinedEvent {
	return PlayerJoinedEvent{stamped: stamp(), Nick: nick, Stack: stack}
}

// PlayerLeftEvent is published when a seat is vacated.
type PlayerLeftEvent struct {
	stamped
	Nick   string
	Reason string
}

func (PlayerLeftEvent) EventType() EventType { return EventTypePlayerLeft }

// NewPlayerLeftEvent creates a new player left event
func NewPlayerLeftEvent(nick, reason string) PlayerLeftEvent {
	return PlayerLeftEvent{stamped: stamp(), Nick: nick, Reason: reason}
}

// RoundStartingEvent is published when the pre-start countdown begins.
type RoundStartingEvent struct {
	stamped
	Game  string
	Delay time.Duration
}

func (RoundStartingEvent) EventType() EventType { return EventTypeRoundStarting }

// NewRoundStartingEvent creates a new round starting event
func NewRoundStartingEvent(game string, delay time.Duration) RoundStartingEvent {
	return RoundStartingEvent{stamped: stamp(), Game: game, Delay: delay}
}

// TurnChangeEvent is published when the action moves to a new player.
type TurnChangeEvent struct {
	stamped
	Nick   string
	ToCall int
	Hand   int // blackjack split-hand index, 0 otherwise
}

func (TurnChangeEvent) EventType() EventType { return EventTypeTurnChange }

// NewTurnChangeEvent creates a new turn change event
func NewTurnChangeEvent(nick string, toCall, hand int) TurnChangeEvent {
	return TurnChangeEvent{stamped: stamp(), Nick: nick, ToCall: toCall, Hand: hand}
}

// BetAcceptedEvent is published when a wager is accepted.
type BetAcceptedEvent struct {
	stamped
	Nick   string
	Amount int
	Stack  int
}

func (BetAcceptedEvent) EventType() EventType { return EventTypeBetAccepted }

// NewBetAcceptedEvent creates a new bet accepted event
func NewBetAcceptedEvent(nick string, amount, stack int) BetAcceptedEvent {
	return BetAcceptedEvent{stamped: stamp(), Nick: nick, Amount: amount, Stack: stack}
}

// CardsDealtEvent is published when cards are dealt. Private events
// (hole cards) name the player they belong to and are not broadcast.
type CardsDealtEvent struct {
	stamped
	Nick    string
	Cards   []deck.Card
	Private bool
}

func (CardsDealtEvent) EventType() EventType { return EventTypeCardsDealt }

// NewCardsDealtEvent creates a new cards dealt event
func NewCardsDealtEvent(nick string, cards []deck.Card, private bool) CardsDealtEvent {
	cp := make([]deck.Card, len(cards))
	copy(cp, cards)
	return CardsDealtEvent{stamped: stamp(), Nick: nick, Cards: cp, Private: private}
}

// ActionEvent is published after any accepted player action.
type ActionEvent struct {
	stamped
	Nick   string
	Verb   string
	Amount int
}

func (ActionEvent) EventType() EventType { return EventTypeAction }

// NewActionEvent creates a new action event
func NewActionEvent(nick, verb string, amount int) ActionEvent {
	return ActionEvent{stamped: stamp(), Nick: nick, Verb: verb, Amount: amount}
}

// StreetDealtEvent is published when community cards are revealed.
type StreetDealtEvent struct {
	stamped
	Street string
	Board  []deck.Card
}

func (StreetDealtEvent) EventType() EventType { return EventTypeStreetDealt }

// NewStreetDealtEvent creates a new street dealt event
func NewStreetDealtEvent(street string, board []deck.Card) StreetDealtEvent {
	cp := make([]deck.Card, len(board))
	copy(cp, board)
	return StreetDealtEvent{stamped: stamp(), Street: street, Board: cp}
}

// RevealEvent is published when a hand is shown at settlement.
type RevealEvent struct {
	stamped
	Nick        string
	Cards       []deck.Card
	Description string
}

func (RevealEvent) EventType() EventType { return EventTypeReveal }

// NewRevealEvent creates a new reveal event
func NewRevealEvent(nick string, cards []deck.Card, description string) RevealEvent {
	cp := make([]deck.Card, len(cards))
	copy(cp, cards)
	return RevealEvent{stamped: stamp(), Nick: nick, Cards: cp, Description: description}
}

// OddsEvent carries win/tie odds during an all-in runout.
type OddsEvent struct {
	stamped
	Win map[string]float64
	Tie map[string]float64
}

func (OddsEvent) EventType() EventType { return EventTypeOdds }

// NewOddsEvent creates a new odds event
func NewOddsEvent(win, tie map[string]float64) OddsEvent {
	return OddsEvent{stamped: stamp(), Win: win, Tie: tie}
}

// PayoutEvent is published per settled wager.
type PayoutEvent struct {
	stamped
	Nick    string
	Amount  int
	Outcome string
}

func (PayoutEvent) EventType() EventType { return EventTypePayout }

// NewPayoutEvent creates a new payout event
func NewPayoutEvent(nick string, amount int, outcome string) PayoutEvent {
	return PayoutEvent{stamped: stamp(), Nick: nick, Amount: amount, Outcome: outcome}
}

// IdleWarningEvent is published when the acting player is close to
// timing out.
type IdleWarningEvent struct {
	stamped
	Nick string
}

func (IdleWarningEvent) EventType() EventType { return EventTypeIdleWarning }

// NewIdleWarningEvent creates a new idle warning event
func NewIdleWarningEvent(nick string) IdleWarningEvent {
	return IdleWarningEvent{stamped: stamp(), Nick: nick}
}

// IdleTimeoutEvent is published when the acting player timed out and a
// default action was applied for them.
type IdleTimeoutEvent struct {
	stamped
	Nick   string
	Action string
}

func (IdleTimeoutEvent) EventType() EventType { return EventTypeIdleTimeout }

// NewIdleTimeoutEvent creates a new idle timeout event
func NewIdleTimeoutEvent(nick, action string) IdleTimeoutEvent {
	return IdleTimeoutEvent{stamped: stamp(), Nick: nick, Action: action}
}

// BankruptEvent is published when a seat goes broke at settlement.
type BankruptEvent struct {
	stamped
	Nick string
}

func (BankruptEvent) EventType() EventType { return EventTypeBankrupt }

// NewBankruptEvent creates a new bankrupt event
func NewBankruptEvent(nick string) BankruptEvent {
	return BankruptEvent{stamped: stamp(), Nick: nick}
}

// RespawnEvent is published when a bankrupt player receives their loan.
type RespawnEvent struct {
	stamped
	Nick string
	Loan int
}

func (RespawnEvent) EventType() EventType { return EventTypeRespawn }

// NewRespawnEvent creates a new respawn event
func NewRespawnEvent(nick string, loan int) RespawnEvent {
	return RespawnEvent{stamped: stamp(), Nick: nick, Loan: loan}
}

// RoundEndedEvent is published after settlement completes.
type RoundEndedEvent struct {
	stamped
	Game string
	Pot  int
}

func (RoundEndedEvent) EventType() EventType { return EventTypeRoundEnded }

// NewRoundEndedEvent creates a new round ended event
func NewRoundEndedEvent(game string, pot int) RoundEndedEvent {
	return RoundEndedEvent{stamped: stamp(), Game: game, Pot: pot}
}

// MultiAnnouncer fans events out to several sinks.
type MultiAnnouncer []Announcer

// Announce implements Announcer.
func (m MultiAnnouncer) Announce(e Event) {
	for _, a := range m {
		a.Announce(e)
	}
}

// NopAnnouncer discards all events.
type NopAnnouncer struct{}

// Announce implements Announcer.
func (NopAnnouncer) Announce(Event) {}
