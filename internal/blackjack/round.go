package blackjack

import (
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pgray/cardroom/internal/deck"
	"github.com/pgray/cardroom/internal/game"
)

// Phase is the round state.
type Phase int

const (
	PhaseNone Phase = iota
	PhasePreStart
	PhaseBetting
	PhasePlaying
	PhaseEnd
)

// String returns the string representation of a phase
func (p Phase) String() string {
	return [...]string{"none", "pre_start", "betting", "playing", "end"}[p]
}

// Config holds the table rules and timing.
type Config struct {
	MinBet       int
	Decks        int
	ReshuffleAt  int
	HitSoft17    bool
	MaxSeats     int
	StartDelay   time.Duration
	IdleWarning  time.Duration
	IdleTimeout  time.Duration
	RespawnDelay time.Duration
	RespawnLoan  int
}

// DefaultConfig returns the standard table rules.
func DefaultConfig() Config {
	return Config{
		MinBet:       5,
		Decks:        4,
		ReshuffleAt:  20,
		HitSoft17:    true,
		MaxSeats:     6,
		StartDelay:   15 * time.Second,
		IdleWarning:  20 * time.Second,
		IdleTimeout:  30 * time.Second,
		RespawnDelay: 60 * time.Second,
		RespawnLoan:  100,
	}
}

// Seat is the blackjack-specific state of a seated player for one round.
// A seat owns one hand unless it splits.
type Seat struct {
	*game.Seat
	Hands       []*game.Hand
	Insurance   int
	Surrendered bool
	Quit        bool

	handIdx int // hand currently acting
}

func newSeat(base *game.Seat) *Seat {
	return &Seat{Seat: base}
}

// CurrentHand returns the hand the seat is acting on.
func (s *Seat) CurrentHand() *game.Hand {
	return s.Hands[s.handIdx]
}

// Table drives one blackjack table: roster, betting, play, dealer play
// and settlement. All public methods are safe to call from the transport
// goroutine; timer callbacks re-check the turn generation before acting.
type Table struct {
	mu sync.Mutex

	cfg       Config
	logger    *log.Logger
	shoe      *deck.Shoe
	announcer game.Announcer
	sched     *game.Scheduler
	store     game.Store

	roster    []*game.Seat // seated players, join order, persists across rounds
	blacklist map[string]bool

	phase     Phase
	seats     []*Seat // this round's seats
	dealer    *game.Hand
	turn      int
	turnSeq   int64 // bumped on every turn change; timers check it
	autoLeft  int
	startH    game.TimerHandle
	warnH     game.TimerHandle
	idleH     game.TimerHandle
}

// NewTable creates a blackjack table. The shoe persists across rounds
// until its threshold reshuffle triggers.
func NewTable(cfg Config, store game.Store, announcer game.Announcer, sched *game.Scheduler, logger *log.Logger, rng *rand.Rand) *Table {
	return &Table{
		cfg:       cfg,
		logger:    logger.WithPrefix("blackjack"),
		shoe:      deck.NewShoe(cfg.Decks, cfg.ReshuffleAt, rng),
		announcer: announcer,
		sched:     sched,
		store:     store,
		blacklist: make(map[string]bool),
	}
}

// Phase returns the current round phase.
func (t *Table) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// Join seats a player for the next round.
func (t *Table) Join(nick string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.blacklist[nick] {
		return game.Rejectf(game.ReasonBlacklisted, "%s is busted out, wait for your loan", nick)
	}
	for _, s := range t.roster {
		if s.Nick == nick {
			return game.Rejectf(game.ReasonNotEligible, "%s is already seated", nick)
		}
	}
	if len(t.roster) >= t.cfg.MaxSeats {
		return game.Rejectf(game.ReasonTableFull, "table is full")
	}

	rec, err := t.store.LoadPlayer(nick)
	if err != nil {
		return err
	}
	if rec.Cash < t.cfg.MinBet {
		return game.Rejectf(game.ReasonNotEligible, "%s cannot cover the minimum bet", nick)
	}

	t.roster = append(t.roster, game.NewSeat(rec))
	t.announcer.Announce(game.NewPlayerJoinedEvent(nick, rec.Cash))
	return nil
}

// Leave removes a player, immediately when between rounds, otherwise at
// the end of the current round.
func (t *Table) Leave(nick string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase == PhaseNone || t.phase == PhasePreStart {
		if !t.dropFromRoster(nick) {
			return game.Rejectf(game.ReasonNotSeated, "%s is not seated", nick)
		}
		t.announcer.Announce(game.NewPlayerLeftEvent(nick, "left"))
		return nil
	}

	for _, s := range t.seats {
		if s.Nick == nick {
			s.Quit = true
			return nil
		}
	}
	return game.Rejectf(game.ReasonNotSeated, "%s is not seated", nick)
}

// Start schedules the first round of a set. rounds is the number of
// rounds to play back to back.
func (t *Table) Start(rounds int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != PhaseNone {
		return game.Rejectf(game.ReasonWrongPhase, "a round is already under way")
	}
	if len(t.roster) == 0 {
		return game.Rejectf(game.ReasonNotEligible, "nobody is seated")
	}
	if rounds < 1 {
		rounds = 1
	}
	t.autoLeft = rounds - 1
	t.enterPreStart()
	return nil
}

// Stop cancels a pending start countdown.
func (t *Table) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != PhasePreStart {
		return game.Rejectf(game.ReasonWrongPhase, "no pending round to stop")
	}
	t.sched.Cancel(t.startH)
	t.autoLeft = 0
	t.phase = PhaseNone
	return nil
}

func (t *Table) enterPreStart() {
	t.phase = PhasePreStart
	t.announcer.Announce(game.NewRoundStartingEvent("blackjack", t.cfg.StartDelay))
	t.startH = t.sched.Schedule(t.cfg.StartDelay, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.phase != PhasePreStart {
			return
		}
		t.beginBetting()
	})
}

// beginBetting seats the roster and asks for bets in join order.
// Callers hold t.mu.
func (t *Table) beginBetting() {
	t.seats = t.seats[:0]
	for _, base := range t.roster {
		if base.Stack < t.cfg.MinBet {
			continue
		}
		t.seats = append(t.seats, newSeat(base))
	}
	if len(t.seats) == 0 {
		t.logger.Warn("no seats can cover the minimum bet")
		t.phase = PhaseNone
		return
	}

	t.phase = PhaseBetting
	t.dealer = game.NewHand()
	t.turn = 0
	t.bumpTurn()
	t.announceTurn()
}

// MaxBet is the largest opening bet a seat may place: half its stack,
// rounded up.
func (t *Table) maxBet(s *Seat) int {
	return (s.Stack + 1) / 2
}

// Bet places the opening wager for the acting seat. Invalid amounts are
// rejected without advancing the turn.
func (t *Table) Bet(nick string, amount int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.actingSeat(nick, PhaseBetting)
	if err != nil {
		return err
	}
	if amount < t.cfg.MinBet {
		return game.Rejectf(game.ReasonBadAmount, "minimum bet is %d", t.cfg.MinBet)
	}
	if max := t.maxBet(s); amount > max {
		return game.Rejectf(game.ReasonBadAmount, "maximum bet is %d (half your stack)", max)
	}

	hand := game.NewHand()
	hand.Bet = amount
	s.Stack -= amount
	s.Hands = []*game.Hand{hand}
	t.announcer.Announce(game.NewBetAcceptedEvent(nick, amount, s.Stack))

	if t.turn++; t.turn < len(t.seats) {
		t.bumpTurn()
		t.announceTurn()
		return nil
	}
	t.deal()
	return nil
}

// deal gives every seat and the dealer two cards and opens play.
// Callers hold t.mu.
func (t *Table) deal() {
	for pass := 0; pass < 2; pass++ {
		for _, s := range t.seats {
			s.Hands[0].Add(t.draw())
		}
		t.dealer.Add(t.draw())
	}

	for _, s := range t.seats {
		t.announcer.Announce(game.NewCardsDealtEvent(s.Nick, s.Hands[0].Cards(), true))
	}
	// Only the up-card is public until the dealer plays.
	t.announcer.Announce(game.NewCardsDealtEvent("dealer", []deck.Card{upCard(t.dealer)}, false))

	t.phase = PhasePlaying
	t.turn = -1
	t.continueRound()
}

// Hit deals one more card to the acting hand.
func (t *Table) Hit(nick string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.actingSeat(nick, PhasePlaying)
	if err != nil {
		return err
	}

	hand := s.CurrentHand()
	hand.Add(t.draw())
	t.announcer.Announce(game.NewActionEvent(nick, "hit", 0))
	t.announcer.Announce(game.NewCardsDealtEvent(nick, hand.Cards(), true))

	if IsBust(hand) || Sum(hand) == 21 {
		t.continueRound()
		return nil
	}
	t.bumpTurn()
	t.startIdleTimers()
	return nil
}

// Stand ends the acting hand.
func (t *Table) Stand(nick string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.actingSeat(nick, PhasePlaying)
	if err != nil {
		return err
	}
	s.CurrentHand().Stood = true
	t.announcer.Announce(game.NewActionEvent(nick, "stand", 0))
	t.continueRound()
	return nil
}

// DoubleDown doubles the acting hand's bet, deals exactly one card and
// ends the hand. Only allowed before the first hit.
func (t *Table) DoubleDown(nick string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.actingSeat(nick, PhasePlaying)
	if err != nil {
		return err
	}
	hand := s.CurrentHand()
	if HasHit(hand) {
		return game.Rejectf(game.ReasonNotEligible, "cannot double down after hitting")
	}
	if s.Stack < hand.Bet {
		return game.Rejectf(game.ReasonBadAmount, "not enough to double: need %d", hand.Bet)
	}

	s.Stack -= hand.Bet
	hand.Bet *= 2
	hand.Doubled = true
	hand.Add(t.draw())
	t.announcer.Announce(game.NewActionEvent(nick, "double", hand.Bet))
	t.announcer.Announce(game.NewCardsDealtEvent(nick, hand.Cards(), true))
	t.continueRound()
	return nil
}

// Surrender forfeits the hand for half the bet back. Not allowed after a
// hit or a split.
func (t *Table) Surrender(nick string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.actingSeat(nick, PhasePlaying)
	if err != nil {
		return err
	}
	if len(s.Hands) > 1 {
		return game.Rejectf(game.ReasonNotEligible, "cannot surrender after splitting")
	}
	if HasHit(s.CurrentHand()) {
		return game.Rejectf(game.ReasonNotEligible, "cannot surrender after hitting")
	}

	s.Surrendered = true
	t.announcer.Announce(game.NewActionEvent(nick, "surrender", 0))
	t.continueRound()
	return nil
}

// Split turns a starting pair into two hands, each carrying the original
// bet, and deals a second card to the first of them.
func (t *Table) Split(nick string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.actingSeat(nick, PhasePlaying)
	if err != nil {
		return err
	}
	hand := s.CurrentHand()
	if !IsPair(hand) {
		return game.Rejectf(game.ReasonNotEligible, "can only split a starting pair")
	}
	if s.Stack < hand.Bet {
		return game.Rejectf(game.ReasonBadAmount, "not enough to split: need %d", hand.Bet)
	}

	s.Stack -= hand.Bet
	split := game.NewHand(hand.RemoveAt(1))
	split.Bet = hand.Bet
	s.Hands = append(s.Hands, split)
	hand.Add(t.draw())

	t.announcer.Announce(game.NewActionEvent(nick, "split", 0))
	t.announcer.Announce(game.NewCardsDealtEvent(nick, hand.Cards(), true))

	t.bumpTurn()
	t.startIdleTimers()
	return nil
}

// Insure places an insurance side bet. Only offered while the dealer
// shows an ace.
func (t *Table) Insure(nick string, amount int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.actingSeat(nick, PhasePlaying)
	if err != nil {
		return err
	}
	if !upCard(t.dealer).IsAce() {
		return game.Rejectf(game.ReasonNotEligible, "insurance is only offered against a dealer ace")
	}
	if s.Insurance > 0 {
		return game.Rejectf(game.ReasonNotEligible, "already insured")
	}
	max := (s.Hands[0].Bet + 1) / 2
	if amount < 1 || amount > max {
		return game.Rejectf(game.ReasonBadAmount, "insurance must be between 1 and %d", max)
	}
	if amount > s.Stack {
		return game.Rejectf(game.ReasonBadAmount, "not enough for that insurance bet")
	}

	s.Stack -= amount
	s.Insurance = amount
	t.announcer.Announce(game.NewActionEvent(nick, "insure", amount))
	return nil
}

// continueRound advances to the next hand or seat able to act, or ends
// the round when none remain. Callers hold t.mu.
func (t *Table) continueRound() {
	t.cancelIdleTimers()

	// Walk the current seat's split hands before moving on.
	if t.turn >= 0 && t.turn < len(t.seats) {
		s := t.seats[t.turn]
		for !s.Surrendered {
			if !t.handDone(s) {
				t.bumpTurn()
				t.announceTurn()
				return
			}
			if s.handIdx+1 >= len(s.Hands) {
				break
			}
			s.handIdx++
			next := s.CurrentHand()
			if next.Len() == 1 {
				// Second half of a split receives its second card when
				// play reaches it.
				next.Add(t.draw())
				t.announcer.Announce(game.NewCardsDealtEvent(s.Nick, next.Cards(), true))
			}
		}
	}

	// Next seat with an actionable hand.
	for t.turn++; t.turn < len(t.seats); t.turn++ {
		if !t.handDone(t.seats[t.turn]) {
			t.bumpTurn()
			t.announceTurn()
			return
		}
	}

	t.endRound()
}

// handDone reports whether the seat's current hand needs no further
// action: surrendered, stood, doubled, busted or sitting on 21.
func (t *Table) handDone(s *Seat) bool {
	if s.Surrendered {
		return true
	}
	h := s.CurrentHand()
	if h.Len() < 2 {
		return false
	}
	return h.Stood || h.Doubled || Sum(h) >= 21
}

func (t *Table) actingSeat(nick string, want Phase) (*Seat, error) {
	if t.phase != want {
		return nil, game.Rejectf(game.ReasonWrongPhase, "cannot do that during %s", t.phase)
	}
	if t.turn < 0 || t.turn >= len(t.seats) {
		return nil, game.Rejectf(game.ReasonOutOfTurn, "nobody is up")
	}
	s := t.seats[t.turn]
	if s.Nick != nick {
		return nil, game.Rejectf(game.ReasonOutOfTurn, "it is %s's turn", s.Nick)
	}
	return s, nil
}

func (t *Table) draw() deck.Card {
	c, err := t.shoe.Draw()
	if err != nil {
		// Only possible when the entire shoe is in play, which the deck
		// count rules out. Treated as a programming defect.
		t.logger.Error("shoe exhausted mid-deal", "err", err)
	}
	return c
}

func (t *Table) bumpTurn() {
	t.turnSeq++
}

func (t *Table) announceTurn() {
	if t.turn < 0 || t.turn >= len(t.seats) {
		return
	}
	s := t.seats[t.turn]
	hand := 0
	if t.phase == PhasePlaying {
		hand = s.handIdx
	}
	t.announcer.Announce(game.NewTurnChangeEvent(s.Nick, 0, hand))
	t.startIdleTimers()
}

// startIdleTimers arms the warning and timeout for the acting player.
// Both callbacks capture the turn generation and no-op if the action has
// moved on by the time they fire.
func (t *Table) startIdleTimers() {
	t.cancelIdleTimers()
	seq := t.turnSeq

	t.warnH = t.sched.Schedule(t.cfg.IdleWarning, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.turnSeq != seq || t.turn < 0 || t.turn >= len(t.seats) {
			return
		}
		t.announcer.Announce(game.NewIdleWarningEvent(t.seats[t.turn].Nick))
	})

	t.idleH = t.sched.Schedule(t.cfg.IdleTimeout, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.turnSeq != seq || t.turn < 0 || t.turn >= len(t.seats) {
			return
		}
		t.idleOut()
	})
}

func (t *Table) cancelIdleTimers() {
	t.sched.Cancel(t.warnH)
	t.sched.Cancel(t.idleH)
}

// idleOut applies the default action for a player who timed out: their
// seat sits out during betting, their hand stands during play.
// Callers hold t.mu.
func (t *Table) idleOut() {
	s := t.seats[t.turn]
	switch t.phase {
	case PhaseBetting:
		t.announcer.Announce(game.NewIdleTimeoutEvent(s.Nick, "sit out"))
		t.seats = append(t.seats[:t.turn], t.seats[t.turn+1:]...)
		if len(t.seats) == 0 {
			t.phase = PhaseNone
			return
		}
		if t.turn < len(t.seats) {
			t.bumpTurn()
			t.announceTurn()
			return
		}
		t.deal()
	case PhasePlaying:
		s.CurrentHand().Stood = true
		t.announcer.Announce(game.NewIdleTimeoutEvent(s.Nick, "stand"))
		t.continueRound()
	}
}

func (t *Table) dropFromRoster(nick string) bool {
	for i, s := range t.roster {
		if s.Nick == nick {
			t.roster = append(t.roster[:i], t.roster[i+1:]...)
			return true
		}
	}
	return false
}
