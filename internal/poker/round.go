package poker

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
	PhaseShowdown
	PhaseEnd
)

// String returns the string representation of a phase
func (p Phase) String() string {
	return [...]string{"none", "pre_start", "betting", "showdown", "end"}[p]
}

// Street is the betting street within a round.
type Street int

const (
	StreetPreFlop Street = iota
	StreetFlop
	StreetTurn
	StreetRiver
)

// String returns the string representation of a street
func (s Street) String() string {
	return [...]string{"pre-flop", "flop", "turn", "river"}[s]
}

// Config holds the table rules and timing.
type Config struct {
	SmallBlind   int
	BigBlind     int
	MaxSeats     int
	StartDelay   time.Duration
	IdleWarning  time.Duration
	IdleTimeout  time.Duration
	RespawnDelay time.Duration
	RespawnLoan  int
	RunoutPause  time.Duration
	OddsSamples  int
}

// DefaultConfig returns the standard table rules.
func DefaultConfig() Config {
	return Config{
		SmallBlind:   1,
		BigBlind:     2,
		MaxSeats:     8,
		StartDelay:   15 * time.Second,
		IdleWarning:  20 * time.Second,
		IdleTimeout:  30 * time.Second,
		RespawnDelay: 60 * time.Second,
		RespawnLoan:  100,
		RunoutPause:  3 * time.Second,
		OddsSamples:  5000,
	}
}

// Seat is the poker-specific state of a seated player for one round.
type Seat struct {
	*game.Seat
	Hole   *game.Hand
	Bet    int // chips in front this street, swept at street close
	Folded bool
	AllIn  bool
	Quit   bool
}

func newSeat(base *game.Seat) *Seat {
	return &Seat{Seat: base, Hole: game.NewHand()}
}

func (s *Seat) canAct() bool {
	return !s.Folded && !s.AllIn
}

// Table drives one hold'em table. All public methods are safe to call
// from the transport goroutine; timer callbacks re-check the turn
// generation before acting.
type Table struct {
	mu sync.Mutex

	cfg       Config
	logger    *log.Logger
	shoe      *deck.Shoe
	announcer game.Announcer
	sched     *game.Scheduler
	store     game.Store
	rng       *rand.Rand

	roster    []*game.Seat
	blacklist map[string]bool

	phase      Phase
	street     Street
	seats      []*Seat
	board      *game.Hand
	ledger     *Ledger
	button     int
	turn       int
	closer     int // seat whose turn closes the street: opener or last aggressor
	currentBet int
	minRaise   int
	turnSeq    int64
	autoLeft   int
	startH     game.TimerHandle
	warnH      game.TimerHandle
	idleH      game.TimerHandle
}

// NewTable creates a hold'em table. A single deck is reshuffled before
// every round.
func NewTable(cfg Config, store game.Store, announcer game.Announcer, sched *game.Scheduler, logger *log.Logger, rng *rand.Rand) *Table {
	return &Table{
		cfg:       cfg,
		logger:    logger.WithPrefix("holdem"),
		shoe:      deck.NewShoe(1, 0, rng),
		announcer: announcer,
		sched:     sched,
		store:     store,
		rng:       rng,
		blacklist: make(map[string]bool),
		button:    -1,
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
	if rec.Cash < t.cfg.BigBlind {
		return game.Rejectf(game.ReasonNotEligible, "%s cannot cover the big blind", nick)
	}

	t.roster = append(t.roster, game.NewSeat(rec))
	t.announcer.Announce(game.NewPlayerJoinedEvent(nick, rec.Cash))
	return nil
}

// Leave removes a player, immediately when between rounds, otherwise at
// the end of the current round. A mid-round leaver is folded on their
// next turn.
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

// Start schedules the first round of a set.
func (t *Table) Start(rounds int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != PhaseNone {
		return game.Rejectf(game.ReasonWrongPhase, "a round is already under way")
	}
	if len(t.roster) < 2 {
		return game.Rejectf(game.ReasonNotEligible, "need at least two players")
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
	t.announcer.Announce(game.NewRoundStartingEvent("holdem", t.cfg.StartDelay))
	t.startH = t.sched.Schedule(t.cfg.StartDelay, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.phase != PhasePreStart {
			return
		}
		t.beginRound()
	})
}

// beginRound rotates the button, posts blinds and deals hole cards.
// Callers hold t.mu.
func (t *Table) beginRound() {
	t.seats = t.seats[:0]
	for _, base := range t.roster {
		if base.Stack < t.cfg.BigBlind {
			continue
		}
		t.seats = append(t.seats, newSeat(base))
	}
	if len(t.seats) < 2 {
		t.logger.Warn("fewer than two seats can cover the big blind")
		t.phase = PhaseNone
		return
	}

	t.phase = PhaseBetting
	t.street = StreetPreFlop
	t.board = game.NewHand()
	t.ledger = NewLedger()
	t.shoe.Reshuffle()
	t.button = (t.button + 1) % len(t.seats)

	// Heads-up the dealer posts the small blind and acts first pre-flop.
	var sb, bb int
	if len(t.seats) == 2 {
		sb = t.button
		bb = t.other(sb)
	} else {
		sb = t.nextSeat(t.button)
		bb = t.nextSeat(sb)
	}
	t.postBlind(sb, t.cfg.SmallBlind, "small blind")
	t.postBlind(bb, t.cfg.BigBlind, "big blind")
	t.currentBet = t.cfg.BigBlind
	t.minRaise = t.cfg.BigBlind

	for pass := 0; pass < 2; pass++ {
		for i := range t.seats {
			t.seats[(sb+i)%len(t.seats)].Hole.Add(t.draw())
		}
	}
	for _, s := range t.seats {
		t.announcer.Announce(game.NewCardsDealtEvent(s.Nick, s.Hole.Cards(), true))
	}

	// Pre-flop action closes when it comes back around to the big blind.
	t.closer = bb
	t.turn = bb
	t.advance()
}

func (t *Table) other(i int) int {
	return (i + 1) % len(t.seats)
}

func (t *Table) nextSeat(i int) int {
	return (i + 1) % len(t.seats)
}

func (t *Table) postBlind(i, amount int, name string) {
	s := t.seats[i]
	t.pay(s, amount)
	t.announcer.Announce(game.NewActionEvent(s.Nick, name, s.Bet))
}

// pay moves up to amount chips from the seat's stack to its street bet,
// flipping the all-in flag when the stack runs dry.
func (t *Table) pay(s *Seat, amount int) {
	if amount > s.Stack {
		amount = s.Stack
	}
	s.Stack -= amount
	s.Bet += amount
	if s.Stack == 0 {
		s.AllIn = true
	}
}

func (t *Table) toCall(s *Seat) int {
	return t.currentBet - s.Bet
}

// Check passes when there is nothing to call.
func (t *Table) Check(nick string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.actingSeat(nick)
	if err != nil {
		return err
	}
	if t.toCall(s) > 0 {
		return game.Rejectf(game.ReasonBadAmount, "%d to call, cannot check", t.toCall(s))
	}
	t.announcer.Announce(game.NewActionEvent(nick, "check", 0))
	t.advance()
	return nil
}

// Call matches the current bet, going all-in when short.
func (t *Table) Call(nick string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.actingSeat(nick)
	if err != nil {
		return err
	}
	owed := t.toCall(s)
	if owed <= 0 {
		return game.Rejectf(game.ReasonBadAmount, "nothing to call")
	}
	t.pay(s, owed)
	t.announcer.Announce(game.NewActionEvent(nick, "call", s.Bet))
	t.advance()
	return nil
}

// Bet opens the betting on a street.
func (t *Table) Bet(nick string, amount int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.actingSeat(nick)
	if err != nil {
		return err
	}
	if t.currentBet > 0 {
		return game.Rejectf(game.ReasonBadAmount, "betting is open, raise instead")
	}
	if amount < t.cfg.BigBlind {
		return game.Rejectf(game.ReasonBadAmount, "minimum bet is %d", t.cfg.BigBlind)
	}
	if amount > s.Stack {
		return game.Rejectf(game.ReasonBadAmount, "not enough chips, go all-in instead")
	}

	t.pay(s, amount)
	t.currentBet = amount
	t.minRaise = amount
	t.closer = t.turn
	t.announcer.Announce(game.NewActionEvent(nick, "bet", amount))
	t.advance()
	return nil
}

// Raise increases the current bet by the given amount, which must meet
// the minimum raise.
func (t *Table) Raise(nick string, amount int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.actingSeat(nick)
	if err != nil {
		return err
	}
	if t.currentBet == 0 {
		return game.Rejectf(game.ReasonBadAmount, "nothing to raise, bet instead")
	}
	if amount < t.minRaise {
		return game.Rejectf(game.ReasonBadAmount, "minimum raise is %d", t.minRaise)
	}
	need := t.toCall(s) + amount
	if need > s.Stack {
		return game.Rejectf(game.ReasonBadAmount, "not enough chips, go all-in instead")
	}

	t.pay(s, need)
	t.currentBet += amount
	t.minRaise = amount
	t.closer = t.turn
	t.announcer.Announce(game.NewActionEvent(nick, "raise", t.currentBet))
	t.advance()
	return nil
}

// AllIn pushes the seat's whole stack. A short all-in calls without
// reopening the betting; one that beats the current bet acts as a raise.
func (t *Table) AllIn(nick string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.actingSeat(nick)
	if err != nil {
		return err
	}

	t.pay(s, s.Stack)
	if s.Bet > t.currentBet {
		raisedBy := s.Bet - t.currentBet
		t.currentBet = s.Bet
		if raisedBy >= t.minRaise {
			t.minRaise = raisedBy
		}
		t.closer = t.turn
	}
	t.announcer.Announce(game.NewActionEvent(nick, "all-in", s.Bet))
	t.advance()
	return nil
}

// Fold drops the seat from the hand. Its street bet still sweeps into
// the pot.
func (t *Table) Fold(nick string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.actingSeat(nick)
	if err != nil {
		return err
	}
	s.Folded = true
	t.announcer.Announce(game.NewActionEvent(nick, "fold", 0))

	if t.liveSeats() == 1 {
		t.cancelIdleTimers()
		t.ledger.Sweep(t.seats)
		t.startRunout(false)
		return nil
	}
	t.advance()
	return nil
}

func (t *Table) liveSeats() int {
	n := 0
	for _, s := range t.seats {
		if !s.Folded {
			n++
		}
	}
	return n
}

func (t *Table) actorsLeft() int {
	n := 0
	for _, s := range t.seats {
		if s.canAct() {
			n++
		}
	}
	return n
}

// advance hands the action to the next seat, or closes the street when
// it would come back around to the closer. Callers hold t.mu.
func (t *Table) advance() {
	t.cancelIdleTimers()

	next := -1
	for i := 1; i <= len(t.seats); i++ {
		idx := (t.turn + i) % len(t.seats)
		if idx == t.closer {
			break
		}
		if t.seats[idx].canAct() {
			next = idx
			break
		}
	}
	if next == -1 {
		t.closeStreet()
		return
	}

	t.turn = next
	t.bumpTurn()
	s := t.seats[t.turn]
	t.announcer.Announce(game.NewTurnChangeEvent(s.Nick, t.toCall(s), 0))
	t.startIdleTimers()
}

// closeStreet sweeps the street's bets and either deals the next street,
// runs out the board for all-in seats, or settles. Callers hold t.mu.
func (t *Table) closeStreet() {
	t.ledger.Sweep(t.seats)

	switch {
	case t.liveSeats() == 1:
		t.startRunout(false)
	case t.actorsLeft() < 2:
		// Betting is over for good; deal the rest with odds shown.
		if t.street == StreetRiver {
			t.endRound()
			return
		}
		t.startRunout(true)
	case t.street == StreetRiver:
		t.endRound()
	default:
		t.dealStreet()
		t.openStreet()
	}
}

// dealStreet burns one card and reveals the next community cards.
// Callers hold t.mu.
func (t *Table) dealStreet() {
	t.street++
	if err := t.shoe.Burn(); err != nil {
		t.logger.Error("deck exhausted on burn", "err", err)
	}
	n := 1
	if t.street == StreetFlop {
		n = 3
	}
	for i := 0; i < n; i++ {
		t.board.Add(t.draw())
	}
	t.announcer.Announce(game.NewStreetDealtEvent(t.street.String(), t.board.Cards()))
}

// openStreet starts a fresh betting round on the new street: first seat
// able to act after the button opens, and the street closes when action
// returns to them unless somebody bets.
func (t *Table) openStreet() {
	t.currentBet = 0
	t.minRaise = t.cfg.BigBlind

	opener := -1
	for i := 1; i <= len(t.seats); i++ {
		idx := (t.button + i) % len(t.seats)
		if t.seats[idx].canAct() {
			opener = idx
			break
		}
	}
	if opener == -1 {
		// Should be unreachable: closeStreet only deals when two or more
		// seats can still act.
		t.endRound()
		return
	}

	t.closer = opener
	t.turn = opener
	t.bumpTurn()
	s := t.seats[t.turn]
	t.announcer.Announce(game.NewTurnChangeEvent(s.Nick, 0, 0))
	t.startIdleTimers()
}

// startRunout deals the remaining community cards as scheduled
// continuations with a dramatic pause between streets, showing win/tie
// odds when more than one seat is still live. Callers hold t.mu.
func (t *Table) startRunout(withOdds bool) {
	t.phase = PhaseShowdown
	t.bumpTurn()
	t.turn = -1
	t.runoutStep(withOdds)
}

func (t *Table) runoutStep(withOdds bool) {
	if t.street == StreetRiver || t.liveSeats() == 0 {
		t.endRound()
		return
	}
	if withOdds {
		t.announceOdds()
	}
	t.dealStreet()
	t.sched.Schedule(t.cfg.RunoutPause, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.phase != PhaseShowdown {
			return
		}
		t.runoutStep(withOdds)
	})
}

func (t *Table) announceOdds() {
	holes := make(map[string][]deck.Card)
	for _, s := range t.seats {
		if !s.Folded {
			holes[s.Nick] = s.Hole.Cards()
			t.announcer.Announce(game.NewRevealEvent(s.Nick, s.Hole.Cards(), ""))
		}
	}
	win, tie := Odds(holes, t.board.Cards(), t.rng, t.cfg.OddsSamples)
	t.announcer.Announce(game.NewOddsEvent(win, tie))
}

func (t *Table) actingSeat(nick string) (*Seat, error) {
	if t.phase != PhaseBetting {
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
		// A single deck covers a full table with community cards; running
		// dry is a programming defect.
		t.logger.Error("deck exhausted mid-deal", "err", err)
	}
	return c
}

func (t *Table) bumpTurn() {
	t.turnSeq++
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

// idleOut applies the default action for a player who timed out: check
// when it is free, fold when there is a bet to them. Callers hold t.mu.
func (t *Table) idleOut() {
	s := t.seats[t.turn]
	if t.toCall(s) > 0 {
		s.Folded = true
		t.announcer.Announce(game.NewIdleTimeoutEvent(s.Nick, "fold"))
		if t.liveSeats() == 1 {
			t.cancelIdleTimers()
			t.ledger.Sweep(t.seats)
			t.startRunout(false)
			return
		}
	} else {
		t.announcer.Announce(game.NewIdleTimeoutEvent(s.Nick, "check"))
	}
	t.advance()
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
