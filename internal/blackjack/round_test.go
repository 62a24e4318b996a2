package blackjack

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/pgray/cardroom/internal/deck"
	"github.com/pgray/cardroom/internal/game"
	"github.com/pgray/cardroom/internal/randutil"
)

// recorder captures announced events for inspection.
type recorder struct {
	mu     sync.Mutex
	events []game.Event
}

func (r *recorder) Announce(e game.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) ofType(et game.EventType) []game.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []game.Event
	for _, e := range r.events {
		if e.EventType() == et {
			out = append(out, e)
		}
	}
	return out
}

// memStore is an in-memory Store that seeds new players with a fixed
// bankroll.
type memStore struct {
	mu      sync.Mutex
	seed    int
	players map[string]*game.PlayerRecord
	house   game.HouseRecord
}

func newMemStore(seed int) *memStore {
	return &memStore{seed: seed, players: make(map[string]*game.PlayerRecord)}
}

func (m *memStore) LoadPlayer(nick string) (*game.PlayerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.players[nick]; ok {
		return rec, nil
	}
	rec := &game.PlayerRecord{Nick: nick, Cash: m.seed}
	m.players[nick] = rec
	return rec, nil
}

func (m *memStore) SavePlayers(records []*game.PlayerRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		m.players[rec.Nick] = rec
	}
	return nil
}

func (m *memStore) LoadHouse() (*game.HouseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	house := m.house
	return &house, nil
}

func (m *memStore) SaveHouse(rec *game.HouseRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.house = *rec
	return nil
}

func (m *memStore) cash(nick string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.players[nick]; ok {
		return rec.Cash
	}
	return 0
}

func newTestTable(t *testing.T, cfg Config, bankroll int) (*Table, *quartz.Mock, *memStore, *recorder) {
	t.Helper()
	clock := quartz.NewMock(t)
	st := newMemStore(bankroll)
	rec := &recorder{}
	tbl := NewTable(cfg, st, rec, game.NewScheduler(clock), log.New(io.Discard), randutil.New(1))
	return tbl, clock, st, rec
}

func c(suit deck.Suit, rank deck.Rank) deck.Card {
	return deck.Card{Suit: suit, Rank: rank}
}

func TestRoundNaturalAndLoss(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := DefaultConfig()
	tbl, clock, st, rec := newTestTable(t, cfg, 200)

	// Dealt in two passes: alice, bob, dealer, alice, bob, dealer.
	// Alice gets a natural, bob sixteen, the dealer a hard seventeen.
	tbl.shoe = deck.NewStackedShoe(
		c(deck.Spades, deck.Ace), c(deck.Hearts, deck.Ten), c(deck.Diamonds, deck.Ten),
		c(deck.Clubs, deck.King), c(deck.Spades, deck.Six), c(deck.Hearts, deck.Seven),
	)

	if err := tbl.Join("alice"); err != nil {
		t.Fatalf("Join(alice): %v", err)
	}
	if err := tbl.Join("bob"); err != nil {
		t.Fatalf("Join(bob): %v", err)
	}
	if err := tbl.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.Advance(cfg.StartDelay).MustWait(ctx)

	if got := tbl.Phase(); got != PhaseBetting {
		t.Fatalf("phase = %s, want betting", got)
	}
	if err := tbl.Bet("bob", 10); !game.IsRejection(err) {
		t.Fatalf("out-of-turn bet should be rejected, got %v", err)
	}
	if err := tbl.Bet("alice", 10); err != nil {
		t.Fatalf("Bet(alice): %v", err)
	}
	if err := tbl.Bet("bob", 10); err != nil {
		t.Fatalf("Bet(bob): %v", err)
	}

	// Alice's natural needs no action so bob is straight up.
	if err := tbl.Stand("bob"); err != nil {
		t.Fatalf("Stand(bob): %v", err)
	}

	if got := tbl.Phase(); got != PhaseNone {
		t.Fatalf("phase after settlement = %s, want none", got)
	}
	// Naturals pay 3:2.
	if got := st.cash("alice"); got != 215 {
		t.Errorf("alice cash = %d, want 215", got)
	}
	if got := st.cash("bob"); got != 190 {
		t.Errorf("bob cash = %d, want 190", got)
	}
	if got := st.house.RoundsPlayed; got != 1 {
		t.Errorf("house rounds = %d, want 1", got)
	}
	if got := len(rec.ofType(game.EventTypePayout)); got != 2 {
		t.Errorf("payout events = %d, want 2", got)
	}
}

func TestBetLimits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := DefaultConfig()
	tbl, clock, _, _ := newTestTable(t, cfg, 100)

	if err := tbl.Join("alice"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := tbl.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.Advance(cfg.StartDelay).MustWait(ctx)

	if err := tbl.Bet("alice", cfg.MinBet-1); !game.IsRejection(err) {
		t.Errorf("below-minimum bet should be rejected, got %v", err)
	}
	// Opening bets are capped at half the stack, rounded up.
	if err := tbl.Bet("alice", 51); !game.IsRejection(err) {
		t.Errorf("over-half-stack bet should be rejected, got %v", err)
	}
	if err := tbl.Bet("alice", 50); err != nil {
		t.Errorf("half-stack bet should be accepted, got %v", err)
	}
}

func TestIdleTimeoutDuringBetting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := DefaultConfig()
	tbl, clock, _, rec := newTestTable(t, cfg, 200)

	if err := tbl.Join("alice"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := tbl.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.Advance(cfg.StartDelay).MustWait(ctx)

	clock.Advance(cfg.IdleWarning).MustWait(ctx)
	if got := len(rec.ofType(game.EventTypeIdleWarning)); got != 1 {
		t.Fatalf("idle warnings = %d, want 1", got)
	}

	clock.Advance(cfg.IdleTimeout - cfg.IdleWarning).MustWait(ctx)
	if got := len(rec.ofType(game.EventTypeIdleTimeout)); got != 1 {
		t.Fatalf("idle timeouts = %d, want 1", got)
	}
	if got := tbl.Phase(); got != PhaseNone {
		t.Errorf("phase = %s, want none after the only seat sat out", got)
	}
}

func TestSurrenderReturnsHalf(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := DefaultConfig()
	tbl, clock, st, _ := newTestTable(t, cfg, 200)

	tbl.shoe = deck.NewStackedShoe(
		c(deck.Spades, deck.Ten), c(deck.Diamonds, deck.Nine),
		c(deck.Hearts, deck.Six), c(deck.Clubs, deck.Seven),
	)

	if err := tbl.Join("alice"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := tbl.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.Advance(cfg.StartDelay).MustWait(ctx)

	if err := tbl.Bet("alice", 10); err != nil {
		t.Fatalf("Bet: %v", err)
	}
	if err := tbl.Surrender("alice"); err != nil {
		t.Fatalf("Surrender: %v", err)
	}

	if got := st.cash("alice"); got != 195 {
		t.Errorf("cash after surrender = %d, want 195", got)
	}
}

func TestSurrenderAfterHitRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := DefaultConfig()
	tbl, clock, _, _ := newTestTable(t, cfg, 200)

	tbl.shoe = deck.NewStackedShoe(
		c(deck.Spades, deck.Five), c(deck.Diamonds, deck.Nine),
		c(deck.Hearts, deck.Six), c(deck.Clubs, deck.Seven),
		c(deck.Spades, deck.Two),
	)

	if err := tbl.Join("alice"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := tbl.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.Advance(cfg.StartDelay).MustWait(ctx)

	if err := tbl.Bet("alice", 10); err != nil {
		t.Fatalf("Bet: %v", err)
	}
	if err := tbl.Hit("alice"); err != nil {
		t.Fatalf("Hit: %v", err)
	}
	if err := tbl.Surrender("alice"); !game.IsRejection(err) {
		t.Errorf("surrender after hit should be rejected, got %v", err)
	}
}

func TestSplitPlaysBothHands(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := DefaultConfig()
	tbl, clock, st, _ := newTestTable(t, cfg, 200)

	// Deal a pair of eights against a dealer seventeen; after splitting,
	// the first hand draws a three and the second a ten.
	tbl.shoe = deck.NewStackedShoe(
		c(deck.Spades, deck.Eight), c(deck.Diamonds, deck.Ten),
		c(deck.Hearts, deck.Eight), c(deck.Clubs, deck.Seven),
		c(deck.Spades, deck.Three), c(deck.Hearts, deck.Ten),
	)

	if err := tbl.Join("alice"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := tbl.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.Advance(cfg.StartDelay).MustWait(ctx)

	if err := tbl.Bet("alice", 10); err != nil {
		t.Fatalf("Bet: %v", err)
	}
	if err := tbl.Split("alice"); err != nil {
		t.Fatalf("Split: %v", err)
	}
	if err := tbl.Stand("alice"); err != nil {
		t.Fatalf("Stand first hand: %v", err)
	}
	if err := tbl.Stand("alice"); err != nil {
		t.Fatalf("Stand second hand: %v", err)
	}

	// First hand (eleven) loses to seventeen, second (eighteen) wins: the
	// two bets cancel out.
	if got := st.cash("alice"); got != 200 {
		t.Errorf("cash after split round = %d, want 200", got)
	}
}

func TestDoubleDownBankruptcyAndRespawn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := DefaultConfig()
	tbl, clock, st, rec := newTestTable(t, cfg, 10)

	// Alice doubles eleven into sixteen and loses to a dealer nineteen,
	// going broke.
	tbl.shoe = deck.NewStackedShoe(
		c(deck.Spades, deck.Five), c(deck.Diamonds, deck.Ten),
		c(deck.Hearts, deck.Six), c(deck.Clubs, deck.Nine),
		c(deck.Diamonds, deck.Five),
	)

	if err := tbl.Join("alice"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := tbl.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.Advance(cfg.StartDelay).MustWait(ctx)

	if err := tbl.Bet("alice", 5); err != nil {
		t.Fatalf("Bet: %v", err)
	}
	if err := tbl.DoubleDown("alice"); err != nil {
		t.Fatalf("DoubleDown: %v", err)
	}

	if got := len(rec.ofType(game.EventTypeBankrupt)); got != 1 {
		t.Fatalf("bankrupt events = %d, want 1", got)
	}
	if err := tbl.Join("alice"); !game.IsRejection(err) {
		t.Fatalf("busted player should be blacklisted, got %v", err)
	}

	clock.Advance(cfg.RespawnDelay).MustWait(ctx)
	if got := len(rec.ofType(game.EventTypeRespawn)); got != 1 {
		t.Fatalf("respawn events = %d, want 1", got)
	}
	if got := st.cash("alice"); got != cfg.RespawnLoan {
		t.Errorf("cash after respawn = %d, want %d", got, cfg.RespawnLoan)
	}
	if err := tbl.Join("alice"); err != nil {
		t.Errorf("respawned player should be able to rejoin, got %v", err)
	}
}

func TestDealerHitsSoftSeventeen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.HitSoft17 = true
	tbl, clock, st, _ := newTestTable(t, cfg, 200)

	// Dealer starts on ace-six and must draw; the four makes twenty one
	// and beats alice's twenty.
	tbl.shoe = deck.NewStackedShoe(
		c(deck.Spades, deck.Ten), c(deck.Diamonds, deck.Ace),
		c(deck.Hearts, deck.Ten), c(deck.Clubs, deck.Six),
		c(deck.Diamonds, deck.Four),
	)

	if err := tbl.Join("alice"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := tbl.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.Advance(cfg.StartDelay).MustWait(ctx)

	if err := tbl.Bet("alice", 10); err != nil {
		t.Fatalf("Bet: %v", err)
	}
	if err := tbl.Stand("alice"); err != nil {
		t.Fatalf("Stand: %v", err)
	}

	if got := st.cash("alice"); got != 190 {
		t.Errorf("cash = %d, want 190 after dealer drew out to twenty one", got)
	}
}

func TestInsurancePaysOnDealerNatural(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := DefaultConfig()
	tbl, clock, st, _ := newTestTable(t, cfg, 200)

	// Dealer shows an ace with a ten in the hole.
	tbl.shoe = deck.NewStackedShoe(
		c(deck.Spades, deck.Ten), c(deck.Diamonds, deck.Ace),
		c(deck.Hearts, deck.Nine), c(deck.Clubs, deck.King),
	)

	if err := tbl.Join("alice"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := tbl.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.Advance(cfg.StartDelay).MustWait(ctx)

	if err := tbl.Bet("alice", 10); err != nil {
		t.Fatalf("Bet: %v", err)
	}
	if err := tbl.Insure("alice", 5); err != nil {
		t.Fatalf("Insure: %v", err)
	}
	if err := tbl.Stand("alice"); err != nil {
		t.Fatalf("Stand: %v", err)
	}

	// Main bet loses to the natural but the side bet pays 3:1, so alice
	// ends where she started.
	if got := st.cash("alice"); got != 200 {
		t.Errorf("cash = %d, want 200", got)
	}
}
