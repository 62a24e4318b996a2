package irc

import (
	"testing"

	"github.com/pgray/cardroom/internal/deck"
	"github.com/pgray/cardroom/internal/game"
)

// fakeTable records which commands reached it.
type fakeTable struct {
	calls []string
}

func (f *fakeTable) record(name string) error {
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeTable) Join(string) error        { return f.record("join") }
func (f *fakeTable) Leave(string) error       { return f.record("leave") }
func (f *fakeTable) Start(int) error          { return f.record("start") }
func (f *fakeTable) Stop() error              { return f.record("stop") }
func (f *fakeTable) Bet(string, int) error    { return f.record("bet") }
func (f *fakeTable) Raise(string, int) error  { return f.record("raise") }
func (f *fakeTable) Call(string) error        { return f.record("call") }
func (f *fakeTable) Check(string) error       { return f.record("check") }
func (f *fakeTable) Fold(string) error        { return f.record("fold") }
func (f *fakeTable) AllIn(string) error       { return f.record("allin") }

func TestDispatchRouting(t *testing.T) {
	t.Parallel()

	h := &Handler{}
	ft := &fakeTable{}

	for _, cmd := range []string{"$join", "$start", "$raise", "$fold", "$allin", "$leave"} {
		if err := h.dispatch(ft, cmd, "alice", 10); err != nil {
			t.Fatalf("dispatch(%s) = %v", cmd, err)
		}
	}
	want := []string{"join", "start", "raise", "fold", "allin", "leave"}
	if len(ft.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", ft.calls, want)
	}
	for i, w := range want {
		if ft.calls[i] != w {
			t.Errorf("call %d = %q, want %q", i, ft.calls[i], w)
		}
	}
}

func TestDispatchUnknownCommandRejected(t *testing.T) {
	t.Parallel()

	h := &Handler{}
	err := h.dispatch(&fakeTable{}, "$teleport", "alice", 0)
	if !game.IsRejection(err) {
		t.Fatalf("expected rejection, got %v", err)
	}
}

func TestCardList(t *testing.T) {
	t.Parallel()

	cards := []deck.Card{
		{Suit: deck.Spades, Rank: deck.Ace},
		{Suit: deck.Hearts, Rank: deck.Ten},
	}
	if got := cardList(cards); got != "A♠ T♥" {
		t.Errorf("cardList = %q", got)
	}
}

func TestOddsLineSortsByWinChance(t *testing.T) {
	t.Parallel()

	line := oddsLine(
		map[string]float64{"alice": 0.2, "bob": 0.75},
		map[string]float64{"alice": 0.05, "bob": 0.05},
	)
	want := "bob 75.0% (tie 5.0%), alice 20.0% (tie 5.0%)"
	if line != want {
		t.Errorf("oddsLine = %q, want %q", line, want)
	}
}
