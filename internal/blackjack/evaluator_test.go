package blackjack

import (
	"testing"

	"github.com/pgray/cardroom/internal/deck"
	"github.com/pgray/cardroom/internal/game"
)

func hand(ranks ...deck.Rank) *game.Hand {
	h := game.NewHand()
	suits := []deck.Suit{deck.Spades, deck.Hearts, deck.Diamonds, deck.Clubs}
	for i, r := range ranks {
		h.Add(deck.Card{Suit: suits[i%len(suits)], Rank: r})
	}
	return h
}

func TestSum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ranks []deck.Rank
		sum   int
		soft  bool
	}{
		{"two aces and a nine", []deck.Rank{deck.Ace, deck.Ace, deck.Nine}, 21, true},
		{"three aces and a nine", []deck.Rank{deck.Ace, deck.Ace, deck.Ace, deck.Nine}, 21, false},
		{"hard sixteen", []deck.Rank{deck.Ten, deck.Six}, 16, false},
		{"ace king then five", []deck.Rank{deck.Ace, deck.King, deck.Five}, 16, false},
		{"soft seventeen", []deck.Rank{deck.Ace, deck.Six}, 17, true},
		{"ace alone", []deck.Rank{deck.Ace}, 11, true},
		{"face cards", []deck.Rank{deck.King, deck.Queen, deck.Jack}, 30, false},
		{"five card twenty one", []deck.Rank{deck.Two, deck.Three, deck.Four, deck.Five, deck.Seven}, 21, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := hand(tt.ranks...)
			if got := Sum(h); got != tt.sum {
				t.Errorf("Sum() = %d, want %d", got, tt.sum)
			}
			if got := IsSoft(h); got != tt.soft {
				t.Errorf("IsSoft() = %v, want %v", got, tt.soft)
			}
		})
	}
}

func TestIsBlackjack(t *testing.T) {
	t.Parallel()

	if !IsBlackjack(hand(deck.Ace, deck.King)) {
		t.Error("ace-king should be blackjack")
	}
	if IsBlackjack(hand(deck.Seven, deck.Seven, deck.Seven)) {
		t.Error("three-card 21 is not blackjack")
	}
	if IsBlackjack(hand(deck.Ten, deck.Nine)) {
		t.Error("nineteen is not blackjack")
	}
}

func TestIsPair(t *testing.T) {
	t.Parallel()

	if !IsPair(hand(deck.Eight, deck.Eight)) {
		t.Error("eights are a pair")
	}
	// Pairing goes by blackjack value, so any two ten-value cards split.
	if !IsPair(hand(deck.King, deck.Ten)) {
		t.Error("king and ten both count ten and pair up")
	}
	if IsPair(hand(deck.Eight, deck.Nine)) {
		t.Error("eight and nine are not a pair")
	}
	if IsPair(hand(deck.Eight, deck.Eight, deck.Eight)) {
		t.Error("a hit hand is never a pair")
	}
}

func TestIsSoft17(t *testing.T) {
	t.Parallel()

	if !IsSoft17(hand(deck.Ace, deck.Six)) {
		t.Error("ace-six is soft seventeen")
	}
	if IsSoft17(hand(deck.Ten, deck.Seven)) {
		t.Error("ten-seven is hard")
	}
	if IsSoft17(hand(deck.Ace, deck.Seven)) {
		t.Error("soft eighteen is not soft seventeen")
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		player []deck.Rank
		dealer []deck.Rank
		want   Outcome
	}{
		{"player bust always loses", []deck.Rank{deck.Ten, deck.Six, deck.King}, []deck.Rank{deck.Ten, deck.Six, deck.King}, OutcomeBust},
		{"dealer bust pays", []deck.Rank{deck.Ten, deck.Six}, []deck.Rank{deck.Ten, deck.Six, deck.King}, OutcomeWin},
		{"natural beats dealer twenty", []deck.Rank{deck.Ace, deck.King}, []deck.Rank{deck.Ten, deck.Queen}, OutcomeBlackjack},
		{"natural pushes natural", []deck.Rank{deck.Ace, deck.King}, []deck.Rank{deck.Ace, deck.Queen}, OutcomePush},
		{"natural beats three-card twenty one", []deck.Rank{deck.Ace, deck.King}, []deck.Rank{deck.Seven, deck.Seven, deck.Seven}, OutcomeBlackjack},
		{"dealer natural beats drawn twenty one", []deck.Rank{deck.Seven, deck.Seven, deck.Seven}, []deck.Rank{deck.Ace, deck.King}, OutcomeLoss},
		{"twenty one pushes twenty one", []deck.Rank{deck.Seven, deck.Seven, deck.Seven}, []deck.Rank{deck.Five, deck.Six, deck.Ten}, OutcomePush},
		{"higher sum wins", []deck.Rank{deck.Ten, deck.Nine}, []deck.Rank{deck.Ten, deck.Seven}, OutcomeWin},
		{"lower sum loses", []deck.Rank{deck.Ten, deck.Six}, []deck.Rank{deck.Ten, deck.Seven}, OutcomeLoss},
		{"equal sums push", []deck.Rank{deck.Ten, deck.Eight}, []deck.Rank{deck.Nine, deck.Nine}, OutcomePush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Compare(hand(tt.player...), hand(tt.dealer...)); got != tt.want {
				t.Errorf("Compare() = %s, want %s", got, tt.want)
			}
		})
	}
}
