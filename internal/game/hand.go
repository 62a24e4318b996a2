package game

import (
	"strings"

	"github.com/pgray/cardroom/internal/deck"
)

// Hand is an ordered sequence of cards belonging to one seat. Blackjack
// seats may hold several hands after a split, each carrying its own bet.
type Hand struct {
	cards []deck.Card

	// Bet is the wager riding on this hand. Poker tracks bets on the
	// seat instead; blackjack bets are per-hand because of splits.
	Bet int

	// Doubled and Stood mark a blackjack hand that has been doubled
	// down or stood; both close the hand to further action.
	Doubled bool
	Stood   bool
}

// NewHand creates a hand from the given cards.
func NewHand(cards ...deck.Card) *Hand {
	h := &Hand{cards: make([]deck.Card, 0, 7)}
	h.cards = append(h.cards, cards...)
	return h
}

// Add appends a card to the hand.
func (h *Hand) Add(c deck.Card) {
	h.cards = append(h.cards, c)
}

// Card returns the card at position i.
func (h *Hand) Card(i int) deck.Card {
	return h.cards[i]
}

// Cards returns the underlying card slice. Callers must not mutate it.
func (h *Hand) Cards() []deck.Card {
	return h.cards
}

// Len returns the number of cards in the hand.
func (h *Hand) Len() int {
	return len(h.cards)
}

// RemoveAt removes and returns the card at position i.
func (h *Hand) RemoveAt(i int) deck.Card {
	c := h.cards[i]
	h.cards = append(h.cards[:i], h.cards[i+1:]...)
	return c
}

// Range returns a copy of the cards in [from, to).
func (h *Hand) Range(from, to int) []deck.Card {
	out := make([]deck.Card, to-from)
	copy(out, h.cards[from:to])
	return out
}

// String returns the hand as space-separated cards (e.g. "A♠ K♥").
func (h *Hand) String() string {
	parts := make([]string, len(h.cards))
	for i, c := range h.cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
