package deck

import (
	"errors"
	rand "math/rand/v2"
)

// ErrShoeEmpty is returned when a draw is attempted with both the live
// stack and the discard pile empty. With sane deck counts this is a
// configuration error, not a runtime condition.
var ErrShoeEmpty = errors.New("deck: shoe and discard pile are both empty")

// Shoe is a dealing shoe built from one or more standard 52-card decks.
// Cards are drawn from the front of the live stack; played cards are
// returned to the discard pile and folded back in on reshuffle. When the
// live stack drops to the reshuffle threshold the discard pile is merged
// and the shoe is re-permuted automatically.
type Shoe struct {
	live      []Card
	discard   []Card
	total     int
	threshold int
	rng       *rand.Rand
}

// NewShoe creates a shuffled shoe of decks standard decks. threshold is
// the live-card count at which the discard pile is automatically
// reshuffled back in; zero means reshuffle only on depletion.
func NewShoe(decks, threshold int, rng *rand.Rand) *Shoe {
	if decks < 1 {
		decks = 1
	}
	s := &Shoe{
		live:      make([]Card, 0, decks*52),
		threshold: threshold,
		rng:       rng,
	}
	for d := 0; d < decks; d++ {
		for suit := Spades; suit <= Clubs; suit++ {
			for rank := Two; rank <= Ace; rank++ {
				s.live = append(s.live, NewCard(suit, rank))
			}
		}
	}
	s.total = len(s.live)
	s.shuffleLive()
	return s
}

// NewStackedShoe creates a shoe that deals the given cards in order and
// never shuffles. Useful for rigging deals in tests.
func NewStackedShoe(cards ...Card) *Shoe {
	live := make([]Card, len(cards))
	copy(live, cards)
	return &Shoe{live: live, total: len(live)}
}

// Draw removes and returns the front card. The discard pile is folded
// back in automatically when the live stack runs low; Draw fails only
// when every card in the shoe is already in play.
func (s *Shoe) Draw() (Card, error) {
	if len(s.live) == 0 {
		if len(s.discard) == 0 {
			return Card{}, ErrShoeEmpty
		}
		s.Reshuffle()
	}
	card := s.live[0]
	s.live = s.live[1:]
	if len(s.live) <= s.threshold && len(s.discard) > 0 {
		s.Reshuffle()
	}
	return card, nil
}

// Burn draws a card and moves it straight to the discard pile.
func (s *Shoe) Burn() error {
	card, err := s.Draw()
	if err != nil {
		return err
	}
	s.DiscardCard(card)
	return nil
}

// DiscardCard returns a single card to the discard pile.
func (s *Shoe) DiscardCard(c Card) {
	s.discard = append(s.discard, c)
}

// DiscardAll returns a played-out hand's cards to the discard pile.
func (s *Shoe) DiscardAll(cards []Card) {
	s.discard = append(s.discard, cards...)
}

// Reshuffle merges the discard pile into the live stack and uniformly
// permutes the result. Cards currently in play are unaffected.
func (s *Shoe) Reshuffle() {
	s.live = append(s.live, s.discard...)
	s.discard = s.discard[:0]
	s.shuffleLive()
}

func (s *Shoe) shuffleLive() {
	if s.rng == nil {
		return
	}
	s.rng.Shuffle(len(s.live), func(i, j int) {
		s.live[i], s.live[j] = s.live[j], s.live[i]
	})
}

// Remaining returns the number of drawable cards.
func (s *Shoe) Remaining() int {
	return len(s.live)
}

// Discarded returns the size of the discard pile.
func (s *Shoe) Discarded() int {
	return len(s.discard)
}

// Size returns the total number of cards the shoe was built with.
func (s *Shoe) Size() int {
	return s.total
}
