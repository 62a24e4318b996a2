package poker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pgray/cardroom/internal/deck"
)

// Category is the poker hand category, ordered by strength.
type Category int

const (
	CategoryHighCard Category = iota
	CategoryPair
	CategoryTwoPair
	CategoryThreeOfAKind
	CategoryStraight
	CategoryFlush
	CategoryFullHouse
	CategoryFourOfAKind
	CategoryStraightFlush
	CategoryRoyalFlush
)

// String returns the string representation of a category
func (c Category) String() string {
	switch c {
	case CategoryHighCard:
		return "high card"
	case CategoryPair:
		return "pair"
	case CategoryTwoPair:
		return "two pair"
	case CategoryThreeOfAKind:
		return "three of a kind"
	case CategoryStraight:
		return "straight"
	case CategoryFlush:
		return "flush"
	case CategoryFullHouse:
		return "full house"
	case CategoryFourOfAKind:
		return "four of a kind"
	case CategoryStraightFlush:
		return "straight flush"
	case CategoryRoyalFlush:
		return "royal flush"
	default:
		return "?"
	}
}

// Ranked is the result of evaluating a hand: its category and the five
// scoring cards in canonical order. The canonical order is chosen so
// that two hands of the same category compare correctly card by card:
// quads first then kicker, triplet then pair, pairs high to low then
// kickers, straights by top card (a wheel leads with the five, ranking
// it below a six-high straight).
type Ranked struct {
	Category Category
	Best     [5]deck.Card
}

// String describes the ranked hand, e.g. "two pair (A♠ A♥ K♦ K♣ 2♠)".
func (r Ranked) String() string {
	parts := make([]string, len(r.Best))
	for i, c := range r.Best {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s (%s)", r.Category, strings.Join(parts, " "))
}

// Evaluate ranks the best five-card hand found in the given cards,
// typically two hole cards plus up to five community cards. The input is
// not modified; evaluating the same cards twice yields the same result.
func Evaluate(cards []deck.Card) Ranked {
	hand := make([]deck.Card, len(cards))
	copy(hand, cards)
	sort.Slice(hand, func(i, j int) bool { return hand[i].Rank > hand[j].Rank })

	if best, ok := straightFlush(hand); ok {
		cat := CategoryStraightFlush
		if best[0].Rank == deck.Ace {
			cat = CategoryRoyalFlush
		}
		return Ranked{Category: cat, Best: best}
	}
	if best, ok := ofAKind(hand, 4); ok {
		return Ranked{Category: CategoryFourOfAKind, Best: best}
	}
	if best, ok := fullHouse(hand); ok {
		return Ranked{Category: CategoryFullHouse, Best: best}
	}
	if best, ok := flush(hand); ok {
		return Ranked{Category: CategoryFlush, Best: best}
	}
	if best, ok := straight(hand); ok {
		return Ranked{Category: CategoryStraight, Best: best}
	}
	if best, ok := ofAKind(hand, 3); ok {
		return Ranked{Category: CategoryThreeOfAKind, Best: best}
	}
	if best, ok := twoPair(hand); ok {
		return Ranked{Category: CategoryTwoPair, Best: best}
	}
	if best, ok := ofAKind(hand, 2); ok {
		return Ranked{Category: CategoryPair, Best: best}
	}

	var best [5]deck.Card
	copy(best[:], hand)
	return Ranked{Category: CategoryHighCard, Best: best}
}

// Compare returns a positive number if a beats b, negative if b beats a
// and zero on an exact tie. Equal categories are decided position by
// position over the canonical five.
func Compare(a, b Ranked) int {
	if a.Category != b.Category {
		return int(a.Category) - int(b.Category)
	}
	for i := 0; i < 5; i++ {
		if a.Best[i].Rank != b.Best[i].Rank {
			return int(a.Best[i].Rank) - int(b.Best[i].Rank)
		}
	}
	return 0
}

// straightFlush searches every suit for its best straight and keeps the
// highest found across suits.
func straightFlush(hand []deck.Card) ([5]deck.Card, bool) {
	var best [5]deck.Card
	found := false
	for suit := deck.Spades; suit <= deck.Clubs; suit++ {
		var suited []deck.Card
		for _, c := range hand {
			if c.Suit == suit {
				suited = append(suited, c)
			}
		}
		if len(suited) < 5 {
			continue
		}
		if run, ok := straight(suited); ok {
			if !found || run[0].Rank > best[0].Rank {
				best = run
				found = true
			}
		}
	}
	return best, found
}

// straight finds the highest five-card run in a descending-sorted hand.
// The ace counts both high and low; the wheel leads with the five so
// position-zero comparison ranks it below a six-high straight.
func straight(hand []deck.Card) ([5]deck.Card, bool) {
	// One card per rank, descending.
	var distinct []deck.Card
	for _, c := range hand {
		if len(distinct) == 0 || distinct[len(distinct)-1].Rank != c.Rank {
			distinct = append(distinct, c)
		}
	}

	var best [5]deck.Card
	for i := 0; i+5 <= len(distinct); i++ {
		if distinct[i].Rank-distinct[i+4].Rank == 4 {
			copy(best[:], distinct[i:i+5])
			return best, true
		}
	}

	// Wheel: ace plays low under 5-4-3-2.
	if len(distinct) >= 5 && distinct[0].Rank == deck.Ace {
		tail := distinct[len(distinct)-4:]
		if tail[0].Rank == deck.Five && tail[3].Rank == deck.Two {
			copy(best[:4], tail)
			best[4] = distinct[0]
			return best, true
		}
	}
	return best, false
}

// ofAKind finds the highest group of exactly the given size and fills
// the remainder with the best kickers.
func ofAKind(hand []deck.Card, size int) ([5]deck.Card, bool) {
	var best [5]deck.Card
	group := rankGroup(hand, size)
	if group == 0 {
		return best, false
	}
	n := 0
	for _, c := range hand {
		if c.Rank == group {
			best[n] = c
			n++
		}
	}
	for _, c := range hand {
		if n == 5 {
			break
		}
		if c.Rank != group {
			best[n] = c
			n++
		}
	}
	return best, n == 5
}

func fullHouse(hand []deck.Card) ([5]deck.Card, bool) {
	var best [5]deck.Card
	trip := rankGroup(hand, 3)
	if trip == 0 {
		return best, false
	}
	pair := deck.Rank(0)
	for _, c := range hand {
		if c.Rank == trip {
			continue
		}
		if count(hand, c.Rank) >= 2 && c.Rank > pair {
			pair = c.Rank
		}
	}
	if pair == 0 {
		return best, false
	}
	n := 0
	for _, c := range hand {
		if c.Rank == trip && n < 3 {
			best[n] = c
			n++
		}
	}
	for _, c := range hand {
		if c.Rank == pair && n < 5 {
			best[n] = c
			n++
		}
	}
	return best, true
}

func flush(hand []deck.Card) ([5]deck.Card, bool) {
	var best [5]deck.Card
	for suit := deck.Spades; suit <= deck.Clubs; suit++ {
		n := 0
		for _, c := range hand {
			if c.Suit == suit {
				best[n] = c
				if n++; n == 5 {
					return best, true
				}
			}
		}
	}
	return best, false
}

func twoPair(hand []deck.Card) ([5]deck.Card, bool) {
	var best [5]deck.Card
	high := rankGroup(hand, 2)
	if high == 0 {
		return best, false
	}
	low := deck.Rank(0)
	for _, c := range hand {
		if c.Rank != high && count(hand, c.Rank) >= 2 && c.Rank > low {
			low = c.Rank
		}
	}
	if low == 0 {
		return best, false
	}
	n := 0
	for _, c := range hand {
		if c.Rank == high && n < 2 {
			best[n] = c
			n++
		}
	}
	for _, c := range hand {
		if c.Rank == low && n < 4 {
			best[n] = c
			n++
		}
	}
	for _, c := range hand {
		if c.Rank != high && c.Rank != low {
			best[4] = c
			break
		}
	}
	return best, true
}

// rankGroup returns the highest rank appearing at least size times, or
// zero when none does.
func rankGroup(hand []deck.Card, size int) deck.Rank {
	for _, c := range hand {
		if count(hand, c.Rank) >= size {
			return c.Rank
		}
	}
	return 0
}

func count(hand []deck.Card, r deck.Rank) int {
	n := 0
	for _, c := range hand {
		if c.Rank == r {
			n++
		}
	}
	return n
}
