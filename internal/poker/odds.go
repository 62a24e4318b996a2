package poker

import (
	rand "math/rand/v2"

	"github.com/pgray/cardroom/internal/deck"
)

// Odds computes each live player's chance of winning or tying the hand
// given the board so far. With at most two cards to come every runout is
// enumerated exactly; earlier streets are sampled, samples runouts with
// the provided source.
func Odds(holes map[string][]deck.Card, board []deck.Card, rng *rand.Rand, samples int) (win, tie map[string]float64) {
	win = make(map[string]float64, len(holes))
	tie = make(map[string]float64, len(holes))
	for nick := range holes {
		win[nick] = 0
		tie[nick] = 0
	}
	if len(holes) < 2 {
		for nick := range holes {
			win[nick] = 1
		}
		return win, tie
	}

	seen := make(map[deck.Card]bool, len(board)+2*len(holes))
	for _, c := range board {
		seen[c] = true
	}
	for _, hole := range holes {
		for _, c := range hole {
			seen[c] = true
		}
	}
	var unseen []deck.Card
	for suit := deck.Spades; suit <= deck.Clubs; suit++ {
		for rank := deck.Two; rank <= deck.Ace; rank++ {
			if c := deck.NewCard(suit, rank); !seen[c] {
				unseen = append(unseen, c)
			}
		}
	}

	toCome := 5 - len(board)
	trials := 0
	tally := func(extra []deck.Card) {
		full := append(append([]deck.Card{}, board...), extra...)
		best := ""
		var bestRank Ranked
		tied := false
		for nick, hole := range holes {
			r := Evaluate(append(append([]deck.Card{}, hole...), full...))
			switch {
			case best == "":
				best, bestRank, tied = nick, r, false
			default:
				if d := Compare(r, bestRank); d > 0 {
					best, bestRank, tied = nick, r, false
				} else if d == 0 {
					tied = true
				}
			}
		}
		trials++
		if tied {
			// Re-walk to credit every seat matching the best hand.
			for nick, hole := range holes {
				if Compare(Evaluate(append(append([]deck.Card{}, hole...), full...)), bestRank) == 0 {
					tie[nick]++
				}
			}
			return
		}
		win[best]++
	}

	switch toCome {
	case 0:
		tally(nil)
	case 1:
		for _, c := range unseen {
			tally([]deck.Card{c})
		}
	case 2:
		for i := 0; i < len(unseen); i++ {
			for j := i + 1; j < len(unseen); j++ {
				tally([]deck.Card{unseen[i], unseen[j]})
			}
		}
	default:
		draw := make([]deck.Card, len(unseen))
		for n := 0; n < samples; n++ {
			copy(draw, unseen)
			rng.Shuffle(len(draw), func(i, j int) {
				draw[i], draw[j] = draw[j], draw[i]
			})
			tally(draw[:toCome])
		}
	}

	for nick := range holes {
		win[nick] /= float64(trials)
		tie[nick] /= float64(trials)
	}
	return win, tie
}
