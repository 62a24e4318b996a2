package blackjack

import (
	"github.com/pgray/cardroom/internal/deck"
	"github.com/pgray/cardroom/internal/game"
)

// Outcome is the 5-way result of a player hand against the dealer.
type Outcome int

const (
	OutcomeBust Outcome = iota
	OutcomeLoss
	OutcomePush
	OutcomeWin
	OutcomeBlackjack
)

// String returns the string representation of an outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeBust:
		return "bust"
	case OutcomeLoss:
		return "loss"
	case OutcomePush:
		return "push"
	case OutcomeWin:
		return "win"
	case OutcomeBlackjack:
		return "blackjack"
	default:
		return "?"
	}
}

// Sum computes the blackjack total of a hand. Aces start at 1 and one is
// promoted to 11 when it fits; this reproduces A+A+9=21 and A+A+A+9=21.
func Sum(h *game.Hand) int {
	sum := 0
	aces := 0
	for _, c := range h.Cards() {
		if c.IsAce() {
			aces++
			sum++
		} else {
			sum += c.BlackjackValue()
		}
	}
	for ; aces > 0 && sum+10 <= 21; aces-- {
		sum += 10
	}
	return sum
}

// IsSoft reports whether the hand's sum counts an ace as 11.
func IsSoft(h *game.Hand) bool {
	hard := 0
	hasAce := false
	for _, c := range h.Cards() {
		if c.IsAce() {
			hasAce = true
			hard++
		} else {
			hard += c.BlackjackValue()
		}
	}
	return hasAce && hard+10 <= 21
}

// IsBlackjack reports a natural: 21 on exactly two cards.
func IsBlackjack(h *game.Hand) bool {
	return h.Len() == 2 && Sum(h) == 21
}

// IsBust reports whether the hand is over 21.
func IsBust(h *game.Hand) bool {
	return Sum(h) > 21
}

// IsPair reports whether a two-card hand can be split: both cards share
// the same blackjack value (K+T is a pair here).
func IsPair(h *game.Hand) bool {
	return h.Len() == 2 && h.Card(0).BlackjackValue() == h.Card(1).BlackjackValue()
}

// IsSoft17 reports a 17 reached only by counting an ace as 11, used for
// the dealer hit-on-soft-17 rule.
func IsSoft17(h *game.Hand) bool {
	return Sum(h) == 17 && IsSoft(h)
}

// HasHit reports whether the hand has been hit. A starting hand holds
// exactly two cards.
func HasHit(h *game.Hand) bool {
	return h.Len() != 2
}

// Compare resolves a player hand against the dealer hand. A busted
// player hand always loses, even against a dealer bust.
func Compare(player, dealer *game.Hand) Outcome {
	ps := Sum(player)
	if ps > 21 {
		return OutcomeBust
	}

	ds := Sum(dealer)
	if ps == 21 {
		switch {
		case IsBlackjack(player) && IsBlackjack(dealer):
			return OutcomePush
		case IsBlackjack(player):
			return OutcomeBlackjack
		case IsBlackjack(dealer):
			return OutcomeLoss
		case ds == 21:
			return OutcomePush
		default:
			return OutcomeWin
		}
	}

	switch {
	case ds > 21 || ps > ds:
		return OutcomeWin
	case ps == ds:
		return OutcomePush
	default:
		return OutcomeLoss
	}
}

// upCard is the dealer's visible card.
func upCard(dealer *game.Hand) deck.Card {
	return dealer.Card(0)
}
