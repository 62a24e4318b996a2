package irc

import (
	"fmt"
	"sort"
	"strings"

	ircevent "github.com/thoj/go-ircevent"

	"github.com/pgray/cardroom/internal/deck"
	"github.com/pgray/cardroom/internal/game"
)

// announcer renders table events into one IRC channel. Private deals go
// to the named player as a notice; everything else is said in channel.
type announcer struct {
	conn    *ircevent.Connection
	channel string
}

// Announce implements game.Announcer.
func (a *announcer) Announce(e game.Event) {
	switch ev := e.(type) {
	case game.CardsDealtEvent:
		if ev.Private {
			a.conn.Noticef(ev.Nick, "your cards: %s", cardList(ev.Cards))
			return
		}
		if ev.Nick == "" {
			a.say("dealt: %s", cardList(ev.Cards))
			return
		}
		a.say("%s is dealt %s", ev.Nick, cardList(ev.Cards))
	case game.PlayerJoinedEvent:
		a.say("%s sits down with %d", ev.Nick, ev.Stack)
	case game.PlayerLeftEvent:
		if ev.Reason != "" {
			a.say("%s leaves the table (%s)", ev.Nick, ev.Reason)
			return
		}
		a.say("%s leaves the table", ev.Nick)
	case game.RoundStartingEvent:
		a.say("%s round starting in %s, $join to play", ev.Game, ev.Delay)
	case game.TurnChangeEvent:
		switch {
		case ev.ToCall > 0:
			a.say("%s to act, %d to call", ev.Nick, ev.ToCall)
		case ev.Hand > 0:
			a.say("%s to act on hand %d", ev.Nick, ev.Hand+1)
		default:
			a.say("%s to act", ev.Nick)
		}
	case game.BetAcceptedEvent:
		a.say("%s bets %d (%d behind)", ev.Nick, ev.Amount, ev.Stack)
	case game.ActionEvent:
		if ev.Amount > 0 {
			a.say("%s %s %d", ev.Nick, ev.Verb, ev.Amount)
			return
		}
		a.say("%s %s", ev.Nick, ev.Verb)
	case game.StreetDealtEvent:
		a.say("%s: %s", ev.Street, cardList(ev.Board))
	case game.RevealEvent:
		if ev.Description != "" {
			a.say("%s shows %s (%s)", ev.Nick, cardList(ev.Cards), ev.Description)
			return
		}
		a.say("%s shows %s", ev.Nick, cardList(ev.Cards))
	case game.OddsEvent:
		a.say("odds: %s", oddsLine(ev.Win, ev.Tie))
	case game.PayoutEvent:
		if ev.Amount > 0 {
			a.say("%s wins %d (%s)", ev.Nick, ev.Amount, ev.Outcome)
			return
		}
		a.say("%s: %s", ev.Nick, ev.Outcome)
	case game.IdleWarningEvent:
		a.say("%s, you still there?", ev.Nick)
	case game.IdleTimeoutEvent:
		a.say("%s timed out, %s", ev.Nick, ev.Action)
	case game.BankruptEvent:
		a.say("%s is busto", ev.Nick)
	case game.RespawnEvent:
		a.say("%s is back with a %d loan", ev.Nick, ev.Loan)
	case game.RoundEndedEvent:
		a.say("round over, %d on the table", ev.Pot)
	}
}

func (a *announcer) say(format string, args ...any) {
	a.conn.Privmsgf(a.channel, format, args...)
}

func cardList(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// oddsLine renders win/tie percentages sorted by win chance so the
// favorite reads first.
func oddsLine(win, tie map[string]float64) string {
	nicks := make([]string, 0, len(win))
	for nick := range win {
		nicks = append(nicks, nick)
	}
	sort.Slice(nicks, func(i, j int) bool {
		if win[nicks[i]] != win[nicks[j]] {
			return win[nicks[i]] > win[nicks[j]]
		}
		return nicks[i] < nicks[j]
	})

	parts := make([]string, 0, len(nicks))
	for _, nick := range nicks {
		s := fmt.Sprintf("%s %.1f%%", nick, win[nick]*100)
		if t := tie[nick]; t > 0.0005 {
			s += fmt.Sprintf(" (tie %.1f%%)", t*100)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}
