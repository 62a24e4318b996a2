package poker

import (
	"github.com/pgray/cardroom/internal/game"
)

// endRound ranks the live hands, divides every pot among its winners and
// resets the table. Callers hold t.mu.
func (t *Table) endRound() {
	t.phase = PhaseEnd
	t.cancelIdleTimers()
	t.bumpTurn()
	t.turn = -1

	live := make([]*Seat, 0, len(t.seats))
	for _, s := range t.seats {
		if !s.Folded {
			live = append(live, s)
		}
	}

	ranks := make(map[string]Ranked, len(live))
	if len(live) > 1 {
		for _, s := range live {
			r := Evaluate(append(s.Hole.Cards(), t.board.Cards()...))
			ranks[s.Nick] = r
			t.announcer.Announce(game.NewRevealEvent(s.Nick, s.Hole.Cards(), r.String()))
		}
	}

	received := make(map[string]int)
	var topWinner string
	for _, pot := range t.ledger.Pots() {
		winners := t.potWinners(pot, live, ranks)
		if len(winners) == 0 {
			continue
		}
		total := pot.Total()
		share := total / len(winners)
		remainder := total % len(winners)
		for i, s := range winners {
			amount := share
			// An odd chip goes to the first winner after the button.
			if i == 0 {
				amount += remainder
			}
			s.Stack += amount
			received[s.Nick] += amount
			outcome := "uncontested"
			if r, ok := ranks[s.Nick]; ok {
				outcome = r.Category.String()
			}
			t.announcer.Announce(game.NewPayoutEvent(s.Nick, amount, outcome))
		}
		if topWinner == "" {
			topWinner = winners[0].Nick
		}
	}

	for _, s := range t.seats {
		donated := 0
		for _, pot := range t.ledger.Pots() {
			donated += pot.Donated(s.Nick)
		}
		if won := received[s.Nick] - donated; won > 0 {
			s.Record.Winnings += won
		}
	}

	t.cleanUp(t.ledger.Total(), topWinner)
}

// potWinners returns the pot's best eligible live hands, ordered from
// the first seat after the button. With a single live seat left the pot
// is theirs uncontested.
func (t *Table) potWinners(pot *Pot, live []*Seat, ranks map[string]Ranked) []*Seat {
	var contenders []*Seat
	for i := 1; i <= len(t.seats); i++ {
		s := t.seats[(t.button+i)%len(t.seats)]
		if s.Folded || !pot.IsEligible(s.Nick) {
			continue
		}
		contenders = append(contenders, s)
	}
	if len(contenders) == 0 {
		// Every eligible donor folded after paying in; the pot falls to
		// the remaining live seats.
		contenders = append(contenders, live...)
	}
	if len(contenders) <= 1 {
		return contenders
	}

	var winners []*Seat
	for _, s := range contenders {
		if len(winners) == 0 {
			winners = append(winners, s)
			continue
		}
		switch d := Compare(ranks[s.Nick], ranks[winners[0].Nick]); {
		case d > 0:
			winners = winners[:0]
			winners = append(winners, s)
		case d == 0:
			winners = append(winners, s)
		}
	}
	return winners
}

// cleanUp discards all cards, persists records, handles bankruptcies and
// quit-flagged seats, then either re-arms the next round or goes idle.
// Callers hold t.mu.
func (t *Table) cleanUp(wagered int, topWinner string) {
	for _, s := range t.seats {
		t.shoe.DiscardAll(s.Hole.Cards())
	}
	t.shoe.DiscardAll(t.board.Cards())

	records := make([]*game.PlayerRecord, 0, len(t.seats))
	for _, s := range t.seats {
		s.Record.Rounds++
		s.SyncRecord()
		records = append(records, s.Record)
	}
	if err := t.store.SavePlayers(records); err != nil {
		t.logger.Error("failed to save player records", "err", err)
	}
	if house, err := t.store.LoadHouse(); err != nil {
		t.logger.Error("failed to load house record", "err", err)
	} else {
		house.RoundsPlayed++
		if wagered > house.BiggestPot && topWinner != "" {
			house.BiggestPot = wagered
			house.BiggestPotNick = topWinner
		}
		if err := t.store.SaveHouse(house); err != nil {
			t.logger.Error("failed to save house record", "err", err)
		}
	}

	for _, s := range t.seats {
		switch {
		case s.Broke():
			t.announcer.Announce(game.NewBankruptEvent(s.Nick))
			t.dropFromRoster(s.Nick)
			t.scheduleRespawn(s.Record)
		case s.Quit:
			t.dropFromRoster(s.Nick)
			t.announcer.Announce(game.NewPlayerLeftEvent(s.Nick, "quit"))
		}
	}

	t.announcer.Announce(game.NewRoundEndedEvent("holdem", wagered))
	t.seats = nil
	t.board = nil
	t.ledger = nil
	t.phase = PhaseNone

	if t.autoLeft > 0 && t.canSeat() >= 2 {
		t.autoLeft--
		t.enterPreStart()
	}
}

func (t *Table) canSeat() int {
	n := 0
	for _, s := range t.roster {
		if s.Stack >= t.cfg.BigBlind {
			n++
		}
	}
	return n
}

// scheduleRespawn blacklists a busted player and grants them a loan
// after the respawn delay.
func (t *Table) scheduleRespawn(rec *game.PlayerRecord) {
	t.blacklist[rec.Nick] = true
	t.sched.Schedule(t.cfg.RespawnDelay, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.blacklist, rec.Nick)
		rec.Bankruptcies++
		rec.Cash = t.cfg.RespawnLoan
		if err := t.store.SavePlayers([]*game.PlayerRecord{rec}); err != nil {
			t.logger.Error("failed to save respawned player", "err", err)
		}
		t.announcer.Announce(game.NewRespawnEvent(rec.Nick, t.cfg.RespawnLoan))
	})
}
