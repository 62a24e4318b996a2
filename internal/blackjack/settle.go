package blackjack

import (
	"fmt"

	"github.com/pgray/cardroom/internal/game"
)

// endRound plays the dealer, settles every hand and resets the table.
// Callers hold t.mu.
func (t *Table) endRound() {
	t.phase = PhaseEnd
	t.bumpTurn()
	t.turn = -1

	if t.needDealerPlay() {
		t.playDealer()
	}
	t.announcer.Announce(game.NewRevealEvent("dealer", t.dealer.Cards(),
		fmt.Sprintf("dealer has %d", Sum(t.dealer))))

	wagered := 0
	for _, s := range t.seats {
		wagered += t.settleSeat(s)
	}

	t.cleanUp(wagered)
}

// needDealerPlay reports whether the dealer must draw: true when at
// least one non-busted, non-surrendered, non-blackjack hand remains.
func (t *Table) needDealerPlay() bool {
	for _, s := range t.seats {
		if s.Surrendered {
			continue
		}
		for _, h := range s.Hands {
			if !IsBust(h) && !IsBlackjack(h) {
				return true
			}
		}
	}
	return false
}

// playDealer draws by the house rule: hit below 17, and on soft 17 when
// configured.
func (t *Table) playDealer() {
	for {
		sum := Sum(t.dealer)
		if sum < 17 || (t.cfg.HitSoft17 && IsSoft17(t.dealer)) {
			t.dealer.Add(t.draw())
			continue
		}
		return
	}
}

// settleSeat pays out every hand and the insurance side bet for one
// seat, returning the total the seat wagered this round.
func (t *Table) settleSeat(s *Seat) int {
	wagered := 0

	for _, h := range s.Hands {
		wagered += h.Bet
		payout := 0
		outcome := ""

		if s.Surrendered {
			payout = h.Bet / 2
			outcome = "surrender"
		} else {
			result := Compare(h, t.dealer)
			outcome = result.String()
			switch result {
			case OutcomeBust, OutcomeLoss:
				payout = 0
			case OutcomePush:
				payout = h.Bet
			case OutcomeWin:
				payout = h.Bet * 2
			case OutcomeBlackjack:
				// Naturals pay 3:2.
				payout = h.Bet + h.Bet*3/2
			}
		}

		s.Stack += payout
		if payout > h.Bet {
			s.Record.Winnings += payout - h.Bet
		}
		t.announcer.Announce(game.NewPayoutEvent(s.Nick, payout, outcome))
	}

	if s.Insurance > 0 {
		wagered += s.Insurance
		if IsBlackjack(t.dealer) {
			// Insurance pays 3:1.
			win := s.Insurance * 3
			s.Stack += win
			s.Record.Winnings += win - s.Insurance
			t.announcer.Announce(game.NewPayoutEvent(s.Nick, win, "insurance"))
		}
	}

	return wagered
}

// cleanUp discards all cards, persists records, handles bankruptcies and
// quit-flagged seats, then either re-arms the next round or goes idle.
// Callers hold t.mu.
func (t *Table) cleanUp(wagered int) {
	for _, s := range t.seats {
		for _, h := range s.Hands {
			t.shoe.DiscardAll(h.Cards())
		}
	}
	t.shoe.DiscardAll(t.dealer.Cards())

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

	t.announcer.Announce(game.NewRoundEndedEvent("blackjack", wagered))
	t.seats = nil
	t.dealer = nil
	t.phase = PhaseNone

	if t.autoLeft > 0 && len(t.roster) > 0 {
		t.autoLeft--
		t.enterPreStart()
	}
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
