package poker

// Pot is one betting tier: everyone who paid into it and the subset of
// payers still eligible to win it. Folded players stay donors but are
// never eligible.
type Pot struct {
	donations map[string]int
	eligible  map[string]bool
}

func newPot() *Pot {
	return &Pot{
		donations: make(map[string]int),
		eligible:  make(map[string]bool),
	}
}

func (p *Pot) add(nick string, amount int, eligible bool) {
	p.donations[nick] += amount
	if eligible {
		p.eligible[nick] = true
	} else {
		delete(p.eligible, nick)
	}
}

// Total is the chip value of the pot.
func (p *Pot) Total() int {
	total := 0
	for _, amount := range p.donations {
		total += amount
	}
	return total
}

// Donated returns how much the named player paid into this pot.
func (p *Pot) Donated(nick string) int {
	return p.donations[nick]
}

// IsEligible reports whether the named player can win this pot.
func (p *Pot) IsEligible(nick string) bool {
	return p.eligible[nick]
}

// Ledger accumulates the round's pots. A new side pot opens whenever an
// all-in leaves a live player in the current pot with nothing more to
// contribute.
type Ledger struct {
	pots []*Pot
}

// NewLedger creates an empty pot ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Pots returns the pots built so far, main pot first.
func (l *Ledger) Pots() []*Pot {
	return l.pots
}

// Total is the chip value across all pots.
func (l *Ledger) Total() int {
	total := 0
	for _, p := range l.pots {
		total += p.Total()
	}
	return total
}

// Sweep moves every seat's uncommitted street bet into the ledger, one
// tier per distinct all-in level, and returns the amount swept. When
// only one seat has chips left in front the remainder is uncontested
// and goes back to their stack instead.
func (l *Ledger) Sweep(seats []*Seat) int {
	swept := 0
	for {
		var bettors []*Seat
		low := 0
		for _, s := range seats {
			if s.Bet == 0 {
				continue
			}
			bettors = append(bettors, s)
			if low == 0 || s.Bet < low {
				low = s.Bet
			}
		}
		if len(bettors) < 2 {
			if len(bettors) == 1 {
				bettors[0].Stack += bettors[0].Bet
				bettors[0].Bet = 0
			}
			return swept
		}

		if l.current() == nil || l.tierClosed(seats) {
			l.pots = append(l.pots, newPot())
		}
		pot := l.current()
		for _, s := range bettors {
			pot.add(s.Nick, low, !s.Folded)
			s.Bet -= low
			swept += low
		}
	}
}

func (l *Ledger) current() *Pot {
	if len(l.pots) == 0 {
		return nil
	}
	return l.pots[len(l.pots)-1]
}

// tierClosed reports whether the current pot already holds a live donor
// who has nothing left to contribute, which caps the tier and forces a
// side pot for the remaining chips.
func (l *Ledger) tierClosed(seats []*Seat) bool {
	pot := l.current()
	for _, s := range seats {
		if s.Bet == 0 && !s.Folded && pot.Donated(s.Nick) > 0 {
			return true
		}
	}
	return false
}
