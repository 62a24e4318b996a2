package game

// PlayerRecord is the persisted ledger for one player, loaded when they
// sit down and saved at round boundaries.
type PlayerRecord struct {
	Nick         string
	Cash         int
	Bank         int
	Bankruptcies int
	Winnings     int
	Rounds       int
}

// HouseRecord tracks aggregate house statistics across all tables.
type HouseRecord struct {
	BiggestPot     int
	BiggestPotNick string
	RoundsPlayed   int
}

// Store is the persistence boundary. Implementations are invoked at
// round boundaries only, never mid-round, and failures are non-fatal for
// the round in progress.
type Store interface {
	LoadPlayer(nick string) (*PlayerRecord, error)
	SavePlayers(records []*PlayerRecord) error
	LoadHouse() (*HouseRecord, error)
	SaveHouse(rec *HouseRecord) error
}
