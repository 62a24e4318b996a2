// Package store persists player and house records in sqlite. It is only
// touched at round boundaries; tables keep all mid-round state in memory.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pgray/cardroom/internal/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS players (
	nick         TEXT PRIMARY KEY,
	cash         INTEGER NOT NULL,
	bank         INTEGER NOT NULL DEFAULT 0,
	bankruptcies INTEGER NOT NULL DEFAULT 0,
	winnings     INTEGER NOT NULL DEFAULT 0,
	rounds       INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS house (
	id              INTEGER PRIMARY KEY CHECK (id = 1),
	biggest_pot     INTEGER NOT NULL DEFAULT 0,
	biggest_pot_nick TEXT NOT NULL DEFAULT '',
	rounds_played   INTEGER NOT NULL DEFAULT 0
);
INSERT OR IGNORE INTO house (id) VALUES (1);
`

// DB is a sqlite-backed game.Store. First-time players are created with
// the configured starting cash.
type DB struct {
	db           *sql.DB
	startingCash int
}

// Open opens (or creates) the database at path. Use ":memory:" for an
// ephemeral store in tests.
func Open(path string, startingCash int) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create tables: %w", err)
	}
	return &DB{db: db, startingCash: startingCash}, nil
}

// Close releases the database handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// LoadPlayer fetches a player record, creating one with the starting
// cash on first sight.
func (d *DB) LoadPlayer(nick string) (*game.PlayerRecord, error) {
	rec := &game.PlayerRecord{Nick: nick}
	err := d.db.QueryRow(
		`SELECT cash, bank, bankruptcies, winnings, rounds FROM players WHERE nick = ?`, nick,
	).Scan(&rec.Cash, &rec.Bank, &rec.Bankruptcies, &rec.Winnings, &rec.Rounds)
	if err == sql.ErrNoRows {
		rec.Cash = d.startingCash
		if _, err := d.db.Exec(
			`INSERT INTO players (nick, cash) VALUES (?, ?)`, nick, rec.Cash,
		); err != nil {
			return nil, fmt.Errorf("store: create player %s: %w", nick, err)
		}
		return rec, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: load player %s: %w", nick, err)
	}
	return rec, nil
}

// SavePlayers writes the given records back in one transaction.
func (d *DB) SavePlayers(records []*game.PlayerRecord) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO players (nick, cash, bank, bankruptcies, winnings, rounds)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(nick) DO UPDATE SET
			cash = excluded.cash,
			bank = excluded.bank,
			bankruptcies = excluded.bankruptcies,
			winnings = excluded.winnings,
			rounds = excluded.rounds`)
	if err != nil {
		return fmt.Errorf("store: prepare save: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(rec.Nick, rec.Cash, rec.Bank, rec.Bankruptcies, rec.Winnings, rec.Rounds); err != nil {
			return fmt.Errorf("store: save player %s: %w", rec.Nick, err)
		}
	}
	return tx.Commit()
}

// LoadHouse fetches the single house record.
func (d *DB) LoadHouse() (*game.HouseRecord, error) {
	rec := &game.HouseRecord{}
	err := d.db.QueryRow(
		`SELECT biggest_pot, biggest_pot_nick, rounds_played FROM house WHERE id = 1`,
	).Scan(&rec.BiggestPot, &rec.BiggestPotNick, &rec.RoundsPlayed)
	if err != nil {
		return nil, fmt.Errorf("store: load house: %w", err)
	}
	return rec, nil
}

// SaveHouse writes the house record back.
func (d *DB) SaveHouse(rec *game.HouseRecord) error {
	if _, err := d.db.Exec(
		`UPDATE house SET biggest_pot = ?, biggest_pot_nick = ?, rounds_played = ? WHERE id = 1`,
		rec.BiggestPot, rec.BiggestPotNick, rec.RoundsPlayed,
	); err != nil {
		return fmt.Errorf("store: save house: %w", err)
	}
	return nil
}
