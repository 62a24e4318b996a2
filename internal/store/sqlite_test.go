package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pgray/cardroom/internal/game"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:", 100)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadPlayerCreatesWithStartingCash(t *testing.T) {
	db := openTestDB(t)

	rec, err := db.LoadPlayer("alice")
	require.NoError(t, err)
	require.Equal(t, "alice", rec.Nick)
	require.Equal(t, 100, rec.Cash)
	require.Zero(t, rec.Rounds)

	// A second load finds the stored row, not a fresh one.
	rec.Cash = 250
	require.NoError(t, db.SavePlayers([]*game.PlayerRecord{rec}))
	again, err := db.LoadPlayer("alice")
	require.NoError(t, err)
	require.Equal(t, 250, again.Cash)
}

func TestSavePlayersRoundTrip(t *testing.T) {
	db := openTestDB(t)

	records := []*game.PlayerRecord{
		{Nick: "alice", Cash: 42, Bank: 7, Bankruptcies: 1, Winnings: 300, Rounds: 12},
		{Nick: "bob", Cash: 9, Winnings: 5, Rounds: 3},
	}
	require.NoError(t, db.SavePlayers(records))

	for _, want := range records {
		got, err := db.LoadPlayer(want.Nick)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestHouseRecord(t *testing.T) {
	db := openTestDB(t)

	house, err := db.LoadHouse()
	require.NoError(t, err)
	require.Zero(t, house.BiggestPot)

	house.BiggestPot = 5000
	house.BiggestPotNick = "alice"
	house.RoundsPlayed = 77
	require.NoError(t, db.SaveHouse(house))

	again, err := db.LoadHouse()
	require.NoError(t, err)
	require.Equal(t, house, again)
}
