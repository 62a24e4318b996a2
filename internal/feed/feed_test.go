package feed

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/pgray/cardroom/internal/deck"
	"github.com/pgray/cardroom/internal/game"
)

func dialTestHub(t *testing.T, h *Hub, channel string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(h.handleFeed))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/feed"
	if channel != "" {
		url += "?channel=" + channel
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	// The handler registers the client after the handshake completes.
	deadline := time.Now().Add(2 * time.Second)
	for {
		h.mu.Lock()
		n := len(h.clients)
		h.mu.Unlock()
		if n > 0 {
			return conn
		}
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env
}

func TestHubBroadcastsPublicEvents(t *testing.T) {
	h := NewHub(log.New(io.Discard))
	conn := dialTestHub(t, h, "")

	h.Announcer("#cards").Announce(game.NewPayoutEvent("alice", 40, "flush"))

	env := readEnvelope(t, conn)
	if env.Channel != "#cards" {
		t.Errorf("channel = %q", env.Channel)
	}
	if env.Type != string(game.EventTypePayout) {
		t.Errorf("type = %q", env.Type)
	}
}

func TestHubDropsPrivateDeals(t *testing.T) {
	h := NewHub(log.New(io.Discard))
	conn := dialTestHub(t, h, "")
	ann := h.Announcer("#cards")

	hole := []deck.Card{{Suit: deck.Spades, Rank: deck.Ace}}
	ann.Announce(game.NewCardsDealtEvent("alice", hole, true))
	ann.Announce(game.NewRoundEndedEvent("holdem", 12))

	env := readEnvelope(t, conn)
	if env.Type != string(game.EventTypeRoundEnded) {
		t.Errorf("first delivered event = %q, hole cards leaked", env.Type)
	}
}

func TestHubFiltersByChannel(t *testing.T) {
	h := NewHub(log.New(io.Discard))
	conn := dialTestHub(t, h, "%23poker")

	h.Announcer("#blackjack").Announce(game.NewRoundEndedEvent("blackjack", 5))
	h.Announcer("#poker").Announce(game.NewRoundEndedEvent("holdem", 9))

	env := readEnvelope(t, conn)
	if env.Channel != "#poker" {
		t.Errorf("channel = %q, filter ignored", env.Channel)
	}
}
