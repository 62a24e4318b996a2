// Package irc connects the card tables to IRC: one channel per table,
// commands in, events out. Rejections go back to the actor alone as
// notices; everything else is announced in the channel.
package irc

import (
	"context"
	"crypto/tls"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	ircevent "github.com/thoj/go-ircevent"

	"github.com/pgray/cardroom/internal/blackjack"
	"github.com/pgray/cardroom/internal/config"
	"github.com/pgray/cardroom/internal/game"
)

const rateLimit = 2 * time.Second

// Table is the command surface shared by both games.
type Table interface {
	Join(nick string) error
	Leave(nick string) error
	Start(rounds int) error
	Stop() error
}

// Handler owns the IRC connection and routes channel commands to the
// table registered for that channel.
type Handler struct {
	conn   *ircevent.Connection
	logger *log.Logger
	store  game.Store

	mu      sync.Mutex
	tables  map[string]Table
	lastCmd map[string]time.Time
}

// NewHandler builds the IRC connection from config. Tables are attached
// with Register before Run.
func NewHandler(cfg config.IRCSettings, store game.Store, logger *log.Logger) *Handler {
	conn := ircevent.IRC(cfg.Nick, cfg.User)
	conn.UseTLS = cfg.UseTLS
	if cfg.UseTLS {
		conn.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	conn.Password = cfg.Password

	return &Handler{
		conn:    conn,
		logger:  logger.WithPrefix("irc"),
		store:   store,
		tables:  make(map[string]Table),
		lastCmd: make(map[string]time.Time),
	}
}

// Register attaches a table to a channel. Call before Run.
func (h *Handler) Register(channel string, t Table) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tables[strings.ToLower(channel)] = t
}

// Announcer returns an announcer that renders events into the given
// channel.
func (h *Handler) Announcer(channel string) game.Announcer {
	return &announcer{conn: h.conn, channel: channel}
}

// Run connects and processes messages until the context is canceled.
func (h *Handler) Run(ctx context.Context, server string) error {
	h.conn.AddCallback("001", func(e *ircevent.Event) {
		h.mu.Lock()
		defer h.mu.Unlock()
		for channel := range h.tables {
			h.logger.Info("joining channel", "channel", channel)
			h.conn.Join(channel)
		}
	})
	h.conn.AddCallback("PRIVMSG", h.handleMessage)

	if err := h.conn.Connect(server); err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		h.conn.Quit()
	}()
	h.conn.Loop()
	return ctx.Err()
}

func (h *Handler) handleMessage(e *ircevent.Event) {
	channel := strings.ToLower(e.Arguments[0])
	h.mu.Lock()
	t, ok := h.tables[channel]
	h.mu.Unlock()
	if !ok {
		return
	}

	fields := strings.Fields(e.Message())
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "$") {
		return
	}
	if !h.allow(e.Nick) {
		return
	}

	cmd := strings.ToLower(fields[0])
	amount := 0
	if len(fields) > 1 {
		amount, _ = strconv.Atoi(fields[1])
	}

	if err := h.dispatch(t, cmd, e.Nick, amount); err != nil {
		var rej *game.Rejection
		if errors.As(err, &rej) {
			h.conn.Notice(e.Nick, rej.Msg)
			return
		}
		h.logger.Error("command failed", "cmd", cmd, "nick", e.Nick, "err", err)
		h.conn.Notice(e.Nick, "something went wrong, try again")
	}
}

// dispatch routes a command to the table, falling through to the
// game-specific surface for whichever game runs in the channel. The
// tables re-validate phase and turn ownership themselves.
func (h *Handler) dispatch(t Table, cmd, nick string, amount int) error {
	switch cmd {
	case "$join":
		return t.Join(nick)
	case "$leave", "$quit":
		return t.Leave(nick)
	case "$start":
		if amount < 1 {
			amount = 1
		}
		return t.Start(amount)
	case "$stop":
		return t.Stop()
	case "$cash", "$stats":
		return h.stats(t, nick)
	}

	switch bj := t.(type) {
	case *blackjack.Table:
		return h.dispatchBlackjack(bj, cmd, nick, amount)
	default:
		return h.dispatchPoker(t, cmd, nick, amount)
	}
}

func (h *Handler) dispatchBlackjack(t *blackjack.Table, cmd, nick string, amount int) error {
	switch cmd {
	case "$bet":
		return t.Bet(nick, amount)
	case "$hit":
		return t.Hit(nick)
	case "$stand", "$stay":
		return t.Stand(nick)
	case "$double":
		return t.DoubleDown(nick)
	case "$surrender":
		return t.Surrender(nick)
	case "$split":
		return t.Split(nick)
	case "$insure":
		return t.Insure(nick, amount)
	default:
		return game.Rejectf(game.ReasonNotEligible, "unknown command %s", cmd)
	}
}

func (h *Handler) dispatchPoker(t Table, cmd, nick string, amount int) error {
	p, ok := t.(pokerTable)
	if !ok {
		return game.Rejectf(game.ReasonNotEligible, "unknown command %s", cmd)
	}
	switch cmd {
	case "$bet":
		return p.Bet(nick, amount)
	case "$raise":
		return p.Raise(nick, amount)
	case "$call":
		return p.Call(nick)
	case "$check":
		return p.Check(nick)
	case "$fold":
		return p.Fold(nick)
	case "$allin":
		return p.AllIn(nick)
	default:
		return game.Rejectf(game.ReasonNotEligible, "unknown command %s", cmd)
	}
}

// pokerTable is the hold'em betting surface.
type pokerTable interface {
	Bet(nick string, amount int) error
	Raise(nick string, amount int) error
	Call(nick string) error
	Check(nick string) error
	Fold(nick string) error
	AllIn(nick string) error
}

func (h *Handler) stats(_ Table, nick string) error {
	rec, err := h.store.LoadPlayer(nick)
	if err != nil {
		return err
	}
	h.conn.Noticef(nick, "cash %d, winnings %d over %d rounds, %d bankruptcies",
		rec.Cash, rec.Winnings, rec.Rounds, rec.Bankruptcies)
	return nil
}

// allow rate-limits commands per nick.
func (h *Handler) allow(nick string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if last, ok := h.lastCmd[nick]; ok && time.Since(last) < rateLimit {
		return false
	}
	h.lastCmd[nick] = time.Now()
	return true
}
