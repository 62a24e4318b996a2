package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/pgray/cardroom/internal/blackjack"
	"github.com/pgray/cardroom/internal/config"
	"github.com/pgray/cardroom/internal/feed"
	"github.com/pgray/cardroom/internal/game"
	"github.com/pgray/cardroom/internal/irc"
	"github.com/pgray/cardroom/internal/poker"
	"github.com/pgray/cardroom/internal/randutil"
	"github.com/pgray/cardroom/internal/store"
)

var CLI struct {
	Config   string `short:"c" default:"cardroom.hcl" help:"Path to HCL configuration file"`
	LogLevel string `short:"l" default:"info" help:"Log level (debug, info, warn, error)"`
	Seed     int64  `help:"Deal RNG seed, 0 derives one from the clock"`
}

func main() {
	kctx := kong.Parse(&CLI)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		kctx.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		kctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	switch CLI.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	seed := CLI.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	db, err := store.Open(cfg.Storage.Path, cfg.Storage.StartingCash)
	if err != nil {
		logger.Error("failed to open store", "path", cfg.Storage.Path, "err", err)
		kctx.Exit(1)
	}
	defer func() { _ = db.Close() }()

	handler := irc.NewHandler(cfg.IRC, db, logger)
	hub := feed.NewHub(logger)

	for i, ch := range cfg.Channels {
		announcer := game.MultiAnnouncer{handler.Announcer(ch.Name)}
		if cfg.Feed.Enabled {
			announcer = append(announcer, hub.Announcer(ch.Name))
		}
		sched := game.NewScheduler(quartz.NewReal())
		rng := randutil.New(seed + int64(i))

		var table irc.Table
		switch ch.Game {
		case "blackjack":
			table = blackjack.NewTable(blackjackConfig(ch), db, announcer, sched, logger, rng)
		case "holdem":
			table = poker.NewTable(pokerConfig(ch), db, announcer, sched, logger, rng)
		}
		handler.Register(ch.Name, table)
		logger.Info("table ready", "channel", ch.Name, "game", ch.Game)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return handler.Run(ctx, cfg.IRC.Server)
	})
	if cfg.Feed.Enabled {
		group.Go(func() error {
			return hub.Serve(ctx, cfg.Feed.Listen)
		})
	}

	logger.Info("cardroom up", "server", cfg.IRC.Server, "channels", len(cfg.Channels))
	if err := group.Wait(); err != nil && err != context.Canceled {
		logger.Error("shutting down", "err", err)
		kctx.Exit(1)
	}
}

func blackjackConfig(ch config.ChannelConfig) blackjack.Config {
	cfg := blackjack.DefaultConfig()
	if ch.MinBet > 0 {
		cfg.MinBet = ch.MinBet
	}
	if ch.Decks > 0 {
		cfg.Decks = ch.Decks
	}
	cfg.HitSoft17 = ch.HitSoft17
	if ch.MaxSeats > 0 {
		cfg.MaxSeats = ch.MaxSeats
	}
	if ch.RespawnLoan > 0 {
		cfg.RespawnLoan = ch.RespawnLoan
	}
	cfg.StartDelay = ch.StartDelayDuration()
	cfg.IdleWarning = ch.IdleWarningDuration()
	cfg.IdleTimeout = ch.IdleTimeoutDuration()
	cfg.RespawnDelay = ch.RespawnDelayDuration()
	return cfg
}

func pokerConfig(ch config.ChannelConfig) poker.Config {
	cfg := poker.DefaultConfig()
	if ch.SmallBlind > 0 {
		cfg.SmallBlind = ch.SmallBlind
	}
	if ch.BigBlind > 0 {
		cfg.BigBlind = ch.BigBlind
	}
	if ch.MaxSeats > 0 {
		cfg.MaxSeats = ch.MaxSeats
	}
	if ch.RespawnLoan > 0 {
		cfg.RespawnLoan = ch.RespawnLoan
	}
	cfg.StartDelay = ch.StartDelayDuration()
	cfg.IdleWarning = ch.IdleWarningDuration()
	cfg.IdleTimeout = ch.IdleTimeoutDuration()
	cfg.RespawnDelay = ch.RespawnDelayDuration()
	cfg.RunoutPause = ch.RunoutPauseDuration()
	return cfg
}
