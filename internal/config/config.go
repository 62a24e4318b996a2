// Package config loads the cardroom HCL configuration: the IRC
// connection, the spectator feed, storage, and one block per channel
// describing which game runs there and under what rules.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete cardroom configuration
type Config struct {
	IRC      IRCSettings     `hcl:"irc,block"`
	Feed     FeedSettings    `hcl:"feed,block"`
	Storage  StorageSettings `hcl:"storage,block"`
	Channels []ChannelConfig `hcl:"channel,block"`
}

// IRCSettings contains the IRC connection configuration
type IRCSettings struct {
	Server   string `hcl:"server"`
	Nick     string `hcl:"nick,optional"`
	User     string `hcl:"user,optional"`
	UseTLS   bool   `hcl:"tls,optional"`
	Password string `hcl:"password,optional"`
}

// FeedSettings contains the spectator websocket feed configuration
type FeedSettings struct {
	Enabled bool   `hcl:"enabled,optional"`
	Listen  string `hcl:"listen,optional"`
}

// StorageSettings contains the sqlite persistence configuration
type StorageSettings struct {
	Path         string `hcl:"path,optional"`
	StartingCash int    `hcl:"starting_cash,optional"`
}

// ChannelConfig defines one IRC channel and the game hosted in it
type ChannelConfig struct {
	Name         string `hcl:"name,label"`
	Game         string `hcl:"game"` // "blackjack" or "holdem"
	MinBet       int    `hcl:"min_bet,optional"`
	Decks        int    `hcl:"decks,optional"`
	HitSoft17    bool   `hcl:"hit_soft_17,optional"`
	SmallBlind   int    `hcl:"small_blind,optional"`
	BigBlind     int    `hcl:"big_blind,optional"`
	MaxSeats     int    `hcl:"max_seats,optional"`
	StartDelay   int    `hcl:"start_delay,optional"`   // seconds
	IdleWarning  int    `hcl:"idle_warning,optional"`  // seconds
	IdleTimeout  int    `hcl:"idle_timeout,optional"`  // seconds
	RespawnDelay int    `hcl:"respawn_delay,optional"` // seconds
	RespawnLoan  int    `hcl:"respawn_loan,optional"`
	RunoutPause  int    `hcl:"runout_pause,optional"` // seconds
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		IRC: IRCSettings{
			Server: "irc.libera.chat:6697",
			Nick:   "cardroom",
			User:   "cardroom",
			UseTLS: true,
		},
		Feed: FeedSettings{
			Enabled: false,
			Listen:  "localhost:8080",
		},
		Storage: StorageSettings{
			Path:         "cardroom.db",
			StartingCash: 1000,
		},
		Channels: []ChannelConfig{
			{
				Name:       "#cardroom",
				Game:       "holdem",
				SmallBlind: 1,
				BigBlind:   2,
			},
		},
	}
}

// Load reads configuration from an HCL file, falling back to defaults
// when the file does not exist.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if config.IRC.Nick == "" {
		config.IRC.Nick = "cardroom"
	}
	if config.IRC.User == "" {
		config.IRC.User = config.IRC.Nick
	}
	if config.Feed.Listen == "" {
		config.Feed.Listen = "localhost:8080"
	}
	if config.Storage.Path == "" {
		config.Storage.Path = "cardroom.db"
	}
	if config.Storage.StartingCash == 0 {
		config.Storage.StartingCash = 1000
	}

	for i := range config.Channels {
		ch := &config.Channels[i]
		if ch.MinBet == 0 {
			ch.MinBet = 5
		}
		if ch.Decks == 0 {
			ch.Decks = 4
		}
		if ch.SmallBlind == 0 {
			ch.SmallBlind = 1
		}
		if ch.BigBlind == 0 {
			ch.BigBlind = ch.SmallBlind * 2
		}
		if ch.MaxSeats == 0 {
			if ch.Game == "blackjack" {
				ch.MaxSeats = 6
			} else {
				ch.MaxSeats = 8
			}
		}
		if ch.StartDelay == 0 {
			ch.StartDelay = 15
		}
		if ch.IdleWarning == 0 {
			ch.IdleWarning = 20
		}
		if ch.IdleTimeout == 0 {
			ch.IdleTimeout = 30
		}
		if ch.RespawnDelay == 0 {
			ch.RespawnDelay = 60
		}
		if ch.RespawnLoan == 0 {
			ch.RespawnLoan = 100
		}
		if ch.RunoutPause == 0 {
			ch.RunoutPause = 3
		}
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.IRC.Server == "" {
		return fmt.Errorf("irc server must be set")
	}
	if len(c.Channels) == 0 {
		return fmt.Errorf("at least one channel must be configured")
	}
	for _, ch := range c.Channels {
		if ch.Name == "" || ch.Name[0] != '#' {
			return fmt.Errorf("channel name %q must start with #", ch.Name)
		}
		switch ch.Game {
		case "blackjack":
			if ch.MinBet <= 0 {
				return fmt.Errorf("channel %s: min bet must be positive", ch.Name)
			}
		case "holdem":
			if ch.SmallBlind <= 0 {
				return fmt.Errorf("channel %s: small blind must be positive", ch.Name)
			}
			if ch.BigBlind <= ch.SmallBlind {
				return fmt.Errorf("channel %s: big blind must be greater than small blind", ch.Name)
			}
		default:
			return fmt.Errorf("channel %s: unknown game %q", ch.Name, ch.Game)
		}
		if ch.IdleWarning >= ch.IdleTimeout {
			return fmt.Errorf("channel %s: idle warning must come before the timeout", ch.Name)
		}
	}
	return nil
}

// StartDelayDuration returns the auto-start delay as a duration.
func (c *ChannelConfig) StartDelayDuration() time.Duration {
	return time.Duration(c.StartDelay) * time.Second
}

// IdleWarningDuration returns the idle warning delay as a duration.
func (c *ChannelConfig) IdleWarningDuration() time.Duration {
	return time.Duration(c.IdleWarning) * time.Second
}

// IdleTimeoutDuration returns the idle timeout as a duration.
func (c *ChannelConfig) IdleTimeoutDuration() time.Duration {
	return time.Duration(c.IdleTimeout) * time.Second
}

// RespawnDelayDuration returns the respawn delay as a duration.
func (c *ChannelConfig) RespawnDelayDuration() time.Duration {
	return time.Duration(c.RespawnDelay) * time.Second
}

// RunoutPauseDuration returns the showdown pause as a duration.
func (c *ChannelConfig) RunoutPauseDuration() time.Duration {
	return time.Duration(c.RunoutPause) * time.Second
}
