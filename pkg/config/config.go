package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

type BettingConfig struct {
	StartingBalance        int  `json:"starting_balance"`
	FallbackMultiplier     int  `json:"fallback_multiplier"`
	MinStake               int  `json:"min_stake"`
	RefreshIntervalSeconds int  `json:"refresh_interval_seconds"`
	SweepWithRefresh       bool `json:"sweep_with_refresh"`
	SweepIntervalSeconds   int  `json:"sweep_interval_seconds"`
	NotifyWinners          bool `json:"notify_winners"`
}

type DatabaseConfig struct {
	Type string `json:"type"` // "sqlite" or "postgres"
}

type GeneralConfig struct {
	BotName         string         `json:"bot_name"`
	CurrencyName    string         `json:"currency_name"`
	CurrencySymbol  string         `json:"currency_symbol"`
	EnableAPI       bool           `json:"enable_api"`
	ApiPort         string         `json:"api_port"`
	AllowedChannels []string       `json:"allowed_channels"`
	FplBaseURL      string         `json:"fpl_base_url"`
	SettlementHook  string         `json:"settlement_webhook_url"`
	Database        DatabaseConfig `json:"database"`
}

var (
	Betting    BettingConfig
	Bot        GeneralConfig
	DBType     string
	ConnString string
	Env        string
)

// Defaults returns the configuration used when config.json / betting.json are absent.
func Defaults() (GeneralConfig, BettingConfig) {
	return GeneralConfig{
			BotName:        "fpl-discord-bot",
			CurrencyName:   "FPL coins",
			CurrencySymbol: "🪙",
			ApiPort:        ":8080",
			FplBaseURL:     "https://fantasy.premierleague.com/api",
		}, BettingConfig{
			StartingBalance:        100,
			FallbackMultiplier:     2,
			MinStake:               1,
			RefreshIntervalSeconds: 60,
			SweepWithRefresh:       true,
			NotifyWinners:          true,
		}
}

func Load() {
	Bot, Betting = Defaults()
	loadJSON("config.json", &Bot)
	loadJSON("betting.json", &Betting)

	Env = os.Getenv("ENV")
	if Env == "" {
		Env = "prod"
	}

	setupDatabaseConfig()
}

func setupDatabaseConfig() {
	// DB_TYPE from .env wins over config.json
	DBType = os.Getenv("DB_TYPE")
	if DBType == "" {
		DBType = Bot.Database.Type
	}
	if DBType == "" {
		DBType = "sqlite"
	}

	switch DBType {
	case "postgres":
		ConnString = buildPostgresConnectionString()
	case "sqlite":
		fallthrough
	default:
		ConnString = os.Getenv("SQLITE_PATH")
		if ConnString == "" {
			ConnString = "./database.db"
		}
		DBType = "sqlite"
	}
}

func buildPostgresConnectionString() string {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		log.Println("Using DATABASE_URL from environment")
		return dbURL
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		log.Fatal("DB_HOST is required for PostgreSQL. Set it in .env file or use DATABASE_URL")
	}

	portStr := os.Getenv("DB_PORT")
	port := 5432
	if portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	user := os.Getenv("DB_USER")
	if user == "" {
		log.Fatal("DB_USER is required for PostgreSQL. Set it in .env file")
	}

	password := os.Getenv("DB_PASSWORD")
	if password == "" {
		log.Fatal("DB_PASSWORD is required for PostgreSQL. Set it in .env file")
	}

	dbname := os.Getenv("DB_NAME")
	if dbname == "" {
		dbname = "postgres"
	}

	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "require"
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}

// loadJSON overlays filename onto target. A missing file keeps the defaults,
// a malformed one stops the bot.
func loadJSON(filename string, target interface{}) {
	file, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("%s not found, using defaults", filename)
		return
	}
	if err != nil {
		log.Fatalf("Error reading %s: %v", filename, err)
	}

	if err := json.Unmarshal(file, target); err != nil {
		log.Fatalf("Error parsing %s: %v", filename, err)
	}
}

// IsChannelAllowed checks if a channel ID is in the allowed channels list
// Returns true if the list is empty (all channels allowed) or if the channel is in the list
func (c *GeneralConfig) IsChannelAllowed(channelID string) bool {
	if len(c.AllowedChannels) == 0 {
		return true
	}
	for _, id := range c.AllowedChannels {
		if id == channelID {
			return true
		}
	}
	return false
}

// RefreshInterval is how often FPL data is pulled. Defaults to one minute.
func (b *BettingConfig) RefreshInterval() time.Duration {
	if b.RefreshIntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(b.RefreshIntervalSeconds) * time.Second
}

// SweepInterval is the settlement cadence when sweeps do not ride on the refresh job.
func (b *BettingConfig) SweepInterval() time.Duration {
	if b.SweepIntervalSeconds <= 0 {
		return b.RefreshInterval()
	}
	return time.Duration(b.SweepIntervalSeconds) * time.Second
}

// Fallback is the multiplier offered while a bet type has no settled history.
func (b *BettingConfig) Fallback() int {
	if b.FallbackMultiplier < 2 {
		return 2
	}
	return b.FallbackMultiplier
}

func (b *BettingConfig) StartBalance() int {
	if b.StartingBalance < 0 {
		return 0
	}
	return b.StartingBalance
}
