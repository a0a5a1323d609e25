package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"fplbot/internal/api"
	"fplbot/internal/betting"
	"fplbot/internal/commands"
	"fplbot/internal/database"
	"fplbot/internal/fpl"
	"fplbot/internal/logger"
	"fplbot/internal/metrics"
	"fplbot/internal/updater"
	"fplbot/internal/webhook"
	"fplbot/pkg/config"
)

func main() {
	_ = godotenv.Load()

	// Load Configuration
	config.Load()

	zlog, err := logger.New(config.Bot.BotName, config.Env)
	if err != nil {
		log.Fatal("Error creating logger: ", err)
	}
	defer zlog.Sync()

	metrics.Register()

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		zlog.Fatal("DISCORD_TOKEN not found in environment variables")
	}

	db, err := database.Open(config.DBType, config.ConnString, zlog.Named("database"))
	if err != nil {
		zlog.Fatal("failed to open database", zap.String("type", config.DBType), zap.Error(err))
	}
	store := database.NewStore(db, config.Betting.StartBalance())
	defer store.Close()

	client := fpl.NewClient(config.Bot.FplBaseURL)
	cache := fpl.NewCache(client)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := cache.Refresh(ctx); err != nil {
		zlog.Warn("initial FPL refresh failed, retrying on schedule", zap.Error(err))
	}
	cancel()

	// Create Discord Session
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		zlog.Fatal("error creating Discord session", zap.Error(err))
	}

	opts := betting.Options{
		FallbackMultiplier: config.Betting.Fallback(),
		MinStake:           config.Betting.MinStake,
	}
	var notifiers betting.Notifiers
	if config.Betting.NotifyWinners {
		notifiers = append(notifiers, commands.NewDMNotifier(dg, zlog.Named("notifier"), cache, cache))
	}
	if config.Bot.SettlementHook != "" {
		hook := webhook.NewSender(config.Bot.SettlementHook, zlog.Named("webhook"))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := hook.Test(ctx); err != nil {
			zlog.Warn("settlement webhook test failed", zap.Error(err))
		}
		cancel()
		notifiers = append(notifiers, hook)
	}
	if len(notifiers) > 0 {
		opts.Notifier = notifiers
	}
	bets := betting.NewService(store, cache, zlog.Named("betting"), opts)

	upd, err := updater.New(cache, bets, zlog.Named("updater"), updater.Config{
		RefreshInterval:  config.Betting.RefreshInterval(),
		SweepWithRefresh: config.Betting.SweepWithRefresh,
		SweepInterval:    config.Betting.SweepInterval(),
	})
	if err != nil {
		zlog.Fatal("failed to create updater", zap.Error(err))
	}
	if err := upd.Start(); err != nil {
		zlog.Fatal("failed to start updater", zap.Error(err))
	}

	// Start API Server
	var httpServer *http.Server
	if config.Bot.EnableAPI {
		httpServer = api.NewServer(zlog.Named("api"), store, bets, cache).Start(config.Bot.ApiPort)
	} else {
		zlog.Info("API is disabled in config.json")
	}

	// Register Handlers
	handler := commands.NewHandler(zlog.Named("commands"), store, bets, cache, client)
	dg.AddHandler(handler.MessageCreate)
	dg.AddHandler(handler.SlashHandler)
	dg.AddHandler(handler.ComponentsHandler)

	// Identify Intent
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

	// Open Websocket
	if err := dg.Open(); err != nil {
		zlog.Fatal("error opening connection", zap.Error(err))
	}

	// Register Slash Commands
	zlog.Info("registering slash commands")
	if _, err := dg.ApplicationCommandBulkOverwrite(dg.State.User.ID, "", commands.SlashCommands(cache.TeamNames())); err != nil {
		zlog.Fatal("cannot register slash commands", zap.Error(err))
	}

	zlog.Info("bot is now running, press CTRL-C to exit")

	// Wait here until CTRL-C or other term signal is received.
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	if err := upd.Shutdown(); err != nil {
		zlog.Warn("updater shutdown", zap.Error(err))
	}
	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			zlog.Warn("api shutdown", zap.Error(err))
		}
		cancel()
	}
	dg.Close()
}
