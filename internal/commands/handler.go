package commands

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"fplbot/internal/betting"
	"fplbot/internal/database"
	"fplbot/internal/fpl"
	"fplbot/internal/metrics"
	"fplbot/pkg/config"
	"fplbot/pkg/utils"
)

const requestTimeout = 10 * time.Second

// Accounts is the part of the store commands read and write directly.
type Accounts interface {
	GetBalance(ctx context.Context, userID string) (int, error)
	ListBetsByUser(ctx context.Context, userID string, limit int) ([]database.Bet, error)
	SetManagerID(ctx context.Context, userID string, managerID int) error
	GetManagerID(ctx context.Context, userID string) (int, bool, error)
}

// FplAPI is the live FPL lookups the commands make. *fpl.Client satisfies it.
type FplAPI interface {
	Manager(ctx context.Context, managerID int) (*fpl.Manager, error)
	ManagerHistory(ctx context.Context, managerID int) (*fpl.ManagerHistory, error)
	PlayerSummary(ctx context.Context, playerID int) (*fpl.PlayerSummary, error)
	LiveGameweek(ctx context.Context, gameweek int) (*fpl.LiveGameweek, error)
	ManagerPicks(ctx context.Context, managerID, gameweek int) (*fpl.Picks, error)
	ManagerTransfers(ctx context.Context, managerID int) ([]fpl.Transfer, error)
	League(ctx context.Context, leagueID int) (*fpl.League, error)
}

// Handler routes Discord events to the betting service and FPL data.
type Handler struct {
	log      *zap.Logger
	accounts Accounts
	bets     *betting.Service
	cache    *fpl.Cache
	api      FplAPI
}

func NewHandler(log *zap.Logger, accounts Accounts, bets *betting.Service, cache *fpl.Cache, api FplAPI) *Handler {
	return &Handler{log: log, accounts: accounts, bets: bets, cache: cache, api: api}
}

// MessageCreate serves the "!" prefix commands.
func (h *Handler) MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}
	if !strings.HasPrefix(m.Content, "!") {
		return
	}
	if !config.Bot.IsChannelAllowed(m.ChannelID) {
		return
	}

	args := strings.Fields(m.Content)
	command := strings.ToLower(args[0])

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var embed *discordgo.MessageEmbed
	switch command {
	case "!help":
		embed = HelpEmbed(s.State.User.AvatarURL(""))
	case "!balance", "!coins":
		embed = h.balanceEmbed(ctx, m.Author)
	case "!odds":
		embed = h.oddsEmbed(ctx)
	case "!bets":
		embed = h.betsEmbed(ctx, m.Author)
	case "!fixtures":
		embed = h.fixturesEmbed(10)
	default:
		return
	}

	metrics.CommandsHandled.WithLabelValues(strings.TrimPrefix(command, "!")).Inc()
	if _, err := s.ChannelMessageSendEmbed(m.ChannelID, embed); err != nil {
		h.log.Warn("failed to send message", zap.String("command", command), zap.Error(err))
	}
}

func (h *Handler) balanceEmbed(ctx context.Context, user *discordgo.User) *discordgo.MessageEmbed {
	balance, err := h.accounts.GetBalance(ctx, user.ID)
	if err != nil {
		h.log.Error("balance lookup failed", zap.String("user_id", user.ID), zap.Error(err))
		return utils.ErrorEmbed("Could not read the balance right now.")
	}
	return utils.GoldEmbed("Balance", "**"+user.Username+"** has **"+utils.Coins(balance)+"**.")
}

func (h *Handler) oddsEmbed(ctx context.Context) *discordgo.MessageEmbed {
	lines := make([]OddsLine, 0, len(betting.BetTypes))
	for _, bt := range betting.BetTypes {
		raw, err := h.bets.Odds(ctx, bt, false)
		if err != nil {
			h.log.Error("odds lookup failed", zap.String("bet_type", string(bt)), zap.Error(err))
			return utils.ErrorEmbed("Could not compute odds right now.")
		}
		multiplier, err := h.bets.OfferedMultiplier(ctx, bt)
		if err != nil {
			h.log.Error("odds lookup failed", zap.String("bet_type", string(bt)), zap.Error(err))
			return utils.ErrorEmbed("Could not compute odds right now.")
		}
		lines = append(lines, OddsLine{Type: bt, Odds: raw, Multiplier: multiplier})
	}
	return OddsEmbed(lines)
}

func (h *Handler) betsEmbed(ctx context.Context, user *discordgo.User) *discordgo.MessageEmbed {
	bets, err := h.accounts.ListBetsByUser(ctx, user.ID, 10)
	if err != nil {
		h.log.Error("bet listing failed", zap.String("user_id", user.ID), zap.Error(err))
		return utils.ErrorEmbed("Could not load your bets right now.")
	}
	return BetsEmbed(user.Username, bets, h.cache, h.cache)
}

func (h *Handler) fixturesEmbed(count int) *discordgo.MessageEmbed {
	if !h.cache.Loaded() {
		return utils.ErrorEmbed("FPL data is still loading, try again in a minute.")
	}
	return FixturesEmbed(h.cache.UpcomingFixtures(count), h.cache)
}
