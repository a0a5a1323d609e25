package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"fplbot/internal/betting"
	"fplbot/internal/fpl"
	"fplbot/internal/metrics"
	"fplbot/pkg/config"
	"fplbot/pkg/utils"
)

func respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{utils.ErrorEmbed(msg)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

// deferResponse acknowledges slow commands; finish with editResponse.
func deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

func editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components ...discordgo.MessageComponent) {
	edit := &discordgo.WebhookEdit{Embeds: &[]*discordgo.MessageEmbed{embed}}
	if len(components) > 0 {
		edit.Components = &components
	}
	s.InteractionResponseEdit(i.Interaction, edit)
}

// interactionUser works for both guild and DM interactions.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

// betErrorMessage turns a placement error into something a user can act on.
// known is false for infrastructure errors.
func betErrorMessage(err error) (msg string, known bool) {
	switch {
	case errors.Is(err, betting.ErrInvalidStake):
		return fmt.Sprintf("Stake must be at least %d.", config.Betting.MinStake), true
	case errors.Is(err, betting.ErrInsufficientFunds):
		return "You don't have enough coins for that bet.", true
	case errors.Is(err, betting.ErrUnknownMatch):
		return "No match with that number. Check `/fixtures`.", true
	case errors.Is(err, betting.ErrMatchStarted):
		return "That match has already kicked off.", true
	case errors.Is(err, betting.ErrInvalidCondition), errors.Is(err, betting.ErrUnknownBetType):
		return "That prediction doesn't make sense.", true
	default:
		return "Could not place the bet right now.", false
	}
}

func (h *Handler) SlashHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	if !config.Bot.IsChannelAllowed(i.ChannelID) {
		respondError(s, i, "This bot can only be used in designated channels.")
		return
	}

	name := i.ApplicationCommandData().Name
	metrics.CommandsHandled.WithLabelValues(name).Inc()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	switch name {
	case "help":
		respondEmbed(s, i, HelpEmbed(s.State.User.AvatarURL("")))
	case "balance":
		h.handleSlashBalance(ctx, s, i)
	case "odds":
		respondEmbed(s, i, h.oddsEmbed(ctx))
	case "bet":
		h.handleSlashBet(ctx, s, i)
	case "bets":
		respondEmbed(s, i, h.betsEmbed(ctx, interactionUser(i)))
	case "fixtures":
		h.handleSlashFixtures(s, i)
	case "link":
		h.handleSlashLink(ctx, s, i)
	case "manager":
		h.handleSlashManager(ctx, s, i)
	case "league":
		h.handleSlashLeague(ctx, s, i)
	case "team":
		h.handleSlashTeam(s, i)
	case "player":
		h.handleSlashPlayer(ctx, s, i)
	}
}

func (h *Handler) handleSlashBalance(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	target := interactionUser(i)
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["user"]; ok {
		target = opt.UserValue(s)
	}
	respondEmbed(s, i, h.balanceEmbed(ctx, target))
}

func (h *Handler) handleSlashBet(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}
	sub := options[0]
	opts := optionMap(sub.Options)

	match := opts["match"].IntValue()
	stake := int(opts["coins"].IntValue())

	var betType betting.BetType
	var condition string
	switch sub.Name {
	case "score":
		betType = betting.MatchScore
		condition = fmt.Sprintf("%d,%d,%d", match, opts["home"].IntValue(), opts["away"].IntValue())
	case "winner":
		betType = betting.MatchWinner
		condition = fmt.Sprintf("%d,%d", match, opts["outcome"].IntValue())
	default:
		return
	}

	user := interactionUser(i)
	placement, err := h.bets.PlaceBet(ctx, user.ID, betType, condition, stake)
	if err != nil {
		msg, known := betErrorMessage(err)
		if !known {
			h.log.Error("bet placement failed", zap.String("user_id", user.ID), zap.Error(err))
		}
		respondError(s, i, msg)
		return
	}

	home, away := "Home", "Away"
	if f, ok := h.cache.Match(placement.Prediction.MatchID()); ok {
		home, away = h.cache.TeamName(f.TeamH), h.cache.TeamName(f.TeamA)
	}
	respondEmbed(s, i, PlacementEmbed(placement, home, away))
}

func (h *Handler) handleSlashFixtures(s *discordgo.Session, i *discordgo.InteractionCreate) {
	count := 10
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["count"]; ok {
		count = int(opt.IntValue())
	}
	respondEmbed(s, i, h.fixturesEmbed(count))
}

func (h *Handler) handleSlashLink(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	managerID := int(optionMap(i.ApplicationCommandData().Options)["manager_id"].IntValue())
	user := interactionUser(i)

	deferResponse(s, i)

	manager, err := h.api.Manager(ctx, managerID)
	if err != nil {
		editResponse(s, i, utils.ErrorEmbed(fmt.Sprintf("Could not find FPL manager %d.", managerID)))
		return
	}
	if err := h.accounts.SetManagerID(ctx, user.ID, managerID); err != nil {
		h.log.Error("manager link failed", zap.String("user_id", user.ID), zap.Error(err))
		editResponse(s, i, utils.ErrorEmbed("Could not save the link right now."))
		return
	}
	editResponse(s, i, utils.SuccessEmbed("Linked", fmt.Sprintf("You are now linked to **%s**.", manager.Name)))
}

func (h *Handler) handleSlashManager(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	target := interactionUser(i)
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["user"]; ok {
		target = opt.UserValue(s)
	}

	managerID, ok, err := h.accounts.GetManagerID(ctx, target.ID)
	if err != nil {
		h.log.Error("manager lookup failed", zap.String("user_id", target.ID), zap.Error(err))
		respondError(s, i, "Could not look up the manager right now.")
		return
	}
	if !ok {
		respondError(s, i, fmt.Sprintf("**%s** has not linked an FPL team. Use `/link`.", target.Username))
		return
	}

	deferResponse(s, i)

	manager, err := h.api.Manager(ctx, managerID)
	if err != nil {
		h.log.Warn("fpl manager fetch failed", zap.Int("manager_id", managerID), zap.Error(err))
		editResponse(s, i, utils.ErrorEmbed("The FPL API is not answering, try again later."))
		return
	}
	history, err := h.api.ManagerHistory(ctx, managerID)
	if err != nil {
		h.log.Warn("fpl history fetch failed", zap.Int("manager_id", managerID), zap.Error(err))
	}

	embed := ManagerEmbed(manager, history)

	var picks *fpl.Picks
	if manager.CurrentEvent > 0 {
		if picks, err = h.api.ManagerPicks(ctx, managerID, manager.CurrentEvent); err != nil {
			h.log.Warn("fpl picks fetch failed", zap.Int("manager_id", managerID), zap.Error(err))
		}
	}
	transfers, err := h.api.ManagerTransfers(ctx, managerID)
	if err != nil {
		h.log.Warn("fpl transfers fetch failed", zap.Int("manager_id", managerID), zap.Error(err))
	}
	embed.Fields = append(embed.Fields, ManagerActivityFields(picks, transfers, h.playerName)...)

	editResponse(s, i, embed)
}

func (h *Handler) playerName(id int) string {
	if p, ok := h.cache.Player(id); ok {
		return p.WebName
	}
	return "?"
}

func (h *Handler) handleSlashLeague(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	leagueID := int(optionMap(i.ApplicationCommandData().Options)["league_id"].IntValue())

	deferResponse(s, i)

	league, err := h.api.League(ctx, leagueID)
	if err != nil {
		h.log.Warn("fpl league fetch failed", zap.Int("league_id", leagueID), zap.Error(err))
		editResponse(s, i, utils.ErrorEmbed(fmt.Sprintf("Could not find classic league %d.", leagueID)))
		return
	}
	editResponse(s, i, LeagueEmbed(league))
}

func (h *Handler) handleSlashTeam(s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := optionMap(i.ApplicationCommandData().Options)["name"].StringValue()

	team, ok := h.cache.TeamByName(name)
	if !ok {
		respondError(s, i, fmt.Sprintf("No team called %q.", name))
		return
	}

	results, upcoming := h.cache.TeamFixtures(team.ID)
	respondEmbed(s, i, TeamEmbed(team, h.cache.TeamScore(team.ID), h.cache.TeamPlayers(team.ID), results, upcoming, h.cache))
}

func (h *Handler) handleSlashPlayer(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	query := optionMap(i.ApplicationCommandData().Options)["name"].StringValue()

	players := h.cache.SearchPlayers(query, 20)
	if len(players) == 0 {
		respondError(s, i, "No search results!")
		return
	}

	deferResponse(s, i)
	editResponse(s, i, h.playerEmbed(ctx, players[0]), PlayerSelectMenu(players))
}

// playerEmbed builds a profile, adding last-gameweek detail when the FPL API answers.
func (h *Handler) playerEmbed(ctx context.Context, p fpl.Player) *discordgo.MessageEmbed {
	team, _ := h.cache.Team(p.Team)
	return PlayerProfileEmbed(p, team, h.cache.Position(p), h.playerGameweek(ctx, p))
}

func (h *Handler) playerGameweek(ctx context.Context, p fpl.Player) *PlayerGameweek {
	gameweek := h.cache.Gameweek()

	summary, err := h.api.PlayerSummary(ctx, p.ID)
	if err != nil {
		h.log.Warn("player summary fetch failed", zap.Int("player_id", p.ID), zap.Error(err))
		return nil
	}

	var match *fpl.PlayerMatch
	for idx := range summary.History {
		if summary.History[idx].Round == gameweek {
			match = &summary.History[idx]
		}
	}
	if match == nil {
		return nil
	}

	gw := &PlayerGameweek{Gameweek: gameweek, Match: *match}
	if match.WasHome {
		gw.Home, gw.Away = h.cache.TeamName(p.Team), h.cache.TeamName(match.OpponentTeam)
	} else {
		gw.Home, gw.Away = h.cache.TeamName(match.OpponentTeam), h.cache.TeamName(p.Team)
	}

	live, err := h.api.LiveGameweek(ctx, gameweek)
	if err != nil {
		h.log.Warn("live gameweek fetch failed", zap.Int("gameweek", gameweek), zap.Error(err))
		return gw
	}
	for _, el := range live.Elements {
		if el.ID != p.ID {
			continue
		}
		for _, explain := range el.Explain {
			gw.Points = append(gw.Points, explain.Stats...)
		}
	}
	return gw
}
