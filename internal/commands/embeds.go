package commands

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"fplbot/internal/betting"
	"fplbot/internal/database"
	"fplbot/internal/fpl"
	"fplbot/pkg/utils"
)

// transferArrow renders a net transfer count with a direction arrow.
func transferArrow(balance int) string {
	switch {
	case balance > 0:
		return fmt.Sprintf("⬆ %d", balance)
	case balance < 0:
		return fmt.Sprintf("⬇ %d", -balance)
	default:
		return "0"
	}
}

func price(tenths int) string {
	return fmt.Sprintf("£%.1fm", float64(tenths)/10)
}

// PlayerGameweek is the optional last-gameweek block of a player profile.
type PlayerGameweek struct {
	Gameweek int
	Match    fpl.PlayerMatch
	Home     string
	Away     string
	Points   []fpl.LiveStat
}

func PlayerProfileEmbed(p fpl.Player, team fpl.Team, position string, gw *PlayerGameweek) *discordgo.MessageEmbed {
	embed := utils.NewEmbed()
	embed.Title = p.FullName() + "'s profile"
	embed.Image = &discordgo.MessageEmbedImage{URL: fpl.PlayerImageURL(p.Photo)}
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: fpl.TeamBadgeURL(team.Code)}

	basic := fmt.Sprintf("Team: %s\nCost: %s", team.Name, price(p.NowCost))
	if position != "" {
		basic += "\nPosition: " + position
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Basic info", Value: basic})

	if p.News != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "News", Value: "**" + p.News + "**"})
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "Performance",
		Value: fmt.Sprintf("Form: %s\nTotal points: %d\nPoints per match: %s\nForm value: %s\nSeason value: %s",
			p.Form, p.TotalPoints, p.PointsPerGame, p.ValueForm, p.ValueSeason),
	})

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "Popularity",
		Value: fmt.Sprintf("Selected by: %s%%\nTransfers in this gameweek: %d\nTransfers out this gameweek: %d\nNet transfers: %s",
			p.SelectedByPercent, p.TransfersInEvent, p.TransfersOutEvent,
			transferArrow(p.TransfersInEvent-p.TransfersOutEvent)),
	})

	if gw != nil {
		embed.Fields = append(embed.Fields, gameweekFields(gw)...)
	}
	return embed
}

func gameweekFields(gw *PlayerGameweek) []*discordgo.MessageEmbedField {
	m := gw.Match

	score := "vs"
	if m.TeamHScore != nil && m.TeamAScore != nil {
		score = fmt.Sprintf("%d - %d", *m.TeamHScore, *m.TeamAScore)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s %s %s**\n", gw.Home, score, gw.Away)
	for _, stat := range gw.Points {
		fmt.Fprintf(&b, "%d %s: %d points\n", stat.Value, strings.ReplaceAll(stat.Identifier, "_", " "), stat.Points)
	}
	if m.YellowCards > 0 {
		fmt.Fprintf(&b, "**%d yellow card given**\n", m.YellowCards)
	}
	if m.RedCards > 0 {
		b.WriteString("**Red card given**\n")
	}
	fmt.Fprintf(&b, "***Total points: %d***", m.TotalPoints)

	return []*discordgo.MessageEmbedField{
		{
			Name:  fmt.Sprintf("Gameweek %d performance", gw.Gameweek),
			Value: b.String(),
		},
		{
			Name: fmt.Sprintf("Other gameweek %d stats", gw.Gameweek),
			Value: fmt.Sprintf("Cost on gameweek: %s\nTransfers in: %d\nTransfers out: %d\nNet transfers: %s\nSelected by: %d",
				price(m.Value), m.TransfersIn, m.TransfersOut, transferArrow(m.TransfersBalance), m.Selected),
			Inline: true,
		},
	}
}

// PlayerSelectMenu lists search results; the value of each option is the player id.
func PlayerSelectMenu(players []fpl.Player) discordgo.ActionsRow {
	options := make([]discordgo.SelectMenuOption, 0, len(players))
	for i, p := range players {
		if i == maxSelectOptions {
			break
		}
		options = append(options, discordgo.SelectMenuOption{
			Label:       p.WebName,
			Description: p.FullName(),
			Value:       fmt.Sprint(p.ID),
			Default:     i == 0,
		})
	}

	one := 1
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.SelectMenu{
			MenuType:    discordgo.StringSelectMenu,
			CustomID:    playerSelectID,
			Placeholder: "Choose player",
			MinValues:   &one,
			MaxValues:   1,
			Options:     options,
		},
	}}
}

func fixtureLine(f fpl.Fixture, names betting.TeamNamer) string {
	when := "TBC"
	if f.KickoffTime != nil {
		when = utils.DiscordTime(*f.KickoffTime, "f")
	}
	if home, away, ok := f.Score(); ok {
		return fmt.Sprintf("`#%d` %s %d - %d %s", f.ID, names.TeamName(f.TeamH), home, away, names.TeamName(f.TeamA))
	}
	return fmt.Sprintf("`#%d` %s vs %s, %s", f.ID, names.TeamName(f.TeamH), names.TeamName(f.TeamA), when)
}

func FixturesEmbed(fixtures []fpl.Fixture, names betting.TeamNamer) *discordgo.MessageEmbed {
	embed := utils.NewEmbed()
	embed.Title = "📅 Upcoming fixtures"
	if len(fixtures) == 0 {
		embed.Description = "No upcoming fixtures."
		return embed
	}

	lines := make([]string, len(fixtures))
	for i, f := range fixtures {
		lines[i] = fixtureLine(f, names)
	}
	embed.Description = strings.Join(lines, "\n")
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Bet with /bet score or /bet winner using the match number"}
	return embed
}

func TeamEmbed(team fpl.Team, score fpl.TeamScore, squad []fpl.Player, results, upcoming []fpl.Fixture, names betting.TeamNamer) *discordgo.MessageEmbed {
	embed := utils.NewEmbed()
	embed.Title = team.Name
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: fpl.TeamBadgeURL(team.Code)}
	embed.Image = &discordgo.MessageEmbedImage{URL: fpl.TeamShirtURL(team.Code, false)}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "Season",
		Value: fmt.Sprintf("Position: %d\nPlayed: %d (W%d D%d L%d)\nPoints: %d",
			team.Position, team.Played, team.Win, team.Draw, team.Loss, team.Points),
		Inline: true,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "FPL squad",
		Value: fmt.Sprintf("Total form: %.1f\nTotal points: %d\nTeam score: %.1f",
			score.TotalForm, score.TotalPoints, score.Score),
		Inline: true,
	})

	if len(squad) > 0 {
		var b strings.Builder
		for i, p := range squad {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "%s (form %s, %d pts)\n", p.WebName, p.Form, p.TotalPoints)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "In form", Value: b.String()})
	}

	if n := len(results); n > 0 {
		if n > 3 {
			results = results[n-3:]
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Recent results", Value: fixtureList(results, names)})
	}
	if len(upcoming) > 0 {
		if len(upcoming) > 3 {
			upcoming = upcoming[:3]
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Next fixtures", Value: fixtureList(upcoming, names)})
	}
	return embed
}

func fixtureList(fixtures []fpl.Fixture, names betting.TeamNamer) string {
	lines := make([]string, len(fixtures))
	for i, f := range fixtures {
		lines[i] = fixtureLine(f, names)
	}
	return strings.Join(lines, "\n")
}

func ManagerEmbed(m *fpl.Manager, history *fpl.ManagerHistory) *discordgo.MessageEmbed {
	embed := utils.NewEmbed()
	embed.Title = m.Name
	embed.URL = fmt.Sprintf("https://fantasy.premierleague.com/entry/%d/history", m.ID)
	embed.Description = fmt.Sprintf("Managed by %s %s (%s)", m.PlayerFirstName, m.PlayerLastName, m.PlayerRegionName)

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "Overall",
		Value: fmt.Sprintf("Points: %d\nRank: %d\nTeam value: %s\nBank: %s",
			m.SummaryOverallPoints, m.SummaryOverallRank, price(m.LastDeadlineValue), price(m.LastDeadlineBank)),
		Inline: true,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   fmt.Sprintf("Gameweek %d", m.CurrentEvent),
		Value:  fmt.Sprintf("Points: %d\nRank: %d", m.SummaryEventPoints, m.SummaryEventRank),
		Inline: true,
	})

	if history != nil && len(history.Current) > 0 {
		recent := history.Current
		if len(recent) > 5 {
			recent = recent[len(recent)-5:]
		}
		var b strings.Builder
		for _, gw := range recent {
			fmt.Fprintf(&b, "GW%d: %d pts", gw.Event, gw.Points)
			if gw.EventTransfersCost > 0 {
				fmt.Fprintf(&b, " (-%d hit)", gw.EventTransfersCost)
			}
			fmt.Fprintf(&b, ", rank %d\n", gw.OverallRank)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Recent gameweeks", Value: b.String()})
	}

	if history != nil && len(history.Chips) > 0 {
		chips := make([]string, len(history.Chips))
		for i, c := range history.Chips {
			chips[i] = fmt.Sprintf("%s (GW%d)", c.Name, c.Event)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Chips played", Value: strings.Join(chips, ", ")})
	}
	return embed
}

// ManagerActivityFields adds the captain and latest transfers to a manager embed.
// playerName resolves element ids; either input may be nil.
func ManagerActivityFields(picks *fpl.Picks, transfers []fpl.Transfer, playerName func(id int) string) []*discordgo.MessageEmbedField {
	var fields []*discordgo.MessageEmbedField

	if picks != nil {
		var captain, vice string
		for _, pick := range picks.Picks {
			switch {
			case pick.IsCaptain:
				captain = playerName(pick.Element)
			case pick.IsViceCaptain:
				vice = playerName(pick.Element)
			}
		}
		value := fmt.Sprintf("Captain: %s\nVice: %s", captain, vice)
		if picks.ActiveChip != "" {
			value += "\nChip: " + picks.ActiveChip
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Armband", Value: value, Inline: true})
	}

	if len(transfers) > 0 {
		// Newest first upstream.
		if len(transfers) > 3 {
			transfers = transfers[:3]
		}
		var b strings.Builder
		for _, t := range transfers {
			fmt.Fprintf(&b, "GW%d: %s (%s) ➡ %s (%s)\n", t.Event,
				playerName(t.ElementOut), price(t.ElementOutCost),
				playerName(t.ElementIn), price(t.ElementInCost))
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Latest transfers", Value: b.String()})
	}
	return fields
}

func LeagueEmbed(l *fpl.League) *discordgo.MessageEmbed {
	embed := utils.NewEmbed()
	embed.Title = "🏆 " + l.League.Name
	embed.URL = fmt.Sprintf("https://fantasy.premierleague.com/leagues/%d/standings/c", l.League.ID)

	entries := l.Standings.Results
	if len(entries) == 0 {
		embed.Description = "No standings yet."
		return embed
	}
	if len(entries) > 10 {
		entries = entries[:10]
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "**%d.** %s (%s): %d pts, GW %d\n", e.Rank, e.EntryName, e.PlayerName, e.Total, e.EventTotal)
	}
	embed.Description = b.String()
	return embed
}

func betStatus(b database.Bet) string {
	switch {
	case !b.Finished:
		return "⏳ open"
	case b.Won():
		return "✅ won " + utils.Coins(b.PotentialCoins)
	default:
		return "❌ lost"
	}
}

func BetsEmbed(username string, bets []database.Bet, matches betting.MatchSource, names betting.TeamNamer) *discordgo.MessageEmbed {
	embed := utils.NewEmbed()
	embed.Title = "🎟️ " + username + "'s bets"
	if len(bets) == 0 {
		embed.Description = "No bets yet. Try `/fixtures` and `/bet`."
		return embed
	}

	var b strings.Builder
	for _, bet := range bets {
		fmt.Fprintf(&b, "`#%d` **%s** for %s (pays %s): %s\n",
			bet.ID,
			betting.Describe(betting.BetType(bet.Type), bet.Condition, matches, names),
			utils.Coins(bet.CoinsBet),
			utils.Coins(bet.PotentialCoins),
			betStatus(bet))
	}
	embed.Description = b.String()
	return embed
}

// OddsLine is one bet type's pricing for the odds embed.
type OddsLine struct {
	Type       betting.BetType
	Odds       float64
	Multiplier int
}

func OddsEmbed(lines []OddsLine) *discordgo.MessageEmbed {
	embed := utils.NewEmbed()
	embed.Title = "📊 Current odds"
	for _, l := range lines {
		value := fmt.Sprintf("Pays **x%d**", l.Multiplier)
		if l.Odds == 0 {
			value += "\nNo winning history yet, default multiplier"
		} else {
			value += fmt.Sprintf("\nHistorical odds: %.2f", l.Odds)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   l.Type.Label(),
			Value:  value,
			Inline: true,
		})
	}
	return embed
}

func PlacementEmbed(p betting.Placement, homeTeam, awayTeam string) *discordgo.MessageEmbed {
	return utils.SuccessEmbed("Bet placed", fmt.Sprintf(
		"**%s**\nStake: %s at x%d\nPotential payout: %s\nBet id: `#%d`\nBalance: %s",
		p.Prediction.Describe(homeTeam, awayTeam),
		utils.Coins(p.Stake), p.Multiplier,
		utils.Coins(p.Potential), p.BetID,
		utils.Coins(p.Balance)))
}

func SettlementEmbed(description string, s database.Settlement) *discordgo.MessageEmbed {
	if s.Correct {
		return utils.GoldEmbed("Bet won!", fmt.Sprintf("**%s** came true.\nYou received %s.\nBalance: %s",
			description, utils.Coins(s.Payout), utils.Coins(s.NewBalance)))
	}
	return utils.InfoEmbed("Bet lost", fmt.Sprintf("**%s** did not happen.\nBalance: %s",
		description, utils.Coins(s.NewBalance)))
}
