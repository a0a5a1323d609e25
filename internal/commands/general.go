package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"fplbot/pkg/config"
	"fplbot/pkg/utils"
)

func HelpEmbed(avatarURL string) *discordgo.MessageEmbed {
	embed := utils.NewEmbed()
	embed.Title = fmt.Sprintf("📘 %s Help", config.Bot.BotName)
	embed.Description = "Here is the complete list of commands and features available."
	embed.Color = utils.ColorBlue
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{
		URL: avatarURL,
	}
	sym := config.Bot.CurrencySymbol

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "💰 Wallet",
		Value: fmt.Sprintf("`!balance` / `/balance [user]`\nCheck your wallet or someone else's.\n*Everyone starts with **%d %s**.*\n\n"+
			"`!bets` / `/bets`\nYour most recent bets and how they ended.",
			config.Betting.StartBalance(), sym),
		Inline: false,
	})

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "🎲 Betting",
		Value: "`!fixtures` / `/fixtures [count]`\nUpcoming matches with their match numbers.\n\n" +
			"`/bet score <match> <home> <away> <coins>`\nPredict the exact final score. 10 means 10 or more.\n\n" +
			"`/bet winner <match> <outcome> <coins>`\nPredict a home win, a draw or an away win.\n\n" +
			"`!odds` / `/odds`\nCurrent payout multiplier for each bet type.\n" +
			"*Odds come from how often past bets of that type won. Rare wins pay more!*",
		Inline: false,
	})

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "⚽ Fantasy Premier League",
		Value: "`/player <name>`\nSearch a player's profile and last gameweek.\n\n" +
			"`/team <name>`\nTeam strength, squad value and fixtures.\n\n" +
			"`/link <manager_id>`\nLink your FPL team to your Discord account.\n\n" +
			"`/manager [user]`\nShow a linked FPL manager's season, captain and transfers.\n\n" +
			"`/league <league_id>`\nStandings of a classic league.",
		Inline: false,
	})

	if config.Betting.NotifyWinners {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "📬 Results",
			Value:  "Bets are settled automatically after full time. You get a DM with the result.",
			Inline: false,
		})
	}

	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("%s • Use slash commands for a better experience!", config.Bot.BotName),
	}

	return embed
}
