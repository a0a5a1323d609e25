package utils

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"fplbot/pkg/config"
)

const (
	ColorGold   = 0xFFD700
	ColorGreen  = 0x00FF87
	ColorRed    = 0xE90052
	ColorBlue   = 0x04F5FF
	ColorPurple = 0x37003C
)

const (
	authorURL     = "https://github.com/garamlee500/fpl-discord-bot"
	authorIconURL = "https://raw.githubusercontent.com/garamlee500/fpl-discord-bot/main/fpl.png?c=3"
)

func NewEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Type:  discordgo.EmbedTypeRich,
		Color: ColorPurple,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    config.Bot.BotName,
			URL:     authorURL,
			IconURL: authorIconURL,
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func ErrorEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "❌ Error",
		Description: description,
		Color:       ColorRed,
	}
}

func SuccessEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "✅ " + title,
		Description: description,
		Color:       ColorGreen,
	}
}

func InfoEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "ℹ️ " + title,
		Description: description,
		Color:       ColorBlue,
	}
}

func GoldEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "💰 " + title,
		Description: description,
		Color:       ColorGold,
	}
}

// Coins formats an amount with the configured currency name.
func Coins(amount int) string {
	return fmt.Sprintf("%d %s", amount, config.Bot.CurrencyName)
}

// DiscordTime renders t as a Discord timestamp tag in the given style ("f", "R", ...).
func DiscordTime(t time.Time, style string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}
