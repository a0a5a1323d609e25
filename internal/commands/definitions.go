package commands

import "github.com/bwmarrin/discordgo"

const (
	playerSelectID   = "player_select"
	maxSelectOptions = 25
	maxChoices       = 25
)

var (
	minOne  float64 = 1
	minZero float64 = 0
	maxGoal float64 = 99
)

// SlashCommands builds the command set. Team names become fixed choices of
// /team when there are few enough of them; otherwise /team takes free text.
func SlashCommands(teamNames []string) []*discordgo.ApplicationCommand {
	teamOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "name",
		Description: "Team to view",
		Required:    true,
	}
	if len(teamNames) > 0 && len(teamNames) <= maxChoices {
		for _, name := range teamNames {
			teamOption.Choices = append(teamOption.Choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  name,
				Value: name,
			})
		}
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "help",
			Description: "Show all commands and features",
		},
		{
			Name:        "balance",
			Description: "Check your or someone else's balance",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to check",
					Required:    false,
				},
			},
		},
		{
			Name:        "odds",
			Description: "Show the current payout multiplier of each bet type",
		},
		{
			Name:        "bet",
			Description: "Bet coins on a Premier League match",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "score",
					Description: "Predict the exact final score",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						matchOption(),
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "home",
							Description: "Home team goals (10 means 10 or more)",
							Required:    true,
							MinValue:    &minZero,
							MaxValue:    maxGoal,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "away",
							Description: "Away team goals (10 means 10 or more)",
							Required:    true,
							MinValue:    &minZero,
							MaxValue:    maxGoal,
						},
						coinsOption(),
					},
				},
				{
					Name:        "winner",
					Description: "Predict the winner or a draw",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						matchOption(),
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "outcome",
							Description: "Who wins",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Home win", Value: 0},
								{Name: "Draw", Value: 1},
								{Name: "Away win", Value: 2},
							},
						},
						coinsOption(),
					},
				},
			},
		},
		{
			Name:        "bets",
			Description: "List your recent bets",
		},
		{
			Name:        "fixtures",
			Description: "Upcoming matches and their match numbers",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "count",
					Description: "How many fixtures to show (default 10)",
					Required:    false,
					MinValue:    &minOne,
					MaxValue:    30,
				},
			},
		},
		{
			Name:        "link",
			Description: "Link your FPL manager id",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "manager_id",
					Description: "The number in your FPL team URL",
					Required:    true,
					MinValue:    &minOne,
				},
			},
		},
		{
			Name:        "manager",
			Description: "Show a linked FPL manager",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to look up",
					Required:    false,
				},
			},
		},
		{
			Name:        "league",
			Description: "Top of a classic FPL league",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "league_id",
					Description: "The number in the league URL",
					Required:    true,
					MinValue:    &minOne,
				},
			},
		},
		{
			Name:        "team",
			Description: "View team stats",
			Options:     []*discordgo.ApplicationCommandOption{teamOption},
		},
		{
			Name:        "player",
			Description: "Search for a player's profile",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Name of the player",
					Required:    true,
				},
			},
		},
	}
}

func matchOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "match",
		Description: "Match number from /fixtures",
		Required:    true,
		MinValue:    &minOne,
	}
}

func coinsOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "coins",
		Description: "Coins to stake",
		Required:    true,
		MinValue:    &minOne,
	}
}
