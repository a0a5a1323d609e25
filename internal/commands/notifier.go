package commands

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"fplbot/internal/betting"
	"fplbot/internal/database"
)

// DMSender is the slice of *discordgo.Session the notifier needs.
type DMSender interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DMNotifier tells bettors by direct message when their bet is settled.
type DMNotifier struct {
	sender  DMSender
	log     *zap.Logger
	matches betting.MatchSource
	names   betting.TeamNamer
}

func NewDMNotifier(sender DMSender, log *zap.Logger, matches betting.MatchSource, names betting.TeamNamer) *DMNotifier {
	return &DMNotifier{sender: sender, log: log, matches: matches, names: names}
}

// BetSettled sends the DM in the background so a slow Discord API never holds up a sweep.
func (n *DMNotifier) BetSettled(_ context.Context, bet database.Bet, settlement database.Settlement) {
	description := betting.Describe(betting.BetType(bet.Type), bet.Condition, n.matches, n.names)
	embed := SettlementEmbed(description, settlement)

	go func() {
		channel, err := n.sender.UserChannelCreate(bet.UserID)
		if err != nil {
			n.log.Warn("failed to open DM channel", zap.String("user_id", bet.UserID), zap.Int64("bet_id", bet.ID), zap.Error(err))
			return
		}
		if _, err := n.sender.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
			n.log.Warn("failed to send settlement DM", zap.String("user_id", bet.UserID), zap.Int64("bet_id", bet.ID), zap.Error(err))
		}
	}()
}
