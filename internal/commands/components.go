package commands

import (
	"context"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

func (h *Handler) ComponentsHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	data := i.MessageComponentData()
	switch data.CustomID {
	case playerSelectID:
		h.handlePlayerSelect(s, i, data.Values)
	}
}

func (h *Handler) handlePlayerSelect(s *discordgo.Session, i *discordgo.InteractionCreate, values []string) {
	if len(values) == 0 {
		return
	}
	id, err := strconv.Atoi(values[0])
	if err != nil {
		return
	}
	player, ok := h.cache.Player(id)
	if !ok {
		respondError(s, i, "That player is no longer available.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	// The original message keeps its select menu.
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{h.playerEmbed(ctx, player)},
			Components: i.Message.Components,
		},
	})
}
