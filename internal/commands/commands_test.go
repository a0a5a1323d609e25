package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"fplbot/internal/betting"
	"fplbot/internal/database"
	"fplbot/internal/fpl"
)

func TestSlashCommandsTeamChoices(t *testing.T) {
	cmds := SlashCommands([]string{"Arsenal", "Chelsea"})

	byName := map[string]*discordgo.ApplicationCommand{}
	for _, c := range cmds {
		if _, dup := byName[c.Name]; dup {
			t.Fatalf("duplicate command %q", c.Name)
		}
		byName[c.Name] = c
	}
	for _, name := range []string{"help", "balance", "odds", "bet", "bets", "fixtures", "link", "manager", "league", "team", "player"} {
		if _, ok := byName[name]; !ok {
			t.Errorf("missing command %q", name)
		}
	}

	team := byName["team"].Options[0]
	if len(team.Choices) != 2 || team.Choices[0].Value != "Arsenal" {
		t.Errorf("team choices = %+v", team.Choices)
	}

	many := make([]string, maxChoices+1)
	for i := range many {
		many[i] = fmt.Sprintf("Team %d", i)
	}
	for _, c := range SlashCommands(many) {
		if c.Name == "team" && len(c.Options[0].Choices) != 0 {
			t.Errorf("got %d choices, want free text above %d teams", len(c.Options[0].Choices), maxChoices)
		}
	}
}

func TestSlashCommandsBetSubcommands(t *testing.T) {
	for _, c := range SlashCommands(nil) {
		if c.Name != "bet" {
			continue
		}
		if len(c.Options) != 2 {
			t.Fatalf("got %d subcommands, want 2", len(c.Options))
		}
		for _, sub := range c.Options {
			if sub.Type != discordgo.ApplicationCommandOptionSubCommand {
				t.Errorf("%s is not a subcommand", sub.Name)
			}
			last := sub.Options[len(sub.Options)-1]
			if last.Name != "coins" || !last.Required {
				t.Errorf("%s: last option = %+v, want required coins", sub.Name, last)
			}
		}
		return
	}
	t.Fatal("bet command not defined")
}

func TestBetErrorMessage(t *testing.T) {
	tests := []struct {
		err   error
		want  string
		known bool
	}{
		{err: fmt.Errorf("%w: balance is 3", betting.ErrInsufficientFunds), want: "enough coins", known: true},
		{err: betting.ErrUnknownMatch, want: "No match", known: true},
		{err: betting.ErrMatchStarted, want: "kicked off", known: true},
		{err: fmt.Errorf("%w: bad", betting.ErrInvalidCondition), want: "doesn't make sense", known: true},
		{err: betting.ErrInvalidStake, want: "Stake must be", known: true},
		{err: errors.New("disk full"), want: "Could not place"},
	}
	for _, tt := range tests {
		got, known := betErrorMessage(tt.err)
		if !strings.Contains(got, tt.want) || known != tt.known {
			t.Errorf("betErrorMessage(%v) = %q, %v; want %q, %v", tt.err, got, known, tt.want, tt.known)
		}
	}
}

func TestInteractionUser(t *testing.T) {
	member := &discordgo.User{ID: "guild"}
	dm := &discordgo.User{ID: "dm"}

	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{Member: &discordgo.Member{User: member}}}
	if got := interactionUser(i); got.ID != "guild" {
		t.Errorf("guild interaction user = %q", got.ID)
	}
	i = &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{User: dm}}
	if got := interactionUser(i); got.ID != "dm" {
		t.Errorf("DM interaction user = %q", got.ID)
	}
}

func TestHelpEmbedListsBetting(t *testing.T) {
	embed := HelpEmbed("https://cdn.example/avatar.png")
	if embed.Thumbnail == nil || embed.Thumbnail.URL != "https://cdn.example/avatar.png" {
		t.Errorf("Thumbnail = %+v", embed.Thumbnail)
	}
	var all strings.Builder
	for _, f := range embed.Fields {
		all.WriteString(f.Value)
	}
	for _, want := range []string{"/bet score", "/bet winner", "/odds", "/fixtures"} {
		if !strings.Contains(all.String(), want) {
			t.Errorf("help does not mention %q", want)
		}
	}
}

func TestManagerActivityFields(t *testing.T) {
	lookup := func(id int) string { return fmt.Sprintf("P%d", id) }
	picks := &fpl.Picks{
		ActiveChip: "3xc",
		Picks: []fpl.Pick{
			{Element: 1},
			{Element: 7, IsCaptain: true},
			{Element: 9, IsViceCaptain: true},
		},
	}
	transfers := []fpl.Transfer{
		{Event: 7, ElementIn: 2, ElementInCost: 80, ElementOut: 3, ElementOutCost: 75},
		{Event: 6, ElementIn: 4, ElementOut: 5},
		{Event: 5, ElementIn: 6, ElementOut: 8},
		{Event: 4, ElementIn: 10, ElementOut: 11},
	}

	fields := ManagerActivityFields(picks, transfers, lookup)
	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(fields))
	}
	if want := "Captain: P7\nVice: P9\nChip: 3xc"; fields[0].Value != want {
		t.Errorf("armband = %q, want %q", fields[0].Value, want)
	}
	lines := strings.Split(strings.TrimSpace(fields[1].Value), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d transfer lines, want 3", len(lines))
	}
	if want := "GW7: P3 (£7.5m) ➡ P2 (£8.0m)"; lines[0] != want {
		t.Errorf("transfer = %q, want %q", lines[0], want)
	}

	if fields := ManagerActivityFields(nil, nil, lookup); len(fields) != 0 {
		t.Errorf("got %d fields without data", len(fields))
	}
}

func TestLeagueEmbed(t *testing.T) {
	var l fpl.League
	l.League.ID = 314
	l.League.Name = "Office"
	for i := 1; i <= 12; i++ {
		l.Standings.Results = append(l.Standings.Results, fpl.LeagueEntry{Rank: i, EntryName: fmt.Sprintf("Team %d", i), Total: 100 - i})
	}

	embed := LeagueEmbed(&l)
	if !strings.Contains(embed.Title, "Office") {
		t.Errorf("Title = %q", embed.Title)
	}
	if lines := strings.Split(strings.TrimSpace(embed.Description), "\n"); len(lines) != 10 {
		t.Errorf("got %d standings lines, want 10", len(lines))
	}
}

type fakeSender struct {
	mu   sync.Mutex
	sent map[string]*discordgo.MessageEmbed
	fail bool
	done chan struct{}
}

func (f *fakeSender) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.fail {
		defer close(f.done)
		return nil, errors.New("cannot DM")
	}
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakeSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	f.sent[channelID] = embed
	f.mu.Unlock()
	close(f.done)
	return &discordgo.Message{}, nil
}

func TestDMNotifierSendsSettlement(t *testing.T) {
	sender := &fakeSender{sent: map[string]*discordgo.MessageEmbed{}, done: make(chan struct{})}
	n := NewDMNotifier(sender, zap.NewNop(), fixtureSet{5: {ID: 5, TeamH: 1, TeamA: 2}}, names)

	bet := database.Bet{ID: 1, UserID: "u1", Type: string(betting.MatchWinner), Condition: "5,2"}
	n.BetSettled(testContext(t), bet, database.Settlement{BetID: 1, UserID: "u1", Correct: true, Payout: 20, NewBalance: 110})

	select {
	case <-sender.done:
	case <-time.After(2 * time.Second):
		t.Fatal("no DM sent")
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	embed, ok := sender.sent["dm-u1"]
	if !ok {
		t.Fatalf("sent to %v, want dm-u1", sender.sent)
	}
	if !strings.Contains(embed.Description, "Chelsea to beat Arsenal") {
		t.Errorf("Description = %q", embed.Description)
	}
}

func TestDMNotifierSwallowsFailures(t *testing.T) {
	sender := &fakeSender{sent: map[string]*discordgo.MessageEmbed{}, fail: true, done: make(chan struct{})}
	n := NewDMNotifier(sender, zap.NewNop(), fixtureSet{}, names)

	n.BetSettled(testContext(t), database.Bet{ID: 2, UserID: "u2", Type: string(betting.MatchScore), Condition: "1,0,0"}, database.Settlement{})

	select {
	case <-sender.done:
	case <-time.After(2 * time.Second):
		t.Fatal("DM channel never requested")
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent %d messages after channel failure", len(sender.sent))
	}
}

// testContext mirrors testing.T.Context (Go 1.24+): a context canceled when the test finishes.
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
