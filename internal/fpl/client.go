package fpl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://fantasy.premierleague.com/api"

// Client talks to the public, read-only FPL API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) get(ctx context.Context, endpoint string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: API returned status %d", endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// Bootstrap fetches teams, players and gameweeks.
func (c *Client) Bootstrap(ctx context.Context) (*Bootstrap, error) {
	var data Bootstrap
	if err := c.get(ctx, "/bootstrap-static/", &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Fixtures fetches every fixture and result of the season.
func (c *Client) Fixtures(ctx context.Context) ([]Fixture, error) {
	var data []Fixture
	if err := c.get(ctx, "/fixtures/", &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) Manager(ctx context.Context, managerID int) (*Manager, error) {
	var data Manager
	if err := c.get(ctx, fmt.Sprintf("/entry/%d/", managerID), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) ManagerHistory(ctx context.Context, managerID int) (*ManagerHistory, error) {
	var data ManagerHistory
	if err := c.get(ctx, fmt.Sprintf("/entry/%d/history/", managerID), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) ManagerPicks(ctx context.Context, managerID, gameweek int) (*Picks, error) {
	var data Picks
	if err := c.get(ctx, fmt.Sprintf("/entry/%d/event/%d/picks/", managerID, gameweek), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) ManagerTransfers(ctx context.Context, managerID int) ([]Transfer, error) {
	var data []Transfer
	if err := c.get(ctx, fmt.Sprintf("/entry/%d/transfers/", managerID), &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) PlayerSummary(ctx context.Context, playerID int) (*PlayerSummary, error) {
	var data PlayerSummary
	if err := c.get(ctx, fmt.Sprintf("/element-summary/%d/", playerID), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) LiveGameweek(ctx context.Context, gameweek int) (*LiveGameweek, error) {
	var data LiveGameweek
	if err := c.get(ctx, fmt.Sprintf("/event/%d/live/", gameweek), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) League(ctx context.Context, leagueID int) (*League, error) {
	var data League
	if err := c.get(ctx, fmt.Sprintf("/leagues-classic/%d/standings/", leagueID), &data); err != nil {
		return nil, err
	}
	return &data, nil
}
