package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fplbot/internal/database"
)

const EventBetSettled = "bet_settled"

type Payload struct {
	Event     string    `json:"event"`
	BetID     int64     `json:"bet_id"`
	UserID    string    `json:"user_id"`
	BetType   string    `json:"bet_type"`
	Condition string    `json:"condition"`
	CoinsBet  int       `json:"coins_bet"`
	Correct   bool      `json:"correct"`
	Payout    int       `json:"payout"`
	Balance   int       `json:"balance"`
	Timestamp time.Time `json:"timestamp"`
}

// Sender posts every settlement as JSON to a single URL.
type Sender struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

func NewSender(url string, log *zap.Logger) *Sender {
	return &Sender{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log,
	}
}

// BetSettled sends asynchronously; delivery failures are only logged.
func (s *Sender) BetSettled(_ context.Context, bet database.Bet, settlement database.Settlement) {
	payload := Payload{
		Event:     EventBetSettled,
		BetID:     bet.ID,
		UserID:    bet.UserID,
		BetType:   bet.Type,
		Condition: bet.Condition,
		CoinsBet:  bet.CoinsBet,
		Correct:   settlement.Correct,
		Payout:    settlement.Payout,
		Balance:   settlement.NewBalance,
		Timestamp: time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.client.Timeout)
		defer cancel()
		if err := s.Send(ctx, payload); err != nil {
			s.log.Warn("settlement webhook failed", zap.Int64("bet_id", bet.ID), zap.Error(err))
		}
	}()
}

func (s *Sender) Send(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Test sends a bare "test" event, used at startup to check the URL.
func (s *Sender) Test(ctx context.Context) error {
	return s.Send(ctx, Payload{Event: "test", Timestamp: time.Now().UTC()})
}
