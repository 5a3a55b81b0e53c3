package notify

import (
	"context"
	"fmt"
	"strings"

	"tournament-gateway/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Poster delivers a JSON payload to a webhook URL.
type Poster interface {
	PostWebhook(ctx context.Context, url string, payload any) error
}

// Message is the Discord-style body posted to each subscriber.
type Message struct {
	Content string `json:"content"`
}

// Outcome records the result of one delivery attempt.
type Outcome struct {
	WebhookID string
	URL       string
	Err       error
}

type Notifier struct {
	poster Poster
	logger zerolog.Logger
}

func NewNotifier(poster Poster, logger zerolog.Logger) *Notifier {
	return &Notifier{poster: poster, logger: logger}
}

// FormatCodesMessage renders the notification for a freshly minted code batch.
// The output is deterministic: identical inputs produce identical bytes.
func FormatCodesMessage(teams []string, codes []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Tournament codes for %s vs %s\n", teams[0], teams[1])
	b.WriteString("\n")
	for i, code := range codes {
		fmt.Fprintf(&b, "Game %d: %s\n", i+1, code)
	}
	b.WriteString("\n")
	b.WriteString("Good luck, have fun!")

	return b.String()
}

// DeliverCodes posts the formatted batch notification to every webhook
// concurrently and waits for all deliveries to settle. A failed delivery is
// recorded in its outcome and logged; it never aborts sibling deliveries.
func (n *Notifier) DeliverCodes(ctx context.Context, webhooks []domain.TeamWebhook, teams []string, codes []string) []Outcome {
	if len(webhooks) == 0 {
		return nil
	}

	message := Message{Content: FormatCodesMessage(teams, codes)}
	outcomes := make([]Outcome, len(webhooks))

	g := &errgroup.Group{}
	for i, webhook := range webhooks {
		i, webhook := i, webhook
		g.Go(func() error {
			err := n.poster.PostWebhook(ctx, webhook.URL, message)
			outcomes[i] = Outcome{WebhookID: webhook.ID, URL: webhook.URL, Err: err}
			if err != nil {
				n.logger.Error().
					Err(err).
					Str("webhook_id", webhook.ID).
					Str("team_id", webhook.TeamID).
					Msg("failed to send webhook notification")
			} else {
				n.logger.Info().
					Str("webhook_id", webhook.ID).
					Str("team_id", webhook.TeamID).
					Msg("webhook notification delivered")
			}
			return nil
		})
	}
	// goroutines always return nil; Wait is a join, not a race
	_ = g.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	n.logger.Info().
		Int("total", len(outcomes)).
		Int("failed", failed).
		Msg("webhook fan-out settled")

	return outcomes
}
