package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/axieum/hlna/internal/config"
	"github.com/axieum/hlna/internal/domain"
)

// resultsGrace is how long to wait after expiring a poll before reading
// its results, so Discord finishes tallying.
const resultsGrace = 10 * time.Second

const (
	answerYes = 1
	answerNo  = 2
)

// Poller runs wipe votes as native Discord polls.
type Poller struct {
	session *discordgo.Session
	ping    string
	sleep   func(context.Context, time.Duration) error
	log     zerolog.Logger
}

// NewPoller creates a Poller posting through the given session.
func NewPoller(session *discordgo.Session, ping string, log zerolog.Logger) *Poller {
	return &Poller{
		session: session,
		ping:    ping,
		sleep: func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		},
		log: log.With().Str("component", "poller").Logger(),
	}
}

// Open posts a poll to the requester's channel and returns its message ID.
// Discord enforces a one hour minimum on poll duration, so the poll is
// closed by the caller's own timer rather than by Discord's expiry.
func (p *Poller) Open(ctx context.Context, req domain.Requester, server config.ArkServer, duration time.Duration) (string, error) {
	hours := int(duration / time.Hour)
	if hours < 1 {
		hours = 1
	}

	content := fmt.Sprintf("%s has requested a wild dino wipe on **%s**!", req.Name, server.Label())
	if p.ping != "" {
		content = p.ping + " " + content
	}

	closes := time.Now().Add(duration)
	msg, err := p.session.ChannelMessageSendComplex(req.Origin, &discordgo.MessageSend{
		Content: content,
		Poll: &discordgo.Poll{
			Question: discordgo.PollMedia{
				Text: fmt.Sprintf("Wipe all wild creatures on %s? Voting closes %s.", server.Name, closes.UTC().Format("15:04 MST")),
			},
			Answers: []discordgo.PollAnswer{
				{AnswerID: answerYes, Media: &discordgo.PollMedia{Text: "Yes, wipe them out"}},
				{AnswerID: answerNo, Media: &discordgo.PollMedia{Text: "No, leave them be"}},
			},
			AllowMultiselect: false,
			Duration:         hours,
		},
	})
	if err != nil {
		return "", fmt.Errorf("posting poll: %w", err)
	}

	p.log.Info().Str("poll", msg.ID).Str("server", server.Name).Msg("poll opened")
	return msg.ID, nil
}

// End expires the poll and returns the final yes and no tallies.
func (p *Poller) End(ctx context.Context, origin, pollID string) (int, int, error) {
	if _, err := p.session.PollExpire(origin, pollID); err != nil {
		return 0, 0, fmt.Errorf("expiring poll: %w", err)
	}

	// Give Discord time to finalize the tallies
	if err := p.sleep(ctx, resultsGrace); err != nil {
		return 0, 0, err
	}

	msg, err := p.session.ChannelMessage(origin, pollID)
	if err != nil {
		return 0, 0, fmt.Errorf("fetching poll results: %w", err)
	}
	if msg.Poll == nil || msg.Poll.Results == nil {
		return 0, 0, fmt.Errorf("poll %s has no results", pollID)
	}

	var yes, no int
	for _, count := range msg.Poll.Results.AnswerCounts {
		switch count.ID {
		case answerYes:
			yes = count.Count
		case answerNo:
			no = count.Count
		}
	}
	return yes, no, nil
}
