package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/axieum/hlna/internal/domain"
)

// Component identifiers for the dino wipe panel.
const (
	wipeSelectID = "ark:wipe:select"
	wipeStartID  = "ark:wipe:start"
	wipeHoldID   = "ark:wipe:hold"
	wipeResumeID = "ark:wipe:resume"
)

// handleDinoWipe opens the wipe panel, either for the chosen server or
// with a server picker when none was given.
func (b *Bot) handleDinoWipe(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, target string) {
	if target == "" {
		b.editComplex(s, i, "Which server should lose its wild creatures?", b.serverPicker())
		return
	}
	content, components := b.renderWipePanel(ctx, target)
	b.editComplex(s, i, content, components)
}

// serverPicker builds the select menu of configured servers.
func (b *Bot) serverPicker() []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(b.cfg.Ark.Servers))
	for _, srv := range b.cfg.Ark.Servers {
		opt := discordgo.SelectMenuOption{Label: srv.Name, Value: srv.Name}
		if srv.Emoji != "" {
			opt.Emoji = &discordgo.ComponentEmoji{Name: srv.Emoji}
		}
		options = append(options, opt)
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    wipeSelectID,
				Placeholder: "Pick a server",
				Options:     options,
			},
		}},
	}
}

// renderWipePanel builds the gate status message and action buttons for
// a target. The poll button is disabled unless the gate is open.
func (b *Bot) renderWipePanel(ctx context.Context, target string) (string, []discordgo.MessageComponent) {
	srv, ok := b.cfg.Ark.Server(target)
	if !ok {
		return fmt.Sprintf("I don't know a server called **%s**.", target), nil
	}

	state, remaining, err := b.orch.Gate(ctx, target)
	if err != nil {
		b.log.Error().Err(err).Str("target", target).Msg("gate check failed")
		return "Something went wrong checking the wipe gate. Try again later.", nil
	}

	var content string
	held := false
	switch state {
	case domain.GateHeld:
		held = true
		content = fmt.Sprintf("Wipes on **%s** are on hold.", srv.Label())
	case domain.GateVoting:
		content = fmt.Sprintf("A wipe vote for **%s** is already underway. Cast your vote there!", srv.Label())
	case domain.GateCooldown:
		reopens := b.now().Add(remaining)
		content = fmt.Sprintf("**%s** was wiped recently. Voting reopens %s.", srv.Label(), relativeTimestamp(reopens))
	default:
		content = fmt.Sprintf("**%s** is ready for a wild dino wipe vote.", srv.Label())
	}

	buttons := []discordgo.MessageComponent{
		discordgo.Button{
			Label:    "Start Poll",
			Style:    discordgo.PrimaryButton,
			CustomID: wipeStartID + ":" + target,
			Disabled: state != domain.GateOpen || !srv.HasRcon(),
		},
	}
	if held {
		buttons = append(buttons, discordgo.Button{
			Label:    "Resume",
			Style:    discordgo.SecondaryButton,
			CustomID: wipeResumeID + ":" + target,
		})
	} else {
		buttons = append(buttons, discordgo.Button{
			Label:    "Hold",
			Style:    discordgo.SecondaryButton,
			CustomID: wipeHoldID + ":" + target,
		})
	}

	return content, []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

// handleWipeComponent routes the wipe panel's select menu and buttons.
func (b *Bot) handleWipeComponent(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, action, target string) {
	req := domain.Requester{
		ID:     requesterID(i),
		Name:   requesterName(i),
		Origin: i.ChannelID,
	}

	switch action {
	case "select":
		if values := i.MessageComponentData().Values; len(values) > 0 {
			target = values[0]
		}
		content, components := b.renderWipePanel(ctx, target)
		b.editComplex(s, i, content, components)

	case "start":
		srv, ok := b.cfg.Ark.Server(target)
		if !ok {
			b.editComplex(s, i, fmt.Sprintf("I don't know a server called **%s**.", target), nil)
			return
		}
		if _, err := b.orch.OpenVote(ctx, req, target); err != nil {
			b.log.Error().Err(err).Str("target", target).Msg("failed to open vote")
			content, components := b.renderWipePanel(ctx, target)
			b.editComplex(s, i, content, components)
			return
		}
		b.editComplex(s, i, fmt.Sprintf("Vote started! Wild creatures on **%s** will be wiped if the vote passes.", srv.Label()), nil)

	case "hold":
		if _, err := b.orch.PlaceHold(ctx, req, target); err != nil {
			b.log.Warn().Err(err).Str("target", target).Msg("failed to place hold")
		}
		content, components := b.renderWipePanel(ctx, target)
		b.editComplex(s, i, content, components)

	case "resume":
		if _, err := b.orch.ReleaseHold(ctx, target); err != nil {
			b.log.Warn().Err(err).Str("target", target).Msg("failed to release hold")
		}
		content, components := b.renderWipePanel(ctx, target)
		b.editComplex(s, i, content, components)
	}
}
