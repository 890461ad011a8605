package ark

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/axieum/hlna/internal/config"
	"github.com/axieum/hlna/internal/domain"
)

// Store persists wipe votes and holds.
type Store interface {
	CreateVote(ctx context.Context, v *domain.WipeVote) error
	SetVotePoll(ctx context.Context, voteID, pollID string) error
	ResolveVote(ctx context.Context, voteID string, outcome domain.Outcome) error
	PendingVote(ctx context.Context, target string) (*domain.WipeVote, error)
	LastSuccessfulVote(ctx context.Context, target string) (*domain.WipeVote, error)
	RecentVotes(ctx context.Context, limit int) ([]domain.WipeVote, error)
	CreateHold(ctx context.Context, h *domain.Hold) error
	GetHold(ctx context.Context, target string) (*domain.Hold, error)
	ListHolds(ctx context.Context) ([]domain.Hold, error)
	DeleteHold(ctx context.Context, target string) (bool, error)
}

// Poller runs votes on the chat surface. Open returns the external poll
// identifier; End closes the poll and returns the final tallies.
type Poller interface {
	Open(ctx context.Context, req domain.Requester, server config.ArkServer, duration time.Duration) (string, error)
	End(ctx context.Context, origin, pollID string) (yes, no int, err error)
}

// Wiper runs the wild dino wipe sequence against a server.
type Wiper interface {
	Wipe(ctx context.Context, name string) error
}

// Orchestrator coordinates the wipe vote workflow: gating, running the
// poll, resolving the vote, and executing the wipe.
type Orchestrator struct {
	cfg    *config.ArkConfig
	store  Store
	poller Poller
	wiper  Wiper
	events chan domain.Event
	now    func() time.Time
	sleep  func(context.Context, time.Duration) error
	log    zerolog.Logger
}

// New creates an Orchestrator.
func New(cfg *config.ArkConfig, store Store, poller Poller, wiper Wiper, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		store:  store,
		poller: poller,
		wiper:  wiper,
		events: make(chan domain.Event, 16),
		now:    time.Now,
		sleep:  sleepContext,
		log:    log.With().Str("component", "orchestrator").Logger(),
	}
}

// Events returns the stream of vote and wipe lifecycle events.
func (o *Orchestrator) Events() <-chan domain.Event {
	return o.events
}

func (o *Orchestrator) emitEvent(e domain.Event) {
	o.events <- e
}

// Gate reports whether a new vote may open for a target, and for a
// cooling-down target, how long until the gate reopens. A hold takes
// precedence over an in-flight vote, which takes precedence over cooldown.
func (o *Orchestrator) Gate(ctx context.Context, target string) (domain.GateState, time.Duration, error) {
	hold, err := o.store.GetHold(ctx, target)
	if err != nil {
		return "", 0, err
	}
	if hold != nil {
		return domain.GateHeld, 0, nil
	}

	pending, err := o.store.PendingVote(ctx, target)
	if err != nil {
		return "", 0, err
	}
	if pending != nil {
		return domain.GateVoting, 0, nil
	}

	last, err := o.store.LastSuccessfulVote(ctx, target)
	if err != nil {
		return "", 0, err
	}
	if last != nil {
		until := last.CreatedAt.Add(o.cfg.DinoWipe.Cooldown())
		// The gate reopens strictly after the cooldown elapses
		if !o.now().After(until) {
			return domain.GateCooldown, until.Sub(o.now()), nil
		}
	}

	return domain.GateOpen, 0, nil
}

// OpenVote starts a new wipe vote for a target. The vote resolves itself
// once the poll duration elapses.
func (o *Orchestrator) OpenVote(ctx context.Context, req domain.Requester, target string) (*domain.WipeVote, error) {
	srv, ok := o.cfg.Server(target)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownServer, target)
	}
	if !srv.HasRcon() {
		return nil, fmt.Errorf("%w: %s", ErrNoRcon, target)
	}

	state, _, err := o.Gate(ctx, target)
	if err != nil {
		return nil, err
	}
	switch state {
	case domain.GateHeld:
		return nil, fmt.Errorf("%w: %s", ErrHeld, target)
	case domain.GateVoting:
		return nil, fmt.Errorf("%w: %s", ErrVoteInFlight, target)
	case domain.GateCooldown:
		return nil, fmt.Errorf("%w: %s", ErrCooldown, target)
	}

	vote := &domain.WipeVote{
		ID:        uuid.NewString(),
		UserID:    req.ID,
		Target:    target,
		Outcome:   domain.OutcomePending,
		CreatedAt: o.now(),
	}
	if err := o.store.CreateVote(ctx, vote); err != nil {
		return nil, fmt.Errorf("recording vote: %w", err)
	}

	pollID, err := o.poller.Open(ctx, req, srv, o.cfg.DinoWipe.PollDuration())
	if err != nil {
		// Without a poll the vote can never pass
		if rerr := o.store.ResolveVote(ctx, vote.ID, domain.OutcomeFailed); rerr != nil {
			o.log.Error().Err(rerr).Str("vote", vote.ID).Msg("failed to resolve orphaned vote")
		}
		return nil, fmt.Errorf("opening poll: %w", err)
	}
	vote.ExternalPollID = pollID
	if err := o.store.SetVotePoll(ctx, vote.ID, pollID); err != nil {
		return nil, fmt.Errorf("attaching poll: %w", err)
	}

	o.log.Info().
		Str("vote", vote.ID).
		Str("target", target).
		Str("user", req.ID).
		Msg("wipe vote opened")

	go o.resolveAfter(req, *vote)
	return vote, nil
}

// resolveAfter waits out the poll duration and then closes the vote.
// It runs detached from the opening request's context.
func (o *Orchestrator) resolveAfter(req domain.Requester, vote domain.WipeVote) {
	ctx := context.Background()
	if err := o.sleep(ctx, o.cfg.DinoWipe.PollDuration()); err != nil {
		return
	}
	o.closeVote(ctx, req, vote)
}

// closeVote ends the poll, records the outcome, and on success runs the
// wipe. The vote is always resolved before the wipe executes.
func (o *Orchestrator) closeVote(ctx context.Context, req domain.Requester, vote domain.WipeVote) {
	yes, no, err := o.poller.End(ctx, req.Origin, vote.ExternalPollID)
	if err != nil {
		o.log.Error().Err(err).Str("vote", vote.ID).Msg("failed to read poll results")
		yes, no = 0, 0
	}

	outcome := decideOutcome(yes, no)
	if err := o.store.ResolveVote(ctx, vote.ID, outcome); err != nil {
		o.log.Error().Err(err).Str("vote", vote.ID).Msg("failed to resolve vote")
		return
	}
	vote.Outcome = outcome

	o.log.Info().
		Str("vote", vote.ID).
		Str("target", vote.Target).
		Int("yes", yes).
		Int("no", no).
		Str("outcome", string(outcome)).
		Msg("wipe vote resolved")

	if outcome != domain.OutcomeSucceeded {
		o.emitEvent(domain.Event{Type: domain.EventVoteFailed, Vote: vote, Requester: req, For: yes, Against: no})
		return
	}
	o.emitEvent(domain.Event{Type: domain.EventVotePassed, Vote: vote, Requester: req, For: yes, Against: no})

	if err := o.wiper.Wipe(ctx, vote.Target); err != nil {
		o.log.Error().Err(err).Str("target", vote.Target).Msg("wipe failed")
		o.emitEvent(domain.Event{Type: domain.EventWipeFailed, Vote: vote, Requester: req, Err: err})
		return
	}
	o.emitEvent(domain.Event{Type: domain.EventWipeCompleted, Vote: vote, Requester: req})
}

// decideOutcome maps final poll tallies to a vote outcome. An undecided
// poll with no voters fails, and a single objection vetoes the wipe.
func decideOutcome(yes, no int) domain.Outcome {
	if yes == 0 && no == 0 {
		return domain.OutcomeFailed
	}
	if no >= 1 {
		return domain.OutcomeFailed
	}
	return domain.OutcomeSucceeded
}

// PlaceHold blocks new wipe votes for a target until released.
func (o *Orchestrator) PlaceHold(ctx context.Context, req domain.Requester, target string) (*domain.Hold, error) {
	if _, ok := o.cfg.Server(target); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownServer, target)
	}
	hold := &domain.Hold{
		ID:        uuid.NewString(),
		UserID:    req.ID,
		Target:    target,
		CreatedAt: o.now(),
	}
	if err := o.store.CreateHold(ctx, hold); err != nil {
		return nil, err
	}
	o.log.Info().Str("target", target).Str("user", req.ID).Msg("hold placed")
	return hold, nil
}

// ReleaseHold removes the hold for a target. Returns whether one existed.
func (o *Orchestrator) ReleaseHold(ctx context.Context, target string) (bool, error) {
	released, err := o.store.DeleteHold(ctx, target)
	if err != nil {
		return false, err
	}
	if released {
		o.log.Info().Str("target", target).Msg("hold released")
	}
	return released, nil
}

// Holds returns all active holds.
func (o *Orchestrator) Holds(ctx context.Context) ([]domain.Hold, error) {
	return o.store.ListHolds(ctx)
}

// RecentVotes returns the newest recorded votes, newest first.
func (o *Orchestrator) RecentVotes(ctx context.Context, limit int) ([]domain.WipeVote, error) {
	return o.store.RecentVotes(ctx, limit)
}
