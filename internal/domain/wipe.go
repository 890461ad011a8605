// Package domain defines the core types shared across the bot.
package domain

import "time"

// Outcome is the resolution state of a wipe vote.
type Outcome string

const (
	// OutcomePending marks a vote whose poll has not yet been resolved.
	OutcomePending Outcome = "pending"
	// OutcomeSucceeded marks a vote whose poll passed.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeFailed marks a vote whose poll was rejected or undecided.
	OutcomeFailed Outcome = "failed"
)

// WipeVote is a recorded wild dino wipe vote against a target server.
type WipeVote struct {
	ID             string
	UserID         string
	Target         string
	ExternalPollID string
	Outcome        Outcome
	CreatedAt      time.Time
}

// Hold is an administrative block on new wipe votes for a target server.
type Hold struct {
	ID        string
	UserID    string
	Target    string
	CreatedAt time.Time
}

// GateState describes whether a new wipe vote may open for a target.
type GateState string

const (
	// GateOpen means a new vote may be started.
	GateOpen GateState = "open"
	// GateHeld means an administrative hold blocks new votes.
	GateHeld GateState = "held"
	// GateCooldown means a recent successful wipe blocks new votes.
	GateCooldown GateState = "cooldown"
	// GateVoting means a vote is already in flight for the target.
	GateVoting GateState = "voting"
)

// Requester identifies who asked for an operation and where the reply
// should surface. Origin is an opaque locator owned by the calling layer.
type Requester struct {
	ID     string
	Name   string
	Origin string
}
