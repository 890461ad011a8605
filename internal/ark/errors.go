package ark

import "errors"

// ErrUnknownServer is returned when a target name is not configured.
var ErrUnknownServer = errors.New("unknown server")

// ErrNoRcon is returned when a server has no remote console configured.
var ErrNoRcon = errors.New("server has no rcon configured")

// ErrHeld is returned when an administrative hold blocks a new vote.
var ErrHeld = errors.New("target is held")

// ErrVoteInFlight is returned when a vote is already open for the target.
var ErrVoteInFlight = errors.New("vote already in flight")

// ErrCooldown is returned when a recent wipe blocks a new vote.
var ErrCooldown = errors.New("target is cooling down")
