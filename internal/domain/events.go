package domain

// EventType identifies what happened during a wipe vote lifecycle.
type EventType string

const (
	// EventVotePassed fires when a poll closes in favour of wiping.
	EventVotePassed EventType = "vote_passed"
	// EventVoteFailed fires when a poll closes against wiping.
	EventVoteFailed EventType = "vote_failed"
	// EventWipeCompleted fires after the wipe sequence finishes.
	EventWipeCompleted EventType = "wipe_completed"
	// EventWipeFailed fires when the wipe sequence errors out.
	EventWipeFailed EventType = "wipe_failed"
)

// Event describes a wipe vote lifecycle change for the chat surface.
type Event struct {
	Type      EventType
	Vote      WipeVote
	Requester Requester
	For       int
	Against   int
	Err       error
}
