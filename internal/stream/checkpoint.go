package stream

import "time"

// Checkpoint marks how far a stream has read. LastChecked advances to each
// cycle's start time only after the cycle's events were delivered. The
// message-id cursor takes precedence over the timestamp when set, so a
// message is never re-emitted on the same stream.
type Checkpoint struct {
	LastChecked   time.Time
	LastMessageID string
}

// Snapshot is the member set observed by the previous cycle. It is copied by
// value when stored so later membership changes can never mutate it.
type Snapshot struct {
	Members []string
}

func newSnapshot(members []string) Snapshot {
	copied := make([]string, len(members))
	copy(copied, members)
	return Snapshot{Members: copied}
}
