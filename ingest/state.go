package ingest

import "time"

// taskState holds the per-listener pacing state spec.md §4.5 describes.
// It is task-local: one goroutine owns it, so it needs no synchronization
// (spec.md §5: "per-task dedup maps are task-local").
type taskState struct {
	lastMotionPublish       time.Time
	lastSessionPublish      time.Time
	lastParticipantsPublish time.Time

	firewallPinned bool
}

const (
	motionInterval        = 700 * time.Millisecond
	sessionInterval       = 15 * time.Second
	participantsInterval  = 15 * time.Second
	historyMinInterval    = 2 * time.Second
	idleSleep             = 5 * time.Second
)

func (s *taskState) motionDue(now time.Time) bool {
	return now.Sub(s.lastMotionPublish) >= motionInterval
}

func (s *taskState) sessionDue(now time.Time) bool {
	return now.Sub(s.lastSessionPublish) >= sessionInterval
}

func (s *taskState) participantsDue(now time.Time) bool {
	return now.Sub(s.lastParticipantsPublish) >= participantsInterval
}
