package ingest

import (
	"time"

	"github.com/pitwall/telemetry-ingest/codec"
)

// historyTracker is the per-car SessionHistory dedup state machine
// (spec.md §4.5): a car's lap is accepted for publication only after the
// minimum spacing has elapsed AND its sector triple differs from the
// last accepted one. The very first sighting of a car seeds the state
// without publishing, per the dispatch table's "Extra" column.
type historyTracker struct {
	lastSample  map[uint8]time.Time
	lastSectors map[uint8]codec.SectorTriple
	seen        map[uint8]bool
}

func newHistoryTracker() *historyTracker {
	return &historyTracker{
		lastSample:  make(map[uint8]time.Time),
		lastSectors: make(map[uint8]codec.SectorTriple),
		seen:        make(map[uint8]bool),
	}
}

// Accept reports whether carIdx's latest lap sector triple should be
// published now, and updates the tracker's state accordingly.
func (h *historyTracker) Accept(carIdx uint8, sectors codec.SectorTriple, now time.Time) bool {
	if !h.seen[carIdx] {
		h.seen[carIdx] = true
		h.lastSample[carIdx] = now
		h.lastSectors[carIdx] = sectors
		return false
	}

	if now.Sub(h.lastSample[carIdx]) < historyMinInterval {
		return false
	}
	if h.lastSectors[carIdx] == sectors {
		return false
	}

	h.lastSample[carIdx] = now
	h.lastSectors[carIdx] = sectors
	return true
}
