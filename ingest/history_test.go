package ingest

import (
	"testing"
	"time"

	"github.com/pitwall/telemetry-ingest/codec"
)

// TestHistoryDedupScenario reproduces spec.md's Sc4 end-to-end scenario
// directly against the tracker: first sight seeds without publishing,
// identical triples repeated after the interval has elapsed don't
// publish, and a changed triple after the interval does.
func TestHistoryDedupScenario(t *testing.T) {
	h := newHistoryTracker()
	t0 := time.Unix(0, 0)
	triple := codec.SectorTriple{Sector1Ms: 1000, Sector2Ms: 1000, Sector3Ms: 1000}

	if got := h.Accept(5, triple, t0); got {
		t.Fatal("first sighting must not publish")
	}
	if got := h.Accept(5, triple, t0.Add(3*time.Second)); got {
		t.Fatal("identical triple at 3s must not publish")
	}
	if got := h.Accept(5, triple, t0.Add(6*time.Second)); got {
		t.Fatal("identical triple repeated must not publish")
	}

	changed := codec.SectorTriple{Sector1Ms: 1000, Sector2Ms: 1000, Sector3Ms: 1001}
	if got := h.Accept(5, changed, t0.Add(9*time.Second)); !got {
		t.Fatal("changed triple after interval elapsed must publish")
	}
}

func TestHistoryRejectsWithinMinInterval(t *testing.T) {
	h := newHistoryTracker()
	t0 := time.Unix(0, 0)
	a := codec.SectorTriple{Sector1Ms: 1000, Sector2Ms: 1000, Sector3Ms: 1000}
	b := codec.SectorTriple{Sector1Ms: 1000, Sector2Ms: 1000, Sector3Ms: 2000}

	h.Accept(5, a, t0)
	if got := h.Accept(5, b, t0.Add(time.Second)); got {
		t.Fatal("a changed triple inside the 2s minimum interval must not publish")
	}
}

func TestHistoryTracksCarsIndependently(t *testing.T) {
	h := newHistoryTracker()
	t0 := time.Unix(0, 0)
	a := codec.SectorTriple{Sector1Ms: 1000, Sector2Ms: 1000, Sector3Ms: 1000}

	h.Accept(0, a, t0) // seed car 0
	// car 1's first sighting must still seed independently, not publish.
	if got := h.Accept(1, a, t0); got {
		t.Fatal("car 1's first sighting must not publish even though car 0 was already seeded")
	}
}
