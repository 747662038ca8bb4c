package store

import "testing"

func TestSessionKey(t *testing.T) {
	got := SessionKey(12, 9988776655)
	want := "f123:championship:12:session:9988776655:session"
	if got != want {
		t.Fatalf("SessionKey = %q, want %q", got, want)
	}
}

func TestParticipantsKey(t *testing.T) {
	got := ParticipantsKey(12, 9988776655)
	want := "f123:championship:12:session:9988776655:participants"
	if got != want {
		t.Fatalf("ParticipantsKey = %q, want %q", got, want)
	}
}

func TestHistoryKey(t *testing.T) {
	got := HistoryKey(12, 9988776655, 5)
	want := "f123:championship:12:session:9988776655:history:car:5"
	if got != want {
		t.Fatalf("HistoryKey = %q, want %q", got, want)
	}
}

func TestKeysAreDistinctPerCar(t *testing.T) {
	a := HistoryKey(1, 100, 0)
	b := HistoryKey(1, 100, 1)
	if a == b {
		t.Fatalf("HistoryKey for different car indices collided: %q", a)
	}
}
