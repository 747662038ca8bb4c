package store

import (
	"context"
	"testing"
)

func TestAppendRejectsWrongCodeLength(t *testing.T) {
	s := &EventStore{}
	err := s.Append(context.Background(), 7, "TOO_LONG", []byte("x"))
	if err == nil {
		t.Fatal("expected an error for a code that is not 4 bytes")
	}
}
