package testutil

import (
	"testing"
	"time"
)

func TestDeterministicClock(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewDeterministicClock(base, time.Second)

	if got := c.Now(); !got.Equal(base) {
		t.Errorf("first Now = %v, want %v", got, base)
	}
	if got := c.Now(); !got.Equal(base.Add(time.Second)) {
		t.Errorf("second Now = %v, want %v", got, base.Add(time.Second))
	}

	c.Reset()
	if got := c.Now(); !got.Equal(base) {
		t.Errorf("Now after Reset = %v, want %v", got, base)
	}
}

func TestFixedIDGenerator(t *testing.T) {
	g := NewFixedIDGenerator()

	first, err := g.NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	second, err := g.NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}

	if first != "00000000-0000-7000-8000-000000000001" {
		t.Errorf("first id = %q", first)
	}
	if second != "00000000-0000-7000-8000-000000000002" {
		t.Errorf("second id = %q", second)
	}
}
