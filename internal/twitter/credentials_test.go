package twitter

import (
	"errors"
	"testing"
	"time"
)

func TestCredentialPoolRotation(t *testing.T) {
	pool := NewCredentialPool([]string{"tok-a", "tok-b", "tok-c"}, 10)

	var got []string
	for i := 0; i < 6; i++ {
		c, err := pool.Next()
		if err != nil {
			t.Fatalf("Next() returned error on call %d: %v", i, err)
		}
		got = append(got, c.Token)
	}

	want := []string{"tok-a", "tok-b", "tok-c", "tok-a", "tok-b", "tok-c"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d: got token %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCredentialPoolSkipsSaturated(t *testing.T) {
	pool := NewCredentialPool([]string{"tok-a", "tok-b"}, 1)

	first, err := pool.Next()
	if err != nil {
		t.Fatal(err)
	}
	pool.RecordUsage(first)

	// tok-a is at its cap now, so the next two picks must both be tok-b.
	for i := 0; i < 2; i++ {
		c, err := pool.Next()
		if err != nil {
			t.Fatalf("Next() returned error: %v", err)
		}
		if c.Token != "tok-b" {
			t.Errorf("pick %d: got %q, want tok-b", i, c.Token)
		}
	}
}

func TestCredentialPoolExhaustion(t *testing.T) {
	pool := NewCredentialPool([]string{"tok-a", "tok-b"}, 1)

	for i := 0; i < 2; i++ {
		c, err := pool.Next()
		if err != nil {
			t.Fatalf("Next() returned error on call %d: %v", i, err)
		}
		pool.RecordUsage(c)
	}

	_, err := pool.Next()
	if !errors.Is(err, ErrCredentialsExhausted) {
		t.Fatalf("got err %v, want ErrCredentialsExhausted", err)
	}
}

func TestCredentialPoolUsageCountsFailures(t *testing.T) {
	pool := NewCredentialPool([]string{"tok-a"}, 5)

	c, err := pool.Next()
	if err != nil {
		t.Fatal(err)
	}

	// Usage is charged per attempt regardless of outcome.
	pool.RecordUsage(c)
	pool.RecordUsage(c)

	if c.CurrentUsage != 2 {
		t.Errorf("CurrentUsage = %d, want 2", c.CurrentUsage)
	}
	if c.MonthlyUsage != 2 {
		t.Errorf("MonthlyUsage = %d, want 2", c.MonthlyUsage)
	}
}

func TestCredentialPoolMonthlyRollover(t *testing.T) {
	pool := NewCredentialPool([]string{"tok-a"}, 1)

	c, err := pool.Next()
	if err != nil {
		t.Fatal(err)
	}
	pool.RecordUsage(c)

	if _, err := pool.Next(); !errors.Is(err, ErrCredentialsExhausted) {
		t.Fatalf("got err %v, want ErrCredentialsExhausted", err)
	}

	// Advance the clock past the month boundary.
	pool.now = func() time.Time {
		return time.Now().AddDate(0, 1, 0)
	}

	renewed, err := pool.Next()
	if err != nil {
		t.Fatalf("Next() after rollover returned error: %v", err)
	}
	if renewed.CurrentUsage != 0 || renewed.MonthlyUsage != 0 {
		t.Errorf("counters not reset: current=%d monthly=%d", renewed.CurrentUsage, renewed.MonthlyUsage)
	}
}
