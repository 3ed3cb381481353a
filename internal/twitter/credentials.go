package twitter

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCredentialsExhausted is returned when every bearer token in the pool is
// inactive or at its monthly cap.
var ErrCredentialsExhausted = errors.New("twitter: all credentials exhausted")

type Credential struct {
	ID           int
	Token        string
	MaxRequests  int
	CurrentUsage int
	MonthlyUsage int
	CurrentMonth time.Month
	IsActive     bool
}

// CredentialPool rotates bearer tokens round-robin, skipping tokens that are
// inactive or at their cap. Counters live in memory only; the provider
// enforces the authoritative quota.
type CredentialPool struct {
	mu    sync.Mutex
	creds []*Credential
	next  int
	now   func() time.Time
}

func NewCredentialPool(tokens []string, maxRequests int) *CredentialPool {
	now := time.Now
	creds := make([]*Credential, 0, len(tokens))
	for i, token := range tokens {
		creds = append(creds, &Credential{
			ID:           i,
			Token:        token,
			MaxRequests:  maxRequests,
			CurrentMonth: now().Month(),
			IsActive:     true,
		})
	}
	return &CredentialPool{creds: creds, now: now}
}

// Next returns a usable credential, advancing the rotation cursor. It returns
// ErrCredentialsExhausted without touching the network when nothing is usable.
func (p *CredentialPool) Next() (*Credential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rolloverIfNewMonth()

	for i := 0; i < len(p.creds); i++ {
		c := p.creds[(p.next+i)%len(p.creds)]
		if !c.IsActive || c.CurrentUsage >= c.MaxRequests {
			continue
		}
		p.next = (p.next + i + 1) % len(p.creds)
		return c, nil
	}

	return nil, ErrCredentialsExhausted
}

// RecordUsage increments usage counters for a credential. Called on every
// attempt, success or failure, since failed calls still consume quota.
func (p *CredentialPool) RecordUsage(c *Credential) {
	if c == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	c.CurrentUsage++
	c.MonthlyUsage++

	if c.CurrentUsage >= c.MaxRequests {
		slog.Info("twitter credential reached its cap",
			"credential_id", c.ID,
			"monthly_usage", c.MonthlyUsage)
	}
}

// rolloverIfNewMonth resets counters when the calendar month advances.
// Caller must hold p.mu.
func (p *CredentialPool) rolloverIfNewMonth() {
	month := p.now().Month()
	for _, c := range p.creds {
		if c.CurrentMonth != month {
			c.CurrentMonth = month
			c.CurrentUsage = 0
			c.MonthlyUsage = 0
		}
	}
}

// Size reports how many credentials the pool holds.
func (p *CredentialPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.creds)
}
