package checkout

import (
	"errors"
	"sync"
	"time"

	"github.com/tiankay999/Kay-Birks-website/internal/domain"
)

const (
	// AttemptTTL is how long an abandoned attempt is remembered.
	AttemptTTL = 30 * time.Minute

	// CleanupInterval is how often the background cleanup runs
	CleanupInterval = time.Minute
)

var (
	ErrUnknownAttempt      = errors.New("unknown checkout attempt")
	ErrIllegalTransition   = errors.New("illegal transition of checkout status")
	ErrAttemptAlreadyFinal = errors.New("checkout attempt already finalized")
)

type Attempt struct {
	Reference string
	OrderID   string
	Status    domain.CheckoutStatus
	UpdatedAt time.Time
}

// AttemptTracker remembers in-flight checkout attempts by provider
// reference. It only informs logging and transition checks; the provider
// remains the sole source of truth for payment state, so verifying a
// reference the tracker has never seen is allowed.
type AttemptTracker struct {
	mu       sync.RWMutex
	attempts map[string]*Attempt

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewAttemptTracker() *AttemptTracker {
	t := &AttemptTracker{
		attempts:    make(map[string]*Attempt),
		stopCleanup: make(chan struct{}),
	}

	t.wg.Add(1)
	go t.cleanupLoop()

	return t
}

func (t *AttemptTracker) cleanupLoop() {
	defer t.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.expireAttempts()
		case <-t.stopCleanup:
			return
		}
	}
}

func (t *AttemptTracker) expireAttempts() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for ref, attempt := range t.attempts {
		if time.Since(attempt.UpdatedAt) > AttemptTTL {
			delete(t.attempts, ref)
		}
	}
}

// Track registers an attempt that has been handed off to the provider.
func (t *AttemptTracker) Track(reference, orderID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attempts[reference] = &Attempt{
		Reference: reference,
		OrderID:   orderID,
		Status:    domain.CheckoutStatusAwaitingProvider,
		UpdatedAt: time.Now(),
	}
}

// Transition moves a tracked attempt to the given status, enforcing the
// attempt state machine. Unknown references report ErrUnknownAttempt.
func (t *AttemptTracker) Transition(reference string, to domain.CheckoutStatus) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	attempt, ok := t.attempts[reference]
	if !ok {
		return ErrUnknownAttempt
	}

	if attempt.Status.IsTerminal() {
		return ErrAttemptAlreadyFinal
	}

	if !domain.CanTransitionTo(attempt.Status, to) {
		return ErrIllegalTransition
	}

	attempt.Status = to
	attempt.UpdatedAt = time.Now()
	return nil
}

func (t *AttemptTracker) Get(reference string) (*Attempt, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	attempt, ok := t.attempts[reference]
	if !ok {
		return nil, false
	}
	copied := *attempt
	return &copied, true
}

func (t *AttemptTracker) Close() {
	close(t.stopCleanup)
	t.wg.Wait()
}
