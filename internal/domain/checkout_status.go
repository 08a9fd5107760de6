package domain

type CheckoutStatus string

const (
	CheckoutStatusIdle             CheckoutStatus = "IDLE"
	CheckoutStatusInitializing     CheckoutStatus = "INITIALIZING"
	CheckoutStatusAwaitingProvider CheckoutStatus = "AWAITING_PROVIDER"
	CheckoutStatusVerifying        CheckoutStatus = "VERIFYING"
	CheckoutStatusConfirmed        CheckoutStatus = "CONFIRMED"
	CheckoutStatusFailed           CheckoutStatus = "FAILED"
)

// validTransitions encodes the life of a single checkout attempt. A failed
// attempt is terminal; retries start over from IDLE. Verification that does
// not reach a final provider status drops back to AWAITING_PROVIDER so the
// callback (or polling) can verify again.
var validTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusIdle:             {CheckoutStatusInitializing},
	CheckoutStatusInitializing:     {CheckoutStatusAwaitingProvider, CheckoutStatusFailed},
	CheckoutStatusAwaitingProvider: {CheckoutStatusVerifying},
	CheckoutStatusVerifying:        {CheckoutStatusConfirmed, CheckoutStatusFailed, CheckoutStatusAwaitingProvider},
	CheckoutStatusFailed:           {CheckoutStatusIdle},
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusConfirmed || s == CheckoutStatusFailed
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}
