package cart

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tiankay999/Kay-Birks-website/internal/domain"
)

// PromoCodes maps a promo code to the discount fraction it grants.
var PromoCodes = map[string]float64{
	"welcome10": 0.10,
	"save20":    0.20,
	"birks15":   0.15,
}

var ErrUnknownPromoCode = errors.New("invalid promo code")

// Store owns the cart line items. Every mutation recomputes nothing eagerly
// (totals are derived on demand), persists the item list through the
// repository and notifies subscribers. The store is the single source of
// truth; the repository is its durable copy, so a failed save is logged and
// does not undo the mutation.
type Store struct {
	mu       sync.RWMutex
	repo     Repository
	items    []domain.LineItem
	promo    string
	discount float64

	subMu       sync.Mutex
	subscribers []func()
}

// NewStore restores the cart from the repository. Missing or corrupt
// persisted state yields an empty cart, never an error.
func NewStore(ctx context.Context, repo Repository) *Store {
	s := &Store{repo: repo}

	items, err := repo.Load(ctx)
	switch {
	case err == nil:
		s.items = items
	case errors.Is(err, ErrCartNotFound):
		// first session, start empty
	default:
		log.Printf("cart restore failed, starting empty: %v", err)
	}

	return s
}

// Subscribe registers a callback invoked after every mutation. The
// rendering layer subscribes here instead of being invoked inline.
func (s *Store) Subscribe(fn func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) notify() {
	s.subMu.Lock()
	subs := make([]func(), len(s.subscribers))
	copy(subs, s.subscribers)
	s.subMu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// AddItem builds a line item from structured product data. An existing item
// with the same name and color has its quantity incremented instead;
// customized items always append.
func (s *Store) AddItem(ctx context.Context, product domain.Product, selectedColor string, customized bool) domain.LineItem {
	color := selectedColor
	if color == "" {
		color = product.DefaultColor
	}

	item := domain.LineItem{
		ID:         uuid.New().String(),
		Name:       product.Name,
		UnitPrice:  product.Price,
		ImageRef:   product.ImageURL,
		ColorTag:   color,
		Quantity:   1,
		Customized: customized,
	}

	s.mu.Lock()
	merged := false
	if !customized {
		for i := range s.items {
			if s.items[i].SameSelection(item) {
				s.items[i].Quantity++
				item = s.items[i]
				merged = true
				break
			}
		}
	}
	if !merged {
		s.items = append(s.items, item)
	}
	s.persist(ctx)
	s.mu.Unlock()

	s.notify()
	return item
}

// RemoveItem deletes the matching item. Unknown ids are a no-op.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.persist(ctx)
	s.mu.Unlock()

	s.notify()
}

// ChangeQuantity applies a +1/-1 delta, clamped at a minimum of 1.
// Decrementing below 1 is ignored; removal is an explicit action.
func (s *Store) ChangeQuantity(ctx context.Context, id string, delta int) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if q := s.items[i].Quantity + delta; q >= 1 {
			s.items[i].Quantity = q
		}
		break
	}
	s.persist(ctx)
	s.mu.Unlock()

	s.notify()
}

// ApplyPromoCode activates the discount for a known code. Codes are matched
// case-insensitively after trimming. Unknown codes leave state unchanged.
// A valid code replaces any previously active one; discounts never stack.
func (s *Store) ApplyPromoCode(code string) (float64, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))

	fraction, ok := PromoCodes[normalized]
	if !ok {
		return 0, ErrUnknownPromoCode
	}

	s.mu.Lock()
	s.promo = normalized
	s.discount = fraction
	s.mu.Unlock()

	s.notify()
	return fraction, nil
}

// Totals recomputes the derived pricing from the current items. Idempotent:
// unchanged items yield identical output.
func (s *Store) Totals() domain.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ComputeTotals(s.items, s.discount)
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []domain.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.LineItem, len(s.items))
	copy(items, s.items)
	return items
}

// ItemCount is the total quantity across all line items.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Clear empties the cart. Called only after a payment has been verified as
// successful with the provider.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.promo = ""
	s.discount = 0
	if err := s.repo.Clear(ctx); err != nil {
		log.Printf("cart clear persist failed: %v", err)
	}
	s.mu.Unlock()

	s.notify()
}

// persist is called with the write lock held.
func (s *Store) persist(ctx context.Context) {
	if err := s.repo.Save(ctx, s.items); err != nil {
		log.Printf("cart persist failed: %v", err)
	}
}
