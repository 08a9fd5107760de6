package cart

import (
	"context"
	"errors"

	"github.com/tiankay999/Kay-Birks-website/internal/domain"
)

// CartKey is the fixed name the serialized item list is persisted under.
const CartKey = "cartItems"

var (
	ErrCartNotFound = errors.New("cart not found")
	// ErrCorruptCart signals unreadable persisted state. Callers recover by
	// treating the cart as empty, never by failing.
	ErrCorruptCart = errors.New("persisted cart is corrupt")
)

// Repository persists the cart item list under CartKey.
// Consumers define this interface, not the storage implementations.
type Repository interface {
	Load(ctx context.Context) ([]domain.LineItem, error)
	Save(ctx context.Context, items []domain.LineItem) error
	Clear(ctx context.Context) error
}
