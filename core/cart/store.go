package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexedwards/scs/v2"
)

const sessionKey = "cart"

// Store keeps each client's cart in their session, so the cart lives
// exactly as long as the session does. The cart is serialized rather
// than stored as a live value to stay independent of the session
// backend.
type Store struct {
	session *scs.SessionManager
}

func NewStore(session *scs.SessionManager) *Store {
	return &Store{session: session}
}

// Load returns the cart of the session bound to ctx, empty when the
// session has none yet.
func (s *Store) Load(ctx context.Context) (*Cart, error) {
	raw := s.session.GetBytes(ctx, sessionKey)
	if raw == nil {
		return &Cart{}, nil
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decoding session cart: %w", err)
	}
	return &Cart{items: items}, nil
}

// Save writes the cart back into the session bound to ctx.
func (s *Store) Save(ctx context.Context, c *Cart) error {
	raw, err := json.Marshal(c.items)
	if err != nil {
		return fmt.Errorf("encoding session cart: %w", err)
	}
	s.session.Put(ctx, sessionKey, raw)
	return nil
}

// Drop removes the cart from the session entirely.
func (s *Store) Drop(ctx context.Context) {
	s.session.Remove(ctx, sessionKey)
}
