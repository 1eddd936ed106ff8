package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSnapshotNotFound is returned by a SnapshotStore when the key holds nothing
var ErrSnapshotNotFound = errors.New("cart snapshot not found")

// SnapshotStore persists serialised carts by key. Implementations decide the
// medium (file, key-value store, database row).
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// MarshalSnapshot serialises items as a JSON list
func MarshalSnapshot(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	for i := range items {
		if items[i].SelectedVariants == nil {
			items[i].SelectedVariants = VariantSelection{}
		}
	}
	return json.Marshal(items)
}

// UnmarshalSnapshot parses a JSON list and checks the cart invariants
func UnmarshalSnapshot(data []byte) (*Cart, error) {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return FromItems(items)
}
