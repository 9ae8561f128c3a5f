package worksheets

import "context"

// Store persists worksheet records. Implementations return ErrNotFound for
// unknown or malformed ids and sort List results newest first.
type Store interface {
	Insert(ctx context.Context, w *Worksheet) (*Worksheet, error)
	Find(ctx context.Context, id string) (*Worksheet, error)
	// List returns every match when limit is zero.
	List(ctx context.Context, filters Filters, limit int) ([]Worksheet, error)
	Update(ctx context.Context, id string, cmd EditCommand) (*Worksheet, error)
	Delete(ctx context.Context, id string) error
}
