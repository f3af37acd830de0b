package feed

import "context"

// Source is implemented by each upstream offer feed (paid API, local
// mirror). Each source fetches its own format and returns raw rows;
// normalization is shared.
type Source interface {
	Name() string
	FetchAll(ctx context.Context) ([]Row, error)
}
