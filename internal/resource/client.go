// Package resource implements the paginated resource core: a uniform client
// contract over remote collections, a pure pagination calculator, and a Manager
// that owns list state, serializes operations and drives the delete
// confirmation flow.
package resource

import "context"

// Identifiable is implemented by every resource type the core manages.
type Identifiable interface {
	ResourceID() string
}

// Client talks to one remote collection. T is the resource type and P the
// payload accepted by Create and Update. Implementations return *ClientError
// for every failure and never retry.
type Client[T Identifiable, P any] interface {
	List(ctx context.Context, page, limit int) (Page[T], error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, payload P) (T, error)
	Update(ctx context.Context, id string, payload P) (T, error)
	Delete(ctx context.Context, id string) error
}

// Labels name a resource in user-facing messages.
type Labels struct {
	Singular string // "Category"
	Plural   string // "categories"
}
