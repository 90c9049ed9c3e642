package bootstrap

import "context"

// Seeder loads reference data once infrastructure is up.
type Seeder interface {
	Seed(ctx context.Context, res *Result) error
}

// SeederFunc adapts a bare function to the Seeder interface.
type SeederFunc func(ctx context.Context, res *Result) error

// Seed executes the underlying function.
func (f SeederFunc) Seed(ctx context.Context, res *Result) error {
	return f(ctx, res)
}

// Modules groups optional bootstrapping hooks.
type Modules struct {
	Seeders []Seeder
}
