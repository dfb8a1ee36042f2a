package repository

import "context"

// Session gives access to repositories bound to one unit of work.
type Session interface {
	Orders() OrderRepository
	Designs() DesignRepository
}

// Sessions acquires independent units of work. The callback runs on its own
// connection and is committed when it returns nil, rolled back otherwise.
// Background tasks use it instead of repositories borrowed from a request.
type Sessions interface {
	WithinSession(ctx context.Context, fn func(Session) error) error
}
