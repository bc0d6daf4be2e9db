// Package middleware wraps replay stores with encryption and redaction.
package middleware

import "github.com/aretw0/easel/pkg/ports"

// Middleware allows wrapping a ReplayStore to add behavior.
type Middleware func(ports.ReplayStore) ports.ReplayStore

// Chain applies middlewares so the first one listed sees calls first.
func Chain(store ports.ReplayStore, mws ...Middleware) ports.ReplayStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
