// Package middleware wraps document stores with extra behavior such as
// encryption at rest and annotation redaction.
package middleware

import "github.com/gucorpling/squeezer/pkg/ports"

// Middleware allows wrapping a DocumentStore to add behavior.
type Middleware func(ports.DocumentStore) ports.DocumentStore

// Chain applies mws to store so that the first middleware is outermost.
func Chain(store ports.DocumentStore, mws ...Middleware) ports.DocumentStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
