package domain

import "errors"

// ErrModelInvariant is returned when the input graph violates an assumption the
// rewriting passes depend on (e.g. more annotated than bare duplicates).
var ErrModelInvariant = errors.New("model invariant violated")

// ErrUnresolvedReference is returned when a descriptor names an id with no matching node.
var ErrUnresolvedReference = errors.New("unresolved reference")

// ErrMalformedDescriptor is returned when a scratch payload cannot be decoded.
var ErrMalformedDescriptor = errors.New("malformed descriptor")

// ErrDocumentNotFound is returned when a document ID cannot be found in the store.
var ErrDocumentNotFound = errors.New("document not found")

// ErrNodeNotFound is returned for a stale or unknown node handle.
var ErrNodeNotFound = errors.New("node not found")

// ErrRelationNotFound is returned for a stale or unknown relation handle.
var ErrRelationNotFound = errors.New("relation not found")
