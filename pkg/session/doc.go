/*
Package session serializes access to documents.

A Manager hands out per-document locks so that a document is never loaded,
transformed and saved by two goroutines at once. With a DistributedLocker
configured the same guarantee extends across processes sharing a store.
*/
package session
