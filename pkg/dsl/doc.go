/*
Package dsl provides a fluent API for constructing document graphs in Go.

It is meant for tests, examples and programmatic producers that would
otherwise hand-assemble nodes, relations and scratch payloads:

	b := dsl.New("doc1")
	b.Tokens("Hello", "world")
	b.Constituent("edu1").Kind("edu").Layer("rst").ExternalID(1).Dominates("t1", "t2")
	doc, err := b.Build()

Nodes are created in declaration order and relations in the order they were
declared, so handles in the built graph are predictable.
*/
package dsl
