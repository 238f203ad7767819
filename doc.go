/*
Package squeezer is a graph-rewriting engine for linguistically annotated
discourse documents.

An upstream reader produces a document graph of tokens and constituents and
leaves transient "scratch" annotations on it: external ids, secondary-edge
descriptors and signal descriptors. The engine consumes them and restructures
the graph in a fixed sequence of passes:

  - index: resolve external ids to node handles
  - secondary_edges: build one scaffold node per non-tree relation
  - signals: build signal nodes linked to their tokens and relations
  - bind: attach each scaffold to its earliest signal
  - mark: flag ordinary tree relations with is_signaled
  - dedup: merge constituents duplicating another constituent's tokens
  - sweep: drop any scratch annotation nobody consumed

Deduplication may also run first or be disabled.

# Usage

	eng, err := squeezer.New(squeezer.WithTargetLayer("rst"))
	if err != nil {
		log.Fatal(err)
	}

	doc, err := codec.Unmarshal(data, codec.FormatJSON)
	if err != nil {
		log.Fatal(err)
	}

	report, err := eng.Transform(ctx, doc)
	if err != nil {
		// doc is unchanged
		log.Fatal(err)
	}

A failed Transform never leaves a partially rewritten graph behind. Documents
are independent; use pkg/runner to process a corpus with a worker pool.
*/
package squeezer
