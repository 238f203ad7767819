/*
Package runner transforms a whole corpus of documents.

A Runner reads document ids from a source store, transforms each document on
a bounded pool of workers and writes successful results to a sink store. A
document that fails is reported in the Summary and never written, and its
siblings carry on. Each document is processed under a per-document lock from
package session.

# Usage

	r := runner.New(engine, source,
		runner.WithSink(sink),
		runner.WithWorkers(8),
	)

	summary, err := r.Run(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, res := range summary.Failures() {
		log.Printf("%s: %v", res.DocumentID, res.Err)
	}
*/
package runner
