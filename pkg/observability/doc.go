/*
Package observability exposes engine activity as Prometheus metrics and
OpenTelemetry traces.

Metrics are fed through domain.LifecycleHooks, so any engine built with
squeezer.WithLifecycleHooks(m.Hooks()) reports pass durations, pass failures
and document outcomes. InitTracing installs a global tracer provider that the
engine's per-pass spans are recorded on.
*/
package observability
