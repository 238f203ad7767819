package domain

// Annotation namespaces.
const (
	// NamespaceScratch holds transient hand-off annotations. Nothing in this
	// namespace survives a completed run.
	NamespaceScratch = "scratch"
	// NamespaceDefault holds annotations exposed to downstream consumers.
	NamespaceDefault = "rst"
)

// Scratch annotation names deposited by the upstream reader.
const (
	AnnoExternalID     = "external_id"
	AnnoSecondaryEdges = "secondary_edges"
	AnnoSignals        = "signals"
)

// Annotation names in the default namespace.
const (
	AnnoKind             = "kind"
	AnnoRelName          = "relname"
	AnnoSignaledRelation = "signaled_relation"
	AnnoEnd              = "end"
	AnnoType             = "type"
	AnnoSubtype          = "subtype"
	AnnoText             = "text"
	AnnoTokens           = "tokens"
	AnnoIsSignaled       = "is_signaled"
)

// Values of the "end" annotation on scaffold relations.
const (
	EndSource = "source"
	EndTarget = "target"
)

// ProcessingEarliestToken is the run-local key holding a signal's minimum token position.
const ProcessingEarliestToken = "earliest_token"
