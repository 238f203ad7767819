package domain

// SecondaryEdgeDescriptor names a non-tree relation between two constituents
// by their external ids.
type SecondaryEdgeDescriptor struct {
	SourceID     string `mapstructure:"source" json:"source" yaml:"source"`
	TargetID     string `mapstructure:"target" json:"target" yaml:"target"`
	RelationName string `mapstructure:"relname" json:"relname" yaml:"relname"`
}

// SignalDescriptor names a textual cue by its covered token ids and the
// constituent ids of the relation it justifies.
type SignalDescriptor struct {
	Type      string   `mapstructure:"type" json:"type" yaml:"type"`
	Subtype   string   `mapstructure:"subtype" json:"subtype" yaml:"subtype"`
	TokenIDs  []string `mapstructure:"tokens" json:"tokens,omitempty" yaml:"tokens,omitempty"`
	SourceIDs []string `mapstructure:"sources" json:"sources,omitempty" yaml:"sources,omitempty"`
}

// IsSecondary reports whether the signal justifies a secondary edge
// rather than the tree relation above its host.
func (d SignalDescriptor) IsSecondary() bool {
	return len(d.SourceIDs) > 1
}
