// Package codec reads and writes documents in the JSON and YAML wire formats.
//
// Nodes are addressed by string ids in the wire format; relations reference
// those ids. Run-local processing values are never written.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gucorpling/squeezer/pkg/domain"
)

// Format selects the wire encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format by file extension. Anything that is not
// ".json" is treated as YAML.
func FormatFromPath(path string) Format {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return FormatJSON
	}
	return FormatYAML
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// DecodeError reports a structurally invalid document.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Annotation is the wire form of one namespaced annotation.
type Annotation struct {
	Namespace string `json:"ns,omitempty" yaml:"ns,omitempty"`
	Name      string `json:"name" yaml:"name"`
	Value     any    `json:"value" yaml:"value"`
}

// Node is the wire form of a node.
type Node struct {
	ID          string       `json:"id" yaml:"id"`
	Kind        string       `json:"kind" yaml:"kind"`
	Text        string       `json:"text,omitempty" yaml:"text,omitempty"`
	Layers      []string     `json:"layers,omitempty" yaml:"layers,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// Relation is the wire form of a relation.
type Relation struct {
	Kind        string       `json:"kind" yaml:"kind"`
	Source      string       `json:"source" yaml:"source"`
	Target      string       `json:"target" yaml:"target"`
	Type        string       `json:"type,omitempty" yaml:"type,omitempty"`
	Layers      []string     `json:"layers,omitempty" yaml:"layers,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// Document is the wire form of a document.
type Document struct {
	ID        string     `json:"id" yaml:"id"`
	Layers    []string   `json:"layers,omitempty" yaml:"layers,omitempty"`
	Nodes     []Node     `json:"nodes" yaml:"nodes"`
	Relations []Relation `json:"relations" yaml:"relations"`
}

// Marshal encodes a document.
func Marshal(doc *domain.Document, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a document.
func Unmarshal(data []byte, f Format) (*domain.Document, error) {
	return Decode(bytes.NewReader(data), f)
}

// Encode writes a document to w.
func Encode(w io.Writer, doc *domain.Document, f Format) error {
	wire := FromDomain(doc)
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(wire)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(wire); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", f)
}

// Decode reads a document from r.
func Decode(r io.Reader, f Format) (*domain.Document, error) {
	var wire Document
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&wire); err != nil {
			return nil, fmt.Errorf("failed to parse json document: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&wire); err != nil {
			return nil, fmt.Errorf("failed to parse yaml document: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
	return wire.ToDomain()
}

// FromDomain converts a graph to its wire form. Nodes without a unique name
// get a generated id.
func FromDomain(doc *domain.Document) *Document {
	wire := &Document{ID: doc.ID, Nodes: []Node{}, Relations: []Relation{}}
	g := doc.Graph
	if g == nil {
		return wire
	}
	for _, l := range g.Layers() {
		wire.Layers = append(wire.Layers, l.Name)
	}

	names := make(map[string]int)
	for _, n := range g.Nodes() {
		names[n.Name]++
	}
	ids := make(map[domain.NodeID]string)
	for _, n := range g.Nodes() {
		id := n.Name
		if id == "" || names[id] > 1 {
			id = fmt.Sprintf("%s_%d", n.Kind, n.ID)
		}
		ids[n.ID] = id
		wire.Nodes = append(wire.Nodes, Node{
			ID:          id,
			Kind:        n.Kind.String(),
			Text:        n.Text,
			Layers:      g.LayersOf(n.ID),
			Annotations: annotationsOf(n.AnnotationKeys(), n.Annotations),
		})
	}
	for _, r := range g.Relations() {
		wire.Relations = append(wire.Relations, Relation{
			Kind:        r.Kind.String(),
			Source:      ids[r.Source],
			Target:      ids[r.Target],
			Type:        r.Type,
			Layers:      g.RelationLayersOf(r.ID),
			Annotations: annotationsOf(r.AnnotationKeys(), r.Annotations),
		})
	}
	return wire
}

func annotationsOf(keys []domain.QName, a domain.Annotations) []Annotation {
	if len(keys) == 0 {
		return nil
	}
	out := make([]Annotation, 0, len(keys))
	for _, k := range keys {
		out = append(out, Annotation{Namespace: k.Namespace, Name: k.Name, Value: a[k]})
	}
	return out
}

// ToDomain builds the graph. Nodes keep their wire id as display name.
func (d *Document) ToDomain() (*domain.Document, error) {
	doc := domain.NewDocument(d.ID)
	g := doc.Graph
	for _, l := range d.Layers {
		g.EnsureLayer(l)
	}

	ids := make(map[string]domain.NodeID, len(d.Nodes))
	for i, wn := range d.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		if wn.ID == "" {
			return nil, &DecodeError{Field: field + ".id", Err: fmt.Errorf("missing id")}
		}
		if _, dup := ids[wn.ID]; dup {
			return nil, &DecodeError{Field: field + ".id", Err: fmt.Errorf("duplicate id %q", wn.ID)}
		}
		kind, err := domain.ParseNodeKind(wn.Kind)
		if err != nil {
			return nil, &DecodeError{Field: field + ".kind", Err: err}
		}
		n := g.AddNode(kind, wn.ID)
		n.Text = wn.Text
		for _, a := range wn.Annotations {
			n.Annotate(a.Namespace, a.Name, a.Value)
		}
		for _, l := range wn.Layers {
			_ = g.AddNodeToLayer(l, n.ID)
		}
		ids[wn.ID] = n.ID
	}

	for i, wr := range d.Relations {
		field := fmt.Sprintf("relations[%d]", i)
		kind, err := domain.ParseRelationKind(wr.Kind)
		if err != nil {
			return nil, &DecodeError{Field: field + ".kind", Err: err}
		}
		src, ok := ids[wr.Source]
		if !ok {
			return nil, &DecodeError{Field: field + ".source", Err: fmt.Errorf("unknown node %q: %w", wr.Source, domain.ErrNodeNotFound)}
		}
		tgt, ok := ids[wr.Target]
		if !ok {
			return nil, &DecodeError{Field: field + ".target", Err: fmt.Errorf("unknown node %q: %w", wr.Target, domain.ErrNodeNotFound)}
		}
		r, err := g.AddRelation(kind, src, tgt)
		if err != nil {
			return nil, &DecodeError{Field: field, Err: err}
		}
		r.Type = wr.Type
		for _, a := range wr.Annotations {
			r.Annotate(a.Namespace, a.Name, a.Value)
		}
		for _, l := range wr.Layers {
			_ = g.AddRelationToLayer(l, r.ID)
		}
	}
	return doc, nil
}
