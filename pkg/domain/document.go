package domain

// Document is one unit of work: an identified graph.
type Document struct {
	ID    string
	Graph *Graph
}

// NewDocument creates a document with an empty graph.
func NewDocument(id string) *Document {
	return &Document{ID: id, Graph: NewGraph()}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := &Document{ID: d.ID}
	if d.Graph != nil {
		c.Graph = d.Graph.Clone()
	}
	return c
}
