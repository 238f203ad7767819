package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/gucorpling/squeezer/pkg/domain"
	"github.com/gucorpling/squeezer/pkg/ports"
)

// Mask replaces every redacted value.
const Mask = "***"

type redactionMiddleware struct {
	next     ports.DocumentStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that masks annotation values
// whose "namespace::name" key matches one of the patterns. The pattern
// "token::text" also masks the surface text of tokens.
func NewRedactionMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &redactionMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactionMiddleware) Save(ctx context.Context, doc *domain.Document) error {
	// The caller keeps using its in-memory graph.
	cloned := doc.Clone()
	if cloned.Graph != nil {
		m.mask(cloned.Graph)
	}
	return m.next.Save(ctx, cloned)
}

func (m *redactionMiddleware) Load(ctx context.Context, id string) (*domain.Document, error) {
	return m.next.Load(ctx, id)
}

func (m *redactionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *redactionMiddleware) mask(g *domain.Graph) {
	maskText := m.matches("token::text")
	for _, n := range g.Nodes() {
		if maskText && n.Kind == domain.KindToken && n.Text != "" {
			n.Text = Mask
		}
		for _, k := range n.AnnotationKeys() {
			if m.matches(k.String()) {
				n.Annotate(k.Namespace, k.Name, Mask)
			}
		}
	}
	for _, r := range g.Relations() {
		for _, k := range r.AnnotationKeys() {
			if m.matches(k.String()) {
				r.Annotate(k.Namespace, k.Name, Mask)
			}
		}
	}
}

func (m *redactionMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
