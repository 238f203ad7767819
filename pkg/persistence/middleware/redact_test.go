package middleware_test

import (
	"context"
	"testing"

	"github.com/gucorpling/squeezer/pkg/adapters/memory"
	"github.com/gucorpling/squeezer/pkg/domain"
	"github.com/gucorpling/squeezer/pkg/persistence/middleware"
)

func TestRedactionMiddleware_Masking(t *testing.T) {
	underlyingStore := memory.NewStore()
	mw, err := middleware.NewRedactionMiddleware([]string{`^rst::text$`, `^token::text$`})
	if err != nil {
		t.Fatal(err)
	}
	store := mw(underlyingStore)

	ctx := context.Background()
	doc := sampleDocument(t, "pii")
	if err := store.Save(ctx, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The caller's graph is untouched.
	if nodeNamed(doc.Graph, "t1").Text != "confidential" {
		t.Error("Middleware modified original document in memory")
	}

	stored, err := underlyingStore.Load(ctx, "pii")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if got := nodeNamed(stored.Graph, "t1").Text; got != middleware.Mask {
		t.Errorf("Token text should be masked, got %q", got)
	}
	edu := nodeNamed(stored.Graph, "edu1")
	if got, _ := edu.StringAnnotation(domain.NamespaceDefault, domain.AnnoText); got != middleware.Mask {
		t.Errorf("rst::text should be masked, got %q", got)
	}
	if got, _ := edu.StringAnnotation(domain.NamespaceDefault, domain.AnnoKind); got != "edu" {
		t.Errorf("rst::kind shouldn't be masked, got %q", got)
	}
	rel := stored.Graph.Relations()[0]
	if got, _ := rel.StringAnnotation(domain.NamespaceDefault, domain.AnnoRelName); got != "span" {
		t.Errorf("relname shouldn't be masked, got %q", got)
	}
}

func TestRedactionMiddleware_InvalidPattern(t *testing.T) {
	if _, err := middleware.NewRedactionMiddleware([]string{"("}); err == nil {
		t.Error("Expected error for invalid pattern")
	}
}

func TestChain_EncryptsRedactedDocument(t *testing.T) {
	underlyingStore := memory.NewStore()
	redact, err := middleware.NewRedactionMiddleware([]string{`^token::text$`})
	if err != nil {
		t.Fatal(err)
	}
	encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if err != nil {
		t.Fatal(err)
	}
	store := middleware.Chain(underlyingStore, redact, encrypt)

	ctx := context.Background()
	if err := store.Save(ctx, sampleDocument(t, "both")); err != nil {
		t.Fatal(err)
	}
	loaded, err := store.Load(ctx, "both")
	if err != nil {
		t.Fatal(err)
	}
	if got := nodeNamed(loaded.Graph, "t1").Text; got != middleware.Mask {
		t.Errorf("Expected masked token after decrypt, got %q", got)
	}
}
