package squeezer

import (
	"context"
	"fmt"
	"io"

	"github.com/gucorpling/squeezer/pkg/codec"
)

// TransformStream decodes one document from r, transforms it and writes the
// result to w in the output format. Nothing is written on failure.
func (e *Engine) TransformStream(ctx context.Context, r io.Reader, in codec.Format, w io.Writer, out codec.Format) (*Report, error) {
	if r == nil {
		return nil, fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if w == nil {
		return nil, fmt.Errorf("output writer must be set (use os.Stdout)")
	}

	doc, err := codec.Decode(r, in)
	if err != nil {
		return nil, err
	}
	report, err := e.Transform(ctx, doc)
	if err != nil {
		return report, err
	}
	if err := codec.Encode(w, doc, out); err != nil {
		return report, fmt.Errorf("encode %q: %w", doc.ID, err)
	}
	return report, nil
}
