package runtime

import (
	"fmt"

	"github.com/gucorpling/squeezer/pkg/domain"
)

// PassError names the pass and document a fatal error came from.
type PassError struct {
	Pass       domain.PassName
	DocumentID string
	Err        error
}

func (e *PassError) Error() string {
	return fmt.Sprintf("document %q: pass %s: %v", e.DocumentID, e.Pass, e.Err)
}

func (e *PassError) Unwrap() error {
	return e.Err
}
