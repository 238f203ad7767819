// Package ingest decodes the loosely-typed scratch payloads left by the
// upstream reader into typed descriptor records.
package ingest

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gucorpling/squeezer/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// ExternalID normalizes an external id annotation value to its string form.
// Readers emit ids as strings or numbers; both resolve to the same key.
func ExternalID(v any) (string, error) {
	var id string
	if err := mapstructure.WeakDecode(v, &id); err != nil {
		return "", fmt.Errorf("external id %v: %w", v, domain.ErrMalformedDescriptor)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("empty external id: %w", domain.ErrMalformedDescriptor)
	}
	return id, nil
}

// SecondaryEdges decodes a "secondary_edges" payload.
func SecondaryEdges(v any) ([]domain.SecondaryEdgeDescriptor, error) {
	var out []domain.SecondaryEdgeDescriptor
	if err := decodeList(v, &out); err != nil {
		return nil, fmt.Errorf("decode secondary edges: %w", err)
	}
	for i, d := range out {
		if d.SourceID == "" || d.TargetID == "" {
			return nil, fmt.Errorf("secondary edge %d: missing source or target: %w", i, domain.ErrMalformedDescriptor)
		}
	}
	return out, nil
}

// Signals decodes a "signals" payload.
func Signals(v any) ([]domain.SignalDescriptor, error) {
	var out []domain.SignalDescriptor
	if err := decodeList(v, &out); err != nil {
		return nil, fmt.Errorf("decode signals: %w", err)
	}
	return out, nil
}

func decodeList(v any, result any) error {
	// A lone record is accepted as a list of one.
	if v != nil {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Map || rv.Kind() == reflect.Struct {
			v = []any{v}
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       splitIDList,
		WeaklyTypedInput: true,
		Result:           result,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrMalformedDescriptor)
	}
	return nil
}

// splitIDList turns "3 4 5" or "3,4,5" into an id list.
func splitIDList(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
		return data, nil
	}
	return strings.FieldsFunc(data.(string), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	}), nil
}
