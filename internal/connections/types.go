// Package connections supplies the scored connection records that the graph
// is built from. Scores are computed elsewhere; this package only fetches them.
package connections

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind is the explicit connection kind tag supplied by the data source.
type Kind string

const (
	// KindBlock is a connection to a fragment (block) of a document.
	KindBlock Kind = "block"
	// KindNote is a connection to a whole document (note).
	KindNote Kind = "note"
)

// ErrUnknownKind is returned by ParseKind for unrecognized kind tags.
var ErrUnknownKind = errors.New("unknown connection kind")

// ParseKind converts a string tag to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "block":
		return KindBlock, nil
	case "note":
		return KindNote, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindBlock || k == KindNote
}

// Connection is one scored relation from the focus document to a target.
type Connection struct {
	TargetID string  `json:"targetId" yaml:"targetId"`
	Score    float64 `json:"score" yaml:"score"`
	Kind     Kind    `json:"kind" yaml:"kind"`
}

// Source retrieves the connections of a focus document.
type Source interface {
	Connections(ctx context.Context, focusKey string) ([]Connection, error)
}

// MapSource is an in-memory Source keyed by focus document.
type MapSource map[string][]Connection

// Connections returns a copy of the records stored for focusKey.
func (m MapSource) Connections(ctx context.Context, focusKey string) ([]Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conns := m[focusKey]
	out := make([]Connection, len(conns))
	copy(out, conns)
	return out, nil
}
