// Package layout runs the force-directed simulation that positions graph
// nodes. The simulation is stepped by the host once per frame.
package layout

import (
	"time"

	"github.com/npratt/relgraph/internal/config"
)

// CenterMode selects how nodes are pulled toward the canvas center.
type CenterMode string

const (
	// CenterPrimary moves only the Primary node toward the exact center.
	CenterPrimary CenterMode = config.CenterPrimary
	// CenterAll pulls every node toward the center.
	CenterAll CenterMode = config.CenterAll
)

// Params holds the tunable forces.
type Params struct {
	RepelForce   float64
	LinkForce    float64
	LinkDistance float64
	CenterForce  float64
	CenterMode   CenterMode
	NodeSize     float64
	IdleAfter    time.Duration

	// Label boxes used by decluttering, in world units.
	MaxLabelCharacters int
	LabelCharWidth     float64
	LabelHeight        float64
}

// DefaultParams returns Params built from the default configuration.
func DefaultParams() Params {
	return ParamsFromConfig(config.DefaultForces(), config.DefaultDisplay())
}

// ParamsFromConfig converts the force and display settings to Params.
func ParamsFromConfig(f config.ForcesConfig, d config.DisplayConfig) Params {
	return Params{
		RepelForce:         f.RepelForce,
		LinkForce:          f.LinkForce,
		LinkDistance:       f.LinkDistance,
		CenterForce:        f.CenterForce,
		CenterMode:         CenterMode(f.CenterMode),
		NodeSize:           d.NodeSize,
		IdleAfter:          f.IdleAfter,
		MaxLabelCharacters: d.MaxLabelCharacters,
		LabelCharWidth:     6,
		LabelHeight:        12,
	}
}

// collideRadius is the minimum half-separation between two nodes.
func (p Params) collideRadius() float64 {
	return p.NodeSize + 3
}
