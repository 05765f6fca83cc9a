// Package config provides configuration types and defaults for relgraph.
package config

import "time"

// Connection kind filter values.
const (
	KindBlock = "block"
	KindNote  = "note"
	KindBoth  = "both"
)

// Center pull modes.
const (
	CenterPrimary = "primary" // Pull only the Primary node to the exact center
	CenterAll     = "all"     // Pull every node toward the center
)

// Config holds all configuration for relgraph.
type Config struct {
	Graph       GraphConfig       `yaml:"graph" mapstructure:"graph"`
	Forces      ForcesConfig      `yaml:"forces" mapstructure:"forces"`
	Display     DisplayConfig     `yaml:"display" mapstructure:"display"`
	Source      SourceConfig      `yaml:"source" mapstructure:"source"`
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
	LogRotation LogRotationConfig `yaml:"log_rotation" mapstructure:"log_rotation"`
}

// GraphConfig holds the filters that decide which connections become nodes.
type GraphConfig struct {
	RelevanceThreshold   float64       `yaml:"relevance_threshold" mapstructure:"relevance_threshold" validate:"gte=0,lte=1"`
	ConnectionKindFilter string        `yaml:"connection_kind_filter" mapstructure:"connection_kind_filter" validate:"oneof=block note both"`
	Debounce             time.Duration `yaml:"debounce" mapstructure:"debounce" validate:"gte=0"` // Delay before a threshold change triggers a rebuild
}

// ForcesConfig holds the tunable layout forces.
type ForcesConfig struct {
	RepelForce   float64       `yaml:"repel_force" mapstructure:"repel_force" validate:"gte=0"`
	LinkForce    float64       `yaml:"link_force" mapstructure:"link_force" validate:"gte=0,lte=1"`
	LinkDistance float64       `yaml:"link_distance" mapstructure:"link_distance" validate:"gt=0"` // Base distance for spring edges
	CenterForce  float64       `yaml:"center_force" mapstructure:"center_force" validate:"gte=0,lte=1"`
	CenterMode   string        `yaml:"center_mode" mapstructure:"center_mode" validate:"oneof=primary all"`
	IdleAfter    time.Duration `yaml:"idle_after" mapstructure:"idle_after" validate:"gt=0"` // Quiet period before the simulation cools to a stop
}

// DisplayConfig holds purely visual settings.
type DisplayConfig struct {
	NodeSize           float64 `yaml:"node_size" mapstructure:"node_size" validate:"gt=0"`
	MinLinkThickness   float64 `yaml:"min_link_thickness" mapstructure:"min_link_thickness" validate:"gt=0"`
	MaxLinkThickness   float64 `yaml:"max_link_thickness" mapstructure:"max_link_thickness" validate:"gtefield=MinLinkThickness"`
	TextFadeThreshold  float64 `yaml:"text_fade_threshold" mapstructure:"text_fade_threshold" validate:"gt=0.1"` // Zoom level at which labels are fully opaque
	MaxLabelCharacters int     `yaml:"max_label_characters" mapstructure:"max_label_characters" validate:"gt=0"`
}

// SourceConfig holds settings for the connection data source.
type SourceConfig struct {
	File    string        `yaml:"file" mapstructure:"file"`       // JSON file mapping focus keys to connection records
	Command []string      `yaml:"command" mapstructure:"command"` // External scoring command; the focus key is appended
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	Watch   bool          `yaml:"watch" mapstructure:"watch"` // Rebuild when the source file changes
	Breaker BreakerConfig `yaml:"breaker" mapstructure:"breaker"`
}

// BreakerConfig holds circuit breaker settings for the connection source.
type BreakerConfig struct {
	Enabled          bool          `yaml:"enabled" mapstructure:"enabled"`
	MaxRequests      uint32        `yaml:"max_requests" mapstructure:"max_requests"`
	Interval         time.Duration `yaml:"interval" mapstructure:"interval"`
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout"`
	FailureThreshold float64       `yaml:"failure_threshold" mapstructure:"failure_threshold" validate:"gte=0,lte=1"`
	MinRequests      uint32        `yaml:"min_requests" mapstructure:"min_requests"`
}

// PathsConfig holds file paths for logs.
type PathsConfig struct {
	Log string `yaml:"log" mapstructure:"log"`
}

// LogRotationConfig holds settings for log file rotation.
// Used for the TUI debug log (lumberjack-based automatic rotation).
type LogRotationConfig struct {
	MaxSizeMB  int  `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool `yaml:"compress" mapstructure:"compress"`
}

// DefaultGraph returns the default graph filters.
func DefaultGraph() GraphConfig {
	return GraphConfig{
		RelevanceThreshold:   0.5,
		ConnectionKindFilter: KindBlock,
		Debounce:             400 * time.Millisecond,
	}
}

// DefaultForces returns the default layout forces.
func DefaultForces() ForcesConfig {
	return ForcesConfig{
		RepelForce:   400,
		LinkForce:    0.4,
		LinkDistance: 70,
		CenterForce:  0.1,
		CenterMode:   CenterPrimary,
		IdleAfter:    2 * time.Second,
	}
}

// DefaultDisplay returns the default display settings.
func DefaultDisplay() DisplayConfig {
	return DisplayConfig{
		NodeSize:           4,
		MinLinkThickness:   0.3,
		MaxLinkThickness:   0.6,
		TextFadeThreshold:  1.1,
		MaxLabelCharacters: 18,
	}
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Graph:   DefaultGraph(),
		Forces:  DefaultForces(),
		Display: DefaultDisplay(),
		Source: SourceConfig{
			Timeout: 10 * time.Second,
			Breaker: BreakerConfig{
				Enabled:          true,
				MaxRequests:      1,
				Interval:         30 * time.Second,
				Timeout:          15 * time.Second,
				FailureThreshold: 0.6,
				MinRequests:      3,
			},
		},
		Paths: PathsConfig{
			Log: ".relgraph/relgraph.log",
		},
		LogRotation: LogRotationConfig{
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// ResetGraphSettings writes every user-tunable graph field back to its default.
// Source, path and logging settings are left untouched.
func (c *Config) ResetGraphSettings() {
	c.Graph = DefaultGraph()
	c.Forces = DefaultForces()
	c.Display = DefaultDisplay()
}
