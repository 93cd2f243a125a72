package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/ini.v1"
)

// CommandLineArgs holds the flags the CLI entry point accepts.
type CommandLineArgs struct {
	ConfigPath string
}

// AnalysisSettings controls the name resolver and the SQL pretty-printer,
// per spec.md §6.2/§6.3.
type AnalysisSettings struct {
	Raw *ini.File

	// DefaultSchema is prepended to single-atom identifiers during name
	// normalization.
	DefaultSchema string `default:"main" yaml:"default_schema" json:"default_schema,omitempty"`

	// PrettyPrintIndent/PrettyPrintMaxWidth feed the SQL pretty-printer.
	PrettyPrintIndent   int `default:"4" yaml:"pretty_print_indent" json:"pretty_print_indent,omitempty"`
	PrettyPrintMaxWidth int `default:"80" yaml:"pretty_print_max_width" json:"pretty_print_max_width,omitempty"`

	// UpdateSimilarityThreshold overrides the differ's update threshold.
	// spec.md §9 warns against changing it casually; exposed here only so
	// tests can probe boundary behavior.
	UpdateSimilarityThreshold float64 `default:"0.75" yaml:"update_similarity_threshold" json:"update_similarity_threshold,omitempty"`
}

// NewAnalysisSettings returns the documented defaults.
func NewAnalysisSettings() *AnalysisSettings {
	return &AnalysisSettings{
		Raw:                       ini.Empty(),
		DefaultSchema:             "main",
		PrettyPrintIndent:         4,
		PrettyPrintMaxWidth:       80,
		UpdateSimilarityThreshold: 0.75,
	}
}

// Load reads an ini file at args.ConfigPath and overlays its [analysis]
// section onto the defaults. Missing keys keep their default value instead
// of failing, unlike the teacher's fail-fast mysqld config loader: unknown
// or absent analysis keys are expected (spec.md §6.2: "unknown keys are
// ignored").
func (s *AnalysisSettings) Load(args *CommandLineArgs) (*AnalysisSettings, error) {
	if args.ConfigPath == "" {
		return s, nil
	}
	if _, err := os.Stat(args.ConfigPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("analysis config file does not exist: %s", args.ConfigPath)
	}
	raw, err := ini.Load(args.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse analysis config %s: %w", args.ConfigPath, err)
	}
	s.Raw = raw
	section := raw.Section("analysis")
	s.DefaultSchema = section.Key("default_schema").MustString(s.DefaultSchema)
	s.PrettyPrintIndent = section.Key("pretty_print_indent").MustInt(s.PrettyPrintIndent)
	s.PrettyPrintMaxWidth = section.Key("pretty_print_max_width").MustInt(s.PrettyPrintMaxWidth)
	s.UpdateSimilarityThreshold = section.Key("update_similarity_threshold").MustFloat64(s.UpdateSimilarityThreshold)
	return s, nil
}

// FrontendChannelConfig tunes the update buffer described in spec.md
// §5/§6.5. Field shape is adapted from the teacher's decoupled
// MessageBusConfig (sync/async bus with buffer size, worker count, handler
// timeout) repurposed onto the front-end update buffer.
type FrontendChannelConfig struct {
	// BufferSize is advisory only: spec.md §5 requires the buffer to be
	// unbounded and provide no back-pressure, so this is a pre-allocation
	// hint, not a cap.
	BufferSize int `default:"1000" yaml:"buffer_size" json:"buffer_size"`

	// FlushInterval is how often a caller-driven ticker should invoke
	// Flush on the buffer; the buffer itself has no internal timer.
	FlushInterval string `default:"250ms" yaml:"flush_interval" json:"flush_interval"`

	flushIntervalDuration time.Duration
}

// NewFrontendChannelConfig returns the documented defaults.
func NewFrontendChannelConfig() *FrontendChannelConfig {
	cfg := &FrontendChannelConfig{
		BufferSize:    1000,
		FlushInterval: "250ms",
	}
	cfg.flushIntervalDuration, _ = time.ParseDuration(cfg.FlushInterval)
	return cfg
}

// FlushIntervalDuration parses FlushInterval, caching the result.
func (c *FrontendChannelConfig) FlushIntervalDuration() (time.Duration, error) {
	if c.flushIntervalDuration != 0 {
		return c.flushIntervalDuration, nil
	}
	d, err := time.ParseDuration(c.FlushInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid flush_interval %q: %w", c.FlushInterval, err)
	}
	c.flushIntervalDuration = d
	return d, nil
}

func setHomePath(args *CommandLineArgs) string {
	if args.ConfigPath != "" {
		return args.ConfigPath
	}
	abs, _ := filepath.Abs(".")
	return abs
}
