// Package config loads the TOML configuration file of the command line tool
// and turns it, together with command line overrides, into a Config.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jonboulle/clockwork"

	"github.com/drand/cbcsuite/common/log"
	"github.com/drand/cbcsuite/internal/fs"
	"github.com/drand/cbcsuite/suite"
)

// File is the content of a configuration file.
type File struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level"`
	JSONLogs bool   `toml:"json_logs"`
	// Preference lists suites by name or 0xNNNN code, most preferred first.
	Preference []string `toml:"preference"`
	// MetricsAddr is the address, or bare port, on which metrics are served.
	MetricsAddr string `toml:"metrics_addr"`
	// EntropySource is a file read for keys and IVs instead of crypto/rand.
	EntropySource string `toml:"entropy_source"`
}

// Load decodes the configuration file at path. Unknown keys are an error.
func Load(path string) (*File, error) {
	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("config: unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return &f, nil
}

// Save writes f to path with owner-only permissions.
func Save(path string, f *File) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return err
	}
	return fs.WriteSecureFile(path, buf.Bytes())
}

// Options converts the file into options, resolving suite names against r.
func (f *File) Options(r *suite.Registry) ([]ConfigOption, error) {
	var opts []ConfigOption
	if f.LogLevel != "" {
		lvl, err := ParseLevel(f.LogLevel)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithLogLevel(lvl))
	}
	if f.JSONLogs {
		opts = append(opts, WithJSONLogs(true))
	}
	if len(f.Preference) > 0 {
		pref, err := ParsePreference(r, f.Preference)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithPreference(pref))
	}
	if f.MetricsAddr != "" {
		opts = append(opts, WithMetricsAddr(f.MetricsAddr))
	}
	if f.EntropySource != "" {
		opts = append(opts, WithEntropySource(f.EntropySource))
	}
	return opts, nil
}

// ParsePreference resolves suite names or codes into codes, keeping the order.
func ParsePreference(r *suite.Registry, names []string) ([]uint16, error) {
	out := make([]uint16, 0, len(names))
	for _, n := range names {
		s, err := r.Parse(n)
		if err != nil {
			return nil, fmt.Errorf("config: preference: %w", err)
		}
		out = append(out, s.Code)
	}
	return out, nil
}

// ParseLevel maps a level name to the log package levels.
func ParseLevel(s string) (int, error) {
	switch strings.ToLower(s) {
	case "debug":
		return log.DebugLevel, nil
	case "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	}
	return 0, fmt.Errorf("config: unknown log level %q", s)
}

// ConfigOption is a function that applies a specific setting to a Config.
//
//nolint:revive
type ConfigOption func(*Config)

// Config holds the settings shared by every command.
type Config struct {
	logger        log.Logger
	logLevel      int
	jsonLogs      bool
	preference    []uint16
	metricsAddr   string
	entropySource string
	clock         clockwork.Clock
	registry      *suite.Registry
}

// NewConfig returns the default config updated by opts, applied in order.
func NewConfig(opts ...ConfigOption) *Config {
	c := &Config{
		logLevel: log.InfoLevel,
		clock:    clockwork.NewRealClock(),
		registry: suite.Default,
	}
	for i := range opts {
		opts[i](c)
	}
	return c
}

// Logger returns the configured logger, or one writing to stderr built from
// the level and format settings.
func (c *Config) Logger() log.Logger {
	if c.logger == nil {
		c.logger = log.New(os.Stderr, c.logLevel, c.jsonLogs)
	}
	return c.logger
}

func (c *Config) LogLevel() int { return c.logLevel }
func (c *Config) JSONLogs() bool { return c.jsonLogs }
func (c *Config) Preference() []uint16 { return c.preference }
func (c *Config) MetricsAddr() string { return c.metricsAddr }
func (c *Config) EntropySource() string { return c.entropySource }
func (c *Config) Clock() clockwork.Clock { return c.clock }
func (c *Config) Registry() *suite.Registry { return c.registry }

// WithLogger sets the logger, ignoring the level and format settings.
func WithLogger(l log.Logger) ConfigOption {
	return func(c *Config) {
		c.logger = l
	}
}

func WithLogLevel(level int) ConfigOption {
	return func(c *Config) {
		c.logLevel = level
	}
}

func WithJSONLogs(json bool) ConfigOption {
	return func(c *Config) {
		c.jsonLogs = json
	}
}

// WithPreference sets the suite codes to negotiate, most preferred first.
func WithPreference(codes []uint16) ConfigOption {
	return func(c *Config) {
		c.preference = codes
	}
}

func WithMetricsAddr(addr string) ConfigOption {
	return func(c *Config) {
		c.metricsAddr = addr
	}
}

func WithEntropySource(path string) ConfigOption {
	return func(c *Config) {
		c.entropySource = path
	}
}

// WithClock sets the clock used to time benchmarks.
func WithClock(clock clockwork.Clock) ConfigOption {
	return func(c *Config) {
		c.clock = clock
	}
}

// WithRegistry sets the registry suites are resolved against.
func WithRegistry(r *suite.Registry) ConfigOption {
	return func(c *Config) {
		c.registry = r
	}
}
