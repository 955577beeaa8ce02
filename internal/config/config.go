package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/simcore/internal/core/geom"
	"github.com/zeusync/simcore/internal/core/observability/log"
)

var (
	ErrInvalidConfig     = errors.New("invalid config")
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

type Config struct {
	Log        LogConfig        `yaml:"log" toml:"log"`
	Simulation SimulationConfig `yaml:"simulation" toml:"simulation"`
	Inspector  InspectorConfig  `yaml:"inspector" toml:"inspector"`
	Scene      SceneConfig      `yaml:"scene" toml:"scene"`
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// SimulationConfig times are in seconds.
type SimulationConfig struct {
	FixedStep     float64   `yaml:"fixed_step" toml:"fixed_step"`
	FrameRate     int       `yaml:"frame_rate" toml:"frame_rate"`
	MaxFrameDelta float64   `yaml:"max_frame_delta" toml:"max_frame_delta"`
	Gravity       geom.Vec2 `yaml:"gravity" toml:"gravity"`
}

type InspectorConfig struct {
	Enabled    bool   `yaml:"enabled" toml:"enabled"`
	ListenAddr string `yaml:"listen_addr" toml:"listen_addr"`
	// SendBuffer is the number of frames queued per client before it is dropped.
	SendBuffer int `yaml:"send_buffer" toml:"send_buffer"`
	// SnapshotEvery publishes one world frame every n ticks.
	SnapshotEvery int `yaml:"snapshot_every" toml:"snapshot_every"`
}

type SceneConfig struct {
	Width  float64 `yaml:"width" toml:"width"`
	Crates int     `yaml:"crates" toml:"crates"`
	// CrateLifetime in seconds; zero keeps crates forever.
	CrateLifetime float64   `yaml:"crate_lifetime" toml:"crate_lifetime"`
	Friction      geom.Vec2 `yaml:"friction" toml:"friction"`
}

func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Simulation: SimulationConfig{
			FixedStep:     1.0 / 150,
			FrameRate:     60,
			MaxFrameDelta: 0.25,
			Gravity:       geom.V(0, -9.8),
		},
		Inspector: InspectorConfig{
			Enabled:       false,
			ListenAddr:    "127.0.0.1:7070",
			SendBuffer:    64,
			SnapshotEvery: 6,
		},
		Scene: SceneConfig{
			Width:         20,
			Crates:        5,
			CrateLifetime: 0,
			Friction:      geom.V(1, 1),
		},
	}
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file over the defaults and validates it.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		cfg, err = LoadYAML(f)
	case ".toml":
		cfg, err = LoadTOML(f)
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadYAML decodes r over the defaults. Unknown keys are rejected.
func LoadYAML(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadTOML decodes r over the defaults. Unknown keys are rejected.
func LoadTOML(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse toml: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		add("log.level: %v", err)
	}

	s := c.Simulation
	if !(s.FixedStep > 0) {
		add("simulation.fixed_step must be positive, got %v", s.FixedStep)
	}
	if s.FrameRate <= 0 {
		add("simulation.frame_rate must be positive, got %d", s.FrameRate)
	}
	if !(s.MaxFrameDelta >= s.FixedStep) {
		add("simulation.max_frame_delta %v is below fixed_step %v", s.MaxFrameDelta, s.FixedStep)
	}

	if in := c.Inspector; in.Enabled {
		if in.ListenAddr == "" {
			add("inspector.listen_addr is required when the inspector is enabled")
		}
		if in.SendBuffer <= 0 {
			add("inspector.send_buffer must be positive, got %d", in.SendBuffer)
		}
		if in.SnapshotEvery <= 0 {
			add("inspector.snapshot_every must be positive, got %d", in.SnapshotEvery)
		}
	}

	sc := c.Scene
	// the walls take one unit on each side
	if !(sc.Width > 2) {
		add("scene.width must exceed 2, got %v", sc.Width)
	}
	if sc.Crates < 0 {
		add("scene.crates must not be negative, got %d", sc.Crates)
	}
	if sc.CrateLifetime < 0 {
		add("scene.crate_lifetime must not be negative, got %v", sc.CrateLifetime)
	}
	if f := sc.Friction; !(f.X > 0 && f.X <= 1 && f.Y > 0 && f.Y <= 1) {
		add("scene.friction axes must be in (0, 1], got (%v, %v)", f.X, f.Y)
	}
	return errors.Join(errs...)
}
