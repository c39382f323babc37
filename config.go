package chessgrid

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r2"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Defaults used when a Config field is left at its zero value. The output size counts as unset
// only when both width and height are zero.
const (
	DefaultSize      = 400
	DefaultGridDim   = 8
	DefaultClipLimit = 2.0
	DefaultTileGrid  = 8
	DefaultDarkRatio = 0.5
	DefaultLineWidth = 2
)

// Config holds the analysis parameters. It is read from YAML files by the CLI and
// from JSON attributes by the viam resources.
type Config struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	GridDim   int     `json:"grid-dim" yaml:"grid-dim"`
	ClipLimit float64 `json:"clip-limit" yaml:"clip-limit"` // negative disables clipping
	TileGrid  int     `json:"tile-grid" yaml:"tile-grid"`
	DarkRatio float64 `json:"dark-ratio" yaml:"dark-ratio"`

	LineWidth    int  `json:"line-width" yaml:"line-width"`
	LabelSquares bool `json:"label-squares" yaml:"label-squares"`

	// Corners are the 4 board corners as [x, y] pairs, in any order.
	Corners [][]float64 `json:"corners,omitempty" yaml:"corners,omitempty"`
}

// DefaultConfig returns a Config with every field at its default.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// LoadConfig reads a YAML config file over the defaults and validates it.
// Keys present in the file win, so an explicit zero is checked rather than defaulted.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("can't parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("bad config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyDefaults replaces zero values with the package defaults.
// A size with only one zero dimension is left alone for Validate to reject.
func (cfg *Config) ApplyDefaults() {
	if cfg.Width == 0 && cfg.Height == 0 {
		cfg.Width = DefaultSize
		cfg.Height = DefaultSize
	}
	if cfg.GridDim == 0 {
		cfg.GridDim = DefaultGridDim
	}
	if cfg.ClipLimit == 0 {
		cfg.ClipLimit = DefaultClipLimit
	}
	if cfg.TileGrid == 0 {
		cfg.TileGrid = DefaultTileGrid
	}
	if cfg.DarkRatio == 0 {
		cfg.DarkRatio = DefaultDarkRatio
	}
	if cfg.LineWidth == 0 {
		cfg.LineWidth = DefaultLineWidth
	}
}

// Validate reports every problem with the config at once.
func (cfg *Config) Validate() error {
	var err error

	if cfg.Width < 2 || cfg.Height < 2 {
		err = multierr.Append(err, fmt.Errorf("%w: output size must be at least 2x2, got %dx%d", ErrInvalidInput, cfg.Width, cfg.Height))
	}
	if cfg.GridDim <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: grid-dim must be positive, got %d", ErrInvalidInput, cfg.GridDim))
	} else if cfg.Height > 0 && cfg.Height < cfg.GridDim {
		err = multierr.Append(err, fmt.Errorf("%w: height %d is smaller than grid-dim %d", ErrInvalidInput, cfg.Height, cfg.GridDim))
	} else if cell := cfg.Height / cfg.GridDim; cfg.Height >= 2 && cfg.Width >= 2 && cfg.Width < cell*cfg.GridDim {
		err = multierr.Append(err, fmt.Errorf("%w: width %d can't hold %d cells of %d pixels", ErrInvalidInput, cfg.Width, cfg.GridDim, cell))
	}
	if cfg.TileGrid <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: tile-grid must be positive, got %d", ErrInvalidInput, cfg.TileGrid))
	}
	if cfg.DarkRatio <= 0 || cfg.DarkRatio >= 1 {
		err = multierr.Append(err, fmt.Errorf("%w: dark-ratio must be in (0, 1), got %v", ErrInvalidInput, cfg.DarkRatio))
	}
	if cfg.LineWidth < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: line-width can't be negative, got %d", ErrInvalidInput, cfg.LineWidth))
	}
	if len(cfg.Corners) > 0 {
		if _, cerr := cfg.Points(); cerr != nil {
			err = multierr.Append(err, cerr)
		}
	}

	return err
}

// ClassifyOptions returns the classifier settings of the config.
func (cfg *Config) ClassifyOptions() ClassifyOptions {
	return ClassifyOptions{
		GridDim:   cfg.GridDim,
		ClipLimit: cfg.ClipLimit,
		TileGrid:  cfg.TileGrid,
		DarkRatio: cfg.DarkRatio,
		LineWidth: cfg.LineWidth,
		Labels:    cfg.LabelSquares,
	}
}

// Points returns the configured corners.
func (cfg *Config) Points() ([]r2.Point, error) {
	return PointsFromPairs(cfg.Corners)
}

// PointsFromPairs converts [x, y] pairs into points. Exactly 4 pairs are required.
func PointsFromPairs(pairs [][]float64) ([]r2.Point, error) {
	if len(pairs) != 4 {
		return nil, fmt.Errorf("%w: need 4 corners, got %d", ErrInvalidInput, len(pairs))
	}

	pts := make([]r2.Point, 0, 4)
	for i, p := range pairs {
		if len(p) != 2 {
			return nil, fmt.Errorf("%w: corner %d needs 2 coordinates, got %d", ErrInvalidInput, i, len(p))
		}
		pts = append(pts, r2.Point{X: p[0], Y: p[1]})
	}
	return pts, nil
}

// ParsePoints parses "x,y x,y ..." (pairs separated by spaces or semicolons).
func ParsePoints(s string) ([]r2.Point, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ';' || r == '\t'
	})

	pts := make([]r2.Point, 0, len(fields))
	for _, f := range fields {
		xs, ys, found := strings.Cut(f, ",")
		if !found {
			return nil, fmt.Errorf("%w: bad point %q, want x,y", ErrInvalidInput, f)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad x in %q: %v", ErrInvalidInput, f, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad y in %q: %v", ErrInvalidInput, f, err)
		}
		pts = append(pts, r2.Point{X: x, Y: y})
	}
	return pts, nil
}

// ParseSize parses "WxH".
func ParseSize(s string) (int, int, error) {
	ws, hs, found := strings.Cut(strings.ToLower(s), "x")
	if !found {
		return 0, 0, fmt.Errorf("%w: bad size %q, want WxH", ErrInvalidInput, s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(ws))
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("%w: bad width in %q", ErrInvalidInput, s)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("%w: bad height in %q", ErrInvalidInput, s)
	}
	return w, h, nil
}
