package chessgrid

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"
	"go.uber.org/multierr"
	"go.viam.com/test"
)

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	test.That(t, cfg.Validate(), test.ShouldBeNil)

	test.That(t, cfg.Width, test.ShouldEqual, 400)
	test.That(t, cfg.Height, test.ShouldEqual, 400)
	test.That(t, cfg.ClassifyOptions(), test.ShouldResemble, DefaultClassifyOptions())
}

func TestConfigValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Width:     1,
		Height:    1,
		GridDim:   -1,
		TileGrid:  -2,
		DarkRatio: 1.5,
		LineWidth: -1,
		Corners:   [][]float64{{1, 2}, {3}},
	}

	err := cfg.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, len(multierr.Errors(err)), test.ShouldEqual, 6)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
}

func TestConfigValidateGridLargerThanHeight(t *testing.T) {
	cfg := &Config{Width: 400, Height: 6}
	cfg.ApplyDefaults()
	test.That(t, cfg.Validate(), test.ShouldNotBeNil)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	err := os.WriteFile(path, []byte(`
width: 800
height: 800
clip-limit: 3.5
label-squares: true
corners:
  - [388, 54]
  - [965, 79]
  - [359, 636]
  - [938, 664]
`), 0o600)
	test.That(t, err, test.ShouldBeNil)

	cfg, err := LoadConfig(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Width, test.ShouldEqual, 800)
	test.That(t, cfg.LineWidth, test.ShouldEqual, DefaultLineWidth)
	test.That(t, cfg.ClipLimit, test.ShouldEqual, 3.5)
	test.That(t, cfg.GridDim, test.ShouldEqual, 8)
	test.That(t, cfg.LabelSquares, test.ShouldBeTrue)
	test.That(t, cfg.Validate(), test.ShouldBeNil)

	pts, err := cfg.Points()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pts[2], test.ShouldResemble, r2.Point{X: 359, Y: 636})

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	test.That(t, os.WriteFile(bad, []byte("width: [oops"), 0o600), test.ShouldBeNil)
	_, err = LoadConfig(bad)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestParsePoints(t *testing.T) {
	pts, err := ParsePoints("10,10 110,10;10,110  110.5,110")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pts, test.ShouldResemble, []r2.Point{{10, 10}, {110, 10}, {10, 110}, {110.5, 110}})

	_, err = ParsePoints("10,10 110")
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	_, err = ParsePoints("a,1")
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
}

func TestParseSize(t *testing.T) {
	w, h, err := ParseSize("800x600")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, w, test.ShouldEqual, 800)
	test.That(t, h, test.ShouldEqual, 600)

	_, _, err = ParseSize("800")
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	_, _, err = ParseSize("ax6")
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	for _, bad := range []string{"0x400", "400x0", "-5x400", "400x-1"} {
		_, _, err = ParseSize(bad)
		test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
	}
}

func TestConfigExplicitZeroSize(t *testing.T) {
	cfg := &Config{Width: 0, Height: 400}
	cfg.ApplyDefaults()
	test.That(t, cfg.Width, test.ShouldEqual, 0)
	test.That(t, errors.Is(cfg.Validate(), ErrInvalidInput), test.ShouldBeTrue)

	_, err := NewAnalyzer(&Config{Width: 0, Height: 400}, nil)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	_, err = NewAnalyzer(&Config{Width: 400, Height: -400}, nil)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	dir := t.TempDir()
	for name, body := range map[string]string{
		"width.yaml":  "width: 0\n",
		"height.yaml": "height: 0\n",
		"both.yaml":   "width: 0\nheight: 0\n",
	} {
		path := filepath.Join(dir, name)
		test.That(t, os.WriteFile(path, []byte(body), 0o600), test.ShouldBeNil)
		_, err := LoadConfig(path)
		test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
	}
}

func TestConfigValidateWidthHoldsGrid(t *testing.T) {
	cfg := &Config{Width: 300, Height: 400}
	cfg.ApplyDefaults()
	test.That(t, errors.Is(cfg.Validate(), ErrInvalidInput), test.ShouldBeTrue)

	// 403 / 8 = 50, so 400 columns are enough
	cfg = &Config{Width: 400, Height: 403}
	cfg.ApplyDefaults()
	test.That(t, cfg.Validate(), test.ShouldBeNil)

	_, err := NewAnalyzer(&Config{Width: 200, Height: 400}, nil)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
}
