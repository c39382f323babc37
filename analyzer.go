package chessgrid

import (
	"fmt"
	"image"

	"github.com/golang/geo/r2"

	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/rimage"
)

// Analyzer runs the whole pipeline: order the corners, rectify, classify.
type Analyzer struct {
	cfg    Config
	logger logging.Logger
}

// Result is everything one Run produces.
type Result struct {
	Corners   Corners
	Rectified *image.RGBA
	*Classification
}

// NewAnalyzer returns an Analyzer for a copy of cfg with defaults filled in.
func NewAnalyzer(cfg *Config, logger logging.Logger) (*Analyzer, error) {
	if logger == nil {
		logger = logging.NewLogger("chessgrid")
	}

	a := &Analyzer{logger: logger}
	if cfg != nil {
		a.cfg = *cfg
	}
	a.cfg.ApplyDefaults()

	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Config returns the effective configuration.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Run analyzes img using the 4 board corners in points (any order).
// Errors are *StageError values wrapping ErrInvalidInput or ErrDegenerateGeometry;
// nothing is returned for a stage once an earlier one failed.
func (a *Analyzer) Run(img image.Image, points []r2.Point) (*Result, error) {
	corners, err := OrderCorners(points)
	if err != nil {
		return nil, stageErr(StageOrder, err)
	}
	a.logger.Debugf("ordered corners: %v", corners)
	if !corners.IsConvex() {
		a.logger.Warnf("corners %v do not form a convex quadrilateral, the board may come out folded", corners)
	}

	rectified, err := Rectify(img, corners, a.cfg.Width, a.cfg.Height)
	if err != nil {
		return nil, stageErr(StageRectify, err)
	}
	a.logger.Debugf("rectified %v to %dx%d", img.Bounds(), a.cfg.Width, a.cfg.Height)

	cls, err := Classify(rectified, a.cfg.ClassifyOptions())
	if err != nil {
		return nil, stageErr(StageClassify, err)
	}
	a.logger.Debugf("threshold %d dark %d light %d", cls.Threshold, cls.DarkCount, cls.LightCount)

	return &Result{
		Corners:        corners,
		Rectified:      rectified,
		Classification: cls,
	}, nil
}

// RunConfigured runs with the corners from the config.
func (a *Analyzer) RunConfigured(img image.Image) (*Result, error) {
	pts, err := a.cfg.Points()
	if err != nil {
		return nil, stageErr(StageOrder, err)
	}
	return a.Run(img, pts)
}

// LoadImage decodes the image at path. Decode failures wrap ErrUnreadableImage.
func LoadImage(path string) (image.Image, error) {
	img, err := rimage.ReadImageFromFile(path)
	if err != nil {
		return nil, stageErr(StageLoad, fmt.Errorf("%w: %s: %v", ErrUnreadableImage, path, err))
	}
	return img, nil
}

// SaveImage writes img to path, encoding by extension.
func SaveImage(path string, img image.Image) error {
	return rimage.WriteImageToFile(path, img)
}
