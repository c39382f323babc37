package chessgrid

import (
	"context"
	"fmt"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/data"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/spatialmath"
)

var GridCameraModel = family.WithModel("board-grid-camera")

func init() {
	resource.RegisterComponent(camera.API, GridCameraModel,
		resource.Registration[camera.Camera, *GridCameraConfig]{
			Constructor: newGridCamera,
		},
	)
}

// GridCameraConfig configures a camera that streams the annotated, rectified board of its input.
type GridCameraConfig struct {
	Input string `json:"input"`
	Grid  Config `json:"grid"`
}

func (cfg *GridCameraConfig) Validate(path string) ([]string, []string, error) {
	if cfg.Input == "" {
		return nil, nil, fmt.Errorf("need an input")
	}
	if len(cfg.Grid.Corners) == 0 {
		return nil, nil, fmt.Errorf("need grid corners")
	}

	grid := cfg.Grid
	grid.ApplyDefaults()
	if err := grid.Validate(); err != nil {
		return nil, nil, err
	}
	return []string{cfg.Input}, nil, nil
}

func newGridCamera(ctx context.Context, deps resource.Dependencies, rawConf resource.Config, logger logging.Logger) (camera.Camera, error) {
	conf, err := resource.NativeConfig[*GridCameraConfig](rawConf)
	if err != nil {
		return nil, err
	}

	return NewGridCamera(ctx, deps, rawConf.ResourceName(), conf, logger)
}

func NewGridCamera(ctx context.Context, deps resource.Dependencies, name resource.Name, conf *GridCameraConfig, logger logging.Logger) (camera.Camera, error) {
	input, err := camera.FromProvider(deps, conf.Input)
	if err != nil {
		return nil, err
	}

	return newGridCameraFromInput(name, conf, input, logger)
}

func newGridCameraFromInput(name resource.Name, conf *GridCameraConfig, input camera.Camera, logger logging.Logger) (*GridCamera, error) {
	analyzer, err := NewAnalyzer(&conf.Grid, logger)
	if err != nil {
		return nil, err
	}

	return &GridCamera{
		name:     name,
		conf:     conf,
		logger:   logger,
		input:    input,
		analyzer: analyzer,
	}, nil
}

type GridCamera struct {
	resource.AlwaysRebuild
	resource.TriviallyCloseable

	name   resource.Name
	conf   *GridCameraConfig
	logger logging.Logger

	input    camera.Camera
	analyzer *Analyzer
}

func (gc *GridCamera) Image(ctx context.Context, mimeType string, extra map[string]interface{}) ([]byte, camera.ImageMetadata, error) {
	return camera.GetImageFromGetImages(ctx, nil, gc, extra, nil)
}

func (gc *GridCamera) Images(ctx context.Context, filterSourceNames []string, extra map[string]interface{}) ([]camera.NamedImage, resource.ResponseMetadata, error) {
	ni, rm, err := gc.input.Images(ctx, nil, extra)
	if err != nil {
		return nil, rm, err
	}

	if len(ni) == 0 {
		return nil, rm, fmt.Errorf("no images returned from input camera")
	}

	srcImg, err := ni[0].Image(ctx)
	if err != nil {
		return nil, rm, err
	}

	res, err := gc.analyzer.RunConfigured(srcImg)
	if err != nil {
		return nil, rm, err
	}

	result, err := camera.NamedImageFromImage(res.Annotated, ni[0].SourceName, "", data.Annotations{})
	if err != nil {
		return nil, rm, err
	}
	return []camera.NamedImage{result}, rm, nil
}

func (gc *GridCamera) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	return nil, fmt.Errorf("DoCommand not supported")
}

func (gc *GridCamera) NextPointCloud(ctx context.Context, extra map[string]interface{}) (pointcloud.PointCloud, error) {
	return nil, fmt.Errorf("NextPointCloud not supported")
}

func (gc *GridCamera) Properties(ctx context.Context) (camera.Properties, error) {
	return camera.Properties{}, nil
}

func (gc *GridCamera) Geometries(ctx context.Context, extra map[string]interface{}) ([]spatialmath.Geometry, error) {
	return nil, nil
}

func (gc *GridCamera) Name() resource.Name {
	return gc.name
}
