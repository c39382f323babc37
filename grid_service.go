package chessgrid

import (
	"context"
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/mitchellh/mapstructure"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"
	generic "go.viam.com/rdk/services/generic"
	"go.viam.com/utils/trace"
)

var GridServiceModel = family.WithModel("board-grid")

func init() {
	resource.RegisterService(generic.API, GridServiceModel,
		resource.Registration[resource.Resource, *GridServiceConfig]{
			Constructor: newGridService,
		},
	)
}

// GridServiceConfig configures the classify service. Grid.Corners is optional here,
// corners can come with each command instead.
type GridServiceConfig struct {
	Camera string `json:"camera"`
	Grid   Config `json:"grid"`
}

func (cfg *GridServiceConfig) Validate(path string) ([]string, []string, error) {
	if cfg.Camera == "" {
		return nil, nil, fmt.Errorf("need a camera")
	}

	grid := cfg.Grid
	grid.ApplyDefaults()
	if err := grid.Validate(); err != nil {
		return nil, nil, err
	}
	return []string{cfg.Camera}, nil, nil
}

type gridService struct {
	resource.AlwaysRebuild
	resource.TriviallyCloseable

	name resource.Name

	logger logging.Logger
	conf   *GridServiceConfig

	cam      camera.Camera
	analyzer *Analyzer
}

func newGridService(ctx context.Context, deps resource.Dependencies, rawConf resource.Config, logger logging.Logger) (resource.Resource, error) {
	conf, err := resource.NativeConfig[*GridServiceConfig](rawConf)
	if err != nil {
		return nil, err
	}

	return NewGridService(ctx, deps, rawConf.ResourceName(), conf, logger)
}

func NewGridService(ctx context.Context, deps resource.Dependencies, name resource.Name, conf *GridServiceConfig, logger logging.Logger) (resource.Resource, error) {
	cam, err := camera.FromProvider(deps, conf.Camera)
	if err != nil {
		return nil, err
	}
	return newGridServiceFromCamera(name, conf, cam, logger)
}

func newGridServiceFromCamera(name resource.Name, conf *GridServiceConfig, cam camera.Camera, logger logging.Logger) (*gridService, error) {
	analyzer, err := NewAnalyzer(&conf.Grid, logger)
	if err != nil {
		return nil, err
	}

	return &gridService{
		name:     name,
		logger:   logger,
		conf:     conf,
		cam:      cam,
		analyzer: analyzer,
	}, nil
}

func (s *gridService) Name() resource.Name {
	return s.name
}

// ----

type ClassifyCmd struct {
	Corners [][]float64
	Save    string
	Cells   bool
}

type cmdStruct struct {
	Classify *ClassifyCmd
}

func (s *gridService) DoCommand(ctx context.Context, cmdMap map[string]interface{}) (map[string]interface{}, error) {
	var cmd cmdStruct
	err := mapstructure.Decode(cmdMap, &cmd)
	if err != nil {
		return nil, err
	}

	if cmd.Classify != nil {
		return s.classify(ctx, cmd.Classify)
	}

	return nil, fmt.Errorf("bad cmd %v", cmdMap)
}

func (s *gridService) classify(ctx context.Context, cmd *ClassifyCmd) (map[string]interface{}, error) {
	ctx, span := trace.StartSpan(ctx, "chessgrid::classify")
	defer span.End()

	var points []r2.Point
	var err error
	if len(cmd.Corners) > 0 {
		points, err = PointsFromPairs(cmd.Corners)
	} else {
		points, err = s.analyzer.cfg.Points()
	}
	if err != nil {
		return nil, stageErr(StageOrder, err)
	}

	ni, _, err := s.cam.Images(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	if len(ni) == 0 {
		return nil, fmt.Errorf("no images returned from camera %s", s.conf.Camera)
	}

	img, err := ni[0].Image(ctx)
	if err != nil {
		return nil, stageErr(StageLoad, fmt.Errorf("%w: %v", ErrUnreadableImage, err))
	}

	res, err := s.analyzer.Run(img, points)
	if err != nil {
		return nil, err
	}
	s.logger.Infof("classified board: %d dark, %d light", res.DarkCount, res.LightCount)

	out := map[string]interface{}{
		"dark":      res.DarkCount,
		"light":     res.LightCount,
		"threshold": int(res.Threshold),
		"corners":   cornerPairs(res.Corners),
	}

	if cmd.Cells {
		cells := make([]interface{}, 0, len(res.Cells))
		for _, c := range res.Cells {
			cells = append(cells, map[string]interface{}{
				"row":        c.Row,
				"col":        c.Col,
				"dark":       c.Dark,
				"dark_ratio": c.DarkRatio,
				"square":     c.Square(),
			})
		}
		out["cells"] = cells
	}

	if cmd.Save != "" {
		if err := SaveImage(cmd.Save, res.Annotated); err != nil {
			return nil, err
		}
		out["saved"] = cmd.Save
	}

	return out, nil
}

func cornerPairs(c Corners) []interface{} {
	out := make([]interface{}, 0, len(c))
	for _, p := range c {
		out = append(out, []interface{}{p.X, p.Y})
	}
	return out
}
