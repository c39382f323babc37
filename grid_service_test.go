package chessgrid

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"testing"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/data"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"
	generic "go.viam.com/rdk/services/generic"
	"go.viam.com/rdk/testutils/inject"
	"go.viam.com/test"
)

func boardInputCamera(t *testing.T, img image.Image) *inject.Camera {
	t.Helper()
	cam := inject.NewCamera("board")
	cam.ImagesFunc = func(ctx context.Context, filterSourceNames []string, extra map[string]interface{}) ([]camera.NamedImage, resource.ResponseMetadata, error) {
		ni, err := camera.NamedImageFromImage(img, "color", "", data.Annotations{})
		if err != nil {
			return nil, resource.ResponseMetadata{}, err
		}
		return []camera.NamedImage{ni}, resource.ResponseMetadata{}, nil
	}
	return cam
}

var boardCorners = [][]float64{{10, 10}, {110, 10}, {10, 110}, {110, 110}}

func TestGridCameraConfigValidate(t *testing.T) {
	_, _, err := (&GridCameraConfig{}).Validate("")
	test.That(t, err, test.ShouldNotBeNil)

	_, _, err = (&GridCameraConfig{Input: "board"}).Validate("")
	test.That(t, err, test.ShouldNotBeNil)

	deps, _, err := (&GridCameraConfig{Input: "board", Grid: Config{Corners: boardCorners}}).Validate("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deps, test.ShouldResemble, []string{"board"})
}

func TestGridCameraImages(t *testing.T) {
	ctx := context.Background()
	conf := &GridCameraConfig{Input: "board", Grid: Config{Corners: boardCorners}}

	gc, err := newGridCameraFromInput(camera.Named("grid"), conf, boardInputCamera(t, boardPhoto()), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	ni, _, err := gc.Images(ctx, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(ni), test.ShouldEqual, 1)

	img, err := ni[0].Image(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 400)
	test.That(t, img.Bounds().Dy(), test.ShouldEqual, 400)
}

func TestGridServiceConfigValidate(t *testing.T) {
	_, _, err := (&GridServiceConfig{}).Validate("")
	test.That(t, err, test.ShouldNotBeNil)

	_, _, err = (&GridServiceConfig{Camera: "board", Grid: Config{DarkRatio: 3}}).Validate("")
	test.That(t, err, test.ShouldNotBeNil)

	deps, _, err := (&GridServiceConfig{Camera: "board"}).Validate("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deps, test.ShouldResemble, []string{"board"})
}

func TestGridServiceClassify(t *testing.T) {
	ctx := context.Background()
	conf := &GridServiceConfig{Camera: "board"}

	s, err := newGridServiceFromCamera(generic.Named("grid"), conf, boardInputCamera(t, boardPhoto()), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	save := filepath.Join(t.TempDir(), "annotated.png")
	out, err := s.DoCommand(ctx, map[string]interface{}{
		"classify": map[string]interface{}{
			"corners": []interface{}{
				[]interface{}{110, 110}, []interface{}{10, 10}, []interface{}{110, 10}, []interface{}{10, 110},
			},
			"cells": true,
			"save":  save,
		},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out["dark"], test.ShouldEqual, 32)
	test.That(t, out["light"], test.ShouldEqual, 32)
	test.That(t, out["saved"], test.ShouldEqual, save)

	cells, ok := out["cells"].([]interface{})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, len(cells), test.ShouldEqual, 64)
	first := cells[0].(map[string]interface{})
	test.That(t, first["square"], test.ShouldEqual, "a8")
	test.That(t, first["dark"], test.ShouldBeFalse)

	saved, err := LoadImage(save)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, saved.Bounds().Dx(), test.ShouldEqual, 400)
}

func TestGridServiceErrors(t *testing.T) {
	ctx := context.Background()
	s, err := newGridServiceFromCamera(generic.Named("grid"), &GridServiceConfig{Camera: "board"},
		boardInputCamera(t, boardPhoto()), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	_, err = s.DoCommand(ctx, map[string]interface{}{"nope": true})
	test.That(t, err, test.ShouldNotBeNil)

	// no corners in the command or the config
	_, err = s.DoCommand(ctx, map[string]interface{}{"classify": map[string]interface{}{}})
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	_, err = s.DoCommand(ctx, map[string]interface{}{
		"classify": map[string]interface{}{
			"corners": [][]float64{{0, 0}, {10, 10}, {20, 20}, {30, 30}},
		},
	})
	test.That(t, errors.Is(err, ErrDegenerateGeometry), test.ShouldBeTrue)
}
