package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"chessgrid"

	"go.viam.com/rdk/logging"
)

type options struct {
	points    string
	size      string
	config    string
	rectified string
	labels    bool
	debug     bool
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "boardgrid <input> [output]",
		Short: "Rectify a chessboard photo from 4 corners and classify its cells as light or dark",
		Long: `Rectify a chessboard photo from 4 corners and classify its cells as light or dark.

The corners come from --points or from the corners list of the --config file.
If output is not specified, it will be <input>_output<ext>.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(opts, args)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				if hint := hintFor(err); hint != "" {
					fmt.Fprintln(os.Stderr, hint)
				}
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.points, "points", "p", "", `4 board corners in any order, e.g. "10,10 110,10 10,110 110,110"`)
	flags.StringVarP(&opts.size, "size", "s", "", "rectified size as WxH (default 400x400)")
	flags.StringVarP(&opts.config, "config", "c", "", "YAML config file")
	flags.StringVar(&opts.rectified, "rectified", "", "also save the rectified board, before annotation")
	flags.BoolVar(&opts.labels, "labels", false, "label cells with square names")
	flags.BoolVar(&opts.debug, "debug", false, "debug logging")

	return cmd
}

func run(opts *options, args []string) error {
	logger := logging.NewLogger("boardgrid")
	if opts.debug {
		logger = logging.NewDebugLogger("boardgrid")
	}

	cfg := chessgrid.DefaultConfig()
	if opts.config != "" {
		var err error
		cfg, err = chessgrid.LoadConfig(opts.config)
		if err != nil {
			return err
		}
	}
	if opts.size != "" {
		w, h, err := chessgrid.ParseSize(opts.size)
		if err != nil {
			return err
		}
		cfg.Width, cfg.Height = w, h
	}
	if opts.labels {
		cfg.LabelSquares = true
	}

	analyzer, err := chessgrid.NewAnalyzer(cfg, logger)
	if err != nil {
		return err
	}

	inputFile := args[0]
	outputFile := defaultOutput(inputFile)
	if len(args) >= 2 {
		outputFile = args[1]
	}

	input, err := chessgrid.LoadImage(inputFile)
	if err != nil {
		return err
	}
	fmt.Printf("Image size: %dx%d\n", input.Bounds().Dx(), input.Bounds().Dy())

	var res *chessgrid.Result
	if opts.points != "" {
		points, err := chessgrid.ParsePoints(opts.points)
		if err != nil {
			return err
		}
		res, err = analyzer.Run(input, points)
		if err != nil {
			return err
		}
	} else {
		res, err = analyzer.RunConfigured(input)
		if err != nil {
			return err
		}
	}

	fmt.Printf("Ordered corners:\n")
	fmt.Printf("  Top-left:     (%.1f, %.1f)\n", res.Corners.TopLeft().X, res.Corners.TopLeft().Y)
	fmt.Printf("  Top-right:    (%.1f, %.1f)\n", res.Corners.TopRight().X, res.Corners.TopRight().Y)
	fmt.Printf("  Bottom-left:  (%.1f, %.1f)\n", res.Corners.BottomLeft().X, res.Corners.BottomLeft().Y)
	fmt.Printf("  Bottom-right: (%.1f, %.1f)\n", res.Corners.BottomRight().X, res.Corners.BottomRight().Y)

	if opts.rectified != "" {
		if err := chessgrid.SaveImage(opts.rectified, res.Rectified); err != nil {
			return err
		}
		fmt.Printf("Saved rectified image to %s\n", opts.rectified)
	}

	if err := chessgrid.SaveImage(outputFile, res.Annotated); err != nil {
		return err
	}

	fmt.Printf("Dark squares detected: %d\n", res.DarkCount)
	fmt.Printf("Light squares detected: %d\n", res.LightCount)
	fmt.Printf("Annotated image saved to: %s\n", outputFile)
	return nil
}

// defaultOutput turns input.jpg into input_output.jpg.
func defaultOutput(inputFile string) string {
	ext := filepath.Ext(inputFile)
	base := strings.TrimSuffix(inputFile, ext)
	return base + "_output" + ext
}

func hintFor(err error) string {
	var se *chessgrid.StageError
	stage := ""
	if errors.As(err, &se) {
		stage = se.Stage
	}

	switch {
	case errors.Is(err, chessgrid.ErrUnreadableImage):
		return "Check that the input is a readable JPEG or PNG file."
	case errors.Is(err, chessgrid.ErrDegenerateGeometry):
		return "The corners do not form a quadrilateral; select 4 distinct, non-collinear corners."
	case errors.Is(err, chessgrid.ErrInvalidInput) && stage == chessgrid.StageOrder:
		return "Select exactly 4 corners with --points or the corners config key."
	case errors.Is(err, chessgrid.ErrInvalidInput):
		return "Check the output size and grid settings."
	}
	return ""
}
