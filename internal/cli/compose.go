package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lbieldt/qrlabels/pkg/layout"
)

// composeOpts holds the command-line flags for the compose command.
// Dimensions can come from a TOML sheet profile, from flags, or both;
// explicitly set flags override the profile.
type composeOpts struct {
	imageDir  string
	outputDir string
	profile   string

	labelWidth  float64
	labelHeight float64
	columns     int
	rows        int
	marginLeft  float64
	marginTop   float64
	spacingX    float64
	spacingY    float64
	padding     float64
}

// newComposeCmd creates the compose command for arranging label images into
// a printable document.
func newComposeCmd() *cobra.Command {
	var opts composeOpts

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Arrange label images into a printable A4 grid",
		Long: `Compose lays out every image in a folder onto a grid of physical label
cells on A4 pages and writes a single PDF, named after the first and last
image of the batch (e.g. AAA_AAZ.pdf).

Grid dimensions are given in millimeters, either as flags or through a TOML
sheet profile (--profile); flags set explicitly override the profile. The
layout is validated against the physical page before any drawing: a grid
that does not fit A4 is rejected, never clipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompose(cmd.Context(), cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.imageDir, "images", "i", "", "folder of label images")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "directory for the composed document")
	cmd.Flags().StringVarP(&opts.profile, "profile", "p", "", "TOML sheet profile with label dimensions")
	cmd.Flags().Float64Var(&opts.labelWidth, "label-width", 0, "label cell width in mm")
	cmd.Flags().Float64Var(&opts.labelHeight, "label-height", 0, "label cell height in mm")
	cmd.Flags().IntVar(&opts.columns, "columns", 0, "labels per row")
	cmd.Flags().IntVar(&opts.rows, "rows", 0, "labels per column")
	cmd.Flags().Float64Var(&opts.marginLeft, "margin-left", 0, "left page margin in mm")
	cmd.Flags().Float64Var(&opts.marginTop, "margin-top", 0, "top page margin in mm")
	cmd.Flags().Float64Var(&opts.spacingX, "spacing-x", 0, "horizontal gap between cells in mm")
	cmd.Flags().Float64Var(&opts.spacingY, "spacing-y", 0, "vertical gap between cells in mm")
	cmd.Flags().Float64Var(&opts.padding, "padding", 0, fmt.Sprintf("inset within each cell in mm (default %g)", layout.DefaultPaddingMM))

	_ = cmd.MarkFlagRequired("images")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// runCompose resolves the layout config from profile and flags, then builds
// the document.
func runCompose(ctx context.Context, cmd *cobra.Command, opts *composeOpts) error {
	logger := loggerFromContext(ctx)

	cfg := layout.Config{
		ImageDir:  opts.imageDir,
		OutputDir: opts.outputDir,
	}

	if opts.profile != "" {
		profile, err := LoadProfile(opts.profile)
		if err != nil {
			return err
		}
		profile.apply(&cfg)
		logger.Info("loaded sheet profile", "name", profile.Name, "path", opts.profile)
	}

	// Explicit flags win over the profile.
	if cmd.Flags().Changed("label-width") {
		cfg.LabelWidth = opts.labelWidth
	}
	if cmd.Flags().Changed("label-height") {
		cfg.LabelHeight = opts.labelHeight
	}
	if cmd.Flags().Changed("columns") {
		cfg.Columns = opts.columns
	}
	if cmd.Flags().Changed("rows") {
		cfg.Rows = opts.rows
	}
	if cmd.Flags().Changed("margin-left") {
		cfg.MarginLeft = opts.marginLeft
	}
	if cmd.Flags().Changed("margin-top") {
		cfg.MarginTop = opts.marginTop
	}
	if cmd.Flags().Changed("spacing-x") {
		cfg.SpacingX = opts.spacingX
	}
	if cmd.Flags().Changed("spacing-y") {
		cfg.SpacingY = opts.spacingY
	}
	if cmd.Flags().Changed("padding") {
		cfg.Padding = opts.padding
	}

	composer, err := layout.NewComposer(cfg, logger)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	res, err := composer.Compose()
	if err != nil {
		return err
	}

	if res.Images == 0 {
		printWarning("No label images found in %s, nothing to compose", opts.imageDir)
		return nil
	}

	prog.done(fmt.Sprintf("Composed %d labels", res.Images))
	printSuccess("Placed %s labels on %d page(s)",
		StyleHighlight.Render(fmt.Sprintf("%d", res.Images)), res.Pages)
	printFile(res.Document)
	printKeyValue("Margins", fmt.Sprintf("left %g / top %g / right %.2f / bottom %.2f mm",
		res.Margins.Left, res.Margins.Top, res.Margins.Right, res.Margins.Bottom))
	return nil
}
