package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lbieldt/qrlabels/pkg/label"
	"github.com/lbieldt/qrlabels/pkg/ledger"
	"github.com/lbieldt/qrlabels/pkg/pipeline"
	"github.com/lbieldt/qrlabels/pkg/serial"
)

// generateOpts holds the command-line flags for the generate command.
// Exactly one allocation mode is selected: --end (range), --count
// (open-ended), or --from-sheet (explicit plan from the ledger workbook).
type generateOpts struct {
	start       string // first serial of the sequence
	end         string // inclusive range bound
	count       int    // accepted-code target for open-ended mode
	maxAttempts int    // candidate ceiling for open-ended mode
	note        string // free text recorded with each ledger entry
	fromSheet   bool   // read requested serials from the Create sheet
	ledgerPath  string // ledger workbook (.xlsx)
	outputDir   string // directory receiving one PNG per serial
	fontName    string // caption font, resolved via the system font lookup
	fontSize    float64
	qrSize      int
}

// newGenerateCmd creates the generate command for producing label images.
//
// Default settings:
//   - max-attempts: 10000 candidate checks in open-ended mode
//   - font: arial.ttf at 80pt (falls back to a built-in face when missing)
//   - qr-size: 300px
func newGenerateCmd() *cobra.Command {
	opts := generateOpts{
		maxAttempts: serial.DefaultMaxAttempts,
		fontName:    label.DefaultFontName,
		fontSize:    label.DefaultFontSize,
		qrSize:      label.DefaultSymbolSize,
	}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate serial-coded QR label images",
		Long: `Generate allocates fresh serial codes, renders one QR label image per
accepted code, and appends the issued codes to the ledger workbook.

Allocation modes (choose one):

  range:      --start AAA --end AAZ
  open-ended: --start BAA --count 100
  plan:       --from-sheet (reads the "Create" sheet of the ledger)

Serials already present in the ledger are skipped, never re-issued.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.start, "start", "", "starting serial (e.g. AAA)")
	cmd.Flags().StringVar(&opts.end, "end", "", "ending serial, inclusive (range mode)")
	cmd.Flags().IntVar(&opts.count, "count", 0, "number of serials to accept (open-ended mode)")
	cmd.Flags().IntVar(&opts.maxAttempts, "max-attempts", opts.maxAttempts, "candidate ceiling for open-ended mode")
	cmd.Flags().StringVar(&opts.note, "note", "", "note recorded with each issued serial")
	cmd.Flags().BoolVar(&opts.fromSheet, "from-sheet", false, "read requested serials from the ledger's Create sheet")
	cmd.Flags().StringVarP(&opts.ledgerPath, "ledger", "l", "", "ledger workbook path (.xlsx)")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "directory for the rendered label images")
	cmd.Flags().StringVar(&opts.fontName, "font", opts.fontName, "caption font file name")
	cmd.Flags().Float64Var(&opts.fontSize, "font-size", opts.fontSize, "caption font size in points")
	cmd.Flags().IntVar(&opts.qrSize, "qr-size", opts.qrSize, "QR symbol edge length in pixels")

	_ = cmd.MarkFlagRequired("ledger")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// runGenerate wires the ledger store, label renderer, and pipeline runner,
// then executes the selected allocation mode.
func runGenerate(ctx context.Context, opts *generateOpts) error {
	logger := loggerFromContext(ctx)

	store := ledger.NewExcelStore(opts.ledgerPath)
	renderer, err := label.NewRenderer(label.Config{
		OutputDir:  opts.outputDir,
		FontName:   opts.fontName,
		FontSize:   opts.fontSize,
		SymbolSize: opts.qrSize,
	}, logger)
	if err != nil {
		return err
	}

	popts := pipeline.Options{
		Start:       opts.start,
		End:         opts.end,
		Count:       opts.count,
		MaxAttempts: opts.maxAttempts,
		Note:        opts.note,
	}
	if opts.fromSheet {
		plan, err := store.Plan()
		if err != nil {
			return err
		}
		popts = pipeline.Options{Plan: plan}
	}

	prog := newProgress(logger)
	runner := pipeline.NewRunner(store, renderer, logger)
	res, err := runner.Execute(popts)
	if err != nil {
		if res != nil && len(res.Accepted) > 0 {
			// Attempt ceiling reached: the partial batch is already rendered
			// and recorded.
			printWarning("Accepted only %d serials before the attempt ceiling (%d candidates checked)",
				len(res.Accepted), res.Attempts)
			printKeyValue("Batch", res.Batch)
		}
		return err
	}

	prog.done(fmt.Sprintf("Generated %d labels", len(res.Accepted)))
	printSuccess("Issued %s serials (%d skipped as already issued)",
		StyleHighlight.Render(fmt.Sprintf("%d", len(res.Accepted))), res.Skipped)
	printKeyValue("Batch", res.Batch)
	printKeyValue("Ledger", opts.ledgerPath)
	for _, path := range res.Files {
		printFile(path)
	}
	return nil
}
