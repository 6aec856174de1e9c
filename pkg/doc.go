// Package pkg provides the core libraries for qrlabels serial-label production.
//
// # Overview
//
// qrlabels batch-produces QR code label images carrying unique alphabetic
// serial codes, tracks issued codes in a spreadsheet ledger, and arranges
// finished label images into printable grids. The pkg directory is organized
// into five main areas:
//
//  1. [serial] - Serial code arithmetic and collision-aware allocation
//  2. [label] - QR label image rendering (symbol + caption)
//  3. [ledger] - Issued-serial bookkeeping backed by an Excel workbook
//  4. [layout] - Grid layout engine producing printable A4 documents
//  5. [pipeline] - Orchestration of the allocate → render → persist run
//
// # Architecture
//
// The typical data flow through qrlabels:
//
//	Start serial / range / plan sheet
//	         ↓
//	    [serial] package (enumerate candidates, skip issued codes)
//	         ↓
//	    [label] package (render one PNG per accepted serial)
//	         ↓
//	    [ledger] package (append the batch to the workbook)
//	         ↓
//	    [layout] package (compose the PNGs into a printable PDF)
//
// # Quick Start
//
// Issue a batch of serials and render their labels:
//
//	import (
//	    "github.com/lbieldt/qrlabels/pkg/label"
//	    "github.com/lbieldt/qrlabels/pkg/ledger"
//	    "github.com/lbieldt/qrlabels/pkg/pipeline"
//	)
//
//	store := ledger.NewExcelStore("labels.xlsx")
//	renderer, _ := label.NewRenderer(label.Config{OutputDir: "out"}, nil)
//	runner := pipeline.NewRunner(store, renderer, nil)
//	res, _ := runner.Execute(pipeline.Options{Start: "AAA", Count: 100})
//
// Compose the rendered labels into a printable sheet:
//
//	import "github.com/lbieldt/qrlabels/pkg/layout"
//
//	composer, _ := layout.NewComposer(layout.Config{
//	    ImageDir:   "out",
//	    OutputDir:  "sheets",
//	    LabelWidth: 20, LabelHeight: 15,
//	    Columns: 8, Rows: 15,
//	    MarginLeft: 14.5, MarginTop: 16,
//	    SpacingX: 3, SpacingY: 3,
//	}, nil)
//	result, _ := composer.Compose()
//
// # Main Packages
//
// [serial] - Fixed-alphabet serial codes (A-Z). Sequences enumerate codes in
// lexicographic order with carry; the allocator filters candidates against
// the issued set and supports range, count, and attempt-capped allocation.
//
// [label] - Renders one PNG per serial: a QR symbol with the serial drawn
// beneath it. Caption fonts resolve through the system font lookup with a
// built-in fallback, so a missing font never fails a run.
//
// [ledger] - The durable record of issued serials. The Excel-backed store
// reads the issued set from the "Generated" sheet, appends batches with
// timestamps and batch ids, and parses explicit requests from the "Create"
// sheet.
//
// [layout] - Places label images into a millimeter-accurate grid on A4
// pages: per-image rotation by aspect-ratio heuristic, scale-to-fit within
// padded cells, page-fit validation before drawing, and margin calibration
// annotations.
//
// [pipeline] - Ties the stages together for the generate command. The ledger
// is loaded once per run and appended once, so a run is deterministic over a
// fixed ledger state.
//
// [errors] - Coded errors shared by every package; codes drive both
// programmatic checks and user-facing messages.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/layout/...     # Specific package
//
// [serial]: https://pkg.go.dev/github.com/lbieldt/qrlabels/pkg/serial
// [label]: https://pkg.go.dev/github.com/lbieldt/qrlabels/pkg/label
// [ledger]: https://pkg.go.dev/github.com/lbieldt/qrlabels/pkg/ledger
// [layout]: https://pkg.go.dev/github.com/lbieldt/qrlabels/pkg/layout
// [pipeline]: https://pkg.go.dev/github.com/lbieldt/qrlabels/pkg/pipeline
// [errors]: https://pkg.go.dev/github.com/lbieldt/qrlabels/pkg/errors
package pkg
