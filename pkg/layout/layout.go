// Package layout arranges label images into a printable grid on an A4 page.
//
// The engine computes per-cell placement from physical (millimeter)
// dimensions, decides per-image rotation with an aspect-ratio heuristic,
// scales images to fit padded cells, and validates that the full grid fits
// the physical page before anything is drawn. Images wrap onto a new page
// every Columns*Rows cells.
package layout

import (
	"github.com/lbieldt/qrlabels/pkg/errors"
)

// A4 page dimensions in millimeters.
const (
	PageWidthMM  = 210.0
	PageHeightMM = 297.0
)

// DefaultPaddingMM is the intra-cell padding applied when none is given.
const DefaultPaddingMM = 1.0

// Config holds the grid parameters. All dimensions are millimeters. Every
// field except Padding is required; a zero Padding means DefaultPaddingMM.
type Config struct {
	ImageDir  string // folder of label images, consumed in listing order
	OutputDir string // directory receiving the composed document

	LabelWidth  float64 // cell width
	LabelHeight float64 // cell height
	Columns     int     // labels per row
	Rows        int     // labels per column

	MarginLeft float64
	MarginTop  float64
	SpacingX   float64 // horizontal gap between cells
	SpacingY   float64 // vertical gap between cells
	Padding    float64 // inset within each cell
}

// Footprint is the total physical extent of margin + cells + spacing on each
// axis. Right and bottom margins are not part of the footprint; they derive
// as the page remainder.
type Footprint struct {
	Width  float64
	Height float64
}

// Margins reports the left/top inputs together with the derived right/bottom
// remainders.
type Margins struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// Validate checks required fields and fills the padding default.
func (c *Config) Validate() error {
	if c.ImageDir == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "image folder is required")
	}
	if c.OutputDir == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "output directory is required")
	}
	if c.LabelWidth <= 0 || c.LabelHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "label dimensions must be positive, got %gx%g mm", c.LabelWidth, c.LabelHeight)
	}
	if c.Columns <= 0 || c.Rows <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "grid counts must be positive, got %dx%d", c.Columns, c.Rows)
	}
	if c.MarginLeft < 0 || c.MarginTop < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "margins cannot be negative")
	}
	if c.SpacingX < 0 || c.SpacingY < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "spacing cannot be negative")
	}
	if c.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "padding cannot be negative")
	}
	if c.Padding == 0 {
		c.Padding = DefaultPaddingMM
	}
	return nil
}

// Footprint computes the grid's total extent per axis.
func (c Config) Footprint() Footprint {
	return Footprint{
		Width:  c.MarginLeft + float64(c.Columns)*c.LabelWidth + float64(c.Columns-1)*c.SpacingX,
		Height: c.MarginTop + float64(c.Rows)*c.LabelHeight + float64(c.Rows-1)*c.SpacingY,
	}
}

// ValidateFit rejects layouts whose footprint meets or exceeds the physical
// page on either axis. It must pass before any drawing happens; an
// overflowing layout is never clipped.
func (c Config) ValidateFit() error {
	fp := c.Footprint()
	if fp.Width >= PageWidthMM || fp.Height >= PageHeightMM {
		return errors.New(errors.ErrCodeLayoutOverflow,
			"layout exceeds A4 dimensions (%gx%g mm): footprint width=%.2fmm, height=%.2fmm",
			PageWidthMM, PageHeightMM, fp.Width, fp.Height)
	}
	return nil
}

// Margins derives the right and bottom margins from the page remainder.
func (c Config) Margins() Margins {
	fp := c.Footprint()
	return Margins{
		Left:   c.MarginLeft,
		Top:    c.MarginTop,
		Right:  PageWidthMM - fp.Width,
		Bottom: PageHeightMM - fp.Height,
	}
}

// CellOrigin returns the top-left corner of the cell at (col, row), measured
// from the page's top-left corner.
func (c Config) CellOrigin(col, row int) (x, y float64) {
	x = c.MarginLeft + float64(col)*(c.LabelWidth+c.SpacingX)
	y = c.MarginTop + float64(row)*(c.LabelHeight+c.SpacingY)
	return x, y
}

// Capacity is the number of cells per page.
func (c Config) Capacity() int {
	return c.Columns * c.Rows
}
