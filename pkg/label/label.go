// Package label renders serial-coded QR label images.
//
// Each label is a square QR symbol with the serial string drawn beneath it,
// horizontally centered on a white canvas. The caption font is resolved
// through the system font lookup and falls back to a minimal built-in face
// when the preferred font is unavailable - a missing font never fails a run.
package label

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/flopp/go-findfont"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/lbieldt/qrlabels/pkg/errors"
)

// Default rendering parameters.
const (
	DefaultFontName   = "arial.ttf"
	DefaultFontSize   = 80.0
	DefaultSymbolSize = 300
)

// Canvas sizing constants, in pixels.
const (
	textPadX  = 20 // horizontal padding around the caption
	textPadY  = 10 // vertical padding below the caption
	textRaise = 10 // caption overlaps the symbol's quiet zone by this much
)

// Config controls label rendering. All fields are explicit; there is no
// process-wide state, so independent renderers can run with distinct
// configurations.
type Config struct {
	OutputDir  string  // directory receiving one PNG per serial
	FontName   string  // font file name resolved via the system font lookup
	FontSize   float64 // caption size in points
	SymbolSize int     // QR symbol edge length in pixels
}

// Renderer produces one label image per serial.
type Renderer struct {
	cfg    Config
	face   font.Face
	logger *log.Logger
}

// NewRenderer validates cfg, resolves the caption font, and ensures the
// output directory exists. A nil logger falls back to log.Default().
func NewRenderer(cfg Config, logger *log.Logger) (*Renderer, error) {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.OutputDir == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "output directory is required")
	}
	if cfg.FontName == "" {
		cfg.FontName = DefaultFontName
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = DefaultFontSize
	}
	if cfg.SymbolSize <= 0 {
		cfg.SymbolSize = DefaultSymbolSize
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "creating output directory %s", cfg.OutputDir)
	}
	return &Renderer{
		cfg:    cfg,
		face:   loadFace(cfg.FontName, cfg.FontSize, logger),
		logger: logger,
	}, nil
}

// loadFace resolves the preferred font or returns the built-in fallback.
// Every failure path is recovered locally with a logged warning.
func loadFace(name string, size float64, logger *log.Logger) font.Face {
	path, err := findfont.Find(name)
	if err != nil {
		logger.Warn("font not found, using built-in fallback", "font", name, "err", err)
		return basicfont.Face7x13
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("font unreadable, using built-in fallback", "font", path, "err", err)
		return basicfont.Face7x13
	}
	ft, err := truetype.Parse(data)
	if err != nil {
		logger.Warn("font unparsable, using built-in fallback", "font", path, "err", err)
		return basicfont.Face7x13
	}
	return truetype.NewFace(ft, &truetype.Options{Size: size})
}

// Render draws the label for one serial and writes it as <serial>.png in the
// output directory, returning the written path. A write failure is fatal for
// this invocation and is not retried.
func (r *Renderer) Render(serial string) (string, error) {
	q, err := qrcode.New(serial, qrcode.Medium)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRender, err, "encoding %q", serial)
	}
	symbol := q.Image(r.cfg.SymbolSize)

	// Measure the caption before sizing the canvas.
	measure := gg.NewContext(1, 1)
	measure.SetFontFace(r.face)
	textW, textH := measure.MeasureString(serial)

	width := r.cfg.SymbolSize
	if w := int(textW) + textPadX; w > width {
		width = w
	}
	height := r.cfg.SymbolSize + int(textH) + textPadY

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.DrawImage(symbol, (width-r.cfg.SymbolSize)/2, 0)

	dc.SetFontFace(r.face)
	dc.SetRGB(0, 0, 0)
	baseline := float64(r.cfg.SymbolSize-textRaise) + textH
	dc.DrawString(serial, (float64(width)-textW)/2, baseline)

	path := filepath.Join(r.cfg.OutputDir, serial+".png")
	if err := dc.SavePNG(path); err != nil {
		return "", errors.Wrap(errors.ErrCodeRender, err, "writing %s", path)
	}
	r.logger.Debug("rendered label", "serial", serial, "path", path)
	return path, nil
}
