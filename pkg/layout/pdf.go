package layout

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"

	"github.com/lbieldt/qrlabels/pkg/errors"
)

// Composer builds one multi-page PDF from a folder of label images.
// Construction validates the grid against the physical page, so an
// overflowing layout is rejected before any drawing.
type Composer struct {
	cfg    Config
	logger *log.Logger
}

// Result reports the outcome of one compose run. A run over an empty image
// folder succeeds with Images == 0 and an empty Document path.
type Result struct {
	Document string  // path of the written PDF, empty when no images found
	Images   int     // images placed
	Pages    int     // pages produced
	Margins  Margins // inputs plus derived right/bottom margins
}

// NewComposer validates cfg (including page fit) and returns a composer.
// A nil logger falls back to log.Default().
func NewComposer(cfg Config, logger *log.Logger) (*Composer, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ValidateFit(); err != nil {
		return nil, err
	}
	return &Composer{cfg: cfg, logger: logger}, nil
}

// Compose lists the image folder, places every image left-to-right
// top-to-bottom with a page break every Columns*Rows images, and writes the
// document once after all pages are drawn. The document is named from the
// first and last image of the whole batch.
func (c *Composer) Compose() (*Result, error) {
	images, err := ListImages(c.cfg.ImageDir)
	if err != nil {
		return nil, err
	}

	margins := c.cfg.Margins()
	c.logger.Info("derived margins", "right_mm", fmt.Sprintf("%.2f", margins.Right), "bottom_mm", fmt.Sprintf("%.2f", margins.Bottom))
	c.logger.Info("found label images", "count", len(images), "folder", c.cfg.ImageDir)

	if len(images) == 0 {
		c.logger.Warn("no images found, skipping document generation")
		return &Result{Margins: margins}, nil
	}

	if err := os.MkdirAll(c.cfg.OutputDir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "creating output directory %s", c.cfg.OutputDir)
	}
	outPath := filepath.Join(c.cfg.OutputDir, fmt.Sprintf("%s_%s.pdf", baseName(images[0]), baseName(images[len(images)-1])))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	pages := 0
	for idx := 0; idx < len(images); {
		pdf.AddPage()
		pages++
		pageFirst := images[idx]
		pageLast := pageFirst

		for row := 0; row < c.cfg.Rows && idx < len(images); row++ {
			for col := 0; col < c.cfg.Columns && idx < len(images); col++ {
				if err := c.placeCell(pdf, images[idx], col, row, idx); err != nil {
					return nil, err
				}
				pageLast = images[idx]
				idx++
			}
		}

		c.annotate(pdf, margins, pageFirst, pageLast)
		c.logger.Debug("page drawn", "page", pages, "through", pageLast)
	}

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "writing %s", outPath)
	}

	c.logger.Info("document written", "path", outPath, "pages", pages, "images", len(images))
	return &Result{
		Document: outPath,
		Images:   len(images),
		Pages:    pages,
		Margins:  margins,
	}, nil
}

// placeCell loads one image, decides its orientation, scales it into the
// padded cell, and draws it centered. Rotated images are re-encoded to an
// in-memory PNG because the page canvas consumes either a file path or a
// pre-registered reader, never a raw bitmap.
func (c *Composer) placeCell(pdf *fpdf.Fpdf, name string, col, row, idx int) error {
	path := filepath.Join(c.cfg.ImageDir, name)
	img, err := imaging.Open(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRender, err, "decoding %s", path)
	}

	bounds := img.Bounds()
	p := FitCell(bounds.Dx(), bounds.Dy(), c.cfg.LabelWidth, c.cfg.LabelHeight, c.cfg.Padding)
	x, y := c.cfg.CellOrigin(col, row)

	if p.Rotate {
		rotated := imaging.Rotate90(img)
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, rotated, imaging.PNG); err != nil {
			return errors.Wrap(errors.ErrCodeRender, err, "re-encoding rotated %s", name)
		}
		opt := fpdf.ImageOptions{ImageType: "PNG"}
		ref := fmt.Sprintf("rot-%d-%s", idx, name)
		pdf.RegisterImageOptionsReader(ref, opt, &buf)
		pdf.ImageOptions(ref, x+p.OffsetX, y+p.OffsetY, p.Width, p.Height, false, opt, 0, "")
	} else {
		pdf.ImageOptions(path, x+p.OffsetX, y+p.OffsetY, p.Width, p.Height, false, fpdf.ImageOptions{}, 0, "")
	}

	if pdf.Err() {
		return errors.Wrap(errors.ErrCodeRender, pdf.Error(), "placing %s", name)
	}
	return nil
}

// annotate draws the fixed margin labels, the first/last image names of the
// page, and the parameter summary. Cosmetic aids for print calibration.
func (c *Composer) annotate(pdf *fpdf.Fpdf, m Margins, first, last string) {
	pdf.SetFont("Helvetica", "", 10)
	c.centeredText(pdf, PageWidthMM/2, PageHeightMM-m.Bottom/2, "Bottom")
	c.rotatedText(pdf, m.Left/2, PageHeightMM/2, 90, "Left")
	c.rotatedText(pdf, PageWidthMM-m.Right/2, PageHeightMM/2, -90, "Right")

	pdf.SetFont("Helvetica", "", 8)
	c.rightAlignedText(pdf, PageWidthMM-m.Right/2, m.Top/2+5, "First: "+first)
	c.rightAlignedText(pdf, PageWidthMM-m.Right/2, PageHeightMM-m.Bottom/2+2, "Last: "+last)

	pdf.SetFont("Helvetica", "", 4.5)
	lines := []string{
		fmt.Sprintf("Width: %g mm, Height: %g mm, Labels X: %d, Labels Y: %d, Margin Left: %g mm, Margin Right: %.2f mm",
			c.cfg.LabelWidth, c.cfg.LabelHeight, c.cfg.Columns, c.cfg.Rows, c.cfg.MarginLeft, m.Right),
		fmt.Sprintf("Margin Top: %g mm, Margin Bottom: %.2f mm, Spacing X: %g mm, Spacing Y: %g mm, Padding: %g mm",
			c.cfg.MarginTop, m.Bottom, c.cfg.SpacingX, c.cfg.SpacingY, c.cfg.Padding),
	}
	for i, line := range lines {
		c.centeredText(pdf, PageWidthMM/2, m.Top/2+float64(i)*2, line)
	}
}

func (c *Composer) centeredText(pdf *fpdf.Fpdf, x, y float64, s string) {
	pdf.Text(x-pdf.GetStringWidth(s)/2, y, s)
}

func (c *Composer) rightAlignedText(pdf *fpdf.Fpdf, x, y float64, s string) {
	pdf.Text(x-pdf.GetStringWidth(s), y, s)
}

// rotatedText draws s centered at (x, y) rotated by angle degrees, for the
// vertical margin labels.
func (c *Composer) rotatedText(pdf *fpdf.Fpdf, x, y, angle float64, s string) {
	pdf.TransformBegin()
	pdf.TransformRotate(angle, x, y)
	pdf.Text(x-pdf.GetStringWidth(s)/2, y, s)
	pdf.TransformEnd()
}

// baseName strips the extension from an image file name.
func baseName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
