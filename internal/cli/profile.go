package cli

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/lbieldt/qrlabels/pkg/errors"
	"github.com/lbieldt/qrlabels/pkg/layout"
)

// Profile describes a label-sheet stock in a TOML file, so the physical
// dimensions of a sheet only have to be measured once:
//
//	name = "herma-4201"
//
//	[label]
//	width = 20.0
//	height = 15.0
//
//	[grid]
//	columns = 8
//	rows = 15
//
//	[page]
//	margin_left = 14.5
//	margin_top = 16.0
//	spacing_x = 3.0
//	spacing_y = 3.0
//	padding = 1.0
type Profile struct {
	Name  string `toml:"name"`
	Label struct {
		Width  float64 `toml:"width"`
		Height float64 `toml:"height"`
	} `toml:"label"`
	Grid struct {
		Columns int `toml:"columns"`
		Rows    int `toml:"rows"`
	} `toml:"grid"`
	Page struct {
		MarginLeft float64 `toml:"margin_left"`
		MarginTop  float64 `toml:"margin_top"`
		SpacingX   float64 `toml:"spacing_x"`
		SpacingY   float64 `toml:"spacing_y"`
		Padding    float64 `toml:"padding"`
	} `toml:"page"`
}

// LoadProfile reads and parses a sheet profile from path.
func LoadProfile(path string) (*Profile, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "profile %s", path)
	}
	var p Profile
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing profile %s", path)
	}
	return &p, nil
}

// apply copies the profile's dimensions into a layout config. Folder paths
// are never part of a profile; they stay command-line concerns.
func (p *Profile) apply(cfg *layout.Config) {
	cfg.LabelWidth = p.Label.Width
	cfg.LabelHeight = p.Label.Height
	cfg.Columns = p.Grid.Columns
	cfg.Rows = p.Grid.Rows
	cfg.MarginLeft = p.Page.MarginLeft
	cfg.MarginTop = p.Page.MarginTop
	cfg.SpacingX = p.Page.SpacingX
	cfg.SpacingY = p.Page.SpacingY
	cfg.Padding = p.Page.Padding
}
