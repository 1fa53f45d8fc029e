// Package fonts builds font faces for board labels from the Go fonts.
package fonts

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

var (
	parseOnce sync.Once
	bold      *truetype.Font
	parseErr  error
)

// Bold returns a face of the Go Bold font at the given size in points
// (72 DPI, so points equal pixels).
func Bold(size float64) (font.Face, error) {
	parseOnce.Do(func() {
		bold, parseErr = truetype.Parse(gobold.TTF)
	})
	if parseErr != nil {
		return nil, fmt.Errorf("parse go bold: %w", parseErr)
	}
	return truetype.NewFace(bold, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
