package render

import "image/color"

// Theme holds the board colours. Overlay colours are drawn over the cells
// and should be translucent.
type Theme struct {
	Background  color.Color
	LightCell   color.Color
	DarkCell    color.Color
	Coordinates color.Color

	LastMove    color.Color
	Hint        color.Color
	Target      color.Color
	Capture     color.Color
	Check       color.Color
	PromptCell  color.Color
	WhiteToMove color.Color
	BlackToMove color.Color
}

// DefaultTheme is the pink and brown board.
func DefaultTheme() Theme {
	return Theme{
		Background:  color.RGBA{255, 204, 204, 255},
		LightCell:   color.RGBA{255, 255, 179, 255},
		DarkCell:    color.RGBA{153, 102, 51, 255},
		Coordinates: color.RGBA{51, 102, 255, 255},

		LastMove:    color.NRGBA{255, 255, 0, 80},
		Hint:        color.NRGBA{0, 160, 255, 90},
		Target:      color.NRGBA{0, 0, 0, 60},
		Capture:     color.NRGBA{255, 0, 0, 80},
		Check:       color.NRGBA{200, 0, 0, 120},
		PromptCell:  color.NRGBA{50, 50, 50, 230},
		WhiteToMove: color.White,
		BlackToMove: color.Black,
	}
}
