// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package imaging

import "image/color"

// colorMode names a colour model the way image tools usually report it.
func colorMode(m color.Model) string {
	if _, ok := m.(color.Palette); ok {
		return "P"
	}
	switch m {
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model:
		return "RGBA"
	case color.GrayModel, color.Gray16Model:
		return "L"
	case color.YCbCrModel, color.NYCbCrAModel:
		return "RGB"
	case color.CMYKModel:
		return "CMYK"
	case color.AlphaModel, color.Alpha16Model:
		return "A"
	}
	return "unknown"
}
