package app

import (
	"image/color"

	"pokervision/internal/frame"
	"pokervision/internal/reader"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Felt backgrounds behind the table frame.
var (
	feltDark  = color.NRGBA{R: 0x10, G: 0x2A, B: 0x1C, A: 0xFF}
	feltLight = color.NRGBA{R: 0xE4, G: 0xEE, B: 0xE7, A: 0xFF}
)

// PreviewTheme is the preview window theme. Status colors match the slot
// overlays so a list row and its outline read the same, and sizes are
// compact to fit seven slot rows beside the frame.
type PreviewTheme struct{}

var _ fyne.Theme = (*PreviewTheme)(nil)

func (t *PreviewTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameSuccess:
		return frame.ColorAccepted
	case theme.ColorNameWarning:
		return frame.ColorRejected
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0x1B, G: 0x8A, B: 0x4A, A: 0xFF}
	case theme.ColorNameBackground:
		if variant == theme.VariantLight {
			return feltLight
		}
		return feltDark
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

// Font uses monospace for every style so diagnostic columns line up.
func (t *PreviewTheme) Font(style fyne.TextStyle) fyne.Resource {
	style.Monospace = true
	return theme.DefaultTheme().Font(style)
}

func (t *PreviewTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *PreviewTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 12
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	default:
		return theme.DefaultTheme().Size(name)
	}
}

// ReadingImportance maps a reading to the importance of its list row, the
// same three states the overlay draws.
func ReadingImportance(r reader.Reading) widget.Importance {
	switch {
	case r.Label != "":
		return widget.SuccessImportance
	case r.Present():
		return widget.WarningImportance
	default:
		return widget.LowImportance
	}
}
