package overlay

import (
	"image/color"

	"screen-annotate/src/annotation"
	"screen-annotate/src/editor"
)

// toolbarShortcut maps bare keys to the toolbar while editing: 1-8 pick a
// tool, [ and ] change the line width, comma and period step through the
// palette. Keys go to the editor unchanged while a text field is open.
func toolbarShortcut(k editor.Key, s editor.Scene) (editor.Event, bool) {
	if s.Mode != editor.ModeEditing || s.HasText || k.Code != editor.KeyChar || k.Mods&^editor.ModShift != 0 {
		return nil, false
	}
	tools := editor.Tools()
	switch c := k.Char; {
	case c >= '1' && int(c-'1') < len(tools):
		return editor.SelectTool{Tool: tools[c-'1']}, true
	case c == '[':
		return editor.SelectLineWidth{Width: s.LineWidth - 1}, true
	case c == ']':
		return editor.SelectLineWidth{Width: s.LineWidth + 1}, true
	case c == ',':
		return editor.SelectColor{Color: stepPalette(s, -1)}, true
	case c == '.':
		return editor.SelectColor{Color: stepPalette(s, 1)}, true
	}
	return nil, false
}

func stepPalette(s editor.Scene, d int) color.NRGBA {
	n := len(annotation.Palette)
	i := 0
	for j, sw := range annotation.Palette {
		if sw.Color == s.Color {
			i = j
			break
		}
	}
	return annotation.Palette[((i+d)%n+n)%n].Color
}
