package overlay

import (
	"testing"

	"screen-annotate/src/annotation"
	"screen-annotate/src/editor"
)

func char(c rune, mods editor.Modifiers) editor.Key {
	return editor.Key{Code: editor.KeyChar, Char: c, Mods: mods}
}

func TestToolbarShortcut(t *testing.T) {
	editing := editor.Scene{Mode: editor.ModeEditing, LineWidth: 4, Color: annotation.Palette[0].Color}

	ev, ok := toolbarShortcut(char('2', 0), editing)
	if !ok || ev != (editor.SelectTool{Tool: editor.ToolRect}) {
		t.Fatalf("Expected rect tool, got %#v %v", ev, ok)
	}
	ev, ok = toolbarShortcut(char('8', 0), editing)
	if !ok || ev != (editor.SelectTool{Tool: editor.ToolBadge}) {
		t.Fatalf("Expected badge tool, got %#v %v", ev, ok)
	}
	if _, ok := toolbarShortcut(char('9', 0), editing); ok {
		t.Fatal("Expected no tool past the toolbar")
	}
	ev, _ = toolbarShortcut(char(']', 0), editing)
	if ev != (editor.SelectLineWidth{Width: 5}) {
		t.Fatalf("Expected width 5, got %#v", ev)
	}
	ev, _ = toolbarShortcut(char(',', 0), editing)
	last := annotation.Palette[len(annotation.Palette)-1].Color
	if ev != (editor.SelectColor{Color: last}) {
		t.Fatalf("Expected palette to wrap to %v, got %#v", last, ev)
	}
}

func TestToolbarShortcutIgnored(t *testing.T) {
	cases := map[string]struct {
		key   editor.Key
		scene editor.Scene
	}{
		"selecting":    {char('1', 0), editor.Scene{Mode: editor.ModeSelecting}},
		"text open":    {char('1', 0), editor.Scene{Mode: editor.ModeEditing, HasText: true}},
		"with command": {char('1', editor.ModCommand), editor.Scene{Mode: editor.ModeEditing}},
		"not a char":   {editor.Key{Code: editor.KeyEnter}, editor.Scene{Mode: editor.ModeEditing}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if ev, ok := toolbarShortcut(tc.key, tc.scene); ok {
				t.Fatalf("Expected key to pass through, got %#v", ev)
			}
		})
	}
}
