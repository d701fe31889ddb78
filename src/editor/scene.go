package editor

import (
	"image"
	"image/color"

	"screen-annotate/src/annotation"
	"screen-annotate/src/geometry"
)

// Scene is a read-only view of everything the overlay paints for one frame.
type Scene struct {
	Mode Mode
	// Dragging and Drag describe the region being dragged out while selecting.
	Dragging bool
	Drag     geometry.Rect

	Selection geometry.Rect
	Base      image.Image
	// Items excludes a text annotation while its field is open.
	Items annotation.Collection
	Draft annotation.Annotation

	Hovered  annotation.Annotation
	Selected annotation.Annotation
	Handles  []Handle

	Text    TextEntry
	HasText bool

	Tool      Tool
	Color     color.NRGBA
	LineWidth float64
}

// Scene snapshots the current visual state.
func (e *Editor) Scene() Scene {
	s := Scene{
		Mode:      e.mode,
		Selection: e.selection,
		Base:      e.base,
		Items:     e.items.Clone(),
		Draft:     e.draft,
		Tool:      e.tool,
		Color:     e.color,
		LineWidth: e.lineWidth,
	}
	s.Drag, s.Dragging = e.SelectionDrag()
	if s.Draft != nil {
		s.Draft = s.Draft.Clone()
	}
	s.Text, s.HasText = e.TextEntry()
	if s.HasText && !s.Text.Editing.IsZero() {
		s.Items.Remove(s.Text.Editing)
	}
	if a, ok := s.Items.Get(e.selected); ok {
		s.Selected = a
		s.Handles = Handles(a)
	}
	if a, ok := s.Items.Get(e.hovered); ok && e.hovered != e.selected {
		s.Hovered = a
	}
	return s
}
