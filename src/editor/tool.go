package editor

import "strings"

// Mode is the top-level state of an editing session.
type Mode int

const (
	// ModeSelecting waits for the user to drag out the capture region.
	ModeSelecting Mode = iota
	// ModeEditing annotates the captured region.
	ModeEditing
)

func (m Mode) String() string {
	if m == ModeEditing {
		return "editing"
	}
	return "selecting"
}

// Tool decides what a pointer press does while editing.
type Tool int

const (
	ToolSelect Tool = iota
	ToolRect
	ToolEllipse
	ToolArrow
	ToolPen
	ToolText
	ToolHighlight
	ToolBadge
)

var toolNames = [...]string{"select", "rect", "ellipse", "arrow", "pen", "text", "highlight", "badge"}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return "unknown"
	}
	return toolNames[t]
}

// ParseTool accepts the names produced by String plus a few aliases.
func ParseTool(s string) (Tool, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "rectangle":
		return ToolRect, true
	case "freehand", "stroke":
		return ToolPen, true
	case "number", "counter":
		return ToolBadge, true
	}
	for i, n := range toolNames {
		if n == s {
			return Tool(i), true
		}
	}
	return ToolSelect, false
}

// Tools lists every tool in toolbar order.
func Tools() []Tool {
	out := make([]Tool, len(toolNames))
	for i := range out {
		out[i] = Tool(i)
	}
	return out
}
