package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"screen-annotate/src/annotation"
	"screen-annotate/src/editor"
	"screen-annotate/src/geometry"
)

// Script is a recorded session: an optional fixed selection followed by the
// input events the overlay would have delivered.
type Script struct {
	Selection *Region   `json:"selection,omitempty"`
	Events    []RawStep `json:"events"`
}

type Region struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Region) Rect() geometry.Rect { return geometry.R(r.X, r.Y, r.Width, r.Height) }

// RawStep is one scripted event. Type picks which of the other fields apply.
type RawStep struct {
	Type    string   `json:"type"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Clicks  int      `json:"clicks,omitempty"`
	Key     string   `json:"key,omitempty"`
	Mods    []string `json:"mods,omitempty"`
	Text    string   `json:"text,omitempty"`
	Tool    string   `json:"tool,omitempty"`
	Color   string   `json:"color,omitempty"`
	Width   float64  `json:"width,omitempty"`
	Command string   `json:"command,omitempty"`
}

var namedKeys = map[string]editor.KeyCode{
	"escape":    editor.KeyEscape,
	"esc":       editor.KeyEscape,
	"enter":     editor.KeyEnter,
	"return":    editor.KeyEnter,
	"backspace": editor.KeyBackspace,
	"delete":    editor.KeyDelete,
}

var namedMods = map[string]editor.Modifiers{
	"shift": editor.ModShift,
	"cmd":   editor.ModCommand,
	"ctrl":  editor.ModCommand,
	"alt":   editor.ModAlt,
}

var commands = map[string]editor.CommandName{
	string(editor.CommandUndo):   editor.CommandUndo,
	string(editor.CommandRedo):   editor.CommandRedo,
	string(editor.CommandDelete): editor.CommandDelete,
	string(editor.CommandCopy):   editor.CommandCopy,
	string(editor.CommandSave):   editor.CommandSave,
	string(editor.CommandCancel): editor.CommandCancel,
}

// DecodeScript reads a script and converts every step to an editor event.
func DecodeScript(r io.Reader) (*Script, []editor.Event, error) {
	var s Script
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, nil, fmt.Errorf("invalid script: %w", err)
	}
	events := make([]editor.Event, 0, len(s.Events))
	for i, step := range s.Events {
		ev, err := step.Event()
		if err != nil {
			return nil, nil, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, ev)
	}
	return &s, events, nil
}

// Event converts the step to the editor event it describes.
func (s RawStep) Event() (editor.Event, error) {
	pos := geometry.Pt(s.X, s.Y)
	switch strings.ToLower(s.Type) {
	case "down":
		clicks := s.Clicks
		if clicks <= 0 {
			clicks = 1
		}
		return editor.PointerDown{Pos: pos, Clicks: clicks}, nil
	case "drag":
		return editor.PointerDrag{Pos: pos}, nil
	case "up":
		return editor.PointerUp{Pos: pos}, nil
	case "move":
		return editor.PointerMove{Pos: pos}, nil
	case "exit":
		return editor.PointerExit{}, nil
	case "key":
		k, err := parseKey(s.Key, s.Mods)
		if err != nil {
			return nil, err
		}
		return editor.KeyDown{Key: k}, nil
	case "text":
		return editor.TextInput{Text: s.Text}, nil
	case "tool":
		t, ok := editor.ParseTool(s.Tool)
		if !ok {
			return nil, fmt.Errorf("unknown tool %q", s.Tool)
		}
		return editor.SelectTool{Tool: t}, nil
	case "color":
		c, err := annotation.ParseColor(s.Color)
		if err != nil {
			return nil, err
		}
		return editor.SelectColor{Color: c}, nil
	case "width":
		return editor.SelectLineWidth{Width: s.Width}, nil
	case "command":
		name, ok := commands[strings.ToLower(s.Command)]
		if !ok {
			return nil, fmt.Errorf("unknown command %q", s.Command)
		}
		return editor.Command{Name: name}, nil
	}
	return nil, fmt.Errorf("unknown event type %q", s.Type)
}

func parseKey(name string, mods []string) (editor.Key, error) {
	var k editor.Key
	for _, m := range mods {
		bit, ok := namedMods[strings.ToLower(m)]
		if !ok {
			return k, fmt.Errorf("unknown modifier %q", m)
		}
		k.Mods |= bit
	}
	if code, ok := namedKeys[strings.ToLower(name)]; ok {
		k.Code = code
		return k, nil
	}
	r := []rune(name)
	if len(r) != 1 {
		return k, fmt.Errorf("unknown key %q", name)
	}
	k.Code, k.Char = editor.KeyChar, r[0]
	return k, nil
}
