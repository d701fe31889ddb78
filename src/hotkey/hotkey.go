// Package hotkey watches for the global capture shortcut.
package hotkey

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
	"go.uber.org/zap"
)

var ErrInvalidHotkey = errors.New("invalid hotkey")

// Windows virtual-key codes as reported in gohook's Rawcode.
var namedRawcodes = map[string][]uint16{
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

	"space":       {32},
	"enter":       {13},
	"esc":         {27},
	"tab":         {9},
	"backspace":   {8},
	"delete":      {46},
	"insert":      {45},
	"home":        {36},
	"end":         {35},
	"pageup":      {33},
	"pagedown":    {34},
	"left":        {37},
	"up":          {38},
	"right":       {39},
	"down":        {40},
	"printscreen": {44},
}

var aliases = map[string]string{
	"control": "ctrl",
	"win":     "cmd",
	"super":   "cmd",
	"command": "cmd",
	"option":  "alt",
	"return":  "enter",
	"escape":  "esc",
	"del":     "delete",
	"ins":     "insert",
	"pgup":    "pageup",
	"pgdn":    "pagedown",
	"prtsc":   "printscreen",
}

// keyNameToRawcodes maps a normalized key name to its rawcodes. Modifiers map
// to both the left and right variants.
func keyNameToRawcodes(name string) []uint16 {
	if codes, ok := namedRawcodes[name]; ok {
		return codes
	}
	if len(name) == 1 {
		switch c := name[0]; {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c-'a') + 65}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c-'0') + 48}
		}
	}
	var n int
	if _, err := fmt.Sscanf(name, "f%d", &n); err == nil && n >= 1 && n <= 24 && name == fmt.Sprintf("f%d", n) {
		return []uint16{uint16(111 + n)}
	}
	return nil
}

// parseHotkey converts a hotkey string like "Ctrl+Shift+8" to normalized key names.
func parseHotkey(combo string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(combo), "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if a, ok := aliases[part]; ok {
			part = a
		}
		keys = append(keys, part)
	}
	return keys
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// matcher tracks which keys of one combination are held.
type matcher struct {
	mu   sync.Mutex
	keys []keyState
}

func newMatcher(combo string) (*matcher, error) {
	names := parseHotkey(combo)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %q is empty", ErrInvalidHotkey, combo)
	}
	m := &matcher{}
	for _, name := range names {
		codes := keyNameToRawcodes(name)
		if len(codes) == 0 {
			return nil, fmt.Errorf("%w: unknown key %q in %q", ErrInvalidHotkey, name, combo)
		}
		m.keys = append(m.keys, keyState{name: name, rawcodes: codes})
	}
	return m, nil
}

// press records a key-down and reports whether it completed the combination.
// A completed combination resets so holding the keys fires once.
func (m *matcher) press(rawcode uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(rawcode, true)
	for _, k := range m.keys {
		if !k.pressed {
			return false
		}
	}
	for i := range m.keys {
		m.keys[i].pressed = false
	}
	return true
}

func (m *matcher) release(rawcode uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(rawcode, false)
}

func (m *matcher) set(rawcode uint16, pressed bool) {
	for i := range m.keys {
		for _, c := range m.keys[i].rawcodes {
			if c == rawcode {
				m.keys[i].pressed = pressed
			}
		}
	}
}

// Validate reports whether combo can be listened for.
func Validate(combo string) error {
	_, err := newMatcher(combo)
	return err
}

// Listen registers combo and calls callback on its own goroutine each time the
// combination is pressed. Stop ends every listener.
func Listen(combo string, callback func()) error {
	m, err := newMatcher(combo)
	if err != nil {
		return err
	}
	log := zap.L().Named("hotkey")
	log.Info("hotkey listener configured", zap.String("hotkey", combo))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic in hotkey goroutine", zap.Any("panic", r))
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Error("gohook.Start returned nil channel")
			return
		}
		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				if m.press(ev.Rawcode) {
					log.Info("hotkey activated", zap.String("hotkey", combo))
					if callback != nil {
						callback()
					}
				}
			case gohook.KeyUp:
				m.release(ev.Rawcode)
			}
		}
		log.Debug("hook event channel closed")
	}()
	return nil
}

// Stop unhooks the keyboard and ends all listeners.
func Stop() { gohook.End() }
