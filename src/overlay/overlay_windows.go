//go:build windows

package overlay

import (
	"context"
	"fmt"
	"image"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"unicode/utf16"
	"unsafe"

	"github.com/lxn/win"
	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"screen-annotate/src/compositor"
	"screen-annotate/src/editor"
	"screen-annotate/src/geometry"
)

const (
	className   = "ScreenAnnotateOverlay"
	windowTitle = "Screen Annotate - drag to select, ESC cancels"
	eventBuffer = 256
)

var (
	procAllowSetForegroundWindow = windows.NewLazySystemDLL("user32.dll").NewProc("AllowSetForegroundWindow")

	registerOnce sync.Once
	registerErr  error
	classPtr     *uint16
	crossCursor  win.HCURSOR

	hostsMu sync.Mutex
	hosts   = map[win.HWND]*winHost{}
	// creating receives the messages CreateWindowEx sends before the handle
	// is known.
	creating atomic.Pointer[winHost]
)

type winHost struct {
	log    *zap.Logger
	events chan editor.Event
	done   chan struct{}
	exited chan struct{}

	hwnd     win.HWND
	backdrop image.Image
	width    int32
	height   int32

	mu       sync.Mutex
	scene    editor.Scene
	hasScene bool

	// UI thread only.
	frame     *image.RGBA
	memDC     win.HDC
	bitmap    win.HBITMAP
	oldBitmap win.HGDIOBJ
	bits      []byte
	tracking  bool
	captured  bool
	surrogate uint16

	closeOnce sync.Once
}

func newHost() Host {
	return &winHost{
		log:    zap.L().Named("overlay"),
		events: make(chan editor.Event, eventBuffer),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

func (h *winHost) Events() <-chan editor.Event { return h.events }

// Open creates the window on a dedicated OS thread and returns once it is
// visible or has failed.
func (h *winHost) Open(ctx context.Context, backdrop image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if backdrop == nil {
		return fmt.Errorf("overlay needs a backdrop")
	}
	h.backdrop = backdrop
	h.width = int32(backdrop.Bounds().Dx())
	h.height = int32(backdrop.Bounds().Dy())

	ready := make(chan error, 1)
	go h.run(ready)
	select {
	case err := <-ready:
		return err
	case <-ctx.Done():
		// run tears the window down once it sees done.
		h.closeOnce.Do(func() { close(h.done) })
		return ctx.Err()
	}
}

// run owns the window. The goroutine keeps its OS thread locked until it
// returns so the thread, and any message left in its queue, dies with it.
func (h *winHost) run(ready chan<- error) {
	runtime.LockOSThread()
	defer close(h.exited)
	defer close(h.events)

	if err := h.create(); err != nil {
		ready <- err
		return
	}
	defer h.releaseSurface()
	ready <- nil
	select {
	case <-h.done:
		win.DestroyWindow(h.hwnd)
	default:
	}

	var msg win.MSG
	for {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 {
			break
		}
		if ret == -1 {
			h.log.Warn("GetMessage failed")
			break
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
	h.log.Debug("message loop finished")
}

func registerClass() error {
	registerOnce.Do(func() {
		crossCursor = win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_CROSS))
		classPtr, registerErr = syscall.UTF16PtrFromString(className)
		if registerErr != nil {
			return
		}
		wc := win.WNDCLASSEX{
			CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
			Style:         win.CS_DBLCLKS,
			LpfnWndProc:   syscall.NewCallback(wndProc),
			HInstance:     win.GetModuleHandle(nil),
			HCursor:       crossCursor,
			LpszClassName: classPtr,
		}
		if win.RegisterClassEx(&wc) == 0 {
			registerErr = fmt.Errorf("failed to register window class")
		}
	})
	return registerErr
}

func (h *winHost) create() error {
	if err := registerClass(); err != nil {
		return err
	}

	// The backdrop covers the virtual screen, so the window does too.
	vx := win.GetSystemMetrics(win.SM_XVIRTUALSCREEN)
	vy := win.GetSystemMetrics(win.SM_YVIRTUALSCREEN)

	creating.Store(h)
	hwnd := win.CreateWindowEx(
		win.WS_EX_TOPMOST|win.WS_EX_TOOLWINDOW,
		classPtr,
		syscall.StringToUTF16Ptr(windowTitle),
		win.WS_POPUP,
		vx, vy, h.width, h.height,
		0, 0, win.GetModuleHandle(nil), nil,
	)
	creating.Store(nil)
	if hwnd == 0 {
		return fmt.Errorf("failed to create overlay window")
	}
	h.attach(hwnd)

	if err := h.allocSurface(); err != nil {
		win.DestroyWindow(hwnd)
		return err
	}

	win.ShowWindow(hwnd, win.SW_SHOW)
	_, _, _ = procAllowSetForegroundWindow.Call(uintptr(os.Getpid()))
	win.SetForegroundWindow(hwnd)
	win.BringWindowToTop(hwnd)
	win.SetFocus(hwnd)
	win.UpdateWindow(hwnd)
	h.log.Info("overlay shown", zap.Int32("x", vx), zap.Int32("y", vy), zap.Int32("w", h.width), zap.Int32("h", h.height))
	return nil
}

func (h *winHost) attach(hwnd win.HWND) {
	h.hwnd = hwnd
	hostsMu.Lock()
	hosts[hwnd] = h
	hostsMu.Unlock()
}

func lookup(hwnd win.HWND) *winHost {
	hostsMu.Lock()
	h := hosts[hwnd]
	hostsMu.Unlock()
	if h == nil {
		if h = creating.Load(); h != nil {
			h.attach(hwnd)
		}
	}
	return h
}

// allocSurface creates the top-down 32bpp DIB frames are copied into.
func (h *winHost) allocSurface() error {
	screenDC := win.GetDC(0)
	defer win.ReleaseDC(0, screenDC)

	h.memDC = win.CreateCompatibleDC(screenDC)
	if h.memDC == 0 {
		return fmt.Errorf("failed to create memory DC")
	}
	bi := win.BITMAPINFOHEADER{
		BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
		BiWidth:       h.width,
		BiHeight:      -h.height,
		BiPlanes:      1,
		BiBitCount:    32,
		BiCompression: win.BI_RGB,
	}
	var bits unsafe.Pointer
	h.bitmap = win.CreateDIBSection(h.memDC, &bi, win.DIB_RGB_COLORS, &bits, 0, 0)
	if h.bitmap == 0 || bits == nil {
		win.DeleteDC(h.memDC)
		h.memDC = 0
		return fmt.Errorf("failed to create frame bitmap")
	}
	h.oldBitmap = win.SelectObject(h.memDC, win.HGDIOBJ(h.bitmap))
	h.bits = unsafe.Slice((*byte)(bits), int(h.width)*int(h.height)*4)
	h.frame = image.NewRGBA(image.Rect(0, 0, int(h.width), int(h.height)))
	return nil
}

func (h *winHost) releaseSurface() {
	if h.memDC == 0 {
		return
	}
	win.SelectObject(h.memDC, h.oldBitmap)
	win.DeleteObject(win.HGDIOBJ(h.bitmap))
	win.DeleteDC(h.memDC)
	h.memDC = 0
	h.bits = nil
}

// Present stores s and asks the window to repaint. It may be called from any
// goroutine.
func (h *winHost) Present(s editor.Scene) {
	h.mu.Lock()
	h.scene = s
	h.hasScene = true
	h.mu.Unlock()
	if h.hwnd != 0 {
		win.InvalidateRect(h.hwnd, nil, false)
	}
}

// Close destroys the window and waits for its thread to finish.
func (h *winHost) Close() error {
	h.closeOnce.Do(func() {
		close(h.done)
		if h.hwnd != 0 {
			win.PostMessage(h.hwnd, win.WM_CLOSE, 0, 0)
		}
	})
	if h.hwnd != 0 {
		<-h.exited
	}
	return nil
}

// emit forwards ev unless the host is closing.
func (h *winHost) emit(ev editor.Event) {
	select {
	case h.events <- ev:
	case <-h.done:
	}
}

func (h *winHost) currentScene() (editor.Scene, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scene, h.hasScene
}

func (h *winHost) paint(hwnd win.HWND) {
	var ps win.PAINTSTRUCT
	hdc := win.BeginPaint(hwnd, &ps)
	defer win.EndPaint(hwnd, &ps)
	if h.bits == nil {
		return
	}

	scene, ok := h.currentScene()
	if !ok {
		scene = editor.Scene{Mode: editor.ModeSelecting}
	}
	if err := compositor.RenderFrame(h.frame, h.backdrop, scene); err != nil {
		h.log.Warn("render failed", zap.Error(err))
		return
	}
	toBGRA(h.bits, h.frame.Pix)
	win.BitBlt(hdc, 0, 0, h.width, h.height, h.memDC, 0, 0, win.SRCCOPY)
}

// toBGRA copies RGBA pixels into a DIB, which stores blue first.
func toBGRA(dst, src []byte) {
	n := min(len(dst), len(src))
	for i := 0; i+3 < n; i += 4 {
		dst[i+0] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i+0]
		dst[i+3] = src[i+3]
	}
}

func pointerPos(lParam uintptr) geometry.Point {
	return geometry.Pt(float64(win.GET_X_LPARAM(lParam)), float64(win.GET_Y_LPARAM(lParam)))
}

func keyDown(vk int32) bool { return win.GetKeyState(vk) < 0 }

func modifiers() editor.Modifiers {
	var m editor.Modifiers
	if keyDown(win.VK_SHIFT) {
		m |= editor.ModShift
	}
	if keyDown(win.VK_CONTROL) {
		m |= editor.ModCommand
	}
	if keyDown(win.VK_MENU) {
		m |= editor.ModAlt
	}
	return m
}

// translateKey maps a virtual key to an editor key. Letters and digits
// arrive as KeyChar so shortcuts work; typed text comes from WM_CHAR.
func translateKey(vk uintptr, mods editor.Modifiers) (editor.Key, bool) {
	k := editor.Key{Mods: mods}
	switch {
	case vk == win.VK_ESCAPE:
		k.Code = editor.KeyEscape
	case vk == win.VK_RETURN:
		k.Code = editor.KeyEnter
	case vk == win.VK_BACK:
		k.Code = editor.KeyBackspace
	case vk == win.VK_DELETE:
		k.Code = editor.KeyDelete
	case vk >= 'A' && vk <= 'Z':
		k.Code, k.Char = editor.KeyChar, rune(vk-'A'+'a')
	case vk >= '0' && vk <= '9':
		k.Code, k.Char = editor.KeyChar, rune(vk)
	case vk == win.VK_OEM_4:
		k.Code, k.Char = editor.KeyChar, '['
	case vk == win.VK_OEM_6:
		k.Code, k.Char = editor.KeyChar, ']'
	case vk == win.VK_OEM_COMMA:
		k.Code, k.Char = editor.KeyChar, ','
	case vk == win.VK_OEM_PERIOD:
		k.Code, k.Char = editor.KeyChar, '.'
	default:
		return k, false
	}
	return k, true
}

// typed decodes one WM_CHAR unit, joining surrogate pairs.
func (h *winHost) typed(unit uint16) (string, bool) {
	switch {
	case utf16.IsSurrogate(rune(unit)) && unit < 0xdc00:
		h.surrogate = unit
		return "", false
	case utf16.IsSurrogate(rune(unit)):
		r := utf16.DecodeRune(rune(h.surrogate), rune(unit))
		h.surrogate = 0
		return string(r), r != 0xfffd
	case unit < 0x20 || unit == 0x7f:
		return "", false
	}
	return string(rune(unit)), true
}

func wndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	h := lookup(hwnd)
	if h == nil {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	switch msg {
	case win.WM_LBUTTONDOWN, win.WM_LBUTTONDBLCLK:
		win.SetCapture(hwnd)
		h.captured = true
		clicks := 1
		if msg == win.WM_LBUTTONDBLCLK {
			clicks = 2
		}
		h.emit(editor.PointerDown{Pos: pointerPos(lParam), Clicks: clicks})
		return 0

	case win.WM_MOUSEMOVE:
		if !h.tracking {
			tme := win.TRACKMOUSEEVENT{
				CbSize:    uint32(unsafe.Sizeof(win.TRACKMOUSEEVENT{})),
				DwFlags:   win.TME_LEAVE,
				HwndTrack: hwnd,
			}
			h.tracking = win.TrackMouseEvent(&tme)
		}
		if h.captured {
			h.emit(editor.PointerDrag{Pos: pointerPos(lParam)})
		} else {
			h.emit(editor.PointerMove{Pos: pointerPos(lParam)})
		}
		return 0

	case win.WM_LBUTTONUP:
		if h.captured {
			h.captured = false
			win.ReleaseCapture()
			h.emit(editor.PointerUp{Pos: pointerPos(lParam)})
		}
		return 0

	case win.WM_MOUSELEAVE:
		h.tracking = false
		if !h.captured {
			h.emit(editor.PointerExit{})
		}
		return 0

	case win.WM_KEYDOWN, win.WM_SYSKEYDOWN:
		k, ok := translateKey(wParam, modifiers())
		if !ok {
			break
		}
		scene, _ := h.currentScene()
		if ev, ok := toolbarShortcut(k, scene); ok {
			h.emit(ev)
		} else {
			h.emit(editor.KeyDown{Key: k})
		}
		return 0

	case win.WM_CHAR:
		if s, ok := h.typed(uint16(wParam)); ok {
			h.emit(editor.TextInput{Text: s})
		}
		return 0

	case win.WM_SETCURSOR:
		win.SetCursor(crossCursor)
		return 1

	case win.WM_NCHITTEST:
		return uintptr(win.HTCLIENT)

	case win.WM_ERASEBKGND:
		return 1

	case win.WM_PAINT:
		h.paint(hwnd)
		return 0

	case win.WM_DISPLAYCHANGE:
		// The frozen backdrop no longer matches the screen.
		h.log.Info("display changed, closing overlay")
		win.DestroyWindow(hwnd)
		return 0

	case win.WM_CLOSE:
		win.DestroyWindow(hwnd)
		return 0

	case win.WM_DESTROY:
		hostsMu.Lock()
		delete(hosts, hwnd)
		hostsMu.Unlock()
		// This thread exits with the loop, so the quit message cannot leak
		// into a later overlay.
		win.PostQuitMessage(0)
		return 0
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}
