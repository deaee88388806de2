package opengl

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"tankviewer/input"
	"tankviewer/picking"
)

// WindowConfig describes the window to open
type WindowConfig struct {
	Width, Height int
	Title         string
	VSync         bool
}

// Window is a GLFW window whose callbacks feed an input queue
type Window struct {
	window *glfw.Window
	device *Device
	queue  *input.Queue
}

// NewWindow opens a window with an OpenGL 4.1 core context and returns it
// with a Device bound to that context. Must be called from main.
func NewWindow(cfg WindowConfig, queue *input.Queue) (*Window, error) {
	runtime.LockOSThread()

	// Initialize GLFW
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("%w: initialize GLFW: %v", ErrContext, err)
	}

	// Configure OpenGL context
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 4)

	// Create window
	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("%w: create window: %v", ErrContext, err)
	}
	window.MakeContextCurrent()

	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	w := &Window{window: window, queue: queue}
	device, err := NewDevice(window.SwapBuffers, window.GetFramebufferSize)
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, err
	}
	w.device = device

	// Setup callbacks
	window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		w.onKey(key, action)
	})
	window.SetCharCallback(func(_ *glfw.Window, char rune) {
		w.queue.Push(input.Event{Kind: input.Char, Rune: char})
	})
	window.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		w.queue.Push(input.Event{Kind: input.Wheel, DeltaY: yoff})
	})
	window.SetMouseButtonCallback(func(win *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		x, y := win.GetCursorPos()
		switch action {
		case glfw.Press:
			w.queue.Push(input.Event{Kind: input.PointerDown, X: x, Y: y})
		case glfw.Release:
			w.queue.Push(input.Event{Kind: input.PointerUp, X: x, Y: y})
		}
	})
	window.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		w.queue.Push(input.Event{Kind: input.PointerMove, X: xpos, Y: ypos})
	})

	return w, nil
}

func (w *Window) onKey(key glfw.Key, action glfw.Action) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}
	var k input.Key
	switch key {
	case glfw.KeyLeft:
		k = input.KeyLeft
	case glfw.KeyRight:
		k = input.KeyRight
	case glfw.KeyUp:
		k = input.KeyUp
	case glfw.KeyDown:
		k = input.KeyDown
	case glfw.KeyEscape:
		k = input.KeyEscape
	default:
		return
	}
	w.queue.Push(input.Event{Kind: input.KeyPress, Key: k})
}

// Device returns the GL device bound to this window's context.
func (w *Window) Device() *Device { return w.device }

// Viewport returns the framebuffer size and the window's pixel ratio.
func (w *Window) Viewport() picking.Viewport {
	fw, fh := w.window.GetFramebufferSize()
	ww, _ := w.window.GetSize()
	ratio := 1.0
	if ww > 0 {
		ratio = float64(fw) / float64(ww)
	}
	return picking.Viewport{Width: fw, Height: fh, PixelRatio: ratio}
}

// ShouldClose returns true if the window should close
func (w *Window) ShouldClose() bool {
	return w.window.ShouldClose()
}

// RequestClose asks the loop to stop after the current frame.
func (w *Window) RequestClose() {
	w.window.SetShouldClose(true)
}

// PollEvents processes window events
func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// Terminate releases the device's shared state and the window. Meshes and
// the program belong to the renderer and must be disposed first.
func (w *Window) Terminate() {
	w.device.Release()
	w.window.Destroy()
	glfw.Terminate()
}
