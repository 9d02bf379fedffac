// Package window is a built-in SDL2 debug window: it presents the engine's
// render target on screen, maps keyboard and game controller state to a
// small input bitmap and paces the frame loop. Production hosts embed the
// engine in their own output path; the window exists so samples and tools
// run standalone.
package window

import (
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/tilengo/tilengo/pkg/log"
)

// Input identifies one digital input of the simulated pad.
type Input int

const (
	InputNone Input = iota
	InputUp
	InputDown
	InputLeft
	InputRight
	InputButton1
	InputButton2
	InputButton3
	InputButton4
	InputButton5
	InputButton6
	InputStart
	InputQuit

	numInputs
)

// MaxPlayers is the number of input pads tracked by a window. The
// keyboard always drives pad 0; joysticks are assigned by instance id.
const MaxPlayers = 4

// Window owns the SDL resources used to present frames.
type Window struct {
	win *sdl.Window
	ren *sdl.Renderer
	tex *sdl.Texture

	width  int
	height int

	keymap    [numInputs]sdl.Keycode
	state     [MaxPlayers][numInputs]bool
	joyPlayer map[sdl.JoystickID]int

	running bool
	log     log.Logger
}

// Opt configures a Window during New.
type Opt func(*config)

type config struct {
	title      string
	scale      int
	fullscreen bool
	vsync      bool
	log        log.Logger
}

// WithTitle sets the window title.
func WithTitle(title string) Opt {
	return func(c *config) { c.title = title }
}

// WithScale sets the integer upscale factor of the output.
func WithScale(scale int) Opt {
	return func(c *config) { c.scale = scale }
}

// WithFullscreen opens a borderless fullscreen window.
func WithFullscreen() Opt {
	return func(c *config) { c.fullscreen = true }
}

// WithVSync synchronizes presentation to the display refresh.
func WithVSync() Opt {
	return func(c *config) { c.vsync = true }
}

// WithLogger installs a logger; the default discards everything.
func WithLogger(l log.Logger) Opt {
	return func(c *config) { c.log = l }
}

// New opens a window presenting frames of the given resolution.
func New(width, height int, opts ...Opt) (*Window, error) {
	c := config{title: "tilengo", scale: 2, log: log.NewNullLogger()}
	for _, opt := range opts {
		opt(&c)
	}
	if c.scale < 1 {
		c.scale = 1
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_JOYSTICK); err != nil {
		return nil, err
	}

	var winFlags uint32 = sdl.WINDOW_SHOWN
	if c.fullscreen {
		winFlags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}
	win, err := sdl.CreateWindow(c.title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(width*c.scale), int32(height*c.scale), winFlags)
	if err != nil {
		sdl.Quit()
		return nil, err
	}

	var renFlags uint32 = sdl.RENDERER_ACCELERATED
	if c.vsync {
		renFlags |= sdl.RENDERER_PRESENTVSYNC
	}
	ren, err := sdl.CreateRenderer(win, -1, renFlags)
	if err != nil {
		win.Destroy()
		sdl.Quit()
		return nil, err
	}
	ren.SetLogicalSize(int32(width), int32(height))

	// ABGR8888 matches the engine's R,G,B,A byte order on little-endian
	tex, err := ren.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STREAMING,
		int32(width), int32(height))
	if err != nil {
		ren.Destroy()
		win.Destroy()
		sdl.Quit()
		return nil, err
	}

	w := &Window{
		win:       win,
		ren:       ren,
		tex:       tex,
		width:     width,
		height:    height,
		joyPlayer: make(map[sdl.JoystickID]int),
		running:   true,
		log:       c.log,
	}
	w.defaultKeymap()
	w.log.Infof("window opened, %dx%d scale %d", width, height, c.scale)
	return w, nil
}

func (w *Window) defaultKeymap() {
	w.keymap = [numInputs]sdl.Keycode{
		InputUp:      sdl.K_UP,
		InputDown:    sdl.K_DOWN,
		InputLeft:    sdl.K_LEFT,
		InputRight:   sdl.K_RIGHT,
		InputButton1: sdl.K_z,
		InputButton2: sdl.K_x,
		InputButton3: sdl.K_c,
		InputButton4: sdl.K_v,
		InputButton5: sdl.K_s,
		InputButton6: sdl.K_d,
		InputStart:   sdl.K_RETURN,
		InputQuit:    sdl.K_ESCAPE,
	}
}

// DefineInputKey rebinds an input to a keycode.
func (w *Window) DefineInputKey(in Input, key sdl.Keycode) {
	if in <= InputNone || in >= numInputs {
		return
	}
	w.keymap[in] = key
}

// AssignInputJoystick routes a joystick instance to a player pad.
func (w *Window) AssignInputJoystick(player int, id sdl.JoystickID) {
	if player < 0 || player >= MaxPlayers {
		return
	}
	w.joyPlayer[id] = player
}

// GetInput reports whether the input is currently held on pad 0.
func (w *Window) GetInput(in Input) bool {
	return w.GetPlayerInput(0, in)
}

// GetPlayerInput reports whether the input is currently held on the given
// pad.
func (w *Window) GetPlayerInput(player int, in Input) bool {
	if player < 0 || player >= MaxPlayers || in <= InputNone || in >= numInputs {
		return false
	}
	return w.state[player][in]
}

// Active reports whether the window is still open.
func (w *Window) Active() bool {
	return w.running
}

// Process pumps pending events and refreshes the input state. It returns
// false once the window was closed or the quit input pressed.
func (w *Window) Process() bool {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch e := ev.(type) {
		case *sdl.QuitEvent:
			w.running = false
		case *sdl.KeyboardEvent:
			pressed := e.Type == sdl.KEYDOWN
			for in, key := range w.keymap {
				if key == e.Keysym.Sym {
					w.state[0][in] = pressed
				}
			}
			if pressed && e.Keysym.Sym == w.keymap[InputQuit] {
				w.running = false
			}
		case *sdl.JoyAxisEvent:
			pad := w.pad(e.Which)
			switch e.Axis {
			case 0:
				w.state[pad][InputLeft] = e.Value < -8192
				w.state[pad][InputRight] = e.Value > 8192
			case 1:
				w.state[pad][InputUp] = e.Value < -8192
				w.state[pad][InputDown] = e.Value > 8192
			}
		case *sdl.JoyButtonEvent:
			in := InputButton1 + Input(e.Button)
			if in >= InputButton1 && in <= InputButton6 {
				w.state[w.pad(e.Which)][in] = e.State == sdl.PRESSED
			}
		}
	}
	return w.running
}

func (w *Window) pad(id sdl.JoystickID) int {
	if p, ok := w.joyPlayer[id]; ok {
		return p
	}
	return int(id) % MaxPlayers
}

// DrawFrame presents one rendered frame. buf is the engine render target,
// pitch bytes per row.
func (w *Window) DrawFrame(buf []uint8, pitch int) error {
	if err := w.tex.Update(nil, unsafe.Pointer(&buf[0]), pitch); err != nil {
		return err
	}
	if err := w.ren.Copy(w.tex, nil, nil); err != nil {
		return err
	}
	w.ren.Present()
	return nil
}

// SetTitle changes the window title.
func (w *Window) SetTitle(title string) {
	w.win.SetTitle(title)
}

// Ticks returns milliseconds since SDL initialization.
func Ticks() uint32 {
	return sdl.GetTicks()
}

// Delay sleeps for the given milliseconds.
func Delay(ms uint32) {
	sdl.Delay(ms)
}

// Close destroys the window and shuts SDL down.
func (w *Window) Close() {
	w.tex.Destroy()
	w.ren.Destroy()
	w.win.Destroy()
	sdl.Quit()
	w.running = false
	w.log.Infof("window closed")
}
