package window

import "runtime"

// Update produces one frame for a threaded window: it renders into its
// own target buffer and returns the buffer with its byte pitch.
type Update func(frame int, win *Window) (buf []uint8, pitch int, err error)

// RunThreaded opens a window on a dedicated OS thread and runs the frame
// loop there, calling update once per frame until the window closes or
// update fails. SDL requires window and renderer calls on the thread
// that created them, so the caller must not touch the Window outside
// update. The returned channel delivers the terminal error, nil on a
// normal close, and is then closed.
func RunThreaded(width, height int, update Update, opts ...Opt) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		win, err := New(width, height, opts...)
		if err != nil {
			done <- err
			return
		}
		defer win.Close()

		for frame := 0; win.Process(); frame++ {
			buf, pitch, err := update(frame, win)
			if err != nil {
				done <- err
				return
			}
			if err := win.DrawFrame(buf, pitch); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()
	return done
}
