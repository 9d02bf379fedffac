// Package stream serves rendered frames to websocket clients as PNG
// images, for headless hosts that want to watch the engine output from a
// browser. Duplicate frames are detected by hash and skipped.
package stream

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"time"

	"github.com/cespare/xxhash"
	"github.com/gorilla/websocket"

	"github.com/tilengo/tilengo/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Server broadcasts frames to every connected websocket client.
type Server struct {
	width, height int

	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte

	lastHash uint64
	log      log.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Opt configures a Server during New.
type Opt func(*Server)

// WithLogger installs a logger; the default discards everything.
func WithLogger(l log.Logger) Opt {
	return func(s *Server) {
		s.log = l
	}
}

// New creates a frame server for the given output resolution.
func New(width, height int, opts ...Opt) *Server {
	s := &Server{
		width:      width,
		height:     height,
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 4),
		log:        log.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PushFrame queues one rendered frame for broadcast. buf is the engine
// render target in RGBA byte order with the given byte pitch. Frames
// identical to the previous one are dropped, and a slow broadcast loop
// drops frames rather than blocking the render loop.
func (s *Server) PushFrame(buf []uint8, pitch int) {
	h := xxhash.Sum64(buf)
	if h == s.lastHash {
		return
	}
	s.lastHash = h

	img := &image.RGBA{
		Pix:    buf,
		Stride: pitch,
		Rect:   image.Rect(0, 0, s.width, s.height),
	}
	var enc bytes.Buffer
	if err := png.Encode(&enc, img); err != nil {
		s.log.Errorf("frame encode: %v", err)
		return
	}
	select {
	case s.broadcast <- enc.Bytes():
	default:
	}
}

// Run serves websocket clients on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/frames", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Errorf("upgrade %s: %v", r.RemoteAddr, err)
			return
		}
		c := &client{conn: conn, send: make(chan []byte, 8)}
		s.register <- c
		go s.writePump(c)
		go s.readPump(c)
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	go s.loop(ctx)

	s.log.Infof("frame server listening on %s", addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range s.clients {
				close(c.send)
				delete(s.clients, c)
			}
			return
		case c := <-s.register:
			s.clients[c] = true
			s.log.Debugf("client connected, %d total", len(s.clients))
		case c := <-s.unregister:
			if _, ok := s.clients[c]; ok {
				delete(s.clients, c)
				close(c.send)
			}
			s.log.Debugf("client disconnected, %d total", len(s.clients))
		case frame := <-s.broadcast:
			for c := range s.clients {
				select {
				case c.send <- frame:
				default:
					// slow client, skip this frame for it
				}
			}
		}
	}
}

func (s *Server) writePump(c *client) {
	defer c.conn.Close()
	for frame := range c.send {
		if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *Server) readPump(c *client) {
	defer func() {
		s.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
