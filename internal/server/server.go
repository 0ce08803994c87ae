package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/philipparndt/plmview/internal/config"
	"github.com/philipparndt/plmview/internal/loader"
	"github.com/philipparndt/plmview/pkg/export"
	"github.com/philipparndt/plmview/pkg/scene"
	"github.com/philipparndt/plmview/pkg/viewer"
	"github.com/philipparndt/plmview/pkg/watcher"
)

// Message types sent to websocket clients
const (
	TypeHello  = "hello"
	TypeState  = "state"
	TypeReload = "reload"
	TypeError  = "error"
)

// maxThumbnailSize bounds the size query parameter of /thumbnail.png
const maxThumbnailSize = 2048

// Message is one websocket message from the server
type Message struct {
	Type   string       `json:"type"`
	Client string       `json:"client,omitempty"`
	State  *scene.State `json:"state,omitempty"`
	Error  string       `json:"error,omitempty"`
}

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Server hosts one viewer for browser clients. The viewer is rebuilt when
// the source file or one of its dependencies changes.
type Server struct {
	path string
	cfg  config.Config

	mu     sync.RWMutex
	source *loader.Source
	viewer *scene.Viewer
	// reloaded is closed and replaced on every reload
	reloaded chan struct{}

	clientsMu sync.Mutex
	clients   map[uuid.UUID]*client
	upgrader  websocket.Upgrader
}

// New creates a server for the model at path
func New(path string, cfg config.Config) *Server {
	return &Server{
		path:     path,
		cfg:      cfg,
		reloaded: make(chan struct{}),
		clients:  make(map[uuid.UUID]*client),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Viewer returns the live viewer, nil before the first load
func (s *Server) Viewer() *scene.Viewer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewer
}

// Dependencies lists the files of the current source
func (s *Server) Dependencies() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.source == nil {
		return nil
	}
	return s.source.Dependencies
}

// Reload opens the source again and swaps in a fresh viewer. On failure
// the previous viewer stays live. A viewer without renderer is kept: its
// state carries the warning clients display.
func (s *Server) Reload(ctx context.Context) error {
	src, err := loader.Open(ctx, s.path, s.cfg)
	if err != nil {
		s.broadcast(Message{Type: TypeError, Error: err.Error()})
		return err
	}
	v, err := src.NewViewer(ctx)
	if err != nil && !errors.Is(err, scene.ErrRendererUnavailable) {
		src.Close()
		s.broadcast(Message{Type: TypeError, Error: err.Error()})
		return err
	}

	s.mu.Lock()
	old := s.source
	s.source, s.viewer = src, v
	close(s.reloaded)
	s.reloaded = make(chan struct{})
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	log.Printf("Loaded %s (%s)", s.path, src.Kind)
	s.broadcast(Message{Type: TypeReload})
	return nil
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/tree", s.handleTree)
	mux.HandleFunc("GET /api/actions", s.handleActions)
	mux.HandleFunc("POST /api/command", s.handleCommand)
	mux.HandleFunc("GET /model.glb", s.handleModel)
	mux.HandleFunc("GET /thumbnail.png", s.handleThumbnail)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return mux
}

// Run loads the model, serves HTTP on addr and broadcasts state changes
// until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	if err := s.Reload(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.cfg.Server.Watch && !loader.IsRemote(s.path) {
		fw, err := s.watch(ctx)
		if err != nil {
			log.Printf("Warning: file watching disabled: %v", err)
		} else {
			defer fw.Close()
		}
	}

	go s.publish(ctx)

	httpServer := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("Starting web server on http://localhost%s", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.closeClients()
	return nil
}

func (s *Server) watch(ctx context.Context) (*watcher.FileWatcher, error) {
	fw, err := watcher.NewFileWatcher(s.cfg.Server.Debounce.Duration)
	if err != nil {
		return nil, err
	}

	var onChange func([]string)
	onChange = func(files []string) {
		log.Printf("Changed: %v, reloading", files)
		if err := s.Reload(ctx); err != nil {
			log.Printf("Reload failed: %v", err)
			return
		}
		if err := fw.Watch(s.Dependencies(), onChange); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
	if err := fw.Watch(s.Dependencies(), onChange); err != nil {
		fw.Close()
		return nil, err
	}

	go func() {
		if err := fw.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Watcher stopped: %v", err)
		}
	}()
	log.Printf("Watching %d files for changes", len(fw.Files()))
	return fw, nil
}

// publish runs the render loop of the live viewer and broadcasts its state
// after every change, restarting the loop on reload.
func (s *Server) publish(ctx context.Context) {
	for {
		s.mu.RLock()
		v, reloaded := s.viewer, s.reloaded
		s.mu.RUnlock()

		loopCtx, cancel := context.WithCancel(ctx)
		go scene.RenderLoop(loopCtx, v, s.cfg.Server.FrameInterval.Duration, func(scene.Frame) {
			state := v.State()
			s.broadcast(Message{Type: TypeState, State: &state})
		})

		select {
		case <-ctx.Done():
			cancel()
			return
		case <-reloaded:
			cancel()
		}
	}
}

func (s *Server) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	s.clientsMu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.clientsMu.Unlock()

	for _, c := range clients {
		if err := c.send(data); err != nil {
			log.Printf("WebSocket write error: %v", err)
			s.removeClient(c)
		}
	}
}

func (s *Server) removeClient(c *client) {
	s.clientsMu.Lock()
	delete(s.clients, c.id)
	s.clientsMu.Unlock()
	c.conn.Close()
}

func (s *Server) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for id, c := range s.clients {
		c.conn.Close()
		delete(s.clients, id)
	}
}

// ClientCount returns the number of connected websocket clients
func (s *Server) ClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

func (s *Server) live(w http.ResponseWriter) *scene.Viewer {
	v := s.Viewer()
	if v == nil {
		http.Error(w, "no model loaded", http.StatusServiceUnavailable)
	}
	return v
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if v := s.live(w); v != nil {
		writeJSON(w, v.State())
	}
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	v := s.live(w)
	if v == nil {
		return
	}
	menu := v.Menu()
	if menu == nil {
		http.Error(w, "model has no part tree", http.StatusNotFound)
		return
	}
	writeJSON(w, struct {
		Tree     *scene.MenuItem   `json:"tree"`
		Swatches map[string]string `json:"swatches"`
	}{menu, v.Swatches()})
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, scene.Actions())
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	v := s.live(w)
	if v == nil {
		return
	}
	var cmd scene.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, fmt.Sprintf("invalid command: %v", err), http.StatusBadRequest)
		return
	}
	if err := v.Apply(cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, v.State())
}

func (s *Server) frame(w http.ResponseWriter) (scene.Frame, bool) {
	v := s.live(w)
	if v == nil {
		return scene.Frame{}, false
	}
	frame, err := v.Frame()
	if err != nil {
		msg := err.Error()
		if frame.NotAvailable != "" {
			msg = frame.NotAvailable
		}
		http.Error(w, msg, http.StatusServiceUnavailable)
		return scene.Frame{}, false
	}
	return frame, true
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	frame, ok := s.frame(w)
	if !ok {
		return
	}
	doc, err := export.Document(frame)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "model/gltf-binary")
	if err := export.WriteGLB(w, doc); err != nil {
		log.Printf("Error writing model: %v", err)
	}
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	size := s.cfg.Server.ThumbnailSize
	if q := r.URL.Query().Get("size"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 || n > maxThumbnailSize {
			http.Error(w, fmt.Sprintf("size must be in 1..%d", maxThumbnailSize), http.StatusBadRequest)
			return
		}
		size = n
	}

	frame, ok := s.frame(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := viewer.WritePNG(w, viewer.Thumbnail(frame, size)); err != nil {
		log.Printf("Error writing thumbnail: %v", err)
	}
}

// handleWebSocket registers a client, sends it the current state and
// applies the commands it sends.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	c := &client{id: uuid.New(), conn: conn}
	s.clientsMu.Lock()
	s.clients[c.id] = c
	s.clientsMu.Unlock()
	log.Printf("WebSocket client %s connected", c.id)

	defer func() {
		s.removeClient(c)
		log.Printf("WebSocket client %s disconnected", c.id)
	}()

	hello := Message{Type: TypeHello, Client: c.id.String()}
	if v := s.Viewer(); v != nil {
		state := v.State()
		hello.State = &state
	}
	s.reply(c, hello)

	for {
		var cmd scene.Command
		if err := conn.ReadJSON(&cmd); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				s.reply(c, Message{Type: TypeError, Error: fmt.Sprintf("invalid command: %v", err)})
				continue
			}
			return
		}

		v := s.Viewer()
		if v == nil {
			s.reply(c, Message{Type: TypeError, Error: "no model loaded"})
			continue
		}
		if err := v.Apply(cmd); err != nil {
			s.reply(c, Message{Type: TypeError, Error: err.Error()})
		}
	}
}

func (s *Server) reply(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := c.send(data); err != nil {
		log.Printf("WebSocket write error: %v", err)
	}
}
