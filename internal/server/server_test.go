package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/philipparndt/plmview/internal/config"
	"github.com/philipparndt/plmview/pkg/geometry"
	"github.com/philipparndt/plmview/pkg/scene"
	"github.com/philipparndt/plmview/pkg/stl"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server, context.Context) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cube.stl")
	m := stl.NewModel("plate")
	m.AddTriangle(geometry.NewVector3(0, 0, 0), geometry.NewVector3(10, 0, 0), geometry.NewVector3(10, 10, 0))
	m.AddTriangle(geometry.NewVector3(0, 0, 0), geometry.NewVector3(10, 10, 0), geometry.NewVector3(0, 10, 0))
	m.ComputeFaceNormals()
	if err := stl.WriteFile(path, m); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg := config.Default()
	cfg.Server.FrameInterval = config.Duration{Duration: 5 * time.Millisecond}
	cfg.Server.Watch = false

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s := New(path, cfg)
	if err := s.Reload(ctx); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	go s.publish(ctx)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts, ctx
}

func getState(t *testing.T, url string) scene.State {
	t.Helper()
	resp, err := http.Get(url + "/api/state")
	if err != nil {
		t.Fatalf("GET /api/state failed: %v", err)
	}
	defer resp.Body.Close()
	var state scene.State
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode state failed: %v", err)
	}
	return state
}

func TestState(t *testing.T) {
	_, ts, _ := newTestServer(t)

	state := getState(t, ts.URL)
	if !state.Initialized {
		t.Errorf("State failed: expected initialized viewer")
	}
	if state.Zoom != 50 {
		t.Errorf("State failed: expected zoom 50, got %v", state.Zoom)
	}
	if len(state.Parts) != 1 || state.Parts[0].ID != scene.SinglePartID {
		t.Errorf("State failed: unexpected parts %v", state.Parts)
	}
}

func TestTreeWithoutMenu(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/tree")
	if err != nil {
		t.Fatalf("GET /api/tree failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for a single STL, got %d", resp.StatusCode)
	}
}

func TestCommand(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/command", "application/json", strings.NewReader(`{"action":"zoom","value":40}`))
	if err != nil {
		t.Fatalf("POST /api/command failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if state := getState(t, ts.URL); state.Zoom != 40 {
		t.Errorf("Command failed: expected zoom 40, got %v", state.Zoom)
	}

	resp, err = http.Post(ts.URL+"/api/command", "application/json", strings.NewReader(`{"action":"explode"}`))
	if err != nil {
		t.Fatalf("POST /api/command failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown action, got %d", resp.StatusCode)
	}
}

func TestModel(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/model.glb")
	if err != nil {
		t.Fatalf("GET /model.glb failed: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(data, []byte("glTF")) {
		t.Errorf("expected GLB magic, got %q", data[:min(4, len(data))])
	}
	if ct := resp.Header.Get("Content-Type"); ct != "model/gltf-binary" {
		t.Errorf("unexpected content type %s", ct)
	}
}

func TestThumbnail(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/thumbnail.png?size=32")
	if err != nil {
		t.Fatalf("GET /thumbnail.png failed: %v", err)
	}
	defer resp.Body.Close()
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	if img.Bounds().Dx() != 32 {
		t.Errorf("expected width 32, got %d", img.Bounds().Dx())
	}

	resp, err = http.Get(ts.URL + "/thumbnail.png?size=-1")
	if err != nil {
		t.Fatalf("GET /thumbnail.png failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid size, got %d", resp.StatusCode)
	}
}

// readUntil reads messages until match returns true or the deadline passes
func readUntil(t *testing.T, conn *websocket.Conn, match func(Message) bool) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON failed: %v", err)
		}
		if match(msg) {
			return msg
		}
	}
}

func TestWebSocket(t *testing.T) {
	s, ts, ctx := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	hello := readUntil(t, conn, func(m Message) bool { return m.Type == TypeHello })
	if hello.Client == "" || hello.State == nil {
		t.Errorf("hello failed: expected client id and state, got %+v", hello)
	}

	if err := conn.WriteJSON(scene.Command{Action: scene.ActionZoom, Value: 30}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	readUntil(t, conn, func(m Message) bool {
		return m.Type == TypeState && m.State != nil && m.State.Zoom == 30
	})

	if err := conn.WriteJSON(map[string]string{"action": "explode"}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	errMsg := readUntil(t, conn, func(m Message) bool { return m.Type == TypeError })
	if !strings.Contains(errMsg.Error, "explode") {
		t.Errorf("expected unknown action error, got %q", errMsg.Error)
	}

	if err := s.Reload(ctx); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	readUntil(t, conn, func(m Message) bool { return m.Type == TypeReload })

	if s.ClientCount() != 1 {
		t.Errorf("expected 1 client, got %d", s.ClientCount())
	}
}

func TestReloadFailureKeepsViewer(t *testing.T) {
	s, _, ctx := newTestServer(t)
	before := s.Viewer()

	s.path = filepath.Join(t.TempDir(), "missing.obj")
	if err := s.Reload(ctx); err == nil {
		t.Fatalf("expected reload error")
	}
	if s.Viewer() != before {
		t.Errorf("failed reload replaced the viewer")
	}
}
