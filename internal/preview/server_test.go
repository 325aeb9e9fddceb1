package preview

import (
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/iburimskiy/ambient-hero/internal/config"
)

func testSettings() config.Settings {
	return config.Settings{
		Width: 160, Height: 90, Seed: 4, TPS: 60,
		Render: config.RenderSettings{Every: 1},
		Serve:  config.ServeSettings{Addr: "127.0.0.1:0", FPS: 200},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := New(testSettings(), log.New(io.Discard))
	t.Cleanup(s.Close)
	return s
}

func TestFrameEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.win.Advance(time.Now())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/frame.png", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("decoding frame: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 90 {
		t.Errorf("frame bounds = %v, want 160x90", b)
	}
}

func TestFrameEndpointAfterClose(t *testing.T) {
	s := newTestServer(t)
	s.Close()

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/frame.png", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if s.win.PendingFrames() != 0 || s.win.Listeners() != 0 {
		t.Errorf("pending=%d listeners=%d after Close", s.win.PendingFrames(), s.win.Listeners())
	}
}

func TestGrainEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/grain.png", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if _, err := png.Decode(rec.Body); err != nil {
		t.Errorf("decoding grain: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	for range 3 {
		s.win.Advance(time.Now())
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var st Status
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decoding status: %v", err)
	}
	if !st.Active || st.Ticks != 3 {
		t.Errorf("status = %+v, want active with 3 ticks", st)
	}
	if st.Width != 160 || st.Height != 90 || st.DPR != 1 {
		t.Errorf("status = %+v, want 160x90 at 1x", st)
	}
	if st.Mount == "" {
		t.Error("mount id is empty")
	}
}

func TestIndexEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`src="/frame.png"`, `mailto:hello@example.com`, `href="/test"`, `data:image/png;base64,`} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestServeAnimatesAndStops(t *testing.T) {
	s := New(testSettings(), log.New(io.Discard))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	deadline := time.Now().Add(5 * time.Second)
	for s.Status().Ticks == 0 {
		if time.Now().After(deadline) {
			t.Fatal("hero never ticked")
		}
		time.Sleep(5 * time.Millisecond)
	}

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	if s.Status().Active {
		t.Error("hero still mounted after Serve returned")
	}
	if s.win.PendingFrames() != 0 {
		t.Errorf("PendingFrames() = %d after Serve returned", s.win.PendingFrames())
	}
}
