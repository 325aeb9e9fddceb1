// Package preview serves the hero over HTTP: the ambient canvas is animated
// on a ticker and every request sees the most recently painted frame.
package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iburimskiy/ambient-hero/internal/ambient"
	"github.com/iburimskiy/ambient-hero/internal/config"
	"github.com/iburimskiy/ambient-hero/internal/frame"
	"github.com/iburimskiy/ambient-hero/internal/grain"
)

const shutdownTimeout = 5 * time.Second

// Server owns one mounted hero and the window that animates it.
type Server struct {
	addr   string
	fps    int
	logger *log.Logger

	win   *frame.Window
	hero  *ambient.Renderer
	grain grain.Texture
	index *template.Template
}

// Status is the body of GET /healthz.
type Status struct {
	Mount  string  `json:"mount"`
	Active bool    `json:"active"`
	Ticks  uint64  `json:"ticks"`
	Time   float64 `json:"time"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	DPR    float64 `json:"dpr"`
}

type indexData struct {
	Background template.CSS
	Width      int
	Height     int
	Refresh    int
}

// New mounts a hero sized s.Width×s.Height. Nothing animates until Run.
func New(s config.Settings, logger *log.Logger) *Server {
	dpr := s.DPR
	if dpr == 0 {
		dpr = 1
	}
	win := frame.NewWindow(dpr)
	hero := ambient.Mount(ambient.NewSurface(float64(s.Width), float64(s.Height)), win,
		ambient.WithSeed(s.Seed),
		ambient.WithLogger(logger),
	)

	return &Server{
		addr:   s.Serve.Addr,
		fps:    s.Serve.FPS,
		logger: logger,
		win:    win,
		hero:   hero,
		grain:  grain.Build(grain.WithLogger(logger)),
		index:  template.Must(template.New("index").Parse(indexTemplate)),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)
	r.Get("/frame.png", s.handleFrame)
	r.Get("/grain.png", s.handleGrain)
	r.Get("/healthz", s.handleHealth)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "took", time.Since(start).Round(time.Microsecond))
	})
}

// Run listens on the configured address and animates the hero until ctx is
// cancelled, then shuts the server down and unmounts the hero.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	driveDone := make(chan struct{})
	go func() {
		defer close(driveDone)
		_ = frame.Drive(ctx, s.win, time.Second/time.Duration(s.fps))
	}()

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	s.logger.Info("preview listening", "addr", ln.Addr().String(), "fps", s.fps)

	var err error
	select {
	case <-ctx.Done():
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	}

	cancel()
	<-driveDone
	s.Close()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if serr := srv.Shutdown(shutdownCtx); serr != nil && err == nil {
		err = fmt.Errorf("shutting down preview: %w", serr)
	}
	return err
}

// Close unmounts the hero. Requests after Close get 503 for /frame.png.
func (s *Server) Close() {
	s.win.Do(s.hero.Unmount)
}

// Status reports the hero's state.
func (s *Server) Status() Status {
	var st Status
	s.win.Do(func() {
		w, h := s.hero.PixelSize()
		st = Status{
			Mount:  s.hero.ID(),
			Active: s.hero.Active(),
			Ticks:  s.hero.Ticks(),
			Time:   s.hero.Time(),
			Width:  w,
			Height: h,
			DPR:    s.hero.DPR(),
		}
	})
	return st
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st := s.Status()
	data := indexData{
		Background: template.CSS(s.grain.Background),
		Width:      st.Width,
		Height:     st.Height,
		Refresh:    1,
	}
	var buf bytes.Buffer
	if err := s.index.Execute(&buf, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	var (
		buf bytes.Buffer
		err error
	)
	s.win.Do(func() { err = s.hero.EncodePNG(&buf) })
	if errors.Is(err, ambient.ErrNotMounted) {
		http.Error(w, "hero canvas is not mounted", http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeImage(w, &buf)
}

func (s *Server) handleGrain(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.grain.WritePNG(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeImage(w, &buf)
}

func writeImage(w http.ResponseWriter, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", mimetype.Detect(buf.Bytes()).String())
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Status())
}

const indexTemplate = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="{{.Refresh}}">
<title>Ambient Hero</title>
</head>
<body style="margin:0;background-color:#fff;background-image:{{.Background}}">
<main>
<img src="/frame.png" width="{{.Width}}" height="{{.Height}}" alt="">
<p><a href="mailto:hello@example.com">hello@example.com</a> · <a href="/test">System</a></p>
</main>
</body>
</html>
`
