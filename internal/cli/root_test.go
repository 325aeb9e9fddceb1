package cli

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/iburimskiy/ambient-hero/internal/config"
)

func execute(t *testing.T, args ...string) (stdout string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), err
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestRenderCommandWritesEveryNthFrame(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "render", "--frames", "5", "--every", "2", "--out", dir,
		"--width", "64", "--height", "32", "--seed", "7", "--dpr", "2")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if strings.Join(names, ",") != "frame_0002.png,frame_0004.png" {
		t.Fatalf("files = %v, want frame_0002.png and frame_0004.png", names)
	}

	if w, h := decodeSize(t, filepath.Join(dir, "frame_0002.png")); w != 128 || h != 64 {
		t.Errorf("frame size = %dx%d, want 128x64", w, h)
	}
}

func TestConfigFileAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "ambient.yaml")
	body := "width: 40\nheight: 20\ndpr: 1\nrender:\n  frames: 2\n  every: 1\n"
	if err := os.WriteFile(cfg, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "frames")
	if _, err := execute(t, "--config", cfg, "render", "--out", out, "--width", "50"); err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, name := range []string{"frame_0001.png", "frame_0002.png"} {
		w, h := decodeSize(t, filepath.Join(out, name))
		if w != 50 || h != 20 {
			t.Errorf("%s size = %dx%d, want 50x20 (flag beats file)", name, w, h)
		}
	}
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("AMBIENT_RENDER_FRAMES", "3")
	t.Setenv("AMBIENT_RENDER_EVERY", "1")
	dir := t.TempDir()
	if _, err := execute(t, "render", "--out", dir, "--width", "8", "--height", "8", "--dpr", "1"); err != nil {
		t.Fatalf("render: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 3 {
		t.Errorf("wrote %d frames, want 3", len(entries))
	}
}

func TestInvalidSettings(t *testing.T) {
	_, err := execute(t, "render", "--width", "0", "--out", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "invalid settings") {
		t.Errorf("err = %v, want invalid settings", err)
	}

	if _, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "render"); err == nil {
		t.Error("missing config file should fail")
	}
}

func TestRenderFramesIsReproducible(t *testing.T) {
	s := config.Settings{
		Width: 48, Height: 24, Seed: 11, DPR: 1, TPS: 60,
		Render: config.RenderSettings{Frames: 3, Every: 3},
	}
	logger := log.New(io.Discard)

	read := func() []byte {
		s.Render.Out = t.TempDir()
		paths, err := renderFrames(context.Background(), s, logger)
		if err != nil {
			t.Fatal(err)
		}
		if len(paths) != 1 {
			t.Fatalf("paths = %v, want one frame", paths)
		}
		b, err := os.ReadFile(paths[0])
		if err != nil {
			t.Fatal(err)
		}
		return b
	}

	if !bytes.Equal(read(), read()) {
		t.Error("same seed produced different frames")
	}
}

func TestRenderFramesCancelled(t *testing.T) {
	s := config.Settings{
		Width: 8, Height: 8, DPR: 1, TPS: 60,
		Render: config.RenderSettings{Frames: 10, Every: 1, Out: t.TempDir()},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths, err := renderFrames(ctx, s, log.New(io.Discard))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(paths) != 0 {
		t.Errorf("wrote %v after cancellation", paths)
	}
}

func TestGrainCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grain.png")
	stdout, err := execute(t, "grain", "--out", path, "--size", "16", "--seed", "3")
	if err != nil {
		t.Fatalf("grain: %v", err)
	}
	if !strings.HasPrefix(stdout, `background-image: url("data:image/png;base64,`) {
		t.Errorf("stdout = %q", stdout)
	}
	if w, h := decodeSize(t, path); w != 16 || h != 16 {
		t.Errorf("grain size = %dx%d, want 16x16", w, h)
	}
}

func TestGrainCommandFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grain.png")
	stdout, err := execute(t, "grain", "--out", path, "--size", "0")
	if err != nil {
		t.Fatalf("grain: %v", err)
	}
	if !strings.Contains(stdout, "linear-gradient") {
		t.Errorf("stdout = %q, want the flat fallback", stdout)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("fallback tile not written: %v", err)
	}
}

func TestUnexpectedArgs(t *testing.T) {
	if _, err := execute(t, "render", "extra"); err == nil {
		t.Error("render should reject positional arguments")
	}
}
