package blackbox

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
)

func projectRootFromThisFile(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// this file: <root>/tests/blackbox/blackbox_test.go
	bbDir := filepath.Dir(thisFile)
	return filepath.Dir(filepath.Dir(bbDir))
}

func buildBinary(t *testing.T) string {
	t.Helper()
	root := projectRootFromThisFile(t)
	binPath := filepath.Join(t.TempDir(), "artbot")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/artbot")
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, string(out))
	}
	return binPath
}

// cleanEnv drops settings the host may carry so runs are reproducible.
func cleanEnv(extra ...string) []string {
	var env []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "SLACK_") || strings.HasPrefix(kv, "ARTBOT_") || strings.HasPrefix(kv, "BACKEND_URL=") {
			continue
		}
		env = append(env, kv)
	}
	return append(env, extra...)
}

func quadrantPNG(t *testing.T, c color.RGBA, size int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// fakeSD imitates the txt2img endpoint of a Stable Diffusion web API.
func fakeSD(t *testing.T, images []string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/sdapi/v1/txt2img" {
			http.NotFound(w, r)
			return
		}
		calls.Add(1)
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"images": images, "parameters": req, "info": "{}"})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestGenerate_EndToEnd(t *testing.T) {
	bin := buildBinary(t)
	colors := []color.RGBA{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255}, {255, 255, 0, 255}}
	var imgs []string
	for _, c := range colors {
		imgs = append(imgs, quadrantPNG(t, c, 64))
	}
	sd, calls := fakeSD(t, imgs)

	dir := t.TempDir()
	out := filepath.Join(dir, "art.png")
	cmd := exec.Command(bin, "generate", "--prompt", "four squares", "--out", out, "--log-format", "console")
	cmd.Dir = dir
	cmd.Env = cleanEnv("BACKEND_URL=" + sd.URL)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("generate: %v\n%s", err, stderr.String())
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly one backend call, got %d", calls.Load())
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 512, 512) {
		t.Fatalf("bounds=%v", img.Bounds())
	}
	points := []image.Point{{128, 128}, {384, 128}, {128, 384}, {384, 384}}
	for i, p := range points {
		r, g, bl, _ := img.At(p.X, p.Y).RGBA()
		want := colors[i]
		if uint8(r>>8) != want.R || uint8(g>>8) != want.G || uint8(bl>>8) != want.B {
			t.Fatalf("cell %d at %v = (%d,%d,%d), want %v", i, p, r>>8, g>>8, bl>>8, want)
		}
	}
}

func TestGenerate_InsufficientImagesFails(t *testing.T) {
	bin := buildBinary(t)
	sd, _ := fakeSD(t, []string{quadrantPNG(t, color.RGBA{1, 2, 3, 255}, 8)})

	dir := t.TempDir()
	cmd := exec.Command(bin, "generate", "--prompt", "x", "--out", filepath.Join(dir, "x.png"))
	cmd.Env = cleanEnv("BACKEND_URL=" + sd.URL)
	out, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected non-zero exit, got err=%v\n%s", err, out)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "x.png")); statErr == nil {
		t.Fatalf("no file should be written on failure")
	}
}

func TestServe_MissingCredentialsExitNonZero(t *testing.T) {
	bin := buildBinary(t)
	cmd := exec.Command(bin, "serve", "--addr", "127.0.0.1:0")
	cmd.Dir = t.TempDir()
	cmd.Env = cleanEnv("HOME=" + t.TempDir())
	out, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() == 0 {
		t.Fatalf("expected non-zero exit, got err=%v\n%s", err, out)
	}
	if !strings.Contains(string(out), "SLACK_APP_TOKEN") {
		t.Fatalf("expected missing credential to be named, got:\n%s", out)
	}
}

func TestVersion(t *testing.T) {
	bin := buildBinary(t)
	out, err := exec.Command(bin, "version").Output()
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(string(out), "artbot ") {
		t.Fatalf("unexpected version output %q", out)
	}
}
