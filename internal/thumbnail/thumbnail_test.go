package thumbnail

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"homeserver/internal/mediatypes"
	"homeserver/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return st
}

func writeTestPNG(t *testing.T, dir string, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	path := filepath.Join(dir, "source.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create png: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return path
}

func TestGenerateImage(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	gen, err := NewGenerator(st)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	src := writeTestPNG(t, t.TempDir(), 800, 600)

	ref, err := gen.Generate(context.Background(), src, mediatypes.KindImage)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasSuffix(ref, ".jpg") {
		t.Errorf("ref = %q, want .jpg suffix", ref)
	}
	if strings.ContainsAny(ref, "/\\") {
		t.Errorf("ref = %q, want bare filename", ref)
	}

	path, err := st.ThumbnailPath(ref)
	if err != nil {
		t.Fatalf("ThumbnailPath: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open thumbnail: %v", err)
	}
	defer f.Close()

	thumb, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if got := thumb.Bounds(); got.Dx() != Width || got.Dy() != Height {
		t.Errorf("thumbnail size = %dx%d, want %dx%d", got.Dx(), got.Dy(), Width, Height)
	}
}

func TestGenerateSmallImageUpscales(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	gen, err := NewGenerator(st)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	// A source smaller than the preview still produces a full-size frame.
	src := writeTestPNG(t, t.TempDir(), 50, 40)

	ref, err := gen.Generate(context.Background(), src, mediatypes.KindImage)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	path, err := st.ThumbnailPath(ref)
	if err != nil {
		t.Fatalf("ThumbnailPath: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open thumbnail: %v", err)
	}
	defer f.Close()

	thumb, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if got := thumb.Bounds(); got.Dx() != Width || got.Dy() != Height {
		t.Errorf("thumbnail size = %dx%d, want %dx%d", got.Dx(), got.Dy(), Width, Height)
	}
}

func TestGenerateUndecodableImage(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	gen, err := NewGenerator(st)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(src, []byte("this is not an image"), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	_, err = gen.Generate(context.Background(), src, mediatypes.KindImage)
	if err == nil {
		t.Fatal("Generate succeeded on garbage input")
	}
	var codecErr *CodecError
	if !errors.As(err, &codecErr) {
		t.Errorf("error = %v, want *CodecError", err)
	}
}

func TestGenerateMissingSource(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	gen, err := NewGenerator(st)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	_, err = gen.Generate(context.Background(), filepath.Join(t.TempDir(), "gone.jpg"), mediatypes.KindImage)
	if err == nil {
		t.Fatal("Generate succeeded on missing source")
	}
}

func TestGenerateDistinctRefs(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	gen, err := NewGenerator(st)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	src := writeTestPNG(t, t.TempDir(), 640, 480)

	refs := make(map[string]bool)
	for i := 0; i < 3; i++ {
		ref, err := gen.Generate(context.Background(), src, mediatypes.KindImage)
		if err != nil {
			t.Fatalf("Generate #%d: %v", i, err)
		}
		if refs[ref] {
			t.Fatalf("duplicate ref %q", ref)
		}
		refs[ref] = true
	}
}

func TestGenerateVideo(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available")
	}

	st := newTestStore(t)
	gen, err := NewGenerator(st)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	// Synthesize a short test clip rather than shipping a fixture.
	dir := t.TempDir()
	src := filepath.Join(dir, "clip.mp4")
	cmd := exec.Command("ffmpeg",
		"-f", "lavfi", "-i", "testsrc=duration=2:size=320x240:rate=10",
		"-pix_fmt", "yuv420p", src,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("could not synthesize test clip: %v (%s)", err, out)
	}

	ref, err := gen.Generate(context.Background(), src, mediatypes.KindVideo)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	path, err := st.ThumbnailPath(ref)
	if err != nil {
		t.Fatalf("ThumbnailPath: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open thumbnail: %v", err)
	}
	defer f.Close()

	thumb, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if got := thumb.Bounds(); got.Dx() != Width || got.Dy() != Height {
		t.Errorf("thumbnail size = %dx%d, want %dx%d", got.Dx(), got.Dy(), Width, Height)
	}
}

func TestCodecErrorUnwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("bad header")
	err := &CodecError{Path: "/tmp/x.png", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("CodecError does not unwrap to inner error")
	}
	if !strings.Contains(err.Error(), "x.png") {
		t.Errorf("Error() = %q, want source basename", err.Error())
	}
}
