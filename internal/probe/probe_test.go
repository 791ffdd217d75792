package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// ffprobe output for a 64x48 RGBA PNG frame.
const samplePNG = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "png",
      "codec_type": "video",
      "width": 64,
      "height": 48,
      "pix_fmt": "rgba"
    }
  ]
}`

func TestParseJSON(t *testing.T) {
	info, err := ParseJSON([]byte(samplePNG))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if info.Codec != "png" || info.Width != 64 || info.Height != 48 || info.PixFmt != "rgba" {
		t.Errorf("info = %+v", info)
	}
	if info.Resolution() != "64x48" {
		t.Errorf("Resolution() = %q", info.Resolution())
	}
	if !info.HasAlpha() {
		t.Error("rgba should report alpha")
	}
}

func TestParseJSON_NoVideo(t *testing.T) {
	_, err := ParseJSON([]byte(`{"streams":[{"codec_type":"audio"}]}`))
	if !errors.Is(err, ErrNoVideoStream) {
		t.Errorf("err = %v, want ErrNoVideoStream", err)
	}
}

func TestParseJSON_Invalid(t *testing.T) {
	if _, err := ParseJSON([]byte(`{`)); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestHasAlpha(t *testing.T) {
	cases := []struct {
		pixFmt string
		want   bool
	}{
		{"rgba", true},
		{"rgba64be", true},
		{"ya8", true},
		{"pal8", true},
		{"yuva420p", true},
		{"gbrap", true},
		{"rgb24", false},
		{"gray", false},
		{"yuv420p", false},
		{"", false},
	}
	for _, tc := range cases {
		info := &ImageInfo{PixFmt: tc.pixFmt}
		if got := info.HasAlpha(); got != tc.want {
			t.Errorf("HasAlpha(%q) = %v, want %v", tc.pixFmt, got, tc.want)
		}
	}
	var nilInfo *ImageInfo
	if nilInfo.HasAlpha() || nilInfo.Resolution() != "unknown" {
		t.Error("nil ImageInfo should report no alpha and unknown resolution")
	}
}

func TestProbe_StubBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffprobe")
	script := "#!/bin/sh\ncat <<'JSON'\n" + samplePNG + "\nJSON\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	info, err := Probe(context.Background(), bin, filepath.Join(dir, "door_0.png"))
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if info.Width != 64 {
		t.Errorf("Width = %d, want 64", info.Width)
	}
}

func TestProbe_Failure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := Probe(context.Background(), bin, "x.png"); err == nil {
		t.Fatal("expected error from failing ffprobe")
	}
}
