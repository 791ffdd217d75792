package check

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/backmassage/texanim/internal/config"
)

// fakeEnv scripts the probe environment and records every call.
type fakeEnv struct {
	onPath map[string]string // command name -> resolved path
	output map[string]string // resolved path -> -version output
	files  map[string]bool
	env    map[string]string
	calls  []string
}

func (f *fakeEnv) prober(known ...string) *Prober {
	return &Prober{
		LookPath: func(name string) (string, error) {
			if p, ok := f.onPath[name]; ok {
				return p, nil
			}
			return "", errors.New("not found")
		},
		Run: func(_ context.Context, name string, args ...string) ([]byte, error) {
			f.calls = append(f.calls, name+" "+strings.Join(args, " "))
			out, ok := f.output[name]
			if !ok {
				return nil, errors.New("exit status 1")
			}
			return []byte(out), nil
		},
		Getenv: func(key string) string { return f.env[key] },
		Stat: func(name string) (os.FileInfo, error) {
			f.calls = append(f.calls, "stat "+name)
			if f.files[name] {
				return fakeInfo{}, nil
			}
			return nil, fs.ErrNotExist
		},
		KnownPaths: known,
	}
}

type fakeInfo struct{}

func (fakeInfo) Name() string       { return "bin" }
func (fakeInfo) Size() int64        { return 1 }
func (fakeInfo) Mode() fs.FileMode  { return 0o755 }
func (fakeInfo) ModTime() time.Time { return time.Time{} }
func (fakeInfo) IsDir() bool        { return false }
func (fakeInfo) Sys() any           { return nil }

const (
	magickVersion = "Version: ImageMagick 7.1.1-29 Q16-HDRI x86_64\nCopyright: ..."
	ffmpegVersion = "ffmpeg version 6.1.1 Copyright (c) 2000-2023\nbuilt with gcc"
)

func TestProbe_MagickShortCircuits(t *testing.T) {
	f := &fakeEnv{
		onPath: map[string]string{"magick": "/bin/magick", "convert": "/bin/convert", "ffmpeg": "/bin/ffmpeg"},
		output: map[string]string{"/bin/magick": magickVersion, "/bin/convert": magickVersion, "/bin/ffmpeg": ffmpegVersion},
		env:    map[string]string{MagickEnvVar: "/env/magick"},
	}
	res, err := f.prober("/known/magick").Probe(context.Background(), config.BackendAuto)
	if err != nil {
		t.Fatal(err)
	}
	if res.Magick != "/bin/magick" || res.MagickVia != StepMagick {
		t.Errorf("Magick = %q via %v", res.Magick, res.MagickVia)
	}
	if res.MagickVersion != "Version: ImageMagick 7.1.1-29 Q16-HDRI x86_64" {
		t.Errorf("MagickVersion = %q", res.MagickVersion)
	}
	if res.FFmpeg != "/bin/ffmpeg" {
		t.Errorf("FFmpeg = %q", res.FFmpeg)
	}
	want := []string{"/bin/magick -version", "/bin/ffmpeg -version", "stat /bin/ffprobe"}
	if !reflect.DeepEqual(f.calls, want) {
		t.Errorf("calls = %v, want %v", f.calls, want)
	}
	if res.Preferred() != BackendImageMagick {
		t.Errorf("Preferred = %q", res.Preferred())
	}
}

func TestProbe_Order(t *testing.T) {
	cases := []struct {
		name    string
		env     fakeEnv
		known   []string
		wantVia ProbeStep
		wantBin string
	}{
		{
			name: "legacy convert",
			env: fakeEnv{
				onPath: map[string]string{"convert": "/bin/convert"},
				output: map[string]string{"/bin/convert": magickVersion},
			},
			wantVia: StepConvert,
			wantBin: "/bin/convert",
		},
		{
			name: "convert that is not ImageMagick",
			env: fakeEnv{
				onPath: map[string]string{"convert": "/bin/convert"},
				output: map[string]string{"/bin/convert": "Converts FAT volumes to NTFS."},
				env:    map[string]string{MagickEnvVar: "/env/magick"},
				files:  map[string]bool{"/env/magick": true},
			},
			wantVia: StepEnv,
			wantBin: "/env/magick",
		},
		{
			name: "env var path missing falls to known path",
			env: fakeEnv{
				env:   map[string]string{MagickEnvVar: "/env/magick"},
				files: map[string]bool{"/opt/b/magick": true},
			},
			known:   []string{"/opt/a/magick", "/opt/b/magick", "/opt/c/magick"},
			wantVia: StepKnownPath,
			wantBin: "/opt/b/magick",
		},
		{
			name: "magick version query fails",
			env: fakeEnv{
				onPath: map[string]string{"magick": "/bin/magick"},
				files:  map[string]bool{"/opt/a/magick": true},
			},
			known:   []string{"/opt/a/magick"},
			wantVia: StepKnownPath,
			wantBin: "/opt/a/magick",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := tc.env
			res, err := env.prober(tc.known...).Probe(context.Background(), config.BackendAuto)
			if err != nil {
				t.Fatal(err)
			}
			if res.MagickVia != tc.wantVia || res.Magick != tc.wantBin {
				t.Errorf("got %q via %v, want %q via %v", res.Magick, res.MagickVia, tc.wantBin, tc.wantVia)
			}
		})
	}
}

func TestProbe_KnownPathsStopAtFirst(t *testing.T) {
	f := &fakeEnv{files: map[string]bool{"/a": true, "/b": true}}
	res, err := f.prober("/a", "/b").Probe(context.Background(), config.BackendImageMagick)
	if err != nil {
		t.Fatal(err)
	}
	if res.Magick != "/a" {
		t.Errorf("Magick = %q, want /a", res.Magick)
	}
	for _, c := range f.calls {
		if c == "stat /b" {
			t.Errorf("probed /b after /a resolved: %v", f.calls)
		}
	}
}

func TestProbe_FFmpegOnly(t *testing.T) {
	f := &fakeEnv{
		onPath: map[string]string{"ffmpeg": "/usr/bin/ffmpeg", "ffprobe": "/elsewhere/ffprobe"},
		output: map[string]string{"/usr/bin/ffmpeg": ffmpegVersion},
	}
	res, err := f.prober().Probe(context.Background(), config.BackendAuto)
	if err != nil {
		t.Fatal(err)
	}
	if res.Has(BackendImageMagick) || !res.Has(BackendFFmpeg) {
		t.Errorf("res = %+v", res)
	}
	if res.Preferred() != BackendFFmpeg {
		t.Errorf("Preferred = %q", res.Preferred())
	}
	if res.FFprobe != "/elsewhere/ffprobe" {
		t.Errorf("FFprobe = %q, want PATH fallback", res.FFprobe)
	}
}

func TestProbe_SidecarFFprobe(t *testing.T) {
	f := &fakeEnv{
		onPath: map[string]string{"ffmpeg": "/opt/ff/ffmpeg", "ffprobe": "/usr/bin/ffprobe"},
		output: map[string]string{"/opt/ff/ffmpeg": ffmpegVersion},
		files:  map[string]bool{filepath.Join("/opt/ff", exeName("ffprobe")): true},
	}
	res, err := f.prober().Probe(context.Background(), config.BackendFFmpeg)
	if err != nil {
		t.Fatal(err)
	}
	if res.FFprobe != filepath.Join("/opt/ff", exeName("ffprobe")) {
		t.Errorf("FFprobe = %q, want sidecar", res.FFprobe)
	}
}

func TestProbe_NothingFound(t *testing.T) {
	f := &fakeEnv{}
	if _, err := f.prober("/nope").Probe(context.Background(), config.BackendAuto); !errors.Is(err, ErrNoTools) {
		t.Errorf("err = %v, want ErrNoTools", err)
	}
}

func TestProbe_ForcedBackend(t *testing.T) {
	ffOnly := &fakeEnv{
		onPath: map[string]string{"ffmpeg": "/bin/ffmpeg"},
		output: map[string]string{"/bin/ffmpeg": ffmpegVersion},
	}
	if _, err := ffOnly.prober().Probe(context.Background(), config.BackendImageMagick); !errors.Is(err, ErrMagickNotFound) {
		t.Errorf("imagemagick mode err = %v, want ErrMagickNotFound", err)
	}

	magickOnly := &fakeEnv{
		onPath: map[string]string{"magick": "/bin/magick"},
		output: map[string]string{"/bin/magick": magickVersion},
	}
	if _, err := magickOnly.prober().Probe(context.Background(), config.BackendFFmpeg); !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("ffmpeg mode err = %v, want ErrFFmpegNotFound", err)
	}
	for _, c := range magickOnly.calls {
		if strings.Contains(c, "magick") {
			t.Errorf("ffmpeg mode queried ImageMagick: %v", magickOnly.calls)
		}
	}

	both := &fakeEnv{
		onPath: map[string]string{"magick": "/bin/magick", "ffmpeg": "/bin/ffmpeg"},
		output: map[string]string{"/bin/magick": magickVersion, "/bin/ffmpeg": ffmpegVersion},
	}
	res, err := both.prober().Probe(context.Background(), config.BackendImageMagick)
	if err != nil {
		t.Fatal(err)
	}
	if res.Has(BackendFFmpeg) {
		t.Error("imagemagick mode should not resolve ffmpeg")
	}
}

func TestProbe_StubExecutables(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs")
	}
	dir := t.TempDir()
	writeStub(t, dir, "magick", "echo 'Version: ImageMagick 7.1.1-29'")
	writeStub(t, dir, "ffmpeg", "echo 'ffmpeg version 7.0'")
	writeStub(t, dir, "ffprobe", "exit 0")
	t.Setenv("PATH", dir)

	p := NewProber()
	p.KnownPaths = nil
	res, err := p.Probe(context.Background(), config.BackendAuto)
	if err != nil {
		t.Fatal(err)
	}
	if res.Magick != filepath.Join(dir, "magick") || res.FFmpeg != filepath.Join(dir, "ffmpeg") {
		t.Errorf("res = %+v", res)
	}
	if res.FFprobe != filepath.Join(dir, "ffprobe") {
		t.Errorf("FFprobe = %q", res.FFprobe)
	}
}

func TestProbe_EnvVarStub(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs")
	}
	dir := t.TempDir()
	bin := writeStub(t, dir, "magick-custom", "exit 0")
	t.Setenv("PATH", t.TempDir())
	t.Setenv(MagickEnvVar, bin)

	p := NewProber()
	p.KnownPaths = nil
	res, err := p.Probe(context.Background(), config.BackendAuto)
	if err != nil {
		t.Fatal(err)
	}
	if res.Magick != bin || res.MagickVia != StepEnv {
		t.Errorf("res = %+v", res)
	}
}

func TestKnownMagickPaths(t *testing.T) {
	for _, goos := range []string{"linux", "darwin", "windows"} {
		if len(knownMagickPaths(goos)) == 0 {
			t.Errorf("no known paths for %s", goos)
		}
	}
}

func TestRunCheck(t *testing.T) {
	f := &fakeEnv{
		onPath: map[string]string{"ffmpeg": "/bin/ffmpeg"},
		output: map[string]string{"/bin/ffmpeg": ffmpegVersion},
	}
	cfg := config.DefaultConfig()
	log := &recordLogger{}
	if err := RunCheck(context.Background(), &cfg, f.prober(), log); err != nil {
		t.Fatal(err)
	}
	if !log.has("WARN", "ImageMagick not found") {
		t.Errorf("missing ImageMagick warning: %v", log.lines)
	}

	empty := &fakeEnv{}
	log = &recordLogger{}
	if err := RunCheck(context.Background(), &cfg, empty.prober(), log); !errors.Is(err, ErrNoTools) {
		t.Errorf("err = %v, want ErrNoTools", err)
	}
	if !log.has("ERROR", "no usable conversion tool") {
		t.Errorf("missing error line: %v", log.lines)
	}
}

func TestProbeStepString(t *testing.T) {
	if StepEnv.String() != "$TEXANIM_MAGICK" || StepNone.String() != "not found" {
		t.Errorf("unexpected step names: %q %q", StepEnv, StepNone)
	}
}

// --- Helpers ---

func writeStub(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

type recordLogger struct {
	lines []string
}

func (r *recordLogger) add(level, format string, args []interface{}) {
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, args...))
}

func (r *recordLogger) Info(f string, a ...interface{})    { r.add("INFO", f, a) }
func (r *recordLogger) Success(f string, a ...interface{}) { r.add("OK", f, a) }
func (r *recordLogger) Warn(f string, a ...interface{})    { r.add("WARN", f, a) }
func (r *recordLogger) Error(f string, a ...interface{})   { r.add("ERROR", f, a) }
func (r *recordLogger) Debug(v bool, f string, a ...interface{}) {
	if v {
		r.add("DEBUG", f, a)
	}
}

func (r *recordLogger) has(level, substr string) bool {
	for _, l := range r.lines {
		if strings.HasPrefix(l, level+" ") && strings.Contains(l, substr) {
			return true
		}
	}
	return false
}
