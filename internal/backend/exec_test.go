package backend

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/backmassage/texanim/internal/check"
	"github.com/backmassage/texanim/internal/config"
)

// recordingStub writes a tool stub that appends its argument vector (one
// line per invocation, args separated by '|') to logPath and creates the
// file named by its last argument.
func recordingStub(t *testing.T, dir, name, logPath string) string {
	t.Helper()
	body := `out=""
line=""
for a; do line="$line|$a"; out="$a"; done
echo "$line" >> '` + logPath + `'
: > "$out"
`
	return writeStub(t, dir, name, body)
}

func writeStub(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func readCalls(t *testing.T, logPath string) [][]string {
	t.Helper()
	b, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	var calls [][]string
	for _, line := range strings.Split(strings.TrimSpace(string(b)), "\n") {
		calls = append(calls, strings.Split(strings.TrimPrefix(line, "|"), "|"))
	}
	return calls
}

func TestRunner_Failure(t *testing.T) {
	dir := t.TempDir()
	bin := writeStub(t, dir, "magick", "echo 'magick: no decode delegate for this image format' >&2\nexit 1\n")
	r := runner{backend: check.BackendImageMagick, bin: bin}

	err := r.run(context.Background(), time.Minute, []string{"a.png", "b.gif"})
	var be *Error
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if be.Backend != check.BackendImageMagick || be.NotFound() {
		t.Errorf("Error = %+v", be)
	}
	if !strings.Contains(be.Stderr, "no decode delegate") {
		t.Errorf("Stderr = %q", be.Stderr)
	}
	if Hint(be.Stderr) == "" {
		t.Error("expected a hint for the delegate failure")
	}
	if len(be.Args) != 3 || be.Args[0] != bin {
		t.Errorf("Args = %q", be.Args)
	}
}

func TestRunner_NotFound(t *testing.T) {
	r := runner{backend: check.BackendFFmpeg, bin: filepath.Join(t.TempDir(), "missing-ffmpeg")}
	err := r.run(context.Background(), 0, []string{"-version"})
	var be *Error
	if !errors.As(err, &be) || !be.NotFound() {
		t.Fatalf("err = %v, want not-found *Error", err)
	}
}

func TestRunner_Timeout(t *testing.T) {
	dir := t.TempDir()
	bin := writeStub(t, dir, "ffmpeg", "exec sleep 5\n")
	r := runner{backend: check.BackendFFmpeg, bin: bin}

	start := time.Now()
	err := r.run(context.Background(), 100*time.Millisecond, nil)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if time.Since(start) > 4*time.Second {
		t.Errorf("timeout not enforced (took %s)", time.Since(start))
	}
}

func TestRunner_Cancelled(t *testing.T) {
	dir := t.TempDir()
	bin := writeStub(t, dir, "ffmpeg", "exec sleep 5\n")
	r := runner{backend: check.BackendFFmpeg, bin: bin}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	if err := r.run(ctx, time.Minute, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunner_VerboseTee(t *testing.T) {
	dir := t.TempDir()
	bin := writeStub(t, dir, "magick", "echo progress >&2\n")
	var tee bytes.Buffer
	r := runner{backend: check.BackendImageMagick, bin: bin, opts: Options{Verbose: true, Stderr: &tee}}
	if err := r.run(context.Background(), time.Minute, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(tee.String(), "progress") {
		t.Errorf("tee = %q", tee.String())
	}
}

func TestMagickConvert_TransparentPNG(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "calls.log")
	bin := recordingStub(t, dir, "magick", logPath)

	outDir := t.TempDir()
	job := testJob(config.KindTransparentPNG, nil)
	for i := range job.FrameOutputs {
		job.FrameOutputs[i].Output = filepath.Join(outDir, filepath.Base(job.FrameOutputs[i].Output))
	}

	if err := NewMagick(bin, Options{}).Convert(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	calls := readCalls(t, logPath)
	if len(calls) != 2 {
		t.Fatalf("got %d invocations, want one per frame: %q", len(calls), calls)
	}
	for _, out := range job.Outputs() {
		if _, err := os.Stat(out); err != nil {
			t.Errorf("output %s missing: %v", out, err)
		}
	}
}

func TestFFmpegConvert_TwoPassAndCleanup(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "calls.log")
	bin := recordingStub(t, dir, "ffmpeg", logPath)
	tmp := t.TempDir()

	job := testJob(config.KindGIF, nil)
	job.Output = filepath.Join(t.TempDir(), "door.gif")

	if err := NewFFmpeg(bin, Options{TempDir: tmp}).Convert(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	calls := readCalls(t, logPath)
	if len(calls) != 2 {
		t.Fatalf("got %d invocations, want palette + encode", len(calls))
	}
	if !strings.Contains(strings.Join(calls[0], " "), "palettegen") {
		t.Errorf("first pass = %q", calls[0])
	}
	if !strings.Contains(strings.Join(calls[1], " "), "paletteuse") {
		t.Errorf("second pass = %q", calls[1])
	}
	if _, err := os.Stat(job.Output); err != nil {
		t.Errorf("output missing: %v", err)
	}
	left, _ := os.ReadDir(tmp)
	if len(left) != 0 {
		t.Errorf("temp files left behind: %v", left)
	}
}

func TestFFmpegConvert_KeepTemp(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "calls.log")
	bin := recordingStub(t, dir, "ffmpeg", logPath)
	tmp := t.TempDir()

	job := testJob(config.KindGIF, nil)
	job.Output = filepath.Join(t.TempDir(), "door.gif")
	job.KeepTemp = true

	if err := NewFFmpeg(bin, Options{TempDir: tmp}).Convert(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	var manifest string
	for i, a := range readCalls(t, logPath)[0] {
		if a == "concat" {
			manifest = readCalls(t, logPath)[0][i+4]
		}
	}
	b, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatalf("manifest not kept: %v", err)
	}
	want := "file '/in/door_0.png'\nfile '/in/door_1.png'\n"
	if string(b) != want {
		t.Errorf("manifest =\n%s\nwant\n%s", b, want)
	}
}

func TestFFmpegConvert_PaletteFailureStops(t *testing.T) {
	dir := t.TempDir()
	bin := writeStub(t, dir, "ffmpeg", "echo \"$@\" >> '"+filepath.Join(dir, "calls.log")+"'\nexit 1\n")
	tmp := t.TempDir()

	job := testJob(config.KindGIF, nil)
	err := NewFFmpeg(bin, Options{TempDir: tmp}).Convert(context.Background(), job)
	var be *Error
	if !errors.As(err, &be) || be.Backend != check.BackendFFmpeg {
		t.Fatalf("err = %v", err)
	}
	b, _ := os.ReadFile(filepath.Join(dir, "calls.log"))
	if n := strings.Count(string(b), "\n"); n != 1 {
		t.Errorf("ran %d passes after palette failure, want 1", n)
	}
	left, _ := os.ReadDir(tmp)
	if len(left) != 0 {
		t.Errorf("temp files left after failure: %v", left)
	}
}
