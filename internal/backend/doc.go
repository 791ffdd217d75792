// Package backend runs the external conversion tools for one planned job.
//
// Two invokers exist. [Magick] drives ImageMagick in a single command per
// group (or per frame for keying). [FFmpeg] is the fallback: it writes a
// concat manifest, runs a palette-generation pass, then a paletted encode
// pass, and removes its temporary files on a best-effort basis.
//
// Every invocation uses an argument vector (never a shell string), runs
// under a per-invocation timeout, and captures stderr. Failures surface as
// *[Error] whether the tool exited non-zero or could not be started.
//
// [Chain] pairs a primary invoker with an optional fallback; the fallback
// runs exactly once and only after the primary failed.
//
// Files: invoker.go, magick.go, ffmpeg.go, manifest.go, executor.go,
// errors.go, result.go.
package backend
