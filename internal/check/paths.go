package check

// knownMagickPaths lists ImageMagick installation locations checked when
// neither PATH nor $TEXANIM_MAGICK yields a binary.
func knownMagickPaths(goos string) []string {
	switch goos {
	case "windows":
		return []string{
			`C:\Program Files\ImageMagick\magick.exe`,
			`C:\Program Files (x86)\ImageMagick\magick.exe`,
		}
	case "darwin":
		return []string{
			"/opt/homebrew/bin/magick",
			"/usr/local/bin/magick",
			"/opt/local/bin/magick", // MacPorts
		}
	default:
		return []string{
			"/usr/local/bin/magick",
			"/usr/bin/magick",
			"/usr/bin/convert",
		}
	}
}
