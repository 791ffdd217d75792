package display

import (
	"fmt"
	"os"

	"github.com/backmassage/texanim/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner() {
	if term.Enabled() {
		fmt.Fprint(os.Stdout, term.Magenta)
	}
	fmt.Fprint(os.Stdout, ` _                         _
| |_ _____  ____ _ _ __  (_)_ __ ___
| __/ _ \ \/ / _`+"`"+` | '_ \ | | '_ `+"`"+` _ \
| ||  __/>  < (_| | | | || | | | | | |
 \__\___/_/\_\__,_|_| |_||_|_| |_| |_|
`)
	if term.Enabled() {
		fmt.Fprintln(os.Stdout, term.NC)
	}
}
