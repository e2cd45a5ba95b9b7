package assets

import (
	_ "embed"
	"strings"
)

// KeysTXT contains the key and mouse binding reference shown under the canvas.
//
//go:embed keys.txt
var KeysTXT string

// KeysHelp returns the binding reference without trailing whitespace.
func KeysHelp() string {
	return strings.TrimRight(KeysTXT, "\r\n ")
}
