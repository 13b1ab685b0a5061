//go:build linux

package tui

import "errors"

// Linux builds leave out the cgo X11 clipboard; ctrl+y reports this error.
const clipboardAvailable = false

var errNoClipboard = errors.New("clipboard not supported on linux builds")

func writeToClipboard(string) error {
	return errNoClipboard
}
