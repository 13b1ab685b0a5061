//go:build !linux

package tui

import (
	"sync"

	"golang.design/x/clipboard"
)

const clipboardAvailable = true

var clipboardInit = sync.OnceValue(clipboard.Init)

// writeToClipboard copies text to the system clipboard as plain text.
func writeToClipboard(text string) error {
	if err := clipboardInit(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
