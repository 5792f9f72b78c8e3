//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package tui

import "errors"

func termSize() (int, int, error) {
	return 0, 0, errors.New("terminal size unsupported on this platform")
}
