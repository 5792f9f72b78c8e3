//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package tui

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func termSize() (int, int, error) {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("ioctl: %w", err)
	}
	return int(ws.Col), int(ws.Row), nil
}
