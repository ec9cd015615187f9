// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFBar - FFmpeg 命令行进度条
//
// Package console wraps the terminal primitives the wrapper relies on:
// non-blocking single-keystroke reads and terminal width queries.

package console

import (
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// KeyReader yields host keystrokes without blocking the caller
type KeyReader interface {
	// Poll returns the next pending keystroke, if any
	Poll() (byte, bool)
	// Close restores the terminal state
	Close()
}

type keyReader struct {
	file  *os.File
	keys  chan byte
	state *unix.Termios // nil 表示终端模式未被修改

	closeOnce sync.Once
}

// NewKeyReader starts reading single keystrokes from f. When f is a
// terminal it is switched to cbreak mode (no line buffering, no echo)
// so keystrokes arrive without waiting for Enter; Close puts it back.
// Full raw mode would be wrong here: it disables ISIG, and Ctrl+C must
// keep delivering an interrupt.
func NewKeyReader(f *os.File) KeyReader {
	r := &keyReader{
		file: f,
		keys: make(chan byte, 64),
	}

	if isatty.IsTerminal(f.Fd()) {
		if state, err := makeCbreak(int(f.Fd())); err == nil {
			r.state = state
		}
	}

	go r.read()

	return r
}

func makeCbreak(fd int) (*unix.Termios, error) {
	old, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, err
	}

	raw := *old
	raw.Lflag &^= unix.ICANON | unix.ECHO
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &raw); err != nil {
		return nil, err
	}
	return old, nil
}

func (r *keyReader) read() {
	buf := make([]byte, 1)
	for {
		n, err := r.file.Read(buf)
		if err != nil {
			return
		}
		if n == 1 {
			select {
			case r.keys <- buf[0]:
			default:
				// 读取方停止消费时丢弃按键
			}
		}
	}
}

func (r *keyReader) Poll() (byte, bool) {
	select {
	case b := <-r.keys:
		return b, true
	default:
		return 0, false
	}
}

func (r *keyReader) Close() {
	r.closeOnce.Do(func() {
		if r.state != nil {
			unix.IoctlSetTermios(int(r.file.Fd()), unix.TCSETS, r.state)
		}
	})
}

// Width returns the terminal width for fd
func Width(fd uintptr) (int, error) {
	w, _, err := term.GetSize(int(fd))
	if err != nil {
		return 0, err
	}
	return w, nil
}

// IsTerminal reports whether fd is attached to a terminal
func IsTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd)
}
