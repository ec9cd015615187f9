// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFBar - FFmpeg 命令行进度条

package parse

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// promptSuffix marks an interactive ffmpeg confirmation, e.g.
// "File 'out.mp4' already exists. Overwrite? [y/N] "
const promptSuffix = "[y/N] "

// Accumulator splits a byte stream into completed lines. '\r' and '\n'
// both terminate a line; an interactive confirmation prompt ends with
// neither, so it is detected by suffix and force-completed.
type Accumulator struct {
	pending strings.Builder

	lastMu sync.Mutex // last 会被状态接口并发读取
	last   string

	out io.Writer
	// onPrompt runs before the prompt text is written, giving the
	// caller a chance to finish an active progress line
	onPrompt func()
}

// NewAccumulator creates an Accumulator writing detected prompts to out
func NewAccumulator(out io.Writer, onPrompt func()) *Accumulator {
	return &Accumulator{
		out:      out,
		onPrompt: onPrompt,
	}
}

// ProcessByte consumes one byte of the stream. When the byte completes
// a line, that line is returned with ok=true for metadata and progress
// processing. A detected prompt also completes the line, but is passed
// through verbatim instead of being parsed.
func (a *Accumulator) ProcessByte(b byte) (line string, ok bool) {
	if b == '\r' || b == '\n' {
		return a.complete(), true
	}

	a.pending.WriteByte(b)

	buf := a.pending.String()
	if len(buf) >= len(promptSuffix) && strings.HasSuffix(buf, promptSuffix) {
		if a.onPrompt != nil {
			a.onPrompt()
		}
		fmt.Fprint(a.out, buf)
		a.flush()
		a.complete()
	}
	return "", false
}

// LastLine returns the most recent completed line. A still-pending
// partial line does not count.
func (a *Accumulator) LastLine() string {
	a.lastMu.Lock()
	defer a.lastMu.Unlock()
	return a.last
}

func (a *Accumulator) complete() string {
	line := a.pending.String()
	a.lastMu.Lock()
	a.last = line
	a.lastMu.Unlock()
	a.pending.Reset()
	return line
}

func (a *Accumulator) flush() {
	if f, ok := a.out.(interface{ Flush() error }); ok {
		f.Flush()
	}
}
