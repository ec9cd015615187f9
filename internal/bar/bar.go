// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFBar - FFmpeg 命令行进度条
//
// Package bar renders a single self-overwriting progress line.

package bar

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/ZSC714725/ffbar/internal/console"
)

const (
	minBarWidth = 20
	maxBarWidth = 60
	// 标题之外为百分比/计数/时间预留的宽度
	reservedCols = 50

	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
)

// Config for a Bar
type Config struct {
	Title string
	Total int // <= 0 表示总量未知
	Unit  string
	Width int // 固定条宽，0 表示自适应终端
	Out   io.Writer
	// Colors enables ANSI coloring of the rendered line
	Colors bool
	// TermWidth queries the terminal width; nil uses the stderr terminal
	TermWidth func() (int, error)
}

// Bar is a terminal progress line. Advance and Close may be called from
// different goroutines; all mutation is serialized by one mutex.
type Bar struct {
	mu sync.Mutex

	title  string
	total  int
	unit   string
	width  int
	out    io.Writer
	colors bool
	termW  func() (int, error)

	current int
	start   time.Time
	lastLen int // 上一次渲染行的可见宽度
	closed  bool
}

// New creates a Bar; the clock for elapsed/ETA starts now
func New(cfg Config) *Bar {
	b := &Bar{
		title:  cfg.Title,
		total:  cfg.Total,
		unit:   cfg.Unit,
		width:  cfg.Width,
		out:    cfg.Out,
		colors: cfg.Colors,
		termW:  cfg.TermWidth,
		start:  time.Now(),
	}
	if b.out == nil {
		b.out = os.Stderr
	}
	if b.termW == nil {
		b.termW = func() (int, error) { return console.Width(os.Stderr.Fd()) }
	}
	return b
}

// Current returns the current tick count
func (b *Bar) Current() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Advance moves the bar forward by delta ticks and repaints.
// Non-positive deltas are ignored: progress never regresses.
func (b *Bar) Advance(delta int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || delta <= 0 {
		return
	}

	b.current += delta
	if b.total > 0 && b.current > b.total {
		b.current = b.total
	}
	b.render()
}

// Break terminates the progress line with a newline so following
// output (e.g. an interactive prompt) starts on a fresh line.
func (b *Bar) Break() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.lastLen == 0 {
		return
	}
	fmt.Fprint(b.out, "\n")
	b.lastLen = 0
}

// Close finalizes the bar: a bounded bar jumps to 100%, one last repaint
// happens, and a trailing newline is emitted. Safe to call repeatedly.
func (b *Bar) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	if b.total > 0 {
		b.current = b.total
	}
	b.render()
	fmt.Fprint(b.out, "\n")
	b.flush()
	b.closed = true
}

// render must be called with the lock held. Rendering is best-effort:
// whatever fails, the caller's stream processing goes on.
func (b *Bar) render() {
	defer func() {
		_ = recover()
	}()

	progress := 0.0
	if b.total > 0 {
		progress = float64(b.current) / float64(b.total)
	}

	barWidth := b.barWidth()
	filled := int(progress * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}

	percent := fmt.Sprintf("%d%%", int(math.Round(progress*100)))
	fill := strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)

	var counts string
	if b.total > 0 {
		counts = fmt.Sprintf(" %d/%d", b.current, b.total)
	} else {
		counts = fmt.Sprintf(" %d", b.current)
	}
	if b.unit != "" {
		counts += " " + b.unit
	}

	timing := b.timing(progress)

	var plain, out strings.Builder
	if b.title != "" {
		plain.WriteString(b.title + ": ")
		out.WriteString(b.title + ": ")
	}
	plain.WriteString(percent)
	plain.WriteString(" [" + fill + "]")
	plain.WriteString(counts)
	plain.WriteString(timing)

	if b.colors {
		out.WriteString(colorYellow + percent + colorReset)
		out.WriteString(" [" + colorGreen + fill + colorReset + "]")
		out.WriteString(counts)
		if timing != "" {
			out.WriteString(colorBlue + timing + colorReset)
		}
	} else {
		out.WriteString(percent)
		out.WriteString(" [" + fill + "]")
		out.WriteString(counts)
		out.WriteString(timing)
	}

	// 先用空格盖掉旧行再写新行。宽度按终端列数算，
	// 标题里的中日韩字符占两列，按字节算会盖过头
	width := runewidth.StringWidth(plain.String())
	blank := width
	if b.lastLen > blank {
		blank = b.lastLen
	}
	fmt.Fprint(b.out, "\r"+strings.Repeat(" ", blank)+"\r")
	fmt.Fprint(b.out, out.String())
	b.flush()
	b.lastLen = width
}

// timing renders " [elapsed<remaining]" once any time has elapsed.
// A zero-progress bar or a non-positive ETA shows elapsed time only.
func (b *Bar) timing(progress float64) string {
	elapsed := int(time.Since(b.start).Seconds())
	if elapsed <= 0 {
		return ""
	}

	if progress > 0 {
		eta := float64(elapsed)/progress - float64(elapsed)
		if eta > 0 {
			return fmt.Sprintf(" [%s<%s]", clock(elapsed), clock(int(eta)))
		}
	}
	return fmt.Sprintf(" [%s]", clock(elapsed))
}

func (b *Bar) barWidth() int {
	if b.width > 0 {
		return b.width
	}

	termWidth, err := b.termW()
	if err != nil || termWidth <= 0 {
		return minBarWidth
	}

	w := termWidth - runewidth.StringWidth(b.title) - reservedCols
	if w < minBarWidth {
		return minBarWidth
	}
	if w > maxBarWidth {
		return maxBarWidth
	}
	return w
}

func (b *Bar) flush() {
	if f, ok := b.out.(interface{ Flush() error }); ok {
		f.Flush()
	}
}

func clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
