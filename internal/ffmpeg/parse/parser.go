// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFBar - FFmpeg 命令行进度条
//
// Package parse turns FFmpeg's stderr byte stream into progress updates.

package parse

import (
	"container/ring"
	"io"
	"sync"
	"time"

	"github.com/ZSC714725/ffbar/internal/logger"
)

// Renderer is the progress display driven by the parser
type Renderer interface {
	Advance(delta int)
	Current() int
	Break()
	Close()
}

// RendererFactory creates the display once enough metadata is known.
// total <= 0 means the total is unknown.
type RendererFactory func(title string, total int, unit string) Renderer

// Progress is a snapshot of the parsed stream state
type Progress struct {
	Duration int    `json:"duration_seconds"`
	FPS      int    `json:"fps"`
	Source   string `json:"source"`
	Current  int    `json:"current_ticks"`
	Total    int    `json:"total_ticks"`
	Unit     string `json:"unit"`
}

// Line is a timestamped log line
type Line struct {
	Timestamp time.Time
	Data      string
}

// Config for the Parser
type Config struct {
	// Out receives passthrough output (interactive prompts)
	Out io.Writer
	// NewRenderer is called once, on the first progress marker
	NewRenderer RendererFactory
	// LogLines bounds the kept diagnostic log (default 100)
	LogLines int
	Logger   logger.Logger
}

// Parser owns the metadata latches and the running tick count. Duration,
// source and frame rate latch on first sight and ignore later matches:
// a re-printed header must not corrupt an already-initialized bar.
type Parser struct {
	acc    *Accumulator
	newBar RendererFactory
	logger logger.Logger

	mu       sync.RWMutex
	duration int
	fps      int
	source   string
	current  int
	total    int
	unit     string
	bar      Renderer

	log      *ring.Ring
	logLines int
}

// New creates a Parser
func New(cfg Config) *Parser {
	p := &Parser{
		newBar:   cfg.NewRenderer,
		logger:   cfg.Logger,
		logLines: cfg.LogLines,
	}
	if p.logger == nil {
		p.logger = logger.NewNop()
	}
	if p.logLines <= 0 {
		p.logLines = 100
	}
	p.log = ring.New(p.logLines)
	p.acc = NewAccumulator(cfg.Out, func() {
		p.mu.RLock()
		bar := p.bar
		p.mu.RUnlock()
		if bar != nil {
			bar.Break()
		}
	})
	return p
}

// ProcessByte consumes one byte of the child's stderr
func (p *Parser) ProcessByte(b byte) {
	line, ok := p.acc.ProcessByte(b)
	if !ok {
		return
	}

	p.mu.Lock()
	p.log.Value = Line{Timestamp: time.Now(), Data: line}
	p.log = p.log.Next()
	p.mu.Unlock()

	p.processLine(line)
}

// processLine latches metadata and converts a progress marker into a
// tick advance. Most lines match nothing; that is the normal case.
func (p *Parser) processLine(line string) {
	p.mu.Lock()

	if p.duration == 0 {
		if d, ok := ExtractDuration(line); ok {
			p.duration = d
			p.logger.Debug("duration latched: %ds", d)
		}
	}
	if p.source == "" {
		if s, ok := ExtractSource(line); ok {
			p.source = s
			p.logger.Debug("source latched: %s", s)
		}
	}
	if p.fps == 0 {
		if f, ok := ExtractFPS(line); ok {
			p.fps = f
			p.logger.Debug("frame rate latched: %d fps", f)
		}
	}

	current, ok := ExtractTime(line)
	if !ok {
		p.mu.Unlock()
		return
	}

	total := p.duration
	unit := "seconds"
	if p.fps > 0 {
		// 按帧率把秒数换算成帧数，两边同乘保持百分比一致
		unit = "frames"
		current *= p.fps
		if total > 0 {
			total *= p.fps
		}
	}

	p.total = total
	p.unit = unit

	if p.bar == nil && p.newBar != nil {
		title := p.source
		if title == "" {
			title = "Processing"
		}
		p.bar = p.newBar(title, total, unit)
	}

	bar := p.bar
	if current > p.current {
		p.current = current
	}
	if p.total > 0 && p.current > p.total {
		p.current = p.total
	}
	p.mu.Unlock()

	if bar == nil {
		return
	}
	// 只允许前进：乱序或重复的进度标记直接忽略
	if delta := current - bar.Current(); delta > 0 {
		bar.Advance(delta)
	}
}

// LastLine returns the child's most recent completed diagnostic line
func (p *Parser) LastLine() string {
	return p.acc.LastLine()
}

// Snapshot returns the current parse state
func (p *Parser) Snapshot() Progress {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Progress{
		Duration: p.duration,
		FPS:      p.fps,
		Source:   p.source,
		Current:  p.current,
		Total:    p.total,
		Unit:     p.unit,
	}
}

// Log returns the kept diagnostic lines, oldest first
func (p *Parser) Log() []Line {
	var out []Line
	p.mu.RLock()
	p.log.Do(func(v interface{}) {
		if v != nil {
			out = append(out, v.(Line))
		}
	})
	p.mu.RUnlock()
	return out
}

// Close finalizes the display. Called exactly once by the supervisor at
// teardown; a run that never produced a progress marker has no renderer
// and Close is a no-op then.
func (p *Parser) Close() {
	p.mu.RLock()
	bar := p.bar
	p.mu.RUnlock()
	if bar != nil {
		bar.Close()
	}
}
