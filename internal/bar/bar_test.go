// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFBar - FFmpeg 命令行进度条

package bar

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastFrame(buf *bytes.Buffer) string {
	// 取最后一次重绘的内容（最后一个 \r 之后）
	s := buf.String()
	if i := strings.LastIndex(s, "\r"); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSuffix(s, "\n")
}

func TestBarRender(t *testing.T) {
	out := &bytes.Buffer{}
	b := New(Config{
		Title: "clip.mp4",
		Total: 100,
		Unit:  "seconds",
		Width: 10,
		Out:   out,
	})

	b.Advance(50)

	assert.Equal(t, 50, b.Current())
	assert.Equal(t, "clip.mp4: 50% [#####-----] 50/100 seconds", lastFrame(out))
}

func TestBarIgnoresNonPositiveDelta(t *testing.T) {
	b := New(Config{Total: 100, Width: 10, Out: &bytes.Buffer{}})

	b.Advance(10)
	b.Advance(0)
	b.Advance(-5)

	assert.Equal(t, 10, b.Current())
}

func TestBarClampsToTotal(t *testing.T) {
	b := New(Config{Total: 100, Width: 10, Out: &bytes.Buffer{}})

	b.Advance(60)
	b.Advance(60)

	assert.Equal(t, 100, b.Current())
}

func TestBarUnbounded(t *testing.T) {
	out := &bytes.Buffer{}
	b := New(Config{Total: 0, Unit: "seconds", Width: 10, Out: out})

	b.Advance(42)

	// 总量未知：百分比退化为 0%，只显示当前值，没有 ETA
	assert.Equal(t, 42, b.Current())
	assert.Equal(t, "0% [----------] 42 seconds", lastFrame(out))
}

func TestBarCloseIdempotent(t *testing.T) {
	out := &bytes.Buffer{}
	b := New(Config{Total: 100, Width: 10, Out: out})

	b.Advance(30)
	b.Close()
	first := out.String()

	require.True(t, strings.HasSuffix(first, "\n"))
	assert.Contains(t, lastFrame(out), "100% [##########] 100/100")

	b.Close()
	assert.Equal(t, first, out.String())
}

func TestBarCloseWithoutAdvance(t *testing.T) {
	out := &bytes.Buffer{}
	b := New(Config{Total: 100, Width: 10, Out: out})

	b.Close()

	assert.Contains(t, lastFrame(out), "100%")
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
}

func TestBarBreak(t *testing.T) {
	out := &bytes.Buffer{}
	b := New(Config{Total: 100, Width: 10, Out: out})

	// 没有画过任何内容时不需要换行
	b.Break()
	assert.Empty(t, out.String())

	b.Advance(10)
	b.Break()
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
}

func TestBarTiming(t *testing.T) {
	tests := []struct {
		name     string
		progress float64
		want     string
	}{
		// 一半进度：剩余时间等于已用时间
		{name: "halfway", progress: 0.5, want: " [00:10<00:10]"},
		// 进度为零（总量未知）：只显示已用时间
		{name: "zero progress", progress: 0, want: " [00:10]"},
		// 已完成：ETA 不为正，同样省略
		{name: "done", progress: 1.0, want: " [00:10]"},
		{name: "quarter", progress: 0.25, want: " [00:10<00:30]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(Config{Total: 100, Width: 10, Out: &bytes.Buffer{}})
			b.start = time.Now().Add(-10 * time.Second)
			assert.Equal(t, tt.want, b.timing(tt.progress))
		})
	}
}

func TestBarTimingBeforeFirstSecond(t *testing.T) {
	b := New(Config{Total: 100, Width: 10, Out: &bytes.Buffer{}})
	assert.Equal(t, "", b.timing(0.5))
}

func TestBarRenderWithTiming(t *testing.T) {
	out := &bytes.Buffer{}
	b := New(Config{Title: "clip.mp4", Total: 100, Unit: "seconds", Width: 10, Out: out})
	b.start = time.Now().Add(-10 * time.Second)

	b.Advance(50)

	assert.Equal(t, "clip.mp4: 50% [#####-----] 50/100 seconds [00:10<00:10]", lastFrame(out))
}

func TestBarBlanksPreviousLine(t *testing.T) {
	out := &bytes.Buffer{}
	b := New(Config{Total: 1000, Width: 10, Out: out})

	b.Advance(1000)
	first := lastFrame(out)

	out.Reset()
	b.Close()
	// 重绘先用空格盖掉旧行
	assert.True(t, strings.HasPrefix(out.String(), "\r"+strings.Repeat(" ", len(first))))
}

func TestBarBlanksByDisplayWidth(t *testing.T) {
	out := &bytes.Buffer{}
	b := New(Config{Title: "视频素材.mp4", Total: 100, Unit: "seconds", Width: 10, Out: out})

	b.Advance(50)
	first := lastFrame(out)
	// 中日韩字符每个占两列而不是三个字节
	want := runewidth.StringWidth(first)
	require.Less(t, want, len(first))

	out.Reset()
	b.Advance(10)
	blanked := strings.TrimPrefix(out.String(), "\r")
	assert.Equal(t, strings.Repeat(" ", want)+"\r", blanked[:want+1])
}

func TestBarWidthFromTerminal(t *testing.T) {
	tests := []struct {
		name  string
		title string
		termW int
		err   error
		want  int
	}{
		{name: "fits", title: "t", termW: 100, want: 100 - 1 - 50},
		{name: "clamped low", termW: 40, want: 20},
		{name: "clamped high", termW: 300, want: 60},
		{name: "query failure", termW: 0, err: errors.New("no tty"), want: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(Config{
				Title: tt.title,
				Total: 100,
				Out:   &bytes.Buffer{},
				TermWidth: func() (int, error) {
					return tt.termW, tt.err
				},
			})
			assert.Equal(t, tt.want, b.barWidth())
		})
	}
}

func TestBarColors(t *testing.T) {
	out := &bytes.Buffer{}
	b := New(Config{Total: 100, Width: 10, Out: out, Colors: true})

	b.Advance(50)

	s := out.String()
	assert.Contains(t, s, colorYellow+"50%"+colorReset)
	assert.Contains(t, s, colorGreen)
}
