// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFBar - FFmpeg 命令行进度条

package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDuration(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int
		ok   bool
	}{
		{
			name: "header line",
			line: "  Duration: 01:02:03.00, start: 0.000000, bitrate: 5605 kb/s",
			want: 3723,
			ok:   true,
		},
		{
			name: "fraction discarded",
			line: "Duration: 00:00:01.99",
			want: 1,
			ok:   true,
		},
		{
			name: "no match",
			line: "Stream #0:0(und): Video: h264",
			want: 0,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractDuration(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTime(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int
		ok   bool
	}{
		{
			name: "progress line",
			line: "frame=  250 fps= 25 q=28.0 size=     256kB time=00:00:10.00 bitrate= 209.7kbits/s speed=   1x",
			want: 10,
			ok:   true,
		},
		{
			name: "hours carry",
			line: "time=01:02:03.45",
			want: 3723,
			ok:   true,
		},
		{
			name: "no marker",
			line: "Press [q] to stop, [?] for help",
			want: 0,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractTime(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractSource(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
		ok   bool
	}{
		{
			name: "input line",
			line: "Input #0, mov,mp4,m4a,3gp,3g2,mj2, from '/media/clips/input.mp4':",
			want: "input.mp4",
			ok:   true,
		},
		{
			name: "bare file name",
			line: "Input #0, matroska,webm, from 'movie.mkv':",
			want: "movie.mkv",
			ok:   true,
		},
		{
			name: "no match",
			line: "Output #0, mp4, to 'out.mp4':",
			want: "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractSource(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractFPS(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int
		ok   bool
	}{
		{
			name: "decimal",
			line: "    Stream #0:0: Video: h264, yuv420p, 1920x1080, 25.00 fps, 25 tbr",
			want: 25,
			ok:   true,
		},
		{
			name: "rounds up",
			line: "29.97 fps",
			want: 30,
			ok:   true,
		},
		{
			name: "integer",
			line: "24 fps",
			want: 24,
			ok:   true,
		},
		{
			name: "no match",
			line: "frame=  250 q=28.0",
			want: 0,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractFPS(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
