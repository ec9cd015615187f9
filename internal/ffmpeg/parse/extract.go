// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFBar - FFmpeg 命令行进度条

package parse

import (
	"math"
	"path/filepath"
	"regexp"
	"strconv"
)

var (
	durationRe = regexp.MustCompile(`Duration: (\d{2}):(\d{2}):(\d{2})\.\d{2}`)
	timeRe     = regexp.MustCompile(`time=(\d{2}):(\d{2}):(\d{2})\.\d{2}`)
	sourceRe   = regexp.MustCompile(`from '(.*)':`)
	fpsRe      = regexp.MustCompile(`(\d+\.\d+|\d+) fps`)
)

// ExtractDuration parses "Duration: HH:MM:SS.ff" into total seconds.
// The fractional part is discarded.
func ExtractDuration(line string) (int, bool) {
	m := durationRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	return seconds(m[1], m[2], m[3]), true
}

// ExtractTime parses the "time=HH:MM:SS.ff" progress marker into seconds
func ExtractTime(line string) (int, bool) {
	m := timeRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	return seconds(m[1], m[2], m[3]), true
}

// ExtractSource parses "from '<path>':" and returns the file name only
func ExtractSource(line string) (string, bool) {
	m := sourceRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return filepath.Base(m[1]), true
}

// ExtractFPS parses "<n> fps" or "<n>.<n> fps" and rounds to the
// nearest integer
func ExtractFPS(line string) (int, bool) {
	m := fpsRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return int(math.Round(f)), true
}

func seconds(hours, minutes, secs string) int {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(secs)
	return (h*60+m)*60 + s
}
