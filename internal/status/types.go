// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFBar - FFmpeg 命令行进度条

package status

// Status is the live state of the wrapped encode
type Status struct {
	Session  string   `json:"session"`
	State    string   `json:"state"`
	Runtime  int64    `json:"runtime_seconds"`
	Progress Progress `json:"progress"`
	CPU      float64  `json:"cpu_usage"`
	Memory   uint64   `json:"memory_bytes"`
	LastLog  string   `json:"last_logline"`
}

// Progress mirrors the parser snapshot
type Progress struct {
	Duration int     `json:"duration_seconds"`
	FPS      int     `json:"fps"`
	Source   string  `json:"source"`
	Current  int     `json:"current_ticks"`
	Total    int     `json:"total_ticks"`
	Unit     string  `json:"unit"`
	Percent  float64 `json:"percent"`
}

// LogEntry is one kept diagnostic line
type LogEntry struct {
	Timestamp int64  `json:"timestamp"`
	Data      string `json:"data"`
}

// ErrorResponse for API errors
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}
