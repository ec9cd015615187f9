// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFBar - FFmpeg 命令行进度条
//
// Package status exposes the wrapped encode as a small JSON API so a
// dashboard can poll a long-running run. Entirely best-effort: a bind
// failure is logged and the encode carries on without it.

package status

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lithammer/shortuuid/v4"

	"github.com/ZSC714725/ffbar/internal/ffmpeg/parse"
	"github.com/ZSC714725/ffbar/internal/logger"
	"github.com/ZSC714725/ffbar/internal/process"
)

// Server serves the status of the single supervised run
type Server struct {
	session string
	started time.Time
	sup     *process.Supervisor
	parser  *parse.Parser
	logger  logger.Logger
}

// NewServer creates a status server for one run
func NewServer(sup *process.Supervisor, parser *parse.Parser, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{
		session: shortuuid.New(),
		started: time.Now(),
		sup:     sup,
		parser:  parser,
		logger:  log,
	}
}

// Session returns the run's session id
func (s *Server) Session() string {
	return s.session
}

// Router builds the gin engine. Release mode keeps gin's debug output
// away from stderr, which belongs to the progress line.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), cors.Default())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/status", s.GetStatus)
		v1.GET("/log", s.GetLog)
	}

	return r
}

// Run serves until the process exits; meant to be called in its own
// goroutine
func (s *Server) Run(bind string) {
	if err := s.Router().Run(bind); err != nil {
		s.logger.Error("status api: %v", err)
	}
}

// GetStatus GET /api/v1/status
func (s *Server) GetStatus(c *gin.Context) {
	snap := s.parser.Snapshot()
	cpu, memory := s.sup.Usage()

	percent := 0.0
	if snap.Total > 0 {
		percent = float64(snap.Current) / float64(snap.Total) * 100
	}

	c.JSON(http.StatusOK, Status{
		Session: s.session,
		State:   s.sup.State(),
		Runtime: int64(time.Since(s.started).Seconds()),
		Progress: Progress{
			Duration: snap.Duration,
			FPS:      snap.FPS,
			Source:   snap.Source,
			Current:  snap.Current,
			Total:    snap.Total,
			Unit:     snap.Unit,
			Percent:  percent,
		},
		CPU:     cpu,
		Memory:  memory,
		LastLog: s.parser.LastLine(),
	})
}

// GetLog GET /api/v1/log
func (s *Server) GetLog(c *gin.Context) {
	lines := s.parser.Log()
	out := make([]LogEntry, 0, len(lines))
	for _, l := range lines {
		out = append(out, LogEntry{Timestamp: l.Timestamp.Unix(), Data: l.Data})
	}
	c.JSON(http.StatusOK, out)
}
