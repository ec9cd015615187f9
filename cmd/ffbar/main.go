// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFBar - FFmpeg 命令行进度条

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ZSC714725/ffbar/internal/bar"
	"github.com/ZSC714725/ffbar/internal/config"
	"github.com/ZSC714725/ffbar/internal/console"
	"github.com/ZSC714725/ffbar/internal/ffmpeg/parse"
	"github.com/ZSC714725/ffbar/internal/logger"
	"github.com/ZSC714725/ffbar/internal/process"
	"github.com/ZSC714725/ffbar/internal/status"
)

const usage = `ffbar - FFmpeg progress bar wrapper

Usage: ffbar [ffmpeg-arguments...]

All arguments are passed to ffmpeg unchanged. Example:

  ffbar -i input.mp4 -c:v libx264 -crf 23 output.mp4

Configuration is read from $FFBAR_CONFIG or ~/.config/ffbar/config.yaml.
The exit code is the ffmpeg exit code.
`

func main() {
	os.Exit(run())
}

// run 不直接调用 os.Exit，让 defer 有机会执行
func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "ffbar: %v\n", r)
			code = 1
		}
	}()

	if len(os.Args) < 2 {
		fmt.Print(usage)
		return 0
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "ffbar: load config: %v\n", err)
		return 1
	}

	log := logger.New(cfg.Log.File, cfg.Log.Level)

	colors := *cfg.Bar.Colors && console.IsTerminal(os.Stderr.Fd())
	parser := parse.New(parse.Config{
		Out:    os.Stderr,
		Logger: log,
		NewRenderer: func(title string, total int, unit string) parse.Renderer {
			return bar.New(bar.Config{
				Title:  title,
				Total:  total,
				Unit:   unit,
				Width:  cfg.Bar.Width,
				Colors: colors,
				Out:    os.Stderr,
			})
		},
	})

	keys := console.NewKeyReader(os.Stdin)
	defer keys.Close()

	sup, err := process.New(process.Config{
		Binary:       cfg.FFmpeg.Path,
		Args:         os.Args[1:],
		Parser:       parser,
		Keys:         keys,
		Notice:       os.Stderr,
		PollInterval: time.Duration(cfg.Input.PollIntervalMs) * time.Millisecond,
		DrainGrace:   time.Duration(cfg.Input.DrainGraceMs) * time.Millisecond,
		Logger:       log,
		Exit: func(code int) {
			// 信号路径绕过正常收尾，但终端必须恢复
			keys.Close()
			os.Exit(code)
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ffbar: %v\n", err)
		return 1
	}

	if cfg.Status.Bind != "" {
		srv := status.NewServer(sup, parser, log)
		log.Info("status api on %s (session %s)", cfg.Status.Bind, srv.Session())
		go srv.Run(cfg.Status.Bind)
	}

	code, err = sup.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ffbar: %v\n", err)
		return 1
	}
	return code
}
