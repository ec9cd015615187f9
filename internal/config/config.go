// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFBar - FFmpeg 命令行进度条

package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`
	Bar    BarConfig    `yaml:"bar"`
	Input  InputConfig  `yaml:"input"`
	Status StatusConfig `yaml:"status"`
	Log    LogConfig    `yaml:"log"`
}

// FFmpegConfig FFmpeg 配置
type FFmpegConfig struct {
	Path string `yaml:"path"`
}

// BarConfig 进度条配置
type BarConfig struct {
	Width  int   `yaml:"width"` // 0 = 根据终端宽度自适应
	Colors *bool `yaml:"colors"`
}

// InputConfig 键盘转发配置
type InputConfig struct {
	PollIntervalMs int `yaml:"poll_interval_ms"`
	DrainGraceMs   int `yaml:"drain_grace_ms"`
}

// StatusConfig 状态接口配置
type StatusConfig struct {
	Bind string `yaml:"bind"` // 空字符串表示禁用
}

// LogConfig 日志配置
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Default 返回默认配置
func Default() *Config {
	colors := true
	return &Config{
		FFmpeg: FFmpegConfig{Path: "ffmpeg"},
		Bar:    BarConfig{Width: 0, Colors: &colors},
		Input:  InputConfig{PollIntervalMs: 50, DrainGraceMs: 500},
		Status: StatusConfig{Bind: ""},
		Log:    LogConfig{Level: "info"},
	}
}

// Path returns the config file location: $FFBAR_CONFIG if set, else
// ~/.config/ffbar/config.yaml. Command-line flags are not an option
// here because the whole argument list belongs to the child process.
func Path() string {
	if p := os.Getenv("FFBAR_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ffbar", "config.yaml")
}

// Load 从 YAML 文件加载配置
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// 填充空值
	if cfg.FFmpeg.Path == "" {
		cfg.FFmpeg.Path = "ffmpeg"
	}
	if cfg.Input.PollIntervalMs <= 0 {
		cfg.Input.PollIntervalMs = 50
	}
	if cfg.Input.DrainGraceMs <= 0 {
		cfg.Input.DrainGraceMs = 500
	}
	if cfg.Bar.Colors == nil {
		colors := true
		cfg.Bar.Colors = &colors
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}
