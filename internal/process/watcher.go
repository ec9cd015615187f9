// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFBar - FFmpeg 命令行进度条

package process

import (
	"sync"

	gopsutilprocess "github.com/shirou/gopsutil/v3/process"
)

// ResourceWatcher samples CPU and memory usage of the child process.
// NullWatcher does nothing.
type ResourceWatcher interface {
	Start(pid int) error
	Stop()
	Usage() (cpu float64, memory uint64)
}

type nullWatcher struct{}

// NewNullWatcher returns a no-op watcher
func NewNullWatcher() ResourceWatcher {
	return &nullWatcher{}
}

func (w *nullWatcher) Start(pid int) error      { return nil }
func (w *nullWatcher) Stop()                    {}
func (w *nullWatcher) Usage() (float64, uint64) { return 0, 0 }

// sysWatcher 使用 gopsutil 采集进程 CPU 和内存
type sysWatcher struct {
	mu   sync.RWMutex
	pid  int32
	proc *gopsutilprocess.Process
}

// NewSysWatcher creates a gopsutil-backed watcher
func NewSysWatcher() ResourceWatcher {
	return &sysWatcher{}
}

func (w *sysWatcher) Start(pid int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	proc, err := gopsutilprocess.NewProcess(int32(pid))
	if err != nil {
		return err
	}
	w.pid = int32(pid)
	w.proc = proc
	return nil
}

func (w *sysWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pid = 0
	w.proc = nil
}

func (w *sysWatcher) Usage() (cpu float64, memory uint64) {
	w.mu.RLock()
	proc := w.proc
	w.mu.RUnlock()
	if proc == nil {
		return 0, 0
	}
	if cpuPct, err := proc.CPUPercent(); err == nil {
		cpu = cpuPct
	}
	if memInfo, err := proc.MemoryInfo(); err == nil && memInfo != nil {
		memory = memInfo.RSS
	}
	return cpu, memory
}
