// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFBar - FFmpeg 命令行进度条
//
// Package process supervises one FFmpeg child: it pumps stderr bytes
// into the stream parser, forwards host keystrokes to the child's stdin
// and propagates the child's exit code.

package process

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"
	"time"

	gopsutilprocess "github.com/shirou/gopsutil/v3/process"

	"github.com/ZSC714725/ffbar/internal/logger"
)

// StreamParser consumes the child's stderr byte stream
type StreamParser interface {
	ProcessByte(b byte)
	LastLine() string
	Close()
}

// Keystrokes yields pending host keystrokes without blocking
type Keystrokes interface {
	Poll() (byte, bool)
}

// Config for a Supervisor
type Config struct {
	Binary string
	Args   []string
	Parser StreamParser
	// Keys is the keystroke source; nil disables forwarding
	Keys Keystrokes
	// Notice receives keystroke echo, the interrupt notice and the
	// failure summary (conventionally os.Stderr)
	Notice       io.Writer
	PollInterval time.Duration
	DrainGrace   time.Duration
	Watcher      ResourceWatcher
	Logger       logger.Logger
	// Exit terminates the program on an interrupt signal; defaults to
	// os.Exit. The signal path deliberately skips the drain phase.
	Exit func(code int)
}

type phaseType string

const (
	phaseStarting phaseType = "starting"
	phaseRunning  phaseType = "running"
	phaseDraining phaseType = "draining"
	phaseExited   phaseType = "exited"
)

// Supervisor runs the child once and multiplexes its three concurrent
// activities: the stderr pump, the keystroke pump and the signal watch.
type Supervisor struct {
	binary string
	args   []string
	parser StreamParser
	keys   Keystrokes
	notice io.Writer

	pollInterval time.Duration
	drainGrace   time.Duration
	watcher      ResourceWatcher
	logger       logger.Logger
	exit         func(int)

	phase struct {
		phase phaseType
		time  time.Time
		lock  sync.Mutex
	}
}

// New creates a Supervisor. The binary is resolved through PATH; that
// this can fail is the one fatal, non-retried error of the wrapper.
func New(config Config) (*Supervisor, error) {
	binary, err := exec.LookPath(config.Binary)
	if err != nil {
		return nil, fmt.Errorf("invalid ffmpeg binary: %w", err)
	}
	if config.Parser == nil {
		return nil, fmt.Errorf("no parser given")
	}

	s := &Supervisor{
		binary:       binary,
		args:         config.Args,
		parser:       config.Parser,
		keys:         config.Keys,
		notice:       config.Notice,
		pollInterval: config.PollInterval,
		drainGrace:   config.DrainGrace,
		watcher:      config.Watcher,
		logger:       config.Logger,
		exit:         config.Exit,
	}

	if s.notice == nil {
		s.notice = os.Stderr
	}
	if s.pollInterval <= 0 {
		s.pollInterval = 50 * time.Millisecond
	}
	if s.drainGrace <= 0 {
		s.drainGrace = 500 * time.Millisecond
	}
	if s.watcher == nil {
		s.watcher = NewSysWatcher()
	}
	if s.logger == nil {
		s.logger = logger.NewNop()
	}
	if s.exit == nil {
		s.exit = os.Exit
	}

	s.setPhase(phaseStarting)
	return s, nil
}

// State returns the current lifecycle phase
func (s *Supervisor) State() string {
	s.phase.lock.Lock()
	defer s.phase.lock.Unlock()
	return string(s.phase.phase)
}

// Usage returns the child's sampled CPU and memory usage
func (s *Supervisor) Usage() (cpu float64, memory uint64) {
	return s.watcher.Usage()
}

func (s *Supervisor) setPhase(phase phaseType) {
	s.phase.lock.Lock()
	defer s.phase.lock.Unlock()
	s.phase.phase = phase
	s.phase.time = time.Now()
}

// Run starts the child and blocks until it exits. The returned code is
// the child's exit code passed through unchanged; err is non-nil only
// for the fatal cases (failed start, wait failure).
func (s *Supervisor) Run() (int, error) {
	cmd := exec.Command(s.binary, s.args...)
	// 只接管 stderr 和 stdin，子进程的 stdout 原样直通
	cmd.Stdout = os.Stdout

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 1, fmt.Errorf("stderr pipe: %w", err)
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return 1, fmt.Errorf("stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return 1, fmt.Errorf("start %s: %w", s.binary, err)
	}

	s.logger.Info("started %s (pid %d)", s.binary, cmd.Process.Pid)
	s.watcher.Start(cmd.Process.Pid)
	go s.watchSignals(cmd)

	s.setPhase(phaseRunning)

	stop := make(chan struct{})
	drained := make(chan struct{})
	go s.forwardKeys(stdin, stop, drained)

	s.pump(cmd, stderr)

	// 子进程已退出，给按键转发一个有限的收尾窗口
	s.setPhase(phaseDraining)
	close(stop)
	select {
	case <-drained:
	case <-time.After(s.drainGrace):
		// 超时不算错误
	}

	s.setPhase(phaseExited)
	waitErr := cmd.Wait()
	s.watcher.Stop()
	s.parser.Close()

	if waitErr == nil {
		s.logger.Info("child exited: 0")
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		code := exitErr.ExitCode()
		s.logger.Info("child exited: %d", code)
		if last := s.parser.LastLine(); last != "" {
			fmt.Fprintln(s.notice, last)
		}
		return code, nil
	}

	return 1, fmt.Errorf("wait: %w", waitErr)
}

// pump reads the child's stderr one byte at a time, in arrival order,
// as the single consumer of that stream. End-of-stream while the child
// is still alive is retried after a short pause.
func (s *Supervisor) pump(cmd *exec.Cmd, r io.Reader) {
	defer func() {
		_ = recover()
	}()

	reader := bufio.NewReader(r)
	for {
		b, err := reader.ReadByte()
		if err == nil {
			s.parser.ProcessByte(b)
			continue
		}
		if err == io.EOF && alive(cmd.Process.Pid) {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		return
	}
}

// forwardKeys polls the keystroke source, echoes each key and forwards
// it to the child's stdin. Errors here are swallowed per iteration:
// input forwarding is a best-effort side channel.
func (s *Supervisor) forwardKeys(stdin io.Writer, stop <-chan struct{}, drained chan<- struct{}) {
	defer close(drained)
	if s.keys == nil {
		return
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.forwardOne(stdin)
		}
	}
}

func (s *Supervisor) forwardOne(stdin io.Writer) {
	defer func() {
		_ = recover()
	}()

	b, ok := s.keys.Poll()
	if !ok {
		return
	}
	if b == '\r' {
		// raw 模式下回车是 '\r'，子进程期待行结束符
		b = '\n'
	}
	fmt.Fprintf(s.notice, "%c", b)
	stdin.Write([]byte{b})
}

// watchSignals terminates the whole program on an interrupt. The user
// asked to abort, so the drain phase and the final bar repaint are
// skipped on purpose.
func (s *Supervisor) watchSignals(cmd *exec.Cmd) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	sig := <-ch

	fmt.Fprintln(s.notice, "\nExiting.")
	if cmd.Process != nil {
		cmd.Process.Kill()
	}

	code := 1
	if sysSig, ok := sig.(syscall.Signal); ok {
		code = 128 + int(sysSig)
	}
	s.exit(code)
}

// alive reports whether the child is still running. A plain signal-0
// probe is not enough: an exited child stays a zombie until Wait, and
// signaling a zombie still succeeds.
func alive(pid int) bool {
	proc, err := gopsutilprocess.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	statuses, err := proc.Status()
	if err != nil {
		return false
	}
	for _, st := range statuses {
		if st == gopsutilprocess.Zombie {
			return false
		}
	}
	return true
}
