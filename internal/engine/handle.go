// Package engine wraps one external UCI engine process: it speaks the
// line-based text protocol over stdin/stdout and exposes the configure /
// position / search primitives the service drives per request.
package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// Sentinel errors for well-defined engine failure conditions.
var (
	// ErrExited indicates the engine process closed its output stream.
	ErrExited = errors.New("engine: process exited")

	// ErrReadyTimeout indicates the engine did not confirm readiness in time.
	ErrReadyTimeout = errors.New("engine: readiness confirmation timed out")

	// ErrStopTimeout indicates the engine kept searching past the stop
	// grace period. The handle must be destroyed, not reused: the process
	// is still computing and its pending output would leak into the next
	// request.
	ErrStopTimeout = errors.New("engine: no idle confirmation after stop")

	// ErrNoMove indicates the searched position has no legal move.
	ErrNoMove = errors.New("engine: no legal move available")

	// ErrMalformed indicates the engine's reply could not be parsed.
	ErrMalformed = errors.New("engine: malformed reply")
)

// Config configures an engine handle.
type Config struct {
	// Path is the engine binary to spawn.
	Path string

	// ReadyTimeout bounds handshake and readiness waits. Default 10s.
	ReadyTimeout time.Duration

	// StopGrace bounds the wait for a search to wind down after a stop
	// command. Default 2s.
	StopGrace time.Duration

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

func (c *Config) fillDefaults() {
	if c.ReadyTimeout == 0 {
		c.ReadyTimeout = 10 * time.Second
	}
	if c.StopGrace == 0 {
		c.StopGrace = 2 * time.Second
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// Handle owns a single engine process. A Handle is not safe for
// concurrent use; the pool guarantees one owner at a time.
type Handle struct {
	cfg   Config
	cmd   *exec.Cmd
	in    io.Writer
	lines chan string
	log   *zap.Logger
}

// New spawns the engine process and performs the protocol handshake.
func New(cfg Config) (*Handle, error) {
	cfg.fillDefaults()
	if cfg.Path == "" {
		return nil, fmt.Errorf("engine: binary path required")
	}

	cmd := exec.Command(cfg.Path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("engine: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("engine: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("engine: starting %s: %w", cfg.Path, err)
	}

	h := newHandle(cfg, stdin, stdout)
	h.cmd = cmd

	if err := h.handshake(); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}

	h.log.Debug("engine started", zap.String("path", cfg.Path), zap.Int("pid", cmd.Process.Pid))
	return h, nil
}

// newHandle wires a handle over arbitrary reader/writer streams and
// starts the line reader. Used by New and by tests.
func newHandle(cfg Config, in io.Writer, out io.Reader) *Handle {
	cfg.fillDefaults()
	h := &Handle{
		cfg:   cfg,
		in:    in,
		lines: make(chan string, 256),
		log:   cfg.Logger,
	}
	go h.readLoop(out)
	return h
}

// readLoop feeds engine output lines into the handle's channel and
// closes it when the process's output stream ends.
func (h *Handle) readLoop(out io.Reader) {
	scanner := bufio.NewScanner(out)
	// Deep searches emit very long info lines.
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		h.lines <- scanner.Text()
	}
	close(h.lines)
}

// handshake identifies the protocol and waits for the engine to come up.
func (h *Handle) handshake() error {
	if err := h.send(cmdUCI()); err != nil {
		return err
	}
	if err := h.awaitLine("uciok", h.cfg.ReadyTimeout); err != nil {
		return fmt.Errorf("engine: handshake: %w", err)
	}
	return h.awaitReady()
}

// Configure applies per-checkout engine options. It must run on every
// checkout: a recycled handle may previously have served a request of a
// different strength.
func (h *Handle) Configure(skillLevel, multiPV int) error {
	if skillLevel < 0 {
		skillLevel = 0
	}
	if skillLevel > 20 {
		skillLevel = 20
	}
	if multiPV < 1 {
		multiPV = 1
	}
	if err := h.send(cmdSetOption(optSkillLevel, skillLevel)); err != nil {
		return err
	}
	if err := h.send(cmdSetOption(optMultiPV, multiPV)); err != nil {
		return err
	}
	return h.awaitReady()
}

// SetPosition loads a position from its FEN encoding.
func (h *Handle) SetPosition(fen string) error {
	c, err := cmdPosition(fen)
	if err != nil {
		return err
	}
	if err := h.send(c); err != nil {
		return err
	}
	return h.awaitReady()
}

// Search runs a bounded search and blocks until the engine reports its
// chosen move or ctx expires. On expiry the handle sends an explicit
// stop and waits up to StopGrace for the engine to go idle; only then is
// the handle safe to recycle. If the idle confirmation never arrives the
// search fails with ErrStopTimeout and the handle must be destroyed.
func (h *Handle) Search(ctx context.Context, depth int) (Answer, error) {
	c, err := cmdGoDepth(depth)
	if err != nil {
		return Answer{}, err
	}
	if err := h.send(c); err != nil {
		return Answer{}, err
	}

	var ans Answer
	for {
		select {
		case line, ok := <-h.lines:
			if !ok {
				return Answer{}, ErrExited
			}
			if ans.consume(line) {
				return finishAnswer(ans)
			}
		case <-ctx.Done():
			return h.abortSearch(ctx, &ans)
		}
	}
}

// abortSearch winds down an in-flight search after the deadline expired.
// A completed wind-down still reports the context error to the caller;
// the handle itself is back in a known-idle state.
func (h *Handle) abortSearch(ctx context.Context, ans *Answer) (Answer, error) {
	if err := h.send(cmdStop()); err != nil {
		return Answer{}, err
	}
	grace := time.NewTimer(h.cfg.StopGrace)
	defer grace.Stop()
	for {
		select {
		case line, ok := <-h.lines:
			if !ok {
				return Answer{}, ErrExited
			}
			if ans.consume(line) {
				return *ans, fmt.Errorf("engine: search aborted: %w", ctx.Err())
			}
		case <-grace.C:
			h.log.Warn("engine ignored stop", zap.Duration("grace", h.cfg.StopGrace))
			return Answer{}, ErrStopTimeout
		}
	}
}

// finishAnswer validates a completed search reply.
func finishAnswer(ans Answer) (Answer, error) {
	switch ans.BestMove {
	case "":
		return Answer{}, ErrMalformed
	case noMove:
		return Answer{}, ErrNoMove
	}
	return ans, nil
}

// Reset returns the handle to its baseline state between requests.
func (h *Handle) Reset() error {
	if err := h.send(cmdNewGame()); err != nil {
		return err
	}
	return h.awaitReady()
}

// Close asks the process to quit and reaps it, killing after StopGrace
// if it does not exit on its own.
func (h *Handle) Close() error {
	// Unblock the reader in case output is still pending.
	go func() {
		for range h.lines {
		}
	}()
	_ = h.send(cmdQuit())
	if h.cmd == nil {
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- h.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(h.cfg.StopGrace):
		h.log.Warn("engine did not quit, killing", zap.Int("pid", h.cmd.Process.Pid))
		_ = h.cmd.Process.Kill()
		return <-done
	}
}

// awaitReady synchronizes with the engine: it answers isready only once
// all preceding commands have been absorbed.
func (h *Handle) awaitReady() error {
	if err := h.send(cmdIsReady()); err != nil {
		return err
	}
	return h.awaitLine("readyok", h.cfg.ReadyTimeout)
}

// awaitLine discards output until the wanted line arrives.
func (h *Handle) awaitLine(want string, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case line, ok := <-h.lines:
			if !ok {
				return ErrExited
			}
			if line == want {
				return nil
			}
		case <-deadline.C:
			return ErrReadyTimeout
		}
	}
}

func (h *Handle) send(c command) error {
	if _, err := fmt.Fprintln(h.in, string(c)); err != nil {
		return fmt.Errorf("engine: writing %q: %w", string(c), err)
	}
	return nil
}
