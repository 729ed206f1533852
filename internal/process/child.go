// Package process supervises the external decoder subprocesses that
// make up each capture mode: rtl_fm, multimon-ng, rtl_433, airodump-ng,
// bluetoothctl, dump1090, hcxdumptool and friends.
package process

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/unipheas/intercept/internal/aplog"
)

var (
	registryMu sync.Mutex
	registry   = make(map[*Child]struct{})
)

// register adds a child to the global cleanup registry.
func register(c *Child) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[c] = struct{}{}
}

// unregister removes a child from the global cleanup registry.
func unregister(c *Child) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, c)
}

// RegisteredCount reports how many children are currently held in the
// cleanup registry, for the post-shutdown leak assertion.
func RegisteredCount() int {
	registryMu.Lock()
	defer registryMu.Unlock()
	return len(registry)
}

// CleanupAll terminates every still-registered child. It is invoked
// from the signal handler in main so no decoder is ever orphaned when
// the server exits.
func CleanupAll() {
	registryMu.Lock()
	children := make([]*Child, 0, len(registry))
	for c := range registry {
		children = append(children, c)
	}
	registryMu.Unlock()

	for _, c := range children {
		c.Stop(5 * time.Second)
	}
}

// LineFunc receives a single line of subprocess output: stdout, or for
// a Child built with UsePTY, the terminal's combined stdout and stderr.
type LineFunc func(line string)

// Child wraps a single external decoder process: own process group,
// PTY option for tools that line-buffer only against a terminal, and
// two-phase stop (SIGTERM then SIGKILL after a grace period).
type Child struct {
	Name string
	log  *zap.SugaredLogger

	cmd    *exec.Cmd
	usePTY bool
	ptyF   *os.File

	onLine   LineFunc
	onStderr LineFunc

	mu      sync.Mutex
	started bool
	stopped bool
	doneCh  chan struct{}
	waitErr error
}

// NewChild builds a Child for the given binary and arguments. onLine is
// invoked once per newline-terminated line of output, from a single
// internal goroutine, so it may safely touch shared state without its
// own locking. A nil log gets a caller-less child logger tagged with
// the process name, so pump diagnostics still land somewhere.
func NewChild(log *zap.SugaredLogger, name string, onLine LineFunc, argv ...string) *Child {
	if log == nil {
		log = aplog.NewChild(name)
	}
	return &Child{
		Name:   name,
		log:    log,
		cmd:    exec.Command(argv[0], argv[1:]...),
		onLine: onLine,
		doneCh: make(chan struct{}),
	}
}

// UsePTY attaches the child's stdout to a pseudo-terminal instead of a
// pipe, for tools (multimon-ng, bluetoothctl) that only line-buffer
// when talking to a tty.
func (c *Child) UsePTY() *Child {
	c.usePTY = true
	return c
}

// OnStderr registers a callback invoked once per line of the child's
// stderr, read by a dedicated pump goroutine so a full stderr pipe can
// never deadlock the child (the OS-level pipe-fill hazard every spawned
// decoder is exposed to). Must be called before Start. A Child built
// with UsePTY has no separate stderr pipe: its stderr goes to the
// terminal and reaches onLine, and this callback is never invoked.
func (c *Child) OnStderr(f LineFunc) *Child {
	c.onStderr = f
	return c
}

// SetStdin returns a writer for the child's stdin, useful for
// interactive tools like bluetoothctl. Must be called before Start.
func (c *Child) SetStdin() (io.WriteCloser, error) {
	return c.cmd.StdinPipe()
}

// Write sends data to a PTY-backed child's combined input/output
// stream, for interactive tools (bluetoothctl) that take commands on
// stdin after launch rather than via argv. Only valid after Start on a
// child built with UsePTY.
func (c *Child) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ptyF == nil {
		return 0, errors.New("child has no pty stdin")
	}
	return c.ptyF.Write(p)
}

// Env appends environment variables to the child's environment.
func (c *Child) Env(kv ...string) *Child {
	c.cmd.Env = append(os.Environ(), kv...)
	return c
}

// Dir sets the child's working directory.
func (c *Child) Dir(dir string) *Child {
	c.cmd.Dir = dir
	return c
}

// Start launches the subprocess in its own process group, so Stop can
// signal the whole group rather than leaking grandchildren.
func (c *Child) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return errors.New("child already started")
	}

	if c.usePTY {
		// pty.Start sets Setsid, which already makes the child a
		// process-group leader; adding Setpgid on top of it fails
		// with EPERM. Non-PTY children get their own group
		// explicitly so Stop can signal the whole tree.
		f, err := pty.Start(c.cmd)
		if err != nil {
			return errors.Wrapf(err, "pty start %s", c.Name)
		}
		c.ptyF = f
		go c.scan(f)
	} else {
		c.cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		stdout, err := c.cmd.StdoutPipe()
		if err != nil {
			return errors.Wrapf(err, "stdout pipe %s", c.Name)
		}
		var stderr io.ReadCloser
		if c.onStderr != nil {
			stderr, err = c.cmd.StderrPipe()
			if err != nil {
				return errors.Wrapf(err, "stderr pipe %s", c.Name)
			}
		}
		if err := c.cmd.Start(); err != nil {
			return errors.Wrapf(err, "start %s", c.Name)
		}
		go c.scan(stdout)
		if stderr != nil {
			go c.scanStderr(stderr)
		}
	}

	c.started = true
	register(c)

	go func() {
		c.waitErr = c.cmd.Wait()
		if c.ptyF != nil {
			c.ptyF.Close()
		}
		unregister(c)
		close(c.doneCh)
	}()

	return nil
}

func (c *Child) scan(r io.Reader) {
	// With no line callback the output still has to be drained, or a
	// raw-sample producer (rtl_fm -M raw) fills the pipe and stalls.
	// io.Copy also avoids the line scanner's max-token limit, which a
	// newline-free binary stream would trip immediately.
	if c.onLine == nil {
		_, _ = io.Copy(io.Discard, r)
		return
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		c.onLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil && c.log != nil {
		c.log.Debugw("scan ended", "child", c.Name, "err", err)
	}
}

// scanStderr drains the child's stderr on its own goroutine, entirely
// independent of the stdout scanner, so a chatty decoder can never
// fill one pipe and stall the other.
func (c *Child) scanStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if c.onStderr != nil {
			c.onStderr(scanner.Text())
		}
	}
}

// StderrTail captures the last few lines of a child's stderr for
// classification when a process exits within its settle window.
// Install it as the OnStderr callback before Start.
type StderrTail struct {
	mu    sync.Mutex
	lines []string
	max   int
}

// NewStderrTail creates a tail buffer retaining at most max lines.
func NewStderrTail(max int) *StderrTail {
	if max <= 0 {
		max = 20
	}
	return &StderrTail{max: max}
}

// Append is a LineFunc suitable for Child.OnStderr.
func (t *StderrTail) Append(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

// Lines returns a snapshot of the retained tail.
func (t *StderrTail) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.lines...)
}

// Done returns a channel closed once the subprocess has exited.
func (c *Child) Done() <-chan struct{} {
	return c.doneCh
}

// Err returns the error (if any) the subprocess exited with. Only
// meaningful after Done() has fired.
func (c *Child) Err() error {
	return c.waitErr
}

// PID returns the subprocess's process id, or 0 if not yet started.
func (c *Child) PID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd.Process == nil {
		return 0
	}
	return c.cmd.Process.Pid
}

// Running reports whether the subprocess is still alive.
func (c *Child) Running() bool {
	select {
	case <-c.doneCh:
		return false
	default:
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.started && !c.stopped
	}
}

// Stop sends SIGTERM to the child's process group, then SIGKILL if it
// has not exited within grace.
func (c *Child) Stop(grace time.Duration) {
	c.mu.Lock()
	if !c.started || c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	pid := 0
	if c.cmd.Process != nil {
		pid = c.cmd.Process.Pid
	}
	c.mu.Unlock()

	if pid == 0 {
		return
	}

	_ = syscall.Kill(-pid, syscall.SIGTERM)

	select {
	case <-c.doneCh:
		return
	case <-time.After(grace):
	}

	_ = syscall.Kill(-pid, syscall.SIGKILL)
	<-c.doneCh
}

// Signal delivers an arbitrary signal to the child's process group,
// used for tools that respond to SIGINT for graceful flush (hcxdumptool).
func (c *Child) Signal(sig syscall.Signal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd.Process == nil {
		return errors.New("child not started")
	}
	return syscall.Kill(-c.cmd.Process.Pid, sig)
}

// WaitContext blocks until the child exits or ctx is cancelled, in
// which case the child is stopped with a short grace period.
func (c *Child) WaitContext(ctx context.Context, grace time.Duration) error {
	select {
	case <-c.doneCh:
		return c.waitErr
	case <-ctx.Done():
		c.Stop(grace)
		return ctx.Err()
	}
}
