package process

import (
	"io"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Pipeline chains two Children so the first's stdout feeds the
// second's stdin, mirroring shell's `rtl_fm | multimon-ng`. Only the
// downstream child's onLine fires; the upstream child is plumbing.
type Pipeline struct {
	log        *zap.SugaredLogger
	upstream   *Child
	downstream *Child
	pipeW      io.WriteCloser
}

// NewPipeline builds an unstarted pipeline. upstream and downstream
// must not have been started yet.
func NewPipeline(log *zap.SugaredLogger, upstream, downstream *Child) *Pipeline {
	return &Pipeline{log: log, upstream: upstream, downstream: downstream}
}

// Start launches the downstream process first (so it is ready to
// accept input), wires upstream's stdout into it, then starts
// upstream.
func (p *Pipeline) Start() error {
	stdin, err := p.downstream.SetStdin()
	if err != nil {
		return errors.Wrap(err, "pipeline downstream stdin")
	}
	p.pipeW = stdin

	if err := p.downstream.Start(); err != nil {
		return errors.Wrap(err, "pipeline downstream start")
	}

	upstreamOut, err := p.upstream.cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "pipeline upstream stdout")
	}

	if err := p.upstream.startRaw(); err != nil {
		return errors.Wrap(err, "pipeline upstream start")
	}

	go func() {
		io.Copy(stdin, upstreamOut)
		stdin.Close()
	}()

	return nil
}

// startRaw starts a child without its own stdout scanner, since this
// child's stdout is being piped elsewhere.
func (c *Child) startRaw() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return errors.New("child already started")
	}

	c.cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stderr io.ReadCloser
	if c.onStderr != nil {
		var err error
		stderr, err = c.cmd.StderrPipe()
		if err != nil {
			return err
		}
	}

	if err := c.cmd.Start(); err != nil {
		return err
	}
	c.started = true
	register(c)
	if stderr != nil {
		go c.scanStderr(stderr)
	}
	go func() {
		c.waitErr = c.cmd.Wait()
		unregister(c)
		close(c.doneCh)
	}()
	return nil
}

// Stop terminates the upstream feeder first, then the downstream
// process, so EOF propagates through the pipe naturally instead of the
// downstream being killed out from under a writer.
func (p *Pipeline) Stop(grace time.Duration) {
	p.upstream.Stop(grace)
	p.downstream.Stop(grace)
}

// Done returns a channel closed once the downstream (terminal) process
// has exited.
func (p *Pipeline) Done() <-chan struct{} {
	return p.downstream.Done()
}

// Upstream returns the feeder child, for PID/status reporting.
func (p *Pipeline) Upstream() *Child { return p.upstream }

// Downstream returns the terminal child, for PID/status reporting.
func (p *Pipeline) Downstream() *Child { return p.downstream }

// PID reports the downstream (decoding) process's pid, since that is
// the process whose resource usage is representative of the pipeline.
func (p *Pipeline) PID() int { return p.downstream.PID() }
