/*
Copyright 2024 The Nuclio Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package launcher

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/nuclio/nuclio-shim/pkg/channel"
	"github.com/nuclio/nuclio-shim/pkg/codec"
	"github.com/nuclio/nuclio-shim/pkg/framer"
	"github.com/nuclio/nuclio-shim/pkg/peer"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

// exec.Cmd places ExtraFiles starting at this descriptor in the child
const firstExtraDescriptor = 3

var ErrStopTimeout = errors.New("Timed out waiting for shim to exit")

type Options struct {

	// path of the shim binary
	Path string

	// passed before the three descriptor arguments
	Args []string

	// nil inherits the environment
	Env []string

	// where the shim's stdout / stderr end up. default to ours
	Stdout *os.File
	Stderr *os.File
}

// Process is a running shim child and the peer talking to it
type Process struct {
	logger  logger.Logger
	cmd     *exec.Cmd
	channel *channel.Channel
	peer    *peer.Peer
	exited  chan struct{}
	waitErr error
}

// Launch starts a shim with a fresh channel as its first extra descriptor and its output
// descriptors right after it
func Launch(ctx context.Context,
	parentLogger logger.Logger,
	options *Options,
	codecInstance codec.Codec) (*Process, error) {
	loggerInstance := parentLogger.GetChild("launcher")

	if options.Path == "" {
		return nil, errors.New("Shim path is required")
	}

	local, remote, err := channel.NewPair()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create channel")
	}

	// the child holds its own copy once started
	defer remote.Close() // nolint: errcheck

	extraFiles := []*os.File{
		remote,
		fileOrDefault(options.Stdout, os.Stdout),
		fileOrDefault(options.Stderr, os.Stderr),
	}

	args := append([]string{}, options.Args...)
	for extraFileIndex := range extraFiles {
		args = append(args, strconv.Itoa(firstExtraDescriptor+extraFileIndex))
	}

	cmd := exec.CommandContext(ctx, options.Path, args...)
	cmd.Env = options.Env
	cmd.ExtraFiles = extraFiles

	if err := cmd.Start(); err != nil {
		local.Close() // nolint: errcheck
		return nil, errors.Wrapf(err, "Failed to start shim %s", options.Path)
	}

	loggerInstance.DebugWith("Shim started",
		"pid", cmd.Process.Pid,
		"path", options.Path,
		"args", args)

	process := &Process{
		logger:  loggerInstance,
		cmd:     cmd,
		channel: local,
		peer:    peer.NewPeer(loggerInstance, framer.NewFramer(loggerInstance, local), codecInstance),
		exited:  make(chan struct{}),
	}

	go process.wait()

	return process, nil
}

// GetPeer returns the peer bound to the shim's channel
func (p *Process) GetPeer() *peer.Peer {
	return p.peer
}

// GetPID returns the shim's process id
func (p *Process) GetPID() int {
	return p.cmd.Process.Pid
}

// Exited is closed once the shim exited
func (p *Process) Exited() <-chan struct{} {
	return p.exited
}

// Wait blocks until the shim exits and returns the exec.Cmd wait error, nil for a zero exit
func (p *Process) Wait() error {
	<-p.exited

	return p.waitErr
}

// ExitCode returns the shim's exit code, or -1 while it is still running
func (p *Process) ExitCode() int {
	select {
	case <-p.exited:
		return p.cmd.ProcessState.ExitCode()
	default:
		return -1
	}
}

// Stop closes the channel, which ends the shim with a transport failure, and waits up to
// timeout for it to exit. A shim still running after that is killed
func (p *Process) Stop(timeout time.Duration) error {
	if err := p.channel.Close(); err != nil {
		return errors.Wrap(err, "Failed to close channel")
	}

	select {
	case <-p.exited:
		p.logger.DebugWith("Shim exited", "pid", p.GetPID(), "exitCode", p.ExitCode())

		return nil

	case <-time.After(timeout):
		p.logger.WarnWith("Shim did not exit in time, killing it", "pid", p.GetPID(), "timeout", timeout)

		if err := p.cmd.Process.Kill(); err != nil {
			return errors.Wrap(err, "Failed to kill shim")
		}

		<-p.exited

		return ErrStopTimeout
	}
}

func (p *Process) wait() {
	p.waitErr = p.cmd.Wait()

	close(p.exited)
}

func fileOrDefault(file *os.File, defaultFile *os.File) *os.File {
	if file != nil {
		return file
	}

	return defaultFile
}
