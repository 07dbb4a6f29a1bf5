//go:build linux

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

package channel

import (
	"os"

	"github.com/nuclio/errors"
	"golang.org/x/sys/unix"
)

// NewPair creates a connected SOCK_SEQPACKET pair. The local end stays with the caller; the
// remote file is meant to be handed to a child process (e.g. through exec.Cmd.ExtraFiles)
// and closed by the caller once the child started
func NewPair() (*Channel, *os.File, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_SEQPACKET|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, nil, errors.Wrap(err, "Failed to create socket pair")
	}

	local := os.NewFile(uintptr(fds[0]), "channel-local")
	remote := os.NewFile(uintptr(fds[1]), "channel-remote")

	return NewChannel(local), remote, nil
}

// RedirectOutput binds the given descriptors to stdout and stderr and closes them in their
// original slot. Called once, before anything is written to either stream
func RedirectOutput(stdoutDescriptor string, stderrDescriptor string) error {
	var redirections []descriptorRedirection

	for _, output := range []struct {
		descriptor string
		target     int
	}{
		{stdoutDescriptor, unix.Stdout},
		{stderrDescriptor, unix.Stderr},
	} {
		fd, err := ParseDescriptor(output.descriptor)
		if err != nil {
			return errors.Wrap(err, "Bad output descriptor")
		}

		redirections = append(redirections, descriptorRedirection{fd: fd, target: output.target})
	}

	return redirectDescriptors(redirections)
}

type descriptorRedirection struct {
	fd     int
	target int
}

// redirectDescriptors places every fd onto its target. All sources are copied before any
// target is replaced, so a source may also be another redirection's target (e.g. stdout
// passed as 2 and stderr as 1)
func redirectDescriptors(redirections []descriptorRedirection) error {
	targets := map[int]bool{}
	lowestCopy := 0

	for _, redirection := range redirections {
		targets[redirection.target] = true

		if redirection.target >= lowestCopy {
			lowestCopy = redirection.target + 1
		}
	}

	// copies land above every target so placing one target never replaces a copy
	copies := make([]int, len(redirections))
	defer func() {
		for _, fdCopy := range copies {
			if fdCopy > 0 {
				unix.Close(fdCopy) // nolint: errcheck
			}
		}
	}()

	for redirectionIndex, redirection := range redirections {

		// already in place
		if redirection.fd == redirection.target {
			continue
		}

		fdCopy, err := unix.FcntlInt(uintptr(redirection.fd), unix.F_DUPFD_CLOEXEC, lowestCopy)
		if err != nil {
			return errors.Wrapf(err, "Failed to duplicate descriptor %d", redirection.fd)
		}

		copies[redirectionIndex] = fdCopy
	}

	// close original slots, except those about to be replaced by a target
	closed := map[int]bool{}
	for _, redirection := range redirections {
		if targets[redirection.fd] || closed[redirection.fd] {
			continue
		}

		if err := unix.Close(redirection.fd); err != nil {
			return errors.Wrapf(err, "Failed to close original descriptor %d", redirection.fd)
		}

		closed[redirection.fd] = true
	}

	for redirectionIndex, redirection := range redirections {
		if copies[redirectionIndex] == 0 {
			continue
		}

		if err := unix.Dup3(copies[redirectionIndex], redirection.target, 0); err != nil {
			return errors.Wrapf(err, "Failed to redirect descriptor %d to %d", redirection.fd, redirection.target)
		}
	}

	return nil
}
