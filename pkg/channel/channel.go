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
	"strconv"

	"github.com/nuclio/errors"
)

// Channel is the duplex endpoint requests and responses travel on. Each write must be
// received by exactly one read on the other end
type Channel struct {
	file       *os.File
	descriptor int
}

// NewChannel wraps an already open file
func NewChannel(file *os.File) *Channel {
	return &Channel{
		file:       file,
		descriptor: int(file.Fd()),
	}
}

// Open adopts the channel a supervisor passed by descriptor number
func Open(descriptor string) (*Channel, error) {
	fd, err := ParseDescriptor(descriptor)
	if err != nil {
		return nil, errors.Wrap(err, "Bad channel descriptor")
	}

	file := os.NewFile(uintptr(fd), "channel")
	if file == nil {
		return nil, errors.Errorf("Descriptor %d is not valid", fd)
	}

	return &Channel{file: file, descriptor: fd}, nil
}

// ParseDescriptor parses a descriptor number given as a process argument
func ParseDescriptor(descriptor string) (int, error) {
	fd, err := strconv.Atoi(descriptor)
	if err != nil {
		return -1, errors.Wrapf(err, "Descriptor %q is not a number", descriptor)
	}

	if fd < 0 {
		return -1, errors.Errorf("Descriptor %d is negative", fd)
	}

	return fd, nil
}

// Read reads one packet
func (c *Channel) Read(buffer []byte) (int, error) {
	return c.file.Read(buffer)
}

// Write writes one packet
func (c *Channel) Write(buffer []byte) (int, error) {
	return c.file.Write(buffer)
}

// Close closes the local end
func (c *Channel) Close() error {
	return c.file.Close()
}

// GetID returns the descriptor as it is passed on a command line
func (c *Channel) GetID() string {
	return strconv.Itoa(c.descriptor)
}
