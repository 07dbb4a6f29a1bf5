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

package framer

import (
	"io"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

// ChunkSize is the size of a full transport chunk. Peers must agree on it.
const ChunkSize = 1024

// Sentinel terminates payloads that would otherwise end on a full chunk
const Sentinel = byte(0)

// Transport sends and receives whole messages
type Transport interface {

	// Send writes a payload as a chunk sequence
	Send(payload string) error

	// Receive blocks until a complete payload was read
	Receive() (string, error)
}

// Framer implements Transport over a channel that preserves write boundaries
type Framer struct {
	logger  logger.Logger
	channel io.ReadWriter
	chunk   []byte
}

// NewFramer returns a framer reading and writing the given channel
func NewFramer(parentLogger logger.Logger, channel io.ReadWriter) *Framer {
	return &Framer{
		logger:  parentLogger.GetChild("framer"),
		channel: channel,
		chunk:   make([]byte, ChunkSize),
	}
}

// Send writes the payload, chunk after chunk. A failed or short write is fatal
func (f *Framer) Send(payload string) error {
	chunks := Split([]byte(payload))

	f.logger.DebugWith("Sending message", "size", len(payload), "chunks", len(chunks))

	for chunkIndex, chunk := range chunks {
		written, err := f.channel.Write(chunk)
		if err != nil {
			return NewTransportError(errors.Wrapf(err, "Failed to write chunk %d", chunkIndex))
		}

		if written != len(chunk) {
			return NewTransportError(errors.Errorf("Short write of chunk %d (%d/%d bytes)",
				chunkIndex,
				written,
				len(chunk)))
		}
	}

	return nil
}

// Receive reads chunks until one shorter than ChunkSize arrives and returns the
// accumulated text, sentinel included
func (f *Framer) Receive() (string, error) {
	var message []byte

	for {
		read, err := f.channel.Read(f.chunk)
		message = append(message, f.chunk[:read]...)

		if err != nil && err != io.EOF {
			return "", NewTransportError(errors.Wrap(err, "Failed to read chunk"))
		}

		// end of stream before anything arrived means the peer is gone
		if err == io.EOF && len(message) == 0 {
			return "", NewTransportError(errors.Wrap(err, "Channel closed"))
		}

		if read < ChunkSize || err == io.EOF {
			break
		}
	}

	f.logger.DebugWith("Received message", "size", len(message))

	return string(message), nil
}

// Split returns the chunks a payload is sent as, sentinel included
func Split(payload []byte) [][]byte {
	if len(payload)%ChunkSize == 0 {
		padded := make([]byte, len(payload), len(payload)+1)
		copy(padded, payload)
		payload = append(padded, Sentinel)
	}

	chunks := make([][]byte, 0, len(payload)/ChunkSize+1)
	for len(payload) > ChunkSize {
		chunks = append(chunks, payload[:ChunkSize])
		payload = payload[ChunkSize:]
	}

	return append(chunks, payload)
}

// IsEmptyMessage returns true if a received message carried no payload, i.e. it is nothing
// but the sentinel an empty payload is sent as
func IsEmptyMessage(message string) bool {
	return message == "" || message == string(Sentinel)
}

// TrimSentinel removes the sentinel a sender appended to an exact multiple (or empty) payload
func TrimSentinel(message string) string {
	trimmed := len(message) - 1
	if trimmed >= 0 && trimmed%ChunkSize == 0 && message[trimmed] == Sentinel {
		return message[:trimmed]
	}

	return message
}
