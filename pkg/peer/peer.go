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

package peer

import (
	"strings"

	"github.com/nuclio/nuclio-shim/pkg/codec"
	"github.com/nuclio/nuclio-shim/pkg/framer"
	"github.com/nuclio/nuclio-shim/pkg/invocation"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

var (
	ErrException   = errors.New("Handler raised an exception")
	ErrLoadFailure = errors.New("Handler failed to load")
)

// Response is a parsed shim response
type Response struct {
	Status  invocation.Status
	Payload string
}

// ParseResponse parses "<status>:<payload>" as received from the shim
func ParseResponse(message string) (*Response, error) {
	message = framer.TrimSentinel(message)

	separatorIndex := strings.Index(message, ":")
	if separatorIndex == -1 {
		return nil, errors.Errorf("Response has no status: %q", message)
	}

	status := invocation.Status(message[:separatorIndex])
	switch status {
	case invocation.StatusSuccess, invocation.StatusException, invocation.StatusLoadFailure:
	default:
		return nil, errors.Errorf("Unknown response status %q", string(status))
	}

	return &Response{
		Status:  status,
		Payload: message[separatorIndex+1:],
	}, nil
}

// Err returns nil for successful responses, otherwise ErrException or ErrLoadFailure
func (r *Response) Err() error {
	switch r.Status {
	case invocation.StatusException:
		return ErrException
	case invocation.StatusLoadFailure:
		return ErrLoadFailure
	}

	return nil
}

// Peer is the supervisor end of a shim channel. It has at most one request in flight
type Peer struct {
	logger    logger.Logger
	transport framer.Transport
	codec     codec.Codec
}

// NewPeer returns a peer that encodes requests with the given codec
func NewPeer(parentLogger logger.Logger, transport framer.Transport, codecInstance codec.Codec) *Peer {
	return &Peer{
		logger:    parentLogger.GetChild("peer"),
		transport: transport,
		codec:     codecInstance,
	}
}

// Invoke encodes the request, sends it and waits for the response
func (p *Peer) Invoke(request interface{}) (*Response, error) {
	encodedRequest, err := p.codec.Encode(request)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to encode request")
	}

	return p.InvokeRaw(encodedRequest)
}

// InvokeRaw sends already encoded request text
func (p *Peer) InvokeRaw(request string) (*Response, error) {
	if err := p.transport.Send(request); err != nil {
		return nil, errors.Wrap(err, "Failed to send request")
	}

	message, err := p.transport.Receive()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to receive response")
	}

	response, err := ParseResponse(message)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to parse response")
	}

	p.logger.DebugWith("Got response", "status", response.Status.String(), "size", len(response.Payload))

	return response, nil
}

// DecodeResult decodes the payload of a successful response
func (p *Peer) DecodeResult(response *Response) (interface{}, error) {
	if err := response.Err(); err != nil {
		return nil, err
	}

	return p.codec.Decode(response.Payload)
}
