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
	"github.com/nuclio/errors"
)

// TransportError is raised when the channel can no longer carry messages. It is never
// recovered by the invocation loop
type TransportError struct {
	cause error
}

// NewTransportError wraps a channel level failure
func NewTransportError(cause error) *TransportError {
	return &TransportError{cause: cause}
}

func (te *TransportError) Error() string {
	return "Transport failure: " + te.cause.Error()
}

func (te *TransportError) Unwrap() error {
	return te.cause
}

// Cause returns the underlying error
func (te *TransportError) Cause() error {
	return te.cause
}

// IsTransportError returns true if err is, or wraps, a TransportError
func IsTransportError(err error) bool {
	for err != nil {
		if _, isTransportError := err.(*TransportError); isTransportError {
			return true
		}

		cause := errors.Cause(err)
		if cause == err {
			break
		}

		err = cause
	}

	return false
}
