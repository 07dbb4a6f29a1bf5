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

package invocation

import (
	"fmt"

	"github.com/nuclio/errors"
)

// Status prefixes every response
type Status string

const (
	StatusSuccess     Status = "0"
	StatusException   Status = "1"
	StatusLoadFailure Status = "2"
)

// Payloads of the failure statuses. They carry no detail about the failure
const (
	ExceptionPayload   = "Exception"
	LoadFailurePayload = "Error loading script"
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusException:
		return "exception"
	case StatusLoadFailure:
		return "load_error"
	}

	return fmt.Sprintf("Unknown status - %s", string(s))
}

// FormatResponse builds the wire form of a response
func FormatResponse(status Status, payload string) string {
	return string(status) + ":" + payload
}

// LoadFailureMode decides what happens when the handler could not be loaded
type LoadFailureMode string

const (

	// LoadFailureModeDegrade keeps serving, answering every request with StatusLoadFailure
	LoadFailureModeDegrade LoadFailureMode = "degrade"

	// LoadFailureModeFail refuses to start
	LoadFailureModeFail LoadFailureMode = "fail"
)

// ParseLoadFailureMode validates a configured mode. Empty means degrade
func ParseLoadFailureMode(mode string) (LoadFailureMode, error) {
	switch LoadFailureMode(mode) {
	case "", LoadFailureModeDegrade:
		return LoadFailureModeDegrade, nil
	case LoadFailureModeFail:
		return LoadFailureModeFail, nil
	}

	return "", errors.Errorf("Unknown load failure mode %q", mode)
}
