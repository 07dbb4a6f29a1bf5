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
	"runtime/debug"
	"time"

	"github.com/nuclio/nuclio-shim/pkg/codec"
	"github.com/nuclio/nuclio-shim/pkg/framer"
	"github.com/nuclio/nuclio-shim/pkg/handler"
	"github.com/nuclio/nuclio-shim/pkg/statistics"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	"github.com/rs/xid"
)

// Configuration holds what a loop is built from
type Configuration struct {
	Transport       framer.Transport
	Codec           codec.Codec
	LoadResult      handler.LoadResult
	LoadFailureMode LoadFailureMode

	// optional
	Statistics *statistics.Statistics
}

// Loop serves requests one at a time, forever
type Loop struct {
	logger          logger.Logger
	transport       framer.Transport
	codec           codec.Codec
	loadResult      handler.LoadResult
	loadFailureMode LoadFailureMode
	statistics      *statistics.Statistics
}

type outcome struct {
	status          Status
	handlerInvoked  bool
	handlerDuration time.Duration
}

// NewLoop returns a loop ready to run. With LoadFailureModeFail, a failed load result is
// returned as an error instead
func NewLoop(parentLogger logger.Logger, configuration *Configuration) (*Loop, error) {
	if configuration.Transport == nil {
		return nil, errors.New("Transport is required")
	}

	if configuration.Codec == nil {
		return nil, errors.New("Codec is required")
	}

	if configuration.LoadResult.Failed() {
		if configuration.LoadFailureMode == LoadFailureModeFail {
			return nil, errors.Wrap(configuration.LoadResult.GetError(), "Failed to load handler")
		}

		parentLogger.WarnWith("Handler is not loaded, every request will be answered with a load failure",
			"err", errors.GetErrorStackString(configuration.LoadResult.GetError(), 10))
	}

	return &Loop{
		logger:          parentLogger.GetChild("loop"),
		transport:       configuration.Transport,
		codec:           configuration.Codec,
		loadResult:      configuration.LoadResult,
		loadFailureMode: configuration.LoadFailureMode,
		statistics:      configuration.Statistics,
	}, nil
}

// Run serves requests until the transport fails, and returns that failure
func (l *Loop) Run() error {
	l.logger.InfoWith("Serving requests",
		"codec", l.codec.GetKind(),
		"degraded", l.loadResult.Failed())

	for {
		if err := l.Cycle(); err != nil {
			return err
		}
	}
}

// Cycle serves exactly one request. Only transport failures are returned
func (l *Loop) Cycle() error {
	request, err := l.transport.Receive()
	if err != nil {
		return err
	}

	cycleID := xid.New().String()
	l.logger.DebugWith("Got request", "cycleID", cycleID, "size", len(request))

	response, requestOutcome := l.respond(cycleID, request)

	if err := l.transport.Send(response); err != nil {
		return err
	}

	l.logger.DebugWith("Sent response",
		"cycleID", cycleID,
		"status", requestOutcome.status.String(),
		"size", len(response))

	if l.statistics != nil {
		l.statistics.Observe(requestOutcome.status.String(),
			requestOutcome.handlerDuration,
			requestOutcome.handlerInvoked)

		// statistics are best effort
		if err := l.statistics.Flush(); err != nil {
			l.logger.WarnWith("Failed to flush statistics", "err", err.Error())
		}
	}

	return nil
}

// Respond maps request text to response text, without touching the transport
func (l *Loop) Respond(request string) string {
	response, _ := l.respond(xid.New().String(), request)
	return response
}

func (l *Loop) respond(cycleID string, request string) (string, outcome) {

	// once loading failed there's nothing to call
	if l.loadResult.Failed() {
		return FormatResponse(StatusLoadFailure, LoadFailurePayload), outcome{status: StatusLoadFailure}
	}

	// a lone sentinel would decode as a document in some codecs (msgpack reads it as 0)
	if framer.IsEmptyMessage(request) {
		l.logger.WarnWith("Got empty request", "cycleID", cycleID)
		return FormatResponse(StatusException, ExceptionPayload), outcome{status: StatusException}
	}

	decodedRequest, err := l.codec.Decode(request)
	if err != nil {
		l.logger.WarnWith("Failed to decode request", "cycleID", cycleID, "err", err.Error())
		return FormatResponse(StatusException, ExceptionPayload), outcome{status: StatusException}
	}

	startTime := time.Now()
	result, err := l.invoke(decodedRequest)
	requestOutcome := outcome{
		handlerInvoked:  true,
		handlerDuration: time.Since(startTime),
	}

	if err != nil {
		l.logger.WarnWith("Handler failed",
			"cycleID", cycleID,
			"err", errors.GetErrorStackString(err, 10))

		requestOutcome.status = StatusException
		return FormatResponse(StatusException, ExceptionPayload), requestOutcome
	}

	encodedResult, err := l.codec.Encode(result)
	if err != nil {
		l.logger.WarnWith("Failed to encode handler result",
			"cycleID", cycleID,
			"resultType", fmt.Sprintf("%T", result),
			"err", err.Error())

		requestOutcome.status = StatusException
		return FormatResponse(StatusException, ExceptionPayload), requestOutcome
	}

	requestOutcome.status = StatusSuccess
	return FormatResponse(StatusSuccess, encodedResult), requestOutcome
}

func (l *Loop) invoke(request interface{}) (response interface{}, responseErr error) {
	defer func() {
		if err := recover(); err != nil {
			callStack := debug.Stack()

			l.logger.ErrorWith("Panic caught in handler",
				"err", err,
				"stack", string(callStack))

			responseErr = errors.Errorf("Caught panic: %v", err)
		}
	}()

	return l.loadResult.GetHandler().Handle(request)
}
