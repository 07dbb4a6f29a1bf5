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

package handler

import (
	"strings"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

// Handler is the user function. It is invoked once per request, never concurrently
type Handler interface {
	Handle(request interface{}) (interface{}, error)
}

// HandlerFunc adapts a plain function to Handler
type HandlerFunc func(request interface{}) (interface{}, error)

func (hf HandlerFunc) Handle(request interface{}) (interface{}, error) {
	return hf(request)
}

// LoadResult is the outcome of loading a handler: either a usable handler or the reason
// loading failed. A failed result is final for the lifetime of the process
type LoadResult struct {
	handler Handler
	err     error
}

// Loaded returns a successful load result
func Loaded(handler Handler) LoadResult {
	return LoadResult{handler: handler}
}

// LoadFailed returns a failed load result
func LoadFailed(err error) LoadResult {
	if err == nil {
		err = errors.New("Handler failed to load")
	}

	return LoadResult{err: err}
}

// Failed returns true if no handler is available
func (lr LoadResult) Failed() bool {
	return lr.handler == nil
}

// GetHandler returns the loaded handler, or nil if loading failed
func (lr LoadResult) GetHandler() Handler {
	return lr.handler
}

// GetError returns why loading failed
func (lr LoadResult) GetError() error {
	return lr.err
}

// Load resolves a handler spec. Specs are either "builtin:<name>" or
// "<plugin path>[:<symbol>]"; the symbol defaults to Main
func Load(parentLogger logger.Logger, spec string) LoadResult {
	loggerInstance := parentLogger.GetChild("handler")

	module, symbol, err := ParseSpec(spec)
	if err != nil {
		return LoadFailed(errors.Wrap(err, "Failed to parse handler spec"))
	}

	var result LoadResult

	if module == BuiltinModule {
		result = loadBuiltin(symbol)
	} else {
		result = newPluginLoader(loggerInstance).load(module, symbol)
	}

	if result.Failed() {
		loggerInstance.WarnWith("Failed to load handler", "spec", spec, "err", errors.GetErrorStackString(result.err, 10))
	} else {
		loggerInstance.DebugWith("Handler loaded", "module", module, "symbol", symbol)
	}

	return result
}

// ParseSpec splits a handler spec into its module and symbol
func ParseSpec(spec string) (string, string, error) {
	if spec == "" {
		return "", "", errors.New("Handler spec is empty")
	}

	moduleAndSymbol := strings.Split(spec, ":")
	switch len(moduleAndSymbol) {

	// module only
	case 1:
		return moduleAndSymbol[0], DefaultSymbol, nil

	// module:symbol
	case 2:
		if moduleAndSymbol[0] == "" {
			return "", "", errors.Errorf("Handler spec %q has no module", spec)
		}

		if moduleAndSymbol[1] == "" {
			return moduleAndSymbol[0], DefaultSymbol, nil
		}

		return moduleAndSymbol[0], moduleAndSymbol[1], nil

	default:
		return "", "", errors.Errorf("Invalid handler spec %s", spec)
	}
}
