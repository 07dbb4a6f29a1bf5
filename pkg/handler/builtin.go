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
	"github.com/nuclio/nuclio-shim/pkg/registry"

	"github.com/nuclio/errors"
)

// BuiltinModule selects a handler compiled into the shim
const BuiltinModule = "builtin"

// BuiltinRegistrySingleton holds handlers compiled into the shim, mostly for development
// and for exercising a sandbox without user code
var BuiltinRegistrySingleton = registry.NewRegistry("builtin handler")

func loadBuiltin(name string) LoadResult {
	registeree, err := BuiltinRegistrySingleton.Get(name)
	if err != nil {
		return LoadFailed(errors.Wrapf(err, "Unknown builtin handler %q", name))
	}

	return Loaded(registeree.(Handler))
}

func init() {

	// returns the request as is
	BuiltinRegistrySingleton.Register("echo", HandlerFunc(func(request interface{}) (interface{}, error) {
		return request, nil
	}))

	// always fails, to check how a peer copes with exceptions
	BuiltinRegistrySingleton.Register("fail", HandlerFunc(func(request interface{}) (interface{}, error) {
		return nil, errors.New("Builtin failure")
	}))

	// panics, which the invocation loop reports as an exception
	BuiltinRegistrySingleton.Register("panic", HandlerFunc(func(request interface{}) (interface{}, error) {
		panic("builtin panic")
	}))
}
