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
	"plugin"

	"github.com/mitchellh/mapstructure"
	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

const (

	// DefaultSymbol is looked up when the spec doesn't name one
	DefaultSymbol = "Main"

	// InitSymbol is called once after loading, if the plugin exports it
	InitSymbol = "Init"
)

type pluginLoader struct {
	logger logger.Logger
}

func newPluginLoader(parentLogger logger.Logger) *pluginLoader {
	return &pluginLoader{
		logger: parentLogger.GetChild("plugin"),
	}
}

func (pl *pluginLoader) load(path string, symbolName string) LoadResult {
	handlerPlugin, err := plugin.Open(path)
	if err != nil {
		return LoadFailed(errors.Wrapf(err, "Can't load plugin at %q", path))
	}

	handlerSymbol, err := handlerPlugin.Lookup(symbolName)
	if err != nil {
		return LoadFailed(errors.Wrapf(err, "Can't find handler %q in %q", symbolName, path))
	}

	handlerInstance, err := adaptSymbol(handlerSymbol)
	if err != nil {
		return LoadFailed(errors.Wrapf(err, "%s:%s is not a handler", path, symbolName))
	}

	initSymbol, err := handlerPlugin.Lookup(InitSymbol)

	// if we can't find it, just carry on - it's not mandatory
	if err != nil {
		return Loaded(handlerInstance)
	}

	initializer, isInitializer := initSymbol.(func() error)
	if !isInitializer {
		return LoadFailed(errors.Errorf("%s is of wrong type - %T", InitSymbol, initSymbol))
	}

	pl.logger.DebugWith("Calling initializer", "path", path)

	if err := initializer(); err != nil {
		return LoadFailed(errors.Wrap(err, "Failed to initialize handler"))
	}

	return Loaded(handlerInstance)
}

// adaptSymbol turns an exported symbol into a Handler. Functions are accepted in a few
// common shapes; variables must implement Handler
func adaptSymbol(symbol interface{}) (Handler, error) {
	switch typedSymbol := symbol.(type) {
	case func(interface{}) (interface{}, error):
		return HandlerFunc(typedSymbol), nil

	case func(map[string]interface{}) (interface{}, error):
		return HandlerFunc(func(request interface{}) (interface{}, error) {
			requestMap, isMap := request.(map[string]interface{})
			if !isMap {
				return nil, errors.Errorf("Expected an object request, got %T", request)
			}

			return typedSymbol(requestMap)
		}), nil

	case func(map[string]string) interface{}:
		return HandlerFunc(func(request interface{}) (interface{}, error) {
			var args map[string]string

			if err := mapstructure.WeakDecode(request, &args); err != nil {
				return nil, errors.Wrap(err, "Failed to convert request to string arguments")
			}

			return typedSymbol(args), nil
		}), nil

	case Handler:
		return typedSymbol, nil

	// exported variables of interface type are looked up by address
	case *Handler:
		if *typedSymbol == nil {
			return nil, errors.New("Exported handler is nil")
		}

		return *typedSymbol, nil
	}

	return nil, errors.Errorf("Unsupported handler type %T", symbol)
}
