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
	"github.com/mitchellh/mapstructure"
	"github.com/nuclio/errors"
)

// Typed adapts a function over concrete request/response types. The decoded document is
// converted to Request by its json tags, weakly (e.g. "3" into an int field)
func Typed[Request any, Response any](handlerFunc func(Request) (Response, error)) Handler {
	return HandlerFunc(func(request interface{}) (interface{}, error) {
		var typedRequest Request

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &typedRequest,
			TagName:          "json",
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, errors.Wrap(err, "Failed to create request decoder")
		}

		if err := decoder.Decode(request); err != nil {
			return nil, errors.Wrapf(err, "Failed to convert request to %T", typedRequest)
		}

		return handlerFunc(typedRequest)
	})
}
