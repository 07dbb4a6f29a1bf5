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

package codec

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/nuclio/errors"
)

type jsonCodec struct{}

func (jc *jsonCodec) GetKind() string {
	return "json"
}

func (jc *jsonCodec) Decode(document string) (interface{}, error) {
	var value interface{}

	// a decoder stops after the first value, which is what lets the sentinel through
	decoder := json.NewDecoder(strings.NewReader(document))
	decoder.UseNumber()

	if err := decoder.Decode(&value); err != nil {
		return nil, errors.Wrap(err, "Failed to decode JSON document")
	}

	return value, nil
}

func (jc *jsonCodec) Encode(value interface{}) (string, error) {
	var buffer bytes.Buffer

	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(value); err != nil {
		return "", errors.Wrap(err, "Failed to encode JSON document")
	}

	return strings.TrimSuffix(buffer.String(), "\n"), nil
}

func init() {
	RegistrySingleton.Register("json", &jsonCodec{})
}
