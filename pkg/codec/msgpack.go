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
	"strings"

	"github.com/nuclio/errors"
	"github.com/vmihailenco/msgpack/v4"
)

// msgpackCodec carries documents as raw msgpack bytes. Struct results are encoded by
// their json tags so handlers don't need a second set of tags
type msgpackCodec struct{}

func (mc *msgpackCodec) GetKind() string {
	return "msgpack"
}

func (mc *msgpackCodec) Decode(document string) (interface{}, error) {
	value, err := msgpack.NewDecoder(strings.NewReader(document)).DecodeInterface()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to decode msgpack document")
	}

	return value, nil
}

func (mc *msgpackCodec) Encode(value interface{}) (string, error) {
	var buffer bytes.Buffer

	encoder := msgpack.NewEncoder(&buffer)
	encoder.UseJSONTag(true)

	if err := encoder.Encode(value); err != nil {
		return "", errors.Wrap(err, "Failed to encode msgpack document")
	}

	return buffer.String(), nil
}

func init() {
	RegistrySingleton.Register("msgpack", &msgpackCodec{})
}
