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
	"github.com/nuclio/nuclio-shim/pkg/registry"

	"github.com/nuclio/errors"
)

// Codec turns request text into a structured document and handler results back into text
type Codec interface {

	// GetKind returns the name the codec is registered under
	GetKind() string

	// Decode parses the first document in the text. Trailing bytes (e.g. the framing
	// sentinel) are ignored
	Decode(document string) (interface{}, error)

	// Encode serializes a handler result
	Encode(value interface{}) (string, error)
}

// DefaultKind is used when no codec was configured
const DefaultKind = "json"

// RegistrySingleton holds all codecs, keyed by kind
var RegistrySingleton = registry.NewRegistry("codec")

// Get returns the codec registered under kind
func Get(kind string) (Codec, error) {
	if kind == "" {
		kind = DefaultKind
	}

	registeree, err := RegistrySingleton.Get(kind)
	if err != nil {
		return nil, errors.Wrapf(err, "Unknown codec %q (available: %v)", kind, RegistrySingleton.GetKinds())
	}

	return registeree.(Codec), nil
}
