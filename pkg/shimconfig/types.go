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

package shimconfig

import (
	"github.com/imdario/mergo"
	"github.com/nuclio/errors"
)

// Config is the shim configuration. Every field may also be set from the command line
type Config struct {
	Handler         string  `yaml:"handler,omitempty" toml:"handler"`
	Codec           string  `yaml:"codec,omitempty" toml:"codec"`
	LoadFailureMode string  `yaml:"loadFailureMode,omitempty" toml:"loadFailureMode"`
	Logger          Logger  `yaml:"logger,omitempty" toml:"logger"`
	Metrics         Metrics `yaml:"metrics,omitempty" toml:"metrics"`
}

type Logger struct {
	Level string `yaml:"level,omitempty" toml:"level"`
}

type Metrics struct {
	InstanceName string `yaml:"instanceName,omitempty" toml:"instanceName"`

	// node exporter textfile collector target; empty disables flushing
	Textfile string `yaml:"textfile,omitempty" toml:"textfile"`
}

// Merge overwrites fields with the non empty fields of overrides
func (c *Config) Merge(overrides *Config) error {
	if err := mergo.Merge(c, overrides, mergo.WithOverride); err != nil {
		return errors.Wrap(err, "Failed to merge configuration")
	}

	return nil
}
