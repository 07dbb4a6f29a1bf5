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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/go-homedir"
	"github.com/nuclio/errors"
	"gopkg.in/yaml.v3"
)

const (
	ConfigTypeYAML = "yaml"
	ConfigTypeTOML = "toml"
)

type Reader struct{}

func NewReader() (*Reader, error) {
	return &Reader{}, nil
}

// Read parses a configuration of the given type on top of whatever config already holds
func (r *Reader) Read(reader io.Reader, configType string, config *Config) error {
	configBytes, err := io.ReadAll(reader)
	if err != nil {
		return errors.Wrap(err, "Failed to read shim configuration")
	}

	switch configType {
	case ConfigTypeYAML:
		if err := yaml.Unmarshal(configBytes, config); err != nil {
			return errors.Wrap(err, "Failed to parse YAML configuration")
		}

	case ConfigTypeTOML:
		if _, err := toml.Decode(string(configBytes), config); err != nil {
			return errors.Wrap(err, "Failed to parse TOML configuration")
		}

	default:
		return errors.Errorf("Unsupported configuration type %q", configType)
	}

	return nil
}

// ReadFileOrDefault returns the default configuration, overlaid with the file at
// configurationPath if one was given
func (r *Reader) ReadFileOrDefault(configurationPath string) (*Config, error) {
	shimConfiguration := r.GetDefaultConfiguration()

	if configurationPath == "" {
		return shimConfiguration, nil
	}

	expandedPath, err := homedir.Expand(configurationPath)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to expand configuration path %s", configurationPath)
	}

	configurationPath = expandedPath

	configType, err := r.resolveConfigType(configurationPath)
	if err != nil {
		return nil, err
	}

	shimConfigurationFile, err := os.Open(configurationPath)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open configuration file %s", configurationPath)
	}

	// close after
	defer shimConfigurationFile.Close() // nolint: errcheck

	if err := r.Read(shimConfigurationFile, configType, shimConfiguration); err != nil {
		return nil, errors.Wrap(err, "Failed to read configuration file")
	}

	return shimConfiguration, nil
}

func (r *Reader) GetDefaultConfiguration() *Config {
	return &Config{
		Codec:           "json",
		LoadFailureMode: "degrade",
		Logger: Logger{
			Level: "info",
		},
		Metrics: Metrics{
			InstanceName: "shim",
		},
	}
}

func (r *Reader) resolveConfigType(configurationPath string) (string, error) {
	switch strings.ToLower(filepath.Ext(configurationPath)) {
	case ".yaml", ".yml":
		return ConfigTypeYAML, nil
	case ".toml":
		return ConfigTypeTOML, nil
	}

	return "", errors.Errorf("Can't tell the type of configuration file %s", configurationPath)
}
