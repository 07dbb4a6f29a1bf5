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

package app

import (
	"io"
	"os"

	"github.com/nuclio/nuclio-shim/pkg/channel"
	"github.com/nuclio/nuclio-shim/pkg/codec"
	"github.com/nuclio/nuclio-shim/pkg/framer"
	"github.com/nuclio/nuclio-shim/pkg/handler"
	"github.com/nuclio/nuclio-shim/pkg/invocation"
	"github.com/nuclio/nuclio-shim/pkg/shimconfig"
	"github.com/nuclio/nuclio-shim/pkg/statistics"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	"github.com/nuclio/zap"
	"github.com/v3io/version-go"
)

// Descriptors are the three descriptor numbers a supervisor passes on the command line
type Descriptors struct {
	Channel string
	Stdout  string
	Stderr  string
}

// Shim owns the channel and the loop serving it
type Shim struct {
	logger     logger.Logger
	channel    *channel.Channel
	loop       *invocation.Loop
	statistics *statistics.Statistics
}

// Run moves the output descriptors into place, then serves the channel until it fails
func Run(descriptors *Descriptors, shimConfiguration *shimconfig.Config) error {
	if err := channel.RedirectOutput(descriptors.Stdout, descriptors.Stderr); err != nil {
		return errors.Wrap(err, "Failed to redirect output")
	}

	loggerInstance, err := CreateLogger(shimConfiguration.Logger.Level, os.Stderr)
	if err != nil {
		return errors.Wrap(err, "Failed to create logger")
	}

	shim, err := NewShim(loggerInstance, descriptors.Channel, shimConfiguration)
	if err != nil {
		return errors.Wrap(err, "Failed to create shim")
	}

	return shim.Start()
}

// NewShim resolves the configured codec and handler and prepares a loop on the channel
// behind channelDescriptor
func NewShim(parentLogger logger.Logger,
	channelDescriptor string,
	shimConfiguration *shimconfig.Config) (*Shim, error) {
	var err error

	newShim := &Shim{
		logger: parentLogger.GetChild("shim"),
	}

	codecInstance, err := codec.Get(shimConfiguration.Codec)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to get codec")
	}

	loadFailureMode, err := invocation.ParseLoadFailureMode(shimConfiguration.LoadFailureMode)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to parse load failure mode")
	}

	newShim.statistics, err = statistics.NewStatistics(newShim.logger,
		shimConfiguration.Metrics.InstanceName,
		shimConfiguration.Metrics.Textfile)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create statistics")
	}

	// load before touching the channel so that a failing load in fail mode leaves it untouched
	loadResult := handler.Load(newShim.logger, shimConfiguration.Handler)

	newShim.channel, err = channel.Open(channelDescriptor)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to open channel")
	}

	newShim.loop, err = invocation.NewLoop(newShim.logger, &invocation.Configuration{
		Transport:       framer.NewFramer(newShim.logger, newShim.channel),
		Codec:           codecInstance,
		LoadResult:      loadResult,
		LoadFailureMode: loadFailureMode,
		Statistics:      newShim.statistics,
	})
	if err != nil {
		newShim.channel.Close() // nolint: errcheck
		return nil, errors.Wrap(err, "Failed to create invocation loop")
	}

	newShim.logger.InfoWith("Shim created",
		"channel", newShim.channel.GetID(),
		"handler", shimConfiguration.Handler,
		"codec", codecInstance.GetKind(),
		"loadFailureMode", string(loadFailureMode),
		"version", version.Get())

	return newShim, nil
}

// Start blocks serving requests. It only returns once the channel fails
func (s *Shim) Start() error {
	defer s.channel.Close() // nolint: errcheck

	return s.loop.Run()
}

// CreateLogger returns a command line logger writing to writer at the named level
func CreateLogger(levelName string, writer io.Writer) (logger.Logger, error) {
	var level nucliozap.Level

	switch levelName {
	case "debug":
		level = nucliozap.DebugLevel
	case "", "info":
		level = nucliozap.InfoLevel
	case "warn", "warning":
		level = nucliozap.WarnLevel
	case "error":
		level = nucliozap.ErrorLevel
	default:
		return nil, errors.Errorf("Unknown logger level %q", levelName)
	}

	return nucliozap.NewNuclioZapCmd("shim", level, writer)
}
