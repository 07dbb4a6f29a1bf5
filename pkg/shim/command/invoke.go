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

package command

import (
	"fmt"
	"os"
	"time"

	"github.com/nuclio/nuclio-shim/pkg/codec"
	"github.com/nuclio/nuclio-shim/pkg/launcher"
	"github.com/nuclio/nuclio-shim/pkg/shim/app"

	"github.com/nuclio/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type invokeCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *RootCommandeer
	stopTimeout    time.Duration
}

func newInvokeCommandeer(rootCommandeer *RootCommandeer) *invokeCommandeer {
	commandeer := &invokeCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:   "invoke request-document",
		Short: "Start a shim, send it one JSON request document and print the response",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("Invoke requires a request document")
			}

			return commandeer.invoke(cmd, args[0])
		},
	}

	cmd.Flags().DurationVarP(&commandeer.stopTimeout, "stop-timeout", "", 10*time.Second, "How long to wait for the shim to exit")

	commandeer.cmd = cmd

	return commandeer
}

func (i *invokeCommandeer) invoke(cmd *cobra.Command, requestDocument string) error {
	shimConfiguration, err := i.rootCommandeer.resolveConfiguration()
	if err != nil {
		return errors.Wrap(err, "Failed to resolve configuration")
	}

	loggerInstance, err := app.CreateLogger(shimConfiguration.Logger.Level, cmd.ErrOrStderr())
	if err != nil {
		return errors.Wrap(err, "Failed to create logger")
	}

	jsonCodec, err := codec.Get("json")
	if err != nil {
		return errors.Wrap(err, "Failed to get JSON codec")
	}

	shimCodec, err := codec.Get(shimConfiguration.Codec)
	if err != nil {
		return errors.Wrap(err, "Failed to get shim codec")
	}

	// JSON documents are YAML, and YAML decodes numbers into native ints and floats which
	// every codec can re-encode
	var request interface{}
	if err := yaml.Unmarshal([]byte(requestDocument), &request); err != nil {
		return errors.Wrap(err, "Failed to parse request document")
	}

	shimPath := i.rootCommandeer.shimPath
	if shimPath == "" {
		shimPath, err = os.Executable()
		if err != nil {
			return errors.Wrap(err, "Failed to resolve shim executable")
		}
	}

	process, err := launcher.Launch(cmd.Context(), loggerInstance, &launcher.Options{
		Path: shimPath,
		Args: shimArgs(shimConfiguration),
	}, shimCodec)
	if err != nil {
		return errors.Wrap(err, "Failed to launch shim")
	}

	defer process.Stop(i.stopTimeout) // nolint: errcheck

	response, err := process.GetPeer().Invoke(request)
	if err != nil {
		return errors.Wrap(err, "Failed to invoke shim")
	}

	payload := response.Payload

	// show results as JSON too
	if response.Err() == nil {
		result, err := process.GetPeer().DecodeResult(response)
		if err != nil {
			return errors.Wrap(err, "Failed to decode result")
		}

		payload, err = jsonCodec.Encode(result)
		if err != nil {
			return errors.Wrap(err, "Failed to encode result as JSON")
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s:%s\n", string(response.Status), payload) // nolint: errcheck

	return response.Err()
}
