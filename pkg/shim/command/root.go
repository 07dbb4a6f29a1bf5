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
	"github.com/nuclio/nuclio-shim/pkg/shim/app"
	"github.com/nuclio/nuclio-shim/pkg/shimconfig"

	"github.com/nuclio/errors"
	"github.com/spf13/cobra"
)

type RootCommandeer struct {
	cmd        *cobra.Command
	configPath string
	verbose    bool

	// flag values, applied over the configuration file
	overrides shimconfig.Config

	// binary started by invoke. empty means this executable
	shimPath string
}

func NewRootCommandeer() *RootCommandeer {
	commandeer := &RootCommandeer{}

	cmd := &cobra.Command{
		Use:           "shim [flags] channel-fd stdout-fd stderr-fd",
		Short:         "Serve handler invocations over an inherited channel",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			shimConfiguration, err := commandeer.resolveConfiguration()
			if err != nil {
				return errors.Wrap(err, "Failed to resolve configuration")
			}

			return app.Run(&app.Descriptors{
				Channel: args[0],
				Stdout:  args[1],
				Stderr:  args[2],
			}, shimConfiguration)
		},
	}

	cmd.PersistentFlags().StringVarP(&commandeer.configPath, "config", "", "", "Path of a YAML or TOML configuration file")
	cmd.PersistentFlags().StringVarP(&commandeer.overrides.Handler, "handler", "", "", "builtin:<name> or <plugin path>[:<symbol>]")
	cmd.PersistentFlags().StringVarP(&commandeer.overrides.Codec, "codec", "", "", "Document codec - \"json\" or \"msgpack\"")
	cmd.PersistentFlags().StringVarP(&commandeer.overrides.LoadFailureMode, "on-load-failure", "", "", "What to do if the handler does not load - \"degrade\" or \"fail\"")
	cmd.PersistentFlags().StringVarP(&commandeer.overrides.Metrics.Textfile, "metrics-textfile", "", "", "Write invocation metrics to this file after every request")
	cmd.PersistentFlags().StringVarP(&commandeer.overrides.Metrics.InstanceName, "instance-name", "", "", "Value of the instance label on metrics")
	cmd.PersistentFlags().StringVarP(&commandeer.overrides.Logger.Level, "log-level", "l", "", "One of debug / info / warn / error")
	cmd.PersistentFlags().BoolVarP(&commandeer.verbose, "verbose", "v", false, "Verbose output")

	// add children
	cmd.AddCommand(
		newInvokeCommandeer(commandeer).cmd,
		newVersionCommandeer(commandeer).cmd,
	)

	commandeer.cmd = cmd

	return commandeer
}

// Execute uses os.Args to execute the command
func (rc *RootCommandeer) Execute() error {
	return rc.cmd.Execute()
}

// GetCmd returns the underlying cobra command
func (rc *RootCommandeer) GetCmd() *cobra.Command {
	return rc.cmd
}

func (rc *RootCommandeer) resolveConfiguration() (*shimconfig.Config, error) {
	reader, err := shimconfig.NewReader()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create configuration reader")
	}

	shimConfiguration, err := reader.ReadFileOrDefault(rc.configPath)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read configuration")
	}

	if err := shimConfiguration.Merge(&rc.overrides); err != nil {
		return nil, errors.Wrap(err, "Failed to apply flags")
	}

	if rc.verbose {
		shimConfiguration.Logger.Level = "debug"
	}

	return shimConfiguration, nil
}

// shimArgs renders a resolved configuration back into flags, so that a child shim runs
// with exactly that configuration
func shimArgs(shimConfiguration *shimconfig.Config) []string {
	var args []string

	for _, flag := range []struct {
		name  string
		value string
	}{
		{"handler", shimConfiguration.Handler},
		{"codec", shimConfiguration.Codec},
		{"on-load-failure", shimConfiguration.LoadFailureMode},
		{"metrics-textfile", shimConfiguration.Metrics.Textfile},
		{"instance-name", shimConfiguration.Metrics.InstanceName},
		{"log-level", shimConfiguration.Logger.Level},
	} {
		if flag.value != "" {
			args = append(args, "--"+flag.name, flag.value)
		}
	}

	return args
}
