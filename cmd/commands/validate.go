/*
Copyright 2022 The Numaproj Authors.

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

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/numaproj/numaflow-harness/pkg/runner"
	"github.com/numaproj/numaflow-harness/pkg/shared/logging"
	"github.com/numaproj/numaflow-harness/pkg/state/inmem"
)

func NewValidateCommand() *cobra.Command {
	var transformPath string

	command := &cobra.Command{
		Use:   "validate",
		Short: "Validate a transform descriptor against the builtin functions and coders",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadTransform(transformPath)
			if err != nil {
				return err
			}
			env, err := runner.NewEnvironment()
			if err != nil {
				return err
			}
			ctx := logging.WithLogger(context.Background(), logging.NewLogger().Named("validate"))
			b := runner.NewBundle()
			if _, err = runner.DefaultRegistry(env).CreateRunner(ctx, b.Params(runner.Params{
				Transform:   t,
				StateClient: inmem.NewInMemClient(ctx, "validate"),
			})); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "transform %s is valid\n", t.ID)
			return nil
		},
	}
	command.Flags().StringVarP(&transformPath, "transform", "t", "", "Path of the transform descriptor")
	return command
}
