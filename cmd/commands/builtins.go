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
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/numaproj/numaflow-harness/pkg/runner"
)

func NewBuiltinsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "builtins",
		Short: "List the builtin functions, combine functions and coders",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := runner.NewEnvironment()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "functions: %s\n", strings.Join(env.Fns.Names(), ", "))
			fmt.Fprintf(out, "combine functions: %s\n", strings.Join(env.Combines.Names(), ", "))
			fmt.Fprintf(out, "coders: %s\n", strings.Join(env.Coders.Names(), ", "))
			return nil
		},
	}
}
