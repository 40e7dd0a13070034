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
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	harness "github.com/numaproj/numaflow-harness"
	"github.com/numaproj/numaflow-harness/pkg/apis/v1alpha1"
	"github.com/numaproj/numaflow-harness/pkg/bundle"
	"github.com/numaproj/numaflow-harness/pkg/config"
	"github.com/numaproj/numaflow-harness/pkg/metrics"
	"github.com/numaproj/numaflow-harness/pkg/runner"
	"github.com/numaproj/numaflow-harness/pkg/shared/logging"
)

func NewRunCommand() *cobra.Command {
	var (
		configPath    string
		transformPath string
		inputPath     string
		pprof         bool
	)

	command := &cobra.Command{
		Use:   "run",
		Short: "Run one bundle of a transform over the elements of an input file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" || inputPath == "" {
				cmd.HelpFunc()(cmd, args)
				return fmt.Errorf("--config and --input are required")
			}
			conf, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if transformPath == "" {
				transformPath = conf.Transform
			}
			t, err := loadTransform(transformPath)
			if err != nil {
				return err
			}
			log := logging.NewLogger().Named("run").With("transform", t.ID)
			log.Infow("Starting harness", "version", harness.GetVersion())
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(logging.WithLogger(ctx, log), conf, t, inputPath, pprof)
		},
	}
	command.Flags().StringVarP(&configPath, "config", "c", "", "Path of the harness configuration file")
	command.Flags().StringVarP(&transformPath, "transform", "t", "", "Path of the transform descriptor, overrides the configuration")
	command.Flags().StringVarP(&inputPath, "input", "i", "", "Path of the input elements file")
	command.Flags().BoolVar(&pprof, "pprof", false, "Serve the pprof endpoints on the metrics port")
	return command
}

// loadTransform reads the transform from path, or from the environment when path is empty.
func loadTransform(path string) (*v1alpha1.Transform, error) {
	if path != "" {
		return v1alpha1.LoadTransform(path)
	}
	encoded, defined := os.LookupEnv(v1alpha1.EnvTransformObject)
	if !defined {
		return nil, fmt.Errorf("no transform file given and required environment variable '%s' not defined", v1alpha1.EnvTransformObject)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transform string, error: %w", err)
	}
	return v1alpha1.ParseTransform(data)
}

func run(ctx context.Context, conf *config.Config, t *v1alpha1.Transform, inputPath string, pprof bool) (err error) {
	log := logging.FromContext(ctx)
	v := harness.GetVersion()
	metrics.BuildInfo.WithLabelValues(v.Version, v.Platform).Set(1)
	if conf.MetricsPort > 0 {
		shutdown, err := metrics.NewMetricsServer(fmt.Sprintf(":%d", conf.MetricsPort), metrics.WithPprof(pprof)).Start(ctx)
		if err != nil {
			return fmt.Errorf("failed to start metrics server, %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warnw("Failed to shutdown metrics server", "error", err)
			}
		}()
	}

	client, closeClient, err := newStateClient(ctx, conf.State)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, closeClient())
	}()

	env, err := runner.NewEnvironment()
	if err != nil {
		return err
	}
	b := runner.NewBundle()
	closers, err := attachSinks(ctx, conf.Sinks, env.Coders, b.Consumers)
	defer func() {
		for _, c := range closers {
			err = multierr.Append(err, c())
		}
	}()
	if err != nil {
		return err
	}

	var opts []bundle.Option
	if conf.FlushParallelism > 0 {
		opts = append(opts, bundle.WithFlushParallelism(conf.FlushParallelism))
	}
	processor, err := runner.DefaultRegistry(env).CreateRunner(ctx, b.Params(runner.Params{
		Transform:   t,
		StateClient: client,
		Options:     opts,
	}))
	if err != nil {
		return err
	}
	elements, err := readInput(inputPath, t.Keyed)
	if err != nil {
		return err
	}
	input, _ := t.GetMainInput()
	if err = b.Execute(ctx, input, elements); err != nil {
		return err
	}
	log.Infow("Bundle executed", "bundleID", processor.BundleID(), "elements", len(elements), "processed", processor.Processed())
	return nil
}
