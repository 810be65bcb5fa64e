// canary
// (C) 2024, Deutsche Telekom IT GmbH
//
// Deutsche Telekom IT GmbH and all other contributors /
// copyright owners license this file to you under the Apache
// License, Version 2.0 (the "License"); you may not use this
// file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/canary"
	"github.com/caas-team/canary/pkg/config"
)

const envPrefix = "canary"

// NewCmdRun creates a new run command
func NewCmdRun(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run canary",
		Long:  `Canary will be started with the provided configuration`,
		RunE:  run(version),
	}

	defaults := config.NewConfig()

	cmd.PersistentFlags().StringP("config", "c", "", "the path to the startup configuration file")

	NewFlag("api.address", "apiAddress").String().
		Bind(cmd, defaults.Api.ListeningAddress, "api: The address the server is listening on")
	NewFlag("interval", "interval").Duration().
		Bind(cmd, defaults.Interval, "the rate at which the registered probes are checked")

	NewFlag("pool.worker.min", "poolWorkerMin").Int().
		Bind(cmd, defaults.Pool.Worker.Min, "worker pool: the concurrency the pool is provisioned for")
	NewFlag("pool.worker.max", "poolWorkerMax").Int().
		Bind(cmd, defaults.Pool.Worker.Max, "worker pool: the hard cap of concurrently running checks")
	NewFlag("pool.io.min", "poolIoMin").Int().
		Bind(cmd, defaults.Pool.IO.Min, "io pool: the concurrency the pool is provisioned for")
	NewFlag("pool.io.max", "poolIoMax").Int().
		Bind(cmd, defaults.Pool.IO.Max, "io pool: the hard cap of concurrently running checks")

	NewFlag("loader.type", "loaderType").StringP("l").
		Bind(cmd, defaults.Loader.Type, "defines the loader type that will load the probes configuration during the runtime")
	NewFlag("loader.interval", "loaderInterval").Duration().
		Bind(cmd, defaults.Loader.Interval, "defines the interval the loader reloads the configuration; zero loads it once")
	NewFlag("loader.file.path", "loaderFilePath").String().
		Bind(cmd, defaults.Loader.File.Path, "file loader: The path to the file to read the runtime config from")
	NewFlag("loader.http.url", "loaderHttpUrl").String().
		Bind(cmd, defaults.Loader.Http.Url, "http loader: The url where to get the remote configuration")
	NewFlag("loader.http.token", "loaderHttpToken").String().
		Bind(cmd, defaults.Loader.Http.Token, "http loader: Bearer token to authenticate the http endpoint")
	NewFlag("loader.http.timeout", "loaderHttpTimeout").Duration().
		Bind(cmd, defaults.Loader.Http.Timeout, "http loader: The timeout for the http request")
	NewFlag("loader.http.retry.count", "loaderHttpRetryCount").Int().
		Bind(cmd, defaults.Loader.Http.RetryCfg.Count, "http loader: Amount of retries trying to load the configuration")
	NewFlag("loader.http.retry.delay", "loaderHttpRetryDelay").Duration().
		Bind(cmd, defaults.Loader.Http.RetryCfg.Delay, "http loader: The initial delay between retries")
	NewFlag("loader.git.url", "loaderGitUrl").String().
		Bind(cmd, defaults.Loader.Git.Url, "git loader: The clone url of the repository holding the runtime configuration")
	NewFlag("loader.git.path", "loaderGitPath").String().
		Bind(cmd, defaults.Loader.Git.Path, "git loader: The path of the runtime configuration file inside the repository")
	NewFlag("loader.git.branch", "loaderGitBranch").String().
		Bind(cmd, defaults.Loader.Git.Branch, "git loader: The branch to read from, empty uses the default branch")
	NewFlag("loader.git.token", "loaderGitToken").String().
		Bind(cmd, defaults.Loader.Git.Token, "git loader: The access token used to authenticate with the remote")
	NewFlag("loader.git.timeout", "loaderGitTimeout").Duration().
		Bind(cmd, defaults.Loader.Git.Timeout, "git loader: The timeout for a single clone or pull")

	NewFlag("telemetry.exporter", "telemetryExporter").String().
		Bind(cmd, string(defaults.Telemetry.Exporter), "telemetry: The exporter used to ship traces (grpc, http, stdout or noop)")
	NewFlag("telemetry.url", "telemetryUrl").String().
		Bind(cmd, defaults.Telemetry.Url, "telemetry: The url of the collector the traces are exported to")
	NewFlag("telemetry.token", "telemetryToken").String().
		Bind(cmd, defaults.Telemetry.Token, "telemetry: Bearer token to authenticate the collector")
	NewFlag("telemetry.certPath", "telemetryCertPath").String().
		Bind(cmd, defaults.Telemetry.CertPath, "telemetry: The path to the tls certificate of the collector")

	return cmd
}

// run is the entry point to start the canary
func run(version string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		log := logger.NewLogger()
		ctx := logger.IntoContext(context.Background(), log)

		cfgFile, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}

		cfg, err := loadConfig(ctx, cfgFile)
		if err != nil {
			return err
		}

		c, err := canary.New(cfg, version)
		if err != nil {
			return fmt.Errorf("failed to create canary: %w", err)
		}

		cErr := make(chan error, 1)
		log.Info("Running canary", "version", version)
		go func() {
			cErr <- c.Run(ctx)
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			log.Info("Signal received, shutting down", "signal", sig.String())
			c.Shutdown(ctx)
			<-cErr
			return nil
		case err := <-cErr:
			return err
		}
	}
}

// loadConfig assembles the startup configuration from the defaults, the
// optional configuration file, the environment and the bound cli flags
func loadConfig(ctx context.Context, cfgFile string) (*config.Config, error) {
	log := logger.FromContext(ctx)

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", cfgFile, err)
		}
		log.Info("Using startup configuration file", "file", cfgFile)
	}

	cfg := config.NewConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
