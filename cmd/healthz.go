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
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/caas-team/canary/internal/httpclient"
	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/healthz"
)

// NewCmdHealthz creates a new healthz command
func NewCmdHealthz() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "healthz",
		Short: "Check whether a running canary is serving",
		Long:  `Checks the liveness endpoint of a locally running canary and exits non-zero if it is not serving`,
		RunE:  runHealthz(),
	}

	cmd.PersistentFlags().StringP("apiAddress", "a", ":8080", "api: The address the agent's server is listening on")

	return cmd
}

// runHealthz checks the liveness endpoint of a running agent
func runHealthz() func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		log := logger.NewLogger()
		ctx := logger.IntoContext(cmd.Context(), log)
		ctx = httpclient.IntoContext(ctx, &http.Client{Timeout: 5 * time.Second})

		addr, err := cmd.Flags().GetString("apiAddress")
		if err != nil {
			return err
		}

		if !healthz.New(addr).IsHealthy(ctx) {
			return fmt.Errorf("canary at %q is not healthy", addr)
		}

		log.Info("Canary is healthy", "addr", addr)
		return nil
	}
}
