// Package app wires the couchdb-idp-updater command-line surface.
package app

import (
	"github.com/spf13/cobra"
)

var debugMode bool

var rootCmd = &cobra.Command{
	Use:               "couchdb-idp-updater",
	DisableAutoGenTag: true,
	Short:             "Keep CouchDB cluster jwt_keys config in sync with configured OIDC IdPs",
	Long: `couchdb-idp-updater periodically fetches JWKS keys from a list of configured
OIDC identity providers, converts the X.509-certificate-bound keys to PEM, and
reconciles each CouchDB cluster node's jwt_keys configuration to match. Nodes
whose keys changed are restarted, staggered to avoid taking a whole cluster
down at once.`,
}

// NewRootCmd builds the root command for the couchdb-idp-updater CLI.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
