package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beyonddemise/couchdb-idp-updater/pkg/version"
)

func newVersionCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the version of couchdb-idp-updater",
		Long:  `Display version, git commit, build date, and Go runtime information.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			info := version.GetInfo()
			if jsonOutput {
				enc, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode version info: %w", err)
				}
				fmt.Println(string(enc))
				return nil
			}
			fmt.Println(info.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version information as JSON")
	return cmd
}
