package main

import (
	"fmt"
	"os"

	"github.com/go-arcade/membership/pkg/version"
	"github.com/spf13/cobra"
)

/**
 * @file: main.go
 * @description: membership admin cli, runs lifecycle operations against the
 *               configured database without the HTTP server
 */

var configFile string

var rootCmd = &cobra.Command{
	Use:   "membership-cli",
	Short: "membership-cli manages fan club memberships",
	Long:  "membership-cli runs migrations, renewal sweeps and staff lifecycle actions",
	Run: func(cmd *cobra.Command, args []string) {
		err := cmd.Help()
		if err != nil {
			return
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "conf", "c", "conf.d/config.toml", "conf file path")
	rootCmd.AddCommand(version.VersionCmd)
	rootCmd.AddCommand(migrateCmd, renewCmd, showCmd, createStaffCmd)
	rootCmd.AddCommand(lifecycleCmds()...)
	rootCmd.AddCommand(markPaidCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
