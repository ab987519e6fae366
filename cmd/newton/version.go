package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gonewton"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of newton",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "newton version %s\n", gonewton.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
