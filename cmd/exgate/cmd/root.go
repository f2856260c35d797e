package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "exgate",
	Short: "exgate is a catalog/report exchange gateway",
	Long: `Server side of the stateful exchange protocol used by an external
enterprise system to authenticate, open a time-bounded session, and upload
catalog and report files.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
