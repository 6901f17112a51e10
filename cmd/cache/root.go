package cache

import "github.com/spf13/cobra"

var Command = &cobra.Command{
	Use:   "cache",
	Short: "Manage the Contents index download cache",
}

func init() {
	Command.AddCommand(cleanCmd)
}
