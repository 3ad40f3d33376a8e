package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joestump/room-reviews/internal/build"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "room-reviews",
		Short:   "Room listings and reviews API",
		Long:    "room-reviews serves rooms, their reviews and image uploads over a JSON API.",
		Version: fmt.Sprintf("%s (%s, %s)", build.Version, build.Commit, build.Branch),
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newUserCmd())
	rootCmd.AddCommand(newTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
