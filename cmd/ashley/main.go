package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/openfun/ashley-sub000/internal/interfaces/cli/migrate"
	"github.com/openfun/ashley-sub000/internal/interfaces/cli/passport"
	"github.com/openfun/ashley-sub000/internal/interfaces/cli/server"
	"github.com/openfun/ashley-sub000/internal/interfaces/cli/syncperms"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ashley",
		Short: "Ashley - an LTI forum tool",
		Long:  `Ashley is a forum application launched from learning platforms over LTI, with per-course identity, groups and permissions.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		syncperms.NewCommand(),
		passport.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
