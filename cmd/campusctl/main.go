package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/campusconnect/campus-connect-api/internal/tools/accounts"
	"github.com/campusconnect/campus-connect-api/internal/tools/loadgen"
	"github.com/campusconnect/campus-connect-api/internal/tools/migrate"
)

func main() {
	root := &cobra.Command{
		Use:          "campusctl",
		Short:        "Operator tooling for the Campus Connect API",
		SilenceUsage: true,
	}
	root.AddCommand(
		migrate.NewRootCommand(),
		accounts.NewRootCommand(),
		loadgen.NewRootCommand(),
	)
	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}
