package main

import (
	"context"
	"os"

	"quore/cmd/quorectl/commands"
)

func main() {
	app := commands.NewApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		os.Exit(1)
	}
}
