// Command authctl is the command-line client for the auth server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/authkeep/authkeep/internal/client/api"
	"github.com/authkeep/authkeep/internal/client/cli"
	"github.com/authkeep/authkeep/internal/client/config"
	"github.com/authkeep/authkeep/internal/flagx"
)

func main() {
	cfg := config.LoadConfig()
	client := api.NewClient(cfg)
	app := cli.NewApp(client, os.Stdin, os.Stdout)

	args := flagx.PositionalArgs(os.Args[1:])
	if err := app.Run(context.Background(), args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
