// Command fundwatch values fund holdings from realtime estimates and serves
// them over HTTP.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

// as a CLI application, it has a very short lived lifecycle, so a global flag is fine.
var configPath = flag.String("config", "", "Path to the TOML config file (default: $FUNDWATCH_CONFIG, fundwatch.toml next to the binary, config/fundwatch.toml)")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// register adds all subcommands to the commander.
func register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&serveCmd{}, "server")
	c.Register(&versionCmd{}, "server")

	c.Register(&valueCmd{}, "holdings")
	c.Register(&listCmd{}, "holdings")
	c.Register(&addCmd{}, "holdings")
	c.Register(&removeCmd{}, "holdings")
}
