// Command tb keeps a trade book and reports positions, fees, gains and risk.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/tradebook/cmd"
	"github.com/google/subcommands"
)

func main() {
	cmd.Completion().Complete("tb")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	if sub := flag.Arg(0); sub != "" && !cmd.Has(commander, sub) {
		if found, code := cmd.RunExtension(sub, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}
