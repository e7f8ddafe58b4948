package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/fontsweep/cmd/fontsweep/commands"
	"git.home.luguber.info/inful/fontsweep/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("fontsweep"),
		kong.Description("Scan and replace fonts across document trees."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)
	err := ctx.Run(&commands.Global{Logger: slog.Default()})
	ctx.FatalIfErrorf(err)
}
