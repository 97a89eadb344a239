package main

import (
	stdErrors "errors"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/seogen/cmd/seogen/commands"
	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
	"git.home.luguber.info/inful/seogen/internal/version"
)

func main() {
	cli := &commands.CLI{}
	kctx := kong.Parse(cli,
		kong.Name("seogen"),
		kong.Description("Generate crawlable SEO pages for the storefront SPA."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{Logger: slog.Default()}
	err := kctx.Run(global, cli)
	if err == nil {
		return
	}

	// the run already printed its report; only the code is left to deliver
	var exit *commands.ExitError
	if stdErrors.As(err, &exit) {
		os.Exit(exit.Code)
	}
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
