// Command inquiry runs the inquiry mail function locally against event files.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// Globals are flags shared by every command
type Globals struct {
	LogLevel slog.Level `name:"log-level" help:"Log level." env:"LOG_LEVEL" default:"INFO" enum:"DEBUG,INFO,WARN,ERROR"`
	DotEnv   string     `name:"dotenv" help:"Path to a dotenv file loaded before reading the environment." env:"DOTENV_FILE" optional:""`

	// logger replaces the one built from LogLevel, for tests
	logger *slog.Logger
}

// CLI is the command line of inquiry
type CLI struct {
	Globals

	Invoke   InvokeCmd   `cmd:"" help:"Run the handler against an event file."`
	Render   RenderCmd   `cmd:"" help:"Print the confirmation mail for a submitter."`
	Validate ValidateCmd `cmd:"" help:"Check the inquiry carried by an event file."`
}

func main() {
	var cli CLI
	kongCtx := kong.Parse(&cli,
		kong.Name("inquiry"),
		kong.Description("Local runner for the inquiry mail function."),
		kong.UsageOnError(),
		kong.BindTo(io.Writer(os.Stdout), (*io.Writer)(nil)),
	)
	err := kongCtx.Run(&cli.Globals)
	kongCtx.FatalIfErrorf(err)
}
