// Command stagecc compiles a small subset of C to x86-64 assembly and
// runs the staged conformance fixtures.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/hassan/stagecc/internal/config"
)

const version = "v0.4.0"

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool

	Stdout io.Writer
	Stderr io.Writer
}

// statusf prints a progress line to stderr when --verbose is set.
func (c *Context) statusf(format string, args ...any) {
	if c.Verbose {
		color.New(color.FgCyan).Fprintf(c.Stderr, format+"\n", args...)
	}
}

// CLI represents the command-line interface
var CLI struct {
	Config  string `help:"Configuration file path" default:"${default_config}" type:"path"`
	Verbose bool   `help:"Print each compilation phase" short:"v"`
	NoColor bool   `help:"Disable coloured output"`

	Compile CompileCmd `cmd:"" default:"withargs" help:"Compile a C file (default command)"`
	Tokens  TokensCmd  `cmd:"" help:"Print the tokens of a C file"`
	Run     RunCmd     `cmd:"" help:"Simulate the generated code of a C file and print its result"`
	Test    TestCmd    `cmd:"" help:"Run the staged conformance fixtures"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run(ctx *Context) error {
	fmt.Fprintf(ctx.Stdout, "stagecc %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("stagecc"),
		kong.Description("A compiler for a staged subset of C targeting x86-64 NASM."),
		kong.UsageOnError(),
		kong.Vars{"default_config": config.DefaultPath},
	)

	if CLI.NoColor {
		color.NoColor = true
	}

	appCtx := &Context{
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}

	if err := ctx.Run(appCtx); err != nil {
		printDiagnostic(os.Stderr, err)
		os.Exit(1)
	}
}
