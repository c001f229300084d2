// Command catplist prints plist files for human reading and easy grepping.
package main

import (
	"fmt"
	"github.com/go-gum/catplist"
	"github.com/go-gum/catplist/render"
	log "github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"
	"io"
	"os"
)

var (
	rawFlag = cli.BoolFlag{
		Name:  "raw, R",
		Usage: "print raw plist contents, will not unpack nested data & plists",
	}
	recurseFlag = cli.BoolFlag{
		Name:  "recurse, r",
		Usage: "recurse into subdirs, reads all files ignores non plist files",
	}
	formatFlag = cli.StringFlag{
		Name:  "format, f",
		Value: "pretty",
		Usage: "format output in: pretty, json or yaml",
	}
	logLevelFlag = cli.StringFlag{
		Name:   "log-level",
		Value:  "info",
		Usage:  "log level: panic, fatal, error, warn, info, debug or trace",
		EnvVar: "LOG_LEVEL",
	}
)

func newApp(out io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "catplist"
	app.Usage = "print plists for human reading and easy grepping"
	app.ArgsUsage = "FILE..."
	app.Version = "0.1.0"
	app.Writer = out
	app.Flags = []cli.Flag{rawFlag, recurseFlag, formatFlag, logLevelFlag}
	app.Before = setupLogging
	app.Action = func(ctx *cli.Context) error {
		return run(ctx, out)
	}

	return app
}

func setupLogging(ctx *cli.Context) error {
	level, err := log.ParseLevel(ctx.String("log-level"))
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
	return nil
}

func run(ctx *cli.Context, out io.Writer) error {
	renderer, err := render.For(ctx.String("format"))
	if err != nil {
		return err
	}

	if ctx.NArg() == 0 {
		fmt.Fprintln(out, " - No file given! Usage: ")
		fmt.Fprintln(out, " catplist file")
		return nil
	}

	p := &printer{
		out:     out,
		render:  renderer,
		raw:     ctx.Bool("raw"),
		recurse: ctx.Bool("recurse"),
		decoder: catplist.NewDecoder(),
		log:     log.StandardLogger(),
	}

	p.printPaths(ctx.Args())
	return nil
}

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
