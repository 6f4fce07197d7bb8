// Command accountctl inspects user accounts through the remote user API and
// serves the profile pages for local testing.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil); err != nil {
		fmt.Fprintf(os.Stderr, "accountctl: %v\n", err)
		os.Exit(1)
	}
}

// run parses args and executes the selected command. environment replaces
// the process environment when non-nil.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, environment map[string]string) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("accountctl"),
		kong.Description("Inspect user accounts and serve profile pages."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cli.Globals, stdout, stderr, environment)
	if err != nil {
		return err
	}
	defer a.Close()

	return kctx.Run(a)
}
