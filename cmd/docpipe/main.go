// Command docpipe runs document models from the command line and serves them
// over MCP and HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const version = "0.1.0"

const usageText = `Usage: docpipe <command> [flags]

Commands:
  run       Run a model over a JSON document (stdin or -in)
  models    List the available models
  keyterms  Suggest index keyterms for a text fragment
  embed     Print the embedding vector of a text
  mcp       Serve the models as MCP tools over stdio
  serve     Serve the models as a JSON HTTP API

Run "docpipe <command> -h" for the flags of a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "run":
		err = runCmd(ctx, args)
	case "models":
		err = modelsCmd(args)
	case "keyterms":
		err = keytermsCmd(ctx, args)
	case "embed":
		err = embedCmd(ctx, args)
	case "mcp":
		err = mcpCmd(ctx, args)
	case "serve":
		err = serveCmd(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usageText)
		return
	case "version", "--version":
		fmt.Println(version)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usageText)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags registers the flags every command shares.
func globalFlags(fs *flag.FlagSet) *options {
	o := &options{}
	fs.StringVar(&o.configPath, "config", "", "path to configuration file (default: docpipe.yaml if present)")
	fs.StringVar(&o.envFile, "env", ".env", "path to .env file (ignored if missing)")
	return o
}

func newFlagSet(name, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: docpipe %s [flags]\n\n%s\n\nFlags:\n", name, synopsis)
		fs.PrintDefaults()
	}
	return fs
}

func runCmd(ctx context.Context, args []string) error {
	fs := newFlagSet("run", "Run a model over a JSON document and print the result.")
	o := globalFlags(fs)
	model := fs.String("model", "", "model to run (see docpipe models)")
	in := fs.String("in", "-", "input JSON document, - for stdin")
	_ = fs.Parse(args)

	if *model == "" {
		return fmt.Errorf("-model is required")
	}

	a, err := newApp(*o)
	if err != nil {
		return err
	}

	r, closeIn, err := openInput(*in)
	if err != nil {
		return err
	}
	defer closeIn()

	defer a.logUsage()

	return a.runModel(ctx, *model, r, os.Stdout)
}

func modelsCmd(args []string) error {
	fs := newFlagSet("models", "List the available models.")
	o := globalFlags(fs)
	_ = fs.Parse(args)

	a, err := newApp(*o)
	if err != nil {
		return err
	}

	return a.listModels(os.Stdout)
}

func keytermsCmd(ctx context.Context, args []string) error {
	fs := newFlagSet("keyterms", "Suggest index keyterms for a text fragment using the chat model.")
	o := globalFlags(fs)
	in := fs.String("in", "-", "input text, - for stdin")
	_ = fs.Parse(args)

	a, err := newApp(*o)
	if err != nil {
		return err
	}

	r, closeIn, err := openInput(*in)
	if err != nil {
		return err
	}
	defer closeIn()

	defer a.logUsage()

	return a.keyterms(ctx, r, os.Stdout)
}

func embedCmd(ctx context.Context, args []string) error {
	fs := newFlagSet("embed", "Print the embedding vector of a text as JSON.")
	o := globalFlags(fs)
	in := fs.String("in", "-", "input text, - for stdin")
	_ = fs.Parse(args)

	a, err := newApp(*o)
	if err != nil {
		return err
	}

	r, closeIn, err := openInput(*in)
	if err != nil {
		return err
	}
	defer closeIn()

	defer a.logUsage()

	return a.embed(ctx, r, os.Stdout)
}

func mcpCmd(ctx context.Context, args []string) error {
	fs := newFlagSet("mcp", "Serve the models as MCP tools over stdin/stdout.")
	o := globalFlags(fs)
	_ = fs.Parse(args)

	a, err := newApp(*o)
	if err != nil {
		return err
	}

	return a.serveMCP(ctx, os.Stdin, os.Stdout)
}

func serveCmd(ctx context.Context, args []string) error {
	fs := newFlagSet("serve", "Serve the models as a JSON HTTP API.")
	o := globalFlags(fs)
	listen := fs.String("listen", "", "listen address (overrides listen in config)")
	_ = fs.Parse(args)

	a, err := newApp(*o)
	if err != nil {
		return err
	}

	if *listen != "" {
		a.cfg.Listen = *listen
	}

	return a.serveHTTP(ctx)
}
