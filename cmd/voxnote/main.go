// Command voxnote transcribes audio files, optionally refines the transcript
// with a language model, and serves the same pipeline over HTTP.
//
// Usage:
//
//	voxnote transcribe [--refine] [--prompt TEXT] FILE...
//	voxnote serve [--port N]
//	voxnote saved [NAME]
//	voxnote version [--short]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

const usageText = `voxnote turns voice recordings into text.

Usage:
  voxnote <command> [flags] [args]

Commands:
  transcribe FILE...   transcribe audio files (--refine to clean up the text)
  serve                run the HTTP API
  saved [NAME]         list transcripts preserved after refinement failures, or print one
  version              print build information

Run "voxnote <command> --help" for the flags of a command.
`

// usageError marks bad command-line input; it exits with status 2.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usageText)
		return 2
	}

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "transcribe":
		err = runTranscribe(ctx, rest, stdout, stderr)
	case "serve":
		err = runServe(ctx, rest, stderr)
	case "saved":
		err = runSaved(ctx, rest, stdout, stderr)
	case "version":
		err = runVersion(rest, stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usageText)
		return 0
	default:
		fmt.Fprintf(stderr, "voxnote: unknown command %q\n\n%s", cmd, usageText)
		return 2
	}

	var ue usageError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, pflag.ErrHelp):
		return 0
	case errors.As(err, &ue):
		fmt.Fprintf(stderr, "voxnote: %s\n", ue.msg)
		return 2
	default:
		fmt.Fprintf(stderr, "voxnote: %v\n", err)
		return 1
	}
}
