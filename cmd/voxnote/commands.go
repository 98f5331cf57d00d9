package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/pflag"

	"github.com/kbukum/voxnote/app"
	"github.com/kbukum/voxnote/config"
	"github.com/kbukum/voxnote/logger"
	"github.com/kbukum/voxnote/pipeline"
	"github.com/kbukum/voxnote/status"
	"github.com/kbukum/voxnote/version"
)

// commonFlags are accepted by every command that loads the configuration.
type commonFlags struct {
	configFile string
	envFile    string
	logLevel   string
}

func (c *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&c.configFile, "config", "c", "", "config file (default: search ./config.yml, ~/.voxnote/config.yml)")
	fs.StringVar(&c.envFile, "env-file", "", ".env file to load")
	fs.StringVar(&c.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
}

func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false
	return fs
}

// parseFlags reports malformed flags as usage errors. pflag has already
// printed the message and the flag list.
func parseFlags(fs *pflag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return err
	}
	return usageError{err.Error()}
}

// loadApp reads the configuration and builds the application. Logs go to
// stderr so stdout carries only results.
func loadApp(ctx context.Context, c commonFlags, stderr io.Writer, mutate func(*app.Config)) (*app.App, error) {
	var opts []config.LoaderOption
	if c.configFile != "" {
		opts = append(opts, config.WithConfigFile(c.configFile))
	}
	if c.envFile != "" {
		opts = append(opts, config.WithEnvFile(c.envFile))
	}
	cfg, err := app.Load(opts...)
	if err != nil {
		return nil, err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if mutate != nil {
		mutate(cfg)
	}

	log := logger.NewWithWriter(&cfg.Logging, cfg.Name, stderr)
	logger.SetGlobalLogger(log)
	return app.New(ctx, cfg, app.WithLogger(log))
}

func runTranscribe(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		common   commonFlags
		refine   bool
		prompt   string
		workers  int
		original bool
		quiet    bool
	)
	fs := newFlagSet("transcribe", stderr)
	fs.BoolVarP(&refine, "refine", "r", false, "clean up the transcript with the refinement model")
	fs.StringVarP(&prompt, "prompt", "p", "", "refinement instruction (default: refinement.prompt)")
	fs.IntVarP(&workers, "workers", "w", 0, "files transcribed concurrently (default: workers from config)")
	fs.BoolVar(&original, "original", false, "also print the unrefined transcript")
	fs.BoolVarP(&quiet, "quiet", "q", false, "do not print status messages")
	common.register(fs)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: voxnote transcribe [flags] FILE...")
		fs.PrintDefaults()
	}
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	files := fs.Args()
	if len(files) == 0 {
		return usageError{"transcribe needs at least one audio file"}
	}
	if prompt != "" && !refine {
		return usageError{"--prompt only applies with --refine"}
	}

	a, err := loadApp(ctx, common, stderr, func(cfg *app.Config) {
		if workers > 0 {
			cfg.Workers = workers
		}
	})
	if err != nil {
		return err
	}

	var out sync.Mutex
	reqs := make([]pipeline.Request, len(files))
	for i, f := range files {
		var sink status.Sink = status.Discard
		if !quiet {
			label := filepath.Base(f)
			if len(files) == 1 {
				label = ""
			}
			sink = statusPrinter(stderr, &out, label)
		}
		reqs[i] = pipeline.Request{
			AudioPath:          f,
			RequiresRefinement: refine,
			RefinementPrompt:   prompt,
			Status:             sink,
		}
	}

	var failed int
	err = a.RunTask(ctx, func(ctx context.Context) error {
		results := a.Pipeline.SubmitAll(ctx, reqs, a.Cfg.Workers)
		for i, res := range results {
			if res.Err != nil {
				failed++
				fmt.Fprintf(stderr, "%s: %v\n", files[i], res.Err)
				continue
			}
			if len(files) > 1 {
				fmt.Fprintf(stdout, "== %s ==\n", files[i])
			}
			if original && res.Outcome.OriginalText != nil {
				fmt.Fprintf(stdout, "%s\n\n--- refined ---\n", *res.Outcome.OriginalText)
			}
			fmt.Fprintln(stdout, res.Outcome.FinalText)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

// statusPrinter writes one line per stage message, prefixed with label
// when several files run at once.
func statusPrinter(w io.Writer, mu *sync.Mutex, label string) status.Sink {
	return status.Func(func(msg string) {
		mu.Lock()
		defer mu.Unlock()
		if label != "" {
			fmt.Fprintf(w, "[%s] %s\n", label, msg)
			return
		}
		fmt.Fprintln(w, msg)
	})
}

func runServe(ctx context.Context, args []string, stderr io.Writer) error {
	var (
		common commonFlags
		host   string
		port   int
	)
	fs := newFlagSet("serve", stderr)
	fs.StringVar(&host, "host", "", "listen host (default: server.host)")
	fs.IntVar(&port, "port", 0, "listen port (default: server.port)")
	common.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return usageError{"serve takes no arguments"}
	}

	a, err := loadApp(ctx, common, stderr, func(cfg *app.Config) {
		if host != "" {
			cfg.Server.Host = host
		}
		if port > 0 {
			cfg.Server.Port = port
		}
	})
	if err != nil {
		return err
	}
	return a.Serve(ctx)
}

func runSaved(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var common commonFlags
	fs := newFlagSet("saved", stderr)
	common.register(fs)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: voxnote saved [flags] [NAME]")
		fs.PrintDefaults()
	}
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return usageError{"saved takes at most one name"}
	}

	a, err := loadApp(ctx, common, stderr, nil)
	if err != nil {
		return err
	}
	return a.RunTask(ctx, func(ctx context.Context) error {
		if fs.NArg() == 1 {
			content, err := a.Recovery.Read(ctx, fs.Arg(0))
			if err != nil {
				return err
			}
			fmt.Fprint(stdout, content)
			return nil
		}

		entries, err := a.Recovery.List(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(stdout, "No saved transcriptions.")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(stdout, "%s  %s  %d bytes\n", e.SavedAt.Format("2006-01-02 15:04:05"), e.Name, e.Size)
		}
		return nil
	})
}

func runVersion(args []string, stdout, stderr io.Writer) error {
	var short bool
	fs := newFlagSet("version", stderr)
	fs.BoolVarP(&short, "short", "s", false, "print only the version")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	info := version.Get()
	if short {
		fmt.Fprintln(stdout, info.Short())
		return nil
	}
	fmt.Fprintln(stdout, strings.TrimRight(info.String(), "\n"))
	return nil
}
