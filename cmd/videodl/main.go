package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/videodl/videodl/internal/config"
	"github.com/videodl/videodl/internal/event"
	"github.com/videodl/videodl/internal/lifecycle"
	"github.com/videodl/videodl/internal/logging"
	"github.com/videodl/videodl/internal/process"
	"github.com/videodl/videodl/internal/provision"
	"github.com/videodl/videodl/internal/queue"
	"github.com/videodl/videodl/internal/runner"
	"github.com/videodl/videodl/internal/validate"
)

// version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const scratchDirPrefix = "videodl_"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "videodl [urls...]",
		Short:   "Queue and run video downloads via yt-dlp",
		Long:    "videodl stages the latest yt-dlp build, queues the given URLs, and downloads them with a bounded number of parallel jobs. URLs are read from the arguments, or from stdin when no arguments are given.",
		Version: version,
		Args:    cobra.ArbitraryArgs,
		RunE:    run,
	}

	flags := cmd.Flags()
	flags.String(config.KeyOutputDir, "", "directory downloads are written to (default: ~/Downloads)")
	flags.Int(config.KeyMaxParallel, config.DefaultMaxParallel, "maximum number of simultaneous downloads")
	flags.String(config.KeyLogLevel, config.DefaultLogLevel, "log level (trace, debug, info, warn, error)")
	flags.StringP("config", "c", "", "path to a YAML config file")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	settings, err := config.Load(cmd.Flags(), configFile)
	if err != nil {
		return err
	}
	logging.ConfigureGlobal(settings.LogLevel)
	log := logging.Component("videodl")

	urls, err := collectURLs(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no valid URLs given")
	}

	outputDir, err := resolveOutputDir(settings.OutputDir)
	if err != nil {
		return err
	}

	scratchDir, err := os.MkdirTemp("", scratchDirPrefix)
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}

	bus := event.NewBus()
	done := make(chan struct{})
	bus.Subscribe(newConsoleSubscriber(log, done))

	registry := process.NewRegistry(logging.Component("process"))
	coord := lifecycle.NewCoordinator(registry, scratchDir, logging.Component("lifecycle"))
	coord.Start()
	defer coord.Shutdown()

	prov := provision.NewProvisioner(scratchDir, bus, logging.Component("provision"))
	if _, err := prov.FetchLatest(cmd.Context()); err != nil {
		return fmt.Errorf("staging yt-dlp: %w", err)
	}

	jobs := runner.NewRunner(prov, registry, coord, bus, logging.Component("runner"))
	jobs.SetOutputDir(outputDir)

	q := queue.NewQueue(jobs, coord, bus, settings.MaxParallel, logging.Component("queue"))
	q.Enqueue(urls)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		log.Info().Msg("all downloads finished")
	case sig := <-sigs:
		log.Warn().Str("signal", sig.String()).Msg("interrupted")
		coord.Shutdown()
	}
	return nil
}

// collectURLs validates the argument list, or free text from stdin when no
// arguments were given.
func collectURLs(args []string, stdin io.Reader) ([]string, error) {
	if len(args) > 0 {
		return validate.CleanList(args), nil
	}

	text, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("reading URLs from stdin: %w", err)
	}
	return validate.CleanText(string(text)), nil
}

// resolveOutputDir falls back to the user's Downloads directory and makes
// sure the directory exists.
func resolveOutputDir(dir string) (string, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		dir = filepath.Join(home, "Downloads")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	return dir, nil
}

// newConsoleSubscriber renders queue and job events to the log and closes
// done once the queue drains.
func newConsoleSubscriber(log zerolog.Logger, done chan struct{}) *event.Funcs {
	return &event.Funcs{
		OnQueueChanged: func(pending []string) {
			log.Info().Int("pending", len(pending)).Msg("queue changed")
		},
		OnJobStarted: func(url string) {
			log.Info().Str("url", url).Msg("download started")
		},
		OnJobLog: func(url, line string) {
			log.Debug().Str("url", url).Msg(line)
		},
		OnJobCompleted: func(url, filename string) {
			log.Info().Str("url", url).Str("file", filename).Msg("download completed")
		},
		OnJobError: func(url, message string) {
			log.Error().Str("url", url).Msg(message)
		},
		OnAllDone: func() {
			close(done)
		},
		OnProvisionerStatus: func(state string) {
			log.Info().Str("state", state).Msg("yt-dlp status")
		},
	}
}
