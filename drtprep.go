// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/drt-scenarios/drtprep/config"
	"github.com/drt-scenarios/drtprep/errs"
	"github.com/drt-scenarios/drtprep/metrics"
	flag "github.com/spf13/pflag"
)

type command struct {
	name  string
	short string
	run   func(args []string) error
}

var commands = []command{
	{"trim", "cut a network to a service area and restore strong connectivity", runTrim},
	{"extract", "turn observed feeder trips into timetable-synchronized drt requests", runExtract},
	{"sample", "down-sample a population to one or more fractions", runSample},
	{"convert", "convert trips of selected modes into drt requests", runConvert},
	{"analyze", "report demand and network density of a service area", runAnalyze},
}

func usage() {
	fmt.Fprintf(os.Stderr, "drtprep - DRT scenario preparation\n\nUsage:\n\n  %s <command> [<options>]\n\nCommands:\n\n", os.Args[0])
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", c.name, c.short)
	}
	fmt.Fprintf(os.Stderr, "\nRun '%s <command> --help' for the options of a command.\n", os.Args[0])
}

func main() {
	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" || os.Args[1] == "help" {
		usage()
		if len(os.Args) < 2 {
			os.Exit(1)
		}
		return
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == os.Args[1] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(os.Stderr, "Unknown command %q, see --help\n", os.Args[1])
		os.Exit(1)
	}

	err := cmd.run(os.Args[2:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		slog.Default().Error(cmd.name+" failed", "error", err)
		os.Exit(errs.ExitCode(err))
	}
}

// commonFlags are understood by every command.
type commonFlags struct {
	configPath  *string
	logLevel    *string
	metricsFile *string
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		configPath:  fs.StringP("config", "c", "", "YAML pipeline configuration"),
		logLevel:    fs.String("log-level", "", "debug, info, warn or error (default from config or DRTPREP_LOG_LEVEL)"),
		metricsFile: fs.String("metrics-file", "", "write run metrics in Prometheus textfile format to this file"),
	}
}

// session is the per-run state shared by the commands.
type session struct {
	cfg         *config.Config
	log         *slog.Logger
	metrics     *metrics.Collector
	metricsFile string
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n\n  %s %s [<options>]\n\nAllowed options:\n\n", os.Args[0], name)
		fs.PrintDefaults()
	}
	return fs
}

// parse parses args and sets up configuration, logging and metrics.
func parse(fs *flag.FlagSet, common *commonFlags, args []string) (*session, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errs.ErrConfiguration, err)
	}

	cfg, err := config.Load(*common.configPath)
	if err != nil {
		return nil, err
	}
	if *common.logLevel != "" {
		cfg.LogLevel = *common.logLevel
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)

	return &session{
		cfg:         cfg,
		log:         log,
		metrics:     metrics.NewCollector(),
		metricsFile: *common.metricsFile,
	}, nil
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "", "info":
		l = slog.LevelInfo
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return nil, fmt.Errorf("%w: unknown log level %q", errs.ErrConfiguration, level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}

// finish writes the metrics file, if one was requested.
func (s *session) finish() error {
	if s.metricsFile == "" {
		return nil
	}
	if err := s.metrics.WriteFile(s.metricsFile); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	s.log.Info("metrics written", "file", s.metricsFile)
	return nil
}

func required(fs *flag.FlagSet, names ...string) error {
	for _, n := range names {
		if f := fs.Lookup(n); f == nil || f.Value.String() == "" {
			return fmt.Errorf("%w: --%s is required", errs.ErrConfiguration, n)
		}
	}
	return nil
}
