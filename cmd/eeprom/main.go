// Command eeprom reads and programs 28C256 EEPROMs through the programmer
// firmware on a serial port.
//
// Usage:
//
//	eeprom [flags]                   interactive menu
//	eeprom [flags] dump [-o file]    print the whole chip, optionally save it
//	eeprom [flags] read <addr>       read one byte
//	eeprom [flags] write <addr> <v>  write one byte
//	eeprom [flags] program <file>    write a raw or Intel HEX image from 0x0000
//	                                 (-format raw|ihex overrides the extension)
//	eeprom [flags] fill <v>          write v everywhere
//	eeprom ports                     list serial ports
//
// Addresses and values are hex, with or without 0x.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/moffa90/go-eeprom/internal/config"
	"github.com/moffa90/go-eeprom/internal/logging"
	"github.com/moffa90/go-eeprom/internal/metrics"
	"github.com/moffa90/go-eeprom/programmer"
	"github.com/moffa90/go-eeprom/simulator"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	configPath  string
	port        string
	baud        int
	timeout     time.Duration
	settle      time.Duration
	logLevel    string
	metricsAddr string
	simulate    bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, *flag.FlagSet, error) {
	f := &flags{}
	fs := flag.NewFlagSet("eeprom", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", "", "path to a TOML config file")
	fs.StringVar(&f.port, "port", "", "serial port (default /dev/ttyUSB0)")
	fs.IntVar(&f.baud, "baud", 0, "baud rate (default 115200)")
	fs.DurationVar(&f.timeout, "timeout", 0, "reply timeout (default 4s)")
	fs.DurationVar(&f.settle, "settle", 0, "wait between writing and verifying (default 2s)")
	fs.StringVar(&f.logLevel, "log-level", "", "trace, debug, info, warn, error or off")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.BoolVar(&f.simulate, "simulate", false, "use an in-memory chip instead of a serial port")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: eeprom [flags] [dump [-o file] | read addr | write addr value | program [-format raw|ihex] file | fill value | ports]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs, nil
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(cfg *config.Config, f *flags, fs *flag.FlagSet) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "port":
			cfg.Port = f.port
		case "baud":
			cfg.BaudRate = f.baud
		case "timeout":
			cfg.Timeout = f.timeout
		case "settle":
			cfg.SettleDelay = f.settle
		case "log-level":
			cfg.LogLevel = f.logLevel
		case "metrics-addr":
			cfg.MetricsAddr = f.metricsAddr
		}
	})
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	f, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "eeprom: %v\n", err)
		return exitError
	}
	applyFlags(&cfg, f, fs)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "eeprom: %v\n", err)
		return exitError
	}

	opts := logging.DefaultOptions()
	opts.Out = stderr
	logger := logging.New(cfg.LogLevel, opts)

	rest := fs.Args()
	if len(rest) > 0 && rest[0] == "ports" {
		return exitCode(cmdPorts(stdout), logger)
	}

	recorder := metrics.New()
	if cfg.MetricsAddr != "" {
		shutdown := serveMetrics(cfg.MetricsAddr, recorder, logger)
		defer shutdown()
	}

	term := newTerminal(stdin, stdout)
	bars := newProgressReporter(stdout, term.interactive)

	progOpts := []programmer.Option{
		programmer.WithLogger(logging.NewAdapter(logger)),
		programmer.WithMetrics(recorder),
		programmer.WithProgressCallback(bars.Update),
		programmer.WithTimeout(cfg.Timeout),
		programmer.WithBaudRate(cfg.BaudRate),
		programmer.WithConnectDelay(cfg.ConnectDelay),
		programmer.WithSettleDelay(cfg.SettleDelay),
	}

	var prog *programmer.Programmer
	if f.simulate {
		logger.Info().Msg("using simulated chip")
		prog = programmer.New(simulator.New(), progOpts...)
	} else {
		logger.Debug().Str("port", cfg.Port).Msg("opening port")
		prog, err = programmer.Open(cfg.Port, progOpts...)
		if err != nil {
			logger.Error().Err(err).Msg("failed to connect")
			return exitError
		}
	}
	defer func() {
		if err := prog.Close(); err != nil {
			logger.Error().Err(err).Msg("close port")
		}
	}()

	a := &app{prog: prog, out: stdout, bars: bars}

	if len(rest) == 0 {
		return exitCode(runMenu(ctx, a, term), logger)
	}
	return exitCode(a.dispatch(ctx, rest), logger)
}

// exitCode logs err and maps it to a process exit status.
func exitCode(err error, logger zerolog.Logger) int {
	if err == nil {
		return exitOK
	}
	var usage *usageError
	if errors.As(err, &usage) {
		logger.Error().Msg(usage.Error())
		return exitUsage
	}
	logger.Error().Err(err).Msg("operation failed")
	return exitError
}

// serveMetrics exposes /metrics until the returned func is called.
func serveMetrics(addr string, recorder *metrics.Recorder, logger zerolog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
