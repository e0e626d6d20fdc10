package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/gato001k1/CC1101-Tools/cc1101"
)

var (
	configPath = flag.String("config", "", "TOML link config file")
	port       = flag.String("port", "", "serial port of the CC1101 gateway")
	baud       = flag.Int("baud", cc1101.DefaultBaudRate, "serial baud rate")
	sshAddr    = flag.String("ssh", "", "SSH address of a remote gateway (host:port)")
	sshUser    = flag.String("user", "", "SSH username")
	sshPass    = flag.String("password", "", "SSH password (or CC1101_SSH_PASSWORD env var)")
	outDir     = flag.String("dir", ".", "directory to save received files in")
	overwrite  = flag.Bool("y", false, "overwrite existing files")
	verbose    = flag.Bool("v", false, "verbose mode")
	quiet      = flag.Bool("q", false, "quiet mode")
	logFile    = flag.String("log", "", "protocol log file")
	help       = flag.Bool("h", false, "show help")
	version    = flag.Bool("version", false, "show version")
)

const versionString = "ccrecv version 0.1.0"

func main() {
	flag.Parse()

	if *help {
		showUsage(0)
	}

	if *version {
		fmt.Println(versionString)
		os.Exit(0)
	}

	cfg, err := resolveLinkConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if info, err := os.Stat(*outDir); err != nil || !info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: %s is not a directory\n", *outDir)
		os.Exit(1)
	}

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := signalContext(sigChan)
	defer cancel()

	link, err := openLink(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer link.Close()

	// A closed link is what ends the receive loop; close it on a signal so
	// a blocked read returns.
	go func() {
		<-ctx.Done()
		link.Close()
	}()

	logger := makeLogger(*logFile, *verbose)

	// With a protocol log, trace the raw bytes crossing the link too.
	var wire io.ReadWriter = link
	if *logFile != "" {
		wire = cc1101.TraceLink(link, logger, "link")
	}

	interactive := term.IsTerminal(int(os.Stderr.Fd()))

	callbacks := &cc1101.Callbacks{
		OnFileSave: func(suggestedName string, data []byte) (string, error) {
			// The suggested name travels over the air; never let it escape
			// the output directory.
			path := filepath.Join(*outDir, filepath.Base(suggestedName))
			if !*overwrite {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(os.Stderr, "Skipping %s (exists, use -y to overwrite)\n", path)
					return "", cc1101.NewError(cc1101.ErrCancelled, path)
				}
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return "", err
			}
			return path, nil
		},
		OnFileAnnounce: func(filename string, fragments, byteLength int) {
			if *verbose && !*quiet {
				fmt.Fprintf(os.Stderr, "Incoming: %s (%d fragments, %d bytes)\n",
					filename, fragments, byteLength)
			}
		},
		OnFileComplete: func(filename string, byteCount int64, duration time.Duration) {
			if !*quiet {
				if interactive {
					fmt.Fprint(os.Stderr, "\r")
				}
				fmt.Fprintf(os.Stderr, "Received: %s (%d bytes)\n", filename, byteCount)
			}
		},
		OnStatus: func(text string) {
			if !*quiet {
				fmt.Fprintf(os.Stderr, "Gateway: %s\n", text)
			}
		},
		OnError: func(err error, context string) {
			if cc1101.IsChecksum(err) && !*verbose {
				// Noise on the air is routine; only worth a line in verbose
				// mode since the transfer will stall visibly anyway.
				return
			}
			fmt.Fprintf(os.Stderr, "Error in %s: %v\n", context, err)
		},
	}

	session := cc1101.NewSession(wire,
		cc1101.WithCallbacks(callbacks),
		cc1101.WithContext(ctx),
		cc1101.WithSessionLogger(logger),
	)

	if err := session.SetReceiveMode(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *verbose && !*quiet {
		fmt.Fprintln(os.Stderr, "Gateway in receive mode, waiting for files...")
	}

	if err := session.Run(ctx); err != nil {
		if !*quiet {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// openLink opens the configured transport: a local serial port or an SSH
// shell to a remote gateway box.
func openLink(cfg *linkConfig) (io.ReadWriteCloser, error) {
	if cfg.SSHAddr != "" {
		return cc1101.DialSSHLink(&cc1101.SSHLinkConfig{
			Addr:     cfg.SSHAddr,
			User:     cfg.SSHUser,
			Password: cfg.SSHPassword,
			Command:  cfg.SSHCommand,
		})
	}
	if cfg.Port == "" {
		return nil, fmt.Errorf("no serial port or SSH address configured")
	}
	return cc1101.OpenSerialLink(cfg.Port, cfg.Baud)
}

func makeLogger(path string, verbose bool) cc1101.Logger {
	if path != "" {
		logger, err := cc1101.NewFileLogger(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file: %v\n", err)
			return cc1101.NoopLogger{}
		}
		return logger
	}
	if verbose {
		return cc1101.NewConsoleLogger(os.Stderr, zerolog.DebugLevel)
	}
	return cc1101.NoopLogger{}
}

func signalContext(sigChan chan os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-sigChan
		cancel()
	}()
	return ctx, cancel
}

func showUsage(exitcode int) {
	fmt.Fprintf(os.Stderr, `%s - receive files from a CC1101 radio gateway

Usage: %s [options]

Options:
  -config file      TOML link config file
  -port name        serial port of the gateway (e.g. /dev/ttyUSB0)
  -baud N           serial baud rate (default: %d)
  -ssh host:port    reach the gateway over SSH instead of a local port
  -user name        SSH username
  -password secret  SSH password (or CC1101_SSH_PASSWORD env var)
  -dir path         directory to save received files in (default: .)
  -y                overwrite existing files
  -log file         protocol log file
  -q                quiet mode, minimal output
  -v                verbose mode
  -h                show this help message
  --version         show version

Examples:
  %s -port /dev/ttyUSB0
  %s -config link.toml -dir ~/incoming -v
  %s -ssh bench-pi:22 -user pi -y

`, versionString, os.Args[0], cc1101.DefaultBaudRate, os.Args[0], os.Args[0], os.Args[0])
	os.Exit(exitcode)
}
