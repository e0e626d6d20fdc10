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
	fragSize   = flag.Int("fragsize", cc1101.MaxFragmentSize, "fragment payload size in base64 characters")
	verbose    = flag.Bool("v", false, "verbose mode")
	quiet      = flag.Bool("q", false, "quiet mode")
	logFile    = flag.String("log", "", "protocol log file")
	help       = flag.Bool("h", false, "show help")
	version    = flag.Bool("version", false, "show version")
)

const versionString = "ccsend version 0.1.0"

func main() {
	flag.Parse()

	if *help {
		showUsage(0)
	}

	if *version {
		fmt.Println(versionString)
		os.Exit(0)
	}

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "%s: no files specified\n", os.Args[0])
		showUsage(1)
	}

	cfg, err := resolveLinkConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
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

	logger := makeLogger(*logFile, *verbose)

	// With a protocol log, trace the raw bytes crossing the link too.
	var wire io.ReadWriter = link
	if *logFile != "" {
		wire = cc1101.TraceLink(link, logger, "link")
	}

	// In-place progress only makes sense on a real terminal.
	interactive := term.IsTerminal(int(os.Stderr.Fd()))

	callbacks := &cc1101.Callbacks{
		OnProgress: func(filename string, transferred, total int64, rate float64) {
			if *quiet || !interactive {
				return
			}
			percent := float64(0)
			if total > 0 {
				percent = float64(transferred) / float64(total) * 100
			}
			fmt.Fprintf(os.Stderr, "\r%s: %.1f%% (%.0f fragments/s)", filename, percent, rate)
		},
		OnFileStart: func(filename string, size int64) {
			if *verbose && !*quiet {
				fmt.Fprintf(os.Stderr, "Sending: %s (%d bytes)\n", filename, size)
			}
		},
		OnFileComplete: func(filename string, byteCount int64, duration time.Duration) {
			if !*quiet {
				if interactive {
					fmt.Fprintln(os.Stderr)
				}
				fmt.Fprintf(os.Stderr, "Completed: %s (%d bytes in %v)\n", filename, byteCount, duration)
			}
		},
		OnStatus: func(text string) {
			if !*quiet {
				fmt.Fprintf(os.Stderr, "Gateway: %s\n", text)
			}
		},
		OnError: func(err error, context string) {
			fmt.Fprintf(os.Stderr, "Error in %s: %v\n", context, err)
		},
	}

	session := cc1101.NewSession(wire,
		cc1101.WithConfig(&cc1101.Config{
			MaxFragmentSize:  cfg.FragmentSize,
			ProgressInterval: 100 * time.Millisecond,
		}),
		cc1101.WithCallbacks(callbacks),
		cc1101.WithContext(ctx),
		cc1101.WithSessionLogger(logger),
	)

	// Drain gateway chatter (status lines, mode echoes) while sending.
	go session.Run(ctx)

	exitCode := 0
	for _, filename := range files {
		absPath, err := filepath.Abs(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resolving path %s: %v\n", filename, err)
			exitCode = 1
			continue
		}

		info, err := os.Stat(absPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error accessing %s: %v\n", filename, err)
			exitCode = 1
			continue
		}
		if info.IsDir() {
			fmt.Fprintf(os.Stderr, "Skipping directory: %s\n", filename)
			continue
		}

		data, err := os.ReadFile(absPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", filename, err)
			exitCode = 1
			continue
		}

		if err := session.SendFile(ctx, filepath.Base(absPath), data); err != nil {
			if cc1101.IsCancelled(err) {
				fmt.Fprintf(os.Stderr, "Cancelled: %s\n", filename)
				os.Exit(1)
			}
			fmt.Fprintf(os.Stderr, "Error sending %s: %v\n", filename, err)
			exitCode = 1
		}
	}

	os.Exit(exitCode)
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
	fmt.Fprintf(os.Stderr, `%s - send files through a CC1101 radio gateway

Usage: %s [options] file...

Options:
  -config file      TOML link config file
  -port name        serial port of the gateway (e.g. /dev/ttyUSB0)
  -baud N           serial baud rate (default: %d)
  -ssh host:port    reach the gateway over SSH instead of a local port
  -user name        SSH username
  -password secret  SSH password (or CC1101_SSH_PASSWORD env var)
  -fragsize N       fragment payload size in base64 characters (default: %d)
  -log file         protocol log file
  -q                quiet mode, minimal output
  -v                verbose mode
  -h                show this help message
  --version         show version

Examples:
  %s -port /dev/ttyUSB0 firmware.bin
  %s -config link.toml notes.txt photo.jpg
  %s -ssh bench-pi:22 -user pi -password raspberry firmware.bin

`, versionString, os.Args[0], cc1101.DefaultBaudRate, cc1101.MaxFragmentSize,
		os.Args[0], os.Args[0], os.Args[0])
	os.Exit(exitcode)
}
