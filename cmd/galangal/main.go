// galangal is a command-line SFTP client with transactional transfers and
// overwrite-conflict resolution.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/ThK-Systems/galangal"
	"github.com/ThK-Systems/galangal/internal/config"
	"github.com/ThK-Systems/galangal/internal/logging"
	"github.com/ThK-Systems/galangal/internal/security"
	"golang.org/x/term"
)

// Version information - set at build time.
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `Usage: galangal [flags] <command> [args]

Commands:
  ls <remote-folder> [wildcard]          list folder entries
  stat <remote-path>                     show file details
  put <local-file> <remote-file>         upload a file
  get <remote-file> <local-file>         download a file
  rm <remote-file>                       delete a file
  rm-matching <remote-folder> <wildcard> delete matching files
  mkdir <remote-folder>                  create a folder (with parents)
  rmdir <remote-folder>                  delete a folder recursively
  rename <old-path> <new-path>           rename or move a file
  mv <src-folder> <dst-folder> [wildcard]
                                         move matching files between folders
  watch <remote-folder> <local-folder> [wildcard]
                                         poll a folder and download new files
  keyring <set-password|delete-password> <user> <host>
                                         manage stored credentials

Flags:
`

func main() {
	var (
		configPath  string
		showVersion bool
		debug       bool
		interval    time.Duration
	)

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.DurationVar(&interval, "interval", 30*time.Second, "Poll interval for the watch command")
	flag.Parse()

	if showVersion {
		fmt.Printf("galangal version %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if debug {
		cfg.Logging.Level = "debug"
	}

	// The keyring command works without a server configuration.
	if args[0] == "keyring" {
		logging.Setup(cfg.Logging.Level, cfg.Logging.Sanitize)
		if err := runKeyring(args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logging
	logging.Setup(cfg.Logging.Level, cfg.Logging.Sanitize)

	slog.Info("starting galangal",
		slog.String("version", Version),
		slog.String("command", args[0]),
	)

	clientCfg, err := cfg.ClientConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	client, err := galangal.NewClient(clientCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := run(client, configPath, debug, interval, args); err != nil {
		slog.Error("command failed",
			slog.String("command", args[0]),
			slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(client *galangal.Client, configPath string, debug bool, interval time.Duration, args []string) error {
	cmd, args := args[0], args[1:]
	switch cmd {
	case "ls":
		return runList(client, args)
	case "stat":
		return runStat(client, args)
	case "put":
		if len(args) != 2 {
			return fmt.Errorf("usage: put <local-file> <remote-file>")
		}
		return client.UploadFile(args[1], args[0])
	case "get":
		if len(args) != 2 {
			return fmt.Errorf("usage: get <remote-file> <local-file>")
		}
		return client.DownloadFile(args[0], args[1])
	case "rm":
		if len(args) != 1 {
			return fmt.Errorf("usage: rm <remote-file>")
		}
		return client.Delete(args[0])
	case "rm-matching":
		if len(args) != 2 {
			return fmt.Errorf("usage: rm-matching <remote-folder> <wildcard>")
		}
		return client.DeleteMatching(args[0], args[1])
	case "mkdir":
		if len(args) != 1 {
			return fmt.Errorf("usage: mkdir <remote-folder>")
		}
		return client.CreateFolder(args[0])
	case "rmdir":
		if len(args) != 1 {
			return fmt.Errorf("usage: rmdir <remote-folder>")
		}
		return client.DeleteFolder(args[0])
	case "rename":
		if len(args) != 2 {
			return fmt.Errorf("usage: rename <old-path> <new-path>")
		}
		return client.Rename(args[0], args[1])
	case "mv":
		wildcard := ""
		switch len(args) {
		case 3:
			wildcard = args[2]
		case 2:
		default:
			return fmt.Errorf("usage: mv <src-folder> <dst-folder> [wildcard]")
		}
		return client.MoveMatching(args[0], args[1], wildcard)
	case "watch":
		return runWatch(client, configPath, debug, interval, args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runList(client *galangal.Client, args []string) error {
	wildcard := ""
	switch len(args) {
	case 2:
		wildcard = args[1]
	case 1:
	default:
		return fmt.Errorf("usage: ls <remote-folder> [wildcard]")
	}
	files, err := client.List(args[0], wildcard)
	if err != nil {
		return err
	}
	for _, f := range files {
		size := "-"
		if f.Size >= 0 {
			size = fmt.Sprintf("%d", f.Size)
		}
		fmt.Printf("%-8s %12s  %s\n", f.Type, size, f.Name)
	}
	return nil
}

func runStat(client *galangal.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: stat <remote-path>")
	}
	f, err := client.Stat(args[0])
	if err != nil {
		return err
	}
	if f == nil {
		return fmt.Errorf("no such remote path: %s", args[0])
	}
	fmt.Printf("Path: %s\n", f.FullPath())
	fmt.Printf("Type: %s\n", f.Type)
	if f.Size >= 0 {
		fmt.Printf("Size: %d\n", f.Size)
	}
	fmt.Printf("Host: %s\n", f.Host)
	return nil
}

// runWatch polls a remote folder and downloads matching files until
// interrupted. With a config file present, transfer settings are hot-reloaded
// on change.
func runWatch(client *galangal.Client, configPath string, debug bool, interval time.Duration, args []string) error {
	wildcard := ""
	switch len(args) {
	case 3:
		wildcard = args[2]
	case 2:
	default:
		return fmt.Errorf("usage: watch <remote-folder> <local-folder> [wildcard]")
	}
	remoteFolder, localFolder := args[0], args[1]

	// Set up config hot-reload if a config file was provided
	var configWatcher *config.Watcher
	if configPath != "" {
		var watcherErr error
		configWatcher, watcherErr = config.NewWatcher(configPath, func(newCfg *config.Config) {
			if debug {
				newCfg.Logging.Level = "debug"
			}
			applyTransferConfig(client, newCfg)
		})
		if watcherErr != nil {
			slog.Warn("config hot-reload disabled",
				slog.String("error", watcherErr.Error()),
			)
		} else {
			slog.Info("config hot-reload enabled",
				slog.String("path", configPath),
			)
			defer configWatcher.Close()
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("watching remote folder",
		slog.String("remote_folder", remoteFolder),
		slog.String("local_folder", localFolder),
		slog.String("interval", interval.String()),
	)

	for {
		if err := client.DownloadFiles(remoteFolder, localFolder, wildcard); err != nil {
			slog.Error("poll failed", slog.String("error", err.Error()))
		}
		select {
		case <-sigChan:
			slog.Info("received shutdown signal")
			return nil
		case <-ticker.C:
		}
	}
}

// applyTransferConfig pushes reloaded transfer settings onto a running
// client. Connection settings need a restart and are left alone.
func applyTransferConfig(client *galangal.Client, cfg *config.Config) {
	clientCfg, err := cfg.ClientConfig()
	if err != nil {
		slog.Warn("reloaded config not applied", slog.String("error", err.Error()))
		return
	}
	client.SetStrictMode(clientCfg.StrictMode)
	client.SetOverwrite(clientCfg.Overwrite)
	client.SetTransactional(clientCfg.Transactional)
	client.SetAutoCreateDirs(clientCfg.AutoCreateDirs)
}

func runKeyring(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: keyring <set-password|delete-password> <user> <host>")
	}
	action, user, host := args[0], args[1], args[2]
	ks := security.NewKeyringStore()

	switch action {
	case "set-password":
		fmt.Fprintf(os.Stderr, "Password for %s@%s: ", user, host)
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if err := ks.StorePassword(user, host, string(password)); err != nil {
			return err
		}
		fmt.Printf("Stored password for %s@%s\n", user, host)
		return nil
	case "delete-password":
		if err := ks.DeletePassword(user, host); err != nil {
			return err
		}
		fmt.Printf("Deleted password for %s@%s\n", user, host)
		return nil
	default:
		return fmt.Errorf("unknown keyring action %q", action)
	}
}
