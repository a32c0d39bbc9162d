// Package main is the entrypoint for the driftfs CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/driftfs/driftfs/internal/adapter"
	"github.com/driftfs/driftfs/internal/adapter/local"
	"github.com/driftfs/driftfs/internal/adapter/sftp"
	"github.com/driftfs/driftfs/internal/checksum"
	"github.com/driftfs/driftfs/internal/config"
	"github.com/driftfs/driftfs/internal/domain"
	"github.com/driftfs/driftfs/internal/logger"
	"github.com/driftfs/driftfs/internal/progress"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var (
	configPath   string
	endpointName string
	logLevel     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "driftfs",
	Short: "driftfs - uniform file operations over remote storage endpoints",
	Long: `driftfs exposes read, write, list, rename, copy and delete operations
against named storage endpoints. SFTP and local-disk backends are
interchangeable behind the same operation surface.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&endpointName, "endpoint", "e", "", "Endpoint name from config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override configured log level")

	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(mvCmd)
	rootCmd.AddCommand(cpCmd)
	rootCmd.AddCommand(sumCmd)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM so an
// in-flight transfer aborts but the session is still released.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openAdapter loads the config, initializes logging and builds the
// adapter for the selected endpoint.
func openAdapter() (adapter.Adapter, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	if err := logger.Init(logger.Config{
		Level:  logger.ParseLevel(level),
		Format: logger.Format(cfg.Log.Format),
		File:   cfg.Log.File,
	}); err != nil {
		return nil, err
	}

	if endpointName == "" {
		if len(cfg.Endpoints) != 1 {
			return nil, fmt.Errorf("%w: --endpoint is required when config defines multiple endpoints", domain.ErrConfigInvalid)
		}
		endpointName = cfg.Endpoints[0].Name
	}

	ep, err := cfg.GetEndpoint(endpointName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, endpointName)
	}

	switch ep.Type {
	case domain.EndpointLocal:
		return local.New(config.ExpandPath(ep.Root))
	case domain.EndpointSFTP:
		opt := sftp.Options{
			Endpoint:             ep.Endpoint,
			PrivateKeyPassphrase: ep.PrivateKeyPassphrase,
			Proxy:                ep.Proxy,
			ProxyKind:            sftp.ProxyKind(ep.ProxyKind),
		}
		if ep.PrivateKeyFile != "" {
			key, err := os.ReadFile(config.ExpandPath(ep.PrivateKeyFile))
			if err != nil {
				return nil, fmt.Errorf("%w: read private key: %v", domain.ErrConfigInvalid, err)
			}
			opt.PrivateKey = key
		}
		return sftp.New(opt)
	default:
		return nil, fmt.Errorf("%w: unsupported endpoint type %q", domain.ErrConfigInvalid, ep.Type)
	}
}

var lsCmd = &cobra.Command{
	Use:   "ls [pattern]",
	Short: "List files matching a pattern",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		skip, _ := cmd.Flags().GetInt("skip")
		pattern := ""
		if len(args) == 1 {
			pattern = args[0]
		}

		a, err := openAdapter()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signalContext()
		defer cancel()

		files, err := a.List(ctx, pattern, limit, skip)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Printf("%12d  %s  %s\n", f.Size, f.ModTime.Format("2006-01-02 15:04:05"), f.Path)
		}
		return nil
	},
}

var statCmd = &cobra.Command{
	Use:   "stat <path>",
	Short: "Show metadata for a single entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openAdapter()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signalContext()
		defer cancel()

		info, err := a.Stat(ctx, args[0])
		if errors.Is(err, domain.ErrNotFound) {
			fmt.Printf("%s: not found\n", args[0])
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("path:     %s\nsize:     %d\nmodified: %s\ndir:      %v\n",
			info.Path, info.Size, info.ModTime.Format("2006-01-02 15:04:05"), info.IsDir())
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <remote> [local]",
	Short: "Download a file (stdout when no local path is given)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		showProgress, _ := cmd.Flags().GetBool("progress")

		a, err := openAdapter()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signalContext()
		defer cancel()

		var total int64
		if showProgress {
			if info, err := a.Stat(ctx, args[0]); err == nil {
				total = info.Size
			}
		}

		r, err := a.ReadStream(ctx, args[0])
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%s: not found", args[0])
		}
		if err != nil {
			return err
		}
		defer r.Close()

		var out io.Writer = os.Stdout
		if len(args) == 2 {
			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		if showProgress {
			meter := progress.NewMeter(os.Stderr, args[0], total)
			defer meter.Finish()
			out = io.MultiWriter(out, meter)
		}

		_, err = io.Copy(out, r)
		return err
	},
}

var putCmd = &cobra.Command{
	Use:   "put <local> <remote>",
	Short: "Upload a file, overwriting any existing entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		showProgress, _ := cmd.Flags().GetBool("progress")

		a, err := openAdapter()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signalContext()
		defer cancel()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		var src io.Reader = f
		if showProgress {
			var total int64
			if info, err := f.Stat(); err == nil {
				total = info.Size()
			}
			meter := progress.NewMeter(os.Stderr, args[1], total)
			defer meter.Finish()
			src = io.TeeReader(f, meter)
		}

		return a.Write(ctx, args[1], src)
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <path|pattern>",
	Short: "Delete an entry, or every entry matching a wildcard pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openAdapter()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signalContext()
		defer cancel()

		if !hasWildcard(args[0]) {
			err := a.Delete(ctx, args[0])
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%s: not found", args[0])
			}
			return err
		}

		deleted, err := a.DeleteMany(ctx, args[0])
		fmt.Printf("deleted %d entries\n", deleted)
		return err
	},
}

var mvCmd = &cobra.Command{
	Use:   "mv <path> <newPath>",
	Short: "Rename an entry in place",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openAdapter()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signalContext()
		defer cancel()

		return a.Rename(ctx, args[0], args[1])
	},
}

var cpCmd = &cobra.Command{
	Use:   "cp <path> <targetPath>",
	Short: "Copy an entry (download then upload, not atomic)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openAdapter()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signalContext()
		defer cancel()

		err = a.Copy(ctx, args[0], args[1])
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%s: not found", args[0])
		}
		return err
	},
}

var sumCmd = &cobra.Command{
	Use:   "sum <path>",
	Short: "Print the content digest of a remote entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		algoName, _ := cmd.Flags().GetString("algo")
		algo, err := checksum.Parse(algoName)
		if err != nil {
			return err
		}

		a, err := openAdapter()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signalContext()
		defer cancel()

		r, err := a.ReadStream(ctx, args[0])
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%s: not found", args[0])
		}
		if err != nil {
			return err
		}
		defer r.Close()

		digest, err := checksum.Sum(ctx, r, algo)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", digest, args[0])
		return nil
	},
}

func hasWildcard(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '*' {
			return true
		}
	}
	return false
}

func init() {
	lsCmd.Flags().Int("limit", adapter.NoLimit, "Maximum number of entries (negative for unlimited)")
	lsCmd.Flags().Int("skip", 0, "Number of matching entries to skip")
	getCmd.Flags().Bool("progress", false, "Show transfer progress on stderr")
	putCmd.Flags().Bool("progress", false, "Show transfer progress on stderr")
	sumCmd.Flags().String("algo", string(checksum.SHA256), "Digest algorithm (md5 or sha256)")
}
