package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/archcache"
	"github.com/unkn0wn-root/archcache/archive"
	zaplog "github.com/unkn0wn-root/archcache/log/zap"
	"github.com/unkn0wn-root/archcache/provider/redis"
)

// app is everything a subcommand needs once flags and config are resolved.
type app struct {
	cfg      Config
	log      *zap.Logger
	provider *redis.Redis
	cache    *archcache.Cache
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		redisURL   string
		logLevel   string
	)
	root := &cobra.Command{
		Use:           "archcache",
		Short:         "Inspect archived cache entries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("ARCHCACHE_CONFIG"), "path to YAML config")
	root.PersistentFlags().StringVar(&redisURL, "redis-url", "", "redis URL, overrides the config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	setup := func(cmd *cobra.Command) (*app, error) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return nil, err
		}
		if redisURL != "" {
			cfg.Redis.URL = redisURL
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		return newApp(cfg, cmd.ErrOrStderr())
	}

	root.AddCommand(
		newKindsCmd(),
		newGetCmd(setup),
		newInspectCmd(setup),
	)
	return root
}

func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), lvl)), nil
}

func newApp(cfg Config, logOut io.Writer) (*app, error) {
	log, err := newLogger(cfg.LogLevel, logOut)
	if err != nil {
		return nil, err
	}
	opts, err := goredis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	if cfg.Redis.PoolSize > 0 {
		opts.PoolSize = cfg.Redis.PoolSize
	}
	p, err := redis.New(redis.Config{Client: goredis.NewClient(opts), CloseClient: true})
	if err != nil {
		return nil, err
	}
	c, err := archcache.New(archcache.Options{
		Provider:       p,
		Logger:         zaplog.New(log),
		AcquireTimeout: cfg.acquireTimeout,
		MaxArchiveSize: cfg.MaxArchiveSize,
	})
	if err != nil {
		_ = p.Close(context.Background())
		return nil, err
	}
	log.Debug("connected", zap.String("redis", opts.Addr), zap.Int("pool_size", opts.PoolSize))
	return &app{cfg: cfg, log: log, provider: p, cache: c}, nil
}

func (a *app) close() {
	_ = a.cache.Close(context.Background())
	_ = a.log.Sync()
}

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the declared cache kinds and their TTLs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tTTL")
			entries := append([]kindEntry(nil), catalog...)
			sort.Slice(entries, func(i, j int) bool { return entries[i].kind < entries[j].kind })
			for _, e := range entries {
				ttl := "none"
				if e.ttl > 0 {
					ttl = e.ttl.String()
				}
				fmt.Fprintf(tw, "%s\t%s\n", e.kind, ttl)
			}
			return tw.Flush()
		},
	}
}

func newGetCmd(setup func(*cobra.Command) (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "get <kind> <key>",
		Short: "Fetch, validate and print one typed entry as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ok := lookupKind(args[0])
			if !ok {
				return fmt.Errorf("unknown kind %q (see 'archcache kinds')", args[0])
			}
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			v, found, err := e.get(cmd.Context(), a.cache, archcache.KeyString(args[1]))
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%s %q: not cached", e.kind, args[1])
			}
			return writeJSON(cmd.OutOrStdout(), v)
		},
	}
}

func newInspectCmd(setup func(*cobra.Command) (*app, error)) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect <storage-key>",
		Short: "Structurally validate a raw entry and print its node tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			conn, err := a.provider.Acquire(ctx)
			if err != nil {
				return err
			}
			defer conn.Release()
			raw, ok, err := conn.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%q: not found", args[0])
			}
			arc, err := archive.Validate(raw, archive.AnyShape)
			if err != nil {
				return err
			}
			a.log.Debug("validated", zap.String("key", args[0]), zap.Int("bytes", arc.Len()))
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), arc.Root().Interface())
			}
			return archive.Describe(cmd.OutOrStdout(), arc)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the archive as generic JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
