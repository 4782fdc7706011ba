package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/fsnader/elephant/codec"
	"github.com/fsnader/elephant/dmap"
	"github.com/fsnader/elephant/dset"
	"github.com/fsnader/elephant/internal/config"
	"github.com/fsnader/elephant/pkg/metrics"
	"github.com/fsnader/elephant/queue"
	"github.com/fsnader/elephant/store/memstore"
	"github.com/fsnader/elephant/store/pebblestore"
	"github.com/fsnader/elephant/store/redisstore"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfgPath string
	var cfg config.Config

	root := &cobra.Command{
		Use:           "elephant",
		Short:         "Elephant CLI",
		Long:          "Elephant exposes queue, map, and set structures over a shared backend. This CLI operates them for testing and operations.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			config.FromEnv(&loaded)
			// Flags win over file and env.
			if v, _ := cmd.Flags().GetString("namespace"); v != "" {
				loaded.Namespace = v
			}
			if v, _ := cmd.Flags().GetString("redis"); v != "" {
				loaded.Redis.Addr = v
			}
			if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
				loaded.DataDir = v
			}
			if v, _ := cmd.Flags().GetString("log-level"); v != "" {
				loaded.LogLevel = v
			}
			cfg = loaded
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", os.Getenv("ELEPHANT_CONFIG"), "Config file (JSON or YAML)")
	root.PersistentFlags().String("namespace", "", "Key namespace (default from config)")
	root.PersistentFlags().String("redis", "", "Redis address host:port")
	root.PersistentFlags().String("data-dir", "", "Use the embedded Pebble backend at this directory instead of Redis")
	root.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error")

	root.AddCommand(newQueueCommand(&cfg))
	root.AddCommand(newMapCommand(&cfg))
	root.AddCommand(newSetCommand(&cfg))
	return root
}

func newQueueCommand(cfg *config.Config) *cobra.Command {
	queueCmd := &cobra.Command{Use: "queue", Short: "Queue operations"}

	pushCmd := &cobra.Command{
		Use:   "push <name> <value>...",
		Short: "Enqueue one or more values",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQueue(cmd.Context(), *cfg, args[0], func(ctx context.Context, q *queue.Queue[[]byte]) error {
				for _, v := range args[1:] {
					if err := q.Enqueue(ctx, []byte(v)); err != nil {
						return err
					}
				}
				fmt.Printf("pushed %d\n", len(args)-1)
				return nil
			})
		},
	}

	popCmd := &cobra.Command{
		Use:   "pop <name>",
		Short: "Dequeue without blocking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQueue(cmd.Context(), *cfg, args[0], func(ctx context.Context, q *queue.Queue[[]byte]) error {
				v, ok, err := q.TryDequeue(ctx)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println("(empty)")
					return nil
				}
				fmt.Println(string(v))
				return nil
			})
		},
	}

	takeCmd := &cobra.Command{
		Use:   "take <name>",
		Short: "Dequeue, blocking until an item arrives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout, _ := cmd.Flags().GetDuration("timeout")
			return withQueue(cmd.Context(), *cfg, args[0], func(ctx context.Context, q *queue.Queue[[]byte]) error {
				if timeout > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, timeout)
					defer cancel()
				}
				v, err := q.Dequeue(ctx)
				if err != nil {
					return err
				}
				fmt.Println(string(v))
				return nil
			})
		},
	}
	takeCmd.Flags().Duration("timeout", 0, "Give up after this long (0 waits forever)")

	lenCmd := &cobra.Command{
		Use:   "len <name>",
		Short: "Report queue length",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQueue(cmd.Context(), *cfg, args[0], func(ctx context.Context, q *queue.Queue[[]byte]) error {
				n, err := q.Len(ctx)
				if err != nil {
					return err
				}
				fmt.Println(n)
				return nil
			})
		},
	}

	workCmd := &cobra.Command{
		Use:   "work <name>",
		Short: "Run blocking consumers until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workers, _ := cmd.Flags().GetInt("workers")
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
			if workers <= 0 {
				workers = 1
			}
			return runWorkers(*cfg, args[0], workers, metricsAddr)
		},
	}
	workCmd.Flags().Int("workers", 1, "Number of concurrent consumers")
	workCmd.Flags().String("metrics-addr", os.Getenv("ELEPHANT_METRICS_ADDR"), "Serve prometheus metrics on this address")

	queueCmd.AddCommand(pushCmd, popCmd, takeCmd, lenCmd, workCmd)
	return queueCmd
}

func newMapCommand(cfg *config.Config) *cobra.Command {
	mapCmd := &cobra.Command{Use: "map", Short: "Map operations (Redis backend only)"}

	setCmd := &cobra.Command{
		Use:   "set <name> <field> <value>",
		Short: "Store a field",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRedis(*cfg, func(s *redisstore.Store) error {
				m, err := dmap.Open[string](args[0], dmap.Options[string]{Namespace: cfg.Namespace, Hash: s})
				if err != nil {
					return err
				}
				return m.Set(cmd.Context(), args[1], args[2])
			})
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <name> <field>",
		Short: "Read a field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRedis(*cfg, func(s *redisstore.Store) error {
				m, err := dmap.Open[string](args[0], dmap.Options[string]{Namespace: cfg.Namespace, Hash: s})
				if err != nil {
					return err
				}
				v, ok, err := m.Get(cmd.Context(), args[1])
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println("(absent)")
					return nil
				}
				fmt.Println(v)
				return nil
			})
		},
	}

	delCmd := &cobra.Command{
		Use:   "del <name> <field>",
		Short: "Delete a field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRedis(*cfg, func(s *redisstore.Store) error {
				m, err := dmap.Open[string](args[0], dmap.Options[string]{Namespace: cfg.Namespace, Hash: s})
				if err != nil {
					return err
				}
				return m.Delete(cmd.Context(), args[1])
			})
		},
	}

	mapCmd.AddCommand(setCmd, getCmd, delCmd)
	return mapCmd
}

func newSetCommand(cfg *config.Config) *cobra.Command {
	setCmd := &cobra.Command{Use: "set", Short: "Set operations (Redis backend only)"}

	addCmd := &cobra.Command{
		Use:   "add <name> <member>...",
		Short: "Add members",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRedis(*cfg, func(st *redisstore.Store) error {
				s, err := dset.Open[string](args[0], dset.Options[string]{Namespace: cfg.Namespace, Set: st})
				if err != nil {
					return err
				}
				for _, m := range args[1:] {
					if err := s.Add(cmd.Context(), m); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	hasCmd := &cobra.Command{
		Use:   "has <name> <member>",
		Short: "Test membership",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRedis(*cfg, func(st *redisstore.Store) error {
				s, err := dset.Open[string](args[0], dset.Options[string]{Namespace: cfg.Namespace, Set: st})
				if err != nil {
					return err
				}
				ok, err := s.Contains(cmd.Context(), args[1])
				if err != nil {
					return err
				}
				fmt.Println(ok)
				return nil
			})
		},
	}

	membersCmd := &cobra.Command{
		Use:   "members <name>",
		Short: "List members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRedis(*cfg, func(st *redisstore.Store) error {
				s, err := dset.Open[string](args[0], dset.Options[string]{Namespace: cfg.Namespace, Set: st})
				if err != nil {
					return err
				}
				members, err := s.Members(cmd.Context())
				if err != nil {
					return err
				}
				for _, m := range members {
					fmt.Println(m)
				}
				return nil
			})
		},
	}

	setCmd.AddCommand(addCmd, hasCmd, membersCmd)
	return setCmd
}

// runWorkers consumes the queue with N blocking workers until SIGINT/SIGTERM.
func runWorkers(cfg config.Config, name string, workers int, metricsAddr string) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	met, err := metrics.New(reg)
	if err != nil {
		return err
	}

	q, cleanup, err := openQueue(cfg, name, logger, met.ForQueue(name))
	if err != nil {
		return err
	}
	defer cleanup()

	g, ctx := errgroup.WithContext(ctx)
	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		g.Go(func() error {
			err := srv.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		logger.Info("serving metrics", zap.String("addr", metricsAddr))
	}

	for i := 0; i < workers; i++ {
		worker := i
		g.Go(func() error {
			log := logger.With(zap.Int("worker", worker))
			for {
				v, err := q.Dequeue(ctx)
				if err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, queue.ErrClosed) {
						return nil
					}
					return err
				}
				log.Info("consumed", zap.ByteString("item", v))
			}
		})
	}
	return g.Wait()
}

// withQueue opens the queue for one short-lived command and closes it after.
func withQueue(ctx context.Context, cfg config.Config, name string, fn func(context.Context, *queue.Queue[[]byte]) error) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	q, cleanup, err := openQueue(cfg, name, logger, nil)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(ctx, q)
}

// openQueue wires the configured backend: Redis by default, embedded Pebble
// when DataDir is set. The embedded list pairs with an in-process bus, so
// blocking consumers are only woken by producers in the same process.
func openQueue(cfg config.Config, name string, logger *zap.Logger, met *metrics.Queue) (*queue.Queue[[]byte], func(), error) {
	opts := queue.Options[[]byte]{
		Namespace: cfg.Namespace,
		Codec:     codec.Raw(),
		Logger:    logger,
		Metrics:   met,
	}

	if cfg.DataDir != "" {
		db, err := pebblestore.Open(pebblestore.Options{DataDir: cfg.DataDir, Fsync: pebblestore.FsyncModeAlways})
		if err != nil {
			return nil, nil, err
		}
		opts.List = pebblestore.NewList(db)
		opts.Bus = memstore.New()
		q, err := queue.Open[[]byte](name, opts)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return q, func() { _ = q.Close(); _ = db.Close() }, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	rs := redisstore.New(rdb)
	opts.List = rs
	opts.Bus = rs
	q, err := queue.Open[[]byte](name, opts)
	if err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	return q, func() { _ = q.Close(); _ = rdb.Close() }, nil
}

func withRedis(cfg config.Config, fn func(*redisstore.Store) error) error {
	if cfg.Redis.Addr == "" {
		return errors.New("map/set commands require a Redis backend")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	return fn(redisstore.New(rdb))
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	var zc zap.Config
	if cfg.LogFormat == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
