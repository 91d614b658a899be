// Command entitycache inspects and edits a shared entity cache.
//
//	entitycache [-config file] keys
//	entitycache [-config file] get [-format json|msgpack|cbor|proto] <id>
//	entitycache [-config file] put [-format ...] <file|->
//	entitycache [-config file] touch <id>
//	entitycache [-config file] ts <id>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/unkn0wn-root/entitycache"
	"github.com/unkn0wn-root/entitycache/gate"
	"github.com/unkn0wn-root/entitycache/internal/config"
	zaplog "github.com/unkn0wn-root/entitycache/log/zap"
	redisstore "github.com/unkn0wn-root/entitycache/store/redis"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to config file")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "entitycache: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logging)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, flag.Args()); err != nil {
		logger.Error("command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		stop()
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, args []string) error {
	policy, err := gate.ParsePolicy(cfg.Cache.Gate)
	if err != nil {
		return err
	}

	st, err := redisstore.Dial(ctx, cfg.Redis.DialConfig())
	if err != nil {
		return err
	}
	logger.Debug("connected",
		zap.String("addr", cfg.Redis.Addr),
		zap.Int("db", cfg.Redis.DB),
		zap.String("namespace", cfg.Cache.Namespace),
	)

	c, err := entitycache.New(entitycache.Options{
		Store:      st,
		Namespace:  cfg.Cache.Namespace,
		GatePolicy: policy,
		Logger:     zaplog.ZapLogger{L: logger},
	})
	if err != nil {
		_ = st.Close(ctx)
		return err
	}
	defer func() {
		if err := c.Close(context.Background()); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
	}()

	cli := &commands{cache: c, ns: cfg.Cache.Namespace, out: os.Stdout, in: os.Stdin}
	return cli.dispatch(ctx, args)
}

func initLogger(cfg config.LoggingConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zc zap.Config
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	// stdout carries command output
	zc.OutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: entitycache [-config file] <command> [args]

commands:
  keys                      list every composite key ever written
  get [-format f] <id>      export an entity snapshot (json, msgpack, cbor, proto)
  put [-format f] <file|->  import an entity snapshot
  touch <id>                refresh an entity's timestamp
  ts <id>                   print an entity's timestamp

flags:
`)
	flag.PrintDefaults()
}
