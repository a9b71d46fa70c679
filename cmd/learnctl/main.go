// AngelaMos | 2026
// main.go

package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/carterperez-dev/learnhub/internal/config"
	"github.com/carterperez-dev/learnhub/internal/storage"
	"github.com/carterperez-dev/learnhub/internal/store"
)

func main() {
	configPath := flag.String("config", "", "optional path to config file")
	flag.Parse()

	if err := run(*configPath, flag.Args()); err != nil {
		if !errors.Is(err, errHelp) {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		os.Exit(1)
	}
}

func run(configPath string, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	kv, err := storage.NewFile(cfg.Store.FileDir)
	if err != nil {
		return err
	}

	cli := &commandLine{
		st:  store.New(kv, cfg.Store.Namespace, store.WithLogger(logger)),
		out: os.Stdout,
		now: time.Now,
	}
	return cli.run(args)
}
