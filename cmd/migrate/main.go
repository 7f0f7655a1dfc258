// Command migrate applies or rolls back the database schema.
//
//	migrate up
//	migrate status
//	migrate down [version]
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/artem13815/finadvisor/pkg/config"
	"github.com/artem13815/finadvisor/pkg/logging"
	"github.com/artem13815/finadvisor/pkg/storage/postgres"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.Setup(cfg.LogLevel)
	m, err := postgres.NewMigrator(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}

	cmd := "up"
	if len(args) > 0 {
		cmd = args[0]
	}
	ctx := context.Background()
	switch cmd {
	case "up":
		return m.Up(ctx)
	case "status":
		return m.Status(ctx)
	case "down":
		var target int64
		if len(args) > 1 {
			target, err = strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid target version %q", args[1])
			}
		}
		return m.Down(ctx, target)
	default:
		return fmt.Errorf("unknown command %q (want up, status or down)", cmd)
	}
}
