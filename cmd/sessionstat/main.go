package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/amolnak/GuidanceMind/internal/common"
	repo "github.com/amolnak/GuidanceMind/internal/repository"
)

func main() {
	fs := pflag.NewFlagSet("sessionstat", pflag.ContinueOnError)
	common.RegisterFlags(fs)
	cfg, err := common.LoadConfig(fs, os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := common.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := repo.Open(ctx, repo.Config{DSN: cfg.Store.DSN, DialTimeout: 3 * time.Second}, logger)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer db.Close()

	if err := repo.HealthCheck(ctx, db, time.Second, logger); err != nil {
		log.Fatalf("store health: FAIL (%v)", err)
	}
	log.Printf("store health: OK (%s)", db.Dialect)

	sessions, err := repo.NewSessionRepository(db, logger).List(ctx)
	if err != nil {
		log.Fatalf("listing sessions: %v", err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tCURSOR\tRESULTS\tUPDATED")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", s.Name, s.Cursor, len(s.Results), s.UpdatedAt.Format(time.RFC3339))
	}
	_ = tw.Flush()
}
