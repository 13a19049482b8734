package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/amolnak/GuidanceMind/constants"
	"github.com/amolnak/GuidanceMind/internal/app"
	"github.com/amolnak/GuidanceMind/internal/common"
	"github.com/amolnak/GuidanceMind/internal/export"
	"github.com/amolnak/GuidanceMind/internal/rfq"
)

func main() {
	fs := pflag.NewFlagSet("rfq2xlsx", pflag.ContinueOnError)
	common.RegisterFlags(fs)
	nearest := fs.Bool("nearest", false, "bind descriptions to the label occurrence after each code line")
	cfg, err := common.LoadConfig(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logger := common.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	if fs.NArg() < 1 || fs.NArg() > 2 {
		logger.Error("usage", "cmd", "rfq2xlsx [--nearest] <rfq.pdf> [out.xlsx]")
		os.Exit(2)
	}
	in := fs.Arg(0)
	if !constants.IsPDF(in) {
		logger.Error("input must be a .pdf file", "path", in)
		os.Exit(2)
	}
	out := strings.TrimSuffix(in, filepath.Ext(in)) + "_rfq.xlsx"
	if fs.NArg() == 2 {
		out = fs.Arg(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	text := app.NewTextExtractor(cfg, "\n", logger)
	conv := rfq.NewConverter(text, export.NewService(logger), rfq.Options{Nearest: *nearest}, logger)

	start := time.Now()
	b, items, err := conv.Convert(ctx, in)
	if err != nil {
		logger.Error("rfq conversion failed", "path", in, "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		logger.Error("failed to write output file", "path", out, "error", err)
		os.Exit(1)
	}
	logger.Info("rfq conversion OK",
		"in", in,
		"out", out,
		"items", len(items),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
