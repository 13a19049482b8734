package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/amolnak/GuidanceMind/internal/app"
	"github.com/amolnak/GuidanceMind/internal/common"
	"github.com/amolnak/GuidanceMind/internal/pipeline"
)

const usage = `usage: guidancemind <command> [flags]

commands:
  run     process the input workbook, resuming at the stored cursor
  export  write the accumulated results to --out
  reset   clear cursor, results, cache and the stored session
  status  print session progress
  show    list the rows of the last export at --out
  config  print the resolved configuration as YAML
`

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" {
		printError(usage)
		os.Exit(2)
	}
	cmd := os.Args[1]

	fs := pflag.NewFlagSet("guidancemind "+cmd, pflag.ContinueOnError)
	common.RegisterFlags(fs)
	input := fs.String("input", "", "input XLSX with 'Sr. No.' and 'Source Link' columns (run)")
	cfg, err := common.LoadConfig(fs, os.Args[2:])
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(2)
	}
	logger := common.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	if cmd == "config" {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(string(out))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd == "run" {
		if *input == "" {
			printError("Error: --input is required\n")
			os.Exit(2)
		}
		if err := cfg.RequireAPIKey(); err != nil {
			printError("Error: %v\n", err)
			os.Exit(2)
		}
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close", "error", err)
		}
	}()

	session, err := a.Processor.Open(ctx, cfg.Store.Session)
	if err != nil {
		logger.Error("failed to open session", "session", cfg.Store.Session, "error", err)
		os.Exit(1)
	}

	switch cmd {
	case "run":
		err = run(ctx, a, session, *input)
	case "export":
		err = export(a, session)
	case "reset":
		err = a.Processor.Reset(ctx, session)
		if err == nil {
			fmt.Printf("session %q reset\n", session.Name)
		}
	case "show":
		err = show(a)
	case "status":
		fmt.Printf("session=%s cursor=%d results=%d\n", session.Name, session.Cursor, len(session.Results))
	default:
		printError("unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error(cmd+" failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, session *pipeline.Session, input string) error {
	rows, err := a.Reader.ReadFile(input)
	if err != nil {
		return err
	}
	if session.Cursor > len(rows) {
		return common.NewAppError(common.ErrInvalidInput,
			fmt.Sprintf("stored cursor %d is past the %d input rows; run reset first", session.Cursor, len(rows)), nil)
	}

	a.Processor.WithObserver(pipeline.ObserverFunc(func(e pipeline.Event) {
		switch {
		case e.Raw != "":
			fmt.Printf("[%d/%d] %s %s: %v\n--- raw response ---\n%s\n---\n", e.Index+1, len(rows), e.Serial, e.Stage, e.Err, e.Raw)
		case e.Err != nil:
			fmt.Printf("[%d/%d] %s %s: %v\n", e.Index+1, len(rows), e.Serial, e.Stage, e.Err)
		default:
			fmt.Printf("[%d/%d] %s %s\n", e.Index+1, len(rows), e.Serial, e.Stage)
		}
	}))

	runErr := a.Processor.Run(ctx, session, rows)
	// Partial results are still written.
	if err := export(a, session); err != nil {
		return err
	}
	if runErr != nil && ctx.Err() != nil {
		fmt.Printf("stopped at row %d of %d; run again to resume\n", session.Cursor, len(rows))
		return nil
	}
	return runErr
}

func export(a *app.App, session *pipeline.Session) error {
	out := a.Config.Data.Output
	if err := a.Exporter.WriteResults(out, session.Results); err != nil {
		return err
	}
	fmt.Printf("wrote %d results to %s\n", len(session.Results), out)
	return nil
}

func show(a *app.App) error {
	results, err := a.Exporter.ReadResults(a.Config.Data.Output)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%s\t%s\t%s\n", r.SerialNumber, r.DateOfIssuance, r.Title)
	}
	fmt.Printf("%d rows in %s\n", len(results), a.Config.Data.Output)
	return nil
}
