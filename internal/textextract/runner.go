package textextract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// stderr kept in logs and errors
const maxStderr = 4 << 10

// Runner executes an external extraction tool. Tests substitute a stub.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger *slog.Logger
}

// Run returns the tool's output. A non-zero exit is returned as an error
// that includes the head of stderr.
func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	start := time.Now()
	err := cmd.Run()
	attrs := []any{
		"tool", name,
		"argv", strings.Join(args, " "),
		"elapsed_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		msg := clip(strings.TrimSpace(stderr.String()), maxStderr)
		r.logger.Warn("textextract.exec.failed", append(attrs, "error", err, "stderr", msg)...)
		if msg != "" {
			err = fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return stdout.Bytes(), stderr.Bytes(), err
	}
	r.logger.Debug("textextract.exec.ok", append(attrs, "stdout_bytes", stdout.Len())...)
	return stdout.Bytes(), stderr.Bytes(), nil
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
