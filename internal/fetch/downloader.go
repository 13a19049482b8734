package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/amolnak/GuidanceMind/constants"
	"github.com/amolnak/GuidanceMind/internal/common"
)

// Downloader fetches one document into a local path.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// Config for the HTTP fetcher.
type Config struct {
	Timeout   time.Duration // whole request, including body; default 120s
	UserAgent string        // browser-like UA; some hosts reject Go's default
}

// HTTPDownloader implements Downloader over net/http.
type HTTPDownloader struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

var _ Downloader = (*HTTPDownloader)(nil)

func NewHTTPDownloader(cfg Config, logger *slog.Logger) *HTTPDownloader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = common.DefaultDownloadTime
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = common.DefaultUserAgent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPDownloader{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Download writes the body of url to dest when the server answers 200 with a
// PDF content type. dest is written through a temp file so an interrupted
// transfer never leaves a partial document behind.
func (d *HTTPDownloader) Download(ctx context.Context, url, dest string) error {
	if strings.TrimSpace(url) == "" {
		d.logger.Error("fetch.download.no_link", "dest", dest)
		return common.NewAppError(common.ErrDownload, "row has no source link", nil)
	}
	start := time.Now()
	d.logger.Info("fetch.download.start", "url", url, "dest", dest)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return common.NewAppError(common.ErrDownload, "build request for "+url, err)
	}
	req.Header.Set("User-Agent", d.cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf,*/*;q=0.8")

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Error("fetch.download.http_error", "url", url, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		if isTimeout(err) {
			return common.NewAppError(common.ErrDownloadTimeout,
				fmt.Sprintf("no response from %s within %s", url, d.cfg.Timeout), err)
		}
		return common.NewAppError(common.ErrDownload, "request "+url, err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			d.logger.Warn("fetch.download.body_close_error", "url", url, "error", err)
		}
	}(resp.Body)

	ct := resp.Header.Get("Content-Type")
	if resp.StatusCode != http.StatusOK || !strings.Contains(strings.ToLower(ct), constants.ContentTypePDF) {
		d.logger.Error("fetch.download.rejected", "url", url, "status", resp.StatusCode, "content_type", ct)
		return common.NewAppError(common.ErrDownload,
			fmt.Sprintf("failed to download PDF from %s: status %d, content type %q", url, resp.StatusCode, ct), nil)
	}

	n, err := writeAtomically(dest, resp.Body)
	if err != nil {
		if isTimeout(err) {
			return common.NewAppError(common.ErrDownloadTimeout, "reading body of "+url, err)
		}
		return common.NewAppError(common.ErrDownload, "write "+dest, err)
	}

	d.logger.Info("fetch.download.ok", "url", url, "dest", dest, "bytes", n,
		"elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

func writeAtomically(dest string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".part-*")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return n, err
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return n, err
	}
	return n, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Exists reports whether a previous run already left a document at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}
