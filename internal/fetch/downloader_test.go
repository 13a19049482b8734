package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amolnak/GuidanceMind/internal/common"
)

func TestHTTPDownloader_Download(t *testing.T) {
	body := []byte("%PDF-1.4 fake body")

	tests := []struct {
		name        string
		status      int
		contentType string
		wantErr     error
	}{
		{name: "pdf", status: http.StatusOK, contentType: "application/pdf"},
		{name: "pdf with charset", status: http.StatusOK, contentType: "application/pdf; charset=binary"},
		{name: "html landing page", status: http.StatusOK, contentType: "text/html", wantErr: common.ErrDownload},
		{name: "not found", status: http.StatusNotFound, contentType: "application/pdf", wantErr: common.ErrDownload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUA string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUA = r.Header.Get("User-Agent")
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = w.Write(body)
			}))
			defer srv.Close()

			dest := filepath.Join(t.TempDir(), "pdfs", "doc_1.pdf")
			d := NewHTTPDownloader(Config{}, nil)
			err := d.Download(context.Background(), srv.URL, dest)

			assert.Equal(t, common.DefaultUserAgent, gotUA)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.False(t, Exists(dest))
				return
			}
			require.NoError(t, err)
			got, err := os.ReadFile(dest)
			require.NoError(t, err)
			assert.Equal(t, body, got)
		})
	}
}

func TestHTTPDownloader_BlankLink(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "doc_2.pdf")
	err := NewHTTPDownloader(Config{}, nil).Download(context.Background(), "  ", dest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDownload), "got %v", err)
	assert.False(t, Exists(dest))
}

func TestHTTPDownloader_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	d := NewHTTPDownloader(Config{Timeout: 50 * time.Millisecond}, nil)
	err := d.Download(context.Background(), srv.URL, filepath.Join(t.TempDir(), "doc.pdf"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDownloadTimeout))
	assert.True(t, errors.Is(err, common.ErrDownload))
}

func TestHTTPDownloader_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/doc", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/real.pdf", http.StatusFound)
	})
	mux.HandleFunc("/real.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, NewHTTPDownloader(Config{}, nil).Download(context.Background(), srv.URL+"/doc", dest))
	assert.True(t, Exists(dest))
}
