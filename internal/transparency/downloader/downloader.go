package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/farxc/despesas-dw/internal/logger"
	"github.com/farxc/despesas-dw/internal/transparency/files"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

const chunkSize = 8192

type Status string

const (
	StatusDownloaded       Status = "downloaded"
	StatusSkippedExtracted Status = "skipped_extracted"
	StatusSkippedArchive   Status = "skipped_archive"
	StatusFailed           Status = "failed"
)

type FetchResult struct {
	PeriodURL
	Status      Status
	ArchivePath string
	Err         error
}

// Success reports whether the period's table is (or already was) on disk.
func (r FetchResult) Success() bool {
	return r.Status != StatusFailed
}

// Fetcher downloads and unpacks monthly archives into one working directory,
// one period at a time.
type Fetcher struct {
	client    *http.Client
	dir       string
	appLogger *logger.Logger
}

func NewFetcher(dir string, timeout time.Duration, appLogger *logger.Logger) *Fetcher {
	client := &http.Client{Timeout: timeout}
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 10 {
			return fmt.Errorf("stopped after %d redirects", len(via))
		}
		req.Header.Set("User-Agent", userAgent)
		return nil
	}
	return &Fetcher{client: client, dir: dir, appLogger: appLogger}
}

// ArchiveName is the local file name of the archive behind rawURL: its last
// path segment, with .zip added when it has no extension.
func ArchiveName(rawURL string) string {
	name := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		name = u.Path
	}
	name = path.Base(name)
	if path.Ext(name) == "" {
		name += ".zip"
	}
	return name
}

func (f *Fetcher) FetchAll(ctx context.Context, urls []PeriodURL) []FetchResult {
	const component = "Downloader"

	results := make([]FetchResult, 0, len(urls))
	failed := 0
	for _, u := range urls {
		r := f.Fetch(ctx, u)
		if !r.Success() {
			failed++
		}
		results = append(results, r)
	}

	f.appLogger.Info(component, "Fetch phase completed: periods=%d failed=%d", len(urls), failed)
	return results
}

// Fetch materializes one period. Failures are returned in the result, never
// as a panic or an abort of the caller's loop.
func (f *Fetcher) Fetch(ctx context.Context, u PeriodURL) FetchResult {
	const component = "Downloader"

	archivePath := filepath.Join(f.dir, ArchiveName(u.URL))
	result := FetchResult{PeriodURL: u, ArchivePath: archivePath}

	canonical := filepath.Join(f.dir, files.CanonicalFileName(archivePath))
	if files.Exists(canonical) {
		f.appLogger.Info(component, "Extracted file already exists, skipping download: period=%s file=%s", u.Period, canonical)
		result.Status = StatusSkippedExtracted
		return result
	}

	if files.Exists(archivePath) {
		f.appLogger.Info(component, "Archive already exists, skipping download: period=%s file=%s", u.Period, archivePath)
		result.Status = StatusSkippedArchive
		return result
	}

	if err := FetchData(ctx, f.client, u.URL, archivePath, f.appLogger); err != nil {
		f.appLogger.Error(component, "Failed to download: period=%s url=%s error=%v", u.Period, u.URL, err)
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	extraction := files.UnzipFile(archivePath, f.dir, f.appLogger)
	if !extraction.Success {
		result.Status = StatusFailed
		result.Err = fmt.Errorf("extraction of %s failed", archivePath)
		return result
	}

	if err := os.Remove(archivePath); err != nil {
		f.appLogger.Warn(component, "Failed to remove archive: path=%s error=%v", archivePath, err)
	} else {
		f.appLogger.Info(component, "Archive removed: path=%s", archivePath)
	}

	result.Status = StatusDownloaded
	return result
}

// FetchData streams downloadUrl into outputPath. The body is written to a
// .part file first so an interrupted transfer never looks like a fetched
// archive.
func FetchData(ctx context.Context, client *http.Client, downloadUrl string, outputPath string, appLogger *logger.Logger) error {
	const component = "Downloader"

	appLogger.Debug(component, "Starting download: url=%s", downloadUrl)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadUrl, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	partPath := outputPath + ".part"
	out, err := os.Create(partPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", partPath, err)
	}

	bytesWritten, err := io.CopyBuffer(out, resp.Body, make([]byte, chunkSize))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(partPath)
		return fmt.Errorf("write %s: %w", partPath, err)
	}

	if err := os.Rename(partPath, outputPath); err != nil {
		os.Remove(partPath)
		return fmt.Errorf("rename %s: %w", partPath, err)
	}

	appLogger.Info(component, "Download completed: path=%s size=%d bytes", outputPath, bytesWritten)
	return nil
}
