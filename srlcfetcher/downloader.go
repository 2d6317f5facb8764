package srlcfetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/juju/ratelimit"

	"github.com/labelwatch/srlc-downloader/logging"
)

// downloadChunkSize matches the 1024-byte streamed reads of the acquisition
// script this tool replaces.
const downloadChunkSize = 1024

// Downloader fetches every catalog entry into an output directory, paced by a
// token bucket so the FDA site sees at most one request per waitTime.
type Downloader struct {
	client    *http.Client
	bucket    *ratelimit.Bucket
	userAgent string
	outDir    string
}

// NewDownloader creates a downloader writing artifacts under outDir.
func NewDownloader(outDir, userAgent string, waitTime, timeout time.Duration) *Downloader {
	// The bucket requires a positive fill interval; a zero wait means
	// effectively unthrottled.
	if waitTime <= 0 {
		waitTime = time.Nanosecond
	}
	return &Downloader{
		client:    &http.Client{Timeout: timeout},
		bucket:    ratelimit.NewBucket(waitTime, 1),
		userAgent: userAgent,
		outDir:    outDir,
	}
}

// DownloadAll fetches one page per catalog entry in ascending drug id order.
// The first transport or filesystem error aborts the run; artifacts already
// written stay on disk, and a re-run overwrites them in full.
func (d *Downloader) DownloadAll(ctx context.Context, catalog Catalog) error {
	if err := os.MkdirAll(d.outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", d.outDir, err)
	}

	counter := 0
	for _, drugID := range catalog.SortedIDs() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("download interrupted after %d pages: %w", counter, err)
		}

		// Throttle calls to the website
		d.bucket.Wait(1)

		entry := catalog[drugID]
		outFile := filepath.Join(d.outDir, strconv.Itoa(drugID)+".html")
		if err := d.downloadFile(ctx, entry.URL, outFile); err != nil {
			return err
		}

		fmt.Println("Saving Product Label Change: " + strconv.Itoa(drugID) + " URL: " + entry.URL)

		counter++
		if counter%100 == 0 {
			fmt.Println(">> " + strconv.Itoa(counter))
		}
	}

	logging.Info("Download completed", "pages", counter, "output_dir", d.outDir)
	return nil
}

// downloadFile streams one response body to disk in fixed-size chunks,
// skipping zero-length reads so keep-alive artifacts never corrupt the file.
// The response status is deliberately not checked: error pages are saved
// verbatim, matching the behavior the downstream pipeline was built against.
func (d *Downloader) downloadFile(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	response, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	outFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer func() {
		if err := outFile.Close(); err != nil {
			logging.Warn("Failed to close output file", "error", err)
		}
	}()

	buf := make([]byte, downloadChunkSize)
	for {
		n, readErr := response.Body.Read(buf)
		if n > 0 {
			if _, err := outFile.Write(buf[:n]); err != nil {
				return fmt.Errorf("failed to write to file %s: %w", path, err)
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("failed to read response from %s: %w", url, readErr)
		}
	}
}
