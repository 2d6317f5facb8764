package srlcfetcher

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/labelwatch/srlc-downloader/srlcfetcher/entities"
)

func testServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// labelServer answers with "BODY<id>" for the id query parameter.
func labelServer(t *testing.T) *httptest.Server {
	return testServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("BODY" + r.URL.Query().Get("id")))
	})
}

func testCatalog(server *httptest.Server, ids ...int) Catalog {
	catalog := make(Catalog)
	for _, id := range ids {
		s := strconv.Itoa(id)
		catalog[id] = entities.LabelChange{
			DrugID:        id,
			ApplicationID: "A" + s,
			URL:           server.URL + "/labels?type=srlc&id=" + s + "&page=" + s,
		}
	}
	return catalog
}

func TestDownloadAllWritesOneArtifactPerID(t *testing.T) {
	server := labelServer(t)
	outDir := t.TempDir()

	catalog := testCatalog(server, 7, 42)
	downloader := NewDownloader(outDir, "test-agent", time.Millisecond, 5*time.Second)

	if err := downloader.DownloadAll(context.Background(), catalog); err != nil {
		t.Fatalf("DownloadAll failed: %v", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("Failed to read output dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 artifacts, got %d", len(entries))
	}

	for id, want := range map[string]string{"7": "BODY7", "42": "BODY42"} {
		data, err := os.ReadFile(filepath.Join(outDir, id+".html"))
		if err != nil {
			t.Fatalf("Failed to read artifact %s.html: %v", id, err)
		}
		if string(data) != want {
			t.Errorf("Artifact %s.html = %q, want %q", id, data, want)
		}
	}
}

func TestDownloadAllSendsUserAgent(t *testing.T) {
	var gotAgent string
	server := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("ok"))
	})

	catalog := testCatalog(server, 7)
	downloader := NewDownloader(t.TempDir(), "srlc-test-agent", time.Millisecond, 5*time.Second)

	if err := downloader.DownloadAll(context.Background(), catalog); err != nil {
		t.Fatalf("DownloadAll failed: %v", err)
	}
	if gotAgent != "srlc-test-agent" {
		t.Errorf("Expected custom User-Agent, got %q", gotAgent)
	}
}

func TestDownloadAllStreamsLargeBodies(t *testing.T) {
	// Body larger than one 1024-byte chunk.
	body := bytes.Repeat([]byte("x"), 3000)
	server := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	})
	outDir := t.TempDir()

	catalog := testCatalog(server, 9)
	downloader := NewDownloader(outDir, "test-agent", time.Millisecond, 5*time.Second)

	if err := downloader.DownloadAll(context.Background(), catalog); err != nil {
		t.Fatalf("DownloadAll failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "9.html"))
	if err != nil {
		t.Fatalf("Failed to read artifact: %v", err)
	}
	if !bytes.Equal(data, body) {
		t.Errorf("Artifact length %d, want %d", len(data), len(body))
	}
}

func TestDownloadAllOverwritesExistingArtifact(t *testing.T) {
	server := labelServer(t)
	outDir := t.TempDir()

	// A stale partial artifact from an interrupted run.
	stale := filepath.Join(outDir, "7.html")
	if err := os.WriteFile(stale, bytes.Repeat([]byte("stale"), 100), 0644); err != nil {
		t.Fatalf("Failed to write stale artifact: %v", err)
	}

	catalog := testCatalog(server, 7)
	downloader := NewDownloader(outDir, "test-agent", time.Millisecond, 5*time.Second)

	if err := downloader.DownloadAll(context.Background(), catalog); err != nil {
		t.Fatalf("DownloadAll failed: %v", err)
	}

	data, err := os.ReadFile(stale)
	if err != nil {
		t.Fatalf("Failed to read artifact: %v", err)
	}
	if string(data) != "BODY7" {
		t.Errorf("Expected full overwrite, got %q", data)
	}
}

func TestDownloadAllSavesErrorResponses(t *testing.T) {
	// No status check: a 404 body is saved verbatim, matching the behavior
	// the downstream pipeline was built against.
	server := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("label not found"))
	})
	outDir := t.TempDir()

	catalog := testCatalog(server, 7)
	downloader := NewDownloader(outDir, "test-agent", time.Millisecond, 5*time.Second)

	if err := downloader.DownloadAll(context.Background(), catalog); err != nil {
		t.Fatalf("DownloadAll failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "7.html"))
	if err != nil {
		t.Fatalf("Failed to read artifact: %v", err)
	}
	if string(data) != "label not found" {
		t.Errorf("Expected error body saved verbatim, got %q", data)
	}
}

func TestDownloadAllAbortsOnTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	catalog := testCatalog(server, 7)
	server.Close()

	downloader := NewDownloader(t.TempDir(), "test-agent", time.Millisecond, time.Second)

	if err := downloader.DownloadAll(context.Background(), catalog); err == nil {
		t.Fatal("Expected transport error to abort the run")
	}
}

func TestDownloadAllStopsOnCancelledContext(t *testing.T) {
	server := labelServer(t)
	outDir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	catalog := testCatalog(server, 7, 42)
	downloader := NewDownloader(outDir, "test-agent", time.Millisecond, time.Second)

	if err := downloader.DownloadAll(ctx, catalog); err == nil {
		t.Fatal("Expected cancelled context to stop the run")
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("Failed to read output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no artifacts after immediate cancellation, got %d", len(entries))
	}
}
