package srlcfetcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/labelwatch/srlc-downloader/logging"
)

// InspectReport summarizes a scan of downloaded label change pages.
type InspectReport struct {
	Scanned   int
	WithTable int
	Suspect   []string // artifacts with no labeling change content
}

// InspectArtifacts parses every .html artifact in dir and checks that it
// carries content the extraction pipeline can work with: at least one data
// table. Pages failing the check are listed so the operator can spot-check
// them before running extraction. Diagnostics only, nothing is deleted or
// refetched.
func InspectArtifacts(dir string) (InspectReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return InspectReport{}, fmt.Errorf("failed to read output directory %s: %w", dir, err)
	}

	var report InspectReport
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		f, err := os.Open(path)
		if err != nil {
			return report, fmt.Errorf("failed to open artifact %s: %w", path, err)
		}

		doc, err := goquery.NewDocumentFromReader(f)
		closeErr := f.Close()
		if err != nil {
			return report, fmt.Errorf("failed to parse artifact %s: %w", path, err)
		}
		if closeErr != nil {
			logging.Warn("Failed to close artifact", "path", path, "error", closeErr)
		}

		report.Scanned++
		if doc.Find("table").Length() > 0 {
			report.WithTable++
		} else {
			title := strings.TrimSpace(doc.Find("title").First().Text())
			report.Suspect = append(report.Suspect, entry.Name())
			logging.Warn("Artifact has no labeling change table", "artifact", entry.Name(), "title", title)
		}
	}

	sort.Strings(report.Suspect)
	fmt.Printf("Inspected %d artifacts, %d with content, %d suspect\n",
		report.Scanned, report.WithTable, len(report.Suspect))

	return report, nil
}
