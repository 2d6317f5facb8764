// Package srlcfetcher downloads and verifies the FDA safety-related labeling
// change pages referenced by a locally supplied CSV export.
package srlcfetcher

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/labelwatch/srlc-downloader/logging"
	"github.com/labelwatch/srlc-downloader/srlcfetcher/entities"
)

// Column names of the FDA export. Application Number and Link are required;
// the rest are carried along for the downstream extraction pipeline when the
// export includes them.
const (
	colDrugName         = "Drug Name"
	colActiveIngredient = "Active Ingredient"
	colAppNumber        = "Application Number"
	colAppType          = "Application Type"
	colSupplementDate   = "Supplement Date"
	colDBUpdated        = "Database Updated"
	colLink             = "Link"
)

// Catalog maps every extracted drug id to its label change record. Duplicate
// ids collapse to the last row read, without error.
type Catalog map[int]entities.LabelChange

// SortedIDs returns the drug ids in ascending order. Download order is
// otherwise unspecified, so sorting keeps runs reproducible.
func (c Catalog) SortedIDs() []int {
	ids := make([]int, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// LoadCatalog reads the label changes CSV export and builds the catalog. Any
// malformed row is fatal: a partial catalog would silently shrink the
// download set, so the whole load aborts before any network activity.
func LoadCatalog(path string) (Catalog, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	// The FDA export is not always UTF-8. When it isn't, decode it as
	// Windows-1252 before parsing.
	var reader io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		reader = charmap.Windows1252.NewDecoder().Reader(bytes.NewReader(raw))
	}

	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colAppNumber, colLink} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("catalog %s is missing required column %q", path, required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	catalog := make(Catalog)
	total := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog row %d: %w", total+2, err)
		}

		link := field(record, colLink)
		drugID, err := ExtractDrugID(link)
		if err != nil {
			return nil, fmt.Errorf("catalog row %d: %w", total+2, err)
		}

		catalog[drugID] = entities.LabelChange{
			DrugID:           drugID,
			DrugName:         field(record, colDrugName),
			ActiveIngredient: field(record, colActiveIngredient),
			ApplicationID:    field(record, colAppNumber),
			ApplicationType:  field(record, colAppType),
			SupplementDate:   field(record, colSupplementDate),
			DatabaseUpdated:  field(record, colDBUpdated),
			URL:              link,
		}
		total++
	}

	fmt.Println("Total links: " + strconv.Itoa(total))
	fmt.Println("Unique entries: " + strconv.Itoa(len(catalog)))
	logging.Info("Catalog loaded", "rows", total, "unique_ids", len(catalog))

	return catalog, nil
}

// ExtractDrugID pulls the drug id out of a label change URL: the value of the
// second &-delimited segment. The positional parse is deliberate and must not
// be generalized, since artifact filenames depend on this exact value.
func ExtractDrugID(link string) (int, error) {
	segments := strings.Split(link, "&")
	if len(segments) < 2 {
		return 0, fmt.Errorf("link %q: expected at least two &-delimited segments", link)
	}

	parts := strings.Split(segments[1], "=")
	if len(parts) < 2 {
		return 0, fmt.Errorf("link %q: segment %q has no value", link, segments[1])
	}

	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("link %q: drug id %q is not an integer: %w", link, parts[1], err)
	}

	return id, nil
}
