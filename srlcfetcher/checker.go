package srlcfetcher

import (
	"fmt"
	"os"
	"strconv"

	"github.com/labelwatch/srlc-downloader/logging"
)

// VerifyResult is the outcome of a completeness check.
type VerifyResult struct {
	Expected int
	Found    int
}

// Match reports whether the artifact count equals the catalog size.
func (r VerifyResult) Match() bool {
	return r.Expected == r.Found
}

// VerifyDownloads compares the number of entries in dir against the expected
// catalog size. This is a count-only check: it does not confirm that any
// particular drug id is present, only that the totals line up. A mismatch is
// a reported condition, not an error.
func VerifyDownloads(dir string, expected int) (VerifyResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("failed to read output directory %s: %w", dir, err)
	}

	result := VerifyResult{Expected: expected, Found: len(entries)}
	if result.Match() {
		fmt.Println("Total files: " + strconv.Itoa(result.Found))
		fmt.Println("Skipping, data already downloaded!")
	} else {
		fmt.Println("There are some files missing, expected: " + strconv.Itoa(result.Expected) +
			" Found: " + strconv.Itoa(result.Found))
	}
	logging.Info("Verify completed", "expected", result.Expected, "found", result.Found, "match", result.Match())

	return result, nil
}
