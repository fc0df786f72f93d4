// Package sink persists resolved rows to tabular outputs. Sinks are
// append-only: a written row is never updated.
package sink

import (
	"fmt"
	"path/filepath"
)

// Columns is the fixed output schema, in order.
var Columns = []string{"company_name", "company_website", "career_page", "job_url"}

// Row is one resolved posting. CareerPage is always non-empty by the time a
// row reaches a sink; the other fields may be empty.
type Row struct {
	CompanyName    string
	CompanyWebsite string
	CareerPage     string
	JobURL         string
}

func (r Row) values() []string {
	return []string{r.CompanyName, r.CompanyWebsite, r.CareerPage, r.JobURL}
}

// Sink appends rows keyed by the posting URL they were resolved from.
// Implementations must be safe for concurrent Append calls.
type Sink interface {
	// Append writes one row. The postingURL key is informational for plain
	// sinks and the dedup key for deduplicating ones.
	Append(postingURL string, row Row) error
	// Close flushes and releases the sink.
	Close() error
}

// Open creates a sink for path, selecting the format by file extension
// (.csv or .xlsx). Existing files are appended to, and a header is written
// only when the file is new.
func Open(path string) (Sink, error) {
	switch filepath.Ext(path) {
	case ".csv":
		return OpenCSV(path)
	case ".xlsx":
		return OpenXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported output format %q (want .csv or .xlsx)", path)
	}
}
