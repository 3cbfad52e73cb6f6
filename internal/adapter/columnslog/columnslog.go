// Package columnslog writes the schema alignment report to a plain-text
// debug log.
package columnslog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/couchcryptid/raincast/internal/domain"
	"github.com/couchcryptid/raincast/internal/pipeline"
)

// Write renders report to w.
func Write(w io.Writer, report pipeline.AlignmentReport) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Generated at: %s\n\n", report.GeneratedAt.Format(time.RFC3339))
	section(bw, "Columns in the encoded table before alignment:", report.Present)
	section(bw, "Columns missing from the model schema (zero-filled):", report.Missing)
	section(bw, "Unexpected columns (dropped):", report.Unexpected)
	return bw.Flush()
}

func section(w io.Writer, title string, names []string) {
	fmt.Fprintln(w, title)
	if len(names) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, name := range names {
		fmt.Fprintf(w, "  - %s\n", name)
	}
	fmt.Fprintln(w)
}

// WriteFile overwrites path with the rendered report.
func WriteFile(path string, report pipeline.AlignmentReport) error {
	op := "write columns log " + path
	f, err := os.Create(path)
	if err != nil {
		return domain.Fail(domain.FailureInternal, op, err)
	}
	if err := Write(f, report); err != nil {
		f.Close()
		return domain.Fail(domain.FailureInternal, op, err)
	}
	return domain.Fail(domain.FailureInternal, op, f.Close())
}
