package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/core/state"
)

func newTable(w io.Writer, header ...any) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	row(tw, header...)
	return tw
}

func row(tw *tabwriter.Writer, cols ...any) {
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c)
	}
	fmt.Fprintln(tw)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// failed prefers the message the store recorded for the failed
// operation, which already carries the operation's generic fallback.
func failed(f *state.Failure, err error) error {
	if f != nil && f.Message != "" {
		return errors.New(f.Message)
	}
	return err
}

// denied renders a refused page as an empty state rather than an error.
func denied(w io.Writer, err error) bool {
	if !internal.IsAccessDenied(err) {
		return false
	}
	fmt.Fprintln(w, internal.Describe(err, "Access denied"))
	return true
}

func describe(err error) string {
	return internal.Describe(err, err.Error())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
