// Package report fetches the remote compatibility report.
package report

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnema/compatctl/internal/compat"
)

// DefaultURL is where the report is published.
const DefaultURL = "https://thunderbird.github.io/webext-reports/all.json"

// ErrFetch wraps every failure to obtain a usable report.
var ErrFetch = errors.New("report fetch failed")

// Result is a fetched report with its raw document, cached verbatim.
type Result struct {
	Report *compat.Report
	Raw    []byte
}

func parse(source string, body []byte) (*Result, error) {
	var r compat.Report
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("%w: %s returned malformed report: %v", ErrFetch, source, err)
	}
	if r.Addons == nil {
		return nil, fmt.Errorf("%w: %s returned a report without add-ons", ErrFetch, source)
	}
	return &Result{Report: &r, Raw: body}, nil
}
