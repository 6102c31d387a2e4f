// Package dataset downloads and parses the CSV files shown on the board.
package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/morikuni/failure/v2"
)

// ErrorCode defines error types for dataset loading
type ErrorCode string

const (
	ErrDatasetFetchFailed ErrorCode = "DatasetFetchFailed"
	ErrDatasetParseFailed ErrorCode = "DatasetParseFailed"
	ErrDatasetEmpty       ErrorCode = "DatasetEmpty"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// MaxBytes caps how much of a remote CSV file is read.
var MaxBytes int64 = 32 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a parsed CSV file: one header row followed by records.
type Table struct {
	Header []string
	Rows   [][]string
}

// Fetch downloads rawURL and parses it as CSV.
func Fetch(ctx context.Context, client *http.Client, rawURL string) (*Table, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, failure.New(ErrDatasetFetchFailed,
			failure.Message("Invalid dataset URL"),
			failure.Context{"url": rawURL, "error": err.Error()},
		)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	resp, err := client.Do(req)
	if err != nil {
		return nil, failure.New(ErrDatasetFetchFailed,
			failure.Message("Failed to download dataset"),
			failure.Context{"url": rawURL, "error": err.Error()},
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, failure.New(ErrDatasetFetchFailed,
			failure.Message("Dataset download failed: "+resp.Status),
			failure.Context{"url": rawURL, "status": resp.Status},
		)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBytes+1))
	if err != nil {
		return nil, failure.New(ErrDatasetFetchFailed,
			failure.Message("Failed to read dataset"),
			failure.Context{"url": rawURL, "error": err.Error()},
		)
	}
	if int64(len(data)) > MaxBytes {
		return nil, failure.New(ErrDatasetFetchFailed,
			failure.Message("Dataset too large"),
			failure.Context{"url": rawURL, "limit": strconv.FormatInt(MaxBytes, 10)},
		)
	}

	t, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, failure.Wrap(err, failure.Context{"url": rawURL})
	}
	return t, nil
}

// Parse reads CSV from r. Rows may have a different number of fields than the header.
func Parse(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, failure.New(ErrDatasetFetchFailed,
			failure.Message("Failed to read dataset"),
			failure.Context{"error": err.Error()},
		)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, failure.New(ErrDatasetEmpty,
			failure.Message("Dataset is empty"),
		)
	}
	if err != nil {
		return nil, parseError(err)
	}

	t := &Table{Header: trimAll(header)}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseError(err)
		}
		t.Rows = append(t.Rows, record)
	}
	return t, nil
}

func parseError(err error) error {
	return failure.New(ErrDatasetParseFailed,
		failure.Message("Dataset is not valid CSV"),
		failure.Context{"error": err.Error()},
	)
}

func trimAll(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}

// Width is the number of columns, counting the widest row.
func (t *Table) Width() int {
	w := len(t.Header)
	for _, row := range t.Rows {
		w = max(w, len(row))
	}
	return w
}

// Cell returns the value at row i, column j, or "" for a short row.
func (t *Table) Cell(i, j int) string {
	if i < 0 || i >= len(t.Rows) || j < 0 || j >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][j]
}
