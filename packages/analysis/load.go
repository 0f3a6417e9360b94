// Package analysis reads finished benchmark runs back from disk and
// summarizes them.
package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/mcbench/packages/bench"
)

// ErrBadHeader is returned when a CSV does not start with the benchmark header.
var ErrBadHeader = errors.New("unexpected CSV header")

// LoadCSV reads the records of a results file.
func LoadCSV(path string) ([]bench.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadRecords(file)
}

// ReadRecords parses results CSV content. Sequence numbers follow row order.
func ReadRecords(r io.Reader) ([]bench.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(bench.Columns)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrBadHeader)
	}
	if err != nil {
		return nil, err
	}
	if strings.Join(header, ",") != strings.Join(bench.Columns, ",") {
		return nil, fmt.Errorf("%w: %s", ErrBadHeader, strings.Join(header, ","))
	}

	var records []bench.Record
	for seq := 1; ; seq++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", seq, err)
		}

		values := make([]float64, len(row))
		for i, field := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", seq, bench.Columns[i], err)
			}
			values[i] = v
		}
		records = append(records, bench.RecordFromValues(seq, values))
	}

	return records, nil
}

// LatestRunDir returns the newest run_* directory under root. Run
// directory names sort chronologically. When root has no run directories,
// root itself is returned.
func LatestRunDir(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("reading results directory: %w", err)
	}

	var runs []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "run_") {
			runs = append(runs, e.Name())
		}
	}
	if len(runs) == 0 {
		return root, nil
	}

	sort.Strings(runs)
	return filepath.Join(root, runs[len(runs)-1]), nil
}

// ResolveCSV turns a user-supplied path into a results file: a CSV is used
// as is, a run directory yields its get_modelcard.csv, and any other
// directory yields the CSV of its latest run.
func ResolveCSV(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return path, nil
	}

	direct := filepath.Join(path, bench.ResultsFileName)
	if _, err := os.Stat(direct); err == nil {
		return direct, nil
	}

	root := path
	if _, err := os.Stat(filepath.Join(path, bench.ResultsDirName)); err == nil {
		root = filepath.Join(path, bench.ResultsDirName)
	}

	latest, err := LatestRunDir(root)
	if err != nil {
		return "", err
	}
	csvPath := filepath.Join(latest, bench.ResultsFileName)
	if _, err := os.Stat(csvPath); err != nil {
		return "", fmt.Errorf("no %s found under %s", bench.ResultsFileName, path)
	}
	return csvPath, nil
}
