package bench

import (
	"encoding/csv"
	"fmt"
	"os"
)

// ResultsFile is the append-only CSV a run writes its records to.
type ResultsFile struct {
	path   string
	file   *os.File
	writer *csv.Writer
}

// CreateResultsFile creates (or truncates) path and writes the header row.
func CreateResultsFile(path string) (*ResultsFile, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("creating results file: %w", err)
	}

	rf := &ResultsFile{
		path:   path,
		file:   file,
		writer: csv.NewWriter(file),
	}

	if err := rf.writeRow(Columns); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("writing header: %w", err)
	}

	return rf, nil
}

// Append writes one record and flushes it to disk.
func (rf *ResultsFile) Append(r Record) error {
	if err := rf.writeRow(r.Row()); err != nil {
		return fmt.Errorf("appending record %d: %w", r.Seq, err)
	}
	return nil
}

func (rf *ResultsFile) writeRow(fields []string) error {
	if err := rf.writer.Write(fields); err != nil {
		return err
	}
	rf.writer.Flush()
	return rf.writer.Error()
}

func (rf *ResultsFile) Path() string {
	return rf.path
}

func (rf *ResultsFile) Close() error {
	rf.writer.Flush()
	if err := rf.writer.Error(); err != nil {
		_ = rf.file.Close()
		return err
	}
	return rf.file.Close()
}
