package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
)

// CSVSink appends rows to a CSV file, flushing after every row so partial
// runs still leave usable output.
type CSVSink struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// OpenCSV opens or creates a CSV sink at path. The header row is written
// once, only when the file did not exist before.
func OpenCSV(path string) (*CSVSink, error) {
	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file %s: %w", path, err)
	}

	s := &CSVSink{file: file, writer: csv.NewWriter(file)}
	if isNew {
		if err := s.writer.Write(Columns); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to write CSV header to %s: %w", path, err)
		}
		s.writer.Flush()
		if err := s.writer.Error(); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to write CSV header to %s: %w", path, err)
		}
	}
	return s, nil
}

// Append implements Sink.
func (s *CSVSink) Append(_ string, row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writer.Write(row.values()); err != nil {
		return fmt.Errorf("failed to write CSV row: %w", err)
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV row: %w", err)
	}
	return nil
}

// Close implements Sink.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}
