package sink

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
)

// CSVWriter streams rows as comma-separated lines to an io.Writer.
//
// Each row is flushed as soon as it is written so a recording survives an
// abrupt shutdown.
type CSVWriter struct {
	mu   sync.Mutex
	w    *bufio.Writer
	file *os.File // non-nil when created via NewCSVFile
	buf  []byte
}

var _ Sink = (*CSVWriter)(nil)

// NewCSVWriter creates a CSVWriter streaming to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: bufio.NewWriter(w)}
}

// NewCSVFile creates a CSVWriter streaming to the file at path,
// truncating any existing file.
func NewCSVFile(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("sink: create csv file: %w", err)
	}

	cw := NewCSVWriter(f)
	cw.file = f

	return cw, nil
}

func (cw *CSVWriter) PushRow(row []float64) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.buf = cw.buf[:0]
	for i, v := range row {
		if i > 0 {
			cw.buf = append(cw.buf, ',')
		}
		cw.buf = strconv.AppendFloat(cw.buf, v, 'g', -1, 64)
	}
	cw.buf = append(cw.buf, '\n')

	if _, err := cw.w.Write(cw.buf); err != nil {
		return fmt.Errorf("sink: write csv row: %w", err)
	}

	return cw.w.Flush()
}

// Close flushes pending data and closes the underlying file, if any.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	err := cw.w.Flush()
	if cw.file != nil {
		if cerr := cw.file.Close(); err == nil {
			err = cerr
		}
		cw.file = nil
	}

	return err
}
