// Package common provides the delimited-text input and output shared by the
// pipeline and the CLI.
package common

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"fjacquet/stmt-csv/internal/fileutils"
	"fjacquet/stmt-csv/internal/logging"
	"fjacquet/stmt-csv/internal/models"

	"github.com/gocarina/gocsv"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Row is one physical record of a source file. Err is set when the line
// could not be split into fields; Fields is nil in that case.
type Row struct {
	Line   int
	Fields []string
	Err    error
}

// RowReader streams the rows of a source file to fn. Returning an error from
// fn stops the read and is passed through unchanged.
type RowReader interface {
	ReadRows(path string, fn func(Row) error) error
}

// CSVRowReader reads comma separated statements with a variable number of
// fields per line.
type CSVRowReader struct {
	Comma   rune
	Charmap *charmap.Charmap
	logger  logging.Logger
}

// NewCSVRowReader creates a reader. A nil charmap reads the file as UTF-8.
func NewCSVRowReader(comma rune, cm *charmap.Charmap, logger logging.Logger) *CSVRowReader {
	if comma == 0 {
		comma = ','
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &CSVRowReader{Comma: comma, Charmap: cm, logger: logger}
}

// ReadRows implements RowReader.
func (r *CSVRowReader) ReadRows(path string, fn func(Row) error) error {
	f, err := fileutils.OpenFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			r.logger.WithError(cerr).Warn("Failed to close file", logging.F(logging.FieldFile, path))
		}
	}()

	var src io.Reader = f
	if r.Charmap != nil {
		src = transform.NewReader(f, r.Charmap.NewDecoder())
	}

	reader := csv.NewReader(src)
	reader.Comma = r.Comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	count := 0
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var parseErr *csv.ParseError
		switch {
		case errors.As(err, &parseErr):
			err = fn(Row{Line: parseErr.StartLine, Err: err})
		case err != nil:
			return fmt.Errorf("reading %s: %w", path, err)
		default:
			line, _ := reader.FieldPos(0)
			err = fn(Row{Line: line, Fields: fields})
		}
		if err != nil {
			return err
		}
		count++
	}

	r.logger.Debug("Read source rows",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, count))
	return nil
}

// RecordSink receives the final ordered record sequence exactly once per run.
type RecordSink interface {
	WriteRecords(records []models.Record) error
	Destination() string
}

// outputRow is the on-disk shape of a record.
type outputRow struct {
	Description string `csv:"Description"`
	Date        string `csv:"Date"`
	Category    string `csv:"Category"`
	Amount      string `csv:"Amount"`
}

func toOutputRows(records []models.Record) []*outputRow {
	rows := make([]*outputRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, &outputRow{
			Description: rec.Description,
			Date:        rec.ISODate(),
			Category:    rec.Category,
			Amount:      rec.FormattedAmount(),
		})
	}
	return rows
}

// WriteCSV marshals records as [description, date, category, amount] rows.
func WriteCSV(w io.Writer, records []models.Record, delimiter rune, includeHeaders bool) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delimiter
	safe := gocsv.NewSafeCSVWriter(csvWriter)

	rows := toOutputRows(records)
	var err error
	if includeHeaders {
		err = gocsv.MarshalCSV(rows, safe)
	} else {
		err = gocsv.MarshalCSVWithoutHeaders(rows, safe)
	}
	if err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	safe.Flush()
	return safe.Error()
}

// CSVSink writes the run output to a single CSV file.
type CSVSink struct {
	Path           string
	Delimiter      rune
	IncludeHeaders bool
	logger         logging.Logger
}

// NewCSVSink creates a sink writing to path.
func NewCSVSink(path string, delimiter rune, includeHeaders bool, logger logging.Logger) *CSVSink {
	if delimiter == 0 {
		delimiter = ','
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &CSVSink{Path: path, Delimiter: delimiter, IncludeHeaders: includeHeaders, logger: logger}
}

// Destination implements RecordSink.
func (s *CSVSink) Destination() string {
	return s.Path
}

// WriteRecords implements RecordSink. The file is created, or truncated, even
// when there are no records.
func (s *CSVSink) WriteRecords(records []models.Record) error {
	if records == nil {
		records = []models.Record{}
	}

	s.logger.Info("Writing records to CSV file",
		logging.F(logging.FieldOutputFile, s.Path),
		logging.F(logging.FieldCount, len(records)),
		logging.F(logging.FieldDelimiter, string(s.Delimiter)))

	file, err := fileutils.CreateFile(s.Path)
	if err != nil {
		s.logger.WithError(err).Error("Failed to create CSV file")
		return err
	}

	if err := WriteCSV(file, records, s.Delimiter, s.IncludeHeaders); err != nil {
		_ = file.Close()
		s.logger.WithError(err).Error("Failed to marshal records to CSV")
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", s.Path, err)
	}

	s.logger.Info("Successfully wrote records to CSV file",
		logging.F(logging.FieldOutputFile, s.Path),
		logging.F(logging.FieldCount, len(records)))
	return nil
}

// MemorySink collects records in memory. Used by dry runs and tests.
type MemorySink struct {
	Records []models.Record
	Writes  int
	Err     error
}

// Destination implements RecordSink.
func (s *MemorySink) Destination() string {
	return "memory"
}

// WriteRecords implements RecordSink.
func (s *MemorySink) WriteRecords(records []models.Record) error {
	s.Writes++
	if s.Err != nil {
		return s.Err
	}
	s.Records = append([]models.Record(nil), records...)
	return nil
}
