package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gorqa/domain/core"
	"gorqa/domain/series"
)

// SourceConfig names the file and columns to ingest.
type SourceConfig struct {
	FilePath    string
	TimeColumn  string
	ValueColumn string
}

// DataReader reads a (timestamp, value) series from an Excel or CSV file.
type DataReader struct {
	cfg      SourceConfig
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader that handles both Excel and CSV files.
func NewDataReader(cfg SourceConfig) *DataReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(cfg.FilePath)) == ".csv" {
		fileType = "csv"
	}
	return &DataReader{cfg: cfg, fileType: fileType}
}

// Timestamp layouts tried in order when parsing the time column.
var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"2006/01/02",
}

// ReadSeries reads the configured columns into a TimeSeries. Blank or
// non-numeric value cells become Missing samples; rows whose timestamp
// cannot be parsed are skipped.
func (r *DataReader) ReadSeries() (series.TimeSeries, error) {
	if _, err := os.Stat(r.cfg.FilePath); os.IsNotExist(err) {
		return series.TimeSeries{}, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.cfg.FilePath)
	}

	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return series.TimeSeries{}, err
	}
	if len(rows) < 2 {
		return series.TimeSeries{}, fmt.Errorf("data file must have a header row and at least one data row")
	}

	return r.processRows(rows)
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func (r *DataReader) processRows(rows [][]string) (series.TimeSeries, error) {
	timeIdx, valueIdx := -1, -1
	for i, header := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(header)) {
		case strings.ToLower(r.cfg.TimeColumn):
			timeIdx = i
		case strings.ToLower(r.cfg.ValueColumn):
			valueIdx = i
		}
	}
	if timeIdx < 0 {
		return series.TimeSeries{}, fmt.Errorf("time column %q not found", r.cfg.TimeColumn)
	}
	if valueIdx < 0 {
		return series.TimeSeries{}, fmt.Errorf("value column %q not found", r.cfg.ValueColumn)
	}

	var samples []series.Sample
	skipped := 0
	for _, row := range rows[1:] {
		if timeIdx >= len(row) {
			skipped++
			continue
		}
		at, ok := parseTimestamp(row[timeIdx])
		if !ok {
			skipped++
			continue
		}

		sample := series.Sample{At: at, Missing: true}
		if valueIdx < len(row) {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[valueIdx]), 64); err == nil {
				sample.Value = v
				sample.Missing = false
			}
		}
		samples = append(samples, sample)
	}

	log.Printf("[DataReader] %s: %d samples read, %d rows skipped", r.cfg.FilePath, len(samples), skipped)
	return series.New(core.VariableKey(r.cfg.ValueColumn), samples), nil
}

func parseTimestamp(cell string) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, true
		}
	}
	// excelize represents date cells as serial numbers when formatting is off
	if serial, err := strconv.ParseFloat(cell, 64); err == nil && serial > 20000 && serial < 80000 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
