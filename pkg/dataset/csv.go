package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// ReadCSV loads a Dataset from a comma-delimited file with a header row.
// Every cell must parse as a float; a malformed record fails the whole
// load rather than being skipped, so a partially parsed file never reaches
// the estimator.
func ReadCSV(path string, covariates []string, treatment, outcome string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, &SchemaError{Column: "", Reason: "file has no data rows"}
	}

	names := records[0]
	rows := make([][]float64, 0, len(records)-1)
	for r, rec := range records[1:] {
		row := make([]float64, len(rec))
		for j, s := range rec {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, &SchemaError{
					Column: names[j],
					Reason: fmt.Sprintf("row %d: %q is not numeric", r+1, s),
				}
			}
			row[j] = v
		}
		rows = append(rows, row)
	}

	return Load(rows, names, covariates, treatment, outcome)
}

// WriteCSV writes the dataset as a comma-delimited file with a header row.
func WriteCSV(path string, d *Dataset) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(bufio.NewWriter(file))
	if err := w.Write(d.names); err != nil {
		return fmt.Errorf("dataset: write %s: %w", path, err)
	}
	rec := make([]string, len(d.names))
	for i := 0; i < d.Len(); i++ {
		for j, n := range d.names {
			rec[j] = strconv.FormatFloat(d.cols[n][i], 'g', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("dataset: write %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}
