package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

func LoadCSV(path, classColumn string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()
	table, err := ReadCSV(f, classColumn)
	return table, errors.Wrapf(err, "dataset: %s", path)
}

// ReadCSV reads a header-bearing CSV. An empty classColumn selects the last
// column. Surrounding spaces of every cell are trimmed.
func ReadCSV(r io.Reader, classColumn string) (Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, err
	}
	if len(records) < 2 {
		return Table{}, errors.New("header and at least one row are required")
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	classIdx := len(header) - 1
	if classColumn != "" {
		classIdx = slices.Index(header, classColumn)
		if classIdx < 0 {
			return Table{}, errors.Errorf("no column %q", classColumn)
		}
	}
	if len(header) < 2 {
		return Table{}, errors.New("at least one feature column is required")
	}

	rows := records[1:]
	columns := make([][]string, len(header))
	for j := range columns {
		columns[j] = make([]string, len(rows))
		for i, row := range rows {
			columns[j][i] = strings.TrimSpace(row[j])
		}
	}

	table := Table{
		ClassName: header[classIdx],
		X:         make([][]int, len(rows)),
		Y:         make([]int, len(rows)),
	}
	featureIdxs := make([]int, 0, len(header)-1)
	for j, name := range header {
		if j == classIdx {
			continue
		}
		featureIdxs = append(featureIdxs, j)
		table.FeatureNames = append(table.FeatureNames, name)
		table.Encoders = append(table.Encoders, FitOrdinalEncoder(columns[j]))
	}
	table.ClassEncoder = FitOrdinalEncoder(columns[classIdx])

	// every value was seen while fitting the encoders
	for i := range rows {
		row := make([]int, len(featureIdxs))
		for k, j := range featureIdxs {
			row[k], _ = table.Encoders[k].Encode(columns[j][i])
		}
		table.X[i] = row
		table.Y[i], _ = table.ClassEncoder.Encode(columns[classIdx][i])
	}
	return table, nil
}

func WriteCSV(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeCSV(f, header, records); err != nil {
		f.Close()
		return errors.Wrapf(err, "dataset: %s", path)
	}
	return f.Close()
}

func writeCSV(w io.Writer, header []string, records [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return writer.Error()
}
