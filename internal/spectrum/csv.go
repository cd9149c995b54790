package spectrum

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// csvHeader is the interchange header row. Readers also accept
// headerless files for compatibility with older exports.
var csvHeader = []string{"x", "x_err", "y", "y_err"}

var fitHeader = []string{"amplitude", "amplitude_err", "center", "center_err", "width", "width_err"}

// Read parses the four-column interchange format. The result is sorted
// by x and validated before being returned.
func Read(r io.Reader) (Spectrum, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 4
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read spectrum csv: %w", err)
	}
	if len(records) == 0 {
		return nil, &InputError{Field: "spectrum", Index: -1, Reason: "empty file"}
	}

	start := 0
	if _, err := strconv.ParseFloat(records[0][0], 64); err != nil {
		// First row is a header.
		start = 1
	}

	out := make(Spectrum, 0, len(records)-start)
	for i, record := range records[start:] {
		var p Point
		fields := []*float64{&p.X, &p.XErr, &p.Y, &p.YErr}
		for j, dst := range fields {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, &InputError{Field: "spectrum", Index: i, Reason: fmt.Sprintf("column %s is not a number: %q", csvHeader[j], record[j])}
			}
			*dst = v
		}
		out = append(out, p)
	}

	out.Sort()
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Write emits the interchange format with a header row. Values use the
// shortest decimal representation that round-trips exactly, so a
// Write/Read cycle reproduces the spectrum bit for bit.
func Write(w io.Writer, s Spectrum) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write spectrum header: %w", err)
	}
	for _, p := range s {
		record := []string{
			formatValue(p.X),
			formatValue(p.XErr),
			formatValue(p.Y),
			formatValue(p.YErr),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write spectrum row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFitResult emits one row per Gaussian component followed by a
// summary row carrying the chi-square and the convergence flag.
func WriteFitResult(w io.Writer, res *FitResult) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(fitHeader); err != nil {
		return fmt.Errorf("failed to write fit header: %w", err)
	}
	for i, c := range res.Components {
		e := res.StdErrs[i]
		record := []string{
			formatValue(c.Amplitude), formatValue(e.Amplitude),
			formatValue(c.Center), formatValue(e.Center),
			formatValue(c.Width), formatValue(e.Width),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write fit row: %w", err)
		}
	}

	summary := []string{"chi_square", formatValue(res.ChiSquare), "converged", strconv.FormatBool(res.Converged)}
	if err := writer.Write(summary); err != nil {
		return fmt.Errorf("failed to write fit summary: %w", err)
	}

	writer.Flush()
	return writer.Error()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
