package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mmtrader/pairsweep/internal/core"
)

var (
	legACandidates = []string{"ym", "lega", "leg_a"}
	legBCandidates = []string{"es", "legb", "leg_b"}
)

// decodeCSV parses a dataset file into price rows. Leg columns are
// resolved by case-insensitive header name, falling back to the second
// and third columns when no candidate matches.
func decodeCSV(data []byte) ([]core.PriceRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, core.WrapError(core.ErrDatasetUnsupported, fmt.Errorf("parsing csv: %w", err))
	}
	if len(records) < 2 {
		return nil, core.WrapError(core.ErrDatasetUnsupported, fmt.Errorf("dataset has no data rows"))
	}

	header := records[0]
	if len(header) < 3 {
		return nil, core.WrapError(core.ErrDatasetUnsupported,
			fmt.Errorf("dataset needs timestamp and two leg columns, got %d columns", len(header)))
	}

	tsIdx := resolveColumn(header, []string{"timestamp", "time", "ts"}, 0)
	legAIdx := resolveColumn(header, legACandidates, 1)
	legBIdx := resolveColumn(header, legBCandidates, 2)

	rows := make([]core.PriceRow, 0, len(records)-1)
	for i, record := range records[1:] {
		ts, err := parseTimestamp(record[tsIdx])
		if err != nil {
			return nil, core.WrapError(core.ErrDatasetUnsupported,
				fmt.Errorf("row %d: %w", i+1, err))
		}
		legA, err := strconv.ParseFloat(record[legAIdx], 64)
		if err != nil {
			return nil, core.WrapError(core.ErrDatasetUnsupported,
				fmt.Errorf("row %d: leg A value %q: %w", i+1, record[legAIdx], err))
		}
		legB, err := strconv.ParseFloat(record[legBIdx], 64)
		if err != nil {
			return nil, core.WrapError(core.ErrDatasetUnsupported,
				fmt.Errorf("row %d: leg B value %q: %w", i+1, record[legBIdx], err))
		}

		rows = append(rows, core.PriceRow{Timestamp: ts, LegA: legA, LegB: legB})
	}
	return rows, nil
}

// resolveColumn finds the first header matching one of the candidates,
// case-insensitive, or returns the positional fallback.
func resolveColumn(header []string, candidates []string, fallback int) int {
	for _, candidate := range candidates {
		for i, col := range header {
			if strings.EqualFold(strings.TrimSpace(col), candidate) {
				return i
			}
		}
	}
	return fallback
}

// parseTimestamp accepts RFC3339, a date-time without zone, or unix
// seconds.
func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse("2006-01-02 15:04:05", raw); err == nil {
		return ts.UTC(), nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		sec := int64(secs)
		nsec := int64((secs - float64(sec)) * 1e9)
		return time.Unix(sec, nsec).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
