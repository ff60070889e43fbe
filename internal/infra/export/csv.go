package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/lidyk-ops/SportScope/internal/domain/entity"
)

var csvHeader = []string{
	"id", "created_at", "focus", "original_name",
	"summary", "play_type", "route_example",
	"model", "clip_duration_seconds",
}

// WriteCSV streams completed analyses as a spreadsheet-importable CSV.
func WriteCSV(w io.Writer, analyses []*entity.ClipAnalysis) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, a := range analyses {
		record := []string{
			a.ID.String(),
			a.CreatedAt.UTC().Format(time.RFC3339),
			string(a.Focus),
			a.OriginalName,
			a.Summary,
			a.PlayType,
			a.RouteExample,
			a.Model,
			strconv.FormatFloat(a.ClipDuration, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
