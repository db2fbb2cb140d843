package report

import (
	"log/slog"

	"github.com/klauern/lexmerge/internal/logging"
	"github.com/klauern/lexmerge/internal/tree"
)

// Reporter accumulates records in discovery order. It never merges or drops
// records, even textually identical ones. A Reporter belongs to a single
// merge and is not safe for concurrent use.
type Reporter struct {
	records []Record
	logger  *slog.Logger
}

// NewReporter returns an empty reporter. Each record is logged at debug
// level; a nil logger uses the default logger.
func NewReporter(logger *slog.Logger) *Reporter {
	return &Reporter{logger: logging.Or(logger)}
}

// Record appends rec.
func (r *Reporter) Record(rec Record) {
	rec.Path = append(tree.Path(nil), rec.Path...)
	r.records = append(r.records, rec)
	r.logger.Debug("merge record",
		logging.Kind(rec.Kind),
		logging.Node(rec.Path),
		slog.String("resolution", rec.Resolution.String()),
	)
}

// Records returns a copy of the records in discovery order.
func (r *Reporter) Records() []Record {
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of records.
func (r *Reporter) Len() int {
	return len(r.records)
}
