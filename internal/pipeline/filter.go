package pipeline

import (
	"log/slog"

	"tiersweep/internal/models"
)

// FilterByWindow is the authoritative candidate filter: it keeps records
// whose tier matches the criteria and whose last-modified time falls inside
// the inclusive window. Records without a usable last-modified timestamp are
// dropped and logged; one bad record never aborts the batch. Input order is
// preserved so the audit trail stays deterministic.
func FilterByWindow(records []models.BlobRecord, criteria models.TierFilterCriteria, log *slog.Logger) []models.BlobRecord {
	out := make([]models.BlobRecord, 0, len(records))
	for _, rec := range records {
		if rec.LastModified.IsZero() {
			log.Debug("dropping record without a usable last-modified time", "blob", rec.Name)
			continue
		}
		if rec.Tier != criteria.Tier {
			continue
		}
		if rec.LastModified.Before(criteria.Start) || rec.LastModified.After(criteria.End) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
