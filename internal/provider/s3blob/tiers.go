package s3blob

import (
	"github.com/aws/aws-sdk-go/service/s3"

	"tiersweep/internal/models"
)

// storageClass maps a tier to the S3 storage class written on tier changes.
// Archive maps to GLACIER; DEEP_ARCHIVE is only ever read back, never
// written, so a round-trip through tiersweep cannot deepen an archive.
func storageClass(t models.Tier) string {
	switch t {
	case models.TierHot:
		return s3.StorageClassStandard
	case models.TierCool:
		return s3.StorageClassStandardIa
	case models.TierCold:
		return s3.StorageClassGlacierIr
	case models.TierArchive:
		return s3.StorageClassGlacier
	default:
		return s3.StorageClassStandard
	}
}

// tierFromStorageClass maps a provider-reported storage class to a tier.
// Listings omit the class for STANDARD objects, so empty input means hot.
func tierFromStorageClass(class string) models.Tier {
	switch class {
	case "", s3.StorageClassStandard, s3.StorageClassReducedRedundancy:
		return models.TierHot
	case s3.StorageClassStandardIa, s3.StorageClassOnezoneIa, s3.StorageClassIntelligentTiering:
		return models.TierCool
	case s3.StorageClassGlacierIr:
		return models.TierCold
	case s3.StorageClassGlacier, s3.StorageClassDeepArchive:
		return models.TierArchive
	default:
		return models.TierUnknown
	}
}

// restoreTier maps a rehydration priority to an S3 restore tier.
func restoreTier(p models.Priority) string {
	if p == models.PriorityHigh {
		return s3.TierExpedited
	}
	return s3.TierStandard
}
