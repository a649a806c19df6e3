package features

import (
	"path/filepath"
	"slices"

	"github.com/rxtech-lab/argo-ohlcv/internal/tableio"
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
)

// Feature file base names under the features root.
const (
	LatestFeaturesName     = "latest_features"
	HistoricalFeaturesName = "historical_features"
)

// LatestPath returns the path of the latest-features file.
func LatestPath(dir string, format tableio.Format) string {
	return filepath.Join(dir, LatestFeaturesName+"."+format.Extension())
}

// HistoricalPath returns the path of the historical-features file.
func HistoricalPath(dir string, format tableio.Format) string {
	return filepath.Join(dir, HistoricalFeaturesName+"."+format.Extension())
}

// FeatureTable is an immutable snapshot of a feature file. It is never
// refreshed; load a new one to observe later writes.
type FeatureTable struct {
	records []types.FeatureRecord
}

// NewFeatureTable wraps records. The slice is copied.
func NewFeatureTable(records []types.FeatureRecord) *FeatureTable {
	return &FeatureTable{records: slices.Clone(records)}
}

// LoadFeatureTable reads the feature file at path. A missing file is an empty table.
func LoadFeatureTable(path string, format tableio.Format) (*FeatureTable, error) {
	codec, err := tableio.CodecFor(format)
	if err != nil {
		return nil, err
	}

	exists, err := tableio.Exists(path)
	if err != nil {
		return nil, err
	}

	if !exists {
		return NewFeatureTable(nil), nil
	}

	frame, err := codec.Read(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeFileReadFailed, err, "failed to load feature table %s", path)
	}

	return &FeatureTable{records: types.FeatureRecordsFromFrame(frame)}, nil
}

// Len returns the number of records.
func (t *FeatureTable) Len() int {
	return len(t.records)
}

// Records returns a copy of the records.
func (t *FeatureTable) Records() []types.FeatureRecord {
	return slices.Clone(t.records)
}

// Latest finds the newest record of ticker. Several records sharing the
// newest timestamp are reported as multiple.
func (t *FeatureTable) Latest(ticker string) types.Lookup[types.FeatureRecord] {
	var newest []types.FeatureRecord

	for _, rec := range t.records {
		if rec.Ticker != ticker {
			continue
		}

		switch {
		case len(newest) == 0 || rec.Time.After(newest[0].Time):
			newest = []types.FeatureRecord{rec}
		case rec.Time.Equal(newest[0].Time):
			newest = append(newest, rec)
		}
	}

	return types.LookupOne(newest, "feature record for "+ticker)
}
