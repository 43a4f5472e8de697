package activity

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

const (
	MoveDataFile     = "move_data.json"
	ActivityDataFile = "activity_data.json"
	GpsDataFile      = "gps_data"
)

// ErrEmptyMetadata is returned when a metadata document decodes to null.
var ErrEmptyMetadata = errors.New("activity metadata is null")

// MetadataFile is the per-activity metadata document name for a source.
func MetadataFile(src Source) string {
	if src == SourceGarminConnect {
		return ActivityDataFile
	}
	return MoveDataFile
}

// GpsFileName is the per-activity GPS file name, e.g. "gps_data.tcx".
func GpsFileName(format DataFormat) string {
	return fmt.Sprintf("%s.%s", GpsDataFile, format)
}

// DecodeRecord decodes a metadata document of the given source.
func DecodeRecord(src Source, data []byte) (*Record, error) {
	switch src {
	case SourceGarminConnect:
		var g *GarminActivity
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("decode garmin activity: %w", err)
		}
		if g == nil {
			return nil, ErrEmptyMetadata
		}
		return g.ToRecord(), nil
	case SourceMovescount:
		var m *Move
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode move: %w", err)
		}
		if m == nil {
			return nil, ErrEmptyMetadata
		}
		return m.ToRecord(), nil
	default:
		return nil, fmt.Errorf("unknown source %q", src)
	}
}

// StoredRecord is a record loaded from a local export together with the
// directory holding its files.
type StoredRecord struct {
	Dir    string
	Record *Record
}

// LoadFromDir reads <dir>/<id>/<metadata file> for every sub-directory.
// Unreadable or null documents are logged and skipped.
func LoadFromDir(dir string, src Source, logger *slog.Logger) ([]StoredRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var records []StoredRecord
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		recordDir := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(filepath.Join(recordDir, MetadataFile(src)))
		if err != nil {
			logger.Error("Metadata could not be read", "dir", entry.Name(), "error", err)
			continue
		}
		record, err := DecodeRecord(src, data)
		if err != nil {
			logger.Error("Metadata could not be decoded", "dir", entry.Name(), "error", err)
			continue
		}
		records = append(records, StoredRecord{Dir: recordDir, Record: record})
	}
	return records, nil
}
