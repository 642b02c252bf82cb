package batch

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/matzehuels/specdiff/pkg/errors"
	"github.com/matzehuels/specdiff/pkg/similarity"
)

// Artifact file names.
const (
	DiffsFile        = "spec-diffs.json"
	VizFile          = "spec-diffs-vizdata.json"
	ComparisonSuffix = "-comparison.json"
)

// ComparisonFile returns the name of the fact comparison artifact of a pair.
func ComparisonFile(key string) string {
	return key + ComparisonSuffix
}

// Write saves the report's artifacts into its corpus directory and returns
// the paths written. With pairFiles set, one comparison file per pair is
// written as well.
func (r *Report) Write(pairFiles bool) ([]string, error) {
	var written []string
	put := func(name string, v any) error {
		path := filepath.Join(r.Dir, name)
		if err := writeJSON(path, v); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	if pairFiles {
		for _, key := range sortedKeys(r.Comparisons) {
			if err := put(ComparisonFile(key), r.Comparisons[key]); err != nil {
				return written, err
			}
		}
	}
	if err := put(DiffsFile, r.Diffs); err != nil {
		return written, err
	}
	if err := put(VizFile, r.Viz); err != nil {
		return written, err
	}
	return written, nil
}

// ReadDiffs loads a spec-diffs.json artifact.
func ReadDiffs(path string) (map[string]similarity.Result, error) {
	//nolint:gosec // G304: path is supplied by the user
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	var diffs map[string]similarity.Result
	if err := json.Unmarshal(data, &diffs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s", path)
	}
	return diffs, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", filepath.Base(path))
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}
