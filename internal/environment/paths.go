package environment

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/moviedb/moviedb/internal/utils"
)

const (
	// DataDirName is the directory created under the parent directory.
	DataDirName = "Movie Data"
	// VersionFileName holds the schema version of the data on disk.
	VersionFileName = "saved_version.json"
)

// Paths is the on-disk layout for one schema version:
//
//	<parent>/Movie Data/
//	  saved_version.json
//	  <VERSION>/movie_database_<VERSION>.sqlite3
type Paths struct {
	DataDir      string
	VersionFile  string
	DatabaseDir  string
	DatabaseFile string
}

// ResolvePaths lays out version under parent.
func ResolvePaths(parent, version string) Paths {
	dataDir := filepath.Join(parent, DataDirName)
	return Paths{
		DataDir:      dataDir,
		VersionFile:  filepath.Join(dataDir, VersionFileName),
		DatabaseDir:  filepath.Join(dataDir, version),
		DatabaseFile: DatabaseFile(dataDir, version),
	}
}

// DatabaseFile returns where the database of version lives in dataDir.
func DatabaseFile(dataDir, version string) string {
	return filepath.Join(dataDir, version, "movie_database_"+version+".sqlite3")
}

type versionMarker struct {
	SavedVersion string `json:"saved_version"`
}

// ReadSavedVersion returns the version recorded in the version file. found is
// false when the file does not exist.
func ReadSavedVersion(path string) (version string, found bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var marker versionMarker
	if err := json.Unmarshal(data, &marker); err != nil {
		return "", false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if marker.SavedVersion == "" {
		return "", false, fmt.Errorf("%s has no saved_version", path)
	}
	return marker.SavedVersion, true, nil
}

// WriteSavedVersion records version in the version file.
func WriteSavedVersion(path, version string) error {
	data, err := json.Marshal(versionMarker{SavedVersion: version})
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(path, data, 0o644)
}
