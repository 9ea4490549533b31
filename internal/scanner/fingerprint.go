package scanner

import (
	"os"
	"time"
)

// LogFingerprint is the freshness signature of the history log: mtime and
// byte size. MaxTimestamp records the newest entry seen the last time the
// file was fully parsed; it is carried in the cache metadata but plays no
// part in staleness comparison.
type LogFingerprint struct {
	MTimeSecs    int64      `json:"mtime_secs"`
	Size         int64      `json:"size"`
	MaxTimestamp *time.Time `json:"max_timestamp,omitempty"`
}

// Matches reports whether the on-disk state looks unchanged.
func (f LogFingerprint) Matches(other LogFingerprint) bool {
	return f.MTimeSecs == other.MTimeSecs && f.Size == other.Size
}

// ProjectFingerprint is the freshness signature of one project directory:
// directory mtime and conversation file count. Contents are deliberately not
// hashed; an edit that preserves mtime and size is invisible to this scheme.
type ProjectFingerprint struct {
	DirMTimeSecs int64      `json:"dir_mtime_secs"`
	FileCount    int        `json:"file_count"`
	MaxTimestamp *time.Time `json:"max_timestamp,omitempty"`
}

func (f ProjectFingerprint) Matches(other ProjectFingerprint) bool {
	return f.DirMTimeSecs == other.DirMTimeSecs && f.FileCount == other.FileCount
}

func fingerprintFile(path string) (*LogFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &LogFingerprint{
		MTimeSecs: info.ModTime().Unix(),
		Size:      info.Size(),
	}, nil
}

func fingerprintDir(path string, fileCount int) (*ProjectFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &ProjectFingerprint{
		DirMTimeSecs: info.ModTime().Unix(),
		FileCount:    fileCount,
	}, nil
}
