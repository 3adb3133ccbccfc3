package models

// Stats is the admin storage overview.
type Stats struct {
	Totals Totals      `json:"total_stats"`
	Users  []UserStats `json:"users_stats"`
}

type Totals struct {
	TotalUsers       int64  `json:"total_users"`
	AdminCount       int64  `json:"admin_count"`
	TotalFiles       int64  `json:"total_files"`
	TotalStorageUsed uint64 `json:"total_storage_used"`
}

// UserStats is the per-user breakdown of Stats.
type UserStats struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FileCount int64  `json:"file_count"`
	TotalSize uint64 `json:"total_size"`
}

// AverageFileSize is TotalSize / FileCount, or 0 for a user with no files.
func (s UserStats) AverageFileSize() uint64 {
	if s.FileCount <= 0 {
		return 0
	}
	return s.TotalSize / uint64(s.FileCount)
}

// FileSummary aggregates a file listing.
type FileSummary struct {
	Count     int
	TotalSize uint64
}

// Summarize counts files and sums their sizes.
func Summarize(files []FileRecord) FileSummary {
	s := FileSummary{Count: len(files)}
	for _, f := range files {
		s.TotalSize += f.Size
	}
	return s
}
