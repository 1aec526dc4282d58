package qa

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PerfSample is what the performance assessment scores.
type PerfSample struct {
	TotalBytes       int64         `json:"totalBytes"`
	LargestPageBytes int64         `json:"largestPageBytes"`
	ImageBytes       int64         `json:"imageBytes"`
	Files            int           `json:"files"`
	AvgLoadTime      time.Duration `json:"avgLoadTime"`
}

// MetricsProvider samples resource figures for a snapshot.
type MetricsProvider interface {
	Sample(ctx context.Context, snap *Snapshot) (PerfSample, error)
}

// FileMetrics measures the output tree on disk and the load times recorded
// while opening pages.
type FileMetrics struct{}

func (FileMetrics) Sample(ctx context.Context, snap *Snapshot) (PerfSample, error) {
	var s PerfSample
	for rel := range snap.Files {
		if err := ctx.Err(); err != nil {
			return PerfSample{}, err
		}
		info, err := os.Stat(filepath.Join(snap.Dir, filepath.FromSlash(rel)))
		if err != nil {
			return PerfSample{}, err
		}
		size := info.Size()
		s.TotalBytes += size
		s.Files++
		switch {
		case strings.HasSuffix(rel, ".html"):
			if size > s.LargestPageBytes {
				s.LargestPageBytes = size
			}
		case strings.HasPrefix(rel, "images/"):
			s.ImageBytes += size
		}
	}
	s.AvgLoadTime = snap.AvgLoadTime()
	return s, nil
}

// FixedMetrics returns the same sample every time.
type FixedMetrics PerfSample

func (m FixedMetrics) Sample(ctx context.Context, _ *Snapshot) (PerfSample, error) {
	return PerfSample(m), ctx.Err()
}
