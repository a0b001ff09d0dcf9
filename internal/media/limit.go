package media

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
)

// LimitedUtility bounds how many ffmpeg-backed operations run at once.
// Callers beyond the limit wait for a slot; cancelling their context stops
// the wait.
type LimitedUtility struct {
	next Utility
	sem  *semaphore.Weighted
}

// Compile-time check that LimitedUtility implements Utility.
var _ Utility = (*LimitedUtility)(nil)

// Limit wraps u so that at most n operations run concurrently.
// n below 1 is treated as 1.
func Limit(u Utility, n int) *LimitedUtility {
	if n < 1 {
		n = 1
	}
	return &LimitedUtility{next: u, sem: semaphore.NewWeighted(int64(n))}
}

func (l *LimitedUtility) acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("wait for media slot: %w", err)
	}
	return nil
}

// AdjustVideoSpeed implements Utility.
func (l *LimitedUtility) AdjustVideoSpeed(ctx context.Context, videoPath string, speed float64) (string, error) {
	if err := l.acquire(ctx); err != nil {
		return "", err
	}
	defer l.sem.Release(1)
	return l.next.AdjustVideoSpeed(ctx, videoPath, speed)
}

// TrimVideo implements Utility.
func (l *LimitedUtility) TrimVideo(ctx context.Context, videoPath string, start, end time.Duration) (string, error) {
	if err := l.acquire(ctx); err != nil {
		return "", err
	}
	defer l.sem.Release(1)
	return l.next.TrimVideo(ctx, videoPath, start, end)
}

// MergeVideos implements Utility.
func (l *LimitedUtility) MergeVideos(ctx context.Context, videoPaths []string) (string, error) {
	if err := l.acquire(ctx); err != nil {
		return "", err
	}
	defer l.sem.Release(1)
	return l.next.MergeVideos(ctx, videoPaths)
}

// ExtractAudio implements Utility.
func (l *LimitedUtility) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	if err := l.acquire(ctx); err != nil {
		return "", err
	}
	defer l.sem.Release(1)
	return l.next.ExtractAudio(ctx, videoPath)
}

// RemoveAudio implements Utility.
func (l *LimitedUtility) RemoveAudio(ctx context.Context, videoPath string) (string, error) {
	if err := l.acquire(ctx); err != nil {
		return "", err
	}
	defer l.sem.Release(1)
	return l.next.RemoveAudio(ctx, videoPath)
}

// ScaleVideo implements Utility.
func (l *LimitedUtility) ScaleVideo(ctx context.Context, videoPath string, width, height int) (string, error) {
	if err := l.acquire(ctx); err != nil {
		return "", err
	}
	defer l.sem.Release(1)
	return l.next.ScaleVideo(ctx, videoPath, width, height)
}

// RotateVideo implements Utility.
func (l *LimitedUtility) RotateVideo(ctx context.Context, videoPath string, degrees int) (string, error) {
	if err := l.acquire(ctx); err != nil {
		return "", err
	}
	defer l.sem.Release(1)
	return l.next.RotateVideo(ctx, videoPath, degrees)
}

// GenerateThumbnail implements Utility.
func (l *LimitedUtility) GenerateThumbnail(ctx context.Context, videoPath string, opts ThumbnailOptions) (string, error) {
	if err := l.acquire(ctx); err != nil {
		return "", err
	}
	defer l.sem.Release(1)
	return l.next.GenerateThumbnail(ctx, videoPath, opts)
}

// CompressVideo implements Utility.
func (l *LimitedUtility) CompressVideo(ctx context.Context, videoPath string, targetHeight int) (string, error) {
	if err := l.acquire(ctx); err != nil {
		return "", err
	}
	defer l.sem.Release(1)
	return l.next.CompressVideo(ctx, videoPath, targetHeight)
}

// GetVideoMetadata implements Utility. Probing is cheap and is not limited.
func (l *LimitedUtility) GetVideoMetadata(ctx context.Context, videoPath string) (*Metadata, error) {
	return l.next.GetVideoMetadata(ctx, videoPath)
}
