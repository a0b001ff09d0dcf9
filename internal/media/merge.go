package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// MergeVideos concatenates the videos. It first attempts a fast copy (no
// re-encoding) and falls back to re-encoding when the inputs' codecs differ.
func (u *FFmpegUtility) MergeVideos(ctx context.Context, videoPaths []string) (string, error) {
	if len(videoPaths) == 0 {
		return "", ErrNoVideoPaths
	}
	for _, p := range videoPaths {
		if strings.ContainsAny(p, "\r\n") {
			return "", fmt.Errorf("%w: %q", ErrUnsafePath, p)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range videoPaths {
		g.Go(func() error {
			if err := checkSource(p); err != nil {
				return err
			}
			if _, err := u.probe(gctx, p); err != nil {
				return fmt.Errorf("probe %s: %w", p, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	output, err := u.outputs.NewOutputPath(videoPaths[0], "merged", sourceExt(videoPaths[0]))
	if err != nil {
		return "", fmt.Errorf("allocate output: %w", err)
	}

	if len(videoPaths) == 1 {
		if err := copyFile(videoPaths[0], output); err != nil {
			_ = os.Remove(output)
			return "", err
		}
		return output, nil
	}

	listFile, err := createConcatList(videoPaths)
	if err != nil {
		_ = os.Remove(output)
		return "", fmt.Errorf("create concat list: %w", err)
	}
	defer func() { _ = os.Remove(listFile) }()

	if err := u.runFFmpeg(ctx, u.concatCopyArgs(listFile, output)); err == nil {
		return output, nil
	} else if ctx.Err() != nil {
		_ = os.Remove(output)
		return "", err
	}

	if err := u.runFFmpeg(ctx, u.concatReencodeArgs(listFile, output)); err != nil {
		_ = os.Remove(output)
		return "", err
	}
	return output, nil
}

func (u *FFmpegUtility) concatCopyArgs(listFile, output string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		output,
	}
}

func (u *FFmpegUtility) concatReencodeArgs(listFile, output string) []string {
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
	}
	args = append(args, u.encodeArgs(u.profile.CRF)...)
	return append(args, output)
}

// createConcatList writes the file list read by ffmpeg's concat demuxer.
func createConcatList(videoPaths []string) (string, error) {
	f, err := os.CreateTemp("", "ffmpeg-concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, path := range videoPaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			_ = os.Remove(f.Name())
			return "", fmt.Errorf("get absolute path for %s: %w", path, err)
		}
		if strings.ContainsAny(absPath, "\r\n") {
			_ = os.Remove(f.Name())
			return "", fmt.Errorf("%w: %q", ErrUnsafePath, path)
		}
		escapedPath := strings.ReplaceAll(absPath, "'", "'\\''")
		if _, err := fmt.Fprintf(f, "file '%s'\n", escapedPath); err != nil {
			_ = os.Remove(f.Name())
			return "", fmt.Errorf("write to concat list: %w", err)
		}
	}

	return f.Name(), nil
}
