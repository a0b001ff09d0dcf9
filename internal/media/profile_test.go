package media

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProfile(t *testing.T) {
	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := writeProfile(t, "preset: veryfast\ncrf: 20\n")

		p, err := LoadProfile(path)
		if err != nil {
			t.Fatalf("LoadProfile() error = %v", err)
		}

		want := DefaultProfile()
		want.Preset = "veryfast"
		want.CRF = 20
		if p != want {
			t.Errorf("LoadProfile() = %+v, want %+v", p, want)
		}
	})

	t.Run("invalid crf", func(t *testing.T) {
		path := writeProfile(t, "crf: 60\n")

		_, err := LoadProfile(path)
		if !errors.Is(err, ErrInvalidProfile) {
			t.Errorf("expected ErrInvalidProfile, got %v", err)
		}
	})

	t.Run("empty codec", func(t *testing.T) {
		path := writeProfile(t, "video_codec: \"\"\n")

		_, err := LoadProfile(path)
		if !errors.Is(err, ErrInvalidProfile) {
			t.Errorf("expected ErrInvalidProfile, got %v", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeProfile(t, "crf: [1, 2\n")

		if _, err := LoadProfile(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist, got %v", err)
		}
	})
}

func TestDefaultProfileIsValid(t *testing.T) {
	if err := DefaultProfile().Validate(); err != nil {
		t.Errorf("DefaultProfile().Validate() = %v", err)
	}
}
