package media

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidProfile is returned when an encoding profile fails validation.
var ErrInvalidProfile = errors.New("invalid encoding profile")

// Profile holds the encoder settings used whenever an operation re-encodes.
type Profile struct {
	VideoCodec   string `yaml:"video_codec"`
	Preset       string `yaml:"preset"`
	CRF          int    `yaml:"crf"`
	CompressCRF  int    `yaml:"compress_crf"`
	AudioCodec   string `yaml:"audio_codec"`
	AudioBitrate string `yaml:"audio_bitrate"`
}

// DefaultProfile returns libx264/aac settings suitable for phone footage.
func DefaultProfile() Profile {
	return Profile{
		VideoCodec:   "libx264",
		Preset:       "fast",
		CRF:          23,
		CompressCRF:  28,
		AudioCodec:   "aac",
		AudioBitrate: "128k",
	}
}

// LoadProfile reads a YAML profile. Fields missing from the file keep their
// DefaultProfile values.
//
// Example file:
//
//	video_codec: libx264
//	preset: veryfast
//	crf: 20
//	compress_crf: 30
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()

	data, err := os.ReadFile(path) // #nosec G304 - path comes from configuration
	if err != nil {
		return p, fmt.Errorf("read encoding profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse encoding profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Validate checks that the profile can be passed to ffmpeg.
func (p Profile) Validate() error {
	switch {
	case p.VideoCodec == "":
		return fmt.Errorf("%w: video_codec is required", ErrInvalidProfile)
	case p.AudioCodec == "":
		return fmt.Errorf("%w: audio_codec is required", ErrInvalidProfile)
	case p.Preset == "":
		return fmt.Errorf("%w: preset is required", ErrInvalidProfile)
	case p.AudioBitrate == "":
		return fmt.Errorf("%w: audio_bitrate is required", ErrInvalidProfile)
	case p.CRF < 0 || p.CRF > 51:
		return fmt.Errorf("%w: crf must be in [0, 51], got %d", ErrInvalidProfile, p.CRF)
	case p.CompressCRF < 0 || p.CompressCRF > 51:
		return fmt.Errorf("%w: compress_crf must be in [0, 51], got %d", ErrInvalidProfile, p.CompressCRF)
	}
	return nil
}
