package command

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maauso/videoeditor-bridge/internal/bridge"
	"github.com/maauso/videoeditor-bridge/internal/media"
	"github.com/maauso/videoeditor-bridge/internal/storage"
)

func TestCommands_InvalidArguments(t *testing.T) {
	l, ops := newTestLauncher()
	utility := new(MockUtility)
	uploader := new(MockUploader)

	tests := []struct {
		name    string
		cmd     bridge.Command
		args    map[string]any
		message string
	}{
		{"trim missing end", NewTrim(l, utility), map[string]any{"videoPath": "/a.mp4", "startTimeMs": 0},
			"Missing required arguments: videoPath, startTimeMs or endTimeMs"},
		{"merge missing list", NewMerge(l, utility), map[string]any{},
			"Missing required arguments: videoPaths"},
		{"merge mixed list", NewMerge(l, utility), map[string]any{"videoPaths": []any{"/a.mp4", 3}},
			"Missing required arguments: videoPaths"},
		{"extract missing path", NewExtractAudio(l, utility), map[string]any{},
			"Missing required arguments: videoPath"},
		{"remove missing path", NewRemoveAudio(l, utility), map[string]any{"videoPath": nil},
			"Missing required arguments: videoPath"},
		{"scale missing height", NewScale(l, utility), map[string]any{"videoPath": "/a.mp4", "width": 640},
			"Missing required arguments: videoPath, width or height"},
		{"rotate string degrees", NewRotate(l, utility), map[string]any{"videoPath": "/a.mp4", "rotationDegrees": "90"},
			"Missing required arguments: videoPath or rotationDegrees"},
		{"thumbnail missing position", NewThumbnail(l, utility), map[string]any{"videoPath": "/a.mp4"},
			"Missing required arguments: videoPath or positionMs"},
		{"thumbnail bad quality", NewThumbnail(l, utility), map[string]any{"videoPath": "/a.mp4", "positionMs": 0, "quality": "high"},
			"Invalid argument: quality must be a number"},
		{"compress missing path", NewCompress(l, utility), map[string]any{"targetHeight": 480},
			"Missing required arguments: videoPath"},
		{"compress bad height", NewCompress(l, utility), map[string]any{"videoPath": "/a.mp4", "targetHeight": true},
			"Invalid argument: targetHeight must be a number"},
		{"metadata missing path", NewMetadata(l, utility), map[string]any{},
			"Missing required arguments: videoPath"},
		{"export missing path", NewExport(l, uploader), map[string]any{"key": "x"},
			"Missing required arguments: path"},
		{"export empty key", NewExport(l, uploader), map[string]any{"path": "/a.mp4", "key": ""},
			"Invalid argument: key must be a non-empty string"},
		{"cancel numeric id", NewCancel(ops), map[string]any{"operationId": 12},
			"Invalid argument: operationId must be a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := invoke(t, tt.cmd, tt.args)
			require.NotNil(t, r.Err)
			assert.Equal(t, bridge.CodeInvalidArguments, r.Err.Code)
			assert.Equal(t, tt.message, r.Err.Message)
		})
	}

	assert.Zero(t, ops.Len())
	assert.Empty(t, utility.Calls)
	assert.Empty(t, uploader.Calls)
}

func TestCommands_Delegate(t *testing.T) {
	ctx := mock.Anything

	tests := []struct {
		name  string
		setup func(u *MockUtility)
		cmd   func(l *Launcher, u *MockUtility) bridge.Command
		args  map[string]any
		want  any
	}{
		{
			name: "trim converts milliseconds",
			setup: func(u *MockUtility) {
				u.On("TrimVideo", ctx, "/a.mp4", 1500*time.Millisecond, 4*time.Second).Return("/a_trim.mp4", nil)
			},
			cmd:  func(l *Launcher, u *MockUtility) bridge.Command { return NewTrim(l, u) },
			args: map[string]any{"videoPath": "/a.mp4", "startTimeMs": 1500, "endTimeMs": json.Number("4000")},
			want: "/a_trim.mp4",
		},
		{
			name: "merge keeps order",
			setup: func(u *MockUtility) {
				u.On("MergeVideos", ctx, []string{"/b.mp4", "/a.mp4"}).Return("/merged.mp4", nil)
			},
			cmd:  func(l *Launcher, u *MockUtility) bridge.Command { return NewMerge(l, u) },
			args: map[string]any{"videoPaths": []any{"/b.mp4", "/a.mp4"}},
			want: "/merged.mp4",
		},
		{
			name:  "extract audio",
			setup: func(u *MockUtility) { u.On("ExtractAudio", ctx, "/a.mp4").Return("/a.m4a", nil) },
			cmd:   func(l *Launcher, u *MockUtility) bridge.Command { return NewExtractAudio(l, u) },
			args:  map[string]any{"videoPath": "/a.mp4"},
			want:  "/a.m4a",
		},
		{
			name:  "remove audio",
			setup: func(u *MockUtility) { u.On("RemoveAudio", ctx, "/a.mp4").Return("/a_muted.mp4", nil) },
			cmd:   func(l *Launcher, u *MockUtility) bridge.Command { return NewRemoveAudio(l, u) },
			args:  map[string]any{"videoPath": "/a.mp4"},
			want:  "/a_muted.mp4",
		},
		{
			name:  "scale",
			setup: func(u *MockUtility) { u.On("ScaleVideo", ctx, "/a.mp4", 1280, 720).Return("/a_scaled.mp4", nil) },
			cmd:   func(l *Launcher, u *MockUtility) bridge.Command { return NewScale(l, u) },
			args:  map[string]any{"videoPath": "/a.mp4", "width": 1280.0, "height": int64(720)},
			want:  "/a_scaled.mp4",
		},
		{
			name:  "rotate",
			setup: func(u *MockUtility) { u.On("RotateVideo", ctx, "/a.mp4", -90).Return("/a_rotated.mp4", nil) },
			cmd:   func(l *Launcher, u *MockUtility) bridge.Command { return NewRotate(l, u) },
			args:  map[string]any{"videoPath": "/a.mp4", "rotationDegrees": -90},
			want:  "/a_rotated.mp4",
		},
		{
			name: "thumbnail with options",
			setup: func(u *MockUtility) {
				u.On("GenerateThumbnail", ctx, "/a.mp4", media.ThumbnailOptions{
					Position: 2500 * time.Millisecond,
					Quality:  90,
					Width:    320,
				}).Return("/a_thumb.jpg", nil)
			},
			cmd:  func(l *Launcher, u *MockUtility) bridge.Command { return NewThumbnail(l, u) },
			args: map[string]any{"videoPath": "/a.mp4", "positionMs": 2500, "quality": 90, "width": 320, "height": nil},
			want: "/a_thumb.jpg",
		},
		{
			name:  "compress without target height",
			setup: func(u *MockUtility) { u.On("CompressVideo", ctx, "/a.mp4", 0).Return("/a_small.mp4", nil) },
			cmd:   func(l *Launcher, u *MockUtility) bridge.Command { return NewCompress(l, u) },
			args:  map[string]any{"videoPath": "/a.mp4"},
			want:  "/a_small.mp4",
		},
		{
			name: "metadata",
			setup: func(u *MockUtility) {
				u.On("GetVideoMetadata", ctx, "/a.mp4").Return(&media.Metadata{Width: 1920, Height: 1080}, nil)
			},
			cmd:  func(l *Launcher, u *MockUtility) bridge.Command { return NewMetadata(l, u) },
			args: map[string]any{"videoPath": "/a.mp4"},
			want: &media.Metadata{Width: 1920, Height: 1080},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ops := newTestLauncher()
			utility := new(MockUtility)
			tt.setup(utility)

			r := invoke(t, tt.cmd(l, utility), tt.args)

			require.Nil(t, r.Err)
			assert.Equal(t, tt.want, r.Value)
			assert.Zero(t, ops.Len())
			utility.AssertExpectations(t)
		})
	}
}

func TestCommands_ErrorCodes(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name  string
		setup func(u *MockUtility)
		cmd   func(l *Launcher, u *MockUtility) bridge.Command
		args  map[string]any
		code  string
	}{
		{"trim", func(u *MockUtility) { u.On("TrimVideo", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", boom) },
			func(l *Launcher, u *MockUtility) bridge.Command { return NewTrim(l, u) },
			map[string]any{"videoPath": "/a.mp4", "startTimeMs": 0, "endTimeMs": 10}, CodeTrimError},
		{"merge", func(u *MockUtility) { u.On("MergeVideos", mock.Anything, mock.Anything).Return("", boom) },
			func(l *Launcher, u *MockUtility) bridge.Command { return NewMerge(l, u) },
			map[string]any{"videoPaths": []string{}}, CodeMergeError},
		{"extract", func(u *MockUtility) { u.On("ExtractAudio", mock.Anything, mock.Anything).Return("", boom) },
			func(l *Launcher, u *MockUtility) bridge.Command { return NewExtractAudio(l, u) },
			map[string]any{"videoPath": "/a.mp4"}, CodeExtractAudioError},
		{"remove", func(u *MockUtility) { u.On("RemoveAudio", mock.Anything, mock.Anything).Return("", boom) },
			func(l *Launcher, u *MockUtility) bridge.Command { return NewRemoveAudio(l, u) },
			map[string]any{"videoPath": "/a.mp4"}, CodeRemoveAudioError},
		{"scale", func(u *MockUtility) { u.On("ScaleVideo", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", boom) },
			func(l *Launcher, u *MockUtility) bridge.Command { return NewScale(l, u) },
			map[string]any{"videoPath": "/a.mp4", "width": 1, "height": 1}, CodeScaleError},
		{"rotate", func(u *MockUtility) { u.On("RotateVideo", mock.Anything, mock.Anything, mock.Anything).Return("", boom) },
			func(l *Launcher, u *MockUtility) bridge.Command { return NewRotate(l, u) },
			map[string]any{"videoPath": "/a.mp4", "rotationDegrees": 45}, CodeRotateError},
		{"thumbnail", func(u *MockUtility) { u.On("GenerateThumbnail", mock.Anything, mock.Anything, mock.Anything).Return("", boom) },
			func(l *Launcher, u *MockUtility) bridge.Command { return NewThumbnail(l, u) },
			map[string]any{"videoPath": "/a.mp4", "positionMs": 0}, CodeThumbnailError},
		{"compress", func(u *MockUtility) { u.On("CompressVideo", mock.Anything, mock.Anything, mock.Anything).Return("", boom) },
			func(l *Launcher, u *MockUtility) bridge.Command { return NewCompress(l, u) },
			map[string]any{"videoPath": "/a.mp4"}, CodeCompressError},
		{"metadata", func(u *MockUtility) { u.On("GetVideoMetadata", mock.Anything, mock.Anything).Return(nil, boom) },
			func(l *Launcher, u *MockUtility) bridge.Command { return NewMetadata(l, u) },
			map[string]any{"videoPath": "/a.mp4"}, CodeMetadataError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ops := newTestLauncher()
			utility := new(MockUtility)
			tt.setup(utility)

			r := invoke(t, tt.cmd(l, utility), tt.args)

			require.NotNil(t, r.Err)
			assert.Equal(t, tt.code, r.Err.Code)
			assert.Equal(t, "boom", r.Err.Message)
			assert.Zero(t, ops.Len())
		})
	}
}

func TestExport(t *testing.T) {
	t.Run("default key is the base name", func(t *testing.T) {
		l, _ := newTestLauncher()
		uploader := new(MockUploader)
		uploader.On("UploadFile", mock.Anything, "clip_speed_123.mp4", "/out/clip_speed_123.mp4").
			Return("https://bucket.s3.eu-west-1.amazonaws.com/clip_speed_123.mp4", nil)

		r := invoke(t, NewExport(l, uploader), map[string]any{"path": "/out/clip_speed_123.mp4"})

		require.Nil(t, r.Err)
		assert.Equal(t, "https://bucket.s3.eu-west-1.amazonaws.com/clip_speed_123.mp4", r.Value)
		uploader.AssertExpectations(t)
	})

	t.Run("explicit key", func(t *testing.T) {
		l, _ := newTestLauncher()
		uploader := new(MockUploader)
		uploader.On("UploadFile", mock.Anything, "videos/final.mp4", "/out/x.mp4").Return("https://example/videos/final.mp4", nil)

		r := invoke(t, NewExport(l, uploader), map[string]any{"path": "/out/x.mp4", "key": "videos/final.mp4"})

		require.Nil(t, r.Err)
		uploader.AssertExpectations(t)
	})

	t.Run("upload failure", func(t *testing.T) {
		l, _ := newTestLauncher()
		uploader := new(MockUploader)
		uploader.On("UploadFile", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("S3 storage is not configured"))

		r := invoke(t, NewExport(l, uploader), map[string]any{"path": "/out/x.mp4"})

		require.NotNil(t, r.Err)
		assert.Equal(t, CodeExportError, r.Err.Code)
		assert.Equal(t, "S3 storage is not configured", r.Err.Message)
	})

	t.Run("files outside the output directory are refused", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected upload %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		store, err := storage.NewS3Storage(t.TempDir(), storage.S3Config{
			Bucket:          "b",
			Region:          "r",
			Endpoint:        server.URL,
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
		})
		require.NoError(t, err)

		l, ops := newTestLauncher()
		for _, args := range []map[string]any{
			{"path": "/etc/passwd"},
			{"path": filepath.Join(store.Dir(), "..", "other.mp4")},
		} {
			r := invoke(t, NewExport(l, store), args)

			require.NotNil(t, r.Err)
			assert.Equal(t, CodeExportError, r.Err.Code)
			assert.Contains(t, r.Err.Message, "outside the output directory")
		}
		assert.Zero(t, ops.Len())
	})

	t.Run("key with a parent segment is refused", func(t *testing.T) {
		store, err := storage.NewS3Storage(t.TempDir(), storage.S3Config{Bucket: "b", Region: "r"})
		require.NoError(t, err)
		src := filepath.Join(store.Dir(), "clip.mp4")
		require.NoError(t, os.WriteFile(src, []byte("video"), 0600))

		l, _ := newTestLauncher()
		r := invoke(t, NewExport(l, store), map[string]any{"path": src, "key": "../clip.mp4"})

		require.NotNil(t, r.Err)
		assert.Equal(t, CodeExportError, r.Err.Code)
		assert.Contains(t, r.Err.Message, "invalid object key")
	})
}

func TestCancel(t *testing.T) {
	t.Run("unknown id", func(t *testing.T) {
		_, ops := newTestLauncher()
		r := invoke(t, NewCancel(ops), map[string]any{"operationId": "op-missing"})
		require.Nil(t, r.Err)
		assert.Equal(t, false, r.Value)
	})

	t.Run("by id", func(t *testing.T) {
		_, ops := newTestLauncher()
		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, ops.Register("op-1", MethodTrimVideo, cancel))

		r := invoke(t, NewCancel(ops), map[string]any{"operationId": "op-1"})

		assert.Equal(t, true, r.Value)
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
		assert.Zero(t, ops.Len())
	})

	t.Run("all", func(t *testing.T) {
		_, ops := newTestLauncher()
		for _, opID := range []string{"op-1", "op-2"} {
			_, cancel := context.WithCancel(context.Background())
			require.NoError(t, ops.Register(opID, MethodScaleVideo, cancel))
		}

		r := invoke(t, NewCancel(ops), nil)
		assert.Equal(t, true, r.Value)
		assert.Zero(t, ops.Len())

		r = invoke(t, NewCancel(ops), nil)
		assert.Equal(t, false, r.Value)
	})
}

func TestRegister(t *testing.T) {
	l, ops := newTestLauncher()
	d := bridge.NewDispatcher()

	Register(d, l, ops, new(MockUtility), new(MockUploader))

	assert.Equal(t, []string{
		MethodAdjustVideoSpeed,
		MethodCancelOperation,
		MethodCompressVideo,
		MethodExportVideo,
		MethodExtractAudio,
		MethodGenerateThumbnail,
		MethodGetVideoMetadata,
		MethodMergeVideos,
		MethodRemoveAudio,
		MethodRotateVideo,
		MethodScaleVideo,
		MethodTrimVideo,
	}, d.Methods())
}

func TestMissingArguments(t *testing.T) {
	assert.Equal(t, "Missing required arguments: path", missingArguments("path"))
	assert.Equal(t, "Missing required arguments: a or b", missingArguments("a", "b"))
	assert.Equal(t, "Missing required arguments: a, b or c", missingArguments("a", "b", "c"))
}
