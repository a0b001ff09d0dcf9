package command

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/maauso/videoeditor-bridge/internal/bridge"
	"github.com/maauso/videoeditor-bridge/internal/media"
	"github.com/maauso/videoeditor-bridge/internal/operation"
)

// MockUtility is a mock implementation of media.Utility.
type MockUtility struct {
	mock.Mock
}

func (m *MockUtility) AdjustVideoSpeed(ctx context.Context, videoPath string, speed float64) (string, error) {
	args := m.Called(ctx, videoPath, speed)
	return args.String(0), args.Error(1)
}

func (m *MockUtility) TrimVideo(ctx context.Context, videoPath string, start, end time.Duration) (string, error) {
	args := m.Called(ctx, videoPath, start, end)
	return args.String(0), args.Error(1)
}

func (m *MockUtility) MergeVideos(ctx context.Context, videoPaths []string) (string, error) {
	args := m.Called(ctx, videoPaths)
	return args.String(0), args.Error(1)
}

func (m *MockUtility) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	args := m.Called(ctx, videoPath)
	return args.String(0), args.Error(1)
}

func (m *MockUtility) RemoveAudio(ctx context.Context, videoPath string) (string, error) {
	args := m.Called(ctx, videoPath)
	return args.String(0), args.Error(1)
}

func (m *MockUtility) ScaleVideo(ctx context.Context, videoPath string, width, height int) (string, error) {
	args := m.Called(ctx, videoPath, width, height)
	return args.String(0), args.Error(1)
}

func (m *MockUtility) RotateVideo(ctx context.Context, videoPath string, degrees int) (string, error) {
	args := m.Called(ctx, videoPath, degrees)
	return args.String(0), args.Error(1)
}

func (m *MockUtility) GenerateThumbnail(ctx context.Context, videoPath string, opts media.ThumbnailOptions) (string, error) {
	args := m.Called(ctx, videoPath, opts)
	return args.String(0), args.Error(1)
}

func (m *MockUtility) CompressVideo(ctx context.Context, videoPath string, targetHeight int) (string, error) {
	args := m.Called(ctx, videoPath, targetHeight)
	return args.String(0), args.Error(1)
}

func (m *MockUtility) GetVideoMetadata(ctx context.Context, videoPath string) (*media.Metadata, error) {
	args := m.Called(ctx, videoPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*media.Metadata), args.Error(1)
}

// MockUploader is a mock implementation of Uploader.
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) UploadFile(ctx context.Context, key, path string) (string, error) {
	args := m.Called(ctx, key, path)
	return args.String(0), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLauncher(opts ...LauncherOption) (*Launcher, *operation.Manager) {
	ops := operation.NewManager(testLogger())
	return NewLauncher(ops, testLogger(), opts...), ops
}

// invoke executes cmd and waits for its reply.
func invoke(t *testing.T, cmd bridge.Command, args map[string]any) bridge.Reply {
	t.Helper()

	reply := bridge.NewReplyChannel()
	cmd.Execute(bridge.NewCall("test", args), reply)
	return waitReply(t, reply)
}
