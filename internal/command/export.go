package command

import (
	"context"
	"path/filepath"

	"github.com/maauso/videoeditor-bridge/internal/bridge"
)

const (
	MethodExportVideo = "exportVideo"
	CodeExportError   = "EXPORT_ERROR"
)

// Uploader is the part of storage.Storage used by Export.
type Uploader interface {
	UploadFile(ctx context.Context, key, path string) (string, error)
}

// Export handles exportVideo(path) with an optional object key. The key
// defaults to the file's base name. The reply is the public URL. The
// uploader only accepts files inside the output directory; anything else
// fails as EXPORT_ERROR.
type Export struct {
	launcher *Launcher
	uploader Uploader
}

// NewExport creates the exportVideo command.
func NewExport(launcher *Launcher, uploader Uploader) *Export {
	return &Export{launcher: launcher, uploader: uploader}
}

// Execute implements bridge.Command.
func (c *Export) Execute(call *bridge.Call, result bridge.Result) {
	path, ok := call.String("path")
	if !ok {
		result.Error(bridge.CodeInvalidArguments, missingArguments("path"), nil)
		return
	}
	key := filepath.Base(path)
	if call.Has("key") {
		k, ok := call.String("key")
		if !ok || k == "" {
			result.Error(bridge.CodeInvalidArguments, invalidArgument("key", "a non-empty string"), nil)
			return
		}
		key = k
	}

	c.launcher.Launch(MethodExportVideo, CodeExportError, result, func(ctx context.Context) (any, error) {
		return c.uploader.UploadFile(ctx, key, path)
	})
}
