package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/videoeditor-bridge/internal/bridge"
	"github.com/maauso/videoeditor-bridge/internal/operation"
	"github.com/maauso/videoeditor-bridge/internal/storage"
)

// defaultMaxUploadBytes bounds POST /v1/files bodies.
const defaultMaxUploadBytes = 2 << 30

// maxArgumentsBytes bounds the JSON body of a method call.
const maxArgumentsBytes = 1 << 20

// Dispatcher routes bridge calls. *bridge.Dispatcher satisfies it.
type Dispatcher interface {
	Dispatch(call *bridge.Call, result bridge.Result)
	Methods() []string
}

// Operations is the view of the operation registry used by the handlers.
// *operation.Manager satisfies it.
type Operations interface {
	List() []*operation.Operation
	Cancel(opID string) bool
	Len() int
}

// Files is the part of storage.Storage used to move media in and out of the
// output directory.
type Files interface {
	SaveTemp(ctx context.Context, name string, data io.Reader) (string, error)
	LoadTemp(ctx context.Context, path string) (io.ReadCloser, error)
	CleanupTemp(ctx context.Context, paths []string) error
	Resolve(name string) (string, error)
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	dispatcher     Dispatcher
	ops            Operations
	files          Files
	validator      *validator.Validate
	logger         *slog.Logger
	maxUploadBytes int64
}

// HandlerOption is a function that configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithMaxUploadBytes limits the size of uploaded files.
func WithMaxUploadBytes(n int64) HandlerOption {
	return func(h *Handlers) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(dispatcher Dispatcher, ops Operations, files Files, logger *slog.Logger, opts ...HandlerOption) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		dispatcher:     dispatcher,
		ops:            ops,
		files:          files,
		validator:      validator.New(),
		logger:         logger,
		maxUploadBytes: defaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Operations: h.ops.Len()})
}

// ListMethods handles GET /v1/methods requests.
func (h *Handlers) ListMethods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MethodsResponse{Methods: h.dispatcher.Methods()})
}

// Invoke handles POST /v1/methods/{method} requests. The body is a JSON
// object of named arguments; an empty body means no arguments. The request
// blocks until the command answers. Answers produced by an operation carry
// its ID in the X-Operation-ID header. A client that disconnects does not
// cancel the operation; use DELETE /v1/operations/{id} for that.
func (h *Handlers) Invoke(w http.ResponseWriter, r *http.Request) {
	req := invokeRequest{Method: r.PathValue("method")}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid method name", "VALIDATION_ERROR")
		return
	}

	args, err := decodeArguments(http.MaxBytesReader(w, r.Body, maxArgumentsBytes))
	if err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("method", req.Method),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	reply := bridge.NewReplyChannel()
	h.dispatcher.Dispatch(bridge.NewCall(req.Method, args), reply)

	res, err := reply.Wait(r.Context())
	if err != nil {
		h.logger.Info("client went away before the reply",
			slog.String("method", req.Method),
			slog.String("error", err.Error()),
		)
		return
	}

	if res.OperationID != "" {
		w.Header().Set(OperationIDHeader, res.OperationID)
	}
	if res.Err != nil {
		writeJSON(w, statusForCode(res.Err.Code), ErrorResponse{
			Error:   res.Err.Message,
			Code:    res.Err.Code,
			Details: res.Err.Details,
		})
		return
	}
	writeJSON(w, http.StatusOK, InvokeResponse{Result: res.Value})
}

// ListOperations handles GET /v1/operations requests.
func (h *Handlers) ListOperations(w http.ResponseWriter, r *http.Request) {
	ops := h.ops.List()
	resp := OperationsResponse{Operations: make([]OperationResponse, 0, len(ops))}
	for _, op := range ops {
		resp.Operations = append(resp.Operations, OperationResponse{
			ID:        op.ID,
			Method:    op.Method,
			Status:    string(op.GetStatus()),
			StartedAt: op.StartedAt,
			ElapsedMs: op.Elapsed().Milliseconds(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// CancelOperation handles DELETE /v1/operations/{id} requests.
func (h *Handlers) CancelOperation(w http.ResponseWriter, r *http.Request) {
	opID := r.PathValue("id")
	if opID == "" {
		writeError(w, http.StatusBadRequest, "operation ID is required", "MISSING_OPERATION_ID")
		return
	}

	if !h.ops.Cancel(opID) {
		writeError(w, http.StatusNotFound, "operation not found", "OPERATION_NOT_FOUND")
		return
	}

	h.logger.Info("operation cancelled", slog.String("operation_id", opID))
	w.WriteHeader(http.StatusNoContent)
}

// UploadFile handles POST /v1/files?name=<file name> requests. The raw body
// is stored in the output directory.
func (h *Handlers) UploadFile(w http.ResponseWriter, r *http.Request) {
	req := uploadRequest{Name: r.URL.Query().Get("name")}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "query parameter name must be a plain file name", "VALIDATION_ERROR")
		return
	}

	body := http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	path, err := h.files.SaveTemp(r.Context(), req.Name, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file exceeds %d bytes", tooLarge.Limit), "FILE_TOO_LARGE")
			return
		}
		h.logger.Error("failed to save upload",
			slog.String("name", req.Name),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to save file", "FILE_SAVE_FAILED")
		return
	}

	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}

	h.logger.Info("file uploaded",
		slog.String("path", path),
		slog.Int64("size", size),
	)
	writeJSON(w, http.StatusCreated, FileResponse{
		Name: filepath.Base(path),
		Path: path,
		Size: size,
	})
}

// DownloadFile handles GET /v1/files/{name} requests.
func (h *Handlers) DownloadFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	path, err := h.files.Resolve(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file name", "INVALID_FILE_NAME")
		return
	}

	rc, err := h.files.LoadTemp(r.Context(), path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "file not found", "FILE_NOT_FOUND")
			return
		}
		h.logger.Error("failed to open file",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to read file", "FILE_READ_FAILED")
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Type", contentTypeFor(name))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	if f, ok := rc.(*os.File); ok {
		if info, err := f.Stat(); err == nil {
			w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
		}
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("failed to stream file",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}

// DeleteFile handles DELETE /v1/files/{name} requests. Deleting a file that
// does not exist succeeds.
func (h *Handlers) DeleteFile(w http.ResponseWriter, r *http.Request) {
	path, err := h.files.Resolve(r.PathValue("name"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file name", "INVALID_FILE_NAME")
		return
	}

	if err := h.files.CleanupTemp(r.Context(), []string{path}); err != nil {
		h.logger.Error("failed to delete file",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to delete file", "FILE_DELETE_FAILED")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeArguments reads a JSON object of arguments. Numbers are kept as
// json.Number so integers survive unchanged.
func decodeArguments(body io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var args map[string]any
	if err := dec.Decode(&args); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after arguments object")
	}
	return args, nil
}

// mediaTypes covers the outputs this service produces; the mime package only
// knows them when the host has a mime.types file.
var mediaTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4a":  "audio/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".jpg":  "image/jpeg",
}

func contentTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := mediaTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// statusForCode maps bridge error codes to HTTP statuses.
func statusForCode(code string) int {
	switch {
	case code == bridge.CodeInvalidArguments:
		return http.StatusBadRequest
	case code == bridge.CodeNotImplemented:
		return http.StatusNotFound
	case strings.HasSuffix(code, "_ERROR"):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// Compile-time check that the local storage can back the file endpoints.
var _ Files = (storage.Storage)(nil)
