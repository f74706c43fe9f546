package handler

import (
	"log/slog"
	"net/http"

	"github.com/S1riyS/sqlfs/internal/models"
	"github.com/S1riyS/sqlfs/internal/pkg/kerrors"
	"github.com/S1riyS/sqlfs/internal/service"
	"github.com/S1riyS/sqlfs/pkg/binary"
	"github.com/S1riyS/sqlfs/pkg/logging"
	"github.com/S1riyS/sqlfs/pkg/logging/slogext"
)

// maxReadLength caps the buffer a single read request may allocate.
const maxReadLength = 64 << 20

type Handler struct {
	service service.FileSystemService
}

func NewHandler(service service.FileSystemService) *Handler {
	return &Handler{service: service}
}

// query parses the request parameters. It answers and returns nil when
// the method is wrong.
func (h *Handler) query(w http.ResponseWriter, r *http.Request) *params {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil
	}
	return newParams(r.URL.Query())
}

// invalid answers with StatusInvalidParameter when p carries an error.
func (h *Handler) invalid(w http.ResponseWriter, r *http.Request, op string, p *params) bool {
	if p.Err() == nil {
		return false
	}
	logging.GetLoggerFromContextWithOp(r.Context(), op).Warn("Invalid request", slogext.Err(p.Err()))
	h.respond(w, r, op, kerrors.StatusInvalidParameter, nil)
	return true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, op string, status kerrors.Status, data []byte) {
	if err := binary.WriteResponse(w, int64(status), data); err != nil {
		logging.GetLoggerFromContextWithOp(r.Context(), op).Error("Failed to write response", slogext.Err(err))
	}
}

// respondEncoded encodes the payload only for successful statuses.
func respondEncoded[T any](h *Handler, w http.ResponseWriter, r *http.Request, op string, status kerrors.Status, value T, encode func(T) ([]byte, error)) {
	if !status.IsSuccess() {
		h.respond(w, r, op, status, nil)
		return
	}
	data, err := encode(value)
	if err != nil {
		logging.GetLoggerFromContextWithOp(r.Context(), op).Error("Failed to encode payload", slogext.Err(err))
		h.respond(w, r, op, kerrors.StatusInternalError, nil)
		return
	}
	h.respond(w, r, op, status, data)
}

func (h *Handler) HandleCreateFile(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleCreateFile"

	p := h.query(w, r)
	if p == nil {
		return
	}
	path := p.String("path")
	mode := models.FileMode(p.Uint32("mode"))
	access := models.FileAccess(p.OptionalUint32("access", uint32(models.AccessGenericRead)))
	attributes := models.FileAttributes(p.OptionalUint32("attributes", uint32(models.AttributeNormal)))
	info := &models.OpenInfo{IsDirectory: p.Bool("directory")}
	if h.invalid(w, r, op, p) {
		return
	}

	ctx := r.Context()
	status := h.service.CreateFile(ctx, path, access, mode, attributes, info)
	if status.IsSuccess() {
		// The connection is the handle; it ends with the request.
		defer h.service.CloseFile(ctx, path, info)
	}

	fi := models.FileInformation{FileName: path, Attributes: models.AttributeNormal}
	if info.Context != nil {
		fi = info.Context.Information()
	}
	if info.IsDirectory {
		fi.Attributes = models.AttributeDirectory
	}
	respondEncoded(h, w, r, op, status, &fi, binary.EncodeFileInformation)
}

func (h *Handler) HandleRead(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleRead"

	p := h.query(w, r)
	if p == nil {
		return
	}
	path := p.String("path")
	length := p.Int64("len")
	offset := p.Int64("offset")
	if length < 0 || length > maxReadLength {
		p.fail("len", "out of range")
	}
	if h.invalid(w, r, op, p) {
		return
	}

	buffer := make([]byte, length)
	read, status := h.service.ReadFile(r.Context(), path, buffer, offset)
	if !status.IsSuccess() {
		h.respond(w, r, op, status, nil)
		return
	}

	// Only the bytes actually read
	h.respond(w, r, op, status, buffer[:read])
}

func (h *Handler) HandleWrite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	const op = "handler.HandleWrite"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)

	p := h.query(w, r)
	if p == nil {
		return
	}
	path := p.String("path")
	offset := p.Int64("offset")
	data := p.Base64("data")
	if h.invalid(w, r, op, p) {
		return
	}

	logger.Debug("Write request",
		slog.String("path", path),
		slog.Int64("offset", offset),
		slog.Int("data_len", len(data)),
	)

	written, status := h.service.WriteFile(ctx, path, data, offset)
	if !status.IsSuccess() {
		h.respond(w, r, op, status, nil)
		return
	}

	if err := binary.WriteInt64Response(w, int64(status), int64(written)); err != nil {
		logger.Error("Failed to write response", slogext.Err(err))
	}
}

func (h *Handler) HandleFlush(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleFlush"

	p := h.query(w, r)
	if p == nil {
		return
	}
	path := p.String("path")
	if h.invalid(w, r, op, p) {
		return
	}

	h.respond(w, r, op, h.service.FlushFileBuffers(r.Context(), path), nil)
}

func (h *Handler) HandleFileInformation(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleFileInformation"

	p := h.query(w, r)
	if p == nil {
		return
	}
	path := p.String("path")
	if h.invalid(w, r, op, p) {
		return
	}

	fi, status := h.service.GetFileInformation(r.Context(), path)
	respondEncoded(h, w, r, op, status, &fi, binary.EncodeFileInformation)
}

func (h *Handler) HandleFindFiles(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleFindFiles"

	p := h.query(w, r)
	if p == nil {
		return
	}
	path := p.String("path")
	pattern := p.OptionalString("pattern")
	if h.invalid(w, r, op, p) {
		return
	}

	files, status := h.service.FindFilesWithPattern(r.Context(), path, pattern)
	respondEncoded(h, w, r, op, status, files, binary.EncodeFileInformationList)
}

func (h *Handler) HandleFindStreams(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleFindStreams"

	p := h.query(w, r)
	if p == nil {
		return
	}
	path := p.String("path")
	if h.invalid(w, r, op, p) {
		return
	}

	streams, status := h.service.FindStreams(r.Context(), path)
	respondEncoded(h, w, r, op, status, streams, binary.EncodeFileInformationList)
}

func (h *Handler) HandleSetAttributes(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleSetAttributes"

	p := h.query(w, r)
	if p == nil {
		return
	}
	path := p.String("path")
	attributes := models.FileAttributes(p.Uint32("attributes"))
	if h.invalid(w, r, op, p) {
		return
	}

	h.respond(w, r, op, h.service.SetFileAttributes(r.Context(), path, attributes, nil), nil)
}

func (h *Handler) HandleSetTime(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleSetTime"

	p := h.query(w, r)
	if p == nil {
		return
	}
	path := p.String("path")
	creation := p.Time("creation")
	access := p.Time("access")
	modify := p.Time("modify")
	if h.invalid(w, r, op, p) {
		return
	}

	h.respond(w, r, op, h.service.SetFileTime(r.Context(), path, creation, access, modify), nil)
}

func (h *Handler) HandleDeleteFile(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleDeleteFile"

	p := h.query(w, r)
	if p == nil {
		return
	}
	path := p.String("path")
	if h.invalid(w, r, op, p) {
		return
	}

	h.respond(w, r, op, h.service.DeleteFile(r.Context(), path), nil)
}

func (h *Handler) HandleDeleteDirectory(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleDeleteDirectory"

	p := h.query(w, r)
	if p == nil {
		return
	}
	path := p.String("path")
	if h.invalid(w, r, op, p) {
		return
	}

	h.respond(w, r, op, h.service.DeleteDirectory(r.Context(), path), nil)
}

func (h *Handler) HandleMove(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleMove"

	p := h.query(w, r)
	if p == nil {
		return
	}
	path := p.String("path")
	newPath := p.String("new_path")
	replace := p.Bool("replace")
	if h.invalid(w, r, op, p) {
		return
	}

	h.respond(w, r, op, h.service.MoveFile(r.Context(), path, newPath, replace), nil)
}

func (h *Handler) HandleSetEndOfFile(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleSetEndOfFile"

	p := h.query(w, r)
	if p == nil {
		return
	}
	path := p.String("path")
	length := p.Int64("length")
	if h.invalid(w, r, op, p) {
		return
	}

	h.respond(w, r, op, h.service.SetEndOfFile(r.Context(), path, length), nil)
}

func (h *Handler) HandleSetAllocationSize(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleSetAllocationSize"

	p := h.query(w, r)
	if p == nil {
		return
	}
	path := p.String("path")
	length := p.Int64("length")
	if h.invalid(w, r, op, p) {
		return
	}

	h.respond(w, r, op, h.service.SetAllocationSize(r.Context(), path, length), nil)
}

func (h *Handler) HandleDiskFreeSpace(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleDiskFreeSpace"

	if h.query(w, r) == nil {
		return
	}

	space, status := h.service.GetDiskFreeSpace(r.Context())
	respondEncoded(h, w, r, op, status, &space, binary.EncodeDiskSpace)
}

func (h *Handler) HandleVolumeInformation(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleVolumeInformation"

	if h.query(w, r) == nil {
		return
	}

	vol, status := h.service.GetVolumeInformation(r.Context())
	respondEncoded(h, w, r, op, status, &vol, binary.EncodeVolumeInformation)
}

func (h *Handler) HandleSecurity(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleSecurity"

	p := h.query(w, r)
	if p == nil {
		return
	}
	path := p.String("path")
	if h.invalid(w, r, op, p) {
		return
	}

	desc, status := h.service.GetFileSecurity(r.Context(), path)
	respondEncoded(h, w, r, op, status, desc, binary.EncodeSecurityDescriptor)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok","service":"sqlfs"}`))
}
