package convert

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"heic-converter/internal/domain"
	"heic-converter/internal/http-server/handler/convert/dto"
	conversion_uc "heic-converter/internal/usecase/conversion"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

const (
	maxMemory = 32 << 20

	fieldFile   = "file"
	fieldFormat = "format"
)

type ConvertHandler struct {
	usecase       conversionUsecase
	validate      *validator.Validate
	logger        *zlog.Zerolog
	maxUploadSize int64
}

func NewConvertHandler(usecase conversionUsecase, logger *zlog.Zerolog, maxUploadSize int64) *ConvertHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = domain.DefaultMaxUploadSize
	}
	return &ConvertHandler{
		usecase:       usecase,
		validate:      validator.New(),
		logger:        logger,
		maxUploadSize: maxUploadSize,
	}
}

func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.ContentLength > h.maxUploadSize {
		h.logger.Warn().Int64("content_length", r.ContentLength).Int64("limit", h.maxUploadSize).Msg("Upload exceeds size limit")
		h.respondError(w, http.StatusRequestEntityTooLarge, MsgFileTooLarge)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		if isBodyTooLarge(err) {
			h.logger.Warn().Int64("limit", h.maxUploadSize).Msg("Upload exceeds size limit")
			h.respondError(w, http.StatusRequestEntityTooLarge, MsgFileTooLarge)
			return
		}
		h.logger.Warn().Err(err).Msg("Failed to parse multipart form")
		h.respondError(w, http.StatusBadRequest, MsgNoFilePart)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, msg := h.formFile(r)
	if msg != "" {
		h.respondError(w, http.StatusBadRequest, msg)
		return
	}
	defer file.Close()

	req := dto.ConvertRequest{
		Filename: header.Filename,
		Format:   h.formatFromForm(r.MultipartForm),
	}
	if err := h.validate.Struct(req); err != nil {
		h.logger.Warn().Str("format", req.Format).Str("filename", req.Filename).Msg("Invalid format requested")
		h.respondError(w, http.StatusBadRequest, MsgInvalidFormat)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", header.Filename).Msg("Failed to read uploaded file")
		h.respondError(w, http.StatusInternalServerError, MsgConversionFailed)
		return
	}

	result, err := h.usecase.Convert(ctx, &domain.UploadRequest{
		Data:     data,
		Filename: header.Filename,
		Format:   domain.Format(req.Format),
	})
	if err != nil {
		h.handleConvertError(w, err, header.Filename)
		return
	}

	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Content-Disposition", attachmentDisposition(result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("X-Conversion-ID", result.ID)
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(result.Data); err != nil {
		h.logger.Error().
			Err(err).
			Str("conversion_id", result.ID).
			Msg("Failed to write converted image")
	}
}

// formFile returns the uploaded file or the validation message to send.
// A part named "file" with an empty filename is parsed as a plain value,
// so its presence in Value means "sent but nothing selected".
func (h *ConvertHandler) formFile(r *http.Request) (multipart.File, *multipart.FileHeader, string) {
	form := r.MultipartForm

	headers := form.File[fieldFile]
	if len(headers) == 0 {
		if _, ok := form.Value[fieldFile]; ok {
			return nil, nil, MsgNoSelectedFile
		}
		return nil, nil, MsgNoFilePart
	}

	header := headers[0]
	if header.Filename == "" || header.Filename == "." {
		return nil, nil, MsgNoSelectedFile
	}

	file, err := header.Open()
	if err != nil {
		h.logger.Warn().Err(err).Str("filename", header.Filename).Msg("Failed to open uploaded file")
		return nil, nil, MsgNoFilePart
	}

	return file, header, ""
}

func (h *ConvertHandler) formatFromForm(form *multipart.Form) string {
	values, ok := form.Value[fieldFormat]
	if !ok || len(values) == 0 {
		return string(domain.DefaultFormat)
	}
	return strings.ToLower(values[0])
}

func (h *ConvertHandler) handleConvertError(w http.ResponseWriter, err error, filename string) {
	switch {
	case errors.Is(err, conversion_uc.ErrInvalidFormat):
		h.respondError(w, http.StatusBadRequest, MsgInvalidFormat)
	default:
		h.logger.Error().Err(err).Str("filename", filename).Msg("Conversion failed")
		h.respondError(w, http.StatusInternalServerError, MsgConversionFailed)
	}
}

func (h *ConvertHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Interface("data", data).Msg("Failed to encode response")
	}
}

func (h *ConvertHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, dto.ErrorResponse{Error: message})
}

func isBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

func attachmentDisposition(filename string) string {
	if isPlainASCII(filename) {
		escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(filename)
		return fmt.Sprintf(`attachment; filename="%s"`, escaped)
	}
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		asciiFallback(filename), url.PathEscape(filename))
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

func asciiFallback(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('_')
		case r >= 0x20 && r <= 0x7e:
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
