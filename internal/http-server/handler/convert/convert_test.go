package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"heic-converter/internal/codec"
	"heic-converter/internal/domain"
	conversion_uc "heic-converter/internal/usecase/conversion"
	"heic-converter/internal/usecase/processor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
)

type part struct {
	field    string
	filename string
	isFile   bool
	content  []byte
}

func multipartRequest(t *testing.T, parts ...part) *http.Request {
	t.Helper()

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	for _, p := range parts {
		if p.isFile {
			fw, err := mw.CreateFormFile(p.field, p.filename)
			require.NoError(t, err)
			_, err = fw.Write(p.content)
			require.NoError(t, err)
			continue
		}
		require.NoError(t, mw.WriteField(p.field, string(p.content)))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func filePart(name string, content []byte) part {
	return part{field: "file", filename: name, isFile: true, content: content}
}

func formatPart(format string) part {
	return part{field: "format", content: []byte(format)}
}

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 100})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newHandler(t *testing.T, maxUploadSize int64) *ConvertHandler {
	t.Helper()
	codec.Register()
	zlog.Init()

	uc := conversion_uc.NewConversionUsecase(processor.NewImageProcessor(&zlog.Logger), &zlog.Logger)
	return NewConvertHandler(uc, &zlog.Logger, maxUploadSize)
}

func serve(h *ConvertHandler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Convert(rec, req)
	return rec
}

func assertJSONError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()

	assert.Equal(t, status, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"error": message}, body)
}

func TestConvertToJPEG(t *testing.T) {
	h := newHandler(t, 0)

	rec := serve(h, multipartRequest(t, filePart("receipt.december.heic", pngFixture(t, 24, 10)), formatPart("jpg")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="receipt.december.jpg"`, rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Header().Get("X-Conversion-ID"))

	img, err := jpeg.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 24, img.Bounds().Dx())
	assert.Equal(t, 10, img.Bounds().Dy())
	_, _, _, a := img.At(3, 3).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestConvertToPNG(t *testing.T) {
	h := newHandler(t, 0)

	rec := serve(h, multipartRequest(t, filePart("photo.heic", pngFixture(t, 5, 8)), formatPart("PNG")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="photo.png"`, rec.Header().Get("Content-Disposition"))

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 5, 8), img.Bounds())
}

func TestConvertHEICRoundTrip(t *testing.T) {
	h := newHandler(t, 0)

	tests := []struct {
		file     string
		format   string
		mime     string
		download string
	}{
		{file: "test8.heic", format: "jpg", mime: "image/jpeg", download: "test8.jpg"},
		{file: "test8.heic", format: "png", mime: "image/png", download: "test8.png"},
		{file: "gray.heic", format: "jpg", mime: "image/jpeg", download: "gray.jpg"},
		{file: "gray.heic", format: "png", mime: "image/png", download: "gray.png"},
	}

	for _, tt := range tests {
		t.Run(tt.file+"/"+tt.format, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join("..", "..", "..", "codec", "testdata", tt.file))
			require.NoError(t, err)

			src, name, err := image.DecodeConfig(bytes.NewReader(data))
			require.NoError(t, err)
			require.Equal(t, codec.FormatHEIC, name)

			rec := serve(h, multipartRequest(t, filePart(tt.file, data), formatPart(tt.format)))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.mime, rec.Header().Get("Content-Type"))
			assert.Equal(t, `attachment; filename="`+tt.download+`"`, rec.Header().Get("Content-Disposition"))

			img, name, err := image.Decode(bytes.NewReader(rec.Body.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, tt.format == "jpg", name == "jpeg")
			assert.Equal(t, src.Width, img.Bounds().Dx())
			assert.Equal(t, src.Height, img.Bounds().Dy())

			if tt.format == "jpg" {
				_, isYCbCr := img.(*image.YCbCr)
				assert.True(t, isYCbCr, "jpeg output must carry three components")
			}
		})
	}
}

func TestConvertDefaultsToJPEG(t *testing.T) {
	h := newHandler(t, 0)
	data := pngFixture(t, 6, 6)

	withoutFormat := serve(h, multipartRequest(t, filePart("a.heic", data)))
	withJPG := serve(h, multipartRequest(t, filePart("a.heic", data), formatPart("jpg")))

	require.Equal(t, http.StatusOK, withoutFormat.Code)
	assert.Equal(t, "image/jpeg", withoutFormat.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="a.jpg"`, withoutFormat.Header().Get("Content-Disposition"))
	assert.Equal(t, withJPG.Body.Bytes(), withoutFormat.Body.Bytes())
}

func TestConvertIsIdempotent(t *testing.T) {
	h := newHandler(t, 0)
	data := pngFixture(t, 12, 12)

	for _, format := range []string{"jpg", "png"} {
		first := serve(h, multipartRequest(t, filePart("a.heic", data), formatPart(format)))
		second := serve(h, multipartRequest(t, filePart("a.heic", data), formatPart(format)))

		require.Equal(t, http.StatusOK, first.Code)
		assert.True(t, bytes.Equal(first.Body.Bytes(), second.Body.Bytes()), "format %s", format)
	}
}

func TestConvertValidation(t *testing.T) {
	tests := []struct {
		name    string
		parts   []part
		message string
	}{
		{
			name:    "no file part",
			parts:   []part{formatPart("jpg")},
			message: MsgNoFilePart,
		},
		{
			name:    "file under another field",
			parts:   []part{{field: "upload", filename: "a.heic", isFile: true, content: []byte("x")}},
			message: MsgNoFilePart,
		},
		{
			name:    "empty filename",
			parts:   []part{filePart("", nil), formatPart("jpg")},
			message: MsgNoSelectedFile,
		},
		{
			name:    "unsupported format",
			parts:   []part{filePart("a.heic", []byte("x")), formatPart("gif")},
			message: MsgInvalidFormat,
		},
		{
			name:    "empty format",
			parts:   []part{filePart("a.heic", []byte("x")), formatPart("")},
			message: MsgInvalidFormat,
		},
		{
			name:    "missing file wins over bad format",
			parts:   []part{formatPart("gif")},
			message: MsgNoFilePart,
		},
	}

	h := newHandler(t, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, multipartRequest(t, tt.parts...))
			assertJSONError(t, rec, http.StatusBadRequest, tt.message)
		})
	}
}

func TestConvertNotMultipart(t *testing.T) {
	h := newHandler(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader("format=jpg"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	assertJSONError(t, serve(h, req), http.StatusBadRequest, MsgNoFilePart)
}

func TestConvertCorruptInput(t *testing.T) {
	h := newHandler(t, 0)

	rec := serve(h, multipartRequest(t, filePart("broken.heic", []byte("not an image at all")), formatPart("jpg")))

	assertJSONError(t, rec, http.StatusInternalServerError, MsgConversionFailed)
}

func TestConvertTooLarge(t *testing.T) {
	h := newHandler(t, 1024)

	rec := serve(h, multipartRequest(t, filePart("big.heic", bytes.Repeat([]byte("a"), 4096))))

	assertJSONError(t, rec, http.StatusRequestEntityTooLarge, MsgFileTooLarge)
}

func TestConvertTooLargeWithoutContentLength(t *testing.T) {
	h := newHandler(t, 1024)

	req := multipartRequest(t, filePart("big.heic", bytes.Repeat([]byte("a"), 4096)))
	req.ContentLength = -1
	req.Body = io.NopCloser(req.Body)

	assertJSONError(t, serve(h, req), http.StatusRequestEntityTooLarge, MsgFileTooLarge)
}

type usecaseStub struct {
	err error
}

func (u usecaseStub) Convert(ctx context.Context, req *domain.UploadRequest) (*domain.ConversionResult, error) {
	return nil, u.err
}

func TestHandleConvertErrorMapping(t *testing.T) {
	zlog.Init()

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid format", conversion_uc.ErrInvalidFormat, http.StatusBadRequest, MsgInvalidFormat},
		{"conversion failed", conversion_uc.ErrConversionFailed, http.StatusInternalServerError, MsgConversionFailed},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, MsgConversionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewConvertHandler(usecaseStub{err: tt.err}, &zlog.Logger, 0)
			rec := serve(h, multipartRequest(t, filePart("a.heic", []byte("x"))))
			assertJSONError(t, rec, tt.status, tt.message)
		})
	}
}

func TestAttachmentDisposition(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"photo.jpg", `attachment; filename="photo.jpg"`},
		{`we"ird.png`, `attachment; filename="we\"ird.png"`},
		{"фото.jpg", `attachment; filename="____.jpg"; filename*=UTF-8''%D1%84%D0%BE%D1%82%D0%BE.jpg`},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, attachmentDisposition(tt.filename))
		})
	}
}

func TestIsBodyTooLarge(t *testing.T) {
	wrapped := fmt.Errorf("multipart: NextPart: %w", &http.MaxBytesError{Limit: 10})

	assert.True(t, isBodyTooLarge(wrapped))
	assert.False(t, isBodyTooLarge(errors.New("http: request body too large")))
	assert.False(t, isBodyTooLarge(io.ErrUnexpectedEOF))
}
