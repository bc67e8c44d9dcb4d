package imports

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/slicehouse/catalog-service/app/api"
	"github.com/slicehouse/catalog-service/logger"
)

type ImportResponse struct {
	Message    string    `json:"message"`
	BatchID    string    `json:"batch_id"`
	Successful int       `json:"successful"`
	Existing   int       `json:"existing"`
	Failed     int       `json:"failed"`
	Errors     []Outcome `json:"errors"`
}

type Importer interface {
	Import(ctx context.Context, feed io.Reader) (*Report, error)
}

type ImportHandler struct {
	importer       Importer
	maxUploadBytes int64
	log            *logger.Logger
}

func NewImportHandler(i Importer, maxUploadBytes int64, log *logger.Logger) *ImportHandler {
	return &ImportHandler{
		importer:       i,
		maxUploadBytes: maxUploadBytes,
		log:            log.With("component", "imports.ImportHandler"),
	}
}

func (h *ImportHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.ErrorResponse(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		api.ErrorResponse(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if !isCSV(header) {
		api.ErrorResponse(w, http.StatusBadRequest, "Only CSV files are allowed")
		return
	}

	report, err := h.importer.Import(r.Context(), file)
	if err != nil {
		if errors.Is(err, ErrMalformedFeed) {
			api.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("csv import failed", "file", header.Filename, "error", err)
		api.ErrorResponse(w, http.StatusInternalServerError, "CSV processing failed. Transaction rolled back.")
		return
	}

	api.OKResponse(w, http.StatusOK, ImportResponse{
		Message:    "CSV import completed",
		BatchID:    report.BatchID,
		Successful: report.Created(),
		Existing:   report.Existing(),
		Failed:     report.Failed(),
		Errors:     report.FailedOutcomes(),
	})
}

func isCSV(header *multipart.FileHeader) bool {
	if strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(header.Header.Get("Content-Type"))
	return err == nil && mediaType == "text/csv"
}
