package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"fjacquet/fatura-extractor/internal/bank"
	"fjacquet/fatura-extractor/internal/batch"
	"fjacquet/fatura-extractor/internal/detector"
	"fjacquet/fatura-extractor/internal/export"
	"fjacquet/fatura-extractor/internal/fileutils"
	"fjacquet/fatura-extractor/internal/logging"
	"fjacquet/fatura-extractor/internal/models"
	"fjacquet/fatura-extractor/internal/parsererror"
	"fjacquet/fatura-extractor/internal/patterns"
	"fjacquet/fatura-extractor/internal/validation"

	"github.com/google/uuid"
)

// multipartMemory is the part of a multipart body kept in memory.
const multipartMemory = 8 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type banksResponse struct {
	Version string              `json:"registry_version"`
	Banks   []detector.BankInfo `json:"banks"`
}

type patternsResponse struct {
	Version   string                 `json:"registry_version"`
	Patterns  patterns.RawPatternSet `json:"patterns"`
	Overrides []patterns.Override    `json:"overrides"`
}

type batchItem struct {
	File    string            `json:"arquivo"`
	Invoice export.InvoiceDTO `json:"fatura"`
}

type batchResponse struct {
	ProcessID string            `json:"process_id"`
	Results   []batchItem       `json:"results"`
	Errors    []batch.FileError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: s.version})
}

func (s *Server) handleBanks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, banksResponse{
		Version: s.c.GetRegistry().Version(),
		Banks:   s.c.GetEngine().ListAvailableBanks(),
	})
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	id, ok := bank.Parse(r.PathValue("bank"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown bank: "+r.PathValue("bank"))
		return
	}
	reg := s.c.GetRegistry()
	writeJSON(w, http.StatusOK, patternsResponse{
		Version:   reg.Version(),
		Patterns:  reg.Raw(id),
		Overrides: reg.Overrides(),
	})
}

func (s *Server) maxUploadBytes() int64 {
	return s.c.GetConfig().MaxPDFBytes()
}

// saveUpload stores one multipart file in the upload directory.
func (s *Server) saveUpload(fh *multipart.FileHeader) (string, error) {
	if !validation.HasPDFExtension(fh.Filename) {
		return "", &parsererror.ValidationError{FilePath: fh.Filename, Reason: "file extension must be .pdf"}
	}
	if err := validation.CheckSize(fh.Filename, fh.Size, s.maxUploadBytes()); err != nil {
		return "", err
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	path, err := fileutils.SaveTempFile(s.cfg.UploadDir, ".pdf", f, s.maxUploadBytes())
	if errors.Is(err, fileutils.ErrTooLarge) {
		return "", &parsererror.ValidationError{FilePath: fh.Filename, Reason: "file exceeds size limit"}
	}
	return path, err
}

func (s *Server) removeUpload(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.WithError(err).Warn("Failed to remove temporary file",
			logging.F(logging.FieldFile, path))
	}
}

// extract runs one saved upload through the pipeline and records metrics.
func (s *Server) extract(ctx context.Context, path string, override bank.ID) (*models.Invoice, error) {
	inv, err := s.c.ExtractPDF(ctx, path, override)
	if err != nil {
		s.metrics.failures.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}
	s.metrics.invoices.WithLabelValues(string(inv.BankID)).Inc()
	return inv, nil
}

func failureReason(err error) string {
	switch {
	case parsererror.IsValidation(err):
		return "validation"
	case parsererror.IsInvalidFormat(err):
		return "no_text"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal"
	}
}

func statusFor(err error) int {
	switch failureReason(err) {
	case "validation":
		return http.StatusBadRequest
	case "no_text":
		return http.StatusUnprocessableEntity
	case "timeout":
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request, files int) bool {
	limit := s.maxUploadBytes()*int64(files) + multipartMemory
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !s.parseMultipart(w, r, 1) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	format, err := export.ParseFormat(r.FormValue("export_format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var override bank.ID
	if raw := r.FormValue("bank_id"); raw != "" {
		id, ok := bank.Parse(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown bank_id: "+raw)
			return
		}
		override = id
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}

	path, err := s.saveUpload(files[0])
	if err != nil {
		s.metrics.failures.WithLabelValues(failureReason(err)).Inc()
		writeError(w, statusFor(err), err.Error())
		return
	}
	defer s.removeUpload(path)

	inv, err := s.extract(r.Context(), path, override)
	if err != nil {
		s.logger.WithError(err).Warn("Upload extraction failed",
			logging.F(logging.FieldFile, files[0].Filename))
		writeError(w, statusFor(err), err.Error())
		return
	}

	if format == export.FormatJSON {
		writeJSON(w, http.StatusOK, export.NewInvoiceDTO(inv))
		return
	}

	var buf bytes.Buffer
	if err := s.c.GetExporter().Write(&buf, format, inv); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.ReportName(format, time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if !s.parseMultipart(w, r, s.cfg.MaxBatchFiles) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["files[]"]
	}
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}
	if len(headers) > s.cfg.MaxBatchFiles {
		writeError(w, http.StatusBadRequest, "too many files in one batch")
		return
	}

	processID := uuid.NewString()
	w.Header().Set("X-Process-Id", processID)
	resp := batchResponse{ProcessID: processID, Results: []batchItem{}, Errors: []batch.FileError{}}

	var paths, names []string
	for _, fh := range headers {
		path, err := s.saveUpload(fh)
		if err != nil {
			resp.Errors = append(resp.Errors, batch.FileError{File: fh.Filename, Error: err.Error()})
			continue
		}
		defer s.removeUpload(path)
		paths = append(paths, path)
		names = append(names, fh.Filename)
	}

	results := s.processor.Process(r.Context(), paths, func(ctx context.Context, path string) (*models.Invoice, error) {
		return s.extract(ctx, path, "")
	})
	for i, res := range results {
		if res.Err != nil {
			resp.Errors = append(resp.Errors, batch.FileError{File: names[i], Error: res.Err.Error()})
			continue
		}
		resp.Results = append(resp.Results, batchItem{File: names[i], Invoice: export.NewInvoiceDTO(res.Invoice)})
	}

	s.logger.Info("Batch processed",
		logging.F(logging.FieldProcessID, processID),
		logging.F(logging.FieldCount, len(resp.Results)),
		logging.F(logging.FieldDropped, len(resp.Errors)))
	writeJSON(w, http.StatusOK, resp)
}

