package payslipshandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"payslip/internal/domain/payslip"
	"payslip/internal/transport/http/api"
	"payslip/internal/transport/http/middleware"
	"payslip/internal/transport/http/shared"
)

const (
	maxPeriodLength   = 64
	multipartMemory   = 8 << 20
	emailsEndpoint    = "payslips.emails"
	maxEmailBodyBytes = 1 << 20
)

type Handler struct {
	Service     *payslip.Service
	Idempotency *middleware.IdempotencyStore
}

func NewHandler(service *payslip.Service, idempotency *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Idempotency: idempotency}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payslips", func(r chi.Router) {
		r.Post("/batches", h.handleGenerate)
		r.Post("/inspect", h.handleInspect)
		r.Get("/batches/{batchID}", h.handleGetBatch)
		r.Post("/batches/{batchID}/emails", h.handleSendEmails)
		r.Get("/batches/{batchID}/emails", h.handleListDeliveries)
		r.Get("/batches/{batchID}/archive", h.handleBatchArchive)
		r.Get("/periods/{period}/archive", h.handlePeriodArchive)
	})
}

type batchSummary struct {
	Success int `json:"success"`
	Errors  int `json:"errors"`
	Skipped int `json:"skipped"`
}

type batchResponse struct {
	BatchID         string               `json:"batchId"`
	Period          string               `json:"period"`
	SourceName      string               `json:"sourceName"`
	Summary         batchSummary         `json:"summary"`
	Warning         string               `json:"warning,omitempty"`
	MissingOptional []payslip.Field      `json:"missingOptional"`
	Preview         []payslip.PreviewRow `json:"preview"`
	Failures        []payslip.Failure    `json:"failures"`
}

func newBatchResponse(b *payslip.GenerationBatch) batchResponse {
	return batchResponse{
		BatchID:         b.ID,
		Period:          b.Period,
		SourceName:      b.SourceName,
		Summary:         batchSummary{Success: len(b.Items), Errors: b.Errors, Skipped: b.Skipped},
		Warning:         b.Warning(),
		MissingOptional: nonNilFields(b.MissingOptional),
		Preview:         b.Preview(),
		Failures:        nonNilFailures(b.Failures),
	}
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	name, data, ok := readUpload(w, r)
	if !ok {
		return
	}
	period := strings.TrimSpace(r.FormValue("period"))
	v := shared.NewValidator()
	v.Required("period", period, "is required")
	v.MaxLength("period", period, maxPeriodLength)
	v.NoPathSeparators("period", period)
	if v.Reject(w, requestID) {
		return
	}

	batch, err := h.Service.Generate(r.Context(), name, data, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Created(w, newBatchResponse(batch), requestID)
}

func (h *Handler) handleInspect(w http.ResponseWriter, r *http.Request) {
	name, data, ok := readUpload(w, r)
	if !ok {
		return
	}
	report, err := h.Service.Inspect(name, data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := h.Service.Batch(r.Context(), chi.URLParam(r, "batchID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, newBatchResponse(batch), middleware.GetRequestID(r.Context()))
}

type sendEmailsRequest struct {
	EmpIDs []string `json:"empIds"`
}

func (h *Handler) handleSendEmails(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	batchID := chi.URLParam(r, "batchID")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxEmailBodyBytes))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "unable to read request body", requestID)
		return
	}
	var req sendEmailsRequest
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
			return
		}
	}

	endpoint := emailsEndpoint + ":" + batchID
	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	requestHash := middleware.RequestHash(body)
	if idempotencyKey != "" {
		stored, found, err := h.Idempotency.Check(r.Context(), endpoint, idempotencyKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), requestID)
			return
		}
		if err != nil {
			slog.Warn("idempotency check failed", "batchId", batchID, "err", err)
		}
		if found {
			api.Success(w, json.RawMessage(stored), requestID)
			return
		}
	}

	report, err := h.Service.SendEmails(r.Context(), batchID, req.EmpIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if idempotencyKey != "" {
		payload, err := json.Marshal(report)
		if err != nil {
			slog.Warn("delivery report marshal failed", "batchId", batchID, "err", err)
		} else if err := h.Idempotency.Save(r.Context(), endpoint, idempotencyKey, requestHash, payload); err != nil {
			slog.Warn("idempotency save failed", "batchId", batchID, "err", err)
		}
	}
	api.Success(w, report, requestID)
}

func (h *Handler) handleListDeliveries(w http.ResponseWriter, r *http.Request) {
	results, err := h.Service.Deliveries(r.Context(), chi.URLParam(r, "batchID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if results == nil {
		results = []payslip.DeliveryResult{}
	}
	api.Success(w, results, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBatchArchive(w http.ResponseWriter, r *http.Request) {
	batch, keys, err := h.Service.BatchArchiveKeys(r.Context(), chi.URLParam(r, "batchID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.streamArchive(w, r, payslip.BatchArchiveName(batch), keys)
}

func (h *Handler) handlePeriodArchive(w http.ResponseWriter, r *http.Request) {
	period := chi.URLParam(r, "period")
	keys, err := h.Service.PeriodArchiveKeys(r.Context(), period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.streamArchive(w, r, payslip.PeriodArchiveName(period), keys)
}

// streamArchive commits headers before writing, so a failure midway can only
// be logged; the client sees a truncated zip.
func (h *Handler) streamArchive(w http.ResponseWriter, r *http.Request, filename string, keys []string) {
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if err := h.Service.WriteArchive(r.Context(), keys, w); err != nil {
		slog.Error("payslip archive failed", "file", filename, "requestId", middleware.GetRequestID(r.Context()), "err", err)
	}
}

// readUpload reads the "file" form part fully into memory.
func readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	requestID := middleware.GetRequestID(r.Context())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "uploaded file too large", requestID)
			return "", nil, false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "multipart form with a file is required", requestID)
		return "", nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "file", Reason: "is required"}})
		return "", nil, false
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "unable to read uploaded file", requestID)
		return "", nil, false
	}
	return sanitizeUploadedFileName(header.Filename), data, true
}

func sanitizeUploadedFileName(name string) string {
	cleaned := strings.TrimSpace(name)
	if i := strings.LastIndexAny(cleaned, `/\`); i >= 0 {
		cleaned = cleaned[i+1:]
	}
	cleaned = strings.ReplaceAll(cleaned, "\x00", "")
	if cleaned == "" {
		return "upload.bin"
	}
	return cleaned
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())

	var schemaErr *payslip.SchemaError
	var emptyErr *payslip.EmptyBatchError
	switch {
	case errors.As(err, &schemaErr):
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "schema_error", err.Error(), map[string]any{
			"missing":       schemaErr.Missing,
			"presentLabels": schemaErr.Present,
		}, requestID)
	case errors.As(err, &emptyErr):
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "empty_batch", err.Error(), map[string]any{
			"missingOptional": nonNilFields(emptyErr.MissingOptional),
			"errors":          emptyErr.Errors,
			"skipped":         emptyErr.Skipped,
		}, requestID)
	case errors.Is(err, payslip.ErrUnsupportedFormat),
		errors.Is(err, payslip.ErrEmptyTable),
		errors.Is(err, payslip.ErrUndecodable),
		errors.Is(err, payslip.ErrUnreadableFile):
		api.Fail(w, http.StatusBadRequest, "invalid_file", err.Error(), requestID)
	case errors.Is(err, payslip.ErrPeriodRequired):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "period", Reason: "is required"}})
	case errors.Is(err, payslip.ErrBatchNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "payslip batch not found", requestID)
	case errors.Is(err, payslip.ErrNoDocuments):
		api.Fail(w, http.StatusNotFound, "no_documents", "no payslips found", requestID)
	default:
		slog.Error("payslip request failed", "path", r.URL.Path, "requestId", requestID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}

func nonNilFields(fields []payslip.Field) []payslip.Field {
	if fields == nil {
		return []payslip.Field{}
	}
	return fields
}

func nonNilFailures(failures []payslip.Failure) []payslip.Failure {
	if failures == nil {
		return []payslip.Failure{}
	}
	return failures
}
