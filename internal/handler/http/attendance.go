package http

import (
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/planilla-hr/planilla-backend-go/internal/domain/attendance"
	"github.com/planilla-hr/planilla-backend-go/internal/handler/http/response"
	"github.com/planilla-hr/planilla-backend-go/internal/pkg/spreadsheet"
	"github.com/planilla-hr/planilla-backend-go/internal/service/export"
)

const maxUploadBytes = 10 << 20

type AttendanceHandler interface {
	Import(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Months(w http.ResponseWriter, r *http.Request)
	Files(w http.ResponseWriter, r *http.Request)
	EditDay(w http.ResponseWriter, r *http.Request)
	UpdateRecord(w http.ResponseWriter, r *http.Request)
	RemoveFile(w http.ResponseWriter, r *http.Request)
	Settings(w http.ResponseWriter, r *http.Request)
	UpdateSettings(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type AttendanceHandlerImpl struct {
	attendanceService attendance.Service
	exportService     export.Service
}

func NewAttendanceHandler(attendanceService attendance.Service, exportService export.Service) AttendanceHandler {
	return &AttendanceHandlerImpl{
		attendanceService: attendanceService,
		exportService:     exportService,
	}
}

// Import implements AttendanceHandler. Accepts one or more workbooks under
// the "files" form field; each file succeeds or fails on its own.
func (h *AttendanceHandlerImpl) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		response.BadRequest(w, "Field 'files' is required", nil)
		return
	}

	results := make([]importFileResult, 0, len(headers))
	for _, header := range headers {
		results = append(results, h.importOne(r, header))
	}

	response.SuccessWithMessage(w, "Attendance files imported", results)
}

// importFileResult - per-file outcome of a multi-file import request.
type importFileResult struct {
	File   string                   `json:"file"`
	Error  string                   `json:"error,omitempty"`
	Result *attendance.ImportResult `json:"result,omitempty"`
}

func (h *AttendanceHandlerImpl) importOne(r *http.Request, header *multipart.FileHeader) (out importFileResult) {
	out.File = header.Filename

	file, err := header.Open()
	if err != nil {
		out.Error = "failed to open upload"
		return out
	}
	defer file.Close()

	grid, err := spreadsheet.ReadGrid(file)
	if err != nil {
		slog.Error("Failed to decode workbook", "error", err, "file", header.Filename)
		out.Error = err.Error()
		return out
	}

	result, err := h.attendanceService.Import(r.Context(), grid, header.Filename)
	if err != nil {
		slog.Error("Failed to import attendance file", "error", err, "file", header.Filename)
		out.Error = err.Error()
		return out
	}
	out.Result = &result
	return out
}

// List implements AttendanceHandler.
func (h *AttendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := listFilterFromQuery(r)

	list, err := h.attendanceService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, list.Data, &response.Meta{
		Page:       list.Page,
		Limit:      list.Limit,
		TotalItems: int64(list.TotalCount),
		TotalPages: totalPages(list.TotalCount, list.Limit),
	})
}

// Months implements AttendanceHandler.
func (h *AttendanceHandlerImpl) Months(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.attendanceService.Months(r.Context()))
}

// Files implements AttendanceHandler.
func (h *AttendanceHandlerImpl) Files(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.attendanceService.Files(r.Context()))
}

// EditDay implements AttendanceHandler.
func (h *AttendanceHandlerImpl) EditDay(w http.ResponseWriter, r *http.Request) {
	employeeCode := chi.URLParam(r, "code")

	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		response.BadRequest(w, "Day must be a number", nil)
		return
	}

	var req attendance.EditDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Day = day

	record, err := h.attendanceService.EditDay(r.Context(), employeeCode, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, record)
}

// UpdateRecord implements AttendanceHandler.
func (h *AttendanceHandlerImpl) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	employeeCode := chi.URLParam(r, "code")

	var req attendance.UpdateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	record, err := h.attendanceService.UpdateRecord(r.Context(), employeeCode, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, record)
}

// RemoveFile implements AttendanceHandler.
func (h *AttendanceHandlerImpl) RemoveFile(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		response.BadRequest(w, "Invalid file name", nil)
		return
	}

	removed, err := h.attendanceService.RemoveFile(r.Context(), name)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Source file removed", map[string]int{"removed": removed})
}

// Settings implements AttendanceHandler.
func (h *AttendanceHandlerImpl) Settings(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.attendanceService.Settings(r.Context()))
}

// UpdateSettings implements AttendanceHandler.
func (h *AttendanceHandlerImpl) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	settings, err := h.attendanceService.UpdateSettings(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settings updated", settings)
}

// Export implements AttendanceHandler.
func (h *AttendanceHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	filter := listFilterFromQuery(r)

	file, err := h.exportService.Export(r.Context(), filter)
	if err != nil {
		slog.Error("Failed to render export workbook", "error", err)
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	if _, err := w.Write(file.Content); err != nil {
		slog.Error("Failed to stream export workbook", "error", err)
	}
}

func listFilterFromQuery(r *http.Request) attendance.ListFilter {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return attendance.ListFilter{
		Search: q.Get("search"),
		Month:  q.Get("month"),
		Page:   page,
		Limit:  limit,
	}
}

func totalPages(total, limit int) int {
	if limit < 1 {
		return 0
	}
	return (total + limit - 1) / limit
}
