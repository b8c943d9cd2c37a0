package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/planilla-hr/planilla-backend-go/internal/domain/directory"
	"github.com/planilla-hr/planilla-backend-go/internal/handler/http/response"
	"github.com/planilla-hr/planilla-backend-go/internal/pkg/spreadsheet"
)

type DirectoryHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Import(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type DirectoryHandlerImpl struct {
	directoryService directory.Service
}

func NewDirectoryHandler(directoryService directory.Service) DirectoryHandler {
	return &DirectoryHandlerImpl{directoryService: directoryService}
}

// Create implements DirectoryHandler.
func (h *DirectoryHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req directory.CreatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	person, err := h.directoryService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Person created successfully", person)
}

// List implements DirectoryHandler.
func (h *DirectoryHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	filter := directory.ListFilter{
		Search:     q.Get("search"),
		ActiveOnly: q.Get("active") == "true",
		Page:       page,
		Limit:      limit,
	}

	list, err := h.directoryService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, list.Data, &response.Meta{
		Page:       list.Page,
		Limit:      list.Limit,
		TotalItems: list.TotalCount,
		TotalPages: totalPages(int(list.TotalCount), list.Limit),
	})
}

// GetByID implements DirectoryHandler.
func (h *DirectoryHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	person, err := h.directoryService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, person)
}

// Update implements DirectoryHandler.
func (h *DirectoryHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req directory.UpdatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	person, err := h.directoryService.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, person)
}

// Delete implements DirectoryHandler.
func (h *DirectoryHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.directoryService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Person deleted", nil)
}

// Import implements DirectoryHandler.
func (h *DirectoryHandlerImpl) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Field 'file' is required", nil)
		return
	}
	defer file.Close()

	grid, err := spreadsheet.ReadGrid(file)
	if err != nil {
		slog.Error("Failed to decode workbook", "error", err, "file", header.Filename)
		response.HandleError(w, err)
		return
	}

	result, err := h.directoryService.ImportSheet(r.Context(), grid)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Master list imported", result)
}

// Export implements DirectoryHandler.
func (h *DirectoryHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	rows, err := h.directoryService.ExportRows(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	sheet := spreadsheet.Sheet{Name: "Personal", ColWidths: map[int]float64{2: 32, 3: 22}}
	for ri, row := range rows {
		cells := make([]spreadsheet.Cell, 0, len(row))
		for _, v := range row {
			if ri == 0 {
				cells = append(cells, spreadsheet.Cell{Value: v, Style: spreadsheet.Style{Bold: true}})
				continue
			}
			cells = append(cells, spreadsheet.Text(v))
		}
		sheet.Rows = append(sheet.Rows, cells)
	}

	name := "Personal_" + time.Now().Format("20060102") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := spreadsheet.Write(w, []spreadsheet.Sheet{sheet}); err != nil {
		slog.Error("Failed to stream master list workbook", "error", err)
	}
}
