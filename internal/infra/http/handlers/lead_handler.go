package handlers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/xavierca1/artisan-crm/internal/entity"
	"github.com/xavierca1/artisan-crm/internal/infra/http/middleware"
	"github.com/xavierca1/artisan-crm/internal/usecase"
)

const csvTimeLayout = "2006-01-02 15:04:05"

type LeadHandler struct {
	UseCase *usecase.LeadUseCase
}

func NewLeadHandler(uc *usecase.LeadUseCase) *LeadHandler {
	return &LeadHandler{UseCase: uc}
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in entity.LeadCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	actor := middleware.ActorFrom(r.Context())
	lead, err := h.UseCase.Create(r.Context(), in, actor)
	switch {
	case err == nil:
	case errors.Is(err, entity.ErrEmailAlreadyExists):
		writeDetail(w, http.StatusBadRequest, "Lead with this email already exists")
		return
	case errors.Is(err, entity.ErrValidation):
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	default:
		log.Printf("lead handler: error creating lead: %v", err)
		writeDetail(w, http.StatusInternalServerError, "Error creating lead")
		return
	}

	middleware.RecordLeadCreated()
	writeJSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := entity.ListParams{
		Skip:   atoiDefault(q.Get("skip"), 0),
		Limit:  atoiDefault(q.Get("limit"), 10),
		Search: q.Get("search"),
	}

	if raw := q.Get("filters"); raw != "" {
		var filters entity.LeadFilters
		if err := json.Unmarshal([]byte(raw), &filters); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid filters format")
			return
		}
		params.Filters = &filters
	}

	// sort_by/sort_order are the legacy params; filters.sortField wins and
	// the composer's default covers the rest, so they are only logged here.
	log.Printf("lead handler: fetching leads skip=%d limit=%d search=%q sort_by=%q sort_order=%q",
		params.Skip, params.Limit, params.Search, q.Get("sort_by"), q.Get("sort_order"))

	page, err := h.UseCase.List(r.Context(), params)
	if errors.Is(err, entity.ErrInvalidSortField) {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Printf("lead handler: error fetching leads: %v", err)
		writeDetail(w, http.StatusInternalServerError, "Error fetching leads")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	lead, err := h.UseCase.Get(r.Context(), id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		writeDetail(w, http.StatusNotFound, "Lead not found")
		return
	}
	if err != nil {
		log.Printf("lead handler: error fetching lead %s: %v", id, err)
		writeDetail(w, http.StatusInternalServerError, "Error fetching lead")
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	var update entity.LeadUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	actor := middleware.ActorFrom(r.Context())
	lead, err := h.UseCase.Update(r.Context(), id, update, actor)
	switch {
	case err == nil:
	case errors.Is(err, entity.ErrLeadNotFound):
		writeDetail(w, http.StatusNotFound, "Lead not found")
		return
	case errors.Is(err, entity.ErrEmailAlreadyExists):
		writeDetail(w, http.StatusBadRequest, "Lead with this email already exists")
		return
	default:
		log.Printf("lead handler: error updating lead %s: %v", id, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to update lead")
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	actor := middleware.ActorFrom(r.Context())
	_, err := h.UseCase.Delete(r.Context(), id, actor)
	if errors.Is(err, entity.ErrLeadNotFound) {
		writeDetail(w, http.StatusNotFound, "Lead not found")
		return
	}
	if err != nil {
		log.Printf("lead handler: error deleting lead %s: %v", id, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to delete lead")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Lead deleted successfully"})
}

// Export streams every lead as a CSV attachment.
func (h *LeadHandler) Export(w http.ResponseWriter, r *http.Request) {
	leads, err := h.UseCase.ExportAll(r.Context())
	if err != nil {
		log.Printf("lead handler: error exporting leads: %v", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to export leads")
		return
	}
	if len(leads) == 0 {
		log.Printf("lead handler: no leads found to export")
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=leads.csv")

	cw := csv.NewWriter(w)
	cw.Write([]string{"ID", "Name", "Company", "Email", "Phone", "Stage", "Engaged", "Last Contacted", "Created At"})
	for _, lead := range leads {
		lastContacted := ""
		if lead.LastContacted != nil {
			lastContacted = lead.LastContacted.Format(csvTimeLayout)
		}
		cw.Write([]string{
			lead.ID,
			lead.Name,
			lead.Company,
			lead.Email,
			lead.Phone,
			lead.Stage,
			strconv.FormatBool(lead.Engaged),
			lastContacted,
			lead.CreatedAt.Format(csvTimeLayout),
		})
	}
	cw.Flush()
}

// leadID validates the path id; an unparseable id can match nothing, so it
// reports the same 404 as a missing record.
func leadID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeDetail(w, http.StatusNotFound, "Lead not found")
		return "", false
	}
	return id, true
}

func atoiDefault(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
