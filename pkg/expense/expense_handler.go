package expense

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/persely/persely/internal/rest"
	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"
)

type ExpenseDTO struct {
	Uid               string          `json:"uid"`
	Name              string          `json:"name"`
	FullPrice         decimal.Decimal `json:"fullPrice"`
	Date              string          `json:"date"`
	PrimaryCategory   string          `json:"primaryCategory,omitempty"`
	CategoryMatch     int             `json:"categoryMatch"`
	SecondaryCategory string          `json:"secondaryCategory,omitempty"`
	IsRecurring       bool            `json:"isRecurring"`
	CartUid           string          `json:"cartUid,omitempty"`
	CartName          string          `json:"cartName,omitempty"`
}

type SortRequestDTO struct {
	PrimaryCategory   string `json:"primaryCategory"`
	CategoryMatch     int    `json:"categoryMatch"`
	SecondaryCategory string `json:"secondaryCategory,omitempty"`
}

type SortResponseDTO struct {
	Sorted ExpenseDTO  `json:"sorted"`
	Next   *ExpenseDTO `json:"next,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListUnsorted(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	expenses, err := h.service.ListUnsorted(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeExpenseList(w, expenses)
}

func (h *Handler) ListRecurring(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	expenses, err := h.service.ListRecurring(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeExpenseList(w, expenses)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, h.service.Create)
}

func (h *Handler) CreateUnsorted(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, h.service.CreateUnsorted)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, store func(ctx context.Context, e Expense) (Expense, error)) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Creating expense")

	expense, ok := decodeExpense(w, r)
	if !ok {
		return
	}

	created, err := store(r.Context(), expense)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(expenseToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	expense, ok := decodeExpense(w, r)
	if !ok {
		return
	}
	expense.Uid = mux.Vars(r)["expenseUid"]

	updated, err := h.service.Update(r.Context(), expense)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(expenseToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["expenseUid"]

	if err := h.service.Delete(r.Context(), uid); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Sort(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	uid := mux.Vars(r)["expenseUid"]
	cascade := r.URL.Query().Get("cascade") == "true"

	var dto SortRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Invalid request body format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	sorted, next, err := h.service.Sort(r.Context(), uid, SortRequest{
		PrimaryCategory:   dto.PrimaryCategory,
		CategoryMatch:     dto.CategoryMatch,
		SecondaryCategory: dto.SecondaryCategory,
	}, cascade)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := SortResponseDTO{Sorted: expenseToDTO(sorted)}
	if next != nil {
		nextDTO := expenseToDTO(*next)
		response.Next = &nextDTO
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func decodeExpense(w http.ResponseWriter, r *http.Request) (Expense, bool) {
	var dto ExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Invalid request body format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return Expense{}, false
	}

	date, err := time.Parse(DateFormat, dto.Date)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid date format",
			Details: "Date must be formatted as YYYY-MM-DD",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return Expense{}, false
	}

	match := dto.CategoryMatch
	if match == 0 {
		match = 100
	}

	return Expense{
		Name:              dto.Name,
		FullPrice:         dto.FullPrice,
		Date:              date,
		PrimaryCategory:   dto.PrimaryCategory,
		CategoryMatch:     match,
		SecondaryCategory: dto.SecondaryCategory,
		IsRecurring:       dto.IsRecurring,
	}, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrValidation) {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: err.Error(),
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}
	if errors.Is(err, ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeExpenseList(w http.ResponseWriter, expenses []Expense) {
	dtos := make([]ExpenseDTO, 0, len(expenses))
	for _, e := range expenses {
		dtos = append(dtos, expenseToDTO(e))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func expenseToDTO(e Expense) ExpenseDTO {
	return ExpenseDTO{
		Uid:               e.Uid,
		Name:              e.Name,
		FullPrice:         e.FullPrice,
		Date:              e.Date.Format(DateFormat),
		PrimaryCategory:   e.PrimaryCategory,
		CategoryMatch:     e.CategoryMatch,
		SecondaryCategory: e.SecondaryCategory,
		IsRecurring:       e.IsRecurring,
		CartUid:           e.CartUid,
		CartName:          e.CartName,
	}
}
