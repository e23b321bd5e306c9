package budget

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/persely/persely/internal/rest"
	"github.com/persely/persely/pkg/user"
	"github.com/shopspring/decimal"
)

type BudgetDTO struct {
	MonthlyBudget decimal.Decimal `json:"monthlyBudget"`
}

type EffectiveBudgetDTO struct {
	DefaultBudget   decimal.Decimal `json:"defaultBudget"`
	EffectiveBudget decimal.Decimal `json:"effectiveBudget"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Get returns the default budget together with the budget effective under
// the filter given in the query (mode, period).
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	defaultBudget, err := h.service.DefaultBudget(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	mode := user.FilterMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = user.FilterByMonth
	}
	effective, err := h.service.EffectiveBudget(r.Context(), mode, r.URL.Query().Get("period"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(EffectiveBudgetDTO{
		DefaultBudget:   defaultBudget,
		EffectiveBudget: effective,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) SetDefault(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto BudgetDTO
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

	if err := h.service.SetDefaultBudget(r.Context(), dto.MonthlyBudget); err != nil {
		if errors.Is(err, ErrBudgetInvalid) {
			w.WriteHeader(http.StatusBadRequest)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error: err.Error(),
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			}
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
