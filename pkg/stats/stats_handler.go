package stats

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/persely/persely/internal/utils"
	"github.com/persely/persely/pkg/expense"
	"github.com/persely/persely/pkg/user"
	"github.com/shopspring/decimal"
)

type CategoryTotalDTO struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type SummaryDTO struct {
	Categories              []CategoryTotalDTO   `json:"categories"`
	MonthlyTotal            decimal.Decimal      `json:"monthlyTotal"`
	RecurringTotal          decimal.Decimal      `json:"recurringTotal"`
	EffectiveBudget         decimal.Decimal      `json:"effectiveBudget"`
	RemainingBudget         decimal.Decimal      `json:"remainingBudget"`
	RemainingAfterRecurring decimal.Decimal      `json:"remainingAfterRecurring"`
	Expenses                []expense.ExpenseDTO `json:"expenses"`
}

type StatsHandler struct {
	statsService StatsService
	csvRenderer  StatsRenderer
	clock        utils.Clock
}

func NewStatsHandler(statsService StatsService, csvRenderer StatsRenderer, clock utils.Clock) *StatsHandler {
	return &StatsHandler{statsService: statsService, csvRenderer: csvRenderer, clock: clock}
}

func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	summary, err := h.statsService.GetStats(r.Context(), filterFromQuery(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(summaryToDTO(summary)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ListExpenses returns the sorted expenses falling inside the requested
// filter window, using the same selection the aggregated view is built from.
func (h *StatsHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	summary, err := h.statsService.GetStats(r.Context(), filterFromQuery(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(summaryToDTO(summary).Expenses); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *StatsHandler) Export(w http.ResponseWriter, r *http.Request) {
	summary, err := h.statsService.GetStats(r.Context(), filterFromQuery(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	rendered, err := h.csvRenderer.RenderStats(summary)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("financial_data_%s.csv", h.clock.Now().Format(expense.DateFormat))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write([]byte(rendered)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func filterFromQuery(r *http.Request) Filter {
	query := r.URL.Query()
	return Filter{
		Mode:      user.FilterMode(query.Get("mode")),
		Month:     query.Get("month"),
		PeriodUid: query.Get("period"),
	}
}

func summaryToDTO(summary Summary) SummaryDTO {
	categories := make([]CategoryTotalDTO, 0, len(summary.Categories))
	for _, c := range summary.Categories {
		categories = append(categories, CategoryTotalDTO{
			Category: string(c.Category),
			Total:    c.Total,
		})
	}
	expenses := make([]expense.ExpenseDTO, 0, len(summary.Expenses))
	for _, e := range summary.Expenses {
		expenses = append(expenses, expense.ExpenseDTO{
			Uid:               e.Uid,
			Name:              e.Name,
			FullPrice:         e.FullPrice,
			Date:              e.Date.Format(expense.DateFormat),
			PrimaryCategory:   e.PrimaryCategory,
			CategoryMatch:     e.CategoryMatch,
			SecondaryCategory: e.SecondaryCategory,
			IsRecurring:       e.IsRecurring,
			CartUid:           e.CartUid,
			CartName:          e.CartName,
		})
	}
	return SummaryDTO{
		Categories:              categories,
		MonthlyTotal:            summary.MonthlyTotal,
		RecurringTotal:          summary.RecurringTotal,
		EffectiveBudget:         summary.EffectiveBudget,
		RemainingBudget:         summary.RemainingBudget,
		RemainingAfterRecurring: summary.RemainingAfterRecurring,
		Expenses:                expenses,
	}
}
