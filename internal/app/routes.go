package app

import (
	"github.com/gorilla/mux"
	"github.com/persely/persely/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Sign-in
	r.HandleFunc("/api/auth/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
	r.HandleFunc("/api/auth/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")
	r.HandleFunc("/api/auth/logout", deps.GoogleAuth.Logout).Methods("DELETE")

	// User management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current/settings", deps.UserHandler.UpdateSettings).Methods("PUT")

	// Categories
	r.HandleFunc("/api/category", deps.CategoryHandler.List).Methods("GET")

	// Expenses
	r.HandleFunc("/api/expense", deps.StatsHandler.ListExpenses).Methods("GET")
	r.HandleFunc("/api/expense", deps.ExpenseHandler.Create).Methods("POST")
	r.HandleFunc("/api/expense/recurring", deps.ExpenseHandler.ListRecurring).Methods("GET")
	r.HandleFunc("/api/expense/unsorted", deps.ExpenseHandler.ListUnsorted).Methods("GET")
	r.HandleFunc("/api/expense/unsorted", deps.ExpenseHandler.CreateUnsorted).Methods("POST")
	r.HandleFunc("/api/expense/unsorted/{expenseUid}/sort", deps.ExpenseHandler.Sort).Methods("POST")
	r.HandleFunc("/api/expense/unsorted/{expenseUid}", deps.ExpenseHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/expense/{expenseUid}", deps.ExpenseHandler.Update).Methods("PUT")
	r.HandleFunc("/api/expense/{expenseUid}", deps.ExpenseHandler.Delete).Methods("DELETE")

	// Shopping carts
	r.HandleFunc("/api/cart", deps.CartHandler.List).Methods("GET")
	r.HandleFunc("/api/cart", deps.CartHandler.Create).Methods("POST")
	r.HandleFunc("/api/cart/{cartUid}", deps.CartHandler.Get).Methods("GET")
	r.HandleFunc("/api/cart/{cartUid}", deps.CartHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/cart/{cartUid}/item/{itemUid}", deps.CartHandler.UpdateItem).Methods("PUT")
	r.HandleFunc("/api/cart/{cartUid}/item/{itemUid}", deps.CartHandler.DeleteItem).Methods("DELETE")
	r.HandleFunc("/api/cart/{cartUid}/item/{itemUid}/sort", deps.CartHandler.SortItem).Methods("POST")

	// Salary periods
	r.HandleFunc("/api/period", deps.PeriodHandler.List).Methods("GET")
	r.HandleFunc("/api/period", deps.PeriodHandler.Create).Methods("POST")
	r.HandleFunc("/api/period/{periodUid}", deps.PeriodHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/period/{periodUid}/budget", deps.PeriodHandler.SetBudget).Methods("PUT")

	// Budget
	r.HandleFunc("/api/budget", deps.BudgetHandler.Get).Methods("GET")
	r.HandleFunc("/api/budget", deps.BudgetHandler.SetDefault).Methods("PUT")

	// Stats
	r.HandleFunc("/api/stats", deps.StatsHandler.GetStats).Methods("GET")
	r.HandleFunc("/api/stats/export", deps.StatsHandler.Export).Methods("GET")
}
