package app

import (
	"database/sql"

	"github.com/persely/persely/internal/config"
	"github.com/persely/persely/internal/utils"
	"github.com/persely/persely/pkg/auth"
	"github.com/persely/persely/pkg/budget"
	"github.com/persely/persely/pkg/cart"
	"github.com/persely/persely/pkg/category"
	"github.com/persely/persely/pkg/expense"
	"github.com/persely/persely/pkg/period"
	"github.com/persely/persely/pkg/stats"
	"github.com/persely/persely/pkg/user"
	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	UserService user.Service
	UserHandler *user.Handler

	AuthRepo   auth.Repository
	GoogleAuth *auth.GoogleAuth

	CategoryHandler *category.Handler

	ExpenseRepo    expense.Repository
	ExpenseService expense.Service
	ExpenseHandler *expense.Handler

	CartRepo    cart.Repository
	CartService cart.Service
	CartHandler *cart.Handler

	PeriodRepo    period.Repository
	PeriodService period.Service
	PeriodHandler *period.Handler

	BudgetRepo    budget.Repository
	BudgetService budget.Service
	BudgetHandler *budget.Handler

	StatsService     stats.StatsService
	CsvStatsRenderer *stats.CsvStatsRendererImpl
	StatsHandler     *stats.StatsHandler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.AuthRepo = auth.NewAuthRepo(db)
	deps.GoogleAuth = auth.NewGoogleAuth(deps.AuthRepo, deps.UserService, cfg, deps.Clock)

	deps.CategoryHandler = category.NewHandler()

	deps.ExpenseRepo = expense.NewExpenseRepo(db)
	expenseService := expense.NewExpenseService(deps.ExpenseRepo, deps.Clock)
	deps.ExpenseService = expenseService
	deps.ExpenseHandler = expense.NewHandler(expenseService)

	deps.CartRepo = cart.NewCartRepo(db)
	cartService := cart.NewCartService(deps.CartRepo, deps.Clock)
	deps.CartService = cartService
	deps.CartHandler = cart.NewHandler(cartService)

	fallbackBudget, err := decimal.NewFromString(cfg.Budget.DefaultMonthly)
	if err != nil {
		log.Warnf("invalid default monthly budget %q, using 500000", cfg.Budget.DefaultMonthly)
		fallbackBudget = decimal.NewFromInt(500000)
	}

	deps.PeriodRepo = period.NewPeriodRepo(db)
	deps.BudgetRepo = budget.NewBudgetRepo(db)
	budgetService := budget.NewBudgetService(deps.BudgetRepo, deps.PeriodRepo, fallbackBudget)
	deps.BudgetService = budgetService
	deps.BudgetHandler = budget.NewHandler(budgetService)

	periodService := period.NewPeriodService(deps.PeriodRepo, deps.UserService, budgetService, deps.Clock)
	deps.PeriodService = periodService
	deps.PeriodHandler = period.NewHandler(periodService)

	deps.StatsService = stats.NewStatsService(deps.ExpenseService, deps.PeriodService, deps.BudgetService, deps.UserService, deps.Clock)
	deps.CsvStatsRenderer = stats.NewCsvStatsRenderer()
	deps.StatsHandler = stats.NewStatsHandler(deps.StatsService, deps.CsvStatsRenderer, deps.Clock)

	return deps
}
