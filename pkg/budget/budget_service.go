package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/persely/persely/pkg/period"
	"github.com/persely/persely/pkg/user"
	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"
)

var ErrBudgetInvalid = errors.New("invalid budget")

type Service interface {
	// DefaultBudget is the user's own default monthly budget, falling
	// back to the process-wide default when never set.
	DefaultBudget(ctx context.Context) (decimal.Decimal, error)
	SetDefaultBudget(ctx context.Context, budget decimal.Decimal) error
	// EffectiveBudget resolves the budget the aggregator compares spending
	// against: the selected period's own budget when filtering by period,
	// otherwise the default.
	EffectiveBudget(ctx context.Context, mode user.FilterMode, periodUid string) (decimal.Decimal, error)
}

type ServiceImpl struct {
	repo       Repository
	periodRepo period.Repository
	fallback   decimal.Decimal
}

func NewBudgetService(repo Repository, periodRepo period.Repository, fallback decimal.Decimal) *ServiceImpl {
	return &ServiceImpl{repo: repo, periodRepo: periodRepo, fallback: fallback}
}

func (s *ServiceImpl) DefaultBudget(ctx context.Context) (decimal.Decimal, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get current user: %w", err)
	}
	stored, err := s.repo.FindDefault(ctx, userId)
	if err != nil {
		return decimal.Zero, err
	}
	if stored == nil {
		return s.fallback, nil
	}
	return *stored, nil
}

func (s *ServiceImpl) SetDefaultBudget(ctx context.Context, budget decimal.Decimal) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	if !budget.IsPositive() {
		return fmt.Errorf("%w: budget must be positive", ErrBudgetInvalid)
	}

	updated, err := s.repo.StoreDefault(ctx, userId, budget)
	if err != nil {
		return err
	}
	if !updated {
		log.Warnf("budget not updated for user %d", userId)
		return fmt.Errorf("budget not updated")
	}
	return nil
}

func (s *ServiceImpl) EffectiveBudget(ctx context.Context, mode user.FilterMode, periodUid string) (decimal.Decimal, error) {
	if mode == user.FilterByPeriod && periodUid != "" {
		userId, err := user.CurrentId(ctx)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to get current user: %w", err)
		}
		selected, err := s.periodRepo.FindByUid(ctx, userId, periodUid)
		if err != nil {
			return decimal.Zero, err
		}
		if selected != nil && !selected.MonthlyBudget.IsZero() {
			return selected.MonthlyBudget, nil
		}
		// Unknown period or no budget of its own: fall through to the default.
	}
	return s.DefaultBudget(ctx)
}
