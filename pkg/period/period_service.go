package period

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/persely/persely/internal/utils"
	"github.com/persely/persely/pkg/user"
	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"
)

// DefaultBudgetProvider resolves the budget value a newly created period
// starts with. Implemented by the budget service.
type DefaultBudgetProvider interface {
	DefaultBudget(ctx context.Context) (decimal.Decimal, error)
}

type Service interface {
	// Create starts a new salary period at startDate. The currently open
	// period, if any, is closed at startDate - 1 day in the same
	// transaction, and the new period becomes the user's selected filter.
	Create(ctx context.Context, startDate time.Time) (SalaryPeriod, error)
	GetAll(ctx context.Context) ([]SalaryPeriod, error)
	Get(ctx context.Context, uid string) (SalaryPeriod, error)
	SetBudget(ctx context.Context, uid string, budget decimal.Decimal) error
	Delete(ctx context.Context, uid string) error
}

type ServiceImpl struct {
	repo          Repository
	userService   user.Service
	defaultBudget DefaultBudgetProvider
	clock         utils.Clock
}

func NewPeriodService(repo Repository, userService user.Service, defaultBudget DefaultBudgetProvider, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{
		repo:          repo,
		userService:   userService,
		defaultBudget: defaultBudget,
		clock:         clock,
	}
}

func (s *ServiceImpl) Create(ctx context.Context, startDate time.Time) (SalaryPeriod, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return SalaryPeriod{}, fmt.Errorf("failed to get current user: %w", err)
	}

	latest, err := s.repo.FindLatest(ctx, userId)
	if err != nil {
		return SalaryPeriod{}, err
	}
	if latest != nil && !startDate.After(latest.StartDate) {
		return SalaryPeriod{}, fmt.Errorf("%w: %s is not after %s",
			ErrOutOfOrder, startDate.Format(DateFormat), latest.StartDate.Format(DateFormat))
	}

	// The new period starts with a copy of the budget that is effective
	// right now; later default changes do not touch it.
	budget, err := s.defaultBudget.DefaultBudget(ctx)
	if err != nil {
		return SalaryPeriod{}, err
	}
	if latest != nil && latest.IsOpen() && !latest.MonthlyBudget.IsZero() {
		budget = latest.MonthlyBudget
	}

	created, closed, err := s.repo.StoreWithRollover(ctx, userId, SalaryPeriod{
		Uid:           uuid.New().String(),
		Name:          PeriodName(startDate),
		StartDate:     startDate,
		MonthlyBudget: budget,
		CreatedAt:     s.clock.Now(),
	})
	if err != nil {
		return SalaryPeriod{}, err
	}
	if closed != nil {
		log.Infof("closed period %s at %s", closed.Uid, closed.EndDate.Format(DateFormat))
	}

	// Activate the new period as the selected filter.
	currentUser, err := s.userService.GetCurrentUser(ctx)
	if err != nil {
		return SalaryPeriod{}, err
	}
	settings := currentUser.Settings
	settings.FilterMode = user.FilterByPeriod
	settings.FilterPeriodUid = created.Uid
	if _, err := s.userService.UpdateSettings(ctx, settings); err != nil {
		return SalaryPeriod{}, fmt.Errorf("failed to select created period: %w", err)
	}

	return created, nil
}

func (s *ServiceImpl) GetAll(ctx context.Context) ([]SalaryPeriod, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId)
}

func (s *ServiceImpl) Get(ctx context.Context, uid string) (SalaryPeriod, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return SalaryPeriod{}, fmt.Errorf("failed to get current user: %w", err)
	}
	period, err := s.repo.FindByUid(ctx, userId, uid)
	if err != nil {
		return SalaryPeriod{}, err
	}
	if period == nil {
		return SalaryPeriod{}, ErrNotFound
	}
	return *period, nil
}

func (s *ServiceImpl) SetBudget(ctx context.Context, uid string, budget decimal.Decimal) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	updated, err := s.repo.UpdateBudget(ctx, userId, uid, budget)
	if err != nil {
		return err
	}
	if !updated {
		log.Warnf("period budget not updated, probably because the period does not exist (%s) or the user (%d) is not the owner", uid, userId)
		return ErrNotFound
	}
	return nil
}

func (s *ServiceImpl) Delete(ctx context.Context, uid string) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	deleted, err := s.repo.Delete(ctx, userId, uid)
	if err != nil {
		return err
	}
	if !deleted {
		log.Warnf("period not deleted, probably because it does not exist (%s) or the user (%d) is not the owner", uid, userId)
		return ErrNotFound
	}
	return nil
}
