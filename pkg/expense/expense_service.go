package expense

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/persely/persely/internal/utils"
	"github.com/persely/persely/pkg/user"
	log "github.com/sirupsen/logrus"
)

// SortRequest carries the target split of an Item Box sort.
type SortRequest struct {
	PrimaryCategory   string
	CategoryMatch     int
	SecondaryCategory string
}

type Service interface {
	// Create stores a sorted expense. The split fields must be valid.
	Create(ctx context.Context, expense Expense) (Expense, error)
	// CreateUnsorted stores an expense into the Item Box. When a primary
	// category is already set it is stored directly as sorted instead.
	CreateUnsorted(ctx context.Context, expense Expense) (Expense, error)
	ListSorted(ctx context.Context) ([]Expense, error)
	ListUnsorted(ctx context.Context) ([]Expense, error)
	ListRecurring(ctx context.Context) ([]Expense, error)
	Update(ctx context.Context, expense Expense) (Expense, error)
	Delete(ctx context.Context, uid string) error
	// Sort moves an unsorted expense into the sorted collection. When
	// cascade is true, the next remaining unsorted expense (insertion
	// order) is returned for rapid batch triage, or nil when the Item Box
	// is empty.
	Sort(ctx context.Context, uid string, req SortRequest, cascade bool) (Expense, *Expense, error)
}

type ServiceImpl struct {
	repo  Repository
	clock utils.Clock
}

func NewExpenseService(repo Repository, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: clock}
}

func (s *ServiceImpl) Create(ctx context.Context, expense Expense) (Expense, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Expense{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateBase(expense.Name, expense.FullPrice); err != nil {
		return Expense{}, err
	}
	if err := ValidateSplit(expense.PrimaryCategory, expense.CategoryMatch, expense.SecondaryCategory); err != nil {
		return Expense{}, err
	}

	expense.Uid = uuid.New().String()
	expense.Name = capitalizeFirst(expense.Name)
	expense.CreatedAt = s.clock.Now()
	return s.repo.Store(ctx, userId, expense)
}

func (s *ServiceImpl) CreateUnsorted(ctx context.Context, expense Expense) (Expense, error) {
	// Pre-sorted entries from the Item Box form go straight to the sorted
	// collection.
	if expense.PrimaryCategory != "" {
		return s.Create(ctx, expense)
	}

	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Expense{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateBase(expense.Name, expense.FullPrice); err != nil {
		return Expense{}, err
	}

	expense.Uid = uuid.New().String()
	expense.Name = capitalizeFirst(expense.Name)
	expense.CategoryMatch = 100
	expense.SecondaryCategory = ""
	expense.CreatedAt = s.clock.Now()
	return s.repo.Store(ctx, userId, expense)
}

func (s *ServiceImpl) ListSorted(ctx context.Context) ([]Expense, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListSorted(ctx, userId)
}

func (s *ServiceImpl) ListUnsorted(ctx context.Context) ([]Expense, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListUnsorted(ctx, userId)
}

func (s *ServiceImpl) ListRecurring(ctx context.Context) ([]Expense, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListRecurring(ctx, userId)
}

func (s *ServiceImpl) Update(ctx context.Context, expense Expense) (Expense, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Expense{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateBase(expense.Name, expense.FullPrice); err != nil {
		return Expense{}, err
	}
	if expense.IsSorted() {
		if err := ValidateSplit(expense.PrimaryCategory, expense.CategoryMatch, expense.SecondaryCategory); err != nil {
			return Expense{}, err
		}
	}

	expense.Name = capitalizeFirst(expense.Name)
	updated, err := s.repo.Update(ctx, userId, expense)
	if err != nil {
		return Expense{}, err
	}
	if !updated {
		log.Warnf("expense not updated, probably because it does not exist (%s) or the user (%d) is not the owner", expense.Uid, userId)
		return Expense{}, ErrNotFound
	}
	return expense, nil
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
		log.Warnf("expense not deleted, probably because it does not exist (%s) or the user (%d) is not the owner", uid, userId)
		return ErrNotFound
	}
	return nil
}

func (s *ServiceImpl) Sort(ctx context.Context, uid string, req SortRequest, cascade bool) (Expense, *Expense, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Expense{}, nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if req.CategoryMatch == 0 {
		req.CategoryMatch = 100
	}
	if err := ValidateSplit(req.PrimaryCategory, req.CategoryMatch, req.SecondaryCategory); err != nil {
		return Expense{}, nil, err
	}

	sorted, err := s.repo.MarkSorted(ctx, userId, uid, SortFields{
		PrimaryCategory:   req.PrimaryCategory,
		CategoryMatch:     req.CategoryMatch,
		SecondaryCategory: req.SecondaryCategory,
	}, s.clock.Now())
	if err != nil {
		return Expense{}, nil, err
	}
	if !sorted {
		log.Warnf("expense not sorted, probably because it is not unsorted (%s) or the user (%d) is not the owner", uid, userId)
		return Expense{}, nil, ErrNotFound
	}

	stored, err := s.repo.FindByUid(ctx, userId, uid)
	if err != nil {
		return Expense{}, nil, err
	}
	if stored == nil {
		return Expense{}, nil, ErrNotFound
	}

	if !cascade {
		return *stored, nil, nil
	}

	remaining, err := s.repo.ListUnsorted(ctx, userId)
	if err != nil {
		// The sort itself succeeded; the caller only loses the cascade hint.
		log.Warnf("could not load next unsorted expense: %v", err)
		return *stored, nil, nil
	}
	if len(remaining) == 0 {
		return *stored, nil, nil
	}
	next := remaining[0]
	return *stored, &next, nil
}

func capitalizeFirst(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
