package cart

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/persely/persely/internal/utils"
	"github.com/persely/persely/pkg/expense"
	"github.com/persely/persely/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	// Create stores a cart with its line items. Item positions follow the
	// order they were submitted in.
	Create(ctx context.Context, cart Cart) (Cart, error)
	GetAll(ctx context.Context) ([]Cart, error)
	Get(ctx context.Context, uid string) (Cart, error)
	UpdateItem(ctx context.Context, cartUid string, item CartItem) error
	DeleteItem(ctx context.Context, cartUid string, itemUid string) error
	Delete(ctx context.Context, uid string) error
	// SortItem assigns a category split to an unsorted line item and
	// publishes it as a standalone expense dated on the cart's date. Both
	// writes happen in one transaction.
	SortItem(ctx context.Context, cartUid string, itemUid string, req expense.SortRequest) (expense.Expense, error)
}

type ServiceImpl struct {
	repo  Repository
	clock utils.Clock
}

func NewCartService(repo Repository, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: clock}
}

func (s *ServiceImpl) Create(ctx context.Context, cart Cart) (Cart, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Cart{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateCart(cart); err != nil {
		return Cart{}, err
	}

	cart.Uid = uuid.New().String()
	cart.Name = capitalizeFirst(cart.Name)
	cart.CreatedAt = s.clock.Now()
	for i := range cart.Items {
		cart.Items[i].Uid = uuid.New().String()
		cart.Items[i].Name = capitalizeFirst(cart.Items[i].Name)
		cart.Items[i].Position = i
		// Items come in unsorted; splits are assigned one by one later.
		cart.Items[i].PrimaryCategory = ""
		cart.Items[i].CategoryMatch = 0
		cart.Items[i].SecondaryCategory = ""
	}
	return s.repo.Store(ctx, userId, cart)
}

func (s *ServiceImpl) GetAll(ctx context.Context) ([]Cart, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId)
}

func (s *ServiceImpl) Get(ctx context.Context, uid string) (Cart, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Cart{}, fmt.Errorf("failed to get current user: %w", err)
	}
	found, err := s.repo.FindByUid(ctx, userId, uid)
	if err != nil {
		return Cart{}, err
	}
	if found == nil {
		return Cart{}, ErrNotFound
	}
	return *found, nil
}

func (s *ServiceImpl) UpdateItem(ctx context.Context, cartUid string, item CartItem) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateItem(item); err != nil {
		return err
	}

	item.Name = capitalizeFirst(item.Name)
	updated, err := s.repo.UpdateItem(ctx, userId, cartUid, item)
	if err != nil {
		return err
	}
	if !updated {
		log.Warnf("cart item not updated, probably because it does not exist (%s/%s) or the user (%d) is not the owner", cartUid, item.Uid, userId)
		return ErrNotFound
	}
	return nil
}

func (s *ServiceImpl) DeleteItem(ctx context.Context, cartUid string, itemUid string) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	deleted, err := s.repo.DeleteItem(ctx, userId, cartUid, itemUid)
	if err != nil {
		return err
	}
	if !deleted {
		log.Warnf("cart item not deleted, probably because it does not exist (%s/%s) or the user (%d) is not the owner", cartUid, itemUid, userId)
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
		log.Warnf("cart not deleted, probably because it does not exist (%s) or the user (%d) is not the owner", uid, userId)
		return ErrNotFound
	}
	return nil
}

func (s *ServiceImpl) SortItem(ctx context.Context, cartUid string, itemUid string, req expense.SortRequest) (expense.Expense, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return expense.Expense{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if req.CategoryMatch == 0 {
		req.CategoryMatch = 100
	}
	if err := expense.ValidateSplit(req.PrimaryCategory, req.CategoryMatch, req.SecondaryCategory); err != nil {
		return expense.Expense{}, err
	}

	found, err := s.repo.FindByUid(ctx, userId, cartUid)
	if err != nil {
		return expense.Expense{}, err
	}
	if found == nil {
		return expense.Expense{}, ErrNotFound
	}
	var item *CartItem
	for i := range found.Items {
		if found.Items[i].Uid == itemUid {
			item = &found.Items[i]
			break
		}
	}
	if item == nil {
		return expense.Expense{}, ErrNotFound
	}
	if item.IsSorted() {
		return expense.Expense{}, fmt.Errorf("%w: item already sorted", ErrValidation)
	}

	published := expense.Expense{
		Uid:               uuid.New().String(),
		Name:              item.Name,
		FullPrice:         item.Price,
		Date:              found.Date,
		PrimaryCategory:   req.PrimaryCategory,
		CategoryMatch:     req.CategoryMatch,
		SecondaryCategory: req.SecondaryCategory,
		CartUid:           found.Uid,
		CartName:          found.Name,
		CreatedAt:         s.clock.Now(),
	}

	sorted, err := s.repo.SortItem(ctx, userId, cartUid, itemUid, expense.SortFields{
		PrimaryCategory:   req.PrimaryCategory,
		CategoryMatch:     req.CategoryMatch,
		SecondaryCategory: req.SecondaryCategory,
	}, published)
	if err != nil {
		return expense.Expense{}, err
	}
	if !sorted {
		log.Warnf("cart item not sorted, probably because it is not unsorted (%s/%s) or the user (%d) is not the owner", cartUid, itemUid, userId)
		return expense.Expense{}, ErrNotFound
	}
	return published, nil
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
