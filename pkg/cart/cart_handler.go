package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/persely/persely/internal/rest"
	"github.com/persely/persely/pkg/expense"
	"github.com/shopspring/decimal"
)

type CartDTO struct {
	Uid        string          `json:"uid"`
	Name       string          `json:"name"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Date       string          `json:"date"`
	Items      []CartItemDTO   `json:"items"`
}

type CartItemDTO struct {
	Uid               string          `json:"uid"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	Position          int             `json:"position"`
	PrimaryCategory   string          `json:"primaryCategory,omitempty"`
	CategoryMatch     int             `json:"categoryMatch"`
	SecondaryCategory string          `json:"secondaryCategory,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	carts, err := h.service.GetAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]CartDTO, 0, len(carts))
	for _, c := range carts {
		dtos = append(dtos, cartToDTO(c))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	cart, ok := decodeCart(w, r)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), cart)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(cartToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	uid := mux.Vars(r)["cartUid"]

	cart, err := h.service.Get(r.Context(), uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := json.NewEncoder(w).Encode(cartToDTO(cart)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["cartUid"]

	if err := h.service.Delete(r.Context(), uid); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)

	var dto CartItemDTO
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

	item := CartItem{
		Uid:      vars["itemUid"],
		Name:     dto.Name,
		Price:    dto.Price,
		Position: dto.Position,
	}
	if err := h.service.UpdateItem(r.Context(), vars["cartUid"], item); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.service.DeleteItem(r.Context(), vars["cartUid"], vars["itemUid"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SortItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)

	var dto expense.SortRequestDTO
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

	published, err := h.service.SortItem(r.Context(), vars["cartUid"], vars["itemUid"], expense.SortRequest{
		PrimaryCategory:   dto.PrimaryCategory,
		CategoryMatch:     dto.CategoryMatch,
		SecondaryCategory: dto.SecondaryCategory,
	})
	if err != nil {
		if errors.Is(err, expense.ErrValidation) {
			w.WriteHeader(http.StatusBadRequest)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error: err.Error(),
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			}
			return
		}
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(expense.ExpenseDTO{
		Uid:               published.Uid,
		Name:              published.Name,
		FullPrice:         published.FullPrice,
		Date:              published.Date.Format(expense.DateFormat),
		PrimaryCategory:   published.PrimaryCategory,
		CategoryMatch:     published.CategoryMatch,
		SecondaryCategory: published.SecondaryCategory,
		CartUid:           published.CartUid,
		CartName:          published.CartName,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func decodeCart(w http.ResponseWriter, r *http.Request) (Cart, bool) {
	var dto CartDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Invalid request body format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return Cart{}, false
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
		return Cart{}, false
	}

	cart := Cart{
		Name:       dto.Name,
		TotalPrice: dto.TotalPrice,
		Date:       date,
	}
	for _, item := range dto.Items {
		cart.Items = append(cart.Items, CartItem{
			Name:  item.Name,
			Price: item.Price,
		})
	}
	return cart, true
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

func cartToDTO(c Cart) CartDTO {
	dto := CartDTO{
		Uid:        c.Uid,
		Name:       c.Name,
		TotalPrice: c.TotalPrice,
		Date:       c.Date.Format(DateFormat),
		Items:      make([]CartItemDTO, 0, len(c.Items)),
	}
	for _, item := range c.Items {
		dto.Items = append(dto.Items, CartItemDTO{
			Uid:               item.Uid,
			Name:              item.Name,
			Price:             item.Price,
			Position:          item.Position,
			PrimaryCategory:   item.PrimaryCategory,
			CategoryMatch:     item.CategoryMatch,
			SecondaryCategory: item.SecondaryCategory,
		})
	}
	return dto
}
