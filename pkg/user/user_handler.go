package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/persely/persely/internal/rest"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Uid         string      `json:"uid"`
	Email       string      `json:"email"`
	DisplayName string      `json:"displayName"`
	Settings    SettingsDTO `json:"settings"`
}

type SettingsDTO struct {
	IncludeUnsortedInTotal bool   `json:"includeUnsortedInTotal"`
	FilterMode             string `json:"filterMode"`
	FilterMonth            string `json:"filterMonth,omitempty"`
	FilterPeriodUid        string `json:"filterPeriodUid,omitempty"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{
		userService: userService,
	}
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Getting current user")

	currentUser, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(userToDTO(currentUser)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Updating user settings")

	var dto SettingsDTO
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

	settings, err := h.userService.UpdateSettings(r.Context(), Settings{
		IncludeUnsortedInTotal: dto.IncludeUnsortedInTotal,
		FilterMode:             FilterMode(dto.FilterMode),
		FilterMonth:            dto.FilterMonth,
		FilterPeriodUid:        dto.FilterPeriodUid,
	})
	if err != nil {
		if errors.Is(err, ErrUserDataInvalid) {
			w.WriteHeader(http.StatusBadRequest)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error: "Invalid settings",
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			}
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(settingsToDTO(settings)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func userToDTO(u User) UserDTO {
	return UserDTO{
		Uid:         u.Uid,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Settings:    settingsToDTO(u.Settings),
	}
}

func settingsToDTO(s Settings) SettingsDTO {
	return SettingsDTO{
		IncludeUnsortedInTotal: s.IncludeUnsortedInTotal,
		FilterMode:             string(s.FilterMode),
		FilterMonth:            s.FilterMonth,
		FilterPeriodUid:        s.FilterPeriodUid,
	}
}
