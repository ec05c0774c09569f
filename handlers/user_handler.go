package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"parkingQrAPI/internal/apperr"
	"parkingQrAPI/internal/user"
	"parkingQrAPI/services"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	email := mux.Vars(r)["email"]
	if email == "" {
		respondWithError(w, http.StatusBadRequest, "Email is required")
		return
	}

	info, err := h.userService.GetUserInfo(ctx, email)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithSuccess(w, http.StatusOK, "User info retrieved successfully", info)
}

func (h *UserHandler) UpgradeToPremium(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req user.UpgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" {
		respondWithError(w, http.StatusBadRequest, "Email is required")
		return
	}

	u, err := h.userService.UpgradeToPremium(ctx, req.Email)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithSuccess(w, http.StatusOK, "Upgraded to premium successfully", &user.UpgradeResponse{
		Email: u.Email,
		Plan:  u.Plan,
	})
}

// apiResponse is the envelope every endpoint uses. Failures carry success
// false and a message, never a stack trace.
type apiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success": false, "message": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithSuccess(w http.ResponseWriter, code int, message string, data interface{}) {
	respondWithJSON(w, code, &apiResponse{Success: true, Message: message, Data: data})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, &apiResponse{Success: false, Message: message})
}

// respondWithAppError translates typed business failures to their status and
// everything else to a generic 500. Detail goes to the log, not the client.
func respondWithAppError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		if appErr.Err != nil {
			log.Printf("Request failed (%d): %v", appErr.Status, appErr.Err)
		}
		respondWithError(w, appErr.Status, appErr.Message)
		return
	}

	log.Printf("Internal error: %v", err)
	respondWithError(w, http.StatusInternalServerError, "Internal server error")
}
