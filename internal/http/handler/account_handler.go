package handler

import (
	"log/slog"
	"net/http"

	"github.com/campusconnect/campus-connect-api/internal/http/middleware"
	"github.com/campusconnect/campus-connect-api/internal/http/response"
	"github.com/campusconnect/campus-connect-api/internal/service"
)

type AccountHandler struct {
	authSvc service.AuthServiceInterface
	logger  *slog.Logger
}

func NewAccountHandler(authSvc service.AuthServiceInterface, logger *slog.Logger) *AccountHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountHandler{authSvc: authSvc, logger: logger}
}

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.AccountID() == "" {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	profile, err := h.authSvc.CurrentAccount(r.Context(), claims.AccountID())
	if err != nil {
		writeServiceError(w, r, h.logger, err, http.StatusNotFound)
		return
	}
	response.JSON(w, r, http.StatusOK, profile)
}
