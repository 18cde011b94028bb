package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/campusconnect/campus-connect-api/internal/http/middleware"
	"github.com/campusconnect/campus-connect-api/internal/http/response"
	"github.com/campusconnect/campus-connect-api/internal/observability"
	"github.com/campusconnect/campus-connect-api/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthServiceInterface
	guard   service.AuthAbuseGuard
	logger  *slog.Logger
}

func NewAuthHandler(authSvc service.AuthServiceInterface, guard service.AuthAbuseGuard, logger *slog.Logger) *AuthHandler {
	if guard == nil {
		guard = service.NewNoopAuthAbuseGuard()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{authSvc: authSvc, guard: guard, logger: logger}
}

type registerRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	Account   any       `json:"account"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "register", status, time.Since(start))
	}()

	var body registerRequest
	if !decodeJSON(w, r, &body) {
		status = "rejected"
		return
	}
	err := h.authSvc.Register(r.Context(), service.RegisterInput{
		DisplayName: body.DisplayName,
		Email:       body.Email,
		Password:    body.Password,
	})
	if err != nil {
		status = "failure"
		observability.Audit(r, "auth.register.failed", "reason", auditReason(err))
		h.writeAuthError(w, r, err, http.StatusBadRequest)
		return
	}
	observability.Audit(r, "auth.register.success")
	response.JSON(w, r, http.StatusCreated, map[string]string{
		"message": "registration successful, check your email for a verification code",
	})
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "verify", status, time.Since(start))
	}()

	var body verifyRequest
	if !decodeJSON(w, r, &body) {
		status = "rejected"
		return
	}
	ip := observability.ClientIP(r)
	if h.throttled(w, r, service.AuthAbuseScopeVerify, body.Email, ip) {
		status = "throttled"
		return
	}
	err := h.authSvc.VerifyAccount(r.Context(), body.Email, strings.TrimSpace(body.Code))
	if err != nil {
		status = "failure"
		if errors.Is(err, service.ErrCodeMismatch) || errors.Is(err, service.ErrAccountNotFound) {
			h.registerFailure(r, service.AuthAbuseScopeVerify, body.Email, ip)
		}
		observability.Audit(r, "auth.verify.failed", "reason", auditReason(err))
		// Verify reports a missing account as a client error, not 404.
		h.writeAuthError(w, r, err, http.StatusBadRequest)
		return
	}
	h.resetGuard(r, service.AuthAbuseScopeVerify, body.Email, ip)
	observability.Audit(r, "auth.verify.success")
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "account verified"})
}

func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "verify_resend", status, time.Since(start))
	}()

	var body emailRequest
	if !decodeJSON(w, r, &body) {
		status = "rejected"
		return
	}
	if err := h.authSvc.ResendVerificationCode(r.Context(), body.Email); err != nil {
		status = "failure"
		observability.Audit(r, "auth.verify.resend.failed", "reason", auditReason(err))
		h.writeAuthError(w, r, err, http.StatusNotFound)
		return
	}
	observability.Audit(r, "auth.verify.resend.accepted")
	response.JSON(w, r, http.StatusAccepted, map[string]string{"message": "if the account is unverified, a new code has been sent"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "login", status, time.Since(start))
	}()

	var body loginRequest
	if !decodeJSON(w, r, &body) {
		status = "rejected"
		return
	}
	ip := observability.ClientIP(r)
	if h.throttled(w, r, service.AuthAbuseScopeLogin, body.Email, ip) {
		status = "throttled"
		return
	}
	result, err := h.authSvc.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		status = "failure"
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.registerFailure(r, service.AuthAbuseScopeLogin, body.Email, ip)
		}
		observability.Audit(r, "auth.login.failed", "reason", auditReason(err))
		h.writeAuthError(w, r, err, http.StatusBadRequest)
		return
	}
	h.resetGuard(r, service.AuthAbuseScopeLogin, body.Email, ip)
	observability.Audit(r, "auth.login.success", "account_id", result.Account.ID)
	response.JSON(w, r, http.StatusOK, loginResponse{
		Token:     result.Token,
		TokenType: "Bearer",
		ExpiresAt: result.ExpiresAt,
		Account:   result.Account,
	})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "password_forgot", status, time.Since(start))
	}()

	var body emailRequest
	if !decodeJSON(w, r, &body) {
		status = "rejected"
		return
	}
	ip := observability.ClientIP(r)
	if h.throttled(w, r, service.AuthAbuseScopeForgot, body.Email, ip) {
		status = "throttled"
		return
	}
	if err := h.authSvc.ForgotPassword(r.Context(), body.Email); err != nil {
		status = "failure"
		if errors.Is(err, service.ErrAccountNotFound) {
			h.registerFailure(r, service.AuthAbuseScopeForgot, body.Email, ip)
		}
		observability.Audit(r, "auth.password.forgot.failed", "reason", auditReason(err))
		h.writeAuthError(w, r, err, http.StatusNotFound)
		return
	}
	observability.Audit(r, "auth.password.forgot.accepted")
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "password reset email sent"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "password_reset", status, time.Since(start))
	}()

	var body resetRequest
	if !decodeJSON(w, r, &body) {
		status = "rejected"
		return
	}
	if err := h.authSvc.ResetPassword(r.Context(), strings.TrimSpace(body.Token), body.NewPassword); err != nil {
		status = "failure"
		observability.Audit(r, "auth.password.reset.failed", "reason", auditReason(err))
		h.writeAuthError(w, r, err, http.StatusBadRequest)
		return
	}
	observability.Audit(r, "auth.password.reset.success")
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "password updated"})
}

// throttled writes a 429 and returns true when the guard reports an active
// cooldown. Guard backend errors fail open.
func (h *AuthHandler) throttled(w http.ResponseWriter, r *http.Request, scope service.AuthAbuseScope, identity, ip string) bool {
	retryAfter, err := h.guard.Check(r.Context(), scope, identity, ip)
	if err != nil {
		observability.RecordAuthAbuseGuardEvent(r.Context(), string(scope), "check", "error")
		h.logger.WarnContext(r.Context(), "auth abuse guard check failed", "scope", scope, "error", err)
		return false
	}
	if retryAfter <= 0 {
		observability.RecordAuthAbuseGuardEvent(r.Context(), string(scope), "check", "allowed")
		return false
	}
	observability.RecordAuthAbuseGuardEvent(r.Context(), string(scope), "check", "blocked")
	observability.RecordAuthAbuseCooldown(r.Context(), string(scope), "check", retryAfter)
	observability.Audit(r, "auth.abuse.blocked", "scope", string(scope), "retry_after", retryAfter.String())
	w.Header().Set("Retry-After", middleware.RetryAfterHeader(retryAfter))
	response.Error(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many failed attempts, try again later", nil)
	return true
}

func (h *AuthHandler) registerFailure(r *http.Request, scope service.AuthAbuseScope, identity, ip string) {
	cooldown, err := h.guard.RegisterFailure(r.Context(), scope, identity, ip)
	if err != nil {
		observability.RecordAuthAbuseGuardEvent(r.Context(), string(scope), "failure", "error")
		h.logger.WarnContext(r.Context(), "auth abuse guard failure registration failed", "scope", scope, "error", err)
		return
	}
	outcome := "counted"
	if cooldown > 0 {
		outcome = "cooldown"
		observability.RecordAuthAbuseCooldown(r.Context(), string(scope), "failure", cooldown)
	}
	observability.RecordAuthAbuseGuardEvent(r.Context(), string(scope), "failure", outcome)
}

func (h *AuthHandler) resetGuard(r *http.Request, scope service.AuthAbuseScope, identity, ip string) {
	if err := h.guard.Reset(r.Context(), scope, identity, ip); err != nil {
		observability.RecordAuthAbuseGuardEvent(r.Context(), string(scope), "reset", "error")
		h.logger.WarnContext(r.Context(), "auth abuse guard reset failed", "scope", scope, "error", err)
		return
	}
	observability.RecordAuthAbuseGuardEvent(r.Context(), string(scope), "reset", "ok")
}

// writeAuthError is the single mapping from service errors to HTTP status and
// error code. notFoundStatus differs per route.
func (h *AuthHandler) writeAuthError(w http.ResponseWriter, r *http.Request, err error, notFoundStatus int) {
	writeServiceError(w, r, h.logger, err, notFoundStatus)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, notFoundStatus int) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "request validation failed", verr.Fields)
	case errors.Is(err, service.ErrAccountAlreadyExists):
		response.Error(w, r, http.StatusBadRequest, "ACCOUNT_ALREADY_EXISTS", "an account with this email already exists", nil)
	case errors.Is(err, service.ErrAccountNotFound):
		response.Error(w, r, notFoundStatus, "ACCOUNT_NOT_FOUND", "account not found", nil)
	case errors.Is(err, service.ErrCodeMismatch):
		response.Error(w, r, http.StatusBadRequest, "CODE_MISMATCH", "verification code does not match", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(w, r, http.StatusBadRequest, "INVALID_CREDENTIALS", "invalid email or password", nil)
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		response.Error(w, r, http.StatusBadRequest, "INVALID_OR_EXPIRED_TOKEN", "reset token is invalid or has expired", nil)
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large", nil)
			return false
		}
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", nil)
		return false
	}
	return true
}

func auditReason(err error) string {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return "validation"
	case errors.Is(err, service.ErrAccountAlreadyExists):
		return "account_exists"
	case errors.Is(err, service.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, service.ErrCodeMismatch):
		return "code_mismatch"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		return "invalid_or_expired_token"
	default:
		return "internal"
	}
}
