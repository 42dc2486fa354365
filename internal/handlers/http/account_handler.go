package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"moviehub/internal/core/domain"
	"moviehub/internal/core/ports"
	apperrors "moviehub/pkg/errors"

	"github.com/gin-gonic/gin"
)

const (
	ActionSignup = "signup"
	ActionLogin  = "login"

	msgSignupOK      = "User created successfully"
	msgLoginOK       = "Login successful"
	msgInvalidAction = "Invalid action"
	msgServerError   = "Server error"
)

// AccountMetrics is satisfied by the Prometheus collector.
type AccountMetrics interface {
	RecordAccountOperation(action, outcome string)
}

var errNullBody = errors.New("auth request body is null")

type authRequest struct {
	Action   string `json:"action"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the envelope for every account endpoint answer.
type authResponse struct {
	Success bool            `json:"success"`
	User    *domain.Profile `json:"user,omitempty"`
	Message string          `json:"message,omitempty"`
}

type AccountHandler struct {
	accounts ports.AccountService
	metrics  AccountMetrics
}

var _ ports.AccountHandler = (*AccountHandler)(nil)

// NewAccountHandler builds the account endpoint. metrics may be nil.
func NewAccountHandler(accounts ports.AccountService, metrics AccountMetrics) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		metrics:  metrics,
	}
}

func (h *AccountHandler) SetupRoutes(router gin.IRouter) {
	for _, path := range []string{"/api/auth", "/.netlify/functions/auth"} {
		router.POST(path, h.HandleAuth)
		router.OPTIONS(path, preflight)
	}
}

// HandleAuth dispatches on the action field of the JSON body.
func (h *AccountHandler) HandleAuth(c *gin.Context) {
	req, err := decodeAuthRequest(c)
	if err != nil {
		_ = c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal, "malformed auth request", http.StatusInternalServerError))
		h.record("unknown", "error")
		c.JSON(http.StatusInternalServerError, authResponse{Message: msgServerError})
		return
	}

	ctx := c.Request.Context()

	switch req.Action {
	case ActionSignup:
		profile, err := h.accounts.CreateUser(ctx, req.Name, req.Email, req.Password)
		if err != nil {
			h.fail(c, req.Action, err)
			return
		}
		h.record(req.Action, "success")
		c.JSON(http.StatusCreated, authResponse{Success: true, User: &profile, Message: msgSignupOK})

	case ActionLogin:
		profile, err := h.accounts.VerifyCredentials(ctx, req.Email, req.Password)
		if err != nil {
			h.fail(c, req.Action, err)
			return
		}
		h.record(req.Action, "success")
		c.JSON(http.StatusOK, authResponse{Success: true, User: &profile, Message: msgLoginOK})

	default:
		_ = c.Error(apperrors.NewValidationError(domain.ErrInvalidAction, msgInvalidAction).
			WithContext("action", req.Action))
		h.record("unknown", "invalid_action")
		c.JSON(http.StatusBadRequest, authResponse{Message: msgInvalidAction})
	}
}

// decodeAuthRequest requires a JSON object; null, arrays and empty bodies
// are malformed.
func decodeAuthRequest(c *gin.Context) (*authRequest, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, err
	}

	var req *authRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errNullBody
	}
	return req, nil
}

// fail writes user-correctable errors with their own message and status;
// anything else collapses to the generic 500.
func (h *AccountHandler) fail(c *gin.Context, action string, err error) {
	_ = c.Error(err)

	appErr := apperrors.GetAppError(err)
	if appErr == nil || appErr.HTTPStatus >= http.StatusInternalServerError {
		h.record(action, "error")
		c.JSON(http.StatusInternalServerError, authResponse{Message: msgServerError})
		return
	}

	outcome := "validation_error"
	if errors.Is(err, domain.ErrInvalidCredentials) {
		outcome = "invalid_credentials"
	}
	h.record(action, outcome)
	c.JSON(appErr.HTTPStatus, authResponse{Message: appErr.Message})
}

func (h *AccountHandler) record(action, outcome string) {
	if h.metrics != nil {
		h.metrics.RecordAccountOperation(action, outcome)
	}
}

// preflight answers OPTIONS for routers mounted without CORSMiddleware.
func preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}
