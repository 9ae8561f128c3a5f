package auth

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/worksheet-lab/pkg/handlers"
	"github.com/JaimeStill/worksheet-lab/pkg/openapi"
	"github.com/JaimeStill/worksheet-lab/pkg/routes"
)

// LoginCommand carries admin credentials.
type LoginCommand struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// Handler exchanges admin credentials for a bearer token.
type Handler struct {
	issuer   Issuer
	username string
	password string
	logger   *slog.Logger
}

// NewHandler creates a login handler checking credentials from cfg.
func NewHandler(issuer Issuer, cfg *Config, logger *slog.Logger) *Handler {
	return &Handler{
		issuer:   issuer,
		username: cfg.AdminUsername,
		password: cfg.AdminPassword,
		logger:   logger.With("handler", "auth"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/admin",
		Tags:        []string{"Admin"},
		Description: "Admin authentication",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/login", Handler: h.Login, OpenAPI: Spec.Login},
		},
		Schemas: Spec.Schemas(),
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var cmd LoginCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if !h.matches(cmd) {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrInvalidCredentials)
		return
	}

	token, claims, err := h.issuer.Issue(r.Context(), cmd.Username)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, LoginResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Format(time.RFC3339),
	})
}

// An empty configured password never matches.
func (h *Handler) matches(cmd LoginCommand) bool {
	if h.password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(cmd.Username), []byte(h.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(cmd.Password), []byte(h.password)) == 1
	return userOK && passOK
}

type spec struct {
	Login *openapi.Operation
}

var Spec = spec{
	Login: &openapi.Operation{
		Summary:     "Admin login",
		Description: "Exchange admin credentials for a bearer token",
		RequestBody: openapi.RequestBodyJSON("LoginCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Token issued", "LoginResult"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
		},
	},
}

func (spec) Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"LoginCommand": {
			Type:     "object",
			Required: []string{"username", "password"},
			Properties: map[string]*openapi.Schema{
				"username": {Type: "string"},
				"password": {Type: "string"},
			},
		},
		"LoginResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"token":     {Type: "string", Description: "HS256 bearer token"},
				"expiresAt": {Type: "string", Format: "date-time"},
			},
		},
	}
}
