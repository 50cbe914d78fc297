package handler

import (
	"net/http"
	"time"

	"opengalaxy/apperr"
	"opengalaxy/model"
	"opengalaxy/service"

	"github.com/go-chi/chi/v5"
)

const (
	stateCookieName = "oauth_state"
	jwtCookieName   = "jwt"
)

type AuthHandler struct {
	auth        *service.AuthService
	frontendURL string
	secure      bool
	tokenTTL    time.Duration
}

func NewAuthHandler(auth *service.AuthService, frontendURL string, secure bool, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{auth: auth, frontendURL: frontendURL, secure: secure, tokenTTL: tokenTTL}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/github/login", h.Login)
	r.Get("/github/callback", h.Callback)
	r.Post("/logout", h.Logout)
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := service.NewState()
	if err != nil {
		RespondWithError(w, apperr.Internal(err, "failed to create OAuth state"))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.auth.LoginURL(state), http.StatusFound)
}

func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		RespondWithError(w, apperr.Unauthorized("invalid OAuth state"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/auth", MaxAge: -1})

	token, user, err := h.auth.HandleCallback(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		RespondWithError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     jwtCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	if h.frontendURL != "" {
		http.Redirect(w, r, h.frontendURL, http.StatusFound)
		return
	}
	RespondWithJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     jwtCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
