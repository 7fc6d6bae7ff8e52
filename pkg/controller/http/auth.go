package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/model/auth"
	"github.com/secmon-lab/orgdesk/pkg/usecase"
	"github.com/secmon-lab/orgdesk/pkg/utils/errutil"
)

type AuthUseCase = usecase.AuthUseCaseInterface

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password" masq:"secret"`
}

type userMeResponse struct {
	Sub       string    `json:"sub"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func newUserMeResponse(token *auth.Token) userMeResponse {
	return userMeResponse{
		Sub:       token.Sub,
		Email:     token.Email,
		Name:      token.Name,
		ExpiresAt: token.ExpiresAt,
	}
}

func setTokenCookies(w http.ResponseWriter, r *http.Request, token *auth.Token) {
	for name, value := range map[string]string{
		tokenIDCookieName:     token.ID.String(),
		tokenSecretCookieName: token.Secret.String(),
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
			Expires:  token.ExpiresAt,
		})
	}
}

func clearTokenCookies(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{tokenIDCookieName, tokenSecretCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}

// authLoginHandler checks the email/password pair and sets the session cookies
func authLoginHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		token, err := authUC.SignIn(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, usecase.ErrInvalidCredential) {
				errutil.HandleHTTP(r.Context(), w, usecase.ErrInvalidCredential, http.StatusUnauthorized)
				return
			}
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to sign in"), http.StatusInternalServerError)
			return
		}

		setTokenCookies(w, r, token)
		writeJSON(r.Context(), w, http.StatusOK, newUserMeResponse(token))
	}
}

// authLogoutHandler handles user logout
func authLogoutHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenIDCookie, err := r.Cookie(tokenIDCookieName)
		if err == nil {
			tokenID := auth.TokenID(tokenIDCookie.Value)
			if err := authUC.Logout(r.Context(), tokenID); err != nil {
				errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to logout"), http.StatusInternalServerError)
				return
			}
		}

		clearTokenCookies(w, r)
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

// authMeHandler returns current user information
func authMeHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := tokenFromRequest(r, authUC)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusUnauthorized)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, newUserMeResponse(token))
	}
}
