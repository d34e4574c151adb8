package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"todolist/api/internal/auth"

	"github.com/sirupsen/logrus"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// loginForm follows the OAuth2 password grant: the email travels as "username".
type loginForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid form body")
		return
	}
	form := loginForm{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Password: r.PostForm.Get("password"),
	}
	if err := s.validateStruct(form); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	token, user, err := s.auth.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, auth.ErrIncorrectCredentials) {
			s.metrics.login("rejected")
			writeError(w, http.StatusBadRequest, "Incorrect email or password")
			return
		}
		s.log.WithError(err).Error("login")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.metrics.login("accepted")
	s.log.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"request_id": r.Header.Get(requestIDHeader),
	}).Info("user logged in")
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	token, err := s.auth.Tokens().Refresh(tokenFromContext(r.Context()))
	if err != nil {
		// The token just passed requireUser, so this only happens if it expired in between.
		writeUnauthorized(w, "Could not authenticate user")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}
