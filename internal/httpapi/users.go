package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"todolist/api/internal/auth"
	"todolist/api/internal/model"
	"todolist/api/internal/store"

	"github.com/sirupsen/logrus"
)

type userRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type usersResponse struct {
	Users []userResponse `json:"users"`
}

func newUserResponse(u model.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

// decodeUser trims username and email before validation so blank values are
// rejected as missing.
func (s *Server) decodeUser(r *http.Request) (userRequest, error) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		return req, err
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	return req, s.validateStruct(req)
}

// hashPassword writes the response itself and reports false on failure.
func (s *Server) hashPassword(w http.ResponseWriter, password string) (string, bool) {
	hash, err := s.passwords.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			writeError(w, http.StatusUnprocessableEntity,
				fmt.Sprintf("password: must be at most %d bytes", auth.MaxPasswordBytes))
			return "", false
		}
		s.log.WithError(err).Error("hash password")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return "", false
	}
	return hash, true
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeUser(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	hash, ok := s.hashPassword(w, req.Password)
	if !ok {
		return
	}

	created, err := s.store.CreateUser(r.Context(), model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		var conflict *store.ConflictError
		if errors.As(err, &conflict) {
			writeError(w, http.StatusBadRequest, createConflictDetail(conflict.Field))
			return
		}
		s.log.WithError(err).Error("create user")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.log.WithFields(logrus.Fields{
		"user_id":    created.ID,
		"request_id": r.Header.Get(requestIDHeader),
	}).Info("user created")
	writeJSON(w, http.StatusCreated, newUserResponse(created))
}

func createConflictDetail(field string) string {
	switch field {
	case store.FieldUsername:
		return "Username already exists"
	case store.FieldEmail:
		return "Email already exists"
	default:
		return "Username or Email already exists"
	}
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	users, err := s.store.ListUsers(r.Context(), store.UserFilter{Offset: skip, Limit: limit})
	if err != nil {
		s.log.WithError(err).Error("list users")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := usersResponse{Users: make([]userResponse, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, newUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	u, err := s.store.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User Not Found")
			return
		}
		s.log.WithError(err).Error("get user")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(*u))
}

// handleUpdateUser replaces username, email and password of the caller's own record.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	current := userFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := auth.CheckOwner(current, id); err != nil {
		writeError(w, http.StatusForbidden, "Not enough permissions")
		return
	}

	req, err := s.decodeUser(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	hash, ok := s.hashPassword(w, req.Password)
	if !ok {
		return
	}

	updated, err := s.store.UpdateUser(r.Context(), model.User{
		ID:           current.ID,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			writeError(w, http.StatusConflict, "Username or Email already exists")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "User Not Found")
		default:
			s.log.WithError(err).Error("update user")
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(updated))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	current := userFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := auth.CheckOwner(current, id); err != nil {
		writeError(w, http.StatusForbidden, "Not enough permissions")
		return
	}

	if err := s.store.DeleteUser(r.Context(), current.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User Not Found")
			return
		}
		s.log.WithError(err).Error("delete user")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.bus.DropUser(current.ID)
	s.log.WithFields(logrus.Fields{
		"user_id":    current.ID,
		"request_id": r.Header.Get(requestIDHeader),
	}).Info("user deleted")
	writeJSON(w, http.StatusOK, messageResponse{Message: "User deleted"})
}
