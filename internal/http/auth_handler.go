package http

import (
	"encoding/json"
	"net/http"

	"github.com/studentalliance/catalog-gateway/internal/apperr"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type updatePasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (s *Service) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := s.authCli.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.handleResponseError(w, r, err)
		return
	}

	s.respondJSON(w, r, http.StatusOK, result)
}

func (s *Service) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	created, err := s.authCli.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.handleResponseError(w, r, err)
		return
	}

	s.respondJSON(w, r, http.StatusCreated, created)
}

func (s *Service) updatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	if err := s.authCli.UpdatePassword(r.Context(), req.Email, req.Password); err != nil {
		s.handleResponseError(w, r, err)
		return
	}

	s.respondJSON(w, r, http.StatusNoContent, nil)
}

func (s *Service) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		s.handleResponseError(w, r, apperr.ValidationErr.WrapParent(err))
		return false
	}

	if err := s.validator.Validate(req); err != nil {
		s.handleResponseError(w, r, err)
		return false
	}

	return true
}
