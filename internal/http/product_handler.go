package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/studentalliance/catalog-gateway/internal/apperr"
	"github.com/studentalliance/catalog-gateway/internal/editor"
	"github.com/studentalliance/catalog-gateway/internal/http/middleware"
	"github.com/studentalliance/catalog-gateway/internal/model"
	"github.com/studentalliance/catalog-gateway/internal/view"
	"github.com/studentalliance/catalog-gateway/pkg/zerror"
)

func (s *Service) listProducts(w http.ResponseWriter, r *http.Request) {
	result := s.viewSvc.List(view.ListParams{
		Search: r.URL.Query().Get("search"),
		Sort:   r.URL.Query().Get("sort"),
		Order:  r.URL.Query().Get("order"),
	})

	s.respondJSON(w, r, http.StatusOK, result)
}

func (s *Service) openDraft(w http.ResponseWriter, r *http.Request) {
	var initial *model.Product

	if productID := r.URL.Query().Get("productId"); productID != "" {
		for _, p := range s.storeSvc.Products() {
			if p.ID == productID {
				product := p
				initial = &product
				break
			}
		}
		if initial == nil {
			s.handleResponseError(w, r, apperr.ProductNotFoundErr)
			return
		}
	}

	draft := s.editorSvc.Open(initial)
	s.respondJSON(w, r, http.StatusCreated, draft)
}

func (s *Service) getDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := s.editorSvc.Get(chi.URLParam(r, "draftID"))
	if err != nil {
		s.handleResponseError(w, r, err)
		return
	}

	s.respondJSON(w, r, http.StatusOK, draft)
}

func (s *Service) applyDraftPatch(w http.ResponseWriter, r *http.Request) {
	var patch editor.FormPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.handleResponseError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	draft, err := s.editorSvc.Apply(chi.URLParam(r, "draftID"), patch)
	if err != nil {
		s.handleResponseError(w, r, err)
		return
	}

	s.respondJSON(w, r, http.StatusOK, draft)
}

func (s *Service) discardDraft(w http.ResponseWriter, r *http.Request) {
	if err := s.editorSvc.Discard(chi.URLParam(r, "draftID")); err != nil {
		s.handleResponseError(w, r, err)
		return
	}

	s.respondJSON(w, r, http.StatusNoContent, nil)
}

// maxUploadBytes caps image uploads at 10 MB.
const maxUploadBytes = 10 << 20

func (s *Service) uploadDraftImage(w http.ResponseWriter, r *http.Request) {
	slot, err := strconv.Atoi(r.URL.Query().Get("slot"))
	if err != nil {
		s.handleResponseError(w, r, zerror.NewBadRequest(apperr.ValidationErrorCode, "slot must be a number"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.handleResponseError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.handleResponseError(w, r, zerror.NewBadRequest(apperr.ValidationErrorCode, "a file field is required"))
		return
	}
	defer file.Close()

	draft, err := s.editorSvc.AttachImage(r.Context(), chi.URLParam(r, "draftID"), slot, header.Filename, file)
	if err != nil {
		s.handleResponseError(w, r, err)
		return
	}

	s.respondJSON(w, r, http.StatusOK, draft)
}

func (s *Service) submitDraft(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r.Context())
	if token == "" {
		s.handleResponseError(w, r, apperr.UnauthorizedErr)
		return
	}

	product, err := s.editorSvc.Submit(r.Context(), chi.URLParam(r, "draftID"), token)
	if err != nil {
		s.handleResponseError(w, r, err)
		return
	}

	s.respondJSON(w, r, http.StatusOK, product)
}

func (s *Service) stageDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.viewSvc.StageDelete(chi.URLParam(r, "productID")); err != nil {
		s.handleResponseError(w, r, err)
		return
	}

	s.respondJSON(w, r, http.StatusAccepted, nil)
}

func (s *Service) confirmDelete(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r.Context())
	if token == "" {
		s.handleResponseError(w, r, apperr.UnauthorizedErr)
		return
	}

	if err := s.viewSvc.ConfirmDelete(r.Context(), chi.URLParam(r, "productID"), token); err != nil {
		s.handleResponseError(w, r, err)
		return
	}

	s.respondJSON(w, r, http.StatusNoContent, nil)
}

func (s *Service) cancelDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.viewSvc.CancelDelete(chi.URLParam(r, "productID")); err != nil {
		s.handleResponseError(w, r, err)
		return
	}

	s.respondJSON(w, r, http.StatusNoContent, nil)
}
