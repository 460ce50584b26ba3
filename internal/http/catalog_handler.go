package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/studentalliance/catalog-gateway/internal/apperr"
	"github.com/studentalliance/catalog-gateway/internal/model"
	"github.com/studentalliance/catalog-gateway/pkg/zerror"
)

// browseCategory serves the public per-category catalog pages. These read
// straight from the remote product service; they never touch the admin
// working set. A failed remote fetch degrades to an empty list rather than
// an error page.
func (s *Service) browseCategory(w http.ResponseWriter, r *http.Request) {
	category := model.Category(chi.URLParam(r, "category"))
	if err := category.Validate(); err != nil {
		s.handleResponseError(w, r, zerror.NewBadRequest(apperr.ValidationErrorCode, err.Error()))
		return
	}

	products, err := s.productCli.ListByCategory(r.Context(), category)
	if err != nil {
		s.logger.WarnContext(r.Context(), "failed to fetch category products",
			slog.String("category", string(category)),
			slog.Any("error", err))
		products = []model.Product{}
	}

	s.respondJSON(w, r, http.StatusOK, products)
}
