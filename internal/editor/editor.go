// Package editor implements product draft sessions: the staging area where
// a product is assembled field by field, images are uploaded, and the
// result is validated and submitted to the store.
package editor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/studentalliance/catalog-gateway/internal/apperr"
	"github.com/studentalliance/catalog-gateway/internal/model"
	"github.com/studentalliance/catalog-gateway/pkg/validator"
	"github.com/studentalliance/catalog-gateway/pkg/zerror"
)

// PrimaryImageSlot addresses the main product image in upload calls.
// Slots 1 through model.AdditionalImageSlots address the secondary images.
const PrimaryImageSlot = 0

// Uploader pushes an image file to external storage and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, file io.Reader) (string, error)
}

// Mutator persists a finished draft. Satisfied by the product store.
type Mutator interface {
	Create(ctx context.Context, product model.Product, token string) (model.Product, error)
	Update(ctx context.Context, id string, product model.Product, token string) (model.Product, error)
}

// Draft is a caller-facing snapshot of an editing session.
type Draft struct {
	ID              string        `json:"draftId"`
	Product         model.Product `json:"product"`
	UploadsInFlight []int         `json:"uploadsInFlight"`
}

type session struct {
	product model.Product
	uploads map[int]bool
}

type Editor struct {
	logger    *slog.Logger
	validator validator.Validator
	uploader  Uploader
	mutator   Mutator

	mu     sync.Mutex
	drafts map[string]*session
}

func New(logger *slog.Logger, v validator.Validator, uploader Uploader, mutator Mutator) *Editor {
	return &Editor{
		logger:    logger.With(slog.String("service", "editor")),
		validator: v,
		uploader:  uploader,
		mutator:   mutator,
		drafts:    make(map[string]*session),
	}
}

// Open starts a new draft session. With initial == nil the draft begins as
// a field-complete default template; otherwise the given product is edited
// in place, which makes the eventual submit an update instead of a create.
func (e *Editor) Open(initial *model.Product) Draft {
	product := model.NewProduct()
	if initial != nil {
		product = initial.Normalized()
	}

	id := uuid.NewString()

	e.mu.Lock()
	e.drafts[id] = &session{
		product: product,
		uploads: make(map[int]bool),
	}
	e.mu.Unlock()

	return Draft{ID: id, Product: product, UploadsInFlight: []int{}}
}

// Get returns the current state of a draft.
func (e *Editor) Get(draftID string) (Draft, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.drafts[draftID]
	if !ok {
		return Draft{}, apperr.DraftNotFoundErr
	}

	return snapshotLocked(draftID, sess), nil
}

// Discard drops a draft session. Nothing has reached the remote service or
// the store at this point, so discarding is always safe.
func (e *Editor) Discard(draftID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.drafts[draftID]; !ok {
		return apperr.DraftNotFoundErr
	}

	delete(e.drafts, draftID)
	return nil
}

// FormPatch carries the form's string-typed field values. Numeric fields
// arrive as strings and are coerced here; a non-numeric value is rejected
// before anything touches the network. Nil fields are left untouched.
type FormPatch struct {
	Name             *string   `json:"name"`
	Price            *string   `json:"price"`
	Description      *string   `json:"description"`
	Category         *string   `json:"category"`
	Image            *string   `json:"image"`
	AdditionalImages []*string `json:"additionalImages"`
	Rating           *string   `json:"rating"`
	Quantity         *string   `json:"quantity"`
	Discount         *string   `json:"discount"`
	Stocks           *string   `json:"stocks"`
	Features         []string  `json:"features"`
	AddFeature       *string   `json:"addFeature"`
}

// Apply overlays a form patch onto the draft.
func (e *Editor) Apply(draftID string, patch FormPatch) (Draft, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.drafts[draftID]
	if !ok {
		return Draft{}, apperr.DraftNotFoundErr
	}

	// Normalized copies the slice fields, so a rejected patch never leaves
	// partial writes behind on the session.
	product := sess.product.Normalized()

	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Category != nil {
		product.Category = model.Category(*patch.Category)
	}
	if patch.Image != nil {
		product.Image = *patch.Image
	}
	for i, img := range patch.AdditionalImages {
		if i >= model.AdditionalImageSlots {
			break
		}
		if img != nil {
			product.AdditionalImages[i] = *img
		}
	}

	if err := coerceFloat(patch.Price, "price", &product.Price); err != nil {
		return Draft{}, err
	}
	if err := coerceFloat(patch.Rating, "rating", &product.Rating); err != nil {
		return Draft{}, err
	}
	if err := coerceFloat(patch.Discount, "discount", &product.Discount); err != nil {
		return Draft{}, err
	}
	if err := coerceInt(patch.Quantity, "quantity", &product.Quantity); err != nil {
		return Draft{}, err
	}
	if err := coerceInt(patch.Stocks, "stocks", &product.Stocks); err != nil {
		return Draft{}, err
	}

	if patch.Features != nil {
		product.Features = patch.Features
	}
	if patch.AddFeature != nil {
		product.AddFeature(*patch.AddFeature)
	}

	sess.product = product.Normalized()
	return snapshotLocked(draftID, sess), nil
}

// AttachImage uploads a file into the given slot and stores the hosted URL
// on the draft. The slot is marked in-flight for the duration of the
// upload, which blocks Submit.
func (e *Editor) AttachImage(ctx context.Context, draftID string, slot int, filename string, file io.Reader) (Draft, error) {
	if slot < PrimaryImageSlot || slot > model.AdditionalImageSlots {
		return Draft{}, zerror.NewBadRequest(apperr.ValidationErrorCode,
			fmt.Sprintf("image slot must be between %d and %d", PrimaryImageSlot, model.AdditionalImageSlots))
	}

	e.mu.Lock()
	sess, ok := e.drafts[draftID]
	if !ok {
		e.mu.Unlock()
		return Draft{}, apperr.DraftNotFoundErr
	}
	if sess.uploads[slot] {
		e.mu.Unlock()
		return Draft{}, apperr.UploadInFlightErr
	}
	sess.uploads[slot] = true
	e.mu.Unlock()

	url, err := e.uploader.Upload(ctx, filename, file)

	e.mu.Lock()
	defer e.mu.Unlock()

	// The session may have been discarded while the upload was running.
	sess, ok = e.drafts[draftID]
	if !ok {
		return Draft{}, apperr.DraftNotFoundErr
	}
	delete(sess.uploads, slot)

	if err != nil {
		return Draft{}, err
	}

	if slot == PrimaryImageSlot {
		sess.product.Image = url
	} else {
		sess.product.AdditionalImages[slot-1] = url
	}

	return snapshotLocked(draftID, sess), nil
}

// submitForm is the shape validated on submit. Name, price, primary image
// and category are hard requirements; the remaining numeric fields only
// need to stay inside their ranges.
type submitForm struct {
	Name     string         `validate:"required"`
	Price    float64        `validate:"required,gt=0"`
	Image    string         `validate:"required"`
	Category model.Category `validate:"required,enum"`
	Rating   float64        `validate:"gte=0,lte=5"`
	Discount float64        `validate:"gte=0,lte=100"`
	Quantity int            `validate:"gte=0"`
	Stocks   int            `validate:"gte=0"`
}

// Submit validates the draft and persists it: a create when the draft has
// no ID yet, an update otherwise. On success the session is closed.
func (e *Editor) Submit(ctx context.Context, draftID string, token string) (model.Product, error) {
	e.mu.Lock()
	sess, ok := e.drafts[draftID]
	if !ok {
		e.mu.Unlock()
		return model.Product{}, apperr.DraftNotFoundErr
	}
	if len(sess.uploads) > 0 {
		e.mu.Unlock()
		return model.Product{}, apperr.UploadInFlightErr
	}
	product := sess.product
	e.mu.Unlock()

	if err := e.validator.Validate(submitForm{
		Name:     product.Name,
		Price:    product.Price,
		Image:    product.Image,
		Category: product.Category,
		Rating:   product.Rating,
		Discount: product.Discount,
		Quantity: product.Quantity,
		Stocks:   product.Stocks,
	}); err != nil {
		return model.Product{}, err
	}

	var (
		persisted model.Product
		err       error
	)
	if product.IsDraft() {
		persisted, err = e.mutator.Create(ctx, product, token)
	} else {
		persisted, err = e.mutator.Update(ctx, product.ID, product, token)
	}
	if err != nil {
		return model.Product{}, err
	}

	e.mu.Lock()
	delete(e.drafts, draftID)
	e.mu.Unlock()

	e.logger.InfoContext(ctx, "draft submitted",
		slog.String("draft_id", draftID),
		slog.String("product_id", persisted.ID),
	)

	return persisted, nil
}

func snapshotLocked(id string, sess *session) Draft {
	inFlight := make([]int, 0, len(sess.uploads))
	for slot := range sess.uploads {
		inFlight = append(inFlight, slot)
	}

	return Draft{ID: id, Product: sess.product, UploadsInFlight: inFlight}
}

func coerceFloat(s *string, field string, dst *float64) error {
	if s == nil {
		return nil
	}
	if *s == "" {
		*dst = 0
		return nil
	}
	v, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return zerror.NewValidationFailed(apperr.ValidationErrorCode,
			fmt.Sprintf("%s must be a number", field))
	}
	*dst = v
	return nil
}

func coerceInt(s *string, field string, dst *int) error {
	if s == nil {
		return nil
	}
	if *s == "" {
		*dst = 0
		return nil
	}
	v, err := strconv.Atoi(*s)
	if err != nil {
		return zerror.NewValidationFailed(apperr.ValidationErrorCode,
			fmt.Sprintf("%s must be a whole number", field))
	}
	*dst = v
	return nil
}
