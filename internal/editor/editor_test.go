package editor_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentalliance/catalog-gateway/internal/apperr"
	"github.com/studentalliance/catalog-gateway/internal/editor"
	"github.com/studentalliance/catalog-gateway/internal/model"
	"github.com/studentalliance/catalog-gateway/pkg/ptr"
	"github.com/studentalliance/catalog-gateway/pkg/validator"
	"github.com/studentalliance/catalog-gateway/pkg/zerror"
)

type fakeUploader struct {
	mu      sync.Mutex
	url     string
	err     error
	calls   int
	started chan struct{}
	release chan struct{}
}

func (f *fakeUploader) Upload(_ context.Context, _ string, _ io.Reader) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}

	return f.url, f.err
}

type fakeMutator struct {
	created []model.Product
	updated []model.Product
	err     error
}

func (f *fakeMutator) Create(_ context.Context, p model.Product, _ string) (model.Product, error) {
	if f.err != nil {
		return model.Product{}, f.err
	}
	p.ID = "created-1"
	f.created = append(f.created, p)
	return p, nil
}

func (f *fakeMutator) Update(_ context.Context, id string, p model.Product, _ string) (model.Product, error) {
	if f.err != nil {
		return model.Product{}, f.err
	}
	p.ID = id
	f.updated = append(f.updated, p)
	return p, nil
}

func newEditor(t *testing.T, uploader *fakeUploader, mutator *fakeMutator) *editor.Editor {
	t.Helper()

	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	return editor.New(logger, v, uploader, mutator)
}

func validPatch() editor.FormPatch {
	return editor.FormPatch{
		Name:     ptr.New("Studio Mic"),
		Price:    ptr.New("149.99"),
		Category: ptr.New("Mic"),
		Image:    ptr.New("https://img.example/mic.png"),
	}
}

func TestOpen(t *testing.T) {
	e := newEditor(t, &fakeUploader{}, &fakeMutator{})

	t.Run("Should start from a field-complete template", func(t *testing.T) {
		draft := e.Open(nil)

		assert.NotEmpty(t, draft.ID)
		assert.True(t, draft.Product.IsDraft())
		assert.Len(t, draft.Product.AdditionalImages, model.AdditionalImageSlots)
		assert.Empty(t, draft.UploadsInFlight)
	})

	t.Run("Should edit an existing product in place", func(t *testing.T) {
		existing := model.NewProduct()
		existing.ID = "p-1"
		existing.Name = "Board"

		draft := e.Open(&existing)

		assert.Equal(t, "p-1", draft.Product.ID)
		assert.Equal(t, "Board", draft.Product.Name)
	})
}

func TestApply(t *testing.T) {
	t.Run("Should coerce numeric strings", func(t *testing.T) {
		e := newEditor(t, &fakeUploader{}, &fakeMutator{})
		draft := e.Open(nil)

		got, err := e.Apply(draft.ID, editor.FormPatch{
			Price:    ptr.New("1200.50"),
			Quantity: ptr.New("3"),
			Stocks:   ptr.New("15"),
			Rating:   ptr.New("4.5"),
		})
		require.NoError(t, err)

		assert.Equal(t, 1200.50, got.Product.Price)
		assert.Equal(t, 3, got.Product.Quantity)
		assert.Equal(t, 15, got.Product.Stocks)
		assert.Equal(t, 4.5, got.Product.Rating)
	})

	t.Run("Should reject non-numeric values and leave the draft untouched", func(t *testing.T) {
		e := newEditor(t, &fakeUploader{}, &fakeMutator{})
		draft := e.Open(nil)

		_, err := e.Apply(draft.ID, editor.FormPatch{
			Name:  ptr.New("Mic"),
			Price: ptr.New("abc"),
		})
		require.Error(t, err)

		var zErr zerror.ZError
		require.ErrorAs(t, err, &zErr)
		assert.Equal(t, "price must be a number", zErr.Msg())

		got, err := e.Get(draft.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Product.Name)
		assert.Zero(t, got.Product.Price)
	})

	t.Run("Should treat empty numeric strings as zero", func(t *testing.T) {
		e := newEditor(t, &fakeUploader{}, &fakeMutator{})
		draft := e.Open(nil)

		_, err := e.Apply(draft.ID, editor.FormPatch{Price: ptr.New("10")})
		require.NoError(t, err)

		got, err := e.Apply(draft.ID, editor.FormPatch{Price: ptr.New("")})
		require.NoError(t, err)
		assert.Zero(t, got.Product.Price)
	})

	t.Run("Should add features without duplicates", func(t *testing.T) {
		e := newEditor(t, &fakeUploader{}, &fakeMutator{})
		draft := e.Open(nil)

		_, err := e.Apply(draft.ID, editor.FormPatch{AddFeature: ptr.New("4K")})
		require.NoError(t, err)
		got, err := e.Apply(draft.ID, editor.FormPatch{AddFeature: ptr.New("4K")})
		require.NoError(t, err)

		assert.Equal(t, []string{"4K"}, got.Product.Features)
	})

	t.Run("Should fail for unknown drafts", func(t *testing.T) {
		e := newEditor(t, &fakeUploader{}, &fakeMutator{})
		_, err := e.Apply("nope", editor.FormPatch{})
		assert.ErrorIs(t, err, apperr.DraftNotFoundErr)
	})
}

func TestAttachImage(t *testing.T) {
	ctx := context.Background()

	t.Run("Should place the hosted URL into the right slot", func(t *testing.T) {
		uploader := &fakeUploader{url: "https://cdn.example/a.png"}
		e := newEditor(t, uploader, &fakeMutator{})
		draft := e.Open(nil)

		got, err := e.AttachImage(ctx, draft.ID, editor.PrimaryImageSlot, "a.png", strings.NewReader("img"))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example/a.png", got.Product.Image)

		got, err = e.AttachImage(ctx, draft.ID, 2, "b.png", strings.NewReader("img"))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example/a.png", got.Product.AdditionalImages[1])
	})

	t.Run("Should reject out-of-range slots", func(t *testing.T) {
		e := newEditor(t, &fakeUploader{}, &fakeMutator{})
		draft := e.Open(nil)

		_, err := e.AttachImage(ctx, draft.ID, model.AdditionalImageSlots+1, "a.png", strings.NewReader("img"))
		assert.Error(t, err)
	})

	t.Run("Should block submit while an upload is in flight", func(t *testing.T) {
		uploader := &fakeUploader{
			url:     "https://cdn.example/a.png",
			started: make(chan struct{}),
			release: make(chan struct{}),
		}
		mutator := &fakeMutator{}
		e := newEditor(t, uploader, mutator)
		draft := e.Open(nil)

		_, err := e.Apply(draft.ID, validPatch())
		require.NoError(t, err)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = e.AttachImage(ctx, draft.ID, 1, "a.png", strings.NewReader("img"))
		}()

		<-uploader.started
		_, err = e.Submit(ctx, draft.ID, "token")
		assert.ErrorIs(t, err, apperr.UploadInFlightErr)
		assert.Empty(t, mutator.created)

		close(uploader.release)
		<-done

		_, err = e.Submit(ctx, draft.ID, "token")
		assert.NoError(t, err)
	})

	t.Run("Should surface upload failures and clear the in-flight mark", func(t *testing.T) {
		uploader := &fakeUploader{err: errors.New("upload failed")}
		e := newEditor(t, uploader, &fakeMutator{})
		draft := e.Open(nil)

		_, err := e.AttachImage(ctx, draft.ID, 1, "a.png", strings.NewReader("img"))
		require.Error(t, err)

		got, err := e.Get(draft.ID)
		require.NoError(t, err)
		assert.Empty(t, got.UploadsInFlight)
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reject drafts missing required fields", func(t *testing.T) {
		mutator := &fakeMutator{}
		e := newEditor(t, &fakeUploader{}, mutator)
		draft := e.Open(nil)

		_, err := e.Submit(ctx, draft.ID, "token")
		require.Error(t, err)
		assert.Empty(t, mutator.created)
	})

	t.Run("Should reject out-of-range ratings and discounts", func(t *testing.T) {
		mutator := &fakeMutator{}
		e := newEditor(t, &fakeUploader{}, mutator)
		draft := e.Open(nil)

		patch := validPatch()
		patch.Rating = ptr.New("6")
		_, err := e.Apply(draft.ID, patch)
		require.NoError(t, err)

		_, err = e.Submit(ctx, draft.ID, "token")
		require.Error(t, err)
		assert.Empty(t, mutator.created)

		_, err = e.Apply(draft.ID, editor.FormPatch{Rating: ptr.New("4.5"), Discount: ptr.New("120")})
		require.NoError(t, err)

		_, err = e.Submit(ctx, draft.ID, "token")
		require.Error(t, err)
		assert.Empty(t, mutator.created)
	})

	t.Run("Should reject unknown categories", func(t *testing.T) {
		e := newEditor(t, &fakeUploader{}, &fakeMutator{})
		draft := e.Open(nil)

		patch := validPatch()
		patch.Category = ptr.New("Gaming")
		_, err := e.Apply(draft.ID, patch)
		require.NoError(t, err)

		_, err = e.Submit(ctx, draft.ID, "token")
		assert.Error(t, err)
	})

	t.Run("Should create when the draft has no ID", func(t *testing.T) {
		mutator := &fakeMutator{}
		e := newEditor(t, &fakeUploader{}, mutator)
		draft := e.Open(nil)

		_, err := e.Apply(draft.ID, validPatch())
		require.NoError(t, err)

		product, err := e.Submit(ctx, draft.ID, "token")
		require.NoError(t, err)

		assert.Equal(t, "created-1", product.ID)
		require.Len(t, mutator.created, 1)
		assert.Empty(t, mutator.updated)

		// The session is gone after a successful submit.
		_, err = e.Get(draft.ID)
		assert.ErrorIs(t, err, apperr.DraftNotFoundErr)
	})

	t.Run("Should update when the draft carries an ID", func(t *testing.T) {
		mutator := &fakeMutator{}
		e := newEditor(t, &fakeUploader{}, mutator)

		existing := model.NewProduct()
		existing.ID = "p-9"
		existing.Name = "Mic"
		existing.Price = 10
		existing.Image = "https://img.example/m.png"
		existing.Category = model.CategoryMic

		draft := e.Open(&existing)

		product, err := e.Submit(ctx, draft.ID, "token")
		require.NoError(t, err)

		assert.Equal(t, "p-9", product.ID)
		require.Len(t, mutator.updated, 1)
		assert.Empty(t, mutator.created)
	})

	t.Run("Should keep the session when the remote call fails", func(t *testing.T) {
		mutator := &fakeMutator{err: apperr.RemoteUnavailableErr}
		e := newEditor(t, &fakeUploader{}, mutator)
		draft := e.Open(nil)

		_, err := e.Apply(draft.ID, validPatch())
		require.NoError(t, err)

		_, err = e.Submit(ctx, draft.ID, "token")
		assert.ErrorIs(t, err, apperr.RemoteUnavailableErr)

		_, err = e.Get(draft.ID)
		assert.NoError(t, err)
	})
}

func TestDiscard(t *testing.T) {
	e := newEditor(t, &fakeUploader{}, &fakeMutator{})
	draft := e.Open(nil)

	require.NoError(t, e.Discard(draft.ID))
	assert.ErrorIs(t, e.Discard(draft.ID), apperr.DraftNotFoundErr)
}
