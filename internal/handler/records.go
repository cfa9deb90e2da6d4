package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/revalidation-api/internal/model"
)

// RecordStore is the owner-scoped CRUD surface every log table repository
// offers.  T is the record, I the create input and P the partial update.
type RecordStore[T, I, P any] interface {
	Create(ctx context.Context, ownerID int64, in I) (*T, error)
	GetByID(ctx context.Context, id, ownerID int64) (*T, error)
	List(ctx context.Context, ownerID int64, f model.ListFilter) ([]T, int64, error)
	Update(ctx context.Context, id, ownerID int64, p P) (*T, error)
	Delete(ctx context.Context, id, ownerID int64) error
}

// RecordHandler serves one log table for the authenticated user.  Records
// owned by somebody else answer exactly like missing ones.
type RecordHandler[T, I, P any] struct {
	Store RecordStore[T, I, P]
}

func NewRecordHandler[T, I, P any](store RecordStore[T, I, P]) *RecordHandler[T, I, P] {
	if store == nil {
		panic("nil store passed to NewRecordHandler")
	}
	return &RecordHandler[T, I, P]{Store: store}
}

// Create: POST /
func (h *RecordHandler[T, I, P]) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var in I
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	rec, err := h.Store.Create(ctx, uid, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, rec)
}

// List: GET /?limit=&offset=&from=&to=&type=
func (h *RecordHandler[T, I, P]) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	f, err := listFilter(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	items, total, err := h.Store.List(ctx, uid, f)
	if err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	return respondList(c, items, total, f)
}

// Get: GET /:id
func (h *RecordHandler[T, I, P]) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	rec, err := h.Store.GetByID(ctx, id, uid)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, rec)
}

// Update: PATCH /:id (PUT is accepted with the same partial semantics)
func (h *RecordHandler[T, I, P]) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var p P
	if err := bindAndValidate(c, &p); err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	rec, err := h.Store.Update(ctx, id, uid, p)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, rec)
}

// Delete: DELETE /:id
func (h *RecordHandler[T, I, P]) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Store.Delete(ctx, id, uid); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"id": id, "deleted": true})
}

// Mount registers the five routes on g.
func (h *RecordHandler[T, I, P]) Mount(g *echo.Group) {
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
