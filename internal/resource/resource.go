package resource

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Dev-Ole007/Ipaps/internal/entities"
	"github.com/Dev-Ole007/Ipaps/internal/store"
	"github.com/Dev-Ole007/Ipaps/pkg/logger"
	"github.com/Dev-Ole007/Ipaps/pkg/metrics"
)

// Entity is the contract a record type implements so the generic router can
// validate, stamp and address it.
type Entity interface {
	Validate() error
	SetID(id string)
	StampCreated(now time.Time)
}

// Options parameterises one Handler instance: the collection it persists to,
// how fresh records are made, how listings are ordered and which query
// parameter (if any) is accepted as an equality filter.
type Options struct {
	Name        string
	Label       string
	Collection  store.Collection
	New         func() Entity
	OrderBy     string
	Descending  bool
	FilterParam string
	Timeout     time.Duration
}

// Routes toggles the per-id read and replace endpoints, which only some
// resources expose.
type Routes struct {
	Get    bool
	Update bool
}

// Handler serves the uniform create/list/get/update/delete surface for one
// collection. Handlers hold no mutable state; the collection client is the
// only shared resource.
type Handler struct {
	opts Options
}

func NewHandler(opts Options) *Handler {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Handler{opts: opts}
}

// Register mounts the resource routes on rg. Guards run before every mutating
// handler (create, update, delete); reads stay open.
func (h *Handler) Register(rg *gin.RouterGroup, routes Routes, guard ...gin.HandlerFunc) {
	base := "/" + h.opts.Name
	rg.POST(base, chain(guard, h.create)...)
	rg.GET(base, h.list)
	if routes.Get {
		rg.GET(base+"/:id", h.get)
	}
	if routes.Update {
		rg.PUT(base+"/:id", chain(guard, h.update)...)
	}
	rg.DELETE(base+"/:id", chain(guard, h.remove)...)
}

func chain(guard []gin.HandlerFunc, last gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(guard)+1)
	out = append(out, guard...)
	return append(out, last)
}

// badPayload marks JSON decode failures (malformed body, wrong field types)
// so the boundary maps them to a client-error status.
type badPayload struct {
	cause error
}

func (e *badPayload) Error() string {
	return "invalid request body: " + e.cause.Error()
}

// fail is the single error-to-status mapping for all resources. Store
// failures are logged with collection, operation and id; the caller only sees
// a generic message.
func (h *Handler) fail(c *gin.Context, op, id string, err error) {
	var verr *entities.ValidationError
	var berr *badPayload
	switch {
	case errors.As(err, &verr), errors.As(err, &berr):
		metrics.ResourceErrors.WithLabelValues(h.opts.Name, op, "validation").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		metrics.ResourceErrors.WithLabelValues(h.opts.Name, op, "not_found").Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": h.opts.Label + " not found"})
	default:
		metrics.ResourceErrors.WithLabelValues(h.opts.Name, op, "store").Inc()
		logger.Errorf("%s %s id=%q: %v", h.opts.Name, op, id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (h *Handler) create(c *gin.Context) {
	metrics.ResourceRequests.WithLabelValues(h.opts.Name, "create").Inc()
	e := h.opts.New()
	if err := c.ShouldBindJSON(e); err != nil {
		h.fail(c, "create", "", &badPayload{cause: err})
		return
	}
	if err := e.Validate(); err != nil {
		h.fail(c, "create", "", err)
		return
	}
	e.StampCreated(time.Now())
	ctx, cancel := h.opCtx(c)
	defer cancel()
	id, err := h.opts.Collection.Create(ctx, e)
	if err != nil {
		h.fail(c, "create", "", err)
		return
	}
	e.SetID(id)
	c.JSON(http.StatusOK, e)
}

func (h *Handler) list(c *gin.Context) {
	metrics.ResourceRequests.WithLabelValues(h.opts.Name, "list").Inc()
	q := store.Query{OrderBy: h.opts.OrderBy, Descending: h.opts.Descending}
	if h.opts.FilterParam != "" {
		if v := c.Query(h.opts.FilterParam); v != "" {
			q.FilterField, q.FilterValue = h.opts.FilterParam, v
		}
	}
	ctx, cancel := h.opCtx(c)
	defer cancel()
	raws, err := h.opts.Collection.List(ctx, q)
	if err != nil {
		h.fail(c, "list", "", err)
		return
	}
	out := make([]Entity, 0, len(raws))
	for _, raw := range raws {
		e := h.opts.New()
		if err := bson.Unmarshal(raw, e); err != nil {
			h.fail(c, "list", "", err)
			return
		}
		out = append(out, e)
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) get(c *gin.Context) {
	metrics.ResourceRequests.WithLabelValues(h.opts.Name, "get").Inc()
	id := c.Param("id")
	ctx, cancel := h.opCtx(c)
	defer cancel()
	raw, err := h.opts.Collection.Get(ctx, id)
	if err != nil {
		h.fail(c, "get", id, err)
		return
	}
	e := h.opts.New()
	if err := bson.Unmarshal(raw, e); err != nil {
		h.fail(c, "get", id, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) update(c *gin.Context) {
	metrics.ResourceRequests.WithLabelValues(h.opts.Name, "update").Inc()
	id := c.Param("id")
	e := h.opts.New()
	if err := c.ShouldBindJSON(e); err != nil {
		h.fail(c, "update", id, &badPayload{cause: err})
		return
	}
	if err := e.Validate(); err != nil {
		h.fail(c, "update", id, err)
		return
	}
	ctx, cancel := h.opCtx(c)
	defer cancel()
	if err := h.opts.Collection.Update(ctx, id, e); err != nil {
		h.fail(c, "update", id, err)
		return
	}
	e.SetID(id)
	c.JSON(http.StatusOK, e)
}

func (h *Handler) remove(c *gin.Context) {
	metrics.ResourceRequests.WithLabelValues(h.opts.Name, "delete").Inc()
	id := c.Param("id")
	ctx, cancel := h.opCtx(c)
	defer cancel()
	if err := h.opts.Collection.Delete(ctx, id); err != nil {
		h.fail(c, "delete", id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.opts.Label + " deleted successfully"})
}

// opCtx bounds every outbound store call so a stalled database cannot pin a
// request forever.
func (h *Handler) opCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.opts.Timeout)
}
