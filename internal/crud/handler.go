package crud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/iliyamo/resource-router/internal/metrics"
	"github.com/iliyamo/resource-router/internal/queue"
	"github.com/iliyamo/resource-router/internal/repository"
	"github.com/iliyamo/resource-router/internal/schema"
	"github.com/iliyamo/resource-router/internal/validation"
)

const publishTimeout = 3 * time.Second

type handler[M any, ID Identifier] struct {
	resource     string
	schemas      schema.Set
	sessions     SessionProvider
	auth         AuthProvider
	repo         *repository.Resource[M, ID]
	log          *zap.Logger
	validate     *validation.Validator
	publisher    ChangePublisher
	strictDelete bool
}

// GET /prefix/:id
func (h *handler[M, ID]) retrieve(c echo.Context) (err error) {
	defer h.observe(OpRetrieve, time.Now(), &err)

	id, err := h.parseID(c, OpRetrieve)
	if err != nil {
		return err
	}
	var rec *M
	_, err = h.run(c, OpRetrieve, formatID(id), nil, func(tx *gorm.DB) (err error) {
		rec, err = h.repo.Retrieve(tx, id)
		return err
	})
	if err != nil {
		return err
	}
	return h.respond(c, OpRetrieve, formatID(id), http.StatusOK, h.schemas.RetrieveResponse, rec)
}

// GET /prefix
func (h *handler[M, ID]) list(c echo.Context) (err error) {
	defer h.observe(OpList, time.Now(), &err)

	var recs []M
	_, err = h.run(c, OpList, "", nil, func(tx *gorm.DB) (err error) {
		recs, err = h.repo.List(tx)
		return err
	})
	if err != nil {
		return err
	}
	return h.respond(c, OpList, "", http.StatusOK, h.schemas.ListResponse, recs)
}

// POST /prefix
func (h *handler[M, ID]) create(c echo.Context) (err error) {
	defer h.observe(OpCreate, time.Now(), &err)

	var (
		req any
		id  ID
	)
	rec := new(M)
	decode := func() (any, error) {
		var err error
		req, err = h.decode(c, h.schemas.CreateRequest)
		return req, err
	}
	principal, err := h.run(c, OpCreate, "", decode, func(tx *gorm.DB) (err error) {
		if err = remarshal(req, rec); err != nil {
			return err
		}
		if err = h.repo.Create(tx, rec); err != nil {
			return err
		}
		id, err = h.repo.Identify(tx, rec)
		return err
	})
	if err != nil {
		return err
	}
	h.publish(c, OpCreate, formatID(id), principal)
	return h.respond(c, OpCreate, formatID(id), http.StatusCreated, h.schemas.CreateResponse, rec)
}

// PUT /prefix/:id
func (h *handler[M, ID]) update(c echo.Context) (err error) {
	defer h.observe(OpUpdate, time.Now(), &err)

	id, err := h.parseID(c, OpUpdate)
	if err != nil {
		return err
	}
	var (
		req any
		rec *M
	)
	decode := func() (any, error) {
		var err error
		req, err = h.decode(c, h.schemas.UpdateRequest)
		return req, err
	}
	principal, err := h.run(c, OpUpdate, formatID(id), decode, func(tx *gorm.DB) (err error) {
		rec, err = h.repo.Update(tx, id, func(m *M) error {
			return remarshal(req, m)
		})
		return err
	})
	if err != nil {
		return err
	}
	h.publish(c, OpUpdate, formatID(id), principal)
	return h.respond(c, OpUpdate, formatID(id), http.StatusOK, h.schemas.UpdateResponse, rec)
}

// PATCH /prefix/:id
func (h *handler[M, ID]) partialUpdate(c echo.Context) (err error) {
	defer h.observe(OpPartialUpdate, time.Now(), &err)

	id, err := h.parseID(c, OpPartialUpdate)
	if err != nil {
		return err
	}
	var (
		req     any
		present map[string]json.RawMessage
		rec     *M
	)
	decode := func() (any, error) {
		var err error
		req, present, err = h.decodePartial(c, h.schemas.PartialUpdateRequest)
		return present, err
	}
	principal, err := h.run(c, OpPartialUpdate, formatID(id), decode, func(tx *gorm.DB) (err error) {
		rec, err = h.repo.PartialUpdate(tx, id, func(m *M) error {
			return applyPresent(req, present, m)
		})
		return err
	})
	if err != nil {
		return err
	}
	h.publish(c, OpPartialUpdate, formatID(id), principal)
	return h.respond(c, OpPartialUpdate, formatID(id), http.StatusOK, h.schemas.PartialUpdateResponse, rec)
}

// DELETE /prefix/:id
func (h *handler[M, ID]) delete(c echo.Context) (err error) {
	defer h.observe(OpDelete, time.Now(), &err)

	id, err := h.parseID(c, OpDelete)
	if err != nil {
		return err
	}
	var deleted int64
	principal, err := h.run(c, OpDelete, formatID(id), nil, func(tx *gorm.DB) (err error) {
		deleted, err = h.repo.Delete(tx, id)
		if err == nil && deleted == 0 && h.strictDelete {
			return repository.ErrNotFound
		}
		return err
	})
	if err != nil {
		return err
	}
	if deleted > 0 {
		h.publish(c, OpDelete, formatID(id), principal)
	}
	return c.NoContent(http.StatusNoContent)
}

// run opens the request session and, inside it, authenticates the caller,
// decodes the payload (when decode is non-nil) and executes fn. Nothing of
// the body is read before authentication succeeds. Errors come back
// unchanged after being logged; the session commits only when fn succeeds.
func (h *handler[M, ID]) run(c echo.Context, op Operation, id string, decode func() (any, error), fn func(tx *gorm.DB) error) (any, error) {
	var principal any
	log := h.requestLog(op, id)

	err := h.sessions.Scope(c.Request().Context(), func(tx *gorm.DB) error {
		p, err := h.auth.Authenticate(c, tx)
		if err != nil {
			return err
		}
		principal = p

		var payload any
		if decode != nil {
			if payload, err = decode(); err != nil {
				return err
			}
		}
		log.Info("request received", zap.Any("payload", payload), zap.Stringer("principal", principalName(p)))
		if err := fn(tx); err != nil {
			return err
		}
		log.Info("request completed")
		return nil
	})
	if err != nil {
		logFailure(log, err)
	}
	return principal, err
}

// parseID reads the path identifier. It runs ahead of the session, so a
// malformed identifier is logged here.
func (h *handler[M, ID]) parseID(c echo.Context, op Operation) (ID, error) {
	raw := c.Param("id")
	id, err := ParseID[ID](raw)
	if err != nil {
		logFailure(h.requestLog(op, raw), err)
	}
	return id, err
}

func (h *handler[M, ID]) requestLog(op Operation, id string) *zap.Logger {
	return h.log.With(zap.String("operation", string(op)), zap.String("id", id))
}

// logFailure records a failed request. Client errors are warnings; anything
// that ends up as a 500 is an error.
func logFailure(log *zap.Logger, err error) {
	o := outcome(err)
	if o == metrics.OutcomeError {
		log.Error("request failed", zap.String("outcome", o), zap.Error(err))
		return
	}
	log.Warn("request failed", zap.String("outcome", o), zap.Error(err))
}

func (h *handler[M, ID]) respond(c echo.Context, op Operation, id string, status int, s *schema.Schema, src any) error {
	body, err := s.Shape(src)
	if err != nil {
		logFailure(h.requestLog(op, id), err)
		return err
	}
	return c.JSON(status, body)
}

// decode binds the request body into a fresh value of s and validates every
// rule of it.
func (h *handler[M, ID]) decode(c echo.Context, s *schema.Schema) (any, error) {
	req := s.New()
	if err := (&echo.DefaultBinder{}).BindBody(c, req); err != nil {
		return nil, invalid(bindMessage(err))
	}
	if err := h.validate.Struct(req); err != nil {
		return nil, asValidationError(err)
	}
	return req, nil
}

// decodePartial keeps only the properties the client sent with a non-null
// value and validates just those. Unknown properties are ignored.
func (h *handler[M, ID]) decodePartial(c echo.Context, s *schema.Schema) (any, map[string]json.RawMessage, error) {
	raw := map[string]json.RawMessage{}
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, invalid("malformed request body: " + err.Error())
	}

	present := make(map[string]json.RawMessage, len(raw))
	var fields []string
	for name, value := range raw {
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			continue
		}
		f, ok := s.Lookup(name)
		if !ok {
			continue
		}
		present[name] = value
		fields = append(fields, f.GoName)
	}

	req := s.New()
	if err := remarshal(present, req); err != nil {
		return nil, nil, invalid(bindMessage(err))
	}
	if err := h.validate.Partial(req, fields...); err != nil {
		return nil, nil, asValidationError(err)
	}
	return req, present, nil
}

func (h *handler[M, ID]) publish(c echo.Context, op Operation, id string, principal any) {
	if h.publisher == nil {
		return
	}
	ev := queue.ResourceChangedEvent{
		Resource:   h.resource,
		Operation:  string(op),
		ID:         id,
		TokenTitle: principalName(principal).String(),
		OccurredAt: time.Now().UTC(),
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), publishTimeout)
	defer cancel()
	if err := h.publisher.PublishChange(ctx, ev); err != nil {
		metrics.EventsPublished.WithLabelValues("failed").Inc()
		h.log.Warn("change event not published", zap.String("operation", string(op)), zap.String("id", id), zap.Error(err))
		return
	}
	metrics.EventsPublished.WithLabelValues("ok").Inc()
}

func (h *handler[M, ID]) observe(op Operation, start time.Time, err *error) {
	metrics.ObserveOperation(h.resource, string(op), outcome(*err), time.Since(start))
}

func outcome(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrUnauthorized):
		return metrics.OutcomeUnauthorized
	case errors.Is(err, repository.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return metrics.OutcomeConflict
	case errors.As(err, &verr):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}

// remarshal moves src into dst through their JSON field names.
func remarshal(src, dst any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// applyPresent copies the present properties of the validated request onto
// the record and leaves every other field alone.
func applyPresent(req any, present map[string]json.RawMessage, rec any) error {
	if len(present) == 0 {
		return nil
	}
	var all map[string]json.RawMessage
	if err := remarshal(req, &all); err != nil {
		return err
	}
	changes := make(map[string]json.RawMessage, len(present))
	for name := range present {
		if v, ok := all[name]; ok {
			changes[name] = v
		}
	}
	return remarshal(changes, rec)
}

func bindMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			err = he.Internal
		} else {
			return fmt.Sprint(he.Message)
		}
	}
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) && te.Field != "" {
		return fmt.Sprintf("%s must be %s", te.Field, te.Type)
	}
	return "malformed request body: " + err.Error()
}

type principalLabel string

func (p principalLabel) String() string { return string(p) }

// principalName reads a loggable name off the principal.
func principalName(p any) fmt.Stringer {
	if s, ok := p.(fmt.Stringer); ok && s != nil {
		return principalLabel(s.String())
	}
	return principalLabel("")
}
