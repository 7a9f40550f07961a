package crud_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/iliyamo/resource-router/internal/crud"
	"github.com/iliyamo/resource-router/internal/database"
	"github.com/iliyamo/resource-router/internal/handler"
	"github.com/iliyamo/resource-router/internal/queue"
	"github.com/iliyamo/resource-router/internal/schema"
)

type note struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Body string `json:"body" gorm:"size:64;not null"`
	Done bool   `json:"done"`
}

type noteIn struct {
	Body string `json:"body" validate:"required,max=64"`
	Done bool   `json:"done"`
}

type noteOut struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
	Done bool   `json:"done"`
}

type widget struct {
	Code string `json:"code" gorm:"primaryKey;size:32"`
	Name string `json:"name"`
}

type widgetView struct {
	Code string `json:"code" validate:"required"`
	Name string `json:"name"`
}

type gadget struct {
	ID    uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Label string    `json:"label"`
}

type gadgetView struct {
	ID    uuid.UUID `json:"id" validate:"required"`
	Label string    `json:"label"`
}

type principal string

func (p principal) String() string { return string(p) }

type fakeAuth struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (a *fakeAuth) Authenticate(echo.Context, *gorm.DB) (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return principal("tester"), nil
}

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	events []queue.ResourceChangedEvent
}

func (p *fakePublisher) PublishChange(_ context.Context, ev queue.ResourceChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type env struct {
	e    *echo.Echo
	db   *gorm.DB
	auth *fakeAuth
	pub  *fakePublisher
	logs *observer.ObservedLogs
}

func newEnv(t *testing.T, strictDelete bool) *env {
	t.Helper()
	db, err := database.OpenSQLite("file::memory:", nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&note{}, &widget{}, &gadget{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	core, logs := observer.New(zapcore.DebugLevel)
	en := &env{
		e:    echo.New(),
		db:   db,
		auth: &fakeAuth{},
		pub:  &fakePublisher{},
		logs: logs,
	}
	en.e.HTTPErrorHandler = handler.HTTPErrorHandler(zap.NewNop())

	base := crud.Config{
		Sessions:     database.NewSessions(db),
		Auth:         en.auth,
		Logger:       zap.New(core),
		Publisher:    en.pub,
		StrictDelete: strictDelete,
	}

	notes := base
	notes.Prefix = "note"
	notes.Schemas = schema.Overrides{Request: schema.Of[noteIn](), Response: schema.Of[noteOut]()}
	nr, err := crud.New[note, int64](notes)
	require.NoError(t, err)
	nr.Mount(en.e)

	widgets := base
	widgets.Prefix = "widget"
	widgets.Schemas = schema.Overrides{Request: schema.Of[widgetView](), Response: schema.Of[widgetView]()}
	wr, err := crud.New[widget, string](widgets)
	require.NoError(t, err)
	wr.Mount(en.e)

	gadgets := base
	gadgets.Prefix = "gadget"
	gadgets.Schemas = schema.Overrides{Request: schema.Of[gadgetView](), Response: schema.Of[gadgetView]()}
	gr, err := crud.New[gadget, uuid.UUID](gadgets)
	require.NoError(t, err)
	gr.Mount(en.e)

	return en
}

func (en *env) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	en.e.ServeHTTP(rec, req)
	return rec
}

func (en *env) count(t *testing.T, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, en.db.Model(m).Count(&n).Error)
	return n
}

func TestNewRejectsIncompleteSchemaSet(t *testing.T) {
	_, err := crud.New[note, int64](crud.Config{
		Prefix:   "note",
		Sessions: database.NewSessions(nil),
		Auth:     &fakeAuth{},
		Logger:   zap.NewNop(),
		Schemas:  schema.Overrides{Request: schema.Of[noteIn]()},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrIncompleteSchemaSet)

	var cerr *schema.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "response", cerr.Direction)
}

func TestNewRejectsMissingCollaborators(t *testing.T) {
	r, err := crud.New[note, int64](crud.Config{
		Prefix:  "/",
		Schemas: schema.Overrides{Request: schema.Of[noteIn](), Response: schema.Of[noteOut]()},
	})
	assert.Nil(t, r)

	var cerr *schema.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "resource", cerr.Direction)
	assert.Equal(t, []string{"prefix", "sessions", "auth", "logger"}, cerr.Missing)
}

func TestURLPatterns(t *testing.T) {
	assert.Equal(t, "/user", crud.ListURLPattern("user"))
	assert.Equal(t, "/user", crud.CreateURLPattern("user"))
	assert.Equal(t, "/user/{id}", crud.RetrieveURLPattern("user"))
	assert.Equal(t, "/user/{id}", crud.UpdateURLPattern("user"))
	assert.Equal(t, "/user/{id}", crud.PartialUpdateURLPattern("user"))
	assert.Equal(t, "/user/{id}", crud.DeleteURLPattern("/user/"))
	assert.Equal(t, "/user/:id", crud.EchoPath(crud.RetrieveURLPattern("user")))
}

func TestRouteTable(t *testing.T) {
	r, err := crud.New[note, int64](crud.Config{
		Prefix:   "note",
		Sessions: database.NewSessions(nil),
		Auth:     &fakeAuth{},
		Logger:   zap.NewNop(),
		Schemas:  schema.Overrides{Request: schema.Of[noteIn](), Response: schema.Of[noteOut]()},
	})
	require.NoError(t, err)

	type row struct {
		op      crud.Operation
		method  string
		pattern string
		status  int
	}
	var got []row
	for _, e := range r.Routes() {
		got = append(got, row{e.Operation, e.Method, e.Pattern, e.SuccessStatus})
	}
	assert.Equal(t, []row{
		{crud.OpRetrieve, http.MethodGet, "/note/{id}", http.StatusOK},
		{crud.OpList, http.MethodGet, "/note", http.StatusOK},
		{crud.OpCreate, http.MethodPost, "/note", http.StatusCreated},
		{crud.OpUpdate, http.MethodPut, "/note/{id}", http.StatusOK},
		{crud.OpPartialUpdate, http.MethodPatch, "/note/{id}", http.StatusOK},
		{crud.OpDelete, http.MethodDelete, "/note/{id}", http.StatusNoContent},
	}, got)

	routes := r.Routes()
	assert.True(t, routes[1].ResponseSchema.IsList())
	assert.Equal(t, "[]noteOut", routes[1].ResponseSchema.Name())
	assert.Nil(t, routes[5].ResponseSchema)
	assert.Equal(t, "noteIn", routes[2].RequestSchema.Name())

	d := r.Descriptor()
	assert.Equal(t, crud.ResourceDescriptor{URLPrefix: "note", ModelName: "note", IdentifierKind: crud.KindInteger}, d)

	e := echo.New()
	mounted := r.Mount(e)
	require.Len(t, mounted, 6)
	assert.Equal(t, "/note/:id", mounted[0].Path)
	assert.Equal(t, "note.retrieve", mounted[0].Name)
}

func TestIdentifierKinds(t *testing.T) {
	assert.Equal(t, crud.KindInteger, crud.KindOf[int64]())
	assert.Equal(t, crud.KindString, crud.KindOf[string]())
	assert.Equal(t, crud.KindUUID, crud.KindOf[uuid.UUID]())

	n, err := crud.ParseID[int64]("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	_, err = crud.ParseID[int64]("4x2")
	var verr *crud.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Details, 1)
	assert.Equal(t, "id", verr.Details[0].Field)

	_, err = crud.ParseID[uuid.UUID]("nope")
	assert.ErrorAs(t, err, &verr)
}

func TestCreateRetrieveList(t *testing.T) {
	en := newEnv(t, false)

	rec := en.do(http.MethodPost, "/note", `{"body":"milk","unknown":1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"id":1,"body":"milk","done":false}`, rec.Body.String())

	rec = en.do(http.MethodGet, "/note/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"body":"milk","done":false}`, rec.Body.String())

	rec = en.do(http.MethodPost, "/note", `{"body":"eggs","done":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = en.do(http.MethodGet, "/note", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"body":"milk","done":false},{"id":2,"body":"eggs","done":true}]`, rec.Body.String())
}

func TestRetrieveMissingIsNotFound(t *testing.T) {
	en := newEnv(t, false)

	rec := en.do(http.MethodGet, "/note/7", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	failed := en.logs.FilterMessage("request failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "7", failed[0].ContextMap()["id"])
	assert.Equal(t, "note", failed[0].ContextMap()["resource"])
}

func TestListEmptyIsArray(t *testing.T) {
	en := newEnv(t, false)

	rec := en.do(http.MethodGet, "/note", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestPartialUpdateTouchesOnlyPresentFields(t *testing.T) {
	en := newEnv(t, false)
	require.Equal(t, http.StatusCreated, en.do(http.MethodPost, "/note", `{"body":"milk"}`).Code)

	rec := en.do(http.MethodPatch, "/note/1", `{"done":true,"body":null,"id":9}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"id":1,"body":"milk","done":true}`, rec.Body.String())

	rec = en.do(http.MethodPatch, "/note/1", `{"body":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = en.do(http.MethodPatch, "/note/1", `{"body":5}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = en.do(http.MethodPatch, "/note/2", `{"done":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var stored note
	require.NoError(t, en.db.First(&stored, 1).Error)
	assert.Equal(t, note{ID: 1, Body: "milk", Done: true}, stored)
}

func TestUpdateReplacesWritableFields(t *testing.T) {
	en := newEnv(t, false)
	require.Equal(t, http.StatusCreated, en.do(http.MethodPost, "/note", `{"body":"milk","done":true}`).Code)

	rec := en.do(http.MethodPut, "/note/1", `{"id":5,"body":"eggs"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"id":1,"body":"eggs","done":false}`, rec.Body.String())

	rec = en.do(http.MethodPut, "/note/3", `{"body":"eggs"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = en.do(http.MethodPut, "/note/1", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.EqualValues(t, 1, en.count(t, &note{}))
}

func TestDeleteIsIdempotentByDefault(t *testing.T) {
	en := newEnv(t, false)
	require.Equal(t, http.StatusCreated, en.do(http.MethodPost, "/note", `{"body":"milk"}`).Code)

	rec := en.do(http.MethodDelete, "/note/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Zero(t, en.count(t, &note{}))

	rec = en.do(http.MethodDelete, "/note/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestStrictDeleteReportsMissingRecord(t *testing.T) {
	en := newEnv(t, true)

	rec := en.do(http.MethodDelete, "/note/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnauthorizedRequestsTouchNothing(t *testing.T) {
	en := newEnv(t, false)
	en.auth.err = crud.ErrUnauthorized

	rec := en.do(http.MethodPost, "/note", `{"body":"milk"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
	assert.Zero(t, en.count(t, &note{}))
	assert.Empty(t, en.pub.events)

	for _, path := range []string{"/note", "/note/1"} {
		assert.Equal(t, http.StatusUnauthorized, en.do(http.MethodGet, path, "").Code)
	}
	assert.Equal(t, http.StatusUnauthorized, en.do(http.MethodDelete, "/note/1", "").Code)
}

func TestMalformedIdentifierIsRejectedBeforeAuth(t *testing.T) {
	en := newEnv(t, false)

	rec := en.do(http.MethodGet, "/note/abc", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, en.auth.calls)

	var body struct {
		Error   string `json:"error"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Details, 1)
	assert.Equal(t, "id", body.Details[0].Field)

	failed := en.logs.FilterMessage("request failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.WarnLevel, failed[0].Level)
	fields := failed[0].ContextMap()
	assert.Equal(t, "note", fields["resource"])
	assert.Equal(t, "retrieve", fields["operation"])
	assert.Equal(t, "abc", fields["id"])
	assert.Equal(t, "invalid", fields["outcome"])

	assert.Equal(t, http.StatusUnprocessableEntity, en.do(http.MethodGet, "/gadget/not-a-uuid", "").Code)
	assert.Equal(t, 2, en.logs.FilterMessage("request failed").Len())
}

func TestInvalidPayloadReportsFields(t *testing.T) {
	en := newEnv(t, false)

	rec := en.do(http.MethodPost, "/note", `{"done":true}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"body"`)

	rec = en.do(http.MethodPost, "/note", `{"body":`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, en.count(t, &note{}))

	failed := en.logs.FilterMessage("request failed").All()
	require.Len(t, failed, 2)
	for _, entry := range failed {
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
		assert.Equal(t, "note", entry.ContextMap()["resource"])
		assert.Equal(t, "create", entry.ContextMap()["operation"])
		assert.NotEmpty(t, entry.ContextMap()["error"])
	}
	assert.Zero(t, en.logs.FilterMessage("request received").Len())
}

func TestPayloadIsReadOnlyAfterAuthentication(t *testing.T) {
	en := newEnv(t, false)
	require.Equal(t, http.StatusCreated, en.do(http.MethodPost, "/note", `{"body":"milk"}`).Code)
	en.auth.err = crud.ErrUnauthorized

	rec := en.do(http.MethodPost, "/note", `{"done":true}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "details")

	rec = en.do(http.MethodPatch, "/note/1", `{"body":5}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = en.do(http.MethodPut, "/note/1", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 4, en.auth.calls)

	failed := en.logs.FilterMessage("request failed").All()
	require.Len(t, failed, 3)
	for _, entry := range failed {
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
		assert.Equal(t, "unauthorized", entry.ContextMap()["outcome"])
	}
	assert.Equal(t, "1", failed[1].ContextMap()["id"])
	assert.Equal(t, "partial_update", failed[1].ContextMap()["operation"])
}

func TestStringIdentifier(t *testing.T) {
	en := newEnv(t, false)

	rec := en.do(http.MethodPost, "/widget", `{"code":"w-1","name":"bolt"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = en.do(http.MethodGet, "/widget/w-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":"w-1","name":"bolt"}`, rec.Body.String())

	rec = en.do(http.MethodPost, "/widget", `{"code":"w-1","name":"nut"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = en.do(http.MethodPut, "/widget/w-1", `{"code":"w-2","name":"nut"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":"w-1","name":"nut"}`, rec.Body.String())
}

func TestUUIDIdentifier(t *testing.T) {
	en := newEnv(t, false)
	id := uuid.New()

	rec := en.do(http.MethodPost, "/gadget", `{"id":"`+id.String()+`","label":"lamp"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = en.do(http.MethodGet, "/gadget/"+id.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"`+id.String()+`","label":"lamp"}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, en.do(http.MethodGet, "/gadget/"+uuid.NewString(), "").Code)
}

func TestWritesPublishChangeEvents(t *testing.T) {
	en := newEnv(t, false)

	require.Equal(t, http.StatusCreated, en.do(http.MethodPost, "/note", `{"body":"milk"}`).Code)
	require.Equal(t, http.StatusOK, en.do(http.MethodPatch, "/note/1", `{"done":true}`).Code)
	require.Equal(t, http.StatusOK, en.do(http.MethodPut, "/note/1", `{"body":"eggs"}`).Code)
	require.Equal(t, http.StatusNoContent, en.do(http.MethodDelete, "/note/1", "").Code)
	require.Equal(t, http.StatusNoContent, en.do(http.MethodDelete, "/note/1", "").Code)
	require.Equal(t, http.StatusOK, en.do(http.MethodGet, "/note", "").Code)

	var ops []string
	for _, ev := range en.pub.events {
		assert.Equal(t, "note", ev.Resource)
		assert.Equal(t, "1", ev.ID)
		assert.Equal(t, "tester", ev.TokenTitle)
		assert.False(t, ev.OccurredAt.IsZero())
		ops = append(ops, ev.Operation)
	}
	assert.Equal(t, []string{"create", "partial_update", "update", "delete"}, ops)
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	en := newEnv(t, false)
	en.pub.err = errors.New("broker down")

	rec := en.do(http.MethodPost, "/note", `{"body":"milk"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 1, en.count(t, &note{}))
	assert.Equal(t, 1, en.logs.FilterMessage("change event not published").Len())
}

func TestRequestLifecycleIsLogged(t *testing.T) {
	en := newEnv(t, false)
	require.Equal(t, http.StatusCreated, en.do(http.MethodPost, "/note", `{"body":"milk"}`).Code)

	received := en.logs.FilterMessage("request received").All()
	require.Len(t, received, 1)
	fields := received[0].ContextMap()
	assert.Equal(t, "note", fields["resource"])
	assert.Equal(t, "create", fields["operation"])
	assert.Equal(t, "tester", fields["principal"])
	assert.NotNil(t, fields["payload"])
	assert.Equal(t, 1, en.logs.FilterMessage("request completed").Len())
}

// commitFailure runs fn in a real transaction and then fails the scope, so
// the transaction rolls back after the write went through.
type commitFailure struct {
	sessions *database.Sessions
	err      error
}

func (f commitFailure) Scope(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return f.sessions.Scope(ctx, func(tx *gorm.DB) error {
		if err := fn(tx); err != nil {
			return err
		}
		return f.err
	})
}

func TestStoreFailureIsLoggedAndReturnedUnchanged(t *testing.T) {
	en := newEnv(t, false)
	errStore := errors.New("disk I/O error")

	core, logs := observer.New(zapcore.DebugLevel)
	nr, err := crud.New[note, int64](crud.Config{
		Prefix:    "note",
		Sessions:  commitFailure{sessions: database.NewSessions(en.db), err: errStore},
		Auth:      en.auth,
		Logger:    zap.New(core),
		Publisher: en.pub,
		Schemas:   schema.Overrides{Request: schema.Of[noteIn](), Response: schema.Of[noteOut]()},
	})
	require.NoError(t, err)

	var returned error
	e := echo.New()
	mapErr := handler.HTTPErrorHandler(zap.NewNop())
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		returned = err
		mapErr(err, c)
	}
	nr.Mount(e)

	req := httptest.NewRequest(http.MethodPost, "/note", strings.NewReader(`{"body":"milk"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.ErrorIs(t, returned, errStore)
	assert.Zero(t, en.count(t, &note{}))
	assert.Empty(t, en.pub.events)

	failed := logs.FilterMessage("request failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
	fields := failed[0].ContextMap()
	assert.Equal(t, "note", fields["resource"])
	assert.Equal(t, "create", fields["operation"])
	assert.Equal(t, "", fields["id"])
	assert.Equal(t, "disk I/O error", fields["error"])
}

func TestMissingTableIsServerError(t *testing.T) {
	en := newEnv(t, false)
	require.NoError(t, en.db.Migrator().DropTable(&note{}))

	rec := en.do(http.MethodGet, "/note/1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	failed := en.logs.FilterMessage("request failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
	assert.Equal(t, "retrieve", failed[0].ContextMap()["operation"])
	assert.Equal(t, "1", failed[0].ContextMap()["id"])
	assert.Equal(t, "error", failed[0].ContextMap()["outcome"])
}
