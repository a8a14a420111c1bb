package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/database"
	"github.com/xavierca1/ligue-leads/internal/infra/http/response"
	"github.com/xavierca1/ligue-leads/internal/infra/logger"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

type MockLeadStore struct {
	mock.Mock
}

func (m *MockLeadStore) Open(ctx context.Context) (entity.LeadSession, error) {
	args := m.Called(ctx)
	session, _ := args.Get(0).(entity.LeadSession)
	return session, args.Error(1)
}

type MockLeadSession struct {
	mock.Mock
}

func (m *MockLeadSession) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	lead, _ := args.Get(0).(*entity.Lead)
	return lead, args.Error(1)
}

func (m *MockLeadSession) FindAll(ctx context.Context) ([]entity.Lead, error) {
	args := m.Called(ctx)
	leads, _ := args.Get(0).([]entity.Lead)
	return leads, args.Error(1)
}

func (m *MockLeadSession) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadSession) Update(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadSession) Delete(ctx context.Context, id int64) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	lead, _ := args.Get(0).(*entity.Lead)
	return lead, args.Error(1)
}

func (m *MockLeadSession) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newTestHandler(store entity.LeadStore) *LeadHandler {
	log := logger.NewWithWriter("production", io.Discard)
	return NewLeadHandler(store, usecase.NewLeadUseCase(nil, log.Logger), log)
}

func newTestRouter(h *LeadHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/leads", h.List)
	r.Post("/leads", h.Create)
	r.Get("/leads/{id}", h.Read)
	r.Put("/leads/{id}", h.Update)
	r.Delete("/leads/{id}", h.Delete)
	return r
}

type envelope struct {
	Success    bool                       `json:"success"`
	Message    string                     `json:"message"`
	StatusCode int                        `json:"statusCode"`
	Data       map[string]json.RawMessage `json:"data"`
	Errors     []usecase.ValidationError  `json:"errors"`
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, rec.Code, env.StatusCode)
	return rec, env
}

func dataLead(t *testing.T, env envelope, key string) entity.Lead {
	t.Helper()
	var lead entity.Lead
	require.NoError(t, json.Unmarshal(env.Data[key], &lead))
	return lead
}

const adaPayload = `{"name":"Ada","email":"ada@x.com","status":"ACTIVE","estimatedSaleAmount":1000}`

func TestCreateLeadComputesCommission(t *testing.T) {
	store := database.NewMemoryLeadStore()
	router := newTestRouter(newTestHandler(store))

	rec, env := do(t, router, http.MethodPost, "/leads", adaPayload)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Created", env.Message)

	lead := dataLead(t, env, "lead")
	assert.Equal(t, int64(1), lead.ID)
	assert.Equal(t, "Ada", lead.Name)
	assert.Equal(t, 1000.0, lead.EstimatedSaleAmount)
	assert.Equal(t, 50.0, lead.EstimatedCommission)
	assert.Zero(t, store.OpenSessions())
}

func TestCreateLeadIgnoresClientCommission(t *testing.T) {
	router := newTestRouter(newTestHandler(database.NewMemoryLeadStore()))

	_, env := do(t, router, http.MethodPost, "/leads",
		`{"name":"Ada","email":"ada@x.com","status":"UNQUALIFIED","estimatedSaleAmount":"1000","estimatedCommission":999}`)

	lead := dataLead(t, env, "lead")
	assert.Equal(t, 1000.0, lead.EstimatedSaleAmount)
	assert.Equal(t, 0.0, lead.EstimatedCommission)
}

func TestCreateLeadReportsEveryFieldInOrder(t *testing.T) {
	store := database.NewMemoryLeadStore()
	router := newTestRouter(newTestHandler(store))

	rec, env := do(t, router, http.MethodPost, "/leads",
		`{"name":"","email":"bad","status":"X","estimatedSaleAmount":-5}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Validation failed.", env.Message)
	require.Len(t, env.Errors, 4)
	assert.Equal(t, []string{"name", "email", "status", "estimatedSaleAmount"},
		[]string{env.Errors[0].Field, env.Errors[1].Field, env.Errors[2].Field, env.Errors[3].Field})

	leads, err := store.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestCreateLeadAmountBoundaries(t *testing.T) {
	cases := []struct {
		amount string
		status int
	}{
		{"1000000", http.StatusCreated},
		{"0", http.StatusCreated},
		{"1000000.01", http.StatusBadRequest},
		{"-0.01", http.StatusBadRequest},
		{`"abc"`, http.StatusBadRequest},
		{"null", http.StatusBadRequest},
	}

	router := newTestRouter(newTestHandler(database.NewMemoryLeadStore()))
	for _, tc := range cases {
		t.Run(tc.amount, func(t *testing.T) {
			body := `{"name":"Ada","email":"ada@x.com","status":"PROSPECT","estimatedSaleAmount":` + tc.amount + `}`
			rec, _ := do(t, router, http.MethodPost, "/leads", body)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestCreateLeadAcceptsLongEmail(t *testing.T) {
	router := newTestRouter(newTestHandler(database.NewMemoryLeadStore()))
	email := strings.Repeat("a", 300) + "@x.com"

	rec, env := do(t, router, http.MethodPost, "/leads",
		`{"name":"Ada","email":"`+email+`","status":"ACTIVE","estimatedSaleAmount":1}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, email, dataLead(t, env, "lead").Email)
}

func TestCreateLeadInvalidJSON(t *testing.T) {
	store := database.NewMemoryLeadStore()
	router := newTestRouter(newTestHandler(store))

	for _, body := range []string{"{", "", `{"name":5}`, adaPayload + "garbage", adaPayload + `{"name":"Bob"}`} {
		rec, env := do(t, router, http.MethodPost, "/leads", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid JSON", env.Message)
	}
	assert.Zero(t, store.OpenSessions())
}

func TestCreateThenReadRoundTrip(t *testing.T) {
	router := newTestRouter(newTestHandler(database.NewMemoryLeadStore()))

	_, created := do(t, router, http.MethodPost, "/leads", adaPayload)
	want := dataLead(t, created, "lead")

	rec, env := do(t, router, http.MethodGet, "/leads/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Read", env.Message)
	assert.JSONEq(t, "1", string(env.Data["leadId"]))
	assert.Equal(t, want, dataLead(t, env, "lead"))

	_, list := do(t, router, http.MethodGet, "/leads", "")
	var leads []entity.Lead
	require.NoError(t, json.Unmarshal(list.Data["leads"], &leads))
	assert.Equal(t, []entity.Lead{want}, leads)
}

func TestListLeadsEmpty(t *testing.T) {
	router := newTestRouter(newTestHandler(database.NewMemoryLeadStore()))

	rec, env := do(t, router, http.MethodGet, "/leads", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", string(env.Data["leads"]))
}

func TestReadLeadBadID(t *testing.T) {
	router := newTestRouter(newTestHandler(database.NewMemoryLeadStore()))

	for _, id := range []string{"abc", "1.5"} {
		rec, env := do(t, router, http.MethodGet, "/leads/"+id, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Validation error", env.Message)
	}
}

func TestNonPositiveIDIsNotFound(t *testing.T) {
	router := newTestRouter(newTestHandler(database.NewMemoryLeadStore()))
	do(t, router, http.MethodPost, "/leads", adaPayload)

	for _, id := range []string{"0", "-1", "-3"} {
		for _, method := range []string{http.MethodGet, http.MethodDelete} {
			rec, env := do(t, router, method, "/leads/"+id, "")
			assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", method, id)
			assert.Equal(t, "Lead not found", env.Message)
		}
		rec, _ := do(t, router, http.MethodPut, "/leads/"+id, adaPayload)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}
}

func TestUpdateLeadRecomputesCommission(t *testing.T) {
	router := newTestRouter(newTestHandler(database.NewMemoryLeadStore()))
	do(t, router, http.MethodPost, "/leads", adaPayload)

	rec, env := do(t, router, http.MethodPut, "/leads/1",
		`{"name":"Ada L","email":"ada@x.com","status":"UNQUALIFIED","estimatedSaleAmount":2000}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Updated", env.Message)
	assert.JSONEq(t, "1", string(env.Data["leadId"]))

	updated := dataLead(t, env, "updatedLead")
	assert.Equal(t, "Ada L", updated.Name)
	assert.Equal(t, 2000.0, updated.EstimatedSaleAmount)
	assert.Equal(t, 0.0, updated.EstimatedCommission)
}

func TestUpdateUnknownLeadIsNotFound(t *testing.T) {
	router := newTestRouter(newTestHandler(database.NewMemoryLeadStore()))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/leads/999", bytes.NewBufferString(adaPayload))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Lead not found","statusCode":404}`, rec.Body.String())
}

func TestUpdateChecksExistenceBeforeFields(t *testing.T) {
	router := newTestRouter(newTestHandler(database.NewMemoryLeadStore()))

	rec, env := do(t, router, http.MethodPut, "/leads/5", `{"name":"","email":"bad"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, env.Errors)

	do(t, router, http.MethodPost, "/leads", adaPayload)
	rec, env = do(t, router, http.MethodPut, "/leads/1", `{"name":"","email":"bad","status":"ACTIVE","estimatedSaleAmount":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, env.Errors, 2)
}

func TestDeleteTwice(t *testing.T) {
	store := database.NewMemoryLeadStore()
	router := newTestRouter(newTestHandler(store))
	do(t, router, http.MethodPost, "/leads", adaPayload)

	rec, env := do(t, router, http.MethodDelete, "/leads/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Deleted", env.Message)
	assert.Equal(t, "Ada", dataLead(t, env, "deletedLead").Name)

	rec, env = do(t, router, http.MethodDelete, "/leads/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Lead not found", env.Message)
	assert.Zero(t, store.OpenSessions())
}

func TestServeOpenFailureIsInternalError(t *testing.T) {
	store := new(MockLeadStore)
	store.On("Open", mock.Anything).Return(nil, errors.New("pool exhausted"))

	rec, env := do(t, newTestRouter(newTestHandler(store)), http.MethodGet, "/leads", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", env.Message)
	store.AssertExpectations(t)
}

func TestServeStorageErrorIsOpaqueAndReleasesSession(t *testing.T) {
	session := new(MockLeadSession)
	session.On("FindAll", mock.Anything).Return(nil, errors.New("relation \"leads\" does not exist"))
	session.On("Close").Return(nil).Once()

	store := new(MockLeadStore)
	store.On("Open", mock.Anything).Return(session, nil)

	rec := httptest.NewRecorder()
	newTestRouter(newTestHandler(store)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "relation")
	session.AssertExpectations(t)
}

func TestServePanicReleasesSession(t *testing.T) {
	session := new(MockLeadSession)
	session.On("Create", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("driver bug")
	})
	session.On("Close").Return(nil).Once()

	store := new(MockLeadStore)
	store.On("Open", mock.Anything).Return(session, nil)

	rec, env := do(t, newTestRouter(newTestHandler(store)), http.MethodPost, "/leads", adaPayload)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", env.Message)
	session.AssertExpectations(t)
}

func TestServePanicDuringValidationReleasesSession(t *testing.T) {
	session := new(MockLeadSession)
	session.On("FindByID", mock.Anything, int64(3)).Run(func(mock.Arguments) {
		panic("lookup exploded")
	})
	session.On("Close").Return(nil).Once()

	store := new(MockLeadStore)
	store.On("Open", mock.Anything).Return(session, nil)

	rec, _ := do(t, newTestRouter(newTestHandler(store)), http.MethodDelete, "/leads/3", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	session.AssertExpectations(t)
	session.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestServeValidationFailureReleasesSessionWithoutMutation(t *testing.T) {
	session := new(MockLeadSession)
	session.On("FindByID", mock.Anything, int64(8)).Return(nil, entity.ErrLeadNotFound)
	session.On("Close").Return(nil).Once()

	store := new(MockLeadStore)
	store.On("Open", mock.Anything).Return(session, nil)

	rec, _ := do(t, newTestRouter(newTestHandler(store)), http.MethodPut, "/leads/8", adaPayload)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	session.AssertExpectations(t)
	session.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestServeValidationWithoutCodeIsUnauthorized(t *testing.T) {
	store := database.NewMemoryLeadStore()
	h := newTestHandler(store)

	rec := httptest.NewRecorder()
	h.serve(rec, httptest.NewRequest(http.MethodGet, "/leads", nil), endpoint{
		op: response.OperationRead,
		validate: func(context.Context, entity.LeadRepositoryInterface) usecase.ValidationResult {
			return usecase.ValidationResult{Valid: false}
		},
		execute: func(context.Context, entity.LeadRepositoryInterface) (any, error) {
			t.Fatal("execute must not run after a failed validation")
			return nil, nil
		},
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Unauthorized","statusCode":403}`, rec.Body.String())
	assert.Zero(t, store.OpenSessions())
}
