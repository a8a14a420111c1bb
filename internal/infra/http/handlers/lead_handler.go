package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/infra/http/response"
	"github.com/xavierca1/ligue-leads/internal/infra/logger"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

type LeadHandler struct {
	Store   entity.LeadStore
	UseCase *usecase.LeadUseCase
	Logger  *logger.Logger
}

func NewLeadHandler(store entity.LeadStore, uc *usecase.LeadUseCase, log *logger.Logger) *LeadHandler {
	if log == nil {
		log = logger.New("")
	}
	return &LeadHandler{
		Store:   store,
		UseCase: uc,
		Logger:  log,
	}
}

// endpoint describes one lead request. validate may be nil; both steps run
// against the session opened for the request.
type endpoint struct {
	op       response.Operation
	validate func(ctx context.Context, repo entity.LeadRepositoryInterface) usecase.ValidationResult
	execute  func(ctx context.Context, repo entity.LeadRepositoryInterface) (any, error)
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, endpoint{
		op: response.OperationRead,
		execute: func(ctx context.Context, repo entity.LeadRepositoryInterface) (any, error) {
			return h.UseCase.List(ctx, repo)
		},
	})
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeLeadInput(w, r)
	if !ok {
		return
	}

	h.serve(w, r, endpoint{
		op: response.OperationCreate,
		validate: func(_ context.Context, _ entity.LeadRepositoryInterface) usecase.ValidationResult {
			return usecase.ValidateLeadData(input)
		},
		execute: func(ctx context.Context, repo entity.LeadRepositoryInterface) (any, error) {
			return h.UseCase.Create(ctx, repo, input)
		},
	})
}

func (h *LeadHandler) Read(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "id")

	h.serve(w, r, endpoint{
		op: response.OperationRead,
		validate: func(ctx context.Context, repo entity.LeadRepositoryInterface) usecase.ValidationResult {
			return usecase.ValidateLeadExistence(ctx, rawID, repo)
		},
		execute: func(ctx context.Context, repo entity.LeadRepositoryInterface) (any, error) {
			id, err := usecase.ParseLeadID(rawID)
			if err != nil {
				return nil, err
			}
			return h.UseCase.Read(ctx, repo, id)
		},
	})
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "id")
	input, ok := decodeLeadInput(w, r)
	if !ok {
		return
	}

	h.serve(w, r, endpoint{
		op: response.OperationUpdate,
		validate: func(ctx context.Context, repo entity.LeadRepositoryInterface) usecase.ValidationResult {
			return usecase.ValidateLeadUpdate(ctx, rawID, input, repo)
		},
		execute: func(ctx context.Context, repo entity.LeadRepositoryInterface) (any, error) {
			id, err := usecase.ParseLeadID(rawID)
			if err != nil {
				return nil, err
			}
			return h.UseCase.Update(ctx, repo, id, input)
		},
	})
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "id")

	h.serve(w, r, endpoint{
		op: response.OperationDelete,
		validate: func(ctx context.Context, repo entity.LeadRepositoryInterface) usecase.ValidationResult {
			return usecase.ValidateLeadExistence(ctx, rawID, repo)
		},
		execute: func(ctx context.Context, repo entity.LeadRepositoryInterface) (any, error) {
			id, err := usecase.ParseLeadID(rawID)
			if err != nil {
				return nil, err
			}
			return h.UseCase.Delete(ctx, repo, id)
		},
	})
}

// serve runs validate then execute inside one storage session. The session is
// closed on every path, panics included.
func (h *LeadHandler) serve(w http.ResponseWriter, r *http.Request, ep endpoint) {
	ctx := r.Context()
	log := h.Logger.WithContext(ctx)

	session, err := h.Store.Open(ctx)
	if err != nil {
		log.DatabaseError("open lead session", err)
		response.InternalError(w)
		return
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.DatabaseError("close lead session", err)
		}
	}()

	if ep.validate != nil {
		var result usecase.ValidationResult
		err := recoverPanic(func() error {
			result = ep.validate(ctx, session)
			return nil
		})
		if err != nil {
			log.HTTPError(r.Method, r.URL.Path, http.StatusInternalServerError, err)
			response.InternalError(w)
			return
		}
		if !result.Valid {
			middleware.RecordValidationFailure(ep.op.String())
			response.ValidationFailure(w, result)
			return
		}
	}

	var data any
	err = recoverPanic(func() error {
		var execErr error
		data, execErr = ep.execute(ctx, session)
		return execErr
	})
	if err != nil {
		log.HTTPError(r.Method, r.URL.Path, http.StatusInternalServerError, err)
		response.InternalError(w)
		return
	}

	if ep.op != response.OperationRead {
		middleware.RecordLeadMutation(ep.op.String())
	}
	response.Success(w, ep.op, data)
}

func recoverPanic(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn()
}

func decodeLeadInput(w http.ResponseWriter, r *http.Request) (usecase.LeadInput, bool) {
	var input usecase.LeadInput

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&input); err != nil || dec.More() {
		response.Error(w, http.StatusBadRequest, response.MsgInvalidJSON, nil)
		return input, false
	}
	return input, true
}
