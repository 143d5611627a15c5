package approvals

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chemtrade/chemtrade-backend/api/middleware"
	"github.com/chemtrade/chemtrade-backend/api/responses"
	"github.com/chemtrade/chemtrade-backend/api/validators"
	internalapprovals "github.com/chemtrade/chemtrade-backend/internal/approvals"
	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
	"github.com/chemtrade/chemtrade-backend/pkg/logger"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

type submitRequest struct {
	SubjectType string    `json:"subject_type" validate:"required"`
	SubjectRef  uuid.UUID `json:"subject_ref" validate:"required"`
	OldValue    *string   `json:"old_value,omitempty"`
	NewValue    *string   `json:"new_value,omitempty"`
	Remark      string    `json:"remark" validate:"required"`
}

// Submit opens a new approval request for any registered subject type.
func Submit(svc internalapprovals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "approvals service unavailable"))
			return
		}

		var req submitRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subjectType, err := enums.ParseApprovalSubject(strings.TrimSpace(req.SubjectType))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid subject type"))
			return
		}

		request, err := svc.Submit(r.Context(), internalapprovals.SubmitInput{
			SubjectType: subjectType,
			SubjectRef:  req.SubjectRef,
			OldValue:    req.OldValue,
			NewValue:    req.NewValue,
			Remark:      validators.SanitizeString(req.Remark, 512),
			Actor:       middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toView(request))
	}
}

type resolveRequest struct {
	Decision string `json:"decision" validate:"required"`
	Remark   string `json:"remark,omitempty"`
}

// Resolve applies one binary accept/reject decision. The service guarantees
// exactly-once resolution.
func Resolve(svc internalapprovals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "approvals service unavailable"))
			return
		}

		requestID, err := parseRequestID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req resolveRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		decision := enums.ApprovalDecision(strings.TrimSpace(req.Decision))
		if !decision.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "decision must be approve or reject"))
			return
		}

		request, err := svc.Resolve(r.Context(), internalapprovals.ResolveInput{
			RequestID:        requestID,
			Decision:         decision,
			Resolver:         middleware.ActorFromContext(r.Context()),
			ResolutionRemark: validators.SanitizeString(req.Remark, 512),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toView(request))
	}
}

// Detail returns one approval request.
func Detail(svc internalapprovals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "approvals service unavailable"))
			return
		}

		requestID, err := parseRequestID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Get(r.Context(), requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toView(request))
	}
}

// ListPending returns the open approval queue.
func ListPending(svc internalapprovals.Service, logg *logger.Logger) http.HandlerFunc {
	return listWith(svc, logg, internalapprovals.Service.ListPending)
}

// ListHistory returns resolved requests, newest first.
func ListHistory(svc internalapprovals.Service, logg *logger.Logger) http.HandlerFunc {
	return listWith(svc, logg, internalapprovals.Service.ListHistory)
}

func listWith(
	svc internalapprovals.Service,
	logg *logger.Logger,
	list func(internalapprovals.Service, context.Context, pagination.Params, internalapprovals.RequestFilters) (*internalapprovals.RequestList, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "approvals service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters, err := buildFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := list(svc, r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func buildFilters(r *http.Request) (internalapprovals.RequestFilters, error) {
	var filters internalapprovals.RequestFilters

	for _, raw := range strings.Split(r.URL.Query().Get("subject_type"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		subject, err := enums.ParseApprovalSubject(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid subject type filter")
		}
		filters.SubjectTypes = append(filters.SubjectTypes, subject)
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("subject_ref")); raw != "" {
		ref, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid subject ref filter")
		}
		filters.SubjectRef = &ref
	}

	return filters, nil
}

type requestView struct {
	ID               uuid.UUID             `json:"id"`
	SubjectType      enums.ApprovalSubject `json:"subject_type"`
	SubjectRef       uuid.UUID             `json:"subject_ref"`
	OldValue         *string               `json:"old_value,omitempty"`
	NewValue         *string               `json:"new_value,omitempty"`
	Remark           string                `json:"remark"`
	Status           enums.ApprovalStatus  `json:"status"`
	SubmittedBy      string                `json:"submitted_by"`
	SubmittedAt      time.Time             `json:"submitted_at"`
	ResolvedBy       *string               `json:"resolved_by,omitempty"`
	ResolvedAt       *time.Time            `json:"resolved_at,omitempty"`
	ResolutionRemark *string               `json:"resolution_remark,omitempty"`
}

func toView(request *models.ApprovalRequest) *requestView {
	if request == nil {
		return nil
	}
	return &requestView{
		ID:               request.ID,
		SubjectType:      request.SubjectType,
		SubjectRef:       request.SubjectRef,
		OldValue:         request.OldValue,
		NewValue:         request.NewValue,
		Remark:           request.Remark,
		Status:           request.Status,
		SubmittedBy:      request.SubmittedBy,
		SubmittedAt:      request.SubmittedAt,
		ResolvedBy:       request.ResolvedBy,
		ResolvedAt:       request.ResolvedAt,
		ResolutionRemark: request.ResolutionRemark,
	}
}

func parseRequestID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "requestId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}
	requestID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request id")
	}
	return requestID, nil
}
