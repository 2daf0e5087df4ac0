// Package handler exposes the report lifecycle over HTTP.
package handler

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"civicpulse/internal/platform/middleware"
	"civicpulse/internal/report/models"
	"civicpulse/internal/report/service"
	"civicpulse/internal/storage"
	"civicpulse/pkg/domain"
	dErrors "civicpulse/pkg/domain-errors"
	"civicpulse/pkg/platform/httputil"
	"civicpulse/pkg/requestcontext"
)

// Service is the report service surface the handler depends on.
type Service interface {
	Submit(ctx context.Context, actor service.Actor, input service.SubmitInput) (*models.Report, error)
	CastVote(ctx context.Context, actor service.Actor, reportID domain.ReportID) (int, error)
	ChangeStatus(ctx context.Context, actor service.Actor, reportID domain.ReportID, target domain.Status) (*models.Report, error)
	List(ctx context.Context, filter models.ListFilter) ([]models.ReportWithVotes, error)
	Get(ctx context.Context, id domain.ReportID, viewer domain.UserID) (*service.ReportDetail, error)
	AdminQueue(ctx context.Context, actor service.Actor, filter models.ListFilter) ([]models.ReportWithVotes, error)
	Leaderboard(ctx context.Context, n int) ([]service.LeaderboardEntry, error)
}

// Handler serves the /reports and /admin/reports routes.
type Handler struct {
	svc    Service
	blobs  storage.Store
	logger *slog.Logger
}

func New(svc Service, blobs storage.Store, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		blobs:  blobs,
		logger: logger,
	}
}

// Register mounts the report routes. Authentication resolution happens in
// the router-level middleware; routes that need an identity add RequireAuth.
func (h *Handler) Register(r chi.Router) {
	requireAuth := middleware.RequireAuth(h.logger)

	r.Get("/reports", h.handleList)
	r.Get("/reports/{id}", h.handleGet)
	r.Get("/leaderboard", h.handleLeaderboard)
	r.With(requireAuth).Post("/reports", h.handleSubmit)
	r.With(requireAuth).Post("/reports/{id}/votes", h.handleCastVote)
	r.With(requireAuth).Patch("/reports/{id}/status", h.handleChangeStatus)
	r.With(requireAuth).Get("/admin/reports", h.handleAdminQueue)
}

func actorFrom(ctx context.Context) service.Actor {
	return service.Actor{
		ID:   requestcontext.UserID(ctx),
		Role: requestcontext.Role(ctx),
	}
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitReportRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	actor := actorFrom(ctx)
	imageRef, err := h.storeImage(ctx, actor, req)
	if err != nil {
		h.logger.WarnContext(ctx, "image upload failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	report, err := h.svc.Submit(ctx, actor, service.SubmitInput{
		RawText:  req.Description,
		Location: req.location(),
		ImageRef: imageRef,
	})
	if err != nil {
		h.writeServiceError(w, ctx, "submit report", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, report)
}

// storeImage persists an attached image and returns its reference. Requests
// without an image never touch the blob store.
func (h *Handler) storeImage(ctx context.Context, actor service.Actor, req *SubmitReportRequest) (string, error) {
	if req.ImageBase64 == "" {
		return "", nil
	}
	data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		return "", dErrors.New(dErrors.CodeValidation, "image_base64 is not valid base64")
	}
	name := fmt.Sprintf("reports/%s/%s", actor.ID.String(), req.ImageName)
	ref, err := h.blobs.Put(ctx, name, data)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeStorage, "storing report image")
	}
	return ref, nil
}

func (h *Handler) handleCastVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reportID, err := domain.ParseReportID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	count, err := h.svc.CastVote(ctx, actorFrom(ctx), reportID)
	if err != nil {
		h.writeServiceError(w, ctx, "cast vote", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"votes_count": count})
}

func (h *Handler) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	reportID, err := domain.ParseReportID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[ChangeStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	target, err := domain.ParseStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	report, err := h.svc.ChangeStatus(ctx, actorFrom(ctx), reportID, target)
	if err != nil {
		h.writeServiceError(w, ctx, "change report status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rows, err := h.svc.List(ctx, filter)
	if err != nil {
		h.writeServiceError(w, ctx, "list reports", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"reports": rows})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reportID, err := domain.ParseReportID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	detail, err := h.svc.Get(ctx, reportID, requestcontext.UserID(ctx))
	if err != nil {
		h.writeServiceError(w, ctx, "get report", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleAdminQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rows, err := h.svc.AdminQueue(ctx, actorFrom(ctx), filter)
	if err != nil {
		h.writeServiceError(w, ctx, "list admin queue", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"reports": rows})
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	n := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer"))
			return
		}
		n = parsed
	}

	entries, err := h.svc.Leaderboard(ctx, n)
	if err != nil {
		h.writeServiceError(w, ctx, "read leaderboard", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

// filterFromQuery parses the shared listing query parameters. The literal
// category "uncategorized" selects reports with no category.
func filterFromQuery(r *http.Request) (models.ListFilter, error) {
	var filter models.ListFilter
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(q.Get("category")); raw != "" {
		if raw == string(domain.CategoryUncategorized) {
			filter.Uncategorized = true
		} else {
			category, err := domain.ParseCategory(raw)
			if err != nil {
				return filter, err
			}
			filter.Category = category
		}
	}
	filter.Search = strings.TrimSpace(q.Get("q"))

	sort, err := models.ParseSort(strings.TrimSpace(q.Get("sort")))
	if err != nil {
		return filter, err
	}
	filter.Sort = sort

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, dErrors.New(dErrors.CodeValidation, "limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}

func (h *Handler) writeServiceError(w http.ResponseWriter, ctx context.Context, op string, err error) {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal || code == dErrors.CodeStorage || code == dErrors.CodeTimeout {
		h.logger.ErrorContext(ctx, "request failed",
			"request_id", requestcontext.RequestID(ctx),
			"op", op,
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
