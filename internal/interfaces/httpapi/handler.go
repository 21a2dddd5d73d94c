package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"juryboard/internal/bootstrap/logging"
	"juryboard/internal/domain/jury"
	"juryboard/internal/errs"
	"juryboard/internal/ports"
	"juryboard/internal/usecase/audit"
	"juryboard/internal/usecase/backup"
	"juryboard/internal/usecase/evaluation"
	"juryboard/internal/usecase/reset"
)

// Handler is the thin caller boundary. It authenticates nothing itself:
// the actor arrives in X-Actor-ID / X-Actor-Role headers set by the
// fronting proxy, and this layer only maps usecase errors to statuses.
type Handler struct {
	resets      *reset.Service
	backups     *backup.Service
	audits      *audit.Service
	evaluations *evaluation.Service
}

func NewHandler(resets *reset.Service, backups *backup.Service, audits *audit.Service, evaluations *evaluation.Service) *Handler {
	return &Handler{
		resets:      resets,
		backups:     backups,
		audits:      audits,
		evaluations: evaluations,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/evaluations", h.submitEvaluation)
		r.Get("/evaluations", h.listEvaluations)

		r.Post("/resets/individual", h.resetIndividual)
		r.Post("/resets/candidate", h.resetCandidate)
		r.Post("/resets/reviewer", h.resetReviewer)
		r.Post("/resets/full-system", h.resetFullSystem)
		r.Post("/phase/advance", h.phaseTransition)

		r.Post("/restores", h.restore)
		r.Get("/snapshots", h.listSnapshots)
		r.Get("/statistics", h.statistics)
		r.Get("/audit", h.listAudit)
	})

	return r
}

var errBadRequest = errors.New("malformed request body")

func statusForError(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, jury.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, jury.ErrVotingLocked),
		errors.Is(err, jury.ErrRestoreConflict):
		return http.StatusConflict
	case errors.Is(err, jury.ErrNothingToReset),
		errors.Is(err, jury.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, jury.ErrInvalidScope),
		errors.Is(err, jury.ErrMissingReason),
		errors.Is(err, jury.ErrConfirmRequired),
		errors.Is(err, jury.ErrInvalidScore),
		errors.Is(err, jury.ErrCandidateRequired),
		errors.Is(err, jury.ErrReviewerRequired):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *Handler) writeError(r *http.Request, w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logging.Error(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("err", errs.Loggable(err)),
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func actorFromRequest(r *http.Request) (jury.Actor, error) {
	rawID := strings.TrimSpace(r.Header.Get("X-Actor-ID"))
	if rawID == "" {
		return jury.Actor{}, jury.ErrUnauthorized
	}
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || id == 0 {
		return jury.Actor{}, jury.ErrUnauthorized
	}

	role := jury.Role(strings.ToLower(strings.TrimSpace(r.Header.Get("X-Actor-Role"))))
	if role == "" {
		role = jury.RoleReviewer
	}

	return jury.Actor{ID: id, Role: role}, nil
}

func requestMeta(r *http.Request, actor jury.Actor, reason string, notify bool) reset.Request {
	return reset.Request{
		Actor:     actor,
		Reason:    reason,
		Notify:    notify,
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}

type resetRequestBody struct {
	CandidateID uint64 `json:"candidate_id"`
	ReviewerID  uint64 `json:"reviewer_id"`
	NewRound    string `json:"new_round"`
	Reason      string `json:"reason"`
	Notify      bool   `json:"notify"`
	Confirm     bool   `json:"confirm"`
}

type resetResponse struct {
	Scope        string `json:"scope"`
	RowsAffected int64  `json:"rows_affected"`
	BackupID     string `json:"backup_id"`
	AuditID      uint64 `json:"audit_id"`
}

func (h *Handler) decodeResetRequest(r *http.Request) (resetRequestBody, jury.Actor, error) {
	actor, err := actorFromRequest(r)
	if err != nil {
		return resetRequestBody{}, jury.Actor{}, err
	}

	var body resetRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return resetRequestBody{}, jury.Actor{}, errs.Wrap(errBadRequest, "decode json")
	}
	return body, actor, nil
}

func (h *Handler) writeResetResult(w http.ResponseWriter, result reset.Result) {
	writeJSON(w, http.StatusOK, resetResponse{
		Scope:        string(result.Scope),
		RowsAffected: result.RowsAffected,
		BackupID:     result.SnapshotUID,
		AuditID:      result.AuditID,
	})
}

func (h *Handler) resetIndividual(w http.ResponseWriter, r *http.Request) {
	body, actor, err := h.decodeResetRequest(r)
	if err != nil {
		h.writeError(r, w, err)
		return
	}

	result, err := h.resets.ResetIndividual(r.Context(), reset.IndividualResetInput{
		Request:     requestMeta(r, actor, body.Reason, body.Notify),
		CandidateID: body.CandidateID,
		ReviewerID:  body.ReviewerID,
	})
	if err != nil {
		h.writeError(r, w, err)
		return
	}
	h.writeResetResult(w, result)
}

func (h *Handler) resetCandidate(w http.ResponseWriter, r *http.Request) {
	body, actor, err := h.decodeResetRequest(r)
	if err != nil {
		h.writeError(r, w, err)
		return
	}

	result, err := h.resets.ResetByCandidate(r.Context(), reset.CandidateResetInput{
		Request:     requestMeta(r, actor, body.Reason, body.Notify),
		CandidateID: body.CandidateID,
	})
	if err != nil {
		h.writeError(r, w, err)
		return
	}
	h.writeResetResult(w, result)
}

func (h *Handler) resetReviewer(w http.ResponseWriter, r *http.Request) {
	body, actor, err := h.decodeResetRequest(r)
	if err != nil {
		h.writeError(r, w, err)
		return
	}

	result, err := h.resets.ResetByReviewer(r.Context(), reset.ReviewerResetInput{
		Request:    requestMeta(r, actor, body.Reason, body.Notify),
		ReviewerID: body.ReviewerID,
	})
	if err != nil {
		h.writeError(r, w, err)
		return
	}
	h.writeResetResult(w, result)
}

func (h *Handler) resetFullSystem(w http.ResponseWriter, r *http.Request) {
	body, actor, err := h.decodeResetRequest(r)
	if err != nil {
		h.writeError(r, w, err)
		return
	}

	result, err := h.resets.ResetFullSystem(r.Context(), reset.FullSystemResetInput{
		Request: requestMeta(r, actor, body.Reason, body.Notify),
		Confirm: body.Confirm,
	})
	if err != nil {
		h.writeError(r, w, err)
		return
	}
	h.writeResetResult(w, result)
}

func (h *Handler) phaseTransition(w http.ResponseWriter, r *http.Request) {
	body, actor, err := h.decodeResetRequest(r)
	if err != nil {
		h.writeError(r, w, err)
		return
	}

	result, err := h.resets.PhaseTransition(r.Context(), reset.PhaseTransitionInput{
		Request:  requestMeta(r, actor, body.Reason, body.Notify),
		NewRound: body.NewRound,
	})
	if err != nil {
		h.writeError(r, w, err)
		return
	}
	h.writeResetResult(w, result)
}

type restoreRequestBody struct {
	SnapshotID string `json:"snapshot_id"`
	Target     string `json:"target"`
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		h.writeError(r, w, err)
		return
	}
	if actor.Role != jury.RoleAdmin {
		h.writeError(r, w, jury.ErrUnauthorized)
		return
	}

	var body restoreRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(r, w, errs.Wrap(errBadRequest, "decode json"))
		return
	}

	target, err := backup.ParseRestoreTarget(body.Target)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	result, err := h.backups.Restore(r.Context(), backup.RestoreInput{
		SnapshotUID: body.SnapshotID,
		Target:      target,
	})
	if err != nil {
		h.writeError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"snapshot_id":   result.SnapshotUID,
		"restored_rows": result.RestoredRows,
	})
}

type submitRequestBody struct {
	CandidateID uint64 `json:"candidate_id"`
	Scores      [5]int `json:"scores"`
	Comments    string `json:"comments"`
}

func (h *Handler) submitEvaluation(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		h.writeError(r, w, err)
		return
	}

	var body submitRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(r, w, errs.Wrap(errBadRequest, "decode json"))
		return
	}

	created, err := h.evaluations.Submit(r.Context(), evaluation.SubmitInput{
		CandidateID: body.CandidateID,
		ReviewerID:  actor.ID,
		Scores:      jury.ScoreSet(body.Scores),
		Comments:    body.Comments,
	})
	if err != nil {
		h.writeError(r, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"evaluation_id": created.EvaluationID,
		"total_score":   created.TotalScore,
		"round":         created.Round,
	})
}

func (h *Handler) listEvaluations(w http.ResponseWriter, r *http.Request) {
	filter := ports.EvaluationFilter{Round: r.URL.Query().Get("round")}
	if raw := r.URL.Query().Get("candidate_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			h.writeError(r, w, errs.Wrap(errBadRequest, "parse candidate_id"))
			return
		}
		filter.CandidateID = id
	}
	if raw := r.URL.Query().Get("reviewer_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			h.writeError(r, w, errs.Wrap(errBadRequest, "parse reviewer_id"))
			return
		}
		filter.ReviewerID = id
	}

	items, err := h.evaluations.ActiveEvaluations(r.Context(), filter)
	if err != nil {
		h.writeError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"evaluations": items})
}

func (h *Handler) listSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)
	items, err := h.backups.ListSnapshots(r.Context(), limit)
	if err != nil {
		h.writeError(r, w, err)
		return
	}

	// Payloads can be large; the listing returns metadata only.
	type snapshotMeta struct {
		SnapshotID string `json:"snapshot_id"`
		ScopeType  string `json:"scope_type"`
		Reason     string `json:"reason"`
		CreatedBy  uint64 `json:"created_by"`
		CreatedAt  string `json:"created_at"`
	}
	meta := make([]snapshotMeta, 0, len(items))
	for _, item := range items {
		meta = append(meta, snapshotMeta{
			SnapshotID: item.SnapshotUID,
			ScopeType:  item.ScopeType,
			Reason:     item.Reason,
			CreatedBy:  item.CreatedBy,
			CreatedAt:  item.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": meta})
}

func (h *Handler) statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.audits.Statistics(r.Context())
	if err != nil {
		h.writeError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_resets":        stats.TotalResets,
		"by_type":             stats.ByType,
		"recent_30_days":      stats.Recent30Days,
		"total_rows_affected": stats.TotalRowsAffected,
	})
}

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)
	items, err := h.audits.Recent(r.Context(), limit)
	if err != nil {
		h.writeError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": items})
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
