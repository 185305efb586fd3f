package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/formsight/backend/internal/middleware"
	"github.com/formsight/backend/internal/telemetry/metrics"
	"github.com/formsight/backend/internal/telemetry/tracing"
	"github.com/formsight/backend/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=sessions_mocks_test.go -package=sessions_test

const defaultListLimit = 10

type sessionsRepo interface {
	Add(ctx context.Context, session TrainingSession) (*TrainingSession, error)
	Get(ctx context.Context, userID, id int) (*TrainingSession, error)
	List(ctx context.Context, params ListParams) (_ []TrainingSession, total int, err error)
	Update(ctx context.Context, session *TrainingSession) error
	Delete(ctx context.Context, userID, id int) error
}

type DeleteSessionResponse struct {
	DeletedID int `json:"deletedId"`
}

type UpdateSessionResponse struct {
	UpdatedID int `json:"updatedId"`
}

type ListResponse struct {
	Sessions []TrainingSession `json:"sessions"`
	Total    int               `json:"total"`
}

type Handler struct {
	repo           sessionsRepo
	metricsManager *metrics.Manager
}

func NewHandler(repo sessionsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.new")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var session TrainingSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		log.Tracef("new training session, unmarshal json params: %s", err)
		http.Error(w, "add training session failed", http.StatusBadRequest)
		return
	}

	if session.ExerciseType == "" || session.MuscleGroup == "" {
		http.Error(w, "error, exercise type or muscle group empty", http.StatusBadRequest)
		return
	}

	session.UserID = userID
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	addedSession, err := handler.repo.Add(ctx, session)
	if err != nil {
		log.Errorf("failed to add new training session [%s], [%s]: %s", session.MuscleGroup, session.ExerciseType, err)
		http.Error(w, "error, failed to add new training session", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterSessionsSaved.Inc()

	addedSessionJson, err := json.Marshal(addedSession)
	if err != nil {
		log.Errorf("failed to marshal new training session: %s", err)
		http.Error(w, "error, failed to add new training session", http.StatusInternalServerError)
		return
	}

	log.Debugf("new training session added: %s", addedSessionJson)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedSessionJson, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.get")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	session, err := handler.repo.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, "training session not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get training session %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	sessionJson, err := json.Marshal(session)
	if err != nil {
		log.Errorf("failed to marshal training session: %s", err)
		http.Error(w, "failed to marshal training session", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, sessionJson, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.list")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	limit := defaultListLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			log.Tracef("handle list training sessions, from <limit> param: %s", err)
			http.Error(w, "parse form error, parameter <limit>", http.StatusBadRequest)
			return
		}
	}
	if limit < 1 {
		http.Error(w, "invalid limit (has to be non-zero value)", http.StatusBadRequest)
		return
	}

	foundSessions, total, err := handler.repo.List(ctx, ListParams{
		UserID: userID,
		Limit:  limit,
	})
	if err != nil {
		log.Errorf("list training sessions error: %s", err)
		http.Error(w, "failed to get training sessions", http.StatusInternalServerError)
		return
	}

	listResponseJson, err := json.Marshal(ListResponse{
		Sessions: foundSessions,
		Total:    total,
	})
	if err != nil {
		log.Errorf("marshal training sessions error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, listResponseJson, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.update")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	type updateSessionRequest struct {
		MuscleGroup     *string  `json:"muscleGroup,omitempty"`
		ExerciseType    *string  `json:"exerciseType,omitempty"`
		FormAccuracy    *float64 `json:"formAccuracy,omitempty"`
		Feedback        *string  `json:"feedback,omitempty"`
		DurationSeconds *int     `json:"durationSeconds,omitempty"`
	}

	var updateReq updateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		log.Errorf("update training session, unmarshal json params: %s", err)
		http.Error(w, "update training session failed", http.StatusBadRequest)
		return
	}

	currentSession, err := handler.repo.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			log.Debugf("training session %d not found", id)
			http.Error(w, "training session not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get training session %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// only the sent fields get updated
	if updateReq.MuscleGroup != nil {
		currentSession.MuscleGroup = *updateReq.MuscleGroup
	}
	if updateReq.ExerciseType != nil {
		currentSession.ExerciseType = *updateReq.ExerciseType
	}
	if updateReq.FormAccuracy != nil {
		currentSession.FormAccuracy = *updateReq.FormAccuracy
	}
	if updateReq.Feedback != nil {
		currentSession.Feedback = *updateReq.Feedback
	}
	if updateReq.DurationSeconds != nil {
		currentSession.DurationSeconds = updateReq.DurationSeconds
	}

	if err := handler.repo.Update(ctx, currentSession); err != nil {
		log.Errorf("failed to update training session [%d]: %s", id, err)
		http.Error(w, "error, failed to update training session", http.StatusInternalServerError)
		return
	}

	updateRespJson, err := json.Marshal(UpdateSessionResponse{
		UpdatedID: id,
	})
	if err != nil {
		log.Errorf("failed to marshal update response: %s", err)
		http.Error(w, "failed to marshal update response", http.StatusInternalServerError)
		return
	}

	log.Debugf("training session updated: [%s] [%s]: %d", currentSession.MuscleGroup, currentSession.ExerciseType, id)
	pkg.WriteJSONResponseOK(w, string(updateRespJson))
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.delete")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			log.Debugf("training session %d not found", id)
			http.Error(w, "training session not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete training session %d: %s", id, err)
		http.Error(w, "training session not deleted", http.StatusInternalServerError)
		return
	}

	deleteRespJson, err := json.Marshal(DeleteSessionResponse{
		DeletedID: id,
	})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "failed to marshal delete response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}
