package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/formsight/backend/internal/sessions"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) trainingSessionsRequest(
	ctx context.Context,
	token, method, path string,
	body []byte,
) (int, []byte) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewBuffer(body)
	}
	req, err := http.NewRequestWithContext(
		ctx,
		method, fmt.Sprintf("%s%s", serverEndpoint, path),
		reqBody,
	)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("X-FORMSIGHT-TOKEN", token)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)

	return resp.StatusCode, respBytes
}

func (s *IntegrationTestSuite) addTrainingSession(
	ctx context.Context,
	token string,
	session sessions.TrainingSession,
) sessions.TrainingSession {
	sessionJson, err := json.Marshal(session)
	require.NoError(s.T(), err)

	status, respBytes := s.trainingSessionsRequest(ctx, token, "POST", "/api/sessions", sessionJson)
	require.Equal(s.T(), http.StatusCreated, status)

	var addedSession sessions.TrainingSession
	require.NoError(s.T(), json.Unmarshal(respBytes, &addedSession))
	require.Greater(s.T(), addedSession.ID, 0)

	return addedSession
}

func (s *IntegrationTestSuite) TestTrainingSessions() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	userLogin := s.registerUser(ctx, gofakeit.Email(), testUserPassword, "Session Tester")
	token := userLogin.Token
	userID := userLogin.User.ID

	durationSeconds := 95
	olderSession := s.addTrainingSession(ctx, token, sessions.TrainingSession{
		MuscleGroup:     "biceps",
		ExerciseType:    "bicep_curl",
		FormAccuracy:    88.5,
		Feedback:        "Keep your elbows close to your body.",
		DurationSeconds: &durationSeconds,
		CreatedAt:       time.Now().Add(-time.Hour).UTC(),
	})
	assert.Equal(t, userID, olderSession.UserID)
	require.NotNil(t, olderSession.DurationSeconds)
	assert.Equal(t, durationSeconds, *olderSession.DurationSeconds)

	newerSession := s.addTrainingSession(ctx, token, sessions.TrainingSession{
		MuscleGroup:  "quads",
		ExerciseType: "squat",
		FormAccuracy: 72.3,
		Feedback:     "Go deeper into the squat position.",
	})

	t.Run("get", func(t *testing.T) {
		status, respBytes := s.trainingSessionsRequest(
			ctx, token,
			"GET", fmt.Sprintf("/api/sessions/%d", olderSession.ID),
			nil,
		)
		require.Equal(t, http.StatusOK, status)

		var session sessions.TrainingSession
		require.NoError(t, json.Unmarshal(respBytes, &session))
		assert.Equal(t, olderSession.ID, session.ID)
		assert.Equal(t, "biceps", session.MuscleGroup)
		assert.Equal(t, "bicep_curl", session.ExerciseType)
		assert.InDelta(t, 88.5, session.FormAccuracy, 1e-9)
	})

	t.Run("list, newest first", func(t *testing.T) {
		status, respBytes := s.trainingSessionsRequest(ctx, token, "GET", "/api/sessions", nil)
		require.Equal(t, http.StatusOK, status)

		var listResp sessions.ListResponse
		require.NoError(t, json.Unmarshal(respBytes, &listResp))
		require.Equal(t, 2, listResp.Total)
		require.Len(t, listResp.Sessions, 2)
		assert.Equal(t, newerSession.ID, listResp.Sessions[0].ID)
		assert.Equal(t, olderSession.ID, listResp.Sessions[1].ID)
	})

	t.Run("list, limited", func(t *testing.T) {
		status, respBytes := s.trainingSessionsRequest(ctx, token, "GET", "/api/sessions?limit=1", nil)
		require.Equal(t, http.StatusOK, status)

		var listResp sessions.ListResponse
		require.NoError(t, json.Unmarshal(respBytes, &listResp))
		// total still counts all sessions of this user
		assert.Equal(t, 2, listResp.Total)
		require.Len(t, listResp.Sessions, 1)
		assert.Equal(t, newerSession.ID, listResp.Sessions[0].ID)
	})

	t.Run("list, invalid limit", func(t *testing.T) {
		status, _ := s.trainingSessionsRequest(ctx, token, "GET", "/api/sessions?limit=0", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("update", func(t *testing.T) {
		updateJson := []byte(`{"formAccuracy": 91.2}`)
		status, respBytes := s.trainingSessionsRequest(
			ctx, token,
			"PUT", fmt.Sprintf("/api/sessions/%d", olderSession.ID),
			updateJson,
		)
		require.Equal(t, http.StatusOK, status)

		var updateResp sessions.UpdateSessionResponse
		require.NoError(t, json.Unmarshal(respBytes, &updateResp))
		assert.Equal(t, olderSession.ID, updateResp.UpdatedID)

		status, respBytes = s.trainingSessionsRequest(
			ctx, token,
			"GET", fmt.Sprintf("/api/sessions/%d", olderSession.ID),
			nil,
		)
		require.Equal(t, http.StatusOK, status)

		var session sessions.TrainingSession
		require.NoError(t, json.Unmarshal(respBytes, &session))
		assert.InDelta(t, 91.2, session.FormAccuracy, 1e-9)
		// the rest stays untouched
		assert.Equal(t, "biceps", session.MuscleGroup)
		assert.Equal(t, "bicep_curl", session.ExerciseType)
		assert.Equal(t, "Keep your elbows close to your body.", session.Feedback)
	})

	t.Run("other user cannot see the session", func(t *testing.T) {
		otherLogin := s.registerUser(ctx, gofakeit.Email(), testUserPassword, "Other Trainer")
		status, respBytes := s.trainingSessionsRequest(
			ctx, otherLogin.Token,
			"GET", fmt.Sprintf("/api/sessions/%d", olderSession.ID),
			nil,
		)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Contains(t, string(respBytes), "training session not found")
	})

	t.Run("no token", func(t *testing.T) {
		status, respBytes := s.trainingSessionsRequest(ctx, "", "GET", "/api/sessions", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Contains(t, string(respBytes), "no can do")
	})

	t.Run("delete", func(t *testing.T) {
		status, respBytes := s.trainingSessionsRequest(
			ctx, token,
			"DELETE", fmt.Sprintf("/api/sessions/%d", newerSession.ID),
			nil,
		)
		require.Equal(t, http.StatusOK, status)

		var deleteResp sessions.DeleteSessionResponse
		require.NoError(t, json.Unmarshal(respBytes, &deleteResp))
		assert.Equal(t, newerSession.ID, deleteResp.DeletedID)

		status, respBytes = s.trainingSessionsRequest(
			ctx, token,
			"GET", fmt.Sprintf("/api/sessions/%d", newerSession.ID),
			nil,
		)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Contains(t, string(respBytes), "training session not found")
	})

	t.Run("get, unknown id", func(t *testing.T) {
		status, respBytes := s.trainingSessionsRequest(ctx, token, "GET", "/api/sessions/99999", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Contains(t, string(respBytes), "training session not found")
	})

	t.Run("get, id NaN", func(t *testing.T) {
		status, respBytes := s.trainingSessionsRequest(ctx, token, "GET", "/api/sessions/invalid", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, string(respBytes), "error, id NaN")
	})

	t.Run("add, invalid content type", func(t *testing.T) {
		req, err := http.NewRequestWithContext(
			ctx,
			"POST", fmt.Sprintf("%s/api/sessions", serverEndpoint),
			bytes.NewBufferString("muscleGroup=biceps"),
		)
		require.NoError(t, err)
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-FORMSIGHT-TOKEN", token)

		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		respBytes, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(respBytes), "invalid content type")
	})

	// go through the back door and check the rows are really there
	var storedSessions int
	require.NoError(
		t,
		s.DB.QueryRow("SELECT COUNT(*) FROM training_session WHERE user_id = $1", userID).Scan(&storedSessions),
	)
	assert.Equal(t, 1, storedSessions)
}
