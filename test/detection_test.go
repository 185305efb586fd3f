package test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/formsight/backend/internal/classify"
	"github.com/formsight/backend/internal/detection"
	"github.com/formsight/backend/internal/pose"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullKeypoints returns the landmarks of a person standing upright with
// the arms extended, a pose the classifier reads as a finished press.
func fullKeypoints() pose.Keypoints {
	keypoints := make(pose.Keypoints, pose.NumLandmarks)
	for i := range keypoints {
		keypoints[i] = pose.Keypoint{ID: i, Visibility: 0.95}
	}

	set := func(id int, x, y float64) {
		keypoints[id].X = x
		keypoints[id].Y = y
	}
	set(pose.LeftShoulder, 100, 100)
	set(pose.RightShoulder, 200, 100)
	set(pose.LeftElbow, 100, 200)
	set(pose.RightElbow, 200, 200)
	set(pose.LeftWrist, 100, 300)
	set(pose.RightWrist, 200, 300)
	set(pose.LeftHip, 100, 300)
	set(pose.RightHip, 200, 300)
	set(pose.LeftKnee, 100, 400)
	set(pose.RightKnee, 200, 400)
	set(pose.LeftAnkle, 100, 500)
	set(pose.RightAnkle, 200, 500)

	return keypoints
}

// testFrame returns unique fake frame bytes, so the estimator frame
// cache never serves a detection from a previous test.
func testFrame() []byte {
	return []byte("fake-jpeg-frame-" + gofakeit.UUID())
}

func (s *IntegrationTestSuite) analyzeFrameRequest(ctx context.Context, frame []byte) *http.Response {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition", `form-data; name="file"; filename="frame.jpg"`)
	partHeader.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(partHeader)
	require.NoError(s.T(), err)
	_, err = part.Write(frame)
	require.NoError(s.T(), err)
	require.NoError(s.T(), writer.Close())

	req, err := http.NewRequestWithContext(
		ctx,
		"POST", fmt.Sprintf("%s/api/detect/analyze/frame", serverEndpoint),
		&body,
	)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	return resp
}

func (s *IntegrationTestSuite) TestAnalyzeFrame() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.estimator.setDetection(detection.PoseDetection{
		Detected:  true,
		Keypoints: fullKeypoints(),
	})

	resp := s.analyzeFrameRequest(ctx, testFrame())
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var analyzeResp detection.AnalyzeResponse
	require.NoError(t, json.Unmarshal(respBytes, &analyzeResp))

	assert.True(t, analyzeResp.Success)
	assert.Empty(t, analyzeResp.Message)
	assert.Equal(t, classify.ExerciseShoulderPress, analyzeResp.Exercise)
	assert.Equal(t, classify.MuscleTriceps, analyzeResp.Muscle)
	assert.InDelta(t, 100, analyzeResp.FormAccuracy, 1e-9)
	assert.Equal(t, "Great form! Keep it up!", analyzeResp.Feedback)
	assert.Len(t, analyzeResp.Angles, 8)
	assert.WithinDuration(t, time.Now(), analyzeResp.Timestamp, time.Minute)
}

func (s *IntegrationTestSuite) TestAnalyzeFrame_NoPose() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.estimator.setDetection(detection.PoseDetection{
		Detected: false,
	})

	resp := s.analyzeFrameRequest(ctx, testFrame())
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var analyzeResp detection.AnalyzeResponse
	require.NoError(t, json.Unmarshal(respBytes, &analyzeResp))
	assert.False(t, analyzeResp.Success)
	assert.Equal(t, "No pose detected. Please ensure you are clearly visible in the camera.", analyzeResp.Message)
}

func (s *IntegrationTestSuite) TestAnalyzeKeypoints() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	analyzeReqJson, err := json.Marshal(struct {
		Keypoints pose.Keypoints `json:"keypoints"`
	}{
		Keypoints: fullKeypoints(),
	})
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(
		ctx,
		"POST", fmt.Sprintf("%s/api/detect/analyze", serverEndpoint),
		bytes.NewBuffer(analyzeReqJson),
	)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var analyzeResp detection.AnalyzeResponse
	require.NoError(t, json.Unmarshal(respBytes, &analyzeResp))
	assert.True(t, analyzeResp.Success)
	assert.Equal(t, classify.ExerciseShoulderPress, analyzeResp.Exercise)
	assert.InDelta(t, 100, analyzeResp.FormAccuracy, 1e-9)
}

func (s *IntegrationTestSuite) TestAnalyzeBase64() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.estimator.setDetection(detection.PoseDetection{
		Detected:  true,
		Keypoints: fullKeypoints(),
	})

	frameBase64 := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(testFrame())
	analyzeReqJson, err := json.Marshal(struct {
		Image string `json:"image"`
	}{
		Image: frameBase64,
	})
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(
		ctx,
		"POST", fmt.Sprintf("%s/api/detect/analyze/base64", serverEndpoint),
		bytes.NewBuffer(analyzeReqJson),
	)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var analyzeResp detection.AnalyzeResponse
	require.NoError(t, json.Unmarshal(respBytes, &analyzeResp))
	assert.True(t, analyzeResp.Success)
	assert.Equal(t, classify.ExerciseShoulderPress, analyzeResp.Exercise)
}

func (s *IntegrationTestSuite) TestAnalyzeRateLimiting() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	analyzeReqJson, err := json.Marshal(struct {
		Keypoints pose.Keypoints `json:"keypoints"`
	}{
		Keypoints: fullKeypoints(),
	})
	require.NoError(t, err)

	// config allows 20 analyze requests per minute
	require.NoError(t, s.redisDataCleanup(ctx))

	for i := 1; i <= 25; i++ {
		req, err := http.NewRequestWithContext(
			ctx,
			"POST", fmt.Sprintf("%s/api/detect/analyze", serverEndpoint),
			bytes.NewBuffer(analyzeReqJson),
		)
		require.NoError(t, err)
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)

		respBytes, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		if i <= 20 {
			require.Equal(t, http.StatusOK, resp.StatusCode, "iteration: %d", i)
		} else {
			require.Equal(t, http.StatusTooEarly, resp.StatusCode, "iteration: %d", i)
			assert.Contains(t, string(respBytes), "retry after", "iteration: %d", i)
		}

		assert.NoError(t, resp.Body.Close())
	}

	require.NoError(t, s.redisDataCleanup(ctx))
}

func (s *IntegrationTestSuite) TestPatterns() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(
		ctx,
		"GET", fmt.Sprintf("%s/api/detect/patterns", serverEndpoint),
		nil,
	)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var patternsResp detection.PatternsResponse
	require.NoError(t, json.Unmarshal(respBytes, &patternsResp))
	require.Len(t, patternsResp.Patterns, 5)
	assert.Equal(t, classify.ExerciseBicepCurl, patternsResp.Patterns[0].Name)
	assert.NotEmpty(t, patternsResp.MuscleJoints[classify.MuscleQuads])
}

func (s *IntegrationTestSuite) TestDetectionHealth() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(
		ctx,
		"GET", fmt.Sprintf("%s/api/detect/health", serverEndpoint),
		nil,
	)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(respBytes), "healthy"))
	assert.True(t, strings.Contains(string(respBytes), "detection"))
}
