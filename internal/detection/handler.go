package detection

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/formsight/backend/internal/classify"
	"github.com/formsight/backend/internal/middleware"
	"github.com/formsight/backend/internal/pose"
	"github.com/formsight/backend/internal/telemetry/metrics"
	"github.com/formsight/backend/internal/telemetry/tracing"
	"github.com/formsight/backend/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=detection_mocks_test.go -package=detection_test

const noPoseMessage = "No pose detected. Please ensure you are clearly visible in the camera."

type poseEstimator interface {
	DetectPose(ctx context.Context, frame []byte) (*PoseDetection, error)
}

type poseClassifier interface {
	Classify(ctx context.Context, keypoints pose.Keypoints) classify.Result
}

// AnalyzeResponse is the wire shape of a successful frame analysis. Muscle
// is the primarily activated muscle group, or "None" when nothing fires.
type AnalyzeResponse struct {
	Success      bool               `json:"success"`
	Message      string             `json:"message,omitempty"`
	Muscle       string             `json:"muscle,omitempty"`
	Exercise     string             `json:"exercise,omitempty"`
	FormAccuracy float64            `json:"formAccuracy"`
	Feedback     string             `json:"feedback,omitempty"`
	Angles       map[string]float64 `json:"angles,omitempty"`
	Timestamp    time.Time          `json:"timestamp"`
}

type PatternsResponse struct {
	Patterns     []classify.Pattern  `json:"patterns"`
	MuscleJoints map[string][]string `json:"muscleJoints"`
}

type Handler struct {
	estimator      poseEstimator
	classifier     poseClassifier
	maxUploadBytes int64
	metricsManager *metrics.Manager
}

func NewHandler(
	estimator poseEstimator,
	classifier poseClassifier,
	maxUploadBytes int64,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		estimator:      estimator,
		classifier:     classifier,
		maxUploadBytes: maxUploadBytes,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	analyzeRequestsAllowedPerMin int,
	metricsManager *metrics.Manager,
) {
	analyzeRouter := mainRouter.PathPrefix("/api/detect/analyze").Subrouter()
	analyzeRouter.HandleFunc("", handler.HandleAnalyze).Methods("POST", "OPTIONS").Name("analyze")
	analyzeRouter.HandleFunc("/frame", handler.HandleAnalyzeFrame).Methods("POST", "OPTIONS").Name("analyze-frame")
	analyzeRouter.HandleFunc("/base64", handler.HandleAnalyzeBase64).Methods("POST", "OPTIONS").Name("analyze-base64")

	// the analyze endpoints are open to anonymous visitors and fan out to
	// the estimator, keep them on a leash
	analyzeRouter.Use(middleware.RateLimit(rateLimiter, "analyze", analyzeRequestsAllowedPerMin, metricsManager))

	detectRouter := mainRouter.PathPrefix("/api/detect").Subrouter()
	detectRouter.HandleFunc("/patterns", handler.HandleListPatterns).Methods("GET", "OPTIONS").Name("patterns")
	detectRouter.HandleFunc("/health", handler.HandleHealth).Methods("GET", "OPTIONS").Name("detect-health")
}

// HandleAnalyze classifies a set of already extracted keypoints, no
// estimator round trip involved.
func (handler *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.detect.analyze")
	defer span.End()

	startedAt := time.Now()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	type analyzeRequest struct {
		Keypoints pose.Keypoints `json:"keypoints"`
	}
	var analyzeReq analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&analyzeReq); err != nil {
		log.Tracef("analyze keypoints, unmarshal json params: %s", err)
		http.Error(w, "analyze failed", http.StatusBadRequest)
		return
	}

	if len(analyzeReq.Keypoints) == 0 {
		http.Error(w, "error, keypoints empty", http.StatusBadRequest)
		return
	}

	handler.analyze(ctx, w, analyzeReq.Keypoints, startedAt)
}

// HandleAnalyzeFrame takes a multipart image upload, sends it to the
// estimator and classifies the detected pose.
func (handler *Handler) HandleAnalyzeFrame(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.detect.analyzeFrame")
	defer span.End()

	startedAt := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, handler.maxUploadBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		log.Tracef("analyze frame, get form file: %s", err)
		http.Error(w, "error, invalid frame upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if contentType := fileHeader.Header.Get("Content-Type"); !strings.HasPrefix(contentType, "image/") {
		http.Error(w, "error, file must be an image", http.StatusBadRequest)
		return
	}

	frame, err := io.ReadAll(file)
	if err != nil {
		log.Errorf("analyze frame, read uploaded file: %s", err)
		http.Error(w, "error, invalid frame upload", http.StatusBadRequest)
		return
	}
	if len(frame) == 0 {
		http.Error(w, "error, frame empty", http.StatusBadRequest)
		return
	}

	handler.detectAndAnalyze(ctx, w, frame, startedAt)
}

// HandleAnalyzeBase64 is the analyze-frame variant for browser clients
// sending canvas snapshots as base64 or data URL strings.
func (handler *Handler) HandleAnalyzeBase64(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.detect.analyzeBase64")
	defer span.End()

	startedAt := time.Now()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, handler.maxUploadBytes)

	type analyzeBase64Request struct {
		Image string `json:"image"`
	}
	var analyzeReq analyzeBase64Request
	if err := json.NewDecoder(r.Body).Decode(&analyzeReq); err != nil {
		log.Tracef("analyze base64, unmarshal json params: %s", err)
		http.Error(w, "analyze failed", http.StatusBadRequest)
		return
	}

	if analyzeReq.Image == "" {
		http.Error(w, "error, image empty", http.StatusBadRequest)
		return
	}

	// data URL frames come in as "data:image/jpeg;base64,<payload>"
	imageData := analyzeReq.Image
	if commaAt := strings.Index(imageData, ","); commaAt >= 0 {
		imageData = imageData[commaAt+1:]
	}

	frame, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		http.Error(w, "error, invalid base64 image data", http.StatusBadRequest)
		return
	}

	handler.detectAndAnalyze(ctx, w, frame, startedAt)
}

func (handler *Handler) HandleListPatterns(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.detect.patterns")
	defer span.End()

	respJson, err := json.Marshal(PatternsResponse{
		Patterns:     classify.Patterns(),
		MuscleJoints: classify.MuscleJoints,
	})
	if err != nil {
		log.Errorf("failed to marshal patterns response: %s", err)
		http.Error(w, "error, failed to list patterns", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSONResponseOK(w, fmt.Sprintf(
		`{"status": "healthy", "service": "detection", "timestamp": %q}`,
		time.Now().Format(time.RFC3339),
	))
}

func (handler *Handler) detectAndAnalyze(ctx context.Context, w http.ResponseWriter, frame []byte, startedAt time.Time) {
	detection, err := handler.estimator.DetectPose(ctx, frame)
	if err != nil {
		log.Errorf("analyze frame, detect pose: %s", err)
		http.Error(w, "error, pose detection failed", http.StatusInternalServerError)
		return
	}

	if !detection.Detected {
		handler.metricsManager.CounterFramesNoPose.Inc()
		pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"success": false, "message": %q}`, noPoseMessage))
		return
	}

	handler.analyze(ctx, w, detection.Keypoints, startedAt)
}

func (handler *Handler) analyze(ctx context.Context, w http.ResponseWriter, keypoints pose.Keypoints, startedAt time.Time) {
	res := handler.classifier.Classify(ctx, keypoints)

	handler.metricsManager.CounterFramesAnalyzed.Inc()
	handler.metricsManager.HistFrameAnalysisDuration.Observe(time.Since(startedAt).Seconds())

	if !res.Success {
		log.Errorf("frame analysis, classification failed: %s", res.Error)
		pkg.WriteJSONResponseOK(w, `{"success": false, "message": "Error in muscle classification"}`)
		return
	}

	muscle := "None"
	if len(res.ActivatedMuscles) > 0 {
		muscle = res.ActivatedMuscles[0]
	}

	respJson, err := json.Marshal(AnalyzeResponse{
		Success:      true,
		Muscle:       muscle,
		Exercise:     res.ExerciseType,
		FormAccuracy: math.Round(res.FormAccuracy*10) / 10,
		Feedback:     res.Feedback,
		Angles:       res.Angles,
		Timestamp:    time.Now(),
	})
	if err != nil {
		log.Errorf("failed to marshal analyze response: %s", err)
		http.Error(w, "error, failed to analyze frame", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}
