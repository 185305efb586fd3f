package detection

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/formsight/backend/internal/pose"
	"github.com/formsight/backend/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// the estimator sidecar exposes a single endpoint:
// POST {estimator-url}/v1/pose/landmarks  =>  {"detected": bool, "keypoints": [... 33 landmarks ...]}

const (
	megabyte                  = 1024 * 1024
	defaultCacheSize          = 10 * megabyte
	defaultCacheExpireSeconds = 30
)

// PoseDetection is the estimator verdict for a single frame. Keypoints are
// set only when Detected is true.
type PoseDetection struct {
	Detected  bool           `json:"detected"`
	Keypoints pose.Keypoints `json:"keypoints,omitempty"`
}

// Estimator is a client for the pose estimation sidecar. Frames are treated
// as opaque bytes and forwarded as-is, decoding them is the sidecar's job.
// Detections get memoized for a short while, clients tend to re-send
// identical frames in bursts.
type Estimator struct {
	estimatorUrl       string
	apiKey             string
	minConfidence      float64
	cache              *freecache.Cache
	cacheExpireSeconds int
	httpClient         *http.Client
}

func NewEstimator(
	estimatorUrl string,
	apiKey string,
	minConfidence float64,
	cacheSizeBytes int,
	cacheExpireSeconds int,
	httpClient *http.Client,
) *Estimator {
	if cacheSizeBytes <= 0 {
		cacheSizeBytes = defaultCacheSize
	}
	if cacheExpireSeconds <= 0 {
		cacheExpireSeconds = defaultCacheExpireSeconds
	}
	return &Estimator{
		estimatorUrl:       estimatorUrl,
		apiKey:             apiKey,
		minConfidence:      minConfidence,
		cache:              freecache.NewCache(cacheSizeBytes),
		cacheExpireSeconds: cacheExpireSeconds,
		httpClient:         httpClient,
	}
}

func (e *Estimator) DetectPose(ctx context.Context, frame []byte) (detection *PoseDetection, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "estimator.detectPose")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, fmt.Sprintf("pose detected: %t", detection.Detected))
		}
	}()

	// must initialize it, otherwise json.Unmarshal(...) below fails
	detection = &PoseDetection{}

	frameHash := sha256.Sum256(frame)
	cacheKey := frameHash[:]
	if detectionBytes, err := e.cache.Get(cacheKey); err == nil {
		log.Tracef("found pose detection for frame %x in cache", frameHash[:6])
		if err = json.Unmarshal(detectionBytes, detection); err == nil {
			span.SetAttributes(attribute.Bool("pose.detected", detection.Detected))
			return detection, nil
		} else {
			log.Errorf("failed to unmarshal cached pose detection for frame %x: %s", frameHash[:6], err)
		}
	} else {
		log.Debugf("pose detection for frame %x not cached: %s; will call the estimator", frameHash[:6], err)
	}

	landmarksUrl := fmt.Sprintf("%s/v1/pose/landmarks?min_confidence=%.2f", e.estimatorUrl, e.minConfidence)
	req, err := http.NewRequestWithContext(ctx, "POST", landmarksUrl, bytes.NewReader(frame))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if e.apiKey != "" {
		req.Header.Set("X-Api-Key", e.apiKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read estimator response bytes: %w", err)
	}

	// a non-200 body would unmarshal to "not detected", check it explicitly
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected estimator response status: %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBytes, detection); err != nil {
		return nil, fmt.Errorf("failed to unmarshal estimator response bytes: %w", err)
	}

	span.SetAttributes(attribute.Bool("pose.detected", detection.Detected))

	// set cache
	if err = e.cache.Set(cacheKey, respBytes, e.cacheExpireSeconds); err != nil {
		log.Errorf("failed to write pose detection cache for frame %x: %s", frameHash[:6], err)
	}

	return detection, nil
}
