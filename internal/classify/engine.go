package classify

import (
	"context"
	"fmt"

	"github.com/formsight/backend/internal/pose"
	"github.com/formsight/backend/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Result is the outcome of one classification pass over a keypoint set.
// Success is false only on an internal fault, never for low-information
// input: an unclassifiable pose is a successful result with
// ExerciseType == ExerciseUnknown.
type Result struct {
	Success          bool               `json:"success"`
	ActivatedMuscles []string           `json:"activatedMuscles"`
	ExerciseType     string             `json:"exerciseType"`
	FormAccuracy     float64            `json:"formAccuracy"`
	Feedback         string             `json:"feedback"`
	Angles           map[string]float64 `json:"angles"`
	Error            string             `json:"error,omitempty"`
}

// Engine runs the classification pipeline: joint angles, muscle
// activation, exercise identification, form scoring, feedback. It holds
// no mutable state, a single instance is shared by all requests.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Classify runs the full pipeline over one keypoint set. It always
// returns a Result: any panic below is recovered and reported as a
// failed result with a diagnostic error message.
func (e *Engine) Classify(ctx context.Context, keypoints pose.Keypoints) (res Result) {
	_, span := tracing.GlobalTracer.Start(ctx, "classify.engine")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("classify engine: recovered from panic: %v", r)
			span.SetStatus(codes.Error, "classification-panic")
			res = Result{
				Success: false,
				Error:   fmt.Sprintf("classification error: %v", r),
			}
		}
	}()

	angles := pose.JointAngles(keypoints)

	exercise := IdentifyExercise(angles)
	accuracy := FormAccuracy(exercise, angles)

	span.SetAttributes(attribute.String("exercise", exercise))
	span.SetAttributes(attribute.Float64("accuracy", accuracy))

	return Result{
		Success:          true,
		ActivatedMuscles: ActivatedMuscles(angles),
		ExerciseType:     exercise,
		FormAccuracy:     accuracy,
		Feedback:         Feedback(exercise, angles, accuracy),
		Angles:           angles,
	}
}
