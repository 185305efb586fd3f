package classify

import (
	"math"
	"strings"

	"github.com/formsight/backend/internal/pose"
)

// MatchThreshold is the minimum winning similarity for an exercise to be
// reported. A best match at or below it is classified as ExerciseUnknown.
const MatchThreshold = 0.3

// accuracyFeedbackCutoff is the form accuracy below which the general
// "focus on form" message is prepended to the feedback.
const accuracyFeedbackCutoff = 70.0

// ActivatedMuscles returns the muscle groups activated by the given joint
// angles. Each rule requires both of its joints to be present; the result
// is in fixed rule order, so it is stable for equal input.
func ActivatedMuscles(angles map[string]float64) []string {
	var activated []string

	leftElbow, leftElbowOK := angles[pose.JointLeftElbow]
	rightElbow, rightElbowOK := angles[pose.JointRightElbow]
	if leftElbowOK && rightElbowOK {
		// flexion
		if leftElbow < 90 || rightElbow < 90 {
			activated = append(activated, MuscleBiceps)
		}
		// extension
		if leftElbow > 120 || rightElbow > 120 {
			activated = append(activated, MuscleTriceps)
		}
	}

	leftShoulder, leftShoulderOK := angles[pose.JointLeftShoulder]
	rightShoulder, rightShoulderOK := angles[pose.JointRightShoulder]
	if leftShoulderOK && rightShoulderOK {
		if leftShoulder > 90 || rightShoulder > 90 {
			activated = append(activated, MuscleShoulders)
		}
	}

	leftKnee, leftKneeOK := angles[pose.JointLeftKnee]
	rightKnee, rightKneeOK := angles[pose.JointRightKnee]
	if leftKneeOK && rightKneeOK {
		if leftKnee < 120 || rightKnee < 120 {
			activated = append(activated, MuscleQuads, MuscleHamstrings)
		}
	}

	return activated
}

// IdentifyExercise finds the pattern best matching the given angles.
// Similarity is compared strictly, so on a tie the first registered
// pattern keeps the win. Returns ExerciseUnknown when the best similarity
// does not exceed MatchThreshold.
func IdentifyExercise(angles map[string]float64) string {
	bestMatch := ExerciseUnknown
	bestScore := 0.0

	for _, p := range patterns {
		score := p.similarity(angles)
		if score > bestScore {
			bestScore = score
			bestMatch = p.Name
		}
	}

	if bestScore > MatchThreshold {
		return bestMatch
	}
	return ExerciseUnknown
}

// similarity is the fraction of the pattern joints, among those present in
// angles, whose angle falls within the accepted range. Joints missing from
// angles are excluded from the calculation entirely. No joints present
// yields 0.
func (p Pattern) similarity(angles map[string]float64) float64 {
	inRange, evaluated := 0, 0
	for joint, angleRange := range p.AngleRanges {
		angle, ok := angles[joint]
		if !ok {
			continue
		}
		evaluated++
		if angle >= angleRange.Min && angle <= angleRange.Max {
			inRange++
		}
	}

	if evaluated == 0 {
		return 0
	}
	return float64(inRange) / float64(evaluated)
}

// FormAccuracy scores the given angles against the pattern of the
// identified exercise, 0 to 100. An in-range joint is worth the full 100,
// an out-of-range joint loses two points per degree of deviation, capped
// at 50. ExerciseUnknown always scores 0.
func FormAccuracy(exercise string, angles map[string]float64) float64 {
	if exercise == ExerciseUnknown {
		return 0
	}
	pattern, ok := patternFor(exercise)
	if !ok {
		return 0
	}

	sum, evaluated := 0.0, 0
	for joint, angleRange := range pattern.AngleRanges {
		angle, ok := angles[joint]
		if !ok {
			continue
		}
		evaluated++

		if angle >= angleRange.Min && angle <= angleRange.Max {
			sum += 100
			continue
		}

		var deviation float64
		if angle < angleRange.Min {
			deviation = angleRange.Min - angle
		} else {
			deviation = angle - angleRange.Max
		}
		penalty := math.Min(deviation*2, 50)
		sum += math.Max(100-penalty, 0)
	}

	if evaluated == 0 {
		return 0
	}
	return sum / float64(evaluated)
}

// Feedback composes the coaching message for the classified exercise.
// Messages are joined in evaluation order: the general form hint first,
// then exercise specific corrections, left joint before right.
func Feedback(exercise string, angles map[string]float64, accuracy float64) string {
	if exercise == ExerciseUnknown {
		return "Please position yourself clearly in the camera view."
	}

	var messages []string

	if accuracy < accuracyFeedbackCutoff {
		messages = append(messages, "Focus on maintaining proper form.")
	}

	switch exercise {
	case ExerciseBicepCurl:
		if angle, ok := angles[pose.JointLeftElbow]; ok && angle > 160 {
			messages = append(messages, "Keep your elbows close to your body.")
		}
		if angle, ok := angles[pose.JointRightElbow]; ok && angle > 160 {
			messages = append(messages, "Maintain controlled movement throughout.")
		}
	case ExerciseSquat:
		if angle, ok := angles[pose.JointLeftKnee]; ok && angle > 150 {
			messages = append(messages, "Go deeper into the squat position.")
		}
		if angle, ok := angles[pose.JointRightKnee]; ok && angle > 150 {
			messages = append(messages, "Keep your knees aligned with your toes.")
		}
	case ExercisePushUp:
		if angle, ok := angles[pose.JointLeftElbow]; ok && angle > 150 {
			messages = append(messages, "Lower your body closer to the ground.")
		}
		if angle, ok := angles[pose.JointRightElbow]; ok && angle > 150 {
			messages = append(messages, "Maintain a straight body line.")
		}
	}

	if len(messages) == 0 {
		messages = append(messages, "Great form! Keep it up!")
	}

	return strings.Join(messages, " ")
}
