package classify

import "github.com/formsight/backend/internal/pose"

// Exercise names reported by the classifier.
const (
	ExerciseUnknown         = "unknown"
	ExerciseBicepCurl       = "bicep_curl"
	ExerciseTricepExtension = "tricep_extension"
	ExerciseShoulderPress   = "shoulder_press"
	ExerciseSquat           = "squat"
	ExercisePushUp          = "push_up"
)

// Muscle group names reported by the classifier.
const (
	MuscleBiceps     = "biceps"
	MuscleTriceps    = "triceps"
	MuscleShoulders  = "shoulders"
	MuscleChest      = "chest"
	MuscleBack       = "back"
	MuscleQuads      = "quads"
	MuscleHamstrings = "hamstrings"
	MuscleCalves     = "calves"
	MuscleGlutes     = "glutes"
	MuscleAbs        = "abs"
)

// AngleRange is the accepted angle interval for a joint, in degrees,
// bounds inclusive.
type AngleRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Pattern describes the angle profile of one exercise. Muscles lists the
// primarily trained muscle groups, AngleRanges the accepted interval per
// joint. Movement is a descriptive label only and plays no role in matching.
type Pattern struct {
	Name        string                `json:"name"`
	Muscles     []string              `json:"muscles"`
	AngleRanges map[string]AngleRange `json:"angleRanges"`
	Movement    string                `json:"movement"`
	Description string                `json:"description"`
}

// patterns is the exercise registry. The slice order is the tie-break
// order during identification: on equal similarity the earlier entry wins.
// The angle ranges are empirically tuned values, do not adjust them
// without re-validating classification against recorded sessions.
var patterns = []Pattern{
	{
		Name:    ExerciseBicepCurl,
		Muscles: []string{MuscleBiceps},
		AngleRanges: map[string]AngleRange{
			pose.JointLeftElbow:  {Min: 30, Max: 160},
			pose.JointRightElbow: {Min: 30, Max: 160},
		},
		Movement:    "flexion",
		Description: "Bicep curl exercise",
	},
	{
		Name:    ExerciseTricepExtension,
		Muscles: []string{MuscleTriceps},
		AngleRanges: map[string]AngleRange{
			pose.JointLeftElbow:  {Min: 30, Max: 160},
			pose.JointRightElbow: {Min: 30, Max: 160},
		},
		Movement:    "extension",
		Description: "Tricep extension exercise",
	},
	{
		Name:    ExerciseShoulderPress,
		Muscles: []string{MuscleShoulders, MuscleTriceps},
		AngleRanges: map[string]AngleRange{
			pose.JointLeftShoulder:  {Min: 45, Max: 180},
			pose.JointRightShoulder: {Min: 45, Max: 180},
			pose.JointLeftElbow:     {Min: 60, Max: 180},
			pose.JointRightElbow:    {Min: 60, Max: 180},
		},
		Movement:    "press",
		Description: "Shoulder press exercise",
	},
	{
		Name:    ExerciseSquat,
		Muscles: []string{MuscleQuads, MuscleHamstrings, MuscleGlutes},
		AngleRanges: map[string]AngleRange{
			pose.JointLeftKnee:  {Min: 60, Max: 180},
			pose.JointRightKnee: {Min: 60, Max: 180},
			pose.JointLeftHip:   {Min: 45, Max: 180},
			pose.JointRightHip:  {Min: 45, Max: 180},
		},
		Movement:    "squat",
		Description: "Squat exercise",
	},
	{
		Name:    ExercisePushUp,
		Muscles: []string{MuscleChest, MuscleTriceps, MuscleShoulders},
		AngleRanges: map[string]AngleRange{
			pose.JointLeftElbow:     {Min: 60, Max: 180},
			pose.JointRightElbow:    {Min: 60, Max: 180},
			pose.JointLeftShoulder:  {Min: 45, Max: 180},
			pose.JointRightShoulder: {Min: 45, Max: 180},
		},
		Movement:    "push",
		Description: "Push-up exercise",
	},
}

// MuscleJoints maps each muscle group to the joints whose angles drive it.
// Served with the pattern catalogue so clients can highlight the relevant
// joints per muscle.
var MuscleJoints = map[string][]string{
	MuscleBiceps:     {pose.JointLeftElbow, pose.JointRightElbow},
	MuscleTriceps:    {pose.JointLeftElbow, pose.JointRightElbow},
	MuscleShoulders:  {pose.JointLeftShoulder, pose.JointRightShoulder},
	MuscleChest:      {pose.JointLeftShoulder, pose.JointRightShoulder},
	MuscleBack:       {pose.JointLeftShoulder, pose.JointRightShoulder},
	MuscleQuads:      {pose.JointLeftKnee, pose.JointRightKnee},
	MuscleHamstrings: {pose.JointLeftKnee, pose.JointRightKnee},
	MuscleCalves:     {pose.JointLeftKnee, pose.JointRightKnee},
	MuscleAbs:        {pose.JointLeftHip, pose.JointRightHip},
}

// Patterns returns a copy of the exercise registry, in registration order.
func Patterns() []Pattern {
	out := make([]Pattern, len(patterns))
	copy(out, patterns)
	return out
}

func patternFor(exercise string) (Pattern, bool) {
	for _, p := range patterns {
		if p.Name == exercise {
			return p, true
		}
	}
	return Pattern{}, false
}
