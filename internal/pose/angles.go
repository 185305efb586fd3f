package pose

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Canonical joint names, used as keys in angle maps and exercise patterns.
const (
	JointLeftShoulder  = "left_shoulder"
	JointRightShoulder = "right_shoulder"
	JointLeftElbow     = "left_elbow"
	JointRightElbow    = "right_elbow"
	JointLeftHip       = "left_hip"
	JointRightHip      = "right_hip"
	JointLeftKnee      = "left_knee"
	JointRightKnee     = "right_knee"
)

// jointTriple defines the three landmarks forming a joint angle, measured
// at Vertex.
type jointTriple struct {
	First  int
	Vertex int
	Third  int
}

// jointTriples maps each canonical joint to its defining landmark triple.
// The index choices match the angle model the exercise patterns were tuned
// against, so changing them silently breaks classification.
var jointTriples = map[string]jointTriple{
	JointLeftShoulder:  {LeftShoulder, RightShoulder, RightElbow},
	JointRightShoulder: {RightShoulder, LeftShoulder, LeftElbow},
	JointLeftElbow:     {LeftShoulder, LeftElbow, LeftWrist},
	JointRightElbow:    {RightShoulder, RightElbow, RightWrist},
	JointLeftHip:       {LeftHip, LeftShoulder, LeftKnee},
	JointRightHip:      {RightHip, RightShoulder, RightKnee},
	JointLeftKnee:      {LeftHip, LeftKnee, LeftAnkle},
	JointRightKnee:     {RightHip, RightKnee, RightAnkle},
}

// Angle returns the angle at vertex b, between rays b->a and b->c, in
// degrees [0, 180]. Only the x and y coordinates are used. Degenerate
// input (a or c coinciding with b) yields 0.
func Angle(a, b, c Keypoint) float64 {
	ba := mat.NewVecDense(2, []float64{a.X - b.X, a.Y - b.Y})
	bc := mat.NewVecDense(2, []float64{c.X - b.X, c.Y - b.Y})

	normBA := mat.Norm(ba, 2)
	normBC := mat.Norm(bc, 2)
	if normBA == 0 || normBC == 0 {
		return 0
	}

	cosine := mat.Dot(ba, bc) / (normBA * normBC)
	// floating point noise can push the cosine slightly out of [-1, 1]
	cosine = math.Max(-1, math.Min(1, cosine))

	return math.Acos(cosine) * 180 / math.Pi
}

// JointAngles calculates the angles of all canonical joints from the given
// keypoint set. An incomplete set (fewer than NumLandmarks keypoints) yields
// an empty map. The returned map holds only joints whose landmark triples
// are within bounds.
func JointAngles(keypoints Keypoints) map[string]float64 {
	angles := make(map[string]float64)
	if len(keypoints) < NumLandmarks {
		return angles
	}

	for joint, triple := range jointTriples {
		if triple.First >= len(keypoints) ||
			triple.Vertex >= len(keypoints) ||
			triple.Third >= len(keypoints) {
			continue
		}
		angles[joint] = Angle(
			keypoints[triple.First],
			keypoints[triple.Vertex],
			keypoints[triple.Third],
		)
	}

	return angles
}
