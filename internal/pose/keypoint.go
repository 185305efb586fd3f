package pose

// MediaPipe Pose landmark indices. The estimator service emits all 33
// landmarks per detected pose, in this fixed order.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose          = 0
	LeftShoulder  = 11
	RightShoulder = 12
	LeftElbow     = 13
	RightElbow    = 14
	LeftWrist     = 15
	RightWrist    = 16
	LeftHip       = 23
	RightHip      = 24
	LeftKnee      = 25
	RightKnee     = 26
	LeftAnkle     = 27
	RightAnkle    = 28

	NumLandmarks = 33
)

// Keypoint is a single pose landmark in frame coordinates. X and Y are
// pixel coordinates, Z is relative depth, Visibility is in [0, 1].
type Keypoint struct {
	ID         int     `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Keypoints is a full set of landmarks for one frame, indexed by landmark ID.
type Keypoints []Keypoint
