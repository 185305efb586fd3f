package sessions

import "time"

type TrainingSession struct {
	ID              int       `json:"id"`
	UserID          int       `json:"userId"`
	MuscleGroup     string    `json:"muscleGroup"`
	ExerciseType    string    `json:"exerciseType"`
	FormAccuracy    float64   `json:"formAccuracy"`
	Feedback        string    `json:"feedback"`
	DurationSeconds *int      `json:"durationSeconds,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}
