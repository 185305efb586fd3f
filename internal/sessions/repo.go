package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/formsight/backend/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrSessionNotFound = errors.New("training session not found")

// ListParams scope the listing to one user. Limit caps the page size,
// newest sessions come first.
type ListParams struct {
	UserID int
	Limit  int
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, session TrainingSession) (_ *TrainingSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO training_session
				(user_id, muscle_group, exercise_type, form_accuracy, feedback, duration_seconds, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id;`,
		session.UserID, session.MuscleGroup, session.ExerciseType,
		session.FormAccuracy, session.Feedback, session.DurationSeconds, session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, errors.New("unexpected error [no rows next]")
	}

	var id int
	if err := rows.Scan(&id); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	span.SetAttributes(attribute.Int("session.id", id))

	session.ID = id
	return &session, nil
}

// Get returns the session only if it belongs to the given user.
func (r *Repo) Get(ctx context.Context, userID, id int) (_ *TrainingSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, user_id, muscle_group, exercise_type, form_accuracy, feedback, duration_seconds, created_at
			FROM training_session
			WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	foundSessions, err := r.rows2sessions(rows)
	if err != nil {
		return nil, err
	}

	if len(foundSessions) != 1 {
		return nil, ErrSessionNotFound
	}

	return &foundSessions[0], nil
}

// List returns the newest sessions of a user, together with the total count.
func (r *Repo) List(ctx context.Context, params ListParams) (_ []TrainingSession, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", params.UserID))
	span.SetAttributes(attribute.Int("limit", params.Limit))

	if params.Limit < 1 {
		return nil, -1, errors.New("limit must be greater than 0")
	}

	total, err = r.sessionsCount(ctx, params.UserID)
	if err != nil {
		return nil, -1, err
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, user_id, muscle_group, exercise_type, form_accuracy, feedback, duration_seconds, created_at
			FROM training_session
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2;`,
		params.UserID, params.Limit,
	)
	if err != nil {
		return nil, -1, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, -1, err
	}

	foundSessions, err := r.rows2sessions(rows)
	if err != nil {
		return nil, -1, err
	}
	return foundSessions, total, nil
}

func (r *Repo) Update(ctx context.Context, session *TrainingSession) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", session.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE training_session
			SET muscle_group = $1, exercise_type = $2, form_accuracy = $3, feedback = $4, duration_seconds = $5
			WHERE id = $6 AND user_id = $7;`,
		session.MuscleGroup, session.ExerciseType, session.FormAccuracy,
		session.Feedback, session.DurationSeconds,
		session.ID, session.UserID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, userID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))
	span.SetAttributes(attribute.Int("user.id", userID))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM training_session WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *Repo) sessionsCount(ctx context.Context, userID int) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT COUNT(*) FROM training_session WHERE user_id = $1;`,
		userID,
	)
	if err != nil {
		return -1, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return -1, err
	}

	if rows.Next() {
		var count int
		if err := rows.Scan(&count); err == nil {
			return count, nil
		}
	}

	return -1, errors.New("unexpected error, failed to get sessions count")
}

func (r *Repo) rows2sessions(rows pgx.Rows) ([]TrainingSession, error) {
	var foundSessions []TrainingSession
	for rows.Next() {
		var id int
		var userID int
		var muscleGroup string
		var exerciseType string
		var formAccuracy float64
		var feedback string
		var durationSeconds *int
		var createdAt time.Time
		if err := rows.Scan(
			&id, &userID, &muscleGroup, &exerciseType,
			&formAccuracy, &feedback, &durationSeconds, &createdAt,
		); err != nil {
			return nil, err
		}

		foundSessions = append(foundSessions, TrainingSession{
			ID:              id,
			UserID:          userID,
			MuscleGroup:     muscleGroup,
			ExerciseType:    exerciseType,
			FormAccuracy:    formAccuracy,
			Feedback:        feedback,
			DurationSeconds: durationSeconds,
			CreatedAt:       createdAt,
		})
	}

	if foundSessions == nil {
		foundSessions = make([]TrainingSession, 0)
	}

	return foundSessions, nil
}
