package operations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/snaveenk972/learning-platform/internal/model"
	"github.com/snaveenk972/learning-platform/internal/repository"
)

type EnrollmentItemError struct {
	CourseID string
	Code     string
}

type EnrollmentSummary struct {
	Enrolled []model.Enrollment
	Errors   []EnrollmentItemError
}

// EnrollInCourses processes each course independently; one failure never
// aborts the batch. The database unique constraint on (user_id, course_id) is
// the authority for duplicates: a 23505 from a concurrent insert reports as
// already_enrolled, not a fatal error.
func EnrollInCourses(ctx context.Context, store *repository.Store, userID string, courseIDs []string) EnrollmentSummary {
	summary := EnrollmentSummary{
		Enrolled: []model.Enrollment{},
		Errors:   []EnrollmentItemError{},
	}

	for _, courseID := range courseIDs {
		enrollment, err := enrollInCourse(ctx, store, userID, courseID)
		if err != nil {
			code := ErrServerError
			var opErr *Error
			if errors.As(err, &opErr) {
				code = opErr.Code
			}
			summary.Errors = append(summary.Errors, EnrollmentItemError{CourseID: courseID, Code: code})
			continue
		}
		summary.Enrolled = append(summary.Enrolled, enrollment)
	}

	return summary
}

func enrollInCourse(ctx context.Context, store *repository.Store, userID, courseID string) (model.Enrollment, error) {
	course, err := store.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Enrollment{}, &Error{Code: ErrCourseNotFound}
		}
		return model.Enrollment{}, err
	}
	if !course.IsActive {
		return model.Enrollment{}, &Error{Code: ErrCourseNotFound}
	}

	now := time.Now().UTC()
	enrollment := model.Enrollment{
		ID:         uuid.NewString(),
		UserID:     userID,
		CourseID:   courseID,
		Status:     model.EnrollmentStatusLearning,
		Progress:   0,
		EnrolledAt: now,
		UpdatedAt:  now,
	}

	if err := store.CreateEnrollment(ctx, enrollment); err != nil {
		if isUniqueViolation(err) {
			return model.Enrollment{}, &Error{Code: ErrAlreadyEnrolled}
		}
		return model.Enrollment{}, err
	}
	return enrollment, nil
}

// UpdateProgress validates the percentage and applies it. Reaching 100 chains
// into completion. A COMPLETED enrollment is terminal; progress updates on it
// succeed without changing anything.
func UpdateProgress(ctx context.Context, store *repository.Store, userID, courseID string, progress float64) (model.Enrollment, error) {
	if progress < 0 || progress > 100 {
		return model.Enrollment{}, &Error{Code: ErrInvalidProgress}
	}

	enrollment, err := store.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Enrollment{}, &Error{Code: ErrEnrollmentNotFound}
		}
		return model.Enrollment{}, err
	}

	if enrollment.Status == model.EnrollmentStatusCompleted {
		return enrollment, nil
	}

	now := time.Now().UTC()
	if progress >= 100 {
		return store.CompleteEnrollment(ctx, enrollment.ID, now)
	}
	return store.UpdateEnrollmentProgress(ctx, enrollment.ID, progress, now)
}

// CompleteCourse marks the enrollment COMPLETED. Calling it on an already
// completed enrollment succeeds and leaves completed_at untouched.
func CompleteCourse(ctx context.Context, store *repository.Store, userID, courseID string) (model.Enrollment, error) {
	enrollment, err := store.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Enrollment{}, &Error{Code: ErrEnrollmentNotFound}
		}
		return model.Enrollment{}, err
	}

	return store.CompleteEnrollment(ctx, enrollment.ID, time.Now().UTC())
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
