package operations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/snaveenk972/learning-platform/internal/model"
	"github.com/snaveenk972/learning-platform/internal/repository"
)

// PassingScore is the fixed pass/fail cutoff. It is not configurable per
// course.
const PassingScore = 70.0

// QuestionSource abstracts where the active question set comes from, so the
// cache layer and the repository are interchangeable here.
type QuestionSource interface {
	ListActiveQuestions(ctx context.Context, courseID string) ([]model.Question, error)
}

type ScoreOutcome struct {
	Score          float64
	TotalQuestions int
	CorrectAnswers int
	Passed         bool
}

// ScoreAnswers grades a submission against the question set. An absent answer
// counts as incorrect; comparison is case-insensitive. Every question weighs
// the same regardless of its points value.
func ScoreAnswers(questions []model.Question, answers map[string]string) (ScoreOutcome, error) {
	if len(questions) == 0 {
		return ScoreOutcome{}, &Error{Code: ErrNoQuestions}
	}

	correct := 0
	for _, question := range questions {
		answer, ok := answers[question.ID]
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(answer), question.CorrectAnswer) {
			correct++
		}
	}

	score := float64(correct) / float64(len(questions)) * 100
	return ScoreOutcome{
		Score:          score,
		TotalQuestions: len(questions),
		CorrectAnswers: correct,
		Passed:         score >= PassingScore,
	}, nil
}

// SubmitTest grades a submission and persists the outcome. The result row is
// written regardless of pass/fail; the enrollment transitions to COMPLETED
// only on a pass, inside the same transaction as the result insert. A failing
// attempt never touches an enrollment, completed or not.
func SubmitTest(ctx context.Context, store *repository.Store, questions QuestionSource, userID, courseID string, answers map[string]string, durationMinutes int) (model.TestResult, model.Enrollment, error) {
	course, err := store.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.TestResult{}, model.Enrollment{}, &Error{Code: ErrCourseNotFound}
		}
		return model.TestResult{}, model.Enrollment{}, err
	}
	if !course.IsActive {
		return model.TestResult{}, model.Enrollment{}, &Error{Code: ErrCourseNotFound}
	}

	enrollment, err := store.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.TestResult{}, model.Enrollment{}, &Error{Code: ErrNotEnrolled}
		}
		return model.TestResult{}, model.Enrollment{}, err
	}

	questionSet, err := questions.ListActiveQuestions(ctx, courseID)
	if err != nil {
		return model.TestResult{}, model.Enrollment{}, err
	}

	outcome, err := ScoreAnswers(questionSet, answers)
	if err != nil {
		return model.TestResult{}, model.Enrollment{}, err
	}

	now := time.Now().UTC()
	result := model.TestResult{
		ID:              uuid.NewString(),
		UserID:          userID,
		CourseID:        courseID,
		Score:           outcome.Score,
		TotalQuestions:  outcome.TotalQuestions,
		CorrectAnswers:  outcome.CorrectAnswers,
		DurationMinutes: durationMinutes,
		Passed:          outcome.Passed,
		TakenAt:         now,
	}

	if err := store.WithTx(ctx, func(tx *repository.Store) error {
		if err := tx.CreateTestResult(ctx, result); err != nil {
			return err
		}
		if result.Passed {
			completed, err := tx.CompleteEnrollment(ctx, enrollment.ID, now)
			if err != nil {
				return err
			}
			enrollment = completed
		}
		return nil
	}); err != nil {
		return model.TestResult{}, model.Enrollment{}, err
	}

	return result, enrollment, nil
}
