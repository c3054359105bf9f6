package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snaveenk972/learning-platform/internal/model"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
	db   querier
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

// WithTx runs fn against a transaction-bound store. The enrollment completion
// and test result insert must land together, so SubmitTest goes through here.
func (s *Store) WithTx(ctx context.Context, fn func(*Store) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(&Store{pool: s.pool, db: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// Users

func (s *Store) CreateUser(ctx context.Context, user model.User) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, first_name, last_name, phone_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, user.ID, user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.PhoneNumber, user.CreatedAt, user.UpdatedAt)
	return err
}

func (s *Store) GetUserByIdentifier(ctx context.Context, identifier string) (model.User, error) {
	return s.scanUser(s.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, first_name, last_name, phone_number, created_at, updated_at
		FROM users
		WHERE username = $1 OR email = LOWER($1)
	`, identifier))
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	return s.scanUser(s.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, first_name, last_name, phone_number, created_at, updated_at
		FROM users
		WHERE id = $1
	`, userID))
}

func (s *Store) scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.PhoneNumber,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (s *Store) DeleteUser(ctx context.Context, userID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Courses

const courseColumns = `id, title, description, duration_hours, difficulty_level, category, instructor_name, is_active, created_at, updated_at`

func (s *Store) CreateCourse(ctx context.Context, course model.Course) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO courses (id, title, description, duration_hours, difficulty_level, category, instructor_name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, course.ID, course.Title, course.Description, course.DurationHours, course.DifficultyLevel, course.Category, course.InstructorName, course.IsActive, course.CreatedAt, course.UpdatedAt)
	return err
}

func (s *Store) GetCourse(ctx context.Context, courseID string) (model.Course, error) {
	return s.scanCourse(s.db.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, courseID))
}

func (s *Store) ListActiveCourses(ctx context.Context) ([]model.Course, error) {
	rows, err := s.db.Query(ctx, `SELECT `+courseColumns+` FROM courses WHERE is_active = TRUE ORDER BY title`)
	if err != nil {
		return nil, err
	}
	return s.collectCourses(rows)
}

func (s *Store) SearchCourses(ctx context.Context, keyword string) ([]model.Course, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+courseColumns+`
		FROM courses
		WHERE is_active = TRUE AND (title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
		ORDER BY title
	`, keyword)
	if err != nil {
		return nil, err
	}
	return s.collectCourses(rows)
}

func (s *Store) ListCoursesByCategory(ctx context.Context, category string) ([]model.Course, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+courseColumns+`
		FROM courses
		WHERE is_active = TRUE AND LOWER(category) = LOWER($1)
		ORDER BY title
	`, category)
	if err != nil {
		return nil, err
	}
	return s.collectCourses(rows)
}

func (s *Store) ListCoursesByDifficulty(ctx context.Context, difficulty string) ([]model.Course, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+courseColumns+`
		FROM courses
		WHERE is_active = TRUE AND LOWER(difficulty_level) = LOWER($1)
		ORDER BY title
	`, difficulty)
	if err != nil {
		return nil, err
	}
	return s.collectCourses(rows)
}

func (s *Store) ListCoursesByDuration(ctx context.Context, minHours, maxHours int) ([]model.Course, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+courseColumns+`
		FROM courses
		WHERE is_active = TRUE AND duration_hours BETWEEN $1 AND $2
		ORDER BY title
	`, minHours, maxHours)
	if err != nil {
		return nil, err
	}
	return s.collectCourses(rows)
}

func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT category FROM courses WHERE is_active = TRUE ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (s *Store) ListDifficultyLevels(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT difficulty_level FROM courses WHERE is_active = TRUE ORDER BY difficulty_level`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := []string{}
	for rows.Next() {
		var level string
		if err := rows.Scan(&level); err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, rows.Err()
}

func (s *Store) scanCourse(row pgx.Row) (model.Course, error) {
	var course model.Course
	err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.DurationHours,
		&course.DifficultyLevel,
		&course.Category,
		&course.InstructorName,
		&course.IsActive,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	return course, err
}

func (s *Store) collectCourses(rows pgx.Rows) ([]model.Course, error) {
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		var course model.Course
		if err := rows.Scan(
			&course.ID,
			&course.Title,
			&course.Description,
			&course.DurationHours,
			&course.DifficultyLevel,
			&course.Category,
			&course.InstructorName,
			&course.IsActive,
			&course.CreatedAt,
			&course.UpdatedAt,
		); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

// Questions

func (s *Store) CreateQuestion(ctx context.Context, question model.Question) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO questions (id, course_id, question_text, option_a, option_b, option_c, option_d, correct_answer, explanation, points, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, question.ID, question.CourseID, question.QuestionText, question.OptionA, question.OptionB, question.OptionC, question.OptionD, question.CorrectAnswer, question.Explanation, question.Points, question.IsActive, question.CreatedAt)
	return err
}

func (s *Store) ListActiveQuestions(ctx context.Context, courseID string) ([]model.Question, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, course_id, question_text, option_a, option_b, option_c, option_d, correct_answer, explanation, points, is_active, created_at
		FROM questions
		WHERE course_id = $1 AND is_active = TRUE
		ORDER BY created_at
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		var question model.Question
		if err := rows.Scan(
			&question.ID,
			&question.CourseID,
			&question.QuestionText,
			&question.OptionA,
			&question.OptionB,
			&question.OptionC,
			&question.OptionD,
			&question.CorrectAnswer,
			&question.Explanation,
			&question.Points,
			&question.IsActive,
			&question.CreatedAt,
		); err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}

// Enrollments

const enrollmentColumns = `id, user_id, course_id, status, progress, enrolled_at, completed_at, updated_at`

func (s *Store) CreateEnrollment(ctx context.Context, enrollment model.Enrollment) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO enrollments (id, user_id, course_id, status, progress, enrolled_at, completed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, enrollment.ID, enrollment.UserID, enrollment.CourseID, enrollment.Status, enrollment.Progress, enrollment.EnrolledAt, enrollment.CompletedAt, enrollment.UpdatedAt)
	return err
}

func (s *Store) GetEnrollment(ctx context.Context, userID, courseID string) (model.Enrollment, error) {
	return s.scanEnrollment(s.db.QueryRow(ctx, `
		SELECT `+enrollmentColumns+`
		FROM enrollments
		WHERE user_id = $1 AND course_id = $2
	`, userID, courseID))
}

func (s *Store) ListEnrollments(ctx context.Context, userID string) ([]model.Enrollment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+enrollmentColumns+`
		FROM enrollments
		WHERE user_id = $1
		ORDER BY enrolled_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return s.collectEnrollments(rows)
}

func (s *Store) ListEnrollmentsByStatus(ctx context.Context, userID, status string) ([]model.Enrollment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+enrollmentColumns+`
		FROM enrollments
		WHERE user_id = $1 AND status = $2
		ORDER BY enrolled_at DESC
	`, userID, status)
	if err != nil {
		return nil, err
	}
	return s.collectEnrollments(rows)
}

func (s *Store) UpdateEnrollmentProgress(ctx context.Context, enrollmentID string, progress float64, updatedAt time.Time) (model.Enrollment, error) {
	return s.scanEnrollment(s.db.QueryRow(ctx, `
		UPDATE enrollments
		SET progress = $1, updated_at = $2
		WHERE id = $3
		RETURNING `+enrollmentColumns+`
	`, progress, updatedAt, enrollmentID))
}

// CompleteEnrollment is idempotent. COALESCE keeps the first completed_at when
// two submissions race; progress and status converge to the same values.
func (s *Store) CompleteEnrollment(ctx context.Context, enrollmentID string, completedAt time.Time) (model.Enrollment, error) {
	return s.scanEnrollment(s.db.QueryRow(ctx, `
		UPDATE enrollments
		SET status = $1, progress = 100, completed_at = COALESCE(completed_at, $2), updated_at = $2
		WHERE id = $3
		RETURNING `+enrollmentColumns+`
	`, model.EnrollmentStatusCompleted, completedAt, enrollmentID))
}

func (s *Store) scanEnrollment(row pgx.Row) (model.Enrollment, error) {
	var enrollment model.Enrollment
	err := row.Scan(
		&enrollment.ID,
		&enrollment.UserID,
		&enrollment.CourseID,
		&enrollment.Status,
		&enrollment.Progress,
		&enrollment.EnrolledAt,
		&enrollment.CompletedAt,
		&enrollment.UpdatedAt,
	)
	return enrollment, err
}

func (s *Store) collectEnrollments(rows pgx.Rows) ([]model.Enrollment, error) {
	defer rows.Close()

	enrollments := []model.Enrollment{}
	for rows.Next() {
		var enrollment model.Enrollment
		if err := rows.Scan(
			&enrollment.ID,
			&enrollment.UserID,
			&enrollment.CourseID,
			&enrollment.Status,
			&enrollment.Progress,
			&enrollment.EnrolledAt,
			&enrollment.CompletedAt,
			&enrollment.UpdatedAt,
		); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, rows.Err()
}

type EnrollmentStats struct {
	TotalEnrollments int64
	CompletedCourses int64
	LearningCourses  int64
	AverageProgress  float64
}

func (s *Store) GetEnrollmentStats(ctx context.Context, userID string) (EnrollmentStats, error) {
	var stats EnrollmentStats
	err := s.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'COMPLETED'),
			COUNT(*) FILTER (WHERE status = 'LEARNING'),
			COALESCE(AVG(progress), 0)
		FROM enrollments
		WHERE user_id = $1
	`, userID).Scan(&stats.TotalEnrollments, &stats.CompletedCourses, &stats.LearningCourses, &stats.AverageProgress)
	return stats, err
}

// Test results

const testResultColumns = `id, user_id, course_id, score, total_questions, correct_answers, duration_minutes, passed, taken_at`

func (s *Store) CreateTestResult(ctx context.Context, result model.TestResult) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO test_results (id, user_id, course_id, score, total_questions, correct_answers, duration_minutes, passed, taken_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, result.ID, result.UserID, result.CourseID, result.Score, result.TotalQuestions, result.CorrectAnswers, result.DurationMinutes, result.Passed, result.TakenAt)
	return err
}

func (s *Store) ListTestResults(ctx context.Context, userID string) ([]model.TestResult, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+testResultColumns+`
		FROM test_results
		WHERE user_id = $1
		ORDER BY taken_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return s.collectTestResults(rows)
}

func (s *Store) ListTestResultsByCourse(ctx context.Context, userID, courseID string) ([]model.TestResult, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+testResultColumns+`
		FROM test_results
		WHERE user_id = $1 AND course_id = $2
		ORDER BY taken_at DESC
	`, userID, courseID)
	if err != nil {
		return nil, err
	}
	return s.collectTestResults(rows)
}

func (s *Store) GetLatestTestResult(ctx context.Context, userID, courseID string) (model.TestResult, error) {
	return s.scanTestResult(s.db.QueryRow(ctx, `
		SELECT `+testResultColumns+`
		FROM test_results
		WHERE user_id = $1 AND course_id = $2
		ORDER BY taken_at DESC
		LIMIT 1
	`, userID, courseID))
}

func (s *Store) ListPassedTestResults(ctx context.Context, userID string) ([]model.TestResult, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+testResultColumns+`
		FROM test_results
		WHERE user_id = $1 AND passed = TRUE
		ORDER BY taken_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return s.collectTestResults(rows)
}

func (s *Store) GetHighestScore(ctx context.Context, userID, courseID string) (float64, bool, error) {
	var score *float64
	err := s.db.QueryRow(ctx, `
		SELECT MAX(score)
		FROM test_results
		WHERE user_id = $1 AND course_id = $2
	`, userID, courseID).Scan(&score)
	if err != nil {
		return 0, false, err
	}
	if score == nil {
		return 0, false, nil
	}
	return *score, true, nil
}

type TestStats struct {
	TotalTests   int64
	PassedTests  int64
	PassRate     float64
	AverageScore float64
}

func (s *Store) GetTestStats(ctx context.Context, userID string) (TestStats, error) {
	var stats TestStats
	err := s.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE passed),
			COALESCE(AVG(score), 0)
		FROM test_results
		WHERE user_id = $1
	`, userID).Scan(&stats.TotalTests, &stats.PassedTests, &stats.AverageScore)
	if err != nil {
		return stats, err
	}
	if stats.TotalTests > 0 {
		stats.PassRate = float64(stats.PassedTests) * 100 / float64(stats.TotalTests)
	}
	return stats, nil
}

func (s *Store) scanTestResult(row pgx.Row) (model.TestResult, error) {
	var result model.TestResult
	err := row.Scan(
		&result.ID,
		&result.UserID,
		&result.CourseID,
		&result.Score,
		&result.TotalQuestions,
		&result.CorrectAnswers,
		&result.DurationMinutes,
		&result.Passed,
		&result.TakenAt,
	)
	return result, err
}

func (s *Store) collectTestResults(rows pgx.Rows) ([]model.TestResult, error) {
	defer rows.Close()

	results := []model.TestResult{}
	for rows.Next() {
		var result model.TestResult
		if err := rows.Scan(
			&result.ID,
			&result.UserID,
			&result.CourseID,
			&result.Score,
			&result.TotalQuestions,
			&result.CorrectAnswers,
			&result.DurationMinutes,
			&result.Passed,
			&result.TakenAt,
		); err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
