package operations

const (
	ErrCourseNotFound     = "course_not_found"
	ErrEnrollmentNotFound = "enrollment_not_found"
	ErrAlreadyEnrolled    = "already_enrolled"
	ErrNotEnrolled        = "not_enrolled"
	ErrNoQuestions        = "no_questions"
	ErrInvalidProgress    = "invalid_progress"
	ErrNoResults          = "no_results"
	ErrServerError        = "server_error"
)

type Error struct {
	Code string
}

func (e *Error) Error() string {
	return e.Code
}
