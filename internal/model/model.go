package model

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	PhoneNumber  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Course struct {
	ID              string
	Title           string
	Description     string
	DurationHours   int
	DifficultyLevel string
	Category        string
	InstructorName  string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Question struct {
	ID            string
	CourseID      string
	QuestionText  string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectAnswer string
	Explanation   *string
	Points        int
	IsActive      bool
	CreatedAt     time.Time
}

const (
	EnrollmentStatusLearning  = "LEARNING"
	EnrollmentStatusCompleted = "COMPLETED"
)

type Enrollment struct {
	ID          string
	UserID      string
	CourseID    string
	Status      string
	Progress    float64
	EnrolledAt  time.Time
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

type TestResult struct {
	ID              string
	UserID          string
	CourseID        string
	Score           float64
	TotalQuestions  int
	CorrectAnswers  int
	DurationMinutes int
	Passed          bool
	TakenAt         time.Time
}
