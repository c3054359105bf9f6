// Package seed loads a small demo data set so a fresh deployment has
// something to browse. It is gated behind SEED_DEMO_DATA and skips itself
// when courses already exist.
package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/snaveenk972/learning-platform/internal/crypto"
	"github.com/snaveenk972/learning-platform/internal/model"
	"github.com/snaveenk972/learning-platform/internal/repository"
)

type demoCourse struct {
	title           string
	description     string
	durationHours   int
	difficultyLevel string
	category        string
	instructorName  string
	questions       []demoQuestion
}

type demoQuestion struct {
	text    string
	a, b    string
	c, d    string
	correct string
}

var demoCourses = []demoCourse{
	{
		title:           "Introduction to Go",
		description:     "Syntax, tooling, and the standard library for newcomers.",
		durationHours:   12,
		difficultyLevel: "BEGINNER",
		category:        "Programming",
		instructorName:  "Maya Chen",
		questions: []demoQuestion{
			{"Which keyword declares a new variable with inferred type?", "var", "let", ":=", "def", "C"},
			{"What does a goroutine run on?", "An OS thread pool managed by the runtime", "A dedicated OS thread", "A browser worker", "A virtual machine", "A"},
			{"Which builtin grows a slice?", "push", "extend", "append", "insert", "C"},
			{"What is the zero value of a pointer?", "0", "nil", "undefined", "empty struct", "B"},
			{"Which statement starts a goroutine?", "go f()", "async f()", "spawn f()", "thread f()", "A"},
		},
	},
	{
		title:           "Relational Databases",
		description:     "Schema design, indexing, and transactions with PostgreSQL.",
		durationHours:   20,
		difficultyLevel: "INTERMEDIATE",
		category:        "Databases",
		instructorName:  "Jonas Weiss",
		questions: []demoQuestion{
			{"Which isolation level prevents dirty reads at minimum cost?", "Read uncommitted", "Read committed", "Repeatable read", "Serializable", "B"},
			{"What enforces uniqueness on a column pair?", "A composite unique constraint", "A trigger", "A view", "A sequence", "A"},
			{"Which join keeps unmatched left rows?", "INNER", "CROSS", "LEFT OUTER", "FULL", "C"},
			{"What does VACUUM reclaim?", "Disk space from dead tuples", "Connection slots", "WAL segments", "Index names", "A"},
			{"Which index type suits equality on a UUID column?", "GIN", "BRIN", "B-tree", "GiST", "C"},
		},
	},
	{
		title:           "HTTP APIs in Practice",
		description:     "Designing, securing, and operating JSON APIs.",
		durationHours:   16,
		difficultyLevel: "INTERMEDIATE",
		category:        "Web",
		instructorName:  "Priya Raman",
		questions: []demoQuestion{
			{"Which status code signals a missing resource?", "400", "401", "404", "500", "C"},
			{"Where does a bearer token travel?", "Authorization header", "Cookie", "Query string", "Request body", "A"},
			{"Which verb should be idempotent?", "POST", "PUT", "PATCH", "CONNECT", "B"},
			{"What does 409 Conflict usually mean?", "Auth failed", "Resource state clash", "Rate limited", "Bad gateway", "B"},
		},
	},
}

// Run inserts the demo users, courses, and questions. It is a no-op when the
// course catalog is non-empty.
func Run(ctx context.Context, store *repository.Store) error {
	existing, err := store.ListActiveCourses(ctx)
	if err != nil {
		return fmt.Errorf("check existing courses: %w", err)
	}
	if len(existing) > 0 {
		log.Printf("seed: %d courses already present, skipping", len(existing))
		return nil
	}

	now := time.Now().UTC()

	hash, err := crypto.HashPassword("demo1234")
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	demoUser := model.User{
		ID:           uuid.NewString(),
		Username:     "demo",
		Email:        "demo@example.com",
		PasswordHash: hash,
		FirstName:    "Demo",
		LastName:     "User",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.CreateUser(ctx, demoUser); err != nil {
		return fmt.Errorf("create demo user: %w", err)
	}

	for _, dc := range demoCourses {
		course := model.Course{
			ID:              uuid.NewString(),
			Title:           dc.title,
			Description:     dc.description,
			DurationHours:   dc.durationHours,
			DifficultyLevel: dc.difficultyLevel,
			Category:        dc.category,
			InstructorName:  dc.instructorName,
			IsActive:        true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := store.CreateCourse(ctx, course); err != nil {
			return fmt.Errorf("create course %q: %w", dc.title, err)
		}

		for i, dq := range dc.questions {
			question := model.Question{
				ID:            uuid.NewString(),
				CourseID:      course.ID,
				QuestionText:  dq.text,
				OptionA:       dq.a,
				OptionB:       dq.b,
				OptionC:       dq.c,
				OptionD:       dq.d,
				CorrectAnswer: dq.correct,
				Points:        1,
				IsActive:      true,
				CreatedAt:     now,
			}
			if err := store.CreateQuestion(ctx, question); err != nil {
				return fmt.Errorf("create question %d for %q: %w", i+1, dc.title, err)
			}
		}
	}

	log.Printf("seed: loaded %d demo courses", len(demoCourses))
	return nil
}
