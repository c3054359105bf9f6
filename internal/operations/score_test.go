package operations

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/snaveenk972/learning-platform/internal/model"
)

func makeQuestions(tags ...string) []model.Question {
	questions := make([]model.Question, 0, len(tags))
	for i, tag := range tags {
		questions = append(questions, model.Question{
			ID:            "q" + string(rune('0'+i)),
			CorrectAnswer: tag,
			Points:        1,
		})
	}
	return questions
}

func TestScoreAnswersAllCorrect(t *testing.T) {
	questions := makeQuestions("A", "B", "C", "D")
	answers := map[string]string{"q0": "A", "q1": "B", "q2": "C", "q3": "D"}

	outcome, err := ScoreAnswers(questions, answers)
	if err != nil {
		t.Fatalf("score error: %v", err)
	}
	if outcome.Score != 100 || outcome.CorrectAnswers != 4 || outcome.TotalQuestions != 4 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if !outcome.Passed {
		t.Fatalf("expected pass at 100")
	}
}

func TestScoreAnswersFourOfFive(t *testing.T) {
	questions := makeQuestions("A", "B", "C", "D", "A")
	answers := map[string]string{"q0": "A", "q1": "B", "q2": "C", "q3": "D", "q4": "B"}

	outcome, err := ScoreAnswers(questions, answers)
	if err != nil {
		t.Fatalf("score error: %v", err)
	}
	if outcome.Score != 80 {
		t.Fatalf("expected score 80, got %v", outcome.Score)
	}
	if !outcome.Passed {
		t.Fatalf("expected 80 to pass")
	}
}

func TestScoreAnswersThreeOfFiveFails(t *testing.T) {
	questions := makeQuestions("A", "B", "C", "D", "A")
	answers := map[string]string{"q0": "A", "q1": "B", "q2": "C", "q3": "A", "q4": "B"}

	outcome, err := ScoreAnswers(questions, answers)
	if err != nil {
		t.Fatalf("score error: %v", err)
	}
	if outcome.Score != 60 {
		t.Fatalf("expected score 60, got %v", outcome.Score)
	}
	if outcome.Passed {
		t.Fatalf("expected 60 to fail")
	}
}

func TestScoreAnswersPassBoundary(t *testing.T) {
	// 7/10 is exactly the 70.0 cutoff and must pass.
	questions := makeQuestions("A", "A", "A", "A", "A", "A", "A", "A", "A", "A")
	answers := map[string]string{}
	for i := 0; i < 7; i++ {
		answers["q"+string(rune('0'+i))] = "A"
	}

	outcome, err := ScoreAnswers(questions, answers)
	if err != nil {
		t.Fatalf("score error: %v", err)
	}
	if outcome.Score != 70 {
		t.Fatalf("expected score 70, got %v", outcome.Score)
	}
	if !outcome.Passed {
		t.Fatalf("expected boundary score 70 to pass")
	}

	// One fewer correct answer lands below the cutoff and must fail.
	delete(answers, "q6")
	outcome, err = ScoreAnswers(questions, answers)
	if err != nil {
		t.Fatalf("score error: %v", err)
	}
	if outcome.Passed {
		t.Fatalf("expected score %v to fail", outcome.Score)
	}
}

func TestScoreAnswersCaseInsensitive(t *testing.T) {
	questions := makeQuestions("A", "B")
	answers := map[string]string{"q0": "a", "q1": " b "}

	outcome, err := ScoreAnswers(questions, answers)
	if err != nil {
		t.Fatalf("score error: %v", err)
	}
	if outcome.CorrectAnswers != 2 {
		t.Fatalf("expected case-insensitive match, got %d correct", outcome.CorrectAnswers)
	}
}

func TestScoreAnswersMissingAnswerIncorrect(t *testing.T) {
	questions := makeQuestions("A", "B")
	answers := map[string]string{"q0": "A"}

	outcome, err := ScoreAnswers(questions, answers)
	if err != nil {
		t.Fatalf("score error: %v", err)
	}
	if outcome.CorrectAnswers != 1 || outcome.Score != 50 {
		t.Fatalf("expected absent answer to score as incorrect, got %+v", outcome)
	}
}

func TestScoreAnswersOrderIndependent(t *testing.T) {
	questions := makeQuestions("A", "B", "C", "D", "A")
	answers := map[string]string{"q0": "A", "q1": "B", "q2": "C", "q3": "D", "q4": "B"}

	base, err := ScoreAnswers(questions, answers)
	if err != nil {
		t.Fatalf("score error: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := append([]model.Question{}, questions...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		outcome, err := ScoreAnswers(shuffled, answers)
		if err != nil {
			t.Fatalf("score error: %v", err)
		}
		if outcome.Score != base.Score || outcome.CorrectAnswers != base.CorrectAnswers {
			t.Fatalf("score changed under permutation: %+v vs %+v", outcome, base)
		}
	}
}

func TestScoreAnswersNoQuestions(t *testing.T) {
	_, err := ScoreAnswers(nil, map[string]string{"q0": "A"})
	var opErr *Error
	if !errors.As(err, &opErr) || opErr.Code != ErrNoQuestions {
		t.Fatalf("expected no_questions error, got %v", err)
	}
}

func TestScoreAnswersIgnoresPoints(t *testing.T) {
	// Points are modeled but scoring is a plain correct/total ratio.
	questions := makeQuestions("A", "B")
	questions[0].Points = 10
	answers := map[string]string{"q1": "B"}

	outcome, err := ScoreAnswers(questions, answers)
	if err != nil {
		t.Fatalf("score error: %v", err)
	}
	if outcome.Score != 50 {
		t.Fatalf("expected equal-weight score 50, got %v", outcome.Score)
	}
}
