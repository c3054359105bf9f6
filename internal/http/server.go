package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/snaveenk972/learning-platform/internal/auth"
	"github.com/snaveenk972/learning-platform/internal/cache"
	"github.com/snaveenk972/learning-platform/internal/config"
	"github.com/snaveenk972/learning-platform/internal/crypto"
	"github.com/snaveenk972/learning-platform/internal/model"
	"github.com/snaveenk972/learning-platform/internal/operations"
	"github.com/snaveenk972/learning-platform/internal/repository"
)

type Server struct {
	cfg       config.Config
	store     *repository.Store
	questions *cache.Questions
}

func NewServer(cfg config.Config, store *repository.Store, questions *cache.Questions) *Server {
	return &Server{cfg: cfg, store: store, questions: questions}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signin", s.handleSignin)
		r.Post("/signup", s.handleSignup)
		r.Get("/check-username/{username}", s.handleCheckUsername)
		r.Get("/check-email/{email}", s.handleCheckEmail)
	})

	r.Route("/courses", func(r chi.Router) {
		r.Get("/list", s.handleListCourses)
		r.Get("/categories", s.handleListCategories)
		r.Get("/difficulty-levels", s.handleListDifficultyLevels)
		r.Get("/search/{keyword}", s.handleSearchCourses)
		r.Get("/category/{category}", s.handleCoursesByCategory)
		r.Get("/difficulty/{difficulty}", s.handleCoursesByDifficulty)
		r.Get("/duration", s.handleCoursesByDuration)
		r.Get("/{courseId}", s.handleGetCourse)
	})

	r.Route("/enrollments", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/enroll", s.handleEnroll)
		r.Get("/learning", s.handleLearningCourses)
		r.Get("/achievements", s.handleAchievements)
		r.Get("/all", s.handleAllEnrollments)
		r.Get("/stats", s.handleEnrollmentStats)
		r.Put("/progress/{courseId}", s.handleUpdateProgress)
		r.Put("/complete/{courseId}", s.handleCompleteCourse)
	})

	r.Route("/tests", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/submit", s.handleSubmitTest)
		r.Get("/course/{courseId}/questions", s.handleTestQuestions)
		r.Get("/results", s.handleTestResults)
		r.Get("/results/course/{courseId}", s.handleTestResultsByCourse)
		r.Get("/results/latest/{courseId}", s.handleLatestTestResult)
		r.Get("/passed", s.handlePassedTests)
		r.Get("/statistics", s.handleTestStats)
		r.Get("/highest-score/{courseId}", s.handleHighestScore)
	})

	return r
}

// Auth

type claimsKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}

		claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

type signinRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

type userSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type authResponse struct {
	AccessToken string      `json:"accessToken"`
	User        userSummary `json:"user"`
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.UsernameOrEmail = strings.TrimSpace(req.UsernameOrEmail)
	if req.UsernameOrEmail == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_credentials")
		return
	}

	user, err := s.store.GetUserByIdentifier(r.Context(), req.UsernameOrEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		log.Printf("signin lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	if err := crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}

	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, auth.Claims{
		UserID:   user.ID,
		Username: user.Username,
	})
	if err != nil {
		log.Printf("token issue failed: %v", err)
		writeError(w, http.StatusInternalServerError, "token_error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		AccessToken: token,
		User:        mapUserSummary(user),
	})
}

type signupRequest struct {
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	if taken, err := s.store.UsernameExists(r.Context(), req.Username); err != nil {
		log.Printf("signup username check failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	} else if taken {
		writeError(w, http.StatusBadRequest, "username_taken")
		return
	}
	if taken, err := s.store.EmailExists(r.Context(), req.Email); err != nil {
		log.Printf("signup email check failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	} else if taken {
		writeError(w, http.StatusBadRequest, "email_taken")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "password_hash_failed")
		return
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(r.Context(), user); err != nil {
		log.Printf("signup create failed: %v", err)
		writeError(w, http.StatusBadRequest, "user_create_failed")
		return
	}

	writeJSON(w, http.StatusCreated, mapUserSummary(user))
}

func (s *Server) handleCheckUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	taken, err := s.store.UsernameExists(r.Context(), username)
	if err != nil {
		log.Printf("username check failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": !taken})
}

func (s *Server) handleCheckEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(chi.URLParam(r, "email"))
	taken, err := s.store.EmailExists(r.Context(), email)
	if err != nil {
		log.Printf("email check failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": !taken})
}

// Courses

type courseResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationHours   int    `json:"durationHours"`
	DifficultyLevel string `json:"difficultyLevel"`
	Category        string `json:"category"`
	InstructorName  string `json:"instructorName"`
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.store.ListActiveCourses(r.Context())
	if err != nil {
		log.Printf("list courses failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapCourses(courses))
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseId")
	course, err := s.store.GetCourse(r.Context(), courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "course_not_found")
			return
		}
		log.Printf("get course failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !course.IsActive {
		writeError(w, http.StatusNotFound, "course_not_found")
		return
	}
	writeJSON(w, http.StatusOK, mapCourse(course))
}

func (s *Server) handleSearchCourses(w http.ResponseWriter, r *http.Request) {
	keyword := chi.URLParam(r, "keyword")
	courses, err := s.store.SearchCourses(r.Context(), keyword)
	if err != nil {
		log.Printf("search courses failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapCourses(courses))
}

func (s *Server) handleCoursesByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	courses, err := s.store.ListCoursesByCategory(r.Context(), category)
	if err != nil {
		log.Printf("courses by category failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapCourses(courses))
}

func (s *Server) handleCoursesByDifficulty(w http.ResponseWriter, r *http.Request) {
	difficulty := chi.URLParam(r, "difficulty")
	courses, err := s.store.ListCoursesByDifficulty(r.Context(), difficulty)
	if err != nil {
		log.Printf("courses by difficulty failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapCourses(courses))
}

func (s *Server) handleCoursesByDuration(w http.ResponseWriter, r *http.Request) {
	minHours, err := queryInt(r, "minHours", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_duration")
		return
	}
	maxHours, err := queryInt(r, "maxHours", 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_duration")
		return
	}

	courses, err := s.store.ListCoursesByDuration(r.Context(), minHours, maxHours)
	if err != nil {
		log.Printf("courses by duration failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapCourses(courses))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.ListCategories(r.Context())
	if err != nil {
		log.Printf("list categories failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleListDifficultyLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := s.store.ListDifficultyLevels(r.Context())
	if err != nil {
		log.Printf("list difficulty levels failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, levels)
}

// Enrollments

type enrollRequest struct {
	CourseIDs []string `json:"courseIds"`
}

type enrollmentResponse struct {
	ID          string  `json:"id"`
	CourseID    string  `json:"courseId"`
	Status      string  `json:"status"`
	Progress    float64 `json:"progress"`
	EnrolledAt  int64   `json:"enrolledAt"`
	CompletedAt *int64  `json:"completedAt,omitempty"`
}

type enrollmentErrorItem struct {
	CourseID string `json:"courseId"`
	Error    string `json:"error"`
}

type enrollSummaryResponse struct {
	Enrolled []enrollmentResponse  `json:"enrolled"`
	Errors   []enrollmentErrorItem `json:"errors"`
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	var req enrollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if len(req.CourseIDs) == 0 {
		writeError(w, http.StatusBadRequest, "missing_course_ids")
		return
	}

	summary := operations.EnrollInCourses(r.Context(), s.store, claims.UserID, req.CourseIDs)

	resp := enrollSummaryResponse{
		Enrolled: make([]enrollmentResponse, 0, len(summary.Enrolled)),
		Errors:   make([]enrollmentErrorItem, 0, len(summary.Errors)),
	}
	for _, enrollment := range summary.Enrolled {
		resp.Enrolled = append(resp.Enrolled, mapEnrollment(enrollment))
	}
	for _, item := range summary.Errors {
		resp.Errors = append(resp.Errors, enrollmentErrorItem{CourseID: item.CourseID, Error: item.Code})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLearningCourses(w http.ResponseWriter, r *http.Request) {
	s.listEnrollmentsByStatus(w, r, model.EnrollmentStatusLearning)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	s.listEnrollmentsByStatus(w, r, model.EnrollmentStatusCompleted)
}

func (s *Server) listEnrollmentsByStatus(w http.ResponseWriter, r *http.Request, status string) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	enrollments, err := s.store.ListEnrollmentsByStatus(r.Context(), claims.UserID, status)
	if err != nil {
		log.Printf("list enrollments failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapEnrollments(enrollments))
}

func (s *Server) handleAllEnrollments(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	enrollments, err := s.store.ListEnrollments(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("list enrollments failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapEnrollments(enrollments))
}

type progressRequest struct {
	Progress float64 `json:"progress"`
}

func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	courseID := chi.URLParam(r, "courseId")

	var req progressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	enrollment, err := operations.UpdateProgress(r.Context(), s.store, claims.UserID, courseID, req.Progress)
	if err != nil {
		writeOperationError(w, "update progress", err)
		return
	}
	writeJSON(w, http.StatusOK, mapEnrollment(enrollment))
}

func (s *Server) handleCompleteCourse(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	courseID := chi.URLParam(r, "courseId")

	enrollment, err := operations.CompleteCourse(r.Context(), s.store, claims.UserID, courseID)
	if err != nil {
		writeOperationError(w, "complete course", err)
		return
	}
	writeJSON(w, http.StatusOK, mapEnrollment(enrollment))
}

type enrollmentStatsResponse struct {
	TotalEnrollments int64   `json:"totalEnrollments"`
	CompletedCourses int64   `json:"completedCourses"`
	LearningCourses  int64   `json:"learningCourses"`
	AverageProgress  float64 `json:"averageProgress"`
}

func (s *Server) handleEnrollmentStats(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	stats, err := s.store.GetEnrollmentStats(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("enrollment stats failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, enrollmentStatsResponse{
		TotalEnrollments: stats.TotalEnrollments,
		CompletedCourses: stats.CompletedCourses,
		LearningCourses:  stats.LearningCourses,
		AverageProgress:  stats.AverageProgress,
	})
}

// Tests

type submitTestRequest struct {
	CourseID        string            `json:"courseId"`
	Answers         map[string]string `json:"answers"`
	DurationMinutes int               `json:"durationMinutes"`
}

type testResultResponse struct {
	ID              string  `json:"id"`
	CourseID        string  `json:"courseId"`
	Score           float64 `json:"score"`
	TotalQuestions  int     `json:"totalQuestions"`
	CorrectAnswers  int     `json:"correctAnswers"`
	DurationMinutes int     `json:"durationMinutes"`
	Passed          bool    `json:"passed"`
	TakenAt         int64   `json:"takenAt"`
}

type submitTestResponse struct {
	Result     testResultResponse `json:"result"`
	Enrollment enrollmentResponse `json:"enrollment"`
}

func (s *Server) handleSubmitTest(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	var req submitTestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.CourseID == "" {
		writeError(w, http.StatusBadRequest, "missing_course_id")
		return
	}

	result, enrollment, err := operations.SubmitTest(r.Context(), s.store, s.questions, claims.UserID, req.CourseID, req.Answers, req.DurationMinutes)
	if err != nil {
		writeOperationError(w, "submit test", err)
		return
	}

	writeJSON(w, http.StatusOK, submitTestResponse{
		Result:     mapTestResult(result),
		Enrollment: mapEnrollment(enrollment),
	})
}

type questionResponse struct {
	ID           string `json:"id"`
	QuestionText string `json:"questionText"`
	OptionA      string `json:"optionA"`
	OptionB      string `json:"optionB"`
	OptionC      string `json:"optionC"`
	OptionD      string `json:"optionD"`
	Points       int    `json:"points"`
}

// handleTestQuestions returns the question set for candidates. Correct answers
// and explanations never leave the server.
func (s *Server) handleTestQuestions(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseId")

	course, err := s.store.GetCourse(r.Context(), courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "course_not_found")
			return
		}
		log.Printf("get course failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !course.IsActive {
		writeError(w, http.StatusNotFound, "course_not_found")
		return
	}

	questions, err := s.questions.ListActiveQuestions(r.Context(), courseID)
	if err != nil {
		log.Printf("list questions failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := make([]questionResponse, 0, len(questions))
	for _, question := range questions {
		resp = append(resp, questionResponse{
			ID:           question.ID,
			QuestionText: question.QuestionText,
			OptionA:      question.OptionA,
			OptionB:      question.OptionB,
			OptionC:      question.OptionC,
			OptionD:      question.OptionD,
			Points:       question.Points,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTestResults(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	results, err := s.store.ListTestResults(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("list test results failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapTestResults(results))
}

func (s *Server) handleTestResultsByCourse(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	courseID := chi.URLParam(r, "courseId")

	results, err := s.store.ListTestResultsByCourse(r.Context(), claims.UserID, courseID)
	if err != nil {
		log.Printf("list course test results failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapTestResults(results))
}

func (s *Server) handleLatestTestResult(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	courseID := chi.URLParam(r, "courseId")

	result, err := s.store.GetLatestTestResult(r.Context(), claims.UserID, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "no_results")
			return
		}
		log.Printf("latest test result failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapTestResult(result))
}

func (s *Server) handlePassedTests(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	results, err := s.store.ListPassedTestResults(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("list passed tests failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapTestResults(results))
}

type testStatsResponse struct {
	TotalTests   int64   `json:"totalTests"`
	PassedTests  int64   `json:"passedTests"`
	PassRate     float64 `json:"passRate"`
	AverageScore float64 `json:"averageScore"`
}

func (s *Server) handleTestStats(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	stats, err := s.store.GetTestStats(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("test stats failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, testStatsResponse{
		TotalTests:   stats.TotalTests,
		PassedTests:  stats.PassedTests,
		PassRate:     stats.PassRate,
		AverageScore: stats.AverageScore,
	})
}

func (s *Server) handleHighestScore(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	courseID := chi.URLParam(r, "courseId")

	score, found, err := s.store.GetHighestScore(r.Context(), claims.UserID, courseID)
	if err != nil {
		log.Printf("highest score failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "no_results")
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"highestScore": score})
}

// Mapping helpers

func mapUserSummary(user model.User) userSummary {
	return userSummary{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

func mapCourse(course model.Course) courseResponse {
	return courseResponse{
		ID:              course.ID,
		Title:           course.Title,
		Description:     course.Description,
		DurationHours:   course.DurationHours,
		DifficultyLevel: course.DifficultyLevel,
		Category:        course.Category,
		InstructorName:  course.InstructorName,
	}
}

func mapCourses(courses []model.Course) []courseResponse {
	resp := make([]courseResponse, 0, len(courses))
	for _, course := range courses {
		resp = append(resp, mapCourse(course))
	}
	return resp
}

func mapEnrollment(enrollment model.Enrollment) enrollmentResponse {
	resp := enrollmentResponse{
		ID:         enrollment.ID,
		CourseID:   enrollment.CourseID,
		Status:     enrollment.Status,
		Progress:   enrollment.Progress,
		EnrolledAt: enrollment.EnrolledAt.Unix(),
	}
	if enrollment.CompletedAt != nil {
		completedAt := enrollment.CompletedAt.Unix()
		resp.CompletedAt = &completedAt
	}
	return resp
}

func mapEnrollments(enrollments []model.Enrollment) []enrollmentResponse {
	resp := make([]enrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		resp = append(resp, mapEnrollment(enrollment))
	}
	return resp
}

func mapTestResult(result model.TestResult) testResultResponse {
	return testResultResponse{
		ID:              result.ID,
		CourseID:        result.CourseID,
		Score:           result.Score,
		TotalQuestions:  result.TotalQuestions,
		CorrectAnswers:  result.CorrectAnswers,
		DurationMinutes: result.DurationMinutes,
		Passed:          result.Passed,
		TakenAt:         result.TakenAt.Unix(),
	}
}

func mapTestResults(results []model.TestResult) []testResultResponse {
	resp := make([]testResultResponse, 0, len(results))
	for _, result := range results {
		resp = append(resp, mapTestResult(result))
	}
	return resp
}

// Plumbing

func writeOperationError(w http.ResponseWriter, op string, err error) {
	var opErr *operations.Error
	if errors.As(err, &opErr) {
		writeError(w, statusForCode(opErr.Code), opErr.Code)
		return
	}
	log.Printf("%s failed: %v", op, err)
	writeError(w, http.StatusInternalServerError, "server_error")
}

func statusForCode(code string) int {
	switch code {
	case operations.ErrCourseNotFound, operations.ErrEnrollmentNotFound, operations.ErrNoResults:
		return http.StatusNotFound
	case operations.ErrNotEnrolled, operations.ErrNoQuestions, operations.ErrInvalidProgress:
		return http.StatusBadRequest
	case operations.ErrAlreadyEnrolled:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
