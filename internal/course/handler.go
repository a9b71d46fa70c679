// AngelaMos | 2026
// handler.go

package course

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/learnhub/internal/ai"
	"github.com/carterperez-dev/learnhub/internal/core"
	"github.com/carterperez-dev/learnhub/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the public catalogue, instructor authoring and
// student learning endpoints. limiter guards the AI-backed routes and may be
// nil.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	limiter func(http.Handler) http.Handler,
) {
	if limiter == nil {
		limiter = func(next http.Handler) http.Handler { return next }
	}

	r.Route("/courses", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{courseID}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Use(middleware.RequireInstructor)

			r.Post("/", h.Create)
			r.Put("/{courseID}", h.Update)
			r.With(limiter).Post("/generate", h.Generate)
			r.With(limiter).Post("/{courseID}/lessons/{lessonID}/regenerate", h.RegenerateLesson)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Use(middleware.RequireStudent)

			r.Post("/{courseID}/enroll", h.Enroll)
			r.Post("/{courseID}/certificate", h.Certificate)
			r.Get("/{courseID}/notes", h.Notes)
			r.Post("/{courseID}/notes", h.AddNote)
			r.Get("/{courseID}/notes/export", h.ExportNotes)
			r.Post("/{courseID}/lessons/{lessonID}/complete", h.CompleteLesson)
		})
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}
	return true
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	courses, err := h.service.List(r.Context(), ListParams{
		Category:   q.Get("category"),
		Difficulty: q.Get("difficulty"),
		Search:     q.Get("search"),
	})
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	out := make([]CourseSummary, 0, len(courses))
	for i := range courses {
		out = append(out, ToCourseSummary(&courses[i]))
	}
	core.OK(w, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToCourseResponse(c))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CourseRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToCourseResponse(c))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req CourseRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.service.Update(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "courseID"),
		req,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToCourseResponse(c))
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.service.Generate(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		writeGenerationError(w, err, "course outline")
		return
	}

	core.Created(w, ToCourseResponse(c))
}

func (h *Handler) RegenerateLesson(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.RegenerateLesson(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "courseID"),
		chi.URLParam(r, "lessonID"),
	)
	if err != nil {
		writeGenerationError(w, err, "lesson content")
		return
	}

	core.OK(w, ToCourseResponse(c))
}

func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	u, err := h.service.Enroll(r.Context(), middleware.GetUserID(r.Context()), courseID)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, map[string]any{
		"course_id":           courseID,
		"enrolled_course_ids": u.EnrolledCourseIDs,
	})
}

func (h *Handler) Certificate(w http.ResponseWriter, r *http.Request) {
	cert, err := h.service.Certificate(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "courseID"),
	)
	if err != nil {
		if errors.Is(err, core.ErrForbidden) {
			core.Forbidden(w, "enroll in the course and complete every lesson to earn its certificate")
			return
		}
		writeError(w, err)
		return
	}

	core.OK(w, ToCertificateResponse(cert))
}

func (h *Handler) Notes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.Notes(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "courseID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, ToNoteResponse(n))
	}
	core.OK(w, out)
}

func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	note, err := h.service.AddNote(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "courseID"),
		req,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToNoteResponse(*note))
}

// ExportNotes serves the cheat sheet as a plain text download.
func (h *Handler) ExportNotes(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	text, err := h.service.CheatSheet(r.Context(), middleware.GetUserID(r.Context()), courseID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="cheat-sheet-`+courseID+`.txt"`)
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // best-effort response write
	_, _ = w.Write([]byte(text))
}

func (h *Handler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	progress, err := h.service.CompleteLesson(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "courseID"),
		chi.URLParam(r, "lessonID"),
	)
	if err != nil {
		if errors.Is(err, core.ErrForbidden) {
			core.Forbidden(w, "enroll in the course first")
			return
		}
		writeError(w, err)
		return
	}

	core.OK(w, progress)
}

func writeGenerationError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, ai.ErrNotConfigured) || errors.Is(err, ai.ErrGenerationFailed) {
		ai.WriteError(w, err, what)
		return
	}
	writeError(w, err)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "course")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "only the course owner can do that")
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.DuplicateError("course"))
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid course data")
	default:
		core.InternalServerError(w, err)
	}
}
