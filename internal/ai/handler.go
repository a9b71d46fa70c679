// AngelaMos | 2026
// handler.go

package ai

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/learnhub/internal/core"
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

// RegisterRoutes mounts the generation endpoints. limiter bounds calls per
// user and may be nil.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	limiter func(http.Handler) http.Handler,
) {
	r.Route("/ai", func(r chi.Router) {
		r.Use(authenticator)
		if limiter != nil {
			r.Use(limiter)
		}

		r.Post("/outline", h.Outline)
		r.Post("/lesson", h.Lesson)
		r.Post("/image", h.Image)
		r.Post("/tutor", h.Tutor)
		r.Post("/quiz", h.Quiz)
		r.Post("/summary", h.Summary)
		r.Post("/flashcards", h.Flashcards)
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

// WriteError maps adapter failures to responses. what names the artefact in
// the retry message, e.g. "quiz".
func WriteError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, ErrNotConfigured):
		core.JSONError(w, core.UnavailableError("AI features are not configured"))
	case errors.Is(err, ErrGenerationFailed):
		core.JSONError(w, core.UpstreamError("Failed to generate "+what+". Please try again."))
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	default:
		core.InternalServerError(w, err)
	}
}

func (h *Handler) Outline(w http.ResponseWriter, r *http.Request) {
	var req OutlineRequest
	if !h.decode(w, r, &req) {
		return
	}

	outline, err := h.service.GenerateCourseOutline(r.Context(), req.Topic, req.Difficulty)
	if err != nil {
		WriteError(w, err, "course outline")
		return
	}
	core.OK(w, outline)
}

func (h *Handler) Lesson(w http.ResponseWriter, r *http.Request) {
	var req LessonRequest
	if !h.decode(w, r, &req) {
		return
	}

	text, err := h.service.GenerateLessonContent(r.Context(), req.CourseTitle, req.LessonTitle)
	if err != nil {
		WriteError(w, err, "lesson")
		return
	}
	core.OK(w, TextResponse{Text: text})
}

func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	var req ImageRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.GenerateImage(req.Prompt)
	if err != nil {
		WriteError(w, err, "image")
		return
	}
	core.OK(w, ImageResponse{URL: u})
}

func (h *Handler) Tutor(w http.ResponseWriter, r *http.Request) {
	var req TutorRequest
	if !h.decode(w, r, &req) {
		return
	}

	text, err := h.service.GenerateTutorResponse(r.Context(), req.History, req.Message, req.LessonContext)
	if err != nil {
		WriteError(w, err, "response")
		return
	}
	core.OK(w, TextResponse{Text: text})
}

func (h *Handler) Quiz(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !h.decode(w, r, &req) {
		return
	}

	questions, err := h.service.GenerateQuiz(r.Context(), req.Content, req.Count)
	if err != nil {
		WriteError(w, err, "quiz")
		return
	}
	core.OK(w, questions)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !h.decode(w, r, &req) {
		return
	}

	text, err := h.service.GenerateSummary(r.Context(), req.Content)
	if err != nil {
		WriteError(w, err, "summary")
		return
	}
	core.OK(w, TextResponse{Text: text})
}

func (h *Handler) Flashcards(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !h.decode(w, r, &req) {
		return
	}

	cards, err := h.service.GenerateFlashcards(r.Context(), req.Content)
	if err != nil {
		WriteError(w, err, "flashcards")
		return
	}
	core.OK(w, cards)
}
