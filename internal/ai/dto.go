// AngelaMos | 2026
// dto.go

package ai

type OutlineRequest struct {
	Topic      string `json:"topic"      validate:"required,min=2,max=200"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
}

type LessonRequest struct {
	CourseTitle string `json:"course_title" validate:"max=200"`
	LessonTitle string `json:"lesson_title" validate:"required,max=200"`
}

type ImageRequest struct {
	Prompt string `json:"prompt" validate:"required,max=500"`
}

type TutorRequest struct {
	History       []Message `json:"history"        validate:"max=100,dive"`
	Message       string    `json:"message"        validate:"required,max=4000"`
	LessonContext string    `json:"lesson_context" validate:"max=20000"`
}

type ContentRequest struct {
	Content string `json:"content" validate:"required,max=50000"`
	Count   int    `json:"count"   validate:"omitempty,min=1,max=20"`
}

type TextResponse struct {
	Text string `json:"text"`
}

type ImageResponse struct {
	URL string `json:"url"`
}
