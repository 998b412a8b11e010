package question

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-questions/internal/logging"
	httperrors "github.com/gokatarajesh/quiz-questions/pkg/http/errors"
)

const maxBodyBytes = 1 << 20

// HTTPHandler exposes the question service over REST.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

// NewHTTPHandler constructs the question HTTP handler.
func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "question_http").Logger(),
	}
}

// Register mounts every question route on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/topics", h.HandleTopics)
	mux.HandleFunc("GET /v1/topics/{topic}/questions", h.HandleTopicQuestions)
	mux.HandleFunc("GET /v1/questions", h.HandleList)
	mux.HandleFunc("GET /v1/questions/{ref}", h.HandleFetch)
	mux.HandleFunc("POST /v1/questions", h.HandleCreate)
	mux.HandleFunc("POST /v1/questions/{id}/edit", h.HandleEdit)
	mux.HandleFunc("PUT /v1/questions/{id}", h.HandleEdit)
}

// HandleTopics handles GET /v1/topics
func (h *HTTPHandler) HandleTopics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"topics": h.svc.Topics(),
	})
}

// HandleFetch handles GET /v1/questions/{ref}?sort=y where ref is a question
// id or a topic name.
func (h *HTTPHandler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	ref := r.PathValue("ref")
	presented, err := h.svc.FetchQuestion(ref, sortRequested(r))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, presented)
}

type listedQuestion struct {
	ID          int       `json:"id"`
	Topic       string    `json:"topic"`
	Question    string    `json:"question"`
	LastUpdated time.Time `json:"last_updated"`
}

// HandleList handles GET /v1/questions?topic=&max_count=&sort=; a missing
// topic lists every topic.
func (h *HTTPHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, ListOptions{Topic: r.URL.Query().Get("topic")})
}

// HandleTopicQuestions handles GET /v1/topics/{topic}/questions. A blank
// topic is unknown rather than "all topics".
func (h *HTTPHandler) HandleTopicQuestions(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, ListOptions{Topic: r.PathValue("topic"), TopicRequired: true})
}

func (h *HTTPHandler) list(w http.ResponseWriter, r *http.Request, opts ListOptions) {
	opts.MaxCount = parseMaxCount(r.URL.Query().Get("max_count"))
	opts.SortByRecency = sortRequested(r)
	qs, err := h.svc.ListQuestions(opts)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	out := make([]listedQuestion, len(qs))
	for i, q := range qs {
		out[i] = listedQuestion{
			ID:          q.ID,
			Topic:       q.Topic,
			Question:    q.DisplayText(),
			LastUpdated: q.LastUpdated,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"questions": out,
		"count":     len(out),
	})
}

// HandleCreate handles POST /v1/questions
func (h *HTTPHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if !decodeBody(w, r, &in) {
		return
	}

	q, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.respondMutationError(w, r, q, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "question created",
		"question": q,
	})
}

// HandleEdit handles POST /v1/questions/{id}/edit and PUT /v1/questions/{id}
func (h *HTTPHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidID, "question id must be a positive integer")
		return
	}

	var in EditInput
	if !decodeBody(w, r, &in) {
		return
	}

	q, err := h.svc.Edit(r.Context(), id, in)
	if err != nil {
		h.respondMutationError(w, r, q, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "question updated",
		"question": q,
	})
}

func (h *HTTPHandler) respondMutationError(w http.ResponseWriter, r *http.Request, q Question, err error) {
	if IsPersistenceOnly(err) {
		httperrors.RespondErrorWithDetails(w, http.StatusInternalServerError, httperrors.ErrCodePersistenceFailed,
			"change applied in memory but could not be persisted", map[string]interface{}{"id": q.ID})
		return
	}
	h.respondDomainError(w, r, err)
}

func (h *HTTPHandler) respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErr *FieldError
	switch {
	case errors.As(err, &fieldErr):
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, err.Error(), fieldErr.Field)
	case errors.Is(err, ErrUnknownTopic):
		httperrors.RespondNotFound(w, httperrors.ErrCodeUnknownTopic, err.Error())
	case errors.Is(err, ErrEmptyTopic):
		httperrors.RespondNotFound(w, httperrors.ErrCodeEmptyTopic, err.Error())
	case errors.Is(err, ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, err.Error())
	case errors.Is(err, ErrDuplicate):
		httperrors.RespondConflict(w, httperrors.ErrCodeAlreadyExists, err.Error())
	default:
		logger := logging.FromContext(r.Context())
		logger.Error().Err(err).Msg("unexpected question service error")
		httperrors.RespondInternalError(w, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return false
	}
	return true
}

// sortRequested accepts y/Y as well as true/1.
func sortRequested(r *http.Request) bool {
	switch strings.TrimSpace(r.URL.Query().Get("sort")) {
	case "y", "Y", "true", "1":
		return true
	default:
		return false
	}
}

// parseMaxCount degrades anything that is not an integer to "no limit".
func parseMaxCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
