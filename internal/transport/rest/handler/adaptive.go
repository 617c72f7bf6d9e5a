package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/model"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/service"
)

// AdaptiveHandler handles question visibility endpoints
type AdaptiveHandler struct {
	adaptiveSvc *service.AdaptiveLogicService
	questions   questionFinder
	eventsSvc   *service.SessionEventService
}

// questionFinder is the slice of the question repository the state endpoint needs
type questionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Question, error)
}

// NewAdaptiveHandler creates a new adaptive handler
func NewAdaptiveHandler(adaptiveSvc *service.AdaptiveLogicService, questions questionFinder, eventsSvc *service.SessionEventService) *AdaptiveHandler {
	return &AdaptiveHandler{
		adaptiveSvc: adaptiveSvc,
		questions:   questions,
		eventsSvc:   eventsSvc,
	}
}

// responsesBody is the request body carrying current responses
type responsesBody struct {
	Responses model.Responses `json:"responses"`
}

// VisibleQuestions handles POST /v1/questionnaires/{questionnaireId}/visible-questions
func (h *AdaptiveHandler) VisibleQuestions(w http.ResponseWriter, r *http.Request) {
	var body responsesBody
	if err := decodeJSON(r, &body); err != nil {
		writeServiceError(w, err)
		return
	}

	questions, err := h.adaptiveSvc.GetVisibleQuestions(r.Context(), mux.Vars(r)["questionnaireId"], body.Responses)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

// NextQuestion handles POST /v1/questions/{questionId}/next
func (h *AdaptiveHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	var body responsesBody
	if err := decodeJSON(r, &body); err != nil {
		writeServiceError(w, err)
		return
	}

	next, err := h.adaptiveSvc.GetNextQuestion(r.Context(), mux.Vars(r)["questionId"], body.Responses)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"question": next,
		"done":     next == nil,
	})
}

// QuestionState handles POST /v1/questions/{questionId}/state
func (h *AdaptiveHandler) QuestionState(w http.ResponseWriter, r *http.Request) {
	var body responsesBody
	if err := decodeJSON(r, &body); err != nil {
		writeServiceError(w, err)
		return
	}

	questionID := mux.Vars(r)["questionId"]
	question, err := h.questions.FindByID(r.Context(), questionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if question == nil {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}

	writeJSON(w, http.StatusOK, h.adaptiveSvc.ExplainQuestionState(question, body.Responses))
}

// Rules handles GET /v1/questions/{questionId}/rules
func (h *AdaptiveHandler) Rules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.adaptiveSvc.GetRulesForQuestion(r.Context(), mux.Vars(r)["questionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

// DependencyGraph handles GET /v1/questionnaires/{questionnaireId}/dependency-graph
func (h *AdaptiveHandler) DependencyGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := h.adaptiveSvc.BuildDependencyGraph(r.Context(), mux.Vars(r)["questionnaireId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

// AdaptiveChanges handles POST /v1/sessions/{sessionId}/adaptive-changes
func (h *AdaptiveHandler) AdaptiveChanges(w http.ResponseWriter, r *http.Request) {
	var change service.ResponseChange
	if err := decodeJSON(r, &change); err != nil {
		writeServiceError(w, err)
		return
	}
	if change.QuestionnaireID == "" {
		writeError(w, http.StatusBadRequest, "questionnaireId is required")
		return
	}

	changes, err := h.eventsSvc.ApplyResponseChange(r.Context(), mux.Vars(r)["sessionId"], change)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, changes)
}
