package service

import (
	"context"
	"time"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/logger"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/model"
)

// ResponseChange describes a session's responses before and after an edit
type ResponseChange struct {
	QuestionnaireID string          `json:"questionnaireId"`
	Previous        model.Responses `json:"previous"`
	Current         model.Responses `json:"current"`
}

// SessionEventService reacts to response edits: it works out which questions
// appeared or disappeared, drops the stale heatmap and notifies subscribers
type SessionEventService struct {
	adaptive    *AdaptiveLogicService
	heatmap     *HeatmapService
	broadcaster Broadcaster
	log         logger.Logger
}

// NewSessionEventService creates a new session event service
func NewSessionEventService(adaptive *AdaptiveLogicService, heatmap *HeatmapService, log logger.Logger) *SessionEventService {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionEventService{
		adaptive: adaptive,
		heatmap:  heatmap,
		log:      log,
	}
}

// SetBroadcaster sets the WebSocket broadcaster
func (s *SessionEventService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// ApplyResponseChange returns the visibility delta of a response edit
func (s *SessionEventService) ApplyResponseChange(ctx context.Context, sessionID string, change ResponseChange) (model.AdaptiveChanges, error) {
	if change.QuestionnaireID == "" {
		return model.AdaptiveChanges{}, ErrBadRequest
	}

	changes, err := s.adaptive.CalculateAdaptiveChanges(ctx, change.QuestionnaireID, change.Previous, change.Current)
	if err != nil {
		return model.AdaptiveChanges{}, err
	}

	s.heatmap.InvalidateCache(ctx, sessionID)
	s.log.Debugf("session %s: %d questions added, %d removed", sessionID, len(changes.Added), len(changes.Removed))

	if s.broadcaster != nil {
		if len(changes.Added) > 0 || len(changes.Removed) > 0 {
			s.broadcaster.BroadcastToSession(sessionID, EventAdaptiveChanges, changes)
		}
		s.broadcaster.BroadcastToSession(sessionID, EventHeatmapInvalidated, map[string]interface{}{
			"sessionId": sessionID,
			"at":        time.Now().UTC(),
		})
	}
	return changes, nil
}
