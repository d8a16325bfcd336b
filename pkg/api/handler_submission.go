package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal/pkg/eventstore"
	"github.com/fourthplaces/rootsignal/pkg/promote"
)

// submitHandler handles POST /api/v1/submissions. It canonicalizes the
// submitted URL through the same Link Promoter the Scout Pipeline uses,
// then emits the paired submission_received/source_registered events
// graph.Projector.applySubmissionReceived expects: the Submission node and
// its SUBMITTED_FOR edge come from submission_received, the Source node
// from source_registered — MERGE semantics make the append order of the
// two irrelevant.
func (s *Server) submitHandler(c *gin.Context) {
	var req submissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	scope, err := s.cfg.ScopeByName(req.Scope)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	registered := s.promoter.Promote(scope.Name, []promote.ProposedLink{{URL: req.URL}}, eventstore.DiscoveryHumanSubmission)
	if len(registered) == 0 {
		writeServiceError(c, errRejectedURL)
		return
	}
	source := registered[0]

	ctx := c.Request.Context()
	submissionID := uuid.NewString()

	submissionEvent, err := eventstore.NewEvent(eventstore.EventSubmissionReceived, eventstore.SubmissionReceived{
		SubmissionID:       submissionID,
		URL:                req.URL,
		Reason:             req.Reason,
		SourceCanonicalKey: source.CanonicalKey,
	}, "", "")
	if err != nil {
		writeServiceError(c, fmt.Errorf("api: encode submission_received: %w", err))
		return
	}
	sourceEvent, err := eventstore.NewEvent(eventstore.EventSourceRegistered, source, "", "")
	if err != nil {
		writeServiceError(c, fmt.Errorf("api: encode source_registered: %w", err))
		return
	}

	for _, ev := range []eventstore.Event{submissionEvent, sourceEvent} {
		stored, err := s.store.Append(ctx, ev)
		if err != nil {
			writeServiceError(c, fmt.Errorf("api: append %s: %w", ev.Type, err))
			return
		}
		if err := s.projector.Apply(ctx, stored); err != nil {
			writeServiceError(c, fmt.Errorf("api: project %s: %w", ev.Type, err))
			return
		}
	}

	c.JSON(http.StatusCreated, submissionResponse{SubmissionID: submissionID, SourceCanonicalKey: source.CanonicalKey})
}
