package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bnema/taskmate/internal/application"
	"github.com/bnema/taskmate/internal/domain"
)

func (s *Server) handleHealth(c *gin.Context) {
	model := ""
	if s.deps.Assistant != nil {
		model = s.deps.Assistant.ModelName()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"model":     model,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "message is required")
		return
	}
	if s.deps.Assistant == nil {
		s.fail(c, domain.ErrModelUnavailable)
		return
	}

	reply, err := s.deps.Assistant.Chat(c.Request.Context(), domain.SessionID(strings.TrimSpace(req.SessionID)), req.Message)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, chatResponse{
		SessionID: string(reply.SessionID),
		Response:  reply.Response,
		Outcome:   string(reply.Outcome),
		Pending:   toPendingDTO(reply.Pending),
		ToolCalls: reply.ToolCalls,
	})
}

func (s *Server) handleListTasks(c *gin.Context) {
	query := application.ListTasksQuery{Assignee: c.Query("assignee")}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			s.fail(c, err)
			return
		}
		query.Status = status
	}
	if raw := c.Query("priority"); raw != "" {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			s.fail(c, err)
			return
		}
		query.Priority = priority
	}

	view, err := application.QueryTasks(c.Request.Context(), s.deps.Tasks, s.deps.Confirm, query)
	if err != nil {
		s.fail(c, err)
		return
	}

	body := gin.H{"tasks": toTaskDTOs(view.Tasks), "count": len(view.Tasks)}
	if view.Verdict != nil {
		body["assignee"] = toVerdictDTO(*view.Verdict)
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title is required")
		return
	}

	cmd := application.CreateTaskCommand{Title: req.Title, Description: req.Description}
	var err error
	if req.Status != "" {
		if cmd.Status, err = domain.ParseStatus(req.Status); err != nil {
			s.fail(c, err)
			return
		}
	}
	if req.Priority != "" {
		if cmd.Priority, err = domain.ParsePriority(req.Priority); err != nil {
			s.fail(c, err)
			return
		}
	}
	if req.DueDate != "" {
		if cmd.DueDate, err = parseDate(req.DueDate); err != nil {
			s.fail(c, err)
			return
		}
	}

	name, ok := s.resolveAssignee(c, req.Assignee)
	if !ok {
		return
	}
	cmd.Assignee = name

	task, err := s.deps.Tasks.Create(c.Request.Context(), cmd)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTaskDTO(task))
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	patch := domain.TaskPatch{Title: req.Title}
	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			s.fail(c, err)
			return
		}
		patch.Status = &status
	}
	if req.Priority != nil {
		priority, err := domain.ParsePriority(*req.Priority)
		if err != nil {
			s.fail(c, err)
			return
		}
		patch.Priority = &priority
	}
	if req.DueDate != nil {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			s.fail(c, err)
			return
		}
		patch.DueDate = &due
	}
	if req.Assignee != nil {
		name, ok := s.resolveAssignee(c, *req.Assignee)
		if !ok {
			return
		}
		patch.Assignee = &name
	}

	task, err := s.deps.Tasks.Update(c.Request.Context(), application.UpdateTaskCommand{ID: id, Patch: patch})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskDTO(task))
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	if err := s.deps.Tasks.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Task %d deleted", id)})
}

func (s *Server) handleBulk(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "operation is required")
		return
	}

	cmd := application.BulkUpdateCommand{Operation: domain.BulkOperation(req.Operation)}
	if req.Status != "" {
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			s.fail(c, err)
			return
		}
		cmd.Status = status
	}
	if cmd.Operation == domain.BulkAssignAll {
		name, ok := s.resolveAssignee(c, req.Assignee)
		if !ok {
			return
		}
		cmd.Assignee = name
	}

	changed, err := s.deps.Tasks.Bulk(c.Request.Context(), cmd)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"operation": req.Operation, "updated": changed})
}

func (s *Server) handleTeamMembers(c *gin.Context) {
	roster, err := s.deps.Confirm.Roster(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"team_members": roster.Names(), "count": roster.Len()})
}

func (s *Server) handleResolve(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}

	ctx := c.Request.Context()
	verdict, err := s.deps.Confirm.ResolveName(ctx, req.Name)
	if err != nil {
		s.fail(c, err)
		return
	}

	out := toVerdictDTO(verdict)
	if verdict.IsRejected() {
		roster, err := s.deps.Confirm.Roster(ctx)
		if err != nil {
			s.fail(c, err)
			return
		}
		out.Message = application.UnrecognizedName(req.Name, roster)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleListSessions(c *gin.Context) {
	infos, err := s.deps.Sessions.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]sessionDTO, 0, len(infos))
	for _, info := range infos {
		out = append(out, toSessionDTO(info))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out, "count": len(out)})
}

func (s *Server) handleGetSession(c *gin.Context) {
	info, err := s.deps.Sessions.Info(c.Request.Context(), domain.SessionID(c.Param("id")))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionDTO(info))
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	id := c.Param("id")
	if err := s.deps.Sessions.Delete(c.Request.Context(), domain.SessionID(id)); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session " + id + " deleted"})
}

func (s *Server) handleCleanup(c *gin.Context) {
	removed, err := s.deps.Sessions.Cleanup(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed, "idle_timeout": s.deps.Sessions.IdleTimeout().String()})
}

func (s *Server) handleReply(c *gin.Context) {
	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "reply is required")
		return
	}

	ctx := c.Request.Context()
	result, err := s.deps.Confirm.Advance(ctx, domain.SessionID(c.Param("id")), req.Reply)
	if err != nil {
		s.fail(c, err)
		return
	}
	roster, err := s.deps.Confirm.Roster(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, advanceResponse{
		Outcome:      string(result.Outcome),
		ResolvedName: result.ResolvedName,
		Result:       result.Result,
		Message:      application.DescribeAdvance(result, roster),
		Pending:      toPendingDTO(result.Pending),
	})
}

// resolveAssignee maps a requested assignee to a roster member. REST callers
// get no dialogue: a near match is refused with the suggestion attached.
func (s *Server) resolveAssignee(c *gin.Context, raw string) (string, bool) {
	if domain.IsUnassignedName(raw) {
		return domain.Unassigned, true
	}

	verdict, err := s.deps.Confirm.ResolveName(c.Request.Context(), raw)
	if err != nil {
		s.fail(c, err)
		return "", false
	}

	switch verdict.Kind {
	case domain.VerdictAccepted:
		return verdict.Name, true
	case domain.VerdictNeedsConfirmation:
		c.AbortWithStatusJSON(http.StatusConflict, errorResponse{
			Error:   fmt.Sprintf("did you mean %q?", verdict.SuggestedName),
			Verdict: toVerdictDTO(verdict),
		})
	default:
		roster, err := s.deps.Confirm.Roster(c.Request.Context())
		if err != nil {
			s.fail(c, err)
			return "", false
		}
		message := fmt.Sprintf("%s: %q", domain.ErrUnknownMember, raw)
		if roster.IsEmpty() {
			message = fmt.Sprintf("%s: %q: %s", domain.ErrUnknownMember, raw, domain.ErrEmptyRoster)
		}
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{
			Error:   message,
			Verdict: toVerdictDTO(verdict),
		})
	}
	return "", false
}

func taskID(c *gin.Context) (domain.TaskID, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "task id must be a positive integer")
		return 0, false
	}
	return domain.TaskID(id), true
}

func parseDate(raw string) (time.Time, error) {
	due, err := time.Parse(domain.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: due date must use YYYY-MM-DD", domain.ErrInvalidTask)
	}
	return due, nil
}

func (s *Server) handleAnalyzeMeeting(c *gin.Context) {
	var req meetingAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "meeting_content is required")
		return
	}
	if s.deps.Meetings == nil {
		s.fail(c, domain.ErrModelUnavailable)
		return
	}

	analysis, err := s.deps.Meetings.Analyze(c.Request.Context(), domain.SessionID(strings.TrimSpace(req.SessionID)), req.MeetingContent)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, meetingAnalysisResponse{
		SessionID:        string(analysis.SessionID),
		SuggestedTasks:   toSuggestedTaskDTOs(analysis.Suggestions),
		TotalSuggestions: len(analysis.Suggestions),
		Message:          application.FormatSuggestions(analysis.Suggestions),
	})
}

func (s *Server) handleCreateSuggested(c *gin.Context) {
	var req taskSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "selection and session_id are required")
		return
	}
	if s.deps.Meetings == nil {
		s.fail(c, domain.ErrNoSuggestions)
		return
	}

	outcome, err := s.deps.Meetings.CreateSelected(c.Request.Context(), domain.SessionID(req.SessionID), req.Selection)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, taskSelectionResponse{
		Message:      application.FormatSuggestionOutcome(outcome),
		CreatedTasks: toTaskDTOs(outcome.Created),
		CreatedCount: len(outcome.Created),
		Cancelled:    outcome.Cancelled,
	})
}
