package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/examhub/internal/controller"
	"github.com/lshigami/examhub/internal/dto"
	"github.com/lshigami/examhub/internal/service"
	"github.com/rs/zerolog/log"
)

type AttemptController struct {
	attemptService    service.AttemptService
	resultService     service.ResultService
	assessmentService service.AssessmentService
}

func NewAttemptController(as service.AttemptService, rs service.ResultService, ass service.AssessmentService) *AttemptController {
	return &AttemptController{
		attemptService:    as,
		resultService:     rs,
		assessmentService: ass,
	}
}

// RegisterRoutes mounts the student-facing routes on an authenticated group.
func (c *AttemptController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/assessments/:id", c.GetAssessment)

	attempts := rg.Group("/attempts")
	attempts.POST("", c.StartAttempt)
	attempts.GET("", c.ListAttempts)
	attempts.POST("/:id/answers", c.SubmitAnswer)
	attempts.POST("/:id/submit", c.SubmitAttempt)
	attempts.GET("/:id/results", c.GetAttemptResults)
}

// GetAssessment godoc
// @Summary Get an assessment to take
// @Description Returns the assessment with its arguments, questions and options. Answer keys are never included.
// @Tags Attempts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Success 200 {object} dto.AssessmentResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid assessment ID"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /assessments/{id} [get]
func (c *AttemptController) GetAssessment(ctx *gin.Context) {
	resp, err := c.assessmentService.GetAssessment(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		controller.RenderError(ctx, "GetAssessment", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// StartAttempt godoc
// @Summary Start an attempt
// @Description Opens an IN_PROGRESS attempt on the assessment, or returns the one already open.
// @Tags Attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StartAttemptRequest true "Assessment to attempt"
// @Success 201 {object} dto.StartAttemptResponse "Attempt created"
// @Success 200 {object} dto.StartAttemptResponse "Existing in-progress attempt"
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "User or assessment not found"
// @Router /attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	var req dto.StartAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BadRequest(ctx, "StartAttempt", err)
		return
	}
	req.UserID = controller.CallerID(ctx)

	resp, err := c.attemptService.StartAttempt(ctx.Request.Context(), req)
	if err != nil {
		controller.RenderError(ctx, "StartAttempt", err)
		return
	}
	status := http.StatusOK
	if resp.IsNew {
		status = http.StatusCreated
	}
	log.Info().Str("attemptID", resp.Attempt.ID).Bool("isNew", resp.IsNew).Msg("StartAttempt: Attempt ready")
	ctx.JSON(status, resp)
}

// SubmitAnswer godoc
// @Summary Answer a question
// @Description Records or replaces the answer to one question. Send selected_option_id for MULTIPLE_CHOICE or text_answer for OPEN.
// @Tags Attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attempt ID"
// @Param request body dto.SubmitAnswerRequest true "Answer"
// @Success 200 {object} dto.AnswerResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 403 {object} dto.ErrorResponse "Not the owner of the attempt"
// @Failure 404 {object} dto.ErrorResponse "Attempt or question not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt is not in progress"
// @Failure 422 {object} dto.ErrorResponse "Answer does not match the question type"
// @Router /attempts/{id}/answers [post]
func (c *AttemptController) SubmitAnswer(ctx *gin.Context) {
	var req dto.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BadRequest(ctx, "SubmitAnswer", err)
		return
	}
	req.AttemptID = ctx.Param("id")
	req.UserID = controller.CallerID(ctx)

	resp, err := c.attemptService.SubmitAnswer(ctx.Request.Context(), req)
	if err != nil {
		controller.RenderError(ctx, "SubmitAnswer", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SubmitAttempt godoc
// @Summary Submit an attempt
// @Description Closes the attempt. Attempts without OPEN answers are graded immediately.
// @Tags Attempts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attempt ID"
// @Success 200 {object} dto.SubmitAttemptResponse
// @Failure 403 {object} dto.ErrorResponse "Not the owner of the attempt"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt is not in progress or has expired"
// @Failure 422 {object} dto.ErrorResponse "No answers were recorded"
// @Router /attempts/{id}/submit [post]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	req := dto.SubmitAttemptRequest{
		AttemptID: ctx.Param("id"),
		UserID:    controller.CallerID(ctx),
	}
	resp, err := c.attemptService.SubmitAttempt(ctx.Request.Context(), req)
	if err != nil {
		controller.RenderError(ctx, "SubmitAttempt", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetAttemptResults godoc
// @Summary Get attempt results
// @Description Score, per-answer details and, for SIMULADO, per-argument breakdown. Visible to the owner, tutors and admins.
// @Tags Attempts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attempt ID"
// @Success 200 {object} dto.AttemptResultsResponse
// @Failure 403 {object} dto.ErrorResponse "Not allowed to view these results"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt has not been submitted"
// @Router /attempts/{id}/results [get]
func (c *AttemptController) GetAttemptResults(ctx *gin.Context) {
	req := dto.AttemptResultsRequest{
		AttemptID:   ctx.Param("id"),
		RequesterID: controller.CallerID(ctx),
	}
	resp, err := c.resultService.GetAttemptResults(ctx.Request.Context(), req)
	if err != nil {
		controller.RenderError(ctx, "GetAttemptResults", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListAttempts godoc
// @Summary List attempts
// @Description Students only see their own attempts. Tutors and admins may filter by user.
// @Tags Attempts
// @Produce json
// @Security BearerAuth
// @Param status query string false "IN_PROGRESS, SUBMITTED, GRADING or GRADED"
// @Param user_id query string false "Owner of the attempts"
// @Param assessment_id query string false "Assessment"
// @Param sort_by query string false "startedAt, submittedAt or score" default(startedAt)
// @Param sort_order query string false "asc or desc" default(desc)
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size, at most 100" default(10)
// @Success 200 {object} dto.AttemptListResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 403 {object} dto.ErrorResponse "Students cannot list other users' attempts"
// @Router /attempts [get]
func (c *AttemptController) ListAttempts(ctx *gin.Context) {
	var req dto.ListAttemptsRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		controller.BadRequest(ctx, "ListAttempts", err)
		return
	}
	req.RequesterID = controller.CallerID(ctx)

	resp, err := c.attemptService.ListAttempts(ctx.Request.Context(), req)
	if err != nil {
		controller.RenderError(ctx, "ListAttempts", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
