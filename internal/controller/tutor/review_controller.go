package tutor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/examhub/internal/controller"
	"github.com/lshigami/examhub/internal/dto"
	"github.com/lshigami/examhub/internal/service"
)

type ReviewController struct {
	reviewService    service.ReviewService
	assistantService service.ReviewAssistantService
}

func NewReviewController(rs service.ReviewService, as service.ReviewAssistantService) *ReviewController {
	return &ReviewController{reviewService: rs, assistantService: as}
}

func (c *ReviewController) RegisterRoutes(rg *gin.RouterGroup) {
	reviews := rg.Group("/reviews")
	reviews.GET("/pending", c.ListPendingReviews)
	reviews.POST("/answers/:id", c.ReviewOpenAnswer)
	reviews.GET("/answers/:id/suggestion", c.SuggestReview)
}

// ReviewOpenAnswer godoc
// @Summary (Tutor) Review an open answer
// @Description Records a write-once verdict on an OPEN answer. The last review of an attempt grades it.
// @Tags Tutor - Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attempt answer ID"
// @Param request body dto.ReviewAnswerRequest true "Verdict and optional comment"
// @Success 200 {object} dto.ReviewAnswerResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 403 {object} dto.ErrorResponse "Tutor or admin role required"
// @Failure 404 {object} dto.ErrorResponse "Answer not found"
// @Failure 409 {object} dto.ErrorResponse "Answer cannot be reviewed"
// @Router /reviews/answers/{id} [post]
func (c *ReviewController) ReviewOpenAnswer(ctx *gin.Context) {
	var req dto.ReviewAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BadRequest(ctx, "ReviewOpenAnswer", err)
		return
	}
	req.AttemptAnswerID = ctx.Param("id")
	req.ReviewerID = controller.CallerID(ctx)

	resp, err := c.reviewService.ReviewOpenAnswer(ctx.Request.Context(), req)
	if err != nil {
		controller.RenderError(ctx, "ReviewOpenAnswer", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListPendingReviews godoc
// @Summary (Tutor) List attempts awaiting review
// @Tags Tutor - Reviews
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size, at most 100" default(10)
// @Success 200 {object} dto.PendingReviewListResponse
// @Failure 403 {object} dto.ErrorResponse "Tutor or admin role required"
// @Router /reviews/pending [get]
func (c *ReviewController) ListPendingReviews(ctx *gin.Context) {
	var req dto.ListPendingReviewsRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		controller.BadRequest(ctx, "ListPendingReviews", err)
		return
	}
	req.ReviewerID = controller.CallerID(ctx)

	resp, err := c.reviewService.ListPendingReviews(ctx.Request.Context(), req)
	if err != nil {
		controller.RenderError(ctx, "ListPendingReviews", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SuggestReview godoc
// @Summary (Tutor) Draft a review with Gemini
// @Description Suggests a verdict and comment for an OPEN answer. Nothing is saved.
// @Tags Tutor - Reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attempt answer ID"
// @Success 200 {object} dto.ReviewSuggestionResponse
// @Failure 403 {object} dto.ErrorResponse "Tutor or admin role required"
// @Failure 409 {object} dto.ErrorResponse "Answer cannot be reviewed"
// @Failure 502 {object} dto.ErrorResponse "Language model error"
// @Failure 503 {object} dto.ErrorResponse "Language model not configured"
// @Router /reviews/answers/{id}/suggestion [get]
func (c *ReviewController) SuggestReview(ctx *gin.Context) {
	req := dto.ReviewSuggestionRequest{
		AttemptAnswerID: ctx.Param("id"),
		ReviewerID:      controller.CallerID(ctx),
	}
	resp, err := c.assistantService.SuggestReview(ctx.Request.Context(), req)
	if err != nil {
		controller.RenderError(ctx, "SuggestReview", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
