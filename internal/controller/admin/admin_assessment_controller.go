package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/examhub/internal/controller"
	"github.com/lshigami/examhub/internal/dto"
	"github.com/lshigami/examhub/internal/service"
)

type AdminAssessmentController struct {
	adminAssessmentService service.AdminAssessmentService
}

func NewAdminAssessmentController(adminAssessmentService service.AdminAssessmentService) *AdminAssessmentController {
	return &AdminAssessmentController{adminAssessmentService: adminAssessmentService}
}

func (c *AdminAssessmentController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/admin/assessments", c.CreateAssessment)
}

// CreateAssessment godoc
// @Summary (Admin) Create a complete assessment
// @Description Creates an assessment with its arguments, questions, options and answer keys.
// @Tags Admin - Assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assessment body dto.AssessmentCreateDTO true "Assessment with all its questions"
// @Success 201 {object} dto.AssessmentResponse "Assessment created"
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/assessments [post]
func (c *AdminAssessmentController) CreateAssessment(ctx *gin.Context) {
	var req dto.AssessmentCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BadRequest(ctx, "Admin CreateAssessment", err)
		return
	}
	req.RequesterID = controller.CallerID(ctx)

	resp, err := c.adminAssessmentService.CreateAssessment(ctx.Request.Context(), req)
	if err != nil {
		controller.RenderError(ctx, "Admin CreateAssessment", err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}
