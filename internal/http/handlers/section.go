package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/studynotion-backend/internal/http/response"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
	"github.com/yungbote/studynotion-backend/internal/services"
)

type SectionHandler struct {
	log            *logger.Logger
	sectionService services.SectionService
	publicBaseURL  string
}

func NewSectionHandler(log *logger.Logger, sectionService services.SectionService, publicBaseURL string) *SectionHandler {
	return &SectionHandler{
		log:            log.With("handler", "SectionHandler"),
		sectionService: sectionService,
		publicBaseURL:  publicBaseURL,
	}
}

// POST /course/addSection {sectionName, courseId}
func (h *SectionHandler) AddSection(c *gin.Context) {
	form, err := readForm(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	courseID, err := form.uuid("courseId")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	tree, err := h.sectionService.CreateSection(c.Request.Context(), actorOf(c), courseID, form.get("sectionName"))
	if err != nil {
		logFailure(h.log, c, "AddSection", err)
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, services.Externalize(tree, baseURL(c, h.publicBaseURL)))
}

// POST /course/updateSection {sectionName, sectionId}
func (h *SectionHandler) UpdateSection(c *gin.Context) {
	form, err := readForm(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	sectionID, err := form.uuid("sectionId")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	patch := services.SectionPatch{SectionName: form.optional("sectionName")}
	tree, err := h.sectionService.UpdateSection(c.Request.Context(), actorOf(c), sectionID, patch)
	if err != nil {
		logFailure(h.log, c, "UpdateSection", err)
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, services.Externalize(tree, baseURL(c, h.publicBaseURL)))
}

// DELETE /course/deleteSection {sectionId}
func (h *SectionHandler) DeleteSection(c *gin.Context) {
	form, err := readForm(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	sectionID, err := form.uuid("sectionId")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	report, err := h.sectionService.DeleteSection(c.Request.Context(), actorOf(c), sectionID)
	if err != nil {
		logFailure(h.log, c, "DeleteSection", err)
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, report)
}
