package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/studynotion-backend/internal/http/response"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
	"github.com/yungbote/studynotion-backend/internal/services"
)

type SubSectionHandler struct {
	log               *logger.Logger
	subSectionService services.SubSectionService
	publicBaseURL     string
}

func NewSubSectionHandler(log *logger.Logger, subSectionService services.SubSectionService, publicBaseURL string) *SubSectionHandler {
	return &SubSectionHandler{
		log:               log.With("handler", "SubSectionHandler"),
		subSectionService: subSectionService,
		publicBaseURL:     publicBaseURL,
	}
}

// POST /course/addSubSection (multipart: sectionId, title, description, file "video")
func (h *SubSectionHandler) AddSubSection(c *gin.Context) {
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
	video, closeVideo, err := form.file("video")
	defer closeVideo()
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	node, err := h.subSectionService.AttachSubSection(c.Request.Context(), actorOf(c), services.SubSectionInput{
		SectionID:    sectionID,
		Title:        form.get("title"),
		Description:  form.get("description"),
		TimeDuration: form.get("timeDuration"),
		Video:        video,
	})
	if err != nil {
		logFailure(h.log, c, "AddSubSection", err)
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, services.ExternalizeSection(node, baseURL(c, h.publicBaseURL)))
}

// POST /course/updateSubSection (multipart: subSectionId, optional title,
// description, timeDuration, file "videoFile")
func (h *SubSectionHandler) UpdateSubSection(c *gin.Context) {
	form, err := readForm(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	subSectionID, err := form.uuid("subSectionId")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	video, closeVideo, err := form.file("videoFile")
	defer closeVideo()
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	patch := services.SubSectionPatch{
		Title:        form.optional("title"),
		Description:  form.optional("description"),
		TimeDuration: form.optional("timeDuration"),
	}
	node, err := h.subSectionService.UpdateSubSection(c.Request.Context(), actorOf(c), subSectionID, patch, video)
	if err != nil {
		logFailure(h.log, c, "UpdateSubSection", err)
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, services.ExternalizeSection(node, baseURL(c, h.publicBaseURL)))
}

// DELETE /course/deleteSubSection {subSectionId}
func (h *SubSectionHandler) DeleteSubSection(c *gin.Context) {
	form, err := readForm(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	subSectionID, err := form.uuid("subSectionId")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	node, err := h.subSectionService.DetachSubSection(c.Request.Context(), actorOf(c), subSectionID)
	if err != nil {
		logFailure(h.log, c, "DeleteSubSection", err)
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, services.ExternalizeSection(node, baseURL(c, h.publicBaseURL)))
}
