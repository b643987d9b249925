package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/studynotion-backend/internal/data/repos"
	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/http/response"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
	"github.com/yungbote/studynotion-backend/internal/services"
)

type CourseHandler struct {
	log           *logger.Logger
	courseService services.CourseService
	publicBaseURL string
}

func NewCourseHandler(log *logger.Logger, courseService services.CourseService, publicBaseURL string) *CourseHandler {
	return &CourseHandler{
		log:           log.With("handler", "CourseHandler"),
		courseService: courseService,
		publicBaseURL: publicBaseURL,
	}
}

// GET /course/getAllCourses
func (h *CourseHandler) GetAllCourses(c *gin.Context) {
	courses, err := h.courseService.ListCourses(c.Request.Context(), repos.CourseFilter{Status: types.CourseStatusPublished})
	if err != nil {
		h.fail(c, "GetAllCourses", err)
		return
	}
	response.RespondOK(c, services.ExternalizeCourses(courses, baseURL(c, h.publicBaseURL)))
}

// GET /course/getInstructorCourses
func (h *CourseHandler) GetInstructorCourses(c *gin.Context) {
	courses, err := h.courseService.ListInstructorCourses(c.Request.Context(), actorOf(c))
	if err != nil {
		h.fail(c, "GetInstructorCourses", err)
		return
	}
	response.RespondOK(c, services.ExternalizeCourses(courses, baseURL(c, h.publicBaseURL)))
}

// GET /course/:id
func (h *CourseHandler) GetCourseDetails(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	details, err := h.courseService.GetCourseDetails(c.Request.Context(), actorOf(c), id)
	if err != nil {
		h.fail(c, "GetCourseDetails", err)
		return
	}
	response.RespondOK(c, h.externalize(c, details))
}

// GET /course/:id/full
func (h *CourseHandler) GetFullCourseDetails(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	details, err := h.courseService.GetFullCourseDetails(c.Request.Context(), actorOf(c), id)
	if err != nil {
		h.fail(c, "GetFullCourseDetails", err)
		return
	}
	response.RespondOK(c, h.externalize(c, details))
}

func (h *CourseHandler) externalize(c *gin.Context, d *services.CourseDetails) *services.CourseDetails {
	out := *d
	out.Tree = services.Externalize(d.Tree, baseURL(c, h.publicBaseURL))
	return &out
}

// POST /course/createCourse (multipart, file "thumbnail")
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	form, err := readForm(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	price, err := form.price("price")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	in := services.CreateCourseInput{
		CourseName:        form.get("courseName"),
		CourseDescription: form.get("courseDescription"),
		WhatYouWillLearn:  form.get("whatYouWillLearn"),
		Price:             price,
		Tag:               form.get("tag"),
		Instructions:      form.get("instructions"),
		Status:            form.get("status"),
	}
	if raw := form.get("category"); raw != "" {
		if in.CategoryID, err = form.uuid("category"); err != nil {
			response.RespondServiceError(c, err)
			return
		}
	}
	thumb, closeThumb, err := form.file("thumbnail")
	defer closeThumb()
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	in.Thumbnail = thumb

	course, err := h.courseService.CreateCourse(c.Request.Context(), actorOf(c), in)
	if err != nil {
		h.fail(c, "CreateCourse", err)
		return
	}
	out := *course
	out.Thumbnail.URL = services.ExternalizeURL(out.Thumbnail.URL, baseURL(c, h.publicBaseURL))
	response.RespondOK(c, &out)
}

// POST /course/editCourse (multipart, optional file "thumbnailImage")
func (h *CourseHandler) EditCourse(c *gin.Context) {
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
	patch := services.CoursePatch{
		CourseName:        form.optional("courseName"),
		CourseDescription: form.optional("courseDescription"),
		WhatYouWillLearn:  form.optional("whatYouWillLearn"),
		Tag:               form.optional("tag"),
		Instructions:      form.optional("instructions"),
		Status:            form.optional("status"),
	}
	if patch.Price, err = form.price("price"); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if form.optional("category") != nil {
		id, err := form.uuid("category")
		if err != nil {
			response.RespondServiceError(c, err)
			return
		}
		patch.CategoryID = &id
	}
	thumb, closeThumb, err := form.file("thumbnailImage")
	defer closeThumb()
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}

	tree, err := h.courseService.EditCourse(c.Request.Context(), actorOf(c), courseID, patch, thumb)
	if err != nil {
		h.fail(c, "EditCourse", err)
		return
	}
	response.RespondOK(c, services.Externalize(tree, baseURL(c, h.publicBaseURL)))
}

// DELETE /course/deleteCourse
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
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
	report, err := h.courseService.DeleteCourse(c.Request.Context(), actorOf(c), courseID)
	if err != nil {
		h.fail(c, "DeleteCourse", err)
		return
	}
	response.RespondOK(c, report)
}

func (h *CourseHandler) fail(c *gin.Context, op string, err error) {
	logFailure(h.log, c, op, err)
	response.RespondServiceError(c, err)
}
