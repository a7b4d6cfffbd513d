package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduforge/coursepay/internal/app/service/catalog"
	"github.com/eduforge/coursepay/pkg/response"
)

type CreateCourseRequest struct {
	catalog.CourseInput
	Subcourses []*catalog.CourseInput `json:"subcourses"`
}

// @Summary      Create course
// @Description  Creates a course, optionally with subcourses, in one transaction.
// @Tags         Course
// @Accept       json
// @Produce      json
// @Param        request body CreateCourseRequest true "Course payload"
// @Success      200  {object}  handlers.RespCourse
// @Security     BearerAuth
// @Router       /api/v1/course [post]
func ApiCreateCourse(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCourseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.Title == "" {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing title"))
			return
		}
		course, err := svc.CreateCourseWithSubcourses(c.Request.Context(), &req.CourseInput, req.Subcourses)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(course))
	}
}

// @Summary      List courses
// @Tags         Course
// @Produce      json
// @Success      200  {object}  handlers.RespCourseList
// @Router       /api/v1/course [get]
func ApiListCourses(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		courses, err := svc.ListCourses(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(courses))
	}
}

// @Summary      Get course
// @Tags         Course
// @Produce      json
// @Param        id path string true "Course id"
// @Success      200  {object}  handlers.RespCourse
// @Failure      404  {object}  handlers.RespError
// @Router       /api/v1/course/{id} [get]
func ApiGetCourse(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, err := svc.GetCourse(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, catalog.ErrCourseNotFound) {
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(course))
	}
}

// @Summary      Update course
// @Tags         Course
// @Accept       json
// @Produce      json
// @Param        id path string true "Course id"
// @Param        request body catalog.CourseInput true "Fields to update"
// @Success      200  {object}  handlers.RespCourse
// @Security     BearerAuth
// @Router       /api/v1/course/{id} [put]
func ApiUpdateCourse(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.CourseInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		course, err := svc.UpdateCourse(c.Request.Context(), c.Param("id"), &req)
		if err != nil {
			if errors.Is(err, catalog.ErrCourseNotFound) {
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(course))
	}
}

// @Summary      Delete course
// @Description  Deletes a course together with its subcourses.
// @Tags         Course
// @Produce      json
// @Param        id path string true "Course id"
// @Success      200  {object}  handlers.RespOK
// @Security     BearerAuth
// @Router       /api/v1/course/{id} [delete]
func ApiDeleteCourse(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteCourse(c.Request.Context(), c.Param("id")); err != nil {
			if errors.Is(err, catalog.ErrCourseNotFound) {
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}
