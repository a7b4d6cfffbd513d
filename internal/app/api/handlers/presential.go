package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduforge/coursepay/internal/app/service/catalog"
	"github.com/eduforge/coursepay/pkg/response"
)

// @Summary      Create in-person course
// @Description  Creates an in-person course offering with venue and staffing details.
// @Tags         Course
// @Accept       json
// @Produce      json
// @Param        request body catalog.PresentialCourseInput true "Course and presential details"
// @Success      200  {object}  handlers.RespCourse
// @Security     BearerAuth
// @Router       /api/v1/presential_course [post]
func ApiCreatePresentialCourse(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.PresentialCourseInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.Title == "" {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing title"))
			return
		}
		course, err := svc.CreatePresentialCourse(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(course))
	}
}

// @Summary      List in-person courses
// @Tags         Course
// @Produce      json
// @Success      200  {object}  handlers.RespCourseList
// @Router       /api/v1/presential_course [get]
func ApiListPresentialCourses(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		courses, err := svc.ListPresentialCourses(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(courses))
	}
}

// @Summary      Get in-person course
// @Tags         Course
// @Produce      json
// @Param        id path string true "Course id"
// @Success      200  {object}  handlers.RespCourse
// @Failure      404  {object}  handlers.RespError
// @Router       /api/v1/presential_course/{id} [get]
func ApiGetPresentialCourse(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, err := svc.GetPresentialCourse(c.Request.Context(), c.Param("id"))
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

// @Summary      Update in-person course
// @Tags         Course
// @Accept       json
// @Produce      json
// @Param        id path string true "Course id"
// @Param        request body catalog.PresentialCourseInput true "Fields to update"
// @Success      200  {object}  handlers.RespCourse
// @Security     BearerAuth
// @Router       /api/v1/presential_course/{id} [put]
func ApiUpdatePresentialCourse(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.PresentialCourseInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		course, err := svc.UpdatePresentialCourse(c.Request.Context(), c.Param("id"), &req)
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
