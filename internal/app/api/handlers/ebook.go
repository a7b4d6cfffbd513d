package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduforge/coursepay/internal/app/service/catalog"
	"github.com/eduforge/coursepay/pkg/response"
)

// @Summary      Create ebook
// @Tags         Ebook
// @Accept       json
// @Produce      json
// @Param        request body catalog.EbookInput true "Ebook payload"
// @Success      200  {object}  handlers.RespEbook
// @Security     BearerAuth
// @Router       /api/v1/ebook [post]
func ApiCreateEbook(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.EbookInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.Title == "" {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing title"))
			return
		}
		ebook, err := svc.CreateEbook(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(ebook))
	}
}

// @Summary      List ebooks
// @Tags         Ebook
// @Produce      json
// @Success      200  {object}  handlers.RespEbookList
// @Router       /api/v1/ebook [get]
func ApiListEbooks(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ebooks, err := svc.ListEbooks(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(ebooks))
	}
}

// @Summary      Get ebook
// @Tags         Ebook
// @Produce      json
// @Param        id path string true "Ebook id"
// @Success      200  {object}  handlers.RespEbook
// @Failure      404  {object}  handlers.RespError
// @Router       /api/v1/ebook/{id} [get]
func ApiGetEbook(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ebook, err := svc.GetEbook(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, catalog.ErrEbookNotFound) {
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(ebook))
	}
}

// @Summary      Delete ebook
// @Tags         Ebook
// @Produce      json
// @Param        id path string true "Ebook id"
// @Success      200  {object}  handlers.RespOK
// @Security     BearerAuth
// @Router       /api/v1/ebook/{id} [delete]
func ApiDeleteEbook(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteEbook(c.Request.Context(), c.Param("id")); err != nil {
			if errors.Is(err, catalog.ErrEbookNotFound) {
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}
