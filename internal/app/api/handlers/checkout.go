package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/eduforge/coursepay/internal/app/api/middleware"
	"github.com/eduforge/coursepay/internal/app/service/checkout"
	"github.com/eduforge/coursepay/pkg/response"
	"github.com/eduforge/coursepay/pkg/types"
)

type CreateCheckoutRequest struct {
	CourseID string                `json:"course_id"`
	Provider types.PaymentProvider `json:"provider"`
}

// @Summary      Create checkout session
// @Description  Creates a provider-hosted payment session for a course and returns the redirect URL.
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        request body CreateCheckoutRequest true "Course and payment provider"
// @Success      200  {object}  handlers.RespCheckoutSession
// @Security     BearerAuth
// @Router       /api/v1/checkout [post]
func ApiCreateCheckout(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.CourseID == "" {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing course_id"))
			return
		}

		session, err := svc.CreateSession(c.Request.Context(), mw.UserID(c), req.CourseID, req.Provider)
		if err != nil {
			switch {
			case errors.Is(err, checkout.ErrCourseNotFound):
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
			case errors.Is(err, checkout.ErrUnsupportedProvider):
				c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			default:
				c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(session))
	}
}

func RegisterCheckoutRoutes(r gin.IRouter, svc *checkout.Service) {
	r.POST("/checkout", ApiCreateCheckout(svc))
}
