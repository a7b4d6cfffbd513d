package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/eduforge/coursepay/internal/app/api/middleware"
	"github.com/eduforge/coursepay/internal/app/service/account"
	"github.com/eduforge/coursepay/internal/app/service/entitlement"
	"github.com/eduforge/coursepay/internal/app/service/purchase"
	"github.com/eduforge/coursepay/internal/app/service/statistics"
	"github.com/eduforge/coursepay/pkg/response"
)

// @Summary      List purchases (Admin)
// @Description  Retrieves a paginated, filterable list of purchases.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body purchase.ScanPurchasesRequest true "Filters, pagination and sorting"
// @Success      200  {object}  handlers.RespListPurchases
// @Security     BearerAuth
// @Router       /api/v1/admin/list_purchases [post]
func ApiListPurchases(store *purchase.GormStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req purchase.ScanPurchasesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := store.ScanPurchases(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Get sales statistics (Admin)
// @Description  Resolves the requested statistic data items over purchase history.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.SalesStatisticRequest true "Statistic request parameters"
// @Success      200  {object}  handlers.RespSalesStatistic
// @Security     BearerAuth
// @Router       /api/v1/admin/get_sales_statistic [post]
func ApiGetSalesStatistic(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.SalesStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.GetSalesStatistic(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type SendFreeCourseRequest struct {
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`
}

// @Summary      Send free course (Admin)
// @Description  Grants a course to a user without a payment, recording an approved inner purchase.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body SendFreeCourseRequest true "User and course"
// @Success      200  {object}  handlers.RespOK
// @Security     BearerAuth
// @Router       /api/v1/admin/send_free_course [post]
func ApiSendFreeCourse(svc *entitlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SendFreeCourseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.UserID == "" || req.CourseID == "" {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user_id or course_id"))
			return
		}
		if err := svc.SendFreeCourse(c.Request.Context(), req.UserID, req.CourseID, mw.UserID(c)); err != nil {
			if errors.Is(err, entitlement.ErrEntityNotFound) {
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      List users (Admin)
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespUserList
// @Security     BearerAuth
// @Router       /api/v1/admin/list_users [get]
func ApiListUsers(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := svc.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(users))
	}
}
