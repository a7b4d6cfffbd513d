package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/eduforge/coursepay/internal/app/api/middleware"
	"github.com/eduforge/coursepay/internal/app/service/account"
	"github.com/eduforge/coursepay/internal/app/service/entitlement"
	"github.com/eduforge/coursepay/internal/app/service/purchase"
	"github.com/eduforge/coursepay/pkg/response"
)

// @Summary      Register
// @Description  Creates a user account. Role defaults to student.
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        request body account.RegisterInput true "Registration payload"
// @Success      200  {object}  handlers.RespUser
// @Failure      400  {object}  handlers.RespError
// @Router       /api/v1/user/register [post]
func ApiRegister(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req account.RegisterInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		user, err := svc.Register(c.Request.Context(), &req)
		if err != nil {
			switch {
			case errors.Is(err, account.ErrEmailTaken), errors.Is(err, account.ErrCPFTaken):
				c.JSON(http.StatusConflict, response.ErrorT[any](response.APIResponseCodeConflict, err.Error()))
			default:
				c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(user))
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// @Summary      Login
// @Description  Exchanges credentials for a bearer token.
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200  {object}  handlers.RespLogin
// @Failure      401  {object}  handlers.RespError
// @Router       /api/v1/user/login [post]
func ApiLogin(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, account.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// @Summary      Change password
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        request body ChangePasswordRequest true "Current and new password"
// @Success      200  {object}  handlers.RespOK
// @Security     BearerAuth
// @Router       /api/v1/user/change_password [post]
func ApiChangePassword(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChangePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		err := svc.ChangePassword(c.Request.Context(), mw.UserID(c), req.CurrentPassword, req.NewPassword)
		if err != nil {
			switch {
			case errors.Is(err, account.ErrInvalidCredentials):
				c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, err.Error()))
			case errors.Is(err, account.ErrWeakPassword):
				c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			default:
				c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Current user
// @Tags         User
// @Produce      json
// @Success      200  {object}  handlers.RespUser
// @Security     BearerAuth
// @Router       /api/v1/user/me [get]
func ApiMe(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := svc.GetByID(c.Request.Context(), mw.UserID(c))
		if err != nil {
			if errors.Is(err, account.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(user))
	}
}

// @Summary      My courses
// @Description  Lists the courses the authenticated user is entitled to.
// @Tags         User
// @Produce      json
// @Success      200  {object}  handlers.RespCourseList
// @Security     BearerAuth
// @Router       /api/v1/user/courses [get]
func ApiMyCourses(svc *entitlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		courses, err := svc.ListUserCourses(c.Request.Context(), mw.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(courses))
	}
}

// @Summary      My purchases
// @Description  Lists the authenticated user's purchases, newest first.
// @Tags         User
// @Produce      json
// @Success      200  {object}  handlers.RespPurchaseList
// @Security     BearerAuth
// @Router       /api/v1/user/purchases [get]
func ApiMyPurchases(store *purchase.GormStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := store.ListByUser(c.Request.Context(), mw.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(rows))
	}
}
