package handlers

import (
	"github.com/eduforge/coursepay/internal/app/service/account"
	"github.com/eduforge/coursepay/internal/app/service/checkout"
	"github.com/eduforge/coursepay/internal/app/service/purchase"
	"github.com/eduforge/coursepay/internal/app/service/reconciler"
	"github.com/eduforge/coursepay/internal/app/service/statistics"
	"github.com/eduforge/coursepay/internal/models"
	"github.com/eduforge/coursepay/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespError is the envelope error responses use; Data carries the detail.
type RespError struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    string                   `json:"data"`
}

// RespReconcile wraps the reconciliation result returned by webhook endpoints.
type RespReconcile struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    reconciler.Result        `json:"data"`
}

// RespCheckoutSession wraps a created checkout session.
type RespCheckoutSession struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    checkout.Session         `json:"data"`
}

// RespUser wraps a single user.
type RespUser struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.User              `json:"data"`
}

// RespUserList wraps a list of users.
type RespUserList struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.User            `json:"data"`
}

// RespLogin wraps the login result.
type RespLogin struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    account.LoginResult      `json:"data"`
}

// RespCourse wraps a single course.
type RespCourse struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Course            `json:"data"`
}

// RespCourseList wraps a list of courses.
type RespCourseList struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.Course          `json:"data"`
}

// RespEbook wraps a single ebook.
type RespEbook struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Ebook             `json:"data"`
}

// RespEbookList wraps a list of ebooks.
type RespEbookList struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.Ebook           `json:"data"`
}

// RespPurchaseList wraps a list of purchases.
type RespPurchaseList struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.Purchase        `json:"data"`
}

// RespListPurchases wraps the paginated admin purchase listing.
type RespListPurchases struct {
	Code    response.APIResponseCode       `json:"code"`
	Message string                         `json:"message"`
	Data    purchase.ScanPurchasesResponse `json:"data"`
}

// RespSalesStatistic wraps SalesStatisticResponse in the standard envelope.
type RespSalesStatistic struct {
	Code    response.APIResponseCode          `json:"code"`
	Message string                            `json:"message"`
	Data    statistics.SalesStatisticResponse `json:"data"`
}
