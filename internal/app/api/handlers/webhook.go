package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eduforge/coursepay/internal/app/service/notification_log"
	"github.com/eduforge/coursepay/internal/app/service/paymentevent"
	"github.com/eduforge/coursepay/internal/app/service/reconciler"
	"github.com/eduforge/coursepay/internal/models"
	"github.com/eduforge/coursepay/pkg/logctx"
	"github.com/eduforge/coursepay/pkg/response"
	"github.com/eduforge/coursepay/pkg/types"
)

// WebhookHandler receives provider payment notifications, verifies them and
// hands the resulting events to the reconciler. Every delivery is logged to
// the notification log regardless of outcome.
type WebhookHandler struct {
	verifiers  map[types.PaymentProvider]paymentevent.Verifier
	reconciler *reconciler.Reconciler
	nlog       *notification_log.Service
	Logger     *zap.SugaredLogger
}

func NewWebhookHandler(stripe *paymentevent.StripeVerifier, mp *paymentevent.MercadoPagoVerifier, rec *reconciler.Reconciler, nlog *notification_log.Service, log *zap.SugaredLogger) *WebhookHandler {
	byProvider := map[types.PaymentProvider]paymentevent.Verifier{
		stripe.Provider(): stripe,
		mp.Provider():     mp,
	}
	return &WebhookHandler{verifiers: byProvider, reconciler: rec, nlog: nlog, Logger: log}
}

// @Summary      Stripe webhook
// @Description  Handles Stripe events. The request body must carry a valid Stripe-Signature header.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Success      200  {object}  handlers.RespReconcile
// @Failure      400  {object}  handlers.RespError
// @Router       /api/v1/payment/webhook/stripe [post]
func (h *WebhookHandler) ApiStripeWebhook(c *gin.Context) {
	h.handle(c, types.PaymentProviderStripe)
}

// @Summary      Mercado Pago webhook
// @Description  Handles Mercado Pago payment notifications. The payment is re-fetched from the Mercado Pago API before any state change.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Success      200  {object}  handlers.RespReconcile
// @Failure      400  {object}  handlers.RespError
// @Failure      502  {object}  handlers.RespError
// @Router       /api/v1/payment/webhook/mercadopago [post]
func (h *WebhookHandler) ApiMercadoPagoWebhook(c *gin.Context) {
	h.handle(c, types.PaymentProviderMercadoPago)
}

func (h *WebhookHandler) handle(c *gin.Context, provider types.PaymentProvider) {
	log := logctx.FromGin(c, h.Logger)
	log.Infow("webhook_received", "provider", provider)

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "unreadable body"))
		return
	}

	traceID, _ := c.Get("traceID")
	logID := h.nlog.Record(c.Request.Context(), string(provider), toString(traceID), payload)

	verifier, ok := h.verifiers[provider]
	if !ok {
		c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "unsupported provider"))
		return
	}

	event, err := verifier.Verify(c.Request.Context(), payload, c.Request.Header)
	if err != nil {
		h.fail(c, logID, "", err)
		return
	}
	res, err := h.reconciler.Reconcile(c.Request.Context(), event)
	if err != nil {
		h.fail(c, logID, event.TransactionID, err)
		return
	}

	logStatus := models.PaymentNotificationLogStatusHandled
	if res.Outcome == reconciler.OutcomeConflict {
		logStatus = models.PaymentNotificationLogStatusConflict
	}
	h.nlog.Settle(c.Request.Context(), logID, event.TransactionID, logStatus, res)

	if res.GrantErr != nil {
		// the purchase stays approved; the 500 makes the provider redeliver,
		// and the replay retries the grant while the entitlement is missing
		c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "course grant failed"))
		return
	}

	log.Infow("webhook_handled",
		"provider", provider,
		"transaction_id", event.TransactionID,
		"outcome", res.Outcome,
	)
	c.JSON(http.StatusOK, response.OKT(res))
}

// fail maps verification and reconciliation errors onto HTTP statuses.
// Permanent payload defects get 4xx so providers stop redelivering; transient
// provider-query failures get 502 so they retry.
func (h *WebhookHandler) fail(c *gin.Context, logID, transactionID string, err error) {
	logctx.FromGin(c, h.Logger).Errorw("webhook_handle_error", "error", err.Error())
	h.nlog.Settle(c.Request.Context(), logID, transactionID,
		models.PaymentNotificationLogStatusHandleFailed, map[string]string{"error": err.Error()})

	switch {
	case errors.Is(err, paymentevent.ErrInvalidPayload),
		errors.Is(err, paymentevent.ErrUnresolvableReference),
		errors.Is(err, reconciler.ErrUnknownProviderStatus):
		c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
	case errors.Is(err, paymentevent.ErrProviderQuery):
		c.JSON(http.StatusBadGateway, response.ErrorT[any](response.APIResponseCodeUpstream, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
	}
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

func RegisterWebhookRoutes(r gin.IRouter, h *WebhookHandler) {
	r.POST("/stripe", h.ApiStripeWebhook)
	r.POST("/mercadopago", h.ApiMercadoPagoWebhook)
}
