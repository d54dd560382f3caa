package handler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"payment-reconciliation-engine/config"
	"payment-reconciliation-engine/internal/adapter/http/dto"
	"payment-reconciliation-engine/internal/core/domain"
	"payment-reconciliation-engine/internal/core/ports"
	"payment-reconciliation-engine/pkg/apperror"
	"payment-reconciliation-engine/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// StatusPoller is the on-demand poll capability the handlers use for the
// redirect and manual poll endpoints.
type StatusPoller interface {
	PollNow(ctx context.Context, id string) (ports.Outcome, *domain.Transaction, error)
}

// PaymentHandler handles payment lifecycle endpoints: checkout initiation
// and the three status ingress channels.
type PaymentHandler struct {
	checkoutSvc ports.CheckoutService
	reconciler  ports.Reconciler
	poller      StatusPoller
	store       ports.TransactionStore
	frontend    config.FrontendConfig
	log         zerolog.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(
	checkoutSvc ports.CheckoutService,
	reconciler ports.Reconciler,
	poller StatusPoller,
	store ports.TransactionStore,
	frontend config.FrontendConfig,
	log zerolog.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		checkoutSvc: checkoutSvc,
		reconciler:  reconciler,
		poller:      poller,
		store:       store,
		frontend:    frontend,
		log:         log,
	}
}

// InitiateCheckout handles POST /api/v1/payments/checkout.
func (h *PaymentHandler) InitiateCheckout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.checkoutSvc.InitiateCheckout(c.Request.Context(), ports.CheckoutRequest{
		Target:      domain.Target{Type: domain.TargetType(req.TargetType), ID: req.TargetID},
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.CheckoutResponse{
		TransactionID: result.TransactionID,
		PaymentURL:    result.PaymentURL,
	})
}

// HandleWebhook handles POST /api/v1/payments/webhook, the gateway's push
// channel. Every authenticated push is acknowledged with 200 whatever the
// reconciliation outcome: a non-2xx answer makes the gateway retry, and a
// redundant or unknown report gains nothing from being retried.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	var req dto.WebhookNotification
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	outcome, err := h.reconciler.Reconcile(c.Request.Context(), req.OrderID, domain.SourceWebhook, req.Status)
	if err != nil {
		// A transient store failure is the one case where a gateway retry
		// helps, so it is not swallowed.
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WebhookAck{OrderID: req.OrderID, Outcome: string(outcome)})
}

// HandleRedirect handles GET /api/v1/payments/return, the browser coming
// back from the gateway's payment page. The redirect's status hint is
// untrusted and can at most move the transaction to PROCESSING; the
// authoritative answer comes from polling the gateway before choosing where
// to send the browser.
func (h *PaymentHandler) HandleRedirect(c *gin.Context) {
	id := c.Query("order_id")
	if id == "" {
		c.Redirect(http.StatusFound, h.frontend.FailureURL)
		return
	}

	hint := c.Query("status")
	if hint != "" {
		if _, err := h.reconciler.Reconcile(c.Request.Context(), id, domain.SourceRedirect, hint); err != nil {
			h.log.Warn().Err(err).Str("tx_id", id).Msg("redirect hint reconciliation failed")
		}
	}

	_, tx, err := h.poller.PollNow(c.Request.Context(), id)
	if err != nil || tx == nil {
		if err != nil {
			h.log.Warn().Err(err).Str("tx_id", id).Msg("redirect poll failed, sending browser to retry page")
		}
		c.Redirect(http.StatusFound, redirectURL(h.frontend.RetryURL, id, hint))
		return
	}

	switch tx.State {
	case domain.StatePaid:
		c.Redirect(http.StatusFound, redirectURL(h.frontend.SuccessURL, id, hint))
	case domain.StateFailed, domain.StateCanceled:
		c.Redirect(http.StatusFound, redirectURL(h.frontend.FailureURL, id, hint))
	default:
		// Still PENDING or PROCESSING at the gateway; the poll job settles it.
		c.Redirect(http.StatusFound, redirectURL(h.frontend.RetryURL, id, hint))
	}
}

// GetTransaction handles GET /api/v1/payments/:id.
func (h *PaymentHandler) GetTransaction(c *gin.Context) {
	id := c.Param("id")

	tx, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}
	if tx == nil {
		response.Error(c, apperror.ErrTransactionNotFound(id))
		return
	}

	response.OK(c, toTransactionResponse(tx))
}

// PollTransaction handles POST /api/v1/payments/:id/poll, the on-demand
// variant of the background poll.
func (h *PaymentHandler) PollTransaction(c *gin.Context) {
	id := c.Param("id")

	outcome, tx, err := h.poller.PollNow(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if outcome == ports.OutcomeNotFound {
		response.Error(c, apperror.ErrTransactionNotFound(id))
		return
	}

	resp := dto.PollResponse{Outcome: string(outcome)}
	if tx != nil {
		txResp := toTransactionResponse(tx)
		resp.Transaction = &txResp
	}
	response.OK(c, resp)
}

// redirectURL appends the transaction id and the gateway's raw status hint
// to the front-end target. The hint is decorative for the landing page; the
// URL choice itself already encodes the authoritative outcome.
func redirectURL(base, transactionID, hint string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("transaction_id", transactionID)
	if hint != "" {
		q.Set("status", hint)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// toTransactionResponse converts domain.Transaction to DTO.
func toTransactionResponse(tx *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:             tx.ID,
		TargetType:     string(tx.Target.Type),
		TargetID:       tx.Target.ID,
		Amount:         tx.Amount,
		Currency:       tx.Currency,
		State:          string(tx.State),
		GatewayOrderID: tx.GatewayOrderID,
		CreatedAt:      tx.CreatedAt.Format(time.RFC3339),
	}
	if tx.FinalizedAt != nil {
		s := tx.FinalizedAt.Format(time.RFC3339)
		resp.FinalizedAt = &s
	}
	for _, k := range tx.AppliedSideEffects {
		resp.AppliedSideEffects = append(resp.AppliedSideEffects, string(k))
	}
	for _, ev := range tx.Events {
		resp.Events = append(resp.Events, dto.EventResponse{
			Source:     string(ev.Source),
			RawStatus:  ev.RawStatus,
			Normalized: string(ev.Normalized),
			Accepted:   ev.Accepted,
			Outcome:    ev.Outcome,
			ObservedAt: ev.ObservedAt.Format(time.RFC3339),
		})
	}
	return resp
}
