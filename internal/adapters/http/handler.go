package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bookloop/order-escrow-service/internal/application"
	"github.com/bookloop/order-escrow-service/internal/contracts"
	"github.com/bookloop/order-escrow-service/internal/domain"
)

type Handler struct{ service *application.Service }

func NewHandler(service *application.Service) *Handler { return &Handler{service: service} }

func (h *Handler) mint(w http.ResponseWriter, r *http.Request) {
	var req contracts.MintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil { writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context())); return }
	actor := actorFromContext(r.Context())
	balance, err := h.service.Mint(r.Context(), actor, application.MintInput{AccountID: req.AccountID, Amount: req.Amount})
	if err != nil { code, c := mapDomainError(err); writeError(w, code, c, err.Error(), requestIDFromContext(r.Context())); return }
	writeSuccess(w, http.StatusOK, "minted", contracts.BalanceResponse{AccountID: req.AccountID, Balance: balance})
}
func (h *Handler) setFeeRecipient(w http.ResponseWriter, r *http.Request) {
	var req contracts.SetFeeRecipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil { writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context())); return }
	actor := actorFromContext(r.Context())
	if err := h.service.SetFeeRecipient(r.Context(), actor, req.AccountID); err != nil { code, c := mapDomainError(err); writeError(w, code, c, err.Error(), requestIDFromContext(r.Context())); return }
	writeSuccess(w, http.StatusOK, "fee recipient updated", contracts.FeeRecipientResponse{AccountID: req.AccountID})
}
func (h *Handler) getFeeRecipient(w http.ResponseWriter, r *http.Request) {
	accountID, err := h.service.FeeRecipient(r.Context())
	if err != nil { code, c := mapDomainError(err); writeError(w, code, c, err.Error(), requestIDFromContext(r.Context())); return }
	writeSuccess(w, http.StatusOK, "fee recipient", contracts.FeeRecipientResponse{AccountID: accountID})
}
func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	var req contracts.ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil { writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context())); return }
	actor := actorFromContext(r.Context())
	if err := h.service.Approve(r.Context(), actor, application.ApproveInput{Owner: actor.SubjectID, Spender: req.Spender, Amount: req.Amount}); err != nil { code, c := mapDomainError(err); writeError(w, code, c, err.Error(), requestIDFromContext(r.Context())); return }
	writeSuccess(w, http.StatusOK, "allowance set", contracts.AllowanceResponse{Owner: actor.SubjectID, Spender: req.Spender, Amount: req.Amount})
}
func (h *Handler) allowance(w http.ResponseWriter, r *http.Request) {
	owner := strings.TrimSpace(r.URL.Query().Get("owner"))
	spender := strings.TrimSpace(r.URL.Query().Get("spender"))
	amount, err := h.service.Allowance(r.Context(), owner, spender)
	if err != nil { code, c := mapDomainError(err); writeError(w, code, c, err.Error(), requestIDFromContext(r.Context())); return }
	writeSuccess(w, http.StatusOK, "allowance", contracts.AllowanceResponse{Owner: owner, Spender: spender, Amount: amount})
}
func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	var req contracts.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil { writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context())); return }
	actor := actorFromContext(r.Context())
	if err := h.service.Transfer(r.Context(), actor, application.TransferInput{From: actor.SubjectID, To: req.To, Amount: req.Amount}); err != nil { code, c := mapDomainError(err); writeError(w, code, c, err.Error(), requestIDFromContext(r.Context())); return }
	balance, err := h.service.BalanceOf(r.Context(), actor.SubjectID)
	if err != nil { code, c := mapDomainError(err); writeError(w, code, c, err.Error(), requestIDFromContext(r.Context())); return }
	writeSuccess(w, http.StatusOK, "transfer processed", contracts.BalanceResponse{AccountID: actor.SubjectID, Balance: balance})
}
func (h *Handler) pullTransfer(w http.ResponseWriter, r *http.Request) {
	var req contracts.PullTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil { writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context())); return }
	actor := actorFromContext(r.Context())
	if err := h.service.TransferFrom(r.Context(), actor, req.Owner, req.To, req.Amount); err != nil { code, c := mapDomainError(err); writeError(w, code, c, err.Error(), requestIDFromContext(r.Context())); return }
	balance, err := h.service.BalanceOf(r.Context(), req.Owner)
	if err != nil { code, c := mapDomainError(err); writeError(w, code, c, err.Error(), requestIDFromContext(r.Context())); return }
	writeSuccess(w, http.StatusOK, "pull transfer processed", contracts.BalanceResponse{AccountID: req.Owner, Balance: balance})
}
func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	accountID := strings.TrimSpace(r.URL.Query().Get("account_id"))
	balance, err := h.service.BalanceOf(r.Context(), accountID)
	if err != nil { code, c := mapDomainError(err); writeError(w, code, c, err.Error(), requestIDFromContext(r.Context())); return }
	writeSuccess(w, http.StatusOK, "balance", contracts.BalanceResponse{AccountID: accountID, Balance: balance})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req contracts.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil { writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context())); return }
	actor := actorFromContext(r.Context())
	order, err := h.service.CreateOrder(r.Context(), actor, application.CreateOrderInput{Provider: req.Provider, Consumer: req.Consumer, RecordID: req.RecordID, ItemID: req.ItemID, PriceTotal: req.PriceTotal, StartTime: time.Unix(req.StartTime, 0).UTC(), EndTime: time.Unix(req.EndTime, 0).UTC()})
	if err != nil { code, c := mapDomainError(err); writeError(w, code, c, err.Error(), requestIDFromContext(r.Context())); return }
	resp := toOrderResponse(order); resp.EventDelivery = "pending"
	writeSuccess(w, http.StatusCreated, "order created", resp)
}
func (h *Handler) setPolicy(w http.ResponseWriter, r *http.Request) {
	var req contracts.SetPolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil { writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context())); return }
	actor := actorFromContext(r.Context())
	order, err := h.service.SetCancellationPolicy(r.Context(), actor, application.SetPolicyInput{OrderID: req.OrderID, Option: req.Option, NoticeWindow: time.Duration(req.NoticeDays) * 24 * time.Hour})
	if err != nil { code, c := mapDomainError(err); writeError(w, code, c, err.Error(), requestIDFromContext(r.Context())); return }
	writeSuccess(w, http.StatusOK, "policy updated", toOrderResponse(order))
}
func (h *Handler) release(w http.ResponseWriter, r *http.Request) {
	var req contracts.OrderActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil { writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context())); return }
	actor := actorFromContext(r.Context())
	order, err := h.service.Release(r.Context(), actor, req.OrderID)
	if err != nil { code, c := mapDomainError(err); writeError(w, code, c, err.Error(), requestIDFromContext(r.Context())); return }
	resp := toOrderResponse(order); resp.EventDelivery = "pending"
	writeSuccess(w, http.StatusOK, "release processed", resp)
}
func (h *Handler) payout(w http.ResponseWriter, r *http.Request) {
	var req contracts.OrderActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil { writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context())); return }
	actor := actorFromContext(r.Context())
	order, err := h.service.Payout(r.Context(), actor, req.OrderID)
	if err != nil { code, c := mapDomainError(err); writeError(w, code, c, err.Error(), requestIDFromContext(r.Context())); return }
	resp := toOrderResponse(order); resp.EventDelivery = "pending"
	writeSuccess(w, http.StatusOK, "payout processed", resp)
}
func (h *Handler) cancelHold(w http.ResponseWriter, r *http.Request) {
	var req contracts.OrderActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil { writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context())); return }
	actor := actorFromContext(r.Context())
	order, err := h.service.CancelHold(r.Context(), actor, req.OrderID)
	if err != nil { code, c := mapDomainError(err); writeError(w, code, c, err.Error(), requestIDFromContext(r.Context())); return }
	resp := toOrderResponse(order); resp.EventDelivery = "pending"
	writeSuccess(w, http.StatusOK, "hold cancelled", resp)
}
func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	var req contracts.OrderActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil { writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context())); return }
	actor := actorFromContext(r.Context())
	order, err := h.service.CancelOrder(r.Context(), actor, req.OrderID)
	if err != nil { code, c := mapDomainError(err); writeError(w, code, c, err.Error(), requestIDFromContext(r.Context())); return }
	resp := toOrderResponse(order); resp.EventDelivery = "pending"
	writeSuccess(w, http.StatusOK, "order cancelled", resp)
}
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseUint(strings.TrimSpace(r.URL.Query().Get("order_id")), 10, 64)
	if err != nil { writeError(w, http.StatusBadRequest, "invalid_input", "invalid order_id", requestIDFromContext(r.Context())); return }
	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil { code, c := mapDomainError(err); writeError(w, code, c, err.Error(), requestIDFromContext(r.Context())); return }
	writeSuccess(w, http.StatusOK, "order", toOrderResponse(order))
}
func (h *Handler) orderCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.OrderCount(r.Context())
	if err != nil { code, c := mapDomainError(err); writeError(w, code, c, err.Error(), requestIDFromContext(r.Context())); return }
	writeSuccess(w, http.StatusOK, "order count", contracts.OrderCountResponse{Count: count})
}
func (h *Handler) orderLedger(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseUint(strings.TrimSpace(r.URL.Query().Get("order_id")), 10, 64)
	if err != nil { writeError(w, http.StatusBadRequest, "invalid_input", "invalid order_id", requestIDFromContext(r.Context())); return }
	entries, err := h.service.OrderLedger(r.Context(), orderID)
	if err != nil { code, c := mapDomainError(err); writeError(w, code, c, err.Error(), requestIDFromContext(r.Context())); return }
	out := make([]contracts.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, contracts.LedgerEntryResponse{EntryID: e.EntryID, OrderID: e.OrderID, EntryType: e.EntryType, DebitAccount: e.DebitAccount, CreditAccount: e.CreditAccount, Amount: e.Amount, OccurredAt: e.OccurredAt.UTC().Format(time.RFC3339Nano)})
	}
	writeSuccess(w, http.StatusOK, "order ledger", out)
}

func toOrderResponse(order domain.Order) contracts.OrderResponse {
	return contracts.OrderResponse{
		OrderID:             order.OrderID,
		Provider:            order.Provider,
		Consumer:            order.Consumer,
		RecordID:            order.RecordID,
		ItemID:              order.ItemID,
		PriceTotal:          order.PriceTotal,
		StartTime:           order.StartTime.Unix(),
		EndTime:             order.EndTime.Unix(),
		PolicyOption:        order.Policy.Option,
		PolicyNoticeDays:    int(order.Policy.NoticeWindow / (24 * time.Hour)),
		Status:              order.Status,
		AllocatedToFundPool: order.AllocatedToFundPool,
	}
}
