package contracts

type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ErrorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorResponse struct {
	Status string       `json:"status"`
	Error  ErrorPayload `json:"error"`
}

type MintRequest struct {
	AccountID string `json:"account_id"`
	Amount    uint64 `json:"amount"`
}

type SetFeeRecipientRequest struct {
	AccountID string `json:"account_id"`
}

type ApproveRequest struct {
	Spender string `json:"spender"`
	Amount  uint64 `json:"amount"`
}

type TransferRequest struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type PullTransferRequest struct {
	Owner  string `json:"owner"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type AllowanceResponse struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Amount  uint64 `json:"amount"`
}

type FeeRecipientResponse struct {
	AccountID string `json:"account_id"`
}

type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   uint64 `json:"balance"`
}

type CreateOrderRequest struct {
	Provider   string `json:"provider"`
	Consumer   string `json:"consumer"`
	RecordID   string `json:"record_id"`
	ItemID     string `json:"item_id"`
	PriceTotal uint64 `json:"price_total"`
	StartTime  int64  `json:"start_time"`
	EndTime    int64  `json:"end_time"`
}

type SetPolicyRequest struct {
	OrderID    uint64 `json:"order_id"`
	Option     string `json:"option"`
	NoticeDays int    `json:"notice_days,omitempty"`
}

type OrderActionRequest struct {
	OrderID uint64 `json:"order_id"`
}

type OrderResponse struct {
	OrderID             uint64 `json:"order_id"`
	Provider            string `json:"provider"`
	Consumer            string `json:"consumer"`
	RecordID            string `json:"record_id"`
	ItemID              string `json:"item_id"`
	PriceTotal          uint64 `json:"price_total"`
	StartTime           int64  `json:"start_time"`
	EndTime             int64  `json:"end_time"`
	PolicyOption        string `json:"policy_option"`
	PolicyNoticeDays    int    `json:"policy_notice_days,omitempty"`
	Status              string `json:"status"`
	AllocatedToFundPool uint64 `json:"allocated_to_fund_pool"`
	EventDelivery       string `json:"event_delivery,omitempty"`
}

type OrderCountResponse struct {
	Count uint64 `json:"count"`
}

type LedgerEntryResponse struct {
	EntryID       string `json:"entry_id"`
	OrderID       uint64 `json:"order_id"`
	EntryType     string `json:"entry_type"`
	DebitAccount  string `json:"debit_account"`
	CreditAccount string `json:"credit_account"`
	Amount        uint64 `json:"amount"`
	OccurredAt    string `json:"occurred_at"`
}
