package postgres

import (
	"time"

	"github.com/google/uuid"
)

type accountModel struct {
	AccountID string `gorm:"column:account_id;primaryKey"`
	Balance   int64  `gorm:"column:balance"`
}

func (accountModel) TableName() string { return "accounts" }

type allowanceModel struct {
	OwnerID   string `gorm:"column:owner_id;primaryKey"`
	SpenderID string `gorm:"column:spender_id;primaryKey"`
	Amount    int64  `gorm:"column:amount"`
}

func (allowanceModel) TableName() string { return "allowances" }

type ledgerSettingModel struct {
	SettingKey   string `gorm:"column:setting_key;primaryKey"`
	SettingValue string `gorm:"column:setting_value"`
}

func (ledgerSettingModel) TableName() string { return "ledger_settings" }

type orderModel struct {
	OrderID             uint64    `gorm:"column:order_id;primaryKey;autoIncrement"`
	Provider            string    `gorm:"column:provider"`
	Consumer            string    `gorm:"column:consumer"`
	RecordID            string    `gorm:"column:record_id"`
	ItemID              string    `gorm:"column:item_id"`
	PriceTotal          int64     `gorm:"column:price_total"`
	StartTime           time.Time `gorm:"column:start_time"`
	EndTime             time.Time `gorm:"column:end_time"`
	PolicyOption        string    `gorm:"column:policy_option"`
	PolicyNoticeSeconds int64     `gorm:"column:policy_notice_seconds"`
	Status              string    `gorm:"column:status"`
	AllocatedToFundPool int64     `gorm:"column:allocated_to_fund_pool"`
	CreatedAt           time.Time `gorm:"column:created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at"`
}

func (orderModel) TableName() string { return "orders" }

type ledgerEntryModel struct {
	EntryID       uuid.UUID `gorm:"column:entry_id;type:uuid;primaryKey"`
	OrderID       uint64    `gorm:"column:order_id"`
	EntryType     string    `gorm:"column:entry_type"`
	DebitAccount  string    `gorm:"column:debit_account"`
	CreditAccount string    `gorm:"column:credit_account"`
	Amount        int64     `gorm:"column:amount"`
	OccurredAt    time.Time `gorm:"column:occurred_at"`
}

func (ledgerEntryModel) TableName() string { return "ledger_entries" }

type idempotencyModel struct {
	IdempotencyKey string    `gorm:"column:idempotency_key;primaryKey"`
	RequestHash    string    `gorm:"column:request_hash"`
	ResponseCode   int       `gorm:"column:response_code"`
	ResponseBody   []byte    `gorm:"column:response_body"`
	ExpiresAt      time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string { return "idempotency_keys" }

type outboxModel struct {
	RecordID   uuid.UUID  `gorm:"column:record_id;type:uuid;primaryKey"`
	EventClass string     `gorm:"column:event_class"`
	Envelope   string     `gorm:"column:envelope"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	SentAt     *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string { return "outbox_records" }
