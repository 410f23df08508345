package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookloop/order-escrow-service/internal/domain"
	"github.com/bookloop/order-escrow-service/internal/ports"
)

const feeRecipientSettingKey = "fee_recipient"

type Repositories struct {
	Accounts    ports.AccountRepository
	Orders      ports.OrderRepository
	Ledger      ports.LedgerEntryRepository
	Idempotency ports.IdempotencyRepository
	Outbox      ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Accounts:    &accountRepository{db: db},
		Orders:      &orderRepository{db: db},
		Ledger:      &ledgerEntryRepository{db: db},
		Idempotency: &idempotencyRepository{db: db},
		Outbox:      &outboxRepository{db: db},
	}
}

type accountRepository struct {
	db *gorm.DB
}

func (r *accountRepository) BalanceOf(ctx context.Context, accountID string) (uint64, error) {
	var row accountModel
	err := r.db.WithContext(ctx).First(&row, "account_id = ?", accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return uint64(row.Balance), nil
}

func (r *accountRepository) Mint(ctx context.Context, accountID string, amount uint64) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO accounts (account_id, balance) VALUES (?, ?)
		 ON CONFLICT (account_id) DO UPDATE SET balance = accounts.balance + EXCLUDED.balance`,
		accountID, int64(amount)).Error
}

func debit(tx *gorm.DB, accountID string, amount uint64) error {
	res := tx.Exec(`UPDATE accounts SET balance = balance - ? WHERE account_id = ? AND balance >= ?`,
		int64(amount), accountID, int64(amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInsufficientBalance
	}
	return nil
}

func credit(tx *gorm.DB, accountID string, amount uint64) error {
	return tx.Exec(
		`INSERT INTO accounts (account_id, balance) VALUES (?, ?)
		 ON CONFLICT (account_id) DO UPDATE SET balance = accounts.balance + EXCLUDED.balance`,
		accountID, int64(amount)).Error
}

func (r *accountRepository) Transfer(ctx context.Context, from, to string, amount uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := debit(tx, from, amount); err != nil {
			return err
		}
		return credit(tx, to, amount)
	})
}

func (r *accountRepository) SplitTransfer(ctx context.Context, from, to, feeTo string, toAmount, feeAmount uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := debit(tx, from, toAmount+feeAmount); err != nil {
			return err
		}
		if err := credit(tx, to, toAmount); err != nil {
			return err
		}
		if feeAmount == 0 {
			return nil
		}
		return credit(tx, feeTo, feeAmount)
	})
}

func (r *accountRepository) TransferFrom(ctx context.Context, owner, spender, to string, amount uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`UPDATE allowances SET amount = amount - ? WHERE owner_id = ? AND spender_id = ? AND amount >= ?`,
			int64(amount), owner, spender, int64(amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrInsufficientAllowance
		}
		if err := debit(tx, owner, amount); err != nil {
			return err
		}
		return credit(tx, to, amount)
	})
}

func (r *accountRepository) Allowance(ctx context.Context, owner, spender string) (uint64, error) {
	var row allowanceModel
	err := r.db.WithContext(ctx).First(&row, "owner_id = ? AND spender_id = ?", owner, spender).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return uint64(row.Amount), nil
}

func (r *accountRepository) SetAllowance(ctx context.Context, owner, spender string, amount uint64) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO allowances (owner_id, spender_id, amount) VALUES (?, ?, ?)
		 ON CONFLICT (owner_id, spender_id) DO UPDATE SET amount = EXCLUDED.amount`,
		owner, spender, int64(amount)).Error
}

func (r *accountRepository) FeeRecipient(ctx context.Context) (string, error) {
	var row ledgerSettingModel
	err := r.db.WithContext(ctx).First(&row, "setting_key = ?", feeRecipientSettingKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return row.SettingValue, nil
}

func (r *accountRepository) SetFeeRecipient(ctx context.Context, accountID string) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO ledger_settings (setting_key, setting_value) VALUES (?, ?)
		 ON CONFLICT (setting_key) DO UPDATE SET setting_value = EXCLUDED.setting_value`,
		feeRecipientSettingKey, accountID).Error
}

type orderRepository struct {
	db *gorm.DB
}

func toOrderModel(row domain.Order) orderModel {
	return orderModel{
		OrderID:             row.OrderID,
		Provider:            row.Provider,
		Consumer:            row.Consumer,
		RecordID:            row.RecordID,
		ItemID:              row.ItemID,
		PriceTotal:          int64(row.PriceTotal),
		StartTime:           row.StartTime,
		EndTime:             row.EndTime,
		PolicyOption:        row.Policy.Option,
		PolicyNoticeSeconds: int64(row.Policy.NoticeWindow / time.Second),
		Status:              row.Status,
		AllocatedToFundPool: int64(row.AllocatedToFundPool),
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}

func toDomainOrder(row orderModel) domain.Order {
	return domain.Order{
		OrderID:             row.OrderID,
		Provider:            row.Provider,
		Consumer:            row.Consumer,
		RecordID:            row.RecordID,
		ItemID:              row.ItemID,
		PriceTotal:          uint64(row.PriceTotal),
		StartTime:           row.StartTime,
		EndTime:             row.EndTime,
		Policy:              domain.CancellationPolicy{Option: row.PolicyOption, NoticeWindow: time.Duration(row.PolicyNoticeSeconds) * time.Second},
		Status:              row.Status,
		AllocatedToFundPool: uint64(row.AllocatedToFundPool),
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}

func (r *orderRepository) Create(ctx context.Context, row domain.Order) (uint64, error) {
	model := toOrderModel(row)
	model.OrderID = 0
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return 0, err
	}
	return model.OrderID, nil
}

func (r *orderRepository) GetByID(ctx context.Context, orderID uint64) (domain.Order, error) {
	if orderID == 0 {
		return domain.Order{}, domain.ErrNotFound
	}
	var model orderModel
	err := r.db.WithContext(ctx).First(&model, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Order{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	return toDomainOrder(model), nil
}

func (r *orderRepository) Update(ctx context.Context, row domain.Order) error {
	model := toOrderModel(row)
	res := r.db.WithContext(ctx).Model(&orderModel{}).Where("order_id = ?", row.OrderID).Updates(map[string]any{
		"policy_option":          model.PolicyOption,
		"policy_notice_seconds":  model.PolicyNoticeSeconds,
		"status":                 model.Status,
		"allocated_to_fund_pool": model.AllocatedToFundPool,
		"updated_at":             model.UpdatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *orderRepository) Count(ctx context.Context) (uint64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&orderModel{}).Count(&count).Error
	return uint64(count), err
}

type ledgerEntryRepository struct {
	db *gorm.DB
}

func (r *ledgerEntryRepository) Append(ctx context.Context, row domain.LedgerEntry) error {
	entryID, err := uuid.Parse(row.EntryID)
	if err != nil {
		return domain.ErrInvalidInput
	}
	model := ledgerEntryModel{
		EntryID:       entryID,
		OrderID:       row.OrderID,
		EntryType:     row.EntryType,
		DebitAccount:  row.DebitAccount,
		CreditAccount: row.CreditAccount,
		Amount:        int64(row.Amount),
		OccurredAt:    row.OccurredAt,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *ledgerEntryRepository) ListByOrderID(ctx context.Context, orderID uint64) ([]domain.LedgerEntry, error) {
	var models []ledgerEntryModel
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("occurred_at asc").Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.LedgerEntry, 0, len(models))
	for _, m := range models {
		out = append(out, domain.LedgerEntry{
			EntryID:       m.EntryID.String(),
			OrderID:       m.OrderID,
			EntryType:     m.EntryType,
			DebitAccount:  m.DebitAccount,
			CreditAccount: m.CreditAccount,
			Amount:        uint64(m.Amount),
			OccurredAt:    m.OccurredAt,
		})
	}
	return out, nil
}

type idempotencyRepository struct {
	db *gorm.DB
}

func (r *idempotencyRepository) Get(ctx context.Context, key string, now time.Time) (*ports.IdempotencyRecord, error) {
	var model idempotencyModel
	err := r.db.WithContext(ctx).First(&model, "idempotency_key = ? AND expires_at > ?", key, now).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ports.IdempotencyRecord{
		Key:          model.IdempotencyKey,
		RequestHash:  model.RequestHash,
		ResponseCode: model.ResponseCode,
		ResponseBody: model.ResponseBody,
		ExpiresAt:    model.ExpiresAt,
	}, nil
}

func (r *idempotencyRepository) Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error {
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO idempotency_keys (idempotency_key, request_hash, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT (idempotency_key) DO UPDATE SET request_hash = EXCLUDED.request_hash, expires_at = EXCLUDED.expires_at, response_code = NULL, response_body = NULL
		 WHERE idempotency_keys.expires_at <= now()`,
		key, requestHash, expiresAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *idempotencyRepository) Complete(ctx context.Context, key string, responseCode int, responseBody []byte, _ time.Time) error {
	res := r.db.WithContext(ctx).Model(&idempotencyModel{}).Where("idempotency_key = ?", key).Updates(map[string]any{
		"response_code": responseCode,
		"response_body": responseBody,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type outboxRepository struct {
	db *gorm.DB
}

func (r *outboxRepository) Enqueue(ctx context.Context, record ports.OutboxRecord) error {
	recordID, err := uuid.Parse(record.RecordID)
	if err != nil {
		return domain.ErrInvalidInput
	}
	envelope, err := json.Marshal(record.Envelope)
	if err != nil {
		return domain.ErrInvalidInput
	}
	model := outboxModel{
		RecordID:   recordID,
		EventClass: record.EventClass,
		Envelope:   string(envelope),
		CreatedAt:  record.CreatedAt,
		SentAt:     record.SentAt,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]ports.OutboxRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var models []outboxModel
	err := r.db.WithContext(ctx).Where("sent_at IS NULL").Order("created_at asc").Limit(limit).Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]ports.OutboxRecord, 0, len(models))
	for _, m := range models {
		rec := ports.OutboxRecord{RecordID: m.RecordID.String(), EventClass: m.EventClass, CreatedAt: m.CreatedAt, SentAt: m.SentAt}
		if err := json.Unmarshal([]byte(m.Envelope), &rec.Envelope); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, recordID string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&outboxModel{}).Where("record_id = ?", recordID).Update("sent_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
