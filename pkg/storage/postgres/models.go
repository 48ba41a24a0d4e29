package postgres

import "time"

type escrowModel struct {
	ID                 string     `gorm:"column:id;primaryKey"`
	OrderID            string     `gorm:"column:order_id"`
	MerchantID         string     `gorm:"column:merchant_id"`
	PaymentMethod      string     `gorm:"column:payment_method"`
	Status             string     `gorm:"column:status"`
	BuyerPaid          int64      `gorm:"column:buyer_paid"`
	PlatformFee        int64      `gorm:"column:platform_fee"`
	ShippingCharge     int64      `gorm:"column:shipping_charge"`
	CodCharge          int64      `gorm:"column:cod_charge"`
	ChargesDeducted    int64      `gorm:"column:charges_deducted"`
	SellerReceives     int64      `gorm:"column:seller_receives"`
	ReleasedAmount     int64      `gorm:"column:released_amount"`
	RefundedAmount     int64      `gorm:"column:refunded_amount"`
	Deductions         string     `gorm:"column:deductions;type:jsonb"`
	HoldStartedAt      *time.Time `gorm:"column:hold_started_at"`
	AutoReleaseAt      *time.Time `gorm:"column:auto_release_at"`
	ReleaseRequestedAt *time.Time `gorm:"column:release_requested_at"`
	ReleasedAt         *time.Time `gorm:"column:released_at"`
	RefundedAt         *time.Time `gorm:"column:refunded_at"`
	DisputeOpenedAt    *time.Time `gorm:"column:dispute_opened_at"`
	BuyerConfirmedAt   *time.Time `gorm:"column:buyer_confirmed_at"`
	ReleasedBy         string     `gorm:"column:released_by"`
	ReleaseReason      string     `gorm:"column:release_reason"`
	RefundedBy         string     `gorm:"column:refunded_by"`
	RefundReason       string     `gorm:"column:refund_reason"`
	RefundReference    string     `gorm:"column:refund_reference"`
	DisputeID          string     `gorm:"column:dispute_id"`
	Version            int64      `gorm:"column:version"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (escrowModel) TableName() string { return "escrows" }

type orderModel struct {
	ID                string     `gorm:"column:id;primaryKey"`
	MerchantID        string     `gorm:"column:merchant_id"`
	Status            string     `gorm:"column:status"`
	FinancialStatus   string     `gorm:"column:financial_status"`
	PaymentReference  string     `gorm:"column:payment_reference"`
	CourierRemittedAt *time.Time `gorm:"column:courier_remitted_at"`
	BuyerConfirmed    bool       `gorm:"column:buyer_confirmed"`
	SellerCancelled   bool       `gorm:"column:seller_cancelled"`
	DisputeStatus     string     `gorm:"column:dispute_status"`
	DisputeOutcome    string     `gorm:"column:dispute_outcome"`
	FulfillmentHalted bool       `gorm:"column:fulfillment_halted"`
	EscrowID          *string    `gorm:"column:escrow_id"`
	EscrowStatus      string     `gorm:"column:escrow_status"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (orderModel) TableName() string { return "orders" }

type merchantAccountModel struct {
	MerchantID       string    `gorm:"column:merchant_id;primaryKey"`
	AvailableBalance int64     `gorm:"column:available_balance"`
	PendingCharges   int64     `gorm:"column:pending_charges"`
	TotalEarnings    int64     `gorm:"column:total_earnings"`
	TotalWithdrawn   int64     `gorm:"column:total_withdrawn"`
	TotalCharges     int64     `gorm:"column:total_charges"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (merchantAccountModel) TableName() string { return "merchant_accounts" }

type ledgerEntryModel struct {
	EntryID     string    `gorm:"column:entry_id;primaryKey"`
	EscrowID    string    `gorm:"column:escrow_id"`
	MerchantID  string    `gorm:"column:merchant_id"`
	Credit      int64     `gorm:"column:credit"`
	Description string    `gorm:"column:description"`
	Timestamp   time.Time `gorm:"column:timestamp"`
}

func (ledgerEntryModel) TableName() string { return "ledger_entries" }
