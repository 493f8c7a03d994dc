package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&purchaseOrderRecord{},
		&orderItemRecord{},
		&statusLogRecord{},
		&orderSequenceRecord{},
		&inquiryRecord{},
		&quoteRecord{},
		&quoteLineRecord{},
		&approvalRecord{},
		&pricingBaselineRecord{},
	)
}

// Purchase order schema mirrors the orders Postgres adapter. SKU ids are
// denormalized onto the order row for search without a join.
type purchaseOrderRecord struct {
	OrderNo              string        `gorm:"primaryKey;column:order_no;size:64"`
	StoreName            string        `gorm:"column:store_name"`
	CreatorName          string        `gorm:"column:creator_name;index"`
	ExpectedDeliveryDate time.Time     `gorm:"column:expected_delivery_date"`
	InquiryDeadline      *time.Time    `gorm:"column:inquiry_deadline"`
	Remark               string        `gorm:"column:remark"`
	Status               string        `gorm:"column:status;type:varchar(32);index"`
	SKUIDs               pq.Int64Array `gorm:"column:sku_ids;type:bigint[]"`
	CreatedAt            time.Time     `gorm:"column:created_at;index"`
	UpdatedAt            time.Time     `gorm:"column:updated_at"`
}

func (purchaseOrderRecord) TableName() string { return "purchase_orders" }

type orderItemRecord struct {
	OrderNo          string          `gorm:"primaryKey;column:order_no;size:64"`
	ItemID           int64           `gorm:"primaryKey;column:item_id"`
	SKUID            int64           `gorm:"column:sku_id;index"`
	SKUName          string          `gorm:"column:sku_name"`
	Brand            string          `gorm:"column:brand"`
	Quantity         int64           `gorm:"column:quantity"`
	Status           string          `gorm:"column:status;type:varchar(32)"`
	SupplierName     string          `gorm:"column:supplier_name"`
	QuoteNo          int64           `gorm:"column:quote_no"`
	QuoteLineID      int64           `gorm:"column:quote_line_id"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price;type:numeric(14,4)"`
	TotalPrice       decimal.Decimal `gorm:"column:total_price;type:numeric(14,4)"`
	ExpectedDelivery time.Time       `gorm:"column:expected_delivery"`
	ArrivedAt        *time.Time      `gorm:"column:arrived_at"`
}

func (orderItemRecord) TableName() string { return "purchase_order_items" }

type statusLogRecord struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;column:id"`
	OrderNo    string    `gorm:"column:order_no;size:64;index"`
	FromStatus string    `gorm:"column:from_status;type:varchar(32)"`
	ToStatus   string    `gorm:"column:to_status;type:varchar(32)"`
	Operator   string    `gorm:"column:operator"`
	Remark     string    `gorm:"column:remark"`
	At         time.Time `gorm:"column:at;index"`
}

func (statusLogRecord) TableName() string { return "purchase_order_status_log" }

type orderSequenceRecord struct {
	Day string `gorm:"primaryKey;column:day;size:8"`
	Seq int64  `gorm:"column:seq"`
}

func (orderSequenceRecord) TableName() string { return "purchase_order_sequences" }

// Inquiry schema mirrors the quotes Postgres adapter.
type inquiryRecord struct {
	InquiryNo   string        `gorm:"primaryKey;column:inquiry_no;size:64"`
	OrderNo     string        `gorm:"column:order_no;size:64;uniqueIndex"`
	SupplierIDs pq.Int64Array `gorm:"column:supplier_ids;type:bigint[]"`
	SKUIDs      pq.Int64Array `gorm:"column:sku_ids;type:bigint[]"`
	Deadline    time.Time     `gorm:"column:deadline"`
	SentAt      time.Time     `gorm:"column:sent_at"`
	Status      string        `gorm:"column:status;type:varchar(16);index"`
}

func (inquiryRecord) TableName() string { return "inquiries" }

type quoteRecord struct {
	QuoteNo      int64     `gorm:"primaryKey;autoIncrement;column:quote_no"`
	OrderNo      string    `gorm:"column:order_no;size:64;index:idx_quotes_order_supplier,unique"`
	SupplierID   int64     `gorm:"column:supplier_id;index:idx_quotes_order_supplier,unique"`
	SupplierName string    `gorm:"column:supplier_name"`
	SubmittedAt  time.Time `gorm:"column:submitted_at"`
}

func (quoteRecord) TableName() string { return "supplier_quotes" }

type quoteLineRecord struct {
	LineID           int64           `gorm:"primaryKey;autoIncrement;column:line_id"`
	QuoteNo          int64           `gorm:"column:quote_no;index"`
	OrderItemID      int64           `gorm:"column:order_item_id"`
	SKUID            int64           `gorm:"column:sku_id"`
	SKUName          string          `gorm:"column:sku_name"`
	Quantity         int64           `gorm:"column:quantity"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price;type:numeric(14,4)"`
	ExpectedDelivery time.Time       `gorm:"column:expected_delivery"`
	Remark           string          `gorm:"column:remark"`
}

func (quoteLineRecord) TableName() string { return "supplier_quote_lines" }

// Approval schema mirrors the approvals Postgres adapter.
type approvalRecord struct {
	ApprovalNo         string          `gorm:"primaryKey;column:approval_no;size:64"`
	OrderNo            string          `gorm:"column:order_no;size:64;index"`
	RequestedBy        string          `gorm:"column:requested_by"`
	SubmittedTotal     decimal.Decimal `gorm:"column:submitted_total;type:numeric(14,4)"`
	HistoricalAvgTotal decimal.Decimal `gorm:"column:historical_avg_total;type:numeric(14,4)"`
	DeviationRatio     decimal.Decimal `gorm:"column:deviation_ratio;type:numeric(10,6)"`
	Status             string          `gorm:"column:status;type:varchar(16);index"`
	RequestedAt        time.Time       `gorm:"column:requested_at"`
	ResolvedAt         *time.Time      `gorm:"column:resolved_at"`
	ResolvedBy         string          `gorm:"column:resolved_by"`
	Remark             string          `gorm:"column:remark"`
}

func (approvalRecord) TableName() string { return "price_approvals" }

type pricingBaselineRecord struct {
	OrderNo       string          `gorm:"primaryKey;column:order_no;size:64"`
	BaselineTotal decimal.Decimal `gorm:"column:baseline_total;type:numeric(14,4)"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (pricingBaselineRecord) TableName() string { return "pricing_baselines" }
