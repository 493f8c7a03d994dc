package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/partsflow/procurement-api/internal/domains/orders/application/types"
	"github.com/partsflow/procurement-api/internal/domains/orders/domain"
	"github.com/partsflow/procurement-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists purchase orders in PostgreSQL using GORM.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db, now: time.Now}
	if db != nil {
		_ = db.AutoMigrate(&purchaseOrderRecord{}, &orderItemRecord{}, &statusLogRecord{}, &orderSequenceRecord{})
	}
	return repo
}

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

// NextOrderNo issues PO<yyyymmdd><seq> numbers backed by a per-day sequence row.
func (r *Repository) NextOrderNo(ctx context.Context, at time.Time) (string, error) {
	if err := r.ensureDB(); err != nil {
		return "", err
	}
	day := at.Format("20060102")
	var seq int64
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO purchase_order_sequences (day, seq) VALUES (?, 1)
		 ON CONFLICT (day) DO UPDATE SET seq = purchase_order_sequences.seq + 1
		 RETURNING seq`, day,
	).Scan(&seq).Error
	if err != nil {
		return "", err
	}
	return domain.FormatOrderNo(day, seq), nil
}

// Create inserts the order aggregate and its line items.
func (r *Repository) Create(ctx context.Context, order *domain.PurchaseOrder) (*types.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record, items := toRecords(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			return tx.Create(&items).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByOrderNo(ctx, order.OrderNo)
}

// GetByOrderNo fetches an order aggregate by its number.
func (r *Repository) GetByOrderNo(ctx context.Context, orderNo string) (*types.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.load(r.db.WithContext(ctx), orderNo, false)
}

// Mutate applies fn to the aggregate inside a transaction holding a row lock
// on the order. A failing fn rolls the whole mutation back.
func (r *Repository) Mutate(ctx context.Context, orderNo string, fn func(order *domain.PurchaseOrder) error) (*types.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var projection *types.OrderProjection
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := r.load(tx, orderNo, true)
		if err != nil {
			return err
		}
		order := loaded.Order
		if err := fn(order); err != nil {
			return err
		}
		record, items := toRecords(order)
		record.CreatedAt = loaded.Metadata.CreatedAt
		record.UpdatedAt = r.now()
		if err := tx.Model(&purchaseOrderRecord{}).
			Where("order_no = ?", orderNo).
			Updates(map[string]any{
				"status":           record.Status,
				"remark":           record.Remark,
				"inquiry_deadline": record.InquiryDeadline,
				"sku_ids":          record.SKUIDs,
				"updated_at":       record.UpdatedAt,
			}).Error; err != nil {
			return err
		}
		for i := range items {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "order_no"}, {Name: "item_id"}},
				UpdateAll: true,
			}).Create(&items[i]).Error; err != nil {
				return err
			}
		}
		projection = types.NewOrderProjection(order, record.CreatedAt, record.UpdatedAt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return projection, nil
}

// List returns order projections matching the filter, oldest first.
func (r *Repository) List(ctx context.Context, filter types.ListFilter) ([]*types.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&purchaseOrderRecord{}).Order("created_at, order_no")
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		query = query.Where("status IN ?", statuses)
	}
	if filter.CreatorName != "" {
		query = query.Where("creator_name = ?", filter.CreatorName)
	}
	if !filter.CreatedFrom.IsZero() {
		query = query.Where("created_at >= ?", filter.CreatedFrom)
	}
	if !filter.CreatedTo.IsZero() {
		query = query.Where("created_at <= ?", filter.CreatedTo)
	}
	var records []purchaseOrderRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []*types.OrderProjection{}, nil
	}
	orderNos := make([]string, 0, len(records))
	for _, record := range records {
		orderNos = append(orderNos, record.OrderNo)
	}
	var items []orderItemRecord
	if err := r.db.WithContext(ctx).
		Where("order_no IN ?", orderNos).
		Order("order_no, item_id").
		Find(&items).Error; err != nil {
		return nil, err
	}
	byOrder := make(map[string][]orderItemRecord, len(records))
	for _, item := range items {
		byOrder[item.OrderNo] = append(byOrder[item.OrderNo], item)
	}
	projections := make([]*types.OrderProjection, 0, len(records))
	for i := range records {
		projections = append(projections, toProjection(&records[i], byOrder[records[i].OrderNo]))
	}
	return projections, nil
}

// AppendStatusLog appends one status change record.
func (r *Repository) AppendStatusLog(ctx context.Context, orderNo string, entry domain.StatusLogEntry) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	record := statusLogRecord{
		OrderNo:    orderNo,
		FromStatus: string(entry.From),
		ToStatus:   string(entry.To),
		Operator:   entry.Operator,
		Remark:     entry.Remark,
		At:         entry.At,
	}
	return r.db.WithContext(ctx).Create(&record).Error
}

// StatusLog returns the raw append-only status change history.
func (r *Repository) StatusLog(ctx context.Context, orderNo string) ([]domain.StatusLogEntry, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []statusLogRecord
	if err := r.db.WithContext(ctx).
		Where("order_no = ?", orderNo).
		Order("id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	entries := make([]domain.StatusLogEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, domain.StatusLogEntry{
			From:     domain.OrderStatus(record.FromStatus),
			To:       domain.OrderStatus(record.ToStatus),
			Operator: record.Operator,
			Remark:   record.Remark,
			At:       record.At,
		})
	}
	return entries, nil
}

func (r *Repository) load(tx *gorm.DB, orderNo string, forUpdate bool) (*types.OrderProjection, error) {
	query := tx
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var record purchaseOrderRecord
	if err := query.First(&record, "order_no = ?", orderNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var items []orderItemRecord
	if err := tx.Where("order_no = ?", orderNo).Order("item_id").Find(&items).Error; err != nil {
		return nil, err
	}
	return toProjection(&record, items), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecords(order *domain.PurchaseOrder) (purchaseOrderRecord, []orderItemRecord) {
	skuIDs := make(pq.Int64Array, 0, len(order.Items))
	items := make([]orderItemRecord, 0, len(order.Items))
	for _, item := range order.Items {
		skuIDs = append(skuIDs, item.SKUID)
		items = append(items, orderItemRecord{
			OrderNo:          order.OrderNo,
			ItemID:           item.ID,
			SKUID:            item.SKUID,
			SKUName:          item.SKUName,
			Brand:            item.Brand,
			Quantity:         item.Quantity,
			Status:           string(item.Status),
			SupplierName:     item.SupplierName,
			QuoteNo:          item.QuoteNo,
			QuoteLineID:      item.QuoteLineID,
			UnitPrice:        item.UnitPrice,
			TotalPrice:       item.TotalPrice,
			ExpectedDelivery: item.ExpectedDelivery,
			ArrivedAt:        item.ArrivedAt,
		})
	}
	record := purchaseOrderRecord{
		OrderNo:              order.OrderNo,
		StoreName:            order.StoreName,
		CreatorName:          order.CreatorName,
		ExpectedDeliveryDate: order.ExpectedDeliveryDate,
		Remark:               order.Remark,
		Status:               string(order.Status),
		SKUIDs:               skuIDs,
	}
	if !order.InquiryDeadline.IsZero() {
		deadline := order.InquiryDeadline
		record.InquiryDeadline = &deadline
	}
	return record, items
}

func toProjection(record *purchaseOrderRecord, items []orderItemRecord) *types.OrderProjection {
	order := &domain.PurchaseOrder{
		OrderNo:              record.OrderNo,
		StoreName:            record.StoreName,
		CreatorName:          record.CreatorName,
		ExpectedDeliveryDate: record.ExpectedDeliveryDate,
		Remark:               record.Remark,
		Status:               domain.OrderStatus(record.Status),
	}
	if record.InquiryDeadline != nil {
		order.InquiryDeadline = *record.InquiryDeadline
	}
	for _, item := range items {
		order.Items = append(order.Items, &domain.OrderLineItem{
			ID:               item.ItemID,
			SKUID:            item.SKUID,
			SKUName:          item.SKUName,
			Brand:            item.Brand,
			Quantity:         item.Quantity,
			Status:           domain.ItemStatus(item.Status),
			SupplierName:     item.SupplierName,
			QuoteNo:          item.QuoteNo,
			QuoteLineID:      item.QuoteLineID,
			UnitPrice:        item.UnitPrice,
			TotalPrice:       item.TotalPrice,
			ExpectedDelivery: item.ExpectedDelivery,
			ArrivedAt:        item.ArrivedAt,
		})
	}
	return types.NewOrderProjection(order, record.CreatedAt, record.UpdatedAt)
}
