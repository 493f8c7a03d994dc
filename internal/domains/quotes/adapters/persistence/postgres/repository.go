package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/partsflow/procurement-api/internal/domains/quotes/domain"
	"github.com/partsflow/procurement-api/internal/domains/quotes/ports"
	"github.com/partsflow/procurement-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists inquiries and supplier quotes in PostgreSQL using GORM.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db, now: time.Now}
	if db != nil {
		_ = db.AutoMigrate(&inquiryRecord{}, &quoteRecord{}, &quoteLineRecord{})
	}
	return repo
}

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

// SaveInquiry inserts or replaces the inquiry row for the order.
func (r *Repository) SaveInquiry(ctx context.Context, inquiry *domain.Inquiry) (*projection.Projection[*domain.Inquiry], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	record := inquiryRecord{
		InquiryNo:   inquiry.InquiryNo,
		OrderNo:     inquiry.OrderNo,
		SupplierIDs: pq.Int64Array(inquiry.SupplierIDs),
		SKUIDs:      pq.Int64Array(inquiry.SKUIDs),
		Deadline:    inquiry.Deadline,
		SentAt:      inquiry.SentAt,
		Status:      string(inquiry.Status),
	}
	if err := r.db.WithContext(ctx).Save(&record).Error; err != nil {
		return nil, err
	}
	return projection.New(record.toDomain(), r.now()), nil
}

// OpenInquiryByOrder loads the order's inquiry if it is still open.
func (r *Repository) OpenInquiryByOrder(ctx context.Context, orderNo string) (*projection.Projection[*domain.Inquiry], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record inquiryRecord
	err := r.db.WithContext(ctx).
		First(&record, "order_no = ? AND status = ?", orderNo, string(domain.InquiryOpen)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return projection.New(record.toDomain(), r.now()), nil
}

// CloseInquiry marks the order's inquiry as closed.
func (r *Repository) CloseInquiry(ctx context.Context, orderNo string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&inquiryRecord{}).
		Where("order_no = ?", orderNo).
		Update("status", string(domain.InquiryClosed))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// SaveQuote persists a supplier quote. A resubmission keeps the quote number
// and replaces the lines.
func (r *Repository) SaveQuote(ctx context.Context, quote *domain.SupplierQuote) (*projection.Projection[*domain.SupplierQuote], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var saved *domain.SupplierQuote
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := quoteRecord{
			OrderNo:      quote.OrderNo,
			SupplierID:   quote.SupplierID,
			SupplierName: quote.SupplierName,
			SubmittedAt:  quote.SubmittedAt,
		}
		var existing quoteRecord
		err := tx.First(&existing, "order_no = ? AND supplier_id = ?", quote.OrderNo, quote.SupplierID).Error
		switch {
		case err == nil:
			record.QuoteNo = existing.QuoteNo
			if err := tx.Save(&record).Error; err != nil {
				return err
			}
			if err := tx.Where("quote_no = ?", record.QuoteNo).Delete(&quoteLineRecord{}).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		default:
			return err
		}
		lines := make([]quoteLineRecord, 0, len(quote.Lines))
		for _, line := range quote.Lines {
			lines = append(lines, quoteLineRecord{
				QuoteNo:          record.QuoteNo,
				OrderItemID:      line.OrderItemID,
				SKUID:            line.SKUID,
				SKUName:          line.SKUName,
				Quantity:         line.Quantity,
				UnitPrice:        line.UnitPrice,
				ExpectedDelivery: line.ExpectedDelivery,
				Remark:           line.Remark,
			})
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
		saved = toDomainQuote(&record, lines)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return projection.New(saved, r.now()), nil
}

// QuotesByOrder lists every supplier quote for the order with its lines.
func (r *Repository) QuotesByOrder(ctx context.Context, orderNo string) ([]*projection.Projection[*domain.SupplierQuote], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []quoteRecord
	if err := r.db.WithContext(ctx).
		Where("order_no = ?", orderNo).
		Order("quote_no").
		Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []*projection.Projection[*domain.SupplierQuote]{}, nil
	}
	quoteNos := make([]int64, 0, len(records))
	for _, record := range records {
		quoteNos = append(quoteNos, record.QuoteNo)
	}
	var lines []quoteLineRecord
	if err := r.db.WithContext(ctx).
		Where("quote_no IN ?", quoteNos).
		Order("line_id").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	byQuote := make(map[int64][]quoteLineRecord, len(records))
	for _, line := range lines {
		byQuote[line.QuoteNo] = append(byQuote[line.QuoteNo], line)
	}
	list := make([]*projection.Projection[*domain.SupplierQuote], 0, len(records))
	for i := range records {
		list = append(list, projection.New(toDomainQuote(&records[i], byQuote[records[i].QuoteNo]), r.now()))
	}
	return list, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres quote repository not configured")
	}
	return nil
}

func (rec inquiryRecord) toDomain() *domain.Inquiry {
	return &domain.Inquiry{
		InquiryNo:   rec.InquiryNo,
		OrderNo:     rec.OrderNo,
		SupplierIDs: append([]int64(nil), rec.SupplierIDs...),
		SKUIDs:      append([]int64(nil), rec.SKUIDs...),
		Deadline:    rec.Deadline,
		SentAt:      rec.SentAt,
		Status:      domain.InquiryStatus(rec.Status),
	}
}

func toDomainQuote(record *quoteRecord, lines []quoteLineRecord) *domain.SupplierQuote {
	quote := &domain.SupplierQuote{
		QuoteNo:      record.QuoteNo,
		OrderNo:      record.OrderNo,
		SupplierID:   record.SupplierID,
		SupplierName: record.SupplierName,
		SubmittedAt:  record.SubmittedAt,
	}
	for _, line := range lines {
		quote.Lines = append(quote.Lines, domain.QuoteLine{
			LineID:           line.LineID,
			OrderItemID:      line.OrderItemID,
			SKUID:            line.SKUID,
			SKUName:          line.SKUName,
			Quantity:         line.Quantity,
			UnitPrice:        line.UnitPrice,
			ExpectedDelivery: line.ExpectedDelivery,
			Remark:           line.Remark,
		})
	}
	return quote
}
