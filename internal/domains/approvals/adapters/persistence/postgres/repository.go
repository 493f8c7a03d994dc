package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/partsflow/procurement-api/internal/domains/approvals/domain"
	"github.com/partsflow/procurement-api/internal/domains/approvals/ports"
	"github.com/partsflow/procurement-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists price approval records in PostgreSQL using GORM.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db, now: time.Now}
	if db != nil {
		_ = db.AutoMigrate(&approvalRecord{}, &pricingBaselineRecord{})
	}
	return repo
}

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

// Save inserts or replaces an approval record.
func (r *Repository) Save(ctx context.Context, record *domain.ApprovalRecord) (*projection.Projection[*domain.ApprovalRecord], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	dbRecord := toRecord(record)
	if err := r.db.WithContext(ctx).Save(&dbRecord).Error; err != nil {
		return nil, err
	}
	return projection.New(dbRecord.toDomain(), r.now()), nil
}

// GetByNo fetches one approval record.
func (r *Repository) GetByNo(ctx context.Context, approvalNo string) (*projection.Projection[*domain.ApprovalRecord], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record approvalRecord
	if err := r.db.WithContext(ctx).First(&record, "approval_no = ?", approvalNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return projection.New(record.toDomain(), r.now()), nil
}

// ListPending lists records still awaiting a decision.
func (r *Repository) ListPending(ctx context.Context) ([]*projection.Projection[*domain.ApprovalRecord], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []approvalRecord
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.ApprovalPending)).
		Order("requested_at").
		Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*projection.Projection[*domain.ApprovalRecord], 0, len(records))
	for i := range records {
		list = append(list, projection.New(records[i].toDomain(), r.now()))
	}
	return list, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres approval repository not configured")
	}
	return nil
}

func toRecord(record *domain.ApprovalRecord) approvalRecord {
	return approvalRecord{
		ApprovalNo:         record.ApprovalNo,
		OrderNo:            record.OrderNo,
		RequestedBy:        record.RequestedBy,
		SubmittedTotal:     record.SubmittedTotal,
		HistoricalAvgTotal: record.HistoricalAvgTotal,
		DeviationRatio:     record.DeviationRatio,
		Status:             string(record.Status),
		RequestedAt:        record.RequestedAt,
		ResolvedAt:         record.ResolvedAt,
		ResolvedBy:         record.ResolvedBy,
		Remark:             record.Remark,
	}
}

func (rec approvalRecord) toDomain() *domain.ApprovalRecord {
	return &domain.ApprovalRecord{
		ApprovalNo:         rec.ApprovalNo,
		OrderNo:            rec.OrderNo,
		RequestedBy:        rec.RequestedBy,
		SubmittedTotal:     rec.SubmittedTotal,
		HistoricalAvgTotal: rec.HistoricalAvgTotal,
		DeviationRatio:     rec.DeviationRatio,
		Status:             domain.ApprovalStatus(rec.Status),
		RequestedAt:        rec.RequestedAt,
		ResolvedAt:         rec.ResolvedAt,
		ResolvedBy:         rec.ResolvedBy,
		Remark:             rec.Remark,
	}
}

// Pricing reads historical baselines from PostgreSQL.
type Pricing struct {
	db *gorm.DB
}

var _ ports.HistoricalPricing = (*Pricing)(nil)

// NewPricing wires a PostgreSQL-backed pricing source over the same DB.
func NewPricing(db *gorm.DB) *Pricing {
	return &Pricing{db: db}
}

// BaselineTotal returns the recorded baseline, or zero when none exists.
func (p *Pricing) BaselineTotal(ctx context.Context, orderNo string) (decimal.Decimal, error) {
	if p == nil || p.db == nil {
		return decimal.Zero, errors.New("postgres pricing source not configured")
	}
	var record pricingBaselineRecord
	if err := p.db.WithContext(ctx).First(&record, "order_no = ?", orderNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return record.BaselineTotal, nil
}

// SetBaseline seeds or replaces the baseline for an order.
func (p *Pricing) SetBaseline(ctx context.Context, orderNo string, total decimal.Decimal) error {
	if p == nil || p.db == nil {
		return errors.New("postgres pricing source not configured")
	}
	record := pricingBaselineRecord{OrderNo: orderNo, BaselineTotal: total, UpdatedAt: time.Now()}
	return p.db.WithContext(ctx).Save(&record).Error
}
