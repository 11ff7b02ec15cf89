package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ReportRepository 报表查询（sqlx 直接写 SQL）
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// DailySalesRow 日销售汇总
type DailySalesRow struct {
	Date       time.Time       `db:"date" json:"date"`
	EventCount int             `db:"event_count" json:"event_count"`
	SaleCount  int             `db:"sale_count" json:"sale_count"`
	Revenue    decimal.Decimal `db:"revenue" json:"revenue"`
}

// DailySales 按营业日汇总事件数、销售笔数和销售额
func (r *ReportRepository) DailySales(ctx context.Context, from, to time.Time) ([]DailySalesRow, error) {
	const q = `
		SELECT d.date AS date,
		       COUNT(e.id) AS event_count,
		       COUNT(s.id) AS sale_count,
		       COALESCE(SUM(s.price), 0) AS revenue
		FROM store_trading_days d
		LEFT JOIN store_events e ON e.trading_day_id = d.id
		LEFT JOIN store_sales s ON s.event_id = e.id
		WHERE d.date >= ? AND d.date <= ?
		GROUP BY d.id, d.date
		ORDER BY d.date ASC`

	rows := []DailySalesRow{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), from, to); err != nil {
		return nil, Classify(err)
	}
	return rows, nil
}

// RequestCompletionRow 申请完成度
type RequestCompletionRow struct {
	RequestID      string `db:"-" json:"request_id"`
	TotalItems     int    `db:"total_items" json:"total_items"`
	CompletedItems int    `db:"completed_items" json:"completed_items"`
}

// AllCompleted 是否全部行项已完成（无行项时为 false）
func (r RequestCompletionRow) AllCompleted() bool {
	return r.TotalItems > 0 && r.CompletedItems == r.TotalItems
}

// RequestCompletion 统计申请的行项完成情况
func (r *ReportRepository) RequestCompletion(ctx context.Context, requestID string) (*RequestCompletionRow, error) {
	const q = `
		SELECT COUNT(*) AS total_items,
		       COALESCE(SUM(CASE WHEN is_completed THEN 1 ELSE 0 END), 0) AS completed_items
		FROM store_request_items
		WHERE request_id = ?`

	var row RequestCompletionRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(q), requestID); err != nil {
		return nil, Classify(err)
	}
	row.RequestID = requestID
	return &row, nil
}
