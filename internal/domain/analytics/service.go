// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/fashion-store/internal/config"
	"github.com/your-org/fashion-store/internal/domain/order"
	"github.com/your-org/fashion-store/internal/pkg/apperror"
	"github.com/your-org/fashion-store/internal/pkg/auth"
	"gorm.io/gorm"
)

// LowStockThreshold is the stock level at or below which a variant is flagged
const LowStockThreshold = 5

// revenueStatuses are the order statuses counted as realized revenue
var revenueStatuses = []order.OrderStatus{order.OrderStatusCompleted, order.OrderStatusShipped}

// Service handles analytics business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
	now    func() time.Time
}

// NewService creates a new analytics service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// DashboardStats represents overall dashboard statistics
type DashboardStats struct {
	TotalProducts    int64           `json:"total_products"`
	ActiveProducts   int64           `json:"active_products"`
	TotalOrders      int64           `json:"total_orders"`
	PendingOrders    int64           `json:"pending_orders"`
	TotalCustomers   int64           `json:"total_customers"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	LowStockVariants int64           `json:"low_stock_variants"`
	UnreadMessages   int64           `json:"unread_messages"`
	RecentOrders     []order.Order   `json:"recent_orders"`
}

// RevenueReport groups realized revenue by period, category and product
type RevenueReport struct {
	Monthly     []RevenuePoint    `json:"monthly"`
	Daily       []RevenuePoint    `json:"daily"`
	ByCategory  []CategoryRevenue `json:"by_category"`
	BestSellers []BestSeller      `json:"best_sellers"`
}

// RevenuePoint is the revenue of one month ("2006-01") or day ("2006-01-02")
type RevenuePoint struct {
	Period  string          `json:"period"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
}

type CategoryRevenue struct {
	CategoryID   uint            `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Revenue      decimal.Decimal `json:"revenue"`
	UnitsSold    int64           `json:"units_sold"`
}

type BestSeller struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitsSold   int64           `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// Dashboard retrieves the back-office summary
func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &DashboardStats{}

	counts := []struct {
		dest  *int64
		query string
		args  []interface{}
	}{
		{&stats.TotalProducts, "SELECT COUNT(*) FROM products", nil},
		{&stats.ActiveProducts, "SELECT COUNT(*) FROM products WHERE is_active = ?", []interface{}{true}},
		{&stats.TotalOrders, "SELECT COUNT(*) FROM orders", nil},
		{&stats.PendingOrders, "SELECT COUNT(*) FROM orders WHERE status = ?", []interface{}{order.OrderStatusPending}},
		{&stats.TotalCustomers, "SELECT COUNT(*) FROM users WHERE role = ?", []interface{}{auth.RoleCustomer}},
		{&stats.LowStockVariants, "SELECT COUNT(*) FROM product_variants WHERE stock_quantity <= ?", []interface{}{LowStockThreshold}},
		{&stats.UnreadMessages, "SELECT COUNT(*) FROM contact_messages WHERE is_read = ?", []interface{}{false}},
	}
	for _, c := range counts {
		if err := db.Raw(c.query, c.args...).Scan(c.dest).Error; err != nil {
			return nil, apperror.Persistence("load dashboard counts", err)
		}
	}

	var revenue decimal.NullDecimal
	err := db.Raw("SELECT SUM(total_amount) FROM orders WHERE status IN ?", revenueStatuses).Scan(&revenue).Error
	if err != nil {
		return nil, apperror.Persistence("sum revenue", err)
	}
	stats.TotalRevenue = decimal.Zero
	if revenue.Valid {
		stats.TotalRevenue = revenue.Decimal.Round(2)
	}

	err = db.Preload("User").
		Order("created_at DESC, id DESC").
		Limit(s.config.Store.RecentOrdersLimit).
		Find(&stats.RecentOrders).Error
	if err != nil {
		return nil, apperror.Persistence("load recent orders", err)
	}

	return stats, nil
}

// RevenueReport builds monthly revenue for the last 12 months, daily revenue
// for the last 7 days, revenue per category and the best sellers. Periods
// without orders are reported with zero revenue.
func (s *Service) RevenueReport(ctx context.Context) (*RevenueReport, error) {
	db := s.db.WithContext(ctx)
	now := s.now()

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -6)

	var orders []struct {
		TotalAmount decimal.Decimal
		CreatedAt   time.Time
	}
	err := db.Model(&order.Order{}).
		Select("total_amount", "created_at").
		Where("status IN ? AND created_at >= ?", revenueStatuses, monthStart).
		Scan(&orders).Error
	if err != nil {
		return nil, apperror.Persistence("load revenue orders", err)
	}

	monthly := newBuckets(monthStart, 12, func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }, "2006-01")
	daily := newBuckets(dayStart, 7, func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }, "2006-01-02")
	for _, o := range orders {
		at := o.CreatedAt.UTC()
		monthly.add(at, o.TotalAmount)
		daily.add(at, o.TotalAmount)
	}

	report := &RevenueReport{
		Monthly: monthly.points,
		Daily:   daily.points,
	}

	err = db.Raw(`
		SELECT c.id AS category_id, c.name AS category_name,
			SUM(od.total_price) AS revenue, SUM(od.quantity) AS units_sold
		FROM order_details od
		JOIN orders o ON o.id = od.order_id
		JOIN product_variants pv ON pv.id = od.variant_id
		JOIN products p ON p.id = pv.product_id
		JOIN categories c ON c.id = p.category_id
		WHERE o.status IN ?
		GROUP BY c.id, c.name
		ORDER BY revenue DESC`, revenueStatuses).
		Scan(&report.ByCategory).Error
	if err != nil {
		return nil, apperror.Persistence("load category revenue", err)
	}

	err = db.Raw(`
		SELECT p.id AS product_id, p.name AS product_name,
			SUM(od.quantity) AS units_sold, SUM(od.total_price) AS revenue
		FROM order_details od
		JOIN orders o ON o.id = od.order_id
		JOIN products p ON p.id = od.product_id
		WHERE o.status IN ?
		GROUP BY p.id, p.name
		ORDER BY units_sold DESC, revenue DESC
		LIMIT 10`, revenueStatuses).
		Scan(&report.BestSellers).Error
	if err != nil {
		return nil, apperror.Persistence("load best sellers", err)
	}

	for i := range report.ByCategory {
		report.ByCategory[i].Revenue = report.ByCategory[i].Revenue.Round(2)
	}
	for i := range report.BestSellers {
		report.BestSellers[i].Revenue = report.BestSellers[i].Revenue.Round(2)
	}

	return report, nil
}

// buckets are consecutive periods starting at start
type buckets struct {
	starts []time.Time
	points []RevenuePoint
}

func newBuckets(start time.Time, n int, next func(time.Time) time.Time, layout string) *buckets {
	b := &buckets{
		starts: make([]time.Time, 0, n+1),
		points: make([]RevenuePoint, 0, n),
	}
	at := start
	for i := 0; i < n; i++ {
		b.starts = append(b.starts, at)
		b.points = append(b.points, RevenuePoint{Period: at.Format(layout), Revenue: decimal.Zero})
		at = next(at)
	}
	b.starts = append(b.starts, at)
	return b
}

func (b *buckets) add(at time.Time, amount decimal.Decimal) {
	for i := range b.points {
		if !at.Before(b.starts[i]) && at.Before(b.starts[i+1]) {
			b.points[i].Revenue = b.points[i].Revenue.Add(amount)
			b.points[i].Orders++
			return
		}
	}
}
