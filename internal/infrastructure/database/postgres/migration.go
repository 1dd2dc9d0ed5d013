// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/fashion-store/internal/config"
	"github.com/your-org/fashion-store/internal/domain/contact"
	"github.com/your-org/fashion-store/internal/domain/inventory"
	"github.com/your-org/fashion-store/internal/domain/newsletter"
	"github.com/your-org/fashion-store/internal/domain/order"
	"github.com/your-org/fashion-store/internal/domain/product"
	"github.com/your-org/fashion-store/internal/domain/user"
	"github.com/your-org/fashion-store/internal/domain/wishlist"
	"github.com/your-org/fashion-store/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// Models lists every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		// Accounts
		&user.User{},
		&user.PasswordResetToken{},

		// Catalog
		&product.Category{},
		&product.Color{},
		&product.Size{},
		&product.Product{},
		&product.ProductVariant{},
		&product.ProductReview{},
		&product.ProductComment{},

		// Stock ledger
		&inventory.InventoryMovement{},

		// Orders
		&order.Order{},
		&order.OrderDetail{},
		&order.OrderStatusHistory{},

		&wishlist.WishlistItem{},
		&newsletter.Subscription{},
		&contact.Message{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	for _, model := range Models() {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates composite indexes used by listings and reports
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_base_price ON products(base_price)",

		"CREATE INDEX IF NOT EXISTS idx_product_variants_stock ON product_variants(stock_quantity)",

		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_order_details_order_product ON order_details(order_id, product_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order_created ON order_status_history(order_id, created_at)",

		"CREATE INDEX IF NOT EXISTS idx_inventory_movements_variant_created ON inventory_movements(variant_id, created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_product_reviews_product_created ON product_reviews(product_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_wishlist_items_user_added ON wishlist_items(user_id, added_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_contact_messages_read_created ON contact_messages(is_read, created_at DESC)",
	}

	failed := 0
	for _, stmt := range indexes {
		if err := m.db.Exec(stmt).Error; err != nil {
			failed++
			m.logger.WithError(err).WithField("statement", stmt).Warn("Index creation failed")
		}
	}

	m.logger.WithFields(logrus.Fields{
		"created": len(indexes) - failed,
		"failed":  failed,
	}).Info("Additional indexes processed")

	if failed > 0 {
		return fmt.Errorf("%d of %d indexes failed", failed, len(indexes))
	}
	return nil
}

// SeedInitialData inserts the development catalog and accounts. It is safe to
// run repeatedly.
func (m *Migration) SeedInitialData() error {
	m.logger.Info("Seeding initial data")

	if err := m.seedCatalogAttributes(); err != nil {
		return fmt.Errorf("failed to seed catalog attributes: %w", err)
	}
	if err := m.seedUser("admin", "admin@example.com", "admin123", "Store Admin", auth.RoleAdmin); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if err := m.seedUser("jane", "jane@example.com", "customer123", "Jane Doe", auth.RoleCustomer); err != nil {
		return fmt.Errorf("failed to seed test user: %w", err)
	}
	if err := m.seedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	m.logger.Info("Initial data seeded")
	return nil
}

func (m *Migration) seedCatalogAttributes() error {
	categories := []product.Category{
		{Name: "Dresses", Description: "Day, evening and party dresses"},
		{Name: "Tops", Description: "Shirts, blouses and tees"},
		{Name: "Bottoms", Description: "Jeans, trousers and skirts"},
		{Name: "Outerwear", Description: "Coats and jackets"},
	}
	for i := range categories {
		if err := m.db.Where(product.Category{Name: categories[i].Name}).FirstOrCreate(&categories[i]).Error; err != nil {
			return err
		}
	}

	colors := []product.Color{
		{Name: "Black", HexCode: "#000000"},
		{Name: "White", HexCode: "#FFFFFF"},
		{Name: "Navy", HexCode: "#1F2A44"},
		{Name: "Red", HexCode: "#C0392B"},
	}
	for i := range colors {
		if err := m.db.Where(product.Color{Name: colors[i].Name}).FirstOrCreate(&colors[i]).Error; err != nil {
			return err
		}
	}

	sizes := []product.Size{
		{Name: "XS", SortOrder: 1},
		{Name: "S", SortOrder: 2},
		{Name: "M", SortOrder: 3},
		{Name: "L", SortOrder: 4},
		{Name: "XL", SortOrder: 5},
	}
	for i := range sizes {
		if err := m.db.Where(product.Size{Name: sizes[i].Name}).FirstOrCreate(&sizes[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (m *Migration) seedUser(username, email, password, fullName string, role auth.Role) error {
	var count int64
	if err := m.db.Model(&user.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		m.logger.WithField("email", email).Debug("Seed user already exists")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), m.config.Security.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	u := user.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		FullName: fullName,
		Address:  "1 Fashion Avenue",
		Role:     role,
		IsActive: true,
	}
	if err := m.db.Create(&u).Error; err != nil {
		return err
	}

	m.logger.WithFields(logrus.Fields{"email": email, "role": role}).Info("Created seed user")
	return nil
}

type seedProduct struct {
	code     string
	name     string
	category string
	price    string
	colors   []string
	sizes    []string
	stock    int
}

func (m *Migration) seedProducts() error {
	var count int64
	if err := m.db.Model(&product.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		m.logger.Debug("Seed products already exist")
		return nil
	}

	seeds := []seedProduct{
		{"MIDI", "Floral Midi Dress", "Dresses", "79.90", []string{"Navy", "Red"}, []string{"S", "M", "L"}, 12},
		{"SLIP", "Satin Slip Dress", "Dresses", "99.00", []string{"Black"}, []string{"XS", "S", "M"}, 4},
		{"LINEN", "Linen Shirt", "Tops", "49.50", []string{"White", "Navy"}, []string{"S", "M", "L", "XL"}, 20},
		{"JEAN", "Straight Leg Jeans", "Bottoms", "69.00", []string{"Navy", "Black"}, []string{"S", "M", "L"}, 15},
		{"TRENCH", "Classic Trench Coat", "Outerwear", "189.00", []string{"Black"}, []string{"M", "L"}, 3},
	}

	return m.db.Transaction(func(tx *gorm.DB) error {
		for _, seed := range seeds {
			var category product.Category
			if err := tx.Where("name = ?", seed.category).First(&category).Error; err != nil {
				return err
			}

			price := decimal.RequireFromString(seed.price)
			p := product.Product{
				Name:        seed.name,
				Description: fmt.Sprintf("%s from the seasonal collection.", seed.name),
				BasePrice:   price,
				CategoryID:  category.ID,
				IsActive:    true,
			}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}

			for _, colorName := range seed.colors {
				var color product.Color
				if err := tx.Where("name = ?", colorName).First(&color).Error; err != nil {
					return err
				}
				for _, sizeName := range seed.sizes {
					var size product.Size
					if err := tx.Where("name = ?", sizeName).First(&size).Error; err != nil {
						return err
					}
					variant := product.ProductVariant{
						ProductID:     p.ID,
						ColorID:       color.ID,
						SizeID:        size.ID,
						Price:         price,
						StockQuantity: seed.stock,
						SKU:           strings.ToUpper(fmt.Sprintf("%s-%s-%s", seed.code, colorName[:3], sizeName)),
					}
					if err := tx.Create(&variant).Error; err != nil {
						return err
					}
				}
			}

			m.logger.WithField("product", p.Name).Info("Created seed product")
		}
		return nil
	})
}
