// internal/domain/product/service.go
package product

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/fashion-store/internal/config"
	"github.com/your-org/fashion-store/internal/pkg/apperror"
	"github.com/your-org/fashion-store/internal/pkg/pagination"
	"gorm.io/gorm"
)

// Service handles catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	pagination.Params
	CategoryID uint   `form:"category_id"`
	ColorID    uint   `form:"color_id"`
	SizeID     uint   `form:"size_id"`
	Search     string `form:"search"`
	MinPrice   string `form:"min_price"`
	MaxPrice   string `form:"max_price"`

	// IncludeInactive is only set by admin listings
	IncludeInactive bool `form:"-"`
}

// ProductListResponse represents a page of products
type ProductListResponse struct {
	Products   []Product             `json:"products"`
	Pagination pagination.Pagination `json:"pagination"`
}

// VariantCell is one entry of the color × size availability grid
type VariantCell struct {
	VariantID     uint            `json:"variant_id"`
	SKU           string          `json:"sku"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
}

// ProductDetail is everything the product page needs in one response
type ProductDetail struct {
	Product       *Product               `json:"product"`
	Colors        []Color                `json:"colors"`
	Sizes         []Size                 `json:"sizes"`
	VariantMatrix map[string]VariantCell `json:"variant_matrix"`
	ReviewSummary *ReviewSummary         `json:"review_summary"`
	Comments      []CommentView          `json:"comments"`
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	Name        string          `json:"name" binding:"required,max=200"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price"`
	CategoryID  uint            `json:"category_id" binding:"required"`
	ImageURL    string          `json:"image_url" binding:"omitempty,max=500"`
	IsActive    *bool           `json:"is_active"`
}

// ProductUpdateRequest represents product update data
type ProductUpdateRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=200"`
	Description *string          `json:"description"`
	BasePrice   *decimal.Decimal `json:"base_price"`
	CategoryID  *uint            `json:"category_id"`
	ImageURL    *string          `json:"image_url" binding:"omitempty,max=500"`
	IsActive    *bool            `json:"is_active"`
}

// VariantCreateRequest represents variant creation data. Price defaults to the
// product's base price and SKU is generated when empty.
type VariantCreateRequest struct {
	ColorID       uint             `json:"color_id" binding:"required"`
	SizeID        uint             `json:"size_id" binding:"required"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity int              `json:"stock_quantity" binding:"min=0"`
	SKU           string           `json:"sku" binding:"omitempty,max=100"`
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

type ColorRequest struct {
	Name    string `json:"name" binding:"required,max=50"`
	HexCode string `json:"hex_code" binding:"omitempty,len=7,startswith=#"`
}

type SizeRequest struct {
	Name      string `json:"name" binding:"required,max=20"`
	SortOrder int    `json:"sort_order"`
}

// ListProducts retrieves products with filtering and pagination
func (s *Service) ListProducts(ctx context.Context, req *ProductListRequest) (*ProductListResponse, error) {
	req.Normalize(s.config.Store.PageSize, s.config.Store.MaxPageSize)

	query := s.db.WithContext(ctx).Model(&Product{})

	if !req.IncludeInactive {
		query = query.Where("products.is_active = ?", true)
	}

	if req.CategoryID > 0 {
		query = query.Where("products.category_id = ?", req.CategoryID)
	}

	if search := strings.TrimSpace(req.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", pattern, pattern)
	}

	if req.MinPrice != "" {
		minPrice, err := decimal.NewFromString(req.MinPrice)
		if err != nil {
			return nil, apperror.Validation("min_price must be a number")
		}
		query = query.Where("products.base_price >= ?", minPrice)
	}

	if req.MaxPrice != "" {
		maxPrice, err := decimal.NewFromString(req.MaxPrice)
		if err != nil {
			return nil, apperror.Validation("max_price must be a number")
		}
		query = query.Where("products.base_price <= ?", maxPrice)
	}

	if req.ColorID > 0 {
		query = query.Where("EXISTS (SELECT 1 FROM product_variants pv WHERE pv.product_id = products.id AND pv.color_id = ?)", req.ColorID)
	}

	if req.SizeID > 0 {
		query = query.Where("EXISTS (SELECT 1 FROM product_variants pv WHERE pv.product_id = products.id AND pv.size_id = ?)", req.SizeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.Persistence("count products", err)
	}

	var products []Product
	err := query.
		Preload("Category").
		Order("products.created_at DESC, products.id DESC").
		Offset(req.Offset()).
		Limit(req.Limit).
		Find(&products).Error
	if err != nil {
		return nil, apperror.Persistence("list products", err)
	}

	return &ProductListResponse{
		Products:   products,
		Pagination: pagination.New(req.Params, total),
	}, nil
}

// GetProduct loads a product with its category and variants
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var product Product
	err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_variants.id ASC")
		}).
		Preload("Variants.Color").
		Preload("Variants.Size").
		First(&product, id).Error
	if err != nil {
		return nil, apperror.FromDB(err, "product", "load product")
	}
	return &product, nil
}

// GetProductDetail assembles the storefront product page. Inactive products
// are reported as not found.
func (s *Service) GetProductDetail(ctx context.Context, id uint) (*ProductDetail, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, apperror.NotFound("product")
	}

	detail := &ProductDetail{
		Product:       product,
		VariantMatrix: make(map[string]VariantCell, len(product.Variants)),
	}

	seenColors := make(map[uint]bool)
	seenSizes := make(map[uint]bool)
	for _, v := range product.Variants {
		detail.VariantMatrix[v.MatrixKey()] = VariantCell{
			VariantID:     v.ID,
			SKU:           v.SKU,
			Price:         v.Price,
			StockQuantity: v.StockQuantity,
		}
		if !seenColors[v.ColorID] {
			seenColors[v.ColorID] = true
			detail.Colors = append(detail.Colors, v.Color)
		}
		if !seenSizes[v.SizeID] {
			seenSizes[v.SizeID] = true
			detail.Sizes = append(detail.Sizes, v.Size)
		}
	}

	sort.Slice(detail.Colors, func(i, j int) bool { return detail.Colors[i].Name < detail.Colors[j].Name })
	sort.Slice(detail.Sizes, func(i, j int) bool {
		if detail.Sizes[i].SortOrder == detail.Sizes[j].SortOrder {
			return detail.Sizes[i].ID < detail.Sizes[j].ID
		}
		return detail.Sizes[i].SortOrder < detail.Sizes[j].SortOrder
	})

	db := s.db.WithContext(ctx)

	summary, err := summarizeReviews(db, id)
	if err != nil {
		return nil, err
	}
	detail.ReviewSummary = summary

	comments, err := visibleComments(db, id)
	if err != nil {
		return nil, err
	}
	detail.Comments = comments

	return detail, nil
}

// GetVariant loads a variant with its product, color and size
func (s *Service) GetVariant(ctx context.Context, id uint) (*ProductVariant, error) {
	var variant ProductVariant
	err := s.db.WithContext(ctx).
		Preload("Product").
		Preload("Color").
		Preload("Size").
		First(&variant, id).Error
	if err != nil {
		return nil, apperror.FromDB(err, "product variant", "load product variant")
	}
	return &variant, nil
}

// ListCategories returns all categories ordered by name
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperror.Persistence("list categories", err)
	}
	return categories, nil
}

func (s *Service) ListColors(ctx context.Context) ([]Color, error) {
	var colors []Color
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&colors).Error; err != nil {
		return nil, apperror.Persistence("list colors", err)
	}
	return colors, nil
}

func (s *Service) ListSizes(ctx context.Context) ([]Size, error) {
	var sizes []Size
	if err := s.db.WithContext(ctx).Order("sort_order ASC, id ASC").Find(&sizes).Error; err != nil {
		return nil, apperror.Persistence("list sizes", err)
	}
	return sizes, nil
}

// CreateCategory adds a category. Names are unique.
func (s *Service) CreateCategory(ctx context.Context, req *CategoryRequest) (*Category, error) {
	category := &Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if category.Name == "" {
		return nil, apperror.Validation("category name is required")
	}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, apperror.FromDB(err, "category", "create category")
	}
	return category, nil
}

func (s *Service) CreateColor(ctx context.Context, req *ColorRequest) (*Color, error) {
	color := &Color{Name: strings.TrimSpace(req.Name), HexCode: req.HexCode}
	if color.Name == "" {
		return nil, apperror.Validation("color name is required")
	}
	if err := s.db.WithContext(ctx).Create(color).Error; err != nil {
		return nil, apperror.FromDB(err, "color", "create color")
	}
	return color, nil
}

func (s *Service) CreateSize(ctx context.Context, req *SizeRequest) (*Size, error) {
	size := &Size{Name: strings.TrimSpace(req.Name), SortOrder: req.SortOrder}
	if size.Name == "" {
		return nil, apperror.Validation("size name is required")
	}
	if err := s.db.WithContext(ctx).Create(size).Error; err != nil {
		return nil, apperror.FromDB(err, "size", "create size")
	}
	return size, nil
}

// CreateProduct adds a product to an existing category
func (s *Service) CreateProduct(ctx context.Context, req *ProductCreateRequest) (*Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("product name is required")
	}
	if !req.BasePrice.IsPositive() {
		return nil, apperror.Validation("base price must be greater than zero")
	}

	db := s.db.WithContext(ctx)
	if err := ensureExists(db, &Category{}, req.CategoryID, "category"); err != nil {
		return nil, err
	}

	product := &Product{
		Name:        name,
		Description: req.Description,
		BasePrice:   req.BasePrice.Round(2),
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := db.Create(product).Error; err != nil {
		return nil, apperror.FromDB(err, "product", "create product")
	}

	s.logger.WithFields(logrus.Fields{
		"product_id":  product.ID,
		"category_id": product.CategoryID,
	}).Info("Product created")

	return s.GetProduct(ctx, product.ID)
}

// UpdateProduct applies a partial update. Deactivating hides the product from
// the storefront while keeping its variants referenced by past orders.
func (s *Service) UpdateProduct(ctx context.Context, id uint, req *ProductUpdateRequest) (*Product, error) {
	db := s.db.WithContext(ctx)

	var product Product
	if err := db.First(&product, id).Error; err != nil {
		return nil, apperror.FromDB(err, "product", "load product")
	}

	updates := make(map[string]interface{})

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.Validation("product name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.BasePrice != nil {
		if !req.BasePrice.IsPositive() {
			return nil, apperror.Validation("base price must be greater than zero")
		}
		updates["base_price"] = req.BasePrice.Round(2)
	}
	if req.CategoryID != nil {
		if err := ensureExists(db, &Category{}, *req.CategoryID, "category"); err != nil {
			return nil, err
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := db.Model(&product).Updates(updates).Error; err != nil {
			return nil, apperror.FromDB(err, "product", "update product")
		}
	}

	return s.GetProduct(ctx, id)
}

// CreateVariant adds a color/size combination to a product. A second variant
// with the same color and size is rejected by the unique index.
func (s *Service) CreateVariant(ctx context.Context, productID uint, req *VariantCreateRequest) (*ProductVariant, error) {
	if req.StockQuantity < 0 {
		return nil, apperror.Validation("stock quantity cannot be negative")
	}

	db := s.db.WithContext(ctx)

	var product Product
	if err := db.First(&product, productID).Error; err != nil {
		return nil, apperror.FromDB(err, "product", "load product")
	}
	if err := ensureExists(db, &Color{}, req.ColorID, "color"); err != nil {
		return nil, err
	}
	if err := ensureExists(db, &Size{}, req.SizeID, "size"); err != nil {
		return nil, err
	}

	price := product.BasePrice
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return nil, apperror.Validation("variant price must be greater than zero")
		}
		price = req.Price.Round(2)
	}

	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		sku = "SKU-" + strings.ToUpper(uuid.NewString()[:8])
	}

	variant := &ProductVariant{
		ProductID:     productID,
		ColorID:       req.ColorID,
		SizeID:        req.SizeID,
		Price:         price,
		StockQuantity: req.StockQuantity,
		SKU:           sku,
	}

	if err := db.Create(variant).Error; err != nil {
		return nil, apperror.FromDB(err, "variant with this color and size or SKU", "create variant")
	}

	return s.GetVariant(ctx, variant.ID)
}

func ensureExists(db *gorm.DB, model interface{}, id uint, resource string) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperror.Persistence("load "+resource, err)
	}
	if count == 0 {
		return apperror.NotFound(resource)
	}
	return nil
}
