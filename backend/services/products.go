package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"lostfound/backend/config"
	"lostfound/backend/models"
	"lostfound/backend/utils"

	"gorm.io/gorm"
)

// findVisibleItem loads an item for discussion or mutation. A missing item
// and a moderation-hidden one are indistinguishable to callers.
func findVisibleItem(db *gorm.DB, itemID uint) (*models.Item, error) {
	var item models.Item
	if err := db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: item not found", ErrNotFound)
		}
		return nil, err
	}
	if item.Status == models.StatusReported {
		return nil, fmt.Errorf("%w: item not found", ErrNotFound)
	}
	return &item, nil
}

// ProductRequest carries create/update input. Nil fields are left untouched
// on update.
type ProductRequest struct {
	Name         *string            `json:"name"`
	Description  *string            `json:"description"`
	Notes        *string            `json:"notes"`
	Type         *models.ItemType   `json:"type"`
	Status       *models.ItemStatus `json:"status"`
	Latitude     *float64           `json:"latitude"`
	Longitude    *float64           `json:"longitude"`
	Image        *string            `json:"image"`
	CategoryID   *uint              `json:"categoryId"`
	CategoryName *string            `json:"categoryName"`
}

type CategoryResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type ReporterResponse struct {
	ID       uint   `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type ProductResponse struct {
	ID             uint              `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Type           models.ItemType   `json:"type"`
	Status         models.ItemStatus `json:"status"`
	ReportedCounts int               `json:"reportedCounts"`
	Latitude       float64           `json:"latitude"`
	Longitude      float64           `json:"longitude"`
	Image          string            `json:"image,omitempty"`
	Category       CategoryResponse  `json:"category"`
	Reporter       ReporterResponse  `json:"reporter"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

type ProductPage struct {
	Items      []ProductResponse `json:"items"`
	Page       int               `json:"page"`
	Size       int               `json:"size"`
	TotalItems int64             `json:"totalItems"`
	TotalPages int               `json:"totalPages"`
	HasNext    bool              `json:"hasNext"`
}

// LocationQuery filters the geographic listing search. Latitude, longitude
// and radius are all-or-none.
type LocationQuery struct {
	Latitude    *float64
	Longitude   *float64
	RadiusKm    *float64
	Name        string
	Type        *models.ItemType
	CategoryIDs []uint
	From        *time.Time
	To          *time.Time
	Page        int
	Size        int
}

type ItemCounts struct {
	TodayReported int64 `json:"todayReported"`
	AllReported   int64 `json:"allReported"`
	Returned      int64 `json:"returned"`
}

type UserItemCounts struct {
	FoundReported int64 `json:"foundReported"`
	LostReported  int64 `json:"lostReported"`
}

// ProductService owns the listing use cases: browse, search, CRUD with
// ownership checks, aggregate counts and listing moderation.
type ProductService struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Identity *IdentityResolver
}

func NewProductService(db *gorm.DB, cfg *config.Config) *ProductService {
	return &ProductService{
		DB:       db,
		Cfg:      cfg,
		Identity: NewIdentityResolver(db),
	}
}

func toProductResponse(item *models.Item) ProductResponse {
	resp := ProductResponse{
		ID:             item.ID,
		Name:           item.Name,
		Description:    item.Description,
		Type:           item.Type,
		Status:         item.Status,
		ReportedCounts: item.ReportedCounts,
		Latitude:       item.Latitude,
		Longitude:      item.Longitude,
		Category: CategoryResponse{
			ID:    item.Category.ID,
			Name:  item.Category.Name,
			Color: item.Category.Color,
		},
		Reporter: ReporterResponse{
			ID:       item.Reporter.ID,
			FullName: item.Reporter.FullName,
			Email:    item.Reporter.Email,
		},
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	if len(item.Image) > 0 {
		resp.Image = base64.StdEncoding.EncodeToString(item.Image)
	}
	return resp
}

func clampPaging(page, size, defaultSize int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = defaultSize
	}
	return page, size
}

// FindAllProducts returns one page of active listings, newest first.
func (s *ProductService) FindAllProducts(page, size int) (*ProductPage, error) {
	page, size = clampPaging(page, size, s.Cfg.DefaultPageSize)

	var total int64
	if err := s.DB.Model(&models.Item{}).
		Where("status = ?", models.StatusActive).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Item
	if err := s.DB.Preload("Category").Preload("Reporter").
		Where("status = ?", models.StatusActive).
		Order("created_at DESC, id DESC").
		Limit(size).Offset(page * size).
		Find(&items).Error; err != nil {
		return nil, err
	}

	return s.buildPage(items, page, size, total), nil
}

func (s *ProductService) buildPage(items []models.Item, page, size int, total int64) *ProductPage {
	responses := make([]ProductResponse, len(items))
	for i := range items {
		responses[i] = toProductResponse(&items[i])
	}
	totalPages := int((total + int64(size) - 1) / int64(size))
	return &ProductPage{
		Items:      responses,
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
		HasNext:    int64((page+1)*size) < total,
	}
}

// GetProductByID returns a single active listing.
func (s *ProductService) GetProductByID(productID uint) (*ProductResponse, error) {
	var item models.Item
	err := s.DB.Preload("Category").Preload("Reporter").First(&item, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return nil, err
	}
	if item.Status != models.StatusActive {
		return nil, fmt.Errorf("%w: product not found", ErrNotFound)
	}
	resp := toProductResponse(&item)
	return &resp, nil
}

// SearchByLocation filters active listings by an approximate bounding box
// around the center point plus optional name, type, category and date
// filters.
func (s *ProductService) SearchByLocation(q LocationQuery) (*ProductPage, error) {
	anyLocation := q.Latitude != nil || q.Longitude != nil || q.RadiusKm != nil
	allLocation := q.Latitude != nil && q.Longitude != nil && q.RadiusKm != nil
	if anyLocation && !allLocation {
		return nil, fmt.Errorf("%w: lat, lon and radiusKm must be provided together", ErrInvalidInput)
	}

	page, size := clampPaging(q.Page, q.Size, s.Cfg.DefaultPageSize)

	query := s.DB.Model(&models.Item{}).Where("status = ?", models.StatusActive)

	if allLocation {
		if *q.RadiusKm <= 0 {
			return nil, fmt.Errorf("%w: radius must be greater than 0", ErrInvalidInput)
		}
		// ~111 km per degree of latitude; longitude shrinks with cos(lat).
		latDelta := *q.RadiusKm / 111.0
		lonDelta := *q.RadiusKm / (111.0 * math.Cos(*q.Latitude*math.Pi/180.0))
		query = query.
			Where("latitude BETWEEN ? AND ?", *q.Latitude-latDelta, *q.Latitude+latDelta).
			Where("longitude BETWEEN ? AND ?", *q.Longitude-lonDelta, *q.Longitude+lonDelta)
	}

	if name := strings.TrimSpace(q.Name); name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if q.Type != nil {
		query = query.Where("type = ?", *q.Type)
	}
	if len(q.CategoryIDs) > 0 {
		query = query.Where("category_id IN ?", q.CategoryIDs)
	}
	if q.From != nil {
		query = query.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		query = query.Where("created_at <= ?", *q.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Item
	if err := query.Preload("Category").Preload("Reporter").
		Order("created_at DESC, id DESC").
		Limit(size).Offset(page * size).
		Find(&items).Error; err != nil {
		return nil, err
	}

	return s.buildPage(items, page, size, total), nil
}

// GetItemCounts reports platform-wide listing counts for the given zone's
// current day.
func (s *ProductService) GetItemCounts(loc *time.Location) (*ItemCounts, error) {
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	counts := &ItemCounts{}
	if err := s.DB.Model(&models.Item{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&counts.TodayReported).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Item{}).Count(&counts.AllReported).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Item{}).
		Where("status = ?", models.StatusDelivered).
		Count(&counts.Returned).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

// GetUserItemCounts reports how many lost and found listings the caller has
// filed.
func (s *ProductService) GetUserItemCounts(principal *utils.Principal) (*UserItemCounts, error) {
	reporter, err := s.Identity.Resolve(principal)
	if err != nil {
		return nil, err
	}

	counts := &UserItemCounts{}
	if err := s.DB.Model(&models.Item{}).
		Where("reporter_id = ? AND type = ?", reporter.ID, models.TypeFound).
		Count(&counts.FoundReported).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Item{}).
		Where("reporter_id = ? AND type = ?", reporter.ID, models.TypeLost).
		Count(&counts.LostReported).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

// GetAllCategories lists every category ordered by id.
func (s *ProductService) GetAllCategories() ([]CategoryResponse, error) {
	var categories []models.Category
	if err := s.DB.Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	responses := make([]CategoryResponse, len(categories))
	for i, category := range categories {
		responses[i] = CategoryResponse{ID: category.ID, Name: category.Name, Color: category.Color}
	}
	return responses, nil
}

func validItemType(t models.ItemType) bool {
	return t == models.TypeLost || t == models.TypeFound
}

func validInputStatus(st models.ItemStatus) bool {
	switch st {
	case models.StatusOpen, models.StatusMatched, models.StatusDelivered, models.StatusActive:
		return true
	}
	// "reported" is reachable only through moderation.
	return false
}

// AddProduct creates a listing owned by the principal.
func (s *ProductService) AddProduct(req *ProductRequest, principal *utils.Principal) (*ProductResponse, error) {
	if err := ValidatePrincipal(principal); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: request cannot be empty", ErrInvalidInput)
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if req.Type == nil || !validItemType(*req.Type) {
		return nil, fmt.Errorf("%w: type must be lost or found", ErrInvalidInput)
	}
	if req.Status == nil || !validInputStatus(*req.Status) {
		return nil, fmt.Errorf("%w: status is required", ErrInvalidInput)
	}
	if req.Latitude == nil || req.Longitude == nil {
		return nil, fmt.Errorf("%w: latitude and longitude are required", ErrInvalidInput)
	}
	if req.CategoryID == nil && (req.CategoryName == nil || strings.TrimSpace(*req.CategoryName) == "") {
		return nil, fmt.Errorf("%w: category is required", ErrInvalidInput)
	}

	reporter, err := s.Identity.Resolve(principal)
	if err != nil {
		return nil, err
	}

	category, err := s.resolveCategory(req)
	if err != nil {
		return nil, err
	}

	description := ""
	if req.Description != nil {
		description = *req.Description
	} else if req.Notes != nil {
		description = *req.Notes
	}

	image, err := parseImageBase64(req.Image)
	if err != nil {
		return nil, err
	}

	item := models.Item{
		Name:        strings.TrimSpace(*req.Name),
		Description: description,
		Type:        *req.Type,
		Status:      *req.Status,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Image:       image,
		CategoryID:  category.ID,
		ReporterID:  reporter.ID,
	}
	if err := s.DB.Create(&item).Error; err != nil {
		return nil, err
	}

	item.Category = *category
	item.Reporter = *reporter
	resp := toProductResponse(&item)
	return &resp, nil
}

// UpdateProduct applies the non-nil request fields to an owned listing.
func (s *ProductService) UpdateProduct(productID uint, req *ProductRequest, principal *utils.Principal) (*ProductResponse, error) {
	if err := ValidatePrincipal(principal); err != nil {
		return nil, err
	}

	item, err := findVisibleItem(s.DB, productID)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Preload("Category").Preload("Reporter").First(item, item.ID).Error; err != nil {
		return nil, err
	}

	if item.Reporter.Email != principal.Email {
		return nil, fmt.Errorf("%w: you are not authorized to update this product", ErrForbidden)
	}

	if req != nil {
		if req.Name != nil {
			item.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			item.Description = *req.Description
		} else if req.Notes != nil {
			item.Description = *req.Notes
		}
		if req.Type != nil {
			if !validItemType(*req.Type) {
				return nil, fmt.Errorf("%w: type must be lost or found", ErrInvalidInput)
			}
			item.Type = *req.Type
		}
		if req.Status != nil {
			if !validInputStatus(*req.Status) {
				return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
			}
			item.Status = *req.Status
		}
		if req.Latitude != nil {
			item.Latitude = *req.Latitude
		}
		if req.Longitude != nil {
			item.Longitude = *req.Longitude
		}
		if req.Image != nil {
			image, err := parseImageBase64(req.Image)
			if err != nil {
				return nil, err
			}
			item.Image = image
		}
		if req.CategoryID != nil || (req.CategoryName != nil && strings.TrimSpace(*req.CategoryName) != "") {
			category, err := s.resolveCategory(req)
			if err != nil {
				return nil, err
			}
			item.CategoryID = category.ID
			item.Category = *category
		}
	}

	if err := s.DB.Save(item).Error; err != nil {
		return nil, err
	}

	resp := toProductResponse(item)
	return &resp, nil
}

// DeleteProduct removes an owned listing together with its comments and
// reports, which have no life of their own.
func (s *ProductService) DeleteProduct(productID uint, principal *utils.Principal) (*ProductResponse, error) {
	if err := ValidatePrincipal(principal); err != nil {
		return nil, err
	}

	var item models.Item
	err := s.DB.Preload("Category").Preload("Reporter").First(&item, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return nil, err
	}

	if item.Reporter.Email != principal.Email {
		return nil, fmt.Errorf("%w: you are not authorized to delete this product", ErrForbidden)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).
			Where("item_id = ?", item.ID).
			Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Unscoped().Where("comment_id IN ?", commentIDs).Delete(&models.CommentReport{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("item_id = ?", item.ID).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("item_id = ?", item.ID).Delete(&models.ItemReport{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Item{}, item.ID).Error
	})
	if err != nil {
		return nil, err
	}

	resp := toProductResponse(&item)
	return &resp, nil
}

// ReportItem files one report from the principal against the listing and
// returns the distinct-reporter count. The count is mirrored onto the item
// on every report; at the threshold the status flips to reported.
func (s *ProductService) ReportItem(itemID uint, cause string, principal *utils.Principal) (int64, error) {
	if err := ValidatePrincipal(principal); err != nil {
		return 0, err
	}
	if strings.TrimSpace(cause) == "" {
		cause = "reported"
	}

	item, err := findVisibleItem(s.DB, itemID)
	if err != nil {
		return 0, err
	}

	reporter, err := s.Identity.Resolve(principal)
	if err != nil {
		return 0, err
	}

	var count int64
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		count, err = fileItemReport(tx, item.ID, reporter.ID, cause)
		if err != nil {
			return err
		}
		return enforceItemThreshold(tx, item, count, s.Cfg.ItemReportThreshold)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *ProductService) resolveCategory(req *ProductRequest) (*models.Category, error) {
	if req.CategoryID != nil {
		var category models.Category
		if err := s.DB.First(&category, *req.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: category not found", ErrNotFound)
			}
			return nil, err
		}
		return &category, nil
	}

	name := strings.TrimSpace(*req.CategoryName)
	if id, err := strconv.ParseUint(name, 10, 64); err == nil {
		var category models.Category
		if err := s.DB.First(&category, uint(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: category not found", ErrNotFound)
			}
			return nil, err
		}
		return &category, nil
	}

	var category models.Category
	if err := s.DB.Where("LOWER(name) = LOWER(?)", name).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category not found", ErrNotFound)
		}
		return nil, err
	}
	return &category, nil
}

// parseImageBase64 accepts either a bare base64 string or a data URI and
// returns the raw bytes.
func parseImageBase64(image *string) ([]byte, error) {
	if image == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*image)
	if trimmed == "" {
		return nil, nil
	}
	if idx := strings.Index(trimmed, ","); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: image must be valid base64", ErrInvalidInput)
	}
	return data, nil
}
