package controllers

import (
	"strconv"
	"strings"
	"time"

	"lostfound/backend/config"
	"lostfound/backend/middleware"
	"lostfound/backend/models"
	"lostfound/backend/services"
	"lostfound/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProductController struct {
	Cfg     *config.Config
	Service *services.ProductService
}

func NewProductController(db *gorm.DB, cfg *config.Config) *ProductController {
	return &ProductController{
		Cfg:     cfg,
		Service: services.NewProductService(db, cfg),
	}
}

// List returns one page of active listings.
func (pc *ProductController) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", pc.Cfg.DefaultPageSize)

	result, err := pc.Service.FindAllProducts(page, size)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, result)
}

// Get returns a single active listing.
func (pc *ProductController) Get(c *fiber.Ctx) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid product ID")
	}

	result, err := pc.Service.GetProductByID(productID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, result)
}

func queryFloat(c *fiber.Ctx, name string) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return &v
	}
	return nil
}

func queryTime(c *fiber.Ctx, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	return nil
}

// Search filters active listings by location, name, type, categories and
// date range.
func (pc *ProductController) Search(c *fiber.Ctx) error {
	query := services.LocationQuery{
		Latitude:  queryFloat(c, "lat"),
		Longitude: queryFloat(c, "lon"),
		RadiusKm:  queryFloat(c, "radiusKm"),
		Name:      c.Query("name"),
		From:      queryTime(c, "from"),
		To:        queryTime(c, "to"),
		Page:      c.QueryInt("page", 0),
		Size:      c.QueryInt("size", pc.Cfg.DefaultPageSize),
	}

	if raw := c.Query("type"); raw != "" {
		itemType := models.ItemType(strings.ToLower(raw))
		query.Type = &itemType
	}
	if raw := c.Query("categoryIds"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64); err == nil {
				query.CategoryIDs = append(query.CategoryIDs, uint(id))
			}
		}
	}

	result, err := pc.Service.SearchByLocation(query)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, result)
}

// Counts returns platform-wide listing counts.
func (pc *ProductController) Counts(c *fiber.Ctx) error {
	loc := time.UTC
	if raw := c.Query("tz"); raw != "" {
		if parsed, err := time.LoadLocation(raw); err == nil {
			loc = parsed
		}
	}

	result, err := pc.Service.GetItemCounts(loc)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, result)
}

// MyCounts returns the caller's lost/found listing counts.
func (pc *ProductController) MyCounts(c *fiber.Ctx) error {
	result, err := pc.Service.GetUserItemCounts(middleware.Principal(c))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, result)
}

// Categories lists all listing categories.
func (pc *ProductController) Categories(c *fiber.Ctx) error {
	result, err := pc.Service.GetAllCategories()
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, result)
}

// Create adds a listing owned by the caller.
func (pc *ProductController) Create(c *fiber.Ctx) error {
	var input services.ProductRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	result, err := pc.Service.AddProduct(&input, middleware.Principal(c))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Created(c, result)
}

// Update applies a partial update to an owned listing.
func (pc *ProductController) Update(c *fiber.Ctx) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid product ID")
	}

	var input services.ProductRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	result, err := pc.Service.UpdateProduct(productID, &input, middleware.Principal(c))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, result)
}

// Delete removes an owned listing and everything attached to it.
func (pc *ProductController) Delete(c *fiber.Ctx) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid product ID")
	}

	result, err := pc.Service.DeleteProduct(productID, middleware.Principal(c))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, result)
}

// Report files an abuse report against a listing.
func (pc *ProductController) Report(c *fiber.Ctx) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid product ID")
	}

	var input reportRequest
	if err := c.BodyParser(&input); err != nil && len(c.Body()) > 0 {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	count, err := pc.Service.ReportItem(productID, input.Cause, middleware.Principal(c))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"totalReports": count})
}
