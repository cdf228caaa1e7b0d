package controllers

import (
	"strconv"

	"lostfound/backend/config"
	"lostfound/backend/middleware"
	"lostfound/backend/services"
	"lostfound/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CommentController struct {
	Cfg     *config.Config
	Service *services.DiscussionService
}

func NewCommentController(db *gorm.DB, cfg *config.Config) *CommentController {
	return &CommentController{
		Cfg:     cfg,
		Service: services.NewDiscussionService(db, cfg),
	}
}

func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// GetThread returns one page of top-level comments with their direct
// replies. Negative paging input is coerced, never rejected.
func (cc *CommentController) GetThread(c *fiber.Ctx) error {
	itemID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid item ID")
	}

	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", cc.Cfg.DefaultPageSize)

	thread, err := cc.Service.GetThread(itemID, page, size)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, thread)
}

// GetFullThread returns the whole comment forest for an item, any depth.
func (cc *CommentController) GetFullThread(c *fiber.Ctx) error {
	itemID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid item ID")
	}

	forest, err := cc.Service.GetFullThread(itemID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, forest)
}

type addCommentRequest struct {
	Text            string `json:"text"`
	ParentCommentID *uint  `json:"parentCommentId"`
}

// Create adds a comment or a reply to an item.
func (cc *CommentController) Create(c *fiber.Ctx) error {
	itemID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid item ID")
	}

	var input addCommentRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	node, err := cc.Service.AddComment(itemID, input.Text, input.ParentCommentID, middleware.Principal(c))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Created(c, node)
}

type reportRequest struct {
	Cause string `json:"cause"`
}

// Report files an abuse report against a comment.
func (cc *CommentController) Report(c *fiber.Ctx) error {
	itemID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid item ID")
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return utils.BadRequest(c, "Invalid comment ID")
	}

	var input reportRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	count, err := cc.Service.ReportComment(itemID, commentID, input.Cause, middleware.Principal(c))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"totalReports": count})
}
