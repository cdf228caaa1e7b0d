package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lostfound/backend/config"
	"lostfound/backend/models"
	"lostfound/backend/utils"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// CommentNode is one comment plus its ordered direct replies.
type CommentNode struct {
	ID         uint           `json:"id"`
	Text       string         `json:"text"`
	CreatedAt  time.Time      `json:"createdAt"`
	AuthorID   uint           `json:"authorId"`
	AuthorName string         `json:"authorName"`
	ParentID   *uint          `json:"parentCommentId"`
	Replies    []*CommentNode `json:"replies"`
}

// CommentPage is one page of top-level comments with authoritative totals
// from the backing store.
type CommentPage struct {
	Items      []*CommentNode `json:"items"`
	Page       int            `json:"page"`
	Size       int            `json:"size"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int            `json:"totalPages"`
	HasNext    bool           `json:"hasNext"`
}

// DiscussionService owns the threaded-discussion use cases: reading a
// comment forest, adding comments and replies, and comment moderation.
type DiscussionService struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Identity  *IdentityResolver
	sanitizer *bluemonday.Policy
}

func NewDiscussionService(db *gorm.DB, cfg *config.Config) *DiscussionService {
	return &DiscussionService{
		DB:        db,
		Cfg:       cfg,
		Identity:  NewIdentityResolver(db),
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func toNode(c *models.Comment) *CommentNode {
	return &CommentNode{
		ID:         c.ID,
		Text:       c.Text,
		CreatedAt:  c.CreatedAt,
		AuthorID:   c.AuthorID,
		AuthorName: c.Author.FullName,
		ParentID:   c.ParentID,
		Replies:    []*CommentNode{},
	}
}

// GetThread returns one page of top-level comments, oldest first, each with
// its direct replies attached in chronological order. Deeper nesting is not
// expanded here; the product surface renders a single reply level.
func (s *DiscussionService) GetThread(itemID uint, page, size int) (*CommentPage, error) {
	if _, err := findVisibleItem(s.DB, itemID); err != nil {
		return nil, err
	}

	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = 1
	}

	var total int64
	if err := s.DB.Model(&models.Comment{}).
		Where("item_id = ? AND parent_id IS NULL", itemID).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var roots []models.Comment
	if err := s.DB.Preload("Author").
		Where("item_id = ? AND parent_id IS NULL", itemID).
		Order("created_at ASC, id ASC").
		Limit(size).Offset(page * size).
		Find(&roots).Error; err != nil {
		return nil, err
	}

	rootIDs := make([]uint, len(roots))
	nodes := make([]*CommentNode, len(roots))
	byID := make(map[uint]*CommentNode, len(roots))
	for i := range roots {
		rootIDs[i] = roots[i].ID
		nodes[i] = toNode(&roots[i])
		byID[roots[i].ID] = nodes[i]
	}

	if len(rootIDs) > 0 {
		var replies []models.Comment
		if err := s.DB.Preload("Author").
			Where("parent_id IN ?", rootIDs).
			Order("created_at ASC, id ASC").
			Find(&replies).Error; err != nil {
			return nil, err
		}
		for i := range replies {
			parent := byID[*replies[i].ParentID]
			parent.Replies = append(parent.Replies, toNode(&replies[i]))
		}
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return &CommentPage{
		Items:      nodes,
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
		HasNext:    int64((page+1)*size) < total,
	}, nil
}

// GetFullThread loads the complete comment set for an item and rebuilds the
// forest in a single chronological pass. An orphaned reply, whose parent was
// removed by a prior moderation pass, surfaces as a root rather than being
// dropped. Depth is unbounded.
func (s *DiscussionService) GetFullThread(itemID uint) ([]*CommentNode, error) {
	if _, err := findVisibleItem(s.DB, itemID); err != nil {
		return nil, err
	}

	var comments []models.Comment
	if err := s.DB.Preload("Author").
		Where("item_id = ?", itemID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}

	roots := []*CommentNode{}
	seen := make(map[uint]*CommentNode, len(comments))
	for i := range comments {
		node := toNode(&comments[i])
		seen[node.ID] = node
		if node.ParentID != nil {
			if parent, ok := seen[*node.ParentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}

// AddComment creates a top-level comment, or a reply when parentID is set.
// The parent must belong to the same item.
func (s *DiscussionService) AddComment(itemID uint, text string, parentID *uint, principal *utils.Principal) (*CommentNode, error) {
	if err := ValidatePrincipal(principal); err != nil {
		return nil, err
	}

	text = s.sanitizer.Sanitize(strings.TrimSpace(text))
	if text == "" {
		return nil, fmt.Errorf("%w: comment text cannot be empty", ErrInvalidInput)
	}

	if _, err := findVisibleItem(s.DB, itemID); err != nil {
		return nil, err
	}

	author, err := s.Identity.Resolve(principal)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		var parent models.Comment
		if err := s.DB.First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: parent comment not found", ErrNotFound)
			}
			return nil, err
		}
		if parent.ItemID != itemID {
			return nil, fmt.Errorf("%w: parent comment does not belong to this item", ErrInvalidInput)
		}
	}

	comment := models.Comment{
		ItemID:   itemID,
		AuthorID: author.ID,
		ParentID: parentID,
		Text:     text,
	}
	if err := s.DB.Create(&comment).Error; err != nil {
		return nil, err
	}

	comment.Author = *author
	return toNode(&comment), nil
}

// ReportComment files one report from the principal against the comment and
// returns the distinct-reporter count. At the configured threshold the
// comment, its direct replies and its reports are deleted atomically.
func (s *DiscussionService) ReportComment(itemID, commentID uint, cause string, principal *utils.Principal) (int64, error) {
	if err := ValidatePrincipal(principal); err != nil {
		return 0, err
	}
	if strings.TrimSpace(cause) == "" {
		return 0, fmt.Errorf("%w: report cause is required", ErrInvalidInput)
	}

	if _, err := findVisibleItem(s.DB, itemID); err != nil {
		return 0, err
	}

	var comment models.Comment
	if err := s.DB.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: comment not found", ErrNotFound)
		}
		return 0, err
	}
	if comment.ItemID != itemID {
		return 0, fmt.Errorf("%w: comment does not belong to this item", ErrInvalidInput)
	}

	reporter, err := s.Identity.Resolve(principal)
	if err != nil {
		return 0, err
	}

	var count int64
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		count, err = fileCommentReport(tx, commentID, reporter.ID, cause)
		if err != nil {
			return err
		}
		return enforceCommentThreshold(tx, commentID, count, s.Cfg.CommentReportThreshold)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
