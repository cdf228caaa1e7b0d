package services

import (
	"errors"
	"fmt"
	"strings"

	"lostfound/backend/models"

	"gorm.io/gorm"
)

// Report ledger: one report per (content, reporter) pair. The existence
// pre-check gives a friendly error on the common path; the composite unique
// index in the report tables is what actually guarantees uniqueness when two
// identical submissions race.

func fileCommentReport(tx *gorm.DB, commentID, reporterID uint, cause string) (int64, error) {
	cause = strings.TrimSpace(cause)
	if cause == "" {
		return 0, fmt.Errorf("%w: report cause is required", ErrInvalidInput)
	}

	var existing int64
	if err := tx.Model(&models.CommentReport{}).
		Where("comment_id = ? AND reporter_id = ?", commentID, reporterID).
		Count(&existing).Error; err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, fmt.Errorf("%w: you have already reported this comment", ErrConflict)
	}

	report := models.CommentReport{
		CommentID:  commentID,
		ReporterID: reporterID,
		Cause:      cause,
	}
	if err := tx.Create(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, fmt.Errorf("%w: you have already reported this comment", ErrConflict)
		}
		return 0, err
	}

	var count int64
	if err := tx.Model(&models.CommentReport{}).
		Where("comment_id = ?", commentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func fileItemReport(tx *gorm.DB, itemID, reporterID uint, cause string) (int64, error) {
	cause = strings.TrimSpace(cause)
	if cause == "" {
		return 0, fmt.Errorf("%w: report cause is required", ErrInvalidInput)
	}

	var existing int64
	if err := tx.Model(&models.ItemReport{}).
		Where("item_id = ? AND reporter_id = ?", itemID, reporterID).
		Count(&existing).Error; err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, fmt.Errorf("%w: you have already reported this item", ErrConflict)
	}

	report := models.ItemReport{
		ItemID:     itemID,
		ReporterID: reporterID,
		Cause:      cause,
	}
	if err := tx.Create(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, fmt.Errorf("%w: you have already reported this item", ErrConflict)
		}
		return 0, err
	}

	var count int64
	if err := tx.Model(&models.ItemReport{}).
		Where("item_id = ?", itemID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Moderation actuator for comments: at the threshold the comment is removed
// for good. Replies and reports go first so no row ever references a deleted
// comment.
func enforceCommentThreshold(tx *gorm.DB, commentID uint, count int64, threshold int) error {
	if count < int64(threshold) {
		return nil
	}

	var replyIDs []uint
	if err := tx.Model(&models.Comment{}).
		Where("parent_id = ?", commentID).
		Pluck("id", &replyIDs).Error; err != nil {
		return err
	}

	if len(replyIDs) > 0 {
		if err := tx.Unscoped().Where("comment_id IN ?", replyIDs).Delete(&models.CommentReport{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("parent_id = ?", commentID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Unscoped().Where("comment_id = ?", commentID).Delete(&models.CommentReport{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Delete(&models.Comment{}, commentID).Error
}

// Moderation actuator for items: the running count is mirrored onto the item
// on every report, and at the threshold the status flips to reported. Both
// transitions are terminal.
func enforceItemThreshold(tx *gorm.DB, item *models.Item, count int64, threshold int) error {
	item.ReportedCounts = int(count)
	if count >= int64(threshold) {
		item.Status = models.StatusReported
	}
	return tx.Save(item).Error
}
