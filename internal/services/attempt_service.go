package services

import (
	"context"
	"html/template"
	"strings"
	"time"

	"capoff/internal/apperr"
	"capoff/internal/events"
	"capoff/internal/identity"
	"capoff/internal/models"
	"capoff/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttemptService handles the attempt lifecycle (publish, delete) and the
// read side: lists and details with vote/comment aggregates recomputed from
// the ledger on every read. No denormalized counters exist, so write paths
// stay free of counter races.
type AttemptService struct {
	db     *gorm.DB
	users  *UserService
	video  *VideoService
	events *events.Publisher
}

func NewAttemptService(db *gorm.DB, users *UserService, video *VideoService, pub *events.Publisher) *AttemptService {
	return &AttemptService{db: db, users: users, video: video, events: pub}
}

type CreateAttemptInput struct {
	VideoRef      string
	UploadID      string
	ToolUsed      string
	BeverageBrand string
	Description   string
}

// AttemptSummary is one list row: the attempt plus its read-time aggregates.
type AttemptSummary struct {
	Aid           string    `json:"id"`
	UserID        string    `json:"user_id"`
	Username      string    `json:"username"`
	ToolUsed      string    `json:"tool_used"`
	BeverageBrand string    `json:"beverage_brand"`
	VideoRef      string    `json:"video_ref"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
	VoteCount     int       `json:"vote_count"`
	UserVote      int       `json:"user_vote"`
	CommentCount  int       `json:"comment_count"`
}

type CommentView struct {
	ID        uint      `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type AttemptDetail struct {
	AttemptSummary
	DescriptionHTML template.HTML `json:"description_html"`
	Comments        []CommentView `json:"comments"`
}

// ToolCount is one row of the per-tool breakdown.
type ToolCount struct {
	Tool  string `json:"tool"`
	Count int    `json:"count"`
}

type ToolStats struct {
	TotalAttempts int64       `json:"total_attempts"`
	DistinctTools int64       `json:"distinct_tools"`
	Tools         []ToolCount `json:"tools"`
}

type Suggestions struct {
	Tools  []string `json:"tools"`
	Brands []string `json:"brands"`
}

// Create publishes an attempt. The caller may hand over a ready playback
// reference, or an upload id that we resolve against the video host with
// the bounded readiness poll.
func (s *AttemptService) Create(ctx context.Context, owner *identity.Identity, in CreateAttemptInput) (*models.Attempt, error) {
	if owner == nil || owner.ID == "" {
		return nil, apperr.Unauthorized("you must be logged in")
	}

	videoRef := strings.TrimSpace(in.VideoRef)
	uploadID := strings.TrimSpace(in.UploadID)
	tool := strings.TrimSpace(in.ToolUsed)
	brand := strings.TrimSpace(in.BeverageBrand)
	if (videoRef == "" && uploadID == "") || tool == "" || brand == "" {
		return nil, apperr.MissingFields("video, tool and beverage brand are required")
	}

	user, err := s.users.EnsureUser(owner)
	if err != nil {
		return nil, err
	}

	if videoRef == "" {
		if s.video == nil {
			return nil, apperr.Unavailable("video host is not configured")
		}
		videoRef, err = s.video.WaitForPlayback(ctx, uploadID)
		if err != nil {
			return nil, err
		}
	}

	attempt := models.Attempt{
		Aid:           uuid.NewString(),
		UserID:        user.ID,
		ToolUsed:      tool,
		BeverageBrand: brand,
		VideoRef:      videoRef,
		Description:   strings.TrimSpace(in.Description),
	}
	if err := s.db.Create(&attempt).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "create attempt", err)
	}

	s.events.PublishAsync("attempt.created", map[string]interface{}{
		"attempt_id": attempt.Aid,
		"user_id":    user.ID,
		"tool":       tool,
	})

	return &attempt, nil
}

// Delete removes an attempt and everything hanging off it. Only the owner
// may delete; votes and comments go in the same transaction so a listing
// afterwards never references the dead id.
func (s *AttemptService) Delete(requester *identity.Identity, aid string) error {
	if requester == nil || requester.ID == "" {
		return apperr.Unauthorized("you must be logged in")
	}

	attempt, err := attemptByAid(s.db, aid)
	if err != nil {
		return err
	}
	if attempt.UserID != requester.ID {
		return apperr.Forbidden("you can only delete your own posts")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attempt_id = ?", attempt.ID).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("attempt_id = ?", attempt.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(attempt).Error
	})
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "delete attempt", err)
	}

	s.events.PublishAsync("attempt.deleted", map[string]interface{}{
		"attempt_id": attempt.Aid,
		"user_id":    requester.ID,
	})

	return nil
}

// listQuery builds the aggregate read. Votes are summed in a pre-grouped
// subquery joined onto attempts, and comments counted DISTINCT, so an
// attempt with N votes and M comments yields exactly one row instead of
// N*M join fan-out. An empty viewerID matches no vote rows, which is how
// anonymous readers get user_vote = 0.
func (s *AttemptService) listQuery(viewerID string) *gorm.DB {
	voteSub := s.db.Model(&models.Vote{}).
		Select("attempt_id, SUM(value) AS vote_count, SUM(CASE WHEN user_id = ? THEN value ELSE 0 END) AS user_vote", viewerID).
		Group("attempt_id")

	return s.db.Model(&models.Attempt{}).
		Select("attempts.aid, attempts.user_id, users.username AS username, attempts.tool_used, attempts.beverage_brand, attempts.video_ref, attempts.description, attempts.created_at, " +
			"COALESCE(v.vote_count, 0) AS vote_count, COALESCE(v.user_vote, 0) AS user_vote, COUNT(DISTINCT comments.id) AS comment_count").
		Joins("LEFT JOIN users ON users.id = attempts.user_id").
		Joins("LEFT JOIN (?) v ON v.attempt_id = attempts.id", voteSub).
		Joins("LEFT JOIN comments ON comments.attempt_id = attempts.id").
		Group("attempts.id, attempts.aid, attempts.user_id, users.username, attempts.tool_used, attempts.beverage_brand, attempts.video_ref, attempts.description, attempts.created_at, v.vote_count, v.user_vote")
}

// List returns all attempts, newest first, optionally filtered by tool.
func (s *AttemptService) List(viewerID, tool string) ([]AttemptSummary, error) {
	q := s.listQuery(viewerID).Order("attempts.created_at DESC")
	if tool != "" {
		q = q.Where("attempts.tool_used = ?", tool)
	}

	var rows []AttemptSummary
	if err := q.Scan(&rows).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list attempts", err)
	}
	return rows, nil
}

// Detail returns one attempt with aggregates, rendered description and the
// full comment thread in posting order.
func (s *AttemptService) Detail(viewerID, aid string) (*AttemptDetail, error) {
	attempt, err := attemptByAid(s.db, aid)
	if err != nil {
		return nil, err
	}

	var rows []AttemptSummary
	if err := s.listQuery(viewerID).Where("attempts.id = ?", attempt.ID).Scan(&rows).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "load attempt aggregates", err)
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("attempt not found")
	}

	comments := make([]CommentView, 0)
	err = s.db.Model(&models.Comment{}).
		Select("comments.id, comments.user_id, users.username AS username, comments.content, comments.created_at").
		Joins("LEFT JOIN users ON users.id = comments.user_id").
		Where("comments.attempt_id = ?", attempt.ID).
		Order("comments.created_at ASC").
		Scan(&comments).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "load comments", err)
	}

	detail := &AttemptDetail{
		AttemptSummary: rows[0],
		Comments:       comments,
	}
	if detail.Description != "" {
		detail.DescriptionHTML = utils.RenderMarkdown(detail.Description)
	}
	return detail, nil
}

// ToolStats backs the browse-by-tool page: totals plus a per-tool
// breakdown sorted by popularity.
func (s *AttemptService) ToolStats() (*ToolStats, error) {
	stats := &ToolStats{Tools: make([]ToolCount, 0)}

	if err := s.db.Model(&models.Attempt{}).Count(&stats.TotalAttempts).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "count attempts", err)
	}
	if err := s.db.Model(&models.Attempt{}).Distinct("tool_used").Count(&stats.DistinctTools).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "count tools", err)
	}
	err := s.db.Model(&models.Attempt{}).
		Select("tool_used AS tool, COUNT(*) AS count").
		Group("tool_used").
		Order("count DESC, tool_used ASC").
		Scan(&stats.Tools).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "group tools", err)
	}
	return stats, nil
}

// Suggestions returns the tools and brands already in use, for upload-form
// autocomplete.
func (s *AttemptService) Suggestions() (*Suggestions, error) {
	out := &Suggestions{Tools: make([]string, 0), Brands: make([]string, 0)}

	err := s.db.Model(&models.Attempt{}).
		Distinct().
		Order("tool_used ASC").
		Pluck("tool_used", &out.Tools).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list tools", err)
	}
	err = s.db.Model(&models.Attempt{}).
		Distinct().
		Order("beverage_brand ASC").
		Pluck("beverage_brand", &out.Brands).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list brands", err)
	}
	return out, nil
}
