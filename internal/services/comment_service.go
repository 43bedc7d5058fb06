package services

import (
	"strings"

	"capoff/internal/apperr"
	"capoff/internal/events"
	"capoff/internal/identity"
	"capoff/internal/models"

	"gorm.io/gorm"
)

const (
	minCommentLength = 1
	maxCommentLength = 500
)

// CommentService appends comments to attempts. Comments are immutable: no
// edit, no individual delete.
type CommentService struct {
	db     *gorm.DB
	users  *UserService
	events *events.Publisher
}

func NewCommentService(db *gorm.DB, users *UserService, pub *events.Publisher) *CommentService {
	return &CommentService{db: db, users: users, events: pub}
}

// AddComment validates and appends one comment. Content bounds apply to the
// trimmed text; the trimmed form is what gets stored.
func (s *CommentService) AddComment(author *identity.Identity, aid, content string) (*models.Comment, error) {
	if author == nil || author.ID == "" {
		return nil, apperr.Unauthorized("you must be logged in")
	}

	trimmed := strings.TrimSpace(content)
	if len([]rune(trimmed)) < minCommentLength {
		return nil, apperr.InvalidContent("comment cannot be empty")
	}
	if len([]rune(trimmed)) > maxCommentLength {
		return nil, apperr.InvalidContent("comment cannot exceed 500 characters")
	}

	user, err := s.users.EnsureUser(author)
	if err != nil {
		return nil, err
	}

	attempt, err := attemptByAid(s.db, aid)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		AttemptID: attempt.ID,
		UserID:    user.ID,
		Content:   trimmed,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "create comment", err)
	}

	s.events.PublishAsync("comment.created", map[string]interface{}{
		"attempt_id": attempt.Aid,
		"user_id":    user.ID,
		"comment_id": comment.ID,
	})

	return &comment, nil
}
