package services

import (
	"capoff/internal/apperr"
	"capoff/internal/identity"
	"capoff/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserService keeps the local user directory in sync with the identity
// provider. Profiles are created lazily, as a side effect of the first
// authenticated write.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// EnsureUser guarantees a profile row exists for the identity and returns
// it. The insert is a conflict-ignoring upsert keyed on the provider
// subject, so concurrent first writes from the same user cannot produce
// duplicates; whichever insert wins, the follow-up read sees one row.
func (s *UserService) EnsureUser(ident *identity.Identity) (*models.User, error) {
	if ident == nil || ident.ID == "" {
		return nil, apperr.Unauthorized("you must be logged in")
	}
	if ident.Email == "" {
		return nil, apperr.MissingEmail("user email not found")
	}

	username := ident.Username
	if username == "" {
		username = "Anonymous"
	}

	user := models.User{ID: ident.ID, Email: ident.Email, Username: username}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&user).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "create user", err)
	}

	// Re-read: a concurrent insert may have won, and its row is the truth.
	var out models.User
	if err := s.db.First(&out, "id = ?", ident.ID).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "load user", err)
	}
	return &out, nil
}
