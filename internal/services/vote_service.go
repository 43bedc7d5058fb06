package services

import (
	"errors"

	"capoff/internal/apperr"
	"capoff/internal/events"
	"capoff/internal/identity"
	"capoff/internal/models"

	"gorm.io/gorm"
)

// VoteService owns the one-vote-per-(user, attempt) invariant and the
// toggle semantics on repeated casts:
//
//	no vote   + value      -> insert
//	same value again       -> delete (toggle off)
//	opposite value         -> update (flip)
type VoteService struct {
	db     *gorm.DB
	users  *UserService
	events *events.Publisher
}

func NewVoteService(db *gorm.DB, users *UserService, pub *events.Publisher) *VoteService {
	return &VoteService{db: db, users: users, events: pub}
}

// VoteState is the aggregate returned to the caller after a cast, so the
// client can repaint without a second round trip.
type VoteState struct {
	VoteCount int `json:"vote_count"`
	UserVote  int `json:"user_vote"`
}

// CastVote applies one toggle transition for (voter, attempt). The
// transition runs as conditional single statements inside a transaction
// rather than a read-then-write, so two concurrent casts from the same user
// cannot both observe "no vote" and insert twice; the composite unique
// index rejects the loser if they try.
func (s *VoteService) CastVote(voter *identity.Identity, aid string, value int) (*VoteState, error) {
	if voter == nil || voter.ID == "" {
		return nil, apperr.Unauthorized("you must be logged in")
	}
	if value != 1 && value != -1 {
		return nil, apperr.InvalidContent("vote value must be 1 or -1")
	}

	user, err := s.users.EnsureUser(voter)
	if err != nil {
		return nil, err
	}

	attempt, err := attemptByAid(s.db, aid)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Toggle off: deleting (user, attempt, value) in one statement both
		// checks for a same-value vote and removes it.
		res := tx.Where("user_id = ? AND attempt_id = ? AND value = ?", user.ID, attempt.ID, value).
			Delete(&models.Vote{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		// Flip: an existing opposite-value vote gets updated in place.
		res = tx.Model(&models.Vote{}).
			Where("user_id = ? AND attempt_id = ?", user.ID, attempt.ID).
			Update("value", value)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		// First vote. A concurrent duplicate dies on the unique index.
		return tx.Create(&models.Vote{
			UserID:    user.ID,
			AttemptID: attempt.ID,
			Value:     value,
		}).Error
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "cast vote", err)
	}

	s.events.PublishAsync("vote.cast", map[string]interface{}{
		"attempt_id": attempt.Aid,
		"user_id":    user.ID,
		"value":      value,
	})

	return s.stateFor(attempt.ID, user.ID)
}

func (s *VoteService) stateFor(attemptID uint, userID string) (*VoteState, error) {
	state := &VoteState{}

	err := s.db.Model(&models.Vote{}).
		Where("attempt_id = ?", attemptID).
		Select("COALESCE(SUM(value), 0)").
		Scan(&state.VoteCount).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "sum votes", err)
	}

	var own models.Vote
	err = s.db.Where("user_id = ? AND attempt_id = ?", userID, attemptID).First(&own).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		state.UserVote = 0
	case err != nil:
		return nil, apperr.Wrap(apperr.KindInternal, "load own vote", err)
	default:
		state.UserVote = own.Value
	}

	return state, nil
}

// attemptByAid resolves a public attempt id, mapping a miss to NotFound.
func attemptByAid(gdb *gorm.DB, aid string) (*models.Attempt, error) {
	var attempt models.Attempt
	err := gdb.Where("aid = ?", aid).First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("attempt not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "load attempt", err)
	}
	return &attempt, nil
}
