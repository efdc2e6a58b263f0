package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/recoveryconnect/match-backend/internal/db"
)

// MatchRepository persists the records an accepted request gives rise
// to: MatchGroup and PeerSupportMatch. This subsystem only ever
// creates them; ending a relationship is handled elsewhere.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// InsertGroup persists a match group, generating an id when unset.
func (r *MatchRepository) InsertGroup(ctx context.Context, group *db.MatchGroup) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	if group.Status == "" {
		group.Status = db.GroupStatusForming
	}
	return r.db.WithContext(ctx).Create(group).Error
}

// GroupForRequest finds the group already materialized for a request,
// if any. Returns (nil, nil) when none exists. Lets a retried approve
// reuse the committed group instead of creating a duplicate.
func (r *MatchRepository) GroupForRequest(ctx context.Context, requestID string) (*db.MatchGroup, error) {
	var group db.MatchGroup
	err := r.db.WithContext(ctx).First(&group, "request_id = ?", requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// InsertPeerSupportMatch persists the supplementary tracking row for
// an applicant <-> peer-support relationship.
func (r *MatchRepository) InsertPeerSupportMatch(ctx context.Context, match *db.PeerSupportMatch) error {
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	if match.Status == "" {
		match.Status = db.PeerMatchStatusActive
	}
	return r.db.WithContext(ctx).Create(match).Error
}
