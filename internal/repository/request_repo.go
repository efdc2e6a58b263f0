package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/recoveryconnect/match-backend/internal/db"
	"github.com/recoveryconnect/match-backend/internal/utils/pagination"
)

// RequestRepository provides data access for ConnectionRequest rows.
// It is the only place lifecycle code touches the requests table; the
// service layer treats every call as fallible network I/O.
type RequestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new repository bound to the given DB connection.
func NewRequestRepository(database *gorm.DB) *RequestRepository {
	return &RequestRepository{db: database}
}

// Insert persists a new request. An id is generated when the caller
// has not set one; the stored record is returned via the same pointer.
func (r *RequestRepository) Insert(ctx context.Context, req *db.ConnectionRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(req).Error
}

// GetByID loads a single request. A missing row surfaces as
// gorm.ErrRecordNotFound; the service maps it to the domain error.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*db.ConnectionRequest, error) {
	var req db.ConnectionRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// UpdateStatus applies a status patch to a request and returns the
// updated record. The patch map is column-keyed so only the fields a
// transition touches are written (status, rejection_reason,
// responded_at). Updating a missing id reports gorm.ErrRecordNotFound.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id string, patch map[string]any) (*db.ConnectionRequest, error) {
	if _, ok := patch["updated_at"]; !ok {
		patch["updated_at"] = time.Now().UTC()
	}
	res := r.db.WithContext(ctx).
		Model(&db.ConnectionRequest{}).
		Where("id = ?", id).
		Updates(patch)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

// FindExisting looks for a request linking two profiles in either
// orientation with one of the given statuses. Returns (nil, nil) when
// no such request exists.
//
// This backs the duplicate-pair invariant: at most one pending or
// accepted request between the same two profiles.
func (r *RequestRepository) FindExisting(
	ctx context.Context,
	idA, idB string,
	statuses []db.RequestStatus,
) (*db.ConnectionRequest, error) {
	var req db.ConnectionRequest
	err := r.db.WithContext(ctx).
		Where(
			"((requester_id = ? AND recipient_id = ?) OR (requester_id = ? AND recipient_id = ?)) AND status IN ?",
			idA, idB, idB, idA, statuses,
		).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListByParticipant returns requests where the profile appears on
// either side, newest activity first.
//
// Behavior:
//   - Ordered by updated_at DESC, id DESC.
//   - Supports cursor-based pagination via paginationToken.
func (r *RequestRepository) ListByParticipant(
	ctx context.Context,
	profileID string,
	paginationToken *string,
	limit int,
) ([]db.ConnectionRequest, *string, error) {
	var requests []db.ConnectionRequest

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("requester_id = ? OR recipient_id = ?", profileID, profileID).
		Order("updated_at DESC, id DESC").
		Limit(limit + 1)

	// apply cursor
	if cursor.RequestID != "" && cursor.UpdatedUnix > 0 {
		ts := time.UnixMilli(cursor.UpdatedUnix)
		query = query.Where(
			"(updated_at < ? OR (updated_at = ? AND id < ?))",
			ts, ts, cursor.RequestID,
		)
	}

	if err := query.Find(&requests).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(requests) > limit {
		last := requests[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			RequestID:   last.ID,
			UpdatedUnix: last.UpdatedAt.UnixMilli(),
		})
		nextToken = &token
		requests = requests[:limit]
	}

	return requests, nextToken, nil
}

// CountPendingFor returns how many pending requests a profile has
// waiting for its response. Used with the Redis counter; the DB is
// the fallback and source of truth.
func (r *RequestRepository) CountPendingFor(ctx context.Context, profileID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.ConnectionRequest{}).
		Where("recipient_id = ? AND status = ?", profileID, db.StatusPending).
		Count(&count).Error
	return count, err
}

// CountByDirection counts requests a profile has sent or received,
// optionally narrowed to one status. Feeds the dashboard statistics
// fan-out.
func (r *RequestRepository) CountByDirection(
	ctx context.Context,
	profileID string,
	sent bool,
	status db.RequestStatus,
) (int64, error) {
	column := "recipient_id"
	if sent {
		column = "requester_id"
	}
	query := r.db.WithContext(ctx).
		Model(&db.ConnectionRequest{}).
		Where(column+" = ?", profileID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
