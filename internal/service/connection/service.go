package connection

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/recoveryconnect/match-backend/internal/app"
	"github.com/recoveryconnect/match-backend/internal/cache"
	"github.com/recoveryconnect/match-backend/internal/db"
	svcErr "github.com/recoveryconnect/match-backend/internal/errors"
	"github.com/recoveryconnect/match-backend/internal/repository"
)

// defaultReconnectMessage goes on requests re-initiated through
// Reconnect when the caller supplies no message of their own.
const defaultReconnectMessage = "Hi! I'd like to reconnect and see if we might still be a good fit."

// defaultPageSize bounds participant listings when the caller asks
// for nothing specific.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service owns the connection request lifecycle: create, approve,
// reject, cancel/withdraw, unmatch, reconnect. Approval additionally
// materializes the match records through the Materializer.
//
// Every store call is treated as fallible network I/O. Within Approve
// the ordering is load-bearing: the MatchGroup must be committed
// before the status flip, so a crash in between leaves a pending,
// re-approvable request rather than an accepted request with no group.
type Service struct {
	appCtx       *app.AppContext
	requests     *repository.RequestRepository
	materializer *Materializer
}

// NewService wires the lifecycle service from AppContext dependencies:
// the request repository, the match repository (via the materializer),
// and the Redis pending-request counters.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:       appCtx,
		requests:     repository.NewRequestRepository(appCtx.DB),
		materializer: NewMaterializer(repository.NewMatchRepository(appCtx.DB), appCtx.Logger),
	}
}

// CreateParams is the caller-supplied shape of a new request. Both
// participants are (role, profile id) pairs; PropertyID rides along
// for housing requests.
type CreateParams struct {
	RequesterType db.Role
	RequesterID   string
	RecipientType db.Role
	RecipientID   string
	RequestType   db.RequestType
	Message       string
	PropertyID    *string
}

// Create persists a new pending request after enforcing the
// duplicate-pair invariant: no second request may be opened while a
// pending or accepted one links the same two profiles, in either
// orientation. No side effects beyond the single insert and the
// cached counter bump.
func (s *Service) Create(ctx context.Context, p CreateParams) (*db.ConnectionRequest, error) {
	s.appCtx.Logger.Debug("create request",
		"requester", p.RequesterID, "recipient", p.RecipientID, "type", p.RequestType)

	if p.RequesterID == p.RecipientID {
		return nil, svcErr.ErrSelfRequest
	}

	existing, err := s.requests.FindExisting(ctx, p.RequesterID, p.RecipientID, db.OpenStatuses)
	if err != nil {
		s.appCtx.Logger.Error("duplicate check failed", "err", err)
		return nil, err
	}
	if existing != nil {
		return nil, svcErr.ErrDuplicateRequest
	}

	req := &db.ConnectionRequest{
		RequesterType: p.RequesterType,
		RequesterID:   p.RequesterID,
		RecipientType: p.RecipientType,
		RecipientID:   p.RecipientID,
		RequestType:   p.RequestType,
		Status:        db.StatusPending,
		Message:       p.Message,
		PropertyID:    p.PropertyID,
	}
	if err := s.requests.Insert(ctx, req); err != nil {
		s.appCtx.Logger.Error("request insert failed", "err", err)
		return nil, err
	}

	s.bumpPendingCount(ctx, p.RecipientID, +1)

	return req, nil
}

// Approve accepts a pending request on behalf of its recipient.
//
// Order of operations, deliberately sequential:
//  1. Status guard: an already-accepted request is a no-op success so
//     a double-click or second tab cannot duplicate the match group.
//  2. MatchGroup materialization (roommate, peer-support, housing).
//     Failure aborts the approve; the request stays pending.
//  3. PeerSupportMatch creation for peer-support requests. Failure is
//     logged and swallowed: the relationship record already exists,
//     the supplementary tracking row can be backfilled.
//  4. Status flip to accepted with responded-at.
func (s *Service) Approve(ctx context.Context, id string, hints ProfileIDs) (*db.ConnectionRequest, error) {
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status == db.StatusAccepted {
		s.appCtx.Logger.Debug("approve on accepted request is a no-op", "request_id", id)
		return req, nil
	}
	if req.Status != db.StatusPending {
		return nil, svcErr.ErrInvalidTransition
	}

	switch req.RequestType {
	case db.RequestTypeRoommate, db.RequestTypePeerSupport, db.RequestTypeHousing:
		if _, err := s.materializer.CreateMatchGroup(ctx, req); err != nil {
			s.appCtx.Logger.Error("match group creation failed, approve aborted",
				"request_id", id, "err", err)
			return nil, err
		}
	case db.RequestTypeEmployment:
		// employment connections carry no group record
	}

	if req.RequestType == db.RequestTypePeerSupport {
		if _, err := s.materializer.CreatePeerSupportMatch(ctx, req, hints); err != nil {
			s.appCtx.Logger.Warn("peer support match creation failed, approve continues",
				"request_id", id, "err", err)
		}
	}

	updated, err := s.requests.UpdateStatus(ctx, id, map[string]any{
		"status":       db.StatusAccepted,
		"responded_at": time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.bumpPendingCount(ctx, req.RecipientID, -1)

	s.appCtx.Logger.Info("request approved", "request_id", id, "type", req.RequestType)
	return updated, nil
}

// Reject declines a pending request, recording the reason and the
// response time. Rejecting an already-rejected request re-confirms
// the stored record instead of failing, so retries are harmless.
func (s *Service) Reject(ctx context.Context, id, reason string) (*db.ConnectionRequest, error) {
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status == db.StatusRejected {
		return req, nil
	}
	if req.Status != db.StatusPending {
		return nil, svcErr.ErrInvalidTransition
	}

	updated, err := s.requests.UpdateStatus(ctx, id, map[string]any{
		"status":           db.StatusRejected,
		"rejection_reason": reason,
		"responded_at":     time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.bumpPendingCount(ctx, req.RecipientID, -1)

	s.appCtx.Logger.Info("request rejected", "request_id", id)
	return updated, nil
}

// Cancel withdraws a pending request on behalf of its requester.
// MatchGroup records are never touched here; there are none for a
// pending request.
func (s *Service) Cancel(ctx context.Context, id string) (*db.ConnectionRequest, error) {
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status == db.StatusWithdrawn {
		return req, nil
	}
	if req.Status != db.StatusPending {
		return nil, svcErr.ErrInvalidTransition
	}

	updated, err := s.requests.UpdateStatus(ctx, id, map[string]any{
		"status": db.StatusWithdrawn,
	})
	if err != nil {
		return nil, err
	}

	s.bumpPendingCount(ctx, req.RecipientID, -1)

	s.appCtx.Logger.Info("request withdrawn", "request_id", id)
	return updated, nil
}

// Unmatch ends an accepted connection from either side. The data
// change is identical to a withdrawal apart from the stored status;
// the existing MatchGroup is left alone, its cleanup belongs to other
// services.
func (s *Service) Unmatch(ctx context.Context, id string) (*db.ConnectionRequest, error) {
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status == db.StatusCancelled {
		return req, nil
	}
	if req.Status != db.StatusAccepted {
		return nil, svcErr.ErrInvalidTransition
	}

	updated, err := s.requests.UpdateStatus(ctx, id, map[string]any{
		"status": db.StatusCancelled,
	})
	if err != nil {
		return nil, err
	}

	s.appCtx.Logger.Info("connection unmatched", "request_id", id)
	return updated, nil
}

// Reconnect re-initiates contact after a prior request ended. The
// former request is read-only here: a brand-new pending request is
// created toward whichever side the caller did not occupy.
//
// The caller's side is found by comparing role-specific profile ids:
// the stored requester/recipient role picks which of the caller's
// profile ids to compare against. A single account can hold both an
// applicant and a peer-support profile with different ids, so a
// generic user id comparison would misidentify the side.
func (s *Service) Reconnect(ctx context.Context, formerID string, caller ProfileIDs) (*db.ConnectionRequest, error) {
	former, err := s.getRequest(ctx, formerID)
	if err != nil {
		return nil, err
	}

	var callerType, otherType db.Role
	var callerID, otherID string

	switch {
	case caller[former.RequesterType] == former.RequesterID && former.RequesterID != "":
		callerType, callerID = former.RequesterType, former.RequesterID
		otherType, otherID = former.RecipientType, former.RecipientID
	case caller[former.RecipientType] == former.RecipientID && former.RecipientID != "":
		callerType, callerID = former.RecipientType, former.RecipientID
		otherType, otherID = former.RequesterType, former.RequesterID
	default:
		return nil, svcErr.ErrNotParticipant
	}

	return s.Create(ctx, CreateParams{
		RequesterType: callerType,
		RequesterID:   callerID,
		RecipientType: otherType,
		RecipientID:   otherID,
		RequestType:   former.RequestType,
		Message:       defaultReconnectMessage,
		PropertyID:    former.PropertyID,
	})
}

// Get loads a single request by id.
func (s *Service) Get(ctx context.Context, id string) (*db.ConnectionRequest, error) {
	return s.getRequest(ctx, id)
}

// ListForProfile returns the requests a profile appears in on either
// side, newest activity first, with cursor pagination.
func (s *Service) ListForProfile(
	ctx context.Context,
	profileID string,
	paginationToken *string,
	limit int,
) ([]db.ConnectionRequest, *string, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.requests.ListByParticipant(ctx, profileID, paginationToken, limit)
}

// PendingCount returns the number of pending requests waiting on a
// profile's response. Cache-first strategy:
//  1. Attempts to read from Redis (requests:pending:profileID).
//  2. On cache miss, falls back to the DB count.
//  3. On DB fetch, updates Redis with a TTL.
func (s *Service) PendingCount(ctx context.Context, profileID string) (int64, error) {
	if n, found, err := s.appCtx.RedisCache.GetPendingCount(ctx, profileID); err == nil && found {
		return n, nil
	}

	count, err := s.requests.CountPendingFor(ctx, profileID)
	if err != nil {
		return 0, err
	}

	_ = s.appCtx.RedisCache.SetPendingCount(ctx, profileID, count)

	return count, nil
}

// Stats summarizes a profile's request activity for the dashboard.
type Stats struct {
	Sent            int64 `json:"sent"`
	Received        int64 `json:"received"`
	PendingIncoming int64 `json:"pending_incoming"`
}

// StatsForProfile fans out the sent and received counts concurrently.
// The two reads are independent with no ordering requirement, unlike
// the write sequence inside Approve.
func (s *Service) StatsForProfile(ctx context.Context, profileID string) (*Stats, error) {
	var (
		st               Stats
		sentErr, recvErr error
		wg               sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		st.Sent, sentErr = s.requests.CountByDirection(ctx, profileID, true, "")
	}()
	go func() {
		defer wg.Done()
		st.Received, recvErr = s.requests.CountByDirection(ctx, profileID, false, "")
	}()
	wg.Wait()

	if sentErr != nil {
		return nil, sentErr
	}
	if recvErr != nil {
		return nil, recvErr
	}

	pending, err := s.PendingCount(ctx, profileID)
	if err != nil {
		return nil, err
	}
	st.PendingIncoming = pending

	return &st, nil
}

// getRequest loads a request and maps the store's not-found to the
// domain error.
func (s *Service) getRequest(ctx context.Context, id string) (*db.ConnectionRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.ErrNotFound
	}
	if err != nil {
		s.appCtx.Logger.Error("request load failed", "request_id", id, "err", err)
		return nil, err
	}
	return req, nil
}

// bumpPendingCount adjusts the cached pending counter for a profile,
// refreshing its TTL. Best effort: counter drift self-heals on the
// next cache miss.
func (s *Service) bumpPendingCount(ctx context.Context, profileID string, delta int) {
	key := s.appCtx.RedisCache.KeyForPendingCount(profileID)
	if delta > 0 {
		_, _ = s.appCtx.RedisCache.Incr(ctx, key)
	} else {
		_, _ = s.appCtx.RedisCache.Decr(ctx, key)
	}
	_ = s.appCtx.RedisCache.Client.Expire(ctx, key, cache.CounterTTL).Err()
}
