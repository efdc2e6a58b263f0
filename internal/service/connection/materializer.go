package connection

import (
	"context"
	"fmt"
	"log/slog"

	svcErr "github.com/recoveryconnect/match-backend/internal/errors"

	"github.com/recoveryconnect/match-backend/internal/db"
	"github.com/recoveryconnect/match-backend/internal/repository"
)

// ProfileIDs carries the caller's role-specific profile ids into
// lifecycle operations. Role-to-id resolution depends on session state
// outside this service, so it is always passed in, never looked up.
type ProfileIDs map[db.Role]string

// Materializer derives the records an accepted request gives rise to:
// the MatchGroup representing the relationship and, for peer-support
// requests, the supplementary PeerSupportMatch row.
type Materializer struct {
	matches *repository.MatchRepository
	log     *slog.Logger
}

// NewMaterializer creates a materializer bound to the match store.
func NewMaterializer(matches *repository.MatchRepository, log *slog.Logger) *Materializer {
	return &Materializer{matches: matches, log: log}
}

// CreateMatchGroup builds and persists the group shaped by the
// request's type. Failure here is fatal to the approve operation: the
// request must not advance to accepted without its group.
//
// Shapes:
//   - roommate: applicant slots filled positionally from requester and
//     recipient.
//   - peer-support: slots assigned by role so either party may have
//     initiated; when a side's role doesn't resolve, the slot falls to
//     the opposite participant.
//   - housing: applicant slot plus the request's property reference. A
//     housing request without a property id is an explicit error, not
//     a silent roommate-shaped group.
//
// A group already materialized for this request is returned as-is, so
// a retried approve after a partial failure cannot duplicate it.
func (m *Materializer) CreateMatchGroup(ctx context.Context, req *db.ConnectionRequest) (*db.MatchGroup, error) {
	if existing, err := m.matches.GroupForRequest(ctx, req.ID); err != nil {
		return nil, err
	} else if existing != nil {
		m.log.Debug("reusing materialized match group", "request_id", req.ID, "group_id", existing.ID)
		return existing, nil
	}

	group := &db.MatchGroup{
		RequestID: req.ID,
		Status:    db.GroupStatusForming,
	}

	switch req.RequestType {
	case db.RequestTypeRoommate:
		group.Applicant1ID = strptr(req.RequesterID)
		group.Applicant2ID = strptr(req.RecipientID)

	case db.RequestTypePeerSupport:
		group.Applicant1ID = strptr(sideWithRole(req, db.RoleApplicant))
		group.PeerSupportID = strptr(sideWithRole(req, db.RolePeerSupport))

	case db.RequestTypeHousing:
		if req.PropertyID == nil || *req.PropertyID == "" {
			return nil, svcErr.ErrMissingPropertyID
		}
		group.Applicant1ID = strptr(sideWithRole(req, db.RoleApplicant))
		group.PropertyID = req.PropertyID

	default:
		return nil, fmt.Errorf("request type %q does not materialize a match group", req.RequestType)
	}

	if err := m.matches.InsertGroup(ctx, group); err != nil {
		return nil, err
	}

	m.log.Info("match group created",
		"group_id", group.ID,
		"request_id", req.ID,
		"request_type", req.RequestType,
	)
	return group, nil
}

// CreatePeerSupportMatch resolves the applicant and peer-support
// profile ids strictly by role and inserts the tracking row. The
// peer-support id from the hint map wins over the request's own
// participant id when both are present.
//
// Unlike the group, resolution here must be role-correct on both
// sides: a request whose participants don't include an applicant and
// a peer-support specialist (and no hint to fill the gap) fails with
// ErrMissingProfileID. The caller treats that failure as non-fatal.
func (m *Materializer) CreatePeerSupportMatch(
	ctx context.Context,
	req *db.ConnectionRequest,
	hints ProfileIDs,
) (*db.PeerSupportMatch, error) {
	var applicantID, peerSupportID string

	if req.RequesterType == db.RoleApplicant {
		applicantID = req.RequesterID
	} else if req.RecipientType == db.RoleApplicant {
		applicantID = req.RecipientID
	}
	if req.RequesterType == db.RolePeerSupport {
		peerSupportID = req.RequesterID
	} else if req.RecipientType == db.RolePeerSupport {
		peerSupportID = req.RecipientID
	}
	if hint := hints[db.RolePeerSupport]; hint != "" {
		peerSupportID = hint
	}

	if applicantID == "" || peerSupportID == "" {
		return nil, fmt.Errorf("request %s: %w", req.ID, svcErr.ErrMissingProfileID)
	}

	match := &db.PeerSupportMatch{
		ApplicantID:   applicantID,
		PeerSupportID: peerSupportID,
		Status:        db.PeerMatchStatusActive,
	}
	if err := m.matches.InsertPeerSupportMatch(ctx, match); err != nil {
		return nil, err
	}

	m.log.Info("peer support match created",
		"match_id", match.ID,
		"applicant_id", applicantID,
		"peer_support_id", peerSupportID,
	)
	return match, nil
}

// sideWithRole picks the participant id whose side carries the given
// role, falling back to the recipient when neither side matches. The
// fallback mirrors the positional default the group shapes tolerate;
// role-strict resolution lives in CreatePeerSupportMatch.
func sideWithRole(req *db.ConnectionRequest, role db.Role) string {
	if req.RequesterType == role {
		return req.RequesterID
	}
	return req.RecipientID
}

func strptr(s string) *string { return &s }
