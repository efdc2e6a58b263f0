package db

import (
	"time"
)

// Role identifies which role-specific profile a participant acts as.
// One account can hold several role profiles with distinct ids, so
// participants are always referenced by (role, profile id), never by
// account id.
type Role string

const (
	RoleApplicant   Role = "applicant"
	RolePeerSupport Role = "peer_support"
	RoleLandlord    Role = "landlord"
	RoleEmployer    Role = "employer"
)

// RequestType is the relationship a connection request proposes.
type RequestType string

const (
	RequestTypeRoommate    RequestType = "roommate"
	RequestTypePeerSupport RequestType = "peer_support"
	RequestTypeHousing     RequestType = "housing"
	RequestTypeEmployment  RequestType = "employment"
)

// RequestStatus is the stored state of a connection request.
// "matched" is a display label the UI derives from accepted; it is
// never persisted.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusAccepted  RequestStatus = "accepted"
	StatusRejected  RequestStatus = "rejected"
	StatusWithdrawn RequestStatus = "withdrawn"
	StatusCancelled RequestStatus = "cancelled"
)

// OpenStatuses are the statuses that block a new request between the
// same pair of profiles.
var OpenStatuses = []RequestStatus{StatusPending, StatusAccepted}

// Account is a platform login identity. Auth itself lives outside this
// service; accounts exist so seeded demo data resembles production.
type Account struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	DisplayName  string    `gorm:"size:64;not null" json:"display_name"`
	Active       bool      `gorm:"default:true" json:"active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Profile is a role-specific profile record. Requests reference
// profiles, not accounts.
type Profile struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	AccountID string    `gorm:"type:char(36);not null;index" json:"account_id"`
	Role      Role      `gorm:"size:16;not null;index" json:"role"`
	Headline  string    `gorm:"size:255" json:"headline"`
	City      string    `gorm:"size:64" json:"city"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Property is a housing listing owned by a landlord profile.
type Property struct {
	ID         string    `gorm:"type:char(36);primaryKey" json:"id"`
	LandlordID string    `gorm:"type:char(36);not null;index" json:"landlord_id"`
	Label      string    `gorm:"size:255;not null" json:"label"`
	City       string    `gorm:"size:64" json:"city"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ConnectionRequest is a proposal from one profile to another to form
// a relationship.
//
// Indexes:
//   - idx_request_requester(requester_id, status)
//   - idx_request_recipient(recipient_id, status)
//     Both orientations of the duplicate-pair check and the
//     participant listings filter on (profile id, status).
//
// Invariant: at most one pending/accepted request may link the same
// two profiles, in either orientation. Enforced at creation time by
// the lifecycle service.
type ConnectionRequest struct {
	ID              string        `gorm:"type:char(36);primaryKey" json:"id"`
	RequesterType   Role          `gorm:"size:16;not null" json:"requester_type"`
	RequesterID     string        `gorm:"type:char(36);not null;index:idx_request_requester,priority:1" json:"requester_id"`
	RecipientType   Role          `gorm:"size:16;not null" json:"recipient_type"`
	RecipientID     string        `gorm:"type:char(36);not null;index:idx_request_recipient,priority:1" json:"recipient_id"`
	RequestType     RequestType   `gorm:"size:16;not null" json:"request_type"`
	Status          RequestStatus `gorm:"size:16;not null;default:'pending';index:idx_request_requester,priority:2;index:idx_request_recipient,priority:2" json:"status"`
	Message         string        `gorm:"type:text" json:"message,omitempty"`
	RejectionReason string        `gorm:"type:text" json:"rejection_reason,omitempty"`
	PropertyID      *string       `gorm:"type:char(36)" json:"property_id,omitempty"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
	RespondedAt     *time.Time    `json:"responded_at,omitempty"`
}

// MatchGroup is the persisted record of an accepted relationship.
// Exactly the slots relevant to the originating request type are
// populated; the rest stay NULL:
//
//	roommate:     Applicant1ID + Applicant2ID
//	peer-support: Applicant1ID + PeerSupportID
//	housing:      Applicant1ID + PropertyID
//
// RequestID records provenance and lets a re-approve after a partial
// failure reuse the group instead of creating a duplicate.
type MatchGroup struct {
	ID            string    `gorm:"type:char(36);primaryKey" json:"id"`
	RequestID     string    `gorm:"type:char(36);not null;index" json:"request_id"`
	Status        string    `gorm:"size:16;not null;default:'forming'" json:"status"`
	Applicant1ID  *string   `gorm:"type:char(36)" json:"applicant_1_id,omitempty"`
	Applicant2ID  *string   `gorm:"type:char(36)" json:"applicant_2_id,omitempty"`
	PeerSupportID *string   `gorm:"type:char(36)" json:"peer_support_id,omitempty"`
	PropertyID    *string   `gorm:"type:char(36)" json:"property_id,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// GroupStatusForming is the only group status this subsystem writes;
// later transitions belong to other services.
const GroupStatusForming = "forming"

// PeerSupportMatch tracks an active applicant <-> peer-support
// specialist relationship. Both ids are role-specific profile ids,
// resolved by role rather than by request position.
type PeerSupportMatch struct {
	ID            string    `gorm:"type:char(36);primaryKey" json:"id"`
	ApplicantID   string    `gorm:"type:char(36);not null;index" json:"applicant_id"`
	PeerSupportID string    `gorm:"type:char(36);not null;index" json:"peer_support_id"`
	Status        string    `gorm:"size:16;not null;default:'active'" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// PeerMatchStatusActive is the status a PeerSupportMatch is born with.
const PeerMatchStatusActive = "active"
