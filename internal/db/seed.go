package db

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedDemoData resets the database and populates it with demo
// accounts, role profiles, properties and connection requests.
//
// Behavior:
//  1. Clears all tables this service owns.
//  2. Creates demo accounts with hashed passwords; one account holds
//     both an applicant and a peer-support profile to exercise the
//     multi-role case.
//  3. Creates a handful of requests in every status, with match
//     records for the accepted ones.
//
// Compatible with both MySQL and SQLite.
func SeedDemoData(database *gorm.DB) error {
	for _, table := range []string{
		"peer_support_matches", "match_groups", "connection_requests",
		"properties", "profiles", "accounts",
	} {
		if err := database.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	type seedProfile struct {
		role Role
		city string
	}
	seedAccounts := []struct {
		name     string
		profiles []seedProfile
	}{
		{"Maya R.", []seedProfile{{RoleApplicant, "Portland"}}},
		{"Devon K.", []seedProfile{{RoleApplicant, "Portland"}}},
		{"Jo S.", []seedProfile{{RoleApplicant, "Salem"}}},
		// Tasha holds two role profiles with distinct ids: she is both
		// in recovery housing herself and a certified peer specialist.
		{"Tasha M.", []seedProfile{{RoleApplicant, "Eugene"}, {RolePeerSupport, "Eugene"}}},
		{"Carl B.", []seedProfile{{RolePeerSupport, "Portland"}}},
		{"Linh T.", []seedProfile{{RoleLandlord, "Portland"}}},
		{"Ray O.", []seedProfile{{RoleLandlord, "Salem"}}},
		{"NW Staffing", []seedProfile{{RoleEmployer, "Portland"}}},
	}

	profilesByRole := map[Role][]string{}
	for i, sa := range seedAccounts {
		account := Account{
			ID:           uuid.NewString(),
			Email:        fmt.Sprintf("demo%d@recoveryconnect.test", i+1),
			PasswordHash: string(hash),
			DisplayName:  sa.name,
			Active:       true,
		}
		if err := database.Create(&account).Error; err != nil {
			return fmt.Errorf("failed to seed account: %w", err)
		}
		for _, sp := range sa.profiles {
			profile := Profile{
				ID:        uuid.NewString(),
				AccountID: account.ID,
				Role:      sp.role,
				Headline:  fmt.Sprintf("%s (%s)", sa.name, sp.role),
				City:      sp.city,
			}
			if err := database.Create(&profile).Error; err != nil {
				return fmt.Errorf("failed to seed profile: %w", err)
			}
			profilesByRole[sp.role] = append(profilesByRole[sp.role], profile.ID)
		}
	}
	log.Printf("Seeded %d accounts.", len(seedAccounts))

	applicants := profilesByRole[RoleApplicant]
	peers := profilesByRole[RolePeerSupport]
	landlords := profilesByRole[RoleLandlord]
	employers := profilesByRole[RoleEmployer]

	properties := make([]string, 0, 2)
	for i, landlordID := range landlords {
		property := Property{
			ID:         uuid.NewString(),
			LandlordID: landlordID,
			Label:      fmt.Sprintf("Sober-living house #%d", i+1),
			City:       "Portland",
		}
		if err := database.Create(&property).Error; err != nil {
			return fmt.Errorf("failed to seed property: %w", err)
		}
		properties = append(properties, property.ID)
	}

	now := time.Now().UTC()

	requests := []ConnectionRequest{
		{
			// fresh roommate request, still waiting
			RequesterType: RoleApplicant, RequesterID: applicants[0],
			RecipientType: RoleApplicant, RecipientID: applicants[1],
			RequestType: RequestTypeRoommate, Status: StatusPending,
			Message: "Hey, we matched on budget and quiet hours. Roommates?",
		},
		{
			// accepted peer-support pair, match records below
			RequesterType: RoleApplicant, RequesterID: applicants[2],
			RecipientType: RolePeerSupport, RecipientID: peers[0],
			RequestType: RequestTypePeerSupport, Status: StatusAccepted,
			Message:     "Looking for a peer specialist in the Salem area.",
			RespondedAt: &now,
		},
		{
			// housing request awaiting the landlord
			RequesterType: RoleApplicant, RequesterID: applicants[1],
			RecipientType: RoleLandlord, RecipientID: landlords[0],
			RequestType: RequestTypeHousing, Status: StatusPending,
			PropertyID: &properties[0],
			Message:    "Interested in the open room, move-in next month.",
		},
		{
			// rejected employment request
			RequesterType: RoleApplicant, RequesterID: applicants[0],
			RecipientType: RoleEmployer, RecipientID: employers[0],
			RequestType: RequestTypeEmployment, Status: StatusRejected,
			RejectionReason: "No openings on the day shift right now.",
			RespondedAt:     &now,
		},
		{
			// withdrawn roommate request, reconnectable
			RequesterType: RoleApplicant, RequesterID: applicants[2],
			RecipientType: RoleApplicant, RecipientID: applicants[3],
			RequestType: RequestTypeRoommate, Status: StatusWithdrawn,
		},
	}
	for i := range requests {
		requests[i].ID = uuid.NewString()
		if err := database.Create(&requests[i]).Error; err != nil {
			return fmt.Errorf("failed to seed request: %w", err)
		}
	}
	log.Printf("Seeded %d requests.", len(requests))

	// match records for the accepted peer-support request
	accepted := requests[1]
	group := MatchGroup{
		ID:            uuid.NewString(),
		RequestID:     accepted.ID,
		Status:        GroupStatusForming,
		Applicant1ID:  &accepted.RequesterID,
		PeerSupportID: &accepted.RecipientID,
	}
	if err := database.Create(&group).Error; err != nil {
		return fmt.Errorf("failed to seed match group: %w", err)
	}
	match := PeerSupportMatch{
		ID:            uuid.NewString(),
		ApplicantID:   accepted.RequesterID,
		PeerSupportID: accepted.RecipientID,
		Status:        PeerMatchStatusActive,
	}
	if err := database.Create(&match).Error; err != nil {
		return fmt.Errorf("failed to seed peer support match: %w", err)
	}

	return nil
}
