package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recoveryconnect/match-backend/internal/db"
	"github.com/recoveryconnect/match-backend/internal/repository"
)

func TestInsertGroupAndLookupByRequest(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	// nothing materialized yet
	group, err := repo.GroupForRequest(ctx, "req-1")
	require.NoError(t, err)
	assert.Nil(t, group)

	a1, a2 := "A1", "A2"
	created := &db.MatchGroup{
		RequestID:    "req-1",
		Applicant1ID: &a1,
		Applicant2ID: &a2,
	}
	require.NoError(t, repo.InsertGroup(ctx, created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, db.GroupStatusForming, created.Status)

	group, err = repo.GroupForRequest(ctx, "req-1")
	require.NoError(t, err)
	require.NotNil(t, group)
	assert.Equal(t, created.ID, group.ID)
}

func TestInsertPeerSupportMatchDefaults(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	match := &db.PeerSupportMatch{ApplicantID: "A1", PeerSupportID: "P1"}
	require.NoError(t, repo.InsertPeerSupportMatch(ctx, match))
	assert.NotEmpty(t, match.ID)
	assert.Equal(t, db.PeerMatchStatusActive, match.Status)
}
