//go:build integration

package store

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/outreachcore/campaign-engine/internal/domain"
)

// openIntegrationDB connects to a real PostgreSQL instance. Run with
// `go test -tags=integration ./internal/store/...` against a database that
// already has migrations/0001_init.sql applied.
func openIntegrationDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Ping())
	return db
}

// TestClaimNextJob_ConcurrentCallersGetDisjointSets verifies the FOR UPDATE
// SKIP LOCKED claim behavior: several dispatchers racing the same due batch
// never double-claim a row, and every row is eventually claimed exactly once.
func TestClaimNextJob_ConcurrentCallersGetDisjointSets(t *testing.T) {
	db := openIntegrationDB(t)
	ctx := context.Background()
	p := NewPostgres(db)

	ownerID := seedUser(t, db)
	campaignID := seedCampaign(t, db, ownerID)
	now := time.Now().UTC()

	const leadCount = 20
	for i := 0; i < leadCount; i++ {
		leadID := seedLead(t, db, campaignID)
		_, err := p.CreateJob(ctx, campaignID, leadID, 1, now.Add(-time.Minute))
		require.NoError(t, err)
	}

	var mu sync.Mutex
	seen := map[string]bool{}
	var wg sync.WaitGroup
	claimedTotal := 0

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				claim, err := p.ClaimNextJob(ctx, now)
				require.NoError(t, err)
				if claim == nil {
					return
				}
				mu.Lock()
				id := claim.Job().ID
				require.False(t, seen[id], "job %s claimed twice", id)
				seen[id] = true
				claimedTotal++
				mu.Unlock()
				require.NoError(t, claim.Commit())
			}
		}()
	}
	wg.Wait()

	require.Equal(t, leadCount, claimedTotal)
}

// TestClaimNextJob_HeldClaimBlocksSecondClaimAndLeadCancellation verifies the
// correctness property §4.3 calls out explicitly: a claim that is still open
// (simulating a slow in-flight Send()) must not be reclaimable by a second
// ClaimNextJob call, and a concurrent CancelPendingJobsForLead racing the
// same job must block until the claim resolves and then see the job's
// post-commit status instead of clobbering it back to PENDING or SKIPPED.
func TestClaimNextJob_HeldClaimBlocksSecondClaimAndLeadCancellation(t *testing.T) {
	db := openIntegrationDB(t)
	ctx := context.Background()
	p := NewPostgres(db)

	ownerID := seedUser(t, db)
	campaignID := seedCampaign(t, db, ownerID)
	leadID := seedLead(t, db, campaignID)
	now := time.Now().UTC()

	job, err := p.CreateJob(ctx, campaignID, leadID, 1, now.Add(-time.Minute))
	require.NoError(t, err)

	claim, err := p.ClaimNextJob(ctx, now)
	require.NoError(t, err)
	require.NotNil(t, claim)
	require.Equal(t, job.ID, claim.Job().ID)

	// A second claim attempt must skip the still-locked row entirely.
	second, err := p.ClaimNextJob(ctx, now)
	require.NoError(t, err)
	require.Nil(t, second, "second claim must not see a row held by an open claim")

	// CancelPendingJobsForLead races the held claim: it should block on the
	// locked row rather than skip it, then lose to the claim's own outcome
	// once the claim resolves.
	cancelDone := make(chan error, 1)
	go func() {
		cancelDone <- p.CancelPendingJobsForLead(ctx, leadID)
	}()

	select {
	case <-cancelDone:
		t.Fatal("CancelPendingJobsForLead returned before the competing claim committed")
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, claim.MarkSent(ctx, time.Now().UTC(), "msg-race"))
	require.NoError(t, claim.Commit())

	require.NoError(t, <-cancelDone)

	_, committed, err := p.FindLeadByMessageID(ctx, "msg-race")
	require.NoError(t, err)
	require.Equal(t, domain.JobSent, committed.Status, "CancelPendingJobsForLead must not overwrite the already-committed SENT status")
}

func seedUser(t *testing.T, db *sql.DB) string {
	t.Helper()
	var id string
	err := db.QueryRow(`INSERT INTO users (email) VALUES ($1) RETURNING id`,
		"owner+"+time.Now().Format(time.RFC3339Nano)+"@example.com").Scan(&id)
	require.NoError(t, err)
	return id
}

func seedCampaign(t *testing.T, db *sql.DB, ownerID string) string {
	t.Helper()
	var id string
	err := db.QueryRow(`
		INSERT INTO campaigns (owner_user_id, name, status)
		VALUES ($1, 'integration test campaign', 'active')
		RETURNING id
	`, ownerID).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedLead(t *testing.T, db *sql.DB, campaignID string) string {
	t.Helper()
	var id string
	err := db.QueryRow(`
		INSERT INTO leads (campaign_id, email)
		VALUES ($1, $2)
		RETURNING id
	`, campaignID, "lead+"+time.Now().Format(time.RFC3339Nano)+"@example.com").Scan(&id)
	require.NoError(t, err)
	return id
}
