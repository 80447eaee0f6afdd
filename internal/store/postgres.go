package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/outreachcore/campaign-engine/internal/domain"
	"github.com/outreachcore/campaign-engine/internal/xerrors"
)

// Postgres implements Store over database/sql + lib/pq, following the
// reference repository's raw-SQL convention: explicit column lists, $N
// placeholders, no ORM.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an existing *sql.DB.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx, so every read/write
// helper below can run either against the pool directly or against a
// JobClaim's held transaction without duplicating SQL.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (domain.Job, error) {
	var j domain.Job
	err := row.Scan(
		&j.ID, &j.CampaignID, &j.LeadID, &j.StepNumber, &j.ScheduledAt, &j.SentAt,
		&j.Status, &j.Attempts, &j.LastError, &j.MessageID, &j.CreatedAt, &j.UpdatedAt,
	)
	return j, err
}

// ClaimNextJob locks at most one due job with FOR UPDATE SKIP LOCKED inside
// a fresh transaction and hands that transaction to the returned JobClaim.
// Unlike a batch claim, the lock survives past this call: it is released
// only when the caller commits or rolls back, which is what lets the
// dispatcher hold it across a slow Send() (§4.3) without a second claim or
// CancelPendingJobsForLead stealing the row out from under it.
func (p *Postgres) ClaimNextJob(ctx context.Context, now time.Time) (JobClaim, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("claim next job: begin: %w", err)
	}

	row := tx.QueryRowContext(ctx, `
		WITH claimed AS (
			UPDATE jobs
			SET attempts = attempts + 1, updated_at = NOW()
			WHERE id = (
				SELECT id FROM jobs
				WHERE status = 'pending' AND scheduled_at <= $1
				ORDER BY scheduled_at ASC, campaign_id ASC, lead_id ASC, step_number ASC
				LIMIT 1
				FOR UPDATE SKIP LOCKED
			)
			RETURNING id, campaign_id, lead_id, step_number, scheduled_at, sent_at,
				status, attempts, COALESCE(last_error, '') AS last_error,
				COALESCE(message_id, '') AS message_id, created_at, updated_at
		)
		SELECT id, campaign_id, lead_id, step_number, scheduled_at, sent_at,
			status, attempts, last_error, message_id, created_at, updated_at
		FROM claimed
	`, now)

	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		if rbErr := tx.Rollback(); rbErr != nil {
			return nil, fmt.Errorf("claim next job: rollback empty claim: %w", rbErr)
		}
		return nil, nil
	}
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("claim next job: %w", err)
	}
	return &pgJobClaim{tx: tx, job: job}, nil
}

// pgJobClaim is the Postgres-backed JobClaim: every method below runs
// against the claim's own transaction, so nothing it reads or writes is
// visible to any other connection until Commit.
type pgJobClaim struct {
	tx  *sql.Tx
	job domain.Job
}

func (c *pgJobClaim) Job() domain.Job { return c.job }
func (c *pgJobClaim) Commit() error   { return c.tx.Commit() }
func (c *pgJobClaim) Rollback() error { return c.tx.Rollback() }

func (c *pgJobClaim) LoadCampaign(ctx context.Context, id string) (domain.Campaign, error) {
	return loadCampaign(ctx, c.tx, id)
}
func (c *pgJobClaim) LoadLead(ctx context.Context, id string) (domain.Lead, error) {
	return loadLead(ctx, c.tx, id)
}
func (c *pgJobClaim) LoadTemplate(ctx context.Context, campaignID string, step int) (domain.Template, error) {
	return loadTemplate(ctx, c.tx, campaignID, step)
}
func (c *pgJobClaim) LoadUser(ctx context.Context, id string) (domain.User, error) {
	return loadUser(ctx, c.tx, id)
}
func (c *pgJobClaim) LeadHasSentJob(ctx context.Context, leadID string) (bool, error) {
	return leadHasSentJob(ctx, c.tx, leadID)
}
func (c *pgJobClaim) MarkSent(ctx context.Context, sentAt time.Time, messageID string) error {
	return markSent(ctx, c.tx, c.job.ID, sentAt, messageID)
}
func (c *pgJobClaim) MarkFailed(ctx context.Context, reason string) error {
	return markFailed(ctx, c.tx, c.job.ID, reason)
}
func (c *pgJobClaim) MarkSkipped(ctx context.Context, reason string) error {
	return markSkipped(ctx, c.tx, c.job.ID, reason)
}
func (c *pgJobClaim) RescheduleForRetry(ctx context.Context, nextAt time.Time, reason string) error {
	return rescheduleForRetry(ctx, c.tx, c.job.ID, nextAt, reason)
}
func (c *pgJobClaim) CreateJob(ctx context.Context, campaignID, leadID string, step int, scheduledAt time.Time) (domain.Job, error) {
	return createJob(ctx, c.tx, campaignID, leadID, step, scheduledAt)
}
func (c *pgJobClaim) UpdateLeadStatus(ctx context.Context, leadID string, from []domain.LeadStatus, to domain.LeadStatus) (bool, error) {
	return updateLeadStatus(ctx, c.tx, leadID, from, to)
}

func markSent(ctx context.Context, q querier, jobID string, sentAt time.Time, messageID string) error {
	_, err := q.ExecContext(ctx, `
		UPDATE jobs SET status = 'sent', sent_at = $2, message_id = $3, updated_at = NOW()
		WHERE id = $1
	`, jobID, sentAt, messageID)
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return nil
}

func markFailed(ctx context.Context, q querier, jobID string, reason string) error {
	_, err := q.ExecContext(ctx, `
		UPDATE jobs SET status = 'failed', last_error = $2, updated_at = NOW()
		WHERE id = $1
	`, jobID, reason)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

func markSkipped(ctx context.Context, q querier, jobID string, reason string) error {
	_, err := q.ExecContext(ctx, `
		UPDATE jobs SET status = 'skipped', last_error = $2, updated_at = NOW()
		WHERE id = $1
	`, jobID, reason)
	if err != nil {
		return fmt.Errorf("mark skipped: %w", err)
	}
	return nil
}

func rescheduleForRetry(ctx context.Context, q querier, jobID string, nextAt time.Time, reason string) error {
	_, err := q.ExecContext(ctx, `
		UPDATE jobs SET scheduled_at = $2, last_error = $3, updated_at = NOW()
		WHERE id = $1
	`, jobID, nextAt, reason)
	if err != nil {
		return fmt.Errorf("reschedule for retry: %w", err)
	}
	return nil
}

// CreateJob is idempotent on (lead_id, step_number): the partial unique
// index only covers rows whose status isn't 'failed', so a prior FAILED
// row does not block the insert. Retrying a FAILED job goes through
// ResetJobForRetry, which reuses that row.
func (p *Postgres) CreateJob(ctx context.Context, campaignID, leadID string, step int, scheduledAt time.Time) (domain.Job, error) {
	return createJob(ctx, p.db, campaignID, leadID, step, scheduledAt)
}

func createJob(ctx context.Context, q querier, campaignID, leadID string, step int, scheduledAt time.Time) (domain.Job, error) {
	id := uuid.New().String()
	_, err := q.ExecContext(ctx, `
		INSERT INTO jobs (id, campaign_id, lead_id, step_number, scheduled_at, status, attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'pending', 0, NOW(), NOW())
		ON CONFLICT (lead_id, step_number) WHERE status <> 'failed' DO NOTHING
	`, id, campaignID, leadID, step, scheduledAt)
	if err != nil {
		return domain.Job{}, fmt.Errorf("create job: %w", err)
	}

	row := q.QueryRowContext(ctx, `
		SELECT id, campaign_id, lead_id, step_number, scheduled_at, sent_at,
			status, attempts, COALESCE(last_error, ''), COALESCE(message_id, ''),
			created_at, updated_at
		FROM jobs
		WHERE lead_id = $1 AND step_number = $2 AND status <> 'failed'
	`, leadID, step)
	j, err := scanJob(row)
	if err != nil {
		return domain.Job{}, fmt.Errorf("create job reselect: %w", err)
	}
	return j, nil
}

func (p *Postgres) CancelPendingJobsForLead(ctx context.Context, leadID string) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE jobs SET status = 'skipped', last_error = 'lead terminal', updated_at = NOW()
		WHERE lead_id = $1 AND status = 'pending'
	`, leadID)
	if err != nil {
		return fmt.Errorf("cancel pending jobs for lead: %w", err)
	}
	return nil
}

func (p *Postgres) ResetJobForRetry(ctx context.Context, jobID string, now time.Time) error {
	result, err := p.db.ExecContext(ctx, `
		UPDATE jobs SET status = 'pending', scheduled_at = $2, attempts = 0, last_error = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'failed'
	`, jobID, now)
	if err != nil {
		return fmt.Errorf("reset job for retry: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return xerrors.InvalidState(xerrors.CodeJobInvalidState, "job is not in FAILED status")
	}
	return nil
}

func (p *Postgres) LoadCampaign(ctx context.Context, id string) (domain.Campaign, error) {
	return loadCampaign(ctx, p.db, id)
}

func loadCampaign(ctx context.Context, q querier, id string) (domain.Campaign, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, owner_user_id, name, pitch, tone, status, start_time,
			COALESCE(tags, '{}'), created_at, updated_at
		FROM campaigns WHERE id = $1
	`, id)
	var c domain.Campaign
	var tags pq.StringArray
	err := row.Scan(&c.ID, &c.OwnerUserID, &c.Name, &c.Pitch, &c.Tone, &c.Status,
		&c.StartTime, &tags, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Campaign{}, xerrors.NotFound(xerrors.CodeCampaignNotFound, "campaign")
	}
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("load campaign: %w", err)
	}
	c.Tags = []string(tags)
	return c, nil
}

func (p *Postgres) LoadLead(ctx context.Context, id string) (domain.Lead, error) {
	return loadLead(ctx, p.db, id)
}

func loadLead(ctx context.Context, q querier, id string) (domain.Lead, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, campaign_id, email, COALESCE(first_name, ''), COALESCE(company, ''),
			status, created_at, updated_at
		FROM leads WHERE id = $1
	`, id)
	var l domain.Lead
	err := row.Scan(&l.ID, &l.CampaignID, &l.Email, &l.FirstName, &l.Company,
		&l.Status, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lead{}, xerrors.NotFound(xerrors.CodeLeadNotFound, "lead")
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("load lead: %w", err)
	}
	return l, nil
}

func (p *Postgres) LoadTemplate(ctx context.Context, campaignID string, step int) (domain.Template, error) {
	return loadTemplate(ctx, p.db, campaignID, step)
}

func loadTemplate(ctx context.Context, q querier, campaignID string, step int) (domain.Template, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, campaign_id, step_number, subject, body_html, delay_minutes
		FROM templates WHERE campaign_id = $1 AND step_number = $2
	`, campaignID, step)
	var t domain.Template
	err := row.Scan(&t.ID, &t.CampaignID, &t.StepNumber, &t.Subject, &t.BodyHTML, &t.DelayMinutes)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Template{}, xerrors.NotFound("TEMPLATE-060001", "template")
	}
	if err != nil {
		return domain.Template{}, fmt.Errorf("load template: %w", err)
	}
	return t, nil
}

func (p *Postgres) LoadUser(ctx context.Context, id string) (domain.User, error) {
	return loadUser(ctx, p.db, id)
}

func loadUser(ctx context.Context, q querier, id string) (domain.User, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, email, COALESCE(signature_html, ''), profile_completed, created_at, updated_at
		FROM users WHERE id = $1
	`, id)
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.SignatureHTML, &u.ProfileCompleted, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, xerrors.NotFound("USER-070001", "user")
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (p *Postgres) ListTemplates(ctx context.Context, campaignID string) ([]domain.Template, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, campaign_id, step_number, subject, body_html, delay_minutes
		FROM templates WHERE campaign_id = $1 ORDER BY step_number ASC
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []domain.Template
	for rows.Next() {
		var t domain.Template
		if err := rows.Scan(&t.ID, &t.CampaignID, &t.StepNumber, &t.Subject, &t.BodyHTML, &t.DelayMinutes); err != nil {
			return nil, fmt.Errorf("list templates scan: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (p *Postgres) ListNonTerminalLeads(ctx context.Context, campaignID string) ([]domain.Lead, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, campaign_id, email, COALESCE(first_name, ''), COALESCE(company, ''),
			status, created_at, updated_at
		FROM leads
		WHERE campaign_id = $1 AND status NOT IN ('replied', 'failed')
		ORDER BY id ASC
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list non-terminal leads: %w", err)
	}
	defer rows.Close()

	var out []domain.Lead
	for rows.Next() {
		var l domain.Lead
		if err := rows.Scan(&l.ID, &l.CampaignID, &l.Email, &l.FirstName, &l.Company,
			&l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list non-terminal leads scan: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (p *Postgres) ListJobHistory(ctx context.Context, leadID string) ([]domain.HistoryEntry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT j.step_number, j.status, j.scheduled_at, j.sent_at,
			COALESCE(t.subject, ''), j.attempts, COALESCE(j.last_error, '')
		FROM jobs j
		LEFT JOIN templates t ON t.campaign_id = j.campaign_id AND t.step_number = j.step_number
		WHERE j.lead_id = $1
		ORDER BY j.step_number ASC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("list job history: %w", err)
	}
	defer rows.Close()

	var out []domain.HistoryEntry
	for rows.Next() {
		var h domain.HistoryEntry
		if err := rows.Scan(&h.StepNumber, &h.Status, &h.ScheduledAt, &h.SentAt,
			&h.Subject, &h.Attempts, &h.LastError); err != nil {
			return nil, fmt.Errorf("list job history scan: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (p *Postgres) LeadHasSentJob(ctx context.Context, leadID string) (bool, error) {
	return leadHasSentJob(ctx, p.db, leadID)
}

func leadHasSentJob(ctx context.Context, q querier, leadID string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM jobs WHERE lead_id = $1 AND status = 'sent')
	`, leadID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lead has sent job: %w", err)
	}
	return exists, nil
}

// CampaignIsExhausted reports whether no PENDING job remains for the
// campaign. It counts pending jobs only; lead statuses are not consulted.
func (p *Postgres) CampaignIsExhausted(ctx context.Context, campaignID string) (bool, error) {
	var pendingCount int
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM jobs WHERE campaign_id = $1 AND status = 'pending'
	`, campaignID).Scan(&pendingCount)
	if err != nil {
		return false, fmt.Errorf("campaign exhausted: count pending: %w", err)
	}
	return pendingCount == 0, nil
}

func (p *Postgres) UpdateLeadStatus(ctx context.Context, leadID string, from []domain.LeadStatus, to domain.LeadStatus) (bool, error) {
	return updateLeadStatus(ctx, p.db, leadID, from, to)
}

func updateLeadStatus(ctx context.Context, q querier, leadID string, from []domain.LeadStatus, to domain.LeadStatus) (bool, error) {
	result, err := q.ExecContext(ctx, `
		UPDATE leads SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = ANY($3)
	`, to, leadID, statusArray(from))
	if err != nil {
		return false, fmt.Errorf("update lead status: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

func (p *Postgres) UpdateCampaignStatus(ctx context.Context, campaignID string, from []domain.CampaignStatus, to domain.CampaignStatus, startTime *time.Time) (bool, error) {
	var result sql.Result
	var err error
	if startTime != nil {
		result, err = p.db.ExecContext(ctx, `
			UPDATE campaigns SET status = $1, start_time = $2, updated_at = NOW()
			WHERE id = $3 AND status = ANY($4)
		`, to, *startTime, campaignID, campaignStatusArray(from))
	} else {
		result, err = p.db.ExecContext(ctx, `
			UPDATE campaigns SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = ANY($3)
		`, to, campaignID, campaignStatusArray(from))
	}
	if err != nil {
		return false, fmt.Errorf("update campaign status: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// DeleteCampaign removes a DRAFT campaign; ON DELETE CASCADE foreign keys
// on leads, templates, and jobs take the rest of its data with it. The
// DRAFT guard is re-checked here (not just by the caller) so a campaign
// that launched between the caller's check and this statement is never
// deleted out from under its in-flight sends.
func (p *Postgres) DeleteCampaign(ctx context.Context, campaignID string) error {
	result, err := p.db.ExecContext(ctx, `
		DELETE FROM campaigns WHERE id = $1 AND status = 'draft'
	`, campaignID)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return xerrors.InvalidState(xerrors.CodeCampaignInvalidState, "campaign is not in DRAFT status")
	}
	return nil
}

func (p *Postgres) FindLeadByMessageID(ctx context.Context, messageID string) (domain.Lead, domain.Job, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT l.id, l.campaign_id, l.email, COALESCE(l.first_name, ''), COALESCE(l.company, ''),
			l.status, l.created_at, l.updated_at,
			j.id, j.campaign_id, j.lead_id, j.step_number, j.scheduled_at, j.sent_at,
			j.status, j.attempts, COALESCE(j.last_error, ''), COALESCE(j.message_id, ''),
			j.created_at, j.updated_at
		FROM jobs j
		JOIN leads l ON l.id = j.lead_id
		WHERE j.message_id = $1
	`, messageID)

	var l domain.Lead
	var j domain.Job
	err := row.Scan(
		&l.ID, &l.CampaignID, &l.Email, &l.FirstName, &l.Company, &l.Status, &l.CreatedAt, &l.UpdatedAt,
		&j.ID, &j.CampaignID, &j.LeadID, &j.StepNumber, &j.ScheduledAt, &j.SentAt,
		&j.Status, &j.Attempts, &j.LastError, &j.MessageID, &j.CreatedAt, &j.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lead{}, domain.Job{}, xerrors.NotFound(xerrors.CodeLeadNotFound, "lead for message-id")
	}
	if err != nil {
		return domain.Lead{}, domain.Job{}, fmt.Errorf("find lead by message id: %w", err)
	}
	return l, j, nil
}

func (p *Postgres) CreateCampaign(ctx context.Context, c domain.Campaign) (domain.Campaign, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = domain.CampaignDraft
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO campaigns (id, owner_user_id, name, pitch, tone, status, start_time, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`, c.ID, c.OwnerUserID, c.Name, c.Pitch, c.Tone, c.Status, c.StartTime, pq.Array(c.Tags))
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("create campaign: %w", err)
	}
	return p.LoadCampaign(ctx, c.ID)
}

func (p *Postgres) CreateLead(ctx context.Context, l domain.Lead) (domain.Lead, error) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.Status == "" {
		l.Status = domain.LeadPending
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO leads (id, campaign_id, email, first_name, company, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`, l.ID, l.CampaignID, strings.ToLower(l.Email), l.FirstName, l.Company, l.Status)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return p.LoadLead(ctx, l.ID)
}

func (p *Postgres) CreateTemplate(ctx context.Context, t domain.Template) (domain.Template, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO templates (id, campaign_id, step_number, subject, body_html, delay_minutes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, t.ID, t.CampaignID, t.StepNumber, t.Subject, t.BodyHTML, t.DelayMinutes)
	if err != nil {
		return domain.Template{}, fmt.Errorf("create template: %w", err)
	}
	return t, nil
}

func (p *Postgres) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO users (id, email, signature_html, profile_completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`, u.ID, strings.ToLower(u.Email), u.SignatureHTML, u.ProfileCompleted)
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return p.LoadUser(ctx, u.ID)
}

func statusArray(statuses []domain.LeadStatus) pq.StringArray {
	out := make(pq.StringArray, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func campaignStatusArray(statuses []domain.CampaignStatus) pq.StringArray {
	out := make(pq.StringArray, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
