package consultations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/consult/pkg/pagination"
	"github.com/JaimeStill/consult/pkg/query"
	"github.com/JaimeStill/consult/pkg/repository"
)

var repoErrors = repository.Errors{
	NotFound:  ErrNotFound,
	Duplicate: ErrDuplicate,
	Invalid:   ErrInvalidConsultation,
}

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a consultation repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "consultations"),
		pagination: pagination,
	}
}

func (r *repo) Handler(inFlight InFlightChecker, clock func() time.Time) *Handler {
	return NewHandler(r, r.logger, r.pagination, inFlight, clock)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Consultation], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Company", "Project")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count consultations: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanConsultation)
	if err != nil {
		return nil, fmt.Errorf("query consultations: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) All(ctx context.Context, filters Filters) ([]Consultation, error) {
	qb := query.NewBuilder(projection, defaultSort, query.SortField{Field: "CreatedAt"})
	filters.Apply(qb)

	q, args := qb.Build()
	items, err := repository.QueryMany(ctx, r.db, q, args, scanConsultation)
	if err != nil {
		return nil, fmt.Errorf("query consultations: %w", err)
	}
	return items, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return r.find(ctx, r.db, id)
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Consultation, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()

	q := `
		INSERT INTO consultations(id, company, project, project_type, contact_email, deadline, decision, assigned_officer, consultation_fee, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Consultation, error) {
		if _, err := tx.ExecContext(
			ctx, q,
			id,
			cmd.Company,
			cmd.Project,
			cmd.ProjectType,
			cmd.ContactEmail,
			cmd.Deadline,
			cmd.Decision,
			cmd.AssignedOfficer,
			cmd.ConsultationFee,
			string(cmd.PaymentStatus),
		); err != nil {
			return nil, err
		}
		return r.find(ctx, tx, id)
	})

	if err != nil {
		return nil, repository.MapError(err, repoErrors)
	}

	r.logger.Info("consultation created", "id", c.ID, "company", c.Company, "deadline", c.Deadline)
	return c, nil
}

func (r *repo) UpdateDecision(ctx context.Context, id uuid.UUID, cmd DecisionCommand) (*Consultation, error) {
	if cmd.Decision != DecisionNone {
		if _, err := ParseDecision(string(cmd.Decision)); err != nil {
			return nil, err
		}
	}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Consultation, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE consultations SET decision = $2, updated_at = NOW() WHERE id = $1",
			id, cmd.Decision,
		); err != nil {
			return nil, err
		}
		return r.find(ctx, tx, id)
	})

	if err != nil {
		return nil, repository.MapError(err, repoErrors)
	}

	r.logger.Info("decision updated", "id", id, "decision", c.Decision)
	return c, nil
}

func (r *repo) MarkEmailSent(ctx context.Context, id uuid.UUID, cmd EmailSentCommand) (*Consultation, error) {
	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Consultation, error) {
		current, err := r.find(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if current.EmailSent {
			return nil, ErrAlreadySent
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			`UPDATE consultations
			 SET email_sent = true, email_sent_at = $2, email_id = $3, updated_at = NOW()
			 WHERE id = $1 AND email_sent = false`,
			id, cmd.SentAt, cmd.EmailID,
		); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrAlreadySent
			}
			return nil, err
		}
		return r.find(ctx, tx, id)
	})

	if err != nil {
		return nil, repository.MapError(err, repoErrors)
	}

	r.logger.Info("email recorded", "id", id, "email_id", cmd.EmailID)
	return c, nil
}

func (r *repo) find(ctx context.Context, q repository.Querier, id uuid.UUID) (*Consultation, error) {
	stmt, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, q, stmt, args, scanConsultation)
	if err != nil {
		return nil, repository.MapError(err, repoErrors)
	}
	return &c, nil
}
