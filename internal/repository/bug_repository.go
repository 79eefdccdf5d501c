package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/bug-tracker/internal/domain"
)

// BugSort selects list ordering.
type BugSort string

const (
	// BugSortCreated orders oldest first.
	BugSortCreated BugSort = ""
	// BugSortRecent orders newest first.
	BugSortRecent BugSort = "recent"
)

// BugFilter captures list parameters.
type BugFilter struct {
	Status   *domain.BugStatus
	Priority *int
	Sort     BugSort
}

// BugRepository encapsulates bug persistence.
type BugRepository interface {
	Create(ctx context.Context, bug *domain.Bug) error
	List(ctx context.Context, filter BugFilter) ([]domain.Bug, error)
	GetByID(ctx context.Context, id string) (*domain.Bug, error)
	Update(ctx context.Context, id string, patch domain.BugPatch) (*domain.Bug, error)
	Delete(ctx context.Context, id string) error
}

const bugColumns = `id, title, description, severity, priority, status, reported_by, created_at, updated_at`

type bugRepository struct {
	pool *pgxpool.Pool
}

// NewBugRepository returns a Postgres-backed implementation.
func NewBugRepository(pool *pgxpool.Pool) BugRepository {
	return &bugRepository{pool: pool}
}

func (r *bugRepository) Create(ctx context.Context, bug *domain.Bug) error {
	const query = `
        INSERT INTO bugs (title, description, severity, priority, status, reported_by)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		bug.Title,
		bug.Description,
		bug.Severity,
		bug.Priority,
		bug.Status,
		bug.ReportedBy,
	).Scan(&bug.ID, &bug.CreatedAt, &bug.UpdatedAt)
}

func (r *bugRepository) List(ctx context.Context, filter BugFilter) ([]domain.Bug, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}

	order := "created_at ASC"
	if filter.Sort == BugSortRecent {
		order = "created_at DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM bugs WHERE %s ORDER BY %s`,
		bugColumns, strings.Join(clauses, " AND "), order)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBugs(rows)
}

func (r *bugRepository) GetByID(ctx context.Context, id string) (*domain.Bug, error) {
	query := fmt.Sprintf(`SELECT %s FROM bugs WHERE id=$1`, bugColumns)
	bug, err := scanBug(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBugNotFound
	}
	return bug, err
}

func (r *bugRepository) Update(ctx context.Context, id string, patch domain.BugPatch) (*domain.Bug, error) {
	sets := []string{"updated_at=NOW()"}
	args := []any{}
	set := func(column string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Severity != nil {
		set("severity", *patch.Severity)
	}
	if patch.Priority != nil {
		set("priority", *patch.Priority)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.ReportedBy != nil {
		set("reported_by", *patch.ReportedBy)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE bugs SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), bugColumns)

	bug, err := scanBug(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBugNotFound
	}
	return bug, err
}

func (r *bugRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM bugs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrBugNotFound
	}
	return nil
}

func scanBug(row pgx.Row) (*domain.Bug, error) {
	var bug domain.Bug
	if err := row.Scan(
		&bug.ID,
		&bug.Title,
		&bug.Description,
		&bug.Severity,
		&bug.Priority,
		&bug.Status,
		&bug.ReportedBy,
		&bug.CreatedAt,
		&bug.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &bug, nil
}

func scanBugs(rows pgx.Rows) ([]domain.Bug, error) {
	result := []domain.Bug{}
	for rows.Next() {
		bug, err := scanBug(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *bug)
	}
	return result, rows.Err()
}
