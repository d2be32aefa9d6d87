package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/ScentGo/internal/domain"
	"github.com/utafrali/ScentGo/pkg/database"
	apperrors "github.com/utafrali/ScentGo/pkg/errors"
)

const perfumeSelect = `
		SELECT p.id, p.name, p.brand, p.description, p.image_url, p.notes,
		       b.name, b.logo_url
		FROM perfumes p
		LEFT JOIN brands b ON b.id = p.brand_id`

// PerfumeRepository reads the catalog from PostgreSQL.
type PerfumeRepository struct {
	pool database.DBTX
}

// NewPerfumeRepository creates a new PostgreSQL-backed perfume repository.
func NewPerfumeRepository(pool database.DBTX) *PerfumeRepository {
	return &PerfumeRepository{pool: pool}
}

// List returns catalog rows ordered by creation time, optionally limited to ids.
func (r *PerfumeRepository) List(ctx context.Context, ids []string) (perfumes []domain.Perfume, err error) {
	query := perfumeSelect + `
		ORDER BY p.created_at, p.id`
	args := []any{}
	if len(ids) > 0 {
		query = perfumeSelect + `
		WHERE p.id = ANY($1)
		ORDER BY p.created_at, p.id`
		args = append(args, ids)
	}

	ctx, end := database.TraceQuery(ctx, "postgresql", "ListPerfumes", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list perfumes: %w", err)
	}
	defer rows.Close()

	perfumes = []domain.Perfume{}
	for rows.Next() {
		p, err := scanPerfume(rows)
		if err != nil {
			return nil, fmt.Errorf("scan perfume row: %w", err)
		}
		perfumes = append(perfumes, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate perfume rows: %w", err)
	}
	return perfumes, nil
}

// GetByID retrieves a perfume by its identifier.
func (r *PerfumeRepository) GetByID(ctx context.Context, id string) (*domain.Perfume, error) {
	query := perfumeSelect + `
		WHERE p.id = $1`

	p, err := scanPerfume(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("perfume", id)
		}
		return nil, fmt.Errorf("get perfume %s: %w", id, err)
	}
	return p, nil
}

func scanPerfume(row pgx.Row) (*domain.Perfume, error) {
	var (
		p         domain.Perfume
		brandName *string
		brandLogo *string
	)
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Brand,
		&p.Description,
		&p.ImageURL,
		&p.Notes,
		&brandName,
		&brandLogo,
	); err != nil {
		return nil, err
	}
	if p.Notes == nil {
		p.Notes = []string{}
	}
	if brandName != nil {
		p.BrandInfo = &domain.Brand{Name: *brandName}
		if brandLogo != nil {
			p.BrandInfo.LogoURL = *brandLogo
		}
	}
	return &p, nil
}
