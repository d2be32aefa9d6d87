package rest

import (
	"context"
	"errors"
	"net/url"

	"github.com/utafrali/ScentGo/internal/domain"
	apperrors "github.com/utafrali/ScentGo/pkg/errors"
)

const perfumeColumns = "id,name,brand,description,image_url,notes,brands(name,logo_url)"

// PerfumeRepository reads the catalog table.
type PerfumeRepository struct {
	client *Client
}

// NewPerfumeRepository creates a REST-backed perfume repository.
func NewPerfumeRepository(client *Client) *PerfumeRepository {
	return &PerfumeRepository{client: client}
}

// List returns catalog rows ordered by creation time, optionally limited to ids.
func (r *PerfumeRepository) List(ctx context.Context, ids []string) ([]domain.Perfume, error) {
	q := url.Values{}
	q.Set("select", perfumeColumns)
	q.Set("order", "created_at.asc,id.asc")
	if len(ids) > 0 {
		q.Set("id", inFilter(ids))
	}

	perfumes := []domain.Perfume{}
	if err := r.client.get(ctx, "perfumes", q, false, &perfumes); err != nil {
		return nil, err
	}
	for i := range perfumes {
		normalizePerfume(&perfumes[i])
	}
	return perfumes, nil
}

// GetByID retrieves a perfume by its identifier.
func (r *PerfumeRepository) GetByID(ctx context.Context, id string) (*domain.Perfume, error) {
	q := url.Values{}
	q.Set("select", perfumeColumns)
	q.Set("id", "eq."+id)

	var p domain.Perfume
	if err := r.client.get(ctx, "perfumes", q, true, &p); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("perfume", id)
		}
		return nil, err
	}
	normalizePerfume(&p)
	return &p, nil
}

func normalizePerfume(p *domain.Perfume) {
	if p.Notes == nil {
		p.Notes = []string{}
	}
	if p.BrandInfo != nil && p.BrandInfo.Name == "" {
		p.BrandInfo = nil
	}
}
