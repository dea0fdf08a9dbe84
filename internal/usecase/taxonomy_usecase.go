package usecase

import (
	"context"

	"talent-match/internal/domain/taxonomy"
)

type TaxonomyUsecase interface {
	AddSynonym(ctx context.Context, canon, alias string) (bool, error)
	CanonicalSkill(raw string) string
}

type Taxonomy struct {
	tax *taxonomy.Taxonomy
}

func NewTaxonomyUsecase(tax *taxonomy.Taxonomy) *Taxonomy {
	return &Taxonomy{tax: tax}
}

// AddSynonym registers alias as a synonym of the canonical skill key. The
// alias is durable before it takes effect in memory.
func (u *Taxonomy) AddSynonym(ctx context.Context, canon, alias string) (bool, error) {
	ok, err := u.tax.AddSynonym(ctx, canon, alias)
	if err != nil {
		return false, wrapStoreErr(err)
	}
	return ok, nil
}

func (u *Taxonomy) CanonicalSkill(raw string) string {
	return u.tax.CanonicalSkill(raw)
}
