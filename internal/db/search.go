package db

import (
	"github.com/praxis-cloud/ragcore/internal/domain"
)

// SimilarityQuery is a validated input for SearchSimilar. It can only be
// built through NewSimilarityQuery, so the organization filter is present by
// construction and cannot be dropped by a forgotten WHERE clause.
type SimilarityQuery struct {
	organizationID string
	documentID     string
	vector         []float32
	topK           int
}

// OrganizationID returns the mandatory tenant filter.
func (q *SimilarityQuery) OrganizationID() string { return q.organizationID }

// DocumentID returns the optional document filter, empty for org-wide scope.
func (q *SimilarityQuery) DocumentID() string { return q.documentID }

// Vector returns the query embedding.
func (q *SimilarityQuery) Vector() []float32 { return q.vector }

// TopK returns the result limit.
func (q *SimilarityQuery) TopK() int { return q.topK }

// SimilarityQueryBuilder assembles a SimilarityQuery.
type SimilarityQueryBuilder struct {
	q SimilarityQuery
}

// NewSimilarityQuery starts a query scoped to one organization.
func NewSimilarityQuery(organizationID string) *SimilarityQueryBuilder {
	return &SimilarityQueryBuilder{q: SimilarityQuery{organizationID: organizationID}}
}

// WithDocument narrows the query to a single document.
func (b *SimilarityQueryBuilder) WithDocument(documentID string) *SimilarityQueryBuilder {
	b.q.documentID = documentID
	return b
}

// WithVector sets the query embedding.
func (b *SimilarityQueryBuilder) WithVector(vector []float32) *SimilarityQueryBuilder {
	b.q.vector = vector
	return b
}

// WithTopK sets the result limit.
func (b *SimilarityQueryBuilder) WithTopK(topK int) *SimilarityQueryBuilder {
	b.q.topK = topK
	return b
}

// Build validates the query and returns it.
func (b *SimilarityQueryBuilder) Build() (*SimilarityQuery, error) {
	if b.q.organizationID == "" {
		return nil, domain.NewValidation("organizationId", "must not be empty")
	}
	if b.q.topK <= 0 {
		return nil, domain.NewValidation("topK", "must be positive")
	}
	if err := domain.ValidateDimension(b.q.vector); err != nil {
		return nil, err
	}
	return &b.q, nil
}
