package recommendation

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/artem13815/finadvisor/pkg/financial"
	"github.com/artem13815/finadvisor/pkg/nlp"
)

// Index is an in-memory bag-of-words vector index over products.
// Search is a linear cosine scan, which is plenty for a product catalogue.
type Index struct {
	products []financial.Product
	vectors  []vector
}

type vector struct {
	terms map[string]float64
	norm  float64
}

func newVector(text string) vector {
	counts := nlp.TermCounts(text)
	v := vector{terms: make(map[string]float64, len(counts))}
	var sum float64
	for t, c := range counts {
		f := float64(c)
		v.terms[t] = f
		sum += f * f
	}
	v.norm = math.Sqrt(sum)
	return v
}

func (v vector) cosine(o vector) float64 {
	if v.norm == 0 || o.norm == 0 {
		return 0
	}
	small, large := v, o
	if len(small.terms) > len(large.terms) {
		small, large = large, small
	}
	var dot float64
	for t, f := range small.terms {
		dot += f * large.terms[t]
	}
	return dot / (v.norm * o.norm)
}

func productText(p financial.Product) string {
	return strings.Join([]string{p.Name, p.Category, p.Description, p.RiskLevel, p.SuitableFor}, " ")
}

func NewIndex(products []financial.Product) *Index {
	idx := &Index{products: append([]financial.Product(nil), products...)}
	idx.vectors = make([]vector, len(idx.products))
	for i, p := range idx.products {
		idx.vectors[i] = newVector(productText(p))
	}
	return idx
}

// ProductLister is the catalogue the index is built from.
type ProductLister interface {
	ListProducts(ctx context.Context, filter financial.ProductFilter) ([]financial.Product, error)
}

// BuildIndex loads the whole catalogue and indexes it.
func BuildIndex(ctx context.Context, src ProductLister) (*Index, error) {
	products, err := src.ListProducts(ctx, financial.ProductFilter{})
	if err != nil {
		return nil, err
	}
	return NewIndex(products), nil
}

type Match struct {
	Product financial.Product
	Score   float64
}

func (idx *Index) Len() int { return len(idx.products) }

// Products returns the catalogue in load order.
func (idx *Index) Products() []financial.Product { return idx.products }

// Search returns up to k products ordered by similarity to query. Ties keep
// catalogue order.
func (idx *Index) Search(query string, k int) []Match {
	if k <= 0 || len(idx.products) == 0 {
		return nil
	}
	q := newVector(query)
	matches := make([]Match, len(idx.products))
	for i, p := range idx.products {
		matches[i] = Match{Product: p, Score: q.cosine(idx.vectors[i])}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}
