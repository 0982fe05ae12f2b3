// Package agreement computes nominal inter-rater reliability
// (Krippendorff's alpha) over a rating matrix, one rater pair at a time.
//
// The head-to-head definition is intentional: observed and expected
// disagreement are computed over exactly the two-rater submatrix for each
// pair, not over a single coincidence matrix pooled across all raters.
// Pairs are therefore directly comparable as head-to-head matchups.
package agreement

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ahrav/go-concord/internal/domain"
)

// MinPairItems is the minimum number of overlapping items a rater pair
// needs before alpha is computed. Pairs below this threshold are omitted
// from the table entirely.
const MinPairItems = 2

// Alpha computes nominal Krippendorff's alpha over item rows.
// Each row holds the labels assigned to one item; rows may have any
// number of ratings, and rows with fewer than two contribute nothing to
// observed disagreement.
//
// The boolean reports whether alpha is defined. It is false when no item
// has two or more ratings (observed disagreement has a zero denominator),
// and in the degenerate case where expected disagreement is zero while
// observed disagreement is not. When every rating in a single observed
// category coincides (both disagreements zero), alpha is 1.
func Alpha(rows [][]domain.Label) (float64, bool) {
	counts := make(map[domain.Label]int)
	total := 0
	for _, row := range rows {
		for _, l := range row {
			counts[l]++
			total++
		}
	}
	if total == 0 {
		return 0, false
	}

	// Observed disagreement over items with at least two ratings.
	var doNum, doDen float64
	for _, row := range rows {
		m := len(row)
		if m <= 1 {
			continue
		}
		doDen += float64(m * (m - 1))
		perItem := make(map[domain.Label]int, len(counts))
		for _, l := range row {
			perItem[l]++
		}
		for _, n := range perItem {
			doNum += float64(n * (m - n))
		}
	}
	if doDen == 0 {
		return 0, false
	}
	do := doNum / doDen

	// Expected disagreement from category prevalence over the observed
	// category set only.
	var sumSq float64
	for _, n := range counts {
		p := float64(n) / float64(total)
		sumSq += p * p
	}
	de := 1.0 - sumSq

	if de == 0 {
		if do == 0 {
			return 1.0, true
		}
		return 0, false
	}
	return 1.0 - do/de, true
}

// PairwiseTable computes a head-to-head agreement entry for every
// unordered rater pair in the matrix. Each pair is restricted to the
// items where both raters have a label; pairs with fewer than
// MinPairItems overlapping items are skipped entirely.
//
// The table is sorted by alpha descending. Undefined entries sort after
// all defined ones, preserving their relative order.
func PairwiseTable(m *domain.RatingMatrix) []domain.PairwiseAgreement {
	var table []domain.PairwiseAgreement
	for i := 0; i < len(m.Raters); i++ {
		for j := i + 1; j < len(m.Raters); j++ {
			a, b := m.Raters[i], m.Raters[j]

			var rows [][]domain.Label
			for _, item := range m.Items {
				la, okA := item.Rating(a)
				lb, okB := item.Rating(b)
				if okA && okB {
					rows = append(rows, []domain.Label{la, lb})
				}
			}
			if len(rows) < MinPairItems {
				continue
			}

			alpha, defined := Alpha(rows)
			table = append(table, domain.PairwiseAgreement{
				RaterA:  a,
				RaterB:  b,
				Items:   len(rows),
				Alpha:   alpha,
				Defined: defined,
			})
		}
	}

	sort.SliceStable(table, func(i, j int) bool {
		if table[i].Defined != table[j].Defined {
			return table[i].Defined
		}
		return table[i].Alpha > table[j].Alpha
	})
	return table
}

// Summarize reports mean and median alpha across the defined entries of a
// pairwise table. Undefined entries count toward Pairs but are excluded
// from the statistics, mirroring NaN-skipping in tabular tooling.
func Summarize(table []domain.PairwiseAgreement) domain.AgreementSummary {
	defined := make([]float64, 0, len(table))
	for _, p := range table {
		if p.Defined {
			defined = append(defined, p.Alpha)
		}
	}

	s := domain.AgreementSummary{Pairs: len(table), Defined: len(defined)}
	if len(defined) == 0 {
		return s
	}

	s.Mean = stat.Mean(defined, nil)
	s.Median = median(defined)
	return s
}

// median averages the two middle values for even-length input, matching
// the convention used by the dataset tooling this feeds.
func median(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
