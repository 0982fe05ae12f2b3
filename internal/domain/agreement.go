package domain

// PairwiseAgreement reports the head-to-head reliability of one unordered
// rater pair over the items both raters labeled. Pairs are unordered:
// (A, B) and (B, A) describe the same entry and only one appears in a
// table.
type PairwiseAgreement struct {
	// RaterA and RaterB identify the pair. Ordering follows the rating
	// matrix's column order.
	RaterA string `json:"rater_a"`
	RaterB string `json:"rater_b"`

	// Items counts the sentences both raters labeled. A pair enters a
	// table only when Items >= 2.
	Items int `json:"n_items"`

	// Alpha is the nominal Krippendorff's alpha for the pair.
	// It is meaningful only when Defined is true.
	Alpha float64 `json:"alpha"`

	// Defined is false when alpha could not be computed because a
	// disagreement denominator degenerated to zero. An undefined alpha is
	// a reported state, not an error.
	Defined bool `json:"defined"`
}

// AgreementSummary aggregates a pairwise table. Mean and Median are taken
// over the defined alphas only, mirroring how NaN entries are skipped in
// tabular statistics.
type AgreementSummary struct {
	// Pairs counts every entry in the table, defined or not.
	Pairs int `json:"pairs"`

	// Defined counts the entries with a computable alpha.
	Defined int `json:"defined"`

	// Mean is the arithmetic mean alpha across defined entries.
	Mean float64 `json:"mean_alpha"`

	// Median is the median alpha across defined entries.
	Median float64 `json:"median_alpha"`
}
