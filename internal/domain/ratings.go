// Package domain contains pure, dependency-free domain models and types
// for the annotation agreement and evaluation engine.
package domain

// Label is a nominal category assigned to a sentence by a rater or a
// model. For the causal-relation task the category set is {0, 1}, but the
// agreement engine treats labels as an arbitrary finite nominal set.
type Label int

// Binary categories for the causal-relation task.
const (
	// NotCausal marks a sentence with no stated or implied cause-effect
	// relation.
	NotCausal Label = 0

	// Causal marks a sentence that states or clearly implies that one
	// thing causes another.
	Causal Label = 1
)

// RatingItem is one annotated sentence. Ratings maps a rater identifier to
// the label that rater assigned; a rater who did not judge the item is
// absent from the map. Missingness is key absence, never a sentinel value.
type RatingItem struct {
	// Text is the sentence itself. It is the item's stable identity and
	// the join key for all downstream operations.
	Text string

	// Ratings holds the labels assigned to this item, keyed by rater.
	Ratings map[string]Label
}

// RatingMatrix is an ordered items-by-raters label table produced by the
// dataset layer. The engines treat it as read-only; derived collections
// are always newly allocated.
type RatingMatrix struct {
	// Raters lists the rater identifiers in column order.
	Raters []string

	// Items lists the annotated sentences in row order.
	Items []RatingItem
}

// Rating returns the label the given rater assigned to the item, and
// whether one exists.
func (it RatingItem) Rating(rater string) (Label, bool) {
	l, ok := it.Ratings[rater]
	return l, ok
}
