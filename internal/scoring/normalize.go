// Package scoring reconciles model predictions against gold labels and
// computes confusion-matrix-based classification metrics.
package scoring

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/ahrav/go-concord/internal/domain"
)

// foldCaser performs Unicode case folding for label comparison.
// Shared instance since cases.Fold() allocation is not free.
var foldCaser = cases.Fold()

// NormalizeLabel coerces a raw label cell to a binary label.
// Case-insensitive "1"/"true"/"yes" map to 1 and "0"/"false"/"no" map
// to 0; any other value is parsed as a number and truncated to an
// integer, with exactly 1 mapping to the positive class. Values that
// cannot be interpreted report ok=false — a missing label is a normal
// data condition, not an error.
func NormalizeLabel(raw string) (domain.Label, bool) {
	t := strings.TrimSpace(raw)
	if t == "" {
		return 0, false
	}

	switch foldCaser.String(t) {
	case "1", "true", "yes":
		return domain.Causal, true
	case "0", "false", "no":
		return domain.NotCausal, true
	}

	f, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if int(f) == 1 {
		return domain.Causal, true
	}
	return domain.NotCausal, true
}
