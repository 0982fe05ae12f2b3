package scoring

import "errors"

// ErrNoOverlap is returned by Evaluate when the gold and prediction sets
// share no rows after joining on text and normalizing labels. It is a
// loud, terminal condition: reporting zero metrics for a mismatched join
// would silently hide a data problem.
var ErrNoOverlap = errors.New("no overlapping rows between gold labels and predictions; make sure the text columns match exactly")
