package scoring

import "github.com/ahrav/go-concord/internal/domain"

// Evaluate joins predictions to gold records on exact sentence text and
// computes binary classification metrics over the rows where both labels
// normalize successfully.
//
// The join is inner: rows present on only one side are dropped, as are
// rows where either label fails to normalize. If no rows survive,
// Evaluate fails with ErrNoOverlap rather than reporting zero metrics —
// an empty overlap almost always means the text columns do not match.
//
// Inputs are read-only; the merged rows are newly allocated and returned
// alongside the scalar metrics for downstream inspection or export.
func Evaluate(gold []domain.GoldRecord, preds []domain.PredictionRecord) (domain.EvalReport, []domain.MergedRow, error) {
	byText := make(map[string]domain.PredictionRecord, len(preds))
	for _, p := range preds {
		if _, dup := byText[p.Text]; !dup {
			byText[p.Text] = p
		}
	}

	var (
		merged []domain.MergedRow
		cm     domain.Confusion
	)
	for _, g := range gold {
		p, ok := byText[g.Text]
		if !ok {
			continue
		}

		yTrue, ok := NormalizeLabel(g.Raw)
		if !ok {
			continue
		}
		yPred, ok := NormalizeLabel(p.Raw)
		if !ok {
			continue
		}

		merged = append(merged, domain.MergedRow{
			Text:       g.Text,
			YTrue:      yTrue,
			YPred:      yPred,
			Confidence: p.Confidence,
		})

		switch {
		case yTrue == domain.Causal && yPred == domain.Causal:
			cm.TP++
		case yTrue == domain.Causal && yPred == domain.NotCausal:
			cm.FN++
		case yTrue == domain.NotCausal && yPred == domain.Causal:
			cm.FP++
		default:
			cm.TN++
		}
	}

	if len(merged) == 0 {
		return domain.EvalReport{}, nil, ErrNoOverlap
	}

	report := domain.EvalReport{
		N:         len(merged),
		Accuracy:  float64(cm.TP+cm.TN) / float64(len(merged)),
		Precision: safeRatio(cm.TP, cm.TP+cm.FP),
		Recall:    safeRatio(cm.TP, cm.TP+cm.FN),
		Confusion: cm,
	}
	if report.Precision+report.Recall > 0 {
		report.F1 = 2 * report.Precision * report.Recall / (report.Precision + report.Recall)
	}
	return report, merged, nil
}

// safeRatio divides with the zero-division-yields-zero convention used
// for binary precision and recall.
func safeRatio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
