package domain

// AnnotationResult is one successful model judgment for one sentence.
// Results are only ever created for calls that succeeded; a failed call
// produces no result, never a defaulted one.
type AnnotationResult struct {
	// Text is the sentence that was judged.
	Text string `json:"text"`

	// Label is the binary causal judgment, always 0 or 1.
	Label Label `json:"label"`

	// Confidence is the model's self-reported confidence, clamped to
	// [0, 1]. When the model omits it, 0.5 is recorded.
	Confidence float64 `json:"confidence"`
}

// GoldRecord is one gold-labeled sentence as loaded from the annotated
// dataset, before label normalization.
type GoldRecord struct {
	// Text is the sentence and the join key against predictions.
	Text string

	// Raw is the gold label cell exactly as loaded. Normalization to a
	// binary label happens in the scoring engine.
	Raw string
}

// PredictionRecord is one model prediction as loaded from a prediction
// file, before label normalization.
type PredictionRecord struct {
	// Text is the sentence and the join key against gold records.
	Text string

	// Raw is the predicted label cell exactly as loaded.
	Raw string

	// Confidence carries the model confidence when the prediction file
	// has one; nil otherwise.
	Confidence *float64
}

// MergedRow is one evaluation row where a gold record and a prediction
// joined on text and both labels normalized successfully.
type MergedRow struct {
	Text  string `json:"text"`
	YTrue Label  `json:"y_true"`
	YPred Label  `json:"y_pred"`

	// Confidence is carried through from the prediction when present.
	Confidence *float64 `json:"confidence,omitempty"`
}

// Confusion holds the binary confusion-matrix counts in the fixed
// TN, FP, FN, TP order.
type Confusion struct {
	TN int `json:"tn"`
	FP int `json:"fp"`
	FN int `json:"fn"`
	TP int `json:"tp"`
}

// EvalReport summarizes predictions against gold labels. Precision,
// recall, and F1 are for the positive class (label 1); a class with zero
// predicted or zero actual positives yields 0 for the corresponding
// metric rather than an error.
type EvalReport struct {
	// N counts the merged rows the metrics were computed over.
	N int `json:"n"`

	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`

	Confusion Confusion `json:"confusion"`
}
