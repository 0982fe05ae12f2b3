// Package dataset loads and writes the tabular files the pipeline works
// with: rater annotation tables, sentence lists, gold labels, model
// predictions, and the derived pairwise and merged outputs.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ahrav/go-concord/internal/domain"
)

// Well-known column names.
const (
	// ColumnSentence is the identity column of annotation and gold tables.
	ColumnSentence = "Sentence"
	// ColumnText is the identity column of sentence, prediction, and
	// merged tables.
	ColumnText = "text"
	// ColumnModelLabel holds the predicted label in prediction files.
	ColumnModelLabel = "model_label"
	// ColumnConfidence holds the optional model confidence.
	ColumnConfidence = "confidence"
)

// ErrMissingColumn indicates a required column is absent from a file's
// header. It is a configuration-level error: the run aborts before any
// processing.
var ErrMissingColumn = errors.New("required column not found")

// missingCell reports whether a cell encodes a missing value. Blank and
// the literal text "nan" both mean missing.
func missingCell(cell string) bool {
	t := strings.TrimSpace(cell)
	return t == "" || strings.EqualFold(t, "nan")
}

// readTable reads a whole CSV file as a header plus rows.
func readTable(path string) (header []string, rows [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s is empty", path)
	}
	return records[0], records[1:], nil
}

// columnIndex finds a column in a header, or fails with ErrMissingColumn.
func columnIndex(header []string, name, path string) (int, error) {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q in %s", ErrMissingColumn, name, path)
}

// cell returns the row's value at idx, tolerating ragged rows.
func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

// LoadRatings reads an annotation table: one identity column plus one
// column per rater, where blank and "nan" cells mean the rater did not
// label the item.
func LoadRatings(path string) (*domain.RatingMatrix, error) {
	header, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}

	sentenceIdx, err := columnIndex(header, ColumnSentence, path)
	if err != nil {
		return nil, err
	}

	m := &domain.RatingMatrix{}
	raterIdx := make(map[string]int)
	for i, h := range header {
		if i == sentenceIdx {
			continue
		}
		name := strings.TrimSpace(h)
		m.Raters = append(m.Raters, name)
		raterIdx[name] = i
	}

	for _, row := range rows {
		item := domain.RatingItem{
			Text:    cell(row, sentenceIdx),
			Ratings: make(map[string]domain.Label, len(m.Raters)),
		}
		for _, rater := range m.Raters {
			raw := cell(row, raterIdx[rater])
			if missingCell(raw) {
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid rating %q for rater %s in %s: %w", raw, rater, path, err)
			}
			item.Ratings[rater] = domain.Label(int(f))
		}
		m.Items = append(m.Items, item)
	}
	return m, nil
}

// LoadSentences reads the text column of a sentence file, skipping
// blank rows.
func LoadSentences(path string) ([]string, error) {
	header, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}

	textIdx, err := columnIndex(header, ColumnText, path)
	if err != nil {
		return nil, err
	}

	var sentences []string
	for _, row := range rows {
		text := strings.TrimSpace(cell(row, textIdx))
		if text != "" {
			sentences = append(sentences, text)
		}
	}
	return sentences, nil
}

// LoadGold reads gold records from an annotated table. The identity
// column may be named either "text" or "Sentence"; labelColumn names the
// gold label column to carry through, unnormalized.
func LoadGold(path, labelColumn string) ([]domain.GoldRecord, error) {
	header, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}

	textIdx, err := columnIndex(header, ColumnText, path)
	if err != nil {
		textIdx, err = columnIndex(header, ColumnSentence, path)
		if err != nil {
			return nil, err
		}
	}
	labelIdx, err := columnIndex(header, labelColumn, path)
	if err != nil {
		return nil, err
	}

	var gold []domain.GoldRecord
	for _, row := range rows {
		text := strings.TrimSpace(cell(row, textIdx))
		if text == "" {
			continue
		}
		gold = append(gold, domain.GoldRecord{Text: text, Raw: cell(row, labelIdx)})
	}
	return gold, nil
}

// LoadPredictions reads a prediction file. The confidence column is
// optional; unparseable confidences are carried as absent rather than
// failing the load.
func LoadPredictions(path string) ([]domain.PredictionRecord, error) {
	header, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}

	textIdx, err := columnIndex(header, ColumnText, path)
	if err != nil {
		return nil, err
	}
	labelIdx, err := columnIndex(header, ColumnModelLabel, path)
	if err != nil {
		return nil, err
	}
	confIdx, confErr := columnIndex(header, ColumnConfidence, path)

	var preds []domain.PredictionRecord
	for _, row := range rows {
		text := strings.TrimSpace(cell(row, textIdx))
		if text == "" {
			continue
		}

		p := domain.PredictionRecord{Text: text, Raw: cell(row, labelIdx)}
		if confErr == nil {
			if f, err := strconv.ParseFloat(strings.TrimSpace(cell(row, confIdx)), 64); err == nil {
				p.Confidence = &f
			}
		}
		preds = append(preds, p)
	}
	return preds, nil
}

// writeTable writes a header and rows to a CSV file.
func writeTable(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}

// WritePredictions writes annotation results as a prediction file.
func WritePredictions(path string, results []domain.AnnotationResult) error {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.Text,
			strconv.Itoa(int(r.Label)),
			strconv.FormatFloat(r.Confidence, 'g', -1, 64),
		})
	}
	return writeTable(path, []string{ColumnText, ColumnModelLabel, ColumnConfidence}, rows)
}

// WritePairwise writes a pairwise agreement table sorted as computed.
// Undefined alphas are written as empty cells.
func WritePairwise(path string, table []domain.PairwiseAgreement) error {
	rows := make([][]string, 0, len(table))
	for _, p := range table {
		alpha := ""
		if p.Defined {
			alpha = strconv.FormatFloat(p.Alpha, 'g', -1, 64)
		}
		rows = append(rows, []string{p.RaterA, p.RaterB, strconv.Itoa(p.Items), alpha})
	}
	return writeTable(path, []string{"rater_a", "rater_b", "n_items", "alpha"}, rows)
}

// WriteMerged writes the merged evaluation rows for downstream
// inspection. Absent confidences are written as empty cells.
func WriteMerged(path string, rows []domain.MergedRow) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		conf := ""
		if r.Confidence != nil {
			conf = strconv.FormatFloat(*r.Confidence, 'g', -1, 64)
		}
		out = append(out, []string{
			r.Text,
			strconv.Itoa(int(r.YTrue)),
			strconv.Itoa(int(r.YPred)),
			conf,
		})
	}
	return writeTable(path, []string{ColumnText, "y_true", "y_pred", ColumnConfidence}, out)
}
