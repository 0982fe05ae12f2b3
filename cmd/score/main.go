// Command score evaluates model predictions against gold labels joined
// on exact sentence text and prints classification metrics.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/ahrav/go-concord/internal/application"
	"github.com/ahrav/go-concord/internal/dataset"
	"github.com/ahrav/go-concord/internal/scoring"
)

func main() {
	var (
		goldPath    = flag.String("gold", "gold.csv", "Gold label file (text or Sentence column plus the label column)")
		predPath    = flag.String("pred", "predictions.csv", "Prediction file (text, model_label, optional confidence)")
		outputPath  = flag.String("out", "", "Optional output path for the merged evaluation rows")
		labelColumn = flag.String("label_col", application.DefaultGoldLabelColumn, "Gold label column name")
	)
	flag.Parse()

	gold, err := dataset.LoadGold(*goldPath, *labelColumn)
	if err != nil {
		log.Fatalf("Failed to load gold labels: %v", err)
	}
	preds, err := dataset.LoadPredictions(*predPath)
	if err != nil {
		log.Fatalf("Failed to load predictions: %v", err)
	}

	report, merged, err := scoring.Evaluate(gold, preds)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	fmt.Printf("N=%d | Accuracy=%.4f Precision=%.4f Recall=%.4f F1=%.4f\n",
		report.N, report.Accuracy, report.Precision, report.Recall, report.F1)
	fmt.Printf("\nConfusion matrix (rows: gold, columns: predicted):\n")
	fmt.Printf("          pred=0  pred=1\n")
	fmt.Printf("gold=0  %8d %7d\n", report.Confusion.TN, report.Confusion.FP)
	fmt.Printf("gold=1  %8d %7d\n", report.Confusion.FN, report.Confusion.TP)

	if *outputPath != "" {
		if err := dataset.WriteMerged(*outputPath, merged); err != nil {
			log.Fatalf("Failed to write merged rows: %v", err)
		}
		fmt.Printf("\nMerged rows written to %s\n", *outputPath)
	}
}
