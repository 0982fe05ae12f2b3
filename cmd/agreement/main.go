// Command agreement computes head-to-head pairwise inter-rater agreement
// over a rater annotation table and prints a ranked summary.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/ahrav/go-concord/internal/agreement"
	"github.com/ahrav/go-concord/internal/dataset"
)

func main() {
	var (
		ratingsPath = flag.String("ratings", "annotations.csv", "Rater annotation table (Sentence column plus one column per rater)")
		outputPath  = flag.String("out", "", "Optional output path for the pairwise agreement table")
	)
	flag.Parse()

	matrix, err := dataset.LoadRatings(*ratingsPath)
	if err != nil {
		log.Fatalf("Failed to load ratings: %v", err)
	}

	table := agreement.PairwiseTable(matrix)
	if len(table) == 0 {
		log.Fatalf("No rater pair shares enough mutually labeled items (minimum %d)", agreement.MinPairItems)
	}
	summary := agreement.Summarize(table)

	fmt.Printf("Pairwise Krippendorff's alpha (nominal, head-to-head):\n")
	for _, p := range table {
		if p.Defined {
			fmt.Printf("- %s vs %s: alpha=%.4f (n=%d)\n", p.RaterA, p.RaterB, p.Alpha, p.Items)
		} else {
			fmt.Printf("- %s vs %s: alpha undefined (n=%d)\n", p.RaterA, p.RaterB, p.Items)
		}
	}
	fmt.Printf("\nPairs: %d (defined: %d)\n", summary.Pairs, summary.Defined)
	if summary.Defined > 0 {
		fmt.Printf("Mean alpha: %.4f\n", summary.Mean)
		fmt.Printf("Median alpha: %.4f\n", summary.Median)
	}

	if *outputPath != "" {
		if err := dataset.WritePairwise(*outputPath, table); err != nil {
			log.Fatalf("Failed to write pairwise table: %v", err)
		}
		fmt.Printf("\nPairwise table written to %s\n", *outputPath)
	}
}
