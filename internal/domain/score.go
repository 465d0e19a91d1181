package domain

import (
	m "sniff.dev/pkg/sniff/internal/model"
	"sniff.dev/pkg/sniff/pkg"
)

// hygieneScoreFromReports computes the share of scanned files with no
// findings. An empty scan counts as fully clean.
func hygieneScoreFromReports(reports pkg.Spill[m.Report]) (float64, error) {
	clean := 0
	total := 0

	err := reports.Range(func(_ uint64, report m.Report) error {
		total++
		if report.Clean() {
			clean++
		}

		return nil
	})
	if err != nil {
		return 0.0, err
	}

	if total == 0 {
		return 1.0, nil
	}

	return float64(clean) / float64(total), nil
}
