package encoding

import (
	"fmt"

	"github.com/maplibre/mlt-go/errs"
)

// rleEncode compresses values into parallel run-length and run-value arrays:
// runLengths[i] consecutive occurrences of runValues[i]. Used by both the
// DELTA+RLE and RLE integer logical transforms (§4.4.1/§4.4.2).
func rleEncode(values []uint64) (runLengths []uint64, runValues []uint64) {
	if len(values) == 0 {
		return nil, nil
	}

	cur := values[0]
	count := uint64(1)
	for _, v := range values[1:] {
		if v == cur {
			count++

			continue
		}
		runLengths = append(runLengths, count)
		runValues = append(runValues, cur)
		cur = v
		count = 1
	}
	runLengths = append(runLengths, count)
	runValues = append(runValues, cur)

	return runLengths, runValues
}

// rleExpand reconstructs the flat value sequence from parallel run-length and
// run-value arrays, verifying the total expands to exactly total values.
func rleExpand(runLengths, runValues []uint64, total int) ([]uint64, error) {
	if len(runLengths) != len(runValues) {
		return nil, fmt.Errorf("%w: RLE run/value count mismatch: %d runs, %d values", errs.ErrCountMismatch, len(runLengths), len(runValues))
	}

	out := make([]uint64, 0, total)
	for i, n := range runLengths {
		for range n {
			out = append(out, runValues[i])
		}
	}

	if len(out) != total {
		return nil, fmt.Errorf("%w: RLE expanded to %d values, expected %d", errs.ErrCountMismatch, len(out), total)
	}

	return out, nil
}

// rleRatio reports the compression ratio values/runs used to decide whether
// RLE is worth applying (§4.4.1 policy: ratio >= 2).
func rleRatio(valueCount, runCount int) float64 {
	if runCount == 0 {
		return 0
	}

	return float64(valueCount) / float64(runCount)
}
