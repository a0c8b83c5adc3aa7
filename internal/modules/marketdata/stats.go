package marketdata

import (
	"fmt"

	"github.com/katalvlaran/lvlath/dtw"
	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ComputeStatistics derives the statistics bundle from a dataset.
// Every series must have the same length and at least three
// observations, so period returns leave enough points for a
// covariance estimate.
func ComputeStatistics(ds *Dataset) (*Statistics, error) {
	if ds == nil || len(ds.Series) == 0 {
		return nil, fmt.Errorf("%w: empty dataset", ErrNoData)
	}

	length := len(ds.Series[0])
	if length < 3 {
		return nil, fmt.Errorf("%w: need at least 3 observations per series, got %d", ErrNoData, length)
	}
	for i, s := range ds.Series {
		if len(s) != length {
			return nil, fmt.Errorf("series length mismatch: %s has %d points, expected %d",
				seriesLabel(ds, i), len(s), length)
		}
	}

	n := len(ds.Series)
	mean := make([]float64, n)
	returnMean := make([]float64, n)
	returns := make([][]float64, n)
	for i, s := range ds.Series {
		returns[i] = periodReturns(s)
		mean[i] = stat.Mean(s, nil)
		returnMean[i] = stat.Mean(returns[i], nil)
	}

	similarity, err := similarityRows(ds.Series)
	if err != nil {
		return nil, err
	}

	return &Statistics{
		Mean:             mean,
		PeriodReturnMean: returnMean,
		Covariance:       covarianceRows(ds.Series),
		PeriodReturnCov:  covarianceRows(returns),
		Similarity:       similarity,
	}, nil
}

// periodReturns computes p[t]/p[t-1] - 1 for consecutive closes.
// Rocp leaves the first slot at zero, so it is dropped.
func periodReturns(series []float64) []float64 {
	return talib.Rocp(series, 1)[1:]
}

// covarianceRows computes the sample covariance between row series.
func covarianceRows(rows [][]float64) [][]float64 {
	n := len(rows)
	obs := len(rows[0])

	// Observations in rows, one column per series
	x := mat.NewDense(obs, n, nil)
	for j, row := range rows {
		for t, v := range row {
			x.Set(t, j, v)
		}
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, x, nil)

	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			out[i][j] = cov.At(i, j)
		}
	}
	return out
}

// similarityRows builds a similarity matrix from pairwise DTW
// distances, using the rolling two-row variant since no warping path
// is needed. Distances map through 1/(1+d) so identical series score 1.
func similarityRows(rows [][]float64) ([][]float64, error) {
	n := len(rows)
	similarity := make([][]float64, n)
	for i := range similarity {
		similarity[i] = make([]float64, n)
		similarity[i][i] = 1
	}

	opts := &dtw.DTWOptions{MemoryMode: dtw.RollingArray}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dist, _, err := dtw.DTW(rows[i], rows[j], opts)
			if err != nil {
				return nil, fmt.Errorf("dtw distance between series %d and %d: %w", i, j, err)
			}
			s := 1.0 / (1.0 + dist)
			similarity[i][j] = s
			similarity[j][i] = s
		}
	}
	return similarity, nil
}

// seriesLabel names a series for error messages, preferring its ticker.
func seriesLabel(ds *Dataset, i int) string {
	if i < len(ds.Tickers) {
		return ds.Tickers[i]
	}
	return fmt.Sprintf("series %d", i)
}
