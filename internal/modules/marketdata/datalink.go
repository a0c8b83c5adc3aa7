package marketdata

import "fmt"

// datasetResponse is the Nasdaq Data Link v3 dataset envelope shared by
// the WIKI and exchange providers.
type datasetResponse struct {
	Dataset struct {
		ColumnNames []string        `json:"column_names"`
		Data        [][]interface{} `json:"data"`
	} `json:"dataset"`
}

// closesColumn extracts the preferred price column from a dataset
// response, falling back to "Close" when the preferred column is absent.
// Rows are expected oldest first.
func closesColumn(result datasetResponse, preferred string) ([]float64, error) {
	cols := result.Dataset.ColumnNames

	idx := -1
	for i, name := range cols {
		if name == preferred {
			idx = i
			break
		}
	}
	if idx == -1 {
		for i, name := range cols {
			if name == "Close" {
				idx = i
				break
			}
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("no close column in response (columns: %v)", cols)
	}

	rows := result.Dataset.Data
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: dataset has no rows", ErrNoData)
	}

	closes := make([]float64, 0, len(rows))
	for _, row := range rows {
		if idx >= len(row) {
			return nil, fmt.Errorf("dataset row has %d columns, close column is %d", len(row), idx)
		}
		v, ok := row[idx].(float64)
		if !ok {
			return nil, fmt.Errorf("close value %v is not numeric", row[idx])
		}
		closes = append(closes, v)
	}
	return closes, nil
}
