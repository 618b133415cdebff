package service

import (
	"reflect"

	"github.com/ikkim/pumpcatalog-backend/internal/app/model"
)

// GroupParts folds joined part rows into one Part per id, in order of first
// appearance. Each non-NULL set_name becomes an entry in AlternativeSets;
// parts without sets get an empty, non-nil map.
//
// Rows for one id are expected to agree on the part columns. When they do
// not, the first row wins and the id is returned as an anomaly. Reporting is
// left to the caller.
func GroupParts(rows []model.PartRow) ([]model.Part, []uint) {
	parts := make([]model.Part, 0, len(rows))
	index := make(map[uint]int, len(rows))
	first := make(map[uint]model.PartAttributes, len(rows))
	var anomalies []uint
	flagged := make(map[uint]bool)

	for _, row := range rows {
		i, seen := index[row.ID]
		if !seen {
			i = len(parts)
			index[row.ID] = i
			first[row.ID] = row.PartAttributes
			parts = append(parts, model.Part{
				ID:              row.ID,
				PartAttributes:  row.PartAttributes,
				AlternativeSets: map[string]model.AlternativeSet{},
			})
		} else if !flagged[row.ID] && !reflect.DeepEqual(first[row.ID], row.PartAttributes) {
			flagged[row.ID] = true
			anomalies = append(anomalies, row.ID)
		}

		if row.SetName == nil {
			continue
		}
		parts[i].AlternativeSets[*row.SetName] = model.AlternativeSet{
			Position:    row.AltPosition,
			Name:        row.AltName,
			Description: row.AltDescription,
			Designation: row.AltDesignation,
			Quantity:    row.AltQuantity,
			Drawing:     row.AltDrawing,
		}
	}

	return parts, anomalies
}
