package planner

import (
	"fmt"
	"sort"

	"git.fiblab.net/general/common/v2/geometry"
)

// initTables validates the demand and facility tables and fixes the id
// order everything downstream relies on: matrix rows follow tract-id
// order, columns and selection scans follow facility-id order.
func initTables(ds *Dataset) ([]DemandPoint, []Facility, []int64, error) {
	demand := make([]DemandPoint, 0, len(ds.Demand))
	seen := make(map[string]bool, len(ds.Demand))
	for _, row := range ds.Demand {
		if seen[row.TractID] {
			return nil, nil, nil, fmt.Errorf("duplicate tract id %s", row.TractID)
		}
		seen[row.TractID] = true
		if row.Weight < 0 {
			return nil, nil, nil, fmt.Errorf("tract %s has negative weight %d", row.TractID, row.Weight)
		}
		demand = append(demand, DemandPoint{
			TractID: row.TractID,
			P:       geometry.Point{X: row.X, Y: row.Y},
			Weight:  row.Weight,
			NodeID:  -1,
		})
	}
	sort.Slice(demand, func(i, j int) bool { return demand[i].TractID < demand[j].TractID })

	facilities := make([]Facility, 0, len(ds.Facilities))
	seen = make(map[string]bool, len(ds.Facilities))
	for _, row := range ds.Facilities {
		if seen[row.ID] {
			return nil, nil, nil, fmt.Errorf("duplicate facility id %s", row.ID)
		}
		seen[row.ID] = true
		facilities = append(facilities, Facility{
			ID:       row.ID,
			P:        geometry.Point{X: row.X, Y: row.Y},
			Existing: row.Existing,
			NodeID:   -1,
		})
	}
	sort.Slice(facilities, func(i, j int) bool { return facilities[i].ID < facilities[j].ID })

	weights := make([]int64, len(demand))
	for i, d := range demand {
		weights[i] = d.Weight
	}
	return demand, facilities, weights, nil
}
