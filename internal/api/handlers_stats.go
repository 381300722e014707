package api

import (
	"net/http"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/KoukeNeko/IPAC/internal/asset"
)

type statusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type categoryCountRow struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type departmentCount struct {
	Department string `json:"department"`
	Count      int64  `json:"count"`
}

type assetRow struct {
	Cost             *float64   `json:"-"`
	DepreciationRate *float64   `json:"-"`
	PurchaseDate     *time.Time `json:"-"`
}

// handleDeviceStatistics aggregates the fleet directly over the read pool.
func (a *API) handleDeviceStatistics(w http.ResponseWriter, r *http.Request) {
	if a.store.DB == nil {
		a.respondMapped(w, r, errReadPoolUnavailable)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var total int64
	if err := pgxscan.Get(ctx, a.store.DB, &total, `SELECT COUNT(*) FROM devices`); err != nil {
		a.respondMapped(w, r, err)
		return
	}

	var byStatus []statusCount
	err := pgxscan.Select(ctx, a.store.DB, &byStatus,
		`SELECT status, COUNT(*) AS count FROM devices GROUP BY status ORDER BY count DESC`)
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	var byCategory []categoryCountRow
	err = pgxscan.Select(ctx, a.store.DB, &byCategory,
		`SELECT c.name AS category, COUNT(*) AS count
		   FROM devices d JOIN categories c ON c.id = d.category_id
		  GROUP BY c.name ORDER BY count DESC`)
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	var byDepartment []departmentCount
	err = pgxscan.Select(ctx, a.store.DB, &byDepartment,
		`SELECT department, COUNT(*) AS count FROM devices
		  WHERE department <> '' GROUP BY department ORDER BY count DESC`)
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	var totalCost *float64
	if err := pgxscan.Get(ctx, a.store.DB, &totalCost, `SELECT SUM(cost) FROM devices`); err != nil {
		a.respondMapped(w, r, err)
		return
	}

	// Current value depends on today's date, so depreciation is applied in
	// process rather than in SQL.
	var rows []assetRow
	err = pgxscan.Select(ctx, a.store.DB, &rows,
		`SELECT cost, depreciation_rate, purchase_date FROM devices
		  WHERE cost IS NOT NULL AND depreciation_rate IS NOT NULL AND purchase_date IS NOT NULL`)
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	now := time.Now().UTC()
	var totalCurrent float64
	for _, row := range rows {
		if v := asset.CurrentValue(row.Cost, row.DepreciationRate, row.PurchaseDate, now); v != nil {
			totalCurrent += *v
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"total_devices":       total,
		"by_status":           byStatus,
		"by_category":         byCategory,
		"by_department":       byDepartment,
		"total_cost":          totalCost,
		"total_current_value": totalCurrent,
	})
}
