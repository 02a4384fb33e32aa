package enrich

import (
	"log/slog"

	"dvfpipe/internal/dataio"
	"dvfpipe/internal/domain"
)

// amenityGroups maps BPE equipment type codes onto the ten count categories
// of the output contract.
var amenityGroups = map[string]func(*domain.AmenityCounts){
	"A203": func(c *domain.AmenityCounts) { c.Banks++ },
	"A206": func(c *domain.AmenityCounts) { c.PostOffices++ },

	"B101": func(c *domain.AmenityCounts) { c.Shops++ },
	"B102": func(c *domain.AmenityCounts) { c.Shops++ },
	"B103": func(c *domain.AmenityCounts) { c.Shops++ },
	"B201": func(c *domain.AmenityCounts) { c.Shops++ },
	"B202": func(c *domain.AmenityCounts) { c.Shops++ },
	"B203": func(c *domain.AmenityCounts) { c.Shops++ },
	"B204": func(c *domain.AmenityCounts) { c.Shops++ },
	"B205": func(c *domain.AmenityCounts) { c.Shops++ },
	"B206": func(c *domain.AmenityCounts) { c.Shops++ },

	"C101": func(c *domain.AmenityCounts) { c.Schools++ },
	"C102": func(c *domain.AmenityCounts) { c.Schools++ },
	"C104": func(c *domain.AmenityCounts) { c.Schools++ },
	"C105": func(c *domain.AmenityCounts) { c.Schools++ },

	"C201": func(c *domain.AmenityCounts) { c.SecSchools++ },
	"C301": func(c *domain.AmenityCounts) { c.SecSchools++ },
	"C302": func(c *domain.AmenityCounts) { c.SecSchools++ },
	"C303": func(c *domain.AmenityCounts) { c.SecSchools++ },
	"C304": func(c *domain.AmenityCounts) { c.SecSchools++ },
	"C305": func(c *domain.AmenityCounts) { c.SecSchools++ },

	"D201": func(c *domain.AmenityCounts) { c.Doctors++ },

	"E107": func(c *domain.AmenityCounts) { c.Stations++ },
	"E108": func(c *domain.AmenityCounts) { c.Stations++ },
	"E109": func(c *domain.AmenityCounts) { c.Stations++ },

	"F303": func(c *domain.AmenityCounts) { c.Cinemas++ },
	"F307": func(c *domain.AmenityCounts) { c.Libraries++ },
	"F313": func(c *domain.AmenityCounts) { c.Heritage++ },
}

// CountAmenities pivots the equipment register to per-IRIS category counts.
// Equipment types outside the ten tracked categories are ignored.
func CountAmenities(rows []dataio.AmenityRow) map[string]*domain.AmenityCounts {
	counts := make(map[string]*domain.AmenityCounts)
	for _, row := range rows {
		add, ok := amenityGroups[row.TypeEq]
		if !ok || row.IRIS == "" {
			continue
		}
		c := counts[row.IRIS]
		if c == nil {
			c = &domain.AmenityCounts{}
			counts[row.IRIS] = c
		}
		add(c)
	}
	slog.Info("pivoted amenity counts", "rows", len(rows), "zones", len(counts))
	return counts
}

// AttachAmenities joins the per-IRIS counts onto the transactions. Rows
// whose zone has no tracked equipment, or no zone at all, keep nil.
func AttachAmenities(txs []domain.Transaction, counts map[string]*domain.AmenityCounts) {
	matched := 0
	for i := range txs {
		if txs[i].IRISCode == "" {
			continue
		}
		if c, ok := counts[txs[i].IRISCode]; ok {
			txs[i].Amenities = c
			matched++
		}
	}
	slog.Info("attached amenity counts", "rows", len(txs), "matched", matched)
}
