package enrich

import (
	"log/slog"
	"math"

	"dvfpipe/internal/dataio"
	"dvfpipe/internal/domain"
)

// orZero maps a missing figure to zero. Result rows routinely leave a track
// column empty when the establishment does not offer it.
func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// PrepLycees builds the lycée reference set for one results year: the
// success-rate metric is the per-track mention rate weighted by candidate
// counts. Establishments without candidates that year, or without a
// geocoded position, are excluded.
func PrepLycees(rows []dataio.LyceeRow, geo map[string]dataio.SchoolPosition, year int) []domain.School {
	schools := make([]domain.School, 0, len(rows))
	for _, row := range rows {
		if row.Year != year {
			continue
		}
		presents := orZero(row.PresentsL) + orZero(row.PresentsES) + orZero(row.PresentsS)
		if presents < 1 {
			continue
		}
		pos, ok := geo[row.UAI]
		if !ok {
			continue
		}

		taux := (orZero(row.PresentsL)*orZero(row.MentionsL) +
			orZero(row.PresentsES)*orZero(row.MentionsES) +
			orZero(row.PresentsS)*orZero(row.MentionsS)) / presents

		schools = append(schools, domain.School{
			UAI:         row.UAI,
			Name:        row.Name,
			CodeCommune: row.CodeCommune,
			TauxMention: taux,
			Latitude:    pos.Latitude,
			Longitude:   pos.Longitude,
		})
	}
	slog.Info("prepared lycee reference set", "year", year, "schools", len(schools))
	return schools
}

// PrepBrevet builds the collège reference set for one session: the metric
// is the share of top-honor passes among all passes. Establishments without
// passes or without a geocoded position are excluded.
func PrepBrevet(rows []dataio.BrevetRow, geo map[string]dataio.SchoolPosition, session int) []domain.School {
	schools := make([]domain.School, 0, len(rows))
	for _, row := range rows {
		if row.Session != session {
			continue
		}
		if math.IsNaN(row.Admis) || row.Admis <= 0 {
			continue
		}
		pos, ok := geo[row.UAI]
		if !ok {
			continue
		}

		schools = append(schools, domain.School{
			UAI:         row.UAI,
			CodeCommune: row.CodeCommune,
			TauxMention: orZero(row.AdmisMentionTB) / row.Admis,
			Latitude:    pos.Latitude,
			Longitude:   pos.Longitude,
		})
	}
	slog.Info("prepared brevet reference set", "session", session, "schools", len(schools))
	return schools
}
