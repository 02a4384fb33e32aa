package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"dvfpipe/internal/cleaning"
	"dvfpipe/internal/config"
	"dvfpipe/internal/dataio"
	"dvfpipe/internal/domain"
	"dvfpipe/internal/enrich"
	"dvfpipe/internal/exporter"
	"dvfpipe/internal/pricing"
	"dvfpipe/internal/spatial"
)

// Result summarizes a completed run.
type Result struct {
	RunID      string
	OutputPath string
	Rows       int
	TrainRows  int
	TestRows   int
}

// Run executes the full preprocessing pipeline: read, restrict, clean,
// normalize, filter, enrich, export. The first stage error aborts the run.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Result, error) {
	runID := uuid.NewString()
	logger = logger.With("run_id", runID)
	logger.Info("starting preprocessing run",
		"reference_quarter", cfg.Pipeline.ReferenceQuarter,
		"test_quarters", cfg.Pipeline.TestQuarters,
	)

	// Input stage.
	paths, err := dataio.ExpandPatterns(cfg.Paths.ResolvePatterns())
	if err != nil {
		return nil, stageErr("read_transactions", ErrorKindConfig, err)
	}
	txs, err := dataio.ReadTransactions(paths, cfg.Pipeline.RowCap)
	if err != nil {
		return nil, stageErr("read_transactions", ErrorKindConfig, err)
	}

	// Metropolitan restriction.
	metropoles, err := dataio.ReadMetropoles(cfg.Paths.Resolve(cfg.Paths.Metropoles))
	if err != nil {
		return nil, stageErr("read_metropoles", ErrorKindConfig, err)
	}
	enrich.AttachEPCI(txs, metropoles)
	txs = enrich.TopZones(txs, cfg.Pipeline.TopMetropoles)

	// Cleaning stage.
	cleaning.LogGroupSizes(logger, "before_cleaning", txs)
	txs = cleaning.Deduplicate(txs)
	txs = cleaning.SelectBien(txs)
	txs = cleaning.FiltreDur(txs, cfg.Pipeline.MaxHouseSurface, cfg.Pipeline.MaxHouseRooms, domain.House, "")
	txs = cleaning.FiltreDur(txs, cfg.Pipeline.MaxApartmentSurface, cfg.Pipeline.MaxApartmentRooms, domain.Apartment, "")
	cleaning.LogGroupSizes(logger, "after_cleaning", txs)

	// Price normalization.
	zonage, err := dataio.ReadZonage(cfg.Paths.Resolve(cfg.Paths.Zonage))
	if err != nil {
		return nil, stageErr("read_zonage", ErrorKindConfig, err)
	}
	rawIndex, err := dataio.ReadIndexTable(cfg.Paths.Resolve(cfg.Paths.IndexTable))
	if err != nil {
		return nil, stageErr("read_index", ErrorKindConfig, err)
	}
	index, err := pricing.BuildIndexTable(rawIndex)
	if err != nil {
		return nil, stageErr("build_index", ErrorKindData, err)
	}
	if span := index.Quarters(); len(span) > 0 {
		logger.Info("densified price index", "from", span[0].String(), "to", span[len(span)-1].String())
	}
	normalizer := pricing.NewNormalizer(index, pricing.NewResolver(zonage), cfg.ReferenceQuarter())
	if err := normalizer.NormalizeAll(txs); err != nil {
		return nil, stageErr("normalize_prices", ErrorKindData, err)
	}

	// Partition and price-quantile filter. The training partition filters
	// on the normalized metric, the held-out partition on the raw one.
	train, test := SplitQuarters(txs, cfg.TestQuarterSet())
	train = cleaning.FiltrePrix(train, cleaning.PrixM2Actualise, cfg.Pipeline.MinPriceM2, cfg.Pipeline.MaxPriceM2, cfg.Pipeline.PriceQuantile)
	test = cleaning.FiltrePrix(test, cleaning.PrixM2, cfg.Pipeline.MinPriceM2, cfg.Pipeline.MaxPriceM2, cfg.Pipeline.PriceQuantile)
	logger.Info("partitioned transactions", "train_rows", len(train), "test_rows", len(test))

	all := make([]domain.Transaction, 0, len(train)+len(test))
	all = append(all, train...)
	all = append(all, test...)
	trainIdx := TrainIndices(len(train))

	// Spatial enrichment.
	engine := spatial.NewEngine(cfg.Pipeline.Workers)
	if err := enrich.AttachZonePrice(ctx, engine, all, trainIdx, cfg.Pipeline.KZonePrice,
		enrich.AggregateKind(cfg.Pipeline.ZonePriceAggregate)); err != nil {
		return nil, stageErr("zone_price", ErrorKindExecution, err)
	}

	schoolGeo, err := dataio.ReadSchoolGeo(cfg.Paths.Resolve(cfg.Paths.SchoolGeo))
	if err != nil {
		return nil, stageErr("read_school_geo", ErrorKindConfig, err)
	}
	lyceeRows, err := dataio.ReadLyceeResults(cfg.Paths.Resolve(cfg.Paths.LyceeTable))
	if err != nil {
		return nil, stageErr("read_lycees", ErrorKindConfig, err)
	}
	lycees := enrich.PrepLycees(lyceeRows, schoolGeo, cfg.Pipeline.LyceeYear)
	if err := enrich.AttachSchoolMetric(ctx, engine, all, lycees, cfg.Pipeline.KSchools,
		func(tx *domain.Transaction, v *float64) { tx.Moyenne = v }); err != nil {
		return nil, stageErr("lycee_metric", ErrorKindExecution, err)
	}

	brevetRows, err := dataio.ReadBrevetResults(cfg.Paths.Resolve(cfg.Paths.BrevetTable))
	if err != nil {
		return nil, stageErr("read_brevet", ErrorKindConfig, err)
	}
	colleges := enrich.PrepBrevet(brevetRows, schoolGeo, cfg.Pipeline.BrevetSession)
	if err := enrich.AttachSchoolMetric(ctx, engine, all, colleges, cfg.Pipeline.KSchools,
		func(tx *domain.Transaction, v *float64) { tx.MoyenneBrevet = v }); err != nil {
		return nil, stageErr("brevet_metric", ErrorKindExecution, err)
	}

	// IRIS layer merge.
	shapes, err := dataio.ReadIRISContours(cfg.Paths.Resolve(cfg.Paths.IRISContours))
	if err != nil {
		return nil, stageErr("read_iris_contours", ErrorKindConfig, err)
	}
	irisValues, err := dataio.ReadIRISValues(cfg.Paths.Resolve(cfg.Paths.IRISValues))
	if err != nil {
		return nil, stageErr("read_iris_values", ErrorKindConfig, err)
	}
	enrich.AttachIRIS(all, shapes, irisValues)

	amenityRows, err := dataio.ReadAmenities(cfg.Paths.Resolve(cfg.Paths.Amenities))
	if err != nil {
		return nil, stageErr("read_amenities", ErrorKindConfig, err)
	}
	enrich.AttachAmenities(all, enrich.CountAmenities(amenityRows))

	// Output stage.
	out, err := cfg.Paths.OutputPath()
	if err != nil {
		return nil, stageErr("export", ErrorKindConfig, err)
	}
	if err := exporter.WriteCSV(out, exporter.WriteOptions{
		Headers: OutputHeader(),
		Records: SelectFeatures(all),
	}); err != nil {
		return nil, stageErr("export", ErrorKindExecution, err)
	}

	logger.Info("preprocessing run complete", "rows", len(all), "output", out)
	return &Result{
		RunID:      runID,
		OutputPath: out,
		Rows:       len(all),
		TrainRows:  len(train),
		TestRows:   len(test),
	}, nil
}
