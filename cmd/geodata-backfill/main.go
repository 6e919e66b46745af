package main

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"pandoorac_backend/internal/adapters"
	"pandoorac_backend/internal/bag"
	"pandoorac_backend/internal/geodata"
	georepository "pandoorac_backend/internal/geodata/repository"
	geotransport "pandoorac_backend/internal/geodata/transport"
	"pandoorac_backend/internal/pdok"
	"pandoorac_backend/internal/walkscore"
	"pandoorac_backend/internal/woz"
	"pandoorac_backend/platform/address"
	"pandoorac_backend/platform/config"
	"pandoorac_backend/platform/db"
	"pandoorac_backend/platform/logger"
	"pandoorac_backend/platform/validator"
)

type dossierRow struct {
	id       string
	postcode string
	adres    string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting geodata backfill")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	pdokModule := pdok.NewModule(log)
	bagModule := bag.NewModule(cfg, log)
	walkScoreModule := walkscore.NewModule(cfg, log)
	wozModule := woz.NewModule(pdokModule.Service(), log)

	deps := geodata.Deps{
		Locator:       adapters.NewPDOKLocator(pdokModule.Service()),
		Height:        adapters.NewPDOKHeightModel(pdokModule.Service()),
		Topography:    adapters.NewPDOKTopography(pdokModule.Service()),
		Parcels:       adapters.NewPDOKParcelSource(pdokModule.Service()),
		Feedback:      adapters.NewPDOKFeedback(pdokModule.Service()),
		Valuations:    adapters.NewWOZValuationAdapter(wozModule.Service()),
		Repository:    georepository.New(pool),
		FanOutTimeout: cfg.GetFanOutTimeout(),
	}
	if bagModule.IsEnabled() {
		deps.Building = adapters.NewBAGBuildingResolver(bagModule.Service())
	}
	if walkScoreModule.IsEnabled() {
		deps.Walkability = adapters.NewWalkScoreAdapter(walkScoreModule.Client())
	}

	svc := geodata.NewModule(deps, validator.New(), log).Service()

	const batchSize = 25
	for {
		dossiers, err := listDossiersMissingRecords(ctx, pool, batchSize)
		if err != nil {
			log.Error("failed to list dossiers", "error", err)
			return
		}
		if len(dossiers) == 0 {
			log.Info("no dossiers left to backfill")
			return
		}

		progress := false

		for _, dossier := range dossiers {
			houseNumber, ok := address.HouseNumberFromText(dossier.adres)
			if !ok {
				log.Warn("dossier address has no house number, skipping",
					"dossierId", dossier.id, "adres", dossier.adres)
				continue
			}

			record, err := svc.Lookup(ctx, geotransport.LookupRequest{
				DossierID:   dossier.id,
				Postcode:    dossier.postcode,
				HouseNumber: strconv.Itoa(houseNumber),
			})
			if err != nil {
				log.Error("lookup failed", "dossierId", dossier.id, "error", err)
				time.Sleep(time.Second)
				continue
			}

			log.Info("dossier backfilled",
				"dossierId", dossier.id,
				"sources", record.Quality.SourcesUsed,
				"score", record.Classification.RelevanceScore)
			progress = true
			time.Sleep(time.Second)
		}

		if !progress {
			log.Info("no backfill progress in batch, stopping")
			return
		}
	}
}

func listDossiersMissingRecords(ctx context.Context, pool *pgxpool.Pool, limit int) ([]dossierRow, error) {
	rows, err := pool.Query(ctx, `
		SELECT d.id::text, d.postcode, d.adres
		FROM dossier d
		LEFT JOIN geodata_records g ON g.dossier_id = d.id::text
		WHERE g.dossier_id IS NULL
		ORDER BY d.created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dossiers := make([]dossierRow, 0)
	for rows.Next() {
		var d dossierRow
		if err := rows.Scan(&d.id, &d.postcode, &d.adres); err != nil {
			return nil, err
		}
		dossiers = append(dossiers, d)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return dossiers, nil
}
