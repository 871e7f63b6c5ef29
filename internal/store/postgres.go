package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/yourorg/vehicle-api/internal/canon"
	"github.com/yourorg/vehicle-api/internal/vehicle"
)

type Store struct{ DB *sql.DB }

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{DB: db}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.DB.PingContext(ctx) }

func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE TABLE IF NOT EXISTS vehicles (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            vehicle_key        TEXT NOT NULL,
            vehicle_id         TEXT NOT NULL,
            make               TEXT NOT NULL,
            model              TEXT NOT NULL,
            year               SMALLINT NOT NULL,
            variant            TEXT,
            best_price         NUMERIC,
            best_deal_platform TEXT,
            kms_driven         INTEGER,
            location           TEXT,
            fuel_type          TEXT,
            transmission       TEXT,
            condition_score    DOUBLE PRECISION,
            age_years          SMALLINT,
            price_per_km       DOUBLE PRECISION,
            duplicate_count    INTEGER NOT NULL DEFAULT 1,
            cross_referenced   BOOLEAN NOT NULL DEFAULT false,
            source_platforms   JSONB,
            features           JSONB,
            descriptions       JSONB,
            created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_vehicles_vehicle_key ON vehicles(vehicle_key);`,
		`CREATE INDEX IF NOT EXISTS idx_vehicles_make_model ON vehicles(make, model);`,
		`CREATE INDEX IF NOT EXISTS idx_vehicles_best_price ON vehicles(best_price);`,
		`CREATE TABLE IF NOT EXISTS vehicle_prices (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            vehicle_id  UUID NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
            platform    TEXT NOT NULL,
            price       NUMERIC NOT NULL,
            created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_vehicle_prices ON vehicle_prices(vehicle_id, platform);`,
		`CREATE TABLE IF NOT EXISTS feed_raw_snapshots (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            provider       TEXT NOT NULL,
            endpoint       TEXT NOT NULL,
            payload        JSONB NOT NULL,
            fetched_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
            payload_sha256 TEXT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_feed_snapshots_provider ON feed_raw_snapshots(provider, endpoint, fetched_at DESC);`,
	}
	for _, q := range stmts {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

type UpsertResult struct {
	RowID      string
	VehicleKey string
}

// UpsertMerged writes one merged listing and replaces its per-platform price
// rows. The canonical vehicle key (make|model|year) is the conflict target,
// so re-processing the same vehicle updates in place.
func (s *Store) UpsertMerged(ctx context.Context, m vehicle.MergedListing) (UpsertResult, error) {
	var res UpsertResult
	if s.DB == nil {
		return res, errors.New("nil db")
	}
	res.VehicleKey = canon.VehicleKey(m.Make, m.Model, m.Year)

	sources, err := json.Marshal(m.SourcePlatforms)
	if err != nil {
		return res, fmt.Errorf("marshal sources: %w", err)
	}
	features, err := json.Marshal(m.Features)
	if err != nil {
		return res, fmt.Errorf("marshal features: %w", err)
	}
	descriptions, err := json.Marshal(m.Descriptions)
	if err != nil {
		return res, fmt.Errorf("marshal descriptions: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return res, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx, `
        INSERT INTO vehicles (
            vehicle_key, vehicle_id, make, model, year, variant,
            best_price, best_deal_platform, kms_driven, location,
            fuel_type, transmission, condition_score, age_years,
            price_per_km, duplicate_count, cross_referenced,
            source_platforms, features, descriptions
        )
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
        ON CONFLICT (vehicle_key)
        DO UPDATE SET
            vehicle_id=EXCLUDED.vehicle_id,
            variant=EXCLUDED.variant,
            best_price=EXCLUDED.best_price,
            best_deal_platform=EXCLUDED.best_deal_platform,
            kms_driven=EXCLUDED.kms_driven,
            location=EXCLUDED.location,
            fuel_type=EXCLUDED.fuel_type,
            transmission=EXCLUDED.transmission,
            condition_score=EXCLUDED.condition_score,
            age_years=EXCLUDED.age_years,
            price_per_km=EXCLUDED.price_per_km,
            duplicate_count=EXCLUDED.duplicate_count,
            cross_referenced=EXCLUDED.cross_referenced,
            source_platforms=EXCLUDED.source_platforms,
            features=EXCLUDED.features,
            descriptions=EXCLUDED.descriptions,
            updated_at=now()
        RETURNING id`,
		res.VehicleKey, m.VehicleID, m.Make, m.Model, m.Year, nullString(m.Variant),
		nullFloat(m.BestPrice), nullString(m.BestDealPlatform), nullInt(int64(m.KMsDriven)), nullString(m.Location),
		nullString(m.FuelType), nullString(m.Transmission), m.ConditionScore, m.AgeYears,
		m.PricePerKM, m.DuplicateCount, m.CrossReferenced,
		sources, features, descriptions,
	).Scan(&res.RowID)
	if err != nil {
		return res, err
	}

	// prices: replace current set with new set
	if _, err = tx.ExecContext(ctx, `DELETE FROM vehicle_prices WHERE vehicle_id=$1`, res.RowID); err != nil {
		return res, err
	}
	for platform, price := range m.PriceComparison {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO vehicle_prices (vehicle_id, platform, price) VALUES ($1,$2,$3)`,
			res.RowID, platform, price); err != nil {
			return res, err
		}
	}

	err = tx.Commit()
	if err != nil {
		return res, err
	}
	return res, nil
}

// WriteSnapshot records a raw feed payload for replay and auditing.
func (s *Store) WriteSnapshot(ctx context.Context, provider, endpoint string, payload []byte) error {
	if s.DB == nil {
		return errors.New("nil db")
	}
	sum := sha256.Sum256(payload)
	_, err := s.DB.ExecContext(ctx, `
        INSERT INTO feed_raw_snapshots (provider, endpoint, payload, payload_sha256)
        VALUES ($1,$2,$3,$4)`,
		provider, endpoint, string(payload), hex.EncodeToString(sum[:]))
	return err
}

// FetchByVehicleKey loads one merged listing by its canonical key.
func (s *Store) FetchByVehicleKey(ctx context.Context, key string) (vehicle.MergedListing, bool, error) {
	rows, err := s.fetch(ctx, `WHERE vehicle_key=$1`, key)
	if err != nil {
		return vehicle.MergedListing{}, false, err
	}
	if len(rows) == 0 {
		return vehicle.MergedListing{}, false, nil
	}
	return rows[0], true, nil
}

// FetchVehicles pages through stored merged listings, newest first.
func (s *Store) FetchVehicles(ctx context.Context, limit, offset int) ([]vehicle.MergedListing, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.fetch(ctx, `ORDER BY updated_at DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (s *Store) fetch(ctx context.Context, clause string, args ...any) ([]vehicle.MergedListing, error) {
	q := `
        SELECT vehicle_id, make, model, year, COALESCE(variant,''),
               COALESCE(best_price,0), COALESCE(best_deal_platform,''),
               COALESCE(kms_driven,0), COALESCE(location,''),
               COALESCE(fuel_type,''), COALESCE(transmission,''),
               COALESCE(condition_score,0), COALESCE(age_years,0),
               COALESCE(price_per_km,0), duplicate_count, cross_referenced,
               COALESCE(source_platforms,'[]'), COALESCE(features,'[]'),
               COALESCE(descriptions,'[]')
        FROM vehicles ` + clause
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []vehicle.MergedListing
	for rows.Next() {
		var m vehicle.MergedListing
		var sources, features, descriptions []byte
		if err := rows.Scan(
			&m.VehicleID, &m.Make, &m.Model, &m.Year, &m.Variant,
			&m.BestPrice, &m.BestDealPlatform,
			&m.KMsDriven, &m.Location,
			&m.FuelType, &m.Transmission,
			&m.ConditionScore, &m.AgeYears,
			&m.PricePerKM, &m.DuplicateCount, &m.CrossReferenced,
			&sources, &features, &descriptions,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(sources, &m.SourcePlatforms)
		_ = json.Unmarshal(features, &m.Features)
		_ = json.Unmarshal(descriptions, &m.Descriptions)
		out = append(out, m)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullFloat(v float64) sql.NullFloat64 {
	if v == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func nullInt(v int64) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}
