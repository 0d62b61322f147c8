package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"

	"cheatdetect/pkg/logger"
	"cheatdetect/pkg/models"
	"cheatdetect/storage"
)

type gpsRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewGPSRepo(db *pgxpool.Pool, log logger.ILogger) storage.IGPSStorage {
	return &gpsRepo{db: db, log: log}
}

// Pings are windowed per driver in timestamp order, so distance, time delta
// and speed always refer to the driver's previous ping of the day.
const gpsQuery = `
	WITH pings AS (
		SELECT
			driver_id::text AS driver_id,
			location_updated_at,
			location,
			LAG(location) OVER w AS prev_location,
			LAG(location_updated_at) OVER w AS prev_updated_at
		FROM %s
		WHERE location_updated_at::date = $1::date
		WINDOW w AS (PARTITION BY driver_id ORDER BY location_updated_at ASC)
	)
	SELECT
		driver_id,
		location_updated_at,
		ST_AsBinary(location),
		ST_AsBinary(prev_location),
		to_char(location_updated_at::date, 'YYYY-MM-DD'),
		ST_Distance(location::geography, prev_location::geography)::float8,
		(EXTRACT(EPOCH FROM location_updated_at - prev_updated_at) * 1000000)::bigint,
		CASE
			WHEN prev_updated_at IS NULL THEN NULL
			WHEN location_updated_at = prev_updated_at THEN 0
			ELSE ST_Distance(location::geography, prev_location::geography)
				/ EXTRACT(EPOCH FROM location_updated_at - prev_updated_at)
		END::float8
	FROM pings
`

func (r *gpsRepo) GetByDate(ctx context.Context, date, country string) ([]*models.GpsPing, error) {
	table, err := countryTable("driver_location_updates", country)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(gpsQuery, table)
	r.log.Debug("querying gps pings", logger.String("date", date), logger.String("country", country), logger.String("query", query))

	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		r.log.Error("failed to query gps pings", logger.String("date", date), logger.String("country", country), logger.Error(err))
		return nil, fmt.Errorf("query gps pings: %w", err)
	}
	defer rows.Close()

	pings := make([]*models.GpsPing, 0)
	for rows.Next() {
		var (
			p            models.GpsPing
			driverID     *string
			location     []byte
			prevLocation []byte
		)
		if err := rows.Scan(
			&driverID,
			&p.Timestamp,
			&location,
			&prevLocation,
			&p.Date,
			&p.Distance,
			&p.TimeDeltaMicros,
			&p.Speed,
		); err != nil {
			return nil, fmt.Errorf("scan gps ping: %w", err)
		}
		p.DriverID = models.NormalizeID(driverID)

		if p.Lon, p.Lat, err = decodePoint(location); err != nil {
			r.log.Warning("skipping ping with undecodable location", logger.String("driver_id", p.DriverID), logger.Error(err))
			continue
		}
		if prevLocation != nil {
			lon, lat, err := decodePoint(prevLocation)
			if err == nil {
				p.PrevLon, p.PrevLat = &lon, &lat
			}
		}
		pings = append(pings, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gps pings: %w", err)
	}

	r.log.Debug("gps pings loaded", logger.Int("rows", len(pings)))
	return pings, nil
}

// decodePoint reads a WKB point and returns its (x, y), i.e. (lon, lat).
func decodePoint(b []byte) (float64, float64, error) {
	if len(b) == 0 {
		return 0, 0, fmt.Errorf("empty geometry")
	}
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return 0, 0, err
	}
	pt, ok := g.(*geom.Point)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected geometry %T", g)
	}
	return pt.X(), pt.Y(), nil
}
