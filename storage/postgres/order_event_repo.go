package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cheatdetect/pkg/logger"
	"cheatdetect/pkg/models"
	"cheatdetect/storage"
)

type orderEventRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewOrderEventRepo(db *pgxpool.Pool, log logger.ILogger) storage.IOrderEventStorage {
	return &orderEventRepo{db: db, log: log}
}

// events carries every lifecycle event with its per (order, actor) time delta.
// trips repeats the window over accept and en-route events only, which gives
// the leg distance and speed between them. master is the country's order
// master table.
const orderEventQuery = `
	WITH events AS (
		SELECT
			order_request_id::text AS order_request_id,
			actor_id::text AS actor_id,
			actor_type,
			event_type_cd,
			meta_waypoint_index,
			meta_arrived_name,
			meta_arrived_lat AS lat,
			meta_arrived_lon AS lon,
			created_at,
			LAG(created_at) OVER w AS prev_created_at,
			(EXTRACT(EPOCH FROM created_at - LAG(created_at) OVER w) * 1000)::float8 AS time_diff_in_ms,
			to_char(created_at::date, 'YYYY-MM-DD') AS dt
		FROM order_request_events
		WHERE created_at::date = $1::date
			AND country = $2
		WINDOW w AS (PARTITION BY order_request_id, actor_id ORDER BY created_at ASC)
	),
	trips AS (
		SELECT
			order_request_id::text AS order_request_id,
			actor_id::text AS actor_id,
			driver_id::text AS driver_id,
			created_at,
			LAG(meta_arrived_lat) OVER w AS prev_lat,
			LAG(meta_arrived_lon) OVER w AS prev_lon,
			ST_Distance(
				ST_SetSRID(ST_MakePoint(meta_arrived_lon, meta_arrived_lat), 4326)::geography,
				ST_SetSRID(ST_MakePoint(LAG(meta_arrived_lon) OVER w, LAG(meta_arrived_lat) OVER w), 4326)::geography
			)::float8 AS distance,
			(EXTRACT(EPOCH FROM created_at - LAG(created_at) OVER w) * 1000)::float8 AS time_diff_in_ms
		FROM order_request_events
		WHERE created_at::date = $1::date
			AND country = $2
			AND event_type_cd IN (2, 5)
		WINDOW w AS (PARTITION BY order_request_id, actor_id ORDER BY created_at ASC)
	),
	master AS (
		SELECT
			system_order_request_id::text AS source_order_request_id,
			standard_order_request_id::text AS standard_order_request_id,
			status,
			product_name,
			picked_up_at,
			drop_off_at,
			created_at,
			completed_at,
			cancelled_at,
			waypoint_count,
			pickup_location_region,
			pickup_location_address,
			pickup_location_lat,
			pickup_location_lon,
			destination_location_region,
			destination_location_address,
			destination_location_lat,
			destination_location_lon,
			COALESCE(requirements_need_carry, FALSE) AS requirements_need_carry,
			COALESCE(requirements_need_carry_no_lift, FALSE) AS requirements_need_carry_no_lift,
			booking_type
		FROM %s
		WHERE created_at::date = $1::date
	)
	SELECT
		e.order_request_id,
		e.actor_id,
		e.actor_type,
		e.event_type_cd,
		'waypoint-' || e.meta_waypoint_index::text || ' : ' || e.meta_arrived_name AS meta,
		e.lat::float8,
		e.lon::float8,
		t.prev_lat::float8,
		t.prev_lon::float8,
		e.created_at,
		e.prev_created_at,
		e.time_diff_in_ms,
		t.distance,
		t.time_diff_in_ms,
		CASE WHEN t.time_diff_in_ms > 0 THEN t.distance / t.time_diff_in_ms * 1000 END::float8,
		t.driver_id,
		e.dt,
		m.standard_order_request_id,
		m.source_order_request_id,
		m.status,
		m.created_at,
		m.completed_at,
		m.cancelled_at,
		m.product_name,
		m.picked_up_at,
		m.drop_off_at,
		m.pickup_location_lat::float8,
		m.pickup_location_lon::float8,
		m.pickup_location_address,
		m.pickup_location_region,
		m.destination_location_lat::float8,
		m.destination_location_lon::float8,
		m.destination_location_address,
		m.destination_location_region,
		COALESCE(m.requirements_need_carry, FALSE),
		COALESCE(m.requirements_need_carry_no_lift, FALSE),
		m.waypoint_count::bigint,
		m.booking_type
	FROM events e
	LEFT JOIN trips t
		ON e.order_request_id = t.order_request_id
		AND e.created_at = t.created_at
		AND e.actor_id = t.actor_id
	LEFT JOIN master m
		ON e.order_request_id = m.source_order_request_id
`

func (r *orderEventRepo) GetByDate(ctx context.Context, date, country string) ([]*models.OrderEvent, error) {
	table, err := countryTable("order_master", country)
	if err != nil {
		return nil, err
	}
	cc := strings.ToLower(country)
	query := fmt.Sprintf(orderEventQuery, table)
	r.log.Debug("querying order events", logger.String("date", date), logger.String("country", cc), logger.String("query", query))

	rows, err := r.db.Query(ctx, query, date, cc)
	if err != nil {
		r.log.Error("failed to query order events", logger.String("date", date), logger.String("country", cc), logger.Error(err))
		return nil, fmt.Errorf("query order events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.OrderEvent, 0)
	for rows.Next() {
		e, err := scanOrderEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order event: %w", err)
		}
		e.Country = strings.ToUpper(cc)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order events: %w", err)
	}

	r.log.Debug("order events loaded", logger.Int("rows", len(events)))
	return events, nil
}

func scanOrderEvent(rows pgx.Rows) (*models.OrderEvent, error) {
	var (
		e                                         models.OrderEvent
		orderID, actorID, actorType, meta, driver *string
		withProduct, systemID, status, product    *string
		pickupAddress, pickupRegion               *string
		destinationAddress, destinationRegion     *string
		bookingType                               *string
	)
	err := rows.Scan(
		&orderID,
		&actorID,
		&actorType,
		&e.EventType,
		&meta,
		&e.Lat,
		&e.Lon,
		&e.PrevLat,
		&e.PrevLon,
		&e.CreatedAt,
		&e.PrevCreatedAt,
		&e.TimeDiffMs,
		&e.TripDistance,
		&e.TripTimeDiffMs,
		&e.TripSpeed,
		&driver,
		&e.Date,
		&withProduct,
		&systemID,
		&status,
		&e.OrderCreatedAt,
		&e.CompletedAt,
		&e.CancelledAt,
		&product,
		&e.PickedUpAt,
		&e.DropOffAt,
		&e.PickupLat,
		&e.PickupLon,
		&pickupAddress,
		&pickupRegion,
		&e.DestinationLat,
		&e.DestinationLon,
		&destinationAddress,
		&destinationRegion,
		&e.NeedCarry,
		&e.NeedCarryNoLift,
		&e.WaypointCount,
		&bookingType,
	)
	if err != nil {
		return nil, err
	}

	e.OrderID = models.NormalizeID(orderID)
	e.ActorID = models.NormalizeID(actorID)
	e.DriverID = models.NormalizeID(driver)
	e.ActorType = deref(actorType)
	e.Meta = deref(meta)
	e.OrderRequestIDWithProduct = deref(withProduct)
	e.SystemOrderRequestID = deref(systemID)
	e.Status = deref(status)
	e.ProductName = deref(product)
	e.PickupAddress = deref(pickupAddress)
	e.PickupRegion = deref(pickupRegion)
	e.DestinationAddress = deref(destinationAddress)
	e.DestinationRegion = deref(destinationRegion)
	e.BookingType = deref(bookingType)
	return &e, nil
}
