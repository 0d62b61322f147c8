package models

import "time"

// Order lifecycle event codes.
const (
	EventAccept      = 2
	EventCancel      = 3
	EventReleaseAlt  = 4
	EventEnRoute     = 5
	EventComplete    = 6
	EventPickDriving = 20
	EventRelease     = 21
	EventPickArrival = 22
)

const (
	ActorTypeDriver = "Driver"
	ActorTypeSystem = "System"
)

// OrderMaster holds the denormalized order fields joined onto every event row.
type OrderMaster struct {
	OrderRequestIDWithProduct string     `json:"order_request_id_master_table"`
	SystemOrderRequestID      string     `json:"system_order_request_id"`
	Status                    string     `json:"status"`
	OrderCreatedAt            *time.Time `json:"order_created_at"`
	CompletedAt               *time.Time `json:"completed_at"`
	CancelledAt               *time.Time `json:"cancelled_at"`
	ProductName               string     `json:"product_name"`
	PickedUpAt                *time.Time `json:"order_pick_up_at"`
	DropOffAt                 *time.Time `json:"order_drop_off_at"`
	PickupLat                 *float64   `json:"pickup_location_lat"`
	PickupLon                 *float64   `json:"pickup_location_lon"`
	PickupAddress             string     `json:"pickup_location_address"`
	PickupRegion              string     `json:"pickup_location_region"`
	DestinationLat            *float64   `json:"destination_location_lat"`
	DestinationLon            *float64   `json:"destination_location_lon"`
	DestinationAddress        string     `json:"destination_location_address"`
	DestinationRegion         string     `json:"destination_location_region"`
	NeedCarry                 bool       `json:"requirements_need_carry"`
	NeedCarryNoLift           bool       `json:"requirements_need_carry_no_lift"`
	WaypointCount             *int64     `json:"waypoint_count"`
	BookingType               string     `json:"booking_type"`
}

// OrderEvent is one (order, actor, event) row. Prev* and time deltas are taken
// per (order, actor) ordered by CreatedAt; the Trip* fields only cover accept
// and en-route events.
type OrderEvent struct {
	OrderID        string     `json:"order_request_id"`
	ActorID        string     `json:"actor_id"`
	ActorType      string     `json:"actor_type"`
	DriverID       string     `json:"driver"`
	EventType      int        `json:"event_type_cd"`
	Meta           string     `json:"meta"`
	Lat            *float64   `json:"lat"`
	Lon            *float64   `json:"lon"`
	PrevLat        *float64   `json:"lat_prev"`
	PrevLon        *float64   `json:"lon_prev"`
	CreatedAt      time.Time  `json:"created_at"`
	PrevCreatedAt  *time.Time `json:"time_prev"`
	TimeDiffMs     *float64   `json:"time_diff_in_ms"`
	TripDistance   *float64   `json:"distance_trip"`
	TripTimeDiffMs *float64   `json:"time_diff_in_ms_trip"`
	TripSpeed      *float64   `json:"speed_in_m_per_s_trip"`
	Date           string     `json:"date"`
	Country        string     `json:"country"`

	OrderMaster
}

// Driver returns the canonical driver of the event: the driver column when it
// is populated, otherwise the acting driver.
func (e *OrderEvent) Driver() string {
	if e.DriverID != "" {
		return e.DriverID
	}
	if e.ActorType == ActorTypeDriver {
		return e.ActorID
	}
	return ""
}

func (e *OrderEvent) IsDriverAction() bool {
	return e.ActorType == ActorTypeDriver
}
