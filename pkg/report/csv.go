package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"cheatdetect/pkg/models"
)

const ContentType = "text/csv"

// DriverSummaryHeader is the column layout consumed downstream. New columns
// are only ever appended.
var DriverSummaryHeader = []string{
	"driver_id", "dt",
	"fake_gps", "gps_ct", "fake_gps_ct", "fake_gps_p", "fake_gps_p_pct",
	"repeat_gps", "repeat_gps_ct",
	"pick_accept_bot",
	"pick_2s_ct", "pick_driving_2s_ct", "accept_2s_ct",
	"pick_1s_ct", "pick_driving_1s_ct", "accept_1s_ct",
	"pick_2s_p", "pick_1s_p", "accept_2s_p", "accept_1s_p",
	"pick_2s_p_pct", "pick_1s_p_pct", "accept_2s_p_pct", "accept_1s_p_pct",
	"speedy_driving", "speedy_driving_ct",
	"far_accept", "far_accept_ct", "far_accept_p", "far_accept_p_pct",
	"repeat_pick", "orders_pick_ct", "repeat_pick_ct", "repeat_pick_p", "repeat_pick_p_pct",
	"orders_complete_ct", "orders_release_ct", "orders_cancel_ct",
	"country", "cheat_score",
	"fake_gps_ct_pct", "pick_ct", "accept_ct",
}

// SuspiciousOrderHeader keeps the downstream names order_request_id_with_product,
// canceled_at, waypoints_count and order_type.
var SuspiciousOrderHeader = []string{
	"order_request_id", "actor_id", "actor_type", "event_type_cd", "meta",
	"lat", "lon", "lat_prev", "lon_prev", "created_at",
	"driver", "date",
	"distance_trip", "time_diff_in_ms_trip", "speed_in_m_per_s_trip",
	"ct_speedy_driving", "accept_from_far",
	"country",
	"order_request_id_with_product", "system_order_request_id", "status",
	"order_created_at", "completed_at", "canceled_at",
	"product_name",
	"pickup_location_lat", "pickup_location_lon", "pickup_location_address", "pickup_location_region",
	"destination_location_lat", "destination_location_lon", "destination_location_address", "destination_location_region",
	"requirements_need_carry", "requirements_need_carry_no_lift",
	"waypoints_count", "order_type",
}

func WriteDriverSummary(w io.Writer, rows []*models.DriverDailyMetrics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(DriverSummaryHeader); err != nil {
		return err
	}
	for _, m := range rows {
		record := []string{
			m.DriverID, m.Date,
			formatBool(m.FakeGPS), formatInt(m.GPSCount), formatInt(m.FakeGPSCount), formatFloat(m.FakeGPSPct), formatOptional(m.FakeGPSPctPR),
			formatBool(m.RepeatGPS), formatInt(m.RepeatGPSCount),
			formatBool(m.PickAcceptBot),
			formatInt(m.Pick2sCount), formatInt(m.PickDriving2sCount), formatInt(m.Accept2sCount),
			formatInt(m.Pick1sCount), formatInt(m.PickDriving1sCount), formatInt(m.Accept1sCount),
			formatFloat(m.Pick2sPct), formatFloat(m.Pick1sPct), formatFloat(m.Accept2sPct), formatFloat(m.Accept1sPct),
			formatOptional(m.Pick2sPctPR), formatOptional(m.Pick1sPctPR), formatOptional(m.Accept2sPctPR), formatOptional(m.Accept1sPctPR),
			formatBool(m.SpeedyDriving), formatInt(m.SpeedyDrivingCount),
			formatBool(m.FarAccept), formatInt(m.FarAcceptCount), formatFloat(m.FarAcceptPct), formatOptional(m.FarAcceptPctPR),
			formatBool(m.RepeatPick), formatInt(m.OrdersPickCount), formatInt(m.RepeatPickCount), formatFloat(m.RepeatPickPct), formatOptional(m.RepeatPickPctPR),
			formatInt(m.OrdersCompleteCount), formatInt(m.OrdersReleaseCount), formatInt(m.OrdersCancelCount),
			m.Country, formatInt(m.CheatScore),
			formatOptional(m.FakeGPSCountPR), formatInt(m.PickCount), formatInt(m.AcceptCount),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("driver %s: %w", m.DriverID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteSuspiciousOrders(w io.Writer, rows []*models.SuspiciousOrder) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SuspiciousOrderHeader); err != nil {
		return err
	}
	for _, o := range rows {
		record := []string{
			o.OrderID, o.ActorID, o.ActorType, formatInt(o.EventType), o.Meta,
			formatFloatOrZero(o.Lat), formatFloatOrZero(o.Lon), formatOptional(o.PrevLat), formatOptional(o.PrevLon), formatTime(&o.CreatedAt),
			o.Driver(), o.Date,
			formatFloatOrZero(o.TripDistance), formatFloatOrZero(o.TripTimeDiffMs), formatFloatOrZero(o.TripSpeed),
			formatInt(o.SpeedyDrivingCount), formatFloat(o.AcceptFromFar),
			o.Country,
			o.OrderRequestIDWithProduct, o.SystemOrderRequestID, o.Status,
			formatTime(o.OrderCreatedAt), formatTime(o.CompletedAt), formatTime(o.CancelledAt),
			o.ProductName,
			formatOptional(o.PickupLat), formatOptional(o.PickupLon), o.PickupAddress, o.PickupRegion,
			formatOptional(o.DestinationLat), formatOptional(o.DestinationLon), o.DestinationAddress, o.DestinationRegion,
			formatBool(o.NeedCarry), formatBool(o.NeedCarryNoLift),
			formatInt64OrZero(o.WaypointCount), o.BookingType,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("order %s: %w", o.OrderID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeDriverSummary renders the driver summary into memory.
func EncodeDriverSummary(rows []*models.DriverDailyMetrics) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDriverSummary(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeSuspiciousOrders renders the suspicious order detail into memory.
func EncodeSuspiciousOrders(rows []*models.SuspiciousOrder) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSuspiciousOrders(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DriverSummaryPath is the object key of the driver summary for a country and date.
func DriverSummaryPath(prefix, country, date string) string {
	return partitionPath(prefix, "driver_summary", country, date)
}

// OrderOutputPath is the object key of the suspicious order detail.
func OrderOutputPath(prefix, country, date string) string {
	return partitionPath(prefix, "order_output", country, date)
}

func partitionPath(prefix, table, country, date string) string {
	return path.Join(
		strings.Trim(prefix, "/"),
		table,
		"country="+strings.ToLower(country),
		"date="+date,
		"results.csv",
	)
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}

func formatInt64OrZero(v *int64) string {
	if v == nil {
		return "0"
	}
	return strconv.FormatInt(*v, 10)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatOrZero(v *float64) string {
	if v == nil {
		return "0"
	}
	return formatFloat(*v)
}

// formatOptional leaves missing values (unranked percentiles, absent
// coordinates) as an empty cell.
func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
