// File: internal/services/agent/tools.go
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/routelab/route-planner/retry"
)

// Vehicle types recognized by the metrics calculator.
const (
	VehicleMotorcycle  = "motorcycle"
	VehicleVan         = "van"
	VehicleTruck       = "truck"
	VehicleElectricVan = "electric_van"
)

// Fuel consumption in liters per 100km per vehicle type.
var fuelRates = map[string]float64{
	VehicleMotorcycle:  3.5,
	VehicleVan:         9.0,
	VehicleTruck:       25.0,
	VehicleElectricVan: 0,
}

// Cost model constants, EUR.
const (
	fuelCostPerLiter  = 1.50
	driverCostPerHour = 25.0
	vehicleCostPerKm  = 0.30
	co2KgPerLiter     = 2.31
)

// WeatherReport is the condensed weather snapshot for a delivery location.
type WeatherReport struct {
	Location        string   `json:"location"`
	Status          string   `json:"status"`
	TemperatureC    float64  `json:"temperature_c"`
	Conditions      string   `json:"conditions"`
	WindSpeedKmh    float64  `json:"wind_speed_kmh"`
	HumidityPercent int      `json:"humidity_percent,omitempty"`
	VisibilityKm    float64  `json:"visibility_km"`
	Recommendations []string `json:"recommendations"`
}

// WeatherClient checks current conditions via the OpenWeatherMap API. Without
// an API key it serves simulated data so the pipeline keeps working offline.
type WeatherClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	policy  retry.Policy
	logger  Logger
}

func NewWeatherClient(apiKey string, logger Logger) *WeatherClient {
	return &WeatherClient{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		client:  &http.Client{Timeout: 5 * time.Second},
		policy:  retry.DefaultPolicy(),
		logger:  logger,
	}
}

type openWeatherResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility int `json:"visibility"`
	Clouds     struct {
		All int `json:"all"`
	} `json:"clouds"`
}

// Check returns the weather report for a location. API failures and a missing
// key both degrade to simulated data rather than failing the route pipeline.
func (w *WeatherClient) Check(ctx context.Context, location string) *WeatherReport {
	if w.apiKey == "" {
		return simulatedWeather(location)
	}

	data, err := retry.DoValue(ctx, w.policy, func(ctx context.Context) (*openWeatherResponse, error) {
		return w.fetch(ctx, location)
	})
	if err != nil {
		w.logger.Warn("weather lookup failed, using simulated data", "location", location, "error", err)
		return simulatedWeather(location)
	}

	report := &WeatherReport{
		Location:        data.Name,
		Status:          "live",
		TemperatureC:    data.Main.Temp,
		WindSpeedKmh:    data.Wind.Speed * 3.6,
		HumidityPercent: data.Main.Humidity,
		VisibilityKm:    float64(data.Visibility) / 1000,
	}
	if report.Location == "" {
		report.Location = location
	}
	if len(data.Weather) > 0 {
		report.Conditions = data.Weather[0].Description
	}

	var recs []string
	if data.Main.Temp < 0 {
		recs = append(recs, "Freezing temperatures, watch for icy roads")
	}
	if data.Main.Temp > 35 {
		recs = append(recs, "High heat, ensure vehicle AC and driver hydration")
	}
	if data.Wind.Speed > 15 {
		recs = append(recs, "High winds, secure cargo and use caution")
	}
	if data.Visibility > 0 && data.Visibility < 1000 {
		recs = append(recs, "Low visibility, reduce speed and increase following distance")
	}
	if data.Clouds.All > 80 {
		recs = append(recs, "Overcast, potential rain, have contingency plans")
	}
	if len(recs) == 0 {
		recs = append(recs, "Good conditions for delivery")
	}
	report.Recommendations = recs
	return report
}

func (w *WeatherClient) fetch(ctx context.Context, location string) (*openWeatherResponse, error) {
	params := url.Values{}
	params.Set("q", location)
	params.Set("appid", w.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var data openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

func simulatedWeather(location string) *WeatherReport {
	return &WeatherReport{
		Location:        location,
		Status:          "simulated",
		TemperatureC:    18,
		Conditions:      "Partly Cloudy",
		WindSpeedKmh:    15,
		VisibilityKm:    10,
		Recommendations: []string{"Good conditions for delivery"},
	}
}

// RouteMetrics holds duration, fuel, cost and emissions estimates for a route.
type RouteMetrics struct {
	DistanceKm             float64  `json:"distance_km"`
	Stops                  int      `json:"stops"`
	VehicleType            string   `json:"vehicle_type"`
	DrivingHours           float64  `json:"driving_hours"`
	StopTimeHours          float64  `json:"stop_time_hours"`
	TotalHours             float64  `json:"total_hours"`
	FuelConsumptionLiters  float64  `json:"fuel_consumption_liters"`
	FuelCostEUR            float64  `json:"fuel_cost_eur"`
	DriverCostEUR          float64  `json:"driver_cost_eur"`
	VehicleCostEUR         float64  `json:"vehicle_cost_eur"`
	TotalCostEUR           float64  `json:"total_cost_eur"`
	CostPerStopEUR         float64  `json:"cost_per_stop_eur"`
	CO2Kg                  float64  `json:"co2_kg"`
	AvgSpeedKmh            float64  `json:"avg_speed_kmh"`
	TimePerStopMinutes     float64  `json:"time_per_stop_minutes"`
	KmPerStop              float64  `json:"km_per_stop"`
	Recommendations        []string `json:"recommendations"`
}

// ComputeRouteMetrics estimates duration, fuel, cost and CO2 for a route.
// Stop time averages 5 minutes per stop; a 10% buffer covers traffic and
// breaks.
func ComputeRouteMetrics(distanceKm float64, stops int, avgSpeedKmh float64, vehicleType string) (*RouteMetrics, error) {
	if distanceKm <= 0 {
		return nil, NewValidationError("distance must be greater than 0")
	}
	if avgSpeedKmh <= 0 {
		avgSpeedKmh = 40 // urban default
	}
	fuelRate, ok := fuelRates[vehicleType]
	if !ok {
		vehicleType = VehicleVan
		fuelRate = fuelRates[VehicleVan]
	}

	drivingHours := distanceKm / avgSpeedKmh
	stopHours := float64(stops) * 5 / 60
	totalHours := (drivingHours + stopHours) * 1.1

	fuelLiters := (distanceKm / 100) * fuelRate
	fuelCost := fuelLiters * fuelCostPerLiter
	driverCost := totalHours * driverCostPerHour
	vehicleCost := distanceKm * vehicleCostPerKm
	totalCost := fuelCost + driverCost + vehicleCost

	co2 := fuelLiters * co2KgPerLiter
	if vehicleType == VehicleElectricVan {
		co2 = 0
	}

	divStops := float64(stops)
	if divStops < 1 {
		divStops = 1
	}

	m := &RouteMetrics{
		DistanceKm:            round2(distanceKm),
		Stops:                 stops,
		VehicleType:           vehicleType,
		DrivingHours:          round2(drivingHours),
		StopTimeHours:         round2(stopHours),
		TotalHours:            round2(totalHours),
		FuelConsumptionLiters: round2(fuelLiters),
		FuelCostEUR:           round2(fuelCost),
		DriverCostEUR:         round2(driverCost),
		VehicleCostEUR:        round2(vehicleCost),
		TotalCostEUR:          round2(totalCost),
		CostPerStopEUR:        round2(totalCost / divStops),
		CO2Kg:                 round2(co2),
		AvgSpeedKmh:           avgSpeedKmh,
		TimePerStopMinutes:    math.Round(totalHours*60/divStops*10) / 10,
		KmPerStop:             round2(distanceKm / divStops),
	}

	if totalHours > 8 {
		m.Recommendations = append(m.Recommendations, "Route exceeds 8-hour shift, consider splitting")
	}
	if m.CostPerStopEUR > 15 {
		m.Recommendations = append(m.Recommendations, "High cost per stop, optimize route density")
	}
	if avgSpeedKmh < 25 {
		m.Recommendations = append(m.Recommendations, "Low average speed, check for traffic congestion")
	}
	if stops > 0 && distanceKm/float64(stops) > 10 {
		m.Recommendations = append(m.Recommendations, "Stops are far apart, consolidate deliveries if possible")
	}
	if fuelLiters > 50 {
		m.Recommendations = append(m.Recommendations, "High fuel consumption, review route optimization")
	}
	if len(m.Recommendations) == 0 {
		m.Recommendations = append(m.Recommendations, "Route metrics look good")
	}
	return m, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// TrafficReport estimates congestion for a point in time.
type TrafficReport struct {
	Period               string  `json:"traffic_period"`
	CongestionLevel      string  `json:"congestion_level"`
	DelayFactor          float64 `json:"delay_factor"`
	EstimatedDelayPct    int     `json:"estimated_delay_percent"`
	Recommendation       string  `json:"recommendation"`
}

// CheckTraffic applies a rush-hour heuristic: 07-10 and 16-19 local time are
// congested, nights are clear.
func CheckTraffic(at time.Time) *TrafficReport {
	hour := at.Hour()
	var period, level string
	var factor float64
	switch {
	case hour >= 7 && hour < 10:
		period, level, factor = "morning_rush", "Heavy morning traffic", 1.5
	case hour >= 10 && hour < 16:
		period, level, factor = "midday", "Light to moderate traffic", 1.1
	case hour >= 16 && hour < 19:
		period, level, factor = "evening_rush", "Heavy evening traffic", 1.6
	default:
		period, level, factor = "night", "Clear roads", 1.0
	}

	report := &TrafficReport{
		Period:            period,
		CongestionLevel:   level,
		DelayFactor:       factor,
		EstimatedDelayPct: int(math.Round((factor - 1) * 100)),
	}
	switch {
	case factor > 1.3:
		report.Recommendation = fmt.Sprintf("High traffic expected, add %d%% buffer time", report.EstimatedDelayPct)
	case factor > 1.05:
		report.Recommendation = "Moderate delays expected, monitor real-time traffic"
	default:
		report.Recommendation = "Good travel conditions"
	}
	return report
}

// OptimizeStops orders stops by priority first, then earliest time window,
// then stop ID for a stable result. Returns the optimized stop ID sequence.
func OptimizeStops(stops []DeliveryStop) []string {
	ordered := make([]DeliveryStop, len(stops))
	copy(ordered, stops)

	rank := map[string]int{PriorityHigh: 0, PriorityNormal: 1, PriorityLow: 2}
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, ok := rank[ordered[i].Priority]
		if !ok {
			ri = 1
		}
		rj, ok := rank[ordered[j].Priority]
		if !ok {
			rj = 1
		}
		if ri != rj {
			return ri < rj
		}
		wi, wj := windowOrDefault(ordered[i].TimeWindowStart), windowOrDefault(ordered[j].TimeWindowStart)
		if wi != wj {
			return wi < wj
		}
		return ordered[i].StopID < ordered[j].StopID
	})

	ids := make([]string, len(ordered))
	for i, s := range ordered {
		ids[i] = s.StopID
	}
	return ids
}

func windowOrDefault(window string) string {
	if window == "" {
		return "23:59"
	}
	return window
}

// ValidateTimeWindows checks each stop's delivery window against the planned
// start and the driver's constraints, charging 30 minutes of travel plus
// service time per stop.
func ValidateTimeWindows(req *RouteRequest) []string {
	start, err := time.Parse(time.RFC3339, req.PlannedStartTime)
	if err != nil {
		return []string{"planned_start_time is not a valid ISO8601 datetime"}
	}

	var issues []string
	cursor := start
	for _, stop := range req.Stops {
		service := stop.ServiceTimeMinutes
		if service <= 0 {
			service = 5
		}
		cursor = cursor.Add(30 * time.Minute).Add(time.Duration(service) * time.Minute)

		if stop.TimeWindowEnd != "" {
			if end, perr := parseClock(start, stop.TimeWindowEnd); perr == nil && cursor.After(end) {
				issues = append(issues, fmt.Sprintf(
					"stop %s likely misses its %s window (estimated arrival %s)",
					stop.StopID, stop.TimeWindowEnd, cursor.Format("15:04")))
			}
		}
	}

	if req.Constraints != nil {
		elapsed := cursor.Sub(start).Hours()
		if req.Constraints.MaxRouteDurationHours != nil && elapsed > *req.Constraints.MaxRouteDurationHours {
			issues = append(issues, fmt.Sprintf(
				"estimated route duration %.1fh exceeds the %.1fh limit",
				elapsed, *req.Constraints.MaxRouteDurationHours))
		}
		if req.Constraints.DriverShiftEnd != "" {
			if shiftEnd, perr := parseClock(start, req.Constraints.DriverShiftEnd); perr == nil && cursor.After(shiftEnd) {
				issues = append(issues, fmt.Sprintf(
					"route finishes after the driver shift ends at %s", req.Constraints.DriverShiftEnd))
			}
		}
	}
	return issues
}

// parseClock resolves an HH:MM clock value on the same day as ref.
func parseClock(ref time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour(), t.Minute(), 0, 0, ref.Location()), nil
}

// Haversine returns the great-circle distance between two points in km.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// EstimateRouteDistance sums leg distances from the depot through every stop.
// Stops without coordinates contribute an 8km urban average per leg.
func EstimateRouteDistance(req *RouteRequest) float64 {
	const defaultLegKm = 8.0

	total := 0.0
	var prevLat, prevLon *float64 = req.StartLatitude, req.StartLongitude
	for i := range req.Stops {
		stop := &req.Stops[i]
		if prevLat != nil && prevLon != nil && stop.Latitude != nil && stop.Longitude != nil {
			total += Haversine(*prevLat, *prevLon, *stop.Latitude, *stop.Longitude)
		} else {
			total += defaultLegKm
		}
		prevLat, prevLon = stop.Latitude, stop.Longitude
	}
	return total
}
