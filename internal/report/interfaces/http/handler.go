package reporthttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	masterdata "solarfleet/internal/masterdata/domain"
	"solarfleet/internal/observability/metrics"
	readings "solarfleet/internal/readings/domain"
	"solarfleet/internal/report/application"
	reportexport "solarfleet/internal/report/interfaces"
	"solarfleet/internal/series"
	target "solarfleet/internal/target/domain"
)

const dateLayout = "2006-01-02"

// PerformanceHandler serves consolidated energy + target band queries.
type PerformanceHandler struct {
	service *application.PerformanceService
	loc     *time.Location
}

// NewPerformanceHandler constructs a PerformanceHandler.
func NewPerformanceHandler(service *application.PerformanceService, loc *time.Location) *PerformanceHandler {
	return &PerformanceHandler{service: service, loc: loc}
}

type performanceResponse struct {
	Labels            []string         `json:"labels"`
	Keys              []string         `json:"keys"`
	Values            [][]float64      `json:"values"`
	TargetMin         []float64        `json:"target_min,omitempty"`
	TargetMax         []float64        `json:"target_max,omitempty"`
	Truncated         bool             `json:"truncated"`
	DaysWithoutTarget int              `json:"days_without_target"`
	KPIs              application.KPIs `json:"kpis"`
}

// ServeHTTP handles GET /api/v1/performance.
func (h *PerformanceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	req, err := parsePerformanceRequest(r, h.loc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Performance(r.Context(), req)
	if err != nil {
		metrics.ObserveReport("performance", metrics.ResultError, time.Since(start))
		writeServiceError(w, err)
		return
	}
	if result.Truncated {
		metrics.IncReadingsTruncated()
	}
	metrics.AddTargetDaysWithoutData(result.DaysWithoutTarget)
	metrics.ObserveReport("performance", metrics.ResultSuccess, time.Since(start))

	resp := performanceResponse{
		Labels:            result.Table.Labels,
		Keys:              result.Table.Keys,
		Values:            result.Table.Values,
		Truncated:         result.Truncated,
		DaysWithoutTarget: result.DaysWithoutTarget,
		KPIs:              result.KPIs,
	}
	if result.Band != nil {
		resp.TargetMin = result.Band.Min
		resp.TargetMax = result.Band.Max
	}
	writeJSON(w, resp)
}

// PowerCurveHandler serves the daily power pivot.
type PowerCurveHandler struct {
	service *application.PerformanceService
	loc     *time.Location
}

// NewPowerCurveHandler constructs a PowerCurveHandler.
func NewPowerCurveHandler(service *application.PerformanceService, loc *time.Location) *PowerCurveHandler {
	return &PowerCurveHandler{service: service, loc: loc}
}

type powerCurveResponse struct {
	Times     []time.Time `json:"times"`
	Keys      []string    `json:"keys"`
	Values    [][]float64 `json:"values"`
	Truncated bool        `json:"truncated"`
}

// ServeHTTP handles GET /api/v1/power-curve.
func (h *PowerCurveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	req, err := parsePerformanceRequest(r, h.loc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	curve, truncated, err := h.service.PowerCurve(r.Context(), req)
	if err != nil {
		metrics.ObserveReport("power_curve", metrics.ResultError, time.Since(start))
		writeServiceError(w, err)
		return
	}
	if truncated {
		metrics.IncReadingsTruncated()
	}
	metrics.ObserveReport("power_curve", metrics.ResultSuccess, time.Since(start))

	writeJSON(w, powerCurveResponse{
		Times:     curve.Times,
		Keys:      curve.Keys,
		Values:    curve.Values,
		Truncated: truncated,
	})
}

// CompareDaysHandler serves the side-by-side day comparison.
type CompareDaysHandler struct {
	service *application.PerformanceService
	loc     *time.Location
}

// NewCompareDaysHandler constructs a CompareDaysHandler.
func NewCompareDaysHandler(service *application.PerformanceService, loc *time.Location) *CompareDaysHandler {
	return &CompareDaysHandler{service: service, loc: loc}
}

type dayComparisonResponse struct {
	Day            string    `json:"day"`
	Hours          []float64 `json:"hours"`
	PowerKW        []float64 `json:"power_kw"`
	CumulativeKWh  []float64 `json:"cumulative_kwh"`
	TotalEnergyKWh float64   `json:"total_energy_kwh"`
	PeakPowerKW    float64   `json:"peak_power_kw"`
}

// ServeHTTP handles GET /api/v1/compare-days.
func (h *CompareDaysHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	plantIDs, err := parseIDList(r, "plant_ids", true)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	inverterIDs, err := parseIDList(r, "inverter_ids", false)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	days, err := parseDayList(r, h.loc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	comparisons, err := h.service.CompareDays(r.Context(), plantIDs, inverterIDs, days)
	if err != nil {
		metrics.ObserveReport("compare_days", metrics.ResultError, time.Since(start))
		writeServiceError(w, err)
		return
	}
	metrics.ObserveReport("compare_days", metrics.ResultSuccess, time.Since(start))

	resp := make([]dayComparisonResponse, 0, len(comparisons))
	for _, c := range comparisons {
		resp = append(resp, dayComparisonResponse{
			Day:            c.Day.Format(dateLayout),
			Hours:          c.Hours,
			PowerKW:        c.PowerKW,
			CumulativeKWh:  c.CumulativeKWh,
			TotalEnergyKWh: c.TotalEnergyKWh,
			PeakPowerKW:    c.PeakPowerKW,
		})
	}
	writeJSON(w, resp)
}

// StatusHandler serves the fleet status list.
type StatusHandler struct {
	service *application.PerformanceService
}

// NewStatusHandler constructs a StatusHandler.
func NewStatusHandler(service *application.PerformanceService) *StatusHandler {
	return &StatusHandler{service: service}
}

// ServeHTTP handles GET /api/v1/status.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	plantIDs, err := parseIDList(r, "plant_ids", false)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	list, err := h.service.Status(r.Context(), plantIDs)
	if err != nil {
		metrics.ObserveReport("status", metrics.ResultError, time.Since(start))
		writeServiceError(w, err)
		return
	}
	metrics.ObserveReport("status", metrics.ResultSuccess, time.Since(start))
	writeJSON(w, list)
}

// ExportPerformanceHandler serves XLSX/PDF report downloads.
type ExportPerformanceHandler struct {
	service *application.PerformanceService
	loc     *time.Location
	format  string
}

// NewExportPerformanceHandler constructs an export handler for "xlsx" or "pdf".
func NewExportPerformanceHandler(service *application.PerformanceService, loc *time.Location, format string) *ExportPerformanceHandler {
	return &ExportPerformanceHandler{service: service, loc: loc, format: format}
}

// ServeHTTP handles GET /api/v1/exports/performance.{xlsx,pdf}.
func (h *ExportPerformanceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	req, err := parsePerformanceRequest(r, h.loc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Performance(r.Context(), req)
	if err != nil {
		metrics.ObserveExport(h.format, metrics.ResultError, time.Since(start))
		writeServiceError(w, err)
		return
	}

	meta := reportexport.ExportMeta{
		Start:       req.Start,
		End:         req.End,
		Granularity: string(req.Granularity),
		GroupBy:     string(req.GroupBy),
	}
	var payload []byte
	var contentType, filename string
	switch h.format {
	case "pdf":
		payload, err = reportexport.BuildPerformancePDF(result, meta)
		contentType = "application/pdf"
		filename = "performance.pdf"
	default:
		payload, err = reportexport.BuildPerformanceXLSX(result, meta)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = "performance.xlsx"
	}
	if err != nil {
		metrics.ObserveExport(h.format, metrics.ResultError, time.Since(start))
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	metrics.ObserveExport(h.format, metrics.ResultSuccess, time.Since(start))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	_, _ = w.Write(payload)
}

func parsePerformanceRequest(r *http.Request, loc *time.Location) (application.PerformanceRequest, error) {
	var req application.PerformanceRequest

	plantIDs, err := parseIDList(r, "plant_ids", true)
	if err != nil {
		return req, err
	}
	inverterIDs, err := parseIDList(r, "inverter_ids", false)
	if err != nil {
		return req, err
	}

	from, err := parseDateQuery(r, "from", loc)
	if err != nil {
		return req, err
	}
	to, err := parseDateQuery(r, "to", loc)
	if err != nil {
		return req, err
	}
	if to.Before(from) {
		return req, errors.New("to must not be before from")
	}

	granularity, err := resolveGranularity(r.URL.Query().Get("granularity"))
	if err != nil {
		return req, err
	}
	groupBy, err := resolveGroupBy(r.URL.Query().Get("group_by"))
	if err != nil {
		return req, err
	}

	req.PlantIDs = plantIDs
	req.InverterIDs = inverterIDs
	req.Start = from
	req.End = to
	req.Granularity = granularity
	req.GroupBy = groupBy
	req.WithTarget = r.URL.Query().Get("target") != "false"
	return req, nil
}

func parseIDList(r *http.Request, key string, required bool) ([]int64, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		if required {
			return nil, errors.New(key + " is required")
		}
		return nil, nil
	}
	parts := strings.Split(value, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, errors.New(key + " must be a comma-separated list of ids")
		}
		ids = append(ids, id)
	}
	if required && len(ids) == 0 {
		return nil, errors.New(key + " is required")
	}
	return ids, nil
}

func parseDateQuery(r *http.Request, key string, loc *time.Location) (time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return time.Time{}, errors.New(key + " is required")
	}
	parsed, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, errors.New(key + " must be YYYY-MM-DD")
	}
	return parsed, nil
}

func parseDayList(r *http.Request, loc *time.Location) ([]time.Time, error) {
	value := r.URL.Query().Get("days")
	if value == "" {
		return nil, errors.New("days is required")
	}
	parts := strings.Split(value, ",")
	days := make([]time.Time, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		day, err := time.ParseInLocation(dateLayout, part, loc)
		if err != nil {
			return nil, errors.New("days must be a comma-separated list of YYYY-MM-DD dates")
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, errors.New("days is required")
	}
	return days, nil
}

func resolveGranularity(value string) (series.Granularity, error) {
	switch value {
	case "daily", "":
		return series.GranularityDay, nil
	case "monthly":
		return series.GranularityMonth, nil
	case "yearly":
		return series.GranularityYear, nil
	default:
		return "", errors.New("granularity must be daily, monthly or yearly")
	}
}

func resolveGroupBy(value string) (series.GroupBy, error) {
	switch value {
	case "plant", "":
		return series.GroupByPlant, nil
	case "inverter":
		return series.GroupByInverter, nil
	default:
		return "", errors.New("group_by must be plant or inverter")
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, readings.ErrStorageUnavailable):
		http.Error(w, "reading store unavailable", http.StatusBadGateway)
	case errors.Is(err, target.ErrStorageUnavailable):
		http.Error(w, "target store unavailable", http.StatusBadGateway)
	case errors.Is(err, masterdata.ErrStorageUnavailable):
		http.Error(w, "master data store unavailable", http.StatusBadGateway)
	default:
		http.Error(w, "query error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
