package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/nadira/healthdash/internal/auth"
	"github.com/nadira/healthdash/internal/model"
	"github.com/nadira/healthdash/internal/risk"
	"github.com/nadira/healthdash/internal/service"
)

// DashboardHandler renders the trend page: one line chart per metric over
// the user's submission history.
type DashboardHandler struct {
	reports *service.ReportService
	logger  *slog.Logger
}

func NewDashboardHandler(reports *service.ReportService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{reports: reports, logger: logger}
}

// metricChart describes one dashboard chart: which value to plot and the
// clinical threshold line to draw, if any.
type metricChart struct {
	title     string
	unit      string
	value     func(*model.HealthRecord) float64
	threshold float64 // 0 means no threshold line
}

var dashboardCharts = []metricChart{
	{
		title:     "Systolic Blood Pressure",
		unit:      "mmHg",
		value:     func(r *model.HealthRecord) float64 { return r.SBP },
		threshold: risk.SBPThreshold,
	},
	{
		title:     "Diastolic Blood Pressure",
		unit:      "mmHg",
		value:     func(r *model.HealthRecord) float64 { return r.DBP },
		threshold: risk.DBPThreshold,
	},
	{
		title:     "Fasting Blood Sugar",
		unit:      "mg/dL",
		value:     func(r *model.HealthRecord) float64 { return r.BLDS },
		threshold: risk.BLDSThreshold,
	},
	{
		title:     "Body Mass Index",
		unit:      "kg/m²",
		value:     func(r *model.HealthRecord) float64 { return r.BMI() },
		threshold: risk.BMIOverweight,
	},
	{
		title: "Weight",
		unit:  "kg",
		value: func(r *model.HealthRecord) float64 { return r.WeightKg },
	},
}

// HandleDashboard renders the chart page for the logged-in user.
//
// HTTP: GET /dashboard (auth required)
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "login required"})
		return
	}

	records, err := h.reports.History(r.Context(), username, time.Time{}, time.Time{})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if len(records) == 0 {
		w.Write([]byte("<html><body><h2>Health Dashboard</h2>" +
			"<p>No health records yet. Submit a prediction to see your trends.</p>" +
			"</body></html>"))
		return
	}

	page := components.NewPage()
	page.PageTitle = "Health Dashboard"
	for _, mc := range dashboardCharts {
		page.AddCharts(buildTrendChart(mc, records))
	}

	if err := page.Render(w); err != nil {
		h.logger.Error("dashboard render failed", slog.String("username", username), slog.Any("error", err))
	}
}

func buildTrendChart(mc metricChart, records []model.HealthRecord) *charts.Line {
	xAxis := make([]string, 0, len(records))
	yData := make([]opts.LineData, 0, len(records))
	for i := range records {
		r := &records[i]
		xAxis = append(xAxis, r.Timestamp.Format("Jan 2, 2006 15:04"))
		yData = append(yData, opts.LineData{Value: mc.value(r)})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: mc.title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithYAxisOpts(opts.YAxis{Name: mc.unit}),
	)

	seriesOpts := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{
			Smooth:     opts.Bool(true),
			ShowSymbol: opts.Bool(true),
		}),
		charts.WithMarkPointNameTypeItemOpts(
			opts.MarkPointNameTypeItem{Name: "Max", Type: "max"},
			opts.MarkPointNameTypeItem{Name: "Min", Type: "min"},
		),
		charts.WithMarkLineNameTypeItemOpts(
			opts.MarkLineNameTypeItem{Name: "Average", Type: "average"},
		),
	}

	if mc.threshold > 0 {
		// Dashed gray line marking the clinical cutoff.
		seriesOpts = append(seriesOpts, func(s *charts.SingleSeries) {
			s.MarkLines = &opts.MarkLines{
				Data: []any{
					opts.MarkLineNameYAxisItem{Name: "Threshold", YAxis: mc.threshold},
				},
				MarkLineStyle: opts.MarkLineStyle{
					Symbol: []string{"none", "none"},
					LineStyle: &opts.LineStyle{
						Color: "rgba(128, 128, 128, 0.6)",
						Type:  "dashed",
						Width: 1.5,
					},
				},
			}
		})
	}

	line.SetXAxis(xAxis).
		AddSeries(mc.title, yData).
		SetSeriesOptions(seriesOpts...)

	return line
}
