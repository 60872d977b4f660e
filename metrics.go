package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/version"

	"github.com/alepar/pm25relay/airquality"
)

// metrics to expose to Prometheus
var (
	gaugePM25 = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "air_pm25",
			Help: "Last PM2.5 reading (units: ug/m3)",
		},
		[]string{"port"},
	)
	linesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pm25relay_lines_total",
			Help: "Sensor read attempts by outcome",
		},
		[]string{"result"},
	)
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pm25relay_notifications_total",
			Help: "Notification calls by leg and outcome",
		},
		[]string{"leg", "result"},
	)
)

func init() {
	prometheus.MustRegister(gaugePM25)
	prometheus.MustRegister(linesTotal)
	prometheus.MustRegister(notificationsTotal)

	// Add Go module build info.
	prometheus.MustRegister(prometheus.NewBuildInfoCollector())
	prometheus.MustRegister(version.NewCollector(programName))
}

type metricsObserver struct {
	port string
}

func (o *metricsObserver) LineRead(result airquality.LineResult) {
	linesTotal.WithLabelValues(string(result)).Inc()
}

func (o *metricsObserver) ReadingParsed(reading airquality.Reading) {
	gaugePM25.WithLabelValues(o.port).Set(float64(reading.PM25))
}

func (o *metricsObserver) Delivered(leg string, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	notificationsTotal.WithLabelValues(leg, result).Inc()
}
