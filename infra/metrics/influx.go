package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/openbar/barbot/core/logger"
	coremetrics "github.com/openbar/barbot/core/metrics"
)

// InfluxConfig holds the InfluxDB connection settings.
type InfluxConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
	Token   string `json:"token"`
	Org     string `json:"org"`
	Bucket  string `json:"bucket"`
}

// InfluxSink writes turret events to an InfluxDB instance using the official
// client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given endpoint.
func NewInfluxSink(cfg InfluxConfig, log logger.Logger) *InfluxSink {
	if log == nil {
		log = logger.NopLogger{}
	}
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      log,
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns
// a NopSink if the health check fails, so a flaky dashboard backend never
// blocks pours.
func NewInfluxSinkWithFallback(cfg InfluxConfig, log logger.Logger) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg, log)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close shuts down the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func (s *InfluxSink) writePoint(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPour writes the pour as a measurement point.
func (s *InfluxSink) RecordPour(r coremetrics.PourRecord) error {
	p := write.NewPointWithMeasurement("turret_pour").
		AddTag("slot", strconv.Itoa(r.Slot)).
		AddTag("suppressed", strconv.FormatBool(r.Suppressed)).
		AddTag("job_id", r.JobID).
		AddField("ounces", r.Ounces).
		AddField("duration_ms", r.Duration.Milliseconds()).
		SetTime(r.Time)
	return s.writePoint(p)
}

// RecordRotation writes the rotation as a measurement point.
func (s *InfluxSink) RecordRotation(r coremetrics.RotationRecord) error {
	p := write.NewPointWithMeasurement("turret_rotation").
		AddTag("cw", strconv.FormatBool(r.CW)).
		AddField("from", r.From).
		AddField("to", r.To).
		AddField("steps", r.Steps).
		AddField("duration_ms", r.Duration.Milliseconds()).
		SetTime(r.Time)
	return s.writePoint(p)
}

// RecordFault writes the fault as a measurement point.
func (s *InfluxSink) RecordFault(r coremetrics.FaultRecord) error {
	p := write.NewPointWithMeasurement("turret_fault").
		AddTag("reason", r.Reason).
		AddTag("state", r.State).
		AddField("count", 1).
		SetTime(r.Time)
	return s.writePoint(p)
}

// RecordMenu writes the menu resolution outcome.
func (s *InfluxSink) RecordMenu(r coremetrics.MenuRecord) error {
	p := write.NewPointWithMeasurement("menu_resolution").
		AddField("catalog", r.Catalog).
		AddField("makeable", r.Makeable).
		SetTime(r.Time)
	return s.writePoint(p)
}
