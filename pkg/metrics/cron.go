// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"sync"
	"time"

	"github.com/go-arcade/membership/pkg/cron"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	cronJobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cron_job_runs_total",
		Help: "Total number of cron job runs",
	}, []string{"job_name"})

	cronJobErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cron_job_errors_total",
		Help: "Total number of cron job errors",
	}, []string{"job_name"})

	cronJobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cron_job_run_duration_seconds",
		Help:    "Duration of cron job runs in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	}, []string{"job_name"})

	cronJobNextRun = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cron_job_next_run_time_seconds",
		Help: "Next scheduled run time of cron job in seconds since epoch",
	}, []string{"job_name"})

	cronJobs = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cron_jobs_total",
		Help: "Total number of registered cron jobs",
	})

	cronMetricsOnce sync.Once
)

// cronRecorder implements cron.MetricsRecorder
type cronRecorder struct{}

func (cronRecorder) RecordJobRun(jobName string, duration time.Duration, err error) {
	cronJobRuns.WithLabelValues(jobName).Inc()
	if err != nil {
		cronJobErrors.WithLabelValues(jobName).Inc()
	}
	cronJobDuration.WithLabelValues(jobName).Observe(duration.Seconds())
}

func (cronRecorder) UpdateNextRun(jobName string, nextRun time.Time) {
	if !nextRun.IsZero() {
		cronJobNextRun.WithLabelValues(jobName).Set(float64(nextRun.Unix()))
	}
}

func (cronRecorder) UpdateJobsCount(count int) {
	cronJobs.Set(float64(count))
}

// SetupCronMetrics registers the cron collectors and hooks them into the scheduler.
func SetupCronMetrics(registry prometheus.Registerer) {
	cronMetricsOnce.Do(func() {
		registry.MustRegister(cronJobRuns, cronJobErrors, cronJobDuration, cronJobNextRun, cronJobs)
	})
	cron.SetMetricsRecorder(cronRecorder{})
}
