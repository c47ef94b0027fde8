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
	"sync/atomic"
	"time"

	"github.com/go-arcade/membership/pkg/log"
	"github.com/go-arcade/membership/pkg/safe"
	gometrics "github.com/hashicorp/go-metrics"
	promsink "github.com/hashicorp/go-metrics/prometheus"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
)

// QueueInspector is the subset of *asynq.Inspector used for metrics.
type QueueInspector interface {
	Queues() ([]string, error)
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// QueueMetricsCollector periodically publishes asynq queue sizes through
// a go-metrics sink backed by the prometheus registry.
type QueueMetricsCollector struct {
	inspector QueueInspector
	sink      gometrics.MetricSink
	queues    []string
	stopCh    chan struct{}
	doneCh    chan struct{}
	started   atomic.Bool
	stopOnce  sync.Once
}

// NewQueueMetricsCollector creates a collector writing into registry.
// queues are reported as zero when the broker has not seen them yet.
func NewQueueMetricsCollector(inspector QueueInspector, registry prometheus.Registerer, queues ...string) (*QueueMetricsCollector, error) {
	sink, err := promsink.NewPrometheusSinkFrom(promsink.PrometheusOpts{
		Expiration: 0,
		Registerer: registry,
	})
	if err != nil {
		return nil, err
	}
	return newQueueMetricsCollector(inspector, sink, queues...), nil
}

func newQueueMetricsCollector(inspector QueueInspector, sink gometrics.MetricSink, queues ...string) *QueueMetricsCollector {
	return &QueueMetricsCollector{
		inspector: inspector,
		sink:      sink,
		queues:    queues,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start starts collecting metrics periodically
func (c *QueueMetricsCollector) Start(interval time.Duration) {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	safe.Go(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer close(c.doneCh)

		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				return
			}
		}
	})
}

// Stop stops collecting metrics, safe to call without Start
func (c *QueueMetricsCollector) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if c.started.Load() {
			<-c.doneCh
		}
	})
}

func (c *QueueMetricsCollector) collect() {
	queues, err := c.inspector.Queues()
	if err != nil {
		log.Warnw("failed to list queues for metrics", "error", err)
		return
	}
	seen := make(map[string]bool, len(queues))
	for _, q := range queues {
		seen[q] = true
		info, err := c.inspector.GetQueueInfo(q)
		if err != nil {
			log.Warnw("failed to get queue info", "queue", q, "error", err)
			c.emit(q, &asynq.QueueInfo{})
			continue
		}
		c.emit(q, info)
	}
	for _, q := range c.queues {
		if !seen[q] {
			c.emit(q, &asynq.QueueInfo{})
		}
	}
}

func (c *QueueMetricsCollector) emit(queue string, info *asynq.QueueInfo) {
	labels := []gometrics.Label{{Name: "queue", Value: queue}}
	c.sink.SetGaugeWithLabels([]string{"asynq", "queue", "size"}, float32(info.Size), labels)
	c.sink.SetGaugeWithLabels([]string{"asynq", "queue", "pending"}, float32(info.Pending), labels)
	c.sink.SetGaugeWithLabels([]string{"asynq", "queue", "retry"}, float32(info.Retry), labels)
	c.sink.SetGaugeWithLabels([]string{"asynq", "queue", "archived"}, float32(info.Archived), labels)
	c.sink.SetGaugeWithLabels([]string{"asynq", "queue", "failed", "total"}, float32(info.Failed), labels)
}
