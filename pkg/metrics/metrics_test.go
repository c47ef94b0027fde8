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
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gometrics "github.com/hashicorp/go-metrics"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestServer_Handler(t *testing.T) {
	s := NewServer(MetricsConfig{Enable: true})
	if s.Path() != "/metrics" {
		t.Errorf("default path = %q", s.Path())
	}
	rec := NewRecorder(s.GetRegistry())
	rec.Transition("draft", "approved")

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != 200 {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "membership_transitions_total") {
		t.Error("expected membership metrics in output")
	}
}

func TestRecorder_Counters(t *testing.T) {
	var rec *Recorder
	rec.Invoice("annual")

	rec = NewRecorder(nil)
	before := testutil.ToFloat64(MembershipInvoicesTotal.WithLabelValues("monthly"))
	rec.Invoice("monthly")
	if got := testutil.ToFloat64(MembershipInvoicesTotal.WithLabelValues("monthly")); got != before+1 {
		t.Errorf("invoice counter = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(MembershipEffectsTotal.WithLabelValues("card_email", "failed"))
	rec.Effect("card_email", "failed")
	if got := testutil.ToFloat64(MembershipEffectsTotal.WithLabelValues("card_email", "failed")); got != before+1 {
		t.Errorf("effect counter = %v, want %v", got, before+1)
	}
}

func TestCronRecorder(t *testing.T) {
	r := cronRecorder{}
	before := testutil.ToFloat64(cronJobErrors.WithLabelValues("renewal"))
	r.RecordJobRun("renewal", time.Millisecond, errors.New("x"))
	if got := testutil.ToFloat64(cronJobErrors.WithLabelValues("renewal")); got != before+1 {
		t.Errorf("cron errors = %v", got)
	}
	r.UpdateJobsCount(3)
	if got := testutil.ToFloat64(cronJobs); got != 3 {
		t.Errorf("cron jobs = %v", got)
	}
}

type fakeInspector struct {
	queues []string
	info   map[string]*asynq.QueueInfo
}

func (f *fakeInspector) Queues() ([]string, error) { return f.queues, nil }
func (f *fakeInspector) GetQueueInfo(q string) (*asynq.QueueInfo, error) {
	if info, ok := f.info[q]; ok {
		return info, nil
	}
	return nil, errors.New("unknown queue")
}

type gaugeSink struct {
	gometrics.BlackholeSink
	mu     sync.Mutex
	gauges map[string]float32
}

func (s *gaugeSink) SetGaugeWithLabels(key []string, val float32, labels []gometrics.Label) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gauges[strings.Join(key, ".")+"|"+labels[0].Value] = val
}

func TestQueueMetricsCollector_Collect(t *testing.T) {
	sink := &gaugeSink{gauges: map[string]float32{}}
	insp := &fakeInspector{
		queues: []string{"membership"},
		info:   map[string]*asynq.QueueInfo{"membership": {Size: 4, Pending: 3, Retry: 1}},
	}
	c := newQueueMetricsCollector(insp, sink, "membership", "default")
	c.collect()

	if got := sink.gauges["asynq.queue.size|membership"]; got != 4 {
		t.Errorf("size = %v, want 4", got)
	}
	if got, ok := sink.gauges["asynq.queue.size|default"]; !ok || got != 0 {
		t.Errorf("expected zero gauge for idle queue, got %v %v", got, ok)
	}
}

func TestQueueMetricsCollector_StopWithoutStart(t *testing.T) {
	c := newQueueMetricsCollector(&fakeInspector{}, &gaugeSink{gauges: map[string]float32{}})
	done := make(chan struct{})
	go func() {
		c.Stop()
		c.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without Start")
	}
}
