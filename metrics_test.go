// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"code.hybscloud.com/tube"
)

func TestMetrics_CountTransferredBytes(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := tube.EnableMetrics(reg); err != nil {
		t.Fatalf("enable metrics: %v", err)
	}
	defer tube.DisableMetrics()

	tr := feeds([]byte("12345"))
	tb := newTestTube(tr)
	defer tb.Close()

	if _, err := tb.Recv(0, tube.Default); err != nil {
		t.Fatalf("recv: %v", err)
	}
	if err := tb.Send([]byte("abc")); err != nil {
		t.Fatalf("send: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	got := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			got[mf.GetName()] += m.GetCounter().GetValue()
		}
	}
	if got["tube_bytes_received_total"] != 5 {
		t.Fatalf("received counter=%v want=5", got["tube_bytes_received_total"])
	}
	if got["tube_bytes_sent_total"] != 3 {
		t.Fatalf("sent counter=%v want=3", got["tube_bytes_sent_total"])
	}
}

func TestMetrics_DisabledIsNoop(t *testing.T) {
	tube.DisableMetrics()

	tb := newTestTube(feeds([]byte("x")))
	defer tb.Close()
	if _, err := tb.Recv(0, tube.Default); err != nil {
		t.Fatalf("recv: %v", err)
	}
}
