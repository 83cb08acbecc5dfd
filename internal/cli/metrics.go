package cli

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// metricSample is one gathered value, named in exposition style:
// name{label="value",...}.
type metricSample struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// gatherSamples flattens the counters and histogram counts of g. The
// registry already sorts families and series.
func gatherSamples(g prometheus.Gatherer) ([]metricSample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	var samples []metricSample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			series := ""
			if len(labels) > 0 {
				series = "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				samples = append(samples, metricSample{mf.GetName() + series, m.GetCounter().GetValue()})
			case m.GetHistogram() != nil:
				samples = append(samples, metricSample{
					mf.GetName() + "_count" + series,
					float64(m.GetHistogram().GetSampleCount()),
				})
			}
		}
	}
	return samples, nil
}
