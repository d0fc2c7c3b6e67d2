package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metrics publishes counters to CloudWatch, best effort. A nil *Metrics is
// a valid no-op, so callers never have to branch on whether metrics are
// configured.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
}

// NewMetrics creates a metrics instance
func NewMetrics(namespace string, client *cloudwatch.Client) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
	}
}

// RecordCacheHit counts a cache hit for the given tier
func (m *Metrics) RecordCacheHit(tier string) {
	m.putCount("CacheHit", tier)
}

// RecordCacheMiss counts a cache miss for the given tier
func (m *Metrics) RecordCacheMiss(tier string) {
	m.putCount("CacheMiss", tier)
}

func (m *Metrics) putCount(name, tier string) {
	if m == nil || m.client == nil {
		return
	}

	// Fire and forget; a dropped datapoint is not worth a request failure.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace: aws.String(m.namespace),
			MetricData: []types.MetricDatum{
				{
					MetricName: aws.String(name),
					Value:      aws.Float64(1),
					Unit:       types.StandardUnitCount,
					Timestamp:  aws.Time(time.Now()),
					Dimensions: []types.Dimension{
						{
							Name:  aws.String("Tier"),
							Value: aws.String(tier),
						},
					},
				},
			},
		})
	}()
}
