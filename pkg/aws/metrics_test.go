package aws

import (
	"context"
	"testing"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
}

func (f *fakeCloudWatch) PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestMetricsClient_DisabledIsNoop(t *testing.T) {
	api := &fakeCloudWatch{}
	m := NewMetricsClientWithAPI(api, "Test", false)

	require.NoError(t, m.RecordCount(context.Background(), MetricOrdersCreated, nil))
	assert.Empty(t, api.inputs)
	assert.False(t, m.IsEnabled())
}

func TestMetricsClient_RecordLatency(t *testing.T) {
	api := &fakeCloudWatch{}
	m := NewMetricsClientWithAPI(api, "Test", true)

	require.NoError(t, m.RecordLatency(context.Background(), MetricHTTPLatency, 250*time.Millisecond,
		map[string]string{"Path": "/api/create-order"}))

	require.Len(t, api.inputs, 1)
	datum := api.inputs[0].MetricData[0]
	assert.Equal(t, "Test", sdkaws.ToString(api.inputs[0].Namespace))
	assert.Equal(t, float64(250), sdkaws.ToFloat64(datum.Value))
	assert.Equal(t, types.StandardUnitMilliseconds, datum.Unit)
	require.Len(t, datum.Dimensions, 1)
	assert.Equal(t, "Path", sdkaws.ToString(datum.Dimensions[0].Name))
}

func TestMetricsClient_NilSafe(t *testing.T) {
	var m *MetricsClient
	assert.NoError(t, m.RecordCount(context.Background(), MetricHTTPRequests, nil))
}

type blockingCloudWatch struct {
	release chan struct{}
	calls   chan string
}

func (b *blockingCloudWatch) PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	<-b.release
	b.calls <- sdkaws.ToString(in.MetricData[0].MetricName)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestMetricsClient_RecordCountAsync(t *testing.T) {
	api := &blockingCloudWatch{release: make(chan struct{}), calls: make(chan string, 1)}
	m := NewMetricsClientWithAPI(api, "Test", true)

	returned := make(chan struct{})
	go func() {
		m.RecordCountAsync(MetricOrdersCreated, nil)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("RecordCountAsync waited on CloudWatch")
	}

	close(api.release)
	select {
	case name := <-api.calls:
		assert.Equal(t, MetricOrdersCreated, name)
	case <-time.After(time.Second):
		t.Fatal("metric was never sent")
	}
}

func TestMetricsClient_RecordCountAsync_NilSafe(t *testing.T) {
	var m *MetricsClient
	assert.NotPanics(t, func() { m.RecordCountAsync(MetricOrdersCreated, nil) })
}
