package aws

import (
	"context"
	"errors"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwltypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCWLogs struct {
	groupExists bool
	events      []string
	putErr      error
}

func (f *fakeCWLogs) CreateLogGroup(context.Context, *cloudwatchlogs.CreateLogGroupInput, ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error) {
	if f.groupExists {
		return nil, &cwltypes.ResourceAlreadyExistsException{}
	}
	return &cloudwatchlogs.CreateLogGroupOutput{}, nil
}

func (f *fakeCWLogs) PutRetentionPolicy(context.Context, *cloudwatchlogs.PutRetentionPolicyInput, ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutRetentionPolicyOutput, error) {
	return &cloudwatchlogs.PutRetentionPolicyOutput{}, nil
}

func (f *fakeCWLogs) CreateLogStream(context.Context, *cloudwatchlogs.CreateLogStreamInput, ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error) {
	return &cloudwatchlogs.CreateLogStreamOutput{}, nil
}

func (f *fakeCWLogs) PutLogEvents(_ context.Context, in *cloudwatchlogs.PutLogEventsInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	for _, e := range in.LogEvents {
		f.events = append(f.events, sdkaws.ToString(e.Message))
	}
	return &cloudwatchlogs.PutLogEventsOutput{}, nil
}

func TestCloudWatchLogsClient_Write(t *testing.T) {
	api := &fakeCWLogs{groupExists: true}
	c, err := NewCloudWatchLogsClientWithAPI(context.Background(), api, "/student-shield/backend", "test-1")
	require.NoError(t, err)

	n, err := c.Write([]byte(`{"msg":"hello"}`))
	require.NoError(t, err)
	assert.Equal(t, 15, n)
	assert.Equal(t, []string{`{"msg":"hello"}`}, api.events)
}

func TestCloudWatchLogsClient_WriteNeverFails(t *testing.T) {
	api := &fakeCWLogs{putErr: errors.New("throttled")}
	c, err := NewCloudWatchLogsClientWithAPI(context.Background(), api, "g", "s")
	require.NoError(t, err)

	n, err := c.Write([]byte("line"))
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
}
