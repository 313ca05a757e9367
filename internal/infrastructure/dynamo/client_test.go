package dynamo

import (
	"context"
	"testing"

	"github.com/kusina-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_LocalStack(t *testing.T) {
	client, err := NewClient(context.Background(), &config.Config{
		AWSRegion:         "ap-southeast-1",
		AWSEndpointURL:    "http://localhost:4566",
		AWSAccessKeyID:    "test",
		AWSSecretKey:      "test",
		DynamoMaxAttempts: 5,
	})
	require.NoError(t, err)

	opts := client.Options()
	assert.Equal(t, "ap-southeast-1", opts.Region)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://localhost:4566", *opts.BaseEndpoint)
	assert.Equal(t, 5, opts.RetryMaxAttempts)

	creds, err := opts.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", creds.AccessKeyID)
}

func TestNewClient_NoEndpointOverride(t *testing.T) {
	t.Setenv("AWS_ENDPOINT_URL", "")
	t.Setenv("AWS_ENDPOINT_URL_DYNAMODB", "")
	client, err := NewClient(context.Background(), &config.Config{
		AWSRegion:      "ap-southeast-1",
		AWSAccessKeyID: "test",
		AWSSecretKey:   "test",
	})
	require.NoError(t, err)
	assert.Nil(t, client.Options().BaseEndpoint)
}
