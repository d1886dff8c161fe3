package ddn

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/ddn-qa/testharness/pkg/config"
)

// S3Clients manages per-tenant S3 clients against the EXAScaler S3 gateway.
// Clients are cached by tenant name, matching how the keyword layer reuses
// one session per tenant.
type S3Clients struct {
	eps config.Endpoints

	mu      sync.Mutex
	clients map[string]*s3.Client
}

// NewS3Clients builds an empty per-tenant client cache.
func NewS3Clients(eps config.Endpoints) *S3Clients {
	return &S3Clients{
		eps:     eps,
		clients: make(map[string]*s3.Client),
	}
}

// Client returns the cached S3 client for a tenant, creating one with the
// default credentials if none exists.
func (m *S3Clients) Client(ctx context.Context, tenant string) (*s3.Client, error) {
	return m.ClientWithCredentials(ctx, tenant, m.eps.S3AccessKey, m.eps.S3SecretKey)
}

// ClientWithCredentials returns the cached S3 client for a tenant, creating
// one with the given keys if none exists.
func (m *S3Clients) ClientWithCredentials(ctx context.Context, tenant, accessKey, secretKey string) (*s3.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if client, ok := m.clients[tenant]; ok {
		return client, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("ddn: load s3 config for tenant %s: %w", tenant, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(m.eps.S3)
		o.UsePathStyle = true // EXAScaler gateway serves path-style only
	})

	m.clients[tenant] = client
	return client, nil
}

// CreateBucket creates a bucket under a tenant's client and returns its
// location.
func (m *S3Clients) CreateBucket(ctx context.Context, tenant, bucket, locationConstraint string) (string, error) {
	client, err := m.Client(ctx, tenant)
	if err != nil {
		return "", err
	}

	in := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	if locationConstraint != "" {
		in.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(locationConstraint),
		}
	}

	out, err := client.CreateBucket(ctx, in)
	if err != nil {
		return "", fmt.Errorf("ddn: create bucket %s for tenant %s: %w", bucket, tenant, err)
	}
	return aws.ToString(out.Location), nil
}

// ListObjects lists object keys in a tenant's bucket.
func (m *S3Clients) ListObjects(ctx context.Context, tenant, bucket string) ([]string, error) {
	client, err := m.Client(ctx, tenant)
	if err != nil {
		return nil, err
	}

	out, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("ddn: list objects in %s for tenant %s: %w", bucket, tenant, err)
	}

	keys := make([]string, 0, len(out.Contents))
	for _, obj := range out.Contents {
		keys = append(keys, aws.ToString(obj.Key))
	}
	return keys, nil
}
