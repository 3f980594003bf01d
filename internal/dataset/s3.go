package dataset

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mmtrader/pairsweep/internal/core"
)

// S3Config holds S3 connection configuration
type S3Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Prefix    string
}

// S3 serves datasets from an S3-compatible bucket.
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3 creates a new S3 dataset provider.
func NewS3(cfg S3Config) (*S3, error) {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}

	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true // Required for MinIO and most S3-compatible services
	}

	return &S3{
		client: s3.New(opts),
		bucket: cfg.Bucket,
		prefix: strings.TrimSuffix(cfg.Prefix, "/"),
	}, nil
}

func (s *S3) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// List implements Provider.
func (s *S3) List(ctx context.Context) ([]Descriptor, error) {
	var descriptors []Descriptor

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing datasets: %w", err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(*obj.Key, s.prefix+"/")
			if !strings.HasSuffix(name, ".csv") {
				continue
			}
			descriptor := Descriptor{Name: name}
			if obj.Size != nil {
				descriptor.SizeBytes = *obj.Size
			}
			if obj.LastModified != nil {
				descriptor.LastUpdated = *obj.LastModified
			}
			descriptors = append(descriptors, descriptor)
		}
	}

	return descriptors, nil
}

// Load implements Provider.
func (s *S3) Load(ctx context.Context, name string) ([]core.PriceRow, error) {
	if !strings.HasSuffix(name, ".csv") {
		return nil, core.WrapError(core.ErrDatasetUnsupported,
			fmt.Errorf("dataset %s: only csv datasets are supported", name))
	}

	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		if strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "404") {
			return nil, core.WrapError(core.ErrDatasetNotFound,
				fmt.Errorf("dataset %s not found in bucket %s", name, s.bucket))
		}
		return nil, fmt.Errorf("reading dataset %s: %w", name, err)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", name, err)
	}

	return decodeCSV(data)
}
