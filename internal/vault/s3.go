package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"holyverses/internal/devo"
)

// S3Vault stores snapshots as objects in an S3 bucket. Object keys are laid
// out as:
//
//	<prefix>/snapshots/<hostID>/<name>          (snapshot content)
//	<prefix>/snapshots/<hostID>/<name>.version  (version marker)
type S3Vault struct {
	name     string
	bucket   string
	prefix   string
	client   *s3.Client
	uploader *manager.Uploader
}

// S3Options configures an S3 vault.
type S3Options struct {
	Bucket string
	Prefix string
	Region string

	// Optional static credentials. When empty the default AWS credential
	// chain is used (environment, shared config, instance role).
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Vault creates an S3 vault for the given bucket and key prefix.
func NewS3Vault(ctx context.Context, name string, o S3Options) (*S3Vault, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if o.Region != "" {
		opts = append(opts, awsconfig.WithRegion(o.Region))
	}
	if o.AccessKeyID != "" && o.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKeyID, o.SecretAccessKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Vault{
		name:     name,
		bucket:   o.Bucket,
		prefix:   o.Prefix,
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

func (v *S3Vault) snapshotKey(hostID, name string) string {
	return path.Join(v.prefix, "snapshots", hostID, name)
}

// PutSnapshot uploads a named snapshot for a specific host, replacing any
// previous one, then writes the version marker. The uploader handles
// multipart uploads for large snapshots.
func (v *S3Vault) PutSnapshot(hostID, name string, r io.Reader, size int64, version int64) error {
	ctx := context.Background()
	key := v.snapshotKey(hostID, name)

	_, err := v.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("uploading snapshot to s3://%s/%s: %w", v.bucket, key, err)
	}

	// Version marker goes last so a stored version always refers to a
	// complete snapshot.
	versionKey := key + ".version"
	_, err = v.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(versionKey),
		Body:   strings.NewReader(strconv.FormatInt(version, 10)),
	})
	if err != nil {
		return fmt.Errorf("writing version marker s3://%s/%s: %w", v.bucket, versionKey, err)
	}
	return nil
}

// GetSnapshot downloads a named snapshot for a specific host and writes it to w.
func (v *S3Vault) GetSnapshot(hostID, name string, w io.Writer) error {
	ctx := context.Background()
	key := v.snapshotKey(hostID, name)

	out, err := v.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("fetching snapshot s3://%s/%s: %w", v.bucket, key, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading snapshot body: %w", err)
	}
	return nil
}

// SnapshotVersion returns the version for a host/name pair.
// Returns 0 if no version marker exists.
func (v *S3Vault) SnapshotVersion(hostID, name string) (int64, error) {
	ctx := context.Background()
	key := v.snapshotKey(hostID, name) + ".version"

	out, err := v.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return 0, nil
		}
		return 0, fmt.Errorf("fetching version marker s3://%s/%s: %w", v.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return 0, fmt.Errorf("reading version marker: %w", err)
	}
	version, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

// ValidateSetup verifies the bucket is reachable with the configured credentials.
func (v *S3Vault) ValidateSetup() error {
	_, err := v.client.HeadBucket(context.Background(), &s3.HeadBucketInput{
		Bucket: aws.String(v.bucket),
	})
	if err != nil {
		return fmt.Errorf("s3 bucket %s not accessible: %w", v.bucket, err)
	}
	return nil
}

// Compile-time check that S3Vault implements devo.Vault interface
var _ devo.Vault = (*S3Vault)(nil)
