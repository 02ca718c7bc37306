package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"drawer-go/internal/config"
	"drawer-go/internal/drawer"
)

// S3API is the subset of the S3 client used by S3Vault.
type S3API interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Vault stores bytes as objects under an optional key prefix. Object keys
// mirror the folder hierarchy: <prefix>/docs/2024/<storageName>.
// Works with AWS S3 and compatible services such as R2 and MinIO.
type S3Vault struct {
	client   S3API
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// deleteBatch is the S3 limit on keys per DeleteObjects call.
const deleteBatch = 1000

// NewS3Vault builds an S3 client from the vault config. Static credentials are
// used when both keys are set; otherwise the default AWS credential chain.
func NewS3Vault(ctx context.Context, cfg config.VaultConfig) (*S3Vault, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 vault requires s3_bucket to be set")
	}

	var awsCfg aws.Config
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		awsCfg = aws.Config{
			Credentials: credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
			Region:      cfg.S3Region,
		}
	} else {
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.S3Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
		}
		loaded, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("loading aws config: %w", err)
		}
		awsCfg = loaded
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3VaultFromClient(client, cfg.S3Bucket, cfg.S3Prefix), nil
}

// NewS3VaultFromClient wraps an existing client.
func NewS3VaultFromClient(client S3API, bucket, prefix string) *S3Vault {
	return &S3Vault{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
	}
}

// key joins rel onto the configured prefix.
func (v *S3Vault) key(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if v.prefix == "" {
		return rel
	}
	return v.prefix + "/" + rel
}

// folderPrefix is the key prefix every object inside folderPath starts with.
func (v *S3Vault) folderPrefix(folderPath string) string {
	p := drawer.NormalizePath(folderPath)
	if p == drawer.RootPath {
		return v.key("")
	}
	return v.key(p) + "/"
}

func (v *S3Vault) Location(folderPath, storageName string) string {
	return v.key(drawer.JoinPath(drawer.NormalizePath(folderPath), storageName))
}

func (v *S3Vault) IncomingLocation(storageName string) string {
	return v.key(incomingDir + "/" + storageName)
}

// EnsureDirectory is a no-op: object stores have no directories.
func (v *S3Vault) EnsureDirectory(string) error {
	return nil
}

// countingReader counts bytes as the uploader consumes them.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Write uploads r. The uploader switches to multipart for large bodies and
// aborts the multipart upload on failure, so no partial object is left.
func (v *S3Vault) Write(location string, r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	_, err := v.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(location),
		Body:   cr,
	})
	if err != nil {
		return 0, drawer.WrapIO("Write", err)
	}
	return cr.n, nil
}

func isNotFound(err error) bool {
	var nf *s3types.NotFound
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nf) || errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

func (v *S3Vault) Stat(location string) (int64, error) {
	out, err := v.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(location),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, drawer.Errorf(drawer.KindNotFound, "Stat", "file bytes are missing")
		}
		return 0, drawer.WrapIO("Stat", err)
	}
	return aws.ToInt64(out.ContentLength), nil
}

func (v *S3Vault) Open(location string, offset, length int64) (io.ReadCloser, error) {
	if length == 0 {
		return io.NopCloser(strings.NewReader("")), nil
	}

	in := &s3.GetObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(location),
	}
	switch {
	case length > 0:
		in.Range = aws.String(fmt.Sprintf("bytes=%d-%d", offset, offset+length-1))
	case offset > 0:
		in.Range = aws.String(fmt.Sprintf("bytes=%d-", offset))
	}

	out, err := v.client.GetObject(context.Background(), in)
	if err != nil {
		if isNotFound(err) {
			return nil, drawer.Errorf(drawer.KindNotFound, "Open", "file bytes are missing")
		}
		return nil, drawer.WrapIO("Open", err)
	}
	return out.Body, nil
}

// copySource URL-encodes bucket/key for CopyObject.
func (v *S3Vault) copySource(key string) string {
	return (&url.URL{Path: v.bucket + "/" + key}).EscapedPath()
}

// Move copies the object then deletes the original.
func (v *S3Vault) Move(oldLocation, newLocation string) error {
	ctx := context.Background()
	_, err := v.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(v.bucket),
		Key:        aws.String(newLocation),
		CopySource: aws.String(v.copySource(oldLocation)),
	})
	if err != nil {
		if isNotFound(err) {
			return drawer.Errorf(drawer.KindNotFound, "Move", "file bytes are missing")
		}
		return drawer.WrapIO("Move", err)
	}
	if err := v.Remove(oldLocation); err != nil {
		return err
	}
	return nil
}

// listKeys returns every key beginning with prefix.
func (v *S3Vault) listKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	p := s3.NewListObjectsV2Paginator(v.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(v.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// MoveDirectory moves every object under the old folder prefix, one at a
// time. A failure after some objects have moved leaves the folder split
// across both prefixes and is reported as KindInconsistent.
func (v *S3Vault) MoveDirectory(oldFolderPath, newFolderPath string) error {
	const op = "MoveDirectory"
	if drawer.NormalizePath(oldFolderPath) == drawer.RootPath || drawer.NormalizePath(newFolderPath) == drawer.RootPath {
		return drawer.Errorf(drawer.KindBadRequest, op, "cannot move the root directory")
	}

	oldPrefix := v.folderPrefix(oldFolderPath)
	newPrefix := v.folderPrefix(newFolderPath)
	keys, err := v.listKeys(context.Background(), oldPrefix)
	if err != nil {
		return drawer.WrapIO(op, err)
	}
	for i, k := range keys {
		if err := v.Move(k, newPrefix+strings.TrimPrefix(k, oldPrefix)); err != nil {
			if i == 0 {
				return err
			}
			msg := fmt.Sprintf("moved %d of %d objects from %s to %s; moved %v, remaining %v",
				i, len(keys), oldPrefix, newPrefix, keys[:i], keys[i:])
			return &drawer.Error{Kind: drawer.KindInconsistent, Op: op, Message: msg, Err: err}
		}
	}
	return nil
}

func (v *S3Vault) Remove(location string) error {
	_, err := v.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(location),
	})
	if err != nil && !isNotFound(err) {
		return drawer.WrapIO("Remove", err)
	}
	return nil
}

func (v *S3Vault) RemoveDirectory(folderPath string) error {
	const op = "RemoveDirectory"
	if drawer.NormalizePath(folderPath) == drawer.RootPath {
		return drawer.Errorf(drawer.KindBadRequest, op, "cannot remove the root directory")
	}

	ctx := context.Background()
	keys, err := v.listKeys(ctx, v.folderPrefix(folderPath))
	if err != nil {
		return drawer.WrapIO(op, err)
	}
	for start := 0; start < len(keys); start += deleteBatch {
		end := min(start+deleteBatch, len(keys))
		ids := make([]s3types.ObjectIdentifier, 0, end-start)
		for _, k := range keys[start:end] {
			ids = append(ids, s3types.ObjectIdentifier{Key: aws.String(k)})
		}
		out, err := v.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(v.bucket),
			Delete: &s3types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return drawer.WrapIO(op, err)
		}
		if len(out.Errors) > 0 {
			e := out.Errors[0]
			return drawer.WrapIO(op, fmt.Errorf("deleting %s: %s", aws.ToString(e.Key), aws.ToString(e.Message)))
		}
	}
	return nil
}

// ValidateSetup checks that the bucket exists and is reachable.
func (v *S3Vault) ValidateSetup() error {
	_, err := v.client.HeadBucket(context.Background(), &s3.HeadBucketInput{
		Bucket: aws.String(v.bucket),
	})
	if err != nil {
		return fmt.Errorf("s3 bucket %s not accessible: %w", v.bucket, err)
	}
	return nil
}

// Compile-time check that S3Vault implements drawer.Vault interface
var _ drawer.Vault = (*S3Vault)(nil)
