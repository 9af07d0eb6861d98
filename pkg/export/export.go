// Package export writes activity lists as JSON to a local file or an S3
// object, optionally zstd-compressed.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/zstd"

	"github.com/robert-malhotra/go-strava-client/pkg/activity"
)

const compressedSuffix = ".zst"

type ProgressFunc func(written, total int64)

type options struct {
	endpoint string
	region   string
	keyID    string
	secret   string
	progress ProgressFunc
}

type Option func(*options)

// WithEndpoint sends S3 requests to an S3-compatible endpoint using
// path-style addressing.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithCredentials uses a static key pair instead of the default AWS
// credential chain.
func WithCredentials(keyID, secret string) Option {
	return func(o *options) {
		o.keyID = keyID
		o.secret = secret
	}
}

func WithProgress(fn ProgressFunc) Option {
	return func(o *options) { o.progress = fn }
}

// Write encodes list and stores it at dest: a local path, a file:// URL or
// s3://bucket/key. Destinations ending in .zst are zstd-compressed.
func Write(ctx context.Context, dest string, list []activity.Activity, opts ...Option) error {
	data, err := Encode(list, strings.HasSuffix(dest, compressedSuffix))
	if err != nil {
		return err
	}
	return Upload(ctx, dest, data, opts...)
}

// Encode renders list as an indented JSON array.
func Encode(list []activity.Activity, compressed bool) ([]byte, error) {
	if list == nil {
		list = []activity.Activity{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode activities: %w", err)
	}
	if !compressed {
		return data, nil
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

// Upload stores data at dest.
func Upload(ctx context.Context, dest string, data []byte, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	u, err := url.Parse(dest)
	if err != nil {
		return fmt.Errorf("failed to parse destination: %w", err)
	}

	switch u.Scheme {
	case "":
		return writeFile(ctx, dest, data, o.progress)
	case "file":
		return writeFile(ctx, u.Path, data, o.progress)
	case "s3":
		return uploadS3(ctx, u, data, &o)
	default:
		return fmt.Errorf("unsupported destination scheme: %s", u.Scheme)
	}
}

func writeFile(ctx context.Context, destPath string, data []byte, progress ProgressFunc) (err error) {
	if destPath == "" {
		return errors.New("destination path is empty")
	}
	if dir := filepath.Dir(destPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create destination directory: %w", err)
		}
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(destPath)
		}
	}()

	total := int64(len(data))
	if progress != nil {
		progress(0, total)
	}
	if _, err = copyWithProgress(ctx, out, bytes.NewReader(data), total, progress); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

func uploadS3(ctx context.Context, u *url.URL, data []byte, o *options) error {
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return fmt.Errorf("s3 destination must be s3://bucket/key, got %q", u.String())
	}

	var loadOpts []func(*config.LoadOptions) error
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	if o.keyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.keyID, o.secret, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
			so.UsePathStyle = true
		}
		so.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	contentType := "application/json"
	if strings.HasSuffix(key, compressedSuffix) {
		contentType = "application/zstd"
	}

	total := int64(len(data))
	if o.progress != nil {
		o.progress(0, total)
	}
	_, err = s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &bucket,
		Key:           &key,
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(total),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	if o.progress != nil {
		o.progress(total, total)
	}
	return nil
}

func copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, total int64, progress ProgressFunc) (int64, error) {
	const defaultBufferSize = 32 * 1024
	buf := make([]byte, defaultBufferSize)
	var written int64

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			w, writeErr := dst.Write(buf[:n])
			if writeErr != nil {
				return written, writeErr
			}
			if w != n {
				return written, io.ErrShortWrite
			}
			written += int64(w)
			if progress != nil {
				progress(written, total)
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return written, nil
			}
			return written, readErr
		}
	}
}
