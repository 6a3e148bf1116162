// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Network-level resilience for the store connection, layered beneath the
// application-level retry in utils.Uploader.Upload: adaptive low-level
// retries absorb throttling and connection drops, the explicit retry above
// handles the backend's transient part-corruption signal.
const (
	s3ConnectTimeout   = 2 * time.Minute
	s3ReadTimeout      = 10 * time.Minute
	s3LowLevelAttempts = 10
)

type S3Client struct {
	s3 *s3.Client

	multipartThreshold int64
	partSize           int64
	concurrency        int
}

func NewS3Client(ctx context.Context, cfgCreds S3Config, transfer TransferConfig) (*S3Client, error) {
	creds := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		cfgCreds.AccessKey,
		cfgCreds.SecretKey,
		cfgCreds.SessionToken,
	))

	httpClient := awshttp.NewBuildableClient().
		WithTimeout(s3ReadTimeout).
		WithDialerOptions(func(d *net.Dialer) {
			d.Timeout = s3ConnectTimeout
		})

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(creds),
		config.WithRegion(cfgCreds.Region),
		config.WithHTTPClient(httpClient),
		config.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewAdaptiveMode(), s3LowLevelAttempts)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Options := func(o *s3.Options) {
		if cfgCreds.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfgCreds.EndpointURL)
			o.UsePathStyle = true // needed for most S3-compatible stores
		}
	}

	return &S3Client{
		s3:                 s3.NewFromConfig(cfg, s3Options),
		multipartThreshold: transfer.MultipartThreshold,
		partSize:           transfer.PartSize,
		concurrency:        transfer.UploadConcurrency,
	}, nil
}

type S3File struct {
	Path         string
	Name         string
	Size         int64
	LastModified string
}

/* -------------------- LIST (paginated) -------------------- */

func (c *S3Client) ListFilesPaged(
	ctx context.Context,
	bucket string,
	prefix string,
	maxKeys *int32,
	continuationToken *string,
) ([]S3File, *string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:            aws.String(bucket),
		Prefix:            aws.String(prefix),
		MaxKeys:           maxKeys,
		ContinuationToken: continuationToken,
	}

	resp, err := c.s3.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list objects in S3: %w", err)
	}

	files := make([]S3File, 0, len(resp.Contents))
	for _, obj := range resp.Contents {
		name := aws.ToString(obj.Key)
		if prefix != "" && strings.HasPrefix(name, prefix) {
			name = strings.TrimPrefix(name, prefix)
		}
		files = append(files, S3File{
			Path:         aws.ToString(obj.Key),
			Name:         name,
			Size:         aws.ToInt64(obj.Size),
			LastModified: obj.LastModified.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	return files, resp.NextContinuationToken, nil
}

func (c *S3Client) ListFilesAll(ctx context.Context, bucket string, prefix string) ([]S3File, error) {
	var allFiles []S3File
	var token *string
	max := int32(1000)

	for {
		files, nextToken, err := c.ListFilesPaged(ctx, bucket, prefix, &max, token)
		if err != nil {
			return nil, err
		}
		allFiles = append(allFiles, files...)
		if nextToken == nil || *nextToken == "" {
			break
		}
		token = nextToken
	}
	return allFiles, nil
}

/* -------------------- PROGRESS HOOK -------------------- */

type ProgressHook struct {
	OnStart    func(key string, totalBytes int64)
	OnProgress func(key string, written, totalBytes int64)
	OnDone     func(key string, totalBytes int64, took time.Duration)
}

type progressWriter struct {
	key        string
	total      int64
	written    int64
	lastEmit   time.Time
	interval   time.Duration
	onProgress func(key string, written, total int64)
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.written += int64(n)
	now := time.Now()
	if pw.onProgress != nil && (pw.written == pw.total || now.Sub(pw.lastEmit) >= pw.interval) {
		pw.onProgress(pw.key, pw.written, pw.total)
		pw.lastEmit = now
	}
	return n, nil
}

/* -------------------- DOWNLOAD -------------------- */

// DownloadFile fetches a store object to a local path. Used for manifest
// retrieval; payload downloads go through the HTTP downloader instead.
func (c *S3Client) DownloadFile(ctx context.Context, bucket, key, localPath string) error {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer out.Body.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, out.Body); err != nil {
		return fmt.Errorf("failed to write to local file: %w", err)
	}
	return nil
}

/* -------------------- UPLOAD -------------------- */

// UploadFile pushes a local file to bucket/key. Files above the multipart
// threshold go through the upload manager with the configured part size and
// bounded part concurrency; smaller files use a single PutObject.
func (c *S3Client) UploadFile(
	ctx context.Context,
	bucket, key string,
	file *os.File,
	hook *ProgressHook,
) (interface{}, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat error: %w", err)
	}
	size := info.Size()
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek error: %w", err)
	}

	// Detect MIME type
	header := make([]byte, 512)
	n, _ := file.Read(header)
	mime := http.DetectContentType(header[:n])
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind error: %w", err)
	}

	if hook != nil && hook.OnStart != nil {
		hook.OnStart(key, size)
	}

	pw := &progressWriter{
		key:      key,
		total:    size,
		interval: 250 * time.Millisecond,
	}
	if hook != nil {
		pw.onProgress = hook.OnProgress
	}

	start := time.Now()
	reader := io.TeeReader(file, pw)

	if size > c.multipartThreshold {
		up := manager.NewUploader(c.s3, func(u *manager.Uploader) {
			u.PartSize = c.partSize
			u.Concurrency = c.concurrency
		})
		out, err := up.Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(bucket),
			Key:         aws.String(key),
			Body:        reader,
			ContentType: aws.String(mime),
		})
		if hook != nil && hook.OnDone != nil {
			hook.OnDone(key, size, time.Since(start))
		}
		return out, err
	}

	out, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          reader,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(mime),
	})
	if hook != nil && hook.OnDone != nil {
		hook.OnDone(key, size, time.Since(start))
	}
	return out, err
}
