// Package storage wraps the S3-compatible bucket (Wasabi in production)
// that holds avatars, post media, stories and reels.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"social-hub-backend/internal/common/config"
	"social-hub-backend/internal/common/logger"
)

var ErrObjectNotFound = errors.New("object not found")

type Options struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	HTTPClient    *http.Client
}

type Client struct {
	s3            *s3.Client
	presign       *s3.PresignClient
	bucket        string
	publicBaseURL string
}

// PresignedUpload is everything the client needs to PUT the object directly.
type PresignedUpload struct {
	URL       string
	Method    string
	Headers   map[string]string
	ExpiresAt time.Time
}

type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

func New(opts Options) (*Client, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	s3Opts := s3.Options{
		Region:       opts.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		UsePathStyle: true,
	}
	if opts.Endpoint != "" {
		s3Opts.BaseEndpoint = aws.String(opts.Endpoint)
	}
	if opts.HTTPClient != nil {
		s3Opts.HTTPClient = opts.HTTPClient
	}

	client := s3.New(s3Opts)

	publicBase := opts.PublicBaseURL
	if publicBase == "" {
		publicBase = strings.TrimSuffix(opts.Endpoint, "/") + "/" + opts.Bucket
	}

	return &Client{
		s3:            client,
		presign:       s3.NewPresignClient(client),
		bucket:        opts.Bucket,
		publicBaseURL: strings.TrimSuffix(publicBase, "/"),
	}, nil
}

func NewFromConfig(cfg *config.Config) (*Client, error) {
	st := cfg.Storage
	c, err := New(Options{
		Endpoint:      st.Endpoint,
		Region:        st.Region,
		Bucket:        st.Bucket,
		AccessKey:     st.AccessKey,
		SecretKey:     st.SecretKey,
		PublicBaseURL: st.PublicBaseURL,
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Str("endpoint", st.Endpoint).Str("bucket", st.Bucket).Msg("Object storage client initialized")
	return c, nil
}

// PresignPut signs a PUT for key. Content type and length are part of the
// signature, so the upload must send exactly these headers.
func (c *Client) PresignPut(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (*PresignedUpload, error) {
	req, err := c.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, fmt.Errorf("presign put %s: %w", key, err)
	}

	headers := map[string]string{"Content-Type": contentType}
	for name, values := range req.SignedHeader {
		if len(values) == 0 || strings.EqualFold(name, "host") {
			continue
		}
		headers[http.CanonicalHeaderKey(name)] = values[0]
	}

	return &PresignedUpload{
		URL:       req.URL,
		Method:    req.Method,
		Headers:   headers,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// Head returns object metadata or ErrObjectNotFound.
func (c *Client) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	out, err := c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("head %s: %w", key, err)
	}

	info := &ObjectInfo{Key: key}
	if out.ContentLength != nil {
		info.Size = *out.ContentLength
	}
	if out.ContentType != nil {
		info.ContentType = *out.ContentType
	}
	if out.LastModified != nil {
		info.LastModified = *out.LastModified
	}
	return info, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// PublicURL is the CDN/bucket URL the stored object is served from.
func (c *Client) PublicURL(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return c.publicBaseURL + "/" + strings.Join(segments, "/")
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}
