package handlers

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/pushp314/messenger-backend/internal/config"
	"github.com/pushp314/messenger-backend/internal/middleware"
	"github.com/pushp314/messenger-backend/pkg/errors"
	"github.com/pushp314/messenger-backend/pkg/logger"
	"github.com/pushp314/messenger-backend/pkg/utils"
)

const maxUploadSize = 25 << 20

// objectStore is the subset of the S3 client used for attachments.
type objectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	storeOnce sync.Once
	store     objectStore
	storeErr  error

	// newObjectStore builds the R2 client. Tests replace it.
	newObjectStore = newR2Client
)

func newR2Client(ctx context.Context) (objectStore, error) {
	cfg := config.AppConfig
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	}), nil
}

func objectStoreClient(ctx context.Context) (objectStore, error) {
	storeOnce.Do(func() {
		store, storeErr = newObjectStore(ctx)
	})
	return store, storeErr
}

func publicURL(key string) string {
	cfg := config.AppConfig
	base := strings.TrimRight(cfg.R2PublicURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.r2.dev", cfg.R2BucketName)
	}
	return base + "/" + key
}

// UploadFile stores a multipart "file" and returns its public URL. The URL is
// what clients then send as a chat attachment, gif, or profile picture.
func UploadFile(c *gin.Context) {
	if !config.AppConfig.StorageConfigured() {
		fail(c, errors.Unavailable("File storage is not configured"))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		fail(c, errors.Unprocessable("file is required (max 25MB)"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := fmt.Sprintf("messenger/%s/%s%s", middleware.CurrentUser(c).ID, utils.GenerateID(), strings.ToLower(filepath.Ext(header.Filename)))

	client, err := objectStoreClient(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	_, err = client.PutObject(c.Request.Context(), &s3.PutObjectInput{
		Bucket:        aws.String(config.AppConfig.R2BucketName),
		Key:           aws.String(key),
		Body:          file,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(header.Size),
	})
	if err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Upload failed")
		fail(c, errors.Internal("Upload failed"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"url":      publicURL(key),
		"key":      key,
		"mimetype": contentType,
		"size":     header.Size,
	})
}
