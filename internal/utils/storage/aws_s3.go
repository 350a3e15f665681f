package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"CookShare-Backend/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// AllowImage lists the content types accepted for uploaded pictures.
var AllowImage = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

var (
	ErrInvalidBase64Image   = errors.New("invalid base64 image payload")
	ErrContentTypeNotAllow  = errors.New("content type is not allowed")
	ErrFailedToUploadFile   = errors.New("failed to upload file")
	ErrFailedToDeleteFile   = errors.New("failed to delete file")
	ErrS3ClientNotConnected = errors.New("s3 client is not connected")
)

type (
	AwsS3 interface {
		UploadBase64(name, base64Data, dir string) (string, error)
		DeleteFile(objectKey string) error
		GetPublicLinkKey(objectKey string) string
		GetObjectKeyFromLink(link string) string
	}

	awsS3 struct {
		client *s3.Client
		bucket string
		region string
	}
)

func NewAwsS3() AwsS3 {
	region := utils.GetConfig("AWS_S3_REGION")
	accessKey := utils.GetConfig("AWS_ACCESS_KEY")
	secretKey := utils.GetConfig("AWS_SECRET_KEY")

	cfg, err := awsconfig.LoadDefaultConfig(
		context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return &awsS3{}
	}

	return &awsS3{
		client: s3.NewFromConfig(cfg),
		bucket: utils.GetConfig("AWS_S3_BUCKET"),
		region: region,
	}
}

// UploadBase64 decodes a "data:<mime>;base64,<payload>" image and puts
// it under dir/ with a timestamped key, returning the object key.
func (a *awsS3) UploadBase64(name, base64Data, dir string) (string, error) {
	if a.client == nil {
		return "", ErrS3ClientNotConnected
	}

	contentType, payload, err := splitDataURI(base64Data)
	if err != nil {
		return "", err
	}
	if !isAllowed(contentType) {
		return "", ErrContentTypeNotAllow
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", ErrInvalidBase64Image
	}

	objectKey := fmt.Sprintf("%s/%s-%d%s", dir, name, time.Now().UnixNano(), extensionFor(contentType))
	_, err = a.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", ErrFailedToUploadFile
	}
	return objectKey, nil
}

func (a *awsS3) DeleteFile(objectKey string) error {
	if a.client == nil {
		return ErrS3ClientNotConnected
	}
	_, err := a.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return ErrFailedToDeleteFile
	}
	return nil
}

func (a *awsS3) GetPublicLinkKey(objectKey string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.bucket, a.region, objectKey)
}

func (a *awsS3) GetObjectKeyFromLink(link string) string {
	prefix := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", a.bucket, a.region)
	return strings.TrimPrefix(link, prefix)
}

func splitDataURI(base64Data string) (contentType, payload string, err error) {
	parts := strings.SplitN(base64Data, ",", 2)
	if len(parts) != 2 || !strings.HasPrefix(parts[0], "data:") {
		return "", "", ErrInvalidBase64Image
	}
	meta := strings.TrimPrefix(parts[0], "data:")
	contentType = strings.SplitN(meta, ";", 2)[0]
	return contentType, parts[1], nil
}

func isAllowed(contentType string) bool {
	for _, allowed := range AllowImage {
		if contentType == allowed {
			return true
		}
	}
	return false
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	if parts := strings.SplitN(contentType, "/", 2); len(parts) == 2 {
		return "." + parts[1]
	}
	return ""
}
