package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/digitalbox/go-digitalbox-server/global"
	"github.com/digitalbox/go-digitalbox-server/types"
)

type S3Service struct {
	env *types.Environment
}

func NewS3Service(env *types.Environment) *S3Service {
	return &S3Service{
		env: env,
	}
}

// UploadAttachment stores a chat attachment at
// attachments/{complaintId}/{messageId}/{filename} so identical filenames on
// different messages never collide. Returns the public retrieval URL; the URL
// is always server derived, never taken from the client.
func (s3s *S3Service) UploadAttachment(complaintID, messageID, filename string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", types.ErrBadRequest
	}
	key := fmt.Sprintf("attachments/%s/%s/%s", complaintID, messageID, filename)
	if err := s3s.upload(key, content); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", global.Conf.Storage.Bucket, global.Conf.Storage.Region, key), nil
}

// UploadDocument stores a requested document under documents/{filename} and
// returns a time-limited presigned GET url.
func (s3s *S3Service) UploadDocument(filename string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", types.ErrBadRequest
	}
	key := fmt.Sprintf("documents/%s", filename)
	if err := s3s.upload(key, content); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	request, pErr := s3s.env.S3PresignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(global.Conf.Storage.Bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = 30 * time.Minute
	})
	if pErr != nil {
		global.Logger.Log("error", "error creating presigned url", "key", key, "error", pErr.Error())
		return "", types.ErrStorageUnavailable
	}
	return request.URL, nil
}

func (s3s *S3Service) upload(key string, content []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, uErr := s3s.env.S3Uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(global.Conf.Storage.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(content),
	})
	if uErr != nil {
		global.Logger.Log("error", "failed to upload object", "key", key, "error", uErr.Error())
		return types.ErrStorageUnavailable
	}
	return nil
}
