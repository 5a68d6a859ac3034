package minio

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")
	ErrEmptyPetition  = errors.New(errors.ErrCodeValidation, "petition is empty")
)

const petitionPrefix = "petitions"

// PetitionArchive stores uploaded petitions before they are scored.
type PetitionArchive interface {
	Store(ctx context.Context, req *StoreRequest) (*ArchivedPetition, error)
	Stat(ctx context.Context, key string) (*ArchivedPetition, error)
	Delete(ctx context.Context, key string) error
}

type StoreRequest struct {
	AdjudicatorID int64
	Filename      string
	ContentType   string
	Data          []byte
}

type ArchivedPetition struct {
	Bucket      string    `json:"bucket"`
	Key         string    `json:"key"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	ETag        string    `json:"etag,omitempty"`
	StoredAt    time.Time `json:"stored_at"`
}

type petitionArchive struct {
	client *MinIOClient
	logger logging.Logger
	newID  func() string
}

func NewPetitionArchive(client *MinIOClient, log logging.Logger) PetitionArchive {
	return &petitionArchive{
		client: client,
		logger: log,
		newID:  func() string { return uuid.New().String() },
	}
}

// PetitionKey builds petitions/<adjudicatorID>/<id><ext>. The extension is
// taken from filename and lower-cased.
func PetitionKey(adjudicatorID int64, id, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%d/%s%s", petitionPrefix, adjudicatorID, id, ext)
}

func (r *petitionArchive) Store(ctx context.Context, req *StoreRequest) (*ArchivedPetition, error) {
	if r.client.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	if req == nil || len(req.Data) == 0 {
		return nil, ErrEmptyPetition
	}
	if req.AdjudicatorID <= 0 {
		return nil, errors.InvalidParam("adjudicator id is required")
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(req.Data[:min(512, len(req.Data))])
	}

	bucket := r.client.PetitionBucket()
	key := PetitionKey(req.AdjudicatorID, r.newID(), req.Filename)
	opts := minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"adjudicator-id":    fmt.Sprintf("%d", req.AdjudicatorID),
			"original-filename": filepath.Base(req.Filename),
		},
	}

	info, err := r.client.GetClient().PutObject(ctx, bucket, key, bytes.NewReader(req.Data), int64(len(req.Data)), opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeArchiveFailed, "failed to archive petition")
	}

	r.logger.Info("petition archived",
		logging.String("bucket", bucket),
		logging.String("key", key),
		logging.Int64("size", info.Size))

	return &ArchivedPetition{
		Bucket:      bucket,
		Key:         key,
		Size:        info.Size,
		ContentType: contentType,
		ETag:        info.ETag,
		StoredAt:    time.Now().UTC(),
	}, nil
}

func (r *petitionArchive) Stat(ctx context.Context, key string) (*ArchivedPetition, error) {
	bucket := r.client.PetitionBucket()
	info, err := r.client.GetClient().StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, errors.Wrap(err, errors.ErrCodeArchiveFailed, "failed to stat petition")
	}
	return &ArchivedPetition{
		Bucket:      bucket,
		Key:         info.Key,
		Size:        info.Size,
		ContentType: info.ContentType,
		ETag:        info.ETag,
		StoredAt:    info.LastModified,
	}, nil
}

func (r *petitionArchive) Delete(ctx context.Context, key string) error {
	if err := r.client.GetClient().RemoveObject(ctx, r.client.PetitionBucket(), key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeArchiveFailed, "failed to delete petition")
	}
	return nil
}

//Personal.AI order the ending
