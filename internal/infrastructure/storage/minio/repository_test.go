package minio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

type PetitionArchiveSuite struct {
	suite.Suite
	api     *MockMinIOAPI
	client  *MinIOClient
	archive *petitionArchive
}

func (s *PetitionArchiveSuite) SetupTest() {
	s.api = new(MockMinIOAPI)
	s.client = newTestClient(s.api)
	s.archive = NewPetitionArchive(s.client, logging.NewNopLogger()).(*petitionArchive)
	s.archive.newID = func() string { return "0b9c1f2e-0000-4000-8000-000000000001" }
}

func (s *PetitionArchiveSuite) TestPetitionKey() {
	s.Equal("petitions/42/abc.pdf", PetitionKey(42, "abc", "Petição Inicial.PDF"))
	s.Equal("petitions/7/abc", PetitionKey(7, "abc", "sem-extensao"))
}

func (s *PetitionArchiveSuite) TestStore_Success() {
	key := "petitions/42/0b9c1f2e-0000-4000-8000-000000000001.md"
	s.api.On("PutObject", mock.Anything, DefaultPetitionBucket, key, mock.Anything, int64(11),
		mock.MatchedBy(func(o minio.PutObjectOptions) bool {
			return o.ContentType == "text/markdown" && o.UserMetadata["adjudicator-id"] == "42"
		})).
		Return(minio.UploadInfo{Bucket: DefaultPetitionBucket, Key: key, Size: 11, ETag: "etag"}, nil)

	got, err := s.archive.Store(context.Background(), &StoreRequest{
		AdjudicatorID: 42,
		Filename:      "peticao.md",
		ContentType:   "text/markdown",
		Data:          []byte("# Petição"),
	})
	s.Require().NoError(err)
	s.Equal(key, got.Key)
	s.Equal(DefaultPetitionBucket, got.Bucket)
	s.Equal(int64(11), got.Size)
	s.api.AssertExpectations(s.T())
}

func (s *PetitionArchiveSuite) TestStore_DetectsContentType() {
	s.api.On("PutObject", mock.Anything, DefaultPetitionBucket, mock.Anything, mock.Anything, int64(5),
		mock.MatchedBy(func(o minio.PutObjectOptions) bool {
			return o.ContentType == "text/plain; charset=utf-8"
		})).
		Return(minio.UploadInfo{Size: 5}, nil)

	got, err := s.archive.Store(context.Background(), &StoreRequest{AdjudicatorID: 1, Filename: "a.txt", Data: []byte("texto")})
	s.Require().NoError(err)
	s.Equal("text/plain; charset=utf-8", got.ContentType)
}

func (s *PetitionArchiveSuite) TestStore_Empty() {
	_, err := s.archive.Store(context.Background(), &StoreRequest{AdjudicatorID: 1})
	s.Equal(ErrEmptyPetition, err)
}

func (s *PetitionArchiveSuite) TestStore_RequiresAdjudicator() {
	_, err := s.archive.Store(context.Background(), &StoreRequest{Data: []byte("x")})
	s.True(pkgerrors.IsValidation(err))
}

func (s *PetitionArchiveSuite) TestStore_UploadFails() {
	s.api.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("disk full"))

	_, err := s.archive.Store(context.Background(), &StoreRequest{AdjudicatorID: 1, Data: []byte("x")})
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeArchiveFailed))
}

func (s *PetitionArchiveSuite) TestStore_ClosedClient() {
	s.Require().NoError(s.client.Close())
	_, err := s.archive.Store(context.Background(), &StoreRequest{AdjudicatorID: 1, Data: []byte("x")})
	s.Equal(ErrMinIOClientClosed, err)
}

func (s *PetitionArchiveSuite) TestStat() {
	modified := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.api.On("StatObject", mock.Anything, DefaultPetitionBucket, "petitions/1/a.pdf", minio.StatObjectOptions{}).
		Return(minio.ObjectInfo{Key: "petitions/1/a.pdf", Size: 99, ContentType: "application/pdf", LastModified: modified}, nil)

	got, err := s.archive.Stat(context.Background(), "petitions/1/a.pdf")
	s.Require().NoError(err)
	s.Equal(int64(99), got.Size)
	s.Equal(modified, got.StoredAt)
}

func (s *PetitionArchiveSuite) TestStat_NotFound() {
	s.api.On("StatObject", mock.Anything, DefaultPetitionBucket, "missing", minio.StatObjectOptions{}).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})

	_, err := s.archive.Stat(context.Background(), "missing")
	s.Equal(ErrObjectNotFound, err)
}

func (s *PetitionArchiveSuite) TestDelete() {
	s.api.On("RemoveObject", mock.Anything, DefaultPetitionBucket, "petitions/1/a.pdf", minio.RemoveObjectOptions{}).Return(nil).Once()
	s.api.On("RemoveObject", mock.Anything, DefaultPetitionBucket, "petitions/1/b.pdf", minio.RemoveObjectOptions{}).Return(errors.New("denied")).Once()

	s.NoError(s.archive.Delete(context.Background(), "petitions/1/a.pdf"))
	s.True(pkgerrors.IsCode(s.archive.Delete(context.Background(), "petitions/1/b.pdf"), pkgerrors.ErrCodeArchiveFailed))
}

func TestPetitionArchiveSuite(t *testing.T) {
	suite.Run(t, new(PetitionArchiveSuite))
}

//Personal.AI order the ending
