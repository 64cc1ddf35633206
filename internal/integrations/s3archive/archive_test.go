package s3archive

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"assetdb/internal/core/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingUploader struct {
	keys   []string
	bodies []string
	err    error
}

func (u *recordingUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if u.err != nil {
		return nil, u.err
	}
	body, _ := io.ReadAll(input.Body)
	u.keys = append(u.keys, aws.ToString(input.Bucket)+":"+aws.ToString(input.Key))
	u.bodies = append(u.bodies, string(body))
	return &manager.UploadOutput{}, nil
}

func TestArchive(t *testing.T) {
	up := &recordingUploader{}
	a := &Archive{uploader: up, bucket: "backups", prefix: "asdb-backups/", log: zap.NewNop()}

	err := a.Archive(context.Background(), "ASDB_20240101_000000", map[string][][]string{
		"거래관리": {{"trade_id"}, {"1"}},
		"자산관리": {{"자산번호"}, {"A-1"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"backups:asdb-backups/ASDB_20240101_000000/거래관리.csv",
		"backups:asdb-backups/ASDB_20240101_000000/자산관리.csv",
	}, up.keys)
	assert.True(t, strings.HasPrefix(up.bodies[1], "\ufeff자산번호\nA-1\n"))
}

func TestArchiveUploadError(t *testing.T) {
	a := &Archive{uploader: &recordingUploader{err: errors.New("denied")}, bucket: "b", log: zap.NewNop()}

	err := a.Archive(context.Background(), "ASDB_x", map[string][][]string{"t": {{"a"}}})
	assert.ErrorContains(t, err, "denied")
}

func TestNewWithoutBucket(t *testing.T) {
	a, err := New(context.Background(), config.BackupConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "ASDB_1/t.csv", objectKey("", "ASDB_1", "t"))
	assert.Equal(t, "p/ASDB_1/t.csv", objectKey("p", "ASDB_1", "t"))
}
