package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/raywall/healthdata-loader/pkg/indicators"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockS3 struct {
	PutObjectFunc func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObjectFunc func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

func (m *MockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return m.PutObjectFunc(ctx, params, optFns...)
}

func (m *MockS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return m.GetObjectFunc(ctx, params, optFns...)
}

func TestS3Mirror_Publish(t *testing.T) {
	paths, err := NewWriter(t.TempDir(), "", "").Write(sampleSnapshot(indicators.Real))
	require.NoError(t, err)

	t.Run("envia os dois artefatos", func(t *testing.T) {
		stored := map[string][]byte{}
		mock := &MockS3{PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			assert.Equal(t, "analytics", aws.ToString(params.Bucket))
			body, _ := io.ReadAll(params.Body)
			stored[aws.ToString(params.Key)] = body
			return &s3.PutObjectOutput{}, nil
		}}

		keys, err := NewS3Mirror(mock, "analytics", "saude/nordeste", zerolog.Nop()).Publish(context.Background(), paths)

		require.NoError(t, err)
		assert.Equal(t, []string{"saude/nordeste/indicadores_saude.json", "saude/nordeste/indicadores_saude.csv"}, keys)
		assert.Len(t, stored, 2)

		// O objeto espelhado é lido de volta pelo Reader.
		mock.GetObjectFunc = func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(stored[aws.ToString(params.Key)]))}, nil
		}
		snap, err := (&Reader{S3: mock}).Load(context.Background(), "s3://analytics/saude/nordeste/indicadores_saude.json")
		require.NoError(t, err)
		assert.Equal(t, "snap-1", snap.ID)
	})

	t.Run("erro de upload é propagado", func(t *testing.T) {
		mock := &MockS3{PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			return nil, errors.New("AccessDenied")
		}}

		keys, err := NewS3Mirror(mock, "analytics", "", zerolog.Nop()).Publish(context.Background(), paths)

		assert.ErrorContains(t, err, "AccessDenied")
		assert.Empty(t, keys)
	})
}
