package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// S3Uploader permite mockar o PutObject nos testes.
type S3Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Mirror copia os artefatos já gravados localmente para s3://Bucket/Prefix/.
// Uma falha no espelho não invalida a escrita local.
type S3Mirror struct {
	Client S3Uploader
	Bucket string
	Prefix string
	Log    zerolog.Logger
}

func NewS3Mirror(client S3Uploader, bucket, prefix string, log zerolog.Logger) *S3Mirror {
	return &S3Mirror{
		Client: client,
		Bucket: bucket,
		Prefix: prefix,
		Log:    log.With().Str("component", "s3-mirror").Logger(),
	}
}

// Key é a chave do objeto para um arquivo local.
func (m *S3Mirror) Key(localPath string) string {
	return path.Join(m.Prefix, filepath.Base(localPath))
}

// Publish envia JSON e CSV. Retorna as chaves enviadas.
func (m *S3Mirror) Publish(ctx context.Context, a Artifacts) ([]string, error) {
	uploads := []struct {
		path        string
		contentType string
	}{
		{a.JSONPath, "application/json"},
		{a.CSVPath, "text/csv; charset=utf-8"},
	}

	var keys []string
	for _, up := range uploads {
		data, err := os.ReadFile(up.path)
		if err != nil {
			return keys, fmt.Errorf("lendo artefato %s: %w", up.path, err)
		}

		key := m.Key(up.path)
		_, err = m.Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(m.Bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(up.contentType),
		})
		if err != nil {
			return keys, fmt.Errorf("enviando s3://%s/%s: %w", m.Bucket, key, err)
		}
		m.Log.Info().Str("bucket", m.Bucket).Str("key", key).Int("bytes", len(data)).Msg("artefato espelhado")
		keys = append(keys, key)
	}
	return keys, nil
}
