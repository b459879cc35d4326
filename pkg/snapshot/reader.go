package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/raywall/healthdata-loader/pkg/indicators"
)

// ErrNotFound indica que ainda não existe snapshot no caminho informado.
var ErrNotFound = errors.New("snapshot não encontrado")

// S3Downloader permite mockar o GetObject nos testes.
type S3Downloader interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Reader carrega um snapshot JSON de arquivo local ou de s3://bucket/key.
type Reader struct {
	S3 S3Downloader
}

func (r *Reader) Load(ctx context.Context, path string) (*indicators.Snapshot, error) {
	var (
		data []byte
		err  error
	)

	if strings.HasPrefix(path, "s3://") {
		if r.S3 == nil {
			return nil, fmt.Errorf("cliente S3 não configurado para %s", path)
		}
		data, err = r.loadFromS3(ctx, path)
	} else {
		data, err = os.ReadFile(strings.TrimPrefix(path, "file://"))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("falha lendo snapshot (%s): %w", path, err)
	}

	var snap indicators.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("snapshot malformado (%s): %w", path, err)
	}
	return &snap, nil
}

func (r *Reader) loadFromS3(ctx context.Context, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL S3 inválida: %w", err)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")

	out, err := r.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}
