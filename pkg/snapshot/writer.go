// Package snapshot persiste o resultado de um ciclo em JSON e CSV com escrita
// atômica e, opcionalmente, espelha os artefatos em um bucket S3.
package snapshot

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raywall/healthdata-loader/pkg/config"
	"github.com/raywall/healthdata-loader/pkg/indicators"
)

const (
	DefaultJSONName = "indicadores_saude.json"
	DefaultCSVName  = "indicadores_saude.csv"
)

// ErrPersistence indica que um artefato não pôde ser gravado. O arquivo
// anterior, se existir, permanece intacto.
var ErrPersistence = errors.New("falha ao persistir snapshot")

// Artifacts são os caminhos gravados por um Write.
type Artifacts struct {
	JSONPath string
	CSVPath  string
}

// Writer grava os dois artefatos em Dir.
type Writer struct {
	Dir      string
	JSONName string
	CSVName  string

	// createTemp é trocado nos testes para simular falhas no meio da escrita.
	createTemp func(dir, pattern string) (tempFile, error)
}

type tempFile interface {
	Write(p []byte) (int, error)
	Sync() error
	Close() error
	Name() string
}

func NewWriter(dir, jsonName, csvName string) *Writer {
	if jsonName == "" {
		jsonName = DefaultJSONName
	}
	if csvName == "" {
		csvName = DefaultCSVName
	}
	return &Writer{Dir: dir, JSONName: jsonName, CSVName: csvName}
}

// FromConfig monta o Writer a partir da seção snapshot do YAML.
func FromConfig(c config.SnapshotConf) *Writer {
	return NewWriter(c.Dir, c.JSONName, c.CSVName)
}

// Paths devolve onde os artefatos ficam, existindo ou não.
func (w *Writer) Paths() Artifacts {
	return Artifacts{
		JSONPath: filepath.Join(w.Dir, w.JSONName),
		CSVPath:  filepath.Join(w.Dir, w.CSVName),
	}
}

// Write prepara os dois temporários (escrita, fsync e close) antes de
// renomear qualquer um deles. Falha na preparação remove ambos e deixa o
// snapshot anterior intacto.
func (w *Writer) Write(snap indicators.Snapshot) (Artifacts, error) {
	paths := w.Paths()

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return Artifacts{}, fmt.Errorf("%w: criando diretório %s: %v", ErrPersistence, w.Dir, err)
	}

	jsonData, err := EncodeJSON(snap)
	if err != nil {
		return Artifacts{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	csvData, err := EncodeCSV(snap.Municipalities)
	if err != nil {
		return Artifacts{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	jsonTmp, err := w.stage(paths.JSONPath, jsonData)
	if err != nil {
		return Artifacts{}, err
	}
	csvTmp, err := w.stage(paths.CSVPath, csvData)
	if err != nil {
		_ = os.Remove(jsonTmp)
		return Artifacts{}, err
	}

	if err := os.Rename(jsonTmp, paths.JSONPath); err != nil {
		_ = os.Remove(jsonTmp)
		_ = os.Remove(csvTmp)
		return Artifacts{}, fmt.Errorf("%w: renomeando para %s: %v", ErrPersistence, paths.JSONPath, err)
	}
	if err := os.Rename(csvTmp, paths.CSVPath); err != nil {
		_ = os.Remove(csvTmp)
		return Artifacts{}, fmt.Errorf("%w: renomeando para %s: %v", ErrPersistence, paths.CSVPath, err)
	}

	return paths, nil
}

// stage grava data num temporário no diretório de target (fsync e close) e
// devolve o nome dele. Em erro o temporário já foi removido.
func (w *Writer) stage(target string, data []byte) (name string, err error) {
	create := w.createTemp
	if create == nil {
		create = func(dir, pattern string) (tempFile, error) {
			return os.CreateTemp(dir, pattern)
		}
	}

	tmp, err := create(filepath.Dir(target), "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("%w: criando temporário para %s: %v", ErrPersistence, target, err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return "", fmt.Errorf("%w: escrevendo %s: %v", ErrPersistence, target, err)
	}
	if err = tmp.Sync(); err != nil {
		return "", fmt.Errorf("%w: fsync %s: %v", ErrPersistence, target, err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: fechando %s: %v", ErrPersistence, target, err)
	}
	return tmpName, nil
}

// EncodeJSON serializa o snapshot com indentação de 2 espaços.
func EncodeJSON(snap indicators.Snapshot) ([]byte, error) {
	if snap.Municipalities == nil {
		snap.Municipalities = []indicators.IndicatorRow{}
	}
	return json.MarshalIndent(snap, "", "  ")
}

// EncodeCSV gera cabeçalho mais uma linha por município. A proveniência não
// aparece no CSV.
func EncodeCSV(rows []indicators.IndicatorRow) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(indicators.CSVHeader()); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := cw.Write(r.CSVRecord()); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
