package injector

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/raywall/healthdata-loader/pkg/cloud"
)

// Regex para capturar padrões ${tipo.chave}
// Ex: ${env.BACKEND_URL}, ${ssm./healthdata/ans/token}, ${secret.healthdata/backend#token}
var pattern = regexp.MustCompile(`\$\{(env|ssm|secret)\.([^}]+)\}`)

// ResolveFunc busca um valor remoto pela chave.
type ResolveFunc func(ctx context.Context, key string) (string, error)

type Injector struct {
	ssm    ResolveFunc
	secret ResolveFunc
}

// New cria um Injector que resolve ssm/secret na AWS usando AWS_REGION.
func New() *Injector {
	region := os.Getenv("AWS_REGION")
	return &Injector{
		ssm: func(ctx context.Context, key string) (string, error) {
			return cloud.Parameter(ctx, region, key)
		},
		secret: func(ctx context.Context, key string) (string, error) {
			return cloud.Secret(ctx, region, key)
		},
	}
}

// NewWithResolvers permite substituir as fontes remotas (usado em testes).
func NewWithResolvers(ssm, secret ResolveFunc) *Injector {
	return &Injector{ssm: ssm, secret: secret}
}

func (i *Injector) Inject(ctx context.Context, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target deve ser um ponteiro para struct não nulo")
	}
	return i.injectRecursive(ctx, v.Elem())
}

func (i *Injector) injectRecursive(ctx context.Context, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for k := 0; k < t.NumField(); k++ {
			field := t.Field(k)
			value := v.Field(k)
			if !field.IsExported() {
				continue
			}

			// 1. Tags env:"..." têm precedência sobre o YAML
			if err := i.processStructTags(field, value); err != nil {
				return err
			}

			// 2. Strings com interpolação "${...}"
			if value.Kind() == reflect.String && value.CanSet() {
				newValue, err := i.interpolateString(ctx, value.String())
				if err != nil {
					return fmt.Errorf("campo %s: %w", field.Name, err)
				}
				value.SetString(newValue)
				continue
			}

			if err := i.injectRecursive(ctx, value); err != nil {
				return err
			}
		}

	case reflect.Map:
		if v.IsNil() || v.Type().Key().Kind() != reflect.String {
			return nil
		}
		return i.injectMap(ctx, v)

	case reflect.Ptr:
		if !v.IsNil() {
			return i.injectRecursive(ctx, v.Elem())
		}

	case reflect.Slice:
		for j := 0; j < v.Len(); j++ {
			elem := v.Index(j)
			if elem.Kind() == reflect.String {
				newValue, err := i.interpolateString(ctx, elem.String())
				if err != nil {
					return err
				}
				elem.SetString(newValue)
				continue
			}
			if err := i.injectRecursive(ctx, elem); err != nil {
				return err
			}
		}
	}
	return nil
}

func (i *Injector) processStructTags(field reflect.StructField, value reflect.Value) error {
	if !value.CanSet() {
		return nil
	}
	if tag := field.Tag.Get("env"); tag != "" {
		if val, exists := os.LookupEnv(tag); exists {
			return setField(value, val)
		}
	}
	return nil
}

// interpolateString realiza a substituição baseada em Regex
func (i *Injector) interpolateString(ctx context.Context, input string) (string, error) {
	if !strings.Contains(input, "${") {
		return input, nil
	}

	var err error
	result := pattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := pattern.FindStringSubmatch(match)
		val, resolveErr := i.fetchValue(ctx, sub[1], sub[2])
		if resolveErr != nil {
			err = resolveErr
			return match
		}
		return val
	})

	return result, err
}

// injectMap lida com mapas. Valores de mapa não são endereçáveis, então cada
// elemento é copiado, processado e gravado de volta.
func (i *Injector) injectMap(ctx context.Context, v reflect.Value) error {
	iter := v.MapRange()
	type update struct {
		key reflect.Value
		val reflect.Value
	}
	var updates []update

	for iter.Next() {
		key := iter.Key()
		val := iter.Value()

		elem := val
		if val.Kind() == reflect.Interface {
			elem = val.Elem()
		}
		if !elem.IsValid() {
			continue
		}

		switch elem.Kind() {
		case reflect.String:
			newVal, err := i.interpolateString(ctx, elem.String())
			if err != nil {
				return err
			}
			updates = append(updates, update{key, reflect.ValueOf(newVal).Convert(v.Type().Elem())})
		case reflect.Map:
			if err := i.injectMap(ctx, elem); err != nil {
				return err
			}
		case reflect.Struct:
			cp := reflect.New(elem.Type()).Elem()
			cp.Set(elem)
			if err := i.injectRecursive(ctx, cp); err != nil {
				return err
			}
			updates = append(updates, update{key, cp})
		}
	}

	for _, u := range updates {
		v.SetMapIndex(u.key, u.val)
	}
	return nil
}

// fetchValue centraliza a busca de dados
func (i *Injector) fetchValue(ctx context.Context, sourceType, key string) (string, error) {
	switch sourceType {
	case "env":
		// Variável não encontrada resulta em string vazia
		return os.Getenv(key), nil
	case "ssm":
		return i.ssm(ctx, key)
	case "secret":
		return i.secret(ctx, key)
	}
	return "", fmt.Errorf("fonte de injeção desconhecida: %s", sourceType)
}

func setField(field reflect.Value, val string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)
	case reflect.Bool:
		field.SetBool(val == "true" || val == "1")
	}
	return nil
}
