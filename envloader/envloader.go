package envloader

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Load preenche a struct apontada por config a partir das tags "env",
// "envDefault", "envSeparator" e "envRequired".
func Load(config interface{}) error {
	val := reflect.ValueOf(config)
	if !val.IsValid() {
		return &InvalidConfigError{}
	}
	if val.Kind() != reflect.Ptr || val.IsNil() || val.Elem().Kind() != reflect.Struct {
		return &InvalidConfigError{Value: val.Type()}
	}

	return loadStruct(val.Elem())
}

// loadStruct processa recursivamente uma struct
func loadStruct(val reflect.Value) error {
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if !field.CanSet() {
			continue
		}

		switch {
		case field.Kind() == reflect.Struct:
			if err := loadStruct(field); err != nil {
				return err
			}
			continue
		case field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct:
			if field.IsNil() {
				field.Set(reflect.New(field.Type().Elem()))
			}
			if err := loadStruct(field.Elem()); err != nil {
				return err
			}
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}

		envValue, ok := os.LookupEnv(envTag)
		if !ok || envValue == "" {
			envValue = fieldType.Tag.Get("envDefault")
		}
		if envValue == "" {
			if required, _ := strconv.ParseBool(fieldType.Tag.Get("envRequired")); required {
				return &MissingVariableError{FieldName: fieldType.Name, EnvVar: envTag}
			}
			continue
		}

		sep := fieldType.Tag.Get("envSeparator")
		if sep == "" {
			sep = ","
		}

		if err := setFieldValue(field, envValue, sep); err != nil {
			return &FieldError{
				FieldName: fieldType.Name,
				EnvVar:    envTag,
				Value:     envValue,
				Err:       err,
			}
		}
	}

	return nil
}

// setFieldValue define o valor de um campo baseado no seu tipo
func setFieldValue(field reflect.Value, value, sep string) error {
	// time.Duration é um int64, então precisa ser tratado antes
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(intValue)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		uintValue, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(uintValue)

	case reflect.Bool:
		boolValue, err := strconv.ParseBool(strings.ToLower(value))
		if err != nil {
			return err
		}
		field.SetBool(boolValue)

	case reflect.Float32, reflect.Float64:
		floatValue, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(floatValue)

	case reflect.Slice:
		parts := strings.Split(value, sep)
		slice := reflect.MakeSlice(field.Type(), 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			elem := reflect.New(field.Type().Elem()).Elem()
			if elem.Kind() == reflect.Slice {
				return &UnsupportedTypeError{Type: field.Type()}
			}
			if err := setFieldValue(elem, p, sep); err != nil {
				return err
			}
			slice = reflect.Append(slice, elem)
		}
		field.Set(slice)

	default:
		return &UnsupportedTypeError{Type: field.Type()}
	}

	return nil
}

// MustLoad chama Load e entra em pânico no erro. Útil em init de binários.
func MustLoad(config interface{}) {
	if err := Load(config); err != nil {
		panic(err)
	}
}
