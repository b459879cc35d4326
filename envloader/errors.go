// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package envloader

import (
	"fmt"
	"reflect"
)

// InvalidConfigError indica que Load não recebeu um ponteiro para struct.
type InvalidConfigError struct {
	Value reflect.Type
}

func (e *InvalidConfigError) Error() string {
	if e.Value == nil {
		return "envloader: esperado ponteiro para struct, recebido nil"
	}
	if e.Value.Kind() != reflect.Ptr {
		return fmt.Sprintf("envloader: esperado ponteiro para struct, recebido %s", e.Value.Kind())
	}
	return fmt.Sprintf("envloader: esperado ponteiro para struct, recebido ponteiro para %s", e.Value.Elem().Kind())
}

// FieldError envolve a falha de conversão do valor de uma variável para o
// tipo do campo (ex: LOADER_CYCLE_TIMEOUT="dois minutos").
type FieldError struct {
	FieldName string
	EnvVar    string
	Value     string
	Err       error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("envloader: campo %s (%s=%q): %v", e.FieldName, e.EnvVar, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// MissingVariableError é devolvido para campos com `envRequired:"true"` sem
// valor no ambiente nem envDefault.
type MissingVariableError struct {
	FieldName string
	EnvVar    string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("envloader: variável obrigatória %s ausente (campo %s)", e.EnvVar, e.FieldName)
}

// UnsupportedTypeError indica um tipo de campo sem conversão (map, interface, slice de slice).
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("envloader: tipo não suportado %s", e.Type)
}
