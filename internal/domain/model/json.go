package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap armazena um documento JSON arbitrário em uma coluna do banco
type JSONMap map[string]interface{}

// Value implementa driver.Valuer para serializar o mapa como JSON
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implementa sql.Scanner para deserializar a coluna JSON
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("tipo inesperado para coluna JSON: %T", value)
	}

	if len(data) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(data, m)
}

// Float retorna o valor numérico de uma chave, ou zero se ausente
func (m JSONMap) Float(key string) float64 {
	if m == nil {
		return 0
	}
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}

// Bool retorna o valor booleano de uma chave, ou false se ausente
func (m JSONMap) Bool(key string) bool {
	if m == nil {
		return false
	}
	v, _ := m[key].(bool)
	return v
}

// String retorna o valor textual de uma chave, ou vazio se ausente
func (m JSONMap) String(key string) string {
	if m == nil {
		return ""
	}
	v, _ := m[key].(string)
	return v
}

// Strings retorna uma lista de strings de uma chave, ou nil se ausente
func (m JSONMap) Strings(key string) []string {
	if m == nil {
		return nil
	}
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
