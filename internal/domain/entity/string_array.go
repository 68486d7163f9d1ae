package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
func (o *StringArray) Scan(value interface{}) error {
	if value == nil {
		*o = StringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// First возвращает первый элемент или пустую строку
func (o StringArray) First() string {
	if len(o) == 0 {
		return ""
	}
	return o[0]
}
