package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"
)

// ProductID — идентификатор продукта из хранилища. Ключ может быть числовым
// (int4/int8) или текстовым (text/uuid), тип определяется колонкой при сканировании.
// Числовой id сериализуется в JSON числом, текстовый — строкой.
type ProductID struct {
	value   string
	numeric bool
}

// NewProductID создаёт текстовый идентификатор.
func NewProductID(s string) ProductID {
	return ProductID{value: s}
}

// NewIntProductID создаёт числовой идентификатор.
func NewIntProductID(n int64) ProductID {
	return ProductID{value: strconv.FormatInt(n, 10), numeric: true}
}

// ParseProductID считает числовым любой id, который разбирается как int64.
func ParseProductID(s string) ProductID {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewIntProductID(n)
	}

	return NewProductID(s)
}

func (id ProductID) String() string {
	return id.value
}

func (id ProductID) IsZero() bool {
	return id.value == ""
}

// Int64 возвращает числовое значение, если id числовой.
func (id ProductID) Int64() (int64, bool) {
	if !id.numeric {
		return 0, false
	}

	n, err := strconv.ParseInt(id.value, 10, 64)
	if err != nil {
		return 0, false
	}

	return n, true
}

// ScanInt64 реализует pgtype.Int64Scanner для числовых колонок.
func (id *ProductID) ScanInt64(v pgtype.Int8) error {
	if !v.Valid {
		return fmt.Errorf("product id can not be NULL")
	}

	*id = NewIntProductID(v.Int64)
	return nil
}

// ScanText реализует pgtype.TextScanner для текстовых колонок.
func (id *ProductID) ScanText(v pgtype.Text) error {
	if !v.Valid {
		return fmt.Errorf("product id can not be NULL")
	}

	*id = NewProductID(v.String)
	return nil
}

// Value передаёт id параметром запроса в исходном виде.
func (id ProductID) Value() (driver.Value, error) {
	if n, ok := id.Int64(); ok {
		return n, nil
	}

	return id.value, nil
}

func (id ProductID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.value), nil
	}

	return json.Marshal(id.value)
}

func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ProductID{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NewProductID(s)
		return nil
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %s: %w", data, err)
	}

	*id = NewIntProductID(n)
	return nil
}
