package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Date is a calendar day in YYYY-MM-DD form. The zero value is Someday, the
// undated pool, and is encoded as null.
type Date string

const Someday Date = ""

func (d Date) IsSomeday() bool {
	return d == Someday
}

func (d Date) String() string {
	if d == Someday {
		return "someday"
	}
	return string(d)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d == Someday {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

func (d Date) MarshalYAML() (interface{}, error) {
	if d == Someday {
		return nil, nil
	}
	return string(d), nil
}

func (d Date) Value() (driver.Value, error) {
	if d == Someday {
		return nil, nil
	}
	return string(d), nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Someday
	case string:
		*d = Date(v)
	case []byte:
		*d = Date(v)
	case time.Time:
		*d = Date(v.Format("2006-01-02"))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
	return nil
}
