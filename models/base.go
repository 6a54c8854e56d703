package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"modernmen-backend/utils"
)

// Base replaces gorm.Model with a uuid primary key.
type Base struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Custom JSONB type for free-form maps
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return jsonValue(j)
}

func (j *JSONB) Scan(value interface{}) error {
	return jsonScan(value, j)
}

func (JSONB) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumnType(db)
}

// RawJSON keeps a JSON document verbatim.
type RawJSON json.RawMessage

func (r RawJSON) Value() (driver.Value, error) {
	if len(r) == 0 {
		return "null", nil
	}
	return string(r), nil
}

func (r *RawJSON) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*r = nil
	case []byte:
		*r = append((*r)[:0], v...)
	case string:
		*r = RawJSON(v)
	default:
		return fmt.Errorf("unsupported JSON source %T", value)
	}
	return nil
}

func (r RawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *RawJSON) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

func (RawJSON) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumnType(db)
}

// StringList is a text[] on postgres and the same literal in a text column
// elsewhere.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	return pq.StringArray(s).Value()
}

func (s *StringList) Scan(value interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(value); err != nil {
		return err
	}
	*s = StringList(arr)
	return nil
}

func (StringList) GormDataType() string {
	return "text"
}

func (StringList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// DayHours is one weekday of a schedule, times as "HH:MM".
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// WorkingHours is keyed by lowercase weekday name.
type WorkingHours map[string]DayHours

func (w WorkingHours) Value() (driver.Value, error) {
	return jsonValue(w)
}

func (w *WorkingHours) Scan(value interface{}) error {
	return jsonScan(value, w)
}

func (WorkingHours) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumnType(db)
}

// For returns the day's hours; ok is false when the day is closed or missing.
func (w WorkingHours) For(day time.Weekday) (DayHours, bool) {
	if w == nil {
		return DayHours{}, false
	}
	h, ok := w[strings.ToLower(day.String())]
	if !ok || h.Closed || h.Open == "" || h.Close == "" {
		return DayHours{}, false
	}
	return h, true
}

// Validate checks day names and that each open day has open < close.
func (w WorkingHours) Validate() error {
	valid := map[string]bool{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		valid[strings.ToLower(d.String())] = true
	}
	for day, h := range w {
		if !valid[day] {
			return fmt.Errorf("unknown weekday %q", day)
		}
		if h.Closed {
			continue
		}
		open, err := utils.ParseClock(h.Open)
		if err != nil {
			return fmt.Errorf("%s open: %w", day, err)
		}
		closing, err := utils.ParseClock(h.Close)
		if err != nil {
			return fmt.Errorf("%s close: %w", day, err)
		}
		if open >= closing {
			return fmt.Errorf("%s: open must be before close", day)
		}
	}
	return nil
}

// DefaultBusinessHours is Monday to Saturday 09:00-18:00, Sunday closed.
func DefaultBusinessHours() WorkingHours {
	hours := WorkingHours{}
	for d := time.Monday; d <= time.Saturday; d++ {
		hours[strings.ToLower(d.String())] = DayHours{Open: "09:00", Close: "18:00"}
	}
	hours["sunday"] = DayHours{Closed: true}
	return hours
}

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(value interface{}, dst interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	}
	return fmt.Errorf("unsupported JSON source %T", value)
}

func jsonColumnType(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "JSON"
}

// shortCode is the random suffix used in human-facing reference numbers.
func shortCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
}
