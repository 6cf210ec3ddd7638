// Package settings resolves the stored key/value/type rows into typed values
// once, at load time.
package settings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sujan7036/friends-momo-sub001/cart"
	"github.com/Sujan7036/friends-momo-sub001/models"
)

// Kind discriminates which field of Value is set.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindJSON
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindJSON:
		return "json"
	default:
		return "string"
	}
}

// Value is a setting resolved to its declared type.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Bool  bool
	JSON  json.RawMessage
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindInt:
		return json.Marshal(v.Int)
	case KindFloat:
		return json.Marshal(v.Float)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindJSON:
		if len(v.JSON) == 0 {
			return []byte("null"), nil
		}
		return v.JSON, nil
	default:
		return json.Marshal(v.Str)
	}
}

// Resolve converts a stored row into a Value. Unknown types are an error.
func Resolve(typ models.SettingType, raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	switch typ {
	case models.SettingString, "":
		return Value{Kind: KindString, Str: raw}, nil
	case models.SettingInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("not an integer: %q", raw)
		}
		return Value{Kind: KindInt, Int: n}, nil
	case models.SettingFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, fmt.Errorf("not a number: %q", raw)
		}
		return Value{Kind: KindFloat, Float: f}, nil
	case models.SettingBoolean:
		switch strings.ToLower(raw) {
		case "1", "true", "yes", "on":
			return Value{Kind: KindBool, Bool: true}, nil
		case "0", "false", "no", "off", "":
			return Value{Kind: KindBool, Bool: false}, nil
		}
		return Value{}, fmt.Errorf("not a boolean: %q", raw)
	case models.SettingJSON:
		if !json.Valid([]byte(raw)) {
			return Value{}, fmt.Errorf("not valid json")
		}
		return Value{Kind: KindJSON, JSON: json.RawMessage(raw)}, nil
	}
	return Value{}, fmt.Errorf("unknown setting type %q", typ)
}

// Snapshot is the set of settings resolved for one request.
type Snapshot struct {
	values map[string]Value
}

// NewSnapshot resolves rows; rows that fail to resolve are reported and skipped.
func NewSnapshot(rows []models.Setting) (Snapshot, []error) {
	s := Snapshot{values: make(map[string]Value, len(rows))}
	var errs []error
	for _, row := range rows {
		v, err := Resolve(row.Type, row.Value)
		if err != nil {
			errs = append(errs, fmt.Errorf("setting %s: %w", row.Key, err))
			continue
		}
		s.values[row.Key] = v
	}
	return s, errs
}

func (s Snapshot) Get(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// All returns a copy of every resolved value.
func (s Snapshot) All() map[string]Value {
	out := make(map[string]Value, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s Snapshot) String(key, def string) string {
	if v, ok := s.values[key]; ok && v.Kind == KindString {
		return v.Str
	}
	return def
}

func (s Snapshot) Int(key string, def int64) int64 {
	if v, ok := s.values[key]; ok {
		switch v.Kind {
		case KindInt:
			return v.Int
		case KindFloat:
			return int64(v.Float)
		}
	}
	return def
}

func (s Snapshot) Float(key string, def float64) float64 {
	if v, ok := s.values[key]; ok {
		switch v.Kind {
		case KindFloat:
			return v.Float
		case KindInt:
			return float64(v.Int)
		}
	}
	return def
}

func (s Snapshot) Bool(key string, def bool) bool {
	if v, ok := s.values[key]; ok && v.Kind == KindBool {
		return v.Bool
	}
	return def
}

// Known setting keys.
const (
	KeyRestaurantName        = "restaurant_name"
	KeyRestaurantPhone       = "restaurant_phone"
	KeyRestaurantEmail       = "restaurant_email"
	KeyRestaurantAddress     = "restaurant_address"
	KeyOpeningHours          = "opening_hours"
	KeyTaxRate               = "tax_rate"
	KeyDeliveryFee           = "delivery_fee"
	KeyFreeDeliveryThreshold = "free_delivery_threshold"
	KeyOnlineOrdering        = "online_ordering_enabled"
	KeyReservationsEnabled   = "reservations_enabled"
	KeyMaxPartySize          = "max_party_size"
	KeyMinOrderAmount        = "min_order_amount"
)

// Pricing overlays the pricing settings on defaults.
func (s Snapshot) Pricing(defaults cart.Pricing) cart.Pricing {
	return cart.Pricing{
		TaxRate:               s.Float(KeyTaxRate, defaults.TaxRate),
		DeliveryFee:           s.Float(KeyDeliveryFee, defaults.DeliveryFee),
		FreeDeliveryThreshold: s.Float(KeyFreeDeliveryThreshold, defaults.FreeDeliveryThreshold),
	}
}

// Defaults are inserted by the seeder when missing.
func Defaults(p cart.Pricing) []models.Setting {
	return []models.Setting{
		{Key: KeyRestaurantName, Value: "Friends Momo", Type: models.SettingString, Description: "Restaurant display name"},
		{Key: KeyRestaurantPhone, Value: "", Type: models.SettingString, Description: "Public phone number"},
		{Key: KeyRestaurantEmail, Value: "", Type: models.SettingString, Description: "Public contact email"},
		{Key: KeyRestaurantAddress, Value: "", Type: models.SettingString, Description: "Street address"},
		{Key: KeyOpeningHours, Value: `{"open":"11:00","close":"22:00"}`, Type: models.SettingJSON, Description: "Daily opening hours"},
		{Key: KeyTaxRate, Value: strconv.FormatFloat(p.TaxRate, 'f', -1, 64), Type: models.SettingFloat, Description: "Sales tax rate (0.08 = 8%)"},
		{Key: KeyDeliveryFee, Value: strconv.FormatFloat(p.DeliveryFee, 'f', 2, 64), Type: models.SettingFloat, Description: "Flat delivery fee"},
		{Key: KeyFreeDeliveryThreshold, Value: strconv.FormatFloat(p.FreeDeliveryThreshold, 'f', 2, 64), Type: models.SettingFloat, Description: "Subtotal above which delivery is free"},
		{Key: KeyOnlineOrdering, Value: "true", Type: models.SettingBoolean, Description: "Accept online orders"},
		{Key: KeyReservationsEnabled, Value: "true", Type: models.SettingBoolean, Description: "Accept table reservations"},
		{Key: KeyMaxPartySize, Value: "20", Type: models.SettingInteger, Description: "Largest party accepted online"},
		{Key: KeyMinOrderAmount, Value: "0", Type: models.SettingFloat, Description: "Minimum subtotal for online orders"},
	}
}
