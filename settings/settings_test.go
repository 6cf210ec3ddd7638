package settings

import (
	"encoding/json"
	"testing"

	"github.com/Sujan7036/friends-momo-sub001/cart"
	"github.com/Sujan7036/friends-momo-sub001/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		typ     models.SettingType
		raw     string
		want    Value
		wantErr bool
	}{
		{"string", models.SettingString, " Friends Momo ", Value{Kind: KindString, Str: "Friends Momo"}, false},
		{"integer", models.SettingInteger, "12", Value{Kind: KindInt, Int: 12}, false},
		{"bad integer", models.SettingInteger, "12.5", Value{}, true},
		{"float", models.SettingFloat, "0.08", Value{Kind: KindFloat, Float: 0.08}, false},
		{"bool yes", models.SettingBoolean, "yes", Value{Kind: KindBool, Bool: true}, false},
		{"bool zero", models.SettingBoolean, "0", Value{Kind: KindBool, Bool: false}, false},
		{"bad bool", models.SettingBoolean, "maybe", Value{}, true},
		{"json", models.SettingJSON, `{"a":1}`, Value{Kind: KindJSON, JSON: json.RawMessage(`{"a":1}`)}, false},
		{"bad json", models.SettingJSON, `{a:1}`, Value{}, true},
		{"unknown type", models.SettingType("date"), "2024-01-01", Value{}, true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			got, err := Resolve(testCase.typ, testCase.raw)
			if testCase.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestSnapshot_TypedAccessors(t *testing.T) {
	snap, errs := NewSnapshot([]models.Setting{
		{Key: KeyTaxRate, Value: "0.1", Type: models.SettingFloat},
		{Key: KeyMaxPartySize, Value: "8", Type: models.SettingInteger},
		{Key: KeyReservationsEnabled, Value: "false", Type: models.SettingBoolean},
		{Key: KeyRestaurantName, Value: "Momo House", Type: models.SettingString},
		{Key: KeyDeliveryFee, Value: "free", Type: models.SettingFloat},
	})

	require.Len(t, errs, 1)
	assert.Equal(t, 0.1, snap.Float(KeyTaxRate, 0))
	assert.Equal(t, int64(8), snap.Int(KeyMaxPartySize, 20))
	assert.False(t, snap.Bool(KeyReservationsEnabled, true))
	assert.Equal(t, "Momo House", snap.String(KeyRestaurantName, ""))
	// wrong kind falls back to the default
	assert.Equal(t, "x", snap.String(KeyTaxRate, "x"))

	p := snap.Pricing(cart.DefaultPricing)
	assert.Equal(t, 0.1, p.TaxRate)
	assert.Equal(t, cart.DefaultPricing.DeliveryFee, p.DeliveryFee)
	assert.Equal(t, cart.DefaultPricing.FreeDeliveryThreshold, p.FreeDeliveryThreshold)
}

func TestDefaultsResolve(t *testing.T) {
	snap, errs := NewSnapshot(Defaults(cart.DefaultPricing))
	assert.Empty(t, errs)
	assert.Equal(t, cart.DefaultPricing, snap.Pricing(cart.Pricing{}))
	assert.True(t, snap.Bool(KeyReservationsEnabled, false))
}

func TestValue_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(map[string]Value{
		"a": {Kind: KindInt, Int: 3},
		"b": {Kind: KindBool, Bool: true},
		"c": {Kind: KindJSON, JSON: json.RawMessage(`[1,2]`)},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":3,"b":true,"c":[1,2]}`, string(out))
}
