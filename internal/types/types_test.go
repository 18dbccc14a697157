package types_test

import (
	"encoding/json"
	"testing"

	"github.com/aanand-mishra/table-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestAgeUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.Age
		wantErr bool
	}{
		{name: "number", input: `30`, want: 30},
		{name: "numeric string", input: `"42"`, want: 42},
		{name: "padded string", input: `" 7 "`, want: 7},
		{name: "empty string", input: `""`, want: 0},
		{name: "null", input: `null`, want: 0},
		{name: "whole float", input: `25.0`, want: 25},
		{name: "fraction", input: `25.5`, wantErr: true},
		{name: "word", input: `"thirty"`, wantErr: true},
		{name: "bool", input: `true`, wantErr: true},
		{name: "exponent", input: `1e3`, wantErr: true},
		{name: "exponent string", input: `"1e3"`, wantErr: true},
		{name: "hex string", input: `"0x1E"`, wantErr: true},
		{name: "infinity string", input: `"Inf"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var age types.Age
			err := json.Unmarshal([]byte(tt.input), &age)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, age)
		})
	}
}

func TestRowDecodesBrowserPayload(t *testing.T) {
	payload := `{"id":"new-1700000000000","name":"Alice","age":"30","gender":"Female",
		"city":"Reno","birthDate":"1994-01-01","education":"Bachelors"}`

	var row types.Row
	require.NoError(t, json.Unmarshal([]byte(payload), &row))

	assert.Equal(t, types.Age(30), row.Age)
	assert.Equal(t, "1994-01-01", row.BirthDate)
}

func TestRowNormalize(t *testing.T) {
	row := types.Row{Name: "  Bob ", City: "\tReno\n", Gender: " ", Education: "PhD "}.Normalize()

	assert.Equal(t, "Bob", row.Name)
	assert.Equal(t, "Reno", row.City)
	assert.Empty(t, row.Gender)
	assert.Equal(t, "PhD", row.Education)
}

func TestAgeOutOfRange(t *testing.T) {
	var age types.Age
	err := json.Unmarshal([]byte(`"99999999999"`), &age)
	assert.ErrorContains(t, err, "out of range")

	err = json.Unmarshal([]byte(`12.5`), &age)
	assert.ErrorContains(t, err, "not a whole number")
}

func TestAgeUnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.Age
		wantErr bool
	}{
		{name: "number", input: `age: 30`, want: 30},
		{name: "quoted string", input: `age: "30"`, want: 30},
		{name: "json style", input: `{"age": "41"}`, want: 41},
		{name: "null", input: `age: null`, want: 0},
		{name: "empty string", input: `age: ""`, want: 0},
		{name: "word", input: `age: thirty`, wantErr: true},
		{name: "exponent", input: `age: 1e3`, wantErr: true},
		{name: "list", input: `age: [1]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var row types.Row
			err := yaml.Unmarshal([]byte(tt.input), &row)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, row.Age)
		})
	}
}
