package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PARIS", "paris"},
		{"  paris  ", "paris"},
		{"\tUnited Kingdom\n", "united kingdom"},
		{"São Paulo", "são paulo"},
		{"ÎLE", "île"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeKey(tt.in), tt.in)
	}
}

func TestNewPopulationKey(t *testing.T) {
	assert.Equal(t,
		PopulationKey{City: "london", Country: "united kingdom"},
		NewPopulationKey(" London", "UNITED KINGDOM "),
	)
}
