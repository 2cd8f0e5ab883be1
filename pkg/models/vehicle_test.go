package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lotwatch/pkg/models"
)

func TestIdentifierIsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		ident models.Identifier
		empty bool
	}{
		{"both empty", models.Identifier{}, true},
		{"whitespace only", models.Identifier{VIN: "   ", Plate: "\t"}, true},
		{"vin only", models.Identifier{VIN: "XTA210990Y2696785"}, false},
		{"plate only", models.Identifier{Plate: "А123БВ777"}, false},
		{"both set", models.Identifier{VIN: "XTA210990Y2696785", Plate: "А123БВ777"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.empty, tt.ident.IsEmpty())
		})
	}
}

func TestIdentifierQueries(t *testing.T) {
	t.Run("vin comes first", func(t *testing.T) {
		ident := models.Identifier{VIN: "XTA210990Y2696785", Plate: "А123БВ777"}
		assert.Equal(t, []string{"XTA210990Y2696785", "А123БВ777"}, ident.Queries())
	})

	t.Run("identical values collapse to one candidate", func(t *testing.T) {
		ident := models.Identifier{VIN: "XTA210990Y2696785", Plate: "XTA210990Y2696785"}
		assert.Equal(t, []string{"XTA210990Y2696785"}, ident.Queries())
	})

	t.Run("values are trimmed", func(t *testing.T) {
		ident := models.Identifier{VIN: "  XTA210990Y2696785  ", Plate: " А123БВ777 "}
		assert.Equal(t, []string{"XTA210990Y2696785", "А123БВ777"}, ident.Queries())
	})

	t.Run("empty identifier yields no candidates", func(t *testing.T) {
		assert.Empty(t, models.Identifier{}.Queries())
	})
}

func TestCheckResultAnyFound(t *testing.T) {
	result := &models.CheckResult{}
	assert.False(t, result.AnyFound())

	result.Findings = append(result.Findings, models.Finding{Name: "site", URL: "https://example.com"})
	assert.True(t, result.AnyFound())
}
