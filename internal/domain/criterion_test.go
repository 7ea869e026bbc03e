package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCriterionType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    CriterionType
		wantErr bool
	}{
		{name: "numeric", input: "numeric", want: CriterionNumeric},
		{name: "mixed case with spaces", input: "  Price ", want: CriterionPrice},
		{name: "select", input: "SELECT", want: CriterionSelect},
		{name: "unknown", input: "color", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCriterionType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownCriterionType))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCriterionTypeClassification(t *testing.T) {
	tests := []struct {
		typ        CriterionType
		scorable   bool
		rangeBased bool
	}{
		{CriterionNumeric, true, true},
		{CriterionBoolean, true, false},
		{CriterionRating, true, false},
		{CriterionText, false, false},
		{CriterionPrice, true, true},
		{CriterionPercentage, true, true},
		{CriterionSelect, false, false},
		{CriterionType("color"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.scorable, tt.typ.Scorable())
			assert.Equal(t, tt.rangeBased, tt.typ.RangeBased())
		})
	}

	for _, typ := range CriterionTypes {
		assert.True(t, typ.Valid(), "listed type %q must be valid", typ)
	}
	assert.False(t, CriterionType("color").Valid())
}

func TestCriterionClone(t *testing.T) {
	lo, hi := 1.0, 10.0
	orig := Criterion{
		ID:      "c1",
		Name:    "Size",
		Type:    CriterionSelect,
		Min:     &lo,
		Max:     &hi,
		Options: []string{"S", "M", "L"},
	}

	clone := orig.Clone()
	*clone.Min = 5
	clone.Options[0] = "XS"

	assert.Equal(t, 1.0, *orig.Min, "Min must not be shared")
	assert.Equal(t, "S", orig.Options[0], "Options must not be shared")
	assert.Equal(t, 10.0, *clone.Max)

	assert.Nil(t, CloneCriteria(nil))
	assert.Len(t, CloneCriteria([]Criterion{orig, orig}), 2)
}
