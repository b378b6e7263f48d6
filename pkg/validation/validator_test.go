package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name  string `validate:"required"`
	Count int    `validate:"min=0"`
	Mode  string `validate:"omitempty,oneof=fast slow"`
}

func TestStructValid(t *testing.T) {
	assert.NoError(t, Struct(sampleRequest{Name: "ok", Count: 1, Mode: "fast"}))
	assert.NoError(t, Struct(sampleRequest{Name: "ok"}))
}

func TestStructFieldErrors(t *testing.T) {
	err := Struct(sampleRequest{Count: -2, Mode: "warp"})
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 3)

	fields := make(map[string]string, len(verrs))
	for _, ve := range verrs {
		fields[ve.Field] = ve.Message
	}
	assert.Contains(t, fields, "Name")
	assert.Contains(t, fields, "Count")
	assert.Contains(t, fields, "Mode")
	assert.Contains(t, fields["Name"], "required")

	assert.Contains(t, err.Error(), "Name")
}
