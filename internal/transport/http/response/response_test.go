package response

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorDefaultsAndOverrides(t *testing.T) {
	assert.Equal(t, "Forbidden access", Error(http.StatusForbidden, "").Message)
	assert.Equal(t, "Seller not found", Error(http.StatusNotFound, "Seller not found").Message)
}

func TestNewListNeverEncodesNull(t *testing.T) {
	b, err := json.Marshal(NewList[map[string]any](0, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":0,"data":[]}`, string(b))
}
