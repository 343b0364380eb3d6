package shared

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var payload struct {
		Born *Date `json:"born"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"born":"1906-10-10"}`), &payload))
	require.NotNil(t, payload.Born)
	assert.Equal(t, time.Date(1906, 10, 10, 0, 0, 0, 0, time.UTC), payload.Born.Time)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"born":"1906-10-10"}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"born":"2020-05-01T10:30:00Z"}`), &payload))
	out, err = json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"born":"2020-05-01T10:30:00Z"}`, string(out))
}

func TestDateRejectsGarbage(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`12`), &d))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(1997, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1997-04-01", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())
}
