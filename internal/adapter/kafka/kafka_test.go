package kafka

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2017, 3, 1, 0, 0, 0, 0, time.UTC)
	payload := []domain.LocationMean{{Location: "Dongsi", MeanPM25: 86.2}}

	msg, err := serializeToMessage(domain.ViewHighestAverages, payload, now)
	require.NoError(t, err)

	assert.Equal(t, []byte("highest-averages"), msg.Key)
	assert.Contains(t, string(msg.Value), `"location":"Dongsi"`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "view", msg.Headers[0].Key)
	assert.Equal(t, []byte("highest-averages"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeToMessage_Unencodable(t *testing.T) {
	_, err := serializeToMessage("bad", math.NaN(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad view")
}

func TestViewMessages_OnePerView(t *testing.T) {
	views := &domain.Views{
		GeneratedAt: time.Date(2017, 3, 1, 0, 0, 0, 0, time.UTC),
		PoorQuality: []domain.LocationCount{{Location: "Dongsi", Count: 3}},
		RFM:         domain.RFMView{Scores: []domain.RFMScore{}, Skipped: []domain.SkippedLocation{}},
	}

	msgs, err := viewMessages(views)
	require.NoError(t, err)
	require.Len(t, msgs, len(domain.ViewNames()))

	for i, name := range domain.ViewNames() {
		assert.Equal(t, name, string(msgs[i].Key))
		assert.True(t, json.Valid(msgs[i].Value), "view %s", name)
	}

	var counts []domain.LocationCount
	require.NoError(t, json.Unmarshal(msgs[1].Value, &counts))
	assert.Equal(t, views.PoorQuality, counts)
}
