package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestBuildInteractionDoc(t *testing.T) {
	hackathonID := uint64(9)
	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	body, err := BuildInteractionDoc(models.UserInteraction{
		ID:          3,
		UserID:      4,
		HackathonID: &hackathonID,
		Type:        models.InteractionView,
		Tags:        datatypes.JSONSlice[string]{"ai", "web"},
		Mode:        "online",
		CreatedAt:   created,
	})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, float64(4), doc["user_id"])
	assert.Equal(t, float64(9), doc["hackathon_id"])
	assert.Equal(t, "view", doc["type"])
	assert.Equal(t, []any{"ai", "web"}, doc["tags"])
	assert.NotContains(t, doc, "query")
}

func TestBuildInteractionDoc_EmptyTags(t *testing.T) {
	body, err := BuildInteractionDoc(models.UserInteraction{UserID: 1, Type: models.InteractionSearch})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"tags":[]`)
	assert.NotContains(t, string(body), "hackathon_id")
}

func TestEnsureIndex_CreatesMissingIndex(t *testing.T) {
	var mu sync.Mutex
	var calls []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			_, _ = w.Write([]byte(`{"acknowledged":true,"index":"interactions"}`))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)

	client, err := Connect(srv.URL)
	require.NoError(t, err)

	require.NoError(t, EnsureIndex(context.Background(), client, "interactions"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"HEAD /interactions", "PUT /interactions"}, calls)
}
