package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-audience-dashboard/components/audience"
)

func TestHTTPGeneratorGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audiences/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected auth header, got %s", got)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		assert.Equal(t, []string{"Fitness", "Tech"}, req.Interests)
		assert.Equal(t, "Spring Launch", req.Input.CampaignName)
		_ = json.NewEncoder(w).Encode(generateResponse{Audiences: []audience.Record{
			{ID: 1, Name: "Remote Segment", MatchRate: 91, Interests: req.Interests},
		}})
	}))
	t.Cleanup(server.Close)

	gen, err := NewHTTPGenerator(HTTPConfig{BaseURL: server.URL + "/v1/", APIKey: "secret"})
	require.NoError(t, err)
	records, err := gen.Generate(context.Background(), audience.TargetingInput{
		CampaignName: "Spring Launch",
		Interests:    "Fitness, , Tech",
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Remote Segment", records[0].Name)
	assert.Equal(t, 91, records[0].MatchRate)
}

func TestHTTPGeneratorRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	gen, err := NewHTTPGenerator(HTTPConfig{BaseURL: server.URL})
	require.NoError(t, err)
	_, err = gen.Generate(context.Background(), audience.TargetingInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestHTTPGeneratorFailsSessionBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"audiences":[]}`))
	}))
	t.Cleanup(server.Close)

	gen, err := NewHTTPGenerator(HTTPConfig{BaseURL: server.URL})
	require.NoError(t, err)
	store := audience.NewStore(gen)
	t.Cleanup(store.CloseAll)

	session, err := store.Open(context.Background())
	require.NoError(t, err)
	job, err := session.Submit(context.Background(), audience.TargetingInput{Interests: "Fitness"})
	require.NoError(t, err)
	_, err = job.Wait(context.Background())
	assert.True(t, audience.IsGenerationFailed(err))
	assert.Equal(t, audience.TabTargeting, session.Snapshot().ActiveTab)
	assert.NotEmpty(t, session.Snapshot().Error)
}

func TestNewHTTPGeneratorRequiresBaseURL(t *testing.T) {
	_, err := NewHTTPGenerator(HTTPConfig{})
	assert.Error(t, err)
}
