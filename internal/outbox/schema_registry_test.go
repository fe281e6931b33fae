package outbox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureSchemaReturnsExistingID(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", registryContentType)
		w.Write([]byte(`{"id": 42}`))
	}))
	defer server.Close()

	client := NewSchemaRegistryClient(server.URL)
	id, err := client.EnsureSchema(context.Background(), "activity_events-value", activityCreatedSchema)
	require.NoError(t, err)
	require.Equal(t, 42, id)
	require.Equal(t, []string{"GET /subjects/activity_events-value/versions/latest"}, requests)
}

func TestEnsureSchemaRegistersOnFirstUse(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		require.Equal(t, registryContentType, r.Header.Get("Content-Type"))
		w.Write([]byte(`{"id": 7}`))
	}))
	defer server.Close()

	client := NewSchemaRegistryClient(server.URL)
	id, err := client.EnsureSchema(context.Background(), "user_events-value", userUpsertedSchema)
	require.NoError(t, err)
	require.Equal(t, 7, id)
	require.Equal(t, []string{
		"GET /subjects/user_events-value/versions/latest",
		"POST /subjects/user_events-value/versions",
	}, requests)
}

func TestEnsureSchemaRejectsUnknownSubject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}))
	defer server.Close()

	client := NewSchemaRegistryClient(server.URL)
	_, err := client.EnsureSchema(context.Background(), "payments_events-value", "{}")
	require.ErrorContains(t, err, "not in the event catalog")
}

func TestEnsureSchemaSurfacesRegistryErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("backend unavailable"))
	}))
	defer server.Close()

	client := NewSchemaRegistryClient(server.URL)
	_, err := client.EnsureSchema(context.Background(), "activity_events-value", activityCreatedSchema)
	require.ErrorContains(t, err, "backend unavailable")
}

func TestProducerProvisionsCatalogTopics(t *testing.T) {
	producer := NewKafkaProducer([]string{"localhost:9092"})
	defer producer.Close()

	for _, topic := range []string{"activity_events", "user_events"} {
		writer, ok := producer.writers[topic]
		require.Truef(t, ok, "missing writer for %s", topic)
		require.Equal(t, topic, writer.Topic)
	}
}
