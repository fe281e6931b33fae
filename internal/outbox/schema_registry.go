package outbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const registryContentType = "application/vnd.schemaregistry.v1+json"

// SchemaRegistryClient registers and resolves the JSON schemas for the
// activity and user event streams against a Confluent Schema Registry.
type SchemaRegistryClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewSchemaRegistryClient constructs a client with sane defaults.
func NewSchemaRegistryClient(baseURL string) *SchemaRegistryClient {
	return &SchemaRegistryClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// EnsureSchema resolves the schema ID for a subject, registering the schema
// on first use. Subjects outside the event catalog are rejected so a
// corrupted outbox row cannot create stray registry subjects.
func (c *SchemaRegistryClient) EnsureSchema(ctx context.Context, subject string, schema string) (int, error) {
	if !knownSubject(subject) {
		return 0, fmt.Errorf("subject %q is not in the event catalog", subject)
	}

	if id, err := c.latestVersion(ctx, subject); err == nil {
		return id, nil
	}

	return c.registerVersion(ctx, subject, schema)
}

func (c *SchemaRegistryClient) latestVersion(ctx context.Context, subject string) (int, error) {
	url := fmt.Sprintf("%s/subjects/%s/versions/latest", c.baseURL, subject)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch latest version for %s: %w", subject, err)
	}
	defer resp.Body.Close()

	return decodeSchemaID(resp, subject)
}

func (c *SchemaRegistryClient) registerVersion(ctx context.Context, subject string, schema string) (int, error) {
	body, err := json.Marshal(map[string]any{
		"schemaType": "JSON",
		"schema":     schema,
	})
	if err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/subjects/%s/versions", c.baseURL, subject)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", registryContentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("register schema for %s: %w", subject, err)
	}
	defer resp.Body.Close()

	return decodeSchemaID(resp, subject)
}

func decodeSchemaID(resp *http.Response, subject string) (int, error) {
	if resp.StatusCode == http.StatusNotFound {
		return 0, fmt.Errorf("subject %s has no versions", subject)
	}
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("schema registry returned %d for %s: %s", resp.StatusCode, subject, data)
	}

	var payload struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode registry response for %s: %w", subject, err)
	}
	return payload.ID, nil
}
