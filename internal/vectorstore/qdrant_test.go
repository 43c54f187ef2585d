package vectorstore

import (
	"context"
	"net/url"
	"reflect"
	"strconv"
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

// TestQdrantURLParsing tests the URL parsing logic NewQdrantStore uses without
// creating a real client, avoiding connection warnings in unit tests.
func TestQdrantURLParsing(t *testing.T) {
	tests := []struct {
		name     string
		urlStr   string
		wantHost string
		wantPort int
	}{
		{
			name:     "default qdrant port",
			urlStr:   "http://localhost:6333",
			wantHost: "localhost",
			wantPort: 6334, // gRPC port is HTTP port + 1
		},
		{
			name:     "custom port",
			urlStr:   "http://qdrant.internal:9000",
			wantHost: "qdrant.internal",
			wantPort: 9001,
		},
		{
			name:     "no port falls back to grpc default",
			urlStr:   "http://localhost",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:     "no hostname falls back to localhost",
			urlStr:   "http://:6333",
			wantHost: "localhost",
			wantPort: 6334,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsedURL, err := url.Parse(tt.urlStr)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			host := parsedURL.Hostname()
			if host == "" {
				host = "localhost"
			}
			port := 6334
			if parsedURL.Port() != "" {
				httpPort, err := strconv.Atoi(parsedURL.Port())
				if err == nil {
					port = httpPort + 1
				}
			}

			if host != tt.wantHost {
				t.Errorf("host = %q, want %q", host, tt.wantHost)
			}
			if port != tt.wantPort {
				t.Errorf("port = %d, want %d", port, tt.wantPort)
			}
		})
	}
}

func TestQdrantStore_Upsert_EmptyPoints(t *testing.T) {
	// Early return must not touch the client.
	store := &QdrantStore{}
	if err := store.Upsert(context.Background(), "observations", nil); err != nil {
		t.Errorf("Upsert() with no points should return early, got: %v", err)
	}
}

func TestQdrantStore_Delete_EmptyIDs(t *testing.T) {
	store := &QdrantStore{}
	if err := store.Delete(context.Background(), "observations", nil); err != nil {
		t.Errorf("Delete() with no ids should return early, got: %v", err)
	}
}

func TestQdrantStore_Search_InvalidK(t *testing.T) {
	store := &QdrantStore{}
	if _, err := store.Search(context.Background(), "observations", []float32{1, 2}, 0, nil); err == nil {
		t.Error("Search() with k=0 should return error")
	}
	if _, err := store.Search(context.Background(), "observations", []float32{1, 2}, -1, nil); err == nil {
		t.Error("Search() with k=-1 should return error")
	}
}

func TestConvertValue(t *testing.T) {
	tests := []struct {
		name  string
		value *qdrant.Value
		want  any
	}{
		{"bool", &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: true}}, true},
		{"integer", &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: 42}}, int64(42)},
		{"double", &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: 0.5}}, 0.5},
		{"string", &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: "coding"}}, "coding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := convertValue(tt.value); got != tt.want {
				t.Errorf("convertValue() = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestConvertPayloadToMap(t *testing.T) {
	payload := map[string]*qdrant.Value{
		"capture_id": {Kind: &qdrant.Value_IntegerValue{IntegerValue: 7}},
		"date":       {Kind: &qdrant.Value_StringValue{StringValue: "2026-08-29"}},
		"task":       {Kind: &qdrant.Value_StringValue{StringValue: "Coding"}},
		"missing":    nil,
	}

	got := convertPayloadToMap(payload)
	want := map[string]any{
		"capture_id": int64(7),
		"date":       "2026-08-29",
		"task":       "Coding",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("convertPayloadToMap() = %v, want %v", got, want)
	}
}
