package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/patient/abraham-001" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"compositions":[{"weight":71.2}],"biometrics":[{"bpm":58}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	record, err := client.FetchRecord(context.Background(), "abraham-001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(record.Compositions) != 1 || record.Compositions[0].Weight == nil || *record.Compositions[0].Weight != 71.2 {
		t.Fatalf("unexpected compositions: %+v", record.Compositions)
	}
	if len(record.Biometrics) != 1 || record.Biometrics[0].BPM == nil || *record.Biometrics[0].BPM != 58 {
		t.Fatalf("unexpected biometrics: %+v", record.Biometrics)
	}
}

func TestFetchRecordEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	record, err := NewClient(srv.URL).FetchRecord(context.Background(), "abraham-001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// absence of every array is legal; defaults are the normalizer's job
	if len(record.Compositions) != 0 || len(record.Biometrics) != 0 || len(record.Metrics) != 0 {
		t.Fatalf("expected empty record, got %+v", record)
	}
}

func TestFetchRecordNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).FetchRecord(context.Background(), "missing"); err == nil {
		t.Fatal("expected an error for a 404 response")
	}
}

func TestFetchRecordMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).FetchRecord(context.Background(), "abraham-001"); err == nil {
		t.Fatal("expected an error for a malformed body")
	}
}

func TestFetchRecordConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	if _, err := NewClient(srv.URL).FetchRecord(context.Background(), "abraham-001"); err == nil {
		t.Fatal("expected a transport error")
	}
}
