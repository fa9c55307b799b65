package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRemoteStore_List(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"d1","name":"Laptop"}]`))
	}))
	defer srv.Close()

	remote := NewRemoteStore(srv.URL, nil)
	records, err := remote.List(context.Background(), CollectionDevices)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if gotPath != "/records?collection=data" {
		t.Errorf("request URI = %q", gotPath)
	}
	if len(records) != 1 || records[0].ID() != "d1" {
		t.Errorf("List() = %v", records)
	}
}

func TestRemoteStore_FailureClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantService bool
	}{
		{"structured 404", 404, `{"error":"Item not found"}`, true},
		{"structured 500", 500, `{"error":"Google Sheet Error"}`, true},
		{"plain 500", 500, "internal server error", false},
		{"html error page", 502, "<html>bad gateway</html>", false},
		{"empty body", 503, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			remote := NewRemoteStore(srv.URL, nil)
			_, err := remote.List(context.Background(), CollectionDevices)
			if err == nil {
				t.Fatal("List() expected error")
			}

			var svcErr *ServiceError
			if errors.As(err, &svcErr) != tt.wantService {
				t.Errorf("error = %v, want ServiceError=%v", err, tt.wantService)
			}
			if tt.wantService && svcErr.Status != tt.status {
				t.Errorf("ServiceError.Status = %d, want %d", svcErr.Status, tt.status)
			}
		})
	}
}

func TestRemoteStore_NetworkErrorIsUnavailable(t *testing.T) {
	// Point at a closed server.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	remote := NewRemoteStore(srv.URL, nil)
	_, err := remote.List(context.Background(), CollectionDevices)

	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Errorf("error = %v, want UnavailableError", err)
	}
}

func TestRemoteStore_WriteAndDelete(t *testing.T) {
	type call struct {
		method string
		uri    string
	}
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.RequestURI()})
		w.WriteHeader(200)
		w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	remote := NewRemoteStore(srv.URL, nil)
	ctx := context.Background()

	if err := remote.Create(ctx, CollectionUsers, Record{"id": "u1"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := remote.Update(ctx, CollectionUsers, Record{"id": "u1"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := remote.Delete(ctx, CollectionUsers, "u 1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	want := []call{
		{"POST", "/records?collection=users"},
		{"PUT", "/records?collection=users"},
		{"DELETE", "/records?collection=users&id=u+1"},
	}
	if len(calls) != len(want) {
		t.Fatalf("got %d calls, want %d", len(calls), len(want))
	}
	for i, c := range calls {
		if c != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, c, want[i])
		}
	}
}
