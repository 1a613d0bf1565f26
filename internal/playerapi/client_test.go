package playerapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestContinuousPlayPrefersUserID(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"slug":"next-ep","title":"Next","is_playable":true}`))
	}))
	defer srv.Close()

	rec, err := New(srv.URL).ContinuousPlay(context.Background(), "this-ep", "station-1", "user-9", false)
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/api/videos/this-ep/continuous-play/" {
		t.Fatalf("path: got %q", gotPath)
	}
	if gotQuery != "user_id=user-9" {
		t.Fatalf("query: got %q, want user_id only", gotQuery)
	}
	if rec.Slug != "next-ep" || !rec.IsPlayable {
		t.Fatalf("recommendation: got %+v", rec)
	}
}

func TestContinuousPlayFallsBackToStationID(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"slug":"s"}`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL).ContinuousPlay(context.Background(), "v", "station-1", "", true); err != nil {
		t.Fatal(err)
	}
	if gotQuery != "passport=true&station_id=station-1" {
		t.Fatalf("query: got %q", gotQuery)
	}
}

func TestContinuousPlayReturnsErrorOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := New(srv.URL).ContinuousPlay(context.Background(), "v", "", "", false); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestServiceAreaChecksTreatErrorsAsOutOfArea(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if c.InServiceArea(context.Background(), "s1", 44.9, -93.2) {
		t.Fatal("coordinate check returned in-area on server error")
	}
	if c.IPInServiceArea(context.Background(), "s1") {
		t.Fatal("ip check returned in-area on server error")
	}
}

func TestServiceAreaCheckParsesAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/check-service-area/s1/44.9/-93.2":
			w.Write([]byte(`{"is_in_service_area":true}`))
		case "/check-ip-service-area/s1":
			w.Write([]byte(`{"ip_is_in_service_area":true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	if !c.InServiceArea(context.Background(), "s1", 44.9, -93.2) {
		t.Fatal("expected in-area from coordinates")
	}
	if !c.IPInServiceArea(context.Background(), "s1") {
		t.Fatal("expected in-area from ip")
	}
}
