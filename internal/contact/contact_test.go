package contact

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func fastOptions() Options {
	return Options{
		Workers:      4,
		MinDelay:     time.Millisecond,
		FetchTimeout: 2 * time.Second,
	}
}

func TestEnrich_ExtractsContactFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
			<title>First Baptist Church</title>
			<meta name="description" content="A church family in Snellville">
		</head><body>
			<p>Reach us at office@firstbaptist.org or (770) 555-0142.</p>
		</body></html>`)
	}))
	defer server.Close()

	records := NewFetcher(fastOptions()).Enrich(context.Background(), []string{server.URL})
	if len(records) != 1 {
		t.Fatalf("len = %d, want 1", len(records))
	}

	rec := records[0]
	if rec.PageTitle == nil || *rec.PageTitle != "First Baptist Church" {
		t.Errorf("PageTitle = %v", rec.PageTitle)
	}
	if rec.MetaDesc == nil || *rec.MetaDesc != "A church family in Snellville" {
		t.Errorf("MetaDesc = %v", rec.MetaDesc)
	}
	if rec.Email == nil || *rec.Email != "office@firstbaptist.org" {
		t.Errorf("Email = %v", rec.Email)
	}
	if rec.Phone == nil {
		t.Error("Phone = nil")
	}
}

func TestEnrich_PlaceholderEmailIgnored(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>Template: you@example.com, admin@test.com</body></html>`)
	}))
	defer server.Close()

	records := NewFetcher(fastOptions()).Enrich(context.Background(), []string{server.URL})
	if records[0].Email != nil {
		t.Errorf("Email = %q, placeholder address accepted", *records[0].Email)
	}
}

func TestEnrich_OneFetchPerDomain(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, `<html><head><title>Page</title></head><body>hi@real.org</body></html>`)
	}))
	defer server.Close()

	urls := []string{server.URL + "/events/a", server.URL + "/events/b", server.URL + "/events/a"}
	records := NewFetcher(fastOptions()).Enrich(context.Background(), urls)

	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("server hits = %d, want 1 fetch per domain", got)
	}
	// Skipped entries still occupy their input slot.
	if records[1].URL != urls[1] || records[1].PageTitle != nil {
		t.Errorf("skipped record altered: %+v", records[1])
	}
}

func TestEnrich_FailureYieldsEmptyRecord(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer slow.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Good</title></head><body></body></html>`)
	}))
	defer good.Close()

	opts := fastOptions()
	opts.FetchTimeout = 100 * time.Millisecond
	records := NewFetcher(opts).Enrich(context.Background(), []string{slow.URL, good.URL})

	if records[0].PageTitle != nil || records[0].Email != nil {
		t.Errorf("failed fetch produced data: %+v", records[0])
	}
	if records[1].PageTitle == nil || *records[1].PageTitle != "Good" {
		t.Errorf("healthy URL starved by failing one: %+v", records[1])
	}
}

func TestEnrich_FollowsContactLink(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Home</title></head><body>
			<a href="/auth/login">Member Login</a>
			<a href="/contact-us">Contact Us</a>
		</body></html>`)
	})
	mux.HandleFunc("/contact-us", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="mailto:hello@org.example.org">Email us</a></body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	records := NewFetcher(fastOptions()).Enrich(context.Background(), []string{server.URL})
	rec := records[0]
	if rec.Email == nil || *rec.Email != "hello@org.example.org" {
		t.Errorf("Email = %v, contact page not followed", rec.Email)
	}
	// Landing-page fields survive the merge.
	if rec.PageTitle == nil || *rec.PageTitle != "Home" {
		t.Errorf("PageTitle = %v", rec.PageTitle)
	}
}

func TestEnrich_AuthLinksNotFollowed(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		fmt.Fprint(w, `<html><body><a href="/login">Contact support via login</a></body></html>`)
	}))
	defer server.Close()

	NewFetcher(fastOptions()).Enrich(context.Background(), []string{server.URL})
	for _, p := range paths {
		if strings.Contains(p, "login") {
			t.Errorf("crawled auth path %q", p)
		}
	}
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"office@firstbaptist.org", true},
		{"you@example.com", false},
		{"a@test.com", false},
		{"logo@2x.png", false},
		{"not-an-email", false},
	}
	for _, tt := range tests {
		if got := validEmail(tt.addr); got != tt.want {
			t.Errorf("validEmail(%q) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}
