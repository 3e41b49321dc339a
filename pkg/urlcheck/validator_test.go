package urlcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"travelmind-be/pkg/travel"

	"github.com/stretchr/testify/assert"
)

func TestIsWellFormed(t *testing.T) {
	v := NewValidator(Config{}, nil)

	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com", true},
		{"http://example.com/path?q=1", true},
		{"https://example.com/museums/prado", true},
		{"not-a-url", false},
		{"ftp://files.example.com", false},
		{"mailto:someone@example.com", false},
		{"//example.com", false},
		{"https://", false},
		{"", false},
		{"   ", false},
		{"javascript:alert(1)", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, v.IsWellFormed(tt.url))
		})
	}
}

func TestFilterKeepsOrderAndDropsJunk(t *testing.T) {
	v := NewValidator(Config{}, nil)

	got := v.Filter(context.Background(), []string{"https://example.com", "not-a-url", "ftp://x"})
	assert.Equal(t, []string{"https://example.com"}, got)

	got = v.Filter(context.Background(), []string{
		"https://b.example.com",
		"https://a.example.com",
		"garbage",
	})
	assert.Equal(t, []string{"https://b.example.com", "https://a.example.com"}, got)

	assert.Nil(t, v.Filter(context.Background(), nil))
	assert.Nil(t, v.Filter(context.Background(), []string{"junk", "more junk"}))
}

func TestFilterWithProbe(t *testing.T) {
	okSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer okSrv.Close()

	goneSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer goneSrv.Close()

	// Server that rejects HEAD but answers GET
	getOnlySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer getOnlySrv.Close()

	v := NewValidator(Config{ProbeEnabled: true}, nil)

	got := v.Filter(context.Background(), []string{okSrv.URL, goneSrv.URL, getOnlySrv.URL})
	assert.Equal(t, []string{okSrv.URL, getOnlySrv.URL}, got)
}

func TestFilterProbeCapped(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := NewValidator(Config{ProbeEnabled: true, MaxProbes: 2}, nil)

	urls := []string{srv.URL + "/a", srv.URL + "/b", srv.URL + "/c", srv.URL + "/d"}
	got := v.Filter(context.Background(), urls)

	// Past the cap only syntax is checked, so all four survive
	assert.Len(t, got, 4)
	assert.Equal(t, 2, hits)
}

func TestFilterPlanWalksEverySourceList(t *testing.T) {
	v := NewValidator(Config{}, nil)

	plan := &travel.Plan{
		Itinerary: []travel.ItineraryDay{
			{
				DayNumber: 1,
				Activities: []travel.Activity{
					{
						Name: "Museum",
						Enrichment: &travel.Enrichment{
							Sources:    []string{"https://museum.example.com", "definitely not a url"},
							BookingURL: "not-a-url",
							HotelExamples: []travel.HotelExample{
								{Name: "Hotel A", BookingURL: "https://hotels.example.com/a"},
								{Name: "Hotel B", BookingURL: "broken"},
							},
						},
					},
					{Name: "Unenriched walk"},
				},
			},
		},
		TransportToDestination: &travel.TransportEnrichment{
			Sources: []string{"ftp://nope", "https://flights.example.com"},
			Options: []travel.TransportOption{
				{Mode: "flight", BookingURL: "https://book.example.com"},
				{Mode: "train", BookingURL: "rail://weird"},
			},
		},
	}

	v.FilterPlan(context.Background(), plan)

	enr := plan.Itinerary[0].Activities[0].Enrichment
	assert.Equal(t, []string{"https://museum.example.com"}, enr.Sources)
	assert.Empty(t, enr.BookingURL)
	assert.Equal(t, "https://hotels.example.com/a", enr.HotelExamples[0].BookingURL)
	assert.Empty(t, enr.HotelExamples[1].BookingURL)

	tr := plan.TransportToDestination
	assert.Equal(t, []string{"https://flights.example.com"}, tr.Sources)
	assert.Equal(t, "https://book.example.com", tr.Options[0].BookingURL)
	assert.Empty(t, tr.Options[1].BookingURL)

	// Nil plan is a no-op, not a panic
	v.FilterPlan(context.Background(), nil)
}
