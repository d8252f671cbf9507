package dataset

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"affair-radar/internal/common"
	"affair-radar/internal/features"
)

const seltermanCSV = `age,gender,relationship_satisfaction,love,desire,relationship_length_months,had_infidelity
28,1,5.5,6.0,4.5,30,0
34,0,2.0,2.5,3.0,96,1
`

func newOSFServer(t *testing.T, node, filename, csv string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/nodes/"+node+"/files/osfstorage/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.api+json")
		fmt.Fprintf(w, `{"data":[
			{"attributes":{"name":"codebook.pdf","kind":"file"},"links":{"download":"%s/download/codebook.pdf"}},
			{"attributes":{"name":"%s","kind":"file"},"links":{"download":"%s/download/%s"}}
		]}`, srv.URL, filename, srv.URL, filename)
	})
	mux.HandleFunc("/download/"+filename, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, csv)
	})
	return srv
}

func TestFetcherSelterman(t *testing.T) {
	t.Parallel()

	srv := newOSFServer(t, osfNodeSelterman, "study1_data.csv", seltermanCSV)
	f := NewFetcher(srv.URL, 5*time.Second)

	rows, err := f.Selterman(context.Background())
	if err != nil {
		t.Fatalf("Selterman: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Source != common.SourceSelterman {
		t.Errorf("source = %q", rows[0].Source)
	}
	if rows[0].Label == nil || *rows[0].Label != 0 {
		t.Errorf("first label = %v, want 0", rows[0].Label)
	}
	if rows[1].Label == nil || *rows[1].Label != 1 {
		t.Errorf("second label = %v, want 1", rows[1].Label)
	}
	if got := rows[0].Features[features.YearsInRelationship]; got != 2.5 {
		t.Errorf("years = %v, want 2.5", got)
	}
}

func TestFetcherFair(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	mux.HandleFunc("/fair.csv", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "rate_marriage,age,yrs_married,children,religious,educ,occupation,occupation_husb,affairs\n"+
			"4,32,9,2,3,16,4,5,0\n"+
			"2,27,6,0,1,12,3,4,2.5\n")
	})

	f := NewFetcher(srv.URL, 5*time.Second)
	f.fairURL = srv.URL + "/fair.csv"

	rows, err := f.Fair(context.Background())
	if err != nil {
		t.Fatalf("Fair: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Label == nil || *rows[0].Label != 0 {
		t.Errorf("first label = %v, want 0", rows[0].Label)
	}
	if rows[1].Label == nil || *rows[1].Label != 1 {
		t.Errorf("second label = %v, want 1", rows[1].Label)
	}
	if got := rows[1].Features[features.HasChildren]; got != 0 {
		t.Errorf("has_children = %v, want 0", got)
	}
}

func TestFetcherNoCSVInListing(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	mux.HandleFunc("/nodes/"+osfNodeReinhardt+"/files/osfstorage/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.api+json")
		fmt.Fprint(w, `{"data":[{"attributes":{"name":"readme.md","kind":"file"},"links":{"download":"x"}}]}`)
	})

	f := NewFetcher(srv.URL, 5*time.Second)
	_, err := f.Reinhardt(context.Background())
	if err == nil {
		t.Fatal("expected error when the project holds no CSV")
	}
	if !strings.Contains(err.Error(), "no CSV") {
		t.Errorf("error = %v", err)
	}
}

func TestFetcherServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(srv.URL, 5*time.Second)
	if _, err := f.Selterman(context.Background()); err == nil {
		t.Error("expected error on server failure")
	}
}

func TestParseNumericCSV(t *testing.T) {
	t.Parallel()

	records, err := parseNumericCSV(strings.NewReader("a,b,c\n1,x,3.5\n,2,\n"))
	if err != nil {
		t.Fatalf("parseNumericCSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0]["a"] != 1 || records[0]["c"] != 3.5 {
		t.Errorf("record 0 = %v", records[0])
	}
	if _, ok := records[0]["b"]; ok {
		t.Error("non-numeric cell must be absent")
	}
	if _, ok := records[1]["a"]; ok {
		t.Error("empty cell must be absent")
	}
	if records[1]["b"] != 2 {
		t.Errorf("record 1 = %v", records[1])
	}
}
