package resources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	console "github.com/sipcha/console-go"
	"github.com/sipcha/console-go/gateway"
)

type staticTokens struct{ tok string }

func (s staticTokens) Token() (string, bool) { return s.tok, s.tok != "" }

func newGateway(t *testing.T, handler http.Handler) *gateway.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return gateway.New(srv.URL, staticTokens{tok: "tok"})
}

func TestNumbers_List(t *testing.T) {
	gw := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/twilio/numbers" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []console.Number{
			{ID: "PN1", E164: "+16045551234", Label: "support line"},
		}})
	}))

	nums, err := NewNumbers(gw).List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(nums) != 1 || nums[0].E164 != "+16045551234" {
		t.Errorf("List() = %v, want one number", nums)
	}
}

func TestNumbers_UnauthorizedDegradesToEmpty(t *testing.T) {
	gw := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	nums, err := NewNumbers(gw).List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v, want empty-result degradation", err)
	}
	if len(nums) != 0 {
		t.Errorf("List() = %v, want empty", nums)
	}
}

func TestNumbers_BackendFailurePropagates(t *testing.T) {
	gw := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	if _, err := NewNumbers(gw).List(context.Background()); err == nil {
		t.Fatal("List() expected error for non-auth backend failure")
	}
}

func TestDomains_List(t *testing.T) {
	gw := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/twilio/sip/domains" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []console.SIPDomain{
			{SID: "SD1", DomainName: "acme.sip.example.com", FriendlyName: "acme"},
		}})
	}))

	doms, err := NewDomains(gw).List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(doms) != 1 || doms[0].DomainName != "acme.sip.example.com" {
		t.Errorf("List() = %v, want one domain", doms)
	}
}

func TestDomains_UnauthorizedDegradesToEmpty(t *testing.T) {
	gw := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	doms, err := NewDomains(gw).List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v, want empty-result degradation", err)
	}
	if len(doms) != 0 {
		t.Errorf("List() = %v, want empty", doms)
	}
}
