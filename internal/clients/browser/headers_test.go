package browser

import (
	"net/http"
	"slices"
	"testing"
)

func TestApply_SetsBrowserHeaders(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	if err != nil {
		t.Fatal(err)
	}
	Apply(req, "http://fund.eastmoney.com/")

	if ua := req.Header.Get("User-Agent"); !slices.Contains(UserAgents, ua) {
		t.Errorf("User-Agent %q not drawn from pool", ua)
	}
	if ref := req.Header.Get("Referer"); ref != "http://fund.eastmoney.com/" {
		t.Errorf("Referer = %q", ref)
	}
}

func TestApply_EmptyRefererOmitted(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	Apply(req, "")
	if _, ok := req.Header["Referer"]; ok {
		t.Error("Referer should not be set when empty")
	}
}
