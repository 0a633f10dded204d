package sina

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/bobmcallan/fundwatch/internal/clients/providererr"
	"github.com/bobmcallan/fundwatch/internal/models"
)

func gbk(t *testing.T, s string) []byte {
	t.Helper()
	b, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("encode GBK: %v", err)
	}
	return b
}

func TestGetQuote_ParsesGBKResponse(t *testing.T) {
	payload := gbk(t, `var hq_str_f_000001="华夏成长,1.0778,3.5430,1.0690,2024-01-03,20.1";`)

	var capturedPath, capturedReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedReferer = r.Header.Get("Referer")
		w.Write(payload)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	quote, err := client.GetQuote(context.Background(), "000001")
	if err != nil {
		t.Fatalf("GetQuote failed: %v", err)
	}

	if capturedPath != "/list=f_000001" {
		t.Errorf("expected path /list=f_000001, got %s", capturedPath)
	}
	if capturedReferer != Referer {
		t.Errorf("expected referer %s, got %s", Referer, capturedReferer)
	}
	if quote.Source != models.SourceSecondary {
		t.Errorf("expected source secondary, got %s", quote.Source)
	}
	if quote.Name != "华夏成长" {
		t.Errorf("expected GBK name decoded, got %q", quote.Name)
	}
	if quote.Estimate != 1.0778 || quote.LastNetValue != 1.0690 {
		t.Errorf("unexpected values: %+v", quote)
	}
	want := (1.0778 - 1.0690) / 1.0690 * 100
	if math.Abs(quote.PercentChange-want) > 1e-9 {
		t.Errorf("expected derived percent change %v, got %v", want, quote.PercentChange)
	}
	if quote.Timestamp != "2024-01-03" {
		t.Errorf("unexpected timestamp %q", quote.Timestamp)
	}
}

func TestParseSnapshot_ZeroLastNetValue(t *testing.T) {
	q, err := parseSnapshot("000001", `var hq_str_f_000001="X,1.2,0,0,2024-01-03";`)
	if err != nil {
		t.Fatalf("parseSnapshot failed: %v", err)
	}
	if q.PercentChange != 0 {
		t.Errorf("expected percent change 0 when last net value is 0, got %v", q.PercentChange)
	}
}

func TestParseSnapshot_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"no quotes", `var hq_str_f_000001=;`},
		{"empty record", `var hq_str_f_000001="";`},
		{"too few fields", `var hq_str_f_000001="X,1.0,2.0,1.0";`},
		{"non-numeric estimate", `var hq_str_f_000001="X,abc,2.0,1.0,2024-01-03";`},
		{"non-numeric last net", `var hq_str_f_000001="X,1.0,2.0,,2024-01-03";`},
		{"infinite estimate", `var hq_str_f_000001="X,Inf,2.0,1.0,2024-01-03";`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSnapshot("000001", tt.content)
			if !errors.Is(err, providererr.ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestDecodeGBK_FallsBackToRaw(t *testing.T) {
	if got := decodeGBK([]byte("plain ascii")); got != "plain ascii" {
		t.Errorf("decodeGBK(ascii) = %q", got)
	}
}

func TestGetQuote_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.GetQuote(context.Background(), "000001")
	if !errors.Is(err, providererr.ErrStatus) {
		t.Errorf("expected ErrStatus, got %v", err)
	}
}
