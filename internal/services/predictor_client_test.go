package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hondealz/internal/models"
)

func TestRecognizeImageSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ai-models/motor-image-recognition" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"Vario 125","confidence":0.93}`))
	}))
	defer srv.Close()

	c := NewPredictorClient(srv.URL, "test-key")
	pred, err := c.RecognizeImage(context.Background(), "bike.jpg", strings.NewReader("fake-image-bytes"))
	if err != nil {
		t.Fatalf("RecognizeImage: %v", err)
	}
	if pred.Model != "Vario 125" || pred.Confidence != 0.93 {
		t.Fatalf("unexpected prediction %+v", pred)
	}
}

func TestRecognizeImageServerErrorWrapsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewPredictorClient(srv.URL, "")
	if _, err := c.RecognizeImage(context.Background(), "bike.jpg", strings.NewReader("x")); !errors.Is(err, ErrPredictorUnavailable) {
		t.Fatalf("expected ErrPredictorUnavailable, got %v", err)
	}
}

func TestRecognizeImageEmptyPredictionIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"model":"","confidence":0}`))
	}))
	defer srv.Close()

	c := NewPredictorClient(srv.URL, "")
	if _, err := c.RecognizeImage(context.Background(), "bike.jpg", strings.NewReader("x")); !errors.Is(err, ErrPredictorUnavailable) {
		t.Fatalf("expected ErrPredictorUnavailable, got %v", err)
	}
}

func TestEstimatePriceSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ai-models/motor-price-estimator" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("unexpected content type %q", got)
		}
		w.Write([]byte(`{"predicted_price":15500000,"min_price":14000000,"max_price":17000000}`))
	}))
	defer srv.Close()

	c := NewPredictorClient(srv.URL, "")
	est, err := c.EstimatePrice(context.Background(), &models.PricePredictRequest{Model: "Vario 125", Year: 2020})
	if err != nil {
		t.Fatalf("EstimatePrice: %v", err)
	}
	if est.PredictedPrice != 15500000 || est.MinPrice != 14000000 || est.MaxPrice != 17000000 {
		t.Fatalf("unexpected estimate %+v", est)
	}
}

func TestEstimatePriceInvalidJSONIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewPredictorClient(srv.URL, "")
	if _, err := c.EstimatePrice(context.Background(), &models.PricePredictRequest{Model: "Vario 125"}); !errors.Is(err, ErrPredictorUnavailable) {
		t.Fatalf("expected ErrPredictorUnavailable, got %v", err)
	}
}

func TestPredictorWithoutBaseURLIsUnavailable(t *testing.T) {
	c := NewPredictorClient("", "")
	if _, err := c.EstimatePrice(context.Background(), &models.PricePredictRequest{Model: "Vario 125"}); !errors.Is(err, ErrPredictorUnavailable) {
		t.Fatalf("expected ErrPredictorUnavailable, got %v", err)
	}
}
