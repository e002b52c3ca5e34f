package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"hondealz/internal/models"
)

// ErrPredictorUnavailable wraps every transport or non-2xx failure from the
// prediction service. The models are opaque collaborators; callers only get
// a success/error contract.
var ErrPredictorUnavailable = errors.New("prediction service unavailable")

type ImagePrediction struct {
	Model      string  `json:"model"`
	Confidence float64 `json:"confidence"`
}

type PriceEstimate struct {
	PredictedPrice int64 `json:"predicted_price"`
	MinPrice       int64 `json:"min_price"`
	MaxPrice       int64 `json:"max_price"`
}

// PredictorClient calls the external model-serving API that hosts the
// motorcycle image-recognition and price-estimation models.
type PredictorClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewPredictorClient(baseURL, apiKey string) *PredictorClient {
	return &PredictorClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *PredictorClient) SetHTTPClient(hc *http.Client) {
	if hc != nil {
		c.httpClient = hc
	}
}

// RecognizeImage sends the image to the motor-image-recognition model and
// returns the top predicted model label.
func (c *PredictorClient) RecognizeImage(ctx context.Context, filename string, file io.Reader) (*ImagePrediction, error) {
	if strings.TrimSpace(c.baseURL) == "" {
		return nil, fmt.Errorf("%w: base URL not configured", ErrPredictorUnavailable)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ai-models/motor-image-recognition", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.setAuth(req)

	var out ImagePrediction
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if out.Model == "" {
		return nil, fmt.Errorf("%w: empty prediction", ErrPredictorUnavailable)
	}
	return &out, nil
}

// EstimatePrice sends the motor features to the price-estimator model.
func (c *PredictorClient) EstimatePrice(ctx context.Context, form *models.PricePredictRequest) (*PriceEstimate, error) {
	if strings.TrimSpace(c.baseURL) == "" {
		return nil, fmt.Errorf("%w: base URL not configured", ErrPredictorUnavailable)
	}

	b, err := json.Marshal(form)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ai-models/motor-price-estimator", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.setAuth(req)

	var out PriceEstimate
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *PredictorClient) setAuth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *PredictorClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPredictorUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status=%d body=%s", ErrPredictorUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: invalid json: %v", ErrPredictorUnavailable, err)
	}
	return nil
}
