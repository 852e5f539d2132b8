package reviewclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/codereview/pkg/models"
)

// Sentinel errors for analysis service failures.
var (
	ErrServiceUnreachable = errors.New("analysis service unreachable")
	ErrServiceTimeout     = errors.New("analysis service timeout")
	ErrUnexpectedStatus   = errors.New("analysis service returned an error")
	ErrMalformedResponse  = errors.New("analysis service returned a malformed response")
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 16 << 20

// Client is the interface for talking to the analysis service.
type Client interface {
	Analyze(ctx context.Context, fileName string, content []byte) (models.AnalysisResult, error)
	GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error)
	ListReviews(ctx context.Context, req ListReviewsRequest) (*ReviewPage, error)
	Health(ctx context.Context) error
}

// ListReviewsRequest defines filters for listing stored reviews.
type ListReviewsRequest struct {
	FileName string
	Page     int
	Limit    int
}

// ReviewPage is one page of stored reviews.
type ReviewPage struct {
	Reviews []models.ReviewSummary
	Page    int
	Limit   int
	Total   int
	HasNext bool
}

// HTTPClient implements Client using the service's HTTP API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient creates a new analysis service HTTP client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Analyze uploads content as a multipart "file" part named fileName and
// decodes the resulting AnalysisResult.
func (c *HTTPClient) Analyze(ctx context.Context, fileName string, content []byte) (models.AnalysisResult, error) {
	body, contentType, err := multipartBody(fileName, content)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("building upload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/analyze", body)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return models.AnalysisResult{}, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.AnalysisResult{}, statusError(resp)
	}

	var result models.AnalysisResult
	if err := decodeData(resp.Body, &result); err != nil {
		return models.AnalysisResult{}, err
	}
	if err := validateResult(result); err != nil {
		return models.AnalysisResult{}, err
	}
	result.Normalize()
	return result, nil
}

func (c *HTTPClient) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	u := fmt.Sprintf("%s/api/v1/reviews/%s", c.baseURL, url.PathEscape(id.String()))

	resp, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var review models.Review
	if err := decodeData(resp.Body, &review); err != nil {
		return nil, err
	}
	review.Result.Normalize()
	return &review, nil
}

func (c *HTTPClient) ListReviews(ctx context.Context, req ListReviewsRequest) (*ReviewPage, error) {
	params := url.Values{}
	if req.FileName != "" {
		params.Set("file_name", req.FileName)
	}
	if req.Page > 0 {
		params.Set("page", strconv.Itoa(req.Page))
	}
	if req.Limit > 0 {
		params.Set("limit", strconv.Itoa(req.Limit))
	}
	u := c.baseURL + "/api/v1/reviews"
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	resp, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var env struct {
		Data []models.ReviewSummary `json:"data"`
		Meta struct {
			Page    int  `json:"page"`
			Limit   int  `json:"limit"`
			Total   int  `json:"total"`
			HasNext bool `json:"has_next"`
		} `json:"meta"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decoding review list: %v", ErrMalformedResponse, err)
	}

	return &ReviewPage{
		Reviews: env.Data,
		Page:    env.Meta.Page,
		Limit:   env.Meta.Limit,
		Total:   env.Meta.Total,
		HasNext: env.Meta.HasNext,
	}, nil
}

func (c *HTTPClient) Health(ctx context.Context) error {
	resp, err := c.get(ctx, c.baseURL+"/api/v1/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, u string) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	return resp, nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
}

func multipartBody(fileName string, content []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	h.Set("Content-Type", "application/octet-stream")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// decodeData decodes either the {"data": ...} envelope or a bare object.
func decodeData(r io.Reader, v any) error {
	raw, err := io.ReadAll(io.LimitReader(r, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: reading body: %v", ErrMalformedResponse, err)
	}

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	payload := raw
	if len(env.Data) > 0 && string(env.Data) != "null" {
		payload = env.Data
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func validateResult(r models.AnalysisResult) error {
	for i, issue := range r.Issues {
		if issue.Line < 1 {
			return fmt.Errorf("%w: issue %d has non-positive line %d", ErrMalformedResponse, i, issue.Line)
		}
	}
	return nil
}

// statusError reads the service's error envelope into a descriptive error.
func statusError(resp *http.Response) error {
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &env) == nil && env.Error.Message != "" {
		return fmt.Errorf("%w: status %d %s: %s", ErrUnexpectedStatus, resp.StatusCode, env.Error.Code, env.Error.Message)
	}
	return fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrServiceTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("request cancelled: %w", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrServiceTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrServiceUnreachable, err)
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
