package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	jwttoken "pactum/internal/jwt_token"
	id "pactum/pkg/domain"
	"pactum/pkg/testutil"
)

// TestContext holds state between test steps. Every scenario gets a fresh
// context: a fresh Ed25519 key pair, freshly registered parties and an empty
// receipt chain, so scenarios never see each other's consent state.
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte

	Signer       *testutil.Signer
	GrantorID    string
	GrantorToken string
	SubjectID    string

	ChainTip        string
	LastReceiptHash string
	ArtifactID      string

	tokens     *jwttoken.JWTService
	issueBase  time.Time
	issueCount int
}

// NewTestContext creates a new test context. The token service signs with
// the same key the server under test was started with, so steps mint their
// own grantor tokens instead of shelling out to tokengen.
func NewTestContext() *TestContext {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	signingKey := os.Getenv("PACTUM_JWT_SIGNING_KEY")
	if signingKey == "" {
		signingKey = "dev-secret-key-change-in-production"
	}

	return &TestContext{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Signer: testutil.NewSigner(),
		tokens: jwttoken.NewJWTService(signingKey, 15*time.Minute),
		// Receipts carry whole-second timestamps and hash over their
		// content, so appends within one scenario space their issue
		// times a second apart, starting safely in the past.
		issueBase: time.Now().UTC().Truncate(time.Second).Add(-10 * time.Minute),
	}
}

// Reset clears all scenario state: a fresh key pair, no registered parties,
// an empty chain. The base URL, HTTP client and token service carry over.
func (tc *TestContext) Reset() {
	tc.LastResponse = nil
	tc.LastResponseBody = nil
	tc.Signer = testutil.NewSigner()
	tc.GrantorID = ""
	tc.GrantorToken = ""
	tc.SubjectID = ""
	tc.ChainTip = ""
	tc.LastReceiptHash = ""
	tc.ArtifactID = ""
	tc.issueBase = time.Now().UTC().Truncate(time.Second).Add(-10 * time.Minute)
	tc.issueCount = 0
}

// POST makes a POST request and stores the response
func (tc *TestContext) POST(path string, body interface{}) error {
	return tc.POSTWithHeaders(path, body, nil)
}

// POSTWithHeaders makes a POST request with optional headers
func (tc *TestContext) POSTWithHeaders(path string, body interface{}, headers map[string]string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), "POST", tc.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	return nil
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(context.Background(), "GET", tc.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	return nil
}

// GetResponseField extracts a field from the JSON response
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}

	return value, nil
}

// ResponseContains checks if the response body contains a field or text
func (tc *TestContext) ResponseContains(text string) bool {
	if strings.Contains(string(tc.LastResponseBody), text) {
		return true
	}

	var data map[string]interface{}
	if err := json.Unmarshal(tc.LastResponseBody, &data); err == nil {
		if _, ok := data[text]; ok {
			return true
		}
	}

	return false
}

// MintGrantorToken mints an access token for the grantor with the shared
// signing key and stores it for AuthHeaders.
func (tc *TestContext) MintGrantorToken(grantorID string) error {
	parsed, err := id.ParseGrantorID(grantorID)
	if err != nil {
		return fmt.Errorf("invalid grantor ID %q: %w", grantorID, err)
	}
	token, _, err := tc.tokens.GenerateGrantorToken(context.Background(), parsed)
	if err != nil {
		return fmt.Errorf("failed to mint grantor token: %w", err)
	}
	tc.GrantorToken = token
	return nil
}

// AuthHeaders returns the Authorization header for the scenario's grantor,
// or no headers when no grantor token has been minted yet.
func (tc *TestContext) AuthHeaders() map[string]string {
	if tc.GrantorToken == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + tc.GrantorToken}
}

// NextIssueTime returns a unique whole-second issue timestamp. Receipts hash
// over their content, so two appends with identical fields must not share an
// issue second.
func (tc *TestContext) NextIssueTime() time.Time {
	t := tc.issueBase.Add(time.Duration(tc.issueCount) * time.Second)
	tc.issueCount++
	return t
}

// Getter methods for step package interfaces

func (tc *TestContext) GetSigner() *testutil.Signer {
	return tc.Signer
}

func (tc *TestContext) GetGrantorID() string {
	return tc.GrantorID
}

func (tc *TestContext) SetGrantorID(grantorID string) {
	tc.GrantorID = grantorID
}

func (tc *TestContext) GetSubjectID() string {
	return tc.SubjectID
}

func (tc *TestContext) SetSubjectID(subjectID string) {
	tc.SubjectID = subjectID
}

func (tc *TestContext) GetChainTip() string {
	return tc.ChainTip
}

func (tc *TestContext) SetChainTip(hash string) {
	tc.ChainTip = hash
}

func (tc *TestContext) GetLastReceiptHash() string {
	return tc.LastReceiptHash
}

func (tc *TestContext) SetLastReceiptHash(hash string) {
	tc.LastReceiptHash = hash
}

func (tc *TestContext) GetArtifactID() string {
	return tc.ArtifactID
}

func (tc *TestContext) SetArtifactID(artifactID string) {
	tc.ArtifactID = artifactID
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}
