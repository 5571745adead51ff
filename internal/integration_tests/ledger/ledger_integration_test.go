package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	artifacthandler "pactum/internal/artifact/handler"
	artifactservice "pactum/internal/artifact/service"
	artifactstore "pactum/internal/artifact/store"
	ingesthandler "pactum/internal/ingest/handler"
	ingestservice "pactum/internal/ingest/service"
	ingeststore "pactum/internal/ingest/store"
	jwttoken "pactum/internal/jwt_token"
	ledgerhandler "pactum/internal/ledger/handler"
	ledgerservice "pactum/internal/ledger/service"
	ledgerstore "pactum/internal/ledger/store"
	partyhandler "pactum/internal/party/handler"
	partyservice "pactum/internal/party/service"
	partystore "pactum/internal/party/store"
	reusehandler "pactum/internal/reuse/handler"
	reuseservice "pactum/internal/reuse/service"
	reusestore "pactum/internal/reuse/store"
	id "pactum/pkg/domain"
	"pactum/pkg/platform/middleware/auth"
	"pactum/pkg/testutil"
)

// SetupSuite assembles the ledger surface over in-memory stores with the
// production handler wiring: public reads mounted directly, mutations behind
// RequireAuth. Mirrors the router assembly without the full middleware chain
// so failures point at handler/service seams, not transport plumbing.
func SetupSuite(t *testing.T) (*chi.Mux, *jwttoken.JWTService, *testutil.Signer) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	parties := partystore.New()
	receipts := ledgerstore.New()
	ingests := ingeststore.New()
	artifacts := artifactstore.New()
	reuses := reusestore.New()

	partySvc := partyservice.New(parties, partyservice.WithLogger(logger))
	ledgerSvc := ledgerservice.New(receipts, partySvc, ledgerservice.WithLogger(logger))
	artifactSvc := artifactservice.New(artifacts, artifactservice.WithLogger(logger))
	ingestSvc := ingestservice.New(ingests, partySvc, ledgerSvc, artifactSvc, ingestservice.WithLogger(logger))
	reuseSvc := reuseservice.New(reuses, artifactSvc, reuseservice.WithLogger(logger))

	jwtService := jwttoken.NewJWTService("integration-test-key", 15*time.Minute)
	jwtValidator := jwttoken.NewJWTServiceAdapter(jwtService)

	router := chi.NewRouter()
	partyhandler.New(partySvc, logger).Register(router)
	ledgerHandler := ledgerhandler.New(ledgerSvc, logger)
	ledgerHandler.Register(router)
	artifactHandler := artifacthandler.New(artifactSvc, logger)
	artifactHandler.Register(router)

	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtValidator, nil, logger))
		ledgerHandler.RegisterProtected(r)
		artifactHandler.RegisterProtected(r)
		ingesthandler.New(ingestSvc, logger).RegisterProtected(r)
		reusehandler.New(reuseSvc, logger).RegisterProtected(r)
	})

	return router, jwtService, signerFor(t)
}

// Per-test signers keep grantor keys independent across test functions.
func signerFor(t *testing.T) *testutil.Signer {
	t.Helper()
	return testutil.NewSigner()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

// registerGrantor registers a grantor carrying the signer's key and mints a
// bearer token for it.
func registerGrantor(t *testing.T, router http.Handler, jwtService *jwttoken.JWTService, signer *testutil.Signer, name string) (id.GrantorID, string) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/parties", map[string]any{
		"kind":         "grantor",
		"display_name": name,
		"public_key":   base64.StdEncoding.EncodeToString(signer.Public),
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &resp)
	grantorID, err := id.ParseGrantorID(resp.ID)
	require.NoError(t, err)

	token, _, err := jwtService.GenerateGrantorToken(context.Background(), grantorID)
	require.NoError(t, err)
	return grantorID, token
}

func registerSubject(t *testing.T, router http.Handler, name string) id.SubjectID {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/parties", map[string]any{
		"kind":         "subject",
		"display_name": name,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &resp)
	subjectID, err := id.ParseSubjectID(resp.ID)
	require.NoError(t, err)
	return subjectID
}

// appendReceipt signs and appends a receipt over HTTP, returning its hash.
func appendReceipt(t *testing.T, router http.Handler, token string, receipt *receiptFixture) id.ReceiptHash {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/receipts", receipt.request(), token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ReceiptHash string `json:"receipt_hash"`
	}
	decodeBody(t, rec, &resp)
	hash, err := id.ParseReceiptHash(resp.ReceiptHash)
	require.NoError(t, err)
	return hash
}

// receiptFixture bundles a built receipt with its wire form.
type receiptFixture struct {
	subjectID  id.SubjectID
	grantorID  id.GrantorID
	scope      []string
	extractive bool
	issuedAt   time.Time
	expiresAt  *time.Time
	prevHash   id.ReceiptHash
	signature  []byte
}

func buildReceipt(t *testing.T, signer *testutil.Signer, subjectID id.SubjectID, grantorID id.GrantorID, mutate ...func(*testutil.ReceiptBuilder) *testutil.ReceiptBuilder) *receiptFixture {
	t.Helper()
	builder := testutil.NewReceiptBuilder(signer).WithSubject(subjectID).WithGrantor(grantorID)
	for _, m := range mutate {
		builder = m(builder)
	}
	receipt, err := builder.Build()
	require.NoError(t, err)
	return &receiptFixture{
		subjectID:  receipt.SubjectID,
		grantorID:  receipt.GrantorID,
		scope:      receipt.Scope,
		extractive: receipt.Extractive,
		issuedAt:   receipt.IssuedAt,
		expiresAt:  receipt.ExpiresAt,
		prevHash:   receipt.PrevHash,
		signature:  receipt.Signature,
	}
}

func (f *receiptFixture) request() map[string]any {
	req := map[string]any{
		"subject_id": f.subjectID.String(),
		"grantor_id": f.grantorID.String(),
		"scope":      f.scope,
		"extractive": f.extractive,
		"issued_at":  f.issuedAt.Format(time.RFC3339),
		"prev_hash":  f.prevHash.String(),
		"signature":  base64.StdEncoding.EncodeToString(f.signature),
	}
	if f.expiresAt != nil {
		req["expires_at"] = f.expiresAt.Format(time.RFC3339)
	}
	return req
}

func TestCompleteConsentFlow(t *testing.T) {
	router, jwtService, signer := SetupSuite(t)

	grantorID, token := registerGrantor(t, router, jwtService, signer, "Flow Grantor")
	subjectID := registerSubject(t, router, "Flow Subject")

	// Genesis receipt.
	genesis := buildReceipt(t, signer, subjectID, grantorID,
		func(b *testutil.ReceiptBuilder) *testutil.ReceiptBuilder {
			return b.Extractive(true)
		})
	genesisHash := appendReceipt(t, router, token, genesis)

	// The appended receipt reads back with its anchor position assigned.
	rec := doJSON(t, router, http.MethodGet, "/receipts/"+genesisHash.String(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stored struct {
		ReceiptHash    string   `json:"receipt_hash"`
		SubjectID      string   `json:"subject_id"`
		Scope          []string `json:"scope"`
		AnchorPosition int64    `json:"anchor_position"`
	}
	decodeBody(t, rec, &stored)
	require.Equal(t, genesisHash.String(), stored.ReceiptHash)
	require.Equal(t, subjectID.String(), stored.SubjectID)
	require.Equal(t, []string{"analytics", "billing"}, stored.Scope)
	require.GreaterOrEqual(t, stored.AnchorPosition, int64(1))

	// Active before any revocation.
	rec = doJSON(t, router, http.MethodGet, "/receipts/"+genesisHash.String()+"/status", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var status struct {
		Status string `json:"status"`
	}
	decodeBody(t, rec, &status)
	require.Equal(t, "active", status.Status)

	// A second link extends the chain.
	second := buildReceipt(t, signer, subjectID, grantorID,
		func(b *testutil.ReceiptBuilder) *testutil.ReceiptBuilder {
			return b.WithPrevHash(genesisHash).IssuedAt(testutil.BaseTime.Add(time.Minute)).WithScope("analytics")
		})
	secondHash := appendReceipt(t, router, token, second)
	require.NotEqual(t, genesisHash, secondHash)

	// Revoke the genesis receipt.
	rec = doJSON(t, router, http.MethodPost, "/receipts/"+genesisHash.String()+"/revocation", map[string]any{
		"signature": base64.StdEncoding.EncodeToString(signer.SignRevocation(genesisHash)),
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var revocation struct {
		ReceiptHash string    `json:"receipt_hash"`
		RevokedAt   time.Time `json:"revoked_at"`
	}
	decodeBody(t, rec, &revocation)
	require.Equal(t, genesisHash.String(), revocation.ReceiptHash)
	require.False(t, revocation.RevokedAt.IsZero())

	rec = doJSON(t, router, http.MethodGet, "/receipts/"+genesisHash.String()+"/status", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeBody(t, rec, &status)
	require.Equal(t, "revoked", status.Status)

	// Revocation of one link leaves the rest of the chain intact and valid.
	rec = doJSON(t, router, http.MethodGet, "/receipts/"+secondHash.String()+"/status", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeBody(t, rec, &status)
	require.Equal(t, "active", status.Status)

	rec = doJSON(t, router, http.MethodGet, "/subjects/"+subjectID.String()+"/chain", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report struct {
		Length int  `json:"length"`
		Valid  bool `json:"valid"`
	}
	decodeBody(t, rec, &report)
	require.True(t, report.Valid, rec.Body.String())
	require.Equal(t, 2, report.Length)

	rec = doJSON(t, router, http.MethodGet, "/subjects/"+subjectID.String()+"/receipts", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var chain struct {
		Receipts []struct {
			ReceiptHash string `json:"receipt_hash"`
			PrevHash    string `json:"prev_hash"`
		} `json:"receipts"`
	}
	decodeBody(t, rec, &chain)
	require.Len(t, chain.Receipts, 2)
	require.Equal(t, genesisHash.String(), chain.Receipts[0].ReceiptHash)
	require.Equal(t, genesisHash.String(), chain.Receipts[1].PrevHash)
}

func TestAppendRejectsStaleChainHead(t *testing.T) {
	router, jwtService, signer := SetupSuite(t)

	grantorID, token := registerGrantor(t, router, jwtService, signer, "Chain Grantor")
	subjectID := registerSubject(t, router, "Chain Subject")

	genesis := buildReceipt(t, signer, subjectID, grantorID)
	appendReceipt(t, router, token, genesis)

	// A second genesis for the same subject does not extend the head.
	stale := buildReceipt(t, signer, subjectID, grantorID,
		func(b *testutil.ReceiptBuilder) *testutil.ReceiptBuilder {
			return b.IssuedAt(testutil.BaseTime.Add(time.Hour))
		})
	rec := doJSON(t, router, http.MethodPost, "/receipts", stale.request(), token)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "invalid_chain")
}

func TestAppendDuplicateReceipt(t *testing.T) {
	router, jwtService, signer := SetupSuite(t)

	grantorID, token := registerGrantor(t, router, jwtService, signer, "Dup Grantor")
	subjectID := registerSubject(t, router, "Dup Subject")

	receipt := buildReceipt(t, signer, subjectID, grantorID)
	appendReceipt(t, router, token, receipt)

	rec := doJSON(t, router, http.MethodPost, "/receipts", receipt.request(), token)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "duplicate_receipt")
}

func TestAppendForUnregisteredSubject(t *testing.T) {
	router, jwtService, signer := SetupSuite(t)

	grantorID, token := registerGrantor(t, router, jwtService, signer, "Orphan Grantor")

	receipt := buildReceipt(t, signer, testutil.TestIDs.SubjectID1, grantorID)
	rec := doJSON(t, router, http.MethodPost, "/receipts", receipt.request(), token)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestAppendGrantorMismatch(t *testing.T) {
	router, jwtService, signer := SetupSuite(t)

	_, token := registerGrantor(t, router, jwtService, signer, "Actual Grantor")
	otherSigner := testutil.NewSigner()
	otherID, _ := registerGrantor(t, router, jwtService, otherSigner, "Named Grantor")
	subjectID := registerSubject(t, router, "Mismatch Subject")

	// Receipt names a grantor other than the authenticated one.
	receipt := buildReceipt(t, otherSigner, subjectID, otherID)
	rec := doJSON(t, router, http.MethodPost, "/receipts", receipt.request(), token)
	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
}
