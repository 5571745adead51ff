package ledger

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	id "pactum/pkg/domain"
	"pactum/pkg/testutil"
)

func statusAt(t *testing.T, router http.Handler, hash id.ReceiptHash, at time.Time) string {
	t.Helper()
	path := "/receipts/" + hash.String() + "/status?at=" + url.QueryEscape(at.Format(time.RFC3339))
	rec := doJSON(t, router, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Status string `json:"status"`
	}
	decodeBody(t, rec, &resp)
	return resp.Status
}

func TestStatusAroundExpiry(t *testing.T) {
	router, jwtService, signer := SetupSuite(t)

	grantorID, token := registerGrantor(t, router, jwtService, signer, "Expiry Grantor")
	subjectID := registerSubject(t, router, "Expiring Subject")

	expiry := testutil.BaseTime.Add(100 * time.Second)
	receipt := buildReceipt(t, signer, subjectID, grantorID,
		func(b *testutil.ReceiptBuilder) *testutil.ReceiptBuilder {
			return b.ExpiresAt(expiry)
		})
	receiptHash := appendReceipt(t, router, token, receipt)

	require.Equal(t, "active", statusAt(t, router, receiptHash, testutil.BaseTime.Add(50*time.Second)))
	require.Equal(t, "expired", statusAt(t, router, receiptHash, testutil.BaseTime.Add(150*time.Second)))

	// Expiry is strict: the receipt is still active at the expiry instant.
	require.Equal(t, "active", statusAt(t, router, receiptHash, expiry))
}

func TestStatusRevocationWinsOverExpiry(t *testing.T) {
	router, jwtService, signer := SetupSuite(t)

	grantorID, token := registerGrantor(t, router, jwtService, signer, "Precedence Grantor")
	subjectID := registerSubject(t, router, "Precedence Subject")

	expiry := testutil.BaseTime.Add(100 * time.Second)
	receipt := buildReceipt(t, signer, subjectID, grantorID,
		func(b *testutil.ReceiptBuilder) *testutil.ReceiptBuilder {
			return b.ExpiresAt(expiry)
		})
	receiptHash := appendReceipt(t, router, token, receipt)

	rec := doJSON(t, router, http.MethodPost, "/receipts/"+receiptHash.String()+"/revocation", map[string]any{
		"signature": base64.StdEncoding.EncodeToString(signer.SignRevocation(receiptHash)),
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var revocation struct {
		RevokedAt time.Time `json:"revoked_at"`
	}
	decodeBody(t, rec, &revocation)

	// The receipt expired long before the revocation landed; revocation
	// still wins from its own timestamp onward.
	require.Equal(t, "revoked", statusAt(t, router, receiptHash, revocation.RevokedAt.Add(time.Second)))

	// Before the revocation instant the record does not revoke yet.
	require.Equal(t, "expired", statusAt(t, router, receiptHash, testutil.BaseTime.Add(150*time.Second)))
	require.Equal(t, "active", statusAt(t, router, receiptHash, testutil.BaseTime.Add(50*time.Second)))

	// Default-time query reflects the revocation.
	rec = doJSON(t, router, http.MethodGet, "/receipts/"+receiptHash.String()+"/status", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var status struct {
		Status    string     `json:"status"`
		RevokedAt *time.Time `json:"revoked_at"`
	}
	decodeBody(t, rec, &status)
	require.Equal(t, "revoked", status.Status)
	require.NotNil(t, status.RevokedAt)
}

func TestStatusUnknownReceipt(t *testing.T) {
	router, _, _ := SetupSuite(t)

	unknown := testutil.MustParseReceiptHash(
		"00000000000000000000000000000000ffffffffffffffffffffffffffffffff")
	rec := doJSON(t, router, http.MethodGet, "/receipts/"+unknown.String()+"/status", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "unknown_receipt")
}

func TestStatusRejectsMalformedAt(t *testing.T) {
	router, jwtService, signer := SetupSuite(t)

	grantorID, token := registerGrantor(t, router, jwtService, signer, "Malformed Grantor")
	subjectID := registerSubject(t, router, "Malformed Subject")

	receipt := buildReceipt(t, signer, subjectID, grantorID)
	receiptHash := appendReceipt(t, router, token, receipt)

	rec := doJSON(t, router, http.MethodGet, "/receipts/"+receiptHash.String()+"/status?at=yesterday", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}
