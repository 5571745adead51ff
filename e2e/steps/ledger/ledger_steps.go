package ledger

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"

	id "pactum/pkg/domain"
	"pactum/pkg/testutil"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POSTWithHeaders(path string, body interface{}, headers map[string]string) error
	GET(path string, headers map[string]string) error
	AuthHeaders() map[string]string
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetSigner() *testutil.Signer
	GetGrantorID() string
	GetSubjectID() string
	GetChainTip() string
	SetChainTip(hash string)
	GetLastReceiptHash() string
	SetLastReceiptHash(hash string)
	NextIssueTime() time.Time
}

// RegisterSteps registers receipt ledger step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ledgerSteps{tc: tc}

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		steps.lastAppendBody = nil
		return c, nil
	})

	// Append steps
	ctx.Step(`^the grantor appends a receipt with scope "([^"]*)"$`, steps.appendWithScope)
	ctx.Step(`^the grantor appends an extractive receipt with scope "([^"]*)"$`, steps.appendExtractiveWithScope)
	ctx.Step(`^the grantor appends an extractive receipt with scope "([^"]*)" expiring in (\d+) seconds?$`, steps.appendExtractiveExpiring)
	ctx.Step(`^the grantor appends the same receipt again$`, steps.appendSameReceiptAgain)
	ctx.Step(`^the grantor appends a receipt that skips the chain head$`, steps.appendSkippingChainHead)
	ctx.Step(`^the grantor appends a receipt with a tampered signature$`, steps.appendWithTamperedSignature)
	ctx.Step(`^the grantor appends a receipt for an unregistered subject$`, steps.appendForUnregisteredSubject)
	ctx.Step(`^the grantor appends a receipt naming a different grantor$`, steps.appendNamingDifferentGrantor)

	// Revocation steps
	ctx.Step(`^the grantor revokes the receipt$`, steps.revokeReceipt)
	ctx.Step(`^the grantor revokes the receipt again$`, steps.revokeReceipt)
	ctx.Step(`^the grantor revokes an unknown receipt$`, steps.revokeUnknownReceipt)

	// Query steps
	ctx.Step(`^I get the receipt$`, steps.getReceipt)
	ctx.Step(`^I get the receipt status$`, steps.getReceiptStatus)
	ctx.Step(`^I verify the subject chain$`, steps.verifySubjectChain)
	ctx.Step(`^I list the subject receipts$`, steps.listSubjectReceipts)

	// Assertion steps
	ctx.Step(`^the receipt status should be "([^"]*)"$`, steps.receiptStatusShouldBe)
	ctx.Step(`^the chain should be valid with length (\d+)$`, steps.chainShouldBeValidWithLength)
	ctx.Step(`^the anchor position should be at least (\d+)$`, steps.anchorPositionShouldBeAtLeast)
}

type ledgerSteps struct {
	tc             TestContext
	lastAppendBody map[string]interface{}
}

// append builds a receipt extending the scenario's chain, signs it with the
// scenario key and posts it. A 201 advances the chain tip to the new hash.
func (s *ledgerSteps) append(scope []string, extractive bool, issuedAt time.Time, expiresIn time.Duration) error {
	grantorID, err := id.ParseGrantorID(s.tc.GetGrantorID())
	if err != nil {
		return fmt.Errorf("no grantor registered in this scenario: %w", err)
	}
	subjectID, err := id.ParseSubjectID(s.tc.GetSubjectID())
	if err != nil {
		return fmt.Errorf("no subject registered in this scenario: %w", err)
	}

	builder := testutil.NewReceiptBuilder(s.tc.GetSigner()).
		WithSubject(subjectID).
		WithGrantor(grantorID).
		WithScope(scope...).
		Extractive(extractive).
		IssuedAt(issuedAt).
		WithPrevHash(id.ReceiptHash(s.tc.GetChainTip()))
	if expiresIn > 0 {
		builder = builder.ExpiresAt(issuedAt.Add(expiresIn))
	}
	receipt, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build receipt: %w", err)
	}

	return s.post(receiptBody(receipt.SubjectID.String(), receipt.GrantorID.String(),
		receipt.Scope, receipt.Extractive, receipt.IssuedAt, receipt.ExpiresAt,
		receipt.PrevHash.String(), receipt.Signature))
}

func (s *ledgerSteps) post(body map[string]interface{}) error {
	s.lastAppendBody = body
	if err := s.tc.POSTWithHeaders("/api/v1/receipts", body, s.tc.AuthHeaders()); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() == 201 {
		hash, err := s.tc.GetResponseField("receipt_hash")
		if err != nil {
			return fmt.Errorf("append succeeded without a receipt_hash: %w", err)
		}
		s.tc.SetLastReceiptHash(hash.(string))
		s.tc.SetChainTip(hash.(string))
	}
	return nil
}

func (s *ledgerSteps) appendWithScope(ctx context.Context, scope string) error {
	return s.append(splitScope(scope), false, s.tc.NextIssueTime(), 0)
}

func (s *ledgerSteps) appendExtractiveWithScope(ctx context.Context, scope string) error {
	return s.append(splitScope(scope), true, s.tc.NextIssueTime(), 0)
}

// appendExtractiveExpiring issues at the live wall clock so a short wait in
// the scenario carries the receipt past its expiry.
func (s *ledgerSteps) appendExtractiveExpiring(ctx context.Context, scope string, seconds int) error {
	issuedAt := time.Now().UTC().Truncate(time.Second)
	return s.append(splitScope(scope), true, issuedAt, time.Duration(seconds)*time.Second)
}

func (s *ledgerSteps) appendSameReceiptAgain(ctx context.Context) error {
	if s.lastAppendBody == nil {
		return fmt.Errorf("no receipt appended in this scenario")
	}
	return s.tc.POSTWithHeaders("/api/v1/receipts", s.lastAppendBody, s.tc.AuthHeaders())
}

// appendSkippingChainHead posts a second genesis receipt for a subject whose
// chain already has a head, so the ledger must reject the stale prev hash.
func (s *ledgerSteps) appendSkippingChainHead(ctx context.Context) error {
	if s.tc.GetChainTip() == "" {
		return fmt.Errorf("scenario has no chain head to skip")
	}
	grantorID, err := id.ParseGrantorID(s.tc.GetGrantorID())
	if err != nil {
		return err
	}
	subjectID, err := id.ParseSubjectID(s.tc.GetSubjectID())
	if err != nil {
		return err
	}
	receipt, err := testutil.NewReceiptBuilder(s.tc.GetSigner()).
		WithSubject(subjectID).
		WithGrantor(grantorID).
		WithScope("stale").
		IssuedAt(s.tc.NextIssueTime()).
		Build()
	if err != nil {
		return err
	}
	return s.post(receiptBody(receipt.SubjectID.String(), receipt.GrantorID.String(),
		receipt.Scope, receipt.Extractive, receipt.IssuedAt, receipt.ExpiresAt,
		"", receipt.Signature))
}

// appendWithTamperedSignature signs bytes that are not the canonical receipt
// bytes. The signature is well-formed, it just proves the wrong content.
func (s *ledgerSteps) appendWithTamperedSignature(ctx context.Context) error {
	signature := s.tc.GetSigner().Sign([]byte("not the canonical receipt bytes"))
	return s.post(receiptBody(s.tc.GetSubjectID(), s.tc.GetGrantorID(),
		[]string{"analytics"}, false, s.tc.NextIssueTime(), nil,
		s.tc.GetChainTip(), signature))
}

func (s *ledgerSteps) appendForUnregisteredSubject(ctx context.Context) error {
	grantorID, err := id.ParseGrantorID(s.tc.GetGrantorID())
	if err != nil {
		return err
	}
	receipt, err := testutil.NewReceiptBuilder(s.tc.GetSigner()).
		WithSubject(id.SubjectID(uuid.New())).
		WithGrantor(grantorID).
		WithScope("analytics").
		IssuedAt(s.tc.NextIssueTime()).
		Build()
	if err != nil {
		return err
	}
	return s.post(receiptBody(receipt.SubjectID.String(), receipt.GrantorID.String(),
		receipt.Scope, receipt.Extractive, receipt.IssuedAt, receipt.ExpiresAt,
		"", receipt.Signature))
}

// appendNamingDifferentGrantor posts a receipt whose grantor_id is not the
// authenticated grantor. The actor binding check rejects it before any
// signature work.
func (s *ledgerSteps) appendNamingDifferentGrantor(ctx context.Context) error {
	subjectID, err := id.ParseSubjectID(s.tc.GetSubjectID())
	if err != nil {
		return err
	}
	receipt, err := testutil.NewReceiptBuilder(s.tc.GetSigner()).
		WithSubject(subjectID).
		WithGrantor(id.GrantorID(uuid.New())).
		WithScope("analytics").
		IssuedAt(s.tc.NextIssueTime()).
		WithPrevHash(id.ReceiptHash(s.tc.GetChainTip())).
		Build()
	if err != nil {
		return err
	}
	return s.post(receiptBody(receipt.SubjectID.String(), receipt.GrantorID.String(),
		receipt.Scope, receipt.Extractive, receipt.IssuedAt, receipt.ExpiresAt,
		receipt.PrevHash.String(), receipt.Signature))
}

func (s *ledgerSteps) revokeReceipt(ctx context.Context) error {
	hash := s.tc.GetLastReceiptHash()
	if hash == "" {
		return fmt.Errorf("no receipt appended in this scenario")
	}
	body := map[string]interface{}{
		"signature": base64.StdEncoding.EncodeToString(s.tc.GetSigner().SignRevocation(id.ReceiptHash(hash))),
	}
	return s.tc.POSTWithHeaders("/api/v1/receipts/"+hash+"/revocation", body, s.tc.AuthHeaders())
}

func (s *ledgerSteps) revokeUnknownReceipt(ctx context.Context) error {
	unknown := id.ReceiptHash(strings.Repeat("ab", 32))
	body := map[string]interface{}{
		"signature": base64.StdEncoding.EncodeToString(s.tc.GetSigner().SignRevocation(unknown)),
	}
	return s.tc.POSTWithHeaders("/api/v1/receipts/"+unknown.String()+"/revocation", body, s.tc.AuthHeaders())
}

func (s *ledgerSteps) getReceipt(ctx context.Context) error {
	if s.tc.GetLastReceiptHash() == "" {
		return fmt.Errorf("no receipt appended in this scenario")
	}
	return s.tc.GET("/api/v1/receipts/"+s.tc.GetLastReceiptHash(), nil)
}

func (s *ledgerSteps) getReceiptStatus(ctx context.Context) error {
	if s.tc.GetLastReceiptHash() == "" {
		return fmt.Errorf("no receipt appended in this scenario")
	}
	return s.tc.GET("/api/v1/receipts/"+s.tc.GetLastReceiptHash()+"/status", nil)
}

func (s *ledgerSteps) verifySubjectChain(ctx context.Context) error {
	return s.tc.GET("/api/v1/subjects/"+s.tc.GetSubjectID()+"/chain", nil)
}

func (s *ledgerSteps) listSubjectReceipts(ctx context.Context) error {
	return s.tc.GET("/api/v1/subjects/"+s.tc.GetSubjectID()+"/receipts", nil)
}

func (s *ledgerSteps) receiptStatusShouldBe(ctx context.Context, expected string) error {
	status, err := s.tc.GetResponseField("status")
	if err != nil {
		return err
	}
	if status != expected {
		return fmt.Errorf("expected status %q but got %v\nResponse: %s",
			expected, status, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *ledgerSteps) chainShouldBeValidWithLength(ctx context.Context, length int) error {
	valid, err := s.tc.GetResponseField("valid")
	if err != nil {
		return err
	}
	if valid != true {
		return fmt.Errorf("chain reported broken\nResponse: %s", string(s.tc.GetLastResponseBody()))
	}
	actual, err := s.tc.GetResponseField("length")
	if err != nil {
		return err
	}
	if int(actual.(float64)) != length {
		return fmt.Errorf("expected chain length %d but got %v", length, actual)
	}
	return nil
}

func (s *ledgerSteps) anchorPositionShouldBeAtLeast(ctx context.Context, minimum int) error {
	position, err := s.tc.GetResponseField("anchor_position")
	if err != nil {
		return err
	}
	if int64(position.(float64)) < int64(minimum) {
		return fmt.Errorf("expected anchor position of at least %d but got %v", minimum, position)
	}
	return nil
}

func receiptBody(subjectID, grantorID string, scope []string, extractive bool, issuedAt time.Time, expiresAt *time.Time, prevHash string, signature []byte) map[string]interface{} {
	body := map[string]interface{}{
		"subject_id": subjectID,
		"grantor_id": grantorID,
		"scope":      scope,
		"extractive": extractive,
		"issued_at":  issuedAt.UTC().Format(time.RFC3339),
		"prev_hash":  prevHash,
		"signature":  base64.StdEncoding.EncodeToString(signature),
	}
	if expiresAt != nil {
		body["expires_at"] = expiresAt.UTC().Format(time.RFC3339)
	}
	return body
}

func splitScope(scope string) []string {
	parts := strings.Split(scope, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
