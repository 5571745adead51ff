package handler

import (
	"encoding/base64"
	"time"

	"pactum/internal/ledger/models"
)

// AppendResponse is returned after a successful append.
type AppendResponse struct {
	ReceiptHash    string `json:"receipt_hash"`
	AnchorPosition int64  `json:"anchor_position"`
}

// Receipt represents a consent receipt in HTTP responses.
type Receipt struct {
	ReceiptHash    string     `json:"receipt_hash"`
	SubjectID      string     `json:"subject_id"`
	GrantorID      string     `json:"grantor_id"`
	Scope          []string   `json:"scope"`
	Extractive     bool       `json:"extractive"`
	IssuedAt       time.Time  `json:"issued_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	PrevHash       string     `json:"prev_hash"`
	Signature      string     `json:"signature"`
	AnchorPosition int64      `json:"anchor_position"`
}

// StatusResponse reports the derived consent status of a receipt.
type StatusResponse struct {
	ReceiptHash string        `json:"receipt_hash"`
	Status      models.Status `json:"status"`
	At          time.Time     `json:"at"`
	RevokedAt   *time.Time    `json:"revoked_at,omitempty"`
}

// RevocationResponse is returned after a successful revocation.
type RevocationResponse struct {
	ReceiptHash string    `json:"receipt_hash"`
	RevokedAt   time.Time `json:"revoked_at"`
}

// ChainResponse lists a subject's receipts, genesis first.
type ChainResponse struct {
	SubjectID string     `json:"subject_id"`
	Receipts  []*Receipt `json:"receipts"`
}

// ChainReportResponse reports the result of verifying a subject's chain.
type ChainReportResponse struct {
	SubjectID string `json:"subject_id"`
	Length    int    `json:"length"`
	Valid     bool   `json:"valid"`
	BrokenAt  string `json:"broken_at,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func toReceipt(receipt *models.ConsentReceipt) *Receipt {
	return &Receipt{
		ReceiptHash:    receipt.Hash.String(),
		SubjectID:      receipt.SubjectID.String(),
		GrantorID:      receipt.GrantorID.String(),
		Scope:          receipt.Scope,
		Extractive:     receipt.Extractive,
		IssuedAt:       receipt.IssuedAt,
		ExpiresAt:      receipt.ExpiresAt,
		PrevHash:       receipt.PrevHash.String(),
		Signature:      base64.StdEncoding.EncodeToString(receipt.Signature),
		AnchorPosition: receipt.AnchorPosition,
	}
}

func toChainResponse(subjectID string, receipts []*models.ConsentReceipt) *ChainResponse {
	formatted := make([]*Receipt, 0, len(receipts))
	for _, receipt := range receipts {
		formatted = append(formatted, toReceipt(receipt))
	}
	return &ChainResponse{SubjectID: subjectID, Receipts: formatted}
}

func toChainReportResponse(report *models.ChainReport) *ChainReportResponse {
	return &ChainReportResponse{
		SubjectID: report.SubjectID.String(),
		Length:    report.Length,
		Valid:     report.Valid,
		BrokenAt:  report.BrokenAt.String(),
		Reason:    report.Reason,
	}
}
