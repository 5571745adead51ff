package party

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/cucumber/godog"
	"github.com/google/uuid"

	"pactum/pkg/testutil"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetSigner() *testutil.Signer
	GetGrantorID() string
	SetGrantorID(grantorID string)
	GetSubjectID() string
	SetSubjectID(subjectID string)
	MintGrantorToken(grantorID string) error
}

// RegisterSteps registers party registration step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &partySteps{tc: tc}

	ctx.Step(`^a registered grantor$`, steps.registeredGrantor)
	ctx.Step(`^a registered subject$`, steps.registeredSubject)
	ctx.Step(`^I register a grantor named "([^"]*)"$`, steps.registerGrantorNamed)
	ctx.Step(`^I register a subject named "([^"]*)"$`, steps.registerSubjectNamed)
	ctx.Step(`^I register a grantor named "([^"]*)" without a public key$`, steps.registerGrantorWithoutKey)
	ctx.Step(`^I register a subject named "([^"]*)" with a public key$`, steps.registerSubjectWithKey)
	ctx.Step(`^I look up the registered grantor$`, steps.lookUpGrantor)
	ctx.Step(`^I look up the registered subject$`, steps.lookUpSubject)
}

type partySteps struct {
	tc TestContext
}

// registeredGrantor registers a grantor with the scenario's key pair and
// mints its access token, so later steps can append signed receipts.
func (s *partySteps) registeredGrantor(ctx context.Context) error {
	if err := s.registerGrantorNamed(ctx, "e2e grantor"); err != nil {
		return err
	}
	grantorID, err := s.tc.GetResponseField("id")
	if err != nil {
		return fmt.Errorf("grantor registration returned no id: %w", err)
	}
	s.tc.SetGrantorID(grantorID.(string))
	return s.tc.MintGrantorToken(grantorID.(string))
}

func (s *partySteps) registeredSubject(ctx context.Context) error {
	if err := s.registerSubjectNamed(ctx, "e2e subject"); err != nil {
		return err
	}
	subjectID, err := s.tc.GetResponseField("id")
	if err != nil {
		return fmt.Errorf("subject registration returned no id: %w", err)
	}
	s.tc.SetSubjectID(subjectID.(string))
	return nil
}

func (s *partySteps) registerGrantorNamed(ctx context.Context, name string) error {
	body := map[string]interface{}{
		"kind":         "grantor",
		"display_name": uniqueName(name),
		"public_key":   base64.StdEncoding.EncodeToString(s.tc.GetSigner().Public),
	}
	return s.tc.POST("/api/v1/parties", body)
}

func (s *partySteps) registerSubjectNamed(ctx context.Context, name string) error {
	body := map[string]interface{}{
		"kind":         "subject",
		"display_name": name,
	}
	return s.tc.POST("/api/v1/parties", body)
}

func (s *partySteps) registerGrantorWithoutKey(ctx context.Context, name string) error {
	body := map[string]interface{}{
		"kind":         "grantor",
		"display_name": uniqueName(name),
	}
	return s.tc.POST("/api/v1/parties", body)
}

func (s *partySteps) registerSubjectWithKey(ctx context.Context, name string) error {
	body := map[string]interface{}{
		"kind":         "subject",
		"display_name": name,
		"public_key":   base64.StdEncoding.EncodeToString(s.tc.GetSigner().Public),
	}
	return s.tc.POST("/api/v1/parties", body)
}

// uniqueName suffixes a nonce. Grantor display names are unique on the
// server, and the server outlives any one scenario.
func uniqueName(name string) string {
	return name + " " + uuid.NewString()[:8]
}

func (s *partySteps) lookUpGrantor(ctx context.Context) error {
	if s.tc.GetGrantorID() == "" {
		return fmt.Errorf("no grantor registered in this scenario")
	}
	return s.tc.GET("/api/v1/parties/"+s.tc.GetGrantorID(), nil)
}

func (s *partySteps) lookUpSubject(ctx context.Context) error {
	if s.tc.GetSubjectID() == "" {
		return fmt.Errorf("no subject registered in this scenario")
	}
	return s.tc.GET("/api/v1/parties/"+s.tc.GetSubjectID(), nil)
}
