package gate

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POSTWithHeaders(path string, body interface{}, headers map[string]string) error
	GET(path string, headers map[string]string) error
	AuthHeaders() map[string]string
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetSubjectID() string
	GetArtifactID() string
	SetArtifactID(artifactID string)
}

// RegisterSteps registers ingest gate, artifact and reuse step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &gateSteps{tc: tc}

	// Ingest gate steps
	ctx.Step(`^the grantor declares an extractive ingest requiring scope "([^"]*)"$`, steps.declareExtractiveIngest)
	ctx.Step(`^the grantor declares an ingest requiring scope "([^"]*)"$`, steps.declareScopedIngest)
	ctx.Step(`^the grantor declares a plain ingest$`, steps.declarePlainIngest)
	ctx.Step(`^the grantor declares an extractive ingest for an unregistered subject$`, steps.declareIngestForUnregisteredSubject)

	// Artifact steps
	ctx.Step(`^I get the minted artifact$`, steps.getMintedArtifact)
	ctx.Step(`^the grantor transitions the artifact to "([^"]*)"$`, steps.transitionArtifact)
	ctx.Step(`^the grantor attributes the artifact to the subject$`, steps.attributeArtifactToSubject)
	ctx.Step(`^the artifact state should be "([^"]*)"$`, steps.artifactStateShouldBe)
	ctx.Step(`^the artifact should be marked ever published$`, steps.artifactShouldBeEverPublished)
	ctx.Step(`^the artifact should attribute the subject$`, steps.artifactShouldAttributeSubject)

	// Reuse steps
	ctx.Step(`^the grantor logs a disclosed reuse of the artifact$`, steps.logDisclosedReuse)
	ctx.Step(`^the grantor logs a silent reuse of the artifact$`, steps.logSilentReuse)
	ctx.Step(`^the grantor logs a silent reuse of an unknown artifact$`, steps.logReuseOfUnknownArtifact)
}

type gateSteps struct {
	tc TestContext
}

// ingest declares an ingest and, when the gate admits an extractive one,
// records the minted artifact for later lifecycle steps.
func (s *gateSteps) ingest(subjectID string, requiredScopes []string, extractive bool) error {
	body := map[string]interface{}{
		"subject_id": subjectID,
		"extractive": extractive,
	}
	if len(requiredScopes) > 0 {
		body["required_scopes"] = requiredScopes
	}
	if err := s.tc.POSTWithHeaders("/api/v1/ingests", body, s.tc.AuthHeaders()); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() == 201 {
		if artifactID, err := s.tc.GetResponseField("artifact_id"); err == nil {
			s.tc.SetArtifactID(artifactID.(string))
		}
	}
	return nil
}

func (s *gateSteps) declareExtractiveIngest(ctx context.Context, scope string) error {
	return s.ingest(s.tc.GetSubjectID(), splitScope(scope), true)
}

func (s *gateSteps) declareScopedIngest(ctx context.Context, scope string) error {
	return s.ingest(s.tc.GetSubjectID(), splitScope(scope), false)
}

func (s *gateSteps) declarePlainIngest(ctx context.Context) error {
	return s.ingest(s.tc.GetSubjectID(), nil, false)
}

func (s *gateSteps) declareIngestForUnregisteredSubject(ctx context.Context) error {
	return s.ingest(uuid.New().String(), nil, true)
}

func (s *gateSteps) getMintedArtifact(ctx context.Context) error {
	if s.tc.GetArtifactID() == "" {
		return fmt.Errorf("no artifact minted in this scenario")
	}
	return s.tc.GET("/api/v1/artifacts/"+s.tc.GetArtifactID(), nil)
}

func (s *gateSteps) transitionArtifact(ctx context.Context, to string) error {
	if s.tc.GetArtifactID() == "" {
		return fmt.Errorf("no artifact minted in this scenario")
	}
	body := map[string]interface{}{"to": to}
	return s.tc.POSTWithHeaders("/api/v1/artifacts/"+s.tc.GetArtifactID()+"/transition", body, s.tc.AuthHeaders())
}

func (s *gateSteps) attributeArtifactToSubject(ctx context.Context) error {
	if s.tc.GetArtifactID() == "" {
		return fmt.Errorf("no artifact minted in this scenario")
	}
	body := map[string]interface{}{"subject_id": s.tc.GetSubjectID()}
	return s.tc.POSTWithHeaders("/api/v1/artifacts/"+s.tc.GetArtifactID()+"/attribution", body, s.tc.AuthHeaders())
}

func (s *gateSteps) artifactStateShouldBe(ctx context.Context, expected string) error {
	state, err := s.tc.GetResponseField("state")
	if err != nil {
		return err
	}
	if state != expected {
		return fmt.Errorf("expected artifact state %q but got %v\nResponse: %s",
			expected, state, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *gateSteps) artifactShouldBeEverPublished(ctx context.Context) error {
	everPublished, err := s.tc.GetResponseField("ever_published")
	if err != nil {
		return err
	}
	if everPublished != true {
		return fmt.Errorf("artifact not marked ever published\nResponse: %s", string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *gateSteps) artifactShouldAttributeSubject(ctx context.Context) error {
	attributions, err := s.tc.GetResponseField("attributions")
	if err != nil {
		return err
	}
	list, ok := attributions.([]interface{})
	if !ok {
		return fmt.Errorf("attributions is not a list: %v", attributions)
	}
	for _, entry := range list {
		if entry == s.tc.GetSubjectID() {
			return nil
		}
	}
	return fmt.Errorf("subject %s not attributed\nResponse: %s",
		s.tc.GetSubjectID(), string(s.tc.GetLastResponseBody()))
}

func (s *gateSteps) logReuse(artifactID string, disclosed bool) error {
	body := map[string]interface{}{
		"artifact_id": artifactID,
		"disclosed":   disclosed,
	}
	return s.tc.POSTWithHeaders("/api/v1/reuses", body, s.tc.AuthHeaders())
}

func (s *gateSteps) logDisclosedReuse(ctx context.Context) error {
	if s.tc.GetArtifactID() == "" {
		return fmt.Errorf("no artifact minted in this scenario")
	}
	return s.logReuse(s.tc.GetArtifactID(), true)
}

func (s *gateSteps) logSilentReuse(ctx context.Context) error {
	if s.tc.GetArtifactID() == "" {
		return fmt.Errorf("no artifact minted in this scenario")
	}
	return s.logReuse(s.tc.GetArtifactID(), false)
}

// logReuseOfUnknownArtifact logs against an artifact the service has never
// seen. The disclosure log is unconditional, so this must still land.
func (s *gateSteps) logReuseOfUnknownArtifact(ctx context.Context) error {
	return s.logReuse(uuid.New().String(), false)
}

func splitScope(scope string) []string {
	parts := strings.Split(scope, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
