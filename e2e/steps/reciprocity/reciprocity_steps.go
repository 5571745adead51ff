package reciprocity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
)

// The six Reciprocity Index Metrics every report must carry.
var indexNames = []string{"rim_1", "rim_2", "rim_3", "rim_4", "rim_5", "rim_6"}

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetLastResponseBody() []byte
}

// RegisterSteps registers reciprocity report step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &reportSteps{tc: tc}

	ctx.Step(`^I fetch the reciprocity report$`, steps.fetchReport)
	ctx.Step(`^the report should include the six indices$`, steps.reportShouldIncludeSixIndices)
	ctx.Step(`^the report count "([^"]*)" should be at least (\d+)$`, steps.reportCountShouldBeAtLeast)
}

type reportSteps struct {
	tc TestContext
}

func (s *reportSteps) fetchReport(ctx context.Context) error {
	return s.tc.GET("/api/v1/reciprocity/report", nil)
}

// reportShouldIncludeSixIndices checks every RIM key is present and sane.
// The server under test is shared across scenarios, so values are only
// checked for range, never for an exact figure.
func (s *reportSteps) reportShouldIncludeSixIndices(ctx context.Context) error {
	var report struct {
		Indices map[string]float64 `json:"indices"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &report); err != nil {
		return fmt.Errorf("failed to parse report: %w", err)
	}
	for _, name := range indexNames {
		value, ok := report.Indices[name]
		if !ok {
			return fmt.Errorf("index %s missing from report\nResponse: %s", name, string(s.tc.GetLastResponseBody()))
		}
		if value < 0 {
			return fmt.Errorf("index %s is negative: %v", name, value)
		}
	}
	return nil
}

func (s *reportSteps) reportCountShouldBeAtLeast(ctx context.Context, field string, minimum int) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	count, ok := value.(float64)
	if !ok {
		return fmt.Errorf("field %s is not a number: %v", field, value)
	}
	if int64(count) < int64(minimum) {
		return fmt.Errorf("expected %s of at least %d but got %v", field, minimum, value)
	}
	return nil
}
