package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"pactum/e2e/steps/gate"
	"pactum/e2e/steps/ledger"
	"pactum/e2e/steps/party"
	"pactum/e2e/steps/reciprocity"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background steps
	ctx.Step(`^the pactum service is running$`, tc.serviceIsRunning)

	// Generic request steps
	ctx.Step(`^I GET "([^"]*)"$`, tc.getPath)
	ctx.Step(`^I POST to "([^"]*)" with empty body$`, tc.postWithEmptyBody)
	ctx.Step(`^I POST to "([^"]*)" without a token$`, tc.postWithoutToken)

	// Assertion steps
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, tc.responseShouldContain)
	ctx.Step(`^the response should not contain "([^"]*)"$`, tc.responseShouldNotContain)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.responseFieldShouldEqual)
	ctx.Step(`^I wait (\d+) seconds?$`, tc.waitSeconds)

	// Domain steps
	party.RegisterSteps(ctx, tc)
	ledger.RegisterSteps(ctx, tc)
	gate.RegisterSteps(ctx, tc)
	reciprocity.RegisterSteps(ctx, tc)
}

func (tc *TestContext) serviceIsRunning(ctx context.Context) error {
	if err := tc.GET("/health/live", nil); err != nil {
		return fmt.Errorf("service not reachable at %s: %w", tc.BaseURL, err)
	}
	return tc.responseStatusShouldBe(ctx, 200)
}

func (tc *TestContext) getPath(ctx context.Context, path string) error {
	return tc.GET(path, nil)
}

func (tc *TestContext) postWithEmptyBody(ctx context.Context, path string) error {
	return tc.POSTWithHeaders(path, map[string]interface{}{}, tc.AuthHeaders())
}

func (tc *TestContext) postWithoutToken(ctx context.Context, path string) error {
	return tc.POST(path, map[string]interface{}{})
}

func (tc *TestContext) responseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	if tc.LastResponse == nil {
		return fmt.Errorf("no response recorded")
	}
	if tc.LastResponse.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d but got %d\nResponse: %s",
			expectedStatus, tc.LastResponse.StatusCode, string(tc.LastResponseBody))
	}
	return nil
}

func (tc *TestContext) responseShouldContain(ctx context.Context, field string) error {
	if !tc.ResponseContains(field) {
		return fmt.Errorf("response does not contain %q\nResponse: %s", field, string(tc.LastResponseBody))
	}
	return nil
}

func (tc *TestContext) responseShouldNotContain(ctx context.Context, field string) error {
	if tc.ResponseContains(field) {
		return fmt.Errorf("response should not contain %q\nResponse: %s", field, string(tc.LastResponseBody))
	}
	return nil
}

func (tc *TestContext) responseFieldShouldEqual(ctx context.Context, field, expectedValue string) error {
	var data map[string]interface{}
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	actualValue, ok := data[field]
	if !ok {
		return fmt.Errorf("field %s not found in response", field)
	}

	if fmt.Sprint(actualValue) != expectedValue {
		return fmt.Errorf("field %s: expected %s but got %v", field, expectedValue, actualValue)
	}
	return nil
}

func (tc *TestContext) waitSeconds(ctx context.Context, seconds int) error {
	time.Sleep(time.Duration(seconds) * time.Second)
	return nil
}
