package e2e

import (
	"github.com/cucumber/godog"

	"homedisclose/e2e/steps/common"
	"homedisclose/e2e/steps/disclosure"
	"homedisclose/e2e/steps/sharing"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (background, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register seller document steps
	disclosure.RegisterSteps(ctx, tc)

	// Register share grant and buyer steps
	sharing.RegisterSteps(ctx, tc)
}
