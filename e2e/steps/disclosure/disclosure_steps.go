package disclosure

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Request(method, path, actor string, body any) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	Remember(key, value string)
	Recall(key string) string
}

// RegisterSteps registers seller-side document steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &disclosureSteps{tc: tc}

	ctx.Step(`^"([^"]*)" opens the disclosure for a new property$`, steps.opensNewDisclosure)
	ctx.Step(`^"([^"]*)" answers every section$`, steps.answersEverySection)
	ctx.Step(`^"([^"]*)" completes the disclosure$`, steps.completes)
	ctx.Step(`^"([^"]*)" has completed the disclosure for a new property$`, steps.hasCompletedDisclosure)
	ctx.Step(`^"([^"]*)" signs the disclosure as "([^"]*)"$`, steps.signsAsSeller)
	ctx.Step(`^"([^"]*)" requests the analytics summary$`, steps.requestsSummary)
}

type disclosureSteps struct {
	tc TestContext
}

// sectionAnswers is the smallest answer set that passes validation.
func sectionAnswers() map[string]any {
	answers := map[string]any{
		"section1":  map[string]any{"smoke_detector_status": "working"},
		"section2":  map[string]any{"roof_type": "Composition", "roof_age": "10 years"},
		"section3":  map[string]any{"water_provider": "city"},
		"section5":  map[string]any{"cracks": "no"},
		"section8":  map[string]any{"notes": "none"},
		"section10": map[string]any{"notes": "none"},
	}
	for _, key := range []string{"section4", "section6", "section7", "section9", "section11", "section12", "section13"} {
		answers[key] = map[string]any{"answer": "no"}
	}
	return answers
}

func (s *disclosureSteps) documentPath(suffix string) string {
	return "/disclosures/" + s.tc.Recall("document_id") + suffix
}

func (s *disclosureSteps) expect(status int) error {
	if got := s.tc.GetLastResponseStatus(); got != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, got, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *disclosureSteps) opensNewDisclosure(ctx context.Context, seller string) error {
	if err := s.tc.Request(http.MethodGet, "/properties/"+uuid.NewString()+"/disclosure", seller, nil); err != nil {
		return err
	}
	if err := s.expect(http.StatusOK); err != nil {
		return err
	}
	id, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.Remember("document_id", fmt.Sprint(id))
	return nil
}

func (s *disclosureSteps) answersEverySection(ctx context.Context, seller string) error {
	for key, data := range sectionAnswers() {
		if err := s.tc.Request(http.MethodPut, s.documentPath("/sections/"+key), seller, map[string]any{"data": data}); err != nil {
			return err
		}
		if err := s.expect(http.StatusOK); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func (s *disclosureSteps) completes(ctx context.Context, seller string) error {
	return s.tc.Request(http.MethodPost, s.documentPath("/complete"), seller, nil)
}

func (s *disclosureSteps) hasCompletedDisclosure(ctx context.Context, seller string) error {
	if err := s.opensNewDisclosure(ctx, seller); err != nil {
		return err
	}
	if err := s.answersEverySection(ctx, seller); err != nil {
		return err
	}
	if err := s.completes(ctx, seller); err != nil {
		return err
	}
	return s.expect(http.StatusOK)
}

func (s *disclosureSteps) signsAsSeller(ctx context.Context, seller, printedName string) error {
	return s.tc.Request(http.MethodPost, s.documentPath("/sign"), seller, map[string]string{
		"signature_data": "data:image/png;base64,iVBORw0KGgo=",
		"printed_name":   printedName,
	})
}

func (s *disclosureSteps) requestsSummary(ctx context.Context, seller string) error {
	return s.tc.Request(http.MethodGet, s.documentPath("/analytics/summary"), seller, nil)
}
