package sharing

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cucumber/godog"
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

// RegisterSteps registers share grant steps for sellers, signed-in buyers and
// anonymous link holders
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &sharingSteps{tc: tc}

	ctx.Step(`^"([^"]*)" shares the disclosure with "([^"]*)"$`, steps.sharesWith)
	ctx.Step(`^"([^"]*)" lists the disclosure shares$`, steps.listsShares)
	ctx.Step(`^an anonymous visitor opens the share link$`, steps.anonymousOpensLink)
	ctx.Step(`^an anonymous visitor opens the share link "([^"]*)"$`, steps.anonymousOpensToken)
	ctx.Step(`^an anonymous visitor signs through the share link as "([^"]*)"$`, steps.anonymousSigns)
	ctx.Step(`^"([^"]*)" opens the shared disclosure$`, steps.recipientOpens)
	ctx.Step(`^"([^"]*)" acknowledges the shared disclosure$`, steps.recipientAcknowledges)
	ctx.Step(`^"([^"]*)" signs the shared disclosure as "([^"]*)"$`, steps.recipientSigns)
}

type sharingSteps struct {
	tc TestContext
}

func signature(printedName string) map[string]string {
	return map[string]string{
		"signature_data": "data:image/png;base64,iVBORw0KGgo=",
		"printed_name":   printedName,
	}
}

func (s *sharingSteps) sharesWith(ctx context.Context, seller, email string) error {
	path := "/disclosures/" + s.tc.Recall("document_id") + "/shares"
	body := map[string]string{"recipient_email": email, "recipient_name": "Buyer"}
	if err := s.tc.Request(http.MethodPost, path, seller, body); err != nil {
		return err
	}
	if got := s.tc.GetLastResponseStatus(); got != http.StatusCreated {
		return fmt.Errorf("expected 201, got %d: %s", got, s.tc.GetLastResponseBody())
	}
	id, err := s.tc.GetResponseField("share.id")
	if err != nil {
		return err
	}
	link, err := s.tc.GetResponseField("share.share_url")
	if err != nil {
		return err
	}
	url := fmt.Sprint(link)
	s.tc.Remember("share_id", fmt.Sprint(id))
	s.tc.Remember("share_token", url[strings.LastIndex(url, "/")+1:])
	return nil
}

func (s *sharingSteps) listsShares(ctx context.Context, seller string) error {
	return s.tc.Request(http.MethodGet, "/disclosures/"+s.tc.Recall("document_id")+"/shares", seller, nil)
}

func (s *sharingSteps) anonymousOpensLink(ctx context.Context) error {
	return s.anonymousOpensToken(ctx, s.tc.Recall("share_token"))
}

func (s *sharingSteps) anonymousOpensToken(ctx context.Context, token string) error {
	return s.tc.Request(http.MethodGet, "/public/disclosures/"+token, "", nil)
}

func (s *sharingSteps) anonymousSigns(ctx context.Context, printedName string) error {
	return s.tc.Request(http.MethodPost, "/public/disclosures/"+s.tc.Recall("share_token")+"/sign", "", signature(printedName))
}

func (s *sharingSteps) sharePath(suffix string) string {
	return "/shared-disclosures/" + s.tc.Recall("share_id") + suffix
}

func (s *sharingSteps) recipientOpens(ctx context.Context, buyer string) error {
	return s.tc.Request(http.MethodGet, s.sharePath(""), buyer, nil)
}

func (s *sharingSteps) recipientAcknowledges(ctx context.Context, buyer string) error {
	return s.tc.Request(http.MethodPost, s.sharePath("/acknowledge"), buyer, nil)
}

func (s *sharingSteps) recipientSigns(ctx context.Context, buyer, printedName string) error {
	return s.tc.Request(http.MethodPost, s.sharePath("/sign"), buyer, signature(printedName))
}
