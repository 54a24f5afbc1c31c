package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const devSigningKey = "dev-secret-key-change-in-production"

type actor struct {
	userID uuid.UUID
	email  string
	token  string
}

// TestContext carries one scenario's HTTP state against a running server.
type TestContext struct {
	baseURL    string
	signingKey []byte
	issuer     string
	audience   string
	client     *http.Client

	actors map[string]*actor
	values map[string]string

	lastStatus int
	lastBody   []byte
}

func NewTestContext(baseURL string) *TestContext {
	key := os.Getenv("E2E_JWT_SIGNING_KEY")
	if key == "" {
		key = devSigningKey
	}
	return &TestContext{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		signingKey: []byte(key),
		issuer:     os.Getenv("E2E_JWT_ISSUER"),
		audience:   os.Getenv("E2E_JWT_AUDIENCE"),
		client:     &http.Client{Timeout: 10 * time.Second},
		actors:     map[string]*actor{},
		values:     map[string]string{},
	}
}

// SignIn registers a named actor with a fresh user id and bearer token.
func (tc *TestContext) SignIn(name, email string) error {
	a := &actor{userID: uuid.New(), email: email}
	claims := jwt.MapClaims{
		"sub":   a.userID.String(),
		"email": email,
		"role":  "user",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
		"jti":   uuid.NewString(),
	}
	if tc.issuer != "" {
		claims["iss"] = tc.issuer
	}
	if tc.audience != "" {
		claims["aud"] = tc.audience
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.signingKey)
	if err != nil {
		return fmt.Errorf("sign token for %s: %w", name, err)
	}
	a.token = token
	tc.actors[name] = a
	return nil
}

// Request sends method path as the named actor. An empty actor is anonymous.
func (tc *TestContext) Request(method, path, actorName string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if actorName != "" {
		a, ok := tc.actors[actorName]
		if !ok {
			return fmt.Errorf("unknown actor %q", actorName)
		}
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) GetLastResponseStatus() int {
	return tc.lastStatus
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.lastBody
}

// GetResponseField resolves a dotted path such as "share.status" in the last
// JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var cur any
	if err := json.Unmarshal(tc.lastBody, &cur); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	for _, part := range strings.Split(field, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", field, part)
		}
		if cur, ok = obj[part]; !ok {
			return nil, fmt.Errorf("field %q not found", field)
		}
	}
	return cur, nil
}

func (tc *TestContext) Remember(key, value string) {
	tc.values[key] = value
}

func (tc *TestContext) Recall(key string) string {
	return tc.values[key]
}
