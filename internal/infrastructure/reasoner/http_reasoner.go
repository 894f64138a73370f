// Package reasoner provides an HTTP adapter for configured reasoning
// services. Request shape, auth headers, and response extraction are all
// driven by the model's api_format declaration, so new services need a
// config entry, not code.
package reasoner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/doeshing/whatif-advisor/internal/domain"
	"github.com/doeshing/whatif-advisor/internal/ports"
)

type httpReasoner struct {
	model      domain.ModelDefinition
	httpClient *http.Client
}

func (r *httpReasoner) Name() string {
	return r.model.Name
}

func (r *httpReasoner) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	requestBody, err := buildRequestBody(r.model, req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.model.Endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return "", err
	}

	httpReq.Header.Set("content-type", "application/json")
	if err := setHeaders(httpReq, r.model); err != nil {
		return "", err
	}

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var responseBody bytes.Buffer
	if _, err := responseBody.ReadFrom(resp.Body); err != nil {
		return "", err
	}

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%s: %s: %s", r.model.Name, resp.Status, truncate(responseBody.String(), 200))
	}

	return extractResponseText(responseBody.Bytes(), r.model.APIFormat.GetResponseJSONPath())
}

func buildRequestBody(model domain.ModelDefinition, req ports.CompletionRequest) ([]byte, error) {
	format := model.APIFormat

	var messages []map[string]interface{}
	if format.GetSystemMessageMode() == domain.SystemMessageModeInline && req.System != "" {
		messages = append(messages, map[string]interface{}{
			"role":    "system",
			"content": wrapContent(format, req.System),
		})
	}
	messages = append(messages, map[string]interface{}{
		"role":    "user",
		"content": wrapContent(format, req.User),
	})

	request := map[string]interface{}{
		"model":    model.ModelID,
		"messages": messages,
	}
	if format.GetSystemMessageMode() == domain.SystemMessageModeSeparate && req.System != "" {
		request["system"] = req.System
	}
	if model.MaxTokens > 0 {
		request["max_tokens"] = model.MaxTokens
	}

	return json.Marshal(request)
}

func wrapContent(format domain.APIFormat, text string) interface{} {
	if format.GetContentWrapper() == domain.ContentWrapperAnthropic {
		return []map[string]string{{"type": "text", "text": text}}
	}
	return text
}

func setHeaders(req *http.Request, model domain.ModelDefinition) error {
	format := model.APIFormat

	if model.AuthEnvVar != "" {
		key := os.Getenv(model.AuthEnvVar)
		if key == "" {
			return fmt.Errorf("missing API key: set %s", model.AuthEnvVar)
		}
		req.Header.Set(format.GetAuthHeaderName(), format.GetAuthHeaderPrefix()+key)
	}

	for name, value := range format.ExtraHeaders {
		req.Header.Set(name, value)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
