package reasoner

import (
	"errors"
	"net/http"
	"time"

	"github.com/doeshing/whatif-advisor/internal/domain"
	"github.com/doeshing/whatif-advisor/internal/ports"
)

// Factory builds reasoners sharing one HTTP client.
type Factory struct {
	httpClient *http.Client
}

func NewFactory(timeout time.Duration) *Factory {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Factory{
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (f *Factory) ForModel(model domain.ModelDefinition) (ports.Reasoner, error) {
	if model.Endpoint == "" {
		return nil, errors.New("model has no endpoint configured")
	}
	if model.ModelID == "" {
		return nil, errors.New("model has no model_id configured")
	}
	return &httpReasoner{model: model, httpClient: f.httpClient}, nil
}

var _ ports.ReasonerFactory = (*Factory)(nil)
