package action

import (
	"context"
	"sort"

	"github.com/alexisbeaulieu97/citrine/internal/endpoint"
	"github.com/alexisbeaulieu97/citrine/internal/message"
	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
	"github.com/alexisbeaulieu97/citrine/internal/validation"
)

// SendConfig configures a Send action. Payload, header values and header data are templates.
type SendConfig struct {
	Meta        `yaml:",inline"`
	Endpoint    endpoint.Endpoint `yaml:"-" validate:"required"`
	Payload     string            `yaml:"payload,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"`
	HeaderData  []string          `yaml:"header_data,omitempty"`
	MessageName string            `yaml:"message_name,omitempty"`
}

// Send builds a fresh message and hands it to the endpoint producer.
type Send struct {
	Base
	endpoint    endpoint.Endpoint
	payload     string
	headers     map[string]string
	headerData  []string
	messageName string
}

// NewSend validates cfg and builds a Send action.
func NewSend(cfg SendConfig) (*Send, error) {
	if err := validation.Struct(cfg); err != nil {
		return nil, err
	}
	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	return &Send{
		Base:        NewBase(cfg.Meta, "send"),
		endpoint:    cfg.Endpoint,
		payload:     cfg.Payload,
		headers:     headers,
		headerData:  append([]string(nil), cfg.HeaderData...),
		messageName: cfg.MessageName,
	}, nil
}

// Endpoint returns the target endpoint.
func (s *Send) Endpoint() endpoint.Endpoint {
	return s.endpoint
}

// Execute implements Action. The sent message is stored in the context under the
// configured message name, or the endpoint name.
func (s *Send) Execute(ctx context.Context, tc *testcontext.Context) error {
	payload, err := tc.ReplaceDynamicContent(s.payload)
	if err != nil {
		return err
	}
	headers, err := tc.ReplaceAll(s.headers)
	if err != nil {
		return err
	}

	msg := message.New(payload)
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		msg.SetHeader(k, headers[k])
	}
	for _, data := range s.headerData {
		resolved, err := tc.ReplaceDynamicContent(data)
		if err != nil {
			return err
		}
		msg.AddHeaderData(resolved)
	}

	if err := s.endpoint.CreateProducer().Send(ctx, msg, tc); err != nil {
		return err
	}

	tc.SaveMessage(storeName(s.messageName, s.endpoint), msg)
	tc.Logger().WithFields(map[string]any{
		"action":     s.Name(),
		"endpoint":   s.endpoint.Name(),
		"message_id": msg.ID(),
	}).Info("message sent")
	return nil
}

// PurgeEndpointConfig configures a PurgeEndpoint action.
type PurgeEndpointConfig struct {
	Meta      `yaml:",inline"`
	Endpoints []endpoint.Endpoint `yaml:"-" validate:"required,min=1,dive,required"`
}

// PurgeEndpoint drops pending messages from its endpoints.
type PurgeEndpoint struct {
	Base
	endpoints []endpoint.Endpoint
}

// NewPurgeEndpoint validates cfg and builds a PurgeEndpoint action.
func NewPurgeEndpoint(cfg PurgeEndpointConfig) (*PurgeEndpoint, error) {
	if err := validation.Struct(cfg); err != nil {
		return nil, err
	}
	return &PurgeEndpoint{
		Base:      NewBase(cfg.Meta, "purge-endpoint"),
		endpoints: append([]endpoint.Endpoint(nil), cfg.Endpoints...),
	}, nil
}

// Execute implements Action.
func (p *PurgeEndpoint) Execute(_ context.Context, tc *testcontext.Context) error {
	for _, ep := range p.endpoints {
		purged, err := endpoint.Purge(ep)
		if err != nil {
			return err
		}
		tc.Logger().WithFields(map[string]any{"action": p.Name(), "endpoint": ep.Name(), "purged": purged}).
			Info("purged endpoint")
	}
	return nil
}

func storeName(name string, ep endpoint.Endpoint) string {
	if name != "" {
		return name
	}
	return ep.Name()
}
