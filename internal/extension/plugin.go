// Package extension loads externally contributed providers and
// frameworks from a plugin manifest. Two transports are supported:
// out-of-process plugin binaries over hashicorp/go-plugin (net/rpc),
// and remote OpenAI-compatible endpoints registered as providers.
package extension

import (
	"net/rpc"

	goplugin "github.com/hashicorp/go-plugin"
)

// Handshake is the go-plugin handshake shared by the gateway and every
// plugin binary. The cookie is a compatibility marker, not a security
// boundary.
var Handshake = goplugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "A2A_GATEWAY_PLUGIN",
	MagicCookieValue: "a2a-gateway-plugin-v1",
}

// Dispense names for the plugin map.
const (
	ProviderPluginName  = "provider"
	FrameworkPluginName = "framework"
)

// WireInfo is the plugin identity carried over the wire.
type WireInfo struct {
	ID               string
	Name             string
	Ready            bool
	Reason           string
	SupportsMessages bool
}

// WireMessage is one conversation turn flattened for net/rpc. Parts
// content is rendered to plain text before crossing the boundary.
type WireMessage struct {
	Role    string
	Content string
}

// GenerateArgs is the request side of RemoteProvider.Generate.
type GenerateArgs struct {
	Prompt   string
	Messages []WireMessage
}

// ExecuteArgs is the request side of RemoteFramework.Execute.
type ExecuteArgs struct {
	Messages []WireMessage
}

// RemoteProvider is the contract a provider plugin binary implements.
type RemoteProvider interface {
	Info() (WireInfo, error)
	Generate(args GenerateArgs) (string, error)
}

// RemoteFramework is the contract a framework plugin binary implements.
// Remote frameworks bring their own backend; they do not call back into
// the gateway's provider.
type RemoteFramework interface {
	Info() (WireInfo, error)
	Execute(args ExecuteArgs) (string, error)
}

// ProviderPlugin is the go-plugin shim for RemoteProvider.
type ProviderPlugin struct {
	Impl RemoteProvider
}

func (p *ProviderPlugin) Server(*goplugin.MuxBroker) (interface{}, error) {
	return &providerRPCServer{impl: p.Impl}, nil
}

func (p *ProviderPlugin) Client(_ *goplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &providerRPCClient{client: c}, nil
}

type providerRPCServer struct {
	impl RemoteProvider
}

func (s *providerRPCServer) Info(_ struct{}, resp *WireInfo) error {
	info, err := s.impl.Info()
	if err != nil {
		return err
	}
	*resp = info
	return nil
}

func (s *providerRPCServer) Generate(args GenerateArgs, resp *string) error {
	text, err := s.impl.Generate(args)
	if err != nil {
		return err
	}
	*resp = text
	return nil
}

type providerRPCClient struct {
	client *rpc.Client
}

func (c *providerRPCClient) Info() (WireInfo, error) {
	var resp WireInfo
	err := c.client.Call("Plugin.Info", struct{}{}, &resp)
	return resp, err
}

func (c *providerRPCClient) Generate(args GenerateArgs) (string, error) {
	var resp string
	err := c.client.Call("Plugin.Generate", args, &resp)
	return resp, err
}

// FrameworkPlugin is the go-plugin shim for RemoteFramework.
type FrameworkPlugin struct {
	Impl RemoteFramework
}

func (p *FrameworkPlugin) Server(*goplugin.MuxBroker) (interface{}, error) {
	return &frameworkRPCServer{impl: p.Impl}, nil
}

func (p *FrameworkPlugin) Client(_ *goplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &frameworkRPCClient{client: c}, nil
}

type frameworkRPCServer struct {
	impl RemoteFramework
}

func (s *frameworkRPCServer) Info(_ struct{}, resp *WireInfo) error {
	info, err := s.impl.Info()
	if err != nil {
		return err
	}
	*resp = info
	return nil
}

func (s *frameworkRPCServer) Execute(args ExecuteArgs, resp *string) error {
	text, err := s.impl.Execute(args)
	if err != nil {
		return err
	}
	*resp = text
	return nil
}

type frameworkRPCClient struct {
	client *rpc.Client
}

func (c *frameworkRPCClient) Info() (WireInfo, error) {
	var resp WireInfo
	err := c.client.Call("Plugin.Info", struct{}{}, &resp)
	return resp, err
}

func (c *frameworkRPCClient) Execute(args ExecuteArgs) (string, error) {
	var resp string
	err := c.client.Call("Plugin.Execute", args, &resp)
	return resp, err
}

// ServeProvider is the main-function body for a provider plugin binary.
func ServeProvider(impl RemoteProvider) {
	goplugin.Serve(&goplugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]goplugin.Plugin{
			ProviderPluginName: &ProviderPlugin{Impl: impl},
		},
	})
}

// ServeFramework is the main-function body for a framework plugin binary.
func ServeFramework(impl RemoteFramework) {
	goplugin.Serve(&goplugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]goplugin.Plugin{
			FrameworkPluginName: &FrameworkPlugin{Impl: impl},
		},
	})
}
