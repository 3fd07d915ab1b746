package extension

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/universal-a2a/gateway/internal/dispatch"
	"github.com/universal-a2a/gateway/internal/domain"
	"github.com/universal-a2a/gateway/internal/framework"
	"github.com/universal-a2a/gateway/internal/provider"
)

func pluginClient(path, dispenseName string, p goplugin.Plugin) (*goplugin.Client, interface{}, error) {
	client := goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig:  Handshake,
		Plugins:          map[string]goplugin.Plugin{dispenseName: p},
		Cmd:              exec.Command(path),
		Logger:           hclog.New(&hclog.LoggerOptions{Name: "a2a-plugin", Level: hclog.Warn}),
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("start plugin %s: %w", path, err)
	}
	raw, err := rpcClient.Dispense(dispenseName)
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("dispense %s from %s: %w", dispenseName, path, err)
	}
	return client, raw, nil
}

// subprocessProviderFactory builds a provider backed by a plugin binary.
// Launch and handshake failures surface as factory errors, which the
// registry converts to not-ready placeholders.
func subprocessProviderFactory(id, path string) provider.Factory {
	return func() (domain.Provider, error) {
		client, raw, err := pluginClient(path, ProviderPluginName, &ProviderPlugin{})
		if err != nil {
			return nil, err
		}
		remote, ok := raw.(RemoteProvider)
		if !ok {
			client.Kill()
			return nil, fmt.Errorf("plugin %s does not implement the provider contract", path)
		}

		info, err := remote.Info()
		if err != nil {
			client.Kill()
			return nil, fmt.Errorf("query plugin %s identity: %w", path, err)
		}
		if info.ID == "" {
			info.ID = id
		}
		return &subprocessProvider{remote: remote, client: client, info: info}, nil
	}
}

// subprocessProvider adapts a remote plugin to domain.Provider. net/rpc
// calls block, so generation runs on the shared dispatch pool.
type subprocessProvider struct {
	remote RemoteProvider
	client *goplugin.Client
	info   WireInfo
}

func (p *subprocessProvider) Info() domain.Info {
	return domain.Info{
		ID:               p.info.ID,
		Name:             p.info.Name,
		Ready:            p.info.Ready,
		Reason:           p.info.Reason,
		SupportsMessages: p.info.SupportsMessages,
	}
}

func (p *subprocessProvider) Generate(ctx context.Context, prompt string, messages []domain.Message) (string, error) {
	return dispatch.Offload(ctx, func() (string, error) {
		return p.remote.Generate(GenerateArgs{
			Prompt:   prompt,
			Messages: flatten(messages),
		})
	})
}

// Close kills the plugin subprocess.
func (p *subprocessProvider) Close() { p.client.Kill() }

// subprocessFrameworkFactory builds a framework backed by a plugin
// binary. The remote side brings its own backend, so the gateway's
// provider is not forwarded across the process boundary.
func subprocessFrameworkFactory(id, path string) framework.Factory {
	return func(domain.Provider) (domain.Framework, error) {
		client, raw, err := pluginClient(path, FrameworkPluginName, &FrameworkPlugin{})
		if err != nil {
			return nil, err
		}
		remote, ok := raw.(RemoteFramework)
		if !ok {
			client.Kill()
			return nil, fmt.Errorf("plugin %s does not implement the framework contract", path)
		}

		info, err := remote.Info()
		if err != nil {
			client.Kill()
			return nil, fmt.Errorf("query plugin %s identity: %w", path, err)
		}
		if info.ID == "" {
			info.ID = id
		}
		return &subprocessFramework{remote: remote, client: client, info: info}, nil
	}
}

type subprocessFramework struct {
	remote RemoteFramework
	client *goplugin.Client
	info   WireInfo
}

func (f *subprocessFramework) Info() domain.Info {
	return domain.Info{
		ID:     f.info.ID,
		Name:   f.info.Name,
		Ready:  f.info.Ready,
		Reason: f.info.Reason,
	}
}

func (f *subprocessFramework) Execute(ctx context.Context, messages []domain.Message) domain.Result {
	text, err := dispatch.Offload(ctx, func() (string, error) {
		return f.remote.Execute(ExecuteArgs{Messages: flatten(messages)})
	})
	if err != nil {
		return domain.DegradedResult(fmt.Sprintf("[%s error] %v", f.info.ID, err), err.Error())
	}
	return domain.Ok(text)
}

// Close kills the plugin subprocess.
func (f *subprocessFramework) Close() { f.client.Kill() }

func flatten(messages []domain.Message) []WireMessage {
	out := make([]WireMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, WireMessage{Role: m.Role, Content: m.Content.String()})
	}
	return out
}
