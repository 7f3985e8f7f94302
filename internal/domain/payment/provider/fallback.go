package provider

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

const (
	MethodDemo = "demo"
	demoPrefix = "demo_pi_"
)

// FallbackProvider 未配置渠道凭证时使用：合成凭据并总是报告支付成功
type FallbackProvider struct{}

func NewFallbackProvider() *FallbackProvider {
	return &FallbackProvider{}
}

func (p *FallbackProvider) Name() string {
	return MethodDemo
}

func (p *FallbackProvider) Create(ctx context.Context, req CreateRequest) (*Intent, error) {
	ref := demoPrefix + uuid.NewString()
	return &Intent{Ref: ref, ClientSecret: ref + "_secret_demo"}, nil
}

func (p *FallbackProvider) Retrieve(ctx context.Context, ref string) (Status, error) {
	return StatusSucceeded, nil
}

// IsDemoRef 演示模式生成的凭据
func IsDemoRef(ref string) bool {
	return strings.HasPrefix(ref, demoPrefix)
}
