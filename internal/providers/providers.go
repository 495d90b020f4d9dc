package providers

import (
	"fmt"
	"sort"
	"strings"
)

// Provider 支持的凭证提供方
type Provider string

const (
	OpenAI      Provider = "openai"
	Gemini      Provider = "gemini"
	Anthropic   Provider = "anthropic"
	Mistral     Provider = "mistral"
	Cohere      Provider = "cohere"
	HuggingFace Provider = "huggingface"
	Azure       Provider = "azure"
	AWS         Provider = "aws"
	Google      Provider = "google"
	Langfuse    Provider = "langfuse"
)

// requiredFields 每个 Provider 的凭证必填字段
var requiredFields = map[Provider][]string{
	OpenAI:      {"api_key"},
	Gemini:      {"api_key"},
	Anthropic:   {"api_key"},
	Mistral:     {"api_key"},
	Cohere:      {"api_key"},
	HuggingFace: {"api_key"},
	Azure:       {"api_key", "endpoint"},
	AWS:         {"access_key_id", "secret_access_key", "region"},
	Google:      {"api_key"},
	Langfuse:    {"public_key", "secret_key", "host"},
}

// Supported 返回所有支持的 Provider 名称（有序，方便报错信息稳定）
func Supported() []string {
	names := make([]string, 0, len(requiredFields))
	for p := range requiredFields {
		names = append(names, string(p))
	}
	sort.Strings(names)
	return names
}

// Validate 校验 Provider 名称是否在闭集内
func Validate(name string) (Provider, error) {
	p := Provider(strings.ToLower(name))
	if _, ok := requiredFields[p]; !ok {
		return "", fmt.Errorf("unsupported provider: %s. Supported providers are: %s",
			name, strings.Join(Supported(), ", "))
	}
	return p, nil
}

// ValidateCredentials 校验凭证字段是否包含该 Provider 的全部必填项
func ValidateCredentials(name string, credential map[string]string) error {
	p, err := Validate(name)
	if err != nil {
		return err
	}

	var missing []string
	for _, field := range requiredFields[p] {
		if _, ok := credential[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields for %s: %s", p, strings.Join(missing, ", "))
	}
	return nil
}
