package price

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mtlprog/pricebot/internal/domain"
)

//go:embed tokens.yaml
var defaultTokens []byte

type assetYAML struct {
	Class  string `yaml:"class"`
	Symbol string `yaml:"symbol"`
}

type tokenYAML struct {
	Selector string     `yaml:"selector"`
	Provider string     `yaml:"provider"`
	Base     *assetYAML `yaml:"base"`
	Quote    *assetYAML `yaml:"quote"`
	Canister string     `yaml:"canister"`
}

// Registry maps the selectors offered to users onto price configs.
type Registry struct {
	configs   map[string]domain.Config
	selectors []string
}

// DefaultRegistry returns the embedded token list.
func DefaultRegistry() (*Registry, error) {
	return ParseRegistry(defaultTokens)
}

// LoadRegistryFile reads a token list from path.
func LoadRegistryFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening token registry: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading token registry: %w", err)
	}
	return ParseRegistry(data)
}

// ParseRegistry decodes a YAML token list. Selectors must be unique.
func ParseRegistry(data []byte) (*Registry, error) {
	var doc struct {
		Tokens []tokenYAML `yaml:"tokens"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing token registry: %w", err)
	}

	r := &Registry{configs: make(map[string]domain.Config, len(doc.Tokens))}
	for i, t := range doc.Tokens {
		if t.Selector == "" {
			return nil, fmt.Errorf("token %d: empty selector", i)
		}
		if _, dup := r.configs[t.Selector]; dup {
			return nil, fmt.Errorf("token %q: duplicate selector", t.Selector)
		}
		cfg, err := t.config()
		if err != nil {
			return nil, fmt.Errorf("token %q: %w", t.Selector, err)
		}
		r.configs[t.Selector] = cfg
		r.selectors = append(r.selectors, t.Selector)
	}
	return r, nil
}

func (t tokenYAML) config() (domain.Config, error) {
	var cfg domain.Config
	switch domain.Provider(t.Provider) {
	case domain.ProviderExchangeRate:
		if t.Base == nil || t.Quote == nil {
			return domain.Config{}, fmt.Errorf("xrc token needs base and quote")
		}
		base, err := domain.NewAsset(t.Base.Class, t.Base.Symbol)
		if err != nil {
			return domain.Config{}, err
		}
		quote, err := domain.NewAsset(t.Quote.Class, t.Quote.Symbol)
		if err != nil {
			return domain.Config{}, err
		}
		cfg = domain.NewExchangeRateConfig(base, quote)
	case domain.ProviderAmmToken:
		cfg = domain.NewAmmTokenConfig(t.Canister)
	default:
		return domain.Config{}, fmt.Errorf("unknown provider %q", t.Provider)
	}
	return cfg, cfg.Validate()
}

// Lookup returns the config for selector.
func (r *Registry) Lookup(selector string) (domain.Config, bool) {
	cfg, ok := r.configs[selector]
	return cfg, ok
}

// Selectors lists selectors in file order.
func (r *Registry) Selectors() []string {
	return append([]string(nil), r.selectors...)
}
