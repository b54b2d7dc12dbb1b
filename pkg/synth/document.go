package synth

import (
	"bytes"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Proxy is one entry of the proxies list.
type Proxy struct {
	Name           string `yaml:"name"`
	Type           string `yaml:"type"`
	Server         string `yaml:"server"`
	Port           uint16 `yaml:"port"`
	UUID           string `yaml:"uuid"`
	Network        string `yaml:"network"`
	Flow           string `yaml:"flow,omitempty"`
	TLS            bool   `yaml:"tls"`
	SkipCertVerify bool   `yaml:"skip-cert-verify"`
	SNI            string `yaml:"sni,omitempty"`
	UDP            bool   `yaml:"udp"`
}

// ProxyGroup is one entry of proxy-groups.
type ProxyGroup struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	URL      string   `yaml:"url,omitempty"`
	Interval int      `yaml:"interval,omitempty"`
	Proxies  []string `yaml:"proxies,omitempty"`
}

// RuleProvider declares a remote rule set.
type RuleProvider struct {
	Type     string `yaml:"type"`
	Behavior string `yaml:"behavior"`
	URL      string `yaml:"url"`
	Path     string `yaml:"path"`
	Interval int    `yaml:"interval"`
}

// NamedProvider is a RuleProvider with its mapping key.
type NamedProvider struct {
	Name string
	RuleProvider
}

// Providers marshals as a YAML mapping that keeps insertion order.
type Providers []NamedProvider

// MarshalYAML implements yaml.Marshaler.
func (p Providers) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, np := range p {
		var value yaml.Node
		if err := value.Encode(np.RuleProvider); err != nil {
			return nil, fmt.Errorf("encode rule provider %q: %w", np.Name, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: np.Name},
			&value,
		)
	}
	return node, nil
}

// Document is the complete configuration, fields in output order.
type Document struct {
	Port          int          `yaml:"port"`
	SocksPort     int          `yaml:"socks-port"`
	AllowLAN      bool         `yaml:"allow-lan"`
	Mode          string       `yaml:"mode"`
	Proxies       []Proxy      `yaml:"proxies"`
	ProxyGroups   []ProxyGroup `yaml:"proxy-groups"`
	RuleProviders Providers    `yaml:"rule-providers"`
	Rules         []string     `yaml:"rules"`
}

// Bytes renders the document as YAML.
func (d Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return unescapeAstral(buf.Bytes()), nil
}

// quotedScalar matches a double-quoted scalar. astralEscape matches the
// \UXXXXXXXX escapes the encoder emits inside one for runes outside the basic
// multilingual plane, with the backslashes before them.
var (
	quotedScalar = regexp.MustCompile(`(?s)"(?:[^"\\]|\\.)*"`)
	astralEscape = regexp.MustCompile(`(\\+)U([0-9A-Fa-f]{8})`)
)

// unescapeAstral writes emoji and other supplementary-plane runes literally.
// The rewrite is kept only when the result decodes to the same document.
func unescapeAstral(data []byte) []byte {
	if !astralEscape.Match(data) {
		return data
	}
	out := quotedScalar.ReplaceAllFunc(data, func(q []byte) []byte {
		return astralEscape.ReplaceAllFunc(q, literalRune)
	})

	var before, after any
	if yaml.Unmarshal(data, &before) != nil || yaml.Unmarshal(out, &after) != nil {
		return data
	}
	if !reflect.DeepEqual(before, after) {
		return data
	}
	return out
}

// literalRune replaces one escape with its rune. An even run of backslashes
// is a series of escaped backslashes followed by a plain U and stays as is.
func literalRune(m []byte) []byte {
	sub := astralEscape.FindSubmatch(m)
	slashes, hex := sub[1], sub[2]
	if len(slashes)%2 == 0 {
		return m
	}
	code, err := strconv.ParseUint(string(hex), 16, 32)
	if err != nil || code < 0x10000 || !utf8.ValidRune(rune(code)) {
		return m
	}
	return append(bytes.Clone(slashes[:len(slashes)-1]), string(rune(code))...)
}
