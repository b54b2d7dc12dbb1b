package synth

import (
	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/aretw0/rulecraft/pkg/rules"
)

// Fixed document parameters.
const (
	AutomaticGroup   = "Automatic"
	HealthCheckURL   = "https://cp.cloudflare.com/generate_204"
	HealthInterval   = 300
	RuleInterval     = 86400
	DirectChoice     = "DIRECT"
	RejectChoice     = "REJECT"
	CategoryPrefix   = "🎯 "
	DefaultNetwork   = "tcp"
	DefaultMode      = "rule"
	DefaultPort      = 7890
	DefaultSocksPort = 7891
)

// LocationResolver resolves a category to its rule-set location.
// *rules.Resolver implements it.
type LocationResolver interface {
	Resolve(display string) rules.Location
}

// CategoryGroup is the name of the selection group routing a category.
func CategoryGroup(category string) string {
	return CategoryPrefix + category
}

// Synthesize builds the configuration for nodes and categories. Categories
// keep their input order in groups, providers and rules.
func Synthesize(nodes []domain.ProxyNode, categories []string, resolver LocationResolver) Document {
	doc := Document{
		Port:          DefaultPort,
		SocksPort:     DefaultSocksPort,
		AllowLAN:      true,
		Mode:          DefaultMode,
		Proxies:       make([]Proxy, 0, len(nodes)),
		ProxyGroups:   []ProxyGroup{},
		RuleProviders: Providers{},
		Rules:         make([]string, 0, len(categories)+1),
	}

	taken := map[string]bool{AutomaticGroup: true, DirectChoice: true, RejectChoice: true}
	for _, n := range nodes {
		taken[n.Name] = true
	}
	for _, c := range categories {
		taken[CategoryGroup(c)] = true
	}

	all := make([]string, 0, len(nodes))
	var regions []string
	members := map[string][]string{}
	for _, n := range nodes {
		doc.Proxies = append(doc.Proxies, proxyOf(n))
		all = append(all, n.Name)

		region := regionGroup(n.Region, taken)
		if _, seen := members[region]; !seen {
			regions = append(regions, region)
		}
		members[region] = append(members[region], n.Name)
	}

	doc.ProxyGroups = append(doc.ProxyGroups, ProxyGroup{
		Name:     AutomaticGroup,
		Type:     "url-test",
		URL:      HealthCheckURL,
		Interval: HealthInterval,
		Proxies:  all,
	})
	for _, r := range regions {
		doc.ProxyGroups = append(doc.ProxyGroups, ProxyGroup{Name: r, Type: "select", Proxies: members[r]})
	}
	doc.ProxyGroups = append(doc.ProxyGroups,
		ProxyGroup{Name: DirectChoice, Type: "direct"},
		ProxyGroup{Name: RejectChoice, Type: "reject"},
	)

	choices := make([]string, 0, len(regions)+3)
	choices = append(choices, AutomaticGroup)
	choices = append(choices, regions...)
	choices = append(choices, DirectChoice, RejectChoice)

	for _, c := range categories {
		group := CategoryGroup(c)
		doc.ProxyGroups = append(doc.ProxyGroups, ProxyGroup{
			Name:    group,
			Type:    "select",
			Proxies: append([]string(nil), choices...),
		})

		loc := resolver.Resolve(c)
		doc.RuleProviders = append(doc.RuleProviders, NamedProvider{
			Name: c,
			RuleProvider: RuleProvider{
				Type:     "http",
				Behavior: "domain",
				URL:      loc.URL,
				Path:     loc.Path,
				Interval: RuleInterval,
			},
		})

		doc.Rules = append(doc.Rules, "RULE-SET,"+c+","+group)
	}
	doc.Rules = append(doc.Rules, "MATCH,"+AutomaticGroup)
	return doc
}

func proxyOf(n domain.ProxyNode) Proxy {
	p := n.Params
	network := p["transport"]
	if network == "" {
		network = DefaultNetwork
	}
	return Proxy{
		Name:           n.Name,
		Type:           "vless",
		Server:         n.Host,
		Port:           n.Port,
		UUID:           n.Identifier,
		Network:        network,
		Flow:           p["flow"],
		TLS:            p["over-tls"] == "true",
		SkipCertVerify: p["skip-cert-verify"] != "false",
		SNI:            p["sni"],
		UDP:            p["udp"] == "true",
	}
}
