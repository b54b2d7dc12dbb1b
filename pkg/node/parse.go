// Package node parses proxy descriptor lines into domain.ProxyNode records.
//
// A descriptor line looks like:
//
//	HK-01,vless,hk.example.com,443,"uuid",transport=ws,over-tls=true,sni=hk.example.com
//
// The first five fields are name, type tag, host, port and identifier. Everything
// after them is a list of key=value parameters.
package node

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/rulecraft/pkg/domain"
)

const minFields = 5

// DefaultMarkers are name fragments the upstream list format uses for quota and
// expiry notices rather than real nodes.
var DefaultMarkers = []string{"剩余流量", "距离下次重置剩余", "套餐到期"}

// Parse turns one descriptor line into a ProxyNode.
// It fails with *domain.MalformedNodeError on short lines, bad ports, or empty
// required fields.
func Parse(line string) (domain.ProxyNode, error) {
	fields := strings.Split(line, ",")
	if len(fields) < minFields {
		return domain.ProxyNode{}, malformed(line, fmt.Sprintf("expected at least %d comma-separated fields, got %d", minFields, len(fields)), nil)
	}

	name := clean(fields[0])
	host := clean(fields[2])
	portText := clean(fields[3])
	id := clean(fields[4])

	port, err := strconv.ParseUint(portText, 10, 16)
	if err != nil {
		return domain.ProxyNode{}, malformed(line, fmt.Sprintf("invalid port %q", portText), err)
	}

	switch {
	case name == "":
		return domain.ProxyNode{}, malformed(line, "empty name", nil)
	case host == "":
		return domain.ProxyNode{}, malformed(line, "empty host", nil)
	case id == "":
		return domain.ProxyNode{}, malformed(line, "empty identifier", nil)
	}

	return domain.ProxyNode{
		Name:       name,
		Host:       host,
		Port:       uint16(port),
		Identifier: id,
		Params:     parseParams(fields[minFields:]),
		Region:     regionOf(name),
	}, nil
}

// parseParams rejoins the trailing fields and re-splits them into key=value pairs.
// A value that itself contained a comma cannot be recovered; that is a limitation
// of the line format.
func parseParams(rest []string) map[string]string {
	params := make(map[string]string)
	if len(rest) == 0 {
		return params
	}
	for _, p := range strings.Split(strings.Join(rest, ","), ",") {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		k = clean(k)
		if k == "" {
			continue
		}
		params[k] = strings.TrimSpace(strings.ReplaceAll(v, `"`, ""))
	}
	return params
}

func regionOf(name string) string {
	region, _, _ := strings.Cut(name, "-")
	return region
}

func clean(s string) string {
	return strings.Trim(strings.TrimSpace(s), "\"' \t\r")
}

func malformed(line, reason string, cause error) *domain.MalformedNodeError {
	return &domain.MalformedNodeError{Text: line, Reason: reason, Cause: cause}
}

// Format renders a node back into a descriptor line. Parameters are written in
// key order so the output is stable.
func Format(n domain.ProxyNode) string {
	var b strings.Builder
	b.WriteString(n.Name)
	b.WriteString(",vless,")
	b.WriteString(n.Host)
	b.WriteByte(',')
	b.WriteString(strconv.FormatUint(uint64(n.Port), 10))
	b.WriteByte(',')
	b.WriteString(n.Identifier)

	keys := make([]string, 0, len(n.Params))
	for k := range n.Params {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		b.WriteByte(',')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(n.Params[k])
	}
	return b.String()
}
