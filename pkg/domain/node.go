package domain

// ProxyNode is one proxy descriptor parsed from a node-list line.
// It is immutable once constructed; Params keys are unique.
type ProxyNode struct {
	Name       string            `json:"name"`
	Host       string            `json:"host"`
	Port       uint16            `json:"port"`
	Identifier string            `json:"identifier"`
	Params     map[string]string `json:"params,omitempty"`
	Region     string            `json:"region"`
}

// Param returns the parameter value and whether it was present.
func (n ProxyNode) Param(key string) (string, bool) {
	v, ok := n.Params[key]
	return v, ok
}
