package synth

// regionNames maps raw region codes to group names. Values must stay
// pairwise distinct so two codes never share one region group.
var regionNames = map[string]string{
	"HK": "香港节点",
	"JP": "日本节点",
	"SG": "新加坡节点",
	"US": "美国节点",
	"GB": "英国节点",
	"UK": "英国节点(UK)",
	"KR": "韩国节点",
	"TW": "台湾节点",
	"CN": "中国节点",
	"DE": "德国节点",
	"FR": "法国节点",
	"CA": "加拿大节点",
	"AU": "澳大利亚节点",
}

// RegionName returns the group name for a raw region code. Codes outside
// the table are used verbatim.
func RegionName(code string) string {
	if name, ok := regionNames[code]; ok {
		return name
	}
	return code
}

// regionSuffix disambiguates a region group whose name is already taken by a
// proxy or by another group of the document.
const regionSuffix = "节点"

func regionGroup(code string, taken map[string]bool) string {
	name := RegionName(code)
	for taken[name] {
		name += regionSuffix
	}
	return name
}
