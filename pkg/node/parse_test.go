package node_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/aretw0/rulecraft/pkg/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Basic(t *testing.T) {
	n, err := node.Parse(`HK-01, vless, hk.example.com, 443, "abc-123", transport=ws, over-tls="true", sni=hk.example.com, flow`)
	require.NoError(t, err)

	assert.Equal(t, "HK-01", n.Name)
	assert.Equal(t, "hk.example.com", n.Host)
	assert.Equal(t, uint16(443), n.Port)
	assert.Equal(t, "abc-123", n.Identifier)
	assert.Equal(t, "HK", n.Region)
	assert.Equal(t, map[string]string{
		"transport": "ws",
		"over-tls":  "true",
		"sni":       "hk.example.com",
	}, n.Params)
}

func TestParse_Region(t *testing.T) {
	n, err := node.Parse("US-01,vless,h,1,id")
	require.NoError(t, err)
	assert.Equal(t, "US", n.Region)

	n, err = node.Parse("NoHyphenName,vless,h,1,id")
	require.NoError(t, err)
	assert.Equal(t, "NoHyphenName", n.Region)
}

func TestParse_Malformed(t *testing.T) {
	lines := []string{
		"",
		"a,b,c,d",
		"HK-01,vless,h,notaport,id",
		"HK-01,vless,h,-1,id",
		"HK-01,vless,h,70000,id",
		`"",vless,h,1,id`,
		"HK-01,vless, ,1,id",
		`HK-01,vless,h,1,""`,
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			_, err := node.Parse(line)
			var me *domain.MalformedNodeError
			require.True(t, errors.As(err, &me), "got %v", err)
			assert.Equal(t, line, me.Text)
			assert.NotEmpty(t, me.Reason)
		})
	}
}

func TestParse_ParamsLaterKeyWins(t *testing.T) {
	n, err := node.Parse("JP-1,vless,h,1,id,udp=false,udp=true")
	require.NoError(t, err)
	assert.Equal(t, "true", n.Params["udp"])
}

func TestParse_ParamValueKeepsEquals(t *testing.T) {
	n, err := node.Parse("JP-1,vless,h,1,id,path=/ws?ed=2048")
	require.NoError(t, err)
	assert.Equal(t, "/ws?ed=2048", n.Params["path"])
}

func TestFormat_RoundTrip(t *testing.T) {
	for i := 0; i < 50; i++ {
		line := fmt.Sprintf("R%d-%02d,vless,host%d.example.com,%d,uuid-%d,sni=s%d", i%5, i, i, 1000+i*37, i, i)
		n, err := node.Parse(line)
		require.NoError(t, err)

		again, err := node.Parse(node.Format(n))
		require.NoError(t, err)
		assert.Equal(t, n.Host, again.Host)
		assert.Equal(t, n.Port, again.Port)
		assert.Equal(t, n.Identifier, again.Identifier)
		assert.Equal(t, n.Params, again.Params)
	}
}
