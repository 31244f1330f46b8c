package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStoreURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare shop name", in: "allbirds", want: "https://allbirds.myshopify.com"},
		{name: "custom domain", in: "shop.example.com", want: "https://shop.example.com"},
		{name: "scheme kept", in: "http://shop.example.com", want: "http://shop.example.com"},
		{name: "trailing slash stripped", in: "https://shop.example.com/", want: "https://shop.example.com"},
		{name: "whitespace trimmed", in: "  shop.example.com/  ", want: "https://shop.example.com"},
		{name: "host lowercased", in: "HTTPS://Shop.Example.COM", want: "https://shop.example.com"},
		{name: "query and fragment dropped", in: "https://shop.example.com/?utm=1#top", want: "https://shop.example.com"},
		{name: "path kept", in: "https://shop.example.com/eu/", want: "https://shop.example.com/eu"},
		{name: "port kept", in: "http://127.0.0.1:8080", want: "http://127.0.0.1:8080"},
		{name: "empty", in: "", wantErr: true},
		{name: "only slashes", in: "///", wantErr: true},
		{name: "whitespace only", in: "   ", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeStoreURL(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeStoreURLEmptySentinel(t *testing.T) {
	_, err := NormalizeStoreURL("   ")
	require.ErrorIs(t, err, ErrEmptyStoreURL)
}

func TestStoreHost(t *testing.T) {
	assert.Equal(t, "shop.example.com", StoreHost("https://shop.example.com"))
	assert.Equal(t, "127.0.0.1:9090", StoreHost("http://127.0.0.1:9090"))
	assert.Equal(t, "not a url", StoreHost("not a url"))
}
