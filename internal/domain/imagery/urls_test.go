package imagery

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testRenderer = "https://planetarycomputer.microsoft.com/api/data/v1"

func londonScene(token string) Scene {
	return Scene{
		ID:         "S2B_MSIL2A_20250520T105619_R094_T30UXC",
		Collection: "sentinel-2-l2a",
		Datetime:   time.Date(2025, 5, 20, 10, 56, 19, 24000000, time.UTC),
		CloudCover: 12.0,
		Assets: map[string]Asset{
			"visual": {Href: "https://sentinel2l2a01.blob.core.windows.net/tci.tif?" + token},
			"B03":    {Href: "https://sentinel2l2a01.blob.core.windows.net/b03.tif?" + token},
		},
	}
}

func TestDeriveImagePackageLondon(t *testing.T) {
	bbox := NewBBox(Coordinate{Latitude: 51.5, Longitude: -0.1}, 0.005)

	pkg, err := DeriveImagePackage(londonScene("xyz123"), bbox, testRenderer)
	require.NoError(t, err)

	images := pkg.Images
	require.True(t, strings.HasPrefix(images.Visual, testRenderer+"/item/bbox/"+bbox.String()+".png?collection=sentinel-2-l2a&item=S2B_MSIL2A_20250520T105619_R094_T30UXC&"))
	require.True(t, strings.HasSuffix(images.Visual, "assets=visual&rescale=0,3000&xyz123"), images.Visual)

	require.True(t, strings.HasSuffix(images.FalseColor, "assets=B08&assets=B04&assets=B03&rescale=0,5000&asset_as_band=True&xyz123"), images.FalseColor)

	require.Contains(t, images.WaterMask, "expression=(B03-B08)/(B03%2BB08)")
	require.Contains(t, images.WaterMask, "colormap_name=blues")
	require.True(t, strings.HasSuffix(images.WaterMask, "asset_as_band=True&rescale=0,1&colormap_name=blues&xyz123"), images.WaterMask)

	require.Contains(t, images.NDCI, "expression=(B05-B04)/(B05%2BB04)")
	require.True(t, strings.HasSuffix(images.NDCI, "asset_as_band=True&rescale=-1,1&colormap_name=greens&xyz123"), images.NDCI)

	meta := pkg.Metadata
	require.Equal(t, "S2B_MSIL2A_20250520T105619_R094_T30UXC", meta.ItemID)
	require.Equal(t, "sentinel-2-l2a", meta.Collection)
	require.Equal(t, 12.0, meta.CloudCover)
	require.InDeltaSlice(t, []float64{-0.105, 51.495, -0.095, 51.505}, meta.BBox, 1e-12)
}

func TestDeriveImagePackageIsDeterministic(t *testing.T) {
	bbox := NewBBox(Coordinate{Latitude: -33.86, Longitude: 151.21}, 0.01)
	scene := londonScene("st=2025-05-20&se=2025-05-21&sp=rl&sig=abc%2Fdef")

	first, err := DeriveImagePackage(scene, bbox, testRenderer)
	require.NoError(t, err)
	second, err := DeriveImagePackage(scene, bbox, testRenderer)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestDeriveImagePackageTokenIsEverythingAfterFirstQuestionMark(t *testing.T) {
	scene := londonScene("a=1?b=2")
	pkg, err := DeriveImagePackage(scene, BBox{0, 0, 1, 1}, testRenderer+"/")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(pkg.Images.Visual, "&a=1?b=2"))
	require.True(t, strings.HasPrefix(pkg.Images.Visual, testRenderer+"/item/bbox/0,0,1,1.png?"))
}

func TestDeriveImagePackageRejectsUnsignedScene(t *testing.T) {
	tests := []struct {
		name   string
		assets map[string]Asset
	}{
		{name: "missing visual", assets: map[string]Asset{"B03": {Href: "https://x/b03.tif?tok"}}},
		{name: "no question mark", assets: map[string]Asset{"visual": {Href: "https://x/tci.tif"}}},
		{name: "empty token", assets: map[string]Asset{"visual": {Href: "https://x/tci.tif?"}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DeriveImagePackage(Scene{ID: "x", Assets: tt.assets}, BBox{}, testRenderer)
			require.Error(t, err)
		})
	}
}

func TestEscapeQuery(t *testing.T) {
	require.Equal(t, "(B03-B08)/(B03%2BB08)", escapeQuery("(B03-B08)/(B03+B08)"))
	require.Equal(t, "-1,1", escapeQuery("-1,1"))
	require.Equal(t, "a%20b%26c%3Dd", escapeQuery("a b&c=d"))
}
