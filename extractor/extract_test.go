package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/newgoods/models"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestExtractProducts_Fixture(t *testing.T) {
	products, err := ExtractProducts(loadFixture(t, "newgoods.html"), DefaultSelectors())
	require.NoError(t, err)

	want := []models.Product{
		{Name: "手巻 紅しゃけ", Price: "198円（税込213円）", Region: "北海道"},
		{Name: "モバイルバッテリー", Price: "2,980円（税込3,278円）", Region: "全国"},
		{Name: "", Price: "250円", Region: "九州"},
		{Name: "ファミマ・ザ・メロンパン", Price: "", Region: "全国"},
	}
	assert.Equal(t, want, products)
}

func TestExtractProducts_AllFieldsPresent(t *testing.T) {
	html := `<ul>
		<li class="ly-mod-infoset"><span class="ly-mod-infoset-name"> A </span><span class="ly-mod-infoset-price">100円</span><span class="ly-mod-infoset-area">関東</span></li>
		<li class="ly-mod-infoset"><span class="ly-mod-infoset-name">B</span><span class="ly-mod-infoset-price"> 200円 </span><span class="ly-mod-infoset-area">近畿</span></li>
		<li class="ly-mod-infoset"><span class="ly-mod-infoset-name">C</span><span class="ly-mod-infoset-price">300円</span><span class="ly-mod-infoset-area"> 東北 </span></li>
	</ul>`

	products, err := ExtractProducts(html, DefaultSelectors())
	require.NoError(t, err)
	require.Len(t, products, 3)

	assert.Equal(t, models.Product{Name: "A", Price: "100円", Region: "関東"}, products[0])
	assert.Equal(t, models.Product{Name: "B", Price: "200円", Region: "近畿"}, products[1])
	assert.Equal(t, models.Product{Name: "C", Price: "300円", Region: "東北"}, products[2])
}

func TestExtractProducts_NoContainers(t *testing.T) {
	products, err := ExtractProducts(`<html><body><p>メンテナンス中</p></body></html>`, DefaultSelectors())
	require.NoError(t, err)
	require.NotNil(t, products)
	assert.Empty(t, products)
}

func TestExtractProducts_FirstDescendantWins(t *testing.T) {
	html := `<div class="ly-mod-infoset">
		<p class="ly-mod-infoset-name">first</p>
		<p class="ly-mod-infoset-name">second</p>
	</div>`

	products, err := ExtractProducts(html, DefaultSelectors())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "first", products[0].Name)
}

func TestExtractProducts_NestedText(t *testing.T) {
	html := `<div class="ly-mod-infoset">
		<p class="ly-mod-infoset-price">
			<span>120円</span><small>（税込129円）</small>
		</p>
	</div>`

	products, err := ExtractProducts(html, DefaultSelectors())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "120円（税込129円）", products[0].Price)
}

func TestExtractProducts_WhitespaceBetweenChildren(t *testing.T) {
	html := `<div class="ly-mod-infoset">
		<p class="ly-mod-infoset-name">ファミマ<br>
			限定 おにぎり</p>
		<p class="ly-mod-infoset-price">
			<span>138円</span>
			<span>（税込149円）</span>
		</p>
		<p class="ly-mod-infoset-area">
			<span>関東</span> <!-- 地域 -->
		</p>
	</div>`

	products, err := ExtractProducts(html, DefaultSelectors())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, models.Product{Name: "ファミマ限定 おにぎり", Price: "138円（税込149円）", Region: "関東"}, products[0])
}

func TestExtractProducts_CustomDefaultRegion(t *testing.T) {
	sel := DefaultSelectors()
	sel.DefaultRegion = "nationwide"

	products, err := ExtractProducts(`<div class="ly-mod-infoset"></div>`, sel)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, models.Product{Name: "", Price: "", Region: "nationwide"}, products[0])
}

func TestSelectors_Validate(t *testing.T) {
	require.NoError(t, DefaultSelectors().Validate())

	sel := DefaultSelectors()
	sel.Price = ".ly-mod[["
	err := sel.Validate()

	var pe *models.PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, models.ErrCodeInvalidInput, pe.Code)
	assert.Contains(t, pe.Message, "price")
}

func TestExtractCampaigns(t *testing.T) {
	html := `<html><body>
		<a href="/campaign/2026/summer_fair.html">夏のファミマフェア開催中！対象商品でポイント還元</a>
		<a href="/campaign/short.html">短い</a>
		<a href="https://www.family.co.jp/goods/newgoods.html">新商品情報はこちらからご覧いただけます</a>
		<a href="https://www.family.co.jp/campaign/app/coupon.html">  ファミペイアプリ限定クーポンキャンペーン  </a>
		<a>リンクなしのアンカーテキストです。</a>
	</body></html>`

	campaigns, err := ExtractCampaigns(html, "https://www.family.co.jp/campaign.html")
	require.NoError(t, err)

	assert.Equal(t, []models.Campaign{
		{Title: "夏のファミマフェア開催中！対象商品でポイント還元", URL: "https://www.family.co.jp/campaign/2026/summer_fair.html"},
		{Title: "ファミペイアプリ限定クーポンキャンペーン", URL: "https://www.family.co.jp/campaign/app/coupon.html"},
	}, campaigns)
}

func TestExtractCampaigns_None(t *testing.T) {
	campaigns, err := ExtractCampaigns(`<p>no links</p>`, "https://www.family.co.jp/campaign.html")
	require.NoError(t, err)
	require.NotNil(t, campaigns)
	assert.Empty(t, campaigns)
}
