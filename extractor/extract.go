package extractor

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/newgoods/models"
	"golang.org/x/net/html"
)

// ExtractProducts returns one Product per container matched by sel, in
// document order. A missing name or price yields "", a missing region
// yields sel.DefaultRegion. Zero matches yield an empty, non-nil slice.
func ExtractProducts(rawHTML string, sel Selectors) ([]models.Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewPipelineError(models.ErrCodeParse, "extractor: parse html", err)
	}

	products := []models.Product{}
	doc.Find(sel.Container).Each(func(_ int, item *goquery.Selection) {
		products = append(products, models.Product{
			Name:   firstText(item, sel.Name, ""),
			Price:  firstText(item, sel.Price, ""),
			Region: firstText(item, sel.Region, sel.DefaultRegion),
		})
	})

	return products, nil
}

// firstText returns the stripped text of the first descendant matching
// selector, or fallback when there is none.
func firstText(s *goquery.Selection, selector, fallback string) string {
	node := s.Find(selector).First()
	if node.Length() == 0 {
		return fallback
	}
	return strippedText(node.Get(0))
}

// strippedText trims every descendant text node on its own and joins the
// non-empty fragments with no separator, so markup indentation between
// child elements never reaches the output.
func strippedText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// minCampaignTitle is the title length (in characters) a link must exceed
// to count as a campaign; shorter anchors are navigation chrome.
const minCampaignTitle = 10

// ExtractCampaigns returns every link whose text is longer than
// minCampaignTitle characters and whose absolute URL contains "/campaign/".
// Relative hrefs are resolved against baseURL.
func ExtractCampaigns(rawHTML string, baseURL string) ([]models.Campaign, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, models.NewPipelineError(models.ErrCodeInvalidInput, "extractor: parse base url", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewPipelineError(models.ErrCodeParse, "extractor: parse html", err)
	}

	campaigns := []models.Campaign{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved, err := base.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := resolved.String()

		title := strings.TrimSpace(s.Text())
		if utf8.RuneCountInString(title) <= minCampaignTitle || !strings.Contains(abs, "/campaign/") {
			return
		}
		campaigns = append(campaigns, models.Campaign{Title: title, URL: abs})
	})

	return campaigns, nil
}
