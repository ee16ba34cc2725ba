package service

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/at-my-table/backend/internal/model"
)

// RawRecipe is the transient shape produced by extraction, before a row is
// persisted.
type RawRecipe struct {
	Title        string
	Ingredients  []model.IngredientLine
	Instructions []string
	Image        string
	Servings     string
	Time         string
	Nutrition    map[string]string
}

// UntitledRecipe is the title sentinel used when no heading can be found
const UntitledRecipe = "Untitled Recipe"

// The eight nutrient slugs the WPRM nutrition label exposes
var nutrientSlugs = []string{
	"calories",
	"carbohydrates",
	"protein",
	"fat",
	"saturated_fat",
	"sodium",
	"fiber",
	"sugar",
}

var spaceRe = regexp.MustCompile(`\s+`)

func collapse(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// isPlaceholder reports whether an image URL is an inline vector
// placeholder rather than a real asset.
func isPlaceholder(src string) bool {
	return strings.Contains(src, "<svg")
}

// ExtractRecipe recovers structured recipe data from a rendered page
// snapshot. It never fails: every field independently degrades to its zero
// value when the page's markup omits the expected container. Absence of a
// container is expected, not an error.
func ExtractRecipe(page *LoadedPage) *RawRecipe {
	raw := &RawRecipe{
		Title:        UntitledRecipe,
		Ingredients:  []model.IngredientLine{},
		Instructions: []string{},
		Nutrition:    map[string]string{},
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return raw
	}

	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		raw.Title = title
	}

	raw.Ingredients = extractIngredients(doc)
	raw.Instructions = extractInstructions(doc)
	raw.Image = extractImage(doc)
	raw.Servings = strings.TrimSpace(doc.Find(".wprm-recipe-servings").First().Text())
	// time strings may embed line breaks; left unnormalized, display
	// replaces them with spaces
	raw.Time = strings.TrimSpace(doc.Find(".wprm-recipe-time").First().Text())
	raw.Nutrition = extractNutrition(doc)

	// last resort, deliberately widened to the whole page: only once the
	// targeted image heuristics have all failed or resolved to an inline
	// vector placeholder
	if raw.Image == "" || isPlaceholder(raw.Image) {
		doc.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
			src, _ := img.Attr("src")
			if src == "" || isPlaceholder(src) {
				return true
			}
			raw.Image = src
			return false
		})
	}

	return raw
}

// extractIngredients prefers the grouped container convention, falling back
// to the flat list. Some recipe plugins group ingredients ("For the sauce"),
// others use a single flat list; grouped structure must not be dropped when
// present.
func extractIngredients(doc *goquery.Document) []model.IngredientLine {
	lines := []model.IngredientLine{}

	groups := doc.Find(".wprm-recipe-ingredient-group")
	if groups.Length() > 0 {
		groups.Each(func(_ int, group *goquery.Selection) {
			if name := strings.TrimSpace(group.Find(".wprm-recipe-group-name").First().Text()); name != "" {
				lines = append(lines, model.IngredientLine{Kind: model.IngredientHeader, Text: name})
			}
			group.Find(".wprm-recipe-ingredient").Each(func(_ int, item *goquery.Selection) {
				if text := strings.TrimSpace(item.Text()); text != "" {
					lines = append(lines, model.IngredientLine{Kind: model.IngredientItem, Text: text})
				}
			})
		})
		return lines
	}

	doc.Find(".wprm-recipe-ingredients li").Each(func(_ int, item *goquery.Selection) {
		if text := strings.TrimSpace(item.Text()); text != "" {
			lines = append(lines, model.IngredientLine{Kind: model.IngredientItem, Text: text})
		}
	})
	return lines
}

// extractInstructions collects the flat ordered instruction list; source
// sites never group instructions.
func extractInstructions(doc *goquery.Document) []string {
	steps := []string{}
	doc.Find(".wprm-recipe-instructions li").Each(func(_ int, item *goquery.Selection) {
		if text := strings.TrimSpace(item.Text()); text != "" {
			steps = append(steps, text)
		}
	})
	return steps
}

// imageStrategy is one named way to resolve the recipe image. Strategies
// are applied in order and the first non-empty result wins.
type imageStrategy struct {
	name string
	fn   func(doc *goquery.Document, img *goquery.Selection) string
}

var imageStrategies = []imageStrategy{
	{"og:image", func(doc *goquery.Document, _ *goquery.Selection) string {
		v, _ := doc.Find(`meta[property="og:image"]`).First().Attr("content")
		return v
	}},
	{"src", func(_ *goquery.Document, img *goquery.Selection) string {
		v, _ := img.Attr("src")
		return v
	}},
	{"data-lazy-src", func(_ *goquery.Document, img *goquery.Selection) string {
		v, _ := img.Attr("data-lazy-src")
		return v
	}},
	{"data-lazy-srcset", func(_ *goquery.Document, img *goquery.Selection) string {
		v, _ := img.Attr("data-lazy-srcset")
		return firstSrcsetURL(v)
	}},
	{"data-src", func(_ *goquery.Document, img *goquery.Selection) string {
		v, _ := img.Attr("data-src")
		return v
	}},
	{"srcset", func(_ *goquery.Document, img *goquery.Selection) string {
		v, _ := img.Attr("srcset")
		return firstSrcsetURL(v)
	}},
}

// extractImage applies the image strategies against the dedicated recipe
// image element, or the first image on the page when no dedicated one
// exists.
func extractImage(doc *goquery.Document) string {
	img := doc.Find(".wprm-recipe-image img").First()
	if img.Length() == 0 {
		img = doc.Find("img").First()
	}

	for _, strat := range imageStrategies {
		if v := strat.fn(doc, img); v != "" {
			return v
		}
	}
	return ""
}

// firstSrcsetURL returns the URL of the first srcset candidate
func firstSrcsetURL(srcset string) string {
	if srcset == "" {
		return ""
	}
	first := strings.TrimSpace(strings.Split(srcset, ",")[0])
	if fields := strings.Fields(first); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// extractNutrition reads the WPRM nutrition label. Nutrients with no
// resolvable value are omitted from the map entirely.
func extractNutrition(doc *goquery.Document) map[string]string {
	nutrition := map[string]string{}

	container := doc.Find(".wprm-nutrition-label-container").First()
	if container.Length() == 0 {
		return nutrition
	}

	for _, slug := range nutrientSlugs {
		sub := container.Find(".wprm-nutrition-label-text-nutrition-container-" + slug).First()
		if sub.Length() == 0 {
			continue
		}

		label := strings.TrimSpace(sub.Find(".wprm-nutrition-label-label").First().Text())
		value := strings.TrimSpace(sub.Find(".wprm-nutrition-label-value").First().Text())
		unit := strings.TrimSpace(sub.Find(".wprm-nutrition-label-unit").First().Text())

		var composed string
		if value != "" {
			composed = collapse(label + " " + value + " " + unit)
		} else {
			composed = collapse(sub.Text())
		}
		if composed != "" {
			nutrition[slug] = composed
		}
	}
	return nutrition
}
