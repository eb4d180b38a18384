package extractor

import (
	"fmt"

	"github.com/andybalholm/cascadia"
	"github.com/use-agent/newgoods/config"
	"github.com/use-agent/newgoods/models"
)

// Selectors locates products in the page. Container matches one listing;
// Name, Price and Region are matched against the container's descendants.
type Selectors struct {
	Container     string
	Name          string
	Price         string
	Region        string
	DefaultRegion string
}

// DefaultSelectors matches the markup of the FamilyMart new-products page.
func DefaultSelectors() Selectors {
	return Selectors{
		Container:     ".ly-mod-infoset",
		Name:          ".ly-mod-infoset-name",
		Price:         ".ly-mod-infoset-price",
		Region:        ".ly-mod-infoset-area",
		DefaultRegion: "全国",
	}
}

// FromConfig builds Selectors from the loaded configuration.
func FromConfig(cfg config.SelectorConfig) Selectors {
	return Selectors{
		Container:     cfg.Container,
		Name:          cfg.Name,
		Price:         cfg.Price,
		Region:        cfg.Region,
		DefaultRegion: cfg.DefaultRegion,
	}
}

// Validate compiles every selector so a typo fails before any network I/O.
func (s Selectors) Validate() error {
	for _, f := range []struct{ field, sel string }{
		{"container", s.Container},
		{"name", s.Name},
		{"price", s.Price},
		{"region", s.Region},
	} {
		if _, err := cascadia.Parse(f.sel); err != nil {
			return models.NewPipelineError(models.ErrCodeInvalidInput,
				fmt.Sprintf("invalid %s selector %q", f.field, f.sel), err)
		}
	}
	return nil
}
