package source

import (
	"net/http"

	"jobharvest/internal/classify"
	"jobharvest/internal/config"
	"jobharvest/internal/model"
)

// Build constructs every enabled source from the configuration. All sources
// share the HTTP client, classifier, and per-host limiter.
func Build(cfg *config.Config, classifier *classify.Classifier, client *http.Client, limiter *HostLimiter) []model.Source {
	var sources []model.Source

	for _, b := range cfg.Sources.Greenhouse {
		if !b.Enabled {
			continue
		}
		sources = append(sources, NewGreenhouse(b.Slug, b.Name, cfg.Country, classifier, client, limiter))
	}
	for _, b := range cfg.Sources.SmartRecruiters {
		if !b.Enabled {
			continue
		}
		sources = append(sources, NewSmartRecruiters(b.Slug, b.Name, cfg.Country, classifier, client, limiter))
	}
	if cfg.Sources.Amazon.Enabled {
		sources = append(sources, NewAmazon(cfg.Sources.Amazon.CountryCode, cfg.Country, classifier, client, limiter))
	}
	for _, site := range cfg.Sources.SuccessFactors {
		if !site.Enabled {
			continue
		}
		sources = append(sources, NewSuccessFactors(site.Name, site.BaseURL, site.CountryCode, cfg.Country, classifier, client, limiter))
	}

	return sources
}
