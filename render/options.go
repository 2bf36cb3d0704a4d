package render

import "artc/config"

// OptionsFor maps document configuration to render options.
func OptionsFor(cfg *config.DocumentConfig) Options {
	return Options{
		SentenceCaseHeadings: cfg.Headings.SentenceCase,
		LeadEmphasis:         cfg.Lead.Emphasis,
		AccessedDate:         cfg.AccessedDate,
	}
}
