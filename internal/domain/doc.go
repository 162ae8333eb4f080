// Package domain models the dream journal and VIIRS night-light data and the
// pure transformations between the three preparation stages.
//
// # Data Sources
//
// Dreams come from the journaling app's JSON export: a list of dreamer records,
// each holding demographic fields and the dreams that dreamer logged. Radiance
// comes from monthly VIIRS composites summarized per city (mean, max and sum of
// the pixel radiance inside the city boundary).
//
// # Stages
//
//	flatten:  Archive            → []FlatDream   one row per dream entry
//	join:     []FlatDream + VIIRS → []Dream       left join on (city, year, month)
//	augment:  []Dream            → []Dream       real rows + synthetic fill
//
// # Field Resolution
//
// country_code, admin1 and city resolve dream-level first, then dreamer-level.
// A dream key that is present but null resolves to null; only an absent key
// falls back to the dreamer. Gender is dreamer-level only.
//
// List fields are serialized with ", " between items. emotions_top3 items are
// written "label:score", which is what the radial chart splits on.
//
// # Augmentation
//
// For each city, months of the target year with no real rows are filled until
// the month holds the threshold number of rows (20 by default). Numeric columns
// take the city's monthly mean for that month plus Gaussian noise (σ = 0.02);
// categorical and list columns are copied from a randomly sampled real row.
//
// Monthly means are taken per year_month and placed on the target year's
// calendar by exact year_month, so real data from other years leaves gaps.
// Gaps are filled by backward fill and then linear interpolation, in that
// order. With real data only early in the year, trailing months therefore
// repeat the last known mean instead of extrapolating a trend.
//
// Months that already contain real rows are never topped up, even when they
// are below the threshold.
//
// # Overrides
//
// A short list of manual radiance corrections runs after augmentation, in
// order, against rows of any data type: see [DefaultOverrides].
package domain
