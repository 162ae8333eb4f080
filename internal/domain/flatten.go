package domain

import "strings"

// Flatten emits one FlatDream per dream entry in the archive. Location fields
// resolve dream-level first, then dreamer-level; gender comes from the dreamer.
// Missing app_tags or affect objects yield null columns.
func Flatten(archive Archive) []FlatDream {
	var rows []FlatDream
	for _, rec := range archive.Records {
		dreamer := rec.Dreamer
		for _, dream := range rec.Dreams {
			rows = append(rows, flattenDream(dreamer, dream))
		}
	}
	return rows
}

func flattenDream(dreamer Dreamer, dream DreamEntry) FlatDream {
	tags := AppTags{}
	if dream.AppTags != nil {
		tags = *dream.AppTags
	}
	affect := Affect{}
	if dream.Affect != nil {
		affect = *dream.Affect
	}

	return FlatDream{
		Date: dream.Date.String(),
		Profile: Profile{
			CountryCode: dream.CountryCode.Or(dreamer.CountryCode).String(),
			Admin1:      dream.Admin1.Or(dreamer.Admin1).String(),
			City:        dream.City.Or(dreamer.City).String(),
			Gender:      dreamer.Gender.String(),

			Type:        tags.Type.String(),
			Impact:      tags.Impact.String(),
			Mood:        tags.Mood.String(),
			Theme:       tags.Theme.String(),
			Perspective: tags.Perspective.String(),
			Recurring:   tags.Recurring.String(),
			Lucidity:    tags.Lucidity.String(),
			Keywords:    strings.Join(tags.Keywords, ListSeparator),

			SentimentNeg:  affect.SentimentNeg,
			SentimentNeu:  affect.SentimentNeu,
			SentimentPos:  affect.SentimentPos,
			ValenceMean:   affect.ValenceMean,
			ArousalMean:   affect.ArousalMean,
			DominanceMean: affect.DominanceMean,
			EmotionsTop3:  joinEmotions(affect.EmotionsTop3),
		},
	}
}
