// Command genmock writes a reproducible mock dream archive and VIIRS table
// for local pipeline runs. Dreams only cover the first months of the year so
// that augmentation has months to fill.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out-dir data/raw \
//	  -cities Toronto,Mississauga,Ottawa \
//	  -dreamers 40 -months 9 -seed 1
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Mock archive layout. Emotions are written as [label, score] pairs, the
// shape the journaling app exports.
type mockArchive struct {
	Records []mockRecord `json:"records"`
}

type mockRecord struct {
	Dreamer mockDreamer `json:"dreamer"`
	Dreams  []mockDream `json:"dreams"`
}

type mockDreamer struct {
	Gender      string `json:"gender"`
	City        string `json:"city"`
	Admin1      string `json:"admin1"`
	CountryCode string `json:"country_code"`
}

type mockDream struct {
	Date    string         `json:"date"`
	AppTags map[string]any `json:"app_tags"`
	Affect  map[string]any `json:"affect"`
}

var (
	genders  = []string{"F", "M", "X"}
	moods    = []string{"calm", "anxious", "joyful", "confused", "sad"}
	types    = []string{"ordinary", "nightmare", "lucid", "recurring"}
	themes   = []string{"travel", "family", "work", "water", "flight"}
	keywords = []string{"house", "dog", "lake", "train", "school", "forest", "stairs"}
	emotions = []string{"joy", "fear", "sadness", "surprise", "anger", "trust"}
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "data/raw", "directory for dreams.json and VIIRS_data.csv")
	cities := flag.String("cities", "Toronto,Mississauga,Ottawa", "comma-separated city names")
	dreamers := flag.Int("dreamers", 40, "number of dreamers")
	months := flag.Int("months", 9, "dreams are dated in months 1..N of the year")
	year := flag.Int("year", 2025, "year of the dream dates")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *months < 1 || *months > 12 {
		flag.Usage()
		return fmt.Errorf("-months must be between 1 and 12")
	}
	cityList := strings.Split(*cities, ",")
	rng := rand.New(rand.NewPCG(*seed, *seed))

	archive := mockArchive{}
	total := 0
	for i := range *dreamers {
		rec := mockRecord{Dreamer: mockDreamer{
			Gender:      pick(rng, genders),
			City:        cityList[i%len(cityList)],
			Admin1:      "Ontario",
			CountryCode: "CA",
		}}
		for range 1 + rng.IntN(8) {
			rec.Dreams = append(rec.Dreams, mockDreamEntry(rng, *year, *months))
		}
		total += len(rec.Dreams)
		archive.Records = append(archive.Records, rec)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	archivePath := filepath.Join(*outDir, "dreams.json")
	if err := writeJSON(archivePath, archive); err != nil {
		return fmt.Errorf("writing archive: %w", err)
	}
	log.Printf("wrote %s: %d dreamers, %d dreams", archivePath, len(archive.Records), total)

	viirsPath := filepath.Join(*outDir, "VIIRS_data.csv")
	n, err := writeVIIRS(viirsPath, rng, cityList, *year)
	if err != nil {
		return fmt.Errorf("writing VIIRS table: %w", err)
	}
	log.Printf("wrote %s: %d rows", viirsPath, n)
	return nil
}

func mockDreamEntry(rng *rand.Rand, year, months int) mockDream {
	month := 1 + rng.IntN(months)
	day := 1 + rng.IntN(28)

	kw := make([]string, 1+rng.IntN(3))
	for i := range kw {
		kw[i] = pick(rng, keywords)
	}
	top := make([][]any, 3)
	for i := range top {
		top[i] = []any{pick(rng, emotions), round(rng.Float64(), 3)}
	}
	neg := round(rng.Float64()*0.5, 3)
	pos := round(rng.Float64()*0.5, 3)

	return mockDream{
		Date: fmt.Sprintf("%04d-%02d-%02d", year, month, day),
		AppTags: map[string]any{
			"type":        pick(rng, types),
			"impact":      1 + rng.IntN(5),
			"mood":        pick(rng, moods),
			"theme":       pick(rng, themes),
			"perspective": "first_person",
			"recurring":   rng.IntN(4) == 0,
			"lucidity":    rng.IntN(3),
			"keywords":    kw,
		},
		Affect: map[string]any{
			"sentiment_neg":  neg,
			"sentiment_pos":  pos,
			"sentiment_neu":  round(1-neg-pos, 3),
			"valence_mean":   round(rng.Float64()*2-1, 3),
			"arousal_mean":   round(rng.Float64(), 3),
			"dominance_mean": round(rng.Float64(), 3),
			"emotions_top3":  top,
		},
	}
}

// writeVIIRS writes monthly radiance for the previous and the given year.
// Radiance follows a seasonal curve scaled per city.
func writeVIIRS(path string, rng *rand.Rand, cities []string, year int) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"city", "month", "mean_rad", "max_rad", "sum_rad"}); err != nil {
		return 0, err
	}
	rows := 0
	for ci, city := range cities {
		scale := 40 + 10*float64(ci)
		for y := year - 1; y <= year; y++ {
			for m := 1; m <= 12; m++ {
				mean := scale + 8*math.Cos(2*math.Pi*float64(m-1)/12) + rng.NormFloat64()
				rec := []string{
					city,
					fmt.Sprintf("%04d-%02d", y, m),
					strconv.FormatFloat(round(mean, 6), 'f', -1, 64),
					strconv.FormatFloat(round(mean*7, 6), 'f', -1, 64),
					strconv.FormatFloat(round(mean*3500, 4), 'f', -1, 64),
				}
				if err := w.Write(rec); err != nil {
					return 0, err
				}
				rows++
			}
		}
	}
	w.Flush()
	return rows, w.Error()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.IntN(len(options))]
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
